package policy

import "github.com/celine-platform/policies/internal/entities"

// ReasonNoUserPolicy denies user subjects routed to the generic policy,
// which is deliberately service-only.
const ReasonNoUserPolicy = "no policy for user subjects"

// FallbackModule is the generic policy for resource types with no
// specialized module. It derives a required capability algorithmically:
// "{type}.{resource_type}.{action}" when the resource carries a
// resource_type attribute, "{type}.{action}" otherwise, and grants access
// to service subjects holding it. User and anonymous subjects are always
// denied here; integrators register a specialized module when user access
// is needed.
type FallbackModule struct{}

// NewFallbackModule creates the generic fallback policy module.
func NewFallbackModule() *FallbackModule {
	return &FallbackModule{}
}

// Name implements Module.
func (m *FallbackModule) Name() string { return "celine.authz" }

// RequiredScope derives the capability the fallback checks for.
func (m *FallbackModule) RequiredScope(resource *entities.Resource, action *entities.Action) string {
	if sub := resource.StringAttribute("resource_type"); sub != "" {
		return resource.Type + "." + sub + "." + action.Name
	}
	return resource.Type + "." + action.Name
}

// Evaluate implements Module.
func (m *FallbackModule) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	if resource.Type == "" || action.Name == "" {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}
	if subject.IsAnonymous() {
		return decide(m, entities.Deny(ReasonAnonymousDenied))
	}
	if !subject.IsService() {
		return decide(m, entities.Deny(ReasonNoUserPolicy))
	}
	if !HasScope(subject, m.RequiredScope(resource, action)) {
		return decide(m, entities.Deny(ReasonMissingScope))
	}
	return decide(m, entities.Allow(ReasonAuthorized))
}
