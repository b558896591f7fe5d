package policy

import "github.com/celine-platform/policies/internal/entities"

// Scopes recognized by the user-data policy.
const (
	ScopeUserdataRead  = "userdata.read"
	ScopeUserdataWrite = "userdata.write"
	ScopeUserdataAdmin = "userdata.admin"
)

// Allow reasons specific to user-data decisions, distinguishable in audit.
const (
	ReasonOwner           = "owner"
	ReasonSharedWithUser  = "shared with user"
	ReasonSharedWithGroup = "shared with group"
	ReasonPublicDashboard = "public dashboard"
	ReasonAdminOverride   = "admin override"
	ReasonNotOwner        = "not owner"
)

// UserdataModule decides access to user-owned data: ownership, sharing,
// public dashboards, and the admin override.
//
// Sharing only ever grants read; write, delete, and share stay with the
// owner (or an admin-level user holding userdata.admin).
type UserdataModule struct{}

// NewUserdataModule creates the user-data policy module.
func NewUserdataModule() *UserdataModule {
	return &UserdataModule{}
}

// Name implements Module.
func (m *UserdataModule) Name() string { return "celine.userdata.access" }

// userdataScopeFor returns the scope required for an action. userdata.admin
// satisfies either through the admin-override matching rule.
func userdataScopeFor(action string) (string, bool) {
	switch action {
	case "read":
		return ScopeUserdataRead, true
	case "write", "delete", "share":
		return ScopeUserdataWrite, true
	}
	return "", false
}

// Evaluate implements Module.
func (m *UserdataModule) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	required, ok := userdataScopeFor(action.Name)
	if !ok {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}

	if subject.IsAnonymous() {
		return decide(m, entities.Deny(ReasonAnonymousDenied))
	}

	if !HasAnyScope(subject, ScopeUserdataRead, ScopeUserdataWrite, ScopeUserdataAdmin) {
		return decide(m, entities.Deny(ReasonMissingScope))
	}

	if !HasScope(subject, required) {
		return decide(m, entities.Deny(ReasonInsufficientScope))
	}

	// Services have no ownership concept: the scope check above is the
	// whole decision for them.
	if subject.IsService() {
		return decide(m, entities.Allow(ReasonAuthorized))
	}

	// Admin-level users holding userdata.admin bypass ownership.
	if HasGroupLevel(subject, LevelAdmin) && HasScope(subject, ScopeUserdataAdmin) {
		return decide(m, entities.Allow(ReasonAdminOverride))
	}

	if resource.StringAttribute("owner_id") == subject.ID {
		return decide(m, entities.Allow(ReasonOwner))
	}

	// Non-owners: sharing and public visibility grant read only.
	if action.Name == "read" {
		if containsString(resource.StringListAttribute("shared_with"), subject.ID) {
			return decide(m, entities.Allow(ReasonSharedWithUser))
		}
		if groupsIntersect(subject.Groups, resource.StringListAttribute("shared_with_groups")) {
			return decide(m, entities.Allow(ReasonSharedWithGroup))
		}
		if resource.StringAttribute("resource_type") == "dashboard" &&
			resource.StringAttribute("visibility") == "public" {
			return decide(m, entities.Allow(ReasonPublicDashboard))
		}
	}

	return decide(m, entities.Deny(ReasonNotOwner))
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
