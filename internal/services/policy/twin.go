package policy

import "github.com/celine-platform/policies/internal/entities"

// Scopes recognized by the digital-twin policy. ScopeTwinAdmin satisfies
// every lower requirement through the admin-override matching rule.
const (
	ScopeTwinRead     = "dt.read"
	ScopeTwinWrite    = "dt.write"
	ScopeTwinSimulate = "dt.simulate"
	ScopeTwinAdmin    = "dt.admin"
)

// ReasonServiceOnly denies operations reserved for service subjects.
const ReasonServiceOnly = "service subjects only"

// TwinModule decides digital-twin capability checks.
type TwinModule struct{}

// NewTwinModule creates the digital-twin policy module.
func NewTwinModule() *TwinModule {
	return &TwinModule{}
}

// Name implements Module.
func (m *TwinModule) Name() string { return "celine.dt.access" }

// twinRequirements maps action names to the dual-check requirement.
var twinRequirements = map[string]struct {
	groupLevel int
	scope      string
}{
	"read":     {LevelViewer, ScopeTwinRead},
	"write":    {LevelEditor, ScopeTwinWrite},
	"simulate": {LevelManager, ScopeTwinSimulate},
	"admin":    {LevelAdmin, ScopeTwinAdmin},
}

// Evaluate implements Module.
func (m *TwinModule) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	if action.Name == "emit_event" {
		return decide(m, m.evaluateEmitEvent(subject, action))
	}

	req, ok := twinRequirements[action.Name]
	if !ok {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}

	if subject.IsAnonymous() {
		return decide(m, entities.Deny(ReasonAnonymousDenied))
	}

	if !HasAnyScope(subject, ScopeTwinRead, ScopeTwinWrite, ScopeTwinSimulate, ScopeTwinAdmin) {
		return decide(m, entities.Deny(ReasonMissingScope))
	}

	if subject.IsUser() && !HasGroupLevel(subject, req.groupLevel) {
		return decide(m, entities.Deny(ReasonInsufficientGroup))
	}

	if !HasScope(subject, req.scope) {
		return decide(m, entities.Deny(ReasonInsufficientScope))
	}

	return decide(m, entities.Allow(ReasonAuthorized))
}

// evaluateEmitEvent handles twin event ingestion, a service-only operation.
// Events tagged as simulation output need a simulation-capable scope; a
// plain write scope is not enough for them.
func (m *TwinModule) evaluateEmitEvent(subject *entities.Subject, action *entities.Action) *entities.Decision {
	if subject.IsAnonymous() {
		return entities.Deny(ReasonAnonymousDenied)
	}
	if !subject.IsService() {
		return entities.Deny(ReasonServiceOnly)
	}
	if !HasAnyScope(subject, ScopeTwinWrite, ScopeTwinSimulate, ScopeTwinAdmin) {
		return entities.Deny(ReasonMissingScope)
	}
	if action.StringContext("event_type") == "simulation" &&
		!HasAnyScope(subject, ScopeTwinSimulate, ScopeTwinAdmin) {
		return entities.Deny(ReasonInsufficientScope)
	}
	return entities.Allow(ReasonAuthorized)
}
