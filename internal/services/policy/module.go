package policy

import "github.com/celine-platform/policies/internal/entities"

// Well-known decision reasons. Denial reasons are mutually exclusive; each
// module picks the first applicable one in its documented priority order.
const (
	ReasonAuthorized        = "authorized"
	ReasonUnauthorized      = "unauthorized"
	ReasonAnonymousDenied   = "anonymous access denied"
	ReasonMissingScope      = "missing required scope"
	ReasonInsufficientGroup = "insufficient group level"
	ReasonInsufficientScope = "insufficient scope"
	ReasonInvalidRequest    = "invalid request"
)

// Module is a resource policy module: the decision contract for one resource
// type. Evaluate never returns an error; malformed inputs yield a denial with
// ReasonInvalidRequest.
type Module interface {
	// Name is the stable policy identifier, used for routing, caching,
	// and audit (e.g. "celine.dataset.access").
	Name() string

	// Evaluate decides (subject, resource, action). The returned decision
	// always carries a non-empty reason.
	Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision
}

// decide stamps the module's policy identifier onto a decision.
func decide(m Module, d *entities.Decision) *entities.Decision {
	d.Policy = m.Name()
	return d
}
