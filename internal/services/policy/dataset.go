package policy

import "github.com/celine-platform/policies/internal/entities"

// Dataset access levels, ordered from least to most sensitive.
const (
	AccessOpen       = "open"
	AccessInternal   = "internal"
	AccessRestricted = "restricted"
)

// Scopes recognized by the dataset policy.
const (
	ScopeDatasetQuery = "dataset.query"
	ScopeDatasetAdmin = "dataset.admin"
)

var accessRank = map[string]int{
	AccessOpen:       1,
	AccessInternal:   2,
	AccessRestricted: 3,
}

// DatasetModule decides dataset access by sensitivity tier.
//
// Open datasets are world-readable. Everything else applies the dual-check
// model: user subjects need both a sufficient group level and a sufficient
// client scope, service subjects need the scope alone.
type DatasetModule struct{}

// NewDatasetModule creates the dataset policy module.
func NewDatasetModule() *DatasetModule {
	return &DatasetModule{}
}

// Name implements Module.
func (m *DatasetModule) Name() string { return "celine.dataset.access" }

// datasetRequirement is one row of the access matrix.
type datasetRequirement struct {
	groupLevel int      // minimum group level for user subjects
	scopes     []string // any of these scopes satisfies the client check
}

// requirementFor returns the matrix row for (access level, action), or false
// for action names the dataset policy does not define.
func requirementFor(level, action string) (datasetRequirement, bool) {
	switch action {
	case "read":
		switch level {
		case AccessInternal:
			return datasetRequirement{LevelViewer, []string{ScopeDatasetQuery, ScopeDatasetAdmin}}, true
		case AccessRestricted:
			return datasetRequirement{LevelAdmin, []string{ScopeDatasetAdmin}}, true
		}
	case "write":
		switch level {
		case AccessOpen, AccessInternal:
			return datasetRequirement{LevelEditor, []string{ScopeDatasetAdmin}}, true
		case AccessRestricted:
			return datasetRequirement{LevelAdmin, []string{ScopeDatasetAdmin}}, true
		}
	case "admin":
		return datasetRequirement{LevelAdmin, []string{ScopeDatasetAdmin}}, true
	}
	return datasetRequirement{}, false
}

// Evaluate implements Module.
//
// Denial reasons are mutually exclusive, picked in priority order:
// anonymous denied, missing required scope, insufficient group level,
// insufficient scope.
func (m *DatasetModule) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	level := resource.StringAttribute("access_level")
	if _, ok := accessRank[level]; !ok {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}

	if action.Name == "filters" {
		d := entities.Allow(ReasonAuthorized)
		d.Filters = m.Filters(subject)
		return decide(m, d)
	}

	if level == AccessOpen && action.Name == "read" {
		return decide(m, entities.Allow(ReasonAuthorized))
	}

	req, ok := requirementFor(level, action.Name)
	if !ok {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}

	if subject.IsAnonymous() {
		return decide(m, entities.Deny(ReasonAnonymousDenied))
	}

	// A subject holding no dataset capability at all is distinguished from
	// one holding the wrong dataset capability.
	if !HasAnyScope(subject, ScopeDatasetQuery, ScopeDatasetAdmin) {
		return decide(m, entities.Deny(ReasonMissingScope))
	}

	if subject.IsUser() && !HasGroupLevel(subject, req.groupLevel) {
		return decide(m, entities.Deny(ReasonInsufficientGroup))
	}

	if !HasAnyScope(subject, req.scopes...) {
		return decide(m, entities.Deny(ReasonInsufficientScope))
	}

	return decide(m, entities.Allow(ReasonAuthorized))
}

// Filters computes the row-level filter set for a subject: the access tiers
// visible to it, derived as the intersection of the group-implied ceiling and
// the scope-implied ceiling, plus an organization filter when the subject's
// claims carry an organization id. Filter computation never denies; it
// narrows.
func (m *DatasetModule) Filters(subject *entities.Subject) []entities.FilterPredicate {
	ceiling := scopeCeiling(subject)
	if subject.IsUser() {
		if g := groupCeiling(GroupLevel(subject.Groups)); g < ceiling {
			ceiling = g
		}
	} else if subject.IsAnonymous() {
		ceiling = accessRank[AccessOpen]
	}

	tiers := make([]string, 0, 3)
	for _, level := range []string{AccessOpen, AccessInternal, AccessRestricted} {
		if accessRank[level] <= ceiling {
			tiers = append(tiers, level)
		}
	}

	filters := []entities.FilterPredicate{
		{Field: "access_level", Operator: "in", Value: tiers},
	}
	if org, ok := subject.StringClaim("organization_id"); ok {
		filters = append(filters, entities.FilterPredicate{
			Field: "organization_id", Operator: "eq", Value: org,
		})
	}
	return filters
}

// scopeCeiling is the highest tier the client's granted scopes can reach.
func scopeCeiling(subject *entities.Subject) int {
	switch {
	case HasScope(subject, ScopeDatasetAdmin):
		return accessRank[AccessRestricted]
	case HasScope(subject, ScopeDatasetQuery):
		return accessRank[AccessInternal]
	}
	return accessRank[AccessOpen]
}

// groupCeiling is the highest tier a user's group level can reach.
func groupCeiling(level int) int {
	switch {
	case level >= LevelAdmin:
		return accessRank[AccessRestricted]
	case level >= LevelViewer:
		return accessRank[AccessInternal]
	}
	return accessRank[AccessOpen]
}
