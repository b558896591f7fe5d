package entities

// FilterPredicate is a row-level filter to apply downstream of an allow.
type FilterPredicate struct {
	Field    string      `json:"field"`    // field to filter on
	Operator string      `json:"operator"` // eq, ne, in, gt, lt, ...
	Value    interface{} `json:"value"`    // value to compare against
}

// Decision is the result of a policy evaluation.
// Reason is always populated, on denial and on success alike.
type Decision struct {
	Allowed bool              `json:"allowed"`
	Reason  string            `json:"reason"`
	Policy  string            `json:"policy,omitempty"`  // policy module that produced the decision
	Filters []FilterPredicate `json:"filters,omitempty"` // row-level filters (dataset policies)
}

// Allow builds an allowed decision with the given reason.
func Allow(reason string) *Decision {
	return &Decision{Allowed: true, Reason: reason}
}

// Deny builds a denied decision with the given reason.
func Deny(reason string) *Decision {
	return &Decision{Allowed: false, Reason: reason}
}
