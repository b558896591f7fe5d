package entities

// RuleEffect is the outcome of a matching ACL rule.
type RuleEffect string

const (
	EffectAllow RuleEffect = "allow"
	EffectDeny  RuleEffect = "deny"
)

// ACLSubjectMatcher filters which subjects an ACL rule applies to.
// Every absent field matches all subjects.
type ACLSubjectMatcher struct {
	Kind   string   `yaml:"kind,omitempty"`   // anonymous, user, or service
	ID     string   `yaml:"id,omitempty"`     // exact subject id
	Groups []string `yaml:"groups,omitempty"` // any group membership matches
	Scopes []string `yaml:"scopes,omitempty"` // any held scope matches (scope-matcher semantics)
}

// ACLRule is a static MQTT topic authorization rule.
// Rules are read-only during evaluation; reload installs a fresh snapshot.
type ACLRule struct {
	Name     string            `yaml:"name,omitempty"`
	Subjects ACLSubjectMatcher `yaml:"subjects,omitempty"`
	Topics   []string          `yaml:"topics"`  // topic patterns, or "*" for all
	Actions  []string          `yaml:"actions"` // publish/subscribe/read, or "*" for all
	Effect   RuleEffect        `yaml:"effect,omitempty"`
}

// MatchesAction reports whether the rule covers the given action name.
func (r *ACLRule) MatchesAction(action string) bool {
	if len(r.Actions) == 0 {
		return true
	}
	for _, a := range r.Actions {
		if a == "*" || a == action {
			return true
		}
	}
	return false
}
