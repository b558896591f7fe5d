package policy

import (
	"strings"

	"github.com/celine-platform/policies/internal/entities"
)

// ScopeMqttAdmin marks a service subject as MQTT superuser.
const ScopeMqttAdmin = "mqtt.admin"

// topicRoot is the leading segment every platform topic carries.
const topicRoot = "celine"

// MqttStrategy selects how topic authorization is decided. The two
// strategies are never mixed within one evaluation.
type MqttStrategy string

const (
	// StrategyDerivedScope derives a required capability from the topic
	// (celine/{service}/{resource}/... -> {area}.{resource}.{verb}) and
	// checks it with the scope matcher.
	StrategyDerivedScope MqttStrategy = "derived"
	// StrategyRuleList evaluates the subject against the configured ACL
	// rule set. Authorization is the disjunction of matching allow rules;
	// a matching deny rule is terminal.
	StrategyRuleList MqttStrategy = "rules"
)

// mqttVerbs maps MQTT action names to capability verbs.
var mqttVerbs = map[string]string{
	"subscribe": "read",
	"read":      "read",
	"publish":   "write",
}

// serviceAreas canonicalizes topic service segments to scope areas. The
// topic taxonomy spells some services out long-form while scopes use the
// short area name.
var serviceAreas = map[string]string{
	"digital-twin": "dt",
	"pipelines":    "pipeline",
}

// RuleProvider hands out the active ACL rule snapshot. Snapshots are
// immutable; reload installs a new one atomically.
type RuleProvider interface {
	Rules() []*entities.ACLRule
}

// MqttModule decides MQTT topic access.
type MqttModule struct {
	strategy MqttStrategy
	rules    RuleProvider
}

// NewMqttModule creates the MQTT policy module. rules may be nil under the
// derived-scope strategy.
func NewMqttModule(strategy MqttStrategy, rules RuleProvider) *MqttModule {
	if strategy == "" {
		strategy = StrategyDerivedScope
	}
	return &MqttModule{strategy: strategy, rules: rules}
}

// Name implements Module.
func (m *MqttModule) Name() string { return "celine.mqtt.acl" }

// IsSuperuser reports whether the subject bypasses topic ACLs entirely:
// a user at admin group level, or a service holding mqtt.admin.
func IsSuperuser(subject *entities.Subject) bool {
	if HasGroupLevel(subject, LevelAdmin) {
		return true
	}
	return subject.IsService() && HasScope(subject, ScopeMqttAdmin)
}

// Evaluate implements Module. Superuser status is a separate entry point
// (IsSuperuser); ordinary publish/subscribe always goes through the
// configured strategy.
func (m *MqttModule) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	verb, ok := mqttVerbs[action.Name]
	if !ok {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}
	if resource.ID == "" {
		return decide(m, entities.Deny(ReasonInvalidRequest))
	}
	if subject.IsAnonymous() {
		return decide(m, entities.Deny(ReasonAnonymousDenied))
	}

	if m.strategy == StrategyRuleList {
		return decide(m, m.evaluateRules(subject, resource.ID, action.Name))
	}
	return decide(m, m.evaluateDerived(subject, resource.ID, verb))
}

// evaluateDerived maps the topic to a required capability and checks the
// subject's scopes against it. A topic without a resource segment needs the
// area admin scope outright.
func (m *MqttModule) evaluateDerived(subject *entities.Subject, topic, verb string) *entities.Decision {
	segments := strings.Split(topic, "/")
	if segments[0] != topicRoot || len(segments) < 2 || segments[1] == "" {
		return entities.Deny(ReasonInvalidRequest)
	}

	area := segments[1]
	if canonical, ok := serviceAreas[area]; ok {
		area = canonical
	}

	if len(segments) < 3 || segments[2] == "" {
		if HasScope(subject, area+".admin") {
			return entities.Allow(ReasonAuthorized)
		}
		return entities.Deny(ReasonMissingScope)
	}

	// The exact derived capability, or the area-level verb scope that
	// covers every resource of the area.
	required := area + "." + segments[2] + "." + verb
	if HasScope(subject, required) || HasScope(subject, area+"."+verb) {
		return entities.Allow(ReasonAuthorized)
	}
	return entities.Deny(ReasonMissingScope)
}

// evaluateRules checks the subject against every configured ACL rule.
// A matching deny rule is terminal and overrides all allow rules.
func (m *MqttModule) evaluateRules(subject *entities.Subject, topic, action string) *entities.Decision {
	if m.rules == nil {
		return entities.Deny("no acl rules configured")
	}

	allowed := false
	for _, rule := range m.rules.Rules() {
		if !ruleMatches(rule, subject, topic, action) {
			continue
		}
		if rule.Effect == entities.EffectDeny {
			return entities.Deny("denied by acl rule")
		}
		allowed = true
	}
	if allowed {
		return entities.Allow(ReasonAuthorized)
	}
	return entities.Deny("no matching acl rule")
}

// ruleMatches reports whether a rule's subject, topic, and action filters
// all cover the request.
func ruleMatches(rule *entities.ACLRule, subject *entities.Subject, topic, action string) bool {
	if !rule.MatchesAction(action) {
		return false
	}
	if !subjectMatches(&rule.Subjects, subject) {
		return false
	}
	for _, pattern := range rule.Topics {
		if pattern == "*" || TopicMatches(pattern, topic) {
			return true
		}
	}
	return len(rule.Topics) == 0
}

// subjectMatches applies the rule's subject filter; absent fields match all.
func subjectMatches(m *entities.ACLSubjectMatcher, subject *entities.Subject) bool {
	if m.Kind != "" && m.Kind != string(subject.Kind) {
		return false
	}
	if m.ID != "" && m.ID != subject.ID {
		return false
	}
	if len(m.Groups) > 0 && !groupsIntersect(m.Groups, subject.Groups) {
		return false
	}
	if len(m.Scopes) > 0 && !HasAnyScope(subject, m.Scopes...) {
		return false
	}
	return true
}

func groupsIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
