package policy

import (
	"testing"

	"github.com/celine-platform/policies/internal/entities"
)

func topicResource(topic string) *entities.Resource {
	return &entities.Resource{Type: entities.ResourceTopic, ID: topic}
}

func TestMqttDerivedScope(t *testing.T) {
	module := NewMqttModule(StrategyDerivedScope, nil)

	tests := []struct {
		name        string
		subject     *entities.Subject
		topic       string
		action      string
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "service with derived scope subscribes",
			subject:     testService("svc-1", []string{"dt.values.read"}),
			topic:       "celine/dt/values/pump-1",
			action:      "subscribe",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "service with dt.write publishes to digital-twin events",
			subject:     testService("svc-1", []string{"dt.write"}),
			topic:       "celine/digital-twin/events/pump-1",
			action:      "publish",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "pipelines segment canonicalizes to pipeline scopes",
			subject:     testService("svc-1", []string{"pipeline.runs.read"}),
			topic:       "celine/pipelines/runs/42",
			action:      "subscribe",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "read scope does not allow publish",
			subject:     testService("svc-1", []string{"dt.values.read"}),
			topic:       "celine/dt/values/pump-1",
			action:      "publish",
			wantAllowed: false,
			wantReason:  ReasonMissingScope,
		},
		{
			name:        "area admin scope covers every topic of the area",
			subject:     testService("svc-1", []string{"dt.admin"}),
			topic:       "celine/dt/values/pump-1",
			action:      "publish",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "wildcard scope covers its subtree",
			subject:     testService("svc-1", []string{"dt.values.*"}),
			topic:       "celine/dt/values/pump-1",
			action:      "subscribe",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "user with scopes subscribes",
			subject:     testUser("u-1", []string{"viewers"}, []string{"dt.values.read"}),
			topic:       "celine/dt/values/pump-1",
			action:      "subscribe",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "anonymous denied",
			subject:     entities.Anonymous(),
			topic:       "celine/dt/values/pump-1",
			action:      "subscribe",
			wantAllowed: false,
			wantReason:  ReasonAnonymousDenied,
		},
		{
			name:        "foreign root is an invalid request",
			subject:     testService("svc-1", []string{"dt.admin"}),
			topic:       "other/dt/values",
			action:      "subscribe",
			wantAllowed: false,
			wantReason:  ReasonInvalidRequest,
		},
		{
			name:        "topic without area is an invalid request",
			subject:     testService("svc-1", []string{"dt.admin"}),
			topic:       "celine",
			action:      "subscribe",
			wantAllowed: false,
			wantReason:  ReasonInvalidRequest,
		},
		{
			name:        "area-only topic needs the area admin scope",
			subject:     testService("svc-1", []string{"dt.admin"}),
			topic:       "celine/dt",
			action:      "subscribe",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "area-only topic without admin scope",
			subject:     testService("svc-1", []string{"dt.values.read"}),
			topic:       "celine/dt",
			action:      "subscribe",
			wantAllowed: false,
			wantReason:  ReasonMissingScope,
		},
		{
			name:        "unknown action is an invalid request",
			subject:     testService("svc-1", []string{"dt.admin"}),
			topic:       "celine/dt/values",
			action:      "unknown",
			wantAllowed: false,
			wantReason:  ReasonInvalidRequest,
		},
		{
			name:        "empty topic is an invalid request",
			subject:     testService("svc-1", []string{"dt.admin"}),
			topic:       "",
			action:      "subscribe",
			wantAllowed: false,
			wantReason:  ReasonInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := module.Evaluate(tt.subject, topicResource(tt.topic), action(tt.action))
			if d.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllowed, d.Reason)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

type staticRules struct {
	rules []*entities.ACLRule
}

func (s *staticRules) Rules() []*entities.ACLRule { return s.rules }

func TestMqttRuleList(t *testing.T) {
	rules := &staticRules{rules: []*entities.ACLRule{
		{
			Name:    "services-read-values",
			Subjects: entities.ACLSubjectMatcher{Kind: string(entities.SubjectService)},
			Topics:  []string{"celine/dt/values/#"},
			Actions: []string{"subscribe", "read"},
			Effect:  entities.EffectAllow,
		},
		{
			Name:    "editors-publish-commands",
			Subjects: entities.ACLSubjectMatcher{Groups: []string{"editors", "managers"}},
			Topics:  []string{"celine/dt/commands/+"},
			Actions: []string{"publish"},
			Effect:  entities.EffectAllow,
		},
		{
			Name:    "ban-rogue-service",
			Subjects: entities.ACLSubjectMatcher{ID: "svc-rogue"},
			Topics:  []string{"*"},
			Effect:  entities.EffectDeny,
		},
		{
			Name:    "rogue-allow-anyway",
			Subjects: entities.ACLSubjectMatcher{ID: "svc-rogue"},
			Topics:  []string{"*"},
			Effect:  entities.EffectAllow,
		},
	}}
	module := NewMqttModule(StrategyRuleList, rules)

	tests := []struct {
		name        string
		subject     *entities.Subject
		topic       string
		action      string
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "matching allow rule",
			subject:     testService("svc-1", nil),
			topic:       "celine/dt/values/pump-1",
			action:      "subscribe",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "action outside the rule's list",
			subject:     testService("svc-1", nil),
			topic:       "celine/dt/values/pump-1",
			action:      "publish",
			wantAllowed: false,
			wantReason:  "no matching acl rule",
		},
		{
			name:        "group-filtered rule matches editors",
			subject:     testUser("u-1", []string{"editors"}, nil),
			topic:       "celine/dt/commands/pump-1",
			action:      "publish",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "group-filtered rule rejects viewers",
			subject:     testUser("u-1", []string{"viewers"}, nil),
			topic:       "celine/dt/commands/pump-1",
			action:      "publish",
			wantAllowed: false,
			wantReason:  "no matching acl rule",
		},
		{
			name:        "deny rule is terminal over later allows",
			subject:     testService("svc-rogue", nil),
			topic:       "celine/dt/values/pump-1",
			action:      "subscribe",
			wantAllowed: false,
			wantReason:  "denied by acl rule",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := module.Evaluate(tt.subject, topicResource(tt.topic), action(tt.action))
			if d.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllowed, d.Reason)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestMqttRuleListUnconfigured(t *testing.T) {
	module := NewMqttModule(StrategyRuleList, nil)
	d := module.Evaluate(testService("svc-1", nil), topicResource("celine/dt/values"), action("subscribe"))
	if d.Allowed {
		t.Error("rule-list strategy without rules must deny")
	}
}

func TestIsSuperuser(t *testing.T) {
	tests := []struct {
		name    string
		subject *entities.Subject
		want    bool
	}{
		{"admin user", testUser("u-1", []string{"admins"}, nil), true},
		{"manager user", testUser("u-1", []string{"managers"}, nil), false},
		{"service with mqtt.admin", testService("svc-1", []string{ScopeMqttAdmin}), true},
		{"service without mqtt.admin", testService("svc-1", []string{"dt.admin"}), false},
		{"anonymous", entities.Anonymous(), false},
		{"nil subject", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuperuser(tt.subject); got != tt.want {
				t.Errorf("IsSuperuser() = %v, want %v", got, tt.want)
			}
		})
	}
}
