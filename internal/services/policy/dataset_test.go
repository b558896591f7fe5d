package policy

import (
	"reflect"
	"testing"

	"github.com/celine-platform/policies/internal/entities"
)

func TestDatasetEvaluate(t *testing.T) {
	module := NewDatasetModule()

	tests := []struct {
		name        string
		subject     *entities.Subject
		accessLevel string
		action      string
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "anonymous reads open dataset",
			subject:     entities.Anonymous(),
			accessLevel: AccessOpen,
			action:      "read",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "anonymous denied on internal dataset",
			subject:     entities.Anonymous(),
			accessLevel: AccessInternal,
			action:      "read",
			wantAllowed: false,
			wantReason:  ReasonAnonymousDenied,
		},
		{
			name:        "viewer with query scope reads internal",
			subject:     testUser("u-1", []string{"viewers"}, []string{ScopeDatasetQuery}),
			accessLevel: AccessInternal,
			action:      "read",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "viewer without any dataset scope",
			subject:     testUser("u-1", []string{"viewers"}, []string{"dt.read"}),
			accessLevel: AccessInternal,
			action:      "read",
			wantAllowed: false,
			wantReason:  ReasonMissingScope,
		},
		{
			name:        "admin group with only query scope cannot read restricted",
			subject:     testUser("u-1", []string{"admins"}, []string{ScopeDatasetQuery}),
			accessLevel: AccessRestricted,
			action:      "read",
			wantAllowed: false,
			wantReason:  ReasonInsufficientScope,
		},
		{
			name:        "admin scope without admin group cannot read restricted",
			subject:     testUser("u-1", []string{"managers"}, []string{ScopeDatasetAdmin}),
			accessLevel: AccessRestricted,
			action:      "read",
			wantAllowed: false,
			wantReason:  ReasonInsufficientGroup,
		},
		{
			name:        "admin group and admin scope read restricted",
			subject:     testUser("u-1", []string{"admins"}, []string{ScopeDatasetAdmin}),
			accessLevel: AccessRestricted,
			action:      "read",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "service with query scope reads internal without groups",
			subject:     testService("svc-1", []string{ScopeDatasetQuery}),
			accessLevel: AccessInternal,
			action:      "read",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "editor with admin scope writes open dataset",
			subject:     testUser("u-1", []string{"editors"}, []string{ScopeDatasetAdmin}),
			accessLevel: AccessOpen,
			action:      "write",
			wantAllowed: true,
			wantReason:  ReasonAuthorized,
		},
		{
			name:        "viewer cannot write open dataset",
			subject:     testUser("u-1", []string{"viewers"}, []string{ScopeDatasetAdmin}),
			accessLevel: AccessOpen,
			action:      "write",
			wantAllowed: false,
			wantReason:  ReasonInsufficientGroup,
		},
		{
			name:        "editor with only query scope cannot write",
			subject:     testUser("u-1", []string{"editors"}, []string{ScopeDatasetQuery}),
			accessLevel: AccessInternal,
			action:      "write",
			wantAllowed: false,
			wantReason:  ReasonInsufficientScope,
		},
		{
			name:        "unknown access level is an invalid request",
			subject:     testUser("u-1", []string{"admins"}, []string{ScopeDatasetAdmin}),
			accessLevel: "secret",
			action:      "read",
			wantAllowed: false,
			wantReason:  ReasonInvalidRequest,
		},
		{
			name:        "unknown action is an invalid request",
			subject:     testUser("u-1", []string{"admins"}, []string{ScopeDatasetAdmin}),
			accessLevel: AccessInternal,
			action:      "export",
			wantAllowed: false,
			wantReason:  ReasonInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := module.Evaluate(tt.subject, datasetResource("ds-1", tt.accessLevel), action(tt.action))
			if d.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", d.Allowed, tt.wantAllowed, d.Reason)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
			if d.Policy != "celine.dataset.access" {
				t.Errorf("Policy = %q, want celine.dataset.access", d.Policy)
			}
		})
	}
}

func TestDatasetFilters(t *testing.T) {
	module := NewDatasetModule()

	tests := []struct {
		name      string
		subject   *entities.Subject
		wantTiers []string
	}{
		{
			name:      "anonymous sees open only",
			subject:   entities.Anonymous(),
			wantTiers: []string{AccessOpen},
		},
		{
			name:      "user without scopes sees open only",
			subject:   testUser("u-1", []string{"managers"}, nil),
			wantTiers: []string{AccessOpen},
		},
		{
			name:      "group ceiling caps scope ceiling",
			subject:   testUser("u-1", nil, []string{ScopeDatasetAdmin}),
			wantTiers: []string{AccessOpen},
		},
		{
			name:      "scope ceiling caps group ceiling",
			subject:   testUser("u-1", []string{"admins"}, []string{ScopeDatasetQuery}),
			wantTiers: []string{AccessOpen, AccessInternal},
		},
		{
			name:      "viewer with query scope sees internal",
			subject:   testUser("u-1", []string{"viewers"}, []string{ScopeDatasetQuery}),
			wantTiers: []string{AccessOpen, AccessInternal},
		},
		{
			name:      "admin with admin scope sees everything",
			subject:   testUser("u-1", []string{"admins"}, []string{ScopeDatasetAdmin}),
			wantTiers: []string{AccessOpen, AccessInternal, AccessRestricted},
		},
		{
			name:      "service ceiling comes from scopes alone",
			subject:   testService("svc-1", []string{ScopeDatasetAdmin}),
			wantTiers: []string{AccessOpen, AccessInternal, AccessRestricted},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := module.Filters(tt.subject)
			if len(filters) == 0 {
				t.Fatal("expected at least the access_level filter")
			}
			f := filters[0]
			if f.Field != "access_level" || f.Operator != "in" {
				t.Fatalf("unexpected first filter: %+v", f)
			}
			if !reflect.DeepEqual(f.Value, tt.wantTiers) {
				t.Errorf("tiers = %v, want %v", f.Value, tt.wantTiers)
			}
		})
	}
}

func TestDatasetFiltersOrganization(t *testing.T) {
	module := NewDatasetModule()
	subject := testUser("u-1", []string{"viewers"}, []string{ScopeDatasetQuery})
	subject.Claims = map[string]interface{}{"organization_id": "org-7"}

	filters := module.Filters(subject)
	if len(filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(filters))
	}
	org := filters[1]
	if org.Field != "organization_id" || org.Operator != "eq" || org.Value != "org-7" {
		t.Errorf("unexpected organization filter: %+v", org)
	}
}

func TestDatasetFiltersAction(t *testing.T) {
	module := NewDatasetModule()
	subject := testUser("u-1", []string{"viewers"}, []string{ScopeDatasetQuery})

	d := module.Evaluate(subject, datasetResource("ds-1", AccessInternal), action("filters"))
	if !d.Allowed {
		t.Fatalf("filters action should always be allowed, got reason %q", d.Reason)
	}
	if len(d.Filters) == 0 {
		t.Error("expected filter predicates on the decision")
	}
}
