package policy

import (
	"testing"

	"github.com/celine-platform/policies/internal/entities"
)

func TestGroupLevel(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   int
	}{
		{"no groups", nil, LevelNone},
		{"unrecognized groups", []string{"devops", "qa"}, LevelNone},
		{"single group", []string{"viewers"}, LevelViewer},
		{"highest membership wins", []string{"viewers", "managers", "editors"}, LevelManager},
		{"admins", []string{"admins"}, LevelAdmin},
		{"mixed recognized and unrecognized", []string{"qa", "editors"}, LevelEditor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupLevel(tt.groups); got != tt.want {
				t.Errorf("GroupLevel(%v) = %d, want %d", tt.groups, got, tt.want)
			}
		})
	}
}

func TestHasGroupLevel(t *testing.T) {
	editor := testUser("u-1", []string{"editors"}, nil)

	if !HasGroupLevel(editor, LevelViewer) {
		t.Error("editor should satisfy the viewer level")
	}
	if !HasGroupLevel(editor, LevelEditor) {
		t.Error("editor should satisfy the editor level")
	}
	if HasGroupLevel(editor, LevelManager) {
		t.Error("editor should not satisfy the manager level")
	}
}

func TestHasGroupLevelNonUserSubjects(t *testing.T) {
	// Group rules never fire for services or anonymous subjects, even when
	// they carry group-shaped data.
	service := &entities.Subject{
		Kind:   entities.SubjectService,
		ID:     "svc-1",
		Groups: []string{"admins"},
	}
	if HasGroupLevel(service, LevelViewer) {
		t.Error("group rules must not fire for service subjects")
	}
	anon := entities.Anonymous()
	anon.Groups = []string{"admins"}
	if HasGroupLevel(anon, LevelViewer) {
		t.Error("group rules must not fire for anonymous subjects")
	}
}
