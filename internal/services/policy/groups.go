package policy

import "github.com/celine-platform/policies/internal/entities"

// Group privilege levels, strictly ordered. Membership in no recognized
// group implies LevelNone.
const (
	LevelNone    = 0
	LevelViewer  = 1
	LevelEditor  = 2
	LevelManager = 3
	LevelAdmin   = 4
)

// groupLevels maps recognized group names to privilege levels.
var groupLevels = map[string]int{
	"viewers":  LevelViewer,
	"editors":  LevelEditor,
	"managers": LevelManager,
	"admins":   LevelAdmin,
}

// GroupLevel returns the maximum privilege level implied by any membership.
func GroupLevel(groups []string) int {
	level := LevelNone
	for _, g := range groups {
		if l, ok := groupLevels[g]; ok && l > level {
			level = l
		}
	}
	return level
}

// HasGroupLevel reports whether the subject is a user whose group level is at
// least required. Group-based rules never fire for service or anonymous
// subjects, regardless of any group-shaped data they carry.
func HasGroupLevel(subject *entities.Subject, required int) bool {
	if !subject.IsUser() {
		return false
	}
	return GroupLevel(subject.Groups) >= required
}
