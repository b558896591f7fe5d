package policy

import (
	"strings"

	"github.com/celine-platform/policies/internal/entities"
)

// ScopeMatches reports whether a held capability string satisfies a required one.
//
// Three rules, at most one of which fires per pair:
//   - exact equality
//   - admin override: "dt.admin" satisfies any "dt.{...}" requirement
//   - trailing wildcard: "dt.values.*" satisfies any "dt.values.{...}" requirement
func ScopeMatches(held, required string) bool {
	if held == required {
		return true
	}
	if prefix, ok := strings.CutSuffix(held, ".admin"); ok {
		return strings.HasPrefix(required, prefix+".")
	}
	if prefix, ok := strings.CutSuffix(held, "*"); ok && strings.HasSuffix(prefix, ".") {
		return strings.HasPrefix(required, prefix)
	}
	return false
}

// HasScope reports whether any scope held by the subject satisfies required.
// A nil subject or an absent scope list never matches.
func HasScope(subject *entities.Subject, required string) bool {
	if subject == nil {
		return false
	}
	for _, held := range subject.Scopes {
		if ScopeMatches(held, required) {
			return true
		}
	}
	return false
}

// HasAnyScope reports whether the subject satisfies at least one of the
// required scopes.
func HasAnyScope(subject *entities.Subject, required ...string) bool {
	for _, r := range required {
		if HasScope(subject, r) {
			return true
		}
	}
	return false
}
