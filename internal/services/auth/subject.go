package auth

import (
	"strings"

	"github.com/celine-platform/policies/internal/entities"
)

// SubjectExtractor classifies decoded identity claims into a Subject.
//
// Keycloak-style claim mapping: a client_id claim marks a service account,
// a sub claim a human user, groups come from the groups claim (users only),
// and scopes from the space-separated scope claim. The classification is
// total: every claim set maps to exactly one of user or service, and no
// claims at all means anonymous.
type SubjectExtractor struct {
	groupsClaim   string
	scopeClaim    string
	clientIDClaim string
}

// NewSubjectExtractor creates an extractor with the default claim names.
func NewSubjectExtractor() *SubjectExtractor {
	return &SubjectExtractor{
		groupsClaim:   "groups",
		scopeClaim:    "scope",
		clientIDClaim: "client_id",
	}
}

// Extract builds a Subject from decoded token claims. nil claims yield the
// anonymous subject.
func (e *SubjectExtractor) Extract(claims map[string]interface{}) *entities.Subject {
	if claims == nil {
		return entities.Anonymous()
	}

	clientID, _ := claims[e.clientIDClaim].(string)
	sub, _ := claims["sub"].(string)

	// A machine identifier with no human subject identifier is a service
	// account; anything carrying a human subject identifier is a user.
	if clientID != "" && sub == "" {
		return &entities.Subject{
			Kind:   entities.SubjectService,
			ID:     clientID,
			Scopes: e.extractScopes(claims),
			Claims: claims,
		}
	}
	if sub == "" && clientID == "" {
		return entities.Anonymous()
	}

	id := sub
	if id == "" {
		id = clientID
	}
	return &entities.Subject{
		Kind:   entities.SubjectUser,
		ID:     id,
		Groups: e.extractGroups(claims),
		Scopes: e.extractScopes(claims),
		Claims: claims,
	}
}

// extractGroups normalizes group memberships: Keycloak reports full paths
// like "/org/admins"; policies match on the short name "admins".
func (e *SubjectExtractor) extractGroups(claims map[string]interface{}) []string {
	raw, ok := claims[e.groupsClaim].([]interface{})
	if !ok {
		if typed, ok := claims[e.groupsClaim].([]string); ok {
			raw = make([]interface{}, len(typed))
			for i, g := range typed {
				raw[i] = g
			}
		} else {
			return nil
		}
	}

	groups := make([]string, 0, len(raw))
	for _, item := range raw {
		g, ok := item.(string)
		if !ok {
			continue
		}
		parts := strings.Split(strings.Trim(g, "/"), "/")
		if name := parts[len(parts)-1]; name != "" {
			groups = append(groups, name)
		}
	}
	return groups
}

// extractScopes splits the OAuth 2.0 space-separated scope string; a list
// shape from non-standard providers is accepted too.
func (e *SubjectExtractor) extractScopes(claims map[string]interface{}) []string {
	switch raw := claims[e.scopeClaim].(type) {
	case string:
		return strings.Fields(raw)
	case []string:
		return append([]string(nil), raw...)
	case []interface{}:
		scopes := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				scopes = append(scopes, s)
			}
		}
		return scopes
	}
	return nil
}

// ExtractSubjectFromClaims classifies claims with the default claim names.
func ExtractSubjectFromClaims(claims map[string]interface{}) *entities.Subject {
	return NewSubjectExtractor().Extract(claims)
}
