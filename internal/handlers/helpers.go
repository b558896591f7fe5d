package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/internal/services/auth"
)

// Shared helpers for all handlers.

// SubjectResolver builds the Subject for a request from its bearer token.
// A missing or invalid token resolves to the anonymous subject; the policy
// modules decide what anonymous callers may do.
type SubjectResolver struct {
	validator *auth.Validator
	extractor *auth.SubjectExtractor
}

// NewSubjectResolver creates a resolver over the given token validator.
func NewSubjectResolver(validator *auth.Validator) *SubjectResolver {
	return &SubjectResolver{
		validator: validator,
		extractor: auth.NewSubjectExtractor(),
	}
}

// Resolve classifies the request's caller.
func (s *SubjectResolver) Resolve(r *http.Request) *entities.Subject {
	token := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		return entities.Anonymous()
	}
	claims, err := s.validator.Validate(token)
	if err != nil {
		return entities.Anonymous()
	}
	return s.extractor.Extract(claims)
}

// requestID returns the caller-provided X-Request-Id, or a fresh UUID.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// sourceService returns the calling service identifier, if the caller
// supplied one.
func sourceService(r *http.Request) string {
	return r.Header.Get("X-Source-Service")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON decodes a request body, rejecting unknown shapes gracefully.
// Returns false after writing an error response.
func decodeJSON(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}
