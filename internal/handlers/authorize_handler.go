package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/internal/services"
)

// AuthorizeHandler serves the generic /authorize endpoint: any resource
// type, routed to its policy module (or the service-only fallback).
type AuthorizeHandler struct {
	decisions services.DecisionServiceInterface
	subjects  *SubjectResolver
}

// NewAuthorizeHandler creates a new AuthorizeHandler.
func NewAuthorizeHandler(decisions services.DecisionServiceInterface, subjects *SubjectResolver) *AuthorizeHandler {
	return &AuthorizeHandler{decisions: decisions, subjects: subjects}
}

// Register mounts the handler's routes.
func (h *AuthorizeHandler) Register(r *mux.Router) {
	r.HandleFunc("/authorize", h.Authorize).Methods(http.MethodPost)
	r.HandleFunc("/cache/invalidate", h.InvalidateCache).Methods(http.MethodPost)
}

// authorizeRequest is the wire shape of an authorization query.
type authorizeRequest struct {
	Resource struct {
		Type       string                 `json:"type"`
		ID         string                 `json:"id"`
		Attributes map[string]interface{} `json:"attributes"`
	} `json:"resource"`
	Action struct {
		Name    string                 `json:"name"`
		Context map[string]interface{} `json:"context"`
	} `json:"action"`
}

// authorizeResponse is the wire shape of a decision.
type authorizeResponse struct {
	Allowed   bool                       `json:"allowed"`
	Reason    string                     `json:"reason"`
	Filters   []entities.FilterPredicate `json:"filters,omitempty"`
	Cached    bool                       `json:"cached"`
	RequestID string                     `json:"request_id"`
}

// Authorize evaluates a (subject, resource, action) triple. The subject
// comes from the bearer token; the triple is never an error, only a
// decision.
func (h *AuthorizeHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req authorizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.decisions.Evaluate(r.Context(), &services.EvaluateRequest{
		RequestID: reqID,
		Subject:   h.subjects.Resolve(r),
		Resource: &entities.Resource{
			Type:       req.Resource.Type,
			ID:         req.Resource.ID,
			Attributes: req.Resource.Attributes,
		},
		Action: &entities.Action{
			Name:    req.Action.Name,
			Context: req.Action.Context,
		},
		SourceService: sourceService(r),
	})

	writeJSON(w, http.StatusOK, authorizeResponse{
		Allowed:   result.Decision.Allowed,
		Reason:    result.Decision.Reason,
		Filters:   result.Decision.Filters,
		Cached:    result.Cached,
		RequestID: reqID,
	})
}

// InvalidateCache clears the decision cache. Rule reloads and permission
// changes take effect immediately afterwards.
func (h *AuthorizeHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.decisions.InvalidateCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}
