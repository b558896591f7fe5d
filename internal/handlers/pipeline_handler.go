package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/internal/services"
	"github.com/celine-platform/policies/internal/services/policy"
)

// PipelineHandler serves pipeline transition checks and the static
// state-machine table.
type PipelineHandler struct {
	decisions services.DecisionServiceInterface
	subjects  *SubjectResolver
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(decisions services.DecisionServiceInterface, subjects *SubjectResolver) *PipelineHandler {
	return &PipelineHandler{decisions: decisions, subjects: subjects}
}

// Register mounts the handler's routes.
func (h *PipelineHandler) Register(r *mux.Router) {
	r.HandleFunc("/pipeline/transition", h.Transition).Methods(http.MethodPost)
	r.HandleFunc("/pipeline/states", h.States).Methods(http.MethodGet)
}

type pipelineTransitionRequest struct {
	PipelineID string `json:"pipeline_id"`
	FromState  string `json:"from_state"`
	ToState    string `json:"to_state"`
}

type pipelineTransitionResponse struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
}

// Transition checks whether the caller may drive a pipeline from one state
// to another. An invalid state-machine edge is denied before any
// authorization runs.
func (h *PipelineHandler) Transition(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req pipelineTransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.decisions.Evaluate(r.Context(), &services.EvaluateRequest{
		RequestID: reqID,
		Subject:   h.subjects.Resolve(r),
		Resource: &entities.Resource{
			Type: entities.ResourcePipeline,
			ID:   req.PipelineID,
		},
		Action: &entities.Action{
			Name: "transition",
			Context: map[string]interface{}{
				"from_state": req.FromState,
				"to_state":   req.ToState,
			},
		},
		SourceService: sourceService(r),
	})

	writeJSON(w, http.StatusOK, pipelineTransitionResponse{
		Allowed:   result.Decision.Allowed,
		Reason:    result.Decision.Reason,
		RequestID: reqID,
	})
}

// States returns all pipeline states and the valid transition table.
func (h *PipelineHandler) States(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"states":      policy.PipelineStates(),
		"transitions": policy.PipelineTransitions(),
	})
}
