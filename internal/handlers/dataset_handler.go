package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/internal/services"
)

// DatasetHandler serves the dataset convenience endpoints.
type DatasetHandler struct {
	decisions services.DecisionServiceInterface
	subjects  *SubjectResolver
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(decisions services.DecisionServiceInterface, subjects *SubjectResolver) *DatasetHandler {
	return &DatasetHandler{decisions: decisions, subjects: subjects}
}

// Register mounts the handler's routes.
func (h *DatasetHandler) Register(r *mux.Router) {
	r.HandleFunc("/dataset/access", h.Access).Methods(http.MethodPost)
	r.HandleFunc("/dataset/filters", h.Filters).Methods(http.MethodPost)
}

type datasetRequest struct {
	DatasetID   string `json:"dataset_id"`
	AccessLevel string `json:"access_level"`
	Action      string `json:"action"`
}

type datasetAccessResponse struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
}

type datasetFilterResponse struct {
	Allowed   bool                       `json:"allowed"`
	Filters   []entities.FilterPredicate `json:"filters"`
	Reason    string                     `json:"reason"`
	RequestID string                     `json:"request_id"`
}

// Access checks a dataset read/write/admin request.
func (h *DatasetHandler) Access(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req datasetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.evaluate(r, reqID, &req, req.Action)
	writeJSON(w, http.StatusOK, datasetAccessResponse{
		Allowed:   result.Decision.Allowed,
		Reason:    result.Decision.Reason,
		RequestID: reqID,
	})
}

// Filters computes the row-level filters restricting what this subject may
// see in the dataset. The computation narrows, it never denies.
func (h *DatasetHandler) Filters(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req datasetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.evaluate(r, reqID, &req, "filters")
	writeJSON(w, http.StatusOK, datasetFilterResponse{
		Allowed:   result.Decision.Allowed,
		Filters:   result.Decision.Filters,
		Reason:    result.Decision.Reason,
		RequestID: reqID,
	})
}

func (h *DatasetHandler) evaluate(r *http.Request, reqID string, req *datasetRequest, action string) *services.EvaluateResult {
	return h.decisions.Evaluate(r.Context(), &services.EvaluateRequest{
		RequestID: reqID,
		Subject:   h.subjects.Resolve(r),
		Resource: &entities.Resource{
			Type:       entities.ResourceDataset,
			ID:         req.DatasetID,
			Attributes: map[string]interface{}{"access_level": req.AccessLevel},
		},
		Action:        &entities.Action{Name: action},
		SourceService: sourceService(r),
	})
}
