package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/celine-platform/policies/internal/services"
	"github.com/celine-platform/policies/internal/services/policy"
)

// HealthHandler serves liveness and readiness probes. Readiness reports
// decision cache statistics and the state of the ACL rule snapshot.
type HealthHandler struct {
	decisions services.DecisionServiceInterface
	rules     *policy.RuleStore // nil under the derived-scope strategy
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(decisions services.DecisionServiceInterface, rules *policy.RuleStore) *HealthHandler {
	return &HealthHandler{decisions: decisions, rules: rules}
}

// Register mounts the handler's routes.
func (h *HealthHandler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Ready).Methods(http.MethodGet)
}

// Health is the liveness probe.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready is the readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status": "ok",
		"cache":  h.decisions.CacheStats(),
	}
	if h.rules != nil {
		snapshot := h.rules.Snapshot()
		body["acl_rules"] = map[string]interface{}{
			"count":     snapshot.Len(),
			"loaded_at": snapshot.LoadedAt(),
		}
	}
	writeJSON(w, http.StatusOK, body)
}
