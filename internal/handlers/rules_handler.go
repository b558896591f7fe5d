package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/celine-platform/policies/internal/services"
	"github.com/celine-platform/policies/internal/services/policy"
)

// RulesHandler serves the ACL rule reload endpoint. Mounted only under the
// rule-list MQTT strategy.
type RulesHandler struct {
	rules     *policy.RuleStore
	path      string
	decisions services.DecisionServiceInterface
}

// NewRulesHandler creates a new RulesHandler reloading from path.
func NewRulesHandler(rules *policy.RuleStore, path string, decisions services.DecisionServiceInterface) *RulesHandler {
	return &RulesHandler{rules: rules, path: path, decisions: decisions}
}

// Register mounts the handler's routes.
func (h *RulesHandler) Register(r *mux.Router) {
	r.HandleFunc("/rules/reload", h.Reload).Methods(http.MethodPost)
}

// Reload re-reads the ACL rule file and installs it as the active snapshot.
// A broken file leaves the active snapshot untouched and reports the error.
// On success the decision cache is invalidated so the new rules take effect
// immediately.
func (h *RulesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.rules.LoadFile(h.path); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status": "rejected",
			"error":  err.Error(),
			"active": h.rules.Snapshot().Len(),
		})
		return
	}

	h.decisions.InvalidateCache(r.Context())

	snapshot := h.rules.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "reloaded",
		"count":     snapshot.Len(),
		"loaded_at": snapshot.LoadedAt(),
	})
}
