package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/internal/services"
)

// MqttHandler serves the mosquitto auth-backend endpoints: client
// authentication, topic ACL checks, and the superuser query.
type MqttHandler struct {
	decisions services.DecisionServiceInterface
	subjects  *SubjectResolver
}

// NewMqttHandler creates a new MqttHandler.
func NewMqttHandler(decisions services.DecisionServiceInterface, subjects *SubjectResolver) *MqttHandler {
	return &MqttHandler{decisions: decisions, subjects: subjects}
}

// Register mounts the handler's routes.
func (h *MqttHandler) Register(r *mux.Router) {
	r.HandleFunc("/mqtt/user", h.User).Methods(http.MethodPost)
	r.HandleFunc("/mqtt/acl", h.ACL).Methods(http.MethodPost)
	r.HandleFunc("/mqtt/superuser", h.Superuser).Methods(http.MethodPost)
}

type mqttACLRequest struct {
	Topic    string `json:"topic"`
	ClientID string `json:"clientid"`
	Acc      int    `json:"acc"`
}

type mqttResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

// accToActions converts the mosquitto acc bitmask to action names:
// 4=subscribe, 2=publish, 1=read.
func accToActions(acc int) []string {
	var actions []string
	if acc&0x04 != 0 {
		actions = append(actions, "subscribe")
	}
	if acc&0x02 != 0 {
		actions = append(actions, "publish")
	}
	if acc&0x01 != 0 {
		actions = append(actions, "read")
	}
	if len(actions) == 0 {
		return []string{"unknown"}
	}
	return actions
}

// User authenticates an MQTT client: a valid bearer token is enough to
// connect; topic access is decided per operation by ACL.
func (h *MqttHandler) User(w http.ResponseWriter, r *http.Request) {
	subject := h.subjects.Resolve(r)
	if subject.IsAnonymous() {
		writeJSON(w, http.StatusForbidden, mqttResponse{OK: false, Reason: "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, mqttResponse{OK: true, Reason: "authenticated"})
}

// ACL authorizes topic access. The acc bitmask may request several
// operations at once; all of them must be allowed.
func (h *MqttHandler) ACL(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req mqttACLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	subject := h.subjects.Resolve(r)
	for _, action := range accToActions(req.Acc) {
		result := h.decisions.Evaluate(r.Context(), &services.EvaluateRequest{
			RequestID: reqID,
			Subject:   subject,
			Resource: &entities.Resource{
				Type: entities.ResourceTopic,
				ID:   req.Topic,
			},
			Action:        &entities.Action{Name: action},
			SourceService: "mqtt-broker",
		})
		if !result.Decision.Allowed {
			writeJSON(w, http.StatusForbidden, mqttResponse{OK: false, Reason: result.Decision.Reason})
			return
		}
	}

	writeJSON(w, http.StatusOK, mqttResponse{OK: true, Reason: "authorized"})
}

// Superuser reports whether the client bypasses topic ACLs entirely.
func (h *MqttHandler) Superuser(w http.ResponseWriter, r *http.Request) {
	subject := h.subjects.Resolve(r)
	if subject.IsAnonymous() {
		writeJSON(w, http.StatusForbidden, mqttResponse{OK: false, Reason: "invalid credentials"})
		return
	}
	if h.decisions.IsSuperuser(subject) {
		writeJSON(w, http.StatusOK, mqttResponse{OK: true, Reason: "superuser"})
		return
	}
	writeJSON(w, http.StatusForbidden, mqttResponse{OK: false, Reason: "not superuser"})
}
