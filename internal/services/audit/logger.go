// Package audit emits one structured record per policy decision.
package audit

import (
	"log/slog"
	"time"

	"github.com/celine-platform/policies/internal/entities"
)

// Logger writes decision and error records through slog. Denials log at
// Warn so operators can alert on them without parsing.
type Logger struct {
	enabled   bool
	logInputs bool
	logger    *slog.Logger
}

// Config controls audit output.
type Config struct {
	// Enabled turns audit logging on.
	Enabled bool

	// LogInputs includes the full subject/resource/action in each record.
	// Disable when inputs carry sensitive claims.
	LogInputs bool
}

// NewLogger creates an audit logger. A nil slog logger uses the default.
func NewLogger(cfg Config, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		enabled:   cfg.Enabled,
		logInputs: cfg.LogInputs,
		logger:    logger.With("component", "audit"),
	}
}

// LogDecision records a policy decision and returns the audit record.
func (l *Logger) LogDecision(record *entities.AuditRecord) *entities.AuditRecord {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	if !l.enabled {
		return record
	}

	attrs := []any{
		"event", "policy_decision",
		"request_id", record.RequestID,
		"allowed", record.Decision.Allowed,
		"policy", record.Decision.Policy,
		"reason", record.Decision.Reason,
		"latency_ms", record.LatencyMillis,
		"cached", record.Cached,
	}
	if record.Subject != nil && !record.Subject.IsAnonymous() {
		attrs = append(attrs, "subject_id", record.Subject.ID, "subject_kind", string(record.Subject.Kind))
	} else {
		attrs = append(attrs, "subject_kind", string(entities.SubjectAnonymous))
	}
	if record.Resource != nil {
		attrs = append(attrs, "resource_type", record.Resource.Type, "resource_id", record.Resource.ID)
	}
	if record.Action != nil {
		attrs = append(attrs, "action", record.Action.Name)
	}
	if record.SourceService != "" {
		attrs = append(attrs, "source_service", record.SourceService)
	}
	if l.logInputs {
		attrs = append(attrs, "input", inputGroup(record))
	}

	if record.Decision.Allowed {
		l.logger.Info("policy decision", attrs...)
	} else {
		l.logger.Warn("policy decision", attrs...)
	}
	return record
}

// LogError records a failed evaluation attempt.
func (l *Logger) LogError(requestID string, err error, resource *entities.Resource, action *entities.Action) {
	if !l.enabled {
		return
	}
	attrs := []any{
		"event", "policy_error",
		"request_id", requestID,
		"error", err.Error(),
	}
	if resource != nil {
		attrs = append(attrs, "resource_type", resource.Type, "resource_id", resource.ID)
	}
	if action != nil {
		attrs = append(attrs, "action", action.Name)
	}
	l.logger.Error("policy error", attrs...)
}

func inputGroup(record *entities.AuditRecord) slog.Value {
	attrs := make([]slog.Attr, 0, 3)
	if record.Subject != nil {
		attrs = append(attrs, slog.Group("subject",
			slog.String("id", record.Subject.ID),
			slog.String("kind", string(record.Subject.Kind)),
			slog.Any("groups", record.Subject.Groups),
			slog.Any("scopes", record.Subject.Scopes),
		))
	}
	if record.Resource != nil {
		attrs = append(attrs, slog.Group("resource",
			slog.String("type", record.Resource.Type),
			slog.String("id", record.Resource.ID),
			slog.Any("attributes", record.Resource.Attributes),
		))
	}
	if record.Action != nil {
		attrs = append(attrs, slog.Group("action",
			slog.String("name", record.Action.Name),
			slog.Any("context", record.Action.Context),
		))
	}
	return slog.GroupValue(attrs...)
}
