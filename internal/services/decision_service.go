package services

import (
	"context"
	"time"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/internal/infrastructure/metrics"
	"github.com/celine-platform/policies/internal/services/audit"
	"github.com/celine-platform/policies/internal/services/policy"
)

// DecisionServiceInterface is the evaluation entry point handlers depend on.
type DecisionServiceInterface interface {
	Evaluate(ctx context.Context, req *EvaluateRequest) *EvaluateResult
	IsSuperuser(subject *entities.Subject) bool
	CacheStats() policy.CacheStats
	InvalidateCache(ctx context.Context)
}

// EvaluateRequest carries one evaluation plus its audit context.
type EvaluateRequest struct {
	RequestID     string
	Subject       *entities.Subject
	Resource      *entities.Resource
	Action        *entities.Action
	SourceService string
}

// EvaluateResult is a decision with evaluation metadata.
type EvaluateResult struct {
	Decision      *entities.Decision
	Cached        bool
	LatencyMillis float64
}

// DecisionService centralizes evaluation, audit logging, and decision
// metrics around the policy engine.
type DecisionService struct {
	engine   *policy.Engine
	audit    *audit.Logger
	metrics  *metrics.Collector
	exporter *metrics.PrometheusExporter
}

// NewDecisionService creates a DecisionService. audit may not be nil;
// metrics and exporter are optional.
func NewDecisionService(engine *policy.Engine, auditLogger *audit.Logger, collector *metrics.Collector, exporter *metrics.PrometheusExporter) *DecisionService {
	return &DecisionService{
		engine:   engine,
		audit:    auditLogger,
		metrics:  collector,
		exporter: exporter,
	}
}

// Evaluate runs one policy evaluation, records it in the audit log, and
// updates decision metrics.
func (s *DecisionService) Evaluate(ctx context.Context, req *EvaluateRequest) *EvaluateResult {
	start := time.Now()
	decision, cached := s.engine.Evaluate(ctx, req.Subject, req.Resource, req.Action)
	latency := float64(time.Since(start).Microseconds()) / 1000.0

	s.audit.LogDecision(&entities.AuditRecord{
		RequestID:     req.RequestID,
		Subject:       req.Subject,
		Resource:      req.Resource,
		Action:        req.Action,
		Decision:      decision,
		LatencyMillis: latency,
		Cached:        cached,
		SourceService: req.SourceService,
	})

	if s.metrics != nil {
		s.metrics.RecordDecision(decision.Policy, decision.Allowed)
	}
	if s.exporter != nil {
		s.exporter.RecordDecision(decision.Policy, decision.Allowed)
		if cached {
			s.exporter.RecordCacheHit()
		} else {
			s.exporter.RecordCacheMiss()
		}
	}

	return &EvaluateResult{Decision: decision, Cached: cached, LatencyMillis: latency}
}

// IsSuperuser reports whether the subject bypasses MQTT topic ACLs.
func (s *DecisionService) IsSuperuser(subject *entities.Subject) bool {
	return policy.IsSuperuser(subject)
}

// CacheStats exposes decision cache statistics for readiness reporting.
func (s *DecisionService) CacheStats() policy.CacheStats {
	return s.engine.CacheStats()
}

// InvalidateCache drops all cached decisions.
func (s *DecisionService) InvalidateCache(ctx context.Context) {
	s.engine.InvalidateCache(ctx)
}
