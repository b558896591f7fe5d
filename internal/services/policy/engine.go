package policy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/celine-platform/policies/internal/entities"
	"github.com/celine-platform/policies/pkg/cache"
)

// EvaluatorInterface is the engine's single synchronous entry point.
type EvaluatorInterface interface {
	Evaluate(ctx context.Context, subject *entities.Subject, resource *entities.Resource, action *entities.Action) (*entities.Decision, bool)
}

// Engine wraps the policy router with the decision cache. The cache is
// purely an optimization: disabling it changes latency, never decisions.
type Engine struct {
	router   *Router
	cache    cache.Cache // nil disables caching
	cacheTTL time.Duration
}

// NewEngine creates an engine without caching.
func NewEngine(router *Router) *Engine {
	return &Engine{router: router}
}

// NewEngineWithCache creates an engine that memoizes decisions in c with
// the given TTL.
func NewEngineWithCache(router *Router, c cache.Cache, cacheTTL time.Duration) *Engine {
	return &Engine{router: router, cache: c, cacheTTL: cacheTTL}
}

// Evaluate decides (subject, resource, action), reading and populating the
// decision cache. The second return value reports whether the decision came
// from cache. Evaluation never panics across this boundary: an internal
// panic on a semantically odd input degrades to an invalid-request denial.
func (e *Engine) Evaluate(ctx context.Context, subject *entities.Subject, resource *entities.Resource, action *entities.Action) (decision *entities.Decision, cached bool) {
	defer func() {
		if r := recover(); r != nil {
			decision = entities.Deny(ReasonInvalidRequest)
			cached = false
		}
	}()

	if resource == nil || resource.Type == "" || action == nil || action.Name == "" {
		return entities.Deny(ReasonInvalidRequest), false
	}

	var key string
	if e.cache != nil {
		key = cacheKey(e.router.Route(resource.Type).Name(), subject, resource, action)
	}
	if key != "" {
		if v, found := e.cache.Get(ctx, key); found {
			if d, ok := v.(*entities.Decision); ok {
				return d, true
			}
		}
	}

	decision = e.router.Evaluate(subject, resource, action)

	if key != "" {
		// Entries are never mutated in place; a changed input produces a
		// new key.
		_ = e.cache.Set(ctx, key, decision, e.cacheTTL)
	}
	return decision, false
}

// InvalidateCache drops all cached decisions.
func (e *Engine) InvalidateCache(ctx context.Context) {
	if e.cache != nil {
		_ = e.cache.Clear(ctx)
	}
}

// CacheStats reports hit count, miss count, and current size for health
// and readiness reporting. All zeros when caching is disabled.
type CacheStats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// CacheStats returns the current decision cache statistics.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	m := e.cache.Metrics()
	return CacheStats{
		Hits:    m.Hits,
		Misses:  m.Misses,
		Size:    e.cache.Len(),
		HitRate: m.HitRate(),
	}
}

// cacheKeyInput is the canonical, deterministic form of an evaluation
// input. Every field that can affect a decision is part of it; maps are
// serialized with sorted keys by encoding/json and the set-valued fields
// are sorted copies.
type cacheKeyInput struct {
	Policy     string                 `json:"policy"`
	Kind       entities.SubjectKind   `json:"kind"`
	SubjectID  string                 `json:"subject_id"`
	Groups     []string               `json:"groups,omitempty"`
	Scopes     []string               `json:"scopes,omitempty"`
	Claims     map[string]interface{} `json:"claims,omitempty"`
	Type       string                 `json:"type"`
	ResourceID string                 `json:"resource_id"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Action     string                 `json:"action"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// cacheKey digests the full (policy, subject, resource, action) tuple.
func cacheKey(policy string, subject *entities.Subject, resource *entities.Resource, action *entities.Action) string {
	in := cacheKeyInput{
		Policy:     policy,
		Kind:       entities.SubjectAnonymous,
		Type:       resource.Type,
		ResourceID: resource.ID,
		Attributes: resource.Attributes,
		Action:     action.Name,
		Context:    action.Context,
	}
	if subject != nil {
		in.Kind = subject.Kind
		in.SubjectID = subject.ID
		in.Groups = sortedCopy(subject.Groups)
		in.Scopes = sortedCopy(subject.Scopes)
		in.Claims = subject.Claims
	}

	data, err := json.Marshal(&in)
	if err != nil {
		// Unmarshalable claim values make the input uncacheable.
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
