package policy

import (
	"fmt"

	"github.com/celine-platform/policies/internal/entities"
)

// Scopes recognized by the pipeline policy.
const (
	ScopePipelineExecute = "pipeline.execute"
	ScopePipelineAdmin   = "pipeline.admin"
)

// Pipeline states. Completed is terminal: no outgoing transitions exist,
// for any subject.
const (
	StatePending   = "pending"
	StateStarted   = "started"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateCancelled = "cancelled"
)

// pipelineTransitions is the static state machine: state -> valid targets.
var pipelineTransitions = map[string][]string{
	StatePending:   {StateStarted, StateCancelled},
	StateStarted:   {StateRunning, StateFailed, StateCancelled},
	StateRunning:   {StateCompleted, StateFailed, StateCancelled},
	StateCompleted: {},
	StateFailed:    {StatePending},
	StateCancelled: {StatePending},
}

// userTargetLevels is the group-conditioned target allowlist for user
// subjects: the minimum group level required to drive a pipeline into each
// state. Targets absent here (completed, failed) are admin-only for users.
var userTargetLevels = map[string]int{
	StateStarted:   LevelEditor,
	StateRunning:   LevelEditor,
	StateCancelled: LevelManager,
	StatePending:   LevelManager,
}

// serviceExecuteTargets are the states a service holding only
// pipeline.execute may drive a pipeline into.
var serviceExecuteTargets = map[string]bool{
	StateStarted:   true,
	StateRunning:   true,
	StateCompleted: true,
	StateFailed:    true,
}

// PipelineStates returns all pipeline states in their canonical order.
func PipelineStates() []string {
	return []string{StatePending, StateStarted, StateRunning, StateCompleted, StateFailed, StateCancelled}
}

// PipelineTransitions returns the valid transition table.
func PipelineTransitions() map[string][]string {
	out := make(map[string][]string, len(pipelineTransitions))
	for from, targets := range pipelineTransitions {
		out[from] = append([]string(nil), targets...)
	}
	return out
}

// IsValidTransition reports whether from -> to is an edge of the pipeline
// state machine.
func IsValidTransition(from, to string) bool {
	for _, target := range pipelineTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// PipelineModule decides pipeline reads and state transitions.
//
// A transition must be a valid state-machine edge before any authorization
// runs: an authorized-but-invalid transition is still denied, with a reason
// distinct from insufficient privileges.
type PipelineModule struct{}

// NewPipelineModule creates the pipeline policy module.
func NewPipelineModule() *PipelineModule {
	return &PipelineModule{}
}

// Name implements Module.
func (m *PipelineModule) Name() string { return "celine.pipeline.state" }

// Evaluate implements Module.
func (m *PipelineModule) Evaluate(subject *entities.Subject, resource *entities.Resource, action *entities.Action) *entities.Decision {
	switch action.Name {
	case "read":
		if subject.IsAnonymous() {
			return decide(m, entities.Deny(ReasonAnonymousDenied))
		}
		return decide(m, entities.Allow(ReasonAuthorized))
	case "transition":
		return decide(m, m.evaluateTransition(subject, action))
	}
	return decide(m, entities.Deny(ReasonInvalidRequest))
}

func (m *PipelineModule) evaluateTransition(subject *entities.Subject, action *entities.Action) *entities.Decision {
	from := action.StringContext("from_state")
	to := action.StringContext("to_state")
	if _, ok := pipelineTransitions[from]; !ok {
		return entities.Deny(ReasonInvalidRequest)
	}
	if _, ok := pipelineTransitions[to]; !ok {
		return entities.Deny(ReasonInvalidRequest)
	}

	if !IsValidTransition(from, to) {
		return entities.Deny(fmt.Sprintf("invalid transition from %s to %s", from, to))
	}

	if subject.IsAnonymous() {
		return entities.Deny(ReasonAnonymousDenied)
	}

	if !HasAnyScope(subject, ScopePipelineExecute, ScopePipelineAdmin) {
		return entities.Deny(ReasonMissingScope)
	}

	if subject.IsUser() {
		required, ok := userTargetLevels[to]
		if !ok {
			required = LevelAdmin
		}
		if !HasGroupLevel(subject, required) {
			return entities.Deny(ReasonInsufficientGroup)
		}
		return entities.Allow(ReasonAuthorized)
	}

	// Service subjects: pipeline.admin is unrestricted, pipeline.execute is
	// limited to the execution lifecycle states.
	if HasScope(subject, ScopePipelineAdmin) {
		return entities.Allow(ReasonAuthorized)
	}
	if !serviceExecuteTargets[to] {
		return entities.Deny(ReasonInsufficientScope)
	}
	return entities.Allow(ReasonAuthorized)
}
