package agent

import (
	"context"

	"github.com/thariqabe666/finalproj-group-2/internal/profile"
)

// Kind identifies a capability agent. The set is closed; the router may only
// select one of these.
type Kind string

const (
	KindSQL         Kind = "sql"
	KindRetrieval   Kind = "retrieval"
	KindAdvisor     Kind = "advisor"
	KindCoverLetter Kind = "cover_letter"
)

// Kinds lists every routable agent kind.
func Kinds() []Kind {
	return []Kind{KindSQL, KindRetrieval, KindAdvisor, KindCoverLetter}
}

// Valid reports whether k belongs to the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindSQL, KindRetrieval, KindAdvisor, KindCoverLetter:
		return true
	}
	return false
}

// Observation is the outcome of one tool invocation fed back to the agent.
// Failures are observations too, so the agent can reformulate or give up
// honestly instead of aborting the turn.
type Observation struct {
	Tool    string
	Content string
	Err     string
	Failed  bool
}

// Turn is the working state the agent sees on each step.
type Turn struct {
	Input        string
	History      string
	Profile      *profile.Summary
	Observations []Observation
	// ForceFinal demands a final answer on this step; the agent must not
	// propose another tool call.
	ForceFinal bool
}

// Action is the agent's decision for one step: either a tool call proposal
// or a final user-facing answer.
type Action struct {
	Final     bool
	Content   string
	Payload   map[string]any
	ToolName  string
	ToolInput string
}

// Agent is one capability behind the router. Step never invokes tools
// itself; it proposes calls and the orchestration loop executes them.
type Agent interface {
	Kind() Kind
	Describe() string
	Step(ctx context.Context, turn *Turn) (*Action, error)
}
