package agent

import (
	"context"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

const retrievalSynthesisPrompt = `You are a career assistant recommending job postings.

USER QUESTION: %s

MATCHING POSTINGS:
%s

INSTRUCTIONS:
1. Recommend the most relevant postings from the matches above, citing each job's ID.
2. Briefly say why each one fits the request.
3. If there are no matches or retrieval failed, say so plainly. Never invent postings.
4. Answer in the language of the user question.`

// RetrievalAgent answers descriptive "jobs like this" requests by proposing
// semantic-search tool calls over the posting index.
type RetrievalAgent struct {
	generator ai.Generator
	tool      string
	logger    *zap.Logger
}

// NewRetrievalAgent creates the semantic-retrieval agent.
func NewRetrievalAgent(generator ai.Generator, toolName string, logger *zap.Logger) *RetrievalAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetrievalAgent{generator: generator, tool: toolName, logger: logger}
}

func (a *RetrievalAgent) Kind() Kind { return KindRetrieval }

func (a *RetrievalAgent) Describe() string {
	return "Finds postings matching a description of the desired role, responsibilities, or tech stack. Best for open-ended 'jobs like X' requests."
}

func (a *RetrievalAgent) Step(ctx context.Context, turn *Turn) (*Action, error) {
	if len(turn.Observations) == 0 && !turn.ForceFinal {
		return &Action{ToolName: a.tool, ToolInput: turn.Input}, nil
	}
	return synthesize(ctx, a.generator, retrievalSynthesisPrompt, turn, a.logger)
}
