package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

const sqlSynthesisPrompt = `You are a career assistant answering a question about a job-postings dataset.

USER QUESTION: %s

QUERY RESULTS:
%s

INSTRUCTIONS:
1. Answer the question directly using only the results above.
2. Quote the concrete numbers and mention how many rows the answer is based on.
3. If the results are empty or the query failed, say plainly that the data could not be retrieved. Never invent figures.
4. Answer in the language of the user question.`

// SQLAgent answers aggregate and filter questions about postings by
// proposing structured-query tool calls and summarizing the rows.
type SQLAgent struct {
	generator ai.Generator
	tool      string
	logger    *zap.Logger
}

// NewSQLAgent creates the structured-query agent. toolName is the registered
// name of the structured-query adapter.
func NewSQLAgent(generator ai.Generator, toolName string, logger *zap.Logger) *SQLAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLAgent{generator: generator, tool: toolName, logger: logger}
}

func (a *SQLAgent) Kind() Kind { return KindSQL }

func (a *SQLAgent) Describe() string {
	return "Answers questions needing exact numbers over job postings: counts, averages, salary ranges, filters by location or title."
}

func (a *SQLAgent) Step(ctx context.Context, turn *Turn) (*Action, error) {
	if len(turn.Observations) == 0 && !turn.ForceFinal {
		return &Action{ToolName: a.tool, ToolInput: turn.Input}, nil
	}
	return synthesize(ctx, a.generator, sqlSynthesisPrompt, turn, a.logger)
}

// synthesize produces the final answer from collected observations. It is
// shared by the tool-using agents; a turn whose observations all failed is
// answered honestly and flagged low confidence.
func synthesize(ctx context.Context, generator ai.Generator, promptTemplate string, turn *Turn, logger *zap.Logger) (*Action, error) {
	failed := len(turn.Observations) > 0
	var b strings.Builder
	for _, obs := range turn.Observations {
		if obs.Failed {
			fmt.Fprintf(&b, "[%s FAILED] %s\n", obs.Tool, obs.Err)
			continue
		}
		failed = false
		fmt.Fprintf(&b, "[%s]\n%s\n", obs.Tool, obs.Content)
	}
	results := strings.TrimSpace(b.String())
	if results == "" {
		results = "(no results)"
	}

	answer, err := generator.GenerateContent(ctx, fmt.Sprintf(promptTemplate, turn.Input, results))
	if err != nil {
		logger.Warn("synthesis failed, degrading to plain apology", zap.Error(err))
		return &Action{
			Final:   true,
			Content: "I could not complete that request right now. Please try again in a moment.",
			Payload: map[string]any{"low_confidence": true},
		}, nil
	}

	action := &Action{Final: true, Content: strings.TrimSpace(answer)}
	if failed {
		action.Payload = map[string]any{"low_confidence": true}
	}
	return action, nil
}
