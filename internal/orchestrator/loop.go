package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/thariqabe666/finalproj-group-2/internal/agent"
	"github.com/thariqabe666/finalproj-group-2/internal/logger"
	"github.com/thariqabe666/finalproj-group-2/internal/tool"
	"github.com/thariqabe666/finalproj-group-2/internal/tracing"

	"go.uber.org/zap"
)

// Loop runs one agent's reason/act cycle with bounded steps and a bounded
// tool retry budget. Tool failures come back as observations so the agent
// can answer honestly instead of aborting the turn.
type Loop struct {
	tools  map[string]tool.Tool
	config Config
	logger *zap.Logger
}

// NewLoop creates the reason/act loop over the registered tools.
func NewLoop(tools map[string]tool.Tool, config Config, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{tools: tools, config: config.WithDefaults(), logger: logger}
}

// Run drives the agent to a final action. It always terminates: at most
// MaxSteps agent steps, then one forced final synthesis.
func (l *Loop) Run(ctx context.Context, a agent.Agent, turn *agent.Turn, trace *tracing.TurnTrace) (*agent.Action, error) {
	for step := 0; step < l.config.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		action, err := l.step(ctx, a, turn, trace)
		if err != nil {
			return nil, err
		}
		if action.Final {
			return action, nil
		}

		l.invokeTool(ctx, action, turn, trace)
	}

	// Step budget exhausted; demand a final answer from what was gathered.
	l.logger.Warn("step budget exhausted, forcing final answer",
		zap.String("agent", string(a.Kind())),
		zap.Int("max_steps", l.config.MaxSteps),
	)

	turn.ForceFinal = true
	action, err := l.step(ctx, a, turn, trace)
	if err != nil {
		return nil, err
	}
	if !action.Final {
		return nil, fmt.Errorf("agent %s refused to finalize", a.Kind())
	}
	if action.Payload == nil {
		action.Payload = map[string]any{}
	}
	action.Payload["low_confidence"] = true
	return action, nil
}

func (l *Loop) step(ctx context.Context, a agent.Agent, turn *agent.Turn, trace *tracing.TurnTrace) (*agent.Action, error) {
	stepCtx, cancel := context.WithTimeout(ctx, l.config.CallTimeout)
	defer cancel()

	started := time.Now()
	action, err := a.Step(stepCtx, turn)
	if err != nil {
		trace.Add(tracing.StepTrace{
			Kind:    "agent_step",
			Agent:   string(a.Kind()),
			Error:   err.Error(),
			Latency: time.Since(started),
		})
		return nil, err
	}

	kind := "tool_proposal"
	if action.Final {
		kind = "final_answer"
	}
	trace.Add(tracing.StepTrace{
		Kind:    kind,
		Agent:   string(a.Kind()),
		Tool:    action.ToolName,
		Output:  logger.TruncateForLog(action.Content, 500),
		Latency: time.Since(started),
	})
	return action, nil
}

// invokeTool executes a proposed tool call with retries and appends the
// outcome to the turn's observations.
func (l *Loop) invokeTool(ctx context.Context, action *agent.Action, turn *agent.Turn, trace *tracing.TurnTrace) {
	selected, ok := l.tools[action.ToolName]
	if !ok {
		turn.Observations = append(turn.Observations, agent.Observation{
			Tool:   action.ToolName,
			Failed: true,
			Err:    fmt.Sprintf("unknown tool %q", action.ToolName),
		})
		return
	}

	var lastErr error
	for attempt := 0; attempt <= l.config.ToolRetries; attempt++ {
		started := time.Now()
		result, err := l.invokeOnce(ctx, selected, action.ToolInput)
		latency := time.Since(started)

		if err == nil {
			trace.Add(tracing.StepTrace{
				Kind:    "tool_call",
				Tool:    selected.Name(),
				Input:   logger.TruncateForLog(action.ToolInput, 200),
				Output:  logger.TruncateForLog(result.Content, 500),
				Attempt: attempt + 1,
				Latency: latency,
				Meta:    result.Meta,
			})
			turn.Observations = append(turn.Observations, agent.Observation{
				Tool:    selected.Name(),
				Content: result.Content,
			})
			return
		}

		lastErr = err
		trace.Add(tracing.StepTrace{
			Kind:    "tool_call",
			Tool:    selected.Name(),
			Input:   logger.TruncateForLog(action.ToolInput, 200),
			Error:   err.Error(),
			Attempt: attempt + 1,
			Latency: latency,
		})
		l.logger.Warn("tool invocation failed",
			zap.String("tool", selected.Name()),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	turn.Observations = append(turn.Observations, agent.Observation{
		Tool:   selected.Name(),
		Failed: true,
		Err:    lastErr.Error(),
	})
}

// invokeOnce bounds a single tool attempt so a hung adapter cannot stall
// the turn past the configured call timeout.
func (l *Loop) invokeOnce(ctx context.Context, selected tool.Tool, input string) (*tool.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, l.config.CallTimeout)
	defer cancel()
	return selected.Invoke(callCtx, input)
}
