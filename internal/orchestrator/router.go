package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/thariqabe666/finalproj-group-2/internal/agent"
	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

const routerPrompt = `You are the router of a career assistant. Pick the single best agent for the user's message.

AGENTS:
%s

Routing rules:
1. Questions asking for exact numbers, counts, averages, or filtered lists over job postings go to "sql".
2. Descriptive requests to find or match jobs by meaning go to "retrieval". When a message fits both, prefer "sql" if it needs a computed number and "retrieval" otherwise.
3. If no agent clearly fits, answer with agent "none" and one short clarifying question asking what the user wants.

CONVERSATION SO FAR:
%s

USER MESSAGE: %s

Respond with ONLY a JSON object:
{"agent": "<sql|retrieval|advisor|cover_letter|none>", "clarify": "<question when agent is none, else empty>"}`

// routeDecision is the router's parsed verdict.
type routeDecision struct {
	Agent   string `mapstructure:"agent"`
	Clarify string `mapstructure:"clarify"`
}

// Router selects one capability agent per turn. Its choice set is closed:
// anything outside the registered kinds becomes a clarifying question, never
// a guessed dispatch.
type Router struct {
	generator ai.Generator
	agents    map[agent.Kind]agent.Agent
	retries   int
	logger    *zap.Logger
}

// NewRouter creates a router over the registered agents. The routing call
// retries transient service failures up to config.ServiceRetries times.
func NewRouter(generator ai.Generator, agents map[agent.Kind]agent.Agent, config Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		generator: generator,
		agents:    agents,
		retries:   config.WithDefaults().ServiceRetries,
		logger:    logger,
	}
}

// Route picks the agent for input. A nil agent with a non-empty clarify
// string means the turn should answer with that question instead.
func (r *Router) Route(ctx context.Context, input, history string) (agent.Agent, string, error) {
	raw, err := ai.Retry(ctx, r.logger, r.retries, func(ctx context.Context) (string, error) {
		return r.generator.GenerateContent(ctx, fmt.Sprintf(routerPrompt, r.capabilities(), history, input))
	})
	if err != nil {
		return nil, "", fmt.Errorf("routing: %w", err)
	}

	decision, err := parseRoute(raw)
	if err != nil {
		r.logger.Warn("unparseable routing verdict", zap.String("raw", raw), zap.Error(err))
		return nil, clarifyFallback, nil
	}

	kind := agent.Kind(strings.ToLower(strings.TrimSpace(decision.Agent)))
	if !kind.Valid() {
		clarify := strings.TrimSpace(decision.Clarify)
		if clarify == "" {
			clarify = clarifyFallback
		}
		r.logger.Debug("no agent matched", zap.String("verdict", decision.Agent))
		return nil, clarify, nil
	}

	selected, ok := r.agents[kind]
	if !ok {
		return nil, clarifyFallback, nil
	}

	r.logger.Debug("routed", zap.String("agent", string(kind)))
	return selected, "", nil
}

const clarifyFallback = "I can query job statistics, find matching postings, analyze your fit for a role, or draft a cover letter. Which of these do you need?"

func (r *Router) capabilities() string {
	kinds := make([]string, 0, len(r.agents))
	for kind := range r.agents {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	var b strings.Builder
	for _, kind := range kinds {
		fmt.Fprintf(&b, "- %s: %s\n", kind, r.agents[agent.Kind(kind)].Describe())
	}
	return strings.TrimSpace(b.String())
}

func parseRoute(raw string) (*routeDecision, error) {
	data, err := ai.UnmarshalLoose(raw)
	if err != nil {
		return nil, err
	}

	var decision routeDecision
	if err := mapstructure.Decode(data, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}
