package orchestrator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/thariqabe666/finalproj-group-2/internal/agent"
	"github.com/thariqabe666/finalproj-group-2/internal/ai"
	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/logger"
	"github.com/thariqabe666/finalproj-group-2/internal/profile"
	"github.com/thariqabe666/finalproj-group-2/internal/session"
	"github.com/thariqabe666/finalproj-group-2/internal/tracing"

	"go.uber.org/zap"
)

// Config carries the orchestration tunables. Bounds are configuration, not
// contract; WithDefaults fills unset fields.
type Config struct {
	// MaxSteps caps the reason/act cycle per turn.
	MaxSteps int `mapstructure:"max-steps"`
	// ToolRetries is the extra attempts after a failed tool call.
	ToolRetries int `mapstructure:"tool-retries"`
	// ServiceRetries is the extra attempts for reasoning-service calls.
	ServiceRetries int `mapstructure:"service-retries"`
	// CallTimeout bounds each agent step and tool invocation.
	CallTimeout time.Duration `mapstructure:"call-timeout"`
	// HistoryWindow is how many recent messages routing and agents see.
	HistoryWindow int `mapstructure:"history-window"`
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = 5
	}
	if c.ToolRetries <= 0 {
		c.ToolRetries = 2
	}
	if c.ServiceRetries <= 0 {
		c.ServiceRetries = 2
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 60 * time.Second
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 10
	}
	return c
}

// Reply is the outcome of one processed turn.
type Reply struct {
	SessionID string         `json:"session_id"`
	AgentID   string         `json:"agent_id,omitempty"`
	Content   string         `json:"content"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Orchestrator is the engine core: it serializes turns per session, routes
// each message to one agent or the interview machine, drives the reason/act
// loop, and records a trace of every turn.
type Orchestrator struct {
	router    *Router
	loop      *Loop
	agents    map[agent.Kind]agent.Agent
	machine   *interview.Machine
	sessions  *session.Manager
	sink      tracing.Sink
	generator ai.Generator
	config    Config
	logger    *zap.Logger
}

// Deps carries the orchestrator's collaborators.
type Deps struct {
	Router    *Router
	Loop      *Loop
	Agents    map[agent.Kind]agent.Agent
	Machine   *interview.Machine
	Sessions  *session.Manager
	Sink      tracing.Sink
	Generator ai.Generator
	Logger    *zap.Logger
}

// New creates the orchestrator.
func New(deps *Deps, config Config) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sink := deps.Sink
	if sink == nil {
		sink = tracing.NopSink{}
	}
	return &Orchestrator{
		router:    deps.Router,
		loop:      deps.Loop,
		agents:    deps.Agents,
		machine:   deps.Machine,
		sessions:  deps.Sessions,
		sink:      sink,
		generator: deps.Generator,
		config:    config.WithDefaults(),
		logger:    log,
	}
}

// HandleTurn processes one user message. Turns within a session are strictly
// serialized; turns across sessions run in parallel. While an interview is
// active every message is treated as an interview answer.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, input string) (*Reply, error) {
	input = strings.TrimSpace(input)

	s := o.sessions.GetOrCreate(sessionID)
	s.LockTurn()
	defer s.UnlockTurn()

	trace := &tracing.TurnTrace{SessionID: s.ID, Input: input, StartedAt: time.Now().UTC()}
	defer o.record(trace)

	if input == "" {
		trace.Agent = "none"
		trace.Add(tracing.StepTrace{Kind: "clarify", Output: clarifyFallback})
		return o.reply(s, trace, "", clarifyFallback, nil), nil
	}

	s.Append(session.Message{Role: session.RoleUser, Content: input})

	if s.InterviewActive() {
		return o.interviewTurn(ctx, s, input, trace)
	}

	history := o.renderHistory(s)

	started := time.Now()
	selected, clarify, err := o.router.Route(ctx, input, history)
	if err != nil {
		return o.degraded(s, trace, err), nil
	}

	if selected == nil {
		trace.Agent = "none"
		trace.Add(tracing.StepTrace{Kind: "clarify", Output: clarify, Latency: time.Since(started)})
		return o.reply(s, trace, "", clarify, nil), nil
	}

	trace.Agent = string(selected.Kind())
	trace.Add(tracing.StepTrace{Kind: "route", Agent: trace.Agent, Latency: time.Since(started)})

	turn := &agent.Turn{Input: input, History: history, Profile: s.Profile()}
	action, err := o.loop.Run(ctx, selected, turn, trace)
	if err != nil {
		return o.degraded(s, trace, err), nil
	}

	return o.reply(s, trace, string(selected.Kind()), action.Content, action.Payload), nil
}

// degraded converts an engine fault into a user-visible low-confidence
// answer. A chat turn never surfaces a bare error to the user.
func (o *Orchestrator) degraded(s *session.Session, trace *tracing.TurnTrace, cause error) *Reply {
	o.logger.Error("turn degraded", zap.String("session_id", s.ID), zap.Error(cause))
	trace.Add(tracing.StepTrace{Kind: "degraded", Error: cause.Error()})

	return o.reply(s, trace, trace.Agent,
		"I could not complete that request right now. Please try again in a moment.",
		map[string]any{"low_confidence": true},
	)
}

// StartInterview begins a mock interview in the session and returns the
// opening question. One interview may be active per session.
func (o *Orchestrator) StartInterview(ctx context.Context, sessionID, jobDescription string) (*Reply, error) {
	s := o.sessions.GetOrCreate(sessionID)
	s.LockTurn()
	defer s.UnlockTurn()

	st := &interview.State{JobDescription: strings.TrimSpace(jobDescription)}
	if err := s.BeginInterview(st); err != nil {
		return nil, err
	}

	trace := &tracing.TurnTrace{SessionID: s.ID, Agent: "interviewer", StartedAt: time.Now().UTC()}
	defer o.record(trace)

	started := time.Now()
	question, err := o.machine.Start(ctx, st)
	if err != nil {
		return nil, err
	}
	trace.Add(tracing.StepTrace{Kind: "interview_start", Output: question, Latency: time.Since(started)})

	s.Append(session.Message{Role: session.RoleAssistant, AgentID: "interviewer", Content: question})
	return &Reply{SessionID: s.ID, AgentID: "interviewer", Content: question}, nil
}

// EndInterview concludes an interview early and returns the final report.
// Reading the report of a concluded interview is idempotent.
func (o *Orchestrator) EndInterview(ctx context.Context, sessionID string) (*Reply, error) {
	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.LockTurn()
	defer s.UnlockTurn()

	st := s.Interview()
	if st == nil {
		return nil, fmt.Errorf("%w: no interview in session", interview.ErrStateViolation)
	}

	alreadyConcluded := st.Phase == interview.PhaseConcluded

	report, err := o.machine.End(ctx, st)
	if err != nil {
		return nil, err
	}

	rendered := report.Render()
	if !alreadyConcluded {
		s.Append(session.Message{Role: session.RoleAssistant, AgentID: "interviewer", Content: rendered})
	}
	return &Reply{
		SessionID: s.ID,
		AgentID:   "interviewer",
		Content:   rendered,
		Payload:   map[string]any{"report": report},
	}, nil
}

// AnalyzeCV extracts a profile from resume text, stores it on the session,
// and when a job description is given runs the advisor against it.
func (o *Orchestrator) AnalyzeCV(ctx context.Context, sessionID, cvText, jobDescription string) (*Reply, error) {
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return nil, fmt.Errorf("empty resume text")
	}

	s := o.sessions.GetOrCreate(sessionID)
	s.LockTurn()
	defer s.UnlockTurn()

	summary, err := o.extractProfile(ctx, cvText)
	if err != nil {
		return nil, err
	}
	s.SetProfile(summary)

	if strings.TrimSpace(jobDescription) == "" {
		return &Reply{
			SessionID: s.ID,
			Content:   "Your resume is saved. Ask me to analyze a job, draft a cover letter, or run a mock interview.",
			Payload:   map[string]any{"profile": summary},
		}, nil
	}

	trace := &tracing.TurnTrace{SessionID: s.ID, Agent: string(agent.KindAdvisor), Input: jobDescription, StartedAt: time.Now().UTC()}
	defer o.record(trace)

	advisor, ok := o.agents[agent.KindAdvisor]
	if !ok {
		return nil, fmt.Errorf("advisor agent not registered")
	}

	turn := &agent.Turn{Input: jobDescription, Profile: summary}
	action, err := o.loop.Run(ctx, advisor, turn, trace)
	if err != nil {
		return nil, err
	}
	if action.Payload == nil {
		action.Payload = map[string]any{}
	}
	action.Payload["profile"] = summary

	return o.reply(s, trace, string(agent.KindAdvisor), action.Content, action.Payload), nil
}

// GenerateCoverLetter drafts a letter for the given job using the session's
// stored profile, bypassing routing.
func (o *Orchestrator) GenerateCoverLetter(ctx context.Context, sessionID, jobDescription string) (*Reply, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("empty job description")
	}

	s := o.sessions.GetOrCreate(sessionID)
	s.LockTurn()
	defer s.UnlockTurn()

	writer, ok := o.agents[agent.KindCoverLetter]
	if !ok {
		return nil, fmt.Errorf("cover letter agent not registered")
	}

	trace := &tracing.TurnTrace{SessionID: s.ID, Agent: string(agent.KindCoverLetter), Input: jobDescription, StartedAt: time.Now().UTC()}
	defer o.record(trace)

	turn := &agent.Turn{Input: jobDescription, Profile: s.Profile()}
	action, err := o.loop.Run(ctx, writer, turn, trace)
	if err != nil {
		return nil, err
	}

	return o.reply(s, trace, string(agent.KindCoverLetter), action.Content, action.Payload), nil
}

func (o *Orchestrator) interviewTurn(ctx context.Context, s *session.Session, answer string, trace *tracing.TurnTrace) (*Reply, error) {
	trace.Agent = "interviewer"

	started := time.Now()
	next, err := o.machine.Submit(ctx, s.Interview(), answer)
	if err != nil {
		return nil, err
	}
	trace.Add(tracing.StepTrace{Kind: "interview_turn", Output: logger.TruncateForLog(next, 500), Latency: time.Since(started)})

	var payload map[string]any
	if st := s.Interview(); st.Phase == interview.PhaseConcluded {
		payload = map[string]any{"concluded": true, "report": st.Report}
	}
	return o.reply(s, trace, "interviewer", next, payload), nil
}

const profilePrompt = `Extract a candidate profile from the resume text below.

RESUME:
%s

Respond with ONLY a JSON object:
{"skills": ["..."], "experience_years": <number>, "target_roles": ["..."]}`

func (o *Orchestrator) extractProfile(ctx context.Context, cvText string) (*profile.Summary, error) {
	raw, err := ai.Retry(ctx, o.logger, o.config.ServiceRetries, func(ctx context.Context) (string, error) {
		return o.generator.GenerateContent(ctx, fmt.Sprintf(profilePrompt, cvText))
	})
	if err != nil {
		return nil, fmt.Errorf("profile extraction: %w", err)
	}

	summary := &profile.Summary{Raw: cvText}
	data, err := ai.UnmarshalLoose(raw)
	if err != nil {
		// Keep the raw text; prompts can still use it.
		o.logger.Warn("unstructured profile extraction", zap.Error(err))
		return summary, nil
	}

	summary.Skills = ai.CoerceStrings(data["skills"])
	summary.TargetRoles = ai.CoerceStrings(data["target_roles"])
	if years := ai.CoerceFloat(data["experience_years"]); !math.IsNaN(years) && years >= 0 {
		summary.ExperienceYears = years
	}
	return summary, nil
}

func (o *Orchestrator) reply(s *session.Session, trace *tracing.TurnTrace, agentID, content string, payload map[string]any) *Reply {
	s.Append(session.Message{Role: session.RoleAssistant, AgentID: agentID, Content: content, Payload: payload})

	logger.WithTurnFields(o.logger, s.ID, agentID).Info("turn completed",
		zap.Int("steps", len(trace.Steps)),
		zap.Duration("latency", time.Since(trace.StartedAt)),
	)

	return &Reply{SessionID: s.ID, AgentID: agentID, Content: content, Payload: payload}
}

// record hands the trace to the sink without ever failing or blocking the
// turn.
func (o *Orchestrator) record(trace *tracing.TurnTrace) {
	trace.Latency = time.Since(trace.StartedAt)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Warn("trace sink panicked", zap.Any("panic", r))
			}
		}()
		o.sink.Record(trace)
	}()
}

func (o *Orchestrator) renderHistory(s *session.Session) string {
	messages := s.History()
	if len(messages) > o.config.HistoryWindow {
		messages = messages[len(messages)-o.config.HistoryWindow:]
	}

	var b strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, logger.TruncateForLog(msg.Content, 300))
	}
	return strings.TrimSpace(b.String())
}
