package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thariqabe666/finalproj-group-2/internal/agent"
	"github.com/thariqabe666/finalproj-group-2/internal/ai"
	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/session"
	"github.com/thariqabe666/finalproj-group-2/internal/tool"
	"github.com/thariqabe666/finalproj-group-2/internal/tracing"

	"go.uber.org/zap"
)

// scriptedGenerator answers by prompt marker so one stub can serve routing,
// synthesis, and the interview machine.
type scriptedGenerator struct {
	route string
}

func (g *scriptedGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "router of a career assistant"):
		return g.route, nil
	case strings.Contains(prompt, "job-postings dataset"):
		return "Based on 2 rows, the average salary is 9,500,000 IDR.", nil
	case strings.Contains(prompt, "competency areas"):
		return "system design\ncommunication", nil
	case strings.Contains(prompt, "interview evaluator"):
		return `{"score": 0.7, "depth": "adequate", "feedback": "fine"}`, nil
	default:
		return "Next question?", nil
	}
}

type stubTool struct {
	name     string
	result   *tool.Result
	err      error
	invoked  int
	lastSeen string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }

func (s *stubTool) Invoke(_ context.Context, query string) (*tool.Result, error) {
	s.invoked++
	s.lastSeen = query
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type captureSink struct {
	mu     sync.Mutex
	traces []*tracing.TurnTrace
	done   chan struct{}
}

func newCaptureSink() *captureSink {
	return &captureSink{done: make(chan struct{}, 16)}
}

func (c *captureSink) Record(trace *tracing.TurnTrace) {
	c.mu.Lock()
	c.traces = append(c.traces, trace)
	c.mu.Unlock()
	c.done <- struct{}{}
}

func (c *captureSink) wait(t *testing.T) *tracing.TurnTrace {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("trace was never recorded")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.traces[len(c.traces)-1]
}

func newTestOrchestrator(route string, queryTool tool.Tool, sink tracing.Sink) *Orchestrator {
	gen := &scriptedGenerator{route: route}
	log := zap.NewNop()

	agents := map[agent.Kind]agent.Agent{
		agent.KindSQL:         agent.NewSQLAgent(gen, "structured_query", log),
		agent.KindRetrieval:   agent.NewRetrievalAgent(gen, "semantic_search", log),
		agent.KindAdvisor:     agent.NewAdvisorAgent(gen, log),
		agent.KindCoverLetter: agent.NewCoverLetterAgent(gen, log),
	}

	tools := map[string]tool.Tool{}
	if queryTool != nil {
		tools[queryTool.Name()] = queryTool
	}

	cfg := Config{MaxSteps: 5, ToolRetries: 2}
	return New(&Deps{
		Router:    NewRouter(gen, agents, cfg, log),
		Loop:      NewLoop(tools, cfg, log),
		Agents:    agents,
		Machine:   interview.NewMachine(gen, interview.Config{}, log),
		Sessions:  session.NewManager(session.NewMemoryStore(), log),
		Sink:      sink,
		Generator: gen,
		Logger:    log,
	}, cfg)
}

func TestAmbiguousMessageGetsClarifyingQuestion(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "none", "clarify": "Do you want job statistics or matching postings?"}`, nil, tracing.NopSink{})

	reply, err := o.HandleTurn(context.Background(), "", "find me a job")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if reply.AgentID != "" {
		t.Fatalf("no agent should be dispatched, got %s", reply.AgentID)
	}
	if !strings.Contains(reply.Content, "?") {
		t.Fatalf("expected a clarifying question, got %q", reply.Content)
	}
}

func TestSalaryQuestionRoutesToSQLAgent(t *testing.T) {
	queryTool := &stubTool{
		name:   "structured_query",
		result: &tool.Result{Content: "2 row(s). avg_salary=9500000", Meta: map[string]any{"row_count": 2}},
	}
	sink := newCaptureSink()
	o := newTestOrchestrator(`{"agent": "sql"}`, queryTool, sink)

	reply, err := o.HandleTurn(context.Background(), "s1", "What is the average salary for backend engineers in Jakarta?")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if reply.AgentID != "sql" {
		t.Fatalf("expected the sql agent, got %s", reply.AgentID)
	}
	if !strings.Contains(reply.Content, "9,500,000") {
		t.Fatalf("answer should quote the computed figure, got %q", reply.Content)
	}

	trace := sink.wait(t)
	var sawToolCall bool
	for _, step := range trace.Steps {
		if step.Kind == "tool_call" && step.Tool == "structured_query" {
			sawToolCall = true
		}
	}
	if !sawToolCall {
		t.Fatalf("trace should record the tool call: %+v", trace.Steps)
	}
}

func TestToolRetryBudgetIsBounded(t *testing.T) {
	failing := &stubTool{name: "structured_query", err: errors.New("translation failed")}
	o := newTestOrchestrator(`{"agent": "sql"}`, failing, tracing.NopSink{})

	reply, err := o.HandleTurn(context.Background(), "s1", "average salary?")
	if err != nil {
		t.Fatalf("turn should degrade, not fail: %v", err)
	}

	if failing.invoked != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", failing.invoked)
	}
	if reply.Payload["low_confidence"] != true {
		t.Fatalf("exhausted tool budget should flag the answer: %v", reply.Payload)
	}
}

func TestUnknownRouteVerdictFallsBackToClarify(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "sorcery"}`, nil, tracing.NopSink{})

	reply, err := o.HandleTurn(context.Background(), "", "do the thing")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if reply.AgentID != "" || reply.Content == "" {
		t.Fatalf("out-of-set verdict must clarify, got %+v", reply)
	}
}

func TestActiveInterviewBypassesRouting(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "sql"}`, nil, tracing.NopSink{})

	start, err := o.StartInterview(context.Background(), "s1", "Backend engineer role")
	if err != nil {
		t.Fatalf("start interview: %v", err)
	}
	if start.AgentID != "interviewer" {
		t.Fatalf("expected the interviewer, got %s", start.AgentID)
	}

	reply, err := o.HandleTurn(context.Background(), "s1", "I designed a sharded Postgres setup for writes.")
	if err != nil {
		t.Fatalf("interview turn: %v", err)
	}
	if reply.AgentID != "interviewer" {
		t.Fatalf("active interview must capture the turn, got agent %s", reply.AgentID)
	}
}

func TestSecondInterviewInSessionRejected(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "none"}`, nil, tracing.NopSink{})

	if _, err := o.StartInterview(context.Background(), "s1", "role"); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := o.StartInterview(context.Background(), "s1", "another role")
	if !errors.Is(err, session.ErrInterviewActive) {
		t.Fatalf("expected active-interview rejection, got %v", err)
	}
}

func TestEndInterviewReportIsIdempotent(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "none"}`, nil, tracing.NopSink{})

	if _, err := o.StartInterview(context.Background(), "s1", "role"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := o.HandleTurn(context.Background(), "s1", "a reasonably detailed answer about design"); err != nil {
		t.Fatalf("turn: %v", err)
	}

	first, err := o.EndInterview(context.Background(), "s1")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	second, err := o.EndInterview(context.Background(), "s1")
	if err != nil {
		t.Fatalf("second end: %v", err)
	}
	if first.Content != second.Content {
		t.Fatal("concluded report reads must return the same report")
	}
}

type countingGenerator struct {
	calls int
	err   error
}

func (g *countingGenerator) GenerateContent(context.Context, string) (string, error) {
	g.calls++
	return "", g.err
}

func TestRoutingRetryBudgetIsConfigurable(t *testing.T) {
	gen := &countingGenerator{err: ai.ErrServiceUnavailable}
	log := zap.NewNop()
	agents := map[agent.Kind]agent.Agent{
		agent.KindSQL: agent.NewSQLAgent(gen, "structured_query", log),
	}

	router := NewRouter(gen, agents, Config{ServiceRetries: 1}, log)
	if _, _, err := router.Route(context.Background(), "average salary?", ""); err == nil {
		t.Fatal("expected routing to fail once the budget is spent")
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 attempts (1 + 1 retry), got %d", gen.calls)
	}
}

func TestEmptyMessageGetsClarifyingQuestion(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "sql"}`, nil, tracing.NopSink{})

	reply, err := o.HandleTurn(context.Background(), "", "   ")
	if err != nil {
		t.Fatalf("empty input must answer, not error: %v", err)
	}
	if reply.AgentID != "" || !strings.Contains(reply.Content, "?") {
		t.Fatalf("expected a clarifying question, got %+v", reply)
	}
}

// hungTool never returns until its context is canceled.
type hungTool struct {
	invoked int
}

func (h *hungTool) Name() string        { return "structured_query" }
func (h *hungTool) Description() string { return "stub" }

func (h *hungTool) Invoke(ctx context.Context, _ string) (*tool.Result, error) {
	h.invoked++
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestHungToolCallIsTimeBounded(t *testing.T) {
	hung := &hungTool{}
	gen := &scriptedGenerator{route: `{"agent": "sql"}`}
	log := zap.NewNop()
	agents := map[agent.Kind]agent.Agent{
		agent.KindSQL: agent.NewSQLAgent(gen, "structured_query", log),
	}
	cfg := Config{MaxSteps: 5, ToolRetries: 1, CallTimeout: 20 * time.Millisecond}

	o := New(&Deps{
		Router:    NewRouter(gen, agents, cfg, log),
		Loop:      NewLoop(map[string]tool.Tool{hung.Name(): hung}, cfg, log),
		Agents:    agents,
		Machine:   interview.NewMachine(gen, interview.Config{}, log),
		Sessions:  session.NewManager(session.NewMemoryStore(), log),
		Sink:      tracing.NopSink{},
		Generator: gen,
		Logger:    log,
	}, cfg)

	done := make(chan struct{})
	var reply *Reply
	var err error
	go func() {
		reply, err = o.HandleTurn(context.Background(), "s1", "average salary?")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("turn did not finish; hung tool was not timed out")
	}

	if err != nil {
		t.Fatalf("turn should degrade, not fail: %v", err)
	}
	if hung.invoked != 2 {
		t.Fatalf("expected 2 bounded attempts, got %d", hung.invoked)
	}
	if reply.Payload["low_confidence"] != true {
		t.Fatalf("timed-out tool should flag the answer: %v", reply.Payload)
	}
}

type failingGenerator struct{}

func (failingGenerator) GenerateContent(context.Context, string) (string, error) {
	return "", errors.New("hard provider failure")
}

func TestRouterFaultDegradesToAnswer(t *testing.T) {
	gen := failingGenerator{}
	log := zap.NewNop()
	agents := map[agent.Kind]agent.Agent{
		agent.KindSQL: agent.NewSQLAgent(gen, "structured_query", log),
	}

	o := New(&Deps{
		Router:    NewRouter(gen, agents, Config{}, log),
		Loop:      NewLoop(nil, Config{}, log),
		Agents:    agents,
		Machine:   interview.NewMachine(gen, interview.Config{}, log),
		Sessions:  session.NewManager(session.NewMemoryStore(), log),
		Sink:      tracing.NopSink{},
		Generator: gen,
		Logger:    log,
	}, Config{})

	reply, err := o.HandleTurn(context.Background(), "s1", "average salary?")
	if err != nil {
		t.Fatalf("chat turns must not surface faults: %v", err)
	}
	if reply.Payload["low_confidence"] != true || reply.Content == "" {
		t.Fatalf("expected a degraded low-confidence answer, got %+v", reply)
	}
}

func TestCoverLetterWithoutProfileIsGeneric(t *testing.T) {
	o := newTestOrchestrator(`{"agent": "cover_letter"}`, nil, tracing.NopSink{})

	reply, err := o.GenerateCoverLetter(context.Background(), "s1", "Backend Engineer at Acme")
	if err != nil {
		t.Fatalf("cover letter: %v", err)
	}
	if reply.Payload["personalized"] != false {
		t.Fatalf("no profile stored, letter should be generic: %v", reply.Payload)
	}
}
