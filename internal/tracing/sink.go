package tracing

import (
	"time"

	"go.uber.org/zap"
)

// StepTrace records one step of a turn: a routing decision, a tool
// invocation, or a synthesis.
type StepTrace struct {
	Kind      string         `json:"kind"`
	Agent     string         `json:"agent,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Latency   time.Duration  `json:"latency"`
	Meta      map[string]any `json:"meta,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TurnTrace is the full record of one processed turn.
type TurnTrace struct {
	SessionID string        `json:"session_id"`
	Input     string        `json:"input"`
	Agent     string        `json:"agent"`
	Steps     []StepTrace   `json:"steps"`
	Latency   time.Duration `json:"latency"`
	StartedAt time.Time     `json:"started_at"`
}

// Add appends a step, stamping it if unstamped.
func (t *TurnTrace) Add(step StepTrace) {
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now().UTC()
	}
	t.Steps = append(t.Steps, step)
}

// Sink receives completed turn traces. Implementations must never fail the
// turn: Record has no error return and must not panic.
type Sink interface {
	Record(trace *TurnTrace)
}

// LogSink emits traces through the structured logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink writing to the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(trace *TurnTrace) {
	if trace == nil {
		return
	}

	s.logger.Info("turn trace",
		zap.String("session_id", trace.SessionID),
		zap.String("agent", trace.Agent),
		zap.Int("steps", len(trace.Steps)),
		zap.Duration("latency", trace.Latency),
		zap.Any("trace", trace.Steps),
	)
}

// NopSink discards traces.
type NopSink struct{}

func (NopSink) Record(*TurnTrace) {}
