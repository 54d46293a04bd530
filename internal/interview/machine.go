package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

// Phase is the interview machine state.
type Phase string

const (
	PhaseNotStarted     Phase = "not_started"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseEvaluating     Phase = "evaluating"
	PhaseConcluding     Phase = "concluding"
	PhaseConcluded      Phase = "concluded"
)

// ErrStateViolation marks an operation attempted from a phase that does not
// allow it. The state is left untouched.
var ErrStateViolation = errors.New("invalid interview state transition")

// Depth classifies one answer's quality, driving the follow-up decision.
type Depth string

const (
	DepthWeak     Depth = "weak"
	DepthAdequate Depth = "adequate"
	DepthStrong   Depth = "strong"
)

// Evaluation is the per-answer score recorded after each turn.
type Evaluation struct {
	Score    float64 `json:"score"` // 0..1
	Depth    Depth   `json:"depth"`
	Feedback string  `json:"feedback"`
}

// Exchange is one (question, answer, evaluation) tuple.
type Exchange struct {
	Competency string      `json:"competency"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// State is the machine state for one interview session. It is owned by
// exactly one session and mutated only by the Machine.
type State struct {
	JobDescription string      `json:"job_description"`
	Phase          Phase       `json:"phase"`
	Competencies   []string    `json:"competencies"`
	Exchanges      []*Exchange `json:"exchanges"`
	StartedAt      time.Time   `json:"started_at"`
	Report         *Report     `json:"report,omitempty"`
}

// Config carries the injected stopping parameters. Thresholds are
// configuration, not contract.
type Config struct {
	// MaxQuestions caps the interview length.
	MaxQuestions int `mapstructure:"max-questions"`
	// MaxFollowUps bounds consecutive probes on one competency.
	MaxFollowUps int `mapstructure:"max-follow-ups"`
	// CoverageThreshold is the per-competency score treated as covered.
	CoverageThreshold float64 `mapstructure:"coverage-threshold"`
	// ServiceRetries is the extra attempts for reasoning-service calls.
	ServiceRetries int `mapstructure:"service-retries"`
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = 8
	}
	if c.MaxFollowUps <= 0 {
		c.MaxFollowUps = 2
	}
	if c.CoverageThreshold <= 0 {
		c.CoverageThreshold = 0.6
	}
	if c.ServiceRetries <= 0 {
		c.ServiceRetries = 2
	}
	return c
}

// Machine drives the turn-by-turn interview simulation. The adaptive
// decision of what to ask next is pure data-in/data-out (decideNext); the
// reasoning service only phrases questions and scores answers.
type Machine struct {
	generator ai.Generator
	config    Config
	logger    *zap.Logger
}

// NewMachine creates an interview machine.
func NewMachine(generator ai.Generator, config Config, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{generator: generator, config: config.WithDefaults(), logger: logger}
}

// Start moves a fresh state to AwaitingAnswer and returns the opening
// question derived from the job description.
func (m *Machine) Start(ctx context.Context, st *State) (string, error) {
	if st == nil {
		return "", errors.New("interview state is required")
	}
	if st.Phase != "" && st.Phase != PhaseNotStarted {
		return "", fmt.Errorf("%w: start from %s", ErrStateViolation, st.Phase)
	}

	if len(st.Competencies) == 0 {
		st.Competencies = m.deriveCompetencies(ctx, st.JobDescription)
	}

	first := st.Competencies[0]
	question := m.phraseQuestion(ctx, st, first, false)

	st.Phase = PhaseAwaitingAnswer
	st.StartedAt = time.Now().UTC()
	st.Exchanges = append(st.Exchanges, &Exchange{Competency: first, Question: question})

	m.logger.Info("interview started",
		zap.String("competency", first),
		zap.Int("competencies", len(st.Competencies)),
	)

	return question, nil
}

// Submit records the candidate's answer, scores it, and either asks the
// next question or concludes. Empty answers are scored weak, never stalled.
func (m *Machine) Submit(ctx context.Context, st *State, answer string) (string, error) {
	if st == nil || st.Phase != PhaseAwaitingAnswer {
		return "", fmt.Errorf("%w: answer submitted in %s", ErrStateViolation, phaseOf(st))
	}

	current := st.Exchanges[len(st.Exchanges)-1]
	st.Phase = PhaseEvaluating

	current.Answer = answer
	current.Evaluation = m.evaluateAnswer(ctx, st, current)

	m.logger.Debug("answer evaluated",
		zap.String("competency", current.Competency),
		zap.String("depth", string(current.Evaluation.Depth)),
		zap.Float64("score", current.Evaluation.Score),
	)

	next := decideNext(st, m.config)
	if next.Conclude {
		return m.conclude(st)
	}

	question := m.phraseQuestion(ctx, st, next.Competency, next.FollowUp)
	st.Phase = PhaseAwaitingAnswer
	st.Exchanges = append(st.Exchanges, &Exchange{Competency: next.Competency, Question: question})

	return question, nil
}

// End forces the interview to conclude early using only the evaluations
// collected so far. Allowed from AwaitingAnswer; idempotent when already
// concluded.
func (m *Machine) End(_ context.Context, st *State) (*Report, error) {
	if st == nil {
		return nil, errors.New("interview state is required")
	}

	switch st.Phase {
	case PhaseConcluded:
		return st.Report, nil
	case PhaseAwaitingAnswer:
		// Drop the pending unanswered question before aggregating.
		last := st.Exchanges[len(st.Exchanges)-1]
		if last.Answer == "" && last.Evaluation == nil {
			st.Exchanges = st.Exchanges[:len(st.Exchanges)-1]
		}
		if _, err := m.conclude(st); err != nil {
			return nil, err
		}
		return st.Report, nil
	default:
		return nil, fmt.Errorf("%w: end from %s", ErrStateViolation, st.Phase)
	}
}

func (m *Machine) conclude(st *State) (string, error) {
	st.Phase = PhaseConcluding
	st.Report = aggregate(st, m.config)
	st.Phase = PhaseConcluded

	m.logger.Info("interview concluded",
		zap.Int("questions", len(st.Exchanges)),
		zap.Float64("overall_score", st.Report.OverallScore),
	)

	return st.Report.Render(), nil
}

// nextDirective is the pure output of the adaptive follow-up decision.
type nextDirective struct {
	Conclude   bool
	FollowUp   bool
	Competency string
}

// decideNext picks the next move from recorded evaluations and competency
// coverage alone. Weak or evasive answers earn a deeper follow-up on the
// same topic; covered competencies move the interview along; exhaustion of
// questions or competencies concludes it.
func decideNext(st *State, cfg Config) nextDirective {
	asked := len(st.Exchanges)
	if asked >= cfg.MaxQuestions {
		return nextDirective{Conclude: true}
	}

	last := st.Exchanges[asked-1]

	if last.Evaluation != nil && last.Evaluation.Depth == DepthWeak {
		if consecutiveOnCompetency(st, last.Competency) <= cfg.MaxFollowUps {
			return nextDirective{FollowUp: true, Competency: last.Competency}
		}
	}

	for _, competency := range st.Competencies {
		if bestScore(st, competency) < cfg.CoverageThreshold && questionsOn(st, competency) < 1+cfg.MaxFollowUps {
			return nextDirective{Competency: competency, FollowUp: questionsOn(st, competency) > 0}
		}
	}

	return nextDirective{Conclude: true}
}

func consecutiveOnCompetency(st *State, competency string) int {
	count := 0
	for i := len(st.Exchanges) - 1; i >= 0; i-- {
		if st.Exchanges[i].Competency != competency {
			break
		}
		count++
	}
	return count
}

func questionsOn(st *State, competency string) int {
	count := 0
	for _, ex := range st.Exchanges {
		if ex.Competency == competency {
			count++
		}
	}
	return count
}

func bestScore(st *State, competency string) float64 {
	best := -1.0
	for _, ex := range st.Exchanges {
		if ex.Competency != competency || ex.Evaluation == nil {
			continue
		}
		if ex.Evaluation.Score > best {
			best = ex.Evaluation.Score
		}
	}
	return best
}

func phaseOf(st *State) Phase {
	if st == nil {
		return PhaseNotStarted
	}
	if st.Phase == "" {
		return PhaseNotStarted
	}
	return st.Phase
}

func historyBlock(st *State) string {
	var b strings.Builder
	for _, ex := range st.Exchanges {
		fmt.Fprintf(&b, "Interviewer: %s\n", ex.Question)
		if ex.Answer != "" {
			fmt.Fprintf(&b, "Candidate: %s\n", ex.Answer)
		}
	}
	return strings.TrimSpace(b.String())
}
