package interview

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

const competenciesPrompt = `You are preparing a mock interview for the role below.

JOB DESCRIPTION:
%s

List the 4 most important competency areas to assess, one per line, short noun phrases only (e.g. "system design"). No numbering, no commentary.`

const questionPrompt = `You are a professional interviewer running a mock interview.

JOB DESCRIPTION:
%s

INTERVIEW SO FAR:
%s

INSTRUCTIONS:
1. Respond in the same language the candidate has been using; default to the job description's language before any answer exists.
2. Ask exactly ONE question assessing the competency "%s".%s
3. Output only the question, optionally preceded by one short sentence of feedback on the previous answer.`

const followUpDirective = `
   The previous answer on this competency was shallow. Probe deeper on the same topic instead of moving on.`

const evaluatePrompt = `You are an expert HR interview evaluator scoring one answer.

JOB DESCRIPTION:
%s

COMPETENCY ASSESSED: %s
QUESTION: %s
CANDIDATE ANSWER: %s

Respond with ONLY a JSON object:
{"score": <0.0-1.0>, "depth": "weak"|"adequate"|"strong", "feedback": "<one sentence>"}`

// fallback questions keep the interview moving when the reasoning service
// stays down past its retry budget.
var fallbackQuestions = []string{
	"Tell me about yourself and your background relevant to this role.",
	"Walk me through a project you are proud of and your specific contribution.",
	"Describe a difficult technical problem you solved recently.",
	"How do you approach working with teammates who disagree with you?",
}

func (m *Machine) deriveCompetencies(ctx context.Context, jobDescription string) []string {
	fallback := []string{"technical depth", "problem solving", "communication", "role fit"}

	if strings.TrimSpace(jobDescription) == "" {
		return fallback
	}

	raw, err := ai.Retry(ctx, m.logger, m.config.ServiceRetries, func(ctx context.Context) (string, error) {
		return m.generator.GenerateContent(ctx, fmt.Sprintf(competenciesPrompt, jobDescription))
	})
	if err != nil {
		m.logger.Warn("falling back to default competencies", zap.Error(err))
		return fallback
	}

	var competencies []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			competencies = append(competencies, strings.ToLower(line))
		}
	}

	if len(competencies) == 0 {
		return fallback
	}
	if len(competencies) > 6 {
		competencies = competencies[:6]
	}
	return competencies
}

func (m *Machine) phraseQuestion(ctx context.Context, st *State, competency string, followUp bool) string {
	directive := ""
	if followUp {
		directive = followUpDirective
	}

	prompt := fmt.Sprintf(questionPrompt, st.JobDescription, historyBlock(st), competency, directive)

	question, err := ai.Retry(ctx, m.logger, m.config.ServiceRetries, func(ctx context.Context) (string, error) {
		return m.generator.GenerateContent(ctx, prompt)
	})
	if err != nil {
		m.logger.Warn("falling back to canned question",
			zap.String("competency", competency),
			zap.Error(err),
		)
		return fallbackQuestions[len(st.Exchanges)%len(fallbackQuestions)]
	}

	return strings.TrimSpace(question)
}

// evaluateAnswer scores one answer. Non-substantive answers are scored weak
// without consulting the reasoning service; scoring failures degrade to a
// neutral adequate evaluation so the interview never stalls.
func (m *Machine) evaluateAnswer(ctx context.Context, st *State, ex *Exchange) *Evaluation {
	if isNonSubstantive(ex.Answer) {
		return &Evaluation{
			Score:    0,
			Depth:    DepthWeak,
			Feedback: "The answer did not address the question.",
		}
	}

	prompt := fmt.Sprintf(evaluatePrompt, st.JobDescription, ex.Competency, ex.Question, ex.Answer)

	raw, err := ai.Retry(ctx, m.logger, m.config.ServiceRetries, func(ctx context.Context) (string, error) {
		return m.generator.GenerateContent(ctx, prompt)
	})
	if err != nil {
		m.logger.Warn("scoring degraded to neutral evaluation", zap.Error(err))
		return &Evaluation{Score: 0.5, Depth: DepthAdequate, Feedback: "Scoring was unavailable for this answer."}
	}

	data, err := ai.UnmarshalLoose(raw)
	if err != nil {
		m.logger.Warn("unparseable evaluation, degrading to neutral", zap.Error(err))
		return &Evaluation{Score: 0.5, Depth: DepthAdequate, Feedback: "Scoring was unavailable for this answer."}
	}

	score := ai.CoerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0.5
	}
	score = math.Min(math.Max(score, 0), 1)

	depth := Depth(strings.ToLower(ai.CoerceString(data["depth"])))
	switch depth {
	case DepthWeak, DepthAdequate, DepthStrong:
	default:
		depth = depthFromScore(score)
	}

	return &Evaluation{
		Score:    score,
		Depth:    depth,
		Feedback: ai.CoerceString(data["feedback"]),
	}
}

func depthFromScore(score float64) Depth {
	switch {
	case score < 0.4:
		return DepthWeak
	case score < 0.75:
		return DepthAdequate
	default:
		return DepthStrong
	}
}

func isNonSubstantive(answer string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(answer))
	if len(cleaned) < 8 {
		return true
	}
	switch cleaned {
	case "i don't know", "i dont know", "no idea", "not sure", "skip":
		return true
	}
	return false
}
