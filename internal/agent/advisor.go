package agent

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

const advisorPrompt = `You are a senior career advisor analyzing how well a candidate fits a job.

CANDIDATE PROFILE:
%s

JOB OR REQUEST:
%s

Respond with ONLY a JSON object:
{
  "match_score": <0-100>,
  "strengths": ["..."],
  "gaps": ["..."],
  "recommendations": ["..."],
  "summary": "<2-3 sentences>"
}
Use the language of the request for all text fields.`

// MatchAnalysis is the advisor's structured fit assessment.
type MatchAnalysis struct {
	Score           float64  `json:"match_score"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary"`
}

// AdvisorAgent assesses candidate-to-job fit from the stored profile. It
// uses no tools; when the structured analysis cannot be parsed it degrades
// to the raw advisory text instead of failing the turn.
type AdvisorAgent struct {
	generator ai.Generator
	logger    *zap.Logger
}

// NewAdvisorAgent creates the career-advisor agent.
func NewAdvisorAgent(generator ai.Generator, logger *zap.Logger) *AdvisorAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisorAgent{generator: generator, logger: logger}
}

func (a *AdvisorAgent) Kind() Kind { return KindAdvisor }

func (a *AdvisorAgent) Describe() string {
	return "Analyzes how well the user's profile matches a job: match score, strengths, gaps, and concrete recommendations. Needs a job description or career question."
}

func (a *AdvisorAgent) Step(ctx context.Context, turn *Turn) (*Action, error) {
	prompt := fmt.Sprintf(advisorPrompt, turn.Profile.PromptContext(), turn.Input)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("advisor generation: %w", err)
	}

	analysis, ok := parseMatchAnalysis(raw)
	if !ok {
		a.logger.Warn("unstructured advisor output, degrading to raw text")
		return &Action{
			Final:   true,
			Content: strings.TrimSpace(raw),
			Payload: map[string]any{"structured": false},
		}, nil
	}

	return &Action{
		Final:   true,
		Content: analysis.Render(),
		Payload: map[string]any{"structured": true, "match_analysis": analysis},
	}, nil
}

func parseMatchAnalysis(raw string) (*MatchAnalysis, bool) {
	data, err := ai.UnmarshalLoose(raw)
	if err != nil {
		return nil, false
	}

	score := ai.CoerceFloat(data["match_score"])
	summary := ai.CoerceString(data["summary"])
	if math.IsNaN(score) || summary == "" {
		return nil, false
	}

	return &MatchAnalysis{
		Score:           math.Min(math.Max(score, 0), 100),
		Strengths:       ai.CoerceStrings(data["strengths"]),
		Gaps:            ai.CoerceStrings(data["gaps"]),
		Recommendations: ai.CoerceStrings(data["recommendations"]),
		Summary:         summary,
	}, true
}

// Render formats the analysis for the chat surface.
func (m *MatchAnalysis) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Match score: %.0f/100**\n\n%s\n", m.Score, m.Summary)

	writeSection := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n**%s**\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	writeSection("Strengths", m.Strengths)
	writeSection("Gaps", m.Gaps)
	writeSection("Recommendations", m.Recommendations)

	return strings.TrimSpace(b.String())
}
