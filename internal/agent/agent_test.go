package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thariqabe666/finalproj-group-2/internal/profile"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestSQLAgentProposesToolCallFirst(t *testing.T) {
	a := NewSQLAgent(&stubGenerator{}, "structured_query", zap.NewNop())

	action, err := a.Step(context.Background(), &Turn{Input: "average salary in Jakarta?"})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if action.Final {
		t.Fatal("first step should propose a tool call, not a final answer")
	}
	if action.ToolName != "structured_query" {
		t.Fatalf("unexpected tool: %s", action.ToolName)
	}
}

func TestSQLAgentSynthesizesFromObservation(t *testing.T) {
	gen := &stubGenerator{response: "The average salary across 12 postings is 9.5M IDR."}
	a := NewSQLAgent(gen, "structured_query", zap.NewNop())

	turn := &Turn{
		Input: "average salary in Jakarta?",
		Observations: []Observation{
			{Tool: "structured_query", Content: "12 row(s). avg_salary=9500000"},
		},
	}
	action, err := a.Step(context.Background(), turn)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !action.Final {
		t.Fatal("expected a final answer after an observation")
	}
	if !strings.Contains(gen.prompts[0], "avg_salary=9500000") {
		t.Fatal("synthesis prompt should carry the observation")
	}
	if action.Payload != nil {
		t.Fatalf("successful turn should not be flagged: %v", action.Payload)
	}
}

func TestSynthesisFlagsAllFailedObservations(t *testing.T) {
	gen := &stubGenerator{response: "I could not retrieve the data."}
	a := NewSQLAgent(gen, "structured_query", zap.NewNop())

	turn := &Turn{
		Input:      "average salary?",
		ForceFinal: true,
		Observations: []Observation{
			{Tool: "structured_query", Failed: true, Err: "query translation failed"},
		},
	}
	action, err := a.Step(context.Background(), turn)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !action.Final {
		t.Fatal("expected a final answer under ForceFinal")
	}
	if action.Payload["low_confidence"] != true {
		t.Fatalf("expected low_confidence flag, got %v", action.Payload)
	}
}

func TestRetrievalAgentProposesSemanticSearch(t *testing.T) {
	a := NewRetrievalAgent(&stubGenerator{}, "semantic_search", zap.NewNop())

	action, err := a.Step(context.Background(), &Turn{Input: "jobs like backend engineering with Go"})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if action.Final || action.ToolName != "semantic_search" {
		t.Fatalf("expected a semantic_search proposal, got %+v", action)
	}
}

func TestAdvisorParsesStructuredAnalysis(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"match_score": 72,
		"strengths": ["Go experience"],
		"gaps": ["no Kubernetes"],
		"recommendations": ["take a CKA course"],
		"summary": "Solid backend fit with infra gaps."
	}` + "\n```"}
	a := NewAdvisorAgent(gen, zap.NewNop())

	turn := &Turn{
		Input:   "How do I fit this backend role?",
		Profile: &profile.Summary{Skills: []string{"Go", "SQL"}, ExperienceYears: 3},
	}
	action, err := a.Step(context.Background(), turn)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !action.Final {
		t.Fatal("advisor should answer in one step")
	}
	analysis, ok := action.Payload["match_analysis"].(*MatchAnalysis)
	if !ok {
		t.Fatalf("expected structured analysis payload, got %v", action.Payload)
	}
	if analysis.Score != 72 {
		t.Fatalf("unexpected score: %v", analysis.Score)
	}
	if !strings.Contains(action.Content, "72/100") {
		t.Fatalf("rendered answer should carry the score:\n%s", action.Content)
	}
}

func TestAdvisorDegradesOnUnstructuredOutput(t *testing.T) {
	gen := &stubGenerator{response: "You seem like a decent fit overall, keep learning."}
	a := NewAdvisorAgent(gen, zap.NewNop())

	action, err := a.Step(context.Background(), &Turn{Input: "fit?", Profile: &profile.Summary{Raw: "cv text"}})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !action.Final || action.Payload["structured"] != false {
		t.Fatalf("expected a degraded plain-text answer, got %+v", action)
	}
}

func TestCoverLetterUsesProfileWhenPresent(t *testing.T) {
	gen := &stubGenerator{response: "Dear Hiring Manager, ..."}
	a := NewCoverLetterAgent(gen, zap.NewNop())

	turn := &Turn{
		Input:   "Backend Engineer at Acme",
		Profile: &profile.Summary{Skills: []string{"Go"}, Raw: "cv text"},
	}
	action, err := a.Step(context.Background(), turn)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if action.Payload["personalized"] != true {
		t.Fatal("expected a personalized letter")
	}
	if !strings.Contains(gen.prompts[0], "cv text") {
		t.Fatal("prompt should include the profile")
	}
}

func TestCoverLetterDegradesWithoutProfile(t *testing.T) {
	gen := &stubGenerator{response: "Dear Hiring Manager, [YOUR NAME] ..."}
	a := NewCoverLetterAgent(gen, zap.NewNop())

	action, err := a.Step(context.Background(), &Turn{Input: "Backend Engineer at Acme"})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if action.Payload["personalized"] != false {
		t.Fatal("expected a generic letter without a profile")
	}
	if !strings.Contains(gen.prompts[0], "placeholders") {
		t.Fatal("generic prompt should ask for placeholders")
	}
}

func TestAgentErrorPropagates(t *testing.T) {
	wantErr := errors.New("service unavailable")
	a := NewCoverLetterAgent(&stubGenerator{err: wantErr}, zap.NewNop())

	_, err := a.Step(context.Background(), &Turn{Input: "job"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}
