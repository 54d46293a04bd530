package sqltool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thariqabe666/finalproj-group-2/internal/tool"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubDataset struct {
	rows    []map[string]any
	err     error
	lastSQL string
}

func (s *stubDataset) Schema() string { return "Table jobs(id TEXT, title TEXT)" }

func (s *stubDataset) Query(_ context.Context, query string) ([]map[string]any, error) {
	s.lastSQL = query
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestInvokeTranslatesAndExecutes(t *testing.T) {
	gen := &stubGenerator{response: "SELECT AVG(salary_from) AS avg_salary, COUNT(*) AS n FROM jobs"}
	dataset := &stubDataset{rows: []map[string]any{{"avg_salary": 1500.0, "n": int64(4)}}}

	adapter := New(gen, dataset, zap.NewNop())

	result, err := adapter.Invoke(context.Background(), "average salary for backend engineers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gen.lastPrompt, "Table jobs") {
		t.Fatalf("expected schema in translation prompt")
	}
	if dataset.lastSQL != gen.response {
		t.Fatalf("expected translated sql to be executed, got %q", dataset.lastSQL)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if !strings.Contains(result.Content, "1 row(s)") {
		t.Fatalf("expected summary to cite row count, got %q", result.Content)
	}
	if result.Meta["row_count"] != 1 {
		t.Fatalf("expected row_count meta, got %v", result.Meta["row_count"])
	}
}

func TestInvokeStripsMarkdownFences(t *testing.T) {
	gen := &stubGenerator{response: "```sql\nSELECT id FROM jobs\n```"}
	dataset := &stubDataset{}

	adapter := New(gen, dataset, zap.NewNop())

	if _, err := adapter.Invoke(context.Background(), "list job ids"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dataset.lastSQL != "SELECT id FROM jobs" {
		t.Fatalf("expected fences stripped, got %q", dataset.lastSQL)
	}
}

func TestInvokeTranslationFailure(t *testing.T) {
	gen := &stubGenerator{response: "I cannot answer that."}
	adapter := New(gen, &stubDataset{}, zap.NewNop())

	_, err := adapter.Invoke(context.Background(), "what is the meaning of life")
	if !errors.Is(err, tool.ErrQueryTranslation) {
		t.Fatalf("expected translation error, got %v", err)
	}
}

func TestInvokeBackendFailure(t *testing.T) {
	gen := &stubGenerator{response: "SELECT id FROM jobs"}
	dataset := &stubDataset{err: errors.New("database is locked")}

	adapter := New(gen, dataset, zap.NewNop())

	_, err := adapter.Invoke(context.Background(), "list job ids")
	if !errors.Is(err, tool.ErrDataUnavailable) {
		t.Fatalf("expected data unavailable error, got %v", err)
	}
}

func TestInvokeEmptyQuestion(t *testing.T) {
	adapter := New(&stubGenerator{}, &stubDataset{}, zap.NewNop())

	_, err := adapter.Invoke(context.Background(), "   ")
	if !errors.Is(err, tool.ErrQueryTranslation) {
		t.Fatalf("expected translation error for empty question, got %v", err)
	}
}
