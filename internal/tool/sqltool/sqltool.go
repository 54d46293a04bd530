package sqltool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"
	"github.com/thariqabe666/finalproj-group-2/internal/logger"
	"github.com/thariqabe666/finalproj-group-2/internal/tool"

	"go.uber.org/zap"
)

const toolName = "structured_query"

const translatePrompt = `You translate analytic questions about a job market dataset into a single SQLite SELECT statement.

Database schema:
%s

Rules:
- Output ONLY the SQL statement, no commentary, no markdown fences.
- SELECT statements only. Never modify data.
- When the question asks for an average salary, use AVG((salary_from + salary_to) / 2.0).
- Always include a COUNT(*) or equivalent row count when aggregating, so the answer can cite how many rows it is based on.
- Limit non-aggregate results to 20 rows.

Question: %s

SQL:`

// Dataset is the slice of the sqlite store the adapter needs.
type Dataset interface {
	Schema() string
	Query(ctx context.Context, query string) ([]map[string]any, error)
}

// Adapter answers natural-language analytic questions by translating them
// to SQL via the reasoning service and running them against the dataset.
type Adapter struct {
	generator ai.Generator
	dataset   Dataset
	logger    *zap.Logger
}

// New creates the structured-query adapter.
func New(generator ai.Generator, dataset Dataset, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{generator: generator, dataset: dataset, logger: logger}
}

func (a *Adapter) Name() string { return toolName }

func (a *Adapter) Description() string {
	return "Answers analytic questions over the relational job/salary dataset: counts, averages, salary ranges, filters by title, company, or location."
}

// Invoke translates the question to SQL, executes it, and returns rows plus
// a human-readable summary.
func (a *Adapter) Invoke(ctx context.Context, query string) (*tool.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty question", tool.ErrQueryTranslation)
	}

	prompt := fmt.Sprintf(translatePrompt, a.dataset.Schema(), query)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrQueryTranslation, err)
	}

	sqlText := cleanSQL(raw)
	if !strings.HasPrefix(strings.ToUpper(sqlText), "SELECT") {
		return nil, fmt.Errorf("%w: translation produced %q", tool.ErrQueryTranslation, logger.TruncateForLog(sqlText, 80))
	}

	a.logger.Debug("translated question to sql",
		zap.String("question", logger.TruncateForLog(query, 120)),
		zap.String("sql", sqlText),
	)

	rows, err := a.dataset.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrDataUnavailable, err)
	}

	return &tool.Result{
		Content: summarize(rows),
		Rows:    rows,
		Meta:    map[string]any{"sql": sqlText, "row_count": len(rows)},
	}, nil
}

// cleanSQL strips markdown fences and language tags that models wrap
// around generated statements.
func cleanSQL(raw string) string {
	cleaned := ai.ExtractJSON(raw)
	for _, tag := range []string{"sql\n", "sqlite\n", "SQL\n"} {
		cleaned = strings.TrimPrefix(cleaned, tag)
	}
	return strings.TrimSpace(cleaned)
}

// summarize renders rows compactly for the agent's observation window.
func summarize(rows []map[string]any) string {
	if len(rows) == 0 {
		return "The query returned no rows."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The query returned %d row(s).\n", len(rows))

	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		parts := make([]string, 0, len(rows[i]))
		for col, val := range rows[i] {
			parts = append(parts, fmt.Sprintf("%s=%v", col, val))
		}
		// Sorted so observation text is stable across runs.
		sort.Strings(parts)
		fmt.Fprintf(&b, "- %s\n", strings.Join(parts, ", "))
	}

	return strings.TrimSpace(b.String())
}
