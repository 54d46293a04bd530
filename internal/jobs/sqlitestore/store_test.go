package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/thariqabe666/finalproj-group-2/internal/jobs"
)

func openSeeded(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	err = store.Seed(context.Background(), []*jobs.Job{
		{
			ID: "j1", Title: "Backend Engineer", Company: "Acme", Area: "Jakarta",
			SalaryFrom: 1000, SalaryTo: 2000, SalaryCurrency: "USD",
			Description: "Build Go services", Skills: []string{"Go", "SQL"},
		},
		{
			ID: "j2", Title: "Backend Engineer", Company: "Globex", Area: "Jakarta",
			SalaryFrom: 2000, SalaryTo: 3000, SalaryCurrency: "USD",
			Description: "Scale payment APIs",
		},
		{
			ID: "j3", Title: "Data Analyst", Company: "Initech", Area: "Bandung",
			Description: "Dashboards and reports",
		},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	return store
}

func TestQueryAggregates(t *testing.T) {
	store := openSeeded(t)

	rows, err := store.Query(context.Background(),
		`SELECT AVG((salary_from + salary_to) / 2.0) AS avg_salary, COUNT(*) AS n
		 FROM jobs WHERE title = 'Backend Engineer' AND area = 'Jakarta'`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	if got := rows[0]["avg_salary"].(float64); got != 2000 {
		t.Fatalf("expected avg salary 2000, got %v", got)
	}
	if got := rows[0]["n"].(int64); got != 2 {
		t.Fatalf("expected 2 matching jobs, got %v", got)
	}
}

func TestQueryRejectsNonSelect(t *testing.T) {
	store := openSeeded(t)

	if _, err := store.Query(context.Background(), "DELETE FROM jobs"); err == nil {
		t.Fatalf("expected non-select statement to be rejected")
	}

	if _, err := store.Query(context.Background(), "  select id from jobs limit 1"); err != nil {
		t.Fatalf("lowercase select should be allowed: %v", err)
	}
}

func TestQueryRejectsMultipleStatements(t *testing.T) {
	store := openSeeded(t)

	if _, err := store.Query(context.Background(), "SELECT id FROM jobs; DROP TABLE jobs"); err == nil {
		t.Fatalf("expected stacked statements to be rejected")
	}

	// A single trailing semicolon is harmless and common in model output.
	if _, err := store.Query(context.Background(), "SELECT id FROM jobs LIMIT 1;"); err != nil {
		t.Fatalf("trailing semicolon should be allowed: %v", err)
	}
}

func TestAllReturnsSeededJobs(t *testing.T) {
	store := openSeeded(t)

	all, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}

	if all.Len() != 3 {
		t.Fatalf("expected 3 jobs, got %d", all.Len())
	}

	j1 := all.FindByID("j1")
	if j1 == nil {
		t.Fatalf("expected to find j1")
	}
	if len(j1.Skills) != 2 || j1.Skills[0] != "Go" {
		t.Fatalf("unexpected skills: %v", j1.Skills)
	}
}
