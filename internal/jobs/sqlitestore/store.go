package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thariqabe666/finalproj-group-2/internal/jobs"

	_ "modernc.org/sqlite"
)

// Store holds the relational job/salary dataset. The orchestration core
// only reaches it through the structured-query tool adapter.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite dataset at the given path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode keeps concurrent readers from blocking each other.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		area TEXT NOT NULL,
		salary_from INTEGER,
		salary_to INTEGER,
		salary_currency TEXT,
		experience TEXT,
		description TEXT NOT NULL,
		skills TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_area ON jobs(area);
	CREATE INDEX IF NOT EXISTS idx_jobs_title ON jobs(title);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Schema describes the queryable tables for the NL-to-SQL translation prompt.
func (s *Store) Schema() string {
	return `Table jobs(
  id TEXT PRIMARY KEY,
  title TEXT,            -- job title, e.g. 'Backend Engineer'
  company TEXT,
  area TEXT,             -- city or region, e.g. 'Jakarta'
  salary_from INTEGER,   -- monthly salary lower bound
  salary_to INTEGER,     -- monthly salary upper bound
  salary_currency TEXT,
  experience TEXT,       -- required experience band
  description TEXT,
  skills TEXT            -- comma separated skill list
)`
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts the provided jobs, replacing postings with matching IDs.
func (s *Store) Seed(ctx context.Context, items []*jobs.Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO jobs
		(id, title, company, area, salary_from, salary_to, salary_currency, experience, description, skills)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, job := range items {
		_, err := stmt.ExecContext(ctx,
			job.ID, job.Title, job.Company, job.Area,
			job.SalaryFrom, job.SalaryTo, job.SalaryCurrency,
			job.Experience, job.Description, strings.Join(job.Skills, ","),
		)
		if err != nil {
			return fmt.Errorf("seed job %s: %w", job.ID, err)
		}
	}

	return tx.Commit()
}

// All returns every posting, used to build the semantic index at startup.
func (s *Store) All(ctx context.Context) (*jobs.Jobs, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, company, area, salary_from, salary_to, salary_currency, experience, description, skills
		FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	result := &jobs.Jobs{}
	for rows.Next() {
		var job jobs.Job
		var salaryFrom, salaryTo sql.NullInt64
		var currency, experience, skills sql.NullString

		err := rows.Scan(
			&job.ID, &job.Title, &job.Company, &job.Area,
			&salaryFrom, &salaryTo, &currency, &experience,
			&job.Description, &skills,
		)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}

		job.SalaryFrom = int(salaryFrom.Int64)
		job.SalaryTo = int(salaryTo.Int64)
		job.SalaryCurrency = currency.String
		job.Experience = experience.String
		if skills.String != "" {
			job.Skills = strings.Split(skills.String, ",")
		}

		result.Items = append(result.Items, &job)
	}

	return result, rows.Err()
}

// Query executes a read-only SELECT and returns the rows as loosely typed
// maps in column order. Statements other than a single SELECT are rejected.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(query), ";")
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return nil, fmt.Errorf("only SELECT statements are allowed, got %q", firstWord(trimmed))
	}
	if strings.Contains(trimmed, ";") {
		return nil, fmt.Errorf("only a single statement is allowed")
	}

	rows, err := s.db.QueryContext(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
