package tool

import (
	"context"
	"errors"
)

// Tool is the uniform invocation contract shared by every adapter. Adapters
// are stateless per call; anything an agent wants carried between calls
// travels through the orchestrator's turn context.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, query string) (*Result, error)
}

// Result is the outcome of a single tool invocation. It is scoped to one
// orchestrator loop; only the trace payload of the final message survives it.
type Result struct {
	// Content is a human-readable summary of the outcome, fed back to the
	// agent as an observation.
	Content string
	// Rows carries structured-query results.
	Rows []map[string]any
	// Snippets carries semantic-retrieval hits, scores descending.
	Snippets []Snippet
	// Meta holds adapter-specific extras kept for traceability.
	Meta map[string]any
}

// Snippet is one retrieved job-description fragment.
type Snippet struct {
	JobID string  `json:"job_id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

var (
	// ErrQueryTranslation marks a structured-query request whose intent
	// could not be turned into a valid query.
	ErrQueryTranslation = errors.New("query translation failed")
	// ErrDataUnavailable marks a structured-query backend failure.
	ErrDataUnavailable = errors.New("structured data unavailable")
	// ErrEmbedding marks a retrieval request whose query could not be embedded.
	ErrEmbedding = errors.New("query embedding failed")
	// ErrIndexUnavailable marks a retrieval index failure.
	ErrIndexUnavailable = errors.New("semantic index unavailable")
)
