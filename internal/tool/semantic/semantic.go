package semantic

import (
	"context"
	"fmt"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"
	"github.com/thariqabe666/finalproj-group-2/internal/jobs"
	"github.com/thariqabe666/finalproj-group-2/internal/tool"

	"go.uber.org/zap"
)

const toolName = "semantic_search"

// Adapter answers descriptive queries by embedding them and searching the
// snippet index.
type Adapter struct {
	embedder ai.Embedder
	index    *Index
	topK     int
	logger   *zap.Logger
}

// New creates the semantic-retrieval adapter.
func New(embedder ai.Embedder, index *Index, topK int, logger *zap.Logger) *Adapter {
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{embedder: embedder, index: index, topK: topK, logger: logger}
}

func (a *Adapter) Name() string { return toolName }

func (a *Adapter) Description() string {
	return "Finds job postings by meaning: descriptive queries about roles, responsibilities, requirements, or 'jobs like X'. Returns ranked description snippets."
}

// Invoke embeds the query and returns the top-K most similar snippets with
// descending scores, each tagged with its source job ID.
func (a *Adapter) Invoke(ctx context.Context, query string) (*tool.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", tool.ErrEmbedding)
	}

	vector, err := a.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrEmbedding, err)
	}

	hits, err := a.index.Search(vector, a.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrIndexUnavailable, err)
	}

	a.logger.Debug("semantic search",
		zap.String("query", query),
		zap.Int("hits", len(hits)),
	)

	snippets := make([]tool.Snippet, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, tool.Snippet{JobID: hit.JobID, Text: hit.Text, Score: hit.Score})
	}

	return &tool.Result{
		Content:  renderSnippets(snippets),
		Snippets: snippets,
		Meta:     map[string]any{"top_k": a.topK, "hit_count": len(snippets)},
	}, nil
}

// BuildIndex embeds every posting's snippet and fills the index. Called once
// at startup; the orchestration core never touches the dataset directly.
func BuildIndex(ctx context.Context, embedder ai.Embedder, postings *jobs.Jobs, logger *zap.Logger) (*Index, error) {
	index := NewIndex()
	if postings == nil {
		return index, nil
	}

	for _, job := range postings.Items {
		snippet := job.Snippet()

		vector, err := embedder.EmbedQuery(ctx, snippet)
		if err != nil {
			return nil, fmt.Errorf("embed job %s: %w", job.ID, err)
		}
		if err := index.Add(job.ID, snippet, vector); err != nil {
			return nil, err
		}
	}

	if logger != nil {
		logger.Info("semantic index built", zap.Int("snippets", index.Len()))
	}
	return index, nil
}

func renderSnippets(snippets []tool.Snippet) string {
	if len(snippets) == 0 {
		return "No matching job descriptions found."
	}

	var b strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&b, "Match %d (job %s, score %.2f):\n%s\n\n", i+1, s.JobID, s.Score, s.Text)
	}
	return strings.TrimSpace(b.String())
}
