package jobs

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON array of postings from path.
func LoadFile(path string) (*Jobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading postings file: %w", err)
	}

	var items []*Job
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing postings file %q: %w", path, err)
	}

	for i, job := range items {
		if job.ID == "" {
			return nil, fmt.Errorf("posting %d in %q has no id", i, path)
		}
	}

	return &Jobs{Items: items}, nil
}
