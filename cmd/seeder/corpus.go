package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	jobdex "github.com/kailas-cloud/jobdex/pkg/sdk"
)

// corpusEntry is one posting in a seed file.
type corpusEntry struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	JobCategory  string `yaml:"job_category"`
	BusinessType string `yaml:"business_type"`
	Location     string `yaml:"location"`
	MinSalary    *int   `yaml:"min_salary"`
}

type corpus struct {
	Jobs []corpusEntry `yaml:"jobs"`
}

func loadCorpus(path string) ([]jobdex.Posting, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return parseCorpus(f)
}

func parseCorpus(r io.Reader) ([]jobdex.Posting, error) {
	var c corpus
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Jobs))
	out := make([]jobdex.Posting, 0, len(c.Jobs))
	for i, e := range c.Jobs {
		if e.ID != "" {
			if _, dup := seen[e.ID]; dup {
				return nil, fmt.Errorf("entry %d: duplicate id %q", i, e.ID)
			}
			seen[e.ID] = struct{}{}
		}
		out = append(out, jobdex.Posting{
			ID:           e.ID,
			Title:        e.Title,
			Description:  e.Description,
			JobCategory:  e.JobCategory,
			BusinessType: e.BusinessType,
			Location:     e.Location,
			MinSalary:    e.MinSalary,
		})
	}
	return out, nil
}
