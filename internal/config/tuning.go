package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the optional YAML overlay for the similarity engine. Operators
// can adjust metric weights and extend the stopword set without a rebuild.
type Tuning struct {
	Weights struct {
		Cosine      *float64 `yaml:"cosine"`
		Jaccard     *float64 `yaml:"jaccard"`
		Levenshtein *float64 `yaml:"levenshtein"`
	} `yaml:"weights"`
	ExtraStopwords []string `yaml:"extra_stopwords"`
}

// LoadTuning reads the tuning file at path. A missing file or empty path is
// not an error; the caller keeps its configured values.
func LoadTuning(path string) (*Tuning, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var tuning Tuning
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return nil, err
	}
	return &tuning, nil
}

// Apply overlays the tuning values onto the similarity configuration.
func (t *Tuning) Apply(cfg *SimilarityConfig) {
	if t == nil || cfg == nil {
		return
	}
	if t.Weights.Cosine != nil {
		cfg.CosineWeight = *t.Weights.Cosine
	}
	if t.Weights.Jaccard != nil {
		cfg.JaccardWeight = *t.Weights.Jaccard
	}
	if t.Weights.Levenshtein != nil {
		cfg.LevenshteinWeight = *t.Weights.Levenshtein
	}
}
