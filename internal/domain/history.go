package domain

import "time"

// RunRecord is the persisted summary of one pipeline run.
type RunRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	InputDir   string    `json:"input_dir"`
	OutputDir  string    `json:"output_dir"`
	Model      string    `json:"model"`
	Documents  int       `json:"documents"`
	Analyzed   int       `json:"analyzed"`
	CacheHits  int       `json:"cache_hits"`
	Failed     int       `json:"failed"`
	Outputs    []string  `json:"outputs"`
}
