package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// AnalysisSchemaJSON is the JSON Schema every structured model reply must satisfy.
//
//go:embed defaults/analysis_schema.json
var AnalysisSchemaJSON []byte
