package domain

import (
	"fmt"
	"strings"
)

// ExportFormat names one output rendering.
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatJSON  ExportFormat = "json"
	FormatJSONL ExportFormat = "jsonl"
	FormatExcel ExportFormat = "excel"
)

// AllExportFormats lists the supported formats in a stable order.
var AllExportFormats = []ExportFormat{FormatCSV, FormatJSON, FormatJSONL, FormatExcel}

// DefaultExportFormats returns csv and jsonl.
func DefaultExportFormats() []ExportFormat {
	return []ExportFormat{FormatCSV, FormatJSONL}
}

// Extension returns the file extension without the dot.
func (f ExportFormat) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// ParseFormat accepts a format name case-insensitively; xlsx is an alias for excel.
func ParseFormat(raw string) (ExportFormat, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "xlsx" {
		return FormatExcel, nil
	}
	for _, f := range AllExportFormats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv|json|jsonl|excel)", raw)
}

// ParseFormats splits comma separated values, drops duplicates and keeps first-seen order.
func ParseFormats(values []string) ([]ExportFormat, error) {
	seen := make(map[ExportFormat]bool)
	var formats []ExportFormat
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if seen[f] {
				continue
			}
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no export format selected")
	}
	return formats, nil
}
