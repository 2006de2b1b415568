package export

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/doeshing/gpa/internal/domain"
)

// record fixes the JSON key order to the export columns.
type record struct {
	Filename    string   `json:"filename"`
	Summary     string   `json:"summary"`
	KeyEntities string   `json:"key_entities"`
	ActionItems string   `json:"action_items"`
	Keywords    []string `json:"keywords"`
	Error       *string  `json:"error"`
}

func toRecord(r domain.AnalysisResult) record {
	rec := record{
		Filename:    r.Filename,
		Summary:     r.Summary,
		KeyEntities: r.KeyEntities,
		ActionItems: r.ActionItems,
		Keywords:    r.Keywords,
	}
	if rec.Keywords == nil {
		rec.Keywords = []string{}
	}
	if r.Error != "" {
		msg := r.Error
		rec.Error = &msg
	}
	return rec
}

func writeJSON(path string, results []domain.AnalysisResult) error {
	records := make([]record, 0, len(results))
	for _, r := range results {
		records = append(records, toRecord(r))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), domain.OutputFilePermissions)
}

func writeJSONL(path string, results []domain.AnalysisResult) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.OutputFilePermissions)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(toRecord(r)); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
