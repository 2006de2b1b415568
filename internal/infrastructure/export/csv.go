package export

import (
	"encoding/csv"
	"os"

	"github.com/doeshing/gpa/internal/domain"
)

func writeCSV(path string, results []domain.AnalysisResult) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.OutputFilePermissions)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(domain.ExportColumns); err != nil {
		f.Close()
		return err
	}
	for _, r := range results {
		if err := w.Write(r.Row()); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
