// Package export renders analysis results to CSV, JSON, JSON Lines and Excel.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

type writerFunc func(path string, results []domain.AnalysisResult) error

var writers = map[domain.ExportFormat]writerFunc{
	domain.FormatCSV:   writeCSV,
	domain.FormatJSON:  writeJSON,
	domain.FormatJSONL: writeJSONL,
	domain.FormatExcel: writeExcel,
}

// FileExporter writes one file per requested format.
type FileExporter struct {
	prefix    string
	timestamp bool
	now       func() time.Time
}

// NewFileExporter builds an exporter. With timestamp set, file names gain a
// _YYYYMMDD_HHMMSS suffix.
func NewFileExporter(prefix string, timestamp bool) *FileExporter {
	if prefix == "" {
		prefix = domain.DefaultExportPrefix
	}
	return &FileExporter{prefix: prefix, timestamp: timestamp, now: time.Now}
}

// Export implements ports.Exporter. Results are written in the order given.
func (e *FileExporter) Export(results []domain.AnalysisResult, formats []domain.ExportFormat, outputDir string) (map[domain.ExportFormat]string, error) {
	if err := os.MkdirAll(outputDir, domain.DirectoryPermissions); err != nil {
		return nil, domain.IOError("create output dir", outputDir, err)
	}
	base := e.baseName()
	outputs := make(map[domain.ExportFormat]string, len(formats))
	for _, format := range formats {
		write, ok := writers[format]
		if !ok {
			return outputs, domain.ConfigError("export", fmt.Errorf("unsupported format %q", format))
		}
		path := filepath.Join(outputDir, base+"."+format.Extension())
		if err := write(path, results); err != nil {
			return outputs, domain.IOError("export "+string(format), path, err)
		}
		outputs[format] = path
	}
	return outputs, nil
}

func (e *FileExporter) baseName() string {
	if !e.timestamp {
		return e.prefix
	}
	return e.prefix + "_" + e.now().Format(domain.ExportTimestampLayout)
}

var _ ports.Exporter = (*FileExporter)(nil)
