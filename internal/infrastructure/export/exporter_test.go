package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/doeshing/gpa/internal/domain"
)

func sampleResults() []domain.AnalysisResult {
	return []domain.AnalysisResult{
		{
			Filename:    "a.pdf",
			Summary:     "First, with a comma.",
			KeyEntities: "Acme",
			ActionItems: "Call \"Bob\"",
			Keywords:    []string{"alpha", "beta"},
		},
		{
			Filename: "b.pdf",
			Error:    "remote error: gemini /in/b.pdf: api quota exceeded",
		},
		{
			Filename: "c.pdf",
			Summary:  "Multi\nline",
			Keywords: []string{"gamma"},
		},
	}
}

func TestExportCSVAndJSONProduceTwoFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	outputs, err := NewFileExporter("", false).Export(sampleResults(), []domain.ExportFormat{domain.FormatCSV, domain.FormatJSON}, dir)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %v", outputs)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 2 {
		t.Fatalf("expected exactly 2 files in output dir, got %d", len(files))
	}
	if filepath.Base(outputs[domain.FormatCSV]) != "analysis_results.csv" {
		t.Fatalf("csv path = %s", outputs[domain.FormatCSV])
	}

	f, err := os.Open(outputs[domain.FormatCSV])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if diff := cmp.Diff(domain.ExportColumns, rows[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if rows[1][4] != "alpha, beta" || rows[1][3] != `Call "Bob"` || rows[3][1] != "Multi\nline" {
		t.Fatalf("unexpected csv rows: %q", rows)
	}
	if rows[2][5] == "" {
		t.Fatal("failed result should keep its error column")
	}

	raw, err := os.ReadFile(outputs[domain.FormatJSON])
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 json records, got %d", len(decoded))
	}
	if decoded[0]["error"] != nil || decoded[1]["error"] == nil {
		t.Fatalf("error field mismatch: %v / %v", decoded[0]["error"], decoded[1]["error"])
	}
	if kw, ok := decoded[1]["keywords"].([]any); !ok || len(kw) != 0 {
		t.Fatalf("missing keywords should export as empty list, got %v", decoded[1]["keywords"])
	}
}

func TestExportJSONLOneLinePerResult(t *testing.T) {
	dir := t.TempDir()
	outputs, err := NewFileExporter("batch", false).Export(sampleResults(), []domain.ExportFormat{domain.FormatJSONL}, dir)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	raw, err := os.ReadFile(outputs[domain.FormatJSONL])
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["filename"] != "a.pdf" {
		t.Fatalf("order not preserved: %v", first)
	}
	if filepath.Base(outputs[domain.FormatJSONL]) != "batch.jsonl" {
		t.Fatalf("unexpected name %s", outputs[domain.FormatJSONL])
	}
}

func TestExportExcelRows(t *testing.T) {
	dir := t.TempDir()
	outputs, err := NewFileExporter("", false).Export(sampleResults(), []domain.ExportFormat{domain.FormatExcel}, dir)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	path := outputs[domain.FormatExcel]
	if filepath.Ext(path) != ".xlsx" {
		t.Fatalf("unexpected extension %s", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "filename" || rows[1][0] != "a.pdf" || rows[1][4] != "alpha, beta" {
		t.Fatalf("unexpected rows: %q", rows)
	}
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != sheetName {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}

func TestExportIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	exp := NewFileExporter("", false)
	formats := []domain.ExportFormat{domain.FormatCSV, domain.FormatJSONL}
	first, err := exp.Export(sampleResults(), formats, dir)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := os.ReadFile(first[domain.FormatCSV])
	second, err := exp.Export(sampleResults(), formats, dir)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(second[domain.FormatCSV])
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("paths changed between runs:\n%s", diff)
	}
	if string(a) != string(b) {
		t.Fatal("csv content changed between identical runs")
	}
}

func TestExportTimestampSuffix(t *testing.T) {
	exp := NewFileExporter("analysis_results", true)
	exp.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }
	outputs, err := exp.Export(nil, []domain.ExportFormat{domain.FormatJSON}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(outputs[domain.FormatJSON]); got != "analysis_results_20250304_050607.json" {
		t.Fatalf("unexpected name %s", got)
	}
}
