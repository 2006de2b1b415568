package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubUploader struct {
	err error
}

func (u stubUploader) Enabled() bool               { return true }
func (u stubUploader) Check(context.Context) error { return u.err }
func (u stubUploader) Upload(context.Context, []string) ([]string, error) {
	return nil, nil
}

func statuses(report domain.HealthReport) map[string]domain.HealthStatus {
	out := map[string]domain.HealthStatus{}
	for _, c := range report.Checks {
		out[c.Name] = c.Status
	}
	return out
}

func TestDoctorHealthyEnvironment(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(in, "a.PDF"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := domain.Config{
		ConfigFormatVersion: "1",
		Gemini:              domain.GeminiSettings{APIKeyEnv: "KEY"},
		Paths:               domain.PathSettings{InputDir: in, OutputDir: filepath.Join(dir, "out", "nested")},
		Storage:             domain.StorageSettings{Enabled: true, Endpoint: "localhost:9000", Bucket: "b"},
	}
	svc := &Service{
		ConfigProvider: stubConfig{cfg: cfg},
		Validate:       func(domain.Config) error { return nil },
		Uploader:       func(domain.Config) (ports.ArtifactUploader, error) { return stubUploader{}, nil },
		Getenv:         func(string) string { return "secret" },
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected errors: %+v", report.Checks)
	}
	got := statuses(report)
	for _, name := range []string{"Config file", "Config values", "API key", "Input directory", "Output directory", "Storage"} {
		if got[name] != domain.HealthOK {
			t.Fatalf("%s = %q, report %+v", name, got[name], report.Checks)
		}
	}
	if got["Cache"] != domain.HealthWarn {
		t.Fatalf("disabled cache should warn, got %q", got["Cache"])
	}
}

func TestDoctorReportsProblems(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := domain.Config{
		Paths:   domain.PathSettings{InputDir: filepath.Join(dir, "missing"), OutputDir: filepath.Join(file, "out")},
		Storage: domain.StorageSettings{Enabled: true},
	}
	svc := &Service{
		ConfigProvider: stubConfig{cfg: cfg},
		Uploader: func(domain.Config) (ports.ArtifactUploader, error) {
			return stubUploader{err: errors.New("connection refused")}, nil
		},
		Getenv: func(string) string { return "" },
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := statuses(report)
	for _, name := range []string{"API key", "Input directory", "Output directory", "Storage"} {
		if got[name] != domain.HealthError {
			t.Fatalf("%s = %q, report %+v", name, got[name], report.Checks)
		}
	}
}

func TestDoctorConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("bad yaml")}}
	report, err := svc.Run(context.Background())
	if err == nil || !report.HasErrors() || len(report.Checks) != 1 {
		t.Fatalf("expected single failing check, got %v %+v", err, report)
	}
}
