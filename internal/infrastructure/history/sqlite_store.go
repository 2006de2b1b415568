package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// SQLiteStore persists run records in a SQLite database. When the database
// cannot be opened it degrades to a JSONL file beside it.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string) *SQLiteStore {
	fallback := NewFileStore(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl")
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return &SQLiteStore{path: path, fallback: fallback}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, fallback: fallback}
	}
	store := &SQLiteStore{db: db, path: path, fallback: fallback}
	if err := store.init(); err != nil {
		_ = db.Close()
		return &SQLiteStore{path: path, fallback: fallback}
	}
	return store
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER,
		duration_ms INTEGER,
		input_dir TEXT,
		output_dir TEXT,
		model TEXT,
		documents INTEGER,
		analyzed INTEGER,
		cache_hits INTEGER,
		failed INTEGER,
		outputs TEXT
	);`)
	return err
}

// Save inserts a run record, replacing any earlier record with the same id.
func (s *SQLiteStore) Save(record domain.RunRecord) error {
	if s.db == nil {
		return s.fallback.Save(record)
	}
	outputs, err := json.Marshal(record.Outputs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT OR REPLACE INTO runs
		(id, started_at, duration_ms, input_dir, output_dir, model, documents, analyzed, cache_hits, failed, outputs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.StartedAt.UnixNano(),
		record.DurationMS,
		record.InputDir,
		record.OutputDir,
		record.Model,
		record.Documents,
		record.Analyzed,
		record.CacheHits,
		record.Failed,
		string(outputs),
	)
	if err != nil {
		return domain.IOError("save history", s.path, err)
	}
	return nil
}

// Records returns the newest runs first. A limit of zero returns everything.
func (s *SQLiteStore) Records(limit int) ([]domain.RunRecord, error) {
	if s.db == nil {
		return s.fallback.Records(limit)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT id, started_at, duration_ms, input_dir, output_dir, model, documents, analyzed, cache_hits, failed, outputs FROM runs")
	builder.WriteString(" ORDER BY started_at DESC")
	var args []interface{}
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, domain.IOError("read history", s.path, err)
	}
	defer rows.Close()
	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts int64
		var outputs string
		if err := rows.Scan(&rec.ID, &ts, &rec.DurationMS, &rec.InputDir, &rec.OutputDir, &rec.Model,
			&rec.Documents, &rec.Analyzed, &rec.CacheHits, &rec.Failed, &outputs); err != nil {
			return nil, domain.IOError("read history", s.path, err)
		}
		rec.StartedAt = time.Unix(0, ts).UTC()
		_ = json.Unmarshal([]byte(outputs), &rec.Outputs)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all run records.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return domain.IOError("clear history", s.path, err)
	}
	return nil
}

// Path returns the database path, or the fallback file when degraded.
func (s *SQLiteStore) Path() string {
	if s.db == nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
