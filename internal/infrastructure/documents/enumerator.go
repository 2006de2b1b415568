// Package documents finds PDFs on disk, fingerprints them and extracts their text.
package documents

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// DirSource enumerates PDFs directly inside a directory (no recursion).
type DirSource struct{}

// NewDirSource builds a DirSource.
func NewDirSource() *DirSource {
	return &DirSource{}
}

// List returns the PDFs of dir sorted by lowercase name, filtered by a
// case-insensitive glob and capped at maxDocs when maxDocs > 0.
func (s *DirSource) List(ctx context.Context, dir, filter string, maxDocs int) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.IOError("input directory not found", dir, err)
		}
		return nil, domain.IOError("stat input directory", dir, err)
	}
	if !info.IsDir() {
		return nil, domain.IOError("input path is not a directory", dir, nil)
	}

	pattern := strings.ToLower(strings.TrimSpace(filter))
	if pattern != "" {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, domain.ConfigError("invalid filter "+filter, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.IOError("read input directory", dir, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if !isCandidate(name) {
			continue
		}
		full := filepath.Join(dir, name)
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if pattern != "" {
			if ok, _ := path.Match(pattern, strings.ToLower(name)); !ok {
				continue
			}
		}
		docs = append(docs, domain.Document{
			Path:     full,
			Filename: name,
			Size:     fi.Size(),
			ModTime:  fi.ModTime(),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return strings.ToLower(docs[i].Filename) < strings.ToLower(docs[j].Filename)
	})
	if maxDocs > 0 && len(docs) > maxDocs {
		docs = docs[:maxDocs]
	}
	return docs, nil
}

func isCandidate(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

var _ ports.DocumentSource = (*DirSource)(nil)
