package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Source loads the raw table for a dataset.
type Source interface {
	Load(ctx context.Context, kind Kind) (*Table, error)
	Name() string
}

// CSVSource reads datasets from flat files under Dir.
type CSVSource struct {
	Dir   string
	Files map[Kind]string
}

// NewCSVSource maps dataset keys ("hospital") to file names inside dir.
func NewCSVSource(dir string, files map[string]string) *CSVSource {
	byKind := make(map[Kind]string, len(files))
	for key, file := range files {
		if k, err := ParseKind(key); err == nil {
			byKind[k] = file
		}
	}
	return &CSVSource{Dir: dir, Files: byKind}
}

func (s *CSVSource) Name() string { return "csv" }

// Path returns the backing file of kind.
func (s *CSVSource) Path(kind Kind) (string, bool) {
	file, ok := s.Files[kind]
	if !ok {
		return "", false
	}
	return filepath.Join(s.Dir, file), true
}

func (s *CSVSource) Load(ctx context.Context, kind Kind) (*Table, error) {
	path, ok := s.Path(kind)
	if !ok {
		return nil, fmt.Errorf("no file configured for dataset %s", kind)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}
