package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	domain "github.com/marchworks/stockroom/internal/domain/catalog"
)

// Store persists the catalog as a JSON array in a single file. Save always
// rewrites the whole file; there is no append or diff mode.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the record list. A missing file is an empty catalog, not an
// error.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	_ = ctx

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", s.path, err)
	}
	return records, nil
}

func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	_ = ctx

	if records == nil {
		records = []domain.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", s.path, err)
	}
	return nil
}
