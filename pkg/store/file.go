package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/augment/pkg/errors"
)

// FileStore keeps each record as <dir>/<id>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "record directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create record dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the record directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, r *Record) error {
	if err := prepare(r); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.recordPath(r.ID), data, 0o644); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.recordPath(id), id)
}

func (s *FileStore) read(path, id string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &r, nil
}

// List reads every record file; unreadable files are skipped.
func (s *FileStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read record dir: %w", err)
	}
	var all []*Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := e.Name()[:len(e.Name())-len(".json")]
		r, err := s.read(filepath.Join(s.dir, e.Name()), id)
		if err != nil {
			continue
		}
		all = append(all, r)
	}
	return filterSort(all, opts), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.recordPath(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("remove record file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
