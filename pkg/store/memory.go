package store

import (
	"context"
	"sync"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/boxtf"
)

// MemoryStore keeps records in a map. Records are copied on the way in and
// out, so callers may modify what they hold.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Put(ctx context.Context, r *Record) error {
	if err := prepare(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = clone(*r)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	c := clone(r)
	return &c, nil
}

func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	s.mu.RLock()
	all := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		c := clone(r)
		all = append(all, &c)
	}
	s.mu.RUnlock()
	return filterSort(all, opts), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func clone(r Record) Record {
	r.Warnings = append([]boxtf.Warning(nil), r.Warnings...)
	r.Recipe.Steps = append([]augment.Step(nil), r.Recipe.Steps...)
	return r
}

var _ Store = (*MemoryStore)(nil)
