package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/pairmerge/pkg/bpe"
)

type tableRecord struct {
	ID        string
	Table     bpe.Table
	CreatedAt time.Time
}

// TableStore keeps pair tables produced by /v1/encode so that later decode
// requests can refer to them by id.
type TableStore struct {
	mu     sync.Mutex
	tables map[string]*tableRecord
}

func NewTableStore() *TableStore {
	return &TableStore{
		tables: make(map[string]*tableRecord),
	}
}

// Put stores a private copy of t and returns its id.
func (s *TableStore) Put(t bpe.Table, now time.Time) string {
	rec := &tableRecord{
		ID:        newTableID(),
		Table:     t.Clone(),
		CreatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[rec.ID] = rec
	return rec.ID
}

func (s *TableStore) Get(id string) (*tableRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tables[id]
	return rec, ok
}

func (s *TableStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return false
	}
	delete(s.tables, id)
	return true
}

func (s *TableStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables)
}

func newTableID() string {
	return "tbl_" + uuid.NewString()
}
