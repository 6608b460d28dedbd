package audit

import (
	"context"
	"sync"
	"time"

	"github.com/devlibx/gox-base/v2"
	"github.com/google/uuid"
)

// StoredRecord is a record as held by the in-memory sink.
type StoredRecord struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Record    Record    `json:"record"`
}

// MemorySink keeps records in memory in write order. Meant for tests and
// examples; safe for concurrent use.
type MemorySink struct {
	gox.CrossFunction
	mutex   sync.RWMutex
	records []StoredRecord
}

func NewMemorySink(cf gox.CrossFunction) *MemorySink {
	return &MemorySink{
		CrossFunction: cf,
		records:       make([]StoredRecord, 0),
	}
}

func (s *MemorySink) Write(ctx context.Context, record *Record) (string, error) {
	id := uuid.NewString()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.records = append(s.records, StoredRecord{
		Id:        id,
		CreatedAt: s.Now(),
		Record:    *record,
	})
	return id, nil
}

// Records returns a copy of everything written so far.
func (s *MemorySink) Records() []StoredRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]StoredRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id, or nil if unknown.
func (s *MemorySink) Get(id string) *StoredRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for i := range s.records {
		if s.records[i].Id == id {
			r := s.records[i]
			return &r
		}
	}
	return nil
}
