// Package audit defines the provenance sink the allocation engine writes its
// cycle records to. Sinks are best-effort collaborators: callers treat writes
// as fire-and-forget and never let a sink failure change a computed result.
package audit

import (
	"context"

	"github.com/google/uuid"
)

// Record is one opaque provenance entry.
type Record struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Outcome     any      `json:"outcome"`
}

// Sink accepts provenance records and returns an identifier for each.
type Sink interface {
	Write(ctx context.Context, record *Record) (string, error)
}

type noOpSink struct{}

// NewNoOpSink returns a sink that discards every record.
func NewNoOpSink() Sink {
	return &noOpSink{}
}

func (s *noOpSink) Write(ctx context.Context, record *Record) (string, error) {
	return uuid.NewString(), nil
}
