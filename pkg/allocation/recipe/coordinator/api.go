package coordinator

import (
	"context"

	"github.com/toolate28/QDI/pkg/allocation"
)

// PoolCycle describes one allocation cycle for one resource pool.
type PoolCycle struct {
	// Pool names the resource pool (e.g. "gpu-us-east").
	Pool string `json:"pool"`

	// ResourceType is carried through to reports; the engine does not
	// interpret it.
	ResourceType string `json:"resource_type"`

	// Capacity is the pool's total capacity for this cycle, in whole units.
	Capacity int `json:"capacity"`

	// Demands is the demand list for this pool. The coordinator hands the
	// engine its own copy, so callers may reuse the slice across cycles.
	Demands []allocation.DemandRequest `json:"demands"`
}

// CycleResult pairs a cycle's report with its identity. Err is set instead of
// Report when the cycle was rejected at the input boundary.
type CycleResult struct {
	CycleId string                       `json:"cycle_id"`
	Pool    string                       `json:"pool"`
	Report  *allocation.AllocationReport `json:"report,omitempty"`
	Err     error                        `json:"-"`
}

// Coordinator runs allocation cycles across independent resource pools.
type Coordinator interface {
	// RunCycle runs a single pool's cycle.
	RunCycle(ctx context.Context, cycle PoolCycle) (*CycleResult, error)

	// RunCycles runs every cycle concurrently, one goroutine per pool, each
	// on its own copy of the demand list. Results are returned in input
	// order; per-cycle failures land in CycleResult.Err.
	RunCycles(ctx context.Context, cycles []PoolCycle) []*CycleResult
}
