package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devlibx/gox-base/v2"
	"github.com/devlibx/gox-base/v2/errors"
	"github.com/google/uuid"

	"github.com/toolate28/QDI/pkg/allocation"
)

type coordinatorImpl struct {
	gox.CrossFunction
	engine   allocation.Engine
	reporter PoolReporter
}

// NewCoordinator creates a coordinator over the given engine. A nil reporter
// disables per-pool console output.
func NewCoordinator(
	cf gox.CrossFunction,
	engine allocation.Engine,
	reporter PoolReporter,
) (Coordinator, error) {
	c := coordinatorImpl{
		CrossFunction: cf,
		engine:        engine,
		reporter:      reporter,
	}
	return &c, nil
}

func (c *coordinatorImpl) RunCycle(ctx context.Context, cycle PoolCycle) (*CycleResult, error) {
	cycleId := uuid.NewString()

	// The engine mutates its working array while redistributing, so each
	// cycle gets a private copy of the demand list.
	demands := make([]allocation.DemandRequest, len(cycle.Demands))
	copy(demands, cycle.Demands)

	report, err := c.engine.Allocate(ctx, demands, cycle.Capacity)
	if err != nil {
		return nil, errors.Wrap(err, "allocation cycle failed: pool=%s cycle=%s", cycle.Pool, cycleId)
	}

	result := &CycleResult{
		CycleId: cycleId,
		Pool:    cycle.Pool,
		Report:  report,
	}

	slog.Info("allocation cycle complete",
		slog.String("pool", cycle.Pool),
		slog.String("cycle", cycleId),
		slog.Int("allocated", report.TotalAllocated))

	if c.reporter != nil {
		fmt.Print(c.reporter.ReportPool(BuildPoolData(c.CrossFunction, cycle, result)))
	}

	return result, nil
}

func (c *coordinatorImpl) RunCycles(ctx context.Context, cycles []PoolCycle) []*CycleResult {
	results := make([]*CycleResult, len(cycles))

	var wg sync.WaitGroup
	for i, cycle := range cycles {
		wg.Add(1)
		go func(slot int, cycle PoolCycle) {
			defer wg.Done()
			result, err := c.RunCycle(ctx, cycle)
			if err != nil {
				results[slot] = &CycleResult{Pool: cycle.Pool, Err: err}
				return
			}
			results[slot] = result
		}(i, cycle)
	}
	wg.Wait()

	return results
}
