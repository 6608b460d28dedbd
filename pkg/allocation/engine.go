package allocation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/devlibx/gox-base/v2"

	"github.com/toolate28/QDI/pkg/audit"
)

type engine struct {
	gox.CrossFunction
	policy *PolicyConfig
	sink   audit.Sink
}

// NewEngine creates an allocation engine. A nil policy gets the default
// baseline (80) and threshold factor (0.8); a nil sink disables audit output.
func NewEngine(cf gox.CrossFunction, policy *PolicyConfig, sink audit.Sink) (Engine, error) {
	if policy == nil {
		policy = &PolicyConfig{}
	}
	policy.SetupDefault()
	if sink == nil {
		sink = audit.NewNoOpSink()
	}
	return &engine{
		CrossFunction: cf,
		policy:        policy,
		sink:          sink,
	}, nil
}

func (e *engine) Allocate(ctx context.Context, demands []DemandRequest, capacity int) (*AllocationReport, error) {

	// Step 1 - reject malformed input at the boundary, never inside the loop
	if err := validateInput(demands, capacity); err != nil {
		return nil, err
	}

	// Step 2 - partition by eligibility (pure, no side effects)
	eligible, ineligible := e.partitionByEligibility(demands)

	// Step 3 - initial proportional split over the eligible demand
	allocations, used := e.allocateProportional(eligible, capacity)

	// Step 4 - hand leftover units to the least satisfied request until
	// capacity runs out or everyone is satisfied. Only the first
	// len(eligible) entries take part; ineligible requests stay at zero.
	redistribute(allocations, capacity-used)

	// Step 5 - append ineligible requests (input order) with zero allocation
	for _, d := range ineligible {
		allocations = append(allocations, Allocation{
			AgentID:   d.AgentID,
			Requested: d.Amount,
			Allocated: 0,
			FillRate:  fillRate(0, d.Amount),
			GroupTag:  groupTagOrDefault(d.GroupTag),
			Eligible:  false,
		})
	}

	report := e.assembleReport(allocations, capacity)

	// Best effort - the audit record must never change the numeric result
	e.emitAuditRecord(ctx, report, capacity)

	return report, nil
}

// validateInput enforces the caller-error taxonomy: negative capacity,
// negative amounts and non-finite numbers are rejected, not coerced.
func validateInput(demands []DemandRequest, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("invalid capacity: must be >= 0, got %d", capacity)
	}
	for i, d := range demands {
		if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) {
			return fmt.Errorf("invalid demand request: agent=%s index=%d has non-finite amount", d.AgentID, i)
		}
		if d.Amount < 0 {
			return fmt.Errorf("invalid demand request: agent=%s index=%d has negative amount %v", d.AgentID, i, d.Amount)
		}
		if d.QualityScore != nil && (math.IsNaN(*d.QualityScore) || math.IsInf(*d.QualityScore, 0)) {
			return fmt.Errorf("invalid demand request: agent=%s index=%d has non-finite quality score", d.AgentID, i)
		}
	}
	return nil
}

// partitionByEligibility splits requests into eligible and ineligible sets,
// preserving input order within each set. A missing quality score defaults to
// the policy baseline, which always clears the threshold.
func (e *engine) partitionByEligibility(demands []DemandRequest) (eligible []DemandRequest, ineligible []DemandRequest) {
	threshold := e.policy.EligibilityThreshold()
	for _, d := range demands {
		if d.EffectiveQualityScore(e.policy.BaselineQuality) >= threshold {
			eligible = append(eligible, d)
		} else {
			ineligible = append(ineligible, d)
		}
	}
	return eligible, ineligible
}

// allocateProportional computes the initial integer allocation for each
// eligible request: floor(amount/totalDemand * capacity) capped at the
// request itself, then a single token unit for any request (>= 1) floored to
// zero while unconsumed capacity remains. The token bump runs in input order
// and never pushes the total past capacity. Returns the allocations and the
// units consumed.
func (e *engine) allocateProportional(eligible []DemandRequest, capacity int) ([]Allocation, int) {
	allocations := make([]Allocation, 0, len(eligible))

	totalDemand := 0.0
	for _, d := range eligible {
		totalDemand += d.Amount
	}

	used := 0
	for _, d := range eligible {
		allocated := 0
		if totalDemand > 0 {
			allocated = int(math.Floor(d.Amount / totalDemand * float64(capacity)))
			// Whole units only and never beyond the request itself
			if limit := int(math.Floor(d.Amount)); allocated > limit {
				allocated = limit
			}
		}
		used += allocated
		allocations = append(allocations, Allocation{
			AgentID:   d.AgentID,
			Requested: d.Amount,
			Allocated: allocated,
			GroupTag:  groupTagOrDefault(d.GroupTag),
			Eligible:  true,
		})
	}

	// Token bump - no one starves purely due to flooring. Sub-unit requests
	// (amount < 1) are skipped: a whole unit would exceed the request.
	for i := range allocations {
		if allocations[i].Allocated == 0 && allocations[i].Requested >= 1 && used < capacity {
			allocations[i].Allocated = 1
			used++
		}
	}

	for i := range allocations {
		allocations[i].FillRate = fillRate(allocations[i].Allocated, allocations[i].Requested)
	}

	return allocations, used
}

// redistribute grants the remaining units one at a time to the needy
// allocation with the lowest fill rate (ties go to the earliest entry).
// Mutates the slice in place; terminates after at most `remaining`
// iterations or when no allocation is still below its request.
func redistribute(allocations []Allocation, remaining int) {
	for remaining > 0 {
		target := -1
		for i := range allocations {
			if !allocations[i].Eligible {
				continue
			}
			if float64(allocations[i].Allocated+1) > allocations[i].Requested {
				continue // one more unit would overshoot the request
			}
			if target == -1 || allocations[i].FillRate < allocations[target].FillRate {
				target = i
			}
		}
		if target == -1 {
			break // leftover capacity goes unused
		}
		allocations[target].Allocated++
		allocations[target].FillRate = fillRate(allocations[target].Allocated, allocations[target].Requested)
		remaining--
	}
}

func (e *engine) assembleReport(allocations []Allocation, capacity int) *AllocationReport {
	report := &AllocationReport{
		Allocations: allocations,
	}
	for _, a := range allocations {
		report.TotalAllocated += a.Allocated
		report.TotalRequested += a.Requested
	}
	if capacity > 0 {
		report.Efficiency = float64(report.TotalAllocated) / float64(capacity) * 100
	}
	report.Fairness = ComputeFairnessMetrics(allocations)
	return report
}

// auditOutcome is the summary payload attached to the cycle's audit record.
type auditOutcome struct {
	Capacity        int     `json:"capacity"`
	Requests        int     `json:"requests"`
	TotalAllocated  int     `json:"total_allocated"`
	Efficiency      float64 `json:"efficiency"`
	GiniCoefficient float64 `json:"gini_coefficient"`
	GroupParity     float64 `json:"group_parity"`
}

func (e *engine) emitAuditRecord(ctx context.Context, report *AllocationReport, capacity int) {
	record := &audit.Record{
		Description: fmt.Sprintf("allocation cycle: %d requests against capacity %d", len(report.Allocations), capacity),
		Tags:        []string{"allocation", "fairness"},
		Outcome: auditOutcome{
			Capacity:        capacity,
			Requests:        len(report.Allocations),
			TotalAllocated:  report.TotalAllocated,
			Efficiency:      report.Efficiency,
			GiniCoefficient: report.Fairness.GiniCoefficient,
			GroupParity:     report.Fairness.GroupParity,
		},
	}
	if _, err := e.sink.Write(ctx, record); err != nil {
		slog.Warn("allocation engine - audit sink write failed, result unaffected", slog.String("error", err.Error()))
	}
}

// fillRate guards divide-by-zero: a zero request is trivially fully served.
func fillRate(allocated int, requested float64) float64 {
	if requested == 0 {
		return 1.0
	}
	return float64(allocated) / requested
}

func groupTagOrDefault(tag string) string {
	if tag == "" {
		return DefaultGroupTag
	}
	return tag
}
