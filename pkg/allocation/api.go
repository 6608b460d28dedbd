package allocation

import (
	"context"
)

// DefaultGroupTag is the group used for the parity metric when a request does
// not carry one.
const DefaultGroupTag = "UNSPECIFIED"

// DemandRequest is one agent's resource request for a single allocation cycle.
// Requests are caller-owned and never mutated or persisted by the engine.
type DemandRequest struct {
	// AgentID is an opaque unique identifier for the requesting agent.
	AgentID string `json:"agent_id"`

	// ResourceType is a caller-defined tag. The engine carries it through but
	// does not interpret it.
	ResourceType string `json:"resource_type"`

	// Amount is the requested quantity. It may be fractional; the engine uses
	// it for ratio computation and grants whole units only.
	Amount float64 `json:"amount"`

	// QualityScore is an externally computed eligibility signal in [0,100].
	// When nil the policy baseline applies.
	QualityScore *float64 `json:"quality_score,omitempty"`

	// GroupTag (e.g. a timezone or category) feeds only the group-parity
	// metric, never the allocation weighting.
	GroupTag string `json:"group_tag,omitempty"`
}

// EffectiveQualityScore returns the request's quality score, or the given
// baseline when the request carries none.
func (d *DemandRequest) EffectiveQualityScore(baseline float64) float64 {
	if d.QualityScore == nil {
		return baseline
	}
	return *d.QualityScore
}

// Allocation is the per-request outcome of one allocation cycle.
type Allocation struct {
	AgentID   string  `json:"agent_id"`
	Requested float64 `json:"requested"`
	Allocated int     `json:"allocated"`
	FillRate  float64 `json:"fill_rate"`

	// GroupTag is copied from the request so the parity metric and reports
	// stay self-contained.
	GroupTag string `json:"group_tag"`

	// Eligible records whether the request passed the eligibility filter.
	// Ineligible requests always have Allocated = 0.
	Eligible bool `json:"eligible"`
}

// FairnessMetrics quantifies how evenly a cycle served its population. All
// rates are computed over every allocation, eligible or not.
type FairnessMetrics struct {
	// GiniCoefficient over the fill-rate vector, in [0,1]; 0 means all fill
	// rates are equal (including the all-zero population).
	GiniCoefficient float64 `json:"gini_coefficient"`

	MinFillRate float64 `json:"min_fill_rate"`
	MaxFillRate float64 `json:"max_fill_rate"`
	AvgFillRate float64 `json:"avg_fill_rate"`

	// GroupParity in [0,100]; 100 means the mean fill rate is identical
	// across all group tags (trivially so with zero or one group).
	GroupParity float64 `json:"group_parity"`
}

// AllocationReport is the aggregate result of one allocation cycle. It is
// derived entirely from the allocation list and the capacity; the engine
// keeps no state between cycles.
type AllocationReport struct {
	// Allocations holds eligible requests first (in input order), then
	// ineligible requests (in input order). The order carries no semantic
	// weight but is deterministic.
	Allocations []Allocation `json:"allocations"`

	TotalAllocated int     `json:"total_allocated"`
	TotalRequested float64 `json:"total_requested"`

	// Efficiency = TotalAllocated / capacity * 100, or 0 when capacity is 0.
	Efficiency float64 `json:"efficiency"`

	Fairness FairnessMetrics `json:"fairness_metrics"`
}

// Engine computes equitable allocations of a bounded integer capacity across
// competing demand requests. Implementations are pure and stateless between
// calls; concurrent callers must pass independent demand slices.
type Engine interface {
	// Allocate runs one allocation cycle: eligibility filtering, proportional
	// allocation, max-min redistribution of remainder units, and fairness
	// metrics. It rejects negative capacity and malformed requests (negative
	// or non-finite amounts, non-finite quality scores) before computing;
	// every other degenerate input has a defined, non-error result.
	Allocate(ctx context.Context, demands []DemandRequest, capacity int) (*AllocationReport, error)
}
