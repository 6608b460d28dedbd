package allocation

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/devlibx/gox-base/v2"
	"github.com/stretchr/testify/assert"

	"github.com/toolate28/QDI/pkg/audit"
)

func scoreOf(v float64) *float64 {
	return &v
}

func newTestEngine(t *testing.T, sink audit.Sink) Engine {
	engine, err := NewEngine(gox.NewNoOpCrossFunction(), nil, sink)
	assert.NoError(t, err)
	return engine
}

func TestEqualRequestsFullySatisfied(t *testing.T) {
	engine := newTestEngine(t, nil)

	report, err := engine.Allocate(context.Background(), []DemandRequest{
		{AgentID: "a1", Amount: 10, QualityScore: scoreOf(85)},
		{AgentID: "a2", Amount: 10, QualityScore: scoreOf(85)},
	}, 20)

	assert.NoError(t, err)
	assert.Equal(t, 10, report.Allocations[0].Allocated)
	assert.Equal(t, 10, report.Allocations[1].Allocated)
	assert.Equal(t, 20, report.TotalAllocated)
	assert.Equal(t, 100.0, report.Efficiency)
	assert.Equal(t, 0.0, report.Fairness.GiniCoefficient)
	assert.Equal(t, 1.0, report.Fairness.MinFillRate)
	assert.Equal(t, 1.0, report.Fairness.MaxFillRate)
}

func TestEligibilityFilter(t *testing.T) {
	engine := newTestEngine(t, nil)

	t.Run("BelowThresholdIsExcluded", func(t *testing.T) {
		// baseline 80 -> threshold 64; score 60 is out
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "good", Amount: 10, QualityScore: scoreOf(90)},
			{AgentID: "poor", Amount: 10, QualityScore: scoreOf(60)},
		}, 20)

		assert.NoError(t, err)

		// Eligible requests come first, then ineligible, both in input order
		assert.Equal(t, "good", report.Allocations[0].AgentID)
		assert.Equal(t, "poor", report.Allocations[1].AgentID)
		assert.True(t, report.Allocations[0].Eligible)
		assert.False(t, report.Allocations[1].Eligible)

		// The survivor is capped at its own request, not handed the full capacity
		assert.Equal(t, 10, report.Allocations[0].Allocated)
		assert.Equal(t, 0, report.Allocations[1].Allocated)
		assert.Equal(t, 10, report.TotalAllocated)
	})

	t.Run("ScoreAtThresholdIsEligible", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "edge", Amount: 5, QualityScore: scoreOf(64)},
		}, 5)
		assert.NoError(t, err)
		assert.True(t, report.Allocations[0].Eligible)
		assert.Equal(t, 5, report.Allocations[0].Allocated)
	})

	t.Run("MissingScoreDefaultsToBaseline", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "unscored", Amount: 5},
		}, 5)
		assert.NoError(t, err)
		assert.True(t, report.Allocations[0].Eligible)
	})

	t.Run("AllIneligiblePopulation", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "p1", Amount: 10, QualityScore: scoreOf(10), GroupTag: "us"},
			{AgentID: "p2", Amount: 10, QualityScore: scoreOf(20), GroupTag: "eu"},
		}, 50)
		assert.NoError(t, err)
		assert.Equal(t, 0, report.TotalAllocated)
		assert.Equal(t, 0.0, report.Efficiency)
		assert.Equal(t, 0.0, report.Fairness.GiniCoefficient)
		assert.Equal(t, 100.0, report.Fairness.GroupParity, "equally unserved groups are at perfect parity")
	})
}

func TestProportionalAllocation(t *testing.T) {
	engine := newTestEngine(t, nil)

	t.Run("SkewedDemandExactCapacity", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "small", Amount: 5, QualityScore: scoreOf(85)},
			{AgentID: "large", Amount: 20, QualityScore: scoreOf(85)},
		}, 15)
		assert.NoError(t, err)
		assert.Equal(t, 3, report.Allocations[0].Allocated)
		assert.Equal(t, 12, report.Allocations[1].Allocated)
		assert.Equal(t, 15, report.TotalAllocated)
	})

	t.Run("LeftoverUnitGoesToFirstOnFillRateTie", func(t *testing.T) {
		// floors: 3 and 12, both at fill rate 0.6; the extra unit goes to
		// the earlier request
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "small", Amount: 5, QualityScore: scoreOf(85)},
			{AgentID: "large", Amount: 20, QualityScore: scoreOf(85)},
		}, 16)
		assert.NoError(t, err)
		assert.Equal(t, 4, report.Allocations[0].Allocated)
		assert.Equal(t, 12, report.Allocations[1].Allocated)
	})

	t.Run("ZeroTotalDemand", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "idle1", Amount: 0, QualityScore: scoreOf(85)},
			{AgentID: "idle2", Amount: 0, QualityScore: scoreOf(85)},
		}, 10)
		assert.NoError(t, err)
		assert.Equal(t, 0, report.TotalAllocated)
		assert.Equal(t, 1.0, report.Allocations[0].FillRate, "nothing meaningfully requested is trivially served")
		assert.Equal(t, 1.0, report.Allocations[1].FillRate)
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "a", Amount: 10, QualityScore: scoreOf(85)},
		}, 0)
		assert.NoError(t, err)
		assert.Equal(t, 0, report.TotalAllocated)
		assert.Equal(t, 0.0, report.Efficiency)
	})

	t.Run("ZeroRequests", func(t *testing.T) {
		report, err := engine.Allocate(context.Background(), nil, 10)
		assert.NoError(t, err)
		assert.Empty(t, report.Allocations)
		assert.Equal(t, 0, report.TotalAllocated)
		assert.Equal(t, 0.0, report.Efficiency)
		assert.Equal(t, 0.0, report.Fairness.GiniCoefficient)
		assert.Equal(t, 100.0, report.Fairness.GroupParity)
	})
}

func TestTokenBump(t *testing.T) {
	engine := newTestEngine(t, nil)

	t.Run("SmallRequesterNotStarvedByFlooring", func(t *testing.T) {
		// 1/100 of demand at capacity 10 floors to zero; the token bump
		// hands over one unit before redistribution
		report, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "tiny", Amount: 1, QualityScore: scoreOf(85)},
			{AgentID: "huge", Amount: 99, QualityScore: scoreOf(85)},
		}, 10)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, report.Allocations[0].Allocated, 1)
		assert.LessOrEqual(t, report.TotalAllocated, 10)
	})

	t.Run("BumpClampedAtCapacity", func(t *testing.T) {
		// Ten single-unit requesters against capacity 5: all floor to zero,
		// the bump may serve only the first five
		demands := make([]DemandRequest, 0, 10)
		for i := 0; i < 10; i++ {
			demands = append(demands, DemandRequest{
				AgentID: fmt.Sprintf("agent-%d", i), Amount: 1, QualityScore: scoreOf(85),
			})
		}
		report, err := engine.Allocate(context.Background(), demands, 5)
		assert.NoError(t, err)
		assert.Equal(t, 5, report.TotalAllocated)
		for i := 0; i < 5; i++ {
			assert.Equal(t, 1, report.Allocations[i].Allocated)
		}
		for i := 5; i < 10; i++ {
			assert.Equal(t, 0, report.Allocations[i].Allocated)
		}
	})
}

func TestRedistribution(t *testing.T) {

	t.Run("LowestFillRateServedFirst", func(t *testing.T) {
		allocations := []Allocation{
			{AgentID: "low", Requested: 10, Allocated: 2, FillRate: 0.2, Eligible: true},
			{AgentID: "mid", Requested: 10, Allocated: 5, FillRate: 0.5, Eligible: true},
		}

		// Trace unit by unit: the least satisfied request must receive each
		// unit until the fill rates meet
		redistribute(allocations, 1)
		assert.Equal(t, 3, allocations[0].Allocated)
		assert.Equal(t, 5, allocations[1].Allocated)

		redistribute(allocations, 2)
		assert.Equal(t, 5, allocations[0].Allocated)
		assert.Equal(t, 5, allocations[1].Allocated)

		// Tie at 0.5 - input order wins
		redistribute(allocations, 1)
		assert.Equal(t, 6, allocations[0].Allocated)
		assert.Equal(t, 5, allocations[1].Allocated)
	})

	t.Run("StopsWhenAllSatisfied", func(t *testing.T) {
		allocations := []Allocation{
			{AgentID: "full", Requested: 2, Allocated: 2, FillRate: 1.0, Eligible: true},
		}
		redistribute(allocations, 5)
		assert.Equal(t, 2, allocations[0].Allocated, "leftover capacity goes unused")
	})

	t.Run("IneligibleNeverReceivesUnits", func(t *testing.T) {
		allocations := []Allocation{
			{AgentID: "out", Requested: 10, Allocated: 0, FillRate: 0, Eligible: false},
			{AgentID: "in", Requested: 10, Allocated: 5, FillRate: 0.5, Eligible: true},
		}
		redistribute(allocations, 3)
		assert.Equal(t, 0, allocations[0].Allocated)
		assert.Equal(t, 8, allocations[1].Allocated)
	})
}

func TestCapacityInvariant(t *testing.T) {
	engine := newTestEngine(t, nil)

	cases := []struct {
		name     string
		amounts  []float64
		capacity int
	}{
		{"HeavySkew", []float64{1, 1, 1, 1000}, 17},
		{"ManySmall", []float64{1, 1, 1, 1, 1, 1, 1}, 3},
		{"Oversupply", []float64{3, 4}, 1000},
		{"Fractional", []float64{0.5, 2.5, 7.25}, 9},
		{"SingleRequest", []float64{42}, 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			demands := make([]DemandRequest, 0, len(tc.amounts))
			for i, amount := range tc.amounts {
				demands = append(demands, DemandRequest{
					AgentID: fmt.Sprintf("agent-%d", i), Amount: amount, QualityScore: scoreOf(85),
				})
			}
			report, err := engine.Allocate(context.Background(), demands, tc.capacity)
			assert.NoError(t, err)

			assert.LessOrEqual(t, report.TotalAllocated, tc.capacity, "capacity invariant")
			for _, a := range report.Allocations {
				assert.GreaterOrEqual(t, a.Allocated, 0)
				assert.LessOrEqual(t, float64(a.Allocated), a.Requested, "no over-allocation: agent=%s", a.AgentID)
			}
		})
	}
}

func TestGroupParityAcrossGroups(t *testing.T) {
	engine := newTestEngine(t, nil)

	report, err := engine.Allocate(context.Background(), []DemandRequest{
		{AgentID: "a", Amount: 10, QualityScore: scoreOf(85), GroupTag: "us"},
		{AgentID: "b", Amount: 10, QualityScore: scoreOf(85), GroupTag: "eu"},
		{AgentID: "c", Amount: 10, QualityScore: scoreOf(85), GroupTag: "apac"},
	}, 30)

	assert.NoError(t, err)
	assert.Equal(t, 30, report.TotalAllocated)
	assert.Greater(t, report.Fairness.GroupParity, 95.0)
}

func TestInputValidation(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	t.Run("NegativeCapacity", func(t *testing.T) {
		_, err := engine.Allocate(ctx, nil, -1)
		assert.ErrorContains(t, err, "capacity")
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		_, err := engine.Allocate(ctx, []DemandRequest{{AgentID: "a", Amount: -5}}, 10)
		assert.ErrorContains(t, err, "negative amount")
	})

	t.Run("NonFiniteAmount", func(t *testing.T) {
		_, err := engine.Allocate(ctx, []DemandRequest{{AgentID: "a", Amount: math.NaN()}}, 10)
		assert.ErrorContains(t, err, "non-finite amount")

		_, err = engine.Allocate(ctx, []DemandRequest{{AgentID: "a", Amount: math.Inf(1)}}, 10)
		assert.ErrorContains(t, err, "non-finite amount")
	})

	t.Run("NonFiniteQualityScore", func(t *testing.T) {
		_, err := engine.Allocate(ctx, []DemandRequest{
			{AgentID: "a", Amount: 1, QualityScore: scoreOf(math.NaN())},
		}, 10)
		assert.ErrorContains(t, err, "non-finite quality score")
	})
}

// failingSink always errors, standing in for an unreachable audit backend.
type failingSink struct{}

func (s *failingSink) Write(ctx context.Context, record *audit.Record) (string, error) {
	return "", fmt.Errorf("audit backend unreachable")
}

func TestAuditSink(t *testing.T) {

	t.Run("SinkFailureDoesNotChangeResult", func(t *testing.T) {
		demands := []DemandRequest{
			{AgentID: "a", Amount: 10, QualityScore: scoreOf(85)},
			{AgentID: "b", Amount: 30, QualityScore: scoreOf(85)},
		}

		broken := newTestEngine(t, &failingSink{})
		healthy := newTestEngine(t, nil)

		gotBroken, err := broken.Allocate(context.Background(), demands, 25)
		assert.NoError(t, err, "sink failure must not surface from Allocate")
		gotHealthy, err := healthy.Allocate(context.Background(), demands, 25)
		assert.NoError(t, err)

		assert.Equal(t, gotHealthy, gotBroken)
	})

	t.Run("RecordWrittenPerCycle", func(t *testing.T) {
		sink := audit.NewMemorySink(gox.NewNoOpCrossFunction())
		engine := newTestEngine(t, sink)

		_, err := engine.Allocate(context.Background(), []DemandRequest{
			{AgentID: "a", Amount: 10, QualityScore: scoreOf(85)},
		}, 10)
		assert.NoError(t, err)

		records := sink.Records()
		assert.Len(t, records, 1)
		assert.Contains(t, records[0].Record.Description, "allocation cycle")
		assert.Contains(t, records[0].Record.Tags, "fairness")
	})
}
