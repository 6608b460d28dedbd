package allocation

import (
	"sort"
)

// ComputeFairnessMetrics reduces a finalized allocation list to its fairness
// metrics. Pure function: calling it twice on the same list yields identical
// results. The empty population is defined as perfectly fair (gini 0, parity
// 100) rather than an error.
func ComputeFairnessMetrics(allocations []Allocation) FairnessMetrics {
	if len(allocations) == 0 {
		return FairnessMetrics{GroupParity: 100}
	}

	rates := make([]float64, len(allocations))
	for i, a := range allocations {
		rates[i] = a.FillRate
	}

	metrics := FairnessMetrics{
		MinFillRate: rates[0],
		MaxFillRate: rates[0],
	}
	sum := 0.0
	for _, r := range rates {
		if r < metrics.MinFillRate {
			metrics.MinFillRate = r
		}
		if r > metrics.MaxFillRate {
			metrics.MaxFillRate = r
		}
		sum += r
	}
	metrics.AvgFillRate = sum / float64(len(rates))
	metrics.GiniCoefficient = giniCoefficient(rates)
	metrics.GroupParity = groupParity(allocations)
	return metrics
}

// giniCoefficient computes the Gini inequality index over a value vector:
// sort ascending, then sum((2(i+1) - n - 1) * v[i]) / (n^2 * mean). A zero
// mean is defined as 0 (equally empty, not maximally unequal) and the result
// is clamped to [0,1] against float drift on adversarial inputs.
func giniCoefficient(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)
	if mean == 0 {
		return 0
	}

	sum := 0.0
	for i, v := range sorted {
		sum += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini := sum / (float64(n) * float64(n) * mean)
	if gini < 0 {
		return 0
	}
	if gini > 1 {
		return 1
	}
	return gini
}

// groupParity measures systematic bias across group tags: 100 minus the
// variance of per-group mean fill rates, scaled by 100 and floored at 0.
// Zero or one group is trivially perfect parity.
func groupParity(allocations []Allocation) float64 {
	groupSum := map[string]float64{}
	groupCount := map[string]int{}
	for _, a := range allocations {
		groupSum[a.GroupTag] += a.FillRate
		groupCount[a.GroupTag]++
	}
	if len(groupSum) <= 1 {
		return 100
	}

	means := make([]float64, 0, len(groupSum))
	for tag, sum := range groupSum {
		means = append(means, sum/float64(groupCount[tag]))
	}

	grandMean := 0.0
	for _, m := range means {
		grandMean += m
	}
	grandMean /= float64(len(means))

	variance := 0.0
	for _, m := range means {
		variance += (m - grandMean) * (m - grandMean)
	}
	variance /= float64(len(means))

	parity := 100 - variance*100
	if parity < 0 {
		return 0
	}
	return parity
}
