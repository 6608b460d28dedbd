package coordinator

import (
	"fmt"
	"strings"
	"time"

	"github.com/devlibx/gox-base/v2"
)

// PoolDataObject contains all data for a single pool's allocation cycle
type PoolDataObject struct {
	Pool            string
	ResourceType    string
	Capacity        int
	TotalAllocated  int
	TotalRequested  float64
	Efficiency      float64
	ServedAgents    int // agents with a non-zero allocation
	ExcludedAgents  int // agents dropped by the eligibility filter
	GiniCoefficient float64
	GroupParity     float64
	AvgFillRate     float64
	LastUpdated     time.Time
}

// PoolReporter interface for reporting a single pool's cycle
type PoolReporter interface {
	ReportPool(data PoolDataObject) string
}

// SummaryReporter interface for reporting unified data across pools
type SummaryReporter interface {
	ReportSummary(pools []PoolDataObject) string
}

// BuildPoolData flattens a cycle result into a reporting data object.
func BuildPoolData(cf gox.CrossFunction, cycle PoolCycle, result *CycleResult) PoolDataObject {
	data := PoolDataObject{
		Pool:         cycle.Pool,
		ResourceType: cycle.ResourceType,
		Capacity:     cycle.Capacity,
		LastUpdated:  cf.Now(),
	}
	if result == nil || result.Report == nil {
		return data
	}

	report := result.Report
	data.TotalAllocated = report.TotalAllocated
	data.TotalRequested = report.TotalRequested
	data.Efficiency = report.Efficiency
	data.GiniCoefficient = report.Fairness.GiniCoefficient
	data.GroupParity = report.Fairness.GroupParity
	data.AvgFillRate = report.Fairness.AvgFillRate

	for _, a := range report.Allocations {
		if a.Allocated > 0 {
			data.ServedAgents++
		}
		if !a.Eligible {
			data.ExcludedAgents++
		}
	}
	return data
}

// ConsolePoolReporter provides human-readable console output for pool data
type ConsolePoolReporter struct{}

// NewConsolePoolReporter creates a new console-based pool reporter
func NewConsolePoolReporter() PoolReporter {
	return &ConsolePoolReporter{}
}

// ReportPool generates a human-readable report for a single pool cycle
func (r *ConsolePoolReporter) ReportPool(data PoolDataObject) string {
	var builder strings.Builder

	statusIcon := "🔴" // Red for mostly idle capacity
	if data.Efficiency >= 99.5 {
		statusIcon = "🟢" // Green for fully used
	} else if data.Efficiency >= 80 {
		statusIcon = "🟡" // Yellow for mostly used
	}

	builder.WriteString(fmt.Sprintf("%s Pool: %s (%s)\n", statusIcon, data.Pool, data.ResourceType))
	builder.WriteString(fmt.Sprintf("   Capacity: %d\n", data.Capacity))
	builder.WriteString(fmt.Sprintf("      ✅ Allocated: %d (%.1f%%)\n", data.TotalAllocated, data.Efficiency))
	builder.WriteString(fmt.Sprintf("      📦 Requested: %.1f\n", data.TotalRequested))
	builder.WriteString(fmt.Sprintf("      🤝 Served Agents: %d\n", data.ServedAgents))

	if data.ExcludedAgents > 0 {
		builder.WriteString(fmt.Sprintf("      ❌ Excluded Agents: %d\n", data.ExcludedAgents))
	}

	builder.WriteString(fmt.Sprintf("   ⚖️  Gini: %.3f | Parity: %.1f | Avg Fill: %.2f\n",
		data.GiniCoefficient, data.GroupParity, data.AvgFillRate))

	return builder.String()
}

// ConsoleSummaryReporter provides human-readable console output across pools
type ConsoleSummaryReporter struct{}

// NewConsoleSummaryReporter creates a new console-based summary reporter
func NewConsoleSummaryReporter() SummaryReporter {
	return &ConsoleSummaryReporter{}
}

// ReportSummary generates a unified summary report across multiple pools
func (r *ConsoleSummaryReporter) ReportSummary(pools []PoolDataObject) string {
	var builder strings.Builder

	grandCapacity := 0
	grandAllocated := 0
	grandRequested := 0.0
	grandServed := 0
	grandExcluded := 0

	for _, pool := range pools {
		grandCapacity += pool.Capacity
		grandAllocated += pool.TotalAllocated
		grandRequested += pool.TotalRequested
		grandServed += pool.ServedAgents
		grandExcluded += pool.ExcludedAgents
	}

	overallPercent := 0.0
	if grandCapacity > 0 {
		overallPercent = float64(grandAllocated) / float64(grandCapacity) * 100
	}

	statusIcon := "🔴"
	if grandCapacity > 0 && grandAllocated == grandCapacity {
		statusIcon = "🟢"
	} else if overallPercent >= 80 {
		statusIcon = "🟡"
	}

	builder.WriteString(fmt.Sprintf("\n%s OVERALL SUMMARY:\n", statusIcon))
	builder.WriteString(fmt.Sprintf("   📊 Pools: %d\n", len(pools)))
	builder.WriteString(fmt.Sprintf("   🧩 Total Capacity: %d\n", grandCapacity))
	builder.WriteString(fmt.Sprintf("      ✅ Allocated: %d (%.1f%%)\n", grandAllocated, overallPercent))
	builder.WriteString(fmt.Sprintf("      📦 Requested: %.1f\n", grandRequested))
	builder.WriteString(fmt.Sprintf("      🤝 Served Agents: %d\n", grandServed))

	if grandExcluded > 0 {
		builder.WriteString(fmt.Sprintf("      ❌ Excluded Agents: %d\n", grandExcluded))
	}

	if grandCapacity > 0 && grandAllocated == grandCapacity {
		builder.WriteString("   🎉 ALL CAPACITY ALLOCATED! 🎉\n")
	}

	return builder.String()
}
