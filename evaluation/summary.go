package evaluation

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates latency and outcome statistics over a set of runs.
type Summary struct {
	Runs       int            `json:"runs"`
	Errors     int            `json:"errors"`
	ErrorRate  float64        `json:"error_rate"`
	MeanMs     float64        `json:"mean_ms"`
	StdDevMs   float64        `json:"stddev_ms"`
	MinMs      float64        `json:"min_ms"`
	MaxMs      float64        `json:"max_ms"`
	MedianMs   float64        `json:"median_ms"`
	P95Ms      float64        `json:"p95_ms"`
	ByStop     map[string]int `json:"by_stop_reason,omitempty"`
	TotalSteps int            `json:"total_handoffs"`
}

// Summarize computes a Summary over the given records.
func Summarize(records []RunRecord) Summary {
	summary := Summary{
		Runs:   len(records),
		ByStop: make(map[string]int),
	}
	if len(records) == 0 {
		return summary
	}

	latencies := make([]float64, 0, len(records))
	for _, record := range records {
		latencies = append(latencies, record.LatencyMs)
		if record.Error != "" {
			summary.Errors++
		}
		if record.StopReason != "" {
			summary.ByStop[record.StopReason]++
		}
		summary.TotalSteps += record.Handoffs
	}
	sort.Float64s(latencies)

	summary.ErrorRate = float64(summary.Errors) / float64(len(records))
	summary.MeanMs = stat.Mean(latencies, nil)
	if len(latencies) > 1 {
		summary.StdDevMs = stat.StdDev(latencies, nil)
	}
	summary.MinMs = latencies[0]
	summary.MaxMs = latencies[len(latencies)-1]
	summary.MedianMs = stat.Quantile(0.5, stat.Empirical, latencies, nil)
	summary.P95Ms = stat.Quantile(0.95, stat.Empirical, latencies, nil)
	return summary
}
