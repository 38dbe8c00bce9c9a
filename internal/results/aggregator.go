// Package results owns the accumulated result set: aggregate statistics,
// durable persistence, and export. Statistics are derived views recomputed
// from the set on demand, never separately maintained counters, so they
// cannot drift from the results they describe.
package results

import (
	"github.com/mhollis/agentbench/internal/models"
)

// PlatformRate is the per-platform success breakdown.
type PlatformRate struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	SuccessRate float64 `json:"success_rate"`
}

// Summary contains aggregate statistics over a result set.
type Summary struct {
	Total         int                              `json:"total"`
	Completed     int                              `json:"completed"`
	Failed        int                              `json:"failed"`
	TotalRecords  int                              `json:"total_records"`
	TotalActions  int                              `json:"total_actions"`
	AvgConfidence float64                          `json:"avg_confidence"`
	PlatformRates map[models.Platform]PlatformRate `json:"platform_rates"`
}

// Summarize computes the aggregate view of a result set. The confidence
// mean covers completed results only and is 0, not NaN, when none exist.
func Summarize(rs models.ResultSet) Summary {
	s := Summary{PlatformRates: make(map[models.Platform]PlatformRate)}

	var confidenceSum float64
	for _, r := range rs {
		s.Total++
		rate := s.PlatformRates[r.Platform]
		rate.Total++

		switch r.Status {
		case models.RunCompleted:
			s.Completed++
			rate.Completed++
			confidenceSum += r.Confidence
		case models.RunFailed:
			s.Failed++
		}

		s.TotalRecords += r.RecordsProcessed
		s.TotalActions += r.ActionsExecuted
		s.PlatformRates[r.Platform] = rate
	}

	if s.Completed > 0 {
		s.AvgConfidence = confidenceSum / float64(s.Completed)
	}

	for p, rate := range s.PlatformRates {
		if rate.Total > 0 {
			rate.SuccessRate = float64(rate.Completed) / float64(rate.Total)
		}
		s.PlatformRates[p] = rate
	}

	return s
}
