// Package kpi derives reporting statistics from progress snapshots. Pure
// computation, no storage access.
package kpi

import (
	"math"

	"officine.org/internal/inspection"
	"officine.org/internal/response"
)

// Stats are the per-inspection indicator values. Rates are whole percents.
type Stats struct {
	TotalCriteria  int `json:"total_criteria"`
	Answered       int `json:"answered"`
	Pending        int `json:"pending"`
	Conforme       int `json:"conforme"`
	NonConforme    int `json:"non_conforme"`
	CompletionRate int `json:"completion_rate"`
	ComplianceRate int `json:"compliance_rate"`
}

// Aggregate sums indicators over a set of inspections.
type Aggregate struct {
	TotalInspections      int                       `json:"total_inspections"`
	ByStatus              map[inspection.Status]int `json:"by_status"`
	TotalCriteria         int                       `json:"total_criteria"`
	TotalConforme         int                       `json:"total_conforme"`
	TotalNonConforme      int                       `json:"total_non_conforme"`
	AverageComplianceRate int                       `json:"average_compliance_rate"`
}

// ComplianceRate returns the share of answered criteria found conforme, as a
// rounded whole percent. Zero when nothing is answered.
func ComplianceRate(p response.Progress) int {
	if p.Answered == 0 {
		return 0
	}
	return roundPercent(p.Conforme, p.Answered)
}

// InspectionStats derives the indicator values for one inspection.
func InspectionStats(p response.Progress) Stats {
	completion := 0
	if p.Total > 0 {
		completion = roundPercent(p.Answered, p.Total)
	}
	return Stats{
		TotalCriteria:  p.Total,
		Answered:       p.Answered,
		Pending:        p.Total - p.Answered,
		Conforme:       p.Conforme,
		NonConforme:    p.NonConforme,
		CompletionRate: completion,
		ComplianceRate: ComplianceRate(p),
	}
}

// AggregateStats sums indicators across inspections. The average compliance
// rate only considers inspections with at least one answered criterion.
func AggregateStats(inspections []inspection.Inspection) Aggregate {
	agg := Aggregate{ByStatus: map[inspection.Status]int{}}
	var rateSum, rated int
	for _, insp := range inspections {
		agg.TotalInspections++
		agg.ByStatus[insp.Status]++
		agg.TotalCriteria += insp.Progress.Total
		agg.TotalConforme += insp.Progress.Conforme
		agg.TotalNonConforme += insp.Progress.NonConforme
		if insp.Progress.Answered > 0 {
			rateSum += ComplianceRate(insp.Progress)
			rated++
		}
	}
	if rated > 0 {
		agg.AverageComplianceRate = int(math.Round(float64(rateSum) / float64(rated)))
	}
	return agg
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
