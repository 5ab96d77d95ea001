package health

import (
	"fmt"
	"sort"
	"time"

	"github.com/paraflow/paraflow/internal/model"
)

// Overview holds the portfolio-level counters.
type Overview struct {
	TotalAreas            int
	AreasNeedingAttention int
	ReviewsOverdue        int
	ReviewsDueSoon        int
	InactiveAreas         int
	LowHealthAreas        int
}

// MaintenanceItem is an upcoming review, annotated with the area's
// responsibility level as a priority signal.
type MaintenanceItem struct {
	AreaID         string
	AreaTitle      string
	NextReviewDate time.Time
	DaysUntilDue   int
	Priority       model.ResponsibilityLevel
}

// Distribution buckets stored health scores. Areas without a stored score
// are counted separately as Unscored.
type Distribution struct {
	Excellent int // >= 0.8
	Good      int // >= 0.6
	Fair      int // >= 0.4
	Poor      int // >= 0.2
	Critical  int // < 0.2
	Unscored  int
}

// AreaStanding is one row of the top/bottom health rankings.
type AreaStanding struct {
	AreaID         string
	AreaTitle      string
	AreaColor      string
	HealthScore    float64
	Scored         bool
	NeedsAttention bool
}

// Dashboard is the portfolio-wide aggregation over a user's active areas.
type Dashboard struct {
	Overview             Overview
	CriticalAlerts       []Alert
	WarningAlerts        []Alert
	InfoAlerts           []Alert
	Recommendations      []string
	ScheduledMaintenance []MaintenanceItem
	Distribution         Distribution
	TopAreas             []AreaStanding // up to 5, highest stored health
	AttentionAreas       []AreaStanding // up to 5, lowest health or flagged
	GeneratedAt          time.Time
}

const standingsLimit = 5

// BuildDashboard aggregates all active areas as of now. Pure read: no area
// is mutated, stored health scores are reported as-is.
func BuildDashboard(areas []model.Area, now time.Time) *Dashboard {
	d := &Dashboard{GeneratedAt: now}

	var scored []AreaStanding
	for i := range areas {
		a := &areas[i]
		if !a.IsActive {
			continue
		}
		d.Overview.TotalAreas++

		alerts := EvaluateArea(a, now)
		attention := NeedsAttention(alerts)
		if attention {
			d.Overview.AreasNeedingAttention++
		}

		for _, alert := range alerts {
			switch alert.Type {
			case AlertReviewOverdue:
				d.Overview.ReviewsOverdue++
			case AlertReviewDueSoon:
				d.Overview.ReviewsDueSoon++
			case AlertLowHealth:
				d.Overview.LowHealthAreas++
			case AlertInactiveArea:
				d.Overview.InactiveAreas++
			}
			switch alert.Severity {
			case SeverityCritical:
				d.CriticalAlerts = append(d.CriticalAlerts, alert)
			case SeverityWarning:
				d.WarningAlerts = append(d.WarningAlerts, alert)
			default:
				d.InfoAlerts = append(d.InfoAlerts, alert)
			}
		}

		if a.NextReviewDate != nil && !a.NextReviewDate.Before(now) &&
			!a.NextReviewDate.After(now.Add(reviewDueSoonWindow)) {
			d.ScheduledMaintenance = append(d.ScheduledMaintenance, MaintenanceItem{
				AreaID:         a.ID,
				AreaTitle:      a.Title,
				NextReviewDate: *a.NextReviewDate,
				DaysUntilDue:   wholeDays(a.NextReviewDate.Sub(now)),
				Priority:       a.ResponsibilityLevel,
			})
		}

		if a.HealthScore == nil {
			d.Distribution.Unscored++
			if attention {
				// Unscored areas can still land in the attention list.
				scored = append(scored, AreaStanding{
					AreaID: a.ID, AreaTitle: a.Title, AreaColor: a.Color,
					NeedsAttention: true,
				})
			}
			continue
		}

		switch HealthBucket(*a.HealthScore) {
		case "excellent":
			d.Distribution.Excellent++
		case "good":
			d.Distribution.Good++
		case "fair":
			d.Distribution.Fair++
		case "poor":
			d.Distribution.Poor++
		default:
			d.Distribution.Critical++
		}

		scored = append(scored, AreaStanding{
			AreaID:         a.ID,
			AreaTitle:      a.Title,
			AreaColor:      a.Color,
			HealthScore:    *a.HealthScore,
			Scored:         true,
			NeedsAttention: attention,
		})
	}

	sort.Slice(d.ScheduledMaintenance, func(i, j int) bool {
		return d.ScheduledMaintenance[i].NextReviewDate.Before(d.ScheduledMaintenance[j].NextReviewDate)
	})

	d.TopAreas = topStandings(scored)
	d.AttentionAreas = attentionStandings(scored)
	d.Recommendations = recommendations(d.Overview)

	return d
}

// topStandings ranks scored areas by health, highest first.
func topStandings(standings []AreaStanding) []AreaStanding {
	ranked := make([]AreaStanding, 0, len(standings))
	for _, s := range standings {
		if s.Scored {
			ranked = append(ranked, s)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].HealthScore != ranked[j].HealthScore {
			return ranked[i].HealthScore > ranked[j].HealthScore
		}
		return ranked[i].AreaID < ranked[j].AreaID
	})
	if len(ranked) > standingsLimit {
		ranked = ranked[:standingsLimit]
	}
	return ranked
}

// attentionStandings ranks flagged or low-health areas, worst first.
func attentionStandings(standings []AreaStanding) []AreaStanding {
	ranked := make([]AreaStanding, len(standings))
	copy(ranked, standings)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].NeedsAttention != ranked[j].NeedsAttention {
			return ranked[i].NeedsAttention
		}
		if ranked[i].HealthScore != ranked[j].HealthScore {
			return ranked[i].HealthScore < ranked[j].HealthScore
		}
		return ranked[i].AreaID < ranked[j].AreaID
	})
	if len(ranked) > standingsLimit {
		ranked = ranked[:standingsLimit]
	}
	return ranked
}

func recommendations(o Overview) []string {
	var recs []string
	if o.ReviewsOverdue > 0 {
		recs = append(recs, fmt.Sprintf("%d area(s) need immediate review", o.ReviewsOverdue))
	}
	if o.LowHealthAreas > 0 {
		recs = append(recs, fmt.Sprintf("%d area(s) have low health scores and need a maintenance pass", o.LowHealthAreas))
	}
	if o.InactiveAreas > 0 {
		recs = append(recs, fmt.Sprintf("%d area(s) have been inactive for over 30 days", o.InactiveAreas))
	}
	if o.ReviewsDueSoon > 0 {
		recs = append(recs, fmt.Sprintf("%d review(s) coming up in the next 7 days", o.ReviewsDueSoon))
	}
	if len(recs) == 0 {
		recs = append(recs, "All areas are in good shape")
	}
	return recs
}
