// Package health scores PARA areas and derives maintenance alerts from
// review recency, activity recency, and content volume, per area and across
// a whole portfolio.
package health

import (
	"time"

	"github.com/paraflow/paraflow/internal/model"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

type AlertType string

const (
	AlertReviewOverdue    AlertType = "REVIEW_OVERDUE"
	AlertReviewDueSoon    AlertType = "REVIEW_DUE_SOON"
	AlertLowHealth        AlertType = "LOW_HEALTH"
	AlertInactiveArea     AlertType = "INACTIVE_AREA"
	AlertEmptyArea        AlertType = "EMPTY_AREA"
	AlertNoActiveProjects AlertType = "NO_ACTIVE_PROJECTS"
)

const (
	lowHealthThreshold      = 0.4
	criticalHealthThreshold = 0.2
	inactiveAfter           = 30 * 24 * time.Hour
	longInactiveAfter       = 60 * 24 * time.Hour
	reviewDueSoonWindow     = 7 * 24 * time.Hour
)

// Alert is one triggered maintenance signal, carrying the originating
// area's identity plus the alert-specific payload.
type Alert struct {
	Type     AlertType
	Severity Severity

	AreaID    string
	AreaTitle string
	AreaColor string
	AreaType  model.AreaType

	DaysOverdue  int      // REVIEW_OVERDUE
	DaysUntilDue int      // REVIEW_DUE_SOON
	HealthScore  *float64 // LOW_HEALTH
	DaysInactive int      // INACTIVE_AREA
}

// EvaluateArea derives all triggered alerts for one area as of now. Rules
// are independent; an area may trigger several at once.
func EvaluateArea(a *model.Area, now time.Time) []Alert {
	var alerts []Alert
	add := func(alert Alert) {
		alert.AreaID = a.ID
		alert.AreaTitle = a.Title
		alert.AreaColor = a.Color
		alert.AreaType = a.Type
		alerts = append(alerts, alert)
	}

	if a.NextReviewDate != nil {
		switch {
		case a.NextReviewDate.Before(now):
			add(Alert{
				Type:        AlertReviewOverdue,
				Severity:    SeverityCritical,
				DaysOverdue: wholeDays(now.Sub(*a.NextReviewDate)),
			})
		case !a.NextReviewDate.After(now.Add(reviewDueSoonWindow)):
			add(Alert{
				Type:         AlertReviewDueSoon,
				Severity:     SeverityWarning,
				DaysUntilDue: wholeDays(a.NextReviewDate.Sub(now)),
			})
		}
	}

	if a.HealthScore != nil && *a.HealthScore < lowHealthThreshold {
		severity := SeverityWarning
		if *a.HealthScore < criticalHealthThreshold {
			severity = SeverityCritical
		}
		add(Alert{
			Type:        AlertLowHealth,
			Severity:    severity,
			HealthScore: a.HealthScore,
		})
	}

	// Inactivity is measured from the most recent activity, or from area
	// creation when nothing was ever recorded.
	lastActive := a.LastActivityAt()
	since := a.CreatedAt
	if lastActive != nil {
		since = *lastActive
	}
	if inactivity := now.Sub(since); lastActive == nil || inactivity > inactiveAfter {
		severity := SeverityInfo
		if inactivity > longInactiveAfter {
			severity = SeverityWarning
		}
		add(Alert{
			Type:         AlertInactiveArea,
			Severity:     severity,
			DaysInactive: wholeDays(inactivity),
		})
	}

	if len(a.Projects) == 0 && len(a.Resources) == 0 && len(a.Notes) == 0 && len(a.SubInterests) == 0 {
		add(Alert{Type: AlertEmptyArea, Severity: SeverityInfo})
	} else if len(a.Projects) > 0 && a.ActiveProjectCount() == 0 {
		add(Alert{Type: AlertNoActiveProjects, Severity: SeverityInfo})
	}

	return alerts
}

// NeedsAttention reports whether the alert set includes one of the signals
// that flags an area for attention. EMPTY_AREA and NO_ACTIVE_PROJECTS alone
// do not count.
func NeedsAttention(alerts []Alert) bool {
	for _, alert := range alerts {
		switch alert.Type {
		case AlertReviewOverdue, AlertLowHealth, AlertInactiveArea:
			return true
		}
	}
	return false
}

func wholeDays(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
