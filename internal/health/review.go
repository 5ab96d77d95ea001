package health

import (
	"time"

	"github.com/paraflow/paraflow/internal/model"
)

// NextReviewDate advances a review date by the area's cadence. CUSTOM and
// any unrecognized frequency fall back to monthly rather than failing.
func NextReviewDate(current time.Time, frequency model.ReviewFrequency) time.Time {
	switch frequency {
	case model.ReviewWeekly:
		return current.AddDate(0, 0, 7)
	case model.ReviewBiweekly:
		return current.AddDate(0, 0, 14)
	case model.ReviewMonthly:
		return current.AddDate(0, 1, 0)
	case model.ReviewQuarterly:
		return current.AddDate(0, 3, 0)
	case model.ReviewBiannually:
		return current.AddDate(0, 6, 0)
	case model.ReviewAnnually:
		return current.AddDate(1, 0, 0)
	default:
		return current.AddDate(0, 1, 0)
	}
}

// HealthBucket places a stored health score into its distribution bucket.
func HealthBucket(score float64) string {
	switch {
	case score >= 0.8:
		return "excellent"
	case score >= 0.6:
		return "good"
	case score >= 0.4:
		return "fair"
	case score >= 0.2:
		return "poor"
	default:
		return "critical"
	}
}
