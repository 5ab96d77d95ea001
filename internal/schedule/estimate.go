package schedule

import (
	"math"

	"github.com/paraflow/paraflow/internal/model"
)

// hoursPerWorkday converts estimated effort into calendar duration.
const hoursPerWorkday = 8

// EstimateDurationDays derives a task's duration in whole days. Explicit
// dates win over estimated effort; a task with neither is a one-day unit.
// Always returns at least 1.
func EstimateDurationDays(t *model.Task) int {
	if t.StartDate != nil && t.DueDate != nil {
		days := int(t.DueDate.Sub(*t.StartDate).Hours() / 24)
		if days < 1 {
			return 1
		}
		return days
	}
	if t.EstimatedHours != nil {
		days := int(math.Ceil(*t.EstimatedHours / hoursPerWorkday))
		if days < 1 {
			return 1
		}
		return days
	}
	return 1
}
