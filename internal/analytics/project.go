// Package analytics rolls task-level records up into project metrics:
// status and priority distributions, completion rate, schedule and effort
// variance, throughput, and a composite health score.
package analytics

import (
	"math"
	"time"

	"github.com/paraflow/paraflow/internal/model"
)

const dueSoonWindow = 7 * 24 * time.Hour

// ProjectAnalytics is a pure aggregation over a project's task list at a
// given instant. Empty input yields zero-valued metrics, never an error.
type ProjectAnalytics struct {
	TotalTasks        int
	StatusBreakdown   map[model.TaskStatus]int
	PriorityBreakdown map[model.Priority]int

	CompletedTasks int
	CompletionRate float64 // percent, [0,100]

	TotalEstimatedHours float64
	TotalActualHours    float64
	TimeVariance        float64 // percent over/under estimate; 0 when no estimates

	OverdueTasks []string // task IDs, due strictly before now
	DueSoonTasks []string // task IDs, due within (now, now+7d]
	BlockedTasks []string

	TimeProgress float64 // percent of planned calendar consumed, capped at 100
	Velocity     float64 // completed tasks per week

	HealthScore int // [0,100]
}

// AnalyzeProject aggregates the task list as of now. Read-only: neither the
// project nor the tasks are mutated.
func AnalyzeProject(project *model.Project, tasks []model.Task, now time.Time) ProjectAnalytics {
	pa := ProjectAnalytics{
		TotalTasks:        len(tasks),
		StatusBreakdown:   make(map[model.TaskStatus]int),
		PriorityBreakdown: make(map[model.Priority]int),
	}

	completedWithTimestamp := 0
	for i := range tasks {
		t := &tasks[i]
		pa.StatusBreakdown[t.Status]++
		pa.PriorityBreakdown[t.Priority]++

		if t.Status == model.TaskStatusCompleted {
			pa.CompletedTasks++
		}
		if t.CompletedAt != nil {
			completedWithTimestamp++
		}
		if t.EstimatedHours != nil {
			pa.TotalEstimatedHours += *t.EstimatedHours
		}
		if t.ActualHours != nil {
			pa.TotalActualHours += *t.ActualHours
		}

		if t.DueDate != nil && !model.IsTaskTerminal(t.Status) {
			switch {
			case t.DueDate.Before(now):
				pa.OverdueTasks = append(pa.OverdueTasks, t.ID)
			case !t.DueDate.After(now.Add(dueSoonWindow)):
				pa.DueSoonTasks = append(pa.DueSoonTasks, t.ID)
			}
		}
		if t.Status == model.TaskStatusBlocked {
			pa.BlockedTasks = append(pa.BlockedTasks, t.ID)
		}
	}

	if pa.TotalTasks > 0 {
		pa.CompletionRate = float64(pa.CompletedTasks) / float64(pa.TotalTasks) * 100
	}
	if pa.TotalEstimatedHours > 0 {
		pa.TimeVariance = (pa.TotalActualHours - pa.TotalEstimatedHours) / pa.TotalEstimatedHours * 100
	}

	start := effectiveStart(project, tasks)
	daysElapsed := now.Sub(start).Hours() / 24

	if project.DueDate != nil {
		totalPlanned := project.DueDate.Sub(start).Hours() / 24
		if totalPlanned > 0 && daysElapsed > 0 {
			pa.TimeProgress = math.Min(100, daysElapsed/totalPlanned*100)
		}
	}

	weeks := math.Max(1, math.Ceil(daysElapsed/7))
	pa.Velocity = float64(completedWithTimestamp) / weeks

	pa.HealthScore = ComputeProjectHealthScore(
		len(pa.OverdueTasks), len(pa.BlockedTasks),
		pa.TimeVariance, pa.CompletionRate, pa.TimeProgress)

	return pa
}

// ComputeProjectHealthScore derives a fresh 0–100 score from schedule and
// throughput signals. Distinct from the stored area-level health score,
// which is only changed by explicit maintenance actions.
//
// Penalties are additive: 10 per overdue task, 15 per blocked task, 20 for
// effort overrun beyond 50%, 25 when completion trails time progress by more
// than 20 points. Floor clamped at 0.
func ComputeProjectHealthScore(overdue, blocked int, timeVariance, completionRate, timeProgress float64) int {
	score := 100
	score -= 10 * overdue
	score -= 15 * blocked
	if timeVariance > 50 {
		score -= 20
	}
	if completionRate < timeProgress-20 {
		score -= 25
	}
	if score < 0 {
		return 0
	}
	return score
}

// effectiveStart picks the project's schedule origin: explicit start date,
// else the earliest task creation instant, else project creation.
func effectiveStart(project *model.Project, tasks []model.Task) time.Time {
	if project.StartDate != nil {
		return *project.StartDate
	}
	var earliest time.Time
	for i := range tasks {
		if earliest.IsZero() || tasks[i].CreatedAt.Before(earliest) {
			earliest = tasks[i].CreatedAt
		}
	}
	if !earliest.IsZero() {
		return earliest
	}
	return project.CreatedAt
}
