// Package model defines the PARA workspace entities shared by the
// scheduling, analytics, and maintenance engines. The engines only read
// these records; all mutation goes through the store.
package model

import (
	"fmt"
	"time"
)

// TaskRef is the dependency edge carried on a task: the referenced task's
// identity plus its completion instant when already finished.
type TaskRef struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty"`
}

type Task struct {
	ID             string     `yaml:"id"`
	ProjectID      string     `yaml:"project_id"`
	Title          string     `yaml:"title"`
	Status         TaskStatus `yaml:"status"`
	Priority       Priority   `yaml:"priority"`
	StartDate      *time.Time `yaml:"start_date,omitempty"`
	DueDate        *time.Time `yaml:"due_date,omitempty"`
	CompletedAt    *time.Time `yaml:"completed_at,omitempty"`
	EstimatedHours *float64   `yaml:"estimated_hours,omitempty"`
	ActualHours    *float64   `yaml:"actual_hours,omitempty"`
	Position       int        `yaml:"position"`
	DependsOnTasks []TaskRef  `yaml:"depends_on_tasks,omitempty"`
	ParentTaskID   *string    `yaml:"parent_task_id,omitempty"`
	CreatedAt      time.Time  `yaml:"created_at"`
	UpdatedAt      time.Time  `yaml:"updated_at"`
}

type Project struct {
	ID          string        `yaml:"id"`
	AreaID      *string       `yaml:"area_id,omitempty"`
	Title       string        `yaml:"title"`
	Status      ProjectStatus `yaml:"status"`
	Priority    Priority      `yaml:"priority"`
	StartDate   *time.Time    `yaml:"start_date,omitempty"`
	DueDate     *time.Time    `yaml:"due_date,omitempty"`
	CompletedAt *time.Time    `yaml:"completed_at,omitempty"`
	Progress    int           `yaml:"progress"`
	CreatedAt   time.Time     `yaml:"created_at"`
	UpdatedAt   time.Time     `yaml:"updated_at"`
}

type Area struct {
	ID                  string              `yaml:"id"`
	Title               string              `yaml:"title"`
	Color               string              `yaml:"color"`
	Type                AreaType            `yaml:"type"`
	ResponsibilityLevel ResponsibilityLevel `yaml:"responsibility_level"`
	ReviewFrequency     ReviewFrequency     `yaml:"review_frequency"`
	IsActive            bool                `yaml:"is_active"`
	HealthScore         *float64            `yaml:"health_score,omitempty"`
	LastReviewedAt      *time.Time          `yaml:"last_reviewed_at,omitempty"`
	NextReviewDate      *time.Time          `yaml:"next_review_date,omitempty"`
	Projects            []Project           `yaml:"projects,omitempty"`
	Resources           []Resource          `yaml:"resources,omitempty"`
	Notes               []Note              `yaml:"notes,omitempty"`
	SubInterests        []SubInterest       `yaml:"sub_interests,omitempty"`
	Reviews             []AreaReview        `yaml:"reviews,omitempty"`
	Activities          []Activity          `yaml:"activities,omitempty"`
	CreatedAt           time.Time           `yaml:"created_at"`
	UpdatedAt           time.Time           `yaml:"updated_at"`
}

// AreaReview is an append-only review snapshot; never updated in place.
type AreaReview struct {
	ID          string    `yaml:"id"`
	AreaID      string    `yaml:"area_id"`
	ReviewDate  time.Time `yaml:"review_date"`
	ReviewType  string    `yaml:"review_type"`
	HealthScore *float64  `yaml:"health_score,omitempty"`
	Notes       *string   `yaml:"notes,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
}

type Activity struct {
	ID          string    `yaml:"id"`
	AreaID      string    `yaml:"area_id"`
	Type        string    `yaml:"type"`
	Description *string   `yaml:"description,omitempty"`
	OccurredAt  time.Time `yaml:"occurred_at"`
}

type Resource struct {
	ID        string    `yaml:"id"`
	AreaID    *string   `yaml:"area_id,omitempty"`
	Title     string    `yaml:"title"`
	URL       *string   `yaml:"url,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

type Note struct {
	ID        string    `yaml:"id"`
	AreaID    *string   `yaml:"area_id,omitempty"`
	Title     string    `yaml:"title"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type SubInterest struct {
	ID        string    `yaml:"id"`
	AreaID    string    `yaml:"area_id"`
	Title     string    `yaml:"title"`
	CreatedAt time.Time `yaml:"created_at"`
}

// ValidateTaskRecord rejects records that violate task invariants:
// a non-nil CompletedAt requires COMPLETED status, and hour fields must be
// non-negative. Called on store load; inconsistent records are quarantined
// rather than silently analyzed.
func ValidateTaskRecord(t *Task) error {
	if t.ID == "" {
		return fmt.Errorf("task missing id")
	}
	if t.CompletedAt != nil && t.Status != TaskStatusCompleted {
		return fmt.Errorf("task %s: completed_at set but status is %q", t.ID, t.Status)
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
		return fmt.Errorf("task %s: negative estimated_hours %v", t.ID, *t.EstimatedHours)
	}
	if t.ActualHours != nil && *t.ActualHours < 0 {
		return fmt.Errorf("task %s: negative actual_hours %v", t.ID, *t.ActualHours)
	}
	return nil
}

// ValidateProjectRecord checks the progress clamp owned by the application
// layer: progress is always within [0,100].
func ValidateProjectRecord(p *Project) error {
	if p.ID == "" {
		return fmt.Errorf("project missing id")
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("project %s: progress %d out of range [0,100]", p.ID, p.Progress)
	}
	return nil
}

// ValidateAreaRecord checks the stored health score invariant: when present
// it lies in [0,1].
func ValidateAreaRecord(a *Area) error {
	if a.ID == "" {
		return fmt.Errorf("area missing id")
	}
	if a.HealthScore != nil && (*a.HealthScore < 0 || *a.HealthScore > 1) {
		return fmt.Errorf("area %s: health_score %v out of range [0,1]", a.ID, *a.HealthScore)
	}
	return nil
}

// ActiveProjectCount counts the area's projects with ACTIVE status.
func (a *Area) ActiveProjectCount() int {
	n := 0
	for i := range a.Projects {
		if a.Projects[i].Status == ProjectStatusActive {
			n++
		}
	}
	return n
}

// LastActivityAt returns the most recent activity instant, or nil when the
// area has no recorded activity.
func (a *Area) LastActivityAt() *time.Time {
	var latest *time.Time
	for i := range a.Activities {
		at := a.Activities[i].OccurredAt
		if latest == nil || at.After(*latest) {
			t := at
			latest = &t
		}
	}
	return latest
}
