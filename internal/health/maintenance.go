package health

import (
	"errors"
	"fmt"
	"time"

	"github.com/paraflow/paraflow/internal/clock"
	"github.com/paraflow/paraflow/internal/model"
)

// ErrAreaNotFound is returned by Repository implementations when the
// addressed area does not exist.
var ErrAreaNotFound = errors.New("area not found")

// neutralHealthScore is what a reset writes back.
const neutralHealthScore = 0.5

// AreaUpdate is a partial write: only non-nil fields are applied. A
// Repository must apply the whole update atomically per area.
type AreaUpdate struct {
	HealthScore     *float64
	NextReviewDate  *time.Time
	LastReviewedAt  *time.Time
	ReviewFrequency *model.ReviewFrequency
}

// Repository is the store surface the maintenance engine writes through.
// Serializing concurrent writers to the same area is the repository's
// responsibility, not this engine's.
type Repository interface {
	GetArea(id string) (*model.Area, error)
	UpdateArea(id string, update AreaUpdate) error
}

type ActionType string

const (
	ActionScheduleReview  ActionType = "schedule_review"
	ActionChangeFrequency ActionType = "change_frequency"
	ActionResetHealth     ActionType = "reset_health"
)

// Action is one requested maintenance mutation against a single area.
type Action struct {
	AreaID string
	Type   ActionType

	// ReviewDate pins schedule_review to an explicit date; when nil the
	// next date is computed from the area's frequency and now.
	ReviewDate *time.Time

	// Frequency is required for change_frequency.
	Frequency model.ReviewFrequency
}

// Outcome is the per-area result of a batch maintenance run.
type Outcome struct {
	AreaID string
	Type   ActionType
	Err    error
}

// Maintainer applies maintenance actions. These are the only writes the
// health engine performs; everything else in this package is read-only.
type Maintainer struct {
	repo  Repository
	clock clock.Clock
}

func NewMaintainer(repo Repository, clk clock.Clock) *Maintainer {
	return &Maintainer{repo: repo, clock: clk}
}

// Apply performs one action. Each action resolves to a single partial
// update, so the area either fully updates or not at all.
func (m *Maintainer) Apply(action Action) error {
	area, err := m.repo.GetArea(action.AreaID)
	if err != nil {
		return err
	}

	var update AreaUpdate
	switch action.Type {
	case ActionScheduleReview:
		next := action.ReviewDate
		if next == nil {
			n := NextReviewDate(m.clock.Now(), area.ReviewFrequency)
			next = &n
		}
		update.NextReviewDate = next

	case ActionChangeFrequency:
		freq := action.Frequency
		next := NextReviewDate(m.clock.Now(), freq)
		update.ReviewFrequency = &freq
		update.NextReviewDate = &next

	case ActionResetHealth:
		score := neutralHealthScore
		update.HealthScore = &score

	default:
		return fmt.Errorf("unknown maintenance action %q", action.Type)
	}

	if err := m.repo.UpdateArea(action.AreaID, update); err != nil {
		return fmt.Errorf("apply %s to area %s: %w", action.Type, action.AreaID, err)
	}
	return nil
}

// ApplyBatch runs every action and collects per-area outcomes. One area's
// failure never aborts or rolls back the rest.
func (m *Maintainer) ApplyBatch(actions []Action) []Outcome {
	outcomes := make([]Outcome, 0, len(actions))
	for _, action := range actions {
		outcomes = append(outcomes, Outcome{
			AreaID: action.AreaID,
			Type:   action.Type,
			Err:    m.Apply(action),
		})
	}
	return outcomes
}
