package health

import (
	"fmt"
	"testing"

	"github.com/paraflow/paraflow/internal/model"
)

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, evalNow)
	if d.Overview.TotalAreas != 0 {
		t.Errorf("TotalAreas = %d, want 0", d.Overview.TotalAreas)
	}
	if len(d.Recommendations) != 1 || d.Recommendations[0] != "All areas are in good shape" {
		t.Errorf("Recommendations = %v, want the all-clear message", d.Recommendations)
	}
	if !d.GeneratedAt.Equal(evalNow) {
		t.Errorf("GeneratedAt = %v, want %v", d.GeneratedAt, evalNow)
	}
}

func TestBuildDashboardSkipsInactiveAreas(t *testing.T) {
	archived := activeArea()
	archived.ID = "area_1718000000_00000009"
	archived.IsActive = false
	archived.HealthScore = ptrFloat(0.1)

	d := BuildDashboard([]model.Area{activeArea(), archived}, evalNow)
	if d.Overview.TotalAreas != 1 {
		t.Errorf("TotalAreas = %d, want 1", d.Overview.TotalAreas)
	}
	if d.Overview.LowHealthAreas != 0 {
		t.Errorf("LowHealthAreas = %d, want 0 (archived area ignored)", d.Overview.LowHealthAreas)
	}
}

func TestBuildDashboardCountersAndSeverity(t *testing.T) {
	overdue := activeArea()
	overdue.ID = "area_1718000000_00000001"
	overdue.Title = "Overdue"
	overdue.NextReviewDate = ptrTime(evalNow.AddDate(0, 0, -3))

	low := activeArea()
	low.ID = "area_1718000000_00000002"
	low.Title = "Struggling"
	low.HealthScore = ptrFloat(0.1)

	fine := activeArea()
	fine.ID = "area_1718000000_00000003"
	fine.Title = "Fine"
	fine.HealthScore = ptrFloat(0.9)

	d := BuildDashboard([]model.Area{overdue, low, fine}, evalNow)

	if d.Overview.TotalAreas != 3 {
		t.Errorf("TotalAreas = %d, want 3", d.Overview.TotalAreas)
	}
	if d.Overview.AreasNeedingAttention != 2 {
		t.Errorf("AreasNeedingAttention = %d, want 2", d.Overview.AreasNeedingAttention)
	}
	if d.Overview.ReviewsOverdue != 1 {
		t.Errorf("ReviewsOverdue = %d, want 1", d.Overview.ReviewsOverdue)
	}
	if d.Overview.LowHealthAreas != 1 {
		t.Errorf("LowHealthAreas = %d, want 1", d.Overview.LowHealthAreas)
	}
	if len(d.CriticalAlerts) != 2 {
		t.Errorf("CriticalAlerts = %d, want 2 (overdue review + critical health)", len(d.CriticalAlerts))
	}
	if len(d.Recommendations) < 2 {
		t.Errorf("Recommendations = %v, want overdue and low-health entries", d.Recommendations)
	}
}

func TestBuildDashboardDistribution(t *testing.T) {
	scores := []*float64{ptrFloat(0.9), ptrFloat(0.7), ptrFloat(0.5), ptrFloat(0.3), ptrFloat(0.1), nil}
	areas := make([]model.Area, 0, len(scores))
	for i, s := range scores {
		a := activeArea()
		a.ID = fmt.Sprintf("area_1718000000_0000000%d", i)
		a.HealthScore = s
		areas = append(areas, a)
	}

	d := BuildDashboard(areas, evalNow)
	dist := d.Distribution
	if dist.Excellent != 1 || dist.Good != 1 || dist.Fair != 1 || dist.Poor != 1 || dist.Critical != 1 {
		t.Errorf("Distribution = %+v, want one per bucket", dist)
	}
	if dist.Unscored != 1 {
		t.Errorf("Unscored = %d, want 1", dist.Unscored)
	}
}

func TestBuildDashboardStandings(t *testing.T) {
	areas := make([]model.Area, 0, 7)
	for i := 0; i < 7; i++ {
		a := activeArea()
		a.ID = fmt.Sprintf("area_1718000000_0000000%d", i)
		a.Title = fmt.Sprintf("Area %d", i)
		a.HealthScore = ptrFloat(float64(i+2) / 10) // 0.2 .. 0.8
		areas = append(areas, a)
	}

	d := BuildDashboard(areas, evalNow)

	if len(d.TopAreas) != standingsLimit {
		t.Fatalf("TopAreas length = %d, want %d", len(d.TopAreas), standingsLimit)
	}
	if d.TopAreas[0].HealthScore != 0.8 {
		t.Errorf("TopAreas[0].HealthScore = %v, want 0.8", d.TopAreas[0].HealthScore)
	}
	for i := 1; i < len(d.TopAreas); i++ {
		if d.TopAreas[i].HealthScore > d.TopAreas[i-1].HealthScore {
			t.Errorf("TopAreas not sorted descending at %d", i)
		}
	}

	if len(d.AttentionAreas) != standingsLimit {
		t.Fatalf("AttentionAreas length = %d, want %d", len(d.AttentionAreas), standingsLimit)
	}
	// The two low-health areas (0.2, 0.3) are flagged and sort first.
	if !d.AttentionAreas[0].NeedsAttention || d.AttentionAreas[0].HealthScore != 0.2 {
		t.Errorf("AttentionAreas[0] = %+v, want flagged area with score 0.2", d.AttentionAreas[0])
	}
}

func TestBuildDashboardScheduledMaintenance(t *testing.T) {
	later := activeArea()
	later.ID = "area_1718000000_00000001"
	later.NextReviewDate = ptrTime(evalNow.AddDate(0, 0, 6))

	sooner := activeArea()
	sooner.ID = "area_1718000000_00000002"
	sooner.NextReviewDate = ptrTime(evalNow.AddDate(0, 0, 2))

	past := activeArea()
	past.ID = "area_1718000000_00000003"
	past.NextReviewDate = ptrTime(evalNow.AddDate(0, 0, -2))

	far := activeArea()
	far.ID = "area_1718000000_00000004"
	far.NextReviewDate = ptrTime(evalNow.AddDate(0, 0, 20))

	d := BuildDashboard([]model.Area{later, sooner, past, far}, evalNow)

	if len(d.ScheduledMaintenance) != 2 {
		t.Fatalf("ScheduledMaintenance length = %d, want 2", len(d.ScheduledMaintenance))
	}
	if d.ScheduledMaintenance[0].AreaID != sooner.ID {
		t.Errorf("ScheduledMaintenance[0] = %s, want %s (soonest first)", d.ScheduledMaintenance[0].AreaID, sooner.ID)
	}
	if d.ScheduledMaintenance[0].DaysUntilDue != 2 {
		t.Errorf("DaysUntilDue = %d, want 2", d.ScheduledMaintenance[0].DaysUntilDue)
	}
}
