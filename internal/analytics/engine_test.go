package analytics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paraflow/paraflow/internal/clock"
	"github.com/paraflow/paraflow/internal/model"
)

func testProject() (*model.Project, []model.Task) {
	created := analysisNow.AddDate(0, 0, -20)
	p := &model.Project{
		ID:        "proj_1718000000_a1b2c3d4",
		Title:     "Launch prep",
		Status:    model.ProjectStatusActive,
		CreatedAt: created,
	}
	tasks := []model.Task{
		{ID: "task_1718000000_00000001", ProjectID: p.ID, Title: "design", Status: model.TaskStatusCompleted, CompletedAt: ptrTime(analysisNow.AddDate(0, 0, -5)), CreatedAt: created},
		{ID: "task_1718000000_00000002", ProjectID: p.ID, Title: "build", Status: model.TaskStatusInProgress, EstimatedHours: ptrFloat(16), CreatedAt: created,
			DependsOnTasks: []model.TaskRef{{ID: "task_1718000000_00000001"}}},
	}
	return p, tasks
}

func TestEngineProjectReport(t *testing.T) {
	engine := NewEngine(clock.NewFixed(analysisNow))
	p, tasks := testProject()

	report, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, p.ID, report.ProjectID)
	assert.False(t, report.CacheHit)
	assert.Equal(t, analysisNow, report.GeneratedAt)
	assert.Equal(t, 2, report.Analytics.TotalTasks)
	require.NotNil(t, report.Schedule)
	assert.Equal(t, 3, report.Schedule.ProjectDuration) // 1 day + 2 days chained
}

func TestEngineCacheHit(t *testing.T) {
	engine := NewEngine(clock.NewFixed(analysisNow))
	p, tasks := testProject()

	first, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)

	// A cache hit hands back a copy; mutating it must not poison the cache.
	second.ProjectID = "mutated"
	third, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)
	assert.Equal(t, p.ID, third.ProjectID)
}

func TestEngineCacheMissOnChangedSnapshot(t *testing.T) {
	engine := NewEngine(clock.NewFixed(analysisNow))
	p, tasks := testProject()

	_, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)

	tasks[1].Status = model.TaskStatusCompleted
	tasks[1].CompletedAt = ptrTime(analysisNow)
	report, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)
	assert.False(t, report.CacheHit)
	assert.Equal(t, 2, report.Analytics.CompletedTasks)
}

func TestEngineInvalidate(t *testing.T) {
	engine := NewEngine(clock.NewFixed(analysisNow))
	p, tasks := testProject()

	_, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)

	engine.Invalidate()

	report, err := engine.ProjectReport(p, tasks)
	require.NoError(t, err)
	assert.False(t, report.CacheHit)
}

func TestEngineConcurrentRequests(t *testing.T) {
	engine := NewEngine(clock.NewFixed(analysisNow))
	p, tasks := testProject()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	reports := make([]*Report, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = engine.ProjectReport(p, tasks)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, reports[i])
		assert.Equal(t, p.ID, reports[i].ProjectID)
	}
}

func TestReportCacheEviction(t *testing.T) {
	c := newReportCache(2, time.Minute)
	c.Set("a", &Report{ProjectID: "a"})
	c.Set("b", &Report{ProjectID: "b"})
	c.Set("c", &Report{ProjectID: "c"})

	assert.Equal(t, 2, c.Size())
	assert.Nil(t, c.Get("a"), "oldest entry should be evicted")
	assert.NotNil(t, c.Get("b"))
	assert.NotNil(t, c.Get("c"))
}

func TestReportCacheExpiry(t *testing.T) {
	c := newReportCache(8, 10*time.Millisecond)
	c.Set("a", &Report{ProjectID: "a"})
	require.NotNil(t, c.Get("a"))

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, c.Get("a"), "expired entry should miss")
}
