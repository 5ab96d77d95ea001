package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/paraflow/paraflow/internal/clock"
	"github.com/paraflow/paraflow/internal/health"
	"github.com/paraflow/paraflow/internal/model"
	yamlutil "github.com/paraflow/paraflow/internal/yaml"
)

var storeNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ptrFloat(f float64) *float64 { return &f }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := Open(t.TempDir(), clock.NewFixed(storeNow))
	require.NoError(t, s.Init())
	return s
}

func seedTasks(t *testing.T, s *Store, tasks ...model.Task) {
	t.Helper()
	file := model.TaskFile{
		SchemaVersion: yamlutil.CurrentSchemaVersion,
		FileType:      model.FileTypeTasks,
		Tasks:         tasks,
	}
	require.NoError(t, yamlutil.AtomicWrite(s.tasksPath(), &file))
}

func seedProjects(t *testing.T, s *Store, projects ...model.Project) {
	t.Helper()
	file := model.ProjectFile{
		SchemaVersion: yamlutil.CurrentSchemaVersion,
		FileType:      model.FileTypeProjects,
		Projects:      projects,
	}
	require.NoError(t, yamlutil.AtomicWrite(s.projectsPath(), &file))
}

func seedAreas(t *testing.T, s *Store, areas ...model.Area) {
	t.Helper()
	file := model.AreaFile{
		SchemaVersion: yamlutil.CurrentSchemaVersion,
		FileType:      model.FileTypeAreas,
		Areas:         areas,
	}
	require.NoError(t, yamlutil.AtomicWrite(s.areasPath(), &file))
}

func TestInitCreatesSkeletons(t *testing.T) {
	s := newTestStore(t)

	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)

	projects, err := s.LoadProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)

	areas, err := s.LoadAreas()
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedTasks(t, s, model.Task{ID: "task_1718000000_00000001", Status: model.TaskStatusTodo})

	// A second Init must not clobber existing files.
	require.NoError(t, s.Init())
	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestLoadTasksSkipsInvalidRecords(t *testing.T) {
	s := newTestStore(t)
	done := storeNow.AddDate(0, 0, -1)
	seedTasks(t, s,
		model.Task{ID: "task_1718000000_00000001", Status: model.TaskStatusTodo},
		model.Task{ID: "task_1718000000_00000002", Status: model.TaskStatusTodo, CompletedAt: &done}, // inconsistent
		model.Task{ID: "task_1718000000_00000003", Status: model.TaskStatusInProgress},
	)

	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "task_1718000000_00000001", tasks[0].ID)
	assert.Equal(t, "task_1718000000_00000003", tasks[1].ID)
}

func TestGetProject(t *testing.T) {
	s := newTestStore(t)
	seedProjects(t, s,
		model.Project{ID: "proj_1718000000_00000001", Title: "Alpha", Status: model.ProjectStatusActive},
		model.Project{ID: "proj_1718000000_00000002", Title: "Beta", Status: model.ProjectStatusPlanning},
	)
	seedTasks(t, s,
		model.Task{ID: "task_1718000000_00000001", ProjectID: "proj_1718000000_00000001", Status: model.TaskStatusTodo},
		model.Task{ID: "task_1718000000_00000002", ProjectID: "proj_1718000000_00000002", Status: model.TaskStatusTodo},
		model.Task{ID: "task_1718000000_00000003", ProjectID: "proj_1718000000_00000001", Status: model.TaskStatusTodo},
	)

	project, tasks, err := s.GetProject("proj_1718000000_00000001")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", project.Title)
	assert.Len(t, tasks, 2)

	_, _, err = s.GetProject("proj_1718000000_ffffffff")
	assert.Error(t, err)
}

func TestUpdateArea(t *testing.T) {
	s := newTestStore(t)
	seedAreas(t, s, model.Area{
		ID:              "area_1718000000_00000001",
		Title:           "Finances",
		ReviewFrequency: model.ReviewMonthly,
		IsActive:        true,
	})

	next := storeNow.AddDate(0, 0, 7)
	freq := model.ReviewWeekly
	err := s.UpdateArea("area_1718000000_00000001", health.AreaUpdate{
		HealthScore:     ptrFloat(0.5),
		NextReviewDate:  &next,
		ReviewFrequency: &freq,
	})
	require.NoError(t, err)

	area, err := s.GetArea("area_1718000000_00000001")
	require.NoError(t, err)
	require.NotNil(t, area.HealthScore)
	assert.Equal(t, 0.5, *area.HealthScore)
	require.NotNil(t, area.NextReviewDate)
	assert.True(t, area.NextReviewDate.Equal(next))
	assert.Equal(t, model.ReviewWeekly, area.ReviewFrequency)
	assert.True(t, area.UpdatedAt.Equal(storeNow))
}

func TestUpdateAreaNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateArea("area_1718000000_ffffffff", health.AreaUpdate{HealthScore: ptrFloat(0.5)})
	assert.ErrorIs(t, err, health.ErrAreaNotFound)

	_, err = s.GetArea("area_1718000000_ffffffff")
	assert.ErrorIs(t, err, health.ErrAreaNotFound)
}

func TestSaveTaskHours(t *testing.T) {
	s := newTestStore(t)
	seedTasks(t, s, model.Task{ID: "task_1718000000_00000001", Status: model.TaskStatusInProgress})

	require.NoError(t, s.SaveTaskHours(context.Background(), "task_1718000000_00000001", 2.025))

	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].ActualHours)
	assert.Equal(t, 2.025, *tasks[0].ActualHours)

	err = s.SaveTaskHours(context.Background(), "task_1718000000_ffffffff", 1)
	assert.Error(t, err)

	err = s.SaveTaskHours(context.Background(), "task_1718000000_00000001", -1)
	assert.Error(t, err)
}

func TestSaveTaskHoursCancelledContext(t *testing.T) {
	s := newTestStore(t)
	seedTasks(t, s, model.Task{ID: "task_1718000000_00000001", Status: model.TaskStatusInProgress})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SaveTaskHours(ctx, "task_1718000000_00000001", 1)
	assert.ErrorIs(t, err, context.Canceled)

	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	assert.Nil(t, tasks[0].ActualHours)
}

func TestRecordReview(t *testing.T) {
	s := newTestStore(t)
	seedAreas(t, s, model.Area{
		ID:              "area_1718000000_00000001",
		Title:           "Health",
		ReviewFrequency: model.ReviewWeekly,
		IsActive:        true,
	})

	reviewDate := storeNow.AddDate(0, 0, -1)
	review := model.AreaReview{
		ID:          "rev_1718000000_00000001",
		AreaID:      "area_1718000000_00000001",
		ReviewDate:  reviewDate,
		ReviewType:  "manual",
		HealthScore: ptrFloat(0.8),
		CreatedAt:   storeNow,
	}
	require.NoError(t, s.RecordReview(review))

	area, err := s.GetArea("area_1718000000_00000001")
	require.NoError(t, err)
	require.Len(t, area.Reviews, 1)
	assert.Equal(t, "rev_1718000000_00000001", area.Reviews[0].ID)
	require.NotNil(t, area.LastReviewedAt)
	assert.True(t, area.LastReviewedAt.Equal(reviewDate))
	// Next review advances from the review date by the area's cadence.
	require.NotNil(t, area.NextReviewDate)
	assert.True(t, area.NextReviewDate.Equal(reviewDate.AddDate(0, 0, 7)))
	require.NotNil(t, area.HealthScore)
	assert.Equal(t, 0.8, *area.HealthScore)

	err = s.RecordReview(model.AreaReview{ID: "rev_1718000000_00000002", AreaID: "area_1718000000_ffffffff"})
	assert.ErrorIs(t, err, health.ErrAreaNotFound)
}

func TestLoadRecoversCorruptFile(t *testing.T) {
	s := newTestStore(t)

	// Write a valid file first so a .bak exists, then corrupt the live copy.
	seedTasks(t, s, model.Task{ID: "task_1718000000_00000001", Status: model.TaskStatusTodo})
	seedTasks(t, s, model.Task{ID: "task_1718000000_00000001", Status: model.TaskStatusTodo},
		model.Task{ID: "task_1718000000_00000002", Status: model.TaskStatusTodo})
	require.NoError(t, corruptFile(s.tasksPath()))

	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	// The .bak holds the first seeded generation.
	assert.Len(t, tasks, 1)
}

func TestLoadRecoversWithSkeletonWhenNoBackup(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, corruptFile(s.areasPath()))

	areas, err := s.LoadAreas()
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestDecodeWorkspaceFileRejectsWrongType(t *testing.T) {
	content, err := yamlv3.Marshal(map[string]any{
		"schema_version": 1,
		"file_type":      model.FileTypeAreas,
	})
	require.NoError(t, err)

	var file model.TaskFile
	err = decodeWorkspaceFile(content, model.FileTypeTasks, &file)
	assert.Error(t, err)
}

func corruptFile(path string) error {
	return os.WriteFile(path, []byte("{{not yaml"), 0644)
}
