// Package store persists the PARA workspace as YAML files and implements
// the repository surfaces the analytics and maintenance engines depend on.
// All writes are partial updates applied under a per-file mutex and written
// atomically, so concurrent engine callers never observe a torn file.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paraflow/paraflow/internal/clock"
	"github.com/paraflow/paraflow/internal/health"
	"github.com/paraflow/paraflow/internal/lock"
	"github.com/paraflow/paraflow/internal/model"
	yamlutil "github.com/paraflow/paraflow/internal/yaml"

	yamlv3 "gopkg.in/yaml.v3"
)

const (
	tasksFileName    = "tasks.yaml"
	projectsFileName = "projects.yaml"
	areasFileName    = "areas.yaml"
)

type Store struct {
	dir   string
	clock clock.Clock
	locks *lock.MutexMap
}

func Open(dir string, clk clock.Clock) *Store {
	return &Store{
		dir:   dir,
		clock: clk,
		locks: lock.NewMutexMap(),
	}
}

func (s *Store) tasksPath() string    { return filepath.Join(s.dir, tasksFileName) }
func (s *Store) projectsPath() string { return filepath.Join(s.dir, projectsFileName) }
func (s *Store) areasPath() string    { return filepath.Join(s.dir, areasFileName) }

// Init creates skeleton workspace files for any that are missing.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}
	files := map[string]string{
		s.tasksPath():    model.FileTypeTasks,
		s.projectsPath(): model.FileTypeProjects,
		s.areasPath():    model.FileTypeAreas,
	}
	for path, fileType := range files {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := yamlutil.GenerateSkeleton(path, fileType); err != nil {
			return err
		}
	}
	return nil
}

// LoadTasks returns all task records that pass invariant validation.
// Records violating task invariants are skipped with a log line rather than
// poisoning every downstream analysis.
func (s *Store) LoadTasks() ([]model.Task, error) {
	var file model.TaskFile
	if err := s.loadFile(s.tasksPath(), model.FileTypeTasks, &file); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(file.Tasks))
	for i := range file.Tasks {
		if err := model.ValidateTaskRecord(&file.Tasks[i]); err != nil {
			log.Printf("skipping invalid task record: %v", err)
			continue
		}
		tasks = append(tasks, file.Tasks[i])
	}
	return tasks, nil
}

func (s *Store) LoadProjects() ([]model.Project, error) {
	var file model.ProjectFile
	if err := s.loadFile(s.projectsPath(), model.FileTypeProjects, &file); err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, len(file.Projects))
	for i := range file.Projects {
		if err := model.ValidateProjectRecord(&file.Projects[i]); err != nil {
			log.Printf("skipping invalid project record: %v", err)
			continue
		}
		projects = append(projects, file.Projects[i])
	}
	return projects, nil
}

func (s *Store) LoadAreas() ([]model.Area, error) {
	var file model.AreaFile
	if err := s.loadFile(s.areasPath(), model.FileTypeAreas, &file); err != nil {
		return nil, err
	}

	areas := make([]model.Area, 0, len(file.Areas))
	for i := range file.Areas {
		if err := model.ValidateAreaRecord(&file.Areas[i]); err != nil {
			log.Printf("skipping invalid area record: %v", err)
			continue
		}
		areas = append(areas, file.Areas[i])
	}
	return areas, nil
}

// GetProject returns one project by id along with its task list.
func (s *Store) GetProject(id string) (*model.Project, []model.Task, error) {
	projects, err := s.LoadProjects()
	if err != nil {
		return nil, nil, err
	}
	for i := range projects {
		if projects[i].ID != id {
			continue
		}
		tasks, err := s.LoadTasks()
		if err != nil {
			return nil, nil, err
		}
		var projectTasks []model.Task
		for _, t := range tasks {
			if t.ProjectID == id {
				projectTasks = append(projectTasks, t)
			}
		}
		return &projects[i], projectTasks, nil
	}
	return nil, nil, fmt.Errorf("project %s not found", id)
}

// GetArea implements health.Repository.
func (s *Store) GetArea(id string) (*model.Area, error) {
	areas, err := s.LoadAreas()
	if err != nil {
		return nil, err
	}
	for i := range areas {
		if areas[i].ID == id {
			return &areas[i], nil
		}
	}
	return nil, fmt.Errorf("area %s: %w", id, health.ErrAreaNotFound)
}

// UpdateArea implements health.Repository: applies the partial update to
// one area and rewrites the areas file atomically.
func (s *Store) UpdateArea(id string, update health.AreaUpdate) error {
	s.locks.Lock(areasFileName)
	defer s.locks.Unlock(areasFileName)

	var file model.AreaFile
	if err := s.loadFile(s.areasPath(), model.FileTypeAreas, &file); err != nil {
		return err
	}

	for i := range file.Areas {
		if file.Areas[i].ID != id {
			continue
		}
		a := &file.Areas[i]
		if update.HealthScore != nil {
			a.HealthScore = update.HealthScore
		}
		if update.NextReviewDate != nil {
			a.NextReviewDate = update.NextReviewDate
		}
		if update.LastReviewedAt != nil {
			a.LastReviewedAt = update.LastReviewedAt
		}
		if update.ReviewFrequency != nil {
			a.ReviewFrequency = *update.ReviewFrequency
		}
		a.UpdatedAt = s.clock.Now()
		return yamlutil.AtomicWrite(s.areasPath(), &file)
	}
	return fmt.Errorf("area %s: %w", id, health.ErrAreaNotFound)
}

// SaveTaskHours persists a task's new absolute actual-hours total. Matches
// the tracking.PersistFunc signature so a Store can back the time tracker
// directly.
func (s *Store) SaveTaskHours(ctx context.Context, taskID string, actualHours float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actualHours < 0 {
		return fmt.Errorf("task %s: negative actual_hours %v", taskID, actualHours)
	}

	s.locks.Lock(tasksFileName)
	defer s.locks.Unlock(tasksFileName)

	var file model.TaskFile
	if err := s.loadFile(s.tasksPath(), model.FileTypeTasks, &file); err != nil {
		return err
	}

	for i := range file.Tasks {
		if file.Tasks[i].ID != taskID {
			continue
		}
		hours := actualHours
		file.Tasks[i].ActualHours = &hours
		file.Tasks[i].UpdatedAt = s.clock.Now()
		return yamlutil.AtomicWrite(s.tasksPath(), &file)
	}
	return fmt.Errorf("task %s not found", taskID)
}

// RecordReview appends an immutable review snapshot to the area's history
// and advances the review schedule from the review date.
func (s *Store) RecordReview(review model.AreaReview) error {
	s.locks.Lock(areasFileName)
	defer s.locks.Unlock(areasFileName)

	var file model.AreaFile
	if err := s.loadFile(s.areasPath(), model.FileTypeAreas, &file); err != nil {
		return err
	}

	for i := range file.Areas {
		if file.Areas[i].ID != review.AreaID {
			continue
		}
		a := &file.Areas[i]
		a.Reviews = append(a.Reviews, review)
		reviewed := review.ReviewDate
		a.LastReviewedAt = &reviewed
		next := health.NextReviewDate(review.ReviewDate, a.ReviewFrequency)
		a.NextReviewDate = &next
		if review.HealthScore != nil {
			a.HealthScore = review.HealthScore
		}
		a.UpdatedAt = s.clock.Now()
		return yamlutil.AtomicWrite(s.areasPath(), &file)
	}
	return fmt.Errorf("area %s: %w", review.AreaID, health.ErrAreaNotFound)
}

// loadFile reads and decodes one workspace file, recovering via quarantine
// + backup restore when the file is corrupt.
func (s *Store) loadFile(path, fileType string, out any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := decodeWorkspaceFile(content, fileType, out); err == nil {
		return nil
	} else {
		log.Printf("corrupt workspace file %s: %v — attempting recovery", path, err)
	}

	if err := yamlutil.RecoverCorruptedFile(s.dir, path, fileType); err != nil {
		return fmt.Errorf("recover %s: %w", path, err)
	}

	content, err = os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read recovered %s: %w", path, err)
	}
	if err := decodeWorkspaceFile(content, fileType, out); err != nil {
		return fmt.Errorf("decode recovered %s: %w", path, err)
	}
	return nil
}

func decodeWorkspaceFile(content []byte, fileType string, out any) error {
	if err := yamlutil.ValidateSchemaHeaderFromBytes(content, fileType); err != nil {
		return err
	}
	if err := yamlv3.Unmarshal(content, out); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}
