package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/paraflow/paraflow/internal/clock"
	"github.com/paraflow/paraflow/internal/model"
	"github.com/paraflow/paraflow/internal/schedule"
)

// Report bundles everything derived from one project snapshot: the task
// aggregation and the critical-path analysis.
type Report struct {
	ProjectID   string
	Analytics   ProjectAnalytics
	Schedule    *schedule.Result
	GeneratedAt time.Time
	CacheHit    bool
}

// Engine computes project reports with snapshot-fingerprint caching.
// Concurrent requests for the same snapshot collapse into a single
// computation via singleflight. Safe for concurrent use.
type Engine struct {
	clock        clock.Clock
	cache        *reportCache
	singleflight *singleflight.Group
}

func NewEngine(clk clock.Clock) *Engine {
	return &Engine{
		clock:        clk,
		cache:        newReportCache(256, 30*time.Second), // 256 snapshots, 30s TTL
		singleflight: &singleflight.Group{},
	}
}

// ProjectReport analyzes the project and its tasks as of the engine clock.
// Identical snapshots within the cache TTL are served from cache; the
// overdue and due-soon windows can therefore lag "now" by at most the TTL.
func (e *Engine) ProjectReport(project *model.Project, tasks []model.Task) (*Report, error) {
	key, err := snapshotFingerprint(project, tasks)
	if err != nil {
		return nil, fmt.Errorf("fingerprint snapshot: %w", err)
	}

	if cached := e.cache.Get(key); cached != nil {
		cached.CacheHit = true
		return cached, nil
	}

	result, err, _ := e.singleflight.Do(key, func() (interface{}, error) {
		now := e.clock.Now()
		report := &Report{
			ProjectID:   project.ID,
			Analytics:   AnalyzeProject(project, tasks, now),
			Schedule:    schedule.Analyze(tasks),
			GeneratedAt: now,
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}

	report := result.(*Report)
	e.cache.Set(key, report)
	return report, nil
}

// Invalidate drops all cached reports; called when the underlying workspace
// changes on disk.
func (e *Engine) Invalidate() {
	e.cache.Clear()
}

// snapshotFingerprint produces a canonical digest of the analysis input.
func snapshotFingerprint(project *model.Project, tasks []model.Task) (string, error) {
	payload, err := json.Marshal(struct {
		Project *model.Project `json:"project"`
		Tasks   []model.Task   `json:"tasks"`
	}{project, tasks})
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(payload)
	return hex.EncodeToString(hash[:]), nil
}
