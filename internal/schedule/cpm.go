// Package schedule implements the critical-path analysis over a project's
// task dependency graph: earliest/latest start and finish times, slack, and
// the critical path, all in whole days relative to t=0 at project start.
package schedule

import (
	"sort"

	"github.com/paraflow/paraflow/internal/model"
)

// Node carries the derived schedule metrics for one task. Nodes are built
// fresh on every Analyze call and never persisted.
type Node struct {
	TaskID         string
	Title          string
	Duration       int
	EarliestStart  int
	EarliestFinish int
	LatestStart    int
	LatestFinish   int
	Slack          int
	IsCritical     bool
}

// Result is the outcome of one critical-path analysis.
type Result struct {
	Nodes           map[string]*Node
	CriticalTasks   []*Node
	ProjectDuration int
	TotalSlack      int
	// Cycle holds the path of one dependency cycle when the graph is not a
	// DAG. Cyclic tasks still get neutral-fallback times (a re-entered task
	// contributes no constraint), so the metrics for those tasks are an
	// approximation, not a rigorous CPM result.
	Cycle []string
}

type analyzer struct {
	tasks      map[string]*model.Task
	durations  map[string]int
	deps       map[string][]string
	successors map[string][]string
	nodes      map[string]*Node

	projectDuration int

	memoEF    map[string]int
	memoLS    map[string]int
	visitingF map[string]bool
	visitingB map[string]bool
}

// Analyze runs the forward and backward CPM passes over the task list.
// Returns nil when there is nothing to analyze. The input is never mutated;
// analyzing the same task list twice yields identical results.
func Analyze(tasks []model.Task) *Result {
	if len(tasks) == 0 {
		return nil
	}

	a := &analyzer{
		tasks:      make(map[string]*model.Task, len(tasks)),
		durations:  make(map[string]int, len(tasks)),
		deps:       make(map[string][]string, len(tasks)),
		successors: make(map[string][]string),
		nodes:      make(map[string]*Node, len(tasks)),
		memoEF:     make(map[string]int),
		memoLS:     make(map[string]int),
		visitingF:  make(map[string]bool),
		visitingB:  make(map[string]bool),
	}

	ids := make([]string, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		ids = append(ids, t.ID)
		a.tasks[t.ID] = t
		a.durations[t.ID] = EstimateDurationDays(t)
		a.nodes[t.ID] = &Node{
			TaskID:   t.ID,
			Title:    t.Title,
			Duration: a.durations[t.ID],
		}
		for _, ref := range t.DependsOnTasks {
			a.deps[t.ID] = append(a.deps[t.ID], ref.ID)
		}
	}
	for id, deps := range a.deps {
		for _, dep := range deps {
			if _, ok := a.tasks[dep]; ok {
				a.successors[dep] = append(a.successors[dep], id)
			}
		}
	}

	// Cycle pre-pass: Kahn's algorithm with DFS cycle reconstruction. The
	// passes below stay cycle-safe regardless; this only surfaces the path.
	_, cycle := TopoSort(ids, a.deps)

	for _, id := range ids {
		if ef := a.earliestFinish(id); ef > a.projectDuration {
			a.projectDuration = ef
		}
	}
	for _, id := range ids {
		a.latestStart(id)
	}

	result := &Result{
		Nodes:           a.nodes,
		ProjectDuration: a.projectDuration,
		Cycle:           cycle,
	}
	for _, id := range ids {
		n := a.nodes[id]
		n.Slack = n.LatestStart - n.EarliestStart
		n.IsCritical = n.Slack == 0
		result.TotalSlack += n.Slack
		if n.IsCritical {
			result.CriticalTasks = append(result.CriticalTasks, n)
		}
	}
	sort.Slice(result.CriticalTasks, func(i, j int) bool {
		ci, cj := result.CriticalTasks[i], result.CriticalTasks[j]
		if ci.EarliestStart != cj.EarliestStart {
			return ci.EarliestStart < cj.EarliestStart
		}
		ti, tj := a.tasks[ci.TaskID], a.tasks[cj.TaskID]
		if ti.Position != tj.Position {
			return ti.Position < tj.Position
		}
		return ci.TaskID < cj.TaskID
	})

	return result
}

// earliestFinish computes the forward pass for one task, memoized per call.
// A task re-entered within the current recursion stack contributes 0, so a
// dependency cycle acts as no constraint instead of an error.
func (a *analyzer) earliestFinish(id string) int {
	if v, ok := a.memoEF[id]; ok {
		return v
	}
	if a.visitingF[id] {
		return 0
	}
	a.visitingF[id] = true

	es := 0
	for _, dep := range a.deps[id] {
		if _, ok := a.tasks[dep]; !ok {
			continue
		}
		if ef := a.earliestFinish(dep); ef > es {
			es = ef
		}
	}
	delete(a.visitingF, id)

	ef := es + a.durations[id]
	n := a.nodes[id]
	n.EarliestStart = es
	n.EarliestFinish = ef
	a.memoEF[id] = ef
	return ef
}

// latestStart computes the backward pass for one task, memoized per call.
// Sinks finish at projectDuration; the cycle guard returns projectDuration
// (no constraint from a re-entered successor).
func (a *analyzer) latestStart(id string) int {
	if v, ok := a.memoLS[id]; ok {
		return v
	}
	if a.visitingB[id] {
		return a.projectDuration
	}
	a.visitingB[id] = true

	lf := a.projectDuration
	if succs := a.successors[id]; len(succs) > 0 {
		first := true
		for _, s := range succs {
			ls := a.latestStart(s)
			if first || ls < lf {
				lf = ls
				first = false
			}
		}
	}
	delete(a.visitingB, id)

	ls := lf - a.durations[id]
	n := a.nodes[id]
	n.LatestFinish = lf
	n.LatestStart = ls
	a.memoLS[id] = ls
	return ls
}
