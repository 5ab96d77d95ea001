package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/paraflow/paraflow/internal/analytics"
	"github.com/paraflow/paraflow/internal/clock"
	"github.com/paraflow/paraflow/internal/health"
	"github.com/paraflow/paraflow/internal/model"
	"github.com/paraflow/paraflow/internal/report"
	"github.com/paraflow/paraflow/internal/schedule"
	"github.com/paraflow/paraflow/internal/store"
	"github.com/paraflow/paraflow/internal/tracking"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "project":
		runProject(os.Args[2:])
	case "schedule":
		runSchedule(os.Args[2:])
	case "areas":
		runAreas(os.Args[2:])
	case "maintain":
		runMaintain(os.Args[2:])
	case "review":
		runReview(os.Args[2:])
	case "track":
		runTrack(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "version":
		fmt.Printf("paraflow %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runInit(args []string) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	workspaceDir := filepath.Join(dir, ".paraflow")
	s := store.Open(workspaceDir, clock.System())
	if err := s.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	absDir, _ := filepath.Abs(workspaceDir)
	fmt.Printf("Initialized workspace in %s\n", absDir)
}

func runProject(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: paraflow project <project_id>")
		os.Exit(1)
	}

	s := openWorkspace()
	project, tasks, err := s.GetProject(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "project: %v\n", err)
		os.Exit(1)
	}

	engine := analytics.NewEngine(clock.System())
	rep, err := engine.ProjectReport(project, tasks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "project: %v\n", err)
		os.Exit(1)
	}

	out, err := report.FormatProjectReport(rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "project: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func runSchedule(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: paraflow schedule <project_id>")
		os.Exit(1)
	}

	s := openWorkspace()
	project, tasks, err := s.GetProject(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedule: %v\n", err)
		os.Exit(1)
	}

	out, err := report.FormatSchedule(project.ID, schedule.Analyze(tasks))
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedule: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func runAreas(_ []string) {
	s := openWorkspace()
	areas, err := s.LoadAreas()
	if err != nil {
		fmt.Fprintf(os.Stderr, "areas: %v\n", err)
		os.Exit(1)
	}

	dashboard := health.BuildDashboard(areas, clock.System().Now())
	out, err := report.FormatPortfolio(dashboard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "areas: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

// runMaintain applies one maintenance action to every active area (or the
// areas named on the command line) with per-area failure isolation.
func runMaintain(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: paraflow maintain <schedule-reviews|reset-health|set-frequency <freq>> [area_id...]")
		os.Exit(1)
	}

	var actionType health.ActionType
	var frequency model.ReviewFrequency
	rest := args[1:]
	switch args[0] {
	case "schedule-reviews":
		actionType = health.ActionScheduleReview
	case "reset-health":
		actionType = health.ActionResetHealth
	case "set-frequency":
		if len(rest) < 1 {
			fmt.Fprintln(os.Stderr, "usage: paraflow maintain set-frequency <frequency> [area_id...]")
			os.Exit(1)
		}
		actionType = health.ActionChangeFrequency
		frequency = model.ReviewFrequency(rest[0])
		rest = rest[1:]
	default:
		fmt.Fprintf(os.Stderr, "unknown maintain subcommand: %s\n", args[0])
		os.Exit(1)
	}

	s := openWorkspace()
	areaIDs := rest
	if len(areaIDs) == 0 {
		areas, err := s.LoadAreas()
		if err != nil {
			fmt.Fprintf(os.Stderr, "maintain: %v\n", err)
			os.Exit(1)
		}
		for i := range areas {
			if areas[i].IsActive {
				areaIDs = append(areaIDs, areas[i].ID)
			}
		}
	}

	actions := make([]health.Action, 0, len(areaIDs))
	for _, id := range areaIDs {
		actions = append(actions, health.Action{
			AreaID:    id,
			Type:      actionType,
			Frequency: frequency,
		})
	}

	maintainer := health.NewMaintainer(s, clock.System())
	failed := 0
	for _, outcome := range maintainer.ApplyBatch(actions) {
		if outcome.Err != nil {
			failed++
			fmt.Printf("%-40s %s FAILED: %v\n", outcome.AreaID, outcome.Type, outcome.Err)
			continue
		}
		fmt.Printf("%-40s %s ok\n", outcome.AreaID, outcome.Type)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runReview(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: paraflow review <area_id> [notes]")
		os.Exit(1)
	}

	s := openWorkspace()
	id, err := model.GenerateID(model.IDTypeReview)
	if err != nil {
		fmt.Fprintf(os.Stderr, "review: %v\n", err)
		os.Exit(1)
	}

	now := clock.System().Now()
	review := model.AreaReview{
		ID:         id,
		AreaID:     args[0],
		ReviewDate: now,
		ReviewType: "manual",
		CreatedAt:  now,
	}
	if len(args) > 1 {
		notes := args[1]
		review.Notes = &notes
	}

	if err := s.RecordReview(review); err != nil {
		fmt.Fprintf(os.Stderr, "review: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recorded review %s for area %s\n", id, args[0])
}

// runTrack runs a live stopwatch session against a task. Ctrl-C stops the
// session and persists the accumulated hours; with --set the stopwatch is
// bypassed and an absolute hours value is written instead.
func runTrack(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: paraflow track <task_id> [--set <hours>]")
		os.Exit(1)
	}
	taskID := args[0]
	s := openWorkspace()

	if len(args) >= 2 && args[1] == "--set" {
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: paraflow track <task_id> --set <hours>")
			os.Exit(1)
		}
		hours, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "track: invalid hours %q\n", args[2])
			os.Exit(1)
		}
		tracker := tracking.NewTracker(clock.System(), s.SaveTaskHours, nil)
		if err := tracker.SetManualHours(context.Background(), taskID, hours); err != nil {
			fmt.Fprintf(os.Stderr, "track: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Set %s actual hours to %.2f\n", taskID, hours)
		return
	}

	tasks, err := s.LoadTasks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "track: %v\n", err)
		os.Exit(1)
	}
	var baseHours float64
	found := false
	for i := range tasks {
		if tasks[i].ID == taskID {
			found = true
			if tasks[i].ActualHours != nil {
				baseHours = *tasks[i].ActualHours
			}
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "track: task not found: %s\n", taskID)
		os.Exit(1)
	}

	tracker := tracking.NewTracker(clock.System(), s.SaveTaskHours, func(elapsed time.Duration) {
		fmt.Printf("\r%s  %s ", taskID, elapsed.Truncate(time.Second))
	})
	if err := tracker.Start(taskID, baseHours); err != nil {
		fmt.Fprintf(os.Stderr, "track: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Tracking %s (Ctrl-C to stop and save)\n", taskID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println()

	sessionHours := tracker.Elapsed().Hours()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tracker.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "track: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %.2fh session for %s (total %.2fh)\n", sessionHours, taskID, baseHours+sessionHours)
}

func runWatch(args []string) {
	logLevel := store.LogLevelInfo
	for _, a := range args {
		switch a {
		case "--debug":
			logLevel = store.LogLevelDebug
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: paraflow watch [--debug]\n", a)
			os.Exit(1)
		}
	}

	workspaceDir := findWorkspaceDir()
	if workspaceDir == "" {
		fmt.Fprintln(os.Stderr, "error: .paraflow/ directory not found. Run 'paraflow init <dir>' first.")
		os.Exit(1)
	}

	s := store.Open(workspaceDir, clock.System())
	engine := analytics.NewEngine(clock.System())
	logger := log.New(os.Stderr, "paraflow ", log.LstdFlags)

	onChange := func() {
		engine.Invalidate()
		areas, err := s.LoadAreas()
		if err != nil {
			logger.Printf("reload areas: %v", err)
			return
		}
		dashboard := health.BuildDashboard(areas, clock.System().Now())
		out, err := report.FormatPortfolio(dashboard)
		if err != nil {
			logger.Printf("render portfolio: %v", err)
			return
		}
		if err := writeDashboard(workspaceDir, out); err != nil {
			logger.Printf("write dashboard: %v", err)
		}
	}

	watcher := store.NewWatcher(workspaceDir, time.Minute, onChange, logger, logLevel)
	if err := watcher.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
}

func writeDashboard(workspaceDir, content string) error {
	return os.WriteFile(filepath.Join(workspaceDir, "dashboard.md"), []byte(content), 0644)
}

func openWorkspace() *store.Store {
	workspaceDir := findWorkspaceDir()
	if workspaceDir == "" {
		fmt.Fprintln(os.Stderr, "error: .paraflow/ directory not found. Run 'paraflow init <dir>' first.")
		os.Exit(1)
	}
	return store.Open(workspaceDir, clock.System())
}

func findWorkspaceDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".paraflow")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `paraflow %s — PARA planning and maintenance toolkit

Usage: paraflow <command> [options]

Workspace:
  init [dir]          Initialize .paraflow/ workspace
  watch [--debug]     Watch workspace, keep dashboard.md current

Analysis:
  project <id>        Project analytics and critical-path schedule
  schedule <id>       Critical-path schedule only
  areas               Area portfolio dashboard

Maintenance:
  maintain schedule-reviews [area_id...]     Schedule next reviews
  maintain reset-health [area_id...]         Reset health scores to neutral
  maintain set-frequency <freq> [area_id...] Change review cadence
  review <area_id> [notes]                   Record a review now

Time tracking:
  track <task_id>                 Live stopwatch (Ctrl-C stops and saves)
  track <task_id> --set <hours>   Set actual hours directly

Utilities:
  version             Show version
  help                Show this help
`, version)
}
