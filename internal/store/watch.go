package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/paraflow/paraflow/internal/lock"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Watcher observes a workspace directory and invokes a callback when any
// workspace file changes, plus on a periodic refresh tick. A file lock
// keeps it to one watcher per workspace.
type Watcher struct {
	workspaceDir string
	refresh      time.Duration
	onChange     func()
	logger       *log.Logger
	logLevel     LogLevel

	fileLock *lock.FileLock
	watcher  *fsnotify.Watcher
	ticker   *time.Ticker

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once
}

func NewWatcher(workspaceDir string, refresh time.Duration, onChange func(), logger *log.Logger, level LogLevel) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		workspaceDir: workspaceDir,
		refresh:      refresh,
		onChange:     onChange,
		logger:       logger,
		logLevel:     level,
		fileLock:     lock.NewFileLock(filepath.Join(workspaceDir, "watch.lock")),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run blocks until a shutdown signal is received.
func (w *Watcher) Run() error {
	if err := w.fileLock.TryLock(); err != nil {
		return fmt.Errorf("watcher lock: %w", err)
	}
	w.log(LogLevelInfo, "watcher starting pid=%d dir=%s", os.Getpid(), w.workspaceDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.fileLock.Unlock()
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.watcher = watcher

	if err := watcher.Add(w.workspaceDir); err != nil {
		w.cleanup()
		return fmt.Errorf("watch %s: %w", w.workspaceDir, err)
	}

	w.ticker = time.NewTicker(w.refresh)

	w.wg.Add(2)
	go w.fsnotifyLoop()
	go w.tickerLoop()

	// Initial pass before any event arrives
	w.onChange()
	w.log(LogLevelInfo, "watcher ready")

	w.waitSignals()
	return nil
}

// fsnotifyLoop processes filesystem change events.
func (w *Watcher) fsnotifyLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isWorkspaceFile(event.Name) {
				continue
			}
			w.log(LogLevelDebug, "fsnotify event=%s file=%s", event.Op, event.Name)
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log(LogLevelError, "fsnotify error=%v", err)
		}
	}
}

// tickerLoop re-runs the callback on the refresh interval so date-relative
// metrics (overdue, due-soon, inactivity) stay current even without file
// changes.
func (w *Watcher) tickerLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.ticker.C:
			w.log(LogLevelDebug, "periodic refresh triggered")
			w.onChange()
		}
	}
}

func (w *Watcher) waitSignals() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	w.log(LogLevelInfo, "received signal=%s, shutting down", sig)
	w.Shutdown()
}

// Shutdown stops the loops and releases the workspace lock (idempotent).
func (w *Watcher) Shutdown() {
	w.shutdown.Do(func() {
		w.cancel()
		if w.ticker != nil {
			w.ticker.Stop()
		}
		if w.watcher != nil {
			w.watcher.Close()
		}
		w.wg.Wait()
		w.fileLock.Unlock()
		w.log(LogLevelInfo, "watcher stopped")
	})
}

func (w *Watcher) cleanup() {
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.fileLock.Unlock()
}

func (w *Watcher) log(level LogLevel, format string, args ...any) {
	if level < w.logLevel || w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}

// isWorkspaceFile filters out temp files, backups, and the lock file.
func isWorkspaceFile(path string) bool {
	switch filepath.Base(path) {
	case tasksFileName, projectsFileName, areasFileName:
		return true
	}
	return false
}
