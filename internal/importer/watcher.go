package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Subdirectories of the inbox that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// DefaultDebounce is how long a file must be quiet before it is imported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher imports catalog files dropped into an inbox directory. A file is
// imported once it has seen no writes for the debounce interval, then moved
// to processed/ or failed/ together with a JSON report.
type Watcher struct {
	mu       sync.Mutex
	importer *Importer
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	pending  map[string]time.Time
	logger   *zap.Logger
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
}

// Report is written next to each handled file as <name>.report.json.
type Report struct {
	File       string    `json:"file"`
	ImportedAt time.Time `json:"importedAt"`
	Result     *Result   `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NewWatcher creates a watcher for dir. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(im *Importer, dir string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create inbox watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		importer: im,
		watcher:  fw,
		dir:      filepath.Clean(dir),
		debounce: debounce,
		pending:  make(map[string]time.Time),
		logger:   logger.With(zap.String("inbox", dir)),
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Dir is the watched inbox.
func (w *Watcher) Dir() string { return w.dir }

// Start creates the inbox layout, queues files already waiting in it and
// begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	for _, sub := range []string{"", ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("create inbox: %w", err)
		}
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}

	w.mu.Lock()
	for _, e := range entries {
		if !e.IsDir() && importable(e.Name()) {
			w.pending[filepath.Join(w.dir, e.Name())] = time.Time{}
		}
	}
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching import inbox", zap.Duration("debounce", w.debounce))
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit. Safe to call more than
// once, and without Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	started, stopped := w.started, w.stopped
	w.stopped = true
	w.mu.Unlock()

	switch {
	case stopped && started:
		<-w.doneCh
	case stopped:
	case !started:
		w.closeWatcher()
	default:
		close(w.stopCh)
		<-w.doneCh
	}
}

func (w *Watcher) closeWatcher() {
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("close inbox watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.closeWatcher()

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watcher error", zap.Error(err))
		case <-ticker.C:
			w.processDue(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if filepath.Dir(event.Name) != w.dir || !importable(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = w.now()
	w.mu.Unlock()
}

func (w *Watcher) processDue(ctx context.Context) {
	now := w.now()
	var due []string

	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(due)
	for _, path := range due {
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// Moved away or deleted before the debounce elapsed.
		return
	}

	report := Report{File: filepath.Base(path), ImportedAt: w.now().UTC()}
	res, err := w.importer.ImportFile(ctx, path)
	outcome := ProcessedDir
	switch {
	case err != nil:
		outcome = FailedDir
		report.Error = err.Error()
		w.logger.Warn("import file failed", zap.String("file", report.File), zap.Error(err))
	case res.Failed():
		outcome = FailedDir
		report.Result = &res
		w.logger.Warn("import file had rejected records",
			zap.String("file", report.File),
			zap.Int("failed", len(res.Failures)),
		)
	default:
		report.Result = &res
		w.logger.Info("import file processed", zap.String("file", report.File))
	}
	w.importer.metrics.ImportFile(outcome)

	if err := w.archive(path, outcome, report); err != nil {
		w.logger.Error("archive import file", zap.String("file", report.File), zap.Error(err))
	}
}

// archive moves path into the outcome directory under a timestamped name and
// writes the report beside it.
func (w *Watcher) archive(path, outcome string, report Report) error {
	name := report.ImportedAt.Format("20060102T150405.000") + "-" + filepath.Base(path)
	target := filepath.Join(w.dir, outcome, name)
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(target+".report.json", data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func importable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	_, err := FormatFromPath(base)
	return err == nil
}
