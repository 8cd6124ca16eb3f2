package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"modgraph/pkg/logging"
)

const (
	// DefaultDebounceInterval is the time to wait after the last catalog
	// write before OnChange runs.
	DefaultDebounceInterval = 500 * time.Millisecond

	// DefaultPollInterval is the fallback polling interval when fsnotify is
	// unavailable.
	DefaultPollInterval = 5 * time.Second
)

// WatcherConfig holds configuration for the catalog watcher.
type WatcherConfig struct {
	// Dir is the tenant directory holding modules.yaml and dependencies.yaml.
	Dir string

	// Debounce collapses bursts of writes into one OnChange call.
	Debounce time.Duration

	// PollInterval is used when fsnotify cannot watch Dir.
	PollInterval time.Duration

	// OnChange is called after the catalog files change.
	OnChange func()
}

// Watcher monitors a tenant catalog directory and reports changes to its
// YAML files. It falls back to polling when fsnotify is unavailable.
type Watcher struct {
	mu sync.Mutex

	config WatcherConfig

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	// lastModTimes tracks the catalog files for fallback polling
	lastModTimes map[string]time.Time

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a catalog watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Watcher{
		config:       config,
		lastModTimes: make(map[string]time.Time),
	}
}

// Start begins watching for catalog changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Watcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges(w.stopCh)
		return nil
	}

	w.fsWatcher = watcher

	if err := w.fsWatcher.Add(w.config.Dir); err != nil {
		logging.Warn("Watcher", "Failed to watch directory %s, falling back to polling: %v",
			w.config.Dir, err)
		w.fsWatcher.Close()
		w.fsWatcher = nil
		go w.pollForChanges(w.stopCh)
		return nil
	}

	// Capture channels before releasing lock to avoid races with Stop
	go w.processEvents(w.stopCh, w.fsWatcher.Events, w.fsWatcher.Errors)

	logging.Info("Watcher", "Started watching %s for catalog changes", w.config.Dir)
	return nil
}

func (w *Watcher) processEvents(stopCh <-chan struct{}, eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isCatalogFile(filepath.Base(event.Name)) {
		return
	}

	// Editors often replace files by rename, so every op except chmod counts
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	logging.Debug("Watcher", "Catalog file changed: %s (%s)", event.Name, event.Op)
	w.triggerDebounced()
}

func isCatalogFile(fileName string) bool {
	return fileName == modulesFileName || fileName == dependenciesFileName
}

func (w *Watcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

func (w *Watcher) pollForChanges(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.checkForChanges()

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("Watcher", "Catalog changes detected via polling")
				w.triggerDebounced()
			}
		}
	}
}

// checkForChanges reports whether a catalog file appeared, disappeared or
// was modified since the previous call.
func (w *Watcher) checkForChanges() bool {
	changed := false

	for _, name := range []string{modulesFileName, dependenciesFileName} {
		file := filepath.Join(w.config.Dir, name)
		lastModTime, seen := w.lastModTimes[file]

		info, err := os.Stat(file)
		if err != nil {
			if seen {
				delete(w.lastModTimes, file)
				changed = true
			}
			continue
		}

		if seen && !info.ModTime().Equal(lastModTime) {
			changed = true
		}
		w.lastModTimes[file] = info.ModTime()
	}

	return changed
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Watcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("Watcher", "Stopped catalog watcher")
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
