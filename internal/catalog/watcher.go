package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher keeps the catalog in sync with out-of-band changes to the recorder
// output directory: artifacts created or deleted behind the orchestrator's
// back are registered or removed without waiting for an explicit rescan.
type Watcher struct {
	store     *Store
	outputDir string
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	wg        sync.WaitGroup
	done      chan struct{}
	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

// NewWatcher creates a watcher over outputDir. debounce coalesces the event
// bursts a recorder produces while writing one file.
func NewWatcher(store *Store, outputDir string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	w := &Watcher{
		store:     store,
		outputDir: outputDir,
		watcher:   fsWatcher,
		debounce:  debounce,
		done:      make(chan struct{}),
		pending:   make(map[string]*time.Timer),
	}

	if err := w.addRecursive(outputDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.addRecursive(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Start begins processing file events.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processLoop(ctx)
	}()

	log.Info().Str("dir", w.outputDir).Msg("Catalog watcher started")
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()

	w.pendingMu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Catalog watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// New subdirectories (one per feed) must be watched as they appear.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				log.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
			}
			return
		}
	}

	if !strings.HasSuffix(strings.ToLower(event.Name), ".mp3") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if timer, exists := w.pending[event.Name]; exists {
		timer.Stop()
	}

	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.pendingMu.Lock()
		delete(w.pending, path)
		w.pendingMu.Unlock()

		w.reconcile(ctx, path)
	})
}

// reconcile registers or removes one path depending on whether the file
// still exists once its event burst has settled.
func (w *Watcher) reconcile(ctx context.Context, path string) {
	rel, err := filepath.Rel(w.outputDir, path)
	if err != nil {
		return
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		if err := w.store.Delete(ctx, rel); err != nil {
			log.Warn().Err(err).Str("path", rel).Msg("Watcher delete failed")
			return
		}
		log.Info().Str("path", rel).Msg("Artifact removed from catalog")
		return
	}

	existing, getErr := w.store.Get(ctx, rel)
	entry := &Entry{
		FilePath:     rel,
		FileName:     filepath.Base(path),
		FileSize:     info.Size(),
		FileModified: info.ModTime().UTC(),
	}
	if getErr == nil {
		entry.ProgramID = existing.ProgramID
		entry.ProgramTitle = existing.ProgramTitle
		entry.StationID = existing.StationID
		entry.StationName = existing.StationName
		entry.BroadcastDate = existing.BroadcastDate
		entry.StartTime = existing.StartTime
		entry.EndTime = existing.EndTime
		entry.FolderID = existing.FolderID
	}

	if err := w.store.Upsert(ctx, entry); err != nil {
		log.Warn().Err(err).Str("path", rel).Msg("Watcher upsert failed")
		return
	}
	log.Info().Str("path", rel).Int64("size", info.Size()).Msg("Artifact registered by watcher")
}
