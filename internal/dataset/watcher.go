package dataset

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"samarkand-dashboard/internal/common/logger"
)

// TableWatcher invalidates cached tables when their CSV files change.
type TableWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	store   *Store
	dir     string
	files   map[string]Kind // base name -> dataset
	logger  logger.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewTableWatcher watches the directory of source for changes to its dataset files.
func NewTableWatcher(source *CSVSource, store *Store, log logger.Logger) (*TableWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]Kind, len(source.Files))
	for kind, file := range source.Files {
		files[filepath.Base(file)] = kind
	}

	return &TableWatcher{
		watcher: w,
		store:   store,
		dir:     source.Dir,
		files:   files,
		logger:  log.WithFields(map[string]interface{}{"component": "table-watcher"}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine. It returns once the watch is registered.
func (tw *TableWatcher) Start(ctx context.Context) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.running {
		return nil
	}

	if err := tw.watcher.Add(tw.dir); err != nil {
		return err
	}
	tw.running = true

	go tw.loop(ctx)

	tw.logger.Info("watching dataset files", map[string]interface{}{"dir": tw.dir})
	return nil
}

// Stop ends the watch loop and releases the watcher.
func (tw *TableWatcher) Stop() {
	tw.mu.Lock()
	if !tw.running {
		tw.mu.Unlock()
		_ = tw.watcher.Close()
		return
	}
	tw.running = false
	tw.mu.Unlock()

	close(tw.stopCh)
	<-tw.doneCh
	_ = tw.watcher.Close()
}

func (tw *TableWatcher) loop(ctx context.Context) {
	defer close(tw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tw.stopCh:
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handle(event)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn("dataset watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (tw *TableWatcher) handle(event fsnotify.Event) {
	kind, ok := tw.files[filepath.Base(event.Name)]
	if !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	tw.store.Invalidate(kind)
	tw.logger.Info("dataset file changed, cache invalidated", map[string]interface{}{
		"dataset": string(kind),
		"op":      event.Op.String(),
	})
}
