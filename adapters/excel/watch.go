package excel

import (
	"context"
	"path/filepath"

	"custlens/internal"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a FileSource whenever its file is rewritten.
type Watcher struct {
	source   *FileSource
	watcher  *fsnotify.Watcher
	target   string
	onReload func(error)
	logger   *internal.Logger
}

// NewWatcher watches the directory holding the source's file. Watching the
// directory rather than the file keeps working when the file is replaced by
// a rename, which is how most spreadsheet tools save.
func NewWatcher(source *FileSource, logger *internal.Logger) (*Watcher, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	target, err := filepath.Abs(source.Path())
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, err
	}
	return &Watcher{source: source, watcher: watcher, target: target, logger: logger.With("Watcher")}, nil
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(fn func(error)) { w.onReload = fn }

// Run handles events until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			err := w.source.Reload()
			if err != nil {
				w.logger.Warn("reload of %s failed, keeping previous dataset: %v", w.target, err)
			} else {
				w.logger.Info("reloaded %s", w.target)
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == w.target
}
