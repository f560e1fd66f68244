package fastfs

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"jsdeps/internal/logging"
)

// Watcher keeps an Index in sync with the file system and notifies a callback
// after changes settle.
type Watcher struct {
	index     *Index
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	logger    *logging.Logger
	onChange  func()
	done      chan struct{}
}

// DefaultDebounce is the quiet period before onChange fires after a burst of
// file-system events.
const DefaultDebounce = 200 * time.Millisecond

// Watch starts watching every directory in the index. onChange runs after a
// burst of changes settles; the index is already updated when it fires.
func Watch(index *Index, logger *logging.Logger, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		index:     index,
		fs:        fw,
		debouncer: NewDebouncer(DefaultDebounce),
		logger:    logger,
		onChange:  onChange,
		done:      make(chan struct{}),
	}

	for _, dir := range index.AllDirs() {
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("Failed to watch directory", map[string]interface{}{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	changed := false

	switch {
	case event.Op.Has(fsnotify.Create):
		isDir, exists := Stat(event.Name)
		if !exists {
			break
		}
		if isDir {
			if w.index.IsIgnoredDir(filepath.Base(event.Name)) {
				break
			}
			w.index.AddDir(event.Name)
			if err := w.fs.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", map[string]interface{}{
					"dir":   event.Name,
					"error": err.Error(),
				})
			}
		} else {
			w.index.AddFile(event.Name)
		}
		changed = true

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if w.index.DirExists(event.Name) {
			w.index.RemoveDir(event.Name)
		} else {
			w.index.RemoveFile(event.Name)
		}
		changed = true

	case event.Op.Has(fsnotify.Write):
		// Content changed, structure did not; still invalidates graphs.
		changed = w.index.FileExists(event.Name)
	}

	if changed && w.onChange != nil {
		w.debouncer.Trigger(w.onChange)
	}
}

// Close stops watching and cancels any pending notification.
func (w *Watcher) Close() error {
	close(w.done)
	w.debouncer.Cancel()
	return w.fs.Close()
}
