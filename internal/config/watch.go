package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses the burst of events editors emit on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher reports changes to a set of config files. Directories are watched
// rather than files so that atomic renames and not-yet-created files are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	onChange func()
	onError  func(error)

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

// Watch starts watching files. onChange runs on a timer goroutine once the
// files have been quiet for debounce; onError may be nil.
func Watch(files []string, debounce time.Duration, onChange func(), onError func(error)) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %q: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
				continue
			}
			if _, ok := w.files[filepath.Clean(ev.Name)]; !ok {
				continue
			}
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.onChange)
		return
	}
	w.timer.Reset(w.debounce)
}

// Close stops watching. Pending notifications are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fs.Close()
		<-w.done
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}
