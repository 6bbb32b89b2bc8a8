package easel

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a file must stay quiet before its change is
// reported. Editors often truncate and write a file several times per save.
const watchDebounce = 100 * time.Millisecond

// Watcher reports changed config and asset files in a set of directories.
// Events carries the changed paths; Changed drains them without blocking so
// content can poll from Update.
type Watcher struct {
	watcher *fsnotify.Watcher
	exts    map[string]bool
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches dirs for writes, creates, renames and removes of files
// with one of the given extensions, e.g. ".yaml" or ".png". An empty exts
// list matches every file.
func NewWatcher(exts []string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		exts:    make(map[string]bool, len(exts)),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, ext := range exts {
		watcher.exts[strings.ToLower(ext)] = true
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching. Events and Errors are closed once the watch loop has
// exited.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// Changed returns the distinct paths reported since the last call, in the
// order first seen. It never blocks.
func (w *Watcher) Changed() []string {
	var paths []string
	for {
		select {
		case p, ok := <-w.Events:
			if !ok {
				return paths
			}
			if !slices.Contains(paths, p) {
				paths = append(paths, p)
			}
		default:
			return paths
		}
	}
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	var quiet debouncer
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	armed := false
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			quiet.add(event.Name, time.Now())
			if !armed {
				timer.Reset(watchDebounce)
				armed = true
			}
		case <-timer.C:
			ready, next := quiet.due(time.Now())
			for _, name := range ready {
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			armed = next > 0
			if armed {
				timer.Reset(next)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// The previous error has not been read yet.
			}
		case <-w.closeCh:
			return
		}
	}
}

// debouncer holds files that changed recently, keyed by their last event.
type debouncer struct {
	last  map[string]time.Time
	order []string
}

func (d *debouncer) add(name string, at time.Time) {
	if d.last == nil {
		d.last = make(map[string]time.Time)
	}
	if _, ok := d.last[name]; !ok {
		d.order = append(d.order, name)
	}
	d.last[name] = at
}

// due removes and returns the files quiet for at least watchDebounce as of
// now, in order of first event. next is the wait until the earliest remaining
// file settles, or 0 when none remain.
func (d *debouncer) due(now time.Time) (ready []string, next time.Duration) {
	keep := d.order[:0]
	for _, name := range d.order {
		wait := watchDebounce - now.Sub(d.last[name])
		if wait <= 0 {
			ready = append(ready, name)
			delete(d.last, name)
			continue
		}
		keep = append(keep, name)
		if next == 0 || wait < next {
			next = wait
		}
	}
	clear(d.order[len(keep):])
	d.order = keep
	return ready, next
}

func (w *Watcher) matches(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(path))]
}
