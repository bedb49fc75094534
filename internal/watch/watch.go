// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watch notifies subscribers when a project's binary on disk
// changes, adapted from the teacher's restart-on-change binary watcher:
// instead of restarting a service, it emits a bus event so any number of
// interested parties — a supervisor, the HTTP bridge, a future auto-reload
// feature — can react however they choose.
package watch

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wingedpig/overseer/internal/bus"
)

const cooldown = 5 * time.Second

// Watcher watches a set of binary paths, each associated with a project
// ID, and emits "project:binary-changed:{id}" on b whenever one of them is
// written or replaced.
type Watcher struct {
	bus       *bus.Bus
	fsWatcher *fsnotify.Watcher
	debouncer *debouncer

	mu            sync.Mutex
	pathToProject map[string]string // absolute path -> project ID
	refs          map[string]int    // absolute path -> number of watchers registered
	lastEmit      map[string]time.Time

	done chan struct{}
}

// New creates a Watcher and starts its background event loop. Call Close
// to stop it.
func New(b *bus.Bus) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		bus:           b,
		fsWatcher:     fsWatcher,
		debouncer:     newDebouncer(250 * time.Millisecond),
		pathToProject: make(map[string]string),
		refs:          make(map[string]int),
		lastEmit:      make(map[string]time.Time),
		done:          make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch registers path as the binary for projectID. Watching the same
// path for multiple projects is ref-counted; Unwatch must be called once
// per Watch call to actually stop watching.
func (w *Watcher) Watch(projectID, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pathToProject[path] = projectID
	if w.refs[path] == 0 {
		if err := w.fsWatcher.Add(path); err != nil {
			return err
		}
	}
	w.refs[path]++
	return nil
}

// Unwatch decrements path's ref count, removing the underlying fsnotify
// watch once no project references it anymore.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.refs[path] == 0 {
		return
	}
	w.refs[path]--
	if w.refs[path] > 0 {
		return
	}
	delete(w.refs, path)
	delete(w.pathToProject, path)
	w.debouncer.cancel(path)
	_ = w.fsWatcher.Remove(path)
}

// Close stops the watcher's background loop and releases all fsnotify
// watches.
func (w *Watcher) Close() error {
	close(w.done)
	w.debouncer.stop()
	return w.fsWatcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Chmod fires when a binary is executed, not just when it's replaced;
	// reacting to it would cause a change notification every run.
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	w.mu.Lock()
	projectID, tracked := w.pathToProject[event.Name]
	w.mu.Unlock()
	if !tracked {
		return
	}

	w.debouncer.debounce(event.Name, func() {
		w.emitChange(projectID, event.Name)
	})
}

func (w *Watcher) emitChange(projectID, path string) {
	w.mu.Lock()
	if last, ok := w.lastEmit[path]; ok && time.Since(last) < cooldown {
		w.mu.Unlock()
		return
	}
	w.lastEmit[path] = time.Now()
	w.mu.Unlock()

	var modTime time.Time
	if info, err := statFile(path); err == nil {
		modTime = info
	}

	w.bus.Emit("project:binary-changed:"+projectID, map[string]any{
		"project_id": projectID,
		"path":       path,
		"mod_time":   modTime,
	})
}
