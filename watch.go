package oitview

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher signals on Changed whenever a shader source below one of the
// watched directories is written. Bursts collapse into a single signal.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	logger  Logger
}

func NewShaderWatcher(logger Logger, dirs ...string) (*ShaderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	sw := &ShaderWatcher{
		watcher: w,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	sw.wg.Add(1)
	go sw.run()
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	defer sw.wg.Done()
	for {
		select {
		case <-sw.done:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !isShaderEvent(ev) {
				continue
			}
			sw.logger.Debugf("shader changed: %s (%s)", ev.Name, ev.Op)
			select {
			case sw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warnf("shader watcher: %v", err)
		}
	}
}

func isShaderEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Base(ev.Name) {
	case VertexShaderFile, FragmentShaderFile:
		return true
	}
	return false
}

func (sw *ShaderWatcher) Changed() <-chan struct{} {
	return sw.changed
}

func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}
