package controlfile

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Controller is the subset of *rtsl.Controller the control file drives.
type Controller interface {
	Enable() error
	Disable()
	Enabled() bool
}

// File realizes the control file as a plain regular file watched with
// fsnotify, the closest a pure userspace program gets to debugfs's
// intercepted read()/write() without a FUSE filesystem: every write is
// parsed and applied, then the file's content is rewritten to reflect
// current state so a later read sees the device's state rather than
// whatever bytes were last written to it.
type File struct {
	path string
	ctrl Controller

	watcher *fsnotify.Watcher
	done    chan struct{}

	// pendingSelfWrites counts sync's own writes not yet seen back on
	// watcher.Events, so handleWrite doesn't re-apply its own echo and
	// loop forever. Only watchLoop's goroutine touches it.
	pendingSelfWrites int
}

// New returns a File backed by path, not yet watching.
func New(path string, ctrl Controller) *File {
	return &File{path: path, ctrl: ctrl}
}

// Start creates the control file and begins watching for writes.
func (f *File) Start() error {
	if err := f.sync(); err != nil {
		return fmt.Errorf("controlfile: create %s: %w", f.path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("controlfile: new watcher: %w", err)
	}
	if err := w.Add(f.path); err != nil {
		w.Close()
		return fmt.Errorf("controlfile: watch %s: %w", f.path, err)
	}

	f.watcher = w
	f.done = make(chan struct{})
	go f.watchLoop()
	return nil
}

// Stop removes the control file and disables tracking.
func (f *File) Stop() error {
	close(f.done)
	f.ctrl.Disable()
	if f.watcher != nil {
		f.watcher.Close()
	}
	return os.Remove(f.path)
}

func (f *File) watchLoop() {
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Write == fsnotify.Write {
				if f.pendingSelfWrites > 0 {
					f.pendingSelfWrites--
					continue
				}
				f.handleWrite()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("controlfile: watch %s: %v", f.path, err)
		}
	}
}

func (f *File) handleWrite() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		log.Warnf("controlfile: read %s: %v", f.path, err)
		return
	}

	if err := f.apply(data); err != nil {
		log.Warnf("controlfile: %s: %v", f.path, err)
	}
	f.pendingSelfWrites++
	if err := f.sync(); err != nil {
		log.Warnf("controlfile: sync %s: %v", f.path, err)
	}
}

// apply decodes and performs one write's requested action.
func (f *File) apply(data []byte) error {
	action, err := ParseWrite(data)
	if err != nil {
		return err
	}
	switch action {
	case ActionEnable:
		if f.ctrl.Enabled() {
			f.ctrl.Disable()
		}
		return f.ctrl.Enable()
	case ActionDisable:
		f.ctrl.Disable()
	}
	return nil
}

func (f *File) sync() error {
	return os.WriteFile(f.path, FormatRead(f.ctrl.Enabled()), 0644)
}
