package azureconfig

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/fsnotify/fsnotify"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/keybroker", "azureconfig")

// Holder keeps the current Snapshot, safe for concurrent use
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns Holder with the initial snapshot, which may be nil
func NewHolder(s *Snapshot) *Holder {
	h := &Holder{}
	h.current.Store(s)
	return h
}

// Snapshot returns the current snapshot
func (h *Holder) Snapshot() *Snapshot {
	if h == nil {
		return nil
	}
	return h.current.Load()
}

// Store replaces the current snapshot
func (h *Holder) Store(s *Snapshot) {
	h.current.Store(s)
}

// Reload loads the file and replaces the current snapshot.
// The current snapshot is kept if the file is invalid.
func (h *Holder) Reload(file string) error {
	s, err := Load(file)
	if err != nil {
		return err
	}
	h.Store(s)
	return nil
}

// Watch reloads the snapshot when the file changes, until ctx is done.
func (h *Holder) Watch(ctx context.Context, file string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	// watch the folder, editors replace files on save
	if err = watcher.Add(filepath.Dir(file)); err != nil {
		_ = watcher.Close()
		return errors.Wrapf(err, "failed to watch %s", file)
	}

	target := filepath.Clean(file)
	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if err := h.Reload(file); err != nil {
					logger.KV(xlog.ERROR,
						"reason", "reload",
						"file", file,
						"err", err.Error())
					continue
				}
				logger.KV(xlog.INFO,
					"status", "reloaded",
					"file", file)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.KV(xlog.ERROR,
					"reason", "watch",
					"file", file,
					"err", err.Error())
			}
		}
	}()
	return nil
}
