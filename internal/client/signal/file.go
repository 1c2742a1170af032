package signal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/hablemosverde/verde/internal/common"
	"github.com/hablemosverde/verde/internal/logging"
)

// FileBus delivers signals between processes that share a profile
// directory. Publish replaces <dir>/isLoggedOut with the encoded signal;
// every FileBus watching the directory decodes it and fans it out.
type FileBus struct {
	*hub

	dir     string
	path    string
	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu   sync.Mutex
	last Signal
}

// NewFileBus starts watching dir. Close releases the watcher.
func NewFileBus(dir string, log logging.Logger) (*FileBus, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &FileBus{
		hub:     newHub(log),
		dir:     dir,
		path:    filepath.Join(dir, common.KeyLoggedOut),
		watcher: watcher,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.processEvents()
	return b, nil
}

// Publish writes the marker through a temp file and a rename so watchers
// never read a half-written signal.
func (b *FileBus) Publish(_ context.Context, s Signal) error {
	if b.isClosed() {
		return ErrClosed
	}
	data, err := encode(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, ".signal-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename marker: %w", err)
	}
	return nil
}

func (b *FileBus) Close() error {
	b.cancel()
	err := b.watcher.Close()
	<-b.done
	b.close()
	return err
}

func (b *FileBus) processEvents() {
	defer close(b.done)

	for {
		select {
		case <-b.ctx.Done():
			return

		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != b.path {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				b.handleMarker()
			}

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.log.Warn(b.ctx, "signal watcher error", "dir", b.dir, "error", err)
		}
	}
}

func (b *FileBus) handleMarker() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		b.log.Warn(b.ctx, "read signal marker", "path", b.path, "error", err)
		return
	}
	s, err := decode(data)
	if err != nil {
		b.log.Warn(b.ctx, "malformed signal marker", "path", b.path, "error", err)
		return
	}

	// A rename can surface as several events for one signal.
	b.mu.Lock()
	dup := s.Origin == b.last.Origin && s.At.Equal(b.last.At) && s.Kind == b.last.Kind
	b.last = s
	b.mu.Unlock()
	if dup {
		return
	}
	b.broadcast(s)
}
