package signal

import (
	"context"

	"github.com/hablemosverde/verde/internal/logging"
)

// MemoryBus delivers signals between instances living in one process.
// Publish enqueues to every subscriber before it returns.
type MemoryBus struct {
	*hub
}

func NewMemoryBus(log logging.Logger) *MemoryBus {
	return &MemoryBus{hub: newHub(log)}
}

func (b *MemoryBus) Publish(_ context.Context, s Signal) error {
	if b.isClosed() {
		return ErrClosed
	}
	b.broadcast(s)
	return nil
}

func (b *MemoryBus) Close() error {
	b.close()
	return nil
}
