// Package signal carries session signals between client instances of the
// same profile. A logout in one instance is published on a Bus and every
// other instance subscribed to it drops its authenticated state.
//
// Three transports exist: MemoryBus for instances inside one process,
// FileBus for processes sharing a profile directory, and RedisBus for
// profiles shared across hosts.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hablemosverde/verde/internal/logging"
)

// Kind names what happened.
type Kind string

const KindLogout Kind = "logout"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("signal bus closed")

// Signal is one cross-instance notification.
type Signal struct {
	Kind   Kind      `json:"kind"`
	At     time.Time `json:"at"`
	Origin string    `json:"origin"`
}

// Logout builds a logout signal stamped with at.
func Logout(origin string, at time.Time) Signal {
	return Signal{Kind: KindLogout, At: at, Origin: origin}
}

// Bus is a publish/subscribe channel of signals. Subscribers receive every
// signal published after they subscribed, including their own.
type Bus interface {
	Publish(ctx context.Context, s Signal) error
	// Subscribe returns a receive channel and a cancel func. The channel is
	// closed by cancel or by Close.
	Subscribe() (<-chan Signal, func())
	Close() error
}

const subscriberBuffer = 16

// hub fans one stream of signals out to every subscriber. Delivery never
// blocks the publisher: a subscriber whose buffer is full misses the signal.
type hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Signal
	nextID int
	closed bool
	log    logging.Logger
}

func newHub(log logging.Logger) *hub {
	if log == nil {
		log = logging.Discard()
	}
	return &hub{subs: make(map[int]chan Signal), log: log}
}

func (h *hub) Subscribe() (<-chan Signal, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Signal, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

func (h *hub) broadcast(s Signal) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
			h.log.Warn(context.Background(), "signal dropped, subscriber is full", "kind", s.Kind, "origin", s.Origin)
		}
	}
}

func (h *hub) isClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func encode(s Signal) ([]byte, error) {
	return json.Marshal(s)
}

func decode(b []byte) (Signal, error) {
	var s Signal
	if err := json.Unmarshal(b, &s); err != nil {
		return Signal{}, err
	}
	if s.Kind == "" {
		return Signal{}, errors.New("signal without kind")
	}
	return s, nil
}
