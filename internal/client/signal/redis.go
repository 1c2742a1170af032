package signal

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hablemosverde/verde/internal/logging"
)

// ChannelName is the Redis channel carrying one profile's signals.
func ChannelName(profile string) string {
	return "hablemosverde:" + profile + ":signals"
}

// RedisBus delivers signals through Redis pub/sub.
type RedisBus struct {
	*hub

	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
	done    chan struct{}
}

// NewRedisBus subscribes to channel and waits for the subscription to be
// confirmed, so signals published after it returns are not missed.
func NewRedisBus(ctx context.Context, client *redis.Client, channel string, log logging.Logger) (*RedisBus, error) {
	ps := client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	b := &RedisBus{
		hub:     newHub(log),
		client:  client,
		channel: channel,
		pubsub:  ps,
		done:    make(chan struct{}),
	}
	go b.processMessages()
	return b, nil
}

func (b *RedisBus) Publish(ctx context.Context, s Signal) error {
	if b.isClosed() {
		return ErrClosed
	}
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

func (b *RedisBus) Close() error {
	err := b.pubsub.Close()
	<-b.done
	b.close()
	return err
}

func (b *RedisBus) processMessages() {
	defer close(b.done)

	for msg := range b.pubsub.Channel() {
		s, err := decode([]byte(msg.Payload))
		if err != nil {
			b.log.Warn(context.Background(), "malformed signal message", "channel", msg.Channel, "error", err)
			continue
		}
		b.broadcast(s)
	}
}
