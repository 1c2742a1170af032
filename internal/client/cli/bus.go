package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hablemosverde/verde/internal/client/config"
	"github.com/hablemosverde/verde/internal/client/signal"
	"github.com/hablemosverde/verde/internal/filex"
	"github.com/hablemosverde/verde/internal/logging"
)

// newBus opens the signal transport named in the config. The returned
// closer releases the bus and anything it owns.
func newBus(ctx context.Context, c *config.Config, profileDir string, log logging.Logger) (signal.Bus, func() error, error) {
	log = log.With("transport", c.SignalTransport)

	switch c.SignalTransport {
	case config.TransportMemory:
		bus := signal.NewMemoryBus(log)
		return bus, bus.Close, nil

	case config.TransportFile:
		dir, err := filex.EnsureDir(filepath.Join(profileDir, "signals"))
		if err != nil {
			return nil, nil, err
		}
		bus, err := signal.NewFileBus(dir, log)
		if err != nil {
			return nil, nil, fmt.Errorf("file signal bus: %w", err)
		}
		return bus, bus.Close, nil

	case config.TransportRedis:
		rdb := newRedisClient(c.RedisAddr)
		bus, err := signal.NewRedisBus(ctx, rdb, signal.ChannelName(c.Profile), log)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis signal bus: %w", err)
		}
		return bus, func() error {
			err := bus.Close()
			if cerr := rdb.Close(); err == nil {
				err = cerr
			}
			return err
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown signal transport %q", c.SignalTransport)
	}
}

func newRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})
}
