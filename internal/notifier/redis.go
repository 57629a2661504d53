// Package notifier delivers change signals between scheduler instances that
// share one backing store. Signals are payload-free: a receiver re-fetches
// full snapshots instead of patching, so lost ordering or duplicates cost
// nothing but an extra refresh.
package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	slotsChannel    = "openhouse:slots_changed"
	bookingsChannel = "openhouse:bookings_changed"
)

type RedisNotifier struct {
	client *redis.Client
	logger *zerolog.Logger
}

// NewRedisClient creates a Redis client from address/password/db settings.
func NewRedisClient(addr, password string, db, poolSize int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
}

func NewRedisNotifier(client *redis.Client, logger *zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

func (n *RedisNotifier) SlotsChanged(ctx context.Context) error {
	return n.publish(ctx, slotsChannel)
}

func (n *RedisNotifier) BookingsChanged(ctx context.Context) error {
	return n.publish(ctx, bookingsChannel)
}

func (n *RedisNotifier) publish(ctx context.Context, channel string) error {
	if err := n.client.Publish(ctx, channel, "refresh").Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}
	return nil
}

// Subscribe listens on both channels and invokes the matching callback per
// message. Messages from this very instance come back too; refreshes are
// idempotent, so the echo is harmless. The returned func tears the
// subscription down.
func (n *RedisNotifier) Subscribe(ctx context.Context, onSlotsChanged, onBookingsChanged func()) (func(), error) {
	sub := n.client.Subscribe(ctx, slotsChannel, bookingsChannel)

	// Wait for the subscription to be confirmed before returning, so no
	// notification published after Subscribe is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		for msg := range sub.Channel() {
			switch msg.Channel {
			case slotsChannel:
				onSlotsChanged()
			case bookingsChannel:
				onBookingsChanged()
			default:
				n.logger.Warn().Str("channel", msg.Channel).Msg("unexpected notification channel")
			}
		}
	}()

	return func() { _ = sub.Close() }, nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
