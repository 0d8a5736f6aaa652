// Package feed keeps a short rolling window of scan attempts per event in redis
// and relays new ones to live subscribers over pub/sub.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/config"
	"github.com/vietanh2810/eventpass-api/internal/domain"
)

var ErrDisabled = errors.New("live scan feed is not configured")

func listKey(eventID uint) string    { return fmt.Sprintf("scans:%d", eventID) }
func channelKey(eventID uint) string { return fmt.Sprintf("scans:%d:live", eventID) }

func Connect(conf *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
		PoolSize: conf.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("rdb.Ping -> %w", err)
	}

	return rdb, nil
}

type RedisFeed struct {
	rdb      *redis.Client
	capacity int64
}

func NewRedisFeed(rdb *redis.Client, capacity int64) *RedisFeed {
	return &RedisFeed{
		rdb:      rdb,
		capacity: capacity,
	}
}

// Push prepends the attempt to the event's list, trims it to capacity and
// announces it on the live channel.
func (f *RedisFeed) Push(ctx context.Context, attempt domain.ScanAttempt) error {
	body, err := json.Marshal(attempt)
	if err != nil {
		return err
	}

	_, err = f.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, listKey(attempt.EventID), body)
		pipe.LTrim(ctx, listKey(attempt.EventID), 0, f.capacity-1)
		pipe.Publish(ctx, channelKey(attempt.EventID), body)
		return nil
	})
	if err != nil {
		return fmt.Errorf("f.rdb.TxPipelined -> %w", err)
	}

	return nil
}

// Recent returns up to limit attempts, newest first.
func (f *RedisFeed) Recent(ctx context.Context, eventID uint, limit int64) ([]domain.ScanAttempt, error) {
	if limit <= 0 || limit > f.capacity {
		limit = f.capacity
	}

	raw, err := f.rdb.LRange(ctx, listKey(eventID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("f.rdb.LRange -> %w", err)
	}

	attempts := make([]domain.ScanAttempt, 0, len(raw))
	for _, item := range raw {
		var attempt domain.ScanAttempt
		if err := json.Unmarshal([]byte(item), &attempt); err != nil {
			zap.L().Warn("skipping unreadable feed entry", zap.Uint("event_id", eventID), zap.Error(err))
			continue
		}
		attempts = append(attempts, attempt)
	}

	return attempts, nil
}

// Subscribe relays attempts published for the event until ctx is done. The
// returned channel is closed when the subscription ends.
func (f *RedisFeed) Subscribe(ctx context.Context, eventID uint) (<-chan domain.ScanAttempt, error) {
	sub := f.rdb.Subscribe(ctx, channelKey(eventID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("sub.Receive -> %w", err)
	}

	out := make(chan domain.ScanAttempt)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var attempt domain.ScanAttempt
				if err := json.Unmarshal([]byte(msg.Payload), &attempt); err != nil {
					zap.L().Warn("skipping unreadable feed message", zap.Uint("event_id", eventID), zap.Error(err))
					continue
				}
				select {
				case out <- attempt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Noop is used when redis is not configured.
type Noop struct{}

func (Noop) Push(context.Context, domain.ScanAttempt) error { return nil }

func (Noop) Recent(context.Context, uint, int64) ([]domain.ScanAttempt, error) {
	return nil, ErrDisabled
}

func (Noop) Subscribe(context.Context, uint) (<-chan domain.ScanAttempt, error) {
	return nil, ErrDisabled
}
