package eventledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "stripe:webhook:"

// RedisLedger shares the processed set across API replicas.
type RedisLedger struct {
	client  *redis.Client
	lockTTL time.Duration
	doneTTL time.Duration
	now     func() time.Time
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{
		client:  client,
		lockTTL: DefaultLockTTL,
		doneTTL: DefaultDoneTTL,
		now:     time.Now,
	}
}

func doneKey(eventID string) string { return keyPrefix + "done:" + eventID }
func lockKey(eventID string) string { return keyPrefix + "lock:" + eventID }

func (l *RedisLedger) Do(ctx context.Context, eventID string, fn func(context.Context) error) (bool, error) {
	if err := validate(eventID, fn); err != nil {
		return false, err
	}

	done, err := l.client.Exists(ctx, doneKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("check event ledger: %w", err)
	}
	if done > 0 {
		return true, nil
	}

	acquired, err := l.client.SetNX(ctx, lockKey(eventID), l.now().UTC().UnixMilli(), l.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("lock event: %w", err)
	}
	if !acquired {
		done, err := l.client.Exists(ctx, doneKey(eventID)).Result()
		if err != nil {
			return false, fmt.Errorf("check event ledger: %w", err)
		}
		if done > 0 {
			return true, nil
		}
		return false, ErrInFlight
	}

	defer l.client.Del(context.WithoutCancel(ctx), lockKey(eventID))

	if err := fn(ctx); err != nil {
		return false, err
	}

	handledAt := strconv.FormatInt(l.now().UTC().UnixMilli(), 10)
	if err := l.client.Set(ctx, doneKey(eventID), handledAt, l.doneTTL).Err(); err != nil {
		return false, fmt.Errorf("commit event ledger: %w", err)
	}
	return false, nil
}
