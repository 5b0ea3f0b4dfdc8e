package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"WolfDesk/internal/model"
)

// RedisStore shares cached history between processes. Keys expire on the
// server after the policy TTL; Get also re-checks freshness locally.
type RedisStore struct {
	client *goredis.Client
	prefix string
	policy Policy
}

// NewRedisStore connects to addr and verifies the connection with PING.
func NewRedisStore(ctx context.Context, addr, password string, db int, policy Policy) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisStore{client: client, prefix: "wolfdesk:bars:", policy: policy}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached bars: %w", err)
	}
	if !r.policy.Fresh(e.StoredAt) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, bars []model.OHLCV) error {
	data, err := json.Marshal(Entry{Bars: bars, StoredAt: r.policy.now()})
	if err != nil {
		return fmt.Errorf("encode bars: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.policy.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
