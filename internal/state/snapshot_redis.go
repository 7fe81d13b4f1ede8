package state

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const redisStateKey = "pos:state"

// RedisSnapshot keeps the state blob under a single key
type RedisSnapshot struct {
	rdb *redis.Client
}

// NewRedisSnapshot connects and pings the server
func NewRedisSnapshot(addr, password string, db int) (*RedisSnapshot, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisSnapshot{rdb: rdb}, nil
}

// Load reads the snapshot key
func (r *RedisSnapshot) Load(ctx context.Context) ([]byte, error) {
	data, err := r.rdb.Get(ctx, redisStateKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &models.SnapshotError{Op: "load", Err: err}
	}
	return data, nil
}

// Save overwrites the snapshot key, no expiry
func (r *RedisSnapshot) Save(ctx context.Context, data []byte) error {
	if err := r.rdb.Set(ctx, redisStateKey, data, 0).Err(); err != nil {
		return &models.SnapshotError{Op: "save", Err: err}
	}
	return nil
}

// Close closes the redis connection
func (r *RedisSnapshot) Close() error {
	return r.rdb.Close()
}
