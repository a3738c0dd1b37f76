package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("reset code not found")

// CodeStore keeps single-use password reset codes until they expire.
type CodeStore interface {
	Save(ctx context.Context, code, uid string, ttl time.Duration) error
	Consume(ctx context.Context, code string) (string, error)
	Ping(ctx context.Context) error
}

// RedisCodeStore is a CodeStore on top of Redis key expiry.
type RedisCodeStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

func NewRedisCodeStore(rdb *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{rdb: rdb, prefix: "athena:reset:"}
}

// Save stores code for uid. It expires after ttl.
func (s *RedisCodeStore) Save(ctx context.Context, code, uid string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+code, uid, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save reset code: %w", err)
	}

	return nil
}

// Consume returns the uid bound to code and deletes it so it cannot be reused.
func (s *RedisCodeStore) Consume(ctx context.Context, code string) (string, error) {
	uid, err := s.rdb.GetDel(ctx, s.prefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("failed to consume reset code: %w", err)
	}

	return uid, nil
}

func (s *RedisCodeStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
