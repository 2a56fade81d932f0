package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"shopassist/pkg"
)

const sessionKeyPrefix = "session:"

// RedisRepository stores conversation contexts in Redis with a sliding
// TTL. Loading a session refreshes its expiry.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository connects to the Redis instance named by the
// REDIS_URL environment variable and verifies the connection.
func NewRedisRepository(ctx context.Context, ttl time.Duration) (*RedisRepository, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRepository{
		client: client,
		ttl:    ttl,
	}, nil
}

// ======= Implement Repository interface methods =======

func (r *RedisRepository) Save(ctx context.Context, conversation *pkg.ConversationContext) error {
	if err := validateForSave(conversation); err != nil {
		return err
	}

	data, err := sonic.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", conversation.SessionID, err)
	}

	key := sessionKeyPrefix + conversation.SessionID
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*pkg.ConversationContext, error) {
	key := sessionKeyPrefix + sessionID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var conversation pkg.ConversationContext
	if err := sonic.Unmarshal([]byte(data), &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}

	// Refresh TTL
	r.client.Expire(ctx, key, r.ttl)
	return &conversation, nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// HealthCheck pings the backing Redis instance.
func (r *RedisRepository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
