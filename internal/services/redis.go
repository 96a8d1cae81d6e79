package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

func denylistKey(jti string) string {
	return fmt.Sprintf("auth:denylist:%s", jti)
}

// DenylistRefreshToken marks a refresh token as revoked until its natural
// expiry. Used on logout; refresh attempts with a denylisted jti fail.
func DenylistRefreshToken(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}
	return RedisClient.Set(ctx, denylistKey(jti), "revoked", ttl).Err()
}

// IsRefreshTokenDenylisted reports whether the token was revoked by logout.
func IsRefreshTokenDenylisted(ctx context.Context, jti string) (bool, error) {
	_, err := RedisClient.Get(ctx, denylistKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
