package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisService provides Redis operations
type RedisService struct {
	client *redis.Client
}

// NewRedisService creates a new Redis service instance
func NewRedisService() (*RedisService, error) {
	opt, err := redis.ParseURL(config.AppConfig.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

// SetDemoPaymentRateLimit opens the rate-limit window after a demo payment
func (r *RedisService) SetDemoPaymentRateLimit(userID string, limitMinutes int) error {
	ctx := context.Background()
	key := fmt.Sprintf("demo_payment_rate:%s", userID)
	expire := time.Duration(limitMinutes) * time.Minute
	return r.client.Set(ctx, key, "1", expire).Err()
}

// CheckDemoPaymentRateLimit reports whether the user is inside the window
func (r *RedisService) CheckDemoPaymentRateLimit(userID string) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf("demo_payment_rate:%s", userID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}
