package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimitService bounds how many report requests a client may issue per
// window. Report generation is CPU-bound and fronted by external AI/render
// calls, so the limit protects those collaborators as much as this service.
type RateLimitService interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Attempts(ctx context.Context, key string) (int, error)
}

// RateLimitConfig configures the service
type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
}

// rateLimitService implements RateLimitService with Redis
type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

// NewRateLimitService creates a Redis-backed limiter, or a noop one when
// rate limiting is disabled
func NewRateLimitService(config RateLimitConfig, logger *logrus.Logger) (RateLimitService, error) {
	if !config.Enabled {
		logger.Info("Rate limiting disabled")
		return &noopRateLimitService{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithField("redis_url", config.RedisURL).Info("Rate limiting service initialized")
	return &rateLimitService{redisClient: redisClient, logger: logger}, nil
}

// Allow increments the counter for key and reports whether the caller is
// still under the limit for the current window
func (s *rateLimitService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipeline := s.redisClient.Pipeline()
	incrCmd := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)
	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := int(incrCmd.Val())
	allowed := count <= limit

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":     key,
		"count":   count,
		"limit":   limit,
		"allowed": allowed,
	}).Debug("Rate limit check")

	return allowed, nil
}

// Attempts returns the current counter value for key
func (s *rateLimitService) Attempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

// noopRateLimitService is used when rate limiting is disabled
type noopRateLimitService struct{}

func (n *noopRateLimitService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (n *noopRateLimitService) Attempts(ctx context.Context, key string) (int, error) {
	return 0, nil
}
