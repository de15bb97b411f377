package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

type IRedis interface {
	SetOTP(ctx context.Context, key string, code string, expiration time.Duration) error
	GetOTP(ctx context.Context, key string) (string, error)
	IncrementAttempt(ctx context.Context, key string, ttl time.Duration) (int64, error)
	GetAttemptCount(ctx context.Context, key string) (int64, error)
	SetReferenceFace(ctx context.Context, userID string, imageBase64 string) error
	GetReferenceFace(ctx context.Context, userID string) (string, error)
}

const referenceFaceTTL = 5 * time.Minute

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) SetOTP(ctx context.Context, key string, code string, expiration time.Duration) error {
	err := r.client.Set(ctx, key, code, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error setting OTP for key %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetOTP(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("OTP not found for key %s", key))
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting OTP for key %s: %v", key, err))
		return "", err
	}
	return val, nil
}

// IncrementAttempt charges one verification attempt against the key and
// returns the new count. The INCR and the TTL arming run in one pipeline so
// concurrent requests cannot slip past the limit between a read and a write;
// ExpireNX only sets the TTL on the first increment of the rolling window.
func (r *redisClient) IncrementAttempt(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Error(fmt.Sprintf("Error incrementing attempt counter for key %s: %v", key, err))
		return 0, err
	}

	return incr.Val(), nil
}

func (r *redisClient) GetAttemptCount(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading attempt counter for key %s: %v", key, err))
		return 0, err
	}
	return val, nil
}

func (r *redisClient) SetReferenceFace(ctx context.Context, userID string, imageBase64 string) error {
	err := r.client.Set(ctx, fmt.Sprintf("REF:%s", userID), imageBase64, referenceFaceTTL).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error storing reference face for user %s: %v", userID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetReferenceFace(ctx context.Context, userID string) (string, error) {
	val, err := r.client.Get(ctx, fmt.Sprintf("REF:%s", userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting reference face for user %s: %v", userID, err))
		return "", err
	}
	return val, nil
}
