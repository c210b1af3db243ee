package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IshaanNene/BrandLens/internal/config"
)

// RedisReporter stores the latest event of each job under
// "<prefix>:<jobID>" and publishes every event on a channel.
// Redis failures are logged and never reach the batch.
type RedisReporter struct {
	client  *redis.Client
	prefix  string
	channel string
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisReporter connects to cfg.RedisAddr.
func NewRedisReporter(ctx context.Context, cfg config.ProgressConfig, logger *slog.Logger) (*RedisReporter, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisReporterFromClient(rdb, cfg, logger), nil
}

// NewRedisReporterFromClient wraps an existing client.
func NewRedisReporterFromClient(rdb *redis.Client, cfg config.ProgressConfig, logger *slog.Logger) *RedisReporter {
	return &RedisReporter{
		client:  rdb,
		prefix:  cfg.KeyPrefix,
		channel: cfg.Channel,
		ttl:     cfg.TTL,
		logger:  logger.With("component", "redis_progress"),
	}
}

// Key returns the snapshot key for jobID.
func (r *RedisReporter) Key(jobID string) string {
	return r.prefix + ":" + jobID
}

func (r *RedisReporter) Report(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.Warn("encode progress event", "job_id", ev.JobID, "error", err)
		return
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.Key(ev.JobID), payload, r.ttl)
		if r.channel != "" {
			pipe.Publish(ctx, r.channel, payload)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("publish progress", "job_id", ev.JobID, "brand", ev.Brand, "error", err)
	}
}

// Close closes the Redis connection.
func (r *RedisReporter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
