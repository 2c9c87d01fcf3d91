// Package queue is a Redis list backed job queue for background notifications.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// QueueNotifications is the Redis list key for notification jobs.
	QueueNotifications = "navexpo:notifications"
	// QueueDLQ receives jobs that failed MaxRetries times.
	QueueDLQ = "navexpo:notifications:dlq"
	// MaxRetries is the number of attempts before a job is dead-lettered.
	MaxRetries = 3
)

// JobType identifies the job kind.
type JobType string

const JobTypeRegistrationConfirmation JobType = "registration_confirmation"

// Job is the envelope stored in Redis.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListClient is the subset of *redis.Client the queue needs.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client ListClient
	logger *slog.Logger
}

func New(client ListClient, logger *slog.Logger) *Queue {
	return &Queue{client: client, logger: logger}
}

// Connect opens a Redis client and verifies connectivity.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Enqueue wraps payload in a new Job and appends it to the notification list.
func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}
	if err := q.push(ctx, QueueNotifications, job); err != nil {
		return nil, err
	}
	q.logger.DebugContext(ctx, "enqueued job", "job_id", job.ID, "type", job.Type)
	return job, nil
}

func (q *Queue) push(ctx context.Context, key string, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

// Dequeue waits up to wait for a job. It returns nil, nil when nothing arrived
// or the entry could not be decoded.
func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, wait, QueueNotifications).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.WarnContext(ctx, "dropping undecodable job", "raw", result[1], "err", err)
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues job with its attempt incremented, or moves it to the
// dead-letter list once MaxRetries attempts have failed.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	if job.Attempt >= MaxRetries {
		if err := q.push(ctx, QueueDLQ, job); err != nil {
			q.logger.ErrorContext(ctx, "dlq push failed", "job_id", job.ID, "err", err)
			return err
		}
		q.logger.WarnContext(ctx, "job moved to DLQ", "job_id", job.ID, "attempt", job.Attempt)
		return nil
	}
	if err := q.push(ctx, QueueNotifications, job); err != nil {
		return err
	}
	q.logger.InfoContext(ctx, "job retried", "job_id", job.ID, "attempt", job.Attempt)
	return nil
}
