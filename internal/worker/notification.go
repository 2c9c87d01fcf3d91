// Package worker drains the notification queue and sends the resulting emails.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"navexpo/internal/adapters/queue"
	"navexpo/internal/domain"
)

const (
	// DequeueWait bounds each blocking pop so shutdown is noticed promptly.
	DequeueWait = 5 * time.Second
	// RetryBackoff is the pause after a failed job or a queue error.
	RetryBackoff = 10 * time.Second
)

// JobQueue is the part of the queue the processor needs.
type JobQueue interface {
	Dequeue(ctx context.Context, wait time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// NotificationProcessor sends registration confirmations queued by the API.
type NotificationProcessor struct {
	queue   JobQueue
	emails  domain.EmailService
	logger  *slog.Logger
	backoff time.Duration
}

func NewNotificationProcessor(q JobQueue, emails domain.EmailService, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{queue: q, emails: emails, logger: logger, backoff: RetryBackoff}
}

// Process executes one job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeRegistrationConfirmation:
		var data domain.RegistrationConfirmationEmailData
		if err := json.Unmarshal(job.Payload, &data); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.emails.SendRegistrationConfirmation(ctx, &data)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run starts concurrency loops and blocks until ctx is done.
func (p *NotificationProcessor) Run(ctx context.Context, concurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range max(concurrency, 1) {
		g.Go(func() error {
			p.loop(ctx, i)
			return nil
		})
	}
	return g.Wait()
}

func (p *NotificationProcessor) loop(ctx context.Context, id int) {
	logger := p.logger.With("worker", id)
	for ctx.Err() == nil {
		job, err := p.queue.Dequeue(ctx, DequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.WarnContext(ctx, "dequeue error", "err", err)
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		logger.DebugContext(ctx, "processing job", "job_id", job.ID, "type", job.Type, "attempt", job.Attempt)
		if err := p.Process(ctx, job); err != nil {
			logger.ErrorContext(ctx, "job failed", "job_id", job.ID, "err", err)
			// the retry must be recorded even when shutdown interrupted the job
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				logger.ErrorContext(ctx, "retry enqueue failed", "job_id", job.ID, "err", reErr)
			}
			p.sleep(ctx)
		}
	}
	logger.Info("notification worker stopping")
}

func (p *NotificationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
