// internal/queue/queue.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// Job is one unit of asynchronous work. Payload is type-specific JSON.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"notificationType"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Options control the retry policy of a queue. Failed jobs are retried
// with exponential backoff and dropped after the final failure; there is
// no dead-letter persistence.
type Options struct {
	MaxAttempts  int
	BackoffDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:  3,
		BackoffDelay: time.Second,
	}
}

// Backoff returns the delay before retry number attempt (1-based):
// delay, 2*delay, 4*delay, ...
func (o Options) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return o.BackoffDelay << (attempt - 1)
}

// Queue is a redis-list backed job queue with a sorted set holding
// delayed retries.
type Queue struct {
	client *redis.Client
	name   string
	opts   Options
}

func New(client *redis.Client, name string, opts Options) *Queue {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.BackoffDelay <= 0 {
		opts.BackoffDelay = time.Second
	}
	return &Queue{client: client, name: name, opts: opts}
}

func (q *Queue) jobsKey() string    { return q.name + ":jobs" }
func (q *Queue) delayedKey() string { return q.name + ":delayed" }

// Enqueue pushes a new job. The queue commit is independent of any
// database transaction; callers enqueue after commit.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:      ulid.Make().String(),
		Type:    jobType,
		Payload: raw,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LPush(ctx, q.jobsKey(), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// requeueLater schedules a failed job for a delayed retry.
func (q *Queue) requeueLater(ctx context.Context, job *Job, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	member := redis.Z{
		Score:  float64(time.Now().Add(delay).UnixMilli()),
		Member: data,
	}
	if err := q.client.ZAdd(ctx, q.delayedKey(), member).Err(); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return nil
}

// promoteDue moves due delayed jobs back onto the job list.
func (q *Queue) promoteDue(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())

	members, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read delayed jobs: %w", err)
	}

	for _, member := range members {
		// Remove first so a concurrent mover cannot promote the same job twice.
		removed, err := q.client.ZRem(ctx, q.delayedKey(), member).Result()
		if err != nil {
			return fmt.Errorf("failed to remove delayed job: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.jobsKey(), member).Err(); err != nil {
			return fmt.Errorf("failed to promote delayed job: %w", err)
		}
	}
	return nil
}

// pop blocks until a job is available or the timeout elapses. Returns nil
// without error on timeout.
func (q *Queue) pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BRPop(ctx, timeout, q.jobsKey()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	// BRPop returns [key, value]
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
