package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail     = "jobs:email"
	QueuePixel     = "jobs:pixel"
	QueueMarketing = "jobs:marketing"

	JobEmail     = "email"
	JobPixel     = "pixel"
	JobMarketing = "marketing"

	// MaxJobAttempts is how many times a job is tried before it goes to the DLQ.
	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, p EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, p)
}

func (d *Dispatcher) EnqueuePixel(ctx context.Context, p PixelJobPayload) error {
	return d.enqueue(ctx, QueuePixel, JobPixel, p)
}

func (d *Dispatcher) EnqueueMarketing(ctx context.Context, p MarketingJobPayload) error {
	return d.enqueue(ctx, QueueMarketing, JobMarketing, p)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool routes dequeued jobs to their handler by job type.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	queues   []string
	backoff  func(attempt int) time.Duration
}

func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	return &Pool{
		rdb:      rdb,
		handlers: handlers,
		queues:   Queues,
		backoff:  retryBackoff,
	}
}

// retryBackoff: 1s, 2s, 4s...
func retryBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// Start launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		if err := pushDLQ(ctx, p.rdb, DLQEntry{
			Queue: queue, Reason: "invalid envelope", FailedAt: time.Now().UTC(),
			Raw: json.RawMessage(fmt.Sprintf("%q", raw)),
		}); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed, job lost")
		}
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		p.deadLetter(ctx, queue, job, "no handler for job type")
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("job processed")
		return
	}
	if errorsIsPermanent(err) || job.Attempts >= MaxJobAttempts {
		p.deadLetter(ctx, queue, job, err.Error())
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	go p.requeue(ctx, queue, job)
}

func (p *Pool) requeue(ctx context.Context, queue string, job Job) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(p.backoff(job.Attempts)):
	}
	if err := push(ctx, p.rdb, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to requeue job")
	}
}
