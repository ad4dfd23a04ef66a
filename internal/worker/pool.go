package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"beautypos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueClosing = "jobs:closing_report"
	QueueEmail   = "jobs:email"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt asks for the receipt PDF of a completed order.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

// EnqueueClosingReport asks for the closing slip of a till session.
func (d *Dispatcher) EnqueueClosingReport(ctx context.Context, report infra.ClosingReport) error {
	return d.enqueue(ctx, QueueClosing, "closing_report", report)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
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

// ── Pool ──────────────────────────────────────────────────────────────────────

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Pool runs a fixed number of goroutines that consume every queue with a
// registered handler.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, size int, handlers map[string]Handler) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{rdb: rdb, size: size, handlers: handlers}
}

// Start launches the workers. Each goroutine blocks on BRPOP, so an idle
// pool costs no CPU. Workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i, queues)
	}
	log.Info().Msgf("worker pool started with %d workers", p.size)
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		// Blocking pop — waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Error().Err(err).Int("worker", id).Msg("worker: brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(raw), "malformed job: "+err.Error(), 0)
		return
	}
	job.Attempts++

	err := p.Handle(ctx, queue, job)
	if err == nil {
		return
	}
	if job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("queue", queue).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	if pushErr := push(ctx, p.rdb, queue, job); pushErr != nil {
		log.Error().Err(pushErr).Str("queue", queue).Msg("requeue failed")
	}
}

// Handle runs the handler registered for queue. A panicking handler is
// reported as a failed attempt.
func (p *Pool) Handle(ctx context.Context, queue string, job Job) (err error) {
	h, ok := p.handlers[queue]
	if !ok {
		return fmt.Errorf("no handler for queue %q", queue)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("processing job")
	return h(ctx, job.Payload)
}
