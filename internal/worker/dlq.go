package worker

// dlq.go — jobs that fail permanently or exhaust MaxJobAttempts are parked in
// dlq:{queue}. Lists are capped at dlqMaxEntries, newest first.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix     = "dlq:"
	dlqMaxEntries = 1000
)

// Queues lists every job queue the pool consumes.
var Queues = []string{QueueEmail, QueuePixel, QueueMarketing}

type DLQEntry struct {
	Queue    string          `json:"queue"`
	Job      Job             `json:"job"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
	Raw      json.RawMessage `json:"raw,omitempty"` // undecodable envelopes only
}

func (p *Pool) deadLetter(ctx context.Context, queue string, job Job, reason string) {
	entry := DLQEntry{Queue: queue, Job: job, Reason: reason, FailedAt: time.Now().UTC()}
	if err := pushDLQ(ctx, p.rdb, entry); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("dlq: push failed, job lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Str("reason", reason).
		Msg("dlq: job parked")
}

func pushDLQ(ctx context.Context, rdb *redis.Client, entry DLQEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := DLQPrefix + entry.Queue
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, dlqMaxEntries-1)
	_, err = pipe.Exec(ctx)
	return err
}

// DLQLengths reports the backlog per queue for /health.
func DLQLengths(ctx context.Context, rdb *redis.Client) (map[string]int64, error) {
	pipe := rdb.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(Queues))
	for _, q := range Queues {
		cmds[q] = pipe.LLen(ctx, DLQPrefix+q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("dlq lengths: %w", err)
	}
	out := make(map[string]int64, len(cmds))
	for q, cmd := range cmds {
		out[q] = cmd.Val()
	}
	return out, nil
}
