package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aceves/internal/infra"

	"github.com/rs/zerolog/log"
)

// PixelJobPayload carries one server-side conversion event.
type PixelJobPayload struct {
	EventName  string   `json:"event_name"`
	EventID    string   `json:"event_id"`
	EventTime  int64    `json:"event_time"` // unix seconds
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Value      float64  `json:"value"`
	Currency   string   `json:"currency"`
	ContentIDs []string `json:"content_ids"`
}

// PixelSender is satisfied by *infra.PixelClient.
type PixelSender interface {
	Enabled() bool
	Send(ctx context.Context, ev infra.PixelEvent) error
}

// PixelWorker forwards purchase events to the ad platforms through the
// circuit breaker.
type PixelWorker struct {
	client    PixelSender
	cb        *infra.CircuitBreaker
	sourceURL string
}

func NewPixelWorker(client PixelSender, cb *infra.CircuitBreaker, sourceURL string) *PixelWorker {
	return &PixelWorker{client: client, cb: cb, sourceURL: sourceURL}
}

func (w *PixelWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p PixelJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Permanent(fmt.Errorf("pixel_worker: invalid payload: %w", err))
	}
	if !w.client.Enabled() {
		log.Debug().Str("event_id", p.EventID).Msg("pixel_worker: no platform configured, skipping")
		return nil
	}

	ev := infra.PixelEvent{
		EventName:  p.EventName,
		EventID:    p.EventID,
		EventTime:  time.Unix(p.EventTime, 0),
		Email:      p.Email,
		Phone:      p.Phone,
		Value:      p.Value,
		Currency:   p.Currency,
		ContentIDs: p.ContentIDs,
		SourceURL:  w.sourceURL,
	}
	if err := w.cb.Execute(func() error { return w.client.Send(ctx, ev) }); err != nil {
		return err
	}
	log.Info().Str("event", p.EventName).Str("event_id", p.EventID).Msg("pixel_worker: event sent")
	return nil
}
