package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"aceves/internal/model"
	"aceves/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MarketingJobPayload records a guest checkout address.
type MarketingJobPayload struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	OrderID string `json:"order_id"`
}

// MarketingWorker upserts guest e-mails for later campaigns.
type MarketingWorker struct {
	repo repository.GuestEmailRepository
}

func NewMarketingWorker(repo repository.GuestEmailRepository) *MarketingWorker {
	return &MarketingWorker{repo: repo}
}

func (w *MarketingWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p MarketingJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Permanent(fmt.Errorf("marketing_worker: invalid payload: %w", err))
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return Permanent(fmt.Errorf("marketing_worker: empty email"))
	}

	g := &model.GuestEmail{Email: email, Name: p.Name}
	if id, err := uuid.Parse(p.OrderID); err == nil {
		g.LastOrderID = &id
	}
	if err := w.repo.Upsert(ctx, g); err != nil {
		return err
	}
	log.Info().Str("order_id", p.OrderID).Msg("marketing_worker: guest email upserted")
	return nil
}
