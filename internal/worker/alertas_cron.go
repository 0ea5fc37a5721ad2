package worker

// alertas_cron.go
// Background goroutine that periodically sweeps inventory variations at or
// below their stock_minimo and raises the alerts that are still missing
// (e.g. rows edited directly in the database).

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// BarredorAlertas is implemented by the inventory service.
type BarredorAlertas interface {
	BarrerAlertas(ctx context.Context) (int, error)
}

// StartAlertasCron ticks every interval until ctx is cancelled.
func StartAlertasCron(ctx context.Context, barredor BarredorAlertas, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("alertas_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alertas_cron: shutting down")
				return
			case <-ticker.C:
				barrer(ctx, barredor)
			}
		}
	}()
}

func barrer(ctx context.Context, barredor BarredorAlertas) {
	creadas, err := barredor.BarrerAlertas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alertas_cron: sweep failed")
		return
	}
	if creadas > 0 {
		log.Info().Int("creadas", creadas).Msg("alertas_cron: alerts raised")
	}
}
