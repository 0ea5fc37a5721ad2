package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aceves/internal/config"
	"aceves/internal/infra"
	"aceves/internal/repository"
	"aceves/internal/router"
	"aceves/internal/service"
	"aceves/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	if !mailer.Enabled() {
		log.Warn().Msg("SMTP_PASSWORD not set: order e-mails will be dead-lettered")
	}
	pixels := infra.NewPixelClient(cfg.MetaPixelID, cfg.MetaAccessToken, cfg.TikTokPixelID, cfg.TikTokAccessToken)

	orderRepo := repository.NewOrderRepository(db)
	guestRepo := repository.NewGuestEmailRepository(db)

	pool := worker.NewPool(rdb, map[string]worker.Handler{
		worker.JobEmail: worker.NewEmailWorker(mailer, orderRepo,
			infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")), cfg.StoreName, cfg.ReceiptStoragePath),
		worker.JobPixel: worker.NewPixelWorker(pixels,
			infra.NewCircuitBreaker(infra.DefaultCBConfig("pixels")), cfg.SiteURL),
		worker.JobMarketing: worker.NewMarketingWorker(guestRepo),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	inventarioSvc := service.NewInventarioService(
		repository.NewInventarioRepository(db),
		repository.NewMovimientoInventarioRepository(db),
		repository.NewVentaRepository(db),
		repository.NewAlertaRepository(db),
	)
	worker.StartAlertasCron(ctx, inventarioSvc, time.Duration(cfg.AlertasIntervalSeconds)*time.Second)

	r := router.New(ctx, cfg, db, rdb, worker.NewDispatcher(rdb))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s backend listening on :%d", cfg.StoreName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel() // stop workers and the alert sweeper
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
