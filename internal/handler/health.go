package handler

import (
	"context"
	"net/http"
	"time"

	"aceves/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type healthResponse struct {
	OK    bool             `json:"ok"`
	DB    string           `json:"db"`
	Redis string           `json:"redis"`
	DLQ   map[string]int64 `json:"dlq,omitempty"`
}

// Health answers 503 when Postgres or Redis is unreachable. Dead-letter
// backlog is informational and never fails the probe.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{DB: "connected", Redis: "connected"}
		var g errgroup.Group
		g.Go(func() error {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				log.Warn().Err(err).Msg("health: postgres unreachable")
				resp.DB = "error"
			}
			return nil
		})
		g.Go(func() error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Msg("health: redis unreachable")
				resp.Redis = "error"
				return nil
			}
			if dlq, err := worker.DLQLengths(ctx, rdb); err == nil {
				resp.DLQ = dlq
			}
			return nil
		})
		_ = g.Wait()

		resp.OK = resp.DB == "connected" && resp.Redis == "connected"
		status := http.StatusOK
		if !resp.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}
