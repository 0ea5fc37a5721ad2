package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"aceves/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateStore counts hits for a key inside a fixed window.
type RateStore interface {
	// Incr returns the hit count for key in the current window and when the
	// window ends.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// RateLimiter rejects a client IP after limit requests per window. Store
// errors let the request through.
func RateLimiter(store RateStore, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + name + ":" + c.ClientIP()
		count, windowEnd, err := store.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Warn().Err(err).Str("limiter", name).Msg("rate limiter store unavailable")
			c.Next()
			return
		}
		if count > int64(limit) {
			secs := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intenta nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Redis store ──────────────────────────────────────────────────────────────

// RedisRateStore shares counters across every API instance.
type RedisRateStore struct {
	rdb *redis.Client
}

func NewRedisRateStore(rdb *redis.Client) *RedisRateStore { return &RedisRateStore{rdb: rdb} }

func (s *RedisRateStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}
	// First hit of the window: the key has no expiry yet.
	if ttl.Val() < 0 {
		if err := s.rdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		return incr.Val(), time.Now().Add(window), nil
	}
	return incr.Val(), time.Now().Add(ttl.Val()), nil
}

// ── Fallback store ───────────────────────────────────────────────────────────

// FallbackRateStore counts in primary and switches to fallback for any call
// primary fails, so a Redis outage degrades to per-instance limits instead of
// no limits at all.
type FallbackRateStore struct {
	primary  RateStore
	fallback RateStore
}

func NewFallbackRateStore(primary, fallback RateStore) *FallbackRateStore {
	return &FallbackRateStore{primary: primary, fallback: fallback}
}

func (s *FallbackRateStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	count, end, err := s.primary.Incr(ctx, key, window)
	if err == nil {
		return count, end, nil
	}
	log.Warn().Err(err).Str("key", key).Msg("rate limiter primary store failed, counting in memory")
	return s.fallback.Incr(ctx, key, window)
}

// ── In-memory store ──────────────────────────────────────────────────────────

type rateEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryRateStore keeps counters in process; expired entries are purged
// every purgeInterval.
type MemoryRateStore struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time
}

const purgeInterval = 5 * time.Minute

func NewMemoryRateStore(ctx context.Context) *MemoryRateStore {
	s := &MemoryRateStore{entries: make(map[string]*rateEntry), now: time.Now}
	go s.purge(ctx)
	return s
}

func (s *MemoryRateStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd, nil
}

func (s *MemoryRateStore) purge(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			purged := 0
			for k, e := range s.entries {
				if now.After(e.windowEnd) {
					delete(s.entries, k)
					purged++
				}
			}
			remaining := len(s.entries)
			s.mu.Unlock()
			if purged > 0 {
				log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter entries purged")
			}
		}
	}
}
