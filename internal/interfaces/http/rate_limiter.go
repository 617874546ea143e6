package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"golang.org/x/time/rate"
)

// IPRateLimiter limita peticiones por IP de cliente (token bucket por IP).
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiterEntry
	rate     rate.Limit
	burst    int
	entryTTL time.Duration
	now      func() time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter crea el limitador. perSecond <= 0 desactiva el límite.
func NewIPRateLimiter(perSecond float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		entryTTL: 10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consume un token del bucket de la IP.
func (rl *IPRateLimiter) Allow(ip string) bool {
	if rl.rate <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.limiters[ip]
	if !ok {
		rl.evictStale(now)
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evictStale se ejecuta al crear entradas nuevas; el mapa no crece sin límite.
func (rl *IPRateLimiter) evictStale(now time.Time) {
	cutoff := now.Add(-rl.entryTTL)
	for ip, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

// Middleware responde 429 cuando la IP agotó su cupo.
func (rl *IPRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			c.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiados intentos, intente más tarde",
			})
		}
		return c.Next()
	}
}
