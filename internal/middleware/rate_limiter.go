package middleware

import (
	"net/http"
	"sync"
	"time"

	"beautypos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

// Limiter counts requests per client IP inside a fixed window.
type Limiter struct {
	name   string
	limit  int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
}

// NewLimiter builds a limiter allowing limit requests per period per IP.
func NewLimiter(name string, limit int, period time.Duration) *Limiter {
	return &Limiter{name: name, limit: limit, period: period, clients: make(map[string]*window)}
}

// allow records a hit for ip and reports whether it is within the limit,
// plus the end of the current window.
func (l *Limiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// Purge drops expired windows and returns how many were removed.
func (l *Limiter) Purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for ip, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, ip)
			purged++
		}
	}
	return purged
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// ── Shared limiters ──────────────────────────────────────────────────────────

var (
	loginLimiter = NewLimiter("login", 20, time.Minute)

	apiLimitersMu sync.Mutex
	apiLimiters   []*Limiter
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.Middleware("Too many login attempts. Try again in a minute.")
}

// RateLimiter returns a general-purpose limiter for the whole API.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	l := NewLimiter("api", limit, period)
	apiLimitersMu.Lock()
	apiLimiters = append(apiLimiters, l)
	apiLimitersMu.Unlock()
	return l.Middleware("Too many requests. Try again shortly.")
}

// ── Purge goroutine ──────────────────────────────────────────────────────────

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		apiLimitersMu.Lock()
		limiters := append([]*Limiter{loginLimiter}, apiLimiters...)
		apiLimitersMu.Unlock()

		for _, l := range limiters {
			if n := l.Purge(now); n > 0 {
				log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
