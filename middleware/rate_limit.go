package middleware

import (
	"html"
	"net/http"
	"sync"
	"time"

	"lead_sites_go/services/i18n"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc is a function that returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// MessageKey is the translation key of the message returned when the limit is hit
	MessageKey string
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket: Requests tokens refilled evenly over Window.
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*limiterEntry
	mu     sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.Requests <= 0 {
		config.Requests = 1
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.MessageKey == "" {
		config.MessageKey = "form.error.rate_limited"
	}

	return &RateLimiter{
		config: config,
		store:  make(map[string]*limiterEntry),
	}
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.store[key]
	if !ok {
		every := rate.Every(rl.config.Window / time.Duration(rl.config.Requests))
		entry = &limiterEntry{limiter: rate.NewLimiter(every, rl.config.Requests)}
		rl.store[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl.Allow(rl.config.KeyFunc(c)) {
				return next(c)
			}

			message := i18n.T(c.Request().Context(), rl.config.MessageKey)
			if IsHTMX(c) {
				c.Response().Header().Set("HX-Reswap", "none")
				TriggerToast(c, "error", message)
				return c.HTML(http.StatusTooManyRequests, `<div class="toast toast-error" role="alert">`+html.EscapeString(message)+`</div>`)
			}
			return echo.NewHTTPError(http.StatusTooManyRequests, message)
		}
	}
}

// Sweep drops limiters that have been idle for a full window, which means
// their bucket is full again.
func (rl *RateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, entry := range rl.store {
		if now.Sub(entry.lastSeen) > rl.config.Window {
			delete(rl.store, key)
			removed++
		}
	}
	return removed
}

// PublicFormRateLimiter limits lead form submissions to 10 per minute per IP
func PublicFormRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Requests: 10,
		Window:   1 * time.Minute,
	})
}
