package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

const (
	defaultMaxAttempts    = 5
	defaultWindowDuration = time.Minute
)

type window struct {
	attempts int
	resetAt  time.Time
}

// RateLimiter is a fixed-window limiter keyed by client IP.
type RateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	length      time.Duration
	enabled     bool
	now         func() time.Time
}

// NewRateLimiter creates a limiter allowing maxAttempts per window. Zero
// values fall back to 5 attempts per minute.
func NewRateLimiter(maxAttempts int, length time.Duration) *RateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if length <= 0 {
		length = defaultWindowDuration
	}
	return &RateLimiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		length:      length,
		enabled:     true,
		now:         time.Now,
	}
}

// Disable turns the limiter into a pass-through. Test environments use it.
func (rl *RateLimiter) Disable() *RateLimiter {
	rl.enabled = false
	return rl
}

// Middleware returns a Gin middleware handler that enforces the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.enabled && !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  string(domainerror.ErrCodeRateLimited),
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &window{attempts: 1, resetAt: now.Add(rl.length)}
		return true
	}
	if w.attempts >= rl.maxAttempts {
		return false
	}
	w.attempts++
	return true
}

// StartCleanup drops expired windows every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}
