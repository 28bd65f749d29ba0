package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/models"
)

// RateLimiter keeps one token bucket per caller for the AI-backed routes.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]*rate.Limiter
	every   rate.Limit
	burst   int
	maxKeys int
}

// NewRateLimiter allows perMinute requests per caller with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limits:  make(map[string]*rate.Limiter),
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		maxKeys: 10000,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	// Idle callers are cheap to forget; a reset bucket only grants one extra burst.
	if len(rl.limits) >= rl.maxKeys {
		rl.limits = make(map[string]*rate.Limiter)
	}
	limiter := rate.NewLimiter(rl.every, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow reports whether the caller identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Limit wraps next. Authenticated callers are keyed by user id, others by remote address.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(callerKey(r)) {
			w.Header().Set("Retry-After", "60")
			apperr.WriteJSON(w, http.StatusTooManyRequests, models.MessageResponse{
				Success: false,
				Message: "Too many AI requests. Please wait a moment and try again.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request) string {
	if uid, ok := UserID(r.Context()); ok {
		return "user:" + strconv.FormatInt(uid, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
