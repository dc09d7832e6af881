package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// DeleteRateLimiter is a token bucket shared by every DELETE route.
// Drops fan out to remote deletes, so bursts are capped server-wide rather
// than per client.
type DeleteRateLimiter struct {
	mu       sync.Mutex
	capacity int
	tokens   int
	refill   time.Duration
	last     time.Time
	now      func() time.Time
}

// NewDeleteRateLimiter allows bursts of capacity deletes and regains one
// token every refill.
func NewDeleteRateLimiter(capacity int, refill time.Duration) *DeleteRateLimiter {
	return &DeleteRateLimiter{
		capacity: capacity,
		tokens:   capacity,
		refill:   refill,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Allow takes a token. When none is left it returns false and the wait
// until the next token.
func (l *DeleteRateLimiter) Allow() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.refill > 0 {
		gained := int(now.Sub(l.last) / l.refill)
		if gained > 0 {
			l.tokens = min(l.capacity, l.tokens+gained)
			l.last = l.last.Add(time.Duration(gained) * l.refill)
		}
		if l.tokens == l.capacity {
			l.last = now
		}
	}

	if l.tokens > 0 {
		l.tokens--
		return true, 0
	}
	return false, l.refill - now.Sub(l.last)
}

// Middleware rejects requests with 429 when the bucket is empty.
func (l *DeleteRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.Allow()
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			WriteProblem(w, r, http.StatusTooManyRequests, "Delete rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
