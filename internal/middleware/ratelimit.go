package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/osmcp/osmcp/internal/models"
)

// idleAfter is how long a caller's bucket survives without traffic. A bucket
// left alone this long is full again, so dropping it changes nothing.
const idleAfter = time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter keeps one token bucket per caller. Each bucket holds perMinute
// tokens and regains one every minute/perMinute.
type RateLimiter struct {
	perMinute int
	every     rate.Limit

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		perMinute: perMinute,
		every:     rate.Every(time.Minute / time.Duration(perMinute)),
		buckets:   make(map[string]*bucket),
	}
}

// Take spends one of key's tokens at now. On an empty bucket it reports how
// long until the next token instead.
func (rl *RateLimiter) Take(key string, now time.Time) (remaining int, retryAfter time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= idleAfter {
		rl.sweep(now)
	}

	b, found := rl.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(rl.every, rl.perMinute)}
		rl.buckets[key] = b
	}
	b.seen = now

	res := b.lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return 0, delay, false
	}
	return int(b.lim.TokensAt(now)), 0, true
}

// Callers reports how many callers currently hold a bucket.
func (rl *RateLimiter) Callers() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) sweep(now time.Time) {
	for key, b := range rl.buckets {
		if now.Sub(b.seen) >= idleAfter {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

// callerKey buckets authenticated callers by API key and everyone else by
// host, so a client reconnecting from a new port keeps its bucket.
func callerKey(r *http.Request) string {
	if key := APIKeyFromContext(r.Context()); key != "" {
		return "key:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

// RateLimit allows a burst of limitPerMinute requests per caller, refilled
// evenly over a minute.
func RateLimit(limitPerMinute int) func(http.Handler) http.Handler {
	rl := NewRateLimiter(limitPerMinute)
	limitHeader := strconv.Itoa(rl.perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, wait, ok := rl.Take(callerKey(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				models.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
