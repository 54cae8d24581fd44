package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RealIP returns the client address, preferring X-Forwarded-For when the
// server sits behind a local reverse proxy.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts calls per key in fixed windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{windows: make(map[string]*window), now: time.Now}
}

// Allow reports whether key is still within limit for the current window.
func (l *Limiter) Allow(key string, limit int, per time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(per)}
		return true
	}
	w.count++
	return w.count <= limit
}

// Prune drops windows that have already reset.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// PruneEvery calls Prune on a ticker until ctx is done.
func (l *Limiter) PruneEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

// Throttle caps how often one client may call next. It guards the expensive
// endpoints such as backup runs.
func Throttle(l *Limiter, limit int, per time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Method + " " + r.URL.Path + " " + RealIP(r)
			if !l.Allow(key, limit, per) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
