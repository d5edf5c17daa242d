package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/uplist/uplist/pkg/slogx"
)

// LockoutConfig parameterizes the per-IP attempt limiter used on
// credential-bearing endpoints (login, password change).
type LockoutConfig struct {
	// MaxAttempts is how many attempts a client gets inside one window.
	MaxAttempts int
	// Window is the sliding window a client's attempts are counted in.
	Window time.Duration
	// Lockout is how long a client stays blocked after exhausting the
	// window's attempts.
	Lockout time.Duration
}

// LockoutProfile returns the limiter configuration for an environment.
// Production is strict; dev and test scale down so local iteration and test
// suites aren't blocked by yesterday's attempts.
func LockoutProfile(env string) LockoutConfig {
	switch env {
	case "prod", "production":
		return LockoutConfig{MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 15 * time.Minute}
	case "test":
		return LockoutConfig{MaxAttempts: 100, Window: time.Second, Lockout: time.Second}
	default: // dev
		return LockoutConfig{MaxAttempts: 10, Window: time.Minute, Lockout: 30 * time.Second}
	}
}

// attemptRecord tracks one client's attempts inside the current window.
type attemptRecord struct {
	count       int
	resetTime   time.Time
	lastAttempt time.Time
}

// LockoutStatus is a non-mutating snapshot used to build retry messaging.
type LockoutStatus struct {
	Remaining int       `json:"remainingAttempts"`
	ResetTime time.Time `json:"resetTime"`
	Locked    bool      `json:"isLocked"`
}

// LockoutLimiter counts attempts per client IP and blocks a client that
// exhausts its window until the lockout elapses. State is process-local;
// running multiple instances needs this behind a shared store with atomic
// read-modify-write.
type LockoutLimiter struct {
	mu      sync.Mutex
	records map[string]*attemptRecord
	cfg     LockoutConfig

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewLockoutLimiter returns a limiter with the given configuration.
func NewLockoutLimiter(cfg LockoutConfig) *LockoutLimiter {
	return &LockoutLimiter{
		records: make(map[string]*attemptRecord),
		cfg:     cfg,
		Now:     time.Now,
	}
}

// Check records an attempt for the client and reports whether it is
// allowed. Exactly MaxAttempts consecutive calls are allowed inside one
// window; the call that consumes the final attempt also starts the lockout,
// so the next call is denied until the lockout elapses.
func (l *LockoutLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()

	rec, ok := l.records[ip]
	if !ok {
		l.records[ip] = &attemptRecord{count: 1, resetTime: now.Add(l.cfg.Window), lastAttempt: now}
		return true
	}

	rec.lastAttempt = now

	if rec.count >= l.cfg.MaxAttempts {
		if now.Before(rec.resetTime) {
			return false // still locked out
		}
		// Lockout (or window) elapsed; start a fresh window.
		rec.count = 1
		rec.resetTime = now.Add(l.cfg.Window)
		return true
	}

	if now.After(rec.resetTime) {
		// Window expired before the attempts ran out.
		rec.count = 1
		rec.resetTime = now.Add(l.cfg.Window)
		return true
	}

	rec.count++
	if rec.count >= l.cfg.MaxAttempts {
		// Final allowed attempt; subsequent calls block until the lockout ends.
		rec.resetTime = now.Add(l.cfg.Lockout)
	}
	return true
}

// Status derives the client's current state without mutating it.
func (l *LockoutLimiter) Status(ip string) LockoutStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()

	rec, ok := l.records[ip]
	if !ok || now.After(rec.resetTime) {
		return LockoutStatus{Remaining: l.cfg.MaxAttempts, ResetTime: now}
	}

	remaining := l.cfg.MaxAttempts - rec.count
	if remaining < 0 {
		remaining = 0
	}
	return LockoutStatus{
		Remaining: remaining,
		ResetTime: rec.resetTime,
		Locked:    rec.count >= l.cfg.MaxAttempts && now.Before(rec.resetTime),
	}
}

// MaxAttempts exposes the configured attempt budget for response metadata.
func (l *LockoutLimiter) MaxAttempts() int { return l.cfg.MaxAttempts }

// Prune drops records whose window or lockout has fully elapsed. Called
// periodically by housekeeping so idle IPs don't accumulate.
func (l *LockoutLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	pruned := 0
	for ip, rec := range l.records {
		if now.After(rec.resetTime) {
			delete(l.records, ip)
			pruned++
		}
	}
	return pruned
}

// lockoutBody is the 429 response payload. Attempt counts are bounded and
// time-boxed, so revealing them helps legitimate users without aiding
// attackers.
type lockoutBody struct {
	Error             string `json:"error"`
	RemainingAttempts int    `json:"remainingAttempts"`
	ResetTime         int64  `json:"resetTime"`
	MaxAttempts       int    `json:"maxAttempts"`
}

// LoginRateLimit guards credential-bearing endpoints with the lockout
// limiter. Denied requests get 429 with Retry-After, X-RateLimit-* headers,
// and a JSON body carrying retry metadata.
func LoginRateLimit(l *LockoutLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := IPKeyExtractor(r)

			if l.Check(ip) {
				next.ServeHTTP(w, r)
				return
			}

			status := l.Status(ip)
			retryAfter := max(int(time.Until(status.ResetTime).Seconds()), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.MaxAttempts()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", status.ResetTime.Unix()))

			slogx.FromContext(r.Context()).Warn("rate limit lockout",
				"ip", ip,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, lockoutBody{
				Error:             "rate_limited",
				RemainingAttempts: status.Remaining,
				ResetTime:         status.ResetTime.UnixMilli(),
				MaxAttempts:       l.MaxAttempts(),
			})
		})
	}
}
