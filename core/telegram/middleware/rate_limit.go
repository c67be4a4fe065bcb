package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Burst is the number of updates accepted back to back; 0 means 1.
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops limiters of users that were quiet for this long; 0 means 10 minutes.
	IdleTTL time.Duration
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserLimiters keeps one token bucket per user.
type UserLimiters struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	idleTTL time.Duration
	users   map[int64]*userLimiter
	swept   time.Time
}

// NewUserLimiters allows one update per interval per user with the given burst.
func NewUserLimiters(interval time.Duration, burst int, idleTTL time.Duration) *UserLimiters {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &UserLimiters{
		every:   rate.Every(interval),
		burst:   burst,
		idleTTL: idleTTL,
		users:   make(map[int64]*userLimiter),
	}
}

// Allow reports whether userID may proceed at now.
func (l *UserLimiters) Allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.swept) > l.idleTTL {
		for id, u := range l.users {
			if now.Sub(u.lastSeen) > l.idleTTL {
				delete(l.users, id)
			}
		}
		l.swept = now
	}
	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// Len reports the number of tracked users.
func (l *UserLimiters) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// RateLimitMiddleware returns a middleware that throttles updates per user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	limiters := NewUserLimiters(opts.Interval, opts.Burst, opts.IdleTTL)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if limiters.Allow(user.ID, time.Now()) {
				return next(c)
			}

			attrs := []slog.Attr{
				slog.String("event", "tg.rate_limit"),
				slog.String("kind", kind),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.LogAttrs(logger.Background(), slog.LevelWarn, "rate limit", attrs...)
			metrics.ObserveUpdate(kind, "rate_limited", 0)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
