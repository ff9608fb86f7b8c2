package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/gamegate/core/logger"
	tghelpers "github.com/m3rciful/gamegate/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
// Interval is the refill period of one token; Burst is the bucket size.
type RateLimitOptions struct {
	Interval  time.Duration
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now is used by tests; defaults to time.Now.
	Now func() time.Time
}

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per user and forgets idle users.
type limiterSet struct {
	mu    sync.Mutex
	every rate.Limit
	burst int
	idle  time.Duration
	users map[int64]*userLimiter
	swept time.Time
}

func newLimiterSet(interval time.Duration, burst int) *limiterSet {
	if burst <= 0 {
		burst = 1
	}
	return &limiterSet{
		every: rate.Every(interval),
		burst: burst,
		idle:  max(10*interval*time.Duration(burst), time.Minute),
		users: make(map[int64]*userLimiter),
	}
}

func (s *limiterSet) allow(userID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > s.idle {
		for id, u := range s.users {
			if now.Sub(u.lastSeen) > s.idle {
				delete(s.users, id)
			}
		}
		s.swept = now
	}

	u, ok := s.users[userID]
	if !ok {
		u = &userLimiter{lim: rate.NewLimiter(s.every, s.burst)}
		s.users[userID] = u
	}
	u.lastSeen = now
	return u.lim.AllowN(now, 1)
}

// updateKind is "command" for slash commands, "message" for other text and "other" otherwise.
func updateKind(c tele.Context) string {
	upd := c.Update()
	if upd.Message == nil {
		return "other"
	}
	if strings.HasPrefix(upd.Message.Text, "/") {
		return "command"
	}
	return "message"
}

// RateLimitMiddleware throttles each user to one update per Interval with a burst allowance.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	set := newLimiterSet(opts.Interval, opts.Burst)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c)]; skip {
				return next(c)
			}
			if set.allow(user.ID, opts.Now()) {
				return next(c)
			}

			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("outcome", "rate_limited"),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
