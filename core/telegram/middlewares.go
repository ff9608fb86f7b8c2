package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/gamegate/core/config"
	"github.com/m3rciful/gamegate/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareHooks lets the application observe the shared chain.
type MiddlewareHooks struct {
	OnLimited tele.HandlerFunc
	OnSent    func(withKeyboard bool)
}

// DefaultMiddlewares builds the shared middleware chain: recover, optional
// per-user rate limit, update logging and message counters.
func DefaultMiddlewares(cfg *coreconfig.Config, hooks MiddlewareHooks) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				ex[t] = struct{}{}
			}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Burst:     cfg.RateLimit.Burst,
				Exclude:   ex,
				OnLimited: hooks.OnLimited,
			}),
		})
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetrics(hooks.OnSent)},
	)
	return mws
}
