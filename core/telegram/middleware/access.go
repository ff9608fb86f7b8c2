package middleware

import (
	"log/slog"

	"github.com/m3rciful/gamegate/core/logger"
	tghelpers "github.com/m3rciful/gamegate/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
// A zero AdminID admits nobody.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender of c is the configured admin.
func (o AdminOptions) IsAdmin(c tele.Context) bool {
	u := c.Sender()
	return u != nil && o.AdminID != 0 && u.ID == o.AdminID
}

// AdminOnlyMiddleware lets only the admin reach downstream handlers.
// Everyone else gets OnReject, or silence when it is nil.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !opts.IsAdmin(c) {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "admin.denied",
					slog.String("outcome", "denied"),
					slog.String("payload", logger.SanitizeLimit(c.Text(), 64)),
				)
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
