package router

import (
	"log/slog"

	"github.com/m3rciful/gamegate/core/logger"
	tg "github.com/m3rciful/gamegate/core/telegram"
	"github.com/m3rciful/gamegate/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
	OnHandled     HandledFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Admin-only commands sit behind AdminOnlyMiddleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	admin := 0
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		handler := def.Handler
		h := func(c tele.Context) error {
			return handleWithSummary(c, name, opts.OnHandled, func() error { return handler(c) })
		}
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
			admin++
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(routes)),
		slog.Int("admin_only", admin),
	)
	return routes
}
