package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/gamegate/core/telegram"
	"github.com/m3rciful/gamegate/core/telegram/commands"
	"github.com/m3rciful/gamegate/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
	OnHandled   HandledFunc
}

// TextRoutes routes plain text: command aliases typed without a handler
// of their own first, then the registry text fallback, then UnknownText.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := lookupAlias(reg, text); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), opts.OnHandled, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", opts.OnHandled, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", opts.OnHandled, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", time.Now(), "skip", "ok", nil, opts.OnHandled)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

// lookupAlias resolves "/alias args" or "/alias@bot args"; text without a
// leading slash never matches.
func lookupAlias(reg *tg.Registry, text string) (string, commands.Command, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	if !strings.HasPrefix(head, "/") {
		return "", commands.Command{}, false
	}
	head, _, _ = strings.Cut(head, "@")
	return reg.LookupCommand(head)
}
