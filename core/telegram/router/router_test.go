package router

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/gamegate/core/telegram"
	"github.com/m3rciful/gamegate/core/telegram/commands"
)

type handled struct {
	handler, outcome string
}

func newBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Token: "1:test", Offline: true, Synchronous: true})
	require.NoError(t, err)
	return bot
}

func update(id int, userID int64, text string) tele.Update {
	return tele.Update{ID: id, Message: &tele.Message{
		Text:   text,
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
	}}
}

func routeFor(routes []tg.Route, endpoint any) tele.HandlerFunc {
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	return nil
}

func TestCommandRoutesAdminOnly(t *testing.T) {
	bot := newBot(t)
	var seen []handled
	checks := 0

	reg := tg.NewRegistry()
	reg.RegisterCommand("/check", commands.Command{
		Description: "status",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { checks++; return nil },
	})
	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID: 42,
		OnHandled: func(h, o string, _ time.Duration) {
			seen = append(seen, handled{h, o})
		},
	})
	h := routeFor(routes, "/check")
	require.NotNil(t, h)

	require.NoError(t, h(bot.NewContext(update(1, 7, "/check"))))
	assert.Zero(t, checks)
	assert.Empty(t, seen)

	require.NoError(t, h(bot.NewContext(update(2, 42, "/check 7"))))
	assert.Equal(t, 1, checks)
	assert.Equal(t, []handled{{"check", "ok"}}, seen)
}

func TestTextRoutesFallback(t *testing.T) {
	bot := newBot(t)
	var seen []handled
	var texts []string
	starts := 0

	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Description: "start",
		Aliases:     []string{"begin"},
		Handler:     func(tele.Context) error { starts++; return nil },
	})
	reg.SetTextFallback(func(c tele.Context) error {
		texts = append(texts, c.Text())
		if c.Text() == "fail" {
			return errors.New("store down")
		}
		return nil
	})

	h := routeFor(TextRoutes(reg, TextOptions{OnHandled: func(h, o string, _ time.Duration) {
		seen = append(seen, handled{h, o})
	}}), tele.OnText)
	require.NotNil(t, h)

	require.NoError(t, h(bot.NewContext(update(1, 7, "Я зарегистрировался"))))
	require.NoError(t, h(bot.NewContext(update(2, 7, "start"))))
	require.NoError(t, h(bot.NewContext(update(3, 7, "/begin@gate_bot"))))
	require.Error(t, h(bot.NewContext(update(4, 7, "fail"))))

	assert.Equal(t, 1, starts)
	assert.Equal(t, []string{"Я зарегистрировался", "start", "fail"}, texts)
	assert.Equal(t, []handled{{"text", "ok"}, {"text", "ok"}, {"start", "ok"}, {"text", "fail"}}, seen)
}

type codedErr struct{}

func (codedErr) Error() string { return "membership lookup failed" }
func (codedErr) Code() string  { return "membership lookup" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "MEMBERSHIP_LOOKUP", deriveErrorCode(codedErr{}))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
	assert.Equal(t, "", deriveErrorCode(nil))
}
