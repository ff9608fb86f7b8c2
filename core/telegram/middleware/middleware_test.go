package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Token: "1:test", Offline: true, Synchronous: true})
	require.NoError(t, err)
	return bot
}

func textUpdate(id int, userID int64, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

func TestRateLimitPerUser(t *testing.T) {
	bot := offlineBot(t)
	now := time.Unix(1_700_000_000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Burst:     1,
		Now:       func() time.Time { return now },
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	handled := 0
	h := mw(func(tele.Context) error { handled++; return nil })

	require.NoError(t, h(bot.NewContext(textUpdate(1, 7, "/start"))))
	require.NoError(t, h(bot.NewContext(textUpdate(2, 7, "/start"))))
	// Another user has an independent bucket.
	require.NoError(t, h(bot.NewContext(textUpdate(3, 8, "/start"))))
	assert.Equal(t, 2, handled)
	assert.Equal(t, 1, limited)

	now = now.Add(time.Second)
	require.NoError(t, h(bot.NewContext(textUpdate(4, 7, "/start"))))
	assert.Equal(t, 3, handled)
}

func TestRateLimitExclusions(t *testing.T) {
	bot := offlineBot(t)
	now := time.Unix(1_700_000_000, 0)
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Minute,
		Exclude:  map[string]struct{}{"message": {}},
		Now:      func() time.Time { return now },
	})
	handled := 0
	h := mw(func(tele.Context) error { handled++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(bot.NewContext(textUpdate(i, 7, "я зарегистрировался"))))
	}
	assert.Equal(t, 3, handled)

	require.NoError(t, h(bot.NewContext(textUpdate(10, 7, "/check"))))
	require.NoError(t, h(bot.NewContext(textUpdate(11, 7, "/check"))))
	assert.Equal(t, 4, handled)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	bot := offlineBot(t)
	calls := 0
	next := func(tele.Context) error { calls++; return nil }

	h := AdminOnlyMiddleware(AdminOptions{AdminID: 42})(next)
	require.NoError(t, h(bot.NewContext(textUpdate(1, 7, "/check"))))
	assert.Zero(t, calls)
	require.NoError(t, h(bot.NewContext(textUpdate(2, 42, "/check"))))
	assert.Equal(t, 1, calls)

	nobody := AdminOnlyMiddleware(AdminOptions{})(next)
	require.NoError(t, nobody(bot.NewContext(textUpdate(3, 42, "/check"))))
	assert.Equal(t, 1, calls)
}

func TestRecoverMiddleware(t *testing.T) {
	bot := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(bot.NewContext(textUpdate(1, 7, "/start")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(bot.NewContext(textUpdate(2, 7, "/start"))), want)
}

func TestMessageCounters(t *testing.T) {
	bot := offlineBot(t)
	c := bot.NewContext(textUpdate(1, 7, "/start"))
	err := MessageMetrics(nil)(func(c tele.Context) error {
		mc := c.(metricsContext)
		mc.incMessages(false)
		mc.incMessages(true)
		return nil
	})(c)
	require.NoError(t, err)

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}
