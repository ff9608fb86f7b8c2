package bot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/gamegate/core/bootstrap"
	coreconfig "github.com/m3rciful/gamegate/core/config"
	coredatabase "github.com/m3rciful/gamegate/core/database"
	"github.com/m3rciful/gamegate/internal/access"
	"github.com/m3rciful/gamegate/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Config: coreconfig.Config{
			Telegram: coreconfig.TelegramConfig{Token: "1:test", AdminID: 42, RunMode: coreconfig.RunModeLongpoll},
		},
		Channels: config.ChannelsConfig{Main: "@main", Verification: "@verif"},
		Database: coredatabase.Config{
			Driver: coredatabase.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "app.db"),
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietBootstrap(opts bootstrap.Options) (*bootstrap.Result, error) {
	opts.LoggerInit = func(*coreconfig.Config) error { return nil }
	return bootstrap.Run(opts)
}

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Token: "1:test", Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b
}

func TestNewWiresApp(t *testing.T) {
	cfg := testConfig(t)
	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()

	app, err := New(context.Background(), cfg, Deps{Bot: offlineBot(t), Bootstrap: quietBootstrap})
	require.NoError(t, err)

	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, app.bot, opts.Bot)
	assert.Same(t, &cfg.Config, opts.Config)
	// three commands plus the text route
	assert.Len(t, opts.Routes, 4)
	assert.NotEmpty(t, opts.Middlewares)

	reply, ok, err := app.service.Check(context.Background(), 42, []string{"5"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, reply.Text, "Статус пользователя 5:")

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestNewRedisUnavailable(t *testing.T) {
	cfg := testConfig(t)
	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	mr.Close()

	_, err := New(context.Background(), cfg, Deps{Bot: offlineBot(t), Bootstrap: quietBootstrap})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestBootstrapRejectsForeignConfig(t *testing.T) {
	_, err := Bootstrap(context.Background(), &coreCarrier{})
	assert.Error(t, err)
}

type coreCarrier struct{}

func (coreCarrier) CoreConfig() *coreconfig.Config { return &coreconfig.Config{} }

func TestChannelLabel(t *testing.T) {
	ch := access.Channels{Main: "@main", Verification: "@verif"}
	assert.Equal(t, "main", channelLabel(ch, "@main"))
	assert.Equal(t, "verification", channelLabel(ch, "@verif"))
	assert.Equal(t, "other", channelLabel(ch, "@x"))
}
