// Package bot wires the gamegate application: storage, membership lookups,
// the access service and the Telegram routes that expose it.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/gamegate/core/bootstrap"
	"github.com/m3rciful/gamegate/core/buildinfo"
	corecmd "github.com/m3rciful/gamegate/core/cmd"
	"github.com/m3rciful/gamegate/core/logger"
	coretelegram "github.com/m3rciful/gamegate/core/telegram"
	"github.com/m3rciful/gamegate/core/telegram/router"
	"github.com/m3rciful/gamegate/internal/access"
	"github.com/m3rciful/gamegate/internal/config"
	"github.com/m3rciful/gamegate/internal/membership"
	"github.com/m3rciful/gamegate/internal/metrics"
	"github.com/m3rciful/gamegate/internal/opsserver"
	"github.com/m3rciful/gamegate/internal/userstatus"
	"github.com/m3rciful/gamegate/migrations"
)

// Deps overrides infrastructure built by New. Zero values build the real thing.
type Deps struct {
	Bot *tele.Bot
	// Bootstrap replaces the core pipeline (logger, migrations, database).
	Bootstrap func(bootstrap.Options) (*bootstrap.Result, error)
}

// App holds everything the running bot needs.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	rdb      *redis.Client
	bot      *tele.Bot
	service  *access.Service
	registry *coretelegram.Registry
	ops      *opsserver.Server
}

// Bootstrap implements cmd.Options.Bootstrap.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}
	return New(ctx, cfg, Deps{})
}

// New builds the application. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, deps Deps) (_ *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	app := &App{cfg: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	run := deps.Bootstrap
	if run == nil {
		run = bootstrap.Run
	}
	res, err := run(bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}
	app.db = res.DB

	metrics.MustRegister(nil)
	info := buildinfo.Current()
	metrics.SetBuildInfo(info.Version, info.Commit)

	var store userstatus.Store = userstatus.NewSQLStore(app.db)
	if cfg.Redis.Addr != "" {
		app.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = app.rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("bot: redis ping %s: %w", cfg.Redis.Addr, err)
		}
		opts := []userstatus.CacheOption{
			userstatus.WithObserver(func(result string) { metrics.IncCacheRequest("status", result) }),
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, userstatus.WithTTL(cfg.Redis.TTL))
		}
		store = userstatus.NewCachedStore(store, app.rdb, opts...)
		logger.LogEvent(ctx, logger.Store, slog.LevelInfo, "cache.enabled",
			slog.String("addr", cfg.Redis.Addr))
	}

	app.bot = deps.Bot
	if app.bot == nil {
		app.bot, err = coretelegram.NewBot(&cfg.Config, coretelegram.HTTPClientOptions{
			OnRetry: metrics.IncHTTPRetry,
		})
		if err != nil {
			return nil, err
		}
	}

	channels := access.Channels{
		Main:         membership.ChatRef(cfg.Channels.Main),
		Verification: membership.ChatRef(cfg.Channels.Verification),
	}
	checker := membership.NewChecker(app.bot)
	checker.Observe = func(chat membership.ChatRef, outcome string) {
		metrics.IncMembershipLookup(channelLabel(channels, chat), outcome)
	}

	app.service, err = access.NewService(access.Options{
		Store:    store,
		Checker:  checker,
		Channels: channels,
		Links: access.Links{
			StartWebApp:    cfg.Links.StartWebApp,
			GameSlotWebApp: cfg.Links.GameSlotWebApp,
			Subscribe:      cfg.Links.Subscribe,
			Support:        cfg.Links.Support,
		},
		AdminID: cfg.Telegram.AdminID,
		OnDecision: func(op string, level access.Level) {
			metrics.IncAccessDecision(op, level.String())
		},
	})
	if err != nil {
		return nil, err
	}
	app.registry = buildRegistry(newHandlers(app.service))

	app.ops, err = opsserver.Start(opsserver.Options{Listen: cfg.Ops.Listen, DB: app.db})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func channelLabel(ch access.Channels, chat membership.ChatRef) string {
	switch chat {
	case ch.Main:
		return "main"
	case ch.Verification:
		return "verification"
	}
	return "other"
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a == nil || a.bot == nil || a.registry == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("bot: app not initialized")
	}
	onHandled := router.HandledFunc(metrics.ObserveHandler)

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:   a.cfg.Telegram.AdminID,
		OnHandled: onHandled,
	})
	routes = append(routes, router.TextRoutes(a.registry, router.TextOptions{OnHandled: onHandled})...)

	return coretelegram.RunOptions{
		Config:   &a.cfg.Config,
		Registry: a.registry,
		Bot:      a.bot,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, coretelegram.MiddlewareHooks{
			OnLimited: func(tele.Context) error {
				metrics.IncRateLimited()
				return nil
			},
			OnSent: metrics.IncMessageSent,
		}),
		Routes: routes,
	}, nil
}

// Close releases the ops listener, the cache client and the database.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.ops.Shutdown(ctx))
		cancel()
		a.ops = nil
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
		a.rdb = nil
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	return errors.Join(errs...)
}
