// Package opsserver serves the operational endpoints: Prometheus metrics
// and a health check that pings the store.
package opsserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/gamegate/core/buildinfo"
	"github.com/m3rciful/gamegate/core/logger"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the server. An empty Listen disables it.
type Options struct {
	Listen   string
	DB       Pinger
	Gatherer prometheus.Gatherer
	// PingTimeout bounds the health check; defaults to 2s.
	PingTimeout time.Duration
}

type health struct {
	Status string         `json:"status"`
	Store  string         `json:"store"`
	Error  string         `json:"error,omitempty"`
	Build  buildinfo.Info `json:"build"`
}

// Server is the ops HTTP listener.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// NewRouter builds the ops routes.
func NewRouter(opts Options) http.Handler {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 2 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		resp := health{Status: "ok", Store: "ok", Build: buildinfo.Current()}
		if opts.DB != nil {
			ctx, cancel := context.WithTimeout(req.Context(), opts.PingTimeout)
			defer cancel()
			if err := opts.DB.PingContext(ctx); err != nil {
				resp.Status, resp.Store, resp.Error = "degraded", "down", err.Error()
				render.Status(req, http.StatusServiceUnavailable)
			}
		} else {
			resp.Store = "none"
		}
		render.JSON(w, req, resp)
	})
	return r
}

// Start binds the listener and serves in the background. It returns nil,
// nil when Listen is empty.
func Start(opts Options) (*Server, error) {
	if opts.Listen == "" {
		return nil, nil
	}
	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return nil, fmt.Errorf("opsserver: listen %s: %w", opts.Listen, err)
	}
	s := &Server{
		ln: ln,
		srv: &http.Server{
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogEvent(context.Background(), logger.Ops, slog.LevelError, "ops.serve",
				slog.String("status", "fail"), slog.String("err", err.Error()))
		}
	}()
	logger.LogEvent(context.Background(), logger.Ops, slog.LevelInfo, "ops.listen",
		slog.String("addr", ln.Addr().String()))
	return s, nil
}

// Addr is the bound address.
func (s *Server) Addr() string {
	if s == nil || s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops the server. Safe on a nil Server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
