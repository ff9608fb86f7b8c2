package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/gamegate/core/logger"
	"github.com/m3rciful/gamegate/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 2 * time.Second
)

// HTTPClientOptions tunes BuildHTTPClient. Zero values pick the defaults.
type HTTPClientOptions struct {
	Retries int
	Backoff time.Duration
	// OnRetry is called with the error kind before each retry.
	OnRetry func(kind string)
	// Base replaces the default transport; tests use it to inject failures.
	Base http.RoundTripper
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Long polling holds requests open for the poll timeout, so there is no
// response header deadline on the transport; the client timeout bounds it.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	base := opts.Base
	if base == nil {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       defaultIdleConnTimeout,
			TLSHandshakeTimeout:   defaultTLSHandshake,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = defaultRetryAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &http.Client{
		Timeout: defaultClientTimeout,
		Transport: &retryTransport{
			base:       base,
			maxRetries: retries,
			backoff:    backoff,
			onRetry:    opts.OnRetry,
		},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
	onRetry    func(kind string)
}

// RoundTrip retries transient dial and timeout failures with linear backoff.
// Requests whose body cannot be replayed are tried once.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempts := t.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		currReq := req
		if attempt > 1 {
			currReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				currReq.Body = body
			} else if req.Body != nil && req.Body != http.NoBody {
				return nil, lastErr
			}
		}

		resp, err := t.base.RoundTrip(currReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		kind := netutil.Classify(err)
		if t.onRetry != nil {
			t.onRetry(kind)
		}
		delay := t.backoff * time.Duration(attempt)
		logger.TG.Debug("http retry",
			slog.String("event", "http.retry"),
			slog.Int("attempts", attempt),
			slog.String("err_kind", kind),
			slog.Duration("backoff", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
