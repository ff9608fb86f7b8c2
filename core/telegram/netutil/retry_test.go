package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	wrapped := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}

	assert.False(t, ShouldRetry(nil))
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(wrapped))
	assert.True(t, ShouldRetry(timeoutErr{}))
	assert.False(t, ShouldRetry(errors.New("telegram: chat not found (400)")))
	assert.False(t, ShouldRetry(&tele.Error{Code: 403, Description: "Forbidden"}))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("lookup: %w", &net.DNSError{Err: "no such host", Name: "api.telegram.org"}), "dns"},
		{&net.OpError{Op: "dial", Err: errors.New("refused")}, "dial"},
		{&tele.Error{Code: 400, Description: "Bad Request: chat not found"}, "http_4xx"},
		{errors.New("telegram: internal error (502)"), "http_5xx"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), "error: %v", tc.err)
	}
}

func TestRedactToken(t *testing.T) {
	msg := `Post "https://api.telegram.org/bot123456:AAH-x_y/getMe": dial tcp: refused`
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/getMe": dial tcp: refused`, RedactToken(msg))
}
