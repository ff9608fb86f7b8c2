// Package membership answers whether a user belongs to a Telegram channel or group.
package membership

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/gamegate/core/logger"
	"github.com/m3rciful/gamegate/core/telegram/netutil"
)

// ChatRef identifies a chat by numeric id ("-1001234567890") or public
// username ("@channel"). Both forms are accepted by getChatMember as is.
type ChatRef string

// Recipient implements tele.Recipient.
func (r ChatRef) Recipient() string { return string(r) }

// Lookup is the part of *tele.Bot the checker needs.
type Lookup interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Result is the outcome of one successful lookup.
type Result struct {
	Chat   ChatRef
	Role   tele.MemberStatus
	Member bool
}

// IsMember is the membership predicate: creator, administrator or plain member.
// Restricted, left and kicked users are not members.
func IsMember(role tele.MemberStatus) bool {
	switch role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true
	}
	return false
}

// Checker performs getChatMember lookups.
type Checker struct {
	lookup Lookup
	// Observe receives "member", "not_member" or "error" per lookup.
	Observe func(chat ChatRef, outcome string)
}

// NewChecker returns a Checker using lookup, usually the bot itself.
func NewChecker(lookup Lookup) *Checker {
	return &Checker{lookup: lookup}
}

// Check looks up userID in chat. Any API or transport failure is returned
// as an error; a user who is simply absent is a Result with Member false.
func (c *Checker) Check(ctx context.Context, chat ChatRef, userID int64) (Result, error) {
	if strings.TrimSpace(string(chat)) == "" {
		return Result{}, fmt.Errorf("membership: empty chat reference")
	}

	start := time.Now()
	cm, err := c.lookup.ChatMemberOf(chat, &tele.User{ID: userID})
	took := logger.Took(start)
	if err == nil && cm == nil {
		err = fmt.Errorf("empty chat member")
	}
	if err != nil {
		c.observe(chat, "error")
		logger.LogEvent(ctx, logger.Access, slog.LevelError, "membership.lookup",
			slog.String("status", "fail"),
			slog.String("channel", string(chat)),
			slog.Int64("target_id", userID),
			slog.String("err", netutil.RedactToken(err.Error())),
			slog.String("err_kind", netutil.Classify(err)),
			slog.Duration("duration", took),
		)
		return Result{}, fmt.Errorf("membership: %s: %w", chat, err)
	}

	res := Result{Chat: chat, Role: cm.Role, Member: IsMember(cm.Role)}
	if res.Member {
		c.observe(chat, "member")
	} else {
		c.observe(chat, "not_member")
	}
	logger.LogEvent(ctx, logger.Access, slog.LevelDebug, "membership.lookup",
		slog.String("status", "ok"),
		slog.String("channel", string(chat)),
		slog.Int64("target_id", userID),
		slog.String("role", string(cm.Role)),
		slog.Bool("member", res.Member),
		slog.Duration("duration", took),
	)
	return res, nil
}

func (c *Checker) observe(chat ChatRef, outcome string) {
	if c.Observe != nil {
		c.Observe(chat, outcome)
	}
}
