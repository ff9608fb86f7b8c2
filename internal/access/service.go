// Package access decides what a user may see and builds the replies for the
// bot commands. It knows nothing about the Telegram transport: every
// operation returns a Reply that the bot layer renders.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/gamegate/core/logger"
	"github.com/m3rciful/gamegate/internal/membership"
	"github.com/m3rciful/gamegate/internal/userstatus"
)

// Button is a single inline link under a reply.
type Button struct {
	Text   string
	URL    string
	WebApp bool
}

// Reply is the message to send back.
type Reply struct {
	Text   string
	Button *Button
}

// MembershipChecker is satisfied by *membership.Checker.
type MembershipChecker interface {
	Check(ctx context.Context, chat membership.ChatRef, userID int64) (membership.Result, error)
}

// Channels names the two chats that gate access.
type Channels struct {
	Main         membership.ChatRef
	Verification membership.ChatRef
}

// Links are the addresses shown on reply buttons.
type Links struct {
	StartWebApp    string
	GameSlotWebApp string
	Subscribe      string
	Support        string
}

// Options configures a Service.
type Options struct {
	Store    userstatus.Store
	Checker  MembershipChecker
	Channels Channels
	Links    Links
	AdminID  int64
	// OnDecision is called with the operation name and the level granted.
	OnDecision func(op string, level Level)
}

// Service implements the bot commands.
type Service struct {
	store      userstatus.Store
	checker    MembershipChecker
	channels   Channels
	links      Links
	adminID    int64
	onDecision func(string, Level)
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("access: store is required")
	}
	if opts.Checker == nil {
		return nil, fmt.Errorf("access: membership checker is required")
	}
	if opts.Channels.Main == "" || opts.Channels.Verification == "" {
		return nil, fmt.Errorf("access: main and verification channels are required")
	}
	return &Service{
		store:      opts.Store,
		checker:    opts.Checker,
		channels:   opts.Channels,
		links:      opts.Links,
		adminID:    opts.AdminID,
		onDecision: opts.OnDecision,
	}, nil
}

// Start refreshes both membership flags from Telegram and answers with the
// prompt or button matching the resulting level. Both lookups finish before
// anything is written, so a failed lookup leaves the stored record untouched.
func (s *Service) Start(ctx context.Context, userID int64) (Reply, error) {
	if err := s.store.Ensure(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("start: %w", err)
	}

	sub, err := s.checker.Check(ctx, s.channels.Main, userID)
	if err != nil {
		s.lookupFailed(ctx, "start", err)
		return Reply{Text: TextLookupFailed}, nil
	}
	verif, err := s.checker.Check(ctx, s.channels.Verification, userID)
	if err != nil {
		s.lookupFailed(ctx, "start", err)
		return Reply{Text: TextLookupFailed}, nil
	}

	if err := s.store.SetSubscribed(ctx, userID, sub.Member); err != nil {
		return Reply{}, fmt.Errorf("start: %w", err)
	}
	if err := s.store.SetVerified(ctx, userID, verif.Member); err != nil {
		return Reply{}, fmt.Errorf("start: %w", err)
	}
	if verif.Member {
		if err := s.store.MarkRegistered(ctx, userID); err != nil {
			return Reply{}, fmt.Errorf("start: %w", err)
		}
	}

	st, err := s.store.GetStatus(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("start: %w", err)
	}
	level := Evaluate(st.Subscribed, st.VerifJoined)
	s.decided(ctx, "start", userID, level)

	switch level {
	case FullAccess:
		return Reply{Text: TextAccessGranted, Button: s.webAppButton(s.links.StartWebApp)}, nil
	case Partial:
		return Reply{Text: TextJoinDiscussion, Button: linkButton(BtnJoinDiscussion, s.links.Support)}, nil
	default:
		return Reply{Text: TextSubscribe, Button: linkButton(BtnSubscribe, s.links.Subscribe)}, nil
	}
}

// GameSlot grants the game button to verification group members. It reads
// Telegram directly and does not touch the stored record.
func (s *Service) GameSlot(ctx context.Context, userID int64) (Reply, error) {
	verif, err := s.checker.Check(ctx, s.channels.Verification, userID)
	if err != nil {
		s.lookupFailed(ctx, "gameslot", err)
		return Reply{Text: TextStatusFailed}, nil
	}
	if !verif.Member {
		s.decided(ctx, "gameslot", userID, None)
		return Reply{Text: TextGameSlotDenied}, nil
	}
	s.decided(ctx, "gameslot", userID, FullAccess)
	return Reply{Text: TextGameSlotGranted, Button: s.webAppButton(s.links.GameSlotWebApp)}, nil
}

// IsTrigger reports whether text is the registration phrase.
func IsTrigger(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == TriggerPhrase
}

// Text handles free text. Only the registration phrase is acted on; it is
// answered from the stored flags without asking Telegram again.
func (s *Service) Text(ctx context.Context, userID int64, text string) (Reply, error) {
	if !IsTrigger(text) {
		return Reply{Text: TextTextFallback}, nil
	}

	st, err := s.store.GetStatus(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("text: %w", err)
	}
	level := Evaluate(st.Subscribed, st.VerifJoined)
	s.decided(ctx, "text", userID, level)
	if level != FullAccess {
		return Reply{Text: TextNotYet}, nil
	}
	if err := s.store.MarkRegistered(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("text: %w", err)
	}
	return Reply{Text: TextAccessGranted, Button: s.webAppButton(s.links.GameSlotWebApp)}, nil
}

// Check reports the stored flags of a user to the admin. ok is false when
// the caller is not the admin and nothing must be sent. The first argument,
// when numeric, selects the target; otherwise the caller is reported.
func (s *Service) Check(ctx context.Context, callerID int64, args []string) (reply Reply, ok bool, err error) {
	if s.adminID == 0 || callerID != s.adminID {
		logger.LogEvent(ctx, logger.Access, slog.LevelWarn, "check.denied", slog.Int64("caller_id", callerID))
		return Reply{}, false, nil
	}

	target := callerID
	if len(args) > 0 {
		if id, perr := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64); perr == nil {
			target = id
		}
	}

	st, err := s.store.GetStatus(ctx, target)
	if err != nil {
		return Reply{}, true, fmt.Errorf("check: %w", err)
	}
	return Reply{Text: FormatStatus(st)}, true, nil
}

// FormatStatus renders a record the way /check shows it.
func FormatStatus(st userstatus.Status) string {
	return fmt.Sprintf("Статус пользователя %d:\nПодписка: %s\nВерификация: %s\nРегистрация: %s",
		st.UserID, mark(st.Subscribed), mark(st.VerifJoined), mark(st.Registered))
}

func (s *Service) webAppButton(url string) *Button {
	if url == "" {
		return nil
	}
	return &Button{Text: BtnOpenGame, URL: url, WebApp: true}
}

func linkButton(text, url string) *Button {
	if url == "" {
		return nil
	}
	return &Button{Text: text, URL: url}
}

func (s *Service) decided(ctx context.Context, op string, userID int64, level Level) {
	logger.LogEvent(ctx, logger.Access, slog.LevelInfo, "access.decision",
		slog.String("op", op),
		slog.Int64("target_id", userID),
		slog.String("level", level.String()),
	)
	if s.onDecision != nil {
		s.onDecision(op, level)
	}
}

func (s *Service) lookupFailed(ctx context.Context, op string, err error) {
	logger.LogEvent(ctx, logger.Access, slog.LevelError, "access.lookup_failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
}
