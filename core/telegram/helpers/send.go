package helpers

import (
	"log/slog"
	"time"

	"github.com/m3rciful/gamegate/core/logger"
	"github.com/m3rciful/gamegate/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// SendText sends plain text, without parse mode, to the current chat.
// Sends run inline: the bot processes one update at a time and the reply is
// part of handling it. Failures are logged with their kind and returned.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{}
	if len(markup) > 0 && markup[0] != nil {
		opts.ReplyMarkup = markup[0]
	}

	start := time.Now()
	err := c.Send(text, opts)
	if err != nil {
		ctx := BuildContext(c)
		logger.Error(ctx, "tg.sender", "send.fail",
			slog.String("err", netutil.RedactToken(err.Error())),
			slog.String("err_kind", netutil.Classify(err)),
			slog.Int("err_code", netutil.StatusCode(err)),
			slog.Bool("kb", opts.ReplyMarkup != nil),
			slog.Duration("duration", logger.Took(start)),
		)
		return err
	}
	return nil
}
