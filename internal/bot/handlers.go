package bot

import (
	"github.com/m3rciful/gamegate/core/telegram/helpers"
	"github.com/m3rciful/gamegate/core/telegram/keyboard"
	"github.com/m3rciful/gamegate/internal/access"

	tele "gopkg.in/telebot.v4"
)

type sendFunc func(c tele.Context, text string, markup ...*tele.ReplyMarkup) error

// handlers adapts access.Service to telebot.
type handlers struct {
	svc  *access.Service
	send sendFunc
}

func newHandlers(svc *access.Service) *handlers {
	return &handlers{svc: svc, send: helpers.SendText}
}

func (h *handlers) start(c tele.Context) error {
	uid := helpers.SenderID(c)
	if uid == 0 {
		return nil
	}
	reply, err := h.svc.Start(helpers.WithHandler(c, "start"), uid)
	if err != nil {
		return err
	}
	return h.render(c, reply)
}

func (h *handlers) gameSlot(c tele.Context) error {
	uid := helpers.SenderID(c)
	if uid == 0 {
		return nil
	}
	reply, err := h.svc.GameSlot(helpers.WithHandler(c, "gameslot"), uid)
	if err != nil {
		return err
	}
	return h.render(c, reply)
}

func (h *handlers) check(c tele.Context) error {
	reply, ok, err := h.svc.Check(helpers.WithHandler(c, "check"), helpers.SenderID(c), c.Args())
	if err != nil || !ok {
		return err
	}
	return h.render(c, reply)
}

func (h *handlers) text(c tele.Context) error {
	uid := helpers.SenderID(c)
	if uid == 0 {
		return nil
	}
	reply, err := h.svc.Text(helpers.WithHandler(c, "text"), uid, c.Text())
	if err != nil {
		return err
	}
	return h.render(c, reply)
}

func (h *handlers) render(c tele.Context, reply access.Reply) error {
	return h.send(c, reply.Text, markupFor(reply.Button))
}

func markupFor(b *access.Button) *tele.ReplyMarkup {
	if b == nil {
		return nil
	}
	kind := keyboard.LinkURL
	if b.WebApp {
		kind = keyboard.LinkWebApp
	}
	return keyboard.Link(keyboard.LinkBtn{Text: b.Text, URL: b.URL, Kind: kind})
}
