package keyboard

import tele "gopkg.in/telebot.v4"

// LinkKind selects how an inline link button opens its target.
type LinkKind int

const (
	// LinkURL opens the address in the browser or the Telegram chat it points to.
	LinkURL LinkKind = iota
	// LinkWebApp opens the address as a Telegram mini app.
	LinkWebApp
)

// LinkBtn describes one inline button that opens an address.
type LinkBtn struct {
	Text string
	URL  string
	Kind LinkKind
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// Link builds a one-button inline keyboard. A button without URL yields nil.
func Link(b LinkBtn) *tele.ReplyMarkup {
	if b.URL == "" {
		return nil
	}
	return LinkRows([]LinkBtn{b})
}

// LinkRows builds an inline keyboard from rows of link buttons, skipping buttons without URL.
func LinkRows(rows ...[]LinkBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var keyboard []tele.Row
	for _, row := range rows {
		var btns []tele.Btn
		for _, b := range row {
			if b.URL == "" {
				continue
			}
			btns = append(btns, toBtn(markup, b))
		}
		if len(btns) > 0 {
			keyboard = append(keyboard, markup.Row(btns...))
		}
	}
	if len(keyboard) == 0 {
		return nil
	}
	markup.Inline(keyboard...)
	return markup
}

func toBtn(markup *tele.ReplyMarkup, b LinkBtn) tele.Btn {
	if b.Kind == LinkWebApp {
		return markup.WebApp(b.Text, &tele.WebApp{URL: b.URL})
	}
	return markup.URL(b.Text, b.URL)
}
