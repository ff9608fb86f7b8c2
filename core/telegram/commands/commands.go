package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command as the registry stores it.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are routed through the admin check and never published.
	AdminOnly bool
	// Hidden commands work but are left out of the command menu.
	Hidden  bool
	Aliases []string
}

// Visible reports whether the command belongs in the Telegram command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}
