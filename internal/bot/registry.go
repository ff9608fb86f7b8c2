package bot

import (
	coretelegram "github.com/m3rciful/gamegate/core/telegram"
	"github.com/m3rciful/gamegate/core/telegram/commands"
)

func buildRegistry(h *handlers) *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.start,
		Description: "Проверить подписку и открыть доступ",
	})
	reg.RegisterCommand("/gameslot", commands.Command{
		Handler:     h.gameSlot,
		Description: "Доступ к игре для участников обсуждения",
	})
	reg.RegisterCommand("/check", commands.Command{
		Handler:     h.check,
		Description: "Статус пользователя",
		AdminOnly:   true,
	})
	reg.SetTextFallback(h.text)
	return reg
}
