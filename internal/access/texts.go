package access

const (
	TextAccessGranted  = "Доступ открыт!"
	TextJoinDiscussion = "Подпишитесь на обсуждение канала."
	TextSubscribe      = "Подпишитесь на наш канал, чтобы продолжить."
	TextLookupFailed   = "Произошла ошибка при проверке подписки."

	TextGameSlotGranted = "Доступ через /gameslot открыт!"
	TextGameSlotDenied  = "У вас нет доступа через /gameslot. Подпишитесь на канал и участвуйте в постбеках."
	TextStatusFailed    = "Не удалось проверить ваш статус."

	TextNotYet       = "Сначала подпишитесь на канал и участвуйте в обсуждении."
	TextTextFallback = "Напишите 'я зарегистрировался' после регистрации."

	BtnOpenGame       = "Открыть игру"
	BtnJoinDiscussion = "Присоединиться к обсуждению"
	BtnSubscribe      = "Подписаться на канал"

	// TriggerPhrase is compared after trimming and case folding.
	TriggerPhrase = "я зарегистрировался"
)

const (
	markYes = "✅"
	markNo  = "❌"
)

func mark(v bool) string {
	if v {
		return markYes
	}
	return markNo
}
