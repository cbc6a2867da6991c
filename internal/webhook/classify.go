package webhook

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"funnel-bot/internal/domain"
)

// Classify maps a raw Telegram update onto exactly one event kind. The
// second return is false for update kinds this bot does not act on;
// those are dropped, not errors.
func Classify(u *tgbotapi.Update) (domain.Event, bool) {
	switch {
	case u.ChatJoinRequest != nil:
		return domain.Event{
			Kind: domain.EventJoinRequest,
			User: domain.UserID(u.ChatJoinRequest.From.ID),
		}, true

	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.From == nil {
			return domain.Event{}, false
		}
		ev := domain.Event{
			Kind:         domain.EventCallback,
			User:         domain.UserID(cb.From.ID),
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
		}
		// Messages older than 48h are not returned with the callback;
		// the handler then answers the query but skips the edit.
		if cb.Message != nil && cb.Message.Chat != nil {
			ev.ChatID = cb.Message.Chat.ID
			ev.MessageID = cb.Message.MessageID
		}
		return ev, true

	case u.Message != nil && u.Message.From != nil && u.Message.Chat != nil:
		m := u.Message
		if m.IsCommand() && m.Command() == "start" {
			return domain.Event{
				Kind:    domain.EventStart,
				User:    domain.UserID(m.From.ID),
				ChatID:  m.Chat.ID,
				Payload: m.CommandArguments(),
				Name:    m.From.FirstName,
			}, true
		}
		if len(m.Photo) > 0 || m.Document != nil {
			return domain.Event{
				Kind:   domain.EventProof,
				User:   domain.UserID(m.From.ID),
				ChatID: m.Chat.ID,
			}, true
		}
	}
	return domain.Event{}, false
}
