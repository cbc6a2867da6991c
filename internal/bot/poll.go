package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sink consumes raw updates. Satisfied by webhook.Dispatcher, so polling
// and webhook delivery share one classification and handling path.
type Sink interface {
	Dispatch(ctx context.Context, update tgbotapi.Update)
}

// Poll consumes updates via long polling until ctx is cancelled. Used
// for local development when no public URL is configured.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, sink Sink) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "chat_join_request"}
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			sink.Dispatch(ctx, update)
		}
	}
}
