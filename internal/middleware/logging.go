package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// updateSource returns the update kind together with the chat and sender it came from.
func updateSource(update *models.Update) (kind string, chatID int64, from *models.User) {
	switch {
	case update.Message != nil:
		kind = "message"
		chatID = update.Message.Chat.ID
		from = update.Message.From
	case update.CallbackQuery != nil:
		kind = "callback_query"
		if update.CallbackQuery.Message.Message != nil {
			chatID = update.CallbackQuery.Message.Message.Chat.ID
		}
		from = &update.CallbackQuery.From
	default:
		kind = "unknown"
	}
	return kind, chatID, from
}

// Logging returns middleware that logs update processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			kind, chatID, from := updateSource(update)

			next(ctx, b, update)

			var userID int64
			if from != nil {
				userID = from.ID
			}
			slog.Debug("update processed",
				"type", kind,
				"chat_id", chatID,
				"user_id", userID,
				"duration", time.Since(start),
			)
		}
	}
}
