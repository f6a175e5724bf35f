package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/repository"
)

const rateLimitedText = "⏳ Too many requests. Please wait a minute and try again."

// RateLimit returns middleware that enforces a fixed-window limit per chat.
// Storage failures let the update through.
func RateLimit(store repository.Querier) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			_, chatID, _ := updateSource(update)
			if chatID == 0 {
				next(ctx, b, update)
				return
			}

			count, err := store.HitRateLimit(ctx, fmt.Sprintf("chat:%d", chatID), config.RateLimitWindow)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "chat_id", chatID)
				next(ctx, b, update)
				return
			}

			if count > config.RateLimitRequests {
				slog.Debug("rate limited", "chat_id", chatID, "count", count, "limit", config.RateLimitRequests)
				if update.CallbackQuery != nil {
					b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
						CallbackQueryID: update.CallbackQuery.ID,
						Text:            rateLimitedText,
					})
					return
				}
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   rateLimitedText,
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
