package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/service"
)

type ctxKey string

const ProfileKey ctxKey = "profile"

// GetProfile extracts the caller's profile from context.
func GetProfile(ctx context.Context) *domain.Profile {
	p, ok := ctx.Value(ProfileKey).(*domain.Profile)
	if !ok {
		return nil
	}
	return p
}

// WithProfile stores p in ctx.
func WithProfile(ctx context.Context, p *domain.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, p)
}

// UserLoader returns middleware that resolves the sender into a profile.
// Private chats only; first contact registers a customer account.
func UserLoader(profiles *service.ProfileService, cfg interface{ IsAdmin(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			_, _, from := updateSource(update)
			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			// /start payloads are handled by the start command so the referral is applied.
			if update.Message != nil && isStartCommand(update.Message.Text) {
				next(ctx, b, update)
				return
			}

			profile, _, err := profiles.FindOrCreate(ctx, from.ID, from.FirstName, from.Username, "", cfg.IsAdmin(from.ID))
			if err != nil {
				slog.Error("load profile", "error", err, "telegram_id", from.ID)
			} else {
				ctx = WithProfile(ctx, profile)
			}

			next(ctx, b, update)
		}
	}
}

func isStartCommand(text string) bool {
	return text == "/start" || strings.HasPrefix(text, "/start ")
}
