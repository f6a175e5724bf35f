package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/middleware"
	"github.com/set-night/localdeals/internal/telegram"
)

// Deep link payload prefixes: t.me/<bot>?start=r_<code> and ?start=q_<offer id>.
const (
	startReferral = "r_"
	startQRScan   = "q_"
)

// startPayload splits a /start deep link into a referral code or a scanned offer.
func startPayload(text string) (referral string, scanned uuid.UUID) {
	_, payload, _ := strings.Cut(strings.TrimSpace(text), " ")
	payload = strings.TrimSpace(payload)
	switch {
	case strings.HasPrefix(payload, startQRScan):
		if id, err := uuid.Parse(strings.TrimPrefix(payload, startQRScan)); err == nil {
			return "", id
		}
	case strings.HasPrefix(payload, startReferral):
		return strings.ToUpper(strings.TrimPrefix(payload, startReferral)), uuid.Nil
	}
	return "", uuid.Nil
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	from := update.Message.From
	chatID := update.Message.Chat.ID
	referral, scanned := startPayload(update.Message.Text)

	profile, created, err := h.profiles.FindOrCreate(ctx, from.ID, from.FirstName, from.Username, referral, h.cfg.IsAdmin(from.ID))
	if err != nil {
		h.replyError(ctx, b, chatID, err, "start: find or create profile")
		return
	}
	if created {
		slog.Info("profile registered", "user_id", profile.ID, "telegram_id", from.ID, "role", profile.Role)
		h.tgLogger.LogRegistration(profile, referral)
	}
	ctx = middleware.WithProfile(ctx, profile)

	if scanned != uuid.Nil {
		h.recordScan(ctx, b, chatID, profile, scanned)
		return
	}

	text := fmt.Sprintf("👋 Hello, *%s*!\n\nFind the best local deals near you, save them for later and redeem them in store or online. Every scan and referral earns you points.\n\n%s",
		telegram.EscapeMarkdown(profile.DisplayName()), helpText(profile))
	h.reply(ctx, b, chatID, text, nil)
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.reply(ctx, b, update.Message.Chat.ID, helpText(middleware.GetProfile(ctx)), nil)
}

func (h *Handler) recordScan(ctx context.Context, b *bot.Bot, chatID int64, p *domain.Profile, offerID uuid.UUID) {
	head, err := h.rewards.RecordQRScan(ctx, p.Actor(), offerID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "record qr scan")
		return
	}
	h.reply(ctx, b, chatID, fmt.Sprintf("📷 Scan recorded! Your balance is now *%d* points.", head.CurrentPoints), nil)
}

func (h *Handler) handleReferral(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)
	if p == nil {
		h.reply(ctx, b, chatID, msgNotRegistered, nil)
		return
	}

	head, err := h.rewards.Summary(ctx, p.Actor())
	if err != nil {
		h.replyError(ctx, b, chatID, err, "referral: rewards summary")
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s%s", h.botUsername, startReferral, head.ReferralCode)
	text := fmt.Sprintf(
		"👥 *Invite friends*\n\nYour code: `%s`\nYour link:\n%s\n\nYou earn *%d* points for every friend who joins with your code.",
		head.ReferralCode, telegram.EscapeMarkdown(link), h.cfg.PointsReferral,
	)
	h.reply(ctx, b, chatID, text, nil)
}
