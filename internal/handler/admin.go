package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/middleware"
	"github.com/set-night/localdeals/internal/telegram"
)

// adminProfile returns the caller when it is a super admin. Other callers
// get no reply, the same as an unknown command.
func adminProfile(ctx context.Context) *domain.Profile {
	p := middleware.GetProfile(ctx)
	if p == nil || !p.Actor().IsSuperAdmin() {
		return nil
	}
	return p
}

func (h *Handler) handleReview(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	p := adminProfile(ctx)
	if p == nil {
		return
	}
	chatID := update.Message.Chat.ID

	queue, err := h.catalog.ReviewQueue(ctx, p.Actor(), 0)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "review queue")
		return
	}
	if len(queue) == 0 {
		h.reply(ctx, b, chatID, "✅ Nothing waiting for review.", nil)
		return
	}
	for i := range queue {
		h.reply(ctx, b, chatID, offerCard(&queue[i], true), reviewKeyboard(&queue[i]))
	}
}

func (h *Handler) handleOfferDecision(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	p := middleware.GetProfile(ctx)
	prefix, offerID, err := callbackID(cq.Data)
	if err != nil {
		h.answer(ctx, b, cq, msgBadID, true)
		return
	}

	to := domain.OfferApproved
	if prefix == cbRejectOffer {
		to = domain.OfferRejected
	}
	o, err := h.admin.AdminUpdateOfferStatus(ctx, actorOf(p), offerID, to)
	if err != nil {
		h.answerError(ctx, b, cq, err, "moderate offer")
		return
	}

	h.answer(ctx, b, cq, statusBadges[o.Status], false)
	if chatID, messageID, ok := callbackMessage(cq); ok {
		telegram.EditLongMessage(ctx, b, chatID, messageID, offerCard(o, true), nil)
	}
	h.tgLogger.LogOfferDecision(o, p.DisplayName())

	if owner, err := h.profiles.Get(ctx, o.MerchantID); err == nil && owner.TelegramID != nil {
		h.reply(ctx, b, *owner.TelegramID, fmt.Sprintf("🛂 Your offer *%s* was %s.", telegram.EscapeMarkdown(o.Title), o.Status), nil)
	}
}

func (h *Handler) handleAddMerchant(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	p := adminProfile(ctx)
	if p == nil {
		return
	}
	chatID := update.Message.Chat.ID
	cmd := parseCommand(update.Message.Text)

	telegramID, err := strconv.ParseInt(cmd.arg(0), 10, 64)
	if err != nil || len(cmd.Fields) == 0 {
		h.reply(ctx, b, chatID, "Usage:\n\n```\n/addmerchant <telegram id>\nstore: Kumar Textiles\nname: Ravi Kumar\nlocation: RS Puram\ndistrict: coimbatore\ncity: Coimbatore\nplan: silver | gold | platinum\npremium: no\n```", nil)
		return
	}
	in, err := cmd.merchantInput(telegramID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "parse merchant")
		return
	}

	m, err := h.profiles.RegisterMerchant(ctx, p.Actor(), in)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "register merchant")
		return
	}
	h.tgLogger.LogRegistration(m, "")
	h.reply(ctx, b, chatID, fmt.Sprintf("🏪 Merchant *%s* registered.\n🆔 `%s`\n⭐ Plan: %s",
		telegram.EscapeMarkdown(m.StoreName), m.ID, m.CurrentPlan.Label()), nil)
}

func (h *Handler) handleSetPlan(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	p := adminProfile(ctx)
	if p == nil {
		return
	}
	chatID := update.Message.Chat.ID
	cmd := parseCommand(update.Message.Text)

	merchantID, err := uuid.Parse(cmd.arg(0))
	if err != nil || len(cmd.Args) < 2 {
		h.reply(ctx, b, chatID, "Usage: /setplan <merchant id> <none|silver|gold|platinum> [premium]", nil)
		return
	}
	raw := cmd.arg(1)
	if strings.EqualFold(raw, "none") {
		raw = ""
	}
	plan, err := domain.ParsePlan(raw)
	if err != nil {
		h.reply(ctx, b, chatID, "❌ "+err.Error(), nil)
		return
	}

	m, err := h.profiles.SetPlan(ctx, p.Actor(), merchantID, plan, parseBool(cmd.arg(2)))
	if err != nil {
		h.replyError(ctx, b, chatID, err, "set plan")
		return
	}
	text := fmt.Sprintf("⭐ *%s* is now on %s (%d offers / month).", telegram.EscapeMarkdown(m.DisplayName()), m.CurrentPlan.Label(), m.CurrentPlan.MonthlyOfferLimit())
	if m.IsPremium {
		text += "\nPremium listings enabled."
	}
	h.reply(ctx, b, chatID, text, nil)
}

func (h *Handler) handleAdminOffer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	p := adminProfile(ctx)
	if p == nil {
		return
	}
	chatID := update.Message.Chat.ID
	cmd := parseCommand(update.Message.Text)

	merchantID, err := uuid.Parse(cmd.arg(0))
	if err != nil || len(cmd.Fields) == 0 {
		h.reply(ctx, b, chatID, "Send the offer with the merchant id:\n\n```\n/adminoffer <merchant id>\n"+offerTemplate+"\n```", nil)
		return
	}
	in, err := cmd.offerInput()
	if err != nil {
		h.replyError(ctx, b, chatID, err, "parse offer")
		return
	}

	o, err := h.admin.AdminCreateOffer(ctx, p.Actor(), merchantID, in)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "admin create offer")
		return
	}
	h.reply(ctx, b, chatID, "✅ Offer published.\n\n"+offerCard(o, true), nil)
}

func (h *Handler) handleNewReward(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	p := adminProfile(ctx)
	if p == nil {
		return
	}
	chatID := update.Message.Chat.ID
	cmd := parseCommand(update.Message.Text)

	if len(cmd.Fields) == 0 {
		h.reply(ctx, b, chatID, "Usage:\n\n```\n/newreward\ntitle: Free Coffee\npoints: 150\nmax: 100\nexpiry: 2026-12-31\ndescription: Any size, any branch\n```", nil)
		return
	}
	in, err := cmd.rewardInput()
	if err != nil {
		h.replyError(ctx, b, chatID, err, "parse reward")
		return
	}

	r, err := h.rewards.CreateRewardOffer(ctx, p.Actor(), in)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "create reward offer")
		return
	}
	h.reply(ctx, b, chatID, "✅ Reward added.\n\n"+rewardOfferCard(r, time.Now()), nil)
}

func (h *Handler) handleAdjust(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	p := adminProfile(ctx)
	if p == nil {
		return
	}
	chatID := update.Message.Chat.ID
	cmd := parseCommand(update.Message.Text)

	userID, err := uuid.Parse(cmd.arg(0))
	delta, deltaErr := strconv.ParseInt(cmd.arg(1), 10, 64)
	if err != nil || deltaErr != nil {
		h.reply(ctx, b, chatID, "Usage: /adjust <user id> <+/-points> [reason]", nil)
		return
	}
	reason := strings.Join(cmd.Args[2:], " ")

	head, err := h.rewards.AdjustPoints(ctx, p.Actor(), userID, delta, reason)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "adjust points")
		return
	}
	h.reply(ctx, b, chatID, fmt.Sprintf("💰 Balance is now *%d* points (%s).", head.CurrentPoints, head.LevelName), nil)
}
