package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/middleware"
	"github.com/set-night/localdeals/internal/telegram"
)

func (h *Handler) handlePoints(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	actor := actorOf(middleware.GetProfile(ctx))

	head, err := h.rewards.Summary(ctx, actor)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "rewards summary")
		return
	}
	history, err := h.rewards.History(ctx, actor, config.HistoryPageSize)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "rewards history")
		return
	}
	h.reply(ctx, b, chatID, rewardSummaryText(head, history), nil)
}

func (h *Handler) handleRewards(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	offers, err := h.rewards.ListRewardOffers(ctx)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list reward offers")
		return
	}
	if len(offers) == 0 {
		h.reply(ctx, b, chatID, "🎁 No rewards available right now. Check back soon!", nil)
		return
	}

	now := time.Now()
	for i := range offers {
		r := &offers[i]
		kb := telegram.InlineKeyboard(telegram.ButtonRow(
			telegram.InlineButton(fmt.Sprintf("🎁 Redeem for %d", r.PointsRequired), cbRedeemReward+":"+r.ID.String()),
		))
		h.reply(ctx, b, chatID, rewardOfferCard(r, now), kb)
	}
}

func (h *Handler) handleRewardCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	p := middleware.GetProfile(ctx)
	_, rewardID, err := callbackID(cq.Data)
	if err != nil {
		h.answer(ctx, b, cq, msgBadID, true)
		return
	}

	redemption, head, err := h.rewards.RedeemRewardOffer(ctx, actorOf(p), rewardID)
	if err != nil {
		h.answerError(ctx, b, cq, err, "redeem reward")
		return
	}
	h.answer(ctx, b, cq, fmt.Sprintf("🎁 Redeemed! %d points left.", head.CurrentPoints), true)

	if chatID, messageID, ok := callbackMessage(cq); ok {
		telegram.EditLongMessage(ctx, b, chatID, messageID,
			fmt.Sprintf("✅ Redeemed\n\nCode: `%s`\nBalance: *%d* points", shortCode(redemption.ID.String()), head.CurrentPoints), nil)
	}
	h.tgLogger.LogRewardRedemption(redemption, head.CurrentPoints)
}
