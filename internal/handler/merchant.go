package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/middleware"
	"github.com/set-night/localdeals/internal/telegram"
)

func (h *Handler) handleMyOffers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)
	if p == nil {
		h.reply(ctx, b, chatID, msgNotRegistered, nil)
		return
	}

	offers, err := h.catalog.ListOffersByMerchant(ctx, p.Actor(), p.ID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list merchant offers")
		return
	}
	if len(offers) == 0 {
		h.reply(ctx, b, chatID, "🏪 You have no offers yet. Post one with /newoffer.", nil)
		return
	}
	for i := range offers {
		h.reply(ctx, b, chatID, offerCard(&offers[i], true), merchantOfferKeyboard(&offers[i]))
	}
}

func (h *Handler) handleNewOffer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)
	cmd := parseCommand(update.Message.Text)

	if len(cmd.Fields) == 0 {
		h.reply(ctx, b, chatID, "Send the offer in one message:\n\n```\n/newoffer\n"+offerTemplate+"\n```", nil)
		return
	}
	in, err := cmd.offerInput()
	if err != nil {
		h.replyError(ctx, b, chatID, err, "parse offer")
		return
	}

	o, err := h.catalog.CreateOffer(ctx, actorOf(p), in)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "create offer")
		return
	}
	h.reply(ctx, b, chatID, "✅ Offer submitted for review.\n\n"+offerCard(o, true), nil)
	h.tgLogger.LogOfferSubmitted(o, p.DisplayName())
}

func (h *Handler) handleEditOffer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)
	cmd := parseCommand(update.Message.Text)

	offerID, err := uuid.Parse(cmd.arg(0))
	if err != nil || len(cmd.Fields) == 0 {
		h.reply(ctx, b, chatID, "Send the full offer with its id:\n\n```\n/editoffer <offer id>\n"+offerTemplate+"\n```", nil)
		return
	}
	in, err := cmd.offerInput()
	if err != nil {
		h.replyError(ctx, b, chatID, err, "parse offer")
		return
	}

	o, err := h.catalog.EditOffer(ctx, actorOf(p), offerID, in)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "edit offer")
		return
	}
	h.reply(ctx, b, chatID, "✏️ Offer updated.\n\n"+offerCard(o, true), merchantOfferKeyboard(o))
}

func (h *Handler) handleToggleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	p := middleware.GetProfile(ctx)
	_, offerID, err := callbackID(cq.Data)
	if err != nil {
		h.answer(ctx, b, cq, msgBadID, true)
		return
	}

	current, err := h.catalog.GetOffer(ctx, actorOf(p), offerID)
	if err != nil {
		h.answerError(ctx, b, cq, err, "get offer")
		return
	}
	o, err := h.catalog.SetActive(ctx, actorOf(p), offerID, !current.IsActive)
	if err != nil {
		h.answerError(ctx, b, cq, err, "toggle offer")
		return
	}

	text := "🙈 Offer hidden."
	if o.IsActive {
		text = "👁 Offer visible again."
	}
	h.answer(ctx, b, cq, text, false)
	if chatID, messageID, ok := callbackMessage(cq); ok {
		telegram.EditLongMessage(ctx, b, chatID, messageID, offerCard(o, true), merchantOfferKeyboard(o))
	}
}

func (h *Handler) handlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)
	if p == nil {
		h.reply(ctx, b, chatID, msgNotRegistered, nil)
		return
	}

	pending := domain.RedemptionPending
	list, err := h.redemptions.ListForMerchant(ctx, p.Actor(), p.ID, &pending)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list pending redemptions")
		return
	}
	if len(list) == 0 {
		h.reply(ctx, b, chatID, "✅ No redemptions waiting for you.", nil)
		return
	}
	for i := range list {
		r := &list[i]
		text := fmt.Sprintf("%s\nCode: `%s`", redemptionLine(r), shortCode(r.ID.String()))
		h.reply(ctx, b, chatID, text, redemptionDecisionKeyboard(r))
	}
}

func (h *Handler) handleRedemptionDecision(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	p := middleware.GetProfile(ctx)
	prefix, id, err := callbackID(cq.Data)
	if err != nil {
		h.answer(ctx, b, cq, msgBadID, true)
		return
	}

	decide := h.redemptions.ApproveRedemption
	if prefix == cbRejectRedeem {
		decide = h.redemptions.RejectRedemption
	}
	r, err := decide(ctx, actorOf(p), id)
	if err != nil {
		h.answerError(ctx, b, cq, err, "decide redemption")
		return
	}

	h.answer(ctx, b, cq, redemptionBadges[r.Status], false)
	if chatID, messageID, ok := callbackMessage(cq); ok {
		telegram.EditLongMessage(ctx, b, chatID, messageID, redemptionLine(r), nil)
	}
	h.notifyCustomer(ctx, b, r)
	h.tgLogger.LogRedemption(r, r.Offer.Title)
}

func (h *Handler) notifyCustomer(ctx context.Context, b *bot.Bot, r *domain.Redemption) {
	customer, err := h.profiles.Get(ctx, r.UserID)
	if err != nil || customer.TelegramID == nil {
		return
	}
	text := fmt.Sprintf("🎫 Your redemption of *%s* was %s.", telegram.EscapeMarkdown(r.Offer.Title), r.Status)
	h.reply(ctx, b, *customer.TelegramID, text, nil)
}

func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)
	if p == nil {
		h.reply(ctx, b, chatID, msgNotRegistered, nil)
		return
	}

	stats, err := h.catalog.MerchantStats(ctx, p.Actor(), p.ID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "merchant stats")
		return
	}
	h.reply(ctx, b, chatID, statsText(stats, p), nil)
}
