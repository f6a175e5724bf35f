package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/middleware"
	"github.com/set-night/localdeals/internal/telegram"
)

func (h *Handler) handleOffers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	f := browseFilter(parseCommand(update.Message.Text).Args)
	h.sendOffersPage(ctx, b, update.Message.Chat.ID, 0, f)
}

func (h *Handler) handleOffersPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	page, f, err := parseOffersPageData(cq.Data)
	chatID, _, ok := callbackMessage(cq)
	if err != nil || !ok {
		h.answer(ctx, b, cq, "", false)
		return
	}
	h.answer(ctx, b, cq, "", false)
	h.sendOffersPage(ctx, b, chatID, page, f)
}

// sendOffersPage sends one card per visible offer followed by page navigation.
func (h *Handler) sendOffersPage(ctx context.Context, b *bot.Bot, chatID int64, page int, f domain.OfferFilter) {
	query := f
	query.Limit = config.OffersPerPage + 1
	query.Offset = page * config.OffersPerPage

	offers, err := h.catalog.ListVisibleOffers(ctx, query)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list visible offers")
		return
	}
	if len(offers) == 0 {
		text := "🔍 No offers match your search right now."
		if page > 0 {
			text = "🔍 No more offers."
		}
		h.reply(ctx, b, chatID, text, nil)
		return
	}

	hasNext := len(offers) > config.OffersPerPage
	if hasNext {
		offers = offers[:config.OffersPerPage]
	}
	for i := range offers {
		o := &offers[i]
		if err := telegram.SendPhotoURL(ctx, b, chatID, o.ImageURL, offerCard(o, false), customerOfferKeyboard(o)); err != nil {
			slog.Error("send offer card", "error", err, "offer_id", o.ID)
		}
	}

	if page > 0 || hasNext {
		nav := telegram.PaginationRow(page, hasNext, func(p int) string { return offersPageData(p, f) })
		h.reply(ctx, b, chatID, fmt.Sprintf("📄 Page %d", page+1), telegram.InlineKeyboard(nav))
	}
}

func (h *Handler) handleSaveCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	if _, err := h.saves.SaveOffer(ctx, actorOf(p), offerID); err != nil {
		h.answerError(ctx, b, cq, err, "save offer")
		return
	}
	h.answer(ctx, b, cq, "🔖 Saved! See /saved", false)
}

func (h *Handler) handleUnsaveCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	p := middleware.GetProfile(ctx)
	_, savedID, err := callbackID(cq.Data)
	if err != nil {
		h.answer(ctx, b, cq, msgBadID, true)
		return
	}

	removed, err := h.saves.RemoveSavedOffer(ctx, actorOf(p), savedID)
	if err != nil {
		h.answerError(ctx, b, cq, err, "remove saved offer")
		return
	}
	text := "🗑 Removed from saved offers."
	if !removed {
		text = "Already removed."
	}
	h.answer(ctx, b, cq, text, false)
	clearKeyboard(ctx, b, cq)
}

func (h *Handler) handleRedeemCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	r, err := h.redemptions.RedeemOffer(ctx, actorOf(p), offerID)
	if err != nil {
		h.answerError(ctx, b, cq, err, "redeem offer")
		return
	}
	h.answer(ctx, b, cq, "🎫 Redemption requested!", false)

	if chatID, _, ok := callbackMessage(cq); ok {
		h.reply(ctx, b, chatID, fmt.Sprintf(
			"🎫 *Redemption requested*\n\n*%s*\nShow this code to the merchant: `%s`\nYou will be notified when it is confirmed.",
			telegram.EscapeMarkdown(r.Offer.Title), shortCode(r.ID.String())), nil)
	}
	h.notifyMerchant(ctx, b, r, p)
	h.tgLogger.LogRedemption(r, r.Offer.Title)
}

// notifyMerchant forwards a new redemption to the offer owner for a decision.
func (h *Handler) notifyMerchant(ctx context.Context, b *bot.Bot, r *domain.Redemption, customer *domain.Profile) {
	owner, err := h.profiles.Get(ctx, r.Offer.MerchantID)
	if err != nil {
		slog.Warn("load offer owner", "error", err, "merchant_id", r.Offer.MerchantID)
		return
	}
	if owner.TelegramID == nil {
		return
	}
	text := fmt.Sprintf("🎫 *New redemption*\n\n*%s*\nCustomer: %s\nCode: `%s`",
		telegram.EscapeMarkdown(r.Offer.Title), telegram.EscapeMarkdown(customer.DisplayName()), shortCode(r.ID.String()))
	h.reply(ctx, b, *owner.TelegramID, text, redemptionDecisionKeyboard(r))
}

func shortCode(id string) string {
	return strings.ToUpper(id[:8])
}

func (h *Handler) handleSaved(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)

	saved, err := h.saves.ListSaved(ctx, actorOf(p))
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list saved offers")
		return
	}
	if len(saved) == 0 {
		h.reply(ctx, b, chatID, "🔖 You have no saved offers yet. Browse with /offers.", nil)
		return
	}

	for _, s := range saved {
		kb := telegram.InlineKeyboard(telegram.ButtonRow(
			telegram.InlineButton("🎫 Redeem", cbRedeem+":"+s.OfferID.String()),
			telegram.InlineButton("🗑 Remove", cbUnsave+":"+s.ID.String()),
		))
		h.reply(ctx, b, chatID, offerCard(s.Offer, false), kb)
	}
}

func (h *Handler) handleRedemptions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	p := middleware.GetProfile(ctx)

	list, err := h.redemptions.ListForUser(ctx, actorOf(p))
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list redemptions")
		return
	}
	if len(list) == 0 {
		h.reply(ctx, b, chatID, "🎫 You have not redeemed any offers yet.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("🎫 *Your redemptions*\n\n")
	for i := range list {
		if i == config.HistoryPageSize {
			break
		}
		sb.WriteString(redemptionLine(&list[i]) + "\n")
	}
	h.reply(ctx, b, chatID, sb.String(), nil)
}

// actorOf returns the service actor for a loaded profile, or nil.
func actorOf(p *domain.Profile) *domain.Actor {
	if p == nil {
		return nil
	}
	return p.Actor()
}
