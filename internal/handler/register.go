package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Callback data prefixes. Each is followed by ":" and a UUID or page number.
const (
	cbOffersPage    = "of"
	cbSave          = "save"
	cbUnsave        = "unsave"
	cbRedeem        = "redeem"
	cbApproveRedeem = "rdm_ok"
	cbRejectRedeem  = "rdm_no"
	cbApproveOffer  = "off_ok"
	cbRejectOffer   = "off_no"
	cbToggleOffer   = "toggle"
	cbRedeemReward  = "reward"
	cbNoop          = "noop"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Everyone
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, h.handleHelp)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/offers", bot.MatchTypePrefix, h.handleOffers)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/saved", bot.MatchTypePrefix, h.handleSaved)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/redemptions", bot.MatchTypePrefix, h.handleRedemptions)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/points", bot.MatchTypePrefix, h.handlePoints)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rewards", bot.MatchTypePrefix, h.handleRewards)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/referral", bot.MatchTypePrefix, h.handleReferral)

	// Merchants
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myoffers", bot.MatchTypePrefix, h.handleMyOffers)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newoffer", bot.MatchTypePrefix, h.handleNewOffer)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/editoffer", bot.MatchTypePrefix, h.handleEditOffer)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypePrefix, h.handlePending)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.handleStats)

	// Admins
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/review", bot.MatchTypePrefix, h.handleReview)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addmerchant", bot.MatchTypePrefix, h.handleAddMerchant)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/setplan", bot.MatchTypePrefix, h.handleSetPlan)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/adminoffer", bot.MatchTypePrefix, h.handleAdminOffer)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newreward", bot.MatchTypePrefix, h.handleNewReward)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/adjust", bot.MatchTypePrefix, h.handleAdjust)

	// Offer callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbOffersPage+":", bot.MatchTypePrefix, h.handleOffersPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbSave+":", bot.MatchTypePrefix, h.handleSaveCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbUnsave+":", bot.MatchTypePrefix, h.handleUnsaveCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbRedeem+":", bot.MatchTypePrefix, h.handleRedeemCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbToggleOffer+":", bot.MatchTypePrefix, h.handleToggleCallback)

	// Decision callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbApproveRedeem+":", bot.MatchTypePrefix, h.handleRedemptionDecision)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbRejectRedeem+":", bot.MatchTypePrefix, h.handleRedemptionDecision)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbApproveOffer+":", bot.MatchTypePrefix, h.handleOfferDecision)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbRejectOffer+":", bot.MatchTypePrefix, h.handleOfferDecision)

	// Rewards callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbRedeemReward+":", bot.MatchTypePrefix, h.handleRewardCallback)

	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbNoop, bot.MatchTypeExact, h.handleNoop)
}

// handleNoop acknowledges callbacks from non-interactive buttons such as page indicators.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

// HandleUnknown answers private messages that no registered handler matched.
func (h *Handler) HandleUnknown(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.handleHelp(ctx, b, update)
}
