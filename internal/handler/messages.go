package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/telegram"
)

const (
	msgNotRegistered = "⚠️ Could not load your account. Please send /start and try again."
	msgInternal      = "❌ Something went wrong. Please try again later."
	msgBadID         = "❌ That id does not look right."
)

// errorMessages maps each business error to the text shown to the user.
var errorMessages = []struct {
	err  error
	text string
}{
	{domain.ErrUnauthenticated, msgNotRegistered},
	{domain.ErrForbidden, "🚫 Your account cannot do that."},
	{domain.ErrAlreadySaved, "🔖 This offer is already in your saved list."},
	{domain.ErrAlreadyRedeemed, "🎫 You have already redeemed this offer."},
	{domain.ErrSimilarAlreadyRedeemed, "🎫 You already redeemed a similar offer."},
	{domain.ErrOfferUnavailable, "⌛ This offer is no longer available."},
	{domain.ErrOfferNotFound, "🔍 Offer not found."},
	{domain.ErrInvalidOffer, "❌ Offer details are invalid."},
	{domain.ErrListingTypeNotAllowed, "⭐ Your plan does not include this listing type. Upgrade to Gold or Platinum for Hot Offers and Trending."},
	{domain.ErrOfferLimitReached, "📈 You have reached this month's offer limit for your plan."},
	{domain.ErrInvalidTransition, "↩️ This has already been decided."},
	{domain.ErrRedemptionNotFound, "🔍 Redemption not found."},
	{domain.ErrSavedOfferNotFound, "🔍 Saved offer not found."},
	{domain.ErrProfileNotFound, "🔍 Account not found."},
	{domain.ErrInvalidProfile, "❌ Account details are invalid."},
	{domain.ErrRoleImmutable, "👤 That Telegram account is already registered."},
	{domain.ErrInsufficientPoints, "💰 You do not have enough points for this reward."},
	{domain.ErrSoldOut, "📦 This reward is sold out."},
	{domain.ErrExpired, "⌛ This reward has expired."},
	{domain.ErrRewardOfferNotFound, "🔍 Reward not found."},
	{domain.ErrInvalidReferral, "❌ Invalid referral code."},
	{domain.ErrAlreadyScanned, "📷 You already collected points for this offer."},
	{domain.ErrInvalidReward, "❌ Reward details are invalid."},
	{domain.ErrRateLimited, "⏳ Too many requests. Please wait a minute and try again."},
}

var validationErrors = map[error]bool{
	domain.ErrInvalidOffer:   true,
	domain.ErrInvalidReward:  true,
	domain.ErrInvalidProfile: true,
}

// errorText returns the user-facing text for err. Validation errors keep
// their detail so the user can fix the input.
func errorText(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			if validationErrors[m.err] && strings.HasPrefix(err.Error(), m.err.Error()+": ") {
				return "❌ " + err.Error()
			}
			return m.text
		}
	}
	return msgInternal
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	if err := telegram.SendLongMessage(ctx, b, chatID, text, markup); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

// replyError reports err to the chat. Store failures are logged and mirrored
// to the ops chat; business errors are not.
func (h *Handler) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error, op string) {
	if domain.IsStoreError(err) {
		slog.Error(op, "error", err, "chat_id", chatID)
		h.tgLogger.LogError(err, op)
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   errorText(err),
	})
}

// answer acknowledges a callback query, optionally as an alert popup.
func (h *Handler) answer(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// answerError acknowledges a callback with the text for err.
func (h *Handler) answerError(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, err error, op string) {
	if domain.IsStoreError(err) {
		slog.Error(op, "error", err, "user_id", cq.From.ID)
		h.tgLogger.LogError(err, op)
	}
	h.answer(ctx, b, cq, errorText(err), true)
}

// callbackMessage returns the chat and message a callback button belongs to.
func callbackMessage(cq *models.CallbackQuery) (chatID int64, messageID int, ok bool) {
	if cq.Message.Message == nil {
		return 0, 0, false
	}
	return cq.Message.Message.Chat.ID, cq.Message.Message.ID, true
}

// clearKeyboard removes the inline keyboard from the message a callback came from.
func clearKeyboard(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery) {
	chatID, messageID, ok := callbackMessage(cq)
	if !ok {
		return
	}
	b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: telegram.InlineKeyboard(),
	})
}
