package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/domain"
)

// TelegramLogger mirrors notable marketplace events into topics of an ops chat.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
	LogTypeOfferReview  LogType = "offerReview"
	LogTypeRedemption   LogType = "redemption"
	LogTypeRewards      LogType = "rewards"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            FixMarkdown(message),
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogRegistration(p *domain.Profile, referralCode string) {
	msg := fmt.Sprintf("👤 *New %s*\n\n*Name:* %s\n*Username:* @%s",
		p.Role, EscapeMarkdown(p.DisplayName()), EscapeMarkdown(p.Username))
	if p.TelegramID != nil {
		msg += fmt.Sprintf("\n*Telegram ID:* `%d`", *p.TelegramID)
	}
	if referralCode != "" {
		msg += fmt.Sprintf("\n*Referral code:* `%s`", referralCode)
	}
	l.Log(LogTypeRegistration, msg)
}

func (l *TelegramLogger) LogOfferSubmitted(o *domain.Offer, merchant string) {
	msg := fmt.Sprintf("🆕 *Offer Awaiting Review*\n\n*Title:* %s\n*Merchant:* %s\n*Listing:* %s\n*Discount:* %d%%\n*ID:* `%s`",
		EscapeMarkdown(o.Title), EscapeMarkdown(merchant), o.ListingType, o.DiscountPercentage, o.ID)
	l.Log(LogTypeOfferReview, msg)
}

func (l *TelegramLogger) LogOfferDecision(o *domain.Offer, admin string) {
	msg := fmt.Sprintf("🛂 *Offer %s*\n\n*Title:* %s\n*By:* %s\n*ID:* `%s`",
		o.Status, EscapeMarkdown(o.Title), EscapeMarkdown(admin), o.ID)
	l.Log(LogTypeOfferReview, msg)
}

func (l *TelegramLogger) LogRedemption(r *domain.Redemption, offerTitle string) {
	msg := fmt.Sprintf("🎫 *Redemption %s*\n\n*Offer:* %s\n*User:* `%s`\n*ID:* `%s`",
		r.Status, EscapeMarkdown(offerTitle), r.UserID, r.ID)
	l.Log(LogTypeRedemption, msg)
}

func (l *TelegramLogger) LogRewardRedemption(r *domain.RewardRedemption, balance int64) {
	msg := fmt.Sprintf("🎁 *Reward Redeemed*\n\n*Reward:* `%s`\n*User:* `%s`\n*Points:* %d\n*Balance left:* %d",
		r.RewardOfferID, r.UserID, r.PointsSpent, balance)
	l.Log(LogTypeRewards, msg)
}

func (l *TelegramLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypeOfferReview:
		return l.cfg.LogTopicOfferReview
	case LogTypeRedemption:
		return l.cfg.LogTopicRedemption
	case LogTypeRewards:
		return l.cfg.LogTopicRewards
	default:
		return 0
	}
}
