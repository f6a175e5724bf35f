package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/config"
)

const MaxMessageLen = config.MaxTelegramMessageLen

// MaxCaptionLen is the photo caption limit.
const MaxCaptionLen = 1024

// SendLongMessage sends a potentially long message, splitting it into parts if needed.
// The keyboard is attached to the last part. Falls back to plain text if
// Markdown parsing fails.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) error {
	text = FixMarkdown(text)
	parts := SplitMessage(text, MaxMessageLen)

	for i, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if i == len(parts)-1 && markup != nil {
			params.ReplyMarkup = markup
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			if _, err = b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}

	return nil
}

// EditLongMessage replaces the text and keyboard of a message.
func EditLongMessage(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, markup models.ReplyMarkup) error {
	text = FixMarkdown(text)
	if len([]rune(text)) > MaxMessageLen {
		text = string([]rune(text)[:MaxMessageLen-3]) + "..."
	}

	params := &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: markup,
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		params.ParseMode = ""
		if _, err = b.EditMessageText(ctx, params); err != nil {
			return fmt.Errorf("edit message: %w", err)
		}
	}
	return nil
}

// SendPhotoURL sends a photo by URL with a caption and keyboard. Captions over
// the Telegram limit, or a photo Telegram refuses to fetch, fall back to a
// text message.
func SendPhotoURL(ctx context.Context, b *bot.Bot, chatID int64, url, caption string, markup models.ReplyMarkup) error {
	if url == "" || len([]rune(caption)) > MaxCaptionLen {
		return SendLongMessage(ctx, b, chatID, caption, markup)
	}

	_, err := b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileString{Data: url},
		Caption:     FixMarkdown(caption),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: markup,
	})
	if err != nil {
		slog.Warn("send photo failed, sending text", "error", err, "url", url)
		return SendLongMessage(ctx, b, chatID, caption, markup)
	}
	return nil
}
