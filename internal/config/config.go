package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Database pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	// Admin: Telegram ids that become super_admin on first contact
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// HTTP API
	Port        int  `env:"PORT" envDefault:"3000"`
	HTTPEnabled bool `env:"HTTP_ENABLED" envDefault:"true"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Marketplace rules
	EnforcePlanOfferLimit bool  `env:"ENFORCE_PLAN_OFFER_LIMIT" envDefault:"true"`
	PointsReferral        int64 `env:"POINTS_REFERRAL" envDefault:"100"`
	PointsQRScan          int64 `env:"POINTS_QR_SCAN" envDefault:"10"`

	// Telegram logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
	LogTopicOfferReview  int   `env:"LOG_TOPIC_OFFER_REVIEW"`
	LogTopicRedemption   int   `env:"LOG_TOPIC_REDEMPTION"`
	LogTopicRewards      int   `env:"LOG_TOPIC_REWARDS"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.PointsReferral < 0 || cfg.PointsQRScan < 0 {
		return nil, fmt.Errorf("parse config: point awards must not be negative")
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	return slices.Contains(c.AdminIDs, telegramID)
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
