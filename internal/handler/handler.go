package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/service"
	"github.com/set-night/localdeals/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	profiles    *service.ProfileService
	catalog     *service.CatalogService
	admin       *service.AdminService
	saves       *service.SaveService
	redemptions *service.RedemptionService
	rewards     *service.RewardsService
	tgLogger    *telegram.TelegramLogger
	botUsername string
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	Profiles    *service.ProfileService
	Catalog     *service.CatalogService
	Admin       *service.AdminService
	Saves       *service.SaveService
	Redemptions *service.RedemptionService
	Rewards     *service.RewardsService
	TgLogger    *telegram.TelegramLogger
	BotUsername string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		profiles:    deps.Profiles,
		catalog:     deps.Catalog,
		admin:       deps.Admin,
		saves:       deps.Saves,
		redemptions: deps.Redemptions,
		rewards:     deps.Rewards,
		tgLogger:    deps.TgLogger,
		botUsername: deps.BotUsername,
	}
}
