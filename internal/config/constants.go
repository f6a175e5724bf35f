package config

import "time"

const (
	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Rate limit per chat or API user
	RateLimitRequests = 20
	RateLimitWindow   = time.Minute

	// Stale rate limit rows are purged on this interval
	RateLimitPurgeInterval = 10 * time.Minute

	// Offers per page in /offers and GET /offers
	OffersPerPage = 5
	MaxPageSize   = 50

	// Rows shown in review and history lists
	ReviewQueueSize  = 10
	HistoryPageSize  = 20
	ReferralCodeSize = 8

	// Upper bound for stored offer descriptions after HTML cleanup
	MaxDescriptionLen = 2000

	// HTTP server timeouts
	HTTPReadTimeout     = 10 * time.Second
	HTTPWriteTimeout    = 15 * time.Second
	HTTPShutdownTimeout = 10 * time.Second
)
