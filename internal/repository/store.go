package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
)

// Querier is the data-access surface used by the services. Uniqueness of
// saves and non-premium redemptions, and the non-negative points balance,
// are enforced by implementations at the data layer.
type Querier interface {
	// Profiles
	CreateProfile(ctx context.Context, p *domain.Profile) error
	GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	// GetProfileForUpdate also locks the row until the transaction ends.
	GetProfileForUpdate(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetProfileByTelegramID(ctx context.Context, telegramID int64) (*domain.Profile, error)
	UpdateProfilePlan(ctx context.Context, id uuid.UUID, plan domain.Plan, premium bool) error

	// Offers
	CreateOffer(ctx context.Context, o *domain.Offer) error
	UpdateOfferContent(ctx context.Context, o *domain.Offer) error
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	ListVisibleOffers(ctx context.Context, f domain.OfferFilter, now time.Time) ([]domain.Offer, error)
	ListOffersByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Offer, error)
	ListOffersByStatus(ctx context.Context, status domain.OfferStatus, limit int) ([]domain.Offer, error)
	UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to domain.OfferStatus) error
	SetOfferActive(ctx context.Context, id uuid.UUID, active bool) error
	CountOffersCreatedSince(ctx context.Context, merchantID uuid.UUID, since time.Time) (int, error)

	// Saved offers
	InsertSavedOffer(ctx context.Context, s *domain.SavedOffer) error
	DeleteSavedOffer(ctx context.Context, id, userID uuid.UUID) (bool, error)
	DeleteSavedOfferByPair(ctx context.Context, userID, offerID uuid.UUID) error
	ListSavedOffers(ctx context.Context, userID uuid.UUID) ([]domain.SavedOffer, error)

	// Redemptions
	RedemptionExists(ctx context.Context, userID, offerID uuid.UUID) (bool, error)
	ListRedeemedOfferTitles(ctx context.Context, userID uuid.UUID) ([]string, error)
	InsertRedemption(ctx context.Context, r *domain.Redemption) error
	GetRedemption(ctx context.Context, id uuid.UUID) (*domain.Redemption, error)
	UpdateRedemptionStatus(ctx context.Context, id uuid.UUID, from, to domain.RedemptionStatus) error
	ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Redemption, error)
	ListRedemptionsByMerchant(ctx context.Context, merchantID uuid.UUID, status *domain.RedemptionStatus) ([]domain.Redemption, error)
	GetMerchantStats(ctx context.Context, merchantID uuid.UUID) (domain.MerchantStats, error)

	// Rewards
	CreateUserReward(ctx context.Context, r *domain.UserReward) error
	GetUserReward(ctx context.Context, userID uuid.UUID) (*domain.UserReward, error)
	GetUserRewardByReferralCode(ctx context.Context, code string) (*domain.UserReward, error)
	ApplyPoints(ctx context.Context, e domain.PointsEntry, now time.Time) (*domain.UserReward, error)
	ListRewardActivities(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardActivity, error)
	CreateRewardOffer(ctx context.Context, r *domain.RewardOffer) error
	GetRewardOfferForUpdate(ctx context.Context, id uuid.UUID) (*domain.RewardOffer, error)
	ListRewardOffers(ctx context.Context, now time.Time) ([]domain.RewardOffer, error)
	IncrementRewardRedemptions(ctx context.Context, id uuid.UUID) error
	InsertRewardRedemption(ctx context.Context, r *domain.RewardRedemption) error

	// Rate limiting
	HitRateLimit(ctx context.Context, key string, window time.Duration) (int, error)
	PurgeRateLimits(ctx context.Context, before time.Time) (int64, error)
}

// Store is a Querier that can also run a function inside one transaction.
// If fn returns an error, none of its writes are kept.
type Store interface {
	Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
}
