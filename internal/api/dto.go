package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/service"
	"github.com/shopspring/decimal"
)

type offerRequest struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	District           string          `json:"district"`
	City               string          `json:"city"`
	Location           string          `json:"location"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	ExpiryDate         time.Time       `json:"expiry_date"`
	RedemptionMode     string          `json:"redemption_mode"`
	ListingType        string          `json:"listing_type"`
	ImageURL           string          `json:"image_url"`
}

func (r offerRequest) input() domain.OfferInput {
	return domain.OfferInput{
		Title:              r.Title,
		Description:        r.Description,
		Category:           r.Category,
		District:           r.District,
		City:               r.City,
		Location:           r.Location,
		OriginalPrice:      r.OriginalPrice,
		DiscountPercentage: r.DiscountPercentage,
		ExpiryDate:         r.ExpiryDate,
		RedemptionMode:     domain.RedemptionMode(r.RedemptionMode),
		ListingType:        domain.ListingType(r.ListingType),
		ImageURL:           r.ImageURL,
	}
}

type adminOfferRequest struct {
	MerchantID uuid.UUID `json:"merchant_id"`
	offerRequest
}

type offerResponse struct {
	ID                 uuid.UUID       `json:"id"`
	MerchantID         uuid.UUID       `json:"merchant_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	District           string          `json:"district"`
	City               string          `json:"city"`
	Location           string          `json:"location"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	DiscountedPrice    decimal.Decimal `json:"discounted_price"`
	ExpiryDate         time.Time       `json:"expiry_date"`
	RedemptionMode     string          `json:"redemption_mode"`
	ListingType        string          `json:"listing_type"`
	Status             string          `json:"status"`
	IsActive           bool            `json:"is_active"`
	ImageURL           string          `json:"image_url,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toOffer(o *domain.Offer) *offerResponse {
	if o == nil {
		return nil
	}
	return &offerResponse{
		ID:                 o.ID,
		MerchantID:         o.MerchantID,
		Title:              o.Title,
		Description:        o.Description,
		Category:           o.Category,
		District:           o.District,
		City:               o.City,
		Location:           o.Location,
		OriginalPrice:      o.OriginalPrice,
		DiscountPercentage: o.DiscountPercentage,
		DiscountedPrice:    o.DiscountedPrice,
		ExpiryDate:         o.ExpiryDate,
		RedemptionMode:     string(o.RedemptionMode),
		ListingType:        string(o.ListingType),
		Status:             string(o.Status),
		IsActive:           o.IsActive,
		ImageURL:           o.ImageURL,
		CreatedAt:          o.CreatedAt,
	}
}

func toOffers(list []domain.Offer) []*offerResponse {
	out := make([]*offerResponse, len(list))
	for i := range list {
		out[i] = toOffer(&list[i])
	}
	return out
}

type savedResponse struct {
	ID      uuid.UUID      `json:"id"`
	OfferID uuid.UUID      `json:"offer_id"`
	SavedAt time.Time      `json:"saved_at"`
	Offer   *offerResponse `json:"offer,omitempty"`
}

func toSaved(s *domain.SavedOffer) savedResponse {
	return savedResponse{ID: s.ID, OfferID: s.OfferID, SavedAt: s.SavedAt, Offer: toOffer(s.Offer)}
}

type redemptionResponse struct {
	ID         uuid.UUID      `json:"id"`
	OfferID    uuid.UUID      `json:"offer_id"`
	UserID     uuid.UUID      `json:"user_id"`
	Status     string         `json:"status"`
	Unlimited  bool           `json:"unlimited"`
	RedeemedAt time.Time      `json:"redeemed_at"`
	Offer      *offerResponse `json:"offer,omitempty"`
}

func toRedemption(r *domain.Redemption) redemptionResponse {
	return redemptionResponse{
		ID:         r.ID,
		OfferID:    r.OfferID,
		UserID:     r.UserID,
		Status:     string(r.Status),
		Unlimited:  r.Unlimited,
		RedeemedAt: r.RedeemedAt,
		Offer:      toOffer(r.Offer),
	}
}

func toRedemptions(list []domain.Redemption) []redemptionResponse {
	out := make([]redemptionResponse, len(list))
	for i := range list {
		out[i] = toRedemption(&list[i])
	}
	return out
}

type rewardSummaryResponse struct {
	CurrentPoints       int64  `json:"current_points"`
	TotalEarnedPoints   int64  `json:"total_earned_points"`
	TotalRedeemedPoints int64  `json:"total_redeemed_points"`
	LevelName           string `json:"level_name"`
	ReferralCode        string `json:"referral_code"`
}

func toSummary(r *domain.UserReward) rewardSummaryResponse {
	return rewardSummaryResponse{
		CurrentPoints:       r.CurrentPoints,
		TotalEarnedPoints:   r.TotalEarnedPoints,
		TotalRedeemedPoints: r.TotalRedeemedPoints,
		LevelName:           r.LevelName,
		ReferralCode:        r.ReferralCode,
	}
}

type activityResponse struct {
	ID            uuid.UUID  `json:"id"`
	Points        int64      `json:"points"`
	ActivityType  string     `json:"activity_type"`
	Description   string     `json:"description,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	ReferenceType string     `json:"reference_type,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type rewardOfferRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	PointsRequired int64      `json:"points_required"`
	MaxRedemptions *int       `json:"max_redemptions"`
	ExpiryDate     *time.Time `json:"expiry_date"`
}

func (r rewardOfferRequest) input() service.RewardOfferInput {
	return service.RewardOfferInput(r)
}

type rewardOfferResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	PointsRequired     int64      `json:"points_required"`
	MaxRedemptions     *int       `json:"max_redemptions,omitempty"`
	CurrentRedemptions int        `json:"current_redemptions"`
	ExpiryDate         *time.Time `json:"expiry_date,omitempty"`
}

func toRewardOffer(r *domain.RewardOffer) rewardOfferResponse {
	return rewardOfferResponse{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		PointsRequired:     r.PointsRequired,
		MaxRedemptions:     r.MaxRedemptions,
		CurrentRedemptions: r.CurrentRedemptions,
		ExpiryDate:         r.ExpiryDate,
	}
}

type rewardRedemptionResponse struct {
	ID            uuid.UUID             `json:"id"`
	RewardOfferID uuid.UUID             `json:"reward_offer_id"`
	PointsSpent   int64                 `json:"points_spent"`
	Balance       rewardSummaryResponse `json:"balance"`
}

type merchantRequest struct {
	TelegramID    int64  `json:"telegram_id"`
	Name          string `json:"name"`
	StoreName     string `json:"store_name"`
	StoreLocation string `json:"store_location"`
	District      string `json:"district"`
	City          string `json:"city"`
	Plan          string `json:"plan"`
	IsPremium     bool   `json:"is_premium"`
}

func (r merchantRequest) input() (service.MerchantInput, error) {
	plan, err := domain.ParsePlan(r.Plan)
	if err != nil {
		return service.MerchantInput{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return service.MerchantInput{
		TelegramID:    r.TelegramID,
		Name:          r.Name,
		StoreName:     r.StoreName,
		StoreLocation: r.StoreLocation,
		District:      r.District,
		City:          r.City,
		Plan:          plan,
		IsPremium:     r.IsPremium,
	}, nil
}

type profileResponse struct {
	ID          uuid.UUID `json:"id"`
	TelegramID  *int64    `json:"telegram_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Role        string    `json:"role"`
	StoreName   string    `json:"store_name,omitempty"`
	District    string    `json:"district,omitempty"`
	CurrentPlan string    `json:"current_plan"`
	IsPremium   bool      `json:"is_premium"`
}

func toProfile(p *domain.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		TelegramID:  p.TelegramID,
		Name:        p.Name,
		Role:        string(p.Role),
		StoreName:   p.StoreName,
		District:    p.District,
		CurrentPlan: string(p.CurrentPlan),
		IsPremium:   p.IsPremium,
	}
}

type statsResponse struct {
	OffersInReview      int `json:"offers_in_review"`
	OffersApproved      int `json:"offers_approved"`
	OffersRejected      int `json:"offers_rejected"`
	ActiveOffers        int `json:"active_offers"`
	RedemptionsPending  int `json:"redemptions_pending"`
	RedemptionsApproved int `json:"redemptions_approved"`
	RedemptionsRejected int `json:"redemptions_rejected"`
}
