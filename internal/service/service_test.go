package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store       *memory.Store
	profiles    *ProfileService
	catalog     *CatalogService
	admin       *AdminService
	saves       *SaveService
	redemptions *RedemptionService
	rewards     *RewardsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }

	store := memory.New()
	store.Now = clock

	rewards := NewRewardsService(store, 100, 10)
	rewards.now = clock
	catalog := NewCatalogService(store, true)
	catalog.now = clock
	profiles := NewProfileService(store, rewards)
	profiles.now = clock

	return &fixture{
		store:       store,
		profiles:    profiles,
		catalog:     catalog,
		admin:       NewAdminService(catalog),
		saves:       NewSaveService(store),
		redemptions: NewRedemptionService(store),
		rewards:     rewards,
	}
}

var nextTelegramID int64 = 1000

func (f *fixture) customer(t *testing.T) *domain.Actor {
	t.Helper()
	nextTelegramID++
	p, created, err := f.profiles.FindOrCreate(context.Background(), nextTelegramID, "Kavya", "kavya", "", false)
	require.NoError(t, err)
	require.True(t, created)
	return p.Actor()
}

func (f *fixture) superAdmin(t *testing.T) *domain.Actor {
	t.Helper()
	nextTelegramID++
	p, _, err := f.profiles.FindOrCreate(context.Background(), nextTelegramID, "Root", "root", "", true)
	require.NoError(t, err)
	return p.Actor()
}

func (f *fixture) merchant(t *testing.T, plan domain.Plan, premium bool) *domain.Actor {
	t.Helper()
	admin := f.superAdmin(t)
	nextTelegramID++
	p, err := f.profiles.RegisterMerchant(context.Background(), admin, MerchantInput{
		TelegramID: nextTelegramID,
		StoreName:  "Saravana Stores",
		District:   "chennai",
		Plan:       plan,
		IsPremium:  premium,
	})
	require.NoError(t, err)
	return p.Actor()
}

func offerInput(title string) domain.OfferInput {
	return domain.OfferInput{
		Title:              title,
		Description:        "Fresh stock every day",
		Category:           "food",
		District:           "chennai",
		City:               "Chennai",
		Location:           "T. Nagar",
		OriginalPrice:      decimal.NewFromInt(400),
		DiscountPercentage: 25,
		ExpiryDate:         testNow.Add(7 * 24 * time.Hour),
		RedemptionMode:     domain.ModeStore,
		ListingType:        domain.ListingLocalDeals,
	}
}

// liveOffer creates an approved, active offer owned by a fresh merchant.
func (f *fixture) liveOffer(t *testing.T, title string) (*domain.Offer, *domain.Actor) {
	t.Helper()
	m := f.merchant(t, domain.PlanPlatinum, false)
	o, err := f.admin.AdminCreateOffer(context.Background(), f.superAdmin(t), m.UserID, offerInput(title))
	require.NoError(t, err)
	return o, m
}

func (f *fixture) fund(t *testing.T, userID uuid.UUID, points int64) {
	t.Helper()
	_, err := f.rewards.AwardPoints(context.Background(), domain.PointsEntry{
		UserID:       userID,
		Points:       points,
		ActivityType: domain.ActivityAdjustment,
		Description:  "test funding",
	})
	require.NoError(t, err)
}
