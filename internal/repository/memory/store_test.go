package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOffer(t *testing.T, s *Store) (merchant domain.Profile, offer domain.Offer) {
	t.Helper()
	ctx := context.Background()

	merchant = domain.Profile{ID: uuid.New(), Role: domain.RoleMerchant, StoreName: "Anna Stores"}
	require.NoError(t, s.CreateProfile(ctx, &merchant))

	offer = domain.Offer{
		ID:                 uuid.New(),
		MerchantID:         merchant.ID,
		Title:              "Diwali Sweets",
		OriginalPrice:      decimal.NewFromInt(500),
		DiscountPercentage: 20,
		DiscountedPrice:    domain.DiscountedPrice(decimal.NewFromInt(500), 20),
		ExpiryDate:         time.Now().Add(48 * time.Hour),
		RedemptionMode:     domain.ModeBoth,
		ListingType:        domain.ListingLocalDeals,
		Status:             domain.OfferApproved,
		IsActive:           true,
	}
	require.NoError(t, s.CreateOffer(ctx, &offer))
	return merchant, offer
}

func TestInsertSavedOffer_ConcurrentSamePair(t *testing.T) {
	s := New()
	_, offer := seedOffer(t, s)
	user := uuid.New()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.InsertSavedOffer(context.Background(), &domain.SavedOffer{
				ID: uuid.New(), OfferID: offer.ID, UserID: user,
			})
		}()
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadySaved):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)

	saved, _, _, _ := s.Counts()
	assert.Equal(t, 1, saved)
}

func TestInsertRedemption_UnlimitedBypassesUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, offer := seedOffer(t, s)
	user := uuid.New()

	insert := func(unlimited bool) error {
		return s.InsertRedemption(ctx, &domain.Redemption{
			ID: uuid.New(), OfferID: offer.ID, UserID: user,
			Status: domain.RedemptionPending, Unlimited: unlimited,
		})
	}

	require.NoError(t, insert(false))
	assert.ErrorIs(t, insert(false), domain.ErrAlreadyRedeemed)
	assert.NoError(t, insert(true))
	assert.NoError(t, insert(true))
}

func TestApplyPoints_NeverNegative(t *testing.T) {
	ctx := context.Background()
	s := New()
	merchant, _ := seedOffer(t, s)
	require.NoError(t, s.CreateUserReward(ctx, &domain.UserReward{UserID: merchant.ID, ReferralCode: "ABCD1234"}))

	now := time.Now()
	r, err := s.ApplyPoints(ctx, domain.PointsEntry{UserID: merchant.ID, Points: 120, ActivityType: domain.ActivityAdjustment}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(120), r.CurrentPoints)

	_, err = s.ApplyPoints(ctx, domain.PointsEntry{UserID: merchant.ID, Points: -121, ActivityType: domain.ActivityRewardRedemption}, now)
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	r, err = s.GetUserReward(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), r.CurrentPoints)
	assert.Equal(t, r.TotalEarnedPoints-r.TotalRedeemedPoints, r.CurrentPoints)

	_, err = s.ApplyPoints(ctx, domain.PointsEntry{UserID: uuid.New(), Points: 5}, now)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, offer := seedOffer(t, s)
	user := uuid.New()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(q repository.Querier) error {
		if err := q.InsertSavedOffer(ctx, &domain.SavedOffer{ID: uuid.New(), OfferID: offer.ID, UserID: user}); err != nil {
			return err
		}
		if err := q.SetOfferActive(ctx, offer.ID, false); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	saved, _, _, _ := s.Counts()
	assert.Zero(t, saved)
	got, err := s.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestListVisibleOffers_FiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	merchant, first := seedOffer(t, s)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := base
	s.Now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	mk := func(title string, status domain.OfferStatus, active bool, expiry time.Time) domain.Offer {
		o := first
		o.ID = uuid.New()
		o.MerchantID = merchant.ID
		o.Title = title
		o.Status = status
		o.IsActive = active
		o.ExpiryDate = expiry
		require.NoError(t, s.CreateOffer(ctx, &o))
		return o
	}
	later := base.Add(30 * 24 * time.Hour)
	visibleA := mk("Pongal Combo", domain.OfferApproved, true, later)
	mk("Hidden Review", domain.OfferInReview, true, later)
	mk("Hidden Inactive", domain.OfferApproved, false, later)
	mk("Hidden Expired", domain.OfferApproved, true, base)
	visibleB := mk("Pongal Sweets", domain.OfferApproved, true, later)

	got, err := s.ListVisibleOffers(ctx, domain.OfferFilter{Search: "pongal"}, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, visibleB.ID, got[0].ID)
	assert.Equal(t, visibleA.ID, got[1].ID)

	got, err = s.ListVisibleOffers(ctx, domain.OfferFilter{Search: "pongal", Limit: 1, Offset: 1}, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, visibleA.ID, got[0].ID)
}

func TestHitRateLimit_WindowResets(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		n, err := s.HitRateLimit(ctx, "chat:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	now = now.Add(2 * time.Minute)
	n, err := s.HitRateLimit(ctx, "chat:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
