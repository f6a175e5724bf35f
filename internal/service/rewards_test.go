package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func (f *fixture) rewardOffer(t *testing.T, points int64, max *int, expiry *time.Time) *domain.RewardOffer {
	t.Helper()
	r, err := f.rewards.CreateRewardOffer(context.Background(), f.superAdmin(t), RewardOfferInput{
		Title:          "Free Coffee",
		PointsRequired: points,
		MaxRedemptions: max,
		ExpiryDate:     expiry,
	})
	require.NoError(t, err)
	return r
}

func TestRedeemRewardOffer_InsufficientPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)
	f.fund(t, c.UserID, 100)
	reward := f.rewardOffer(t, 150, nil, nil)

	_, _, err := f.rewards.RedeemRewardOffer(ctx, c, reward.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	head, err := f.rewards.Summary(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(100), head.CurrentPoints)
}

func TestRedeemRewardOffer_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)
	f.fund(t, c.UserID, 200)
	reward := f.rewardOffer(t, 150, intPtr(1), nil)

	redemption, head, err := f.rewards.RedeemRewardOffer(ctx, c, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), redemption.PointsSpent)
	assert.Equal(t, int64(50), head.CurrentPoints)
	assert.Equal(t, int64(150), head.TotalRedeemedPoints)
	assert.Equal(t, head.TotalEarnedPoints-head.TotalRedeemedPoints, head.CurrentPoints)

	stored, err := f.store.GetRewardOfferForUpdate(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentRedemptions)

	history, err := f.rewards.History(ctx, c, 10)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, int64(-150), history[0].Points)
	assert.Equal(t, domain.ActivityRewardRedemption, history[0].ActivityType)
	require.NotNil(t, history[0].ReferenceID)
	assert.Equal(t, redemption.ID, *history[0].ReferenceID)

	other := f.customer(t)
	f.fund(t, other.UserID, 500)
	_, _, err = f.rewards.RedeemRewardOffer(ctx, other, reward.ID)
	assert.ErrorIs(t, err, domain.ErrSoldOut)
}

func TestRedeemRewardOffer_Preconditions(t *testing.T) {
	past := testNow.Add(-time.Hour)

	tests := []struct {
		name    string
		balance int64
		points  int64
		max     *int
		expiry  *time.Time
		wantErr error
	}{
		{"points checked first", 10, 150, intPtr(0), &past, domain.ErrInsufficientPoints},
		{"sold out before expiry", 500, 150, intPtr(0), &past, domain.ErrSoldOut},
		{"expired", 500, 150, nil, &past, domain.ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c := f.customer(t)
			f.fund(t, c.UserID, tt.balance)

			reward := &domain.RewardOffer{
				ID:             uuid.New(),
				Title:          "Cinema Voucher",
				PointsRequired: tt.points,
				MaxRedemptions: tt.max,
				ExpiryDate:     tt.expiry,
				IsActive:       true,
			}
			require.NoError(t, f.store.CreateRewardOffer(ctx, reward))

			_, _, err := f.rewards.RedeemRewardOffer(ctx, c, reward.ID)
			assert.ErrorIs(t, err, tt.wantErr)

			head, err := f.rewards.Summary(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, tt.balance, head.CurrentPoints)
		})
	}
}

func TestRedeemRewardOffer_PartialFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)
	f.fund(t, c.UserID, 300)
	reward := f.rewardOffer(t, 150, intPtr(5), nil)
	_, _, activitiesBefore, _ := f.store.Counts()

	f.store.FailNext("IncrementRewardRedemptions", errors.New("disk full"))
	_, _, err := f.rewards.RedeemRewardOffer(ctx, c, reward.ID)
	require.Error(t, err)
	assert.True(t, domain.IsStoreError(err))

	head, err := f.rewards.Summary(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(300), head.CurrentPoints)

	_, _, activitiesAfter, rewardRedemptions := f.store.Counts()
	assert.Equal(t, activitiesBefore, activitiesAfter)
	assert.Zero(t, rewardRedemptions)

	stored, err := f.store.GetRewardOfferForUpdate(ctx, reward.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentRedemptions)
}

func TestRedeemRewardOffer_Unknown(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.rewards.RedeemRewardOffer(context.Background(), f.customer(t), uuid.New())
	assert.ErrorIs(t, err, domain.ErrRewardOfferNotFound)

	_, _, err = f.rewards.RedeemRewardOffer(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAwardPoints_Levels(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t)

	steps := []struct {
		points int64
		level  string
	}{
		{499, "Bronze"},
		{1, "Silver"},
		{1000, "Gold"},
		{3500, "Platinum"},
	}
	for _, s := range steps {
		head, err := f.rewards.AwardPoints(context.Background(), domain.PointsEntry{
			UserID: c.UserID, Points: s.points, ActivityType: domain.ActivityAdjustment,
		})
		require.NoError(t, err)
		assert.Equal(t, s.level, head.LevelName)
	}

	head, err := f.rewards.AwardPoints(context.Background(), domain.PointsEntry{
		UserID: c.UserID, Points: -5001, ActivityType: domain.ActivityAdjustment,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.Nil(t, head)
}

func TestApplyReferral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrer := f.customer(t)

	head, err := f.rewards.Summary(ctx, referrer)
	require.NoError(t, err)
	require.Len(t, head.ReferralCode, 8)

	nextTelegramID++
	newcomer, created, err := f.profiles.FindOrCreate(ctx, nextTelegramID, "Arun", "arun", head.ReferralCode, false)
	require.NoError(t, err)
	require.True(t, created)

	head, err = f.rewards.Summary(ctx, referrer)
	require.NoError(t, err)
	assert.Equal(t, int64(100), head.CurrentPoints)

	history, err := f.rewards.History(ctx, referrer, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActivityReferral, history[0].ActivityType)
	assert.Equal(t, newcomer.ID, *history[0].ReferenceID)

	_, err = f.rewards.ApplyReferral(ctx, referrer.UserID, head.ReferralCode)
	assert.ErrorIs(t, err, domain.ErrInvalidReferral)
	_, err = f.rewards.ApplyReferral(ctx, newcomer.ID, "NOPE0000")
	assert.ErrorIs(t, err, domain.ErrInvalidReferral)
}

func TestRecordQRScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, m := f.liveOffer(t, "Juice Bar")
	c := f.customer(t)

	head, err := f.rewards.RecordQRScan(ctx, c, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), head.CurrentPoints)

	_, err = f.rewards.RecordQRScan(ctx, c, o.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyScanned)

	pending, err := f.catalog.CreateOffer(ctx, m, offerInput("Not Yet Live"))
	require.NoError(t, err)
	_, err = f.rewards.RecordQRScan(ctx, c, pending.ID)
	assert.ErrorIs(t, err, domain.ErrOfferUnavailable)
}

func TestRewardOffers_CatalogAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := testNow.Add(-time.Hour)

	expensive := f.rewardOffer(t, 900, nil, nil)
	cheap := f.rewardOffer(t, 50, nil, nil)
	f.rewardOffer(t, 10, nil, &past)

	list, err := f.rewards.ListRewardOffers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, cheap.ID, list[0].ID)
	assert.Equal(t, expensive.ID, list[1].ID)

	_, err = f.rewards.CreateRewardOffer(ctx, f.customer(t), RewardOfferInput{Title: "x", PointsRequired: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.rewards.CreateRewardOffer(ctx, f.superAdmin(t), RewardOfferInput{Title: "x", PointsRequired: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidReward)
}
