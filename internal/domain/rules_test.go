package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSimilarTitle(t *testing.T) {
	tests := []struct {
		target, prior string
		want          bool
	}{
		{"Summer Sale 50%", "Summer Clearance", true},
		{"summer sale", "Big SUMMER deals", true},
		{"Weekend Biryani", "Weekday Biryani", false},
		{"", "Anything", false},
		{"Pongal Offer", "Diwali Offer", false},
	}
	for _, tt := range tests {
		t.Run(tt.target+"|"+tt.prior, func(t *testing.T) {
			assert.Equal(t, tt.want, SimilarTitle(tt.target, tt.prior))
		})
	}
}

func TestRedemptionTransitions(t *testing.T) {
	assert.True(t, RedemptionPending.CanTransition(RedemptionApproved))
	assert.True(t, RedemptionPending.CanTransition(RedemptionRejected))
	assert.False(t, RedemptionPending.CanTransition(RedemptionPending))
	assert.False(t, RedemptionApproved.CanTransition(RedemptionRejected))
	assert.False(t, RedemptionRejected.CanTransition(RedemptionApproved))
}

func TestOfferStatusTransitions(t *testing.T) {
	assert.True(t, OfferInReview.CanTransition(OfferApproved))
	assert.True(t, OfferInReview.CanTransition(OfferRejected))
	assert.False(t, OfferApproved.CanTransition(OfferRejected))
	assert.False(t, OfferRejected.CanTransition(OfferApproved))
}

func TestActorPermissions(t *testing.T) {
	merchantID := uuid.New()
	customer := &Actor{UserID: uuid.New(), Role: RoleCustomer}
	merchant := &Actor{UserID: merchantID, Role: RoleMerchant}
	other := &Actor{UserID: uuid.New(), Role: RoleMerchant}
	admin := &Actor{UserID: uuid.New(), Role: RoleSuperAdmin}

	assert.False(t, customer.UnlimitedRedemptions())
	assert.True(t, merchant.UnlimitedRedemptions())
	assert.False(t, admin.UnlimitedRedemptions())

	assert.False(t, customer.CanManageOffer(merchantID))
	assert.True(t, merchant.CanManageOffer(merchantID))
	assert.False(t, other.CanManageOffer(merchantID))
	assert.True(t, admin.CanManageOffer(merchantID))
}

func TestMatchRolePanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() {
		MatchRole(Role("owner"), func() int { return 0 }, func() int { return 1 }, func() int { return 2 })
	})
}

func TestAllowedListingTypes(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		want    []ListingType
	}{
		{name: "free merchant", profile: &Profile{Role: RoleMerchant}, want: []ListingType{ListingLocalDeals}},
		{name: "silver", profile: &Profile{CurrentPlan: PlanSilver}, want: []ListingType{ListingLocalDeals}},
		{name: "gold", profile: &Profile{CurrentPlan: PlanGold}, want: []ListingType{ListingHotOffers, ListingTrending, ListingLocalDeals}},
		{name: "premium flag", profile: &Profile{IsPremium: true}, want: []ListingType{ListingHotOffers, ListingTrending, ListingLocalDeals}},
		{name: "nil", profile: nil, want: []ListingType{ListingLocalDeals}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedListingTypes(tt.profile))
		})
	}
}

func TestPlanLimits(t *testing.T) {
	assert.Equal(t, 2, PlanNone.MonthlyOfferLimit())
	assert.Equal(t, 2, PlanSilver.MonthlyOfferLimit())
	assert.Equal(t, 10, PlanGold.MonthlyOfferLimit())
	assert.Equal(t, 30, PlanPlatinum.MonthlyOfferLimit())

	p, err := ParsePlan(" Gold ")
	assert.NoError(t, err)
	assert.Equal(t, PlanGold, p)
	_, err = ParsePlan("diamond")
	assert.Error(t, err)
}

func TestUserRewardApplyEntry(t *testing.T) {
	now := time.Now()
	r := &UserReward{}
	r.ApplyEntry(600, now)
	r.ApplyEntry(-150, now)

	assert.Equal(t, int64(450), r.CurrentPoints)
	assert.Equal(t, int64(600), r.TotalEarnedPoints)
	assert.Equal(t, int64(150), r.TotalRedeemedPoints)
	assert.Equal(t, r.TotalEarnedPoints-r.TotalRedeemedPoints, r.CurrentPoints)
	assert.Equal(t, "Silver", r.LevelName)
}

func TestIsStoreError(t *testing.T) {
	assert.False(t, IsStoreError(nil))
	assert.False(t, IsStoreError(ErrAlreadySaved))
	assert.True(t, IsStoreError(assert.AnError))
}
