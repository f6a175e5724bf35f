package service

import (
	"context"
	"testing"
	"time"

	"github.com/set-night/localdeals/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOffer_ListingGate(t *testing.T) {
	tests := []struct {
		name    string
		plan    domain.Plan
		premium bool
		listing domain.ListingType
		wantErr error
	}{
		{"free merchant local deals", domain.PlanNone, false, domain.ListingLocalDeals, nil},
		{"free merchant hot offers", domain.PlanNone, false, domain.ListingHotOffers, domain.ErrListingTypeNotAllowed},
		{"silver merchant trending", domain.PlanSilver, false, domain.ListingTrending, domain.ErrListingTypeNotAllowed},
		{"gold merchant hot offers", domain.PlanGold, false, domain.ListingHotOffers, nil},
		{"premium flag without plan", domain.PlanNone, true, domain.ListingTrending, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m := f.merchant(t, tt.plan, tt.premium)

			in := offerInput("Biryani Combo")
			in.ListingType = tt.listing
			o, err := f.catalog.CreateOffer(context.Background(), m, in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, o)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.listing, o.ListingType)
		})
	}
}

func TestCreateOffer_StartsInReview(t *testing.T) {
	f := newFixture(t)
	m := f.merchant(t, domain.PlanSilver, false)

	o, err := f.catalog.CreateOffer(context.Background(), m, offerInput("Filter Coffee"))
	require.NoError(t, err)
	assert.Equal(t, domain.OfferInReview, o.Status)
	assert.True(t, o.IsActive)
	assert.Equal(t, "Chennai", o.District)
	assert.True(t, o.PriceConsistent())
	assert.Equal(t, "300", o.DiscountedPrice.String())

	visible, err := f.catalog.ListVisibleOffers(context.Background(), domain.OfferFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestCreateOffer_RoleDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateOffer(ctx, f.customer(t), offerInput("Nope"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.catalog.CreateOffer(ctx, f.superAdmin(t), offerInput("Nope"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.catalog.CreateOffer(ctx, nil, offerInput("Nope"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCreateOffer_PlanCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.merchant(t, domain.PlanSilver, false)

	for range domain.PlanSilver.MonthlyOfferLimit() {
		_, err := f.catalog.CreateOffer(ctx, m, offerInput("Weekend Thali"))
		require.NoError(t, err)
	}
	_, err := f.catalog.CreateOffer(ctx, m, offerInput("Weekend Thali"))
	assert.ErrorIs(t, err, domain.ErrOfferLimitReached)

	// Admin creation on the merchant's behalf counts against the same cap.
	_, err = f.admin.AdminCreateOffer(ctx, f.superAdmin(t), m.UserID, offerInput("Weekend Thali"))
	assert.ErrorIs(t, err, domain.ErrOfferLimitReached)

	f.catalog.enforcePlanLimit = false
	_, err = f.catalog.CreateOffer(ctx, m, offerInput("Weekend Thali"))
	assert.NoError(t, err)
}

func TestCreateOffer_Validation(t *testing.T) {
	f := newFixture(t)
	m := f.merchant(t, domain.PlanGold, false)

	tests := []struct {
		name   string
		mutate func(*domain.OfferInput)
	}{
		{"empty title", func(in *domain.OfferInput) { in.Title = "  " }},
		{"zero discount", func(in *domain.OfferInput) { in.DiscountPercentage = 0 }},
		{"discount over 100", func(in *domain.OfferInput) { in.DiscountPercentage = 101 }},
		{"price below a paisa", func(in *domain.OfferInput) { in.OriginalPrice = decimal.RequireFromString("10.005") }},
		{"expired", func(in *domain.OfferInput) { in.ExpiryDate = testNow.Add(-time.Hour) }},
		{"bad mode", func(in *domain.OfferInput) { in.RedemptionMode = "teleport" }},
		{"bad listing", func(in *domain.OfferInput) { in.ListingType = "billboard" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := offerInput("Idli Breakfast")
			tt.mutate(&in)
			_, err := f.catalog.CreateOffer(context.Background(), m, in)
			assert.ErrorIs(t, err, domain.ErrInvalidOffer)
		})
	}
}

func TestEditOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.merchant(t, domain.PlanSilver, false)

	o, err := f.catalog.CreateOffer(ctx, m, offerInput("Masala Dosa"))
	require.NoError(t, err)

	in := offerInput("Ghee Masala Dosa")
	in.DiscountPercentage = 50
	edited, err := f.catalog.EditOffer(ctx, m, o.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Ghee Masala Dosa", edited.Title)
	assert.Equal(t, domain.OfferInReview, edited.Status)
	assert.Equal(t, "200", edited.DiscountedPrice.String())

	in.ListingType = domain.ListingHotOffers
	_, err = f.catalog.EditOffer(ctx, m, o.ID, in)
	assert.ErrorIs(t, err, domain.ErrListingTypeNotAllowed)

	other := f.merchant(t, domain.PlanGold, false)
	_, err = f.catalog.EditOffer(ctx, other, o.ID, offerInput("Hijack"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.store.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ghee Masala Dosa", stored.Title)
	assert.Equal(t, domain.ListingLocalDeals, stored.ListingType)
}

func TestListVisibleOffers_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sweets, _ := f.liveOffer(t, "Diwali Sweets Box")
	in := offerInput("Silk Saree Sale")
	in.Category = "fashion"
	in.District = "madurai"
	in.City = "Madurai"
	in.Description = "<p>Pure <b>Kanchipuram</b> silk</p>"
	m := f.merchant(t, domain.PlanGold, false)
	saree, err := f.admin.AdminCreateOffer(ctx, f.superAdmin(t), m.UserID, in)
	require.NoError(t, err)
	assert.Equal(t, "Pure Kanchipuram silk", saree.Description)

	hidden, _ := f.liveOffer(t, "Hidden Deal")
	_, err = f.catalog.SetActive(ctx, f.superAdmin(t), hidden.ID, false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter domain.OfferFilter
		want   []string
	}{
		{"all visible newest first", domain.OfferFilter{}, []string{saree.Title, sweets.Title}},
		{"category all", domain.OfferFilter{Category: "all"}, []string{saree.Title, sweets.Title}},
		{"category exact", domain.OfferFilter{Category: "fashion"}, []string{saree.Title}},
		{"district code resolved", domain.OfferFilter{District: "madurai"}, []string{saree.Title}},
		{"district name any case", domain.OfferFilter{District: "CHENNAI"}, []string{sweets.Title}},
		{"search description", domain.OfferFilter{Search: "kanchipuram"}, []string{saree.Title}},
		{"search location", domain.OfferFilter{Search: "t. nagar"}, []string{saree.Title, sweets.Title}},
		{"no match", domain.OfferFilter{Search: "laptop"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.catalog.ListVisibleOffers(ctx, tt.filter)
			require.NoError(t, err)
			var titles []string
			for _, o := range got {
				titles = append(titles, o.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestGetOffer_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.merchant(t, domain.PlanSilver, false)

	o, err := f.catalog.CreateOffer(ctx, m, offerInput("Pending Offer"))
	require.NoError(t, err)

	_, err = f.catalog.GetOffer(ctx, f.customer(t), o.ID)
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)

	got, err := f.catalog.GetOffer(ctx, m, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestMerchantDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, m := f.liveOffer(t, "Dashboard Deal")
	_, err := f.catalog.CreateOffer(ctx, m, offerInput("Second Deal"))
	require.NoError(t, err)

	c := f.customer(t)
	_, err = f.redemptions.RedeemOffer(ctx, c, o.ID)
	require.NoError(t, err)

	stats, err := f.catalog.MerchantStats(ctx, m, m.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.MerchantStats{
		OffersInReview:     1,
		OffersApproved:     1,
		ActiveOffers:       1,
		RedemptionsPending: 1,
	}, stats)

	offers, err := f.catalog.ListOffersByMerchant(ctx, m, m.UserID)
	require.NoError(t, err)
	assert.Len(t, offers, 2)

	_, err = f.catalog.MerchantStats(ctx, c, m.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain   text\n here", "plain text here"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<script>alert(1)</script>Safe", "Safe"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(tt.in), tt.in)
	}
}

func TestCreateOffer_PaisePriceRoundTrips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.merchant(t, domain.PlanSilver, false)

	in := offerInput("Half Price Lassi")
	in.OriginalPrice = decimal.RequireFromString("10.05")
	in.DiscountPercentage = 50
	o, err := f.catalog.CreateOffer(ctx, m, in)
	require.NoError(t, err)
	assert.Equal(t, "5.03", o.DiscountedPrice.StringFixed(2))

	stored, err := f.store.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.OriginalPrice.Equal(stored.OriginalPrice.Round(2)))
	assert.True(t, stored.PriceConsistent())
}
