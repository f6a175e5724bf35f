package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		original string
		pct      int
		want     string
	}{
		{name: "half off", original: "1000", pct: 50, want: "500"},
		{name: "rounds to paise", original: "199.99", pct: 15, want: "169.99"},
		{name: "full discount", original: "250", pct: 100, want: "0"},
		{name: "one percent", original: "99", pct: 1, want: "98.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountedPrice(decimal.RequireFromString(tt.original), tt.pct)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestDiscountedPriceStableAcrossRecompute(t *testing.T) {
	prices := []string{"0", "1", "9.99", "149.5", "2499", "100000.01"}
	for _, p := range prices {
		for pct := 1; pct <= 100; pct++ {
			in := OfferInput{
				Title:              "x",
				OriginalPrice:      decimal.RequireFromString(p),
				DiscountPercentage: pct,
				ExpiryDate:         time.Now(),
			}
			var o Offer
			in.Apply(&o)
			require.True(t, o.PriceConsistent(), "price %s pct %d", p, pct)
		}
	}
}

func TestOfferInputValidate(t *testing.T) {
	valid := func() OfferInput {
		return OfferInput{
			Title:              "Diwali Sweets",
			OriginalPrice:      decimal.NewFromInt(500),
			DiscountPercentage: 20,
			ExpiryDate:         time.Now().Add(24 * time.Hour),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*OfferInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(*OfferInput) {}},
		{name: "empty title", mutate: func(in *OfferInput) { in.Title = "  " }, wantErr: true},
		{name: "zero discount", mutate: func(in *OfferInput) { in.DiscountPercentage = 0 }, wantErr: true},
		{name: "discount over 100", mutate: func(in *OfferInput) { in.DiscountPercentage = 101 }, wantErr: true},
		{name: "negative price", mutate: func(in *OfferInput) { in.OriginalPrice = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "paise price", mutate: func(in *OfferInput) { in.OriginalPrice = decimal.RequireFromString("499.50") }},
		{name: "sub-paise price", mutate: func(in *OfferInput) { in.OriginalPrice = decimal.RequireFromString("10.005") }, wantErr: true},
		{name: "missing expiry", mutate: func(in *OfferInput) { in.ExpiryDate = time.Time{} }, wantErr: true},
		{name: "bad listing type", mutate: func(in *OfferInput) { in.ListingType = "banner" }, wantErr: true},
		{name: "bad mode", mutate: func(in *OfferInput) { in.RedemptionMode = "mail" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOffer)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOfferIsVisible(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	base := Offer{IsActive: true, Status: OfferApproved, ExpiryDate: now}

	assert.True(t, base.IsVisible(now), "expiring exactly now is still visible")

	inactive := base
	inactive.IsActive = false
	assert.False(t, inactive.IsVisible(now))

	review := base
	review.Status = OfferInReview
	assert.False(t, review.IsVisible(now))

	expired := base
	expired.ExpiryDate = now.Add(-time.Second)
	assert.False(t, expired.IsVisible(now))
}

func TestOfferFilterMatches(t *testing.T) {
	o := &Offer{
		Title:       "Summer Sale 50%",
		Description: "Cotton sarees and dhotis",
		Category:    "fashion",
		District:    "Coimbatore",
		City:        "Pollachi",
		Location:    "RS Puram",
		ListingType: ListingLocalDeals,
	}

	tests := []struct {
		name   string
		filter OfferFilter
		want   bool
	}{
		{name: "empty filter", filter: OfferFilter{}, want: true},
		{name: "category all", filter: OfferFilter{Category: CategoryAll}, want: true},
		{name: "category match", filter: OfferFilter{Category: "fashion"}, want: true},
		{name: "category mismatch", filter: OfferFilter{Category: "food"}, want: false},
		{name: "district case insensitive", filter: OfferFilter{District: "coimbatore"}, want: true},
		{name: "city match", filter: OfferFilter{District: "POLLACHI"}, want: true},
		{name: "district mismatch", filter: OfferFilter{District: "Madurai"}, want: false},
		{name: "search title", filter: OfferFilter{Search: "summer"}, want: true},
		{name: "search description", filter: OfferFilter{Search: "SAREES"}, want: true},
		{name: "search location", filter: OfferFilter{Search: "rs pur"}, want: true},
		{name: "search miss", filter: OfferFilter{Search: "biryani"}, want: false},
		{name: "listing type mismatch", filter: OfferFilter{ListingType: ListingHotOffers}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(o))
		})
	}
}

func TestResolveDistrict(t *testing.T) {
	assert.Equal(t, "Tiruchirappalli", ResolveDistrict("tiruchirappalli"))
	assert.Equal(t, "Chennai", ResolveDistrict(" CHENNAI "))
	assert.Equal(t, "Pondicherry", ResolveDistrict("Pondicherry"))
}
