package handler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd := parseCommand("/editoffer 1234 extra\n" +
		"Title: Diwali Sweets\n" +
		"\n" +
		"image: https://cdn.example.com/a.png\n" +
		"description: Fresh every morning\n" +
		"Order before 10 am")

	assert.Equal(t, []string{"1234", "extra"}, cmd.Args)
	assert.Equal(t, "1234", cmd.arg(0))
	assert.Empty(t, cmd.arg(5))
	assert.Equal(t, "Diwali Sweets", cmd.Fields["title"])
	assert.Equal(t, "https://cdn.example.com/a.png", cmd.Fields["image"])
	assert.Equal(t, "Fresh every morning\nOrder before 10 am", cmd.Fields["description"])

	bare := parseCommand("/newoffer")
	assert.Empty(t, bare.Args)
	assert.Empty(t, bare.Fields)
}

func TestOfferInput(t *testing.T) {
	cmd := parseCommand("/newoffer\n" +
		"title: Silk Saree Sale\n" +
		"price: ₹1499.50\n" +
		"discount: 30%\n" +
		"expiry: 2026-12-31\n" +
		"category: Fashion\n" +
		"district: madurai\n" +
		"mode: STORE\n" +
		"listing: hot_offers")

	in, err := cmd.offerInput()
	require.NoError(t, err)
	assert.Equal(t, "Silk Saree Sale", in.Title)
	assert.True(t, in.OriginalPrice.Equal(decimal.RequireFromString("1499.50")))
	assert.Equal(t, 30, in.DiscountPercentage)
	assert.Equal(t, time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), in.ExpiryDate)
	assert.Equal(t, "fashion", in.Category)
	assert.Equal(t, domain.ModeStore, in.RedemptionMode)
	assert.Equal(t, domain.ListingHotOffers, in.ListingType)
	assert.NoError(t, in.Validate())
}

func TestOfferInput_Errors(t *testing.T) {
	base := "title: x\nprice: 100\ndiscount: 10\nexpiry: 2026-12-31"
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad price", strings.Replace(base, "100", "lots", 1), "price"},
		{"bad discount", strings.Replace(base, "discount: 10", "discount: ten", 1), "discount"},
		{"bad expiry", strings.Replace(base, "2026-12-31", "next week", 1), "expiry"},
		{"unknown field", base + "\ncolour: red", "colour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand("/newoffer\n" + tt.body).offerInput()
			require.ErrorIs(t, err, domain.ErrInvalidOffer)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, errorText(err), tt.want)
		})
	}
}

func TestRewardInput(t *testing.T) {
	in, err := parseCommand("/newreward\ntitle: Free Coffee\npoints: 150\nmax: 10\nexpiry: 2026-11-30T18:00:00Z").rewardInput()
	require.NoError(t, err)
	assert.Equal(t, "Free Coffee", in.Title)
	assert.Equal(t, int64(150), in.PointsRequired)
	require.NotNil(t, in.MaxRedemptions)
	assert.Equal(t, 10, *in.MaxRedemptions)
	require.NotNil(t, in.ExpiryDate)
	assert.Equal(t, time.Date(2026, 11, 30, 18, 0, 0, 0, time.UTC), *in.ExpiryDate)

	unlimited, err := parseCommand("/newreward\ntitle: Movie\npoints: 300").rewardInput()
	require.NoError(t, err)
	assert.Nil(t, unlimited.MaxRedemptions)
	assert.Nil(t, unlimited.ExpiryDate)

	_, err = parseCommand("/newreward\ntitle: Movie\npoints: many").rewardInput()
	assert.ErrorIs(t, err, domain.ErrInvalidReward)
}

func TestMerchantInput(t *testing.T) {
	in, err := parseCommand("/addmerchant 555\nstore: Kumar Textiles\nplan: Gold\npremium: yes").merchantInput(555)
	require.NoError(t, err)
	assert.Equal(t, int64(555), in.TelegramID)
	assert.Equal(t, "Kumar Textiles", in.StoreName)
	assert.Equal(t, domain.PlanGold, in.Plan)
	assert.True(t, in.IsPremium)

	_, err = parseCommand("/addmerchant 555\nstore: X\nplan: diamond").merchantInput(555)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestBrowseFilter(t *testing.T) {
	tests := []struct {
		args []string
		want domain.OfferFilter
	}{
		{nil, domain.OfferFilter{}},
		{[]string{"food"}, domain.OfferFilter{Category: "food"}},
		{[]string{"All", "Chennai"}, domain.OfferFilter{Category: "all", District: "chennai"}},
		{[]string{"madurai", "silk", "saree"}, domain.OfferFilter{District: "madurai", Search: "silk saree"}},
		{[]string{"biryani"}, domain.OfferFilter{Search: "biryani"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, browseFilter(tt.args), "%v", tt.args)
	}
}

func TestOffersPageData(t *testing.T) {
	f := domain.OfferFilter{Category: "food", District: "chennai", Search: "masala dosa"}
	data := offersPageData(3, f)
	assert.Equal(t, "of:3:food:chennai:masala dosa", data)

	page, got, err := parseOffersPageData(data)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, f, got)

	long := domain.OfferFilter{Category: "electronics", District: "tiruchirappalli", Search: strings.Repeat("சென்னை ", 20)}
	assert.LessOrEqual(t, len(offersPageData(12, long)), maxCallbackData)

	for _, bad := range []string{"of:x:::", "of:1:food", "save:1:::"} {
		_, _, err := parseOffersPageData(bad)
		assert.Error(t, err, bad)
	}
}

func TestCallbackID(t *testing.T) {
	id := uuid.New()
	prefix, got, err := callbackID(cbRedeem + ":" + id.String())
	require.NoError(t, err)
	assert.Equal(t, cbRedeem, prefix)
	assert.Equal(t, id, got)

	_, _, err = callbackID("redeem")
	assert.Error(t, err)
	_, _, err = callbackID("redeem:nope")
	assert.Error(t, err)
}

func TestStartPayload(t *testing.T) {
	offerID := uuid.New()

	code, scanned := startPayload("/start r_abcd2345")
	assert.Equal(t, "ABCD2345", code)
	assert.Equal(t, uuid.Nil, scanned)

	code, scanned = startPayload("/start q_" + offerID.String())
	assert.Empty(t, code)
	assert.Equal(t, offerID, scanned)

	code, scanned = startPayload("/start")
	assert.Empty(t, code)
	assert.Equal(t, uuid.Nil, scanned)

	_, scanned = startPayload("/start q_garbage")
	assert.Equal(t, uuid.Nil, scanned)
}

func TestErrorTextDistinct(t *testing.T) {
	seen := map[string]error{}
	for _, m := range errorMessages {
		if m.err == domain.ErrUnauthenticated {
			continue
		}
		prev, dup := seen[m.text]
		assert.False(t, dup, "%v and %v share a message", prev, m.err)
		seen[m.text] = m.err
		assert.Equal(t, m.text, errorText(fmt.Errorf("wrapped: %w", m.err)))
	}
	assert.Equal(t, msgInternal, errorText(errors.New("connection refused")))
}

func TestOfferCard(t *testing.T) {
	o := &domain.Offer{
		ID:                 uuid.New(),
		Title:              "Big_Sale *now*",
		OriginalPrice:      decimal.NewFromInt(500),
		DiscountPercentage: 20,
		DiscountedPrice:    decimal.NewFromInt(400),
		ExpiryDate:         time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		ListingType:        domain.ListingTrending,
		RedemptionMode:     domain.ModeOnline,
		Status:             domain.OfferInReview,
		District:           "Chennai",
		City:               "chennai",
		Location:           "T. Nagar",
	}

	card := offerCard(o, false)
	assert.Contains(t, card, `Big\_Sale \*now\*`)
	assert.Contains(t, card, "₹500 → *₹400* (20% off)")
	assert.Contains(t, card, "📍 T. Nagar, chennai\n")
	assert.Contains(t, card, "📈 Trending")
	assert.NotContains(t, card, o.ID.String())

	merchant := offerCard(o, true)
	assert.Contains(t, merchant, "🕓 In review")
	assert.Contains(t, merchant, o.ID.String())
}

func TestHelpTextByRole(t *testing.T) {
	customer := helpText(&domain.Profile{Role: domain.RoleCustomer})
	merchant := helpText(&domain.Profile{Role: domain.RoleMerchant})
	admin := helpText(&domain.Profile{Role: domain.RoleSuperAdmin})

	assert.NotContains(t, customer, "/newoffer")
	assert.Contains(t, merchant, "/newoffer")
	assert.NotContains(t, merchant, "/review")
	assert.Contains(t, admin, "/review")
	assert.Equal(t, customer, helpText(nil))
}
