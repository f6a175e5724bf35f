package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingType string

const (
	ListingHotOffers  ListingType = "hot_offers"
	ListingTrending   ListingType = "trending"
	ListingLocalDeals ListingType = "local_deals"
)

func ParseListingType(s string) (ListingType, error) {
	switch lt := ListingType(s); lt {
	case ListingHotOffers, ListingTrending, ListingLocalDeals:
		return lt, nil
	case "":
		return ListingLocalDeals, nil
	}
	return "", fmt.Errorf("%w: unknown listing type %q", ErrInvalidOffer, s)
}

type OfferStatus string

const (
	OfferInReview OfferStatus = "in_review"
	OfferApproved OfferStatus = "approved"
	OfferRejected OfferStatus = "rejected"
)

type RedemptionMode string

const (
	ModeOnline RedemptionMode = "online"
	ModeStore  RedemptionMode = "store"
	ModeBoth   RedemptionMode = "both"
)

func ParseRedemptionMode(s string) (RedemptionMode, error) {
	switch m := RedemptionMode(s); m {
	case ModeOnline, ModeStore, ModeBoth:
		return m, nil
	case "":
		return ModeBoth, nil
	}
	return "", fmt.Errorf("%w: unknown redemption mode %q", ErrInvalidOffer, s)
}

type Offer struct {
	ID                 uuid.UUID
	MerchantID         uuid.UUID
	Title              string
	Description        string
	Category           string
	District           string
	City               string
	Location           string
	OriginalPrice      decimal.Decimal
	DiscountPercentage int
	DiscountedPrice    decimal.Decimal
	ExpiryDate         time.Time
	RedemptionMode     RedemptionMode
	ListingType        ListingType
	Status             OfferStatus
	IsActive           bool
	ImageURL           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DiscountedPrice derives the customer price, rounded to paise.
func DiscountedPrice(original decimal.Decimal, pct int) decimal.Decimal {
	factor := decimal.NewFromInt(100 - int64(pct)).Div(decimal.NewFromInt(100))
	return original.Mul(factor).Round(2)
}

// IsVisible reports whether customers may see the offer at now.
func (o *Offer) IsVisible(now time.Time) bool {
	return o.IsActive && o.Status == OfferApproved && !o.ExpiryDate.Before(now)
}

// PriceConsistent reports whether the stored discounted price still matches
// the derived formula.
func (o *Offer) PriceConsistent() bool {
	return o.DiscountedPrice.Equal(DiscountedPrice(o.OriginalPrice, o.DiscountPercentage))
}

// OfferInput carries merchant-editable offer content.
type OfferInput struct {
	Title              string
	Description        string
	Category           string
	District           string
	City               string
	Location           string
	OriginalPrice      decimal.Decimal
	DiscountPercentage int
	ExpiryDate         time.Time
	RedemptionMode     RedemptionMode
	ListingType        ListingType
	ImageURL           string
}

func (in *OfferInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidOffer)
	}
	if in.DiscountPercentage < 1 || in.DiscountPercentage > 100 {
		return fmt.Errorf("%w: discount must be between 1 and 100", ErrInvalidOffer)
	}
	if in.OriginalPrice.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidOffer)
	}
	if !in.OriginalPrice.Equal(in.OriginalPrice.Round(2)) {
		return fmt.Errorf("%w: price must have at most 2 decimals", ErrInvalidOffer)
	}
	if in.ExpiryDate.IsZero() {
		return fmt.Errorf("%w: expiry date required", ErrInvalidOffer)
	}
	if _, err := ParseRedemptionMode(string(in.RedemptionMode)); err != nil {
		return err
	}
	if _, err := ParseListingType(string(in.ListingType)); err != nil {
		return err
	}
	return nil
}

// Apply copies the input onto o and recomputes the derived price.
func (in *OfferInput) Apply(o *Offer) {
	o.Title = strings.TrimSpace(in.Title)
	o.Description = in.Description
	o.Category = strings.TrimSpace(in.Category)
	o.District = in.District
	o.City = in.City
	o.Location = in.Location
	o.OriginalPrice = in.OriginalPrice
	o.DiscountPercentage = in.DiscountPercentage
	o.DiscountedPrice = DiscountedPrice(in.OriginalPrice, in.DiscountPercentage)
	o.ExpiryDate = in.ExpiryDate
	o.RedemptionMode = in.RedemptionMode
	if o.RedemptionMode == "" {
		o.RedemptionMode = ModeBoth
	}
	o.ListingType = in.ListingType
	if o.ListingType == "" {
		o.ListingType = ListingLocalDeals
	}
	o.ImageURL = in.ImageURL
}

const CategoryAll = "all"

// OfferFilter narrows the visible catalog. District is a display name;
// callers resolve district codes first.
type OfferFilter struct {
	Category    string
	District    string
	Search      string
	ListingType ListingType
	Limit       int
	Offset      int
}

// Matches applies the filter to an already-visible offer.
func (f OfferFilter) Matches(o *Offer) bool {
	if f.Category != "" && f.Category != CategoryAll && o.Category != f.Category {
		return false
	}
	if f.District != "" && !strings.EqualFold(o.District, f.District) && !strings.EqualFold(o.City, f.District) {
		return false
	}
	if f.ListingType != "" && o.ListingType != f.ListingType {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(o.Title), q) &&
			!strings.Contains(strings.ToLower(o.Description), q) &&
			!strings.Contains(strings.ToLower(o.Location), q) {
			return false
		}
	}
	return true
}

// MerchantStats summarizes a merchant dashboard.
type MerchantStats struct {
	OffersInReview      int
	OffersApproved      int
	OffersRejected      int
	ActiveOffers        int
	RedemptionsPending  int
	RedemptionsApproved int
	RedemptionsRejected int
}
