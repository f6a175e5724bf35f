package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Plan string

const (
	PlanNone     Plan = ""
	PlanSilver   Plan = "silver"
	PlanGold     Plan = "gold"
	PlanPlatinum Plan = "platinum"
)

// PlanLimits is the canonical monthly offer allowance per plan.
var PlanLimits = map[Plan]int{
	PlanSilver:   2,
	PlanGold:     10,
	PlanPlatinum: 30,
}

// PlanPrices are monthly prices in rupees, shown when an admin records a plan.
var PlanPrices = map[Plan]decimal.Decimal{
	PlanSilver:   decimal.NewFromInt(999),
	PlanGold:     decimal.NewFromInt(2499),
	PlanPlatinum: decimal.NewFromInt(4999),
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlanNone, PlanSilver, PlanGold, PlanPlatinum:
		return p, nil
	}
	return "", fmt.Errorf("unknown plan %q", s)
}

// MonthlyOfferLimit returns how many offers a merchant on this plan may
// create per calendar month. Merchants without a plan are treated as Silver.
func (p Plan) MonthlyOfferLimit() int {
	if n, ok := PlanLimits[p]; ok {
		return n
	}
	return PlanLimits[PlanSilver]
}

// GrantsPromotedListings reports whether the plan unlocks hot_offers and trending.
func (p Plan) GrantsPromotedListings() bool {
	return p == PlanGold || p == PlanPlatinum
}

func (p Plan) Price() decimal.Decimal {
	return PlanPrices[p]
}

func (p Plan) Label() string {
	if p == PlanNone {
		return "Free"
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// AllowedListingTypes derives the listing types a merchant may assign.
func AllowedListingTypes(p *Profile) []ListingType {
	if p != nil && (p.IsPremium || p.CurrentPlan.GrantsPromotedListings()) {
		return []ListingType{ListingHotOffers, ListingTrending, ListingLocalDeals}
	}
	return []ListingType{ListingLocalDeals}
}

func ListingTypeAllowed(p *Profile, lt ListingType) bool {
	for _, allowed := range AllowedListingTypes(p) {
		if allowed == lt {
			return true
		}
	}
	return false
}
