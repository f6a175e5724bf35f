package domain

import "errors"

var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("not allowed for this account")
	ErrAlreadySaved           = errors.New("offer already saved")
	ErrAlreadyRedeemed        = errors.New("offer already redeemed")
	ErrSimilarAlreadyRedeemed = errors.New("similar offer already redeemed")
	ErrOfferUnavailable       = errors.New("offer unavailable")
	ErrOfferNotFound          = errors.New("offer not found")
	ErrInvalidOffer           = errors.New("invalid offer")
	ErrListingTypeNotAllowed  = errors.New("listing type not allowed for plan")
	ErrOfferLimitReached      = errors.New("plan offer limit reached")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrRedemptionNotFound     = errors.New("redemption not found")
	ErrSavedOfferNotFound     = errors.New("saved offer not found")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrInvalidProfile         = errors.New("invalid profile")
	ErrRoleImmutable          = errors.New("profile already exists with a role")
	ErrInsufficientPoints     = errors.New("insufficient points")
	ErrSoldOut                = errors.New("reward sold out")
	ErrExpired                = errors.New("reward expired")
	ErrRewardOfferNotFound    = errors.New("reward offer not found")
	ErrInvalidReferral        = errors.New("invalid referral code")
	ErrAlreadyScanned         = errors.New("offer already scanned")
	ErrInvalidReward          = errors.New("invalid reward offer")
	ErrRateLimited            = errors.New("too many requests")
)

// businessErrors are the expected, user-facing outcomes. Anything else
// reaching a call boundary is a store error.
var businessErrors = []error{
	ErrUnauthenticated,
	ErrForbidden,
	ErrAlreadySaved,
	ErrAlreadyRedeemed,
	ErrSimilarAlreadyRedeemed,
	ErrOfferUnavailable,
	ErrOfferNotFound,
	ErrInvalidOffer,
	ErrListingTypeNotAllowed,
	ErrOfferLimitReached,
	ErrInvalidTransition,
	ErrRedemptionNotFound,
	ErrSavedOfferNotFound,
	ErrProfileNotFound,
	ErrInvalidProfile,
	ErrRoleImmutable,
	ErrInsufficientPoints,
	ErrSoldOut,
	ErrExpired,
	ErrRewardOfferNotFound,
	ErrInvalidReferral,
	ErrAlreadyScanned,
	ErrInvalidReward,
	ErrRateLimited,
}

// IsStoreError reports whether err is an unexpected data-layer failure
// rather than one of the business outcomes above.
func IsStoreError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}
