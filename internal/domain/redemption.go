package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SavedOffer struct {
	ID      uuid.UUID
	OfferID uuid.UUID
	UserID  uuid.UUID
	SavedAt time.Time

	// Offer is populated by listing queries.
	Offer *Offer
}

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "pending"
	RedemptionApproved RedemptionStatus = "approved"
	RedemptionRejected RedemptionStatus = "rejected"
)

func ParseRedemptionStatus(s string) (RedemptionStatus, error) {
	switch st := RedemptionStatus(s); st {
	case RedemptionPending, RedemptionApproved, RedemptionRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown redemption status %q", s)
}

type Redemption struct {
	ID         uuid.UUID
	OfferID    uuid.UUID
	UserID     uuid.UUID
	RedeemedAt time.Time
	Status     RedemptionStatus
	// Unlimited is stamped from the redeeming account's role and exempts the
	// row from the per-(user, offer) uniqueness constraint.
	Unlimited bool

	Offer *Offer
}

// CanTransition reports whether a redemption may move from -> to.
// Only pending redemptions can be decided; decisions are final.
func (s RedemptionStatus) CanTransition(to RedemptionStatus) bool {
	return s == RedemptionPending && (to == RedemptionApproved || to == RedemptionRejected)
}

// CanTransition reports whether moderation may move an offer from s to to.
func (s OfferStatus) CanTransition(to OfferStatus) bool {
	return s == OfferInReview && (to == OfferApproved || to == OfferRejected)
}

// FirstTitleToken returns the lowercased first whitespace-delimited word of title.
func FirstTitleToken(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SimilarTitle reports whether prior contains the first word of target,
// case-insensitively. This is the duplicate-redemption heuristic used for
// non-merchant accounts.
func SimilarTitle(target, prior string) bool {
	token := FirstTitleToken(target)
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(prior), token)
}
