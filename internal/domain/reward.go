package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityReferral         ActivityType = "referral"
	ActivityQRScan           ActivityType = "qr_scan"
	ActivityRewardRedemption ActivityType = "reward_redemption"
	ActivityAdjustment       ActivityType = "adjustment"
)

// UserReward is the per-account points ledger head.
type UserReward struct {
	UserID              uuid.UUID
	CurrentPoints       int64
	TotalEarnedPoints   int64
	TotalRedeemedPoints int64
	LevelName           string
	ReferralCode        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RewardActivity is an append-only ledger entry.
type RewardActivity struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Points        int64
	ActivityType  ActivityType
	Description   string
	ReferenceID   *uuid.UUID
	ReferenceType string
	CreatedAt     time.Time
}

// PointsEntry is a request to move a balance by Points and record it.
type PointsEntry struct {
	UserID        uuid.UUID
	Points        int64
	ActivityType  ActivityType
	Description   string
	ReferenceID   *uuid.UUID
	ReferenceType string
}

type RewardOffer struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	PointsRequired     int64
	MaxRedemptions     *int
	CurrentRedemptions int
	ExpiryDate         *time.Time
	IsActive           bool
	CreatedAt          time.Time
}

func (r *RewardOffer) SoldOut() bool {
	return r.MaxRedemptions != nil && r.CurrentRedemptions >= *r.MaxRedemptions
}

func (r *RewardOffer) Expired(now time.Time) bool {
	return r.ExpiryDate != nil && r.ExpiryDate.Before(now)
}

type RewardRedemption struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	RewardOfferID uuid.UUID
	PointsSpent   int64
	CreatedAt     time.Time
}

// Loyalty levels by lifetime earned points.
var levels = []struct {
	min  int64
	name string
}{
	{5000, "Platinum"},
	{1500, "Gold"},
	{500, "Silver"},
	{0, "Bronze"},
}

func LevelFor(totalEarned int64) string {
	for _, l := range levels {
		if totalEarned >= l.min {
			return l.name
		}
	}
	return "Bronze"
}

// ApplyEntry moves the ledger head by points. The caller guarantees the
// resulting balance is not negative.
func (r *UserReward) ApplyEntry(points int64, now time.Time) {
	r.CurrentPoints += points
	if points > 0 {
		r.TotalEarnedPoints += points
	} else {
		r.TotalRedeemedPoints -= points
	}
	r.LevelName = LevelFor(r.TotalEarnedPoints)
	r.UpdatedAt = now
}
