package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

type RewardsService struct {
	store          repository.Store
	pointsReferral int64
	pointsQRScan   int64
	now            func() time.Time
}

func NewRewardsService(store repository.Store, pointsReferral, pointsQRScan int64) *RewardsService {
	return &RewardsService{
		store:          store,
		pointsReferral: pointsReferral,
		pointsQRScan:   pointsQRScan,
		now:            time.Now,
	}
}

// AwardPoints appends a ledger entry and moves the balance by e.Points in a
// single conditional update. Entries that would overdraw the balance fail
// with ErrInsufficientPoints and change nothing.
func (s *RewardsService) AwardPoints(ctx context.Context, e domain.PointsEntry) (*domain.UserReward, error) {
	if e.Points == 0 {
		return s.store.GetUserReward(ctx, e.UserID)
	}
	return s.store.ApplyPoints(ctx, e, s.now())
}

// AdjustPoints is a manual correction by an admin.
func (s *RewardsService) AdjustPoints(ctx context.Context, actor *domain.Actor, userID uuid.UUID, delta int64, reason string) (*domain.UserReward, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	ref := actor.UserID
	return s.AwardPoints(ctx, domain.PointsEntry{
		UserID:        userID,
		Points:        delta,
		ActivityType:  domain.ActivityAdjustment,
		Description:   strings.TrimSpace(reason),
		ReferenceID:   &ref,
		ReferenceType: "profile",
	})
}

// RedeemRewardOffer spends points on a reward. The balance deduction, the
// redemption record and the stock counter commit together or not at all.
func (s *RewardsService) RedeemRewardOffer(ctx context.Context, actor *domain.Actor, rewardOfferID uuid.UUID) (*domain.RewardRedemption, *domain.UserReward, error) {
	if actor == nil {
		return nil, nil, domain.ErrUnauthenticated
	}
	now := s.now()

	var (
		redemption *domain.RewardRedemption
		head       *domain.UserReward
	)
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		offer, err := q.GetRewardOfferForUpdate(ctx, rewardOfferID)
		if err != nil {
			return err
		}
		if !offer.IsActive {
			return domain.ErrRewardOfferNotFound
		}

		reward, err := q.GetUserReward(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if reward.CurrentPoints < offer.PointsRequired {
			return domain.ErrInsufficientPoints
		}
		if offer.SoldOut() {
			return domain.ErrSoldOut
		}
		if offer.Expired(now) {
			return domain.ErrExpired
		}

		redemption = &domain.RewardRedemption{
			ID:            uuid.New(),
			UserID:        actor.UserID,
			RewardOfferID: offer.ID,
			PointsSpent:   offer.PointsRequired,
		}
		if err := q.InsertRewardRedemption(ctx, redemption); err != nil {
			return err
		}

		ref := redemption.ID
		head, err = q.ApplyPoints(ctx, domain.PointsEntry{
			UserID:        actor.UserID,
			Points:        -offer.PointsRequired,
			ActivityType:  domain.ActivityRewardRedemption,
			Description:   fmt.Sprintf("Redeemed: %s", offer.Title),
			ReferenceID:   &ref,
			ReferenceType: "reward_redemption",
		}, now)
		if err != nil {
			return err
		}

		return q.IncrementRewardRedemptions(ctx, offer.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return redemption, head, nil
}

// ApplyReferral credits the owner of code for bringing in newUserID.
func (s *RewardsService) ApplyReferral(ctx context.Context, newUserID uuid.UUID, code string) (*domain.UserReward, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrInvalidReferral
	}
	referrer, err := s.store.GetUserRewardByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer.UserID == newUserID {
		return nil, domain.ErrInvalidReferral
	}

	ref := newUserID
	return s.AwardPoints(ctx, domain.PointsEntry{
		UserID:        referrer.UserID,
		Points:        s.pointsReferral,
		ActivityType:  domain.ActivityReferral,
		Description:   "Referral bonus",
		ReferenceID:   &ref,
		ReferenceType: "profile",
	})
}

// RecordQRScan credits a customer for scanning a live offer's in-store QR
// code. Each offer pays out once per account.
func (s *RewardsService) RecordQRScan(ctx context.Context, actor *domain.Actor, offerID uuid.UUID) (*domain.UserReward, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	offer, err := activeOffer(ctx, s.store, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsVisible(s.now()) {
		return nil, domain.ErrOfferUnavailable
	}

	ref := offer.ID
	return s.AwardPoints(ctx, domain.PointsEntry{
		UserID:        actor.UserID,
		Points:        s.pointsQRScan,
		ActivityType:  domain.ActivityQRScan,
		Description:   fmt.Sprintf("QR scan: %s", offer.Title),
		ReferenceID:   &ref,
		ReferenceType: "offer",
	})
}

func (s *RewardsService) Summary(ctx context.Context, actor *domain.Actor) (*domain.UserReward, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.GetUserReward(ctx, actor.UserID)
}

// History returns the actor's ledger entries, newest first.
func (s *RewardsService) History(ctx context.Context, actor *domain.Actor, limit int) ([]domain.RewardActivity, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListRewardActivities(ctx, actor.UserID, limit)
}

type RewardOfferInput struct {
	Title          string
	Description    string
	PointsRequired int64
	MaxRedemptions *int
	ExpiryDate     *time.Time
}

func (s *RewardsService) CreateRewardOffer(ctx context.Context, actor *domain.Actor, in RewardOfferInput) (*domain.RewardOffer, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title required", domain.ErrInvalidReward)
	}
	if in.PointsRequired <= 0 {
		return nil, fmt.Errorf("%w: points required must be positive", domain.ErrInvalidReward)
	}
	if in.MaxRedemptions != nil && *in.MaxRedemptions <= 0 {
		return nil, fmt.Errorf("%w: max redemptions must be positive", domain.ErrInvalidReward)
	}

	r := &domain.RewardOffer{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(in.Title),
		Description:    PlainText(in.Description),
		PointsRequired: in.PointsRequired,
		MaxRedemptions: in.MaxRedemptions,
		ExpiryDate:     in.ExpiryDate,
		IsActive:       true,
	}
	if err := s.store.CreateRewardOffer(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRewardOffers returns rewards that can still be redeemed.
func (s *RewardsService) ListRewardOffers(ctx context.Context) ([]domain.RewardOffer, error) {
	return s.store.ListRewardOffers(ctx, s.now())
}
