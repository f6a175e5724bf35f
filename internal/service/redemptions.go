package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

type RedemptionService struct {
	store repository.Store
}

func NewRedemptionService(store repository.Store) *RedemptionService {
	return &RedemptionService{store: store}
}

// RedeemOffer claims an active offer for the actor, pending merchant
// approval. Merchant accounts may redeem without limit; everyone else gets
// one redemption per offer and none for offers whose title looks like one
// they already redeemed.
func (s *RedemptionService) RedeemOffer(ctx context.Context, actor *domain.Actor, offerID uuid.UUID) (*domain.Redemption, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	unlimited := actor.UnlimitedRedemptions()

	offer, err := activeOffer(ctx, s.store, offerID)
	if err != nil {
		return nil, err
	}

	if !unlimited {
		exists, err := s.store.RedemptionExists(ctx, actor.UserID, offerID)
		if err != nil {
			return nil, fmt.Errorf("check redemption: %w", err)
		}
		if exists {
			return nil, domain.ErrAlreadyRedeemed
		}

		titles, err := s.store.ListRedeemedOfferTitles(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("list redeemed titles: %w", err)
		}
		for _, prior := range titles {
			if domain.SimilarTitle(offer.Title, prior) {
				return nil, domain.ErrSimilarAlreadyRedeemed
			}
		}
	}

	r := &domain.Redemption{
		ID:        uuid.New(),
		OfferID:   offerID,
		UserID:    actor.UserID,
		Status:    domain.RedemptionPending,
		Unlimited: unlimited,
	}
	if err := s.store.InsertRedemption(ctx, r); err != nil {
		return nil, err
	}
	r.Offer = offer

	// The redemption stands even if the bookmark cannot be cleared.
	if err := s.store.DeleteSavedOfferByPair(ctx, actor.UserID, offerID); err != nil {
		slog.Warn("failed to clear saved offer after redemption", "error", err,
			"user_id", actor.UserID, "offer_id", offerID, "redemption_id", r.ID)
	}
	return r, nil
}

func (s *RedemptionService) ApproveRedemption(ctx context.Context, actor *domain.Actor, redemptionID uuid.UUID) (*domain.Redemption, error) {
	return s.decide(ctx, actor, redemptionID, domain.RedemptionApproved)
}

func (s *RedemptionService) RejectRedemption(ctx context.Context, actor *domain.Actor, redemptionID uuid.UUID) (*domain.Redemption, error) {
	return s.decide(ctx, actor, redemptionID, domain.RedemptionRejected)
}

func (s *RedemptionService) decide(ctx context.Context, actor *domain.Actor, redemptionID uuid.UUID, to domain.RedemptionStatus) (*domain.Redemption, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	r, err := s.store.GetRedemption(ctx, redemptionID)
	if err != nil {
		return nil, err
	}
	if r.Offer == nil || !actor.CanManageOffer(r.Offer.MerchantID) {
		return nil, domain.ErrForbidden
	}
	if !r.Status.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.store.UpdateRedemptionStatus(ctx, redemptionID, r.Status, to); err != nil {
		return nil, err
	}
	r.Status = to
	return r, nil
}

func (s *RedemptionService) ListForUser(ctx context.Context, actor *domain.Actor) ([]domain.Redemption, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListRedemptionsByUser(ctx, actor.UserID)
}

// ListForMerchant lists redemptions against a merchant's offers, optionally
// narrowed to one status.
func (s *RedemptionService) ListForMerchant(ctx context.Context, actor *domain.Actor, merchantID uuid.UUID, status *domain.RedemptionStatus) ([]domain.Redemption, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.CanManageOffer(merchantID) {
		return nil, domain.ErrForbidden
	}
	return s.store.ListRedemptionsByMerchant(ctx, merchantID, status)
}
