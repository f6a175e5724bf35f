package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

type SaveService struct {
	store repository.Store
}

func NewSaveService(store repository.Store) *SaveService {
	return &SaveService{store: store}
}

// SaveOffer bookmarks an active offer. A second save of the same pair
// returns ErrAlreadySaved; the pair is unique in the store, so concurrent
// saves cannot both succeed.
func (s *SaveService) SaveOffer(ctx context.Context, actor *domain.Actor, offerID uuid.UUID) (*domain.SavedOffer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	offer, err := activeOffer(ctx, s.store, offerID)
	if err != nil {
		return nil, err
	}

	saved := &domain.SavedOffer{ID: uuid.New(), OfferID: offerID, UserID: actor.UserID}
	if err := s.store.InsertSavedOffer(ctx, saved); err != nil {
		return nil, err
	}
	saved.Offer = offer
	return saved, nil
}

// RemoveSavedOffer deletes a bookmark owned by the actor. It reports false,
// without error, when there was nothing of theirs to delete.
func (s *SaveService) RemoveSavedOffer(ctx context.Context, actor *domain.Actor, savedOfferID uuid.UUID) (bool, error) {
	if actor == nil {
		return false, domain.ErrUnauthenticated
	}
	return s.store.DeleteSavedOffer(ctx, savedOfferID, actor.UserID)
}

func (s *SaveService) ListSaved(ctx context.Context, actor *domain.Actor) ([]domain.SavedOffer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListSavedOffers(ctx, actor.UserID)
}

// activeOffer loads an offer that is switched on. Moderation status is not
// checked here.
func activeOffer(ctx context.Context, q repository.Querier, offerID uuid.UUID) (*domain.Offer, error) {
	o, err := q.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, domain.ErrOfferNotFound) {
			return nil, domain.ErrOfferUnavailable
		}
		return nil, err
	}
	if !o.IsActive {
		return nil, domain.ErrOfferUnavailable
	}
	return o, nil
}
