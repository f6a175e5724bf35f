package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
)

// AdminService is the super_admin override over any merchant's offers.
type AdminService struct {
	catalog *CatalogService
}

func NewAdminService(catalog *CatalogService) *AdminService {
	return &AdminService{catalog: catalog}
}

func requireSuperAdmin(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsSuperAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// AdminCreateOffer posts an offer for merchantID with the same validation
// as merchant creation. The offer skips moderation and is live at once.
func (s *AdminService) AdminCreateOffer(ctx context.Context, actor *domain.Actor, merchantID uuid.UUID, in domain.OfferInput) (*domain.Offer, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	return s.catalog.createOffer(ctx, merchantID, in, domain.OfferApproved)
}

// AdminUpdateOfferStatus moderates an offer of any owner.
func (s *AdminService) AdminUpdateOfferStatus(ctx context.Context, actor *domain.Actor, offerID uuid.UUID, to domain.OfferStatus) (*domain.Offer, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	o, err := s.catalog.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.catalog.store.UpdateOfferStatus(ctx, offerID, o.Status, to); err != nil {
		return nil, err
	}
	o.Status = to
	return o, nil
}

// AdminEditOffer edits any merchant's offer. The listing gate is checked
// against the owning merchant's plan.
func (s *AdminService) AdminEditOffer(ctx context.Context, actor *domain.Actor, offerID uuid.UUID, in domain.OfferInput) (*domain.Offer, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	return s.catalog.EditOffer(ctx, actor, offerID, in)
}
