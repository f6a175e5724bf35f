package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

type CatalogService struct {
	store            repository.Store
	enforcePlanLimit bool
	now              func() time.Time
}

func NewCatalogService(store repository.Store, enforcePlanLimit bool) *CatalogService {
	return &CatalogService{store: store, enforcePlanLimit: enforcePlanLimit, now: time.Now}
}

// ListVisibleOffers returns active, approved, unexpired offers, newest first.
// District codes are resolved to display names before matching.
func (s *CatalogService) ListVisibleOffers(ctx context.Context, f domain.OfferFilter) ([]domain.Offer, error) {
	f.District = domain.ResolveDistrict(f.District)
	f.Category = strings.TrimSpace(f.Category)
	if f.Limit <= 0 || f.Limit > config.MaxPageSize {
		f.Limit = config.MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	offers, err := s.store.ListVisibleOffers(ctx, f, s.now())
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// GetOffer returns a visible offer, or any offer the actor manages.
func (s *CatalogService) GetOffer(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Offer, error) {
	o, err := s.store.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.IsVisible(s.now()) || (actor != nil && actor.CanManageOffer(o.MerchantID)) {
		return o, nil
	}
	return nil, domain.ErrOfferNotFound
}

// ListOffersByMerchant returns every offer of a merchant regardless of status.
func (s *CatalogService) ListOffersByMerchant(ctx context.Context, actor *domain.Actor, merchantID uuid.UUID) ([]domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.CanManageOffer(merchantID) {
		return nil, domain.ErrForbidden
	}
	return s.store.ListOffersByMerchant(ctx, merchantID)
}

// CreateOffer posts a merchant's own offer into moderation.
func (s *CatalogService) CreateOffer(ctx context.Context, actor *domain.Actor, in domain.OfferInput) (*domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	err := domain.MatchRole(actor.Role,
		func() error { return domain.ErrForbidden },
		func() error { return nil },
		// Admins post through AdminService.
		func() error { return domain.ErrForbidden },
	)
	if err != nil {
		return nil, err
	}
	return s.createOffer(ctx, actor.UserID, in, domain.OfferInReview)
}

func (s *CatalogService) createOffer(ctx context.Context, merchantID uuid.UUID, in domain.OfferInput, status domain.OfferStatus) (*domain.Offer, error) {
	now := s.now()
	if err := s.validateInput(&in, now); err != nil {
		return nil, err
	}

	o := &domain.Offer{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Status:     status,
		IsActive:   true,
	}
	in.Apply(o)

	err := s.store.InTx(ctx, func(q repository.Querier) error {
		owner, err := q.GetProfileForUpdate(ctx, merchantID)
		if err != nil {
			return err
		}
		if !owner.IsMerchant() {
			return fmt.Errorf("%w: offers belong to merchant accounts", domain.ErrInvalidProfile)
		}
		if !domain.ListingTypeAllowed(owner, o.ListingType) {
			return domain.ErrListingTypeNotAllowed
		}
		if s.enforcePlanLimit {
			n, err := q.CountOffersCreatedSince(ctx, merchantID, monthStart(now))
			if err != nil {
				return fmt.Errorf("count offers: %w", err)
			}
			if n >= owner.CurrentPlan.MonthlyOfferLimit() {
				return domain.ErrOfferLimitReached
			}
		}
		return q.CreateOffer(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// EditOffer replaces an offer's content. Moderation status is left as is.
func (s *CatalogService) EditOffer(ctx context.Context, actor *domain.Actor, offerID uuid.UUID, in domain.OfferInput) (*domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.validateInput(&in, s.now()); err != nil {
		return nil, err
	}

	var o *domain.Offer
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		var err error
		o, err = q.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		if !actor.CanManageOffer(o.MerchantID) {
			return domain.ErrForbidden
		}
		owner, err := q.GetProfileByID(ctx, o.MerchantID)
		if err != nil {
			return err
		}
		in.Apply(o)
		if !domain.ListingTypeAllowed(owner, o.ListingType) {
			return domain.ErrListingTypeNotAllowed
		}
		return q.UpdateOfferContent(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// SetActive toggles customer visibility independently of moderation.
func (s *CatalogService) SetActive(ctx context.Context, actor *domain.Actor, offerID uuid.UUID, active bool) (*domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	o, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageOffer(o.MerchantID) {
		return nil, domain.ErrForbidden
	}
	if err := s.store.SetOfferActive(ctx, offerID, active); err != nil {
		return nil, err
	}
	o.IsActive = active
	return o, nil
}

func (s *CatalogService) MerchantStats(ctx context.Context, actor *domain.Actor, merchantID uuid.UUID) (domain.MerchantStats, error) {
	if actor == nil {
		return domain.MerchantStats{}, domain.ErrUnauthenticated
	}
	if !actor.CanManageOffer(merchantID) {
		return domain.MerchantStats{}, domain.ErrForbidden
	}
	return s.store.GetMerchantStats(ctx, merchantID)
}

// ReviewQueue lists offers waiting for moderation, oldest first.
func (s *CatalogService) ReviewQueue(ctx context.Context, actor *domain.Actor, limit int) ([]domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = config.ReviewQueueSize
	}
	return s.store.ListOffersByStatus(ctx, domain.OfferInReview, limit)
}

func (s *CatalogService) validateInput(in *domain.OfferInput, now time.Time) error {
	in.Description = PlainText(in.Description)
	in.District = domain.ResolveDistrict(in.District)
	if err := in.Validate(); err != nil {
		return err
	}
	if !in.ExpiryDate.After(now) {
		return fmt.Errorf("%w: expiry date must be in the future", domain.ErrInvalidOffer)
	}
	return nil
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PlainText strips markup from a merchant-supplied description and
// collapses whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return truncate(strings.Join(strings.Fields(s), " "), config.MaxDescriptionLen)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return truncate(strings.Join(strings.Fields(s), " "), config.MaxDescriptionLen)
	}
	doc.Find("script, style").Remove()
	return truncate(strings.Join(strings.Fields(doc.Text()), " "), config.MaxDescriptionLen)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
