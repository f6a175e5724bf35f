package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
)

func (q *querier) CreateProfile(_ context.Context, p *domain.Profile) error {
	defer q.lock()()
	st := q.s.st

	if _, ok := st.profiles[p.ID]; ok {
		return domain.ErrRoleImmutable
	}
	if p.TelegramID != nil {
		for _, existing := range st.profiles {
			if existing.TelegramID != nil && *existing.TelegramID == *p.TelegramID {
				return domain.ErrRoleImmutable
			}
		}
	}
	now := q.now()
	p.CreatedAt, p.UpdatedAt = now, now
	st.profiles[p.ID] = *p
	return nil
}

func (q *querier) GetProfileByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	defer q.lock()()
	p, ok := q.s.st.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

// GetProfileForUpdate needs no row lock here: InTx already holds the store lock.
func (q *querier) GetProfileForUpdate(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return q.GetProfileByID(ctx, id)
}

func (q *querier) GetProfileByTelegramID(_ context.Context, telegramID int64) (*domain.Profile, error) {
	defer q.lock()()
	for _, p := range q.s.st.profiles {
		if p.TelegramID != nil && *p.TelegramID == telegramID {
			return &p, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (q *querier) UpdateProfilePlan(_ context.Context, id uuid.UUID, plan domain.Plan, premium bool) error {
	defer q.lock()()
	p, ok := q.s.st.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.CurrentPlan = plan
	p.IsPremium = premium
	p.UpdatedAt = q.now()
	q.s.st.profiles[id] = p
	return nil
}

// checkOffer mirrors the CHECK constraints on the offers table.
func checkOffer(o *domain.Offer) error {
	if o.DiscountPercentage < 1 || o.DiscountPercentage > 100 {
		return fmt.Errorf("%w: discount_percentage out of range", domain.ErrInvalidOffer)
	}
	if o.OriginalPrice.IsNegative() {
		return fmt.Errorf("%w: negative original_price", domain.ErrInvalidOffer)
	}
	if !o.PriceConsistent() {
		return fmt.Errorf("%w: discounted_price does not match", domain.ErrInvalidOffer)
	}
	return nil
}

func (q *querier) CreateOffer(_ context.Context, o *domain.Offer) error {
	defer q.lock()()
	st := q.s.st

	if _, ok := st.profiles[o.MerchantID]; !ok {
		return fmt.Errorf("insert offer: merchant %s does not exist", o.MerchantID)
	}
	if err := checkOffer(o); err != nil {
		return err
	}
	now := q.now()
	o.CreatedAt, o.UpdatedAt = now, now
	st.offers[o.ID] = *o
	st.offerOrder = append(st.offerOrder, o.ID)
	return nil
}

func (q *querier) UpdateOfferContent(_ context.Context, o *domain.Offer) error {
	defer q.lock()()
	st := q.s.st

	cur, ok := st.offers[o.ID]
	if !ok {
		return domain.ErrOfferNotFound
	}
	if err := checkOffer(o); err != nil {
		return err
	}
	cur.Title = o.Title
	cur.Description = o.Description
	cur.Category = o.Category
	cur.District = o.District
	cur.City = o.City
	cur.Location = o.Location
	cur.OriginalPrice = o.OriginalPrice
	cur.DiscountPercentage = o.DiscountPercentage
	cur.DiscountedPrice = o.DiscountedPrice
	cur.ExpiryDate = o.ExpiryDate
	cur.RedemptionMode = o.RedemptionMode
	cur.ListingType = o.ListingType
	cur.ImageURL = o.ImageURL
	cur.UpdatedAt = q.now()
	st.offers[o.ID] = cur
	o.UpdatedAt = cur.UpdatedAt
	return nil
}

func (q *querier) GetOffer(_ context.Context, id uuid.UUID) (*domain.Offer, error) {
	defer q.lock()()
	o, ok := q.s.st.offers[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	return &o, nil
}

func offerCreated(o *domain.Offer) time.Time { return o.CreatedAt }

func (q *querier) ListVisibleOffers(_ context.Context, f domain.OfferFilter, now time.Time) ([]domain.Offer, error) {
	defer q.lock()()
	st := q.s.st

	offers := newestFirst(st.offerOrder, st.offers, func(o *domain.Offer) bool {
		return o.IsVisible(now) && f.Matches(o)
	}, offerCreated)

	if f.Offset > 0 {
		if f.Offset >= len(offers) {
			return nil, nil
		}
		offers = offers[f.Offset:]
	}
	if f.Limit > 0 && len(offers) > f.Limit {
		offers = offers[:f.Limit]
	}
	return offers, nil
}

func (q *querier) ListOffersByMerchant(_ context.Context, merchantID uuid.UUID) ([]domain.Offer, error) {
	defer q.lock()()
	st := q.s.st
	return newestFirst(st.offerOrder, st.offers, func(o *domain.Offer) bool {
		return o.MerchantID == merchantID
	}, offerCreated), nil
}

func (q *querier) ListOffersByStatus(_ context.Context, status domain.OfferStatus, limit int) ([]domain.Offer, error) {
	defer q.lock()()
	st := q.s.st

	var out []domain.Offer
	for _, id := range st.offerOrder {
		o := st.offers[id]
		if o.Status != status {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (q *querier) UpdateOfferStatus(_ context.Context, id uuid.UUID, from, to domain.OfferStatus) error {
	defer q.lock()()
	o, ok := q.s.st.offers[id]
	if !ok || o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = q.now()
	q.s.st.offers[id] = o
	return nil
}

func (q *querier) SetOfferActive(_ context.Context, id uuid.UUID, active bool) error {
	defer q.lock()()
	o, ok := q.s.st.offers[id]
	if !ok {
		return domain.ErrOfferNotFound
	}
	o.IsActive = active
	o.UpdatedAt = q.now()
	q.s.st.offers[id] = o
	return nil
}

func (q *querier) CountOffersCreatedSince(_ context.Context, merchantID uuid.UUID, since time.Time) (int, error) {
	defer q.lock()()
	n := 0
	for _, o := range q.s.st.offers {
		if o.MerchantID == merchantID && !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (q *querier) HitRateLimit(_ context.Context, key string, window time.Duration) (int, error) {
	defer q.lock()()
	now := q.now()
	w := q.s.st.rateLimits[key]
	if w.start.IsZero() || w.start.Before(now.Add(-window)) {
		w = rateWindow{start: now}
	}
	w.count++
	q.s.st.rateLimits[key] = w
	return w.count, nil
}

func (q *querier) PurgeRateLimits(_ context.Context, before time.Time) (int64, error) {
	defer q.lock()()
	var n int64
	for key, w := range q.s.st.rateLimits {
		if w.start.Before(before) {
			delete(q.s.st.rateLimits, key)
			n++
		}
	}
	return n, nil
}
