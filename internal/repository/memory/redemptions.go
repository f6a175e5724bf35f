package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
)

func (q *querier) InsertSavedOffer(_ context.Context, s *domain.SavedOffer) error {
	defer q.lock()()
	st := q.s.st

	if _, ok := st.offers[s.OfferID]; !ok {
		return fmt.Errorf("insert saved offer: offer %s does not exist", s.OfferID)
	}
	for _, existing := range st.saved {
		if existing.UserID == s.UserID && existing.OfferID == s.OfferID {
			return domain.ErrAlreadySaved
		}
	}
	s.SavedAt = q.now()
	row := *s
	row.Offer = nil
	st.saved[s.ID] = row
	st.savedOrder = append(st.savedOrder, s.ID)
	return nil
}

func (q *querier) DeleteSavedOffer(_ context.Context, id, userID uuid.UUID) (bool, error) {
	defer q.lock()()
	s, ok := q.s.st.saved[id]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(q.s.st.saved, id)
	return true, nil
}

func (q *querier) DeleteSavedOfferByPair(_ context.Context, userID, offerID uuid.UUID) error {
	defer q.lock()()
	if err := q.fault("DeleteSavedOfferByPair"); err != nil {
		return err
	}
	for id, s := range q.s.st.saved {
		if s.UserID == userID && s.OfferID == offerID {
			delete(q.s.st.saved, id)
		}
	}
	return nil
}

func (q *querier) ListSavedOffers(_ context.Context, userID uuid.UUID) ([]domain.SavedOffer, error) {
	defer q.lock()()
	st := q.s.st

	saved := newestFirst(st.savedOrder, st.saved, func(s *domain.SavedOffer) bool {
		return s.UserID == userID
	}, func(s *domain.SavedOffer) time.Time { return s.SavedAt })
	for i := range saved {
		o := st.offers[saved[i].OfferID]
		saved[i].Offer = &o
	}
	return saved, nil
}

func (q *querier) RedemptionExists(_ context.Context, userID, offerID uuid.UUID) (bool, error) {
	defer q.lock()()
	for _, r := range q.s.st.redemptions {
		if r.UserID == userID && r.OfferID == offerID {
			return true, nil
		}
	}
	return false, nil
}

func (q *querier) ListRedeemedOfferTitles(_ context.Context, userID uuid.UUID) ([]string, error) {
	defer q.lock()()
	st := q.s.st

	seen := make(map[string]bool)
	var titles []string
	for _, id := range st.redemptionOrder {
		r := st.redemptions[id]
		if r.UserID != userID {
			continue
		}
		title := st.offers[r.OfferID].Title
		if !seen[title] {
			seen[title] = true
			titles = append(titles, title)
		}
	}
	return titles, nil
}

// InsertRedemption enforces the per-(user, offer) uniqueness for rows not
// stamped unlimited, like the partial unique index.
func (q *querier) InsertRedemption(_ context.Context, r *domain.Redemption) error {
	defer q.lock()()
	st := q.s.st

	if err := q.fault("InsertRedemption"); err != nil {
		return err
	}
	if _, ok := st.offers[r.OfferID]; !ok {
		return fmt.Errorf("insert redemption: offer %s does not exist", r.OfferID)
	}
	if !r.Unlimited {
		for _, existing := range st.redemptions {
			if !existing.Unlimited && existing.UserID == r.UserID && existing.OfferID == r.OfferID {
				return domain.ErrAlreadyRedeemed
			}
		}
	}
	r.RedeemedAt = q.now()
	row := *r
	row.Offer = nil
	st.redemptions[r.ID] = row
	st.redemptionOrder = append(st.redemptionOrder, r.ID)
	return nil
}

func (q *querier) withOffer(r domain.Redemption) domain.Redemption {
	o := q.s.st.offers[r.OfferID]
	r.Offer = &o
	return r
}

func (q *querier) GetRedemption(_ context.Context, id uuid.UUID) (*domain.Redemption, error) {
	defer q.lock()()
	r, ok := q.s.st.redemptions[id]
	if !ok {
		return nil, domain.ErrRedemptionNotFound
	}
	r = q.withOffer(r)
	return &r, nil
}

func (q *querier) UpdateRedemptionStatus(_ context.Context, id uuid.UUID, from, to domain.RedemptionStatus) error {
	defer q.lock()()
	r, ok := q.s.st.redemptions[id]
	if !ok || r.Status != from {
		return domain.ErrInvalidTransition
	}
	r.Status = to
	q.s.st.redemptions[id] = r
	return nil
}

func redeemedAt(r *domain.Redemption) time.Time { return r.RedeemedAt }

func (q *querier) ListRedemptionsByUser(_ context.Context, userID uuid.UUID) ([]domain.Redemption, error) {
	defer q.lock()()
	st := q.s.st
	out := newestFirst(st.redemptionOrder, st.redemptions, func(r *domain.Redemption) bool {
		return r.UserID == userID
	}, redeemedAt)
	for i := range out {
		out[i] = q.withOffer(out[i])
	}
	return out, nil
}

func (q *querier) ListRedemptionsByMerchant(_ context.Context, merchantID uuid.UUID, status *domain.RedemptionStatus) ([]domain.Redemption, error) {
	defer q.lock()()
	st := q.s.st
	out := newestFirst(st.redemptionOrder, st.redemptions, func(r *domain.Redemption) bool {
		if status != nil && r.Status != *status {
			return false
		}
		return st.offers[r.OfferID].MerchantID == merchantID
	}, redeemedAt)
	for i := range out {
		out[i] = q.withOffer(out[i])
	}
	return out, nil
}

func (q *querier) GetMerchantStats(_ context.Context, merchantID uuid.UUID) (domain.MerchantStats, error) {
	defer q.lock()()
	st := q.s.st
	now := q.now()

	var s domain.MerchantStats
	for _, o := range st.offers {
		if o.MerchantID != merchantID {
			continue
		}
		switch o.Status {
		case domain.OfferInReview:
			s.OffersInReview++
		case domain.OfferApproved:
			s.OffersApproved++
		case domain.OfferRejected:
			s.OffersRejected++
		}
		if o.IsVisible(now) {
			s.ActiveOffers++
		}
	}
	for _, r := range st.redemptions {
		if st.offers[r.OfferID].MerchantID != merchantID {
			continue
		}
		switch r.Status {
		case domain.RedemptionPending:
			s.RedemptionsPending++
		case domain.RedemptionApproved:
			s.RedemptionsApproved++
		case domain.RedemptionRejected:
			s.RedemptionsRejected++
		}
	}
	return s, nil
}
