package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

func (q *querier) CreateUserReward(_ context.Context, r *domain.UserReward) error {
	defer q.lock()()
	st := q.s.st

	if _, ok := st.profiles[r.UserID]; !ok {
		return fmt.Errorf("insert user reward: profile %s does not exist", r.UserID)
	}
	if _, ok := st.rewards[r.UserID]; ok {
		return fmt.Errorf("insert user reward: duplicate user %s", r.UserID)
	}
	for _, existing := range st.rewards {
		if existing.ReferralCode == r.ReferralCode {
			return repository.ErrReferralCodeTaken
		}
	}
	now := q.now()
	*r = domain.UserReward{
		UserID:       r.UserID,
		ReferralCode: r.ReferralCode,
		LevelName:    domain.LevelFor(0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	st.rewards[r.UserID] = *r
	return nil
}

func (q *querier) GetUserReward(_ context.Context, userID uuid.UUID) (*domain.UserReward, error) {
	defer q.lock()()
	r, ok := q.s.st.rewards[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &r, nil
}

func (q *querier) GetUserRewardByReferralCode(_ context.Context, code string) (*domain.UserReward, error) {
	defer q.lock()()
	for _, r := range q.s.st.rewards {
		if r.ReferralCode == code {
			return &r, nil
		}
	}
	return nil, domain.ErrInvalidReferral
}

// ApplyPoints is the conditional balance update: it refuses any entry that
// would take the balance below zero.
func (q *querier) ApplyPoints(_ context.Context, e domain.PointsEntry, now time.Time) (*domain.UserReward, error) {
	defer q.lock()()
	st := q.s.st

	if err := q.fault("ApplyPoints"); err != nil {
		return nil, err
	}
	r, ok := st.rewards[e.UserID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if r.CurrentPoints+e.Points < 0 {
		return nil, domain.ErrInsufficientPoints
	}
	if e.ActivityType == domain.ActivityQRScan && e.ReferenceID != nil {
		for _, a := range st.activities {
			if a.UserID == e.UserID && a.ActivityType == domain.ActivityQRScan &&
				a.ReferenceID != nil && *a.ReferenceID == *e.ReferenceID {
				return nil, domain.ErrAlreadyScanned
			}
		}
	}
	r.ApplyEntry(e.Points, now)
	st.rewards[e.UserID] = r
	st.activities = append(st.activities, domain.RewardActivity{
		ID:            uuid.New(),
		UserID:        e.UserID,
		Points:        e.Points,
		ActivityType:  e.ActivityType,
		Description:   e.Description,
		ReferenceID:   e.ReferenceID,
		ReferenceType: e.ReferenceType,
		CreatedAt:     now,
	})
	return &r, nil
}

func (q *querier) ListRewardActivities(_ context.Context, userID uuid.UUID, limit int) ([]domain.RewardActivity, error) {
	defer q.lock()()
	var out []domain.RewardActivity
	acts := q.s.st.activities
	for i := len(acts) - 1; i >= 0; i-- {
		if acts[i].UserID != userID {
			continue
		}
		out = append(out, acts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (q *querier) CreateRewardOffer(_ context.Context, r *domain.RewardOffer) error {
	defer q.lock()()
	if r.PointsRequired <= 0 {
		return fmt.Errorf("insert reward offer: points_required must be positive")
	}
	r.CreatedAt = q.now()
	q.s.st.rewardOffers[r.ID] = *r
	q.s.st.rewardOfferOrder = append(q.s.st.rewardOfferOrder, r.ID)
	return nil
}

func (q *querier) GetRewardOfferForUpdate(_ context.Context, id uuid.UUID) (*domain.RewardOffer, error) {
	defer q.lock()()
	r, ok := q.s.st.rewardOffers[id]
	if !ok {
		return nil, domain.ErrRewardOfferNotFound
	}
	return &r, nil
}

func (q *querier) ListRewardOffers(_ context.Context, now time.Time) ([]domain.RewardOffer, error) {
	defer q.lock()()
	st := q.s.st
	var out []domain.RewardOffer
	for _, id := range st.rewardOfferOrder {
		r := st.rewardOffers[id]
		if r.IsActive && !r.Expired(now) && !r.SoldOut() {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.RewardOffer) int {
		return cmp.Compare(a.PointsRequired, b.PointsRequired)
	})
	return out, nil
}

func (q *querier) IncrementRewardRedemptions(_ context.Context, id uuid.UUID) error {
	defer q.lock()()
	if err := q.fault("IncrementRewardRedemptions"); err != nil {
		return err
	}
	r, ok := q.s.st.rewardOffers[id]
	if !ok || r.SoldOut() {
		return domain.ErrSoldOut
	}
	r.CurrentRedemptions++
	q.s.st.rewardOffers[id] = r
	return nil
}

func (q *querier) InsertRewardRedemption(_ context.Context, r *domain.RewardRedemption) error {
	defer q.lock()()
	if err := q.fault("InsertRewardRedemption"); err != nil {
		return err
	}
	r.CreatedAt = q.now()
	q.s.st.rewardRedemptions = append(q.s.st.rewardRedemptions, *r)
	return nil
}
