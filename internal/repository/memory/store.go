// Package memory is an in-process repository.Store used by tests and local
// runs. It enforces the same uniqueness and balance constraints as the
// Postgres schema, under a single lock.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

type rateWindow struct {
	start time.Time
	count int
}

type state struct {
	profiles          map[uuid.UUID]domain.Profile
	offers            map[uuid.UUID]domain.Offer
	offerOrder        []uuid.UUID
	saved             map[uuid.UUID]domain.SavedOffer
	savedOrder        []uuid.UUID
	redemptions       map[uuid.UUID]domain.Redemption
	redemptionOrder   []uuid.UUID
	rewards           map[uuid.UUID]domain.UserReward
	activities        []domain.RewardActivity
	rewardOffers      map[uuid.UUID]domain.RewardOffer
	rewardOfferOrder  []uuid.UUID
	rewardRedemptions []domain.RewardRedemption
	rateLimits        map[string]rateWindow
}

func newState() *state {
	return &state{
		profiles:     make(map[uuid.UUID]domain.Profile),
		offers:       make(map[uuid.UUID]domain.Offer),
		saved:        make(map[uuid.UUID]domain.SavedOffer),
		redemptions:  make(map[uuid.UUID]domain.Redemption),
		rewards:      make(map[uuid.UUID]domain.UserReward),
		rewardOffers: make(map[uuid.UUID]domain.RewardOffer),
		rateLimits:   make(map[string]rateWindow),
	}
}

func (s *state) clone() *state {
	return &state{
		profiles:          maps.Clone(s.profiles),
		offers:            maps.Clone(s.offers),
		offerOrder:        slices.Clone(s.offerOrder),
		saved:             maps.Clone(s.saved),
		savedOrder:        slices.Clone(s.savedOrder),
		redemptions:       maps.Clone(s.redemptions),
		redemptionOrder:   slices.Clone(s.redemptionOrder),
		rewards:           maps.Clone(s.rewards),
		activities:        slices.Clone(s.activities),
		rewardOffers:      maps.Clone(s.rewardOffers),
		rewardOfferOrder:  slices.Clone(s.rewardOfferOrder),
		rewardRedemptions: slices.Clone(s.rewardRedemptions),
		rateLimits:        maps.Clone(s.rateLimits),
	}
}

// Store implements repository.Store in memory.
type Store struct {
	*querier

	mu     sync.Mutex
	st     *state
	faults map[string]error

	// Now stamps created/updated times. Defaults to time.Now.
	Now func() time.Time
}

func New() *Store {
	s := &Store{
		st:     newState(),
		faults: make(map[string]error),
		Now:    time.Now,
	}
	s.querier = &querier{s: s}
	return s
}

// InTx runs fn under the store lock. Writes made by fn are discarded when
// it returns an error.
func (s *Store) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&querier{s: s, inTx: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// FailNext makes the next call to method return err. Honored by
// DeleteSavedOfferByPair, InsertRedemption, ApplyPoints,
// InsertRewardRedemption and IncrementRewardRedemptions.
func (s *Store) FailNext(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method] = err
}

// Counts reports row counts, for assertions in tests.
func (s *Store) Counts() (saved, redemptions, activities, rewardRedemptions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.saved), len(s.st.redemptions), len(s.st.activities), len(s.st.rewardRedemptions)
}

var _ repository.Store = (*Store)(nil)

// querier holds no lock of its own when running inside InTx.
type querier struct {
	s    *Store
	inTx bool
}

func (q *querier) lock() func() {
	if q.inTx {
		return func() {}
	}
	q.s.mu.Lock()
	return q.s.mu.Unlock
}

func (q *querier) now() time.Time {
	return q.s.Now().UTC()
}

func (q *querier) fault(method string) error {
	err, ok := q.s.faults[method]
	if !ok {
		return nil
	}
	delete(q.s.faults, method)
	return fmt.Errorf("%s: %w", method, err)
}

// newestFirst walks order backwards and keeps the values accepted by keep,
// then orders them by ts descending.
func newestFirst[T any](order []uuid.UUID, rows map[uuid.UUID]T, keep func(*T) bool, ts func(*T) time.Time) []T {
	var out []T
	for i := len(order) - 1; i >= 0; i-- {
		v, ok := rows[order[i]]
		if !ok || !keep(&v) {
			continue
		}
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return ts(&b).Compare(ts(&a))
	})
	return out
}
