package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

type ProfileService struct {
	store   repository.Store
	rewards *RewardsService
	now     func() time.Time
}

func NewProfileService(store repository.Store, rewards *RewardsService) *ProfileService {
	return &ProfileService{store: store, rewards: rewards, now: time.Now}
}

// FindOrCreate returns the profile for a Telegram account, creating a
// customer (or super_admin) profile with its rewards head on first contact.
// The bool result reports whether the profile was created by this call.
func (s *ProfileService) FindOrCreate(ctx context.Context, telegramID int64, name, username, referralCode string, isAdmin bool) (*domain.Profile, bool, error) {
	p, err := s.store.GetProfileByTelegramID(ctx, telegramID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, false, fmt.Errorf("get profile: %w", err)
	}

	role := domain.RoleCustomer
	if isAdmin {
		role = domain.RoleSuperAdmin
	}
	p = &domain.Profile{
		ID:         uuid.New(),
		TelegramID: &telegramID,
		Name:       name,
		Username:   username,
		Role:       role,
	}

	if err := s.createWithRewards(ctx, p); err != nil {
		if errors.Is(err, domain.ErrRoleImmutable) {
			// Lost a race with a concurrent first contact.
			existing, getErr := s.store.GetProfileByTelegramID(ctx, telegramID)
			if getErr != nil {
				return nil, false, fmt.Errorf("get profile: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	if referralCode = strings.TrimSpace(referralCode); referralCode != "" && s.rewards != nil {
		if _, err := s.rewards.ApplyReferral(ctx, p.ID, referralCode); err != nil {
			slog.Warn("referral not applied", "error", err, "user_id", p.ID, "code", referralCode)
		}
	}
	return p, true, nil
}

func (s *ProfileService) createWithRewards(ctx context.Context, p *domain.Profile) error {
	return s.store.InTx(ctx, func(q repository.Querier) error {
		if err := q.CreateProfile(ctx, p); err != nil {
			return err
		}
		code, err := generateUniqueReferralCode(ctx, q)
		if err != nil {
			return fmt.Errorf("generate referral code: %w", err)
		}
		if err := q.CreateUserReward(ctx, &domain.UserReward{UserID: p.ID, ReferralCode: code}); err != nil {
			return fmt.Errorf("create user reward: %w", err)
		}
		return nil
	})
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.store.GetProfileByID(ctx, id)
}

// MerchantInput describes a merchant account opened by an admin.
type MerchantInput struct {
	TelegramID    int64
	Name          string
	StoreName     string
	StoreLocation string
	District      string
	City          string
	Plan          domain.Plan
	IsPremium     bool
}

// RegisterMerchant opens a merchant account for a Telegram user who has
// not contacted the bot yet. Roles are never migrated, so an existing
// profile for the same Telegram id fails with ErrRoleImmutable.
func (s *ProfileService) RegisterMerchant(ctx context.Context, actor *domain.Actor, in MerchantInput) (*domain.Profile, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(in.StoreName) == "" {
		return nil, fmt.Errorf("%w: store name required", domain.ErrInvalidProfile)
	}

	tgID := in.TelegramID
	p := &domain.Profile{
		ID:            uuid.New(),
		TelegramID:    &tgID,
		Name:          in.Name,
		Role:          domain.RoleMerchant,
		IsPremium:     in.IsPremium,
		CurrentPlan:   in.Plan,
		StoreName:     strings.TrimSpace(in.StoreName),
		StoreLocation: in.StoreLocation,
		District:      domain.ResolveDistrict(in.District),
		City:          in.City,
	}
	if err := s.createWithRewards(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPlan records a merchant's subscription as reported by billing.
func (s *ProfileService) SetPlan(ctx context.Context, actor *domain.Actor, merchantID uuid.UUID, plan domain.Plan, premium bool) (*domain.Profile, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}

	p, err := s.store.GetProfileByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !p.IsMerchant() {
		return nil, fmt.Errorf("%w: plans apply to merchants only", domain.ErrForbidden)
	}
	if err := s.store.UpdateProfilePlan(ctx, merchantID, plan, premium); err != nil {
		return nil, err
	}
	p.CurrentPlan = plan
	p.IsPremium = premium
	p.UpdatedAt = s.now()
	return p, nil
}
