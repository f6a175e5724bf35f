package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/localdeals/internal/domain"
)

const profileColumns = `id, telegram_id, name, username, email, role, is_premium, current_plan,
	store_name, store_location, district, city, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var role, plan string
	err := row.Scan(
		&p.ID, &p.TelegramID, &p.Name, &p.Username, &p.Email, &role, &p.IsPremium, &plan,
		&p.StoreName, &p.StoreLocation, &p.District, &p.City, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	p.CurrentPlan = domain.Plan(plan)
	return &p, nil
}

func (q *Queries) CreateProfile(ctx context.Context, p *domain.Profile) error {
	const query = `
		INSERT INTO profiles (id, telegram_id, name, username, email, role, is_premium, current_plan,
			store_name, store_location, district, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := q.db.QueryRow(ctx, query,
		p.ID, p.TelegramID, p.Name, p.Username, p.Email, string(p.Role), p.IsPremium, string(p.CurrentPlan),
		p.StoreName, p.StoreLocation, p.District, p.City,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return domain.ErrRoleImmutable
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (q *Queries) GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (q *Queries) GetProfileForUpdate(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	return p, nil
}

func (q *Queries) GetProfileByTelegramID(ctx context.Context, telegramID int64) (*domain.Profile, error) {
	p, err := scanProfile(q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by telegram id: %w", err)
	}
	return p, nil
}

func (q *Queries) UpdateProfilePlan(ctx context.Context, id uuid.UUID, plan domain.Plan, premium bool) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE profiles SET current_plan = $2, is_premium = $3, updated_at = now() WHERE id = $1`,
		id, string(plan), premium)
	if err != nil {
		return fmt.Errorf("update profile plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
