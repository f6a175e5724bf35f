package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/localdeals/internal/domain"
)

// ErrReferralCodeTaken is returned by CreateUserReward when the generated
// referral code collides with an existing one.
var ErrReferralCodeTaken = errors.New("referral code taken")

const rewardColumns = `user_id, current_points, total_earned_points, total_redeemed_points,
	level_name, referral_code, created_at, updated_at`

func scanUserReward(row pgx.Row) (*domain.UserReward, error) {
	var r domain.UserReward
	err := row.Scan(&r.UserID, &r.CurrentPoints, &r.TotalEarnedPoints, &r.TotalRedeemedPoints,
		&r.LevelName, &r.ReferralCode, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q *Queries) CreateUserReward(ctx context.Context, r *domain.UserReward) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO user_rewards (user_id, referral_code, level_name)
		VALUES ($1, $2, $3)
		RETURNING `+rewardColumns,
		r.UserID, r.ReferralCode, domain.LevelFor(0),
	).Scan(&r.UserID, &r.CurrentPoints, &r.TotalEarnedPoints, &r.TotalRedeemedPoints,
		&r.LevelName, &r.ReferralCode, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == "user_rewards_referral_code_key" {
			return ErrReferralCodeTaken
		}
		return fmt.Errorf("insert user reward: %w", err)
	}
	return nil
}

func (q *Queries) GetUserReward(ctx context.Context, userID uuid.UUID) (*domain.UserReward, error) {
	r, err := scanUserReward(q.db.QueryRow(ctx, `SELECT `+rewardColumns+` FROM user_rewards WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get user reward: %w", err)
	}
	return r, nil
}

func (q *Queries) GetUserRewardByReferralCode(ctx context.Context, code string) (*domain.UserReward, error) {
	r, err := scanUserReward(q.db.QueryRow(ctx, `SELECT `+rewardColumns+` FROM user_rewards WHERE referral_code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidReferral
		}
		return nil, fmt.Errorf("get user reward by code: %w", err)
	}
	return r, nil
}

// ApplyPoints moves the balance and appends the activity in one statement.
// The update only matches while the resulting balance stays non-negative.
func (q *Queries) ApplyPoints(ctx context.Context, e domain.PointsEntry, now time.Time) (*domain.UserReward, error) {
	const query = `
		WITH upd AS (
			UPDATE user_rewards SET
				current_points        = current_points + $2::bigint,
				total_earned_points   = total_earned_points + GREATEST($2::bigint, 0),
				total_redeemed_points = total_redeemed_points + GREATEST(-$2::bigint, 0),
				level_name = CASE
					WHEN total_earned_points + GREATEST($2::bigint, 0) >= 5000 THEN 'Platinum'
					WHEN total_earned_points + GREATEST($2::bigint, 0) >= 1500 THEN 'Gold'
					WHEN total_earned_points + GREATEST($2::bigint, 0) >= 500 THEN 'Silver'
					ELSE 'Bronze'
				END,
				updated_at = $7
			WHERE user_id = $1 AND current_points + $2::bigint >= 0
			RETURNING ` + rewardColumns + `
		), act AS (
			INSERT INTO reward_activities (id, user_id, points, activity_type, description,
				reference_id, reference_type, created_at)
			SELECT $8, user_id, $2::bigint, $3, $4, $5, $6, $7 FROM upd
		)
		SELECT ` + rewardColumns + ` FROM upd`

	r, err := scanUserReward(q.db.QueryRow(ctx, query,
		e.UserID, e.Points, string(e.ActivityType), e.Description, e.ReferenceID, e.ReferenceType,
		now, uuid.New()))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		switch code, constraint := pgErrorCode(err); {
		case code == pgCheckViolation:
			return nil, domain.ErrInsufficientPoints
		case code == pgUniqueViolation && constraint == "reward_activities_qr_scan_key":
			return nil, domain.ErrAlreadyScanned
		}
		return nil, fmt.Errorf("apply points: %w", err)
	}

	var exists bool
	if err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_rewards WHERE user_id = $1)`, e.UserID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user reward: %w", err)
	}
	if !exists {
		return nil, domain.ErrProfileNotFound
	}
	return nil, domain.ErrInsufficientPoints
}

func (q *Queries) ListRewardActivities(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardActivity, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, points, activity_type, description, reference_id, reference_type, created_at
		FROM reward_activities
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT NULLIF($2::int, 0)`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reward activities: %w", err)
	}
	defer rows.Close()

	var out []domain.RewardActivity
	for rows.Next() {
		var a domain.RewardActivity
		var kind string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Points, &kind, &a.Description,
			&a.ReferenceID, &a.ReferenceType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reward activity: %w", err)
		}
		a.ActivityType = domain.ActivityType(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

const rewardOfferColumns = `id, title, description, points_required, max_redemptions,
	current_redemptions, expiry_date, is_active, created_at`

func scanRewardOffer(row pgx.Row) (*domain.RewardOffer, error) {
	var r domain.RewardOffer
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.PointsRequired, &r.MaxRedemptions,
		&r.CurrentRedemptions, &r.ExpiryDate, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q *Queries) CreateRewardOffer(ctx context.Context, r *domain.RewardOffer) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO reward_offers (id, title, description, points_required, max_redemptions, expiry_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		r.ID, r.Title, r.Description, r.PointsRequired, r.MaxRedemptions, r.ExpiryDate, r.IsActive,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reward offer: %w", err)
	}
	return nil
}

// GetRewardOfferForUpdate locks the row until the surrounding transaction ends.
func (q *Queries) GetRewardOfferForUpdate(ctx context.Context, id uuid.UUID) (*domain.RewardOffer, error) {
	r, err := scanRewardOffer(q.db.QueryRow(ctx,
		`SELECT `+rewardOfferColumns+` FROM reward_offers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRewardOfferNotFound
		}
		return nil, fmt.Errorf("get reward offer: %w", err)
	}
	return r, nil
}

func (q *Queries) ListRewardOffers(ctx context.Context, now time.Time) ([]domain.RewardOffer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+rewardOfferColumns+`
		FROM reward_offers
		WHERE is_active
		  AND (expiry_date IS NULL OR expiry_date >= $1)
		  AND (max_redemptions IS NULL OR current_redemptions < max_redemptions)
		ORDER BY points_required ASC, created_at DESC`, now)
	if err != nil {
		return nil, fmt.Errorf("list reward offers: %w", err)
	}
	defer rows.Close()

	var out []domain.RewardOffer
	for rows.Next() {
		r, err := scanRewardOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward offer: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (q *Queries) IncrementRewardRedemptions(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE reward_offers SET current_redemptions = current_redemptions + 1
		WHERE id = $1 AND (max_redemptions IS NULL OR current_redemptions < max_redemptions)`, id)
	if err != nil {
		return fmt.Errorf("increment reward redemptions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSoldOut
	}
	return nil
}

func (q *Queries) InsertRewardRedemption(ctx context.Context, r *domain.RewardRedemption) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO reward_redemptions (id, user_id, reward_offer_id, points_spent)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		r.ID, r.UserID, r.RewardOfferID, r.PointsSpent,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reward redemption: %w", err)
	}
	return nil
}
