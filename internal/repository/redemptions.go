package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/localdeals/internal/domain"
)

const redemptionColumns = `r.id, r.offer_id, r.user_id, r.redeemed_at, r.status, r.unlimited`

func scanRedemption(row pgx.Row, withOffer bool) (*domain.Redemption, error) {
	var r domain.Redemption
	var status string
	dest := []any{&r.ID, &r.OfferID, &r.UserID, &r.RedeemedAt, &status, &r.Unlimited}

	if !withOffer {
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		r.Status = domain.RedemptionStatus(status)
		return &r, nil
	}

	var o domain.Offer
	var mode, listing, offerStatus string
	dest = append(dest, offerDest(&o, &mode, &listing, &offerStatus)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.Status = domain.RedemptionStatus(status)
	o.RedemptionMode = domain.RedemptionMode(mode)
	o.ListingType = domain.ListingType(listing)
	o.Status = domain.OfferStatus(offerStatus)
	r.Offer = &o
	return &r, nil
}

func (q *Queries) RedemptionExists(ctx context.Context, userID, offerID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM redemptions WHERE user_id = $1 AND offer_id = $2)`,
		userID, offerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check redemption: %w", err)
	}
	return exists, nil
}

func (q *Queries) ListRedeemedOfferTitles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT DISTINCT o.title
		FROM redemptions r
		JOIN offers o ON o.id = r.offer_id
		WHERE r.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list redeemed titles: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (q *Queries) InsertRedemption(ctx context.Context, r *domain.Redemption) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO redemptions (id, offer_id, user_id, status, unlimited)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING redeemed_at`,
		r.ID, r.OfferID, r.UserID, string(r.Status), r.Unlimited,
	).Scan(&r.RedeemedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return domain.ErrAlreadyRedeemed
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

func (q *Queries) GetRedemption(ctx context.Context, id uuid.UUID) (*domain.Redemption, error) {
	r, err := scanRedemption(q.db.QueryRow(ctx, `
		SELECT `+redemptionColumns+`, `+offerColumns+`
		FROM redemptions r
		JOIN offers o ON o.id = r.offer_id
		WHERE r.id = $1`, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	return r, nil
}

func (q *Queries) UpdateRedemptionStatus(ctx context.Context, id uuid.UUID, from, to domain.RedemptionStatus) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE redemptions SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update redemption status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (q *Queries) collectRedemptions(rows pgx.Rows) ([]domain.Redemption, error) {
	defer rows.Close()
	var out []domain.Redemption
	for rows.Next() {
		r, err := scanRedemption(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (q *Queries) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Redemption, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+redemptionColumns+`, `+offerColumns+`
		FROM redemptions r
		JOIN offers o ON o.id = r.offer_id
		WHERE r.user_id = $1
		ORDER BY r.redeemed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user redemptions: %w", err)
	}
	return q.collectRedemptions(rows)
}

func (q *Queries) ListRedemptionsByMerchant(ctx context.Context, merchantID uuid.UUID, status *domain.RedemptionStatus) ([]domain.Redemption, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+redemptionColumns+`, `+offerColumns+`
		FROM redemptions r
		JOIN offers o ON o.id = r.offer_id
		WHERE o.merchant_id = $1 AND ($2::text IS NULL OR r.status = $2::text)
		ORDER BY r.redeemed_at DESC`, merchantID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("list merchant redemptions: %w", err)
	}
	return q.collectRedemptions(rows)
}

func (q *Queries) GetMerchantStats(ctx context.Context, merchantID uuid.UUID) (domain.MerchantStats, error) {
	var s domain.MerchantStats
	err := q.db.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE status = 'in_review'),
			count(*) FILTER (WHERE status = 'approved'),
			count(*) FILTER (WHERE status = 'rejected'),
			count(*) FILTER (WHERE is_active AND status = 'approved' AND expiry_date >= now())
		FROM offers WHERE merchant_id = $1`, merchantID,
	).Scan(&s.OffersInReview, &s.OffersApproved, &s.OffersRejected, &s.ActiveOffers)
	if err != nil {
		return s, fmt.Errorf("offer stats: %w", err)
	}

	err = q.db.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE r.status = 'pending'),
			count(*) FILTER (WHERE r.status = 'approved'),
			count(*) FILTER (WHERE r.status = 'rejected')
		FROM redemptions r
		JOIN offers o ON o.id = r.offer_id
		WHERE o.merchant_id = $1`, merchantID,
	).Scan(&s.RedemptionsPending, &s.RedemptionsApproved, &s.RedemptionsRejected)
	if err != nil {
		return s, fmt.Errorf("redemption stats: %w", err)
	}
	return s, nil
}
