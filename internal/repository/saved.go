package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
)

func (q *Queries) InsertSavedOffer(ctx context.Context, s *domain.SavedOffer) error {
	err := q.db.QueryRow(ctx,
		`INSERT INTO saved_offers (id, offer_id, user_id) VALUES ($1, $2, $3) RETURNING saved_at`,
		s.ID, s.OfferID, s.UserID,
	).Scan(&s.SavedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return domain.ErrAlreadySaved
		}
		return fmt.Errorf("insert saved offer: %w", err)
	}
	return nil
}

func (q *Queries) DeleteSavedOffer(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM saved_offers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete saved offer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) DeleteSavedOfferByPair(ctx context.Context, userID, offerID uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM saved_offers WHERE user_id = $1 AND offer_id = $2`, userID, offerID); err != nil {
		return fmt.Errorf("delete saved offer by pair: %w", err)
	}
	return nil
}

func (q *Queries) ListSavedOffers(ctx context.Context, userID uuid.UUID) ([]domain.SavedOffer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+offerColumns+`, s.id, s.saved_at
		FROM saved_offers s
		JOIN offers o ON o.id = s.offer_id
		WHERE s.user_id = $1
		ORDER BY s.saved_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved offers: %w", err)
	}
	defer rows.Close()

	var saved []domain.SavedOffer
	for rows.Next() {
		s := domain.SavedOffer{UserID: userID}
		o, err := scanOffer(rows, &s.ID, &s.SavedAt)
		if err != nil {
			return nil, fmt.Errorf("scan saved offer: %w", err)
		}
		s.OfferID = o.ID
		s.Offer = o
		saved = append(saved, s)
	}
	return saved, rows.Err()
}
