package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/localdeals/internal/domain"
)

const offerColumns = `o.id, o.merchant_id, o.title, o.description, o.category, o.district, o.city, o.location,
	o.original_price, o.discount_percentage, o.discounted_price, o.expiry_date, o.redemption_mode,
	o.listing_type, o.status, o.is_active, o.image_url, o.created_at, o.updated_at`

func offerDest(o *domain.Offer, mode, listing, status *string) []any {
	return []any{
		&o.ID, &o.MerchantID, &o.Title, &o.Description, &o.Category, &o.District, &o.City, &o.Location,
		&o.OriginalPrice, &o.DiscountPercentage, &o.DiscountedPrice, &o.ExpiryDate, mode,
		listing, status, &o.IsActive, &o.ImageURL, &o.CreatedAt, &o.UpdatedAt,
	}
}

func scanOffer(row pgx.Row, extra ...any) (*domain.Offer, error) {
	var o domain.Offer
	var mode, listing, status string
	if err := row.Scan(append(offerDest(&o, &mode, &listing, &status), extra...)...); err != nil {
		return nil, err
	}
	o.RedemptionMode = domain.RedemptionMode(mode)
	o.ListingType = domain.ListingType(listing)
	o.Status = domain.OfferStatus(status)
	return &o, nil
}

func collectOffers(rows pgx.Rows) ([]domain.Offer, error) {
	defer rows.Close()
	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func (q *Queries) CreateOffer(ctx context.Context, o *domain.Offer) error {
	const query = `
		INSERT INTO offers (id, merchant_id, title, description, category, district, city, location,
			original_price, discount_percentage, discounted_price, expiry_date, redemption_mode,
			listing_type, status, is_active, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err := q.db.QueryRow(ctx, query,
		o.ID, o.MerchantID, o.Title, o.Description, o.Category, o.District, o.City, o.Location,
		o.OriginalPrice, o.DiscountPercentage, o.DiscountedPrice, o.ExpiryDate, string(o.RedemptionMode),
		string(o.ListingType), string(o.Status), o.IsActive, o.ImageURL,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgCheckViolation {
			return fmt.Errorf("%w: violates %s", domain.ErrInvalidOffer, constraint)
		}
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (q *Queries) UpdateOfferContent(ctx context.Context, o *domain.Offer) error {
	const query = `
		UPDATE offers SET title = $2, description = $3, category = $4, district = $5, city = $6,
			location = $7, original_price = $8, discount_percentage = $9, discounted_price = $10,
			expiry_date = $11, redemption_mode = $12, listing_type = $13, image_url = $14, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := q.db.QueryRow(ctx, query,
		o.ID, o.Title, o.Description, o.Category, o.District, o.City,
		o.Location, o.OriginalPrice, o.DiscountPercentage, o.DiscountedPrice,
		o.ExpiryDate, string(o.RedemptionMode), string(o.ListingType), o.ImageURL,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrOfferNotFound
		}
		if code, constraint := pgErrorCode(err); code == pgCheckViolation {
			return fmt.Errorf("%w: violates %s", domain.ErrInvalidOffer, constraint)
		}
		return fmt.Errorf("update offer: %w", err)
	}
	return nil
}

func (q *Queries) GetOffer(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	o, err := scanOffer(q.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

func (q *Queries) ListVisibleOffers(ctx context.Context, f domain.OfferFilter, now time.Time) ([]domain.Offer, error) {
	const query = `
		SELECT ` + offerColumns + `
		FROM offers o
		WHERE o.is_active AND o.status = 'approved' AND o.expiry_date >= $1
		  AND ($2::text = '' OR $2::text = 'all' OR o.category = $2::text)
		  AND ($3::text = '' OR lower(o.district) = lower($3::text) OR lower(o.city) = lower($3::text))
		  AND ($4::text = '' OR o.listing_type = $4::text)
		  AND ($5::text = ''
		       OR strpos(lower(o.title), $5::text) > 0
		       OR strpos(lower(o.description), $5::text) > 0
		       OR strpos(lower(o.location), $5::text) > 0)
		ORDER BY o.created_at DESC
		LIMIT NULLIF($6::int, 0) OFFSET $7::int`

	search := strings.ToLower(strings.TrimSpace(f.Search))
	rows, err := q.db.Query(ctx, query,
		now, f.Category, f.District, string(f.ListingType), search, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list visible offers: %w", err)
	}
	return collectOffers(rows)
}

func (q *Queries) ListOffersByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Offer, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+offerColumns+` FROM offers o WHERE o.merchant_id = $1 ORDER BY o.created_at DESC`, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list merchant offers: %w", err)
	}
	return collectOffers(rows)
}

func (q *Queries) ListOffersByStatus(ctx context.Context, status domain.OfferStatus, limit int) ([]domain.Offer, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+offerColumns+` FROM offers o WHERE o.status = $1 ORDER BY o.created_at ASC LIMIT NULLIF($2::int, 0)`,
		string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list offers by status: %w", err)
	}
	return collectOffers(rows)
}

func (q *Queries) UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to domain.OfferStatus) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE offers SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update offer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (q *Queries) SetOfferActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := q.db.Exec(ctx, `UPDATE offers SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set offer active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

func (q *Queries) CountOffersCreatedSince(ctx context.Context, merchantID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM offers WHERE merchant_id = $1 AND created_at >= $2`, merchantID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return n, nil
}
