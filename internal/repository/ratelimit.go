package repository

import (
	"context"
	"fmt"
	"time"
)

// HitRateLimit counts a request against key and returns the number of hits
// in the current fixed window, the current one included.
func (q *Queries) HitRateLimit(ctx context.Context, key string, window time.Duration) (int, error) {
	const query = `
		INSERT INTO rate_limits (key, window_start, count)
		VALUES ($1, now(), 1)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN rate_limits.window_start < now() - make_interval(secs => $2::double precision) THEN 1
				ELSE rate_limits.count + 1
			END,
			window_start = CASE
				WHEN rate_limits.window_start < now() - make_interval(secs => $2::double precision) THEN now()
				ELSE rate_limits.window_start
			END
		RETURNING count`

	var count int
	if err := q.db.QueryRow(ctx, query, key, window.Seconds()).Scan(&count); err != nil {
		return 0, fmt.Errorf("hit rate limit: %w", err)
	}
	return count, nil
}

// PurgeRateLimits drops windows that started before the given time.
func (q *Queries) PurgeRateLimits(ctx context.Context, before time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM rate_limits WHERE window_start < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge rate limits: %w", err)
	}
	return tag.RowsAffected(), nil
}
