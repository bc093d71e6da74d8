package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
)

// Stats computes the collection summary at the given time.
func (db *DB) Stats(ctx context.Context, now time.Time) (domain.Stats, error) {
	var s domain.Stats

	counts := []struct {
		query string
		args  []any
		dest  *int
	}{
		{`SELECT COUNT(*) FROM notes`, nil, &s.Notes},
		{`SELECT COUNT(*) FROM cards WHERE direction = ?`, []any{string(domain.FrontToBack)}, &s.Cards},
		{`SELECT COUNT(*) FROM cards WHERE direction = ?`, []any{string(domain.BackToFront)}, &s.ReverseCards},
		{`SELECT COUNT(*) FROM cards WHERE state = 0`, nil, &s.NewCards},
	}
	for _, c := range counts {
		if err := db.conn.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return domain.Stats{}, fmt.Errorf("failed to compute stats: %w", err)
		}
	}

	due, err := db.DueCount(ctx, now)
	if err != nil {
		return domain.Stats{}, err
	}
	s.DueCards = due

	var totalReps sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, `SELECT SUM(reps) FROM cards`).Scan(&totalReps); err != nil {
		return domain.Stats{}, fmt.Errorf("failed to sum reviews: %w", err)
	}
	s.TotalReviews = int(totalReps.Int64)

	var avgDifficulty, avgStability sql.NullFloat64
	err = db.conn.QueryRowContext(ctx,
		`SELECT AVG(difficulty), AVG(stability) FROM cards WHERE reps > 0`).
		Scan(&avgDifficulty, &avgStability)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to average memory state: %w", err)
	}
	s.AvgDifficulty = avgDifficulty.Float64
	s.AvgStability = avgStability.Float64

	return s, nil
}

// DueForecast groups upcoming due cards per calendar day over the next
// `days` days. Days with no due cards are omitted.
func (db *DB) DueForecast(ctx context.Context, now time.Time, days int) ([]domain.DueBucket, error) {
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT substr(due, 1, 10) AS day, COUNT(*)
		FROM cards
		WHERE due > ? AND due <= ?
		GROUP BY substr(due, 1, 10)
		ORDER BY day`,
		formatTime(now), formatTime(until),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get due forecast: %w", err)
	}
	defer rows.Close()

	var buckets []domain.DueBucket
	for rows.Next() {
		var b domain.DueBucket
		if err := rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate forecast rows: %w", err)
	}
	return buckets, nil
}
