package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/fsrs"
)

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	note := createTestNote(t, db)

	// A forward/reverse pair, both due.
	pair := testCard(note.ID, baseTime.Add(-time.Hour))
	_, err := db.CreateCard(ctx, pair, true)
	require.NoError(t, err)

	// A reviewed card scheduled for later.
	reviewed := testCard(note.ID, baseTime.Add(72*time.Hour))
	reviewed.Scheduling = fsrs.Scheduling{
		Stability:  10,
		Difficulty: 5,
		Reps:       3,
		Lapses:     1,
		State:      fsrs.Review,
		Due:        baseTime.Add(72 * time.Hour),
	}
	_, err = db.CreateCard(ctx, reviewed, false)
	require.NoError(t, err)

	stats, err := db.Stats(ctx, baseTime)
	require.NoError(t, err)

	assert.Equal(t, domain.Stats{
		Notes:         1,
		Cards:         2,
		ReverseCards:  1,
		NewCards:      2,
		DueCards:      2,
		TotalReviews:  3,
		AvgDifficulty: 5,
		AvgStability:  10,
	}, stats)
}

func TestStats_EmptyCollection(t *testing.T) {
	db := setupTestDB(t)

	stats, err := db.Stats(context.Background(), baseTime)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
}

func TestDueForecast(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	note := createTestNote(t, db)

	for _, due := range []time.Time{
		baseTime.Add(-time.Hour),      // already due, not part of the forecast
		baseTime.Add(24 * time.Hour),  // tomorrow
		baseTime.Add(26 * time.Hour),  // tomorrow as well
		baseTime.Add(72 * time.Hour),  // in three days
		baseTime.Add(240 * time.Hour), // beyond the window
	} {
		_, err := db.CreateCard(ctx, testCard(note.ID, due), false)
		require.NoError(t, err)
	}

	buckets, err := db.DueForecast(ctx, baseTime, 7)
	require.NoError(t, err)

	assert.Equal(t, []domain.DueBucket{
		{Date: "2024-03-11", Count: 2},
		{Date: "2024-03-13", Count: 1},
	}, buckets)
}
