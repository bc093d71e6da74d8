package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
)

func TestSetting_UnsetReturnsEmpty(t *testing.T) {
	db := setupTestDB(t)
	value, err := db.Setting(context.Background(), "never-set")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSetSetting_Upserts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSetting(ctx, domain.SettingRequestRetention, "0.85"))
	require.NoError(t, db.SetSetting(ctx, domain.SettingRequestRetention, "0.95"))

	value, err := db.Setting(ctx, domain.SettingRequestRetention)
	require.NoError(t, err)
	assert.Equal(t, "0.95", value)
}

func TestReviewSettings_Defaults(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.ReviewSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReviewSettings(), got)
}

func TestReviewSettings_StoredValues(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSetting(ctx, domain.SettingRequestRetention, "0.85"))
	require.NoError(t, db.SetSetting(ctx, domain.SettingMaximumInterval, "365"))
	require.NoError(t, db.SetSetting(ctx, domain.SettingBurySiblingCards, "true"))
	require.NoError(t, db.SetSetting(ctx, domain.SettingReviewNewCardsFirst, "true"))

	got, err := db.ReviewSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSettings{
		RequestRetention:    0.85,
		MaximumInterval:     365,
		BurySiblingCards:    true,
		ReviewNewCardsFirst: true,
	}, got)
}

func TestReviewSettings_UnparseableFallsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSetting(ctx, domain.SettingRequestRetention, "very high"))
	require.NoError(t, db.SetSetting(ctx, domain.SettingBurySiblingCards, "yes"))

	got, err := db.ReviewSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.RequestRetention)
	assert.False(t, got.BurySiblingCards, "anything but \"true\" means off")
}
