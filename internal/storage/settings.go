package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
)

// Setting returns the value stored under key, or "" when the key has
// never been set. A missing setting is not an error; callers apply
// their own defaults, matching the original application.
func (db *DB) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a value under key, replacing any previous value.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// ReviewSettings loads the scheduler settings, applying defaults for
// unset or unparseable keys. It is called fresh on every review so
// setting edits take effect immediately.
func (db *DB) ReviewSettings(ctx context.Context) (domain.ReviewSettings, error) {
	out := domain.DefaultReviewSettings()

	raw, err := db.Setting(ctx, domain.SettingRequestRetention)
	if err != nil {
		return out, err
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && raw != "" {
		out.RequestRetention = v
	}

	raw, err = db.Setting(ctx, domain.SettingMaximumInterval)
	if err != nil {
		return out, err
	}
	if v, err := strconv.Atoi(raw); err == nil && raw != "" {
		out.MaximumInterval = v
	}

	raw, err = db.Setting(ctx, domain.SettingBurySiblingCards)
	if err != nil {
		return out, err
	}
	out.BurySiblingCards = raw == "true"

	raw, err = db.Setting(ctx, domain.SettingReviewNewCardsFirst)
	if err != nil {
		return out, err
	}
	out.ReviewNewCardsFirst = raw == "true"

	return out, nil
}
