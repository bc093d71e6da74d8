package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
)

// InsertSource registers a new note source and returns its id.
func (db *DB) InsertSource(ctx context.Context, path string, kind domain.SourceKind) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO sources (path, kind) VALUES (?, ?)`, path, string(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get source insert id: %w", err)
	}
	return id, nil
}

// FindSourceByPath returns the source registered under path, or
// ErrSourceNotFound.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (domain.Source, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, path, kind, last_scanned FROM sources WHERE path = ?`, path)
	s, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Source{}, ErrSourceNotFound
		}
		return domain.Source{}, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return s, nil
}

// AllSources returns every registered source.
func (db *DB) AllSources(ctx context.Context) ([]domain.Source, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, path, kind, last_scanned FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source rows: %w", err)
	}
	return sources, nil
}

// DeleteSource unregisters a source. Notes imported from it are kept;
// their source_id is nulled by the foreign key.
func (db *DB) DeleteSource(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}

// TouchSource records when a source was last reconciled.
func (db *DB) TouchSource(ctx context.Context, id int64, scanned time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE sources SET last_scanned = ? WHERE id = ?`, formatTime(scanned), id)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source %d: %w", id, err)
	}
	return nil
}

func scanSource(row rowScanner) (domain.Source, error) {
	var (
		s           domain.Source
		kind        string
		lastScanned sql.NullString
	)
	err := row.Scan(&s.ID, &s.Path, &kind, &lastScanned)
	if err != nil {
		return domain.Source{}, err
	}
	s.Kind = domain.SourceKind(kind)
	if s.LastScanned, err = parseNullableTime(lastScanned); err != nil {
		return domain.Source{}, err
	}
	return s, nil
}
