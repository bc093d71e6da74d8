package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
)

const noteColumns = `id, title, content, is_flashcard, fingerprint, source_id, created_at, updated_at`

// CreateNote inserts a note and sets its ID.
func (db *DB) CreateNote(ctx context.Context, n *domain.Note) error {
	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO notes (title, content, is_flashcard, fingerprint, source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Content, boolToInt(n.Flashcard), nullString(n.Fingerprint),
		nullInt64(n.SourceID), formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note %q: %w", n.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get note insert id: %w", err)
	}
	n.ID = id
	return nil
}

// GetNote fetches a note by id.
func (db *DB) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Note{}, ErrNoteNotFound
		}
		return domain.Note{}, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return n, nil
}

// NoteByFingerprint finds an imported note by its content hash.
// Returns ErrNoteNotFound when no note matches.
func (db *DB) NoteByFingerprint(ctx context.Context, fingerprint string) (domain.Note, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE fingerprint = ?`, fingerprint)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Note{}, ErrNoteNotFound
		}
		return domain.Note{}, fmt.Errorf("failed to get note by fingerprint: %w", err)
	}
	return n, nil
}

// NotesBySource returns all notes imported from the given source.
func (db *DB) NotesBySource(ctx context.Context, sourceID int64) ([]domain.Note, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE source_id = ? ORDER BY id`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes for source %d: %w", sourceID, err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate note rows: %w", err)
	}
	return notes, nil
}

// DeleteNote removes a note; its cards go with it via the foreign key
// cascade.
func (db *DB) DeleteNote(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	return nil
}

// LinkNotes places child under parent. A note may have several parents;
// duplicate links are rejected by the unique constraint.
func (db *DB) LinkNotes(ctx context.Context, parentID, childID int64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO note_relationships (parent_note_id, child_note_id, created_at)
		VALUES (?, ?, ?)`,
		parentID, childID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to link note %d under %d: %w", childID, parentID, err)
	}
	return nil
}

// NoteParents returns the ids of every parent of the given note.
func (db *DB) NoteParents(ctx context.Context, noteID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT parent_note_id FROM note_relationships WHERE child_note_id = ? ORDER BY parent_note_id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parents for note %d: %w", noteID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan parent id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parent rows: %w", err)
	}
	return ids, nil
}

func scanNote(row rowScanner) (domain.Note, error) {
	var (
		n           domain.Note
		flashcard   int
		fingerprint sql.NullString
		sourceID    sql.NullInt64
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&n.ID, &n.Title, &n.Content, &flashcard, &fingerprint, &sourceID, &createdAt, &updatedAt)
	if err != nil {
		return domain.Note{}, err
	}
	n.Flashcard = flashcard != 0
	n.Fingerprint = fingerprint.String
	if sourceID.Valid {
		v := sourceID.Int64
		n.SourceID = &v
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Note{}, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
