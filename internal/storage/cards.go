package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/fsrs"
)

const cardColumns = `id, note_id, front, back, front_audio, back_audio, front_image, back_image,
	direction, parent_card_id, stability, difficulty, reps, lapses, state, last_review, due, buried_until`

// dueFilter is shared by DueCards and DueCount so the two can never
// drift apart. A card is due when its due date has passed and it is not
// buried (no buried_until, or the burial has expired).
const dueFilter = `due <= ? AND (buried_until IS NULL OR buried_until <= ?)`

// CreateCard inserts a card. When reverse is true a back-to-front
// sibling is inserted as well, owned by the primary via parent_card_id.
// Due defaults to now for a card with a zero due date, making new cards
// immediately reviewable. IDs are set on the returned cards.
func (db *DB) CreateCard(ctx context.Context, card *domain.Card, reverse bool) (*domain.Card, error) {
	if card.Scheduling.Due.IsZero() {
		card.Scheduling.Due = time.Now()
	}
	if card.Direction == "" {
		card.Direction = domain.FrontToBack
	}

	id, err := db.insertCard(ctx, card)
	if err != nil {
		return nil, err
	}
	card.ID = id

	if !reverse || card.Direction != domain.FrontToBack {
		return nil, nil
	}

	sibling := &domain.Card{
		NoteID:       card.NoteID,
		Front:        card.Back,
		Back:         card.Front,
		FrontAudio:   card.BackAudio,
		BackAudio:    card.FrontAudio,
		FrontImage:   card.BackImage,
		BackImage:    card.FrontImage,
		Direction:    domain.BackToFront,
		ParentCardID: &card.ID,
		Scheduling:   fsrs.Scheduling{Due: card.Scheduling.Due},
	}
	sibID, err := db.insertCard(ctx, sibling)
	if err != nil {
		return nil, err
	}
	sibling.ID = sibID
	return sibling, nil
}

func (db *DB) insertCard(ctx context.Context, c *domain.Card) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (note_id, front, back, front_audio, back_audio, front_image, back_image,
			direction, parent_card_id, stability, difficulty, reps, lapses, state, last_review, due, buried_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.NoteID, c.Front, c.Back,
		nullString(c.FrontAudio), nullString(c.BackAudio), nullString(c.FrontImage), nullString(c.BackImage),
		string(c.Direction), nullInt64(c.ParentCardID),
		c.Scheduling.Stability, c.Scheduling.Difficulty, c.Scheduling.Reps, c.Scheduling.Lapses,
		int(c.Scheduling.State), formatNullableTime(c.Scheduling.LastReview),
		formatTime(c.Scheduling.Due), formatNullableTime(c.BuriedUntil),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card for note %d: %w", c.NoteID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get card insert id: %w", err)
	}
	return id, nil
}

// GetCard fetches a card by id.
func (db *DB) GetCard(ctx context.Context, id int64) (domain.Card, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, ErrCardNotFound
		}
		return domain.Card{}, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return card, nil
}

// CardsByNote returns all cards owned by a note, ordered by id.
func (db *DB) CardsByNote(ctx context.Context, noteID int64) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE note_id = ? ORDER BY id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for note %d: %w", noteID, err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// AllCards returns every card, ordered by id.
func (db *DB) AllCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// DueCards returns the ordered review queue at the given time. With
// newFirst, new cards come before everything else; within a group the
// order is due date ascending. Card id breaks ties so the order is
// stable across identical queries.
func (db *DB) DueCards(ctx context.Context, now time.Time, newFirst bool) ([]domain.Card, error) {
	order := `due ASC, id ASC`
	if newFirst {
		order = `state ASC, due ASC, id ASC`
	}
	ts := formatTime(now)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE `+dueFilter+` ORDER BY `+order, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// DueCount returns how many cards DueCards would return.
func (db *DB) DueCount(ctx context.Context, now time.Time) (int, error) {
	ts := formatTime(now)
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE `+dueFilter, ts, ts).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return n, nil
}

// UpdateCardScheduling writes the scheduling fields produced by a review
// and nothing else: content, media and burial columns are untouched.
func (db *DB) UpdateCardScheduling(ctx context.Context, id int64, sched fsrs.Scheduling) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE cards
		SET stability = ?, difficulty = ?, reps = ?, lapses = ?, state = ?, last_review = ?, due = ?
		WHERE id = ?`,
		sched.Stability, sched.Difficulty, sched.Reps, sched.Lapses,
		int(sched.State), formatNullableTime(sched.LastReview), formatTime(sched.Due), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update scheduling for card %d: %w", id, err)
	}
	return requireRow(res, ErrCardNotFound)
}

// BuryCard suppresses a card from the due set until the given time.
func (db *DB) BuryCard(ctx context.Context, id int64, until time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cards SET buried_until = ? WHERE id = ?`, formatTime(until), id)
	if err != nil {
		return fmt.Errorf("failed to bury card %d: %w", id, err)
	}
	return requireRow(res, ErrCardNotFound)
}

// UpdateCardContent rewrites the faces of a card after its note was
// edited. Scheduling fields are untouched.
func (db *DB) UpdateCardContent(ctx context.Context, id int64, front, back string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cards SET front = ?, back = ? WHERE id = ?`, front, back, id)
	if err != nil {
		return fmt.Errorf("failed to update content for card %d: %w", id, err)
	}
	return requireRow(res, ErrCardNotFound)
}

// DeleteCard removes a card. A reverse sibling referencing it through
// parent_card_id is removed by the foreign key cascade.
func (db *DB) DeleteCard(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		c            domain.Card
		frontAudio   sql.NullString
		backAudio    sql.NullString
		frontImage   sql.NullString
		backImage    sql.NullString
		direction    string
		parentCardID sql.NullInt64
		state        int
		lastReview   sql.NullString
		due          string
		buriedUntil  sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.NoteID, &c.Front, &c.Back,
		&frontAudio, &backAudio, &frontImage, &backImage,
		&direction, &parentCardID,
		&c.Scheduling.Stability, &c.Scheduling.Difficulty,
		&c.Scheduling.Reps, &c.Scheduling.Lapses,
		&state, &lastReview, &due, &buriedUntil,
	)
	if err != nil {
		return domain.Card{}, err
	}

	c.FrontAudio = frontAudio.String
	c.BackAudio = backAudio.String
	c.FrontImage = frontImage.String
	c.BackImage = backImage.String
	c.Direction = domain.Direction(direction)
	if parentCardID.Valid {
		v := parentCardID.Int64
		c.ParentCardID = &v
	}
	c.Scheduling.State = fsrs.State(state)
	if c.Scheduling.LastReview, err = parseNullableTime(lastReview); err != nil {
		return domain.Card{}, err
	}
	if c.Scheduling.Due, err = parseTime(due); err != nil {
		return domain.Card{}, err
	}
	if c.BuriedUntil, err = parseNullableTime(buriedUntil); err != nil {
		return domain.Card{}, err
	}
	return c, nil
}

func collectCards(rows *sql.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows: %w", err)
	}
	return cards, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
