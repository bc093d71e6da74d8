package domain

import (
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/fsrs"
)

// Direction identifies which face of a card is asked first.
type Direction string

const (
	FrontToBack Direction = "front-to-back"
	BackToFront Direction = "back-to-front"
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == BackToFront {
		return FrontToBack
	}
	return BackToFront
}

// Card is a single reviewable unit belonging to a note. A note can carry
// two cards, one per direction; the reverse card references its primary
// through ParentCardID and is deleted with it.
type Card struct {
	ID           int64
	NoteID       int64
	Front        string
	Back         string
	FrontAudio   string
	BackAudio    string
	FrontImage   string
	BackImage    string
	Direction    Direction
	ParentCardID *int64
	BuriedUntil  *time.Time
	Scheduling   fsrs.Scheduling
}

// IsDue reports whether the card is eligible for review at the given
// time: scheduled due and not buried.
func (c Card) IsDue(now time.Time) bool {
	if c.Scheduling.Due.After(now) {
		return false
	}
	return c.BuriedUntil == nil || !c.BuriedUntil.After(now)
}
