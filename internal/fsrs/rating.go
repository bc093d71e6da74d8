package fsrs

import (
	"encoding"
	"fmt"
)

// Rating is the user's assessment of recall quality. The review UI only
// exposes two buttons (Fail/Pass), but the full four-level scale is kept
// here so a richer UI can be added without touching the scheduler.
type Rating int

const (
	Again Rating = 1 // failed to recall
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4 // recalled without effort
)

var ratingNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

var ratingByName = map[string]Rating{
	"Again": Again,
	"Hard":  Hard,
	"Good":  Good,
	"Easy":  Easy,
}

var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRating, text)
	}
	*r = v
	return nil
}
