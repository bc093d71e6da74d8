package fsrs

import "errors"

// ErrInvalidRating is returned when a rating outside Again..Easy is given.
// The rating is never silently coerced to a default.
var ErrInvalidRating = errors.New("fsrs: invalid rating")
