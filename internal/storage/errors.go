package storage

import "errors"

// Common storage errors.
var (
	ErrCardNotFound   = errors.New("card not found")
	ErrNoteNotFound   = errors.New("note not found")
	ErrSourceNotFound = errors.New("source not found")
)
