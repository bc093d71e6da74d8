package domain

import (
	"strings"
	"time"
)

// Note is the owning record for zero or more cards. Notes imported from
// a source carry a content fingerprint so re-imports are idempotent.
type Note struct {
	ID          int64
	Title       string
	Content     string
	Flashcard   bool
	Fingerprint string // empty for notes created by hand
	SourceID    *int64 // set when the note came from a source
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Source is a directory or git repository that markdown flashcard notes
// are imported from.
type Source struct {
	ID          int64
	Path        string
	Kind        SourceKind
	LastScanned *time.Time
}

// SourceKind distinguishes local directories from git remotes.
type SourceKind string

const (
	SourceLocal SourceKind = "local"
	SourceGit   SourceKind = "git"
)

// KindForPath guesses the source kind from its path: git URLs and
// .git suffixed paths are treated as git remotes.
func KindForPath(path string) SourceKind {
	if strings.HasSuffix(path, ".git") ||
		strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "http://") {
		return SourceGit
	}
	return SourceLocal
}
