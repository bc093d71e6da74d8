package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
)

func TestCreateNote_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sourceID, err := db.InsertSource(ctx, "/notes", domain.SourceLocal)
	require.NoError(t, err)

	note := domain.Note{
		Title:       "photosynthesis",
		Content:     "Q: photosynthesis\nA: light to sugar",
		Flashcard:   true,
		Fingerprint: "abc123",
		SourceID:    &sourceID,
	}
	require.NoError(t, db.CreateNote(ctx, &note))
	require.NotZero(t, note.ID)

	got, err := db.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.Title, got.Title)
	assert.Equal(t, note.Content, got.Content)
	assert.True(t, got.Flashcard)
	assert.Equal(t, "abc123", got.Fingerprint)
	require.NotNil(t, got.SourceID)
	assert.Equal(t, sourceID, *got.SourceID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetNote_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetNote(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNoteByFingerprint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	note := domain.Note{Title: "t", Content: "c", Flashcard: true, Fingerprint: "fp-1"}
	require.NoError(t, db.CreateNote(ctx, &note))

	got, err := db.NoteByFingerprint(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)

	_, err = db.NoteByFingerprint(ctx, "fp-missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNotesBySource(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a, err := db.InsertSource(ctx, "/a", domain.SourceLocal)
	require.NoError(t, err)
	b, err := db.InsertSource(ctx, "/b", domain.SourceLocal)
	require.NoError(t, err)

	for i, src := range []int64{a, a, b} {
		note := domain.Note{Title: "n", Content: "c", SourceID: &src, Fingerprint: string(rune('x' + i))}
		require.NoError(t, db.CreateNote(ctx, &note))
	}

	notes, err := db.NotesBySource(ctx, a)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestDeleteSource_KeepsNotes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sourceID, err := db.InsertSource(ctx, "/notes", domain.SourceLocal)
	require.NoError(t, err)

	note := domain.Note{Title: "kept", Content: "c", SourceID: &sourceID}
	require.NoError(t, db.CreateNote(ctx, &note))

	require.NoError(t, db.DeleteSource(ctx, sourceID))

	got, err := db.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SourceID, "orphaned notes lose the source link but survive")
}

func TestLinkNotes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	parent := domain.Note{Title: "parent", Content: "c"}
	require.NoError(t, db.CreateNote(ctx, &parent))
	child := domain.Note{Title: "child", Content: "c"}
	require.NoError(t, db.CreateNote(ctx, &child))

	require.NoError(t, db.LinkNotes(ctx, parent.ID, child.ID))
	assert.Error(t, db.LinkNotes(ctx, parent.ID, child.ID), "duplicate links are rejected")

	parents, err := db.NoteParents(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{parent.ID}, parents)
}
