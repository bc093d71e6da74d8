package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/fsrs"
	"github.com/kojaberamokhe/pkm-system/internal/importer"
	"github.com/kojaberamokhe/pkm-system/internal/review"
	"github.com/kojaberamokhe/pkm-system/internal/storage"
)

func setupServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reviews := review.New(db, log, nil)
	imp := importer.New(db, filepath.Join(t.TempDir(), "repos"), log)

	srv, err := NewServer(db, reviews, imp, log)
	require.NoError(t, err)
	return srv, db
}

func createDueCard(t *testing.T, db *storage.DB) *domain.Card {
	t.Helper()
	ctx := context.Background()
	note := domain.Note{Title: "bonjour", Content: "", Flashcard: true}
	require.NoError(t, db.CreateNote(ctx, &note))

	card := &domain.Card{
		NoteID:     note.ID,
		Front:      "bonjour",
		Back:       "hello",
		Scheduling: fsrs.Scheduling{Due: time.Now().Add(-time.Hour)},
	}
	_, err := db.CreateCard(ctx, card, false)
	require.NoError(t, err)
	return card
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestGetDeck(t *testing.T) {
	srv, db := setupServer(t)
	createDueCard(t, db)

	rec := get(srv, "/deck")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1")
}

func TestGetNextReview_ShowsFront(t *testing.T) {
	srv, db := setupServer(t)
	createDueCard(t, db)

	rec := get(srv, "/review/next")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "bonjour")
	assert.NotContains(t, body, "hello", "the answer must stay hidden")
}

func TestGetNextReview_EmptyQueue(t *testing.T) {
	srv, _ := setupServer(t)

	rec := get(srv, "/review/next")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShowAnswer(t *testing.T) {
	srv, db := setupServer(t)
	card := createDueCard(t, db)

	rec := get(srv, "/review/answer/"+strconv.FormatInt(card.ID, 10))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
}

func TestShowAnswer_UnknownCard(t *testing.T) {
	srv, _ := setupServer(t)
	assert.Equal(t, http.StatusNotFound, get(srv, "/review/answer/404").Code)
	assert.Equal(t, http.StatusBadRequest, get(srv, "/review/answer/abc").Code)
}

func TestPostReview_Pass(t *testing.T) {
	srv, db := setupServer(t)
	card := createDueCard(t, db)

	rec := postForm(srv, "/review/"+strconv.FormatInt(card.ID, 10),
		url.Values{"answer": {"pass"}})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := db.GetCard(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Scheduling.Reps)
	assert.Equal(t, fsrs.Review, got.Scheduling.State)
	assert.True(t, got.Scheduling.Due.After(time.Now()))
}

func TestPostReview_InvalidAnswer(t *testing.T) {
	srv, db := setupServer(t)
	card := createDueCard(t, db)

	rec := postForm(srv, "/review/"+strconv.FormatInt(card.ID, 10),
		url.Values{"answer": {"maybe"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := db.GetCard(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Scheduling.Reps, "a rejected answer must not touch the card")
}

func TestPostReview_UnknownCard(t *testing.T) {
	srv, _ := setupServer(t)
	rec := postForm(srv, "/review/404", url.Values{"answer": {"pass"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSources_AddAndDelete(t *testing.T) {
	srv, db := setupServer(t)

	rec := postForm(srv, "/sources", url.Values{"path": {"/some/notes"}})
	require.Equal(t, http.StatusOK, rec.Code)

	sources, err := db.AllSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, domain.SourceLocal, sources[0].Kind)

	req := httptest.NewRequest(http.MethodDelete,
		"/sources/"+strconv.FormatInt(sources[0].ID, 10), nil)
	del := httptest.NewRecorder()
	srv.ServeHTTP(del, req)
	require.Equal(t, http.StatusOK, del.Code)

	sources, err = db.AllSources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSources_EmptyPathRejected(t *testing.T) {
	srv, _ := setupServer(t)
	rec := postForm(srv, "/sources", url.Values{"path": {"   "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStats(t *testing.T) {
	srv, db := setupServer(t)
	createDueCard(t, db)

	rec := get(srv, "/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
}
