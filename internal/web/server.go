// Package web serves the review UI: deck overview, review flow with
// Fail/Pass grading, source management, and collection stats.
package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/fsrs"
	"github.com/kojaberamokhe/pkm-system/internal/importer"
	"github.com/kojaberamokhe/pkm-system/internal/review"
	"github.com/kojaberamokhe/pkm-system/internal/storage"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	reviews   *review.Service
	importer  *importer.Importer
	router    *http.ServeMux
	templates *template.Template
	log       *slog.Logger
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, reviews *review.Service, imp *importer.Importer, log *slog.Logger) (*Server, error) {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		db:        db,
		reviews:   reviews,
		importer:  imp,
		router:    http.NewServeMux(),
		templates: tpl,
		log:       log,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The static tree is embedded at build time; a missing subtree
		// is a packaging error.
		panic(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	s.router.Handle("/static/", http.StripPrefix("/static/", fileServer))
	s.router.Handle("/", fileServer)

	s.router.HandleFunc("/deck", s.handleGetDeck())
	s.router.HandleFunc("/review/next", s.handleGetNextReview())
	s.router.HandleFunc("/review/answer/", s.handleShowAnswer())
	s.router.HandleFunc("/review/", s.handlePostReview())

	s.router.HandleFunc("/sources", s.handleSources())
	s.router.HandleFunc("/sources/", s.handleDeleteSource())
	s.router.HandleFunc("/sync", s.handlePostSync())
	s.router.HandleFunc("/stats", s.handleGetStats())
}

// handleGetDeck renders the deck view with the due-count badge.
func (s *Server) handleGetDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		due, err := s.reviews.DueCount(r.Context())
		if err != nil {
			s.log.Error("due count failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "deck", map[string]any{
			"DueCount":    due,
			"HasDueCards": due > 0,
		})
	}
}

// handleGetNextReview renders the front of the next due card.
func (s *Server) handleGetNextReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queue, err := s.reviews.Queue(r.Context())
		if err != nil {
			s.log.Error("due query failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if len(queue) == 0 {
			s.render(w, "deck", map[string]any{"DueCount": 0, "HasDueCards": false})
			return
		}
		s.render(w, "card_front", queue[0])
	}
}

// handleShowAnswer renders the back of a card together with the
// intervals the two answer buttons would schedule.
func (s *Server) handleShowAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.cardID(w, r, "/review/answer/")
		if !ok {
			return
		}
		card, err := s.db.GetCard(r.Context(), id)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		intervals, err := s.reviews.Preview(r.Context(), id)
		if err != nil {
			s.log.Error("preview failed", "card", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "card_back", map[string]any{
			"Card":     card,
			"FailDays": intervals[fsrs.Again],
			"PassDays": intervals[fsrs.Easy],
		})
	}
}

// handlePostReview grades a card and renders the next one.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, ok := s.cardID(w, r, "/review/")
		if !ok {
			return
		}

		answer := r.PostFormValue("answer")
		if answer != "pass" && answer != "fail" {
			http.Error(w, "Invalid answer", http.StatusBadRequest)
			return
		}

		_, err := s.reviews.Review(r.Context(), id, review.RatingForAnswer(answer == "pass"))
		if err != nil {
			if errors.Is(err, storage.ErrCardNotFound) {
				http.NotFound(w, r)
				return
			}
			s.log.Error("review failed", "card", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		s.handleGetNextReview()(w, r)
	}
}

// handleSources handles both GET and POST for the sources page.
func (s *Server) handleSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderSources(w, r, "sources")
		case http.MethodPost:
			s.handlePostSource(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handlePostSource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.PostFormValue("path"))
	if path == "" {
		http.Error(w, "Path cannot be empty", http.StatusBadRequest)
		return
	}

	if _, err := s.db.InsertSource(r.Context(), path, domain.KindForPath(path)); err != nil {
		s.log.Error("insert source failed", "path", path, "error", err)
		http.Error(w, "Failed to add source", http.StatusInternalServerError)
		return
	}
	s.renderSources(w, r, "source_list")
}

// handleDeleteSource deletes a source and re-renders the source list.
func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		idStr := strings.TrimPrefix(r.URL.Path, "/sources/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid source ID", http.StatusBadRequest)
			return
		}
		if err := s.db.DeleteSource(r.Context(), id); err != nil {
			s.log.Error("delete source failed", "id", id, "error", err)
			http.Error(w, "Failed to delete source", http.StatusInternalServerError)
			return
		}
		s.renderSources(w, r, "source_list")
	}
}

// handlePostSync triggers a sync in the foreground and re-renders the
// source list.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.importer.Run(r.Context()); err != nil {
			s.log.Error("sync failed", "error", err)
			http.Error(w, "Sync failed", http.StatusInternalServerError)
			return
		}
		s.render(w, "sync_success", nil)
		s.renderSources(w, r, "source_list")
	}
}

// handleGetStats renders the collection summary and due forecast.
func (s *Server) handleGetStats() http.HandlerFunc {
	const forecastDays = 30
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		stats, err := s.db.Stats(r.Context(), now)
		if err != nil {
			s.log.Error("stats failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		forecast, err := s.db.DueForecast(r.Context(), now, forecastDays)
		if err != nil {
			s.log.Error("forecast failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "stats", map[string]any{
			"Stats":    stats,
			"Forecast": forecast,
		})
	}
}

func (s *Server) renderSources(w http.ResponseWriter, r *http.Request, tmpl string) {
	sources, err := s.db.AllSources(r.Context())
	if err != nil {
		s.log.Error("get sources failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.render(w, tmpl, map[string]any{"Sources": sources})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err)
	}
}

func (s *Server) cardID(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, prefix), 10, 64)
	if err != nil {
		http.Error(w, "Invalid card ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
