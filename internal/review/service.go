// Package review drives the spaced-repetition review flow: it selects
// due cards, commits rating results computed by the fsrs package, and
// coordinates sibling burial.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/fsrs"
)

// Store is the persistence surface the review flow needs. *storage.DB
// satisfies it.
type Store interface {
	GetCard(ctx context.Context, id int64) (domain.Card, error)
	CardsByNote(ctx context.Context, noteID int64) ([]domain.Card, error)
	DueCards(ctx context.Context, now time.Time, newFirst bool) ([]domain.Card, error)
	DueCount(ctx context.Context, now time.Time) (int, error)
	UpdateCardScheduling(ctx context.Context, id int64, sched fsrs.Scheduling) error
	BuryCard(ctx context.Context, id int64, until time.Time) error
	ReviewSettings(ctx context.Context) (domain.ReviewSettings, error)
}

// Service orchestrates one review at a time. The clock is injected so
// tests can pin "now"; settings are re-read from the store on every call
// because the UI allows live edits.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates a review service. A nil logger or clock falls back to
// slog.Default and time.Now.
func New(store Store, log *slog.Logger, now func() time.Time) *Service {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, log: log, now: now}
}

// RatingForAnswer maps the two review buttons onto the four-level
// rating scale: Fail is Again, Pass is Easy. Hard and Good are never
// emitted by the current UI.
func RatingForAnswer(pass bool) fsrs.Rating {
	if pass {
		return fsrs.Easy
	}
	return fsrs.Again
}

// Review rates a card and commits the resulting scheduling state.
// After a successful commit, and if bury_sibling_cards is on, the
// reverse-direction sibling is buried until the next local midnight.
// A burial failure is logged but never rolls back the committed review.
func (s *Service) Review(ctx context.Context, cardID int64, rating fsrs.Rating) (domain.Card, error) {
	now := s.now()

	settings, err := s.store.ReviewSettings(ctx)
	if err != nil {
		return domain.Card{}, fmt.Errorf("load review settings: %w", err)
	}
	params := s.params(settings)

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return domain.Card{}, fmt.Errorf("load card %d: %w", cardID, err)
	}

	next, err := fsrs.Next(card.Scheduling, rating, params, now)
	if err != nil {
		return domain.Card{}, err
	}

	if err := s.store.UpdateCardScheduling(ctx, card.ID, next); err != nil {
		return domain.Card{}, persistenceErr(fmt.Sprintf("commit review for card %d", card.ID), err)
	}
	card.Scheduling = next

	s.log.Info("card reviewed",
		"card", card.ID,
		"rating", rating.String(),
		"state", next.State.String(),
		"due", next.Due,
	)

	if settings.BurySiblingCards {
		s.burySibling(ctx, card, now)
	}
	return card, nil
}

// Preview returns the number of days until the due date each rating
// would produce, without committing anything.
func (s *Service) Preview(ctx context.Context, cardID int64) (map[fsrs.Rating]int, error) {
	settings, err := s.store.ReviewSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load review settings: %w", err)
	}
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("load card %d: %w", cardID, err)
	}
	return fsrs.Preview(card.Scheduling, s.params(settings), s.now())
}

// Queue returns the cards eligible for review right now, ordered per
// the review_new_cards_first setting.
func (s *Service) Queue(ctx context.Context) ([]domain.Card, error) {
	settings, err := s.store.ReviewSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load review settings: %w", err)
	}
	return s.store.DueCards(ctx, s.now(), settings.ReviewNewCardsFirst)
}

// DueCount returns how many cards Queue would return.
func (s *Service) DueCount(ctx context.Context) (int, error) {
	return s.store.DueCount(ctx, s.now())
}

// params folds the stored settings into algorithm parameters, logging a
// warning for every value that had to be clamped.
func (s *Service) params(settings domain.ReviewSettings) fsrs.Params {
	p := fsrs.DefaultParams()
	p.RequestRetention = settings.RequestRetention
	p.MaximumInterval = settings.MaximumInterval
	p, warnings := p.Normalize()
	for _, w := range warnings {
		s.log.Warn("review setting out of range", "detail", w)
	}
	return p
}

// burySibling suppresses the reverse-direction card of the same note
// until the next local midnight. No sibling is a no-op; more than one
// sibling is a data anomaly that is logged, and the first match wins.
func (s *Service) burySibling(ctx context.Context, reviewed domain.Card, now time.Time) {
	siblings, err := s.store.CardsByNote(ctx, reviewed.NoteID)
	if err != nil {
		s.log.Warn("failed to load note cards for burial", "note", reviewed.NoteID, "error", err)
		return
	}

	opposite := reviewed.Direction.Opposite()
	var matches []domain.Card
	for _, c := range siblings {
		if c.ID != reviewed.ID && c.Direction == opposite {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return
	}
	if len(matches) > 1 {
		s.log.Warn("multiple sibling cards share one direction, burying the first",
			"note", reviewed.NoteID, "count", len(matches))
	}

	sibling := matches[0]
	until := nextMidnight(now)
	if err := s.store.BuryCard(ctx, sibling.ID, until); err != nil {
		s.log.Warn("failed to bury sibling card", "card", sibling.ID, "error", err)
		return
	}
	s.log.Info("sibling card buried", "card", sibling.ID, "until", until)
}

// nextMidnight is the start of the next calendar day in t's location.
// Local wall-clock midnight matches the original desktop app; across
// time zones or DST boundaries the boundary shifts with the machine.
func nextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
