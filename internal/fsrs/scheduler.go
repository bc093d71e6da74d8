package fsrs

import (
	"fmt"
	"math"
	"time"
)

// Scheduling is the reviewable state of a card: everything the algorithm
// reads and writes, and nothing else. Content fields live on the card
// record and are never touched here.
type Scheduling struct {
	Stability  float64
	Difficulty float64
	Reps       int
	Lapses     int
	State      State
	LastReview *time.Time // nil before the first review
	Due        time.Time
}

// Reviewed reports whether the card has been reviewed at least once.
// A freshly created card has zero stability and no review history; the
// first review routes through the initial-state formulas.
func (s Scheduling) Reviewed() bool {
	return s.Reps > 0 && s.Stability > 0
}

// Next computes the scheduling state after reviewing with the given
// rating at the given time. It is deterministic: no interval fuzzing is
// applied, and identical inputs always produce identical outputs. The
// input is not mutated.
//
// Reps always increments by one; Lapses increments only for Again.
// Due is strictly after now: cross-day intervals are at least one day,
// learning and relearning steps are minutes.
func Next(s Scheduling, r Rating, p Params, now time.Time) (Scheduling, error) {
	if !r.IsValid() {
		return Scheduling{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	p, _ = p.Normalize()
	m := newModel(p.Weights)

	out := s
	if !s.Reviewed() {
		out.Stability = m.initialStability(r)
		out.Difficulty = m.initialDifficulty(r, true)
	} else {
		elapsed := 0.0
		if s.LastReview != nil {
			elapsed = now.Sub(*s.LastReview).Hours() / 24.0
			if elapsed < 0 {
				elapsed = 0
			}
		}
		if elapsed < 1 {
			out.Stability = m.shortTermStability(s.Stability, r)
		} else {
			ret := m.retrievability(elapsed, s.Stability)
			out.Stability = m.nextStability(s.Difficulty, s.Stability, ret, r)
		}
		out.Difficulty = m.nextDifficulty(s.Difficulty, r)
	}

	out.Reps = s.Reps + 1
	if r == Again {
		out.Lapses = s.Lapses + 1
	}

	interval := transition(&out, r, p, &m)
	out.Due = now.Add(interval)
	reviewed := now
	out.LastReview = &reviewed
	return out, nil
}

// Preview returns, for every rating, the number of days until the due
// date that Next would produce, without committing anything. It runs the
// exact same code path as Next so the displayed intervals can never
// diverge from a committed review.
func Preview(s Scheduling, p Params, now time.Time) (map[Rating]int, error) {
	out := make(map[Rating]int, 4)
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		next, err := Next(s, r, p, now)
		if err != nil {
			return nil, err
		}
		out[r] = int(math.Round(next.Due.Sub(now).Hours() / 24.0))
	}
	return out, nil
}

// Retrievability is the current probability of recall, or 0 for a card
// that has never been reviewed.
func Retrievability(s Scheduling, p Params, now time.Time) float64 {
	if !s.Reviewed() || s.LastReview == nil {
		return 0
	}
	p, _ = p.Normalize()
	m := newModel(p.Weights)
	elapsed := now.Sub(*s.LastReview).Hours() / 24.0
	if elapsed < 0 {
		elapsed = 0
	}
	return m.retrievability(elapsed, s.Stability)
}

// transition moves the card through the state lattice and returns the
// interval until the next review. Step positions are not persisted (the
// original system always re-enters the step ladder at zero), so Learning
// and Relearning transitions use step-0 semantics.
func transition(out *Scheduling, r Rating, p Params, m *model) time.Duration {
	switch out.State {
	case New, Learning:
		return stepOrGraduate(out, r, p.LearningSteps, p, m)
	case Relearning:
		return stepOrGraduate(out, r, p.RelearningSteps, p, m)
	default: // Review
		if r == Again && len(p.RelearningSteps) > 0 {
			out.State = Relearning
			return p.RelearningSteps[0]
		}
		return reviewInterval(out, p, m)
	}
}

// stepOrGraduate handles the Learning and Relearning ladders.
func stepOrGraduate(out *Scheduling, r Rating, steps []time.Duration, p Params, m *model) time.Duration {
	if len(steps) == 0 {
		return graduate(out, p, m)
	}
	from := out.State
	switch r {
	case Again:
		if from == New {
			out.State = Learning
		}
		return steps[0]
	case Hard:
		if from == New {
			out.State = Learning
		}
		if len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2
		}
		return time.Duration(1.5 * float64(steps[0]))
	case Good:
		if len(steps) >= 2 {
			if from == New {
				out.State = Learning
			}
			return steps[1]
		}
		return graduate(out, p, m)
	default: // Easy graduates immediately
		return graduate(out, p, m)
	}
}

func graduate(out *Scheduling, p Params, m *model) time.Duration {
	out.State = Review
	return reviewInterval(out, p, m)
}

func reviewInterval(out *Scheduling, p Params, m *model) time.Duration {
	days := m.interval(out.Stability, p.RequestRetention, p.MaximumInterval)
	return time.Duration(days) * 24 * time.Hour
}
