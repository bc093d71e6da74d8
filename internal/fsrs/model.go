package fsrs

import "math"

// model evaluates the FSRS-6 memory equations for one weight vector.
// decay and factor are derived once from w[20].
type model struct {
	w      [21]float64
	decay  float64
	factor float64
}

func newModel(w [21]float64) model {
	decay := -w[20]
	return model{
		w:      w,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}
}

// retrievability is the forgetting curve R(t, S) = (1 + factor*t/S)^decay.
func (m *model) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

// initialStability is S0(G) for the first review of a card.
func (m *model) initialStability(r Rating) float64 {
	return clampStability(m.w[r-1])
}

// initialDifficulty is D0(G) = w[4] - e^(w[5]*(G-1)) + 1.
// The unclamped value is needed as the mean-reversion target.
func (m *model) initialDifficulty(r Rating, clamp bool) float64 {
	d := m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// interval solves the forgetting curve for the requested retention:
// I(r, S) = round((S/factor) * (r^(1/decay) - 1)), clamped to [1, maxDays].
func (m *model) interval(stability, retention float64, maxDays int) int {
	days := int(math.Round(stability / m.factor * (math.Pow(retention, 1.0/m.decay) - 1)))
	if days < 1 {
		days = 1
	}
	if days > maxDays {
		days = maxDays
	}
	return days
}

// shortTermStability handles same-day reviews, where the forgetting curve
// does not apply: S' = S * e^(w[17]*(G-3+w[18])) * S^(-w[19]), with the
// multiplier floored at 1 for Good and Easy.
func (m *model) shortTermStability(stability float64, r Rating) float64 {
	inc := math.Exp(m.w[17]*(float64(r)-3+m.w[18])) * math.Pow(stability, -m.w[19])
	if r == Good || r == Easy {
		inc = math.Max(inc, 1.0)
	}
	return clampStability(stability * inc)
}

// nextDifficulty applies the linear-damped delta and mean reversion
// toward D0(Easy), then clamps to [1, 10].
func (m *model) nextDifficulty(difficulty float64, r Rating) float64 {
	delta := -m.w[6] * (float64(r) - 3)
	damped := difficulty + (10-difficulty)*delta/9
	target := m.initialDifficulty(Easy, false)
	return clampDifficulty(m.w[7]*target + (1-m.w[7])*damped)
}

func (m *model) nextStability(difficulty, stability, retrievability float64, r Rating) float64 {
	if r == Again {
		return m.forgetStability(difficulty, stability, retrievability)
	}
	return m.recallStability(difficulty, stability, retrievability, r)
}

// recallStability grows stability after a successful cross-day recall.
func (m *model) recallStability(d, s, ret float64, r Rating) float64 {
	hardPenalty := 1.0
	if r == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if r == Easy {
		easyBonus = m.w[16]
	}
	return clampStability(s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-ret)*m.w[10])-1)*
		hardPenalty*easyBonus))
}

// forgetStability shrinks stability after a lapse. The result is capped
// by the short-term formula so a lapse can never increase stability.
func (m *model) forgetStability(d, s, ret float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-ret)*m.w[14])
	short := s / math.Exp(m.w[17]*m.w[18])
	return clampStability(math.Min(long, short))
}

func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
