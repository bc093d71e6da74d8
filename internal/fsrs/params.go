package fsrs

import (
	"fmt"
	"time"
)

// DefaultWeights are the published FSRS-6 default model weights.
var DefaultWeights = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability per rating
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy bonus / short-term
	0.1542, // w[20] decay exponent
}

// Retention clamp bounds. A retention of exactly 0 or 1 produces a
// degenerate (zero or infinite) interval, so requests are clamped inside
// the open interval.
const (
	minRetention = 0.01
	maxRetention = 0.999
)

// Params configures the scheduler. RequestRetention and MaximumInterval
// come from user settings and are re-read on every review; the weights
// and step durations are fixed model constants.
type Params struct {
	Weights          [21]float64
	RequestRetention float64 // target recall probability at the due date
	MaximumInterval  int     // days
	LearningSteps    []time.Duration
	RelearningSteps  []time.Duration
}

// DefaultParams returns the parameter set the original application ships
// with: 90% retention, a 100-year interval cap, and the standard
// 1m/10m learning and 10m relearning steps.
func DefaultParams() Params {
	return Params{
		Weights:          DefaultWeights,
		RequestRetention: 0.9,
		MaximumInterval:  36500,
		LearningSteps:    []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps:  []time.Duration{10 * time.Minute},
	}
}

// Normalize clamps out-of-range values to their nearest valid bound and
// fills zero values with defaults. It returns the normalized parameters
// together with a warning per clamped field, for the caller to log.
// Out-of-range settings are never a hard error.
func (p Params) Normalize() (Params, []string) {
	var warnings []string
	out := p

	if out.Weights == ([21]float64{}) {
		out.Weights = DefaultWeights
	}
	if out.RequestRetention == 0 {
		out.RequestRetention = 0.9
	}
	if out.RequestRetention < minRetention {
		warnings = append(warnings, fmt.Sprintf("request retention %g below %g, clamped", out.RequestRetention, minRetention))
		out.RequestRetention = minRetention
	}
	if out.RequestRetention > maxRetention {
		warnings = append(warnings, fmt.Sprintf("request retention %g above %g, clamped", out.RequestRetention, maxRetention))
		out.RequestRetention = maxRetention
	}
	if out.MaximumInterval == 0 {
		out.MaximumInterval = 36500
	}
	if out.MaximumInterval < 1 {
		warnings = append(warnings, fmt.Sprintf("maximum interval %d below 1 day, clamped", out.MaximumInterval))
		out.MaximumInterval = 1
	}
	if out.LearningSteps == nil {
		out.LearningSteps = []time.Duration{time.Minute, 10 * time.Minute}
	}
	if out.RelearningSteps == nil {
		out.RelearningSteps = []time.Duration{10 * time.Minute}
	}
	return out, warnings
}
