package fsrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_ValidPassesThrough(t *testing.T) {
	p := DefaultParams()
	got, warnings := p.Normalize()
	assert.Empty(t, warnings)
	assert.Equal(t, 0.9, got.RequestRetention)
	assert.Equal(t, 36500, got.MaximumInterval)
}

func TestNormalize_ClampsRetention(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"too high", 1.5, 0.999},
		{"one", 1.0, 0.999},
		{"too low", -0.2, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.RequestRetention = tt.in
			got, warnings := p.Normalize()
			assert.Equal(t, tt.want, got.RequestRetention)
			assert.NotEmpty(t, warnings)
		})
	}
}

func TestNormalize_ClampsMaximumInterval(t *testing.T) {
	p := DefaultParams()
	p.MaximumInterval = -10
	got, warnings := p.Normalize()
	assert.Equal(t, 1, got.MaximumInterval)
	assert.NotEmpty(t, warnings)
}

func TestNormalize_FillsZeroValues(t *testing.T) {
	got, warnings := Params{}.Normalize()
	assert.Empty(t, warnings)
	assert.Equal(t, DefaultParams(), got)
}

func TestNormalize_DoesNotMutateReceiver(t *testing.T) {
	p := DefaultParams()
	p.RequestRetention = 2.0
	_, _ = p.Normalize()
	assert.Equal(t, 2.0, p.RequestRetention)
}
