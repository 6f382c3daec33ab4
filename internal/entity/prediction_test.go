package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBarsTopDigitIsWidest(t *testing.T) {
	p := &Prediction{
		Digit:         intPtr(3),
		Probabilities: []float64{0.01, 0, 0, 0.9, 0, 0, 0, 0.05, 0.02, 0.02},
	}

	bars := p.Bars()
	require.Len(t, bars, 10)

	for i, bar := range bars {
		assert.Equal(t, i, bar.Digit)
		if i == 3 {
			assert.True(t, bar.Active)
			continue
		}
		assert.False(t, bar.Active)
		assert.Greater(t, bars[3].Percent, bar.Percent)
	}
	assert.Equal(t, 90, bars[3].Percent)
	assert.Equal(t, 5, bars[7].Percent)
}

func TestBarsPercentClamp(t *testing.T) {
	tests := []struct {
		name string
		prob float64
		want int
	}{
		{name: "negative", prob: -0.2, want: 0},
		{name: "above one", prob: 1.7, want: 100},
		{name: "rounds half up", prob: 0.125, want: 13},
		{name: "rounds down", prob: 0.004, want: 0},
		{name: "nan", prob: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := (&Prediction{Probabilities: []float64{tt.prob}}).Bars()
			require.Len(t, bars, 1)
			assert.Equal(t, tt.want, bars[0].Percent)
		})
	}
}

func TestBarsPartialPrediction(t *testing.T) {
	t.Run("no probabilities means no chart", func(t *testing.T) {
		assert.Nil(t, (&Prediction{Digit: intPtr(7)}).Bars())
	})

	t.Run("missing digit highlights nothing", func(t *testing.T) {
		bars := (&Prediction{Probabilities: []float64{0.5, 0.5}}).Bars()
		require.Len(t, bars, 2)
		assert.False(t, bars[0].Active)
		assert.False(t, bars[1].Active)
	})

	t.Run("nil prediction", func(t *testing.T) {
		var p *Prediction
		assert.Nil(t, p.Bars())
	})
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want Source
		ok   bool
	}{
		{in: "", want: SourcePicker, ok: true},
		{in: "picker", want: SourcePicker, ok: true},
		{in: "DROP", want: SourceDrop, ok: true},
		{in: " paste ", want: SourcePaste, ok: true},
		{in: "camera", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseSource(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType("Image/JPEG"))
	assert.False(t, IsImageType("application/pdf"))
	assert.False(t, IsImageType(""))
}
