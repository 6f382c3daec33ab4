package entity

import (
	"math"
	"time"
)

// Prediction is the classifier response. Both fields are optional.
type Prediction struct {
	Digit         *int      `json:"digit,omitempty"`
	Probabilities []float64 `json:"probs,omitempty"`
}

type ConfidenceBar struct {
	Digit   int  `json:"digit"`
	Percent int  `json:"percent"`
	Active  bool `json:"active"`
}

// Bars converts the probabilities into chart rows, one per class.
func (p *Prediction) Bars() []ConfidenceBar {
	if p == nil || p.Probabilities == nil {
		return nil
	}

	top := -1
	if p.Digit != nil {
		top = *p.Digit
	}

	bars := make([]ConfidenceBar, len(p.Probabilities))
	for i, prob := range p.Probabilities {
		bars[i] = ConfidenceBar{
			Digit:   i,
			Percent: percent(prob),
			Active:  i == top,
		}
	}
	return bars
}

func percent(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	pct := math.Round(p * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// Outcome is published once per settled prediction that was still current.
type Outcome struct {
	SessionID   string    `json:"session_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	Source      Source    `json:"source"`
	Digit       *int      `json:"digit,omitempty"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	SettledAt   time.Time `json:"settled_at"`
}
