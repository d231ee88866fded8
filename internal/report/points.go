package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabelLayout matches the dd/MM/yyyy HH:mm:ss labels shown on charts and tables.
const LabelLayout = "02/01/2006 15:04:05"

const valuePlaces = 1

// TimeSeriesPoint is one projected sample, rounded to one fractional digit.
type TimeSeriesPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

func (p TimeSeriesPoint) Label() string {
	return p.Timestamp.Format(LabelLayout)
}

// LabelIn renders the label in loc. A nil loc keeps the timestamp's own zone.
func (p TimeSeriesPoint) LabelIn(loc *time.Location) string {
	if loc == nil {
		return p.Label()
	}
	return p.Timestamp.In(loc).Format(LabelLayout)
}

// Text renders the value the way it was rounded, e.g. "1.0".
func (p TimeSeriesPoint) Text() string {
	return p.Value.StringFixed(valuePlaces)
}

func (p TimeSeriesPoint) Float() float64 {
	f, _ := p.Value.Float64()
	return f
}

// roundValue applies round-half-away-from-zero at one fractional digit.
func roundValue(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(valuePlaces)
}
