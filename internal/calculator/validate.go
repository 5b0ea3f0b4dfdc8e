package calculator

import (
	"errors"
	"fmt"
	"math"

	"WolfDesk/internal/model"
)

var (
	ErrEmptySeries    = errors.New("empty price series")
	ErrMalformedBar   = errors.New("malformed bar")
	ErrUnorderedDates = errors.New("dates not strictly increasing")
)

// InputError reports the first bar that broke the input contract.
type InputError struct {
	Symbol string
	Index  int
	Err    error
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s: bar %d: %v: %s", e.Symbol, e.Index, e.Err, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// Validate checks the series against the bar invariants:
// prices finite and positive, volume non-negative,
// low <= min(open, close) <= max(open, close) <= high,
// and dates strictly increasing.
func Validate(series *model.PriceSeries) error {
	if series == nil || len(series.Bars) == 0 {
		sym := ""
		if series != nil {
			sym = series.Symbol
		}
		return &InputError{Symbol: sym, Index: -1, Err: ErrEmptySeries}
	}
	for i, b := range series.Bars {
		if reason := checkBar(b); reason != "" {
			return &InputError{Symbol: series.Symbol, Index: i, Err: ErrMalformedBar, Reason: reason}
		}
		if i > 0 && !b.Time.After(series.Bars[i-1].Time) {
			return &InputError{
				Symbol: series.Symbol,
				Index:  i,
				Err:    ErrUnorderedDates,
				Reason: fmt.Sprintf("%s follows %s", b.Time.Format("2006-01-02"), series.Bars[i-1].Time.Format("2006-01-02")),
			}
		}
	}
	return nil
}

func checkBar(b model.OHLCV) string {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "non-finite value"
		}
	}
	switch {
	case b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0:
		return "non-positive price"
	case b.Volume < 0:
		return "negative volume"
	case b.Low > math.Min(b.Open, b.Close):
		return fmt.Sprintf("low %.4f above body", b.Low)
	case b.High < math.Max(b.Open, b.Close):
		return fmt.Sprintf("high %.4f below body", b.High)
	}
	return ""
}
