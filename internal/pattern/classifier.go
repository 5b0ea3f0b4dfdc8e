// Package pattern assigns qualitative labels to enriched bars. Everything here
// is a pure function of its arguments.
package pattern

import (
	"errors"

	"WolfDesk/internal/model"
)

var ErrNoBars = errors.New("no bars to classify")

// ClassifyBar labels a single enriched bar.
func ClassifyBar(b model.EnrichedBar) model.Classification {
	return model.Classification{
		Candle:    ClassifyCandle(b.OHLCV),
		Volume:    ClassifyVolume(b.VolumeRatio),
		MoneyFlow: ClassifyMoneyFlow(b.OHLCV, b.VolumeMA20, b.VolumeRatio),
	}
}

// Classify labels the most recent bar of the series.
func Classify(series *model.EnrichedSeries) (model.Classification, error) {
	if series == nil {
		return model.Classification{}, ErrNoBars
	}
	last, ok := series.Last()
	if !ok {
		return model.Classification{}, ErrNoBars
	}
	return ClassifyBar(last), nil
}
