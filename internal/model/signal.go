package model

// CandlePattern labels the shape of a single bar.
type CandlePattern string

const (
	CandleDoji           CandlePattern = "Doji"
	CandleDojiIndecision CandlePattern = "Doji (indecision)"
	CandleHammer         CandlePattern = "Hammer (reversal-down rejection)"
	CandleShootingStar   CandlePattern = "Shooting Star (reversal-up rejection)"
	CandleMarubozu       CandlePattern = "Marubozu (strong directional force)"
	CandleOrdinary       CandlePattern = "Ordinary candle"
)

// VolumeRegime labels today's volume against its 20-day baseline.
type VolumeRegime string

const (
	VolumeSpike         VolumeRegime = "Volume spike"
	VolumeDrought       VolumeRegime = "Volume drought"
	VolumeNormal        VolumeRegime = "Normal"
	VolumeIndeterminate VolumeRegime = "Indeterminate"
)

// MoneyFlowTag is the accumulation/distribution heuristic for one bar.
type MoneyFlowTag string

const (
	FlowAccumulation  MoneyFlowTag = "Accumulation signal (high-volume strong close)"
	FlowDistribution  MoneyFlowTag = "Distribution signal (high-volume weak close)"
	FlowShakeOut      MoneyFlowTag = "Strong shake-out (high volume, small body)"
	FlowDrySupply     MoneyFlowTag = "Dry supply / accumulation phase"
	FlowNormal        MoneyFlowTag = "Normal flow"
	FlowIndeterminate MoneyFlowTag = "Indeterminate"
)

// Classification holds the qualitative tags for one evaluated bar.
type Classification struct {
	Candle    CandlePattern
	Volume    VolumeRegime
	MoneyFlow MoneyFlowTag
}

// Position describes a held position relative to the latest close.
type Position struct {
	BuyPrice  float64
	ProfitPct float64
	Note      string
}

// Analysis is the single-ticker result handed to formatters and the recorder.
type Analysis struct {
	Symbol         string
	Source         string
	Series         *EnrichedSeries
	Last           EnrichedBar
	Change         float64
	ChangePct      float64
	TrendRising    bool
	AboveEMA20     bool
	Classification Classification
	Position       *Position // nil when the ticker is not held
}
