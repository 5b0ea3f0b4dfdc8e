package calculator

const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACD returns the MACD line (EMA12 - EMA26 of closes) and its signal line,
// the EMA9 of the MACD line itself.
func MACD(closes []float64) (macd, signal []float64) {
	fast := EMA(closes, MACDFast)
	slow := EMA(closes, MACDSlow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	signal = EMA(macd, MACDSignal)
	return macd, signal
}
