package domain

// Trend classifies the relationship between the last close and the 20/50-bar
// moving averages.
type Trend string

const (
	TrendBullish    Trend = "Bullish"
	TrendBearish    Trend = "Bearish"
	TrendRangeBound Trend = "Range-bound"
	TrendNeutral    Trend = "Neutral"
)

// Momentum classifies the 14-bar RSI reading.
type Momentum string

const (
	MomentumOverbought Momentum = "Overbought"
	MomentumOversold   Momentum = "Oversold"
	MomentumPositive   Momentum = "Positive"
	MomentumNegative   Momentum = "Negative"
	MomentumNeutral    Momentum = "Neutral"
)

// RiskLevel buckets volatility, drawdown, and ATR into a coarse risk label.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// VolumeTrend compares recent volume against the preceding window.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "Increasing"
	VolumeDeclining  VolumeTrend = "Declining"
	VolumeStable     VolumeTrend = "Stable"
)

// MetricsSnapshot is the read-only indicator bundle derived from one candle
// series at one point in time. It has no identity beyond its inputs: the same
// candles always produce the same snapshot, and it is never persisted or
// incrementally updated.
type MetricsSnapshot struct {
	LastClose               float64     `json:"lastClose"`
	ChangePct               float64     `json:"changePct"`
	High                    float64     `json:"high"`
	Low                     float64     `json:"low"`
	AvgVolume               float64     `json:"avgVolume"`
	Volatility              float64     `json:"volatility"`
	RSI14                   float64     `json:"rsi14"`
	SMA20                   float64     `json:"sma20"`
	SMA50                   float64     `json:"sma50"`
	Trend                   Trend       `json:"trend"`
	Momentum                Momentum    `json:"momentum"`
	Support                 float64     `json:"support"`
	Resistance              float64     `json:"resistance"`
	ATR14                   float64     `json:"atr14"`
	ATRPct                  float64     `json:"atrPct"`
	Performance5            float64     `json:"performance5"`
	Performance20           float64     `json:"performance20"`
	MaxDrawdown             float64     `json:"maxDrawdown"`
	VolumeTrend             VolumeTrend `json:"volumeTrend"`
	DistanceToSupportPct    float64     `json:"distanceToSupportPct"`
	DistanceToResistancePct float64     `json:"distanceToResistancePct"`
	RiskLevel               RiskLevel   `json:"riskLevel"`
	SignalScore             int         `json:"signalScore"`
	SignalFlags             []string    `json:"signalFlags"`
}

// ScanRow pairs a symbol with its derived snapshot for the ranking board.
type ScanRow struct {
	Symbol  string          `json:"symbol"`
	Metrics MetricsSnapshot `json:"metrics"`
}
