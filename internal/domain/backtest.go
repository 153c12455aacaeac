package domain

import "time"

// TradeType marks a backtest trade record as an entry or an exit.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// BacktestParams are the caller-supplied parameters of one crossover
// simulation. Preconditions: 2 <= FastPeriod < SlowPeriod, InitialCapital > 0,
// FeeBps >= 0; violations are rejected before any simulation work begins.
type BacktestParams struct {
	FastPeriod     int     `json:"fastPeriod"`
	SlowPeriod     int     `json:"slowPeriod"`
	InitialCapital float64 `json:"initialCapital"`
	FeeBps         float64 `json:"feeBps"`
}

// TradeRecord is one executed leg of the simulation. PnL is set only on SELL
// records and carries the realized profit/loss of the round trip, net of fees
// on both legs.
type TradeRecord struct {
	Type   TradeType `json:"type"`
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Shares float64   `json:"shares"`
	Fee    float64   `json:"fee"`
	PnL    *float64  `json:"pnl,omitempty"`
}

// EquityPoint is one bar of the simulated portfolio value.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Close float64   `json:"close"`
}

// BacktestSummary aggregates the statistics of a finished simulation.
type BacktestSummary struct {
	InitialCapital   float64 `json:"initialCapital"`
	FinalCapital     float64 `json:"finalCapital"`
	TotalReturnPct   float64 `json:"totalReturnPct"`
	BuyHoldReturnPct float64 `json:"buyHoldReturnPct"`
	AlphaPct         float64 `json:"alphaPct"`
	MaxDrawdownPct   float64 `json:"maxDrawdownPct"`
	Trades           int     `json:"trades"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRatePct       float64 `json:"winRatePct"`
	CAGRPct          float64 `json:"cagrPct"`
	HoldingPosition  bool    `json:"holdingPosition"`
}

// BacktestResult is the immutable output of one simulation run. The equity
// curve and trade log are truncated for transport after all statistics have
// been computed from the full run.
type BacktestResult struct {
	Summary     BacktestSummary `json:"summary"`
	EquityCurve []EquityPoint   `json:"equityCurve"`
	Trades      []TradeRecord   `json:"trades"`
}

// BacktestRun is a persisted simulation: the parameters it ran with, the
// result it produced, and when it was created.
type BacktestRun struct {
	ID        string         `json:"id"`
	Symbol    string         `json:"symbol"`
	Params    BacktestParams `json:"params"`
	Result    BacktestResult `json:"result"`
	CreatedAt time.Time      `json:"createdAt"`
}
