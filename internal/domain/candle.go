// Package domain defines the core types shared across the stocklens backend:
// candles, metric snapshots, backtest results, and the interfaces that the
// cache, store, provider, and blob layers implement.
package domain

import (
	"math"
	"sort"
	"time"
)

// Candle is a single OHLCV bar. Date identifies the calendar day of the bar;
// for intraday data Time carries the finer timestamp and Date is its day.
type Candle struct {
	Date   time.Time `json:"date"`
	Time   time.Time `json:"datetime,omitzero"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CleanCandles sorts the series ascending by time and drops bars whose close
// is non-positive or non-finite. The engine assumes its input has been through
// this filter; providers return raw bars and the service layer cleans them.
// The input slice is not modified.
func CleanCandles(candles []Candle) []Candle {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.Close <= 0 || math.IsNaN(c.Close) || math.IsInf(c.Close, 0) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Closes extracts the close series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high series.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low series.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume series.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// DailyReturns computes the first-difference return series of the closes,
// each delta divided by the prior close. Non-finite values are dropped so a
// bad bar cannot poison downstream statistics.
func DailyReturns(candles []Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		r := (candles[i].Close - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Quote is the latest traded price for a symbol, as reported by a provider.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"changePct"`
	Timestamp time.Time `json:"timestamp"`
}
