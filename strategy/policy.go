package strategy

import (
	"math"

	"quote-engine-go/market"
)

// Snapshot carries every input one quote evaluation needs. It is
// assembled by the engine from market state, signals and inventory;
// policies never reach back into live state.
type Snapshot struct {
	Instrument    string
	BestBid       float64
	BestAsk       float64
	Mid           float64
	Spread        float64
	BookImbalance float64
	FlowImbalance float64
	Momentum      float64 // 长均线未热身前为 0
	Position      float64
	OrderSize     float64
	PriceDecimals int
}

// Quotable reports whether the snapshot has a usable two-sided book.
func (s Snapshot) Quotable() bool {
	return s.BestBid > 0 && s.BestAsk > 0 && s.BestAsk > s.BestBid
}

// RiskView is the slice of risk checking a policy sees. Gates return
// nil when adding the exposure is acceptable.
type RiskView interface {
	CanIncreaseLong(inst string, qty, price float64) error
	CanIncreaseShort(inst string, qty float64) error
}

// Intent is one side of a quote decision. Tick is the quoting
// distance the price was built with; the order layer derives its
// replace tolerance from it.
type Intent struct {
	Side  market.Side
	Price float64
	Qty   float64
	Tick  float64
}

// Pair is the two-sided output of one decision. A nil side means
// that side must be cleared (risk-gated or filtered away).
type Pair struct {
	Bid *Intent
	Ask *Intent
}

// TwoSided reports whether both sides carry an intent.
func (p Pair) TwoSided() bool { return p.Bid != nil && p.Ask != nil }

// Empty reports whether neither side carries an intent.
func (p Pair) Empty() bool { return p.Bid == nil && p.Ask == nil }

// Policy turns a snapshot into a quote decision. ok=false means
// stand aside for this cycle: existing orders are left untouched.
type Policy interface {
	Name() string
	Quote(snap Snapshot, risk RiskView) (Pair, bool)
}

// RoundTo rounds a price to a fixed number of decimals.
func RoundTo(price float64, decimals int) float64 {
	if decimals < 0 {
		return price
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(price*pow) / pow
}

// gatedPair applies the per-side risk gates. A gated side comes back
// nil so the corresponding slot is cleared instead of left stale.
func gatedPair(snap Snapshot, risk RiskView, buy, sell, tick float64) Pair {
	var pair Pair
	if risk.CanIncreaseLong(snap.Instrument, snap.OrderSize, buy) == nil {
		pair.Bid = &Intent{Side: market.Buy, Price: buy, Qty: snap.OrderSize, Tick: tick}
	}
	if risk.CanIncreaseShort(snap.Instrument, snap.OrderSize) == nil {
		pair.Ask = &Intent{Side: market.Sell, Price: sell, Qty: snap.OrderSize, Tick: tick}
	}
	return pair
}
