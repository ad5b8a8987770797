package strategy

import (
	"errors"
	"math"

	"quote-engine-go/risk"
)

// minSpreadFraction floors the effective spread at 2bps of mid so a
// locked book cannot collapse the quoting distance to zero.
const minSpreadFraction = 0.0002

// Momentum quotes mid±tick, backs off the side that would grow the
// current position, and refuses to lean against a trending tape:
// falling momentum drops the bid, rising momentum drops the ask.
type Momentum struct {
	k         float64
	minTick   float64
	threshold float64
	feeRate   float64
}

// NewMomentum validates the quoting distance parameters.
func NewMomentum(p Params) (*Momentum, error) {
	if p.SpreadMultiplier <= 0 {
		return nil, errors.New("momentum: spreadMultiplier must be > 0")
	}
	if p.MinTick < 0 {
		return nil, errors.New("momentum: minTick must be >= 0")
	}
	if p.MomentumThreshold <= 0 {
		return nil, errors.New("momentum: momentumThreshold must be > 0")
	}
	if p.FeeRate < 0 {
		return nil, errors.New("momentum: feeRate must be >= 0")
	}
	return &Momentum{
		k:         p.SpreadMultiplier,
		minTick:   p.MinTick,
		threshold: p.MomentumThreshold,
		feeRate:   p.FeeRate,
	}, nil
}

// Name implements Policy.
func (m *Momentum) Name() string { return NameMomentum }

// Quote implements Policy.
func (m *Momentum) Quote(snap Snapshot, rv RiskView) (Pair, bool) {
	if !snap.Quotable() {
		return Pair{}, false
	}

	spread := math.Max(snap.Spread, snap.Mid*minSpreadFraction)
	tick := math.Max(m.minTick, spread*m.k)
	buy := snap.Mid - tick
	sell := snap.Mid + tick

	// 库存偏斜：只后退会继续加仓的那一侧。
	if snap.Position > 0 {
		buy -= 0.5 * tick
	} else if snap.Position < 0 {
		sell += 0.5 * tick
	}

	buy = RoundTo(buy, snap.PriceDecimals)
	sell = RoundTo(sell, snap.PriceDecimals)
	if buy <= 0 {
		return Pair{}, false
	}
	if !risk.ProfitableAfterFees(buy, sell, snap.OrderSize, m.feeRate) {
		return Pair{}, false
	}

	pair := gatedPair(snap, rv, buy, sell, tick)

	// 顺势过滤：下跌不接多，上涨不追空。
	if snap.Momentum < -m.threshold {
		pair.Bid = nil
	}
	if snap.Momentum > m.threshold {
		pair.Ask = nil
	}
	return pair, true
}
