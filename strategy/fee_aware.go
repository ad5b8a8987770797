package strategy

import (
	"errors"
	"math"

	"quote-engine-go/risk"
)

// FeeAware quotes symmetrically around mid at a distance sized to
// survive round-trip fees: tick = max(mid·feeRate, spread·k). A pair
// whose rounded prices cannot clear fees is not worth quoting at all,
// so the whole cycle is skipped rather than one side trimmed.
type FeeAware struct {
	feeRate float64
	k       float64
}

// NewFeeAware validates the fee/spread parameters.
func NewFeeAware(p Params) (*FeeAware, error) {
	if p.FeeRate < 0 {
		return nil, errors.New("fee_aware: feeRate must be >= 0")
	}
	if p.SpreadMultiplier <= 0 {
		return nil, errors.New("fee_aware: spreadMultiplier must be > 0")
	}
	return &FeeAware{feeRate: p.FeeRate, k: p.SpreadMultiplier}, nil
}

// Name implements Policy.
func (f *FeeAware) Name() string { return NameFeeAware }

// Quote implements Policy.
func (f *FeeAware) Quote(snap Snapshot, rv RiskView) (Pair, bool) {
	if !snap.Quotable() {
		return Pair{}, false
	}

	tick := math.Max(snap.Mid*f.feeRate, snap.Spread*f.k)
	buy := RoundTo(snap.Mid-tick, snap.PriceDecimals)
	sell := RoundTo(snap.Mid+tick, snap.PriceDecimals)
	if buy <= 0 {
		return Pair{}, false
	}

	// 舍入后的双边如果覆盖不了手续费，本轮整体观望。
	if !risk.ProfitableAfterFees(buy, sell, snap.OrderSize, f.feeRate) {
		return Pair{}, false
	}

	return gatedPair(snap, rv, buy, sell, tick), true
}
