package strategy

import (
	"errors"

	"quote-engine-go/risk"
)

// SignalGated only quotes when order flow is balanced and the book
// shows a clear directional skew. Flow outside [flowMin, flowMax]
// means informed traders are hitting one side, so the policy stands
// completely aside. A skewed book shifts the quoting mid toward the
// pressure before symmetric half-spread quotes are laid down.
//
// biasCompetitiveness 变体不平移中价，而是顺势侧贴近盘口、
// 逆势侧后撤：看涨时卖单挂在 mid+biasInside·half，买单退到
// mid−biasDefensive·half，看跌对称。
type SignalGated struct {
	bookThreshold float64
	flowMin       float64
	flowMax       float64
	midShift      float64
	feeRate       float64

	bias          bool
	biasInside    float64
	biasDefensive float64
}

// NewSignalGated validates thresholds and fills bias defaults.
func NewSignalGated(p Params) (*SignalGated, error) {
	if p.BookThreshold <= 1 {
		return nil, errors.New("signal_gated: bookThreshold must be > 1")
	}
	if p.FlowMin > 1 || p.FlowMax < 1 {
		return nil, errors.New("signal_gated: flow band must contain 1.0")
	}
	if p.MidShift < 0 {
		return nil, errors.New("signal_gated: midShift must be >= 0")
	}
	if p.FeeRate < 0 {
		return nil, errors.New("signal_gated: feeRate must be >= 0")
	}
	s := &SignalGated{
		bookThreshold: p.BookThreshold,
		flowMin:       p.FlowMin,
		flowMax:       p.FlowMax,
		midShift:      p.MidShift,
		feeRate:       p.FeeRate,
		bias:          p.BiasCompetitiveness,
		biasInside:    p.BiasInside,
		biasDefensive: p.BiasDefensive,
	}
	if s.bias {
		if s.biasInside == 0 {
			s.biasInside = DefaultBiasInside
		}
		if s.biasDefensive == 0 {
			s.biasDefensive = DefaultBiasDefensive
		}
		if s.biasInside >= s.biasDefensive {
			return nil, errors.New("signal_gated: biasInside must be < biasDefensive")
		}
	}
	return s, nil
}

// Name implements Policy.
func (s *SignalGated) Name() string { return NameSignalGated }

// Quote implements Policy.
func (s *SignalGated) Quote(snap Snapshot, rv RiskView) (Pair, bool) {
	if !snap.Quotable() {
		return Pair{}, false
	}
	// 成交流偏离中性带：有知情单在打单，观望。
	if snap.FlowImbalance < s.flowMin || snap.FlowImbalance > s.flowMax {
		return Pair{}, false
	}

	half := snap.Spread / 2
	var buy, sell float64
	switch {
	case snap.BookImbalance > s.bookThreshold: // 买盘厚，看涨
		if s.bias {
			sell = snap.Mid + s.biasInside*half
			buy = snap.Mid - s.biasDefensive*half
		} else {
			adj := snap.Mid + s.midShift*snap.Spread
			buy, sell = adj-half, adj+half
		}
	case snap.BookImbalance*s.bookThreshold < 1: // 卖盘厚，看跌
		if s.bias {
			buy = snap.Mid - s.biasInside*half
			sell = snap.Mid + s.biasDefensive*half
		} else {
			adj := snap.Mid - s.midShift*snap.Spread
			buy, sell = adj-half, adj+half
		}
	default:
		// 盘口没有方向，不挂。
		return Pair{}, false
	}

	buy = RoundTo(buy, snap.PriceDecimals)
	sell = RoundTo(sell, snap.PriceDecimals)
	if buy <= 0 {
		return Pair{}, false
	}
	if !risk.ProfitableAfterFees(buy, sell, snap.OrderSize, s.feeRate) {
		return Pair{}, false
	}

	return gatedPair(snap, rv, buy, sell, half), true
}
