package strategy

import "testing"

func newFeeAwareForTest(t *testing.T) *FeeAware {
	t.Helper()
	p, err := NewFeeAware(Params{FeeRate: 0.004, SpreadMultiplier: 0.35})
	if err != nil {
		t.Fatalf("NewFeeAware: %v", err)
	}
	return p
}

func TestFeeAwareSymmetricQuotes(t *testing.T) {
	p := newFeeAwareForTest(t)
	snap := quotableSnap() // mid=100, spread=2

	pair, ok := p.Quote(snap, riskStub{})
	if !ok || !pair.TwoSided() {
		t.Fatalf("expected two-sided quote, ok=%v pair=%+v", ok, pair)
	}
	// tick = max(100*0.004, 2*0.35) = 0.7
	if !almostEqual(pair.Bid.Price, 99.3) || !almostEqual(pair.Ask.Price, 100.7) {
		t.Fatalf("prices = %v / %v, want 99.3 / 100.7", pair.Bid.Price, pair.Ask.Price)
	}
	if !almostEqual(pair.Bid.Tick, 0.7) {
		t.Fatalf("tick = %v, want 0.7", pair.Bid.Tick)
	}
}

func TestFeeAwareFeeTermDominates(t *testing.T) {
	p := newFeeAwareForTest(t)
	snap := quotableSnap()
	snap.BestBid, snap.BestAsk = 99.9, 100.1
	snap.Spread = 0.2

	// tick = max(0.4, 0.07) = 0.4：手续费项接管报价距离。
	pair, ok := p.Quote(snap, riskStub{})
	if !ok {
		// 手续费主导时期望收益贴零，被动观望同样合法；
		// 这里只要求不出现亏损报价。
		return
	}
	if pair.Bid != nil && pair.Ask != nil {
		edge := (pair.Ask.Price-pair.Bid.Price)*snap.OrderSize -
			(pair.Ask.Price+pair.Bid.Price)*snap.OrderSize*0.004
		if edge <= 0 {
			t.Fatalf("quoted a losing pair: %v / %v", pair.Bid.Price, pair.Ask.Price)
		}
	}
}

func TestFeeAwareSkipsUnprofitablePair(t *testing.T) {
	p := newFeeAwareForTest(t)
	snap := quotableSnap()
	snap.BestBid, snap.BestAsk = 99.9, 100.1
	snap.Spread = 0.2
	snap.PriceDecimals = 0 // 舍入塌缩：买卖价相等

	pair, ok := p.Quote(snap, riskStub{})
	if ok {
		t.Fatalf("rounded-to-equal pair must skip the cycle, got %+v", pair)
	}
}

func TestFeeAwareRiskGatesPerSide(t *testing.T) {
	p := newFeeAwareForTest(t)
	snap := quotableSnap()

	pair, ok := p.Quote(snap, riskStub{longErr: errGated})
	if !ok {
		t.Fatalf("risk gate must not skip the cycle")
	}
	if pair.Bid != nil || pair.Ask == nil {
		t.Fatalf("gated long should clear only the bid: %+v", pair)
	}
}

func TestFeeAwareUnquotableBook(t *testing.T) {
	p := newFeeAwareForTest(t)
	snap := quotableSnap()
	snap.BestAsk = 0

	if _, ok := p.Quote(snap, riskStub{}); ok {
		t.Fatalf("missing ask must stand aside")
	}
}

func TestNewFeeAwareValidation(t *testing.T) {
	if _, err := NewFeeAware(Params{FeeRate: -0.01, SpreadMultiplier: 0.35}); err == nil {
		t.Fatalf("negative feeRate should fail")
	}
	if _, err := NewFeeAware(Params{FeeRate: 0.004}); err == nil {
		t.Fatalf("zero spreadMultiplier should fail")
	}
}
