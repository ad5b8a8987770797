package strategy

import "testing"

func newMomentumForTest(t *testing.T) *Momentum {
	t.Helper()
	p, err := NewMomentum(Params{
		SpreadMultiplier:  0.25,
		MinTick:           0.01,
		MomentumThreshold: 0.0025,
		FeeRate:           0.004,
	})
	if err != nil {
		t.Fatalf("NewMomentum: %v", err)
	}
	return p
}

func TestMomentumSymmetricWhenFlat(t *testing.T) {
	p := newMomentumForTest(t)
	snap := quotableSnap() // mid=100, spread=2 -> tick=0.5

	pair, ok := p.Quote(snap, riskStub{})
	if !ok || !pair.TwoSided() {
		t.Fatalf("expected two-sided quote, ok=%v pair=%+v", ok, pair)
	}
	if !almostEqual(pair.Bid.Price, 99.5) || !almostEqual(pair.Ask.Price, 100.5) {
		t.Fatalf("prices = %v / %v, want 99.5 / 100.5", pair.Bid.Price, pair.Ask.Price)
	}
}

func TestMomentumInventorySkew(t *testing.T) {
	p := newMomentumForTest(t)

	snap := quotableSnap()
	snap.Position = 5
	pair, ok := p.Quote(snap, riskStub{})
	if !ok || !pair.TwoSided() {
		t.Fatalf("long inventory should still quote both sides")
	}
	// 多头只后退买价：99.5-0.25，卖价不动。
	if !almostEqual(pair.Bid.Price, 99.25) || !almostEqual(pair.Ask.Price, 100.5) {
		t.Fatalf("long skew prices = %v / %v, want 99.25 / 100.5", pair.Bid.Price, pair.Ask.Price)
	}

	snap.Position = -5
	pair, _ = p.Quote(snap, riskStub{})
	if !almostEqual(pair.Bid.Price, 99.5) || !almostEqual(pair.Ask.Price, 100.75) {
		t.Fatalf("short skew prices = %v / %v, want 99.5 / 100.75", pair.Bid.Price, pair.Ask.Price)
	}
}

func TestMomentumTrendFilter(t *testing.T) {
	p := newMomentumForTest(t)

	snap := quotableSnap()
	snap.Momentum = -0.01 // 下跌：不接多
	pair, ok := p.Quote(snap, riskStub{})
	if !ok || pair.Bid != nil || pair.Ask == nil {
		t.Fatalf("falling tape should drop the bid: ok=%v pair=%+v", ok, pair)
	}

	snap.Momentum = 0.01 // 上涨：不追空
	pair, ok = p.Quote(snap, riskStub{})
	if !ok || pair.Ask != nil || pair.Bid == nil {
		t.Fatalf("rising tape should drop the ask: ok=%v pair=%+v", ok, pair)
	}

	// 阈值以内不过滤。
	snap.Momentum = 0.002
	pair, _ = p.Quote(snap, riskStub{})
	if !pair.TwoSided() {
		t.Fatalf("momentum within threshold should quote both sides")
	}
}

func TestMomentumSpreadFloor(t *testing.T) {
	// 零费率隔离下限行为：带费率时这么窄的盘口会整体观望。
	p, err := NewMomentum(Params{
		SpreadMultiplier:  0.25,
		MinTick:           0.01,
		MomentumThreshold: 0.0025,
	})
	if err != nil {
		t.Fatalf("NewMomentum: %v", err)
	}
	snap := quotableSnap()
	snap.BestBid, snap.BestAsk = 100, 100.001
	snap.Mid = 100.0005
	snap.Spread = 0.001

	pair, ok := p.Quote(snap, riskStub{})
	if !ok || !pair.TwoSided() {
		t.Fatalf("narrow book should still quote")
	}
	// 有效价差下限 mid*0.0002≈0.02 → tick=max(0.01, 0.005)=0.01。
	if pair.Bid.Tick < 0.005 {
		t.Fatalf("tick collapsed below floor: %v", pair.Bid.Tick)
	}

	// 同样的盘口带上费率后净益为负，必须整体观望而不是亏损挂单。
	if _, ok := newMomentumForTest(t).Quote(snap, riskStub{}); ok {
		t.Fatalf("fee-eaten narrow book must stand aside")
	}
}

func TestMomentumUnquotableBook(t *testing.T) {
	p := newMomentumForTest(t)
	snap := quotableSnap()
	snap.BestBid, snap.BestAsk = 101, 99 // crossed

	if _, ok := p.Quote(snap, riskStub{}); ok {
		t.Fatalf("crossed book must stand aside")
	}
}

func TestNewMomentumValidation(t *testing.T) {
	if _, err := NewMomentum(Params{MomentumThreshold: 0.0025}); err == nil {
		t.Fatalf("zero spreadMultiplier should fail")
	}
	if _, err := NewMomentum(Params{SpreadMultiplier: 0.25}); err == nil {
		t.Fatalf("zero momentumThreshold should fail")
	}
	if _, err := NewMomentum(Params{SpreadMultiplier: 0.25, MomentumThreshold: 0.0025, MinTick: -1}); err == nil {
		t.Fatalf("negative minTick should fail")
	}
}
