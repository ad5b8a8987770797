package inventory

import (
	"testing"

	"quote-engine-go/market"
)

type stubMarks struct {
	mids  map[string]float64
	lasts map[string]float64
}

func (s stubMarks) Mid(inst string) (float64, bool) {
	v, ok := s.mids[inst]
	return v, ok
}

func (s stubMarks) LastTradePrice(inst string) (float64, bool) {
	v, ok := s.lasts[inst]
	return v, ok
}

func TestValuerMarkFallback(t *testing.T) {
	marks := stubMarks{
		mids:  map[string]float64{"ETH": 100},
		lasts: map[string]float64{"ETH": 99, "BTC": 50000},
	}
	v := NewValuer(NewTracker(0), marks)

	if mark, ok := v.Mark("ETH"); !ok || mark != 100 {
		t.Fatalf("expected mid mark 100, got %f", mark)
	}
	// mid 缺失时回退到最近成交价
	if mark, ok := v.Mark("BTC"); !ok || mark != 50000 {
		t.Fatalf("expected last-trade mark 50000, got %f", mark)
	}
	if _, ok := v.Mark("LTC"); ok {
		t.Fatal("no mark should be available without mid or trades")
	}
}

func TestPortfolioValue(t *testing.T) {
	tr := NewTracker(1000)
	tr.RecordFill("ETH", market.Buy, 2, 700)   // +2 ETH
	tr.RecordFill("BTC", market.Sell, 1, 1500) // -1 BTC, capital 1500

	marks := stubMarks{
		mids:  map[string]float64{"ETH": 100, "BTC": 200},
		lasts: map[string]float64{},
	}
	v := NewValuer(tr, marks)

	// 1500 + 2*100 - 1*200
	if got := v.PortfolioValue(); got != 1500 {
		t.Fatalf("unexpected portfolio value %f", got)
	}
}

func TestPortfolioValueUnmarkedPosition(t *testing.T) {
	tr := NewTracker(500)
	tr.RecordFill("LTC", market.Buy, 3, 500)
	v := NewValuer(tr, stubMarks{})

	// 无标记价的仓位按 0 贡献
	if got := v.PortfolioValue(); got != 500 {
		t.Fatalf("unexpected portfolio value %f", got)
	}
}
