package benchmark

import (
	"testing"
	"time"

	"quote-engine-go/inventory"
	"quote-engine-go/market"
	"quote-engine-go/risk"
	"quote-engine-go/strategy"
)

func benchSnapshot() strategy.Snapshot {
	return strategy.Snapshot{
		Instrument:    "ETH",
		BestBid:       100,
		BestAsk:       101,
		Mid:           100.5,
		Spread:        1,
		BookImbalance: 1,
		FlowImbalance: 1,
		OrderSize:     1,
		PriceDecimals: 8,
	}
}

func benchRisk() strategy.RiskView {
	return risk.NewChecker(risk.Limits{DefaultMax: 50}, inventory.NewTracker(100000))
}

// BenchmarkFeeAwareQuote fee_aware 单次报价决策。
func BenchmarkFeeAwareQuote(b *testing.B) {
	p, err := strategy.New(strategy.NameFeeAware, strategy.Params{
		SpreadMultiplier: 0.35,
		FeeRate:          0.001,
	})
	if err != nil {
		b.Fatalf("build policy: %v", err)
	}
	snap := benchSnapshot()
	rv := benchRisk()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Quote(snap, rv)
	}
}

// BenchmarkSignalGatedQuote signal_gated 在不同簿面形态下的决策，
// 含观望分支（均衡簿面直接返回不报价）。
func BenchmarkSignalGatedQuote(b *testing.B) {
	p, err := strategy.New(strategy.NameSignalGated, strategy.Params{
		BookThreshold: 1.5,
		FlowMin:       0.95,
		FlowMax:       1.05,
		MidShift:      0.25,
	})
	if err != nil {
		b.Fatalf("build policy: %v", err)
	}

	cases := []struct {
		name string
		book float64
	}{
		{"Neutral", 1.0},
		{"BidHeavy", 4.0},
		{"AskHeavy", 0.25},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			snap := benchSnapshot()
			snap.BookImbalance = tc.book
			rv := benchRisk()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = p.Quote(snap, rv)
			}
		})
	}
}

// BenchmarkMomentumQuote momentum 在趋势两侧与震荡市的决策。
func BenchmarkMomentumQuote(b *testing.B) {
	p, err := strategy.New(strategy.NameMomentum, strategy.Params{
		SpreadMultiplier:  0.35,
		MomentumThreshold: 0.0025,
	})
	if err != nil {
		b.Fatalf("build policy: %v", err)
	}

	cases := []struct {
		name     string
		momentum float64
	}{
		{"Flat", 0},
		{"TrendingUp", 0.01},
		{"TrendingDown", -0.01},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			snap := benchSnapshot()
			snap.Momentum = tc.momentum
			rv := benchRisk()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = p.Quote(snap, rv)
			}
		})
	}
}

// BenchmarkBookImbalance 全簿买卖量比的计算（每侧 20 档）。
func BenchmarkBookImbalance(b *testing.B) {
	store := market.NewStore([]string{"ETH"}, time.Minute, nil)
	for i := 0; i < 20; i++ {
		store.ApplyBookDelta("ETH", market.Buy, 100-float64(i)*0.1, float64(i+1))
		store.ApplyBookDelta("ETH", market.Sell, 101+float64(i)*0.1, float64(i+1))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.BookImbalance("ETH")
	}
}

// BenchmarkFlowImbalance 滑动窗口内主动买卖量比的重算（1024 笔成交）。
func BenchmarkFlowImbalance(b *testing.B) {
	store := market.NewStore([]string{"ETH"}, time.Minute, nil)
	base := time.Now()
	for i := 0; i < 1024; i++ {
		side := market.Buy
		if i%2 == 1 {
			side = market.Sell
		}
		store.ApplyTrade("ETH", side, 100.5, 0.3, base.Add(time.Duration(i)*time.Millisecond))
	}
	now := base.Add(2 * time.Second)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.FlowImbalance("ETH", 10*time.Second, now)
	}
}
