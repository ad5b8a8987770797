package benchmark

import (
	"sync/atomic"
	"testing"
	"time"

	"quote-engine-go/config"
	"quote-engine-go/infrastructure/alert"
	"quote-engine-go/infrastructure/logger"
	"quote-engine-go/internal/engine"
	"quote-engine-go/inventory"
	"quote-engine-go/market"
	"quote-engine-go/metrics"
	"quote-engine-go/order"
	"quote-engine-go/posttrade"
	"quote-engine-go/risk"
)

// benchVenue 永远成功的场内桩，基准只量引擎自身的开销。
type benchVenue struct {
	nextID int64
}

func (v *benchVenue) PlaceLimitOrder(side market.Side, inst string, qty, price float64, tif order.TimeInForce) (int64, error) {
	return atomic.AddInt64(&v.nextID, 1), nil
}

func (v *benchVenue) CancelOrder(inst string, orderID int64) error { return nil }

func (v *benchVenue) PlaceMarketOrder(side market.Side, inst string, qty float64) error {
	return nil
}

// newBenchEngine 组一台单品种引擎：空日志器、手动时钟，
// 盘口预热到 100/101 并完成首轮挂单。
func newBenchEngine(b *testing.B) (*engine.QuoteEngine, *risk.ManualClock, config.AppConfig) {
	b.Helper()

	cfg := config.Default()
	cfg.Instruments = map[string]config.InstrumentConfig{"ETH": {}}
	cfg.Engine.FeeRate = 0

	clock := risk.NewManualClock(time.Now())
	store := market.NewStore(cfg.InstrumentNames(), cfg.Engine.TradeWindow(), nil)
	tracker := inventory.NewTracker(cfg.Engine.InitialCapital)

	eng, err := engine.New(cfg, engine.Components{
		Store:    store,
		Tracker:  tracker,
		Valuer:   inventory.NewValuer(tracker, store),
		Orders:   order.NewManager(&benchVenue{}),
		Circuit:  risk.NewCircuitBreaker(cfg.Engine.CircuitThreshold, cfg.Engine.CircuitCooldown(), clock),
		Analyzer: posttrade.NewAnalyzer(store, clock),
		Metrics:  metrics.New(metrics.DefaultConfig()),
		Alerts:   alert.NewManager(nil, time.Minute),
		Logger:   logger.NewNop(),
		Clock:    clock,
	})
	if err != nil {
		b.Fatalf("build engine: %v", err)
	}
	if err := eng.Start(); err != nil {
		b.Fatalf("start engine: %v", err)
	}
	b.Cleanup(func() { _ = eng.Stop() })

	eng.OnBookUpdate("ETH", market.Buy, 100, 5)
	clock.Advance(2 * cfg.Engine.RequoteInterval())
	eng.OnBookUpdate("ETH", market.Sell, 101, 5)

	return eng, clock, cfg
}

// BenchmarkEngineBookEvents 节流窗口内的簿面事件路径：
// 存储更新 + 指标 + 被节流挡住的对齐判定。
func BenchmarkEngineBookEvents(b *testing.B) {
	eng, _, _ := newBenchEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.OnBookUpdate("ETH", market.Buy, 100, 5)
	}
}

// BenchmarkEngineTradeEvents 成交事件路径：滑动窗口、动量历史、
// markout 轮询。时钟每笔推进 1ms，窗口在留存期内滚动。
func BenchmarkEngineTradeEvents(b *testing.B) {
	eng, clock, _ := newBenchEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clock.Advance(time.Millisecond)
		side := market.Buy
		if i%2 == 1 {
			side = market.Sell
		}
		eng.OnTrade("ETH", side, 100.5, 0.3)
	}
}

// BenchmarkEngineReconcile 完整决策周期：每个事件都跨过节流窗口，
// 快照 → 策略 → 两个槽位对齐（价位不变时两侧 hold）。
func BenchmarkEngineReconcile(b *testing.B) {
	eng, clock, cfg := newBenchEngine(b)
	step := 2 * cfg.Engine.RequoteInterval()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clock.Advance(step)
		eng.OnBookUpdate("ETH", market.Buy, 100, 5)
	}
}

// BenchmarkEngineStatistics 统计快照读取。
func BenchmarkEngineStatistics(b *testing.B) {
	eng, _, _ := newBenchEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = eng.Statistics()
	}
}

// BenchmarkEngineConcurrentReads 行情线程写、监控线程读的并发访问。
func BenchmarkEngineConcurrentReads(b *testing.B) {
	eng, _, _ := newBenchEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = eng.Statistics()
			_ = eng.State()
		}
	})
}
