package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"quote-engine-go/strategy"
)

const instrument = "ETH"

// harness 组一台完整引擎：除场内通道用 MockVenue 外全部真实组件，
// 手动时钟驱动节流与熔断冷却。
type harness struct {
	cfg      config.AppConfig
	eng      *engine.QuoteEngine
	venue    *MockVenue
	store    *market.Store
	tracker  *inventory.Tracker
	orders   *order.Manager
	analyzer *posttrade.Analyzer
	clock    *risk.ManualClock
	mock     *alert.MockChannel

	bid, bidQty float64
	ask, askQty float64
}

func newHarness(t *testing.T, mutate func(*config.AppConfig)) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.Instruments = map[string]config.InstrumentConfig{instrument: {}}
	// 手续费为零让报价价位只由 spreadMultiplier 决定，断言好算。
	cfg.Engine.FeeRate = 0
	if mutate != nil {
		mutate(&cfg)
	}

	clock := risk.NewManualClock(time.Now())
	venue := NewMockVenue()
	store := market.NewStore(cfg.InstrumentNames(), cfg.Engine.TradeWindow(), nil)
	tracker := inventory.NewTracker(cfg.Engine.InitialCapital)
	orders := order.NewManager(venue)
	analyzer := posttrade.NewAnalyzer(store, clock)
	mock := alert.NewMockChannel("integration")

	var circuit *risk.CircuitBreaker
	if cfg.Engine.CircuitThreshold > 0 {
		circuit = risk.NewCircuitBreaker(cfg.Engine.CircuitThreshold, cfg.Engine.CircuitCooldown(), clock)
	}
	var drawdown *risk.DrawdownGuard
	if cfg.Engine.DrawdownLimit > 0 {
		drawdown = risk.NewDrawdownGuard(cfg.Engine.DrawdownLimit)
	}

	eng, err := engine.New(cfg, engine.Components{
		Store:    store,
		Tracker:  tracker,
		Valuer:   inventory.NewValuer(tracker, store),
		Orders:   orders,
		Circuit:  circuit,
		Drawdown: drawdown,
		Analyzer: analyzer,
		Metrics:  metrics.New(metrics.DefaultConfig()),
		Alerts:   alert.NewManager([]alert.Channel{mock}, 0),
		Logger:   logger.NewNop(),
		Clock:    clock,
	})
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	t.Cleanup(func() { _ = eng.Stop() })

	return &harness{
		cfg:      cfg,
		eng:      eng,
		venue:    venue,
		store:    store,
		tracker:  tracker,
		orders:   orders,
		analyzer: analyzer,
		clock:    clock,
		mock:     mock,
	}
}

// setBook 把盘口换到新价位：先删旧档再铺新档（删改都被节流挡住，
// 不会用半边簿触发对齐），最后 requote 跨过节流窗口对齐一轮。
func (h *harness) setBook(bid, bidQty, ask, askQty float64) {
	if h.bid != 0 && h.bid != bid {
		h.eng.OnBookUpdate(instrument, market.Buy, h.bid, 0)
	}
	if h.ask != 0 && h.ask != ask {
		h.eng.OnBookUpdate(instrument, market.Sell, h.ask, 0)
	}
	h.eng.OnBookUpdate(instrument, market.Buy, bid, bidQty)
	h.eng.OnBookUpdate(instrument, market.Sell, ask, askQty)
	h.bid, h.bidQty, h.ask, h.askQty = bid, bidQty, ask, askQty
	h.requote()
}

// requote 推进时钟跨过节流窗口并重申买一，触发一轮对齐决策。
func (h *harness) requote() {
	h.clock.Advance(2 * h.cfg.Engine.RequoteInterval())
	h.eng.OnBookUpdate(instrument, market.Buy, h.bid, h.bidQty)
}

// fillResting 模拟某侧挂单全量成交：场内先消失，随后成交回报到达。
func (h *harness) fillResting(t *testing.T, side market.Side) order.Resting {
	t.Helper()
	r, ok := h.orders.Resting(instrument, side)
	require.True(t, ok, "no resting %s order", side)
	h.venue.Remove(r.OrderID)
	capital := h.tracker.Capital()
	if side == market.Buy {
		capital -= r.Price * r.Qty
	} else {
		capital += r.Price * r.Qty
	}
	h.eng.OnFill(instrument, side, r.Price, r.Qty, capital)
	return r
}

func hasAlert(alerts []alert.Alert, level alert.Level, msg string) bool {
	for _, a := range alerts {
		if a.Level == level && a.Message == msg {
			return true
		}
	}
	return false
}

// 完整做市回合：挂双边 → 盘口移动换单 → 买侧成交入账 →
// 补单 → markout 采样 → 停机清场。
func TestMakerSessionEndToEnd(t *testing.T) {
	h := newHarness(t, nil)

	// 盘口 100/101：fee_aware 在 mid=100.5 两侧各 0.35 处挂单。
	h.setBook(100, 5, 101, 5)

	require.Equal(t, 2, h.venue.OpenCount())
	bid, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.InDelta(t, 100.15, bid.Price, 1e-9)
	assert.InDelta(t, 1, bid.Qty, 1e-9)
	ask, ok := h.venue.Open(instrument, market.Sell)
	require.True(t, ok)
	assert.InDelta(t, 100.85, ask.Price, 1e-9)

	// 盘口整体上移 0.4，超出容忍带（0.5·0.35），两侧换单。
	h.setBook(100.4, 5, 101.4, 5)

	bid2, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.InDelta(t, 100.55, bid2.Price, 1e-9)
	assert.NotEqual(t, bid.ID, bid2.ID)
	ask2, ok := h.venue.Open(instrument, market.Sell)
	require.True(t, ok)
	assert.InDelta(t, 101.25, ask2.Price, 1e-9)

	places, cancels, _ := h.venue.Counts()
	assert.Equal(t, 4, places)
	assert.Equal(t, 2, cancels)

	// 买单全量成交：入账并释放槽位，卖单原地不动。
	fill := h.fillResting(t, market.Buy)
	assert.InDelta(t, 100.55, fill.Price, 1e-9)
	assert.InDelta(t, 1, h.tracker.Position(instrument), 1e-9)
	assert.InDelta(t, 100000-100.55, h.tracker.Capital(), 1e-9)
	assert.Equal(t, 1, h.venue.OpenCount())
	assert.Equal(t, 1, h.orders.RestingCount())

	// 下一轮对齐把买侧补回来，价位不变。
	h.requote()
	assert.Equal(t, 2, h.venue.OpenCount())
	bid3, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.InDelta(t, 100.55, bid3.Price, 1e-9)

	// 6 秒后的一笔成交让 1s/5s 两个 markout 窗口都到期：
	// 买入 100.55 后 mid 仍是 100.9，markout 为正，无逆向选择。
	h.clock.Advance(6 * time.Second)
	h.eng.OnTrade(instrument, market.Sell, 100.4, 0.5)

	pt := h.analyzer.Stats()
	assert.Equal(t, 1, pt.TotalFills)
	assert.Equal(t, 1, pt.AnalyzedFills)
	assert.InDelta(t, 0, pt.AdverseSelectionRate, 1e-9)
	wantMarkout := (100.9 - 100.55) / 100.55
	assert.InDelta(t, wantMarkout, pt.AvgMarkout1s, 1e-9)
	assert.InDelta(t, wantMarkout, pt.AvgMarkout5s, 1e-9)

	st := h.eng.Statistics()
	assert.Equal(t, int64(1), st.Fills)
	assert.Equal(t, int64(1), st.Trades)

	// 停机清场：引擎撤掉全部挂单。
	require.NoError(t, h.eng.Stop())
	assert.Equal(t, 0, h.venue.OpenCount())
	assert.Equal(t, engine.StateStopped, h.eng.State())
}

// 场内故障：撤单连续失败触发熔断，冷却期内整体停手，
// 旧单留在场内且槽位一致；冷却结束自动闭合并补到新价。
func TestVenueOutageTripsCircuitAndRecovers(t *testing.T) {
	h := newHarness(t, func(cfg *config.AppConfig) {
		cfg.Engine.CircuitThreshold = 2
		cfg.Engine.CircuitCooldownSec = 30
	})

	h.setBook(100, 5, 101, 5)
	require.Equal(t, 2, h.venue.OpenCount())

	// 两侧换单的撤旧都失败：连续两次场内失败打开熔断，
	// 撤不掉就不挂新，旧单原价保留。
	h.venue.FailNextCancels(2)
	h.setBook(100.4, 5, 101.4, 5)

	assert.Equal(t, 2, h.venue.OpenCount())
	bid, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.InDelta(t, 100.15, bid.Price, 1e-9)
	assert.Equal(t, int64(2), h.eng.Statistics().VenueErrors)
	assert.True(t, hasAlert(h.mock.GetAlerts(), alert.LevelWarning, "venue circuit opened"))

	// 冷却期内对齐被整体抑制，不再碰场内。
	placesBefore, cancelsBefore, _ := h.venue.Counts()
	skipsBefore := h.eng.Statistics().Skips
	h.requote()
	placesAfter, cancelsAfter, _ := h.venue.Counts()
	assert.Equal(t, placesBefore, placesAfter)
	assert.Equal(t, cancelsBefore, cancelsAfter)
	assert.Greater(t, h.eng.Statistics().Skips, skipsBefore)

	// 冷却结束后自动闭合，换单补到新价位。
	h.clock.Advance(31 * time.Second)
	h.requote()

	assert.True(t, hasAlert(h.mock.GetAlerts(), alert.LevelInfo, "venue circuit closed"))
	assert.Equal(t, 2, h.venue.OpenCount())
	bid2, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.InDelta(t, 100.55, bid2.Price, 1e-9)
	ask2, ok := h.venue.Open(instrument, market.Sell)
	require.True(t, ok)
	assert.InDelta(t, 101.25, ask2.Price, 1e-9)
}

// 场内给了超过请求量的成交导致净仓越限：撤越限侧、
// 市价削掉超出部分、发 ERROR 告警，对侧挂单保留。
func TestRiskBreachFlattensAndAlerts(t *testing.T) {
	h := newHarness(t, func(cfg *config.AppConfig) {
		cfg.Engine.MaxPosition = 2
		cfg.Engine.FlattenOnBreach = true
	})

	h.setBook(100, 5, 101, 5)
	require.Equal(t, 2, h.venue.OpenCount())

	// 引擎只挂了 1 手，场内回报 3 手（同账户混了手工单）。
	r, ok := h.orders.Resting(instrument, market.Buy)
	require.True(t, ok)
	h.venue.Remove(r.OrderID)
	capital := h.tracker.Capital() - 3*r.Price
	h.eng.OnFill(instrument, market.Buy, r.Price, 3, capital)

	assert.InDelta(t, 3, h.tracker.Position(instrument), 1e-9)

	// 多头越限 1 手：市价卖出 1 手打回限额内。
	mkts := h.venue.MarketOrders()
	require.Len(t, mkts, 1)
	assert.Equal(t, market.Sell, mkts[0].Side)
	assert.Equal(t, instrument, mkts[0].Inst)
	assert.InDelta(t, 1, mkts[0].Qty, 1e-9)

	// 卖侧挂单不受影响。
	assert.Equal(t, 1, h.venue.OpenCount())
	_, ok = h.venue.Open(instrument, market.Sell)
	assert.True(t, ok)
	assert.Equal(t, 1, h.orders.RestingCount())

	alerts := h.mock.GetAlerts()
	require.True(t, hasAlert(alerts, alert.LevelError, "position limit breached"))
	for _, a := range alerts {
		if a.Message == "position limit breached" {
			excess, isFloat := a.Fields["excess"].(float64)
			require.True(t, isFloat)
			assert.InDelta(t, 1, excess, 1e-9)
		}
	}
}

// 运行中热切策略：fee_aware → signal_gated。均衡盘口下新策略观望、
// 存量挂单原地保留；买盘变厚后看涨整体上移，容忍带内的一侧不动。
func TestPolicyHotSwapMidSession(t *testing.T) {
	h := newHarness(t, nil)

	h.setBook(100, 5, 101, 5)
	bid, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	ask, ok := h.venue.Open(instrument, market.Sell)
	require.True(t, ok)

	next := h.cfg
	next.Engine.Policy = strategy.NameSignalGated
	require.NoError(t, h.eng.ApplyTunables(next))

	// 盘口均衡（imbalance=1）：signal_gated 观望，不碰存量挂单。
	skipsBefore := h.eng.Statistics().Skips
	h.requote()
	assert.Greater(t, h.eng.Statistics().Skips, skipsBefore)

	bid2, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.Equal(t, bid.ID, bid2.ID)
	ask2, ok := h.venue.Open(instrument, market.Sell)
	require.True(t, ok)
	assert.Equal(t, ask.ID, ask2.ID)

	// 买盘变厚（20:5，imbalance=4 > 1.5）：看涨整体上移。
	// adj = 100.5 + 0.25·1 = 100.75：买 100.25 距原价 0.10 在
	// 容忍带（0.5·half=0.25）内原单保留；卖 101.25 距原价 0.40 换单。
	h.setBook(100, 20, 101, 5)

	bid3, ok := h.venue.Open(instrument, market.Buy)
	require.True(t, ok)
	assert.Equal(t, bid.ID, bid3.ID)
	assert.InDelta(t, 100.15, bid3.Price, 1e-9)

	ask3, ok := h.venue.Open(instrument, market.Sell)
	require.True(t, ok)
	assert.NotEqual(t, ask.ID, ask3.ID)
	assert.InDelta(t, 101.25, ask3.Price, 1e-9)
	assert.Equal(t, 2, h.venue.OpenCount())
}
