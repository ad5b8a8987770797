package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"quote-engine-go/config"
	"quote-engine-go/infrastructure/alert"
	"quote-engine-go/infrastructure/logger"
	"quote-engine-go/inventory"
	"quote-engine-go/market"
	"quote-engine-go/metrics"
	"quote-engine-go/order"
	"quote-engine-go/posttrade"
	"quote-engine-go/risk"
	"quote-engine-go/strategy"
)

// EngineState 引擎状态
type EngineState int

const (
	// StateIdle 空闲状态
	StateIdle EngineState = iota
	// StateRunning 运行状态
	StateRunning
	// StatePaused 暂停状态
	StatePaused
	// StateStopped 停止状态
	StateStopped
)

// String 返回状态名称
func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// 报价被抑制时的原因标签，喂给 quotes_suppressed_total。
const (
	reasonPaused    = "paused"
	reasonThrottled = "throttled"
	reasonStale     = "stale"
	reasonCircuit   = "circuit_open"
	reasonDrawdown  = "drawdown"
	reasonNoBook    = "no_book"
	reasonPolicy    = "policy"
	reasonRisk      = "risk"
)

// 动量信号的长短均线窗口。
const (
	momentumShortMA = 3
	momentumLongMA  = 12
)

// Components 引擎依赖组件。Circuit/Drawdown/Analyzer/Alerts/Clock 可选。
type Components struct {
	Store    *market.Store
	Tracker  *inventory.Tracker
	Valuer   *inventory.Valuer
	Orders   *order.Manager
	Circuit  *risk.CircuitBreaker
	Drawdown *risk.DrawdownGuard
	Analyzer *posttrade.Analyzer
	Metrics  *metrics.Metrics
	Alerts   *alert.Manager
	Logger   *logger.Logger
	Clock    risk.Clock
}

// Statistics 引擎统计信息快照
type Statistics struct {
	StartTime     time.Time
	Trades        int64
	Books         int64
	Fills         int64
	Dropped       uint64
	Reconciles    int64
	Skips         int64
	Rejects       int64
	VenueErrors   int64
	LastEventTime time.Time
	LastReconcile time.Time
}

// QuoteEngine 事件驱动的报价引擎。行情与成交回报经三个处理方法
// 进入，每次事件后在节流与护栏允许时执行一轮报价决策并把结果
// 对齐到订单槽。处理方法假定由单个goroutine调用。
type QuoteEngine struct {
	// 核心组件
	store    *market.Store
	tracker  *inventory.Tracker
	valuer   *inventory.Valuer
	orders   *order.Manager
	circuit  *risk.CircuitBreaker
	drawdown *risk.DrawdownGuard
	analyzer *posttrade.Analyzer
	metrics  *metrics.Metrics
	alerts   *alert.Manager
	log      *logger.Logger
	clock    risk.Clock

	mu    sync.RWMutex
	state EngineState

	// 可热更的决策参数
	policy          strategy.Policy
	checker         *risk.Checker
	guards          risk.MultiGuard
	requoteInterval time.Duration
	flowHorizon     time.Duration
	maxStaleness    time.Duration
	flattenOnBreach bool
	resolved        map[string]config.InstrumentConfig

	instruments   []string
	history       map[string]*market.PriceHistory
	lastReconcile map[string]time.Time
	droppedFills  uint64

	stats Statistics
}

// New 创建报价引擎。策略与风控检查器由配置构建，组件校验失败时报错。
func New(cfg config.AppConfig, comps Components) (*QuoteEngine, error) {
	if err := validateComponents(comps); err != nil {
		return nil, fmt.Errorf("invalid components: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	policy, err := strategy.New(cfg.Engine.Policy, cfg.Engine.StrategyParams())
	if err != nil {
		return nil, fmt.Errorf("build policy: %w", err)
	}

	clock := comps.Clock
	if clock == nil {
		clock = risk.System
	}

	instruments := cfg.InstrumentNames()
	sort.Strings(instruments)

	e := &QuoteEngine{
		store:    comps.Store,
		tracker:  comps.Tracker,
		valuer:   comps.Valuer,
		orders:   comps.Orders,
		circuit:  comps.Circuit,
		drawdown: comps.Drawdown,
		analyzer: comps.Analyzer,
		metrics:  comps.Metrics,
		alerts:   comps.Alerts,
		log:      comps.Logger,
		clock:    clock,

		state:           StateIdle,
		policy:          policy,
		checker:         risk.NewChecker(limitsFrom(cfg), comps.Tracker),
		requoteInterval: cfg.Engine.RequoteInterval(),
		flowHorizon:     cfg.Engine.FlowHorizon(),
		maxStaleness:    cfg.Engine.MaxStaleness(),
		flattenOnBreach: cfg.Engine.FlattenOnBreach,
		resolved:        resolvedFrom(cfg),

		instruments:   instruments,
		history:       make(map[string]*market.PriceHistory, len(instruments)),
		lastReconcile: make(map[string]time.Time, len(instruments)),
	}
	for _, inst := range instruments {
		e.history[inst] = market.NewPriceHistory(market.DefaultHistorySize)
	}
	e.guards = e.buildGuards()
	e.orders.SetConstraints(constraintSetFrom(cfg))
	e.wireCallbacks()

	return e, nil
}

// Start 启动引擎，开始接收事件并报价。
func (e *QuoteEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateStopped {
		return fmt.Errorf("engine already started (state: %s)", e.state)
	}
	e.state = StateRunning
	e.stats = Statistics{StartTime: e.clock.Now()}
	e.metrics.UpdateEngineState(int(StateRunning))

	e.log.Info("quote engine started",
		zap.String("policy", e.policy.Name()),
		zap.Strings("instruments", e.instruments),
		zap.Duration("requote_interval", e.requoteInterval))
	return nil
}

// Stop 停止引擎并撤掉全部挂单。幂等。
func (e *QuoteEngine) Stop() error {
	e.mu.Lock()
	if e.state == StateStopped {
		e.mu.Unlock()
		return nil
	}
	if e.state != StateRunning && e.state != StatePaused {
		e.mu.Unlock()
		return fmt.Errorf("engine not running (state: %s)", e.state)
	}
	e.state = StateStopped
	e.mu.Unlock()

	results := e.orders.CancelAll()
	for _, res := range results {
		e.applyResult(res)
	}
	e.metrics.UpdateEngineState(int(StateStopped))
	e.log.Info("quote engine stopped", zap.Int("cancels", len(results)))
	return nil
}

// Pause 暂停报价决策；行情仍会更新，挂单保持不动。
func (e *QuoteEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return fmt.Errorf("engine not running (state: %s)", e.state)
	}
	e.state = StatePaused
	e.metrics.UpdateEngineState(int(StatePaused))
	e.log.Info("quote engine paused")
	return nil
}

// Resume 恢复报价决策。
func (e *QuoteEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePaused {
		return fmt.Errorf("engine not paused (state: %s)", e.state)
	}
	e.state = StateRunning
	e.metrics.UpdateEngineState(int(StateRunning))
	e.log.Info("quote engine resumed")
	return nil
}

// State 返回引擎状态。
func (e *QuoteEngine) State() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Statistics 返回统计信息快照。
func (e *QuoteEngine) Statistics() Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := e.stats
	out.Dropped = e.store.Dropped() + e.droppedFills
	return out
}

// ApplyTunables 应用热更配置。策略、阈值、节流与约束即时生效；
// 品种集合运行期不可变，窗口保留时长等构造期参数不在热更范围。
func (e *QuoteEngine) ApplyTunables(cfg config.AppConfig) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	policy, err := strategy.New(cfg.Engine.Policy, cfg.Engine.StrategyParams())
	if err != nil {
		return fmt.Errorf("rebuild policy: %w", err)
	}

	e.mu.Lock()
	if len(cfg.Instruments) != len(e.resolved) {
		e.mu.Unlock()
		return errors.New("instrument set is immutable at runtime")
	}
	for inst := range cfg.Instruments {
		if _, ok := e.resolved[inst]; !ok {
			e.mu.Unlock()
			return fmt.Errorf("instrument set is immutable at runtime: %s is new", inst)
		}
	}
	e.policy = policy
	e.checker = risk.NewChecker(limitsFrom(cfg), e.tracker)
	e.requoteInterval = cfg.Engine.RequoteInterval()
	e.flowHorizon = cfg.Engine.FlowHorizon()
	e.maxStaleness = cfg.Engine.MaxStaleness()
	e.flattenOnBreach = cfg.Engine.FlattenOnBreach
	e.resolved = resolvedFrom(cfg)
	e.guards = e.buildGuards()
	e.mu.Unlock()

	e.orders.SetConstraints(constraintSetFrom(cfg))
	e.log.Info("engine tunables applied",
		zap.String("policy", policy.Name()),
		zap.Duration("requote_interval", cfg.Engine.RequoteInterval()))
	return nil
}

// OnTrade 处理一笔场内成交事件。
func (e *QuoteEngine) OnTrade(inst string, side market.Side, price, qty float64) {
	if !e.acceptingEvents() {
		return
	}
	now := e.clock.Now()
	if !e.store.ApplyTrade(inst, side, price, qty, now) {
		return
	}

	e.mu.Lock()
	e.stats.Trades++
	e.stats.LastEventTime = now
	if h := e.history[inst]; h != nil {
		// 簿面存在时动量跟踪中间价，否则退回成交价
		if mid, ok := e.store.Mid(inst); ok {
			h.Push(mid)
		} else {
			h.Push(price)
		}
	}
	e.mu.Unlock()

	e.metrics.RecordEvent("trade")
	if e.analyzer != nil {
		e.analyzer.Poll()
	}
	e.maybeReconcile(inst)
}

// OnBookUpdate 处理一档订单簿增量。
func (e *QuoteEngine) OnBookUpdate(inst string, side market.Side, price, qty float64) {
	if !e.acceptingEvents() {
		return
	}
	if !e.store.ApplyBookDelta(inst, side, price, qty) {
		return
	}

	e.mu.Lock()
	e.stats.Books++
	e.stats.LastEventTime = e.clock.Now()
	e.mu.Unlock()

	e.metrics.RecordEvent("book")
	if mid, ok := e.store.Mid(inst); ok {
		e.metrics.UpdateMidPrice(inst, mid)
	}
	if sp, ok := e.store.Spread(inst); ok {
		e.metrics.UpdateSpread(inst, sp)
	}
	e.maybeReconcile(inst)
}

// OnFill 处理自有订单的成交回报。成交是事实：先入账，再处理越限，
// 最后照常对齐报价。
func (e *QuoteEngine) OnFill(inst string, side market.Side, price, qty, capitalRemaining float64) {
	if !e.acceptingEvents() {
		return
	}
	if _, known := e.resolvedFor(inst); !known {
		e.mu.Lock()
		e.droppedFills++
		e.mu.Unlock()
		return
	}

	e.tracker.RecordFill(inst, side, qty, capitalRemaining)
	e.orders.MarkFilled(inst, side)

	pos := e.tracker.Position(inst)
	portfolio := e.valuer.PortfolioValue()
	e.metrics.RecordFill(inst, string(side), qty)
	e.metrics.UpdatePosition(inst, pos)
	e.metrics.UpdateCapital(capitalRemaining)
	e.metrics.UpdatePortfolio(portfolio)
	if e.drawdown != nil {
		e.drawdown.Observe(portfolio)
	}

	e.log.LogFill(inst, map[string]interface{}{
		"side":      string(side),
		"price":     price,
		"qty":       qty,
		"position":  pos,
		"capital":   capitalRemaining,
		"portfolio": portfolio,
	})

	if e.analyzer != nil {
		e.analyzer.OnFill(inst, side, price)
		e.analyzer.Poll()
		st := e.analyzer.Stats()
		e.metrics.UpdateAdverseSelection(st.AdverseSelectionRate)
		e.metrics.UpdateMarkout("1s", st.AvgMarkout1s)
		e.metrics.UpdateMarkout("5s", st.AvgMarkout5s)
	}

	e.mu.Lock()
	e.stats.Fills++
	e.stats.LastEventTime = e.clock.Now()
	e.mu.Unlock()

	e.checkBreach(inst)
	e.maybeReconcile(inst)
}

// maybeReconcile 在护栏与节流允许时执行一轮报价决策并对齐两个槽位。
func (e *QuoteEngine) maybeReconcile(inst string) {
	e.mu.Lock()
	if e.state != StateRunning {
		paused := e.state == StatePaused
		e.mu.Unlock()
		if paused {
			e.metrics.RecordQuoteSuppressed(inst, reasonPaused)
		}
		return
	}
	guards := e.guards
	policy := e.policy
	checker := e.checker
	horizon := e.flowHorizon
	interval := e.requoteInterval
	rc, known := e.resolved[inst]
	e.mu.Unlock()
	if !known {
		return
	}

	if err := guards.AllowQuote(inst); err != nil {
		e.suppress(inst, err)
		return
	}

	now := e.clock.Now()
	e.mu.Lock()
	if last, ok := e.lastReconcile[inst]; ok && now.Sub(last) < interval {
		e.mu.Unlock()
		e.metrics.RecordQuoteSuppressed(inst, reasonThrottled)
		return
	}
	e.lastReconcile[inst] = now
	e.mu.Unlock()

	started := time.Now()

	snap, ok := e.snapshot(inst, rc, horizon, now)
	if !ok {
		e.countSkip(inst, reasonNoBook)
		return
	}
	e.metrics.UpdateSignals(inst, snap.BookImbalance, snap.FlowImbalance, snap.Momentum)

	pair, ok := policy.Quote(snap, checker)
	if !ok {
		e.countSkip(inst, reasonPolicy)
		e.log.Debug("policy stood aside",
			zap.String("instrument", inst),
			zap.Float64("book", snap.BookImbalance),
			zap.Float64("flow", snap.FlowImbalance))
		return
	}

	if pair.Bid != nil {
		e.metrics.RecordQuoteGenerated(inst, string(market.Buy))
	}
	if pair.Ask != nil {
		e.metrics.RecordQuoteGenerated(inst, string(market.Sell))
	}

	e.applyResult(e.orders.Reconcile(inst, market.Buy, desiredOf(pair.Bid)))
	e.applyResult(e.orders.Reconcile(inst, market.Sell, desiredOf(pair.Ask)))

	e.metrics.UpdateReplaceRate(inst, e.orders.ReplaceRate(inst))
	e.metrics.ObserveDecideLatency(time.Since(started))

	e.mu.Lock()
	e.stats.Reconciles++
	e.stats.LastReconcile = now
	e.mu.Unlock()
}

// snapshot 汇集一次决策需要的全部输入。簿面缺任一侧时 ok=false。
func (e *QuoteEngine) snapshot(inst string, rc config.InstrumentConfig, horizon time.Duration, now time.Time) (strategy.Snapshot, bool) {
	bid, ask, ok := e.store.BestBidAsk(inst)
	if !ok {
		return strategy.Snapshot{}, false
	}

	snap := strategy.Snapshot{
		Instrument:    inst,
		BestBid:       bid,
		BestAsk:       ask,
		Mid:           (bid + ask) / 2,
		Spread:        ask - bid,
		BookImbalance: e.store.BookImbalance(inst),
		FlowImbalance: e.store.FlowImbalance(inst, horizon, now),
		Position:      e.tracker.Position(inst),
		OrderSize:     rc.OrderSize,
		PriceDecimals: rc.PriceDecimals,
	}

	e.mu.RLock()
	h := e.history[inst]
	e.mu.RUnlock()
	if h != nil {
		if m, ok := h.Momentum(momentumShortMA, momentumLongMA); ok {
			snap.Momentum = m
		}
	}
	return snap, true
}

// checkBreach 成交后检查净仓是否越限；越限即撤掉越限侧挂单，
// 按配置用市价单削掉超出部分，并发告警。
func (e *QuoteEngine) checkBreach(inst string) {
	e.mu.RLock()
	checker := e.checker
	flatten := e.flattenOnBreach
	e.mu.RUnlock()

	breached, ok := checker.BreachedSide(inst)
	if !ok {
		return
	}
	pos := e.tracker.Position(inst)
	excess := checker.Excess(inst)

	e.metrics.RecordRiskBreach(inst, "position")
	e.log.LogRisk("position_limit", inst, map[string]interface{}{
		"position": pos,
		"side":     string(breached),
		"excess":   excess,
	})

	e.applyResult(e.orders.CancelSide(inst, breached))

	if flatten && excess > 0 {
		res := e.orders.FlattenExcess(inst, breached, excess)
		fields := map[string]interface{}{
			"side": string(res.Side),
			"qty":  excess,
		}
		if res.Failed() {
			fields["error"] = res.Err.Error()
			e.metrics.RecordVenueError(inst, "market")
			e.recordVenueFailure()
		} else {
			e.recordVenueSuccess()
		}
		e.log.LogVenue("flatten", inst, fields)
	}

	if e.alerts != nil {
		_ = e.alerts.SendError("position limit breached", map[string]interface{}{
			"instrument": inst,
			"position":   pos,
			"excess":     excess,
		})
	}
}

// applyResult 统一消化一次槽位对齐的结果：计数、熔断反馈、日志。
func (e *QuoteEngine) applyResult(res order.Result) {
	switch res.Action {
	case order.ActionPlace:
		if !res.Failed() {
			e.metrics.RecordOrderPlaced(res.Instrument, string(res.Side))
		}
	case order.ActionCancel:
		if !res.Failed() {
			e.metrics.RecordOrderCanceled(res.Instrument, string(res.Side))
		}
	case order.ActionReplace:
		if !res.Failed() {
			e.metrics.RecordOrderReplaced(res.Instrument, string(res.Side))
		}
	case order.ActionReject:
		e.metrics.RecordOrderRejected(res.Instrument)
		e.mu.Lock()
		e.stats.Rejects++
		e.mu.Unlock()
		e.log.LogQuote("reject", res.Instrument, map[string]interface{}{
			"side":  string(res.Side),
			"error": res.Err.Error(),
		})
		return
	default:
		return
	}

	if !res.VenueCalled() {
		return
	}

	op := venueOp(res.Action)
	fields := map[string]interface{}{
		"side":    string(res.Side),
		"orderId": res.OrderID,
		"price":   res.Price,
	}
	if res.Failed() {
		fields["error"] = res.Err.Error()
		e.metrics.RecordVenueError(res.Instrument, op)
		e.recordVenueFailure()
	} else {
		e.recordVenueSuccess()
	}
	e.log.LogVenue(op, res.Instrument, fields)
}

func (e *QuoteEngine) recordVenueFailure() {
	if e.circuit != nil {
		e.circuit.RecordFailure()
	}
	e.mu.Lock()
	e.stats.VenueErrors++
	e.mu.Unlock()
}

func (e *QuoteEngine) recordVenueSuccess() {
	if e.circuit != nil {
		e.circuit.RecordSuccess()
	}
}

// suppress 按护栏错误归类抑制原因并计数。
func (e *QuoteEngine) suppress(inst string, err error) {
	reason := reasonRisk
	switch {
	case errors.Is(err, risk.ErrStaleMarket):
		reason = reasonStale
	case errors.Is(err, risk.ErrCircuitOpen):
		reason = reasonCircuit
	case errors.Is(err, risk.ErrDrawdownLimit):
		reason = reasonDrawdown
	}
	e.countSkip(inst, reason)
	e.log.Debug("quote suppressed",
		zap.String("instrument", inst),
		zap.String("reason", reason),
		zap.Error(err))
}

func (e *QuoteEngine) countSkip(inst, reason string) {
	e.metrics.RecordQuoteSuppressed(inst, reason)
	e.mu.Lock()
	e.stats.Skips++
	e.mu.Unlock()
}

func (e *QuoteEngine) acceptingEvents() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == StateRunning || e.state == StatePaused
}

func (e *QuoteEngine) resolvedFor(inst string) (config.InstrumentConfig, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rc, ok := e.resolved[inst]
	return rc, ok
}

// buildGuards 组合报价前护栏：行情陈旧度、熔断、回撤。
func (e *QuoteEngine) buildGuards() risk.MultiGuard {
	g := risk.MultiGuard{}
	if e.maxStaleness > 0 {
		g.Guards = append(g.Guards, risk.StalenessGuard{Source: e.store, Max: e.maxStaleness})
	}
	if e.circuit != nil {
		g.Guards = append(g.Guards, e.circuit)
	}
	if e.drawdown != nil {
		g.Guards = append(g.Guards, e.drawdown)
	}
	return g
}

// wireCallbacks 把熔断与回撤的状态变化接到告警与指标。
func (e *QuoteEngine) wireCallbacks() {
	if e.circuit != nil {
		e.circuit.SetOnChange(func(open bool) {
			e.metrics.UpdateCircuitState(open)
			if e.alerts == nil {
				return
			}
			if open {
				_ = e.alerts.SendWarning("venue circuit opened", nil)
			} else {
				_ = e.alerts.SendInfo("venue circuit closed", nil)
			}
		})
	}
	if e.drawdown != nil {
		e.drawdown.SetOnChange(func(suppressed bool, drawdown float64) {
			fields := map[string]interface{}{"drawdown": drawdown}
			if e.alerts == nil {
				return
			}
			if suppressed {
				_ = e.alerts.SendError("drawdown limit reached, quoting suppressed", fields)
			} else {
				_ = e.alerts.SendInfo("drawdown recovered, quoting resumed", fields)
			}
		})
	}
}

func desiredOf(in *strategy.Intent) *order.Desired {
	if in == nil {
		return nil
	}
	return &order.Desired{Price: in.Price, Qty: in.Qty, Tick: in.Tick}
}

func venueOp(a order.Action) string {
	switch a {
	case order.ActionPlace:
		return "place"
	case order.ActionCancel:
		return "cancel"
	case order.ActionReplace:
		return "replace"
	default:
		return "none"
	}
}

// limitsFrom 把全局与按品种的仓位上限折算成风控配置。
func limitsFrom(cfg config.AppConfig) risk.Limits {
	l := risk.Limits{
		DefaultMax:    cfg.Engine.MaxPosition,
		PerInstrument: make(map[string]float64),
	}
	for inst := range cfg.Instruments {
		rc := cfg.Resolved(inst)
		if rc.MaxPosition != cfg.Engine.MaxPosition {
			l.PerInstrument[inst] = rc.MaxPosition
		}
	}
	return l
}

// constraintSetFrom 把精度与名义限制折算成订单约束。
func constraintSetFrom(cfg config.AppConfig) order.ConstraintSet {
	set := order.ConstraintSet{
		Default: order.Constraints{
			PriceDecimals: cfg.Engine.PriceDecimals,
			MinTick:       cfg.Engine.MinTick,
		},
		PerInstrument: make(map[string]order.Constraints),
	}
	for inst := range cfg.Instruments {
		rc := cfg.Resolved(inst)
		set.PerInstrument[inst] = order.Constraints{
			PriceDecimals: rc.PriceDecimals,
			MinTick:       rc.MinTick,
			MinQty:        rc.MinQty,
			MinNotional:   rc.MinNotional,
		}
	}
	return set
}

// resolvedFrom 预先合并好每个品种的生效参数，事件路径上零分配。
func resolvedFrom(cfg config.AppConfig) map[string]config.InstrumentConfig {
	out := make(map[string]config.InstrumentConfig, len(cfg.Instruments))
	for inst := range cfg.Instruments {
		out[inst] = cfg.Resolved(inst)
	}
	return out
}

// validateComponents 验证组件
func validateComponents(comp Components) error {
	if comp.Store == nil {
		return errors.New("market store is required")
	}
	if comp.Tracker == nil {
		return errors.New("inventory tracker is required")
	}
	if comp.Valuer == nil {
		return errors.New("valuer is required")
	}
	if comp.Orders == nil {
		return errors.New("order manager is required")
	}
	if comp.Metrics == nil {
		return errors.New("metrics is required")
	}
	if comp.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}
