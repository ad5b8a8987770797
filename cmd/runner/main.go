package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quote-engine-go/config"
	"quote-engine-go/gateway"
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

// markout 采样轮询间隔：低于 1s 视界一半，保证采样时点误差可控。
const markoutPollInterval = 500 * time.Millisecond

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	feedURL := flag.String("feedUrl", "", "行情源 WebSocket 地址（覆盖配置与环境变量）")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus 指标监听地址（覆盖配置）")
	watchConfig := flag.Bool("watchConfig", true, "监听配置文件变更并热更新引擎参数")
	statusSec := flag.Int("statusSec", 30, "状态日志输出间隔（秒），0 关闭")
	flag.Parse()

	// .env 在生产环境通常不存在（由部署方直接注入环境变量），失败忽略。
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *feedURL != "" {
		cfg.Feed.URL = *feedURL
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if cfg.Feed.URL == "" {
		log.Fatalf("feed.url 未配置：runner 需要外部行情源，离线演练请用 cmd/sim")
	}

	zlog, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Outputs:    cfg.Logging.Outputs,
		OutputFile: cfg.Logging.OutputFile,
		ErrorFile:  cfg.Logging.ErrorFile,
		Format:     cfg.Logging.Format,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Close()

	m := metrics.New(metrics.DefaultConfig())
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = m.StartServer(cfg.Metrics.Addr)
		zlog.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
	}

	alerts := buildAlerts(cfg.Alerts, zlog)

	pub := market.NewPublisher()
	// Publisher 的订阅不加锁，必须在行情 goroutine 启动前完成。
	tops := pub.SubscribeTop()
	trades := pub.SubscribeTrades()

	store := market.NewStore(cfg.InstrumentNames(), cfg.Engine.TradeWindow(), pub)
	tracker := inventory.NewTracker(cfg.Engine.InitialCapital)
	valuer := inventory.NewValuer(tracker, store)
	analyzer := posttrade.NewAnalyzer(store, risk.System)

	var circuit *risk.CircuitBreaker
	if cfg.Engine.CircuitThreshold > 0 {
		circuit = risk.NewCircuitBreaker(cfg.Engine.CircuitThreshold, cfg.Engine.CircuitCooldown(), risk.System)
	}
	var drawdown *risk.DrawdownGuard
	if cfg.Engine.DrawdownLimit > 0 {
		drawdown = risk.NewDrawdownGuard(cfg.Engine.DrawdownLimit)
	}

	orders := order.NewManager(buildVenue(cfg.Venue, zlog))

	eng, err := engine.New(cfg, engine.Components{
		Store:    store,
		Tracker:  tracker,
		Valuer:   valuer,
		Orders:   orders,
		Circuit:  circuit,
		Drawdown: drawdown,
		Analyzer: analyzer,
		Metrics:  m,
		Alerts:   alerts,
		Logger:   zlog,
		Clock:    risk.System,
	})
	if err != nil {
		log.Fatalf("初始化引擎失败: %v", err)
	}
	if err := eng.Start(); err != nil {
		log.Fatalf("启动引擎失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watcher *config.Watcher
	if *watchConfig {
		watcher = startConfigWatcher(ctx, *cfgPath, eng, alerts, zlog)
	}

	feed := gateway.NewFeed(cfg.Feed.URL, eng, zlog, m,
		time.Duration(cfg.Feed.ReconnectMaxSec)*time.Second)
	feedErr := make(chan error, 1)
	go func() { feedErr <- feed.Run(ctx) }()

	go tapeLoop(ctx, tops, trades, zlog)
	go markoutLoop(ctx, analyzer, m)
	if *statusSec > 0 {
		go statusLoop(ctx, time.Duration(*statusSec)*time.Second, eng, tracker, orders, analyzer, zlog)
	}

	notifySystemd(ctx, zlog)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zlog.Info("收到退出信号", zap.String("signal", sig.String()))
	case err := <-feedErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("行情源退出", zap.Error(err))
		}
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()
	if watcher != nil {
		_ = watcher.Stop()
	}
	if err := eng.Stop(); err != nil {
		zlog.Warn("停机撤单未完全成功", zap.Error(err))
	}
	if metricsSrv != nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = metricsSrv.Shutdown(shutCtx)
		shutCancel()
	}
	st := eng.Statistics()
	zlog.Info("runner 退出",
		zap.Int64("trades", st.Trades),
		zap.Int64("books", st.Books),
		zap.Int64("fills", st.Fills),
		zap.Int64("reconciles", st.Reconciles),
		zap.Uint64("dropped", st.Dropped),
		zap.Uint64("malformedFrames", feed.Malformed()),
	)
}

// buildAlerts 按配置选择告警通道；未启用时返回空通道集合的管理器，
// 引擎侧无需判空。
func buildAlerts(cfg config.AlertConfig, zlog *logger.Logger) *alert.Manager {
	if !cfg.Enabled {
		return alert.NewManager(nil, 0)
	}
	var ch alert.Channel
	switch cfg.Channel {
	case "console":
		ch = alert.NewConsoleChannel("console")
	default:
		ch = alert.NewZapChannel("log", zlog)
	}
	return alert.NewManager([]alert.Channel{ch}, time.Duration(cfg.ThrottleSec)*time.Second)
}

// buildVenue 组装场内通道。当前构建只带 dry-run 实现，真实通道由
// 部署方替换；限流包装与实盘一致，便于演练时观察节流行为。
func buildVenue(cfg config.VenueConfig, zlog *logger.Logger) order.Venue {
	var v order.Venue = gateway.NewDryRunVenue(zlog)
	if !cfg.DryRun {
		zlog.Warn("venue.dryRun=false 但本构建未包含真实场内通道，回退 dry-run")
	}
	if cfg.RatePerSec > 0 {
		v = gateway.NewRateLimitedVenue(v, gateway.NewTokenBucketLimiter(cfg.RatePerSec, cfg.Burst))
	}
	return v
}

// startConfigWatcher 启动配置热更新：验证通过的新配置只替换引擎可调
// 参数，品种集合与基础设施（日志、指标、行情源）保持进程启动时的状态。
func startConfigWatcher(ctx context.Context, path string, eng *engine.QuoteEngine, alerts *alert.Manager, zlog *logger.Logger) *config.Watcher {
	w, err := config.NewWatcher(path, 0)
	if err != nil {
		zlog.Warn("配置监听不可用", zap.Error(err))
		return nil
	}
	w.OnApply(func(next config.AppConfig) {
		if err := eng.ApplyTunables(next); err != nil {
			zlog.Warn("配置热更新被引擎拒绝", zap.Error(err))
			_ = alerts.SendWarning("config reload rejected", map[string]interface{}{"error": err.Error()})
			return
		}
		zlog.Info("配置热更新生效", zap.String("policy", next.Engine.Policy))
		_ = alerts.SendInfo("config reload applied", map[string]interface{}{"policy": next.Engine.Policy})
	})
	w.OnReject(func(err error) {
		zlog.Warn("配置热更新校验失败", zap.Error(err))
		_ = alerts.SendWarning("config reload rejected", map[string]interface{}{"error": err.Error()})
	})
	if err := w.Start(ctx); err != nil {
		zlog.Warn("配置监听启动失败", zap.Error(err))
		_ = w.Stop()
		return nil
	}
	return w
}

// notifySystemd 发送就绪通知；在 systemd watchdog 启用时维持心跳。
// 非 systemd 环境下两个调用都是 no-op。
func notifySystemd(ctx context.Context, zlog *logger.Logger) {
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		zlog.Warn("systemd 就绪通知失败", zap.Error(err))
	} else if sent {
		zlog.Info("systemd 就绪通知已发送")
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}()
}

// tapeLoop 把行情广播转成 debug 级日志，排查信号问题时打开。
func tapeLoop(ctx context.Context, tops <-chan market.BookTop, trades <-chan market.TradeEvent, zlog *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tops:
			zlog.Debug("book top",
				zap.String("instrument", t.Instrument),
				zap.Float64("bid", t.Bid),
				zap.Float64("ask", t.Ask),
			)
		case tr := <-trades:
			zlog.Debug("trade",
				zap.String("instrument", tr.Instrument),
				zap.String("side", string(tr.Trade.Side)),
				zap.Float64("price", tr.Trade.Price),
				zap.Float64("qty", tr.Trade.Qty),
			)
		}
	}
}

// markoutLoop 周期性推进 markout 采样。成交后 1s/5s 的中间价采样由
// 轮询驱动，事件静默期也要推进，否则挂起的记录永远不会完成。
func markoutLoop(ctx context.Context, analyzer *posttrade.Analyzer, m *metrics.Metrics) {
	ticker := time.NewTicker(markoutPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			analyzer.Poll()
			st := analyzer.Stats()
			if st.AnalyzedFills == 0 {
				continue
			}
			m.UpdateAdverseSelection(st.AdverseSelectionRate)
			m.UpdateMarkout("1s", st.AvgMarkout1s)
			m.UpdateMarkout("5s", st.AvgMarkout5s)
		}
	}
}

// statusLoop 周期性输出引擎运行快照，便于不接 Prometheus 时肉眼巡检。
func statusLoop(ctx context.Context, interval time.Duration, eng *engine.QuoteEngine, tracker *inventory.Tracker, orders *order.Manager, analyzer *posttrade.Analyzer, zlog *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := eng.Statistics()
			pt := analyzer.Stats()
			zlog.Info("engine status",
				zap.String("state", eng.State().String()),
				zap.Int64("trades", st.Trades),
				zap.Int64("books", st.Books),
				zap.Int64("fills", st.Fills),
				zap.Uint64("dropped", st.Dropped),
				zap.Int64("reconciles", st.Reconciles),
				zap.Int64("skips", st.Skips),
				zap.Int64("rejects", st.Rejects),
				zap.Int64("venueErrors", st.VenueErrors),
				zap.Int("resting", orders.RestingCount()),
				zap.Any("positions", tracker.Positions()),
				zap.Float64("capital", tracker.Capital()),
				zap.Int("pendingMarkouts", analyzer.Pending()),
				zap.Float64("adverseRate", pt.AdverseSelectionRate),
			)
		}
	}
}
