package main

import (
	"flag"
	"fmt"
	"log"
	"time"

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
	"quote-engine-go/sim"
)

// 一个极简的本地演练：合成行情驱动完整报价链路（引擎、策略、
// 订单槽、风控、事后分析），不连接任何外部服务。相同种子完全
// 可复现；结果仅用于观察策略行为，不代表真实成交。
func main() {
	steps := flag.Int("steps", 2000, "模拟步数")
	stepMs := flag.Int("stepMs", 5, "每步之间的等待毫秒数（重报价节流按真实时间计）")
	seed := flag.Int64("seed", 1, "随机种子")
	policy := flag.String("policy", "", "策略名（fee_aware|signal_gated|momentum），留空用默认")
	instrument := flag.String("instrument", "ETH", "模拟品种")
	startMid := flag.Float64("startMid", 100, "初始中间价")
	tradeProb := flag.Float64("tradeProb", 0.4, "每步出现主动成交的概率")
	capital := flag.Float64("capital", 100000, "初始资金")
	logLevel := flag.String("logLevel", "warn", "日志级别（debug 可看逐单决策）")
	flag.Parse()

	cfg := config.Default()
	cfg.Instruments = map[string]config.InstrumentConfig{*instrument: {}}
	cfg.Engine.InitialCapital = *capital
	// 演练跑在压缩的时间轴上，节流压到下限才能看到足够多的对齐。
	cfg.Engine.RequoteIntervalMs = 10
	if *policy != "" {
		cfg.Engine.Policy = *policy
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: *logLevel, Outputs: []string{"stdout"}, Format: "console"})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Close()

	store := market.NewStore([]string{*instrument}, cfg.Engine.TradeWindow(), nil)
	tracker := inventory.NewTracker(cfg.Engine.InitialCapital)
	valuer := inventory.NewValuer(tracker, store)
	analyzer := posttrade.NewAnalyzer(store, risk.System)
	orders := order.NewManager(gateway.NewDryRunVenue(zlog))

	eng, err := engine.New(cfg, engine.Components{
		Store:    store,
		Tracker:  tracker,
		Valuer:   valuer,
		Orders:   orders,
		Analyzer: analyzer,
		Metrics:  metrics.New(metrics.DefaultConfig()),
		Alerts:   alert.NewManager([]alert.Channel{alert.NewConsoleChannel("console")}, 0),
		Logger:   zlog,
		Clock:    risk.System,
	})
	if err != nil {
		log.Fatalf("初始化引擎失败: %v", err)
	}
	if err := eng.Start(); err != nil {
		log.Fatalf("启动引擎失败: %v", err)
	}

	genCfg := sim.DefaultConfig()
	genCfg.Instruments = []string{*instrument}
	genCfg.Seed = *seed
	genCfg.StartMid = *startMid
	genCfg.TradeProb = *tradeProb
	runner := sim.NewRunner(sim.NewGenerator(genCfg), orders, eng, cfg.Engine.InitialCapital)

	began := time.Now()
	for i := 0; i < *steps; i++ {
		runner.Step()
		if *stepMs > 0 {
			time.Sleep(time.Duration(*stepMs) * time.Millisecond)
		}
	}
	elapsed := time.Since(began)

	if err := eng.Stop(); err != nil {
		log.Fatalf("停机失败: %v", err)
	}

	st := eng.Statistics()
	pt := analyzer.Stats()
	fmt.Printf("模拟完成: %d 步, 耗时 %s\n", *steps, elapsed.Round(time.Millisecond))
	fmt.Printf("行情事件: trades=%d books=%d\n", st.Trades, st.Books)
	fmt.Printf("对齐次数: %d (跳过 %d, 拒单 %d)\n", st.Reconciles, st.Skips, st.Rejects)
	fmt.Printf("被动成交: %d 笔\n", runner.Fills())
	fmt.Printf("期末仓位: %s=%.4f\n", *instrument, tracker.Position(*instrument))
	fmt.Printf("期末资金: %.4f (起始 %.4f)\n", tracker.Capital(), cfg.Engine.InitialCapital)
	fmt.Printf("组合市值: %.4f\n", valuer.PortfolioValue())
	if pt.AnalyzedFills > 0 {
		fmt.Printf("markout: 1s=%.6f 5s=%.6f 逆向选择率=%.2f%% (样本 %d)\n",
			pt.AvgMarkout1s, pt.AvgMarkout5s, pt.AdverseSelectionRate*100, pt.AnalyzedFills)
	}
}
