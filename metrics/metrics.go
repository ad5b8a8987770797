// Package metrics provides Prometheus metrics for the quote engine
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics Prometheus监控指标收集器
type Metrics struct {
	registry *prometheus.Registry

	// 报价指标
	quotesGenerated  *prometheus.CounterVec
	quotesSuppressed *prometheus.CounterVec
	decideLatency    prometheus.Histogram

	// 订单指标
	ordersPlaced   *prometheus.CounterVec
	ordersCanceled *prometheus.CounterVec
	ordersReplaced *prometheus.CounterVec
	ordersRejected *prometheus.CounterVec
	venueErrors    *prometheus.CounterVec
	replaceRate    *prometheus.GaugeVec

	// 成交与仓位指标
	fillsTotal   *prometheus.CounterVec
	tradedVolume *prometheus.CounterVec
	position     *prometheus.GaugeVec
	capital      prometheus.Gauge
	portfolio    prometheus.Gauge

	// 市场指标
	midPrice      *prometheus.GaugeVec
	spread        *prometheus.GaugeVec
	bookImbalance *prometheus.GaugeVec
	flowImbalance *prometheus.GaugeVec
	momentum      *prometheus.GaugeVec

	// 风控指标
	riskBreaches *prometheus.CounterVec
	circuitState prometheus.Gauge
	engineState  prometheus.Gauge

	// 行情源指标
	feedReconnects prometheus.Counter
	eventsTotal    *prometheus.CounterVec

	// 事后分析指标
	adverseSelection prometheus.Gauge
	avgMarkout       *prometheus.GaugeVec
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "qe",
		Subsystem: "engine",
	}
}

// New 创建新的Metrics实例，指标注册在独立registry上
func New(cfg Config) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		// 报价指标
		quotesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quotes_generated_total",
				Help:      "策略生成报价意图总数",
			},
			[]string{"instrument", "side"},
		),
		quotesSuppressed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quotes_suppressed_total",
				Help:      "报价被抑制总数",
			},
			[]string{"instrument", "reason"},
		),
		decideLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "decide_latency_seconds",
			Help:      "单次报价决策耗时（秒）",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),

		// 订单指标
		ordersPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "orders_placed_total",
				Help:      "订单下单总数",
			},
			[]string{"instrument", "side"},
		),
		ordersCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "orders_canceled_total",
				Help:      "订单撤单总数",
			},
			[]string{"instrument", "side"},
		),
		ordersReplaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "orders_replaced_total",
				Help:      "订单改价总数",
			},
			[]string{"instrument", "side"},
		),
		ordersRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "orders_rejected_total",
				Help:      "本地约束拒单总数",
			},
			[]string{"instrument"},
		),
		venueErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "venue_errors_total",
				Help:      "通道调用失败总数",
			},
			[]string{"instrument", "op"},
		),
		replaceRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "replace_rate_per_minute",
				Help:      "每分钟改价次数",
			},
			[]string{"instrument"},
		),

		// 成交与仓位指标
		fillsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fills_total",
				Help:      "成交笔数总数",
			},
			[]string{"instrument", "side"},
		),
		tradedVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "traded_volume_total",
				Help:      "累计成交量",
			},
			[]string{"instrument"},
		),
		position: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "position",
				Help:      "当前净仓位",
			},
			[]string{"instrument"},
		),
		capital: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "capital",
			Help:      "当前现金余额",
		}),
		portfolio: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "portfolio_value",
			Help:      "现金加持仓市值",
		}),

		// 市场指标
		midPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "mid_price",
				Help:      "当前中间价",
			},
			[]string{"instrument"},
		),
		spread: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spread",
				Help:      "当前价差",
			},
			[]string{"instrument"},
		),
		bookImbalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "book_imbalance",
				Help:      "盘口买卖量比",
			},
			[]string{"instrument"},
		),
		flowImbalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "flow_imbalance",
				Help:      "成交流买卖量比",
			},
			[]string{"instrument"},
		),
		momentum: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "momentum",
				Help:      "短期动量（收益率）",
			},
			[]string{"instrument"},
		),

		// 风控指标
		riskBreaches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "risk_breaches_total",
				Help:      "风控越限总数",
			},
			[]string{"instrument", "kind"},
		),
		circuitState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "circuit_state",
			Help:      "熔断状态(0=关闭,1=打开)",
		}),
		engineState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "engine_state",
			Help:      "引擎状态(0=空闲,1=运行,2=暂停,3=停止)",
		}),

		// 行情源指标
		feedReconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "feed_reconnects_total",
			Help:      "行情源重连次数",
		}),
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_total",
				Help:      "处理的行情事件总数",
			},
			[]string{"type"},
		),

		// 事后分析指标
		adverseSelection: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "adverse_selection_rate",
			Help:      "成交后短期反向占比",
		}),
		avgMarkout: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "avg_markout",
				Help:      "成交后平均markout（按周期）",
			},
			[]string{"horizon"},
		),
	}

	return m
}

// 报价相关方法
func (m *Metrics) RecordQuoteGenerated(instrument, side string) {
	m.quotesGenerated.WithLabelValues(instrument, side).Inc()
}

func (m *Metrics) RecordQuoteSuppressed(instrument, reason string) {
	m.quotesSuppressed.WithLabelValues(instrument, reason).Inc()
}

func (m *Metrics) ObserveDecideLatency(d time.Duration) {
	m.decideLatency.Observe(d.Seconds())
}

// 订单相关方法
func (m *Metrics) RecordOrderPlaced(instrument, side string) {
	m.ordersPlaced.WithLabelValues(instrument, side).Inc()
}

func (m *Metrics) RecordOrderCanceled(instrument, side string) {
	m.ordersCanceled.WithLabelValues(instrument, side).Inc()
}

func (m *Metrics) RecordOrderReplaced(instrument, side string) {
	m.ordersReplaced.WithLabelValues(instrument, side).Inc()
}

func (m *Metrics) RecordOrderRejected(instrument string) {
	m.ordersRejected.WithLabelValues(instrument).Inc()
}

func (m *Metrics) RecordVenueError(instrument, op string) {
	m.venueErrors.WithLabelValues(instrument, op).Inc()
}

func (m *Metrics) UpdateReplaceRate(instrument string, perMinute float64) {
	m.replaceRate.WithLabelValues(instrument).Set(perMinute)
}

// 成交与仓位相关方法
func (m *Metrics) RecordFill(instrument, side string, volume float64) {
	m.fillsTotal.WithLabelValues(instrument, side).Inc()
	m.tradedVolume.WithLabelValues(instrument).Add(volume)
}

func (m *Metrics) UpdatePosition(instrument string, value float64) {
	m.position.WithLabelValues(instrument).Set(value)
}

func (m *Metrics) UpdateCapital(value float64) {
	m.capital.Set(value)
}

func (m *Metrics) UpdatePortfolio(value float64) {
	m.portfolio.Set(value)
}

// 市场相关方法
func (m *Metrics) UpdateMidPrice(instrument string, value float64) {
	m.midPrice.WithLabelValues(instrument).Set(value)
}

func (m *Metrics) UpdateSpread(instrument string, value float64) {
	m.spread.WithLabelValues(instrument).Set(value)
}

func (m *Metrics) UpdateSignals(instrument string, book, flow, momentum float64) {
	m.bookImbalance.WithLabelValues(instrument).Set(book)
	m.flowImbalance.WithLabelValues(instrument).Set(flow)
	m.momentum.WithLabelValues(instrument).Set(momentum)
}

// 风控相关方法
func (m *Metrics) RecordRiskBreach(instrument, kind string) {
	m.riskBreaches.WithLabelValues(instrument, kind).Inc()
}

func (m *Metrics) UpdateCircuitState(open bool) {
	if open {
		m.circuitState.Set(1)
	} else {
		m.circuitState.Set(0)
	}
}

func (m *Metrics) UpdateEngineState(state int) {
	m.engineState.Set(float64(state))
}

// 行情源相关方法
func (m *Metrics) RecordFeedReconnect() {
	m.feedReconnects.Inc()
}

func (m *Metrics) RecordEvent(eventType string) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

// 事后分析相关方法
func (m *Metrics) UpdateAdverseSelection(rate float64) {
	m.adverseSelection.Set(rate)
}

func (m *Metrics) UpdateMarkout(horizon string, value float64) {
	m.avgMarkout.WithLabelValues(horizon).Set(value)
}

// Handler 返回HTTP handler用于暴露指标
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartServer 启动Prometheus指标服务器，返回server供优雅关闭
func (m *Metrics) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
