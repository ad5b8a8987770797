package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"quote-engine-go/metrics"
)

// 核心序列清单。Grafana 看板和告警规则都建在这些名字上，
// 改名需要同步 dashboards/。
var requiredSeries = []string{
	"qe_engine_quotes_generated_total",
	"qe_engine_quotes_suppressed_total",
	"qe_engine_decide_latency_seconds",
	"qe_engine_orders_placed_total",
	"qe_engine_orders_canceled_total",
	"qe_engine_orders_replaced_total",
	"qe_engine_orders_rejected_total",
	"qe_engine_venue_errors_total",
	"qe_engine_fills_total",
	"qe_engine_traded_volume_total",
	"qe_engine_position",
	"qe_engine_capital",
	"qe_engine_portfolio_value",
	"qe_engine_mid_price",
	"qe_engine_spread",
	"qe_engine_book_imbalance",
	"qe_engine_flow_imbalance",
	"qe_engine_momentum",
	"qe_engine_risk_breaches_total",
	"qe_engine_circuit_state",
	"qe_engine_engine_state",
	"qe_engine_feed_reconnects_total",
	"qe_engine_events_total",
	"qe_engine_adverse_selection_rate",
	"qe_engine_avg_markout",
}

// 巡检工具：确认 /metrics 上报价引擎的核心序列齐全。
// 两种用法：-target 指向运行中的实例做远程巡检；留空则在本地起
// 一个临时指标服务并灌入探针样本自测，验证指标管线本身没坏。
func main() {
	target := flag.String("target", "", "运行实例的指标地址（例如 http://127.0.0.1:9100），留空自测")
	addr := flag.String("metricsAddr", "127.0.0.1:9109", "自测模式监听地址")
	timeout := flag.Duration("timeout", 3*time.Second, "HTTP 超时")
	flag.Parse()

	base := *target
	if base == "" {
		m := metrics.New(metrics.DefaultConfig())
		seedSeries(m)
		srv := m.StartServer(*addr)
		defer srv.Close()
		base = "http://" + *addr
	}
	base = strings.TrimRight(base, "/")

	body, err := fetchMetrics(base+"/metrics", *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "拉取指标失败: %v\n", err)
		os.Exit(1)
	}

	var missing []string
	for _, name := range requiredSeries {
		if !strings.Contains(body, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		fmt.Printf("指标巡检通过: %s (%d 项核心序列齐全)\n", base, len(requiredSeries))
		return
	}
	sort.Strings(missing)
	fmt.Fprintf(os.Stderr, "巡检失败: %s 缺失 %d 项核心序列:\n", base, len(missing))
	for _, name := range missing {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}
	os.Exit(1)
}

// seedSeries 给每个带标签的序列族制造一个探针样本。带标签的
// collector 在第一个样本出现前不会出现在 /metrics 输出里。
func seedSeries(m *metrics.Metrics) {
	m.RecordQuoteGenerated("PROBE", "BUY")
	m.RecordQuoteSuppressed("PROBE", "probe")
	m.ObserveDecideLatency(time.Millisecond)
	m.RecordOrderPlaced("PROBE", "BUY")
	m.RecordOrderCanceled("PROBE", "BUY")
	m.RecordOrderReplaced("PROBE", "BUY")
	m.RecordOrderRejected("PROBE")
	m.RecordVenueError("PROBE", "place")
	m.RecordFill("PROBE", "BUY", 1)
	m.RecordRiskBreach("PROBE", "position")
	m.RecordEvent("probe")
	m.UpdateReplaceRate("PROBE", 0)
	m.UpdatePosition("PROBE", 0)
	m.UpdateMidPrice("PROBE", 100)
	m.UpdateSpread("PROBE", 0.1)
	m.UpdateSignals("PROBE", 1, 1, 0)
	m.UpdateMarkout("1s", 0)
	m.UpdateMarkout("5s", 0)
}

// fetchMetrics 轮询抓取，容忍自测模式下监听器尚未就绪的窗口。
func fetchMetrics(url string, timeout time.Duration) (string, error) {
	client := &http.Client{Timeout: timeout}
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		resp, err := client.Get(url)
		if err == nil {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr == nil && resp.StatusCode == http.StatusOK {
				return string(data), nil
			}
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			if readErr != nil {
				lastErr = readErr
			}
		} else {
			lastErr = err
		}
		if time.Now().After(deadline) {
			return "", lastErr
		}
		time.Sleep(50 * time.Millisecond)
	}
}
