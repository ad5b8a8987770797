package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// instStats 聚合单个品种的成交腿。
type instStats struct {
	fills        int
	buyQty       float64
	sellQty      float64
	buyNotional  float64
	sellNotional float64
	lastPosition float64
}

func (s *instStats) add(side string, price, qty, position float64) {
	if price <= 0 || qty <= 0 {
		return
	}
	s.fills++
	switch strings.ToUpper(side) {
	case "BUY":
		s.buyQty += qty
		s.buyNotional += price * qty
	case "SELL":
		s.sellQty += qty
		s.sellNotional += price * qty
	}
	s.lastPosition = position
}

// matchedPnL 估计已平部分的实现盈亏：按量加权均价对
// min(买量, 卖量) 计价差。未平腿不计入，避免臆造标记价。
func (s *instStats) matchedPnL() (matched, pnl float64) {
	matched = s.buyQty
	if s.sellQty < matched {
		matched = s.sellQty
	}
	if matched <= 0 {
		return 0, 0
	}
	avgBuy := s.buyNotional / s.buyQty
	avgSell := s.sellNotional / s.sellQty
	return matched, (avgSell - avgBuy) * matched
}

// 离线盈亏报表：扫描 runner 的 JSON 日志，聚合 fill_event 记录。
// 慢路径工具，只在复盘时手工运行。
func main() {
	logPath := flag.String("log", "logs/runner.log", "runner 日志路径（JSON 行）")
	instrument := flag.String("instrument", "", "仅统计指定品种（默认全量）")
	sinceStr := flag.String("since", "", "仅统计此时间之后的记录（RFC3339，例如 2026-08-25T00:00:00Z）")
	flag.Parse()

	var since time.Time
	if *sinceStr != "" {
		var err error
		since, err = time.Parse(time.RFC3339Nano, *sinceStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "解析 since 参数失败: %v\n", err)
			os.Exit(1)
		}
	}

	f, err := os.Open(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法读取日志: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	perInst := make(map[string]*instStats)
	var lastCapital, lastPortfolio float64
	var sawCapital bool

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "{")
		if idx == -1 {
			continue
		}
		var evt map[string]interface{}
		if err := json.Unmarshal([]byte(line[idx:]), &evt); err != nil {
			continue
		}
		if msg, _ := evt["msg"].(string); msg != "fill_event" {
			continue
		}
		inst, _ := evt["instrument"].(string)
		if inst == "" {
			continue
		}
		if *instrument != "" && inst != *instrument {
			continue
		}
		if !since.IsZero() {
			if tsStr, ok := evt["ts"].(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil && ts.Before(since) {
					continue
				}
			}
		}

		side, _ := evt["side"].(string)
		st, ok := perInst[inst]
		if !ok {
			st = &instStats{}
			perInst[inst] = st
		}
		st.add(side, toFloat(evt["price"]), toFloat(evt["qty"]), toFloat(evt["position"]))
		if v, ok := evt["capital"]; ok {
			lastCapital = toFloat(v)
			sawCapital = true
		}
		if v, ok := evt["portfolio"]; ok {
			lastPortfolio = toFloat(v)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "读取日志出错: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("统计文件: %s\n", *logPath)
	if *instrument != "" {
		fmt.Printf("品种: %s\n", *instrument)
	}
	if !since.IsZero() {
		fmt.Printf("起始时间: %s\n", since.Format(time.RFC3339))
	}
	if len(perInst) == 0 {
		fmt.Println("没有匹配的成交记录")
		return
	}

	names := make([]string, 0, len(perInst))
	for inst := range perInst {
		names = append(names, inst)
	}
	sort.Strings(names)

	var totalPnL float64
	for _, inst := range names {
		st := perInst[inst]
		matched, pnl := st.matchedPnL()
		totalPnL += pnl
		fmt.Printf("\n[%s]\n", inst)
		fmt.Printf("  成交笔数: %d\n", st.fills)
		fmt.Printf("  买入: qty=%.4f notional=%.4f\n", st.buyQty, st.buyNotional)
		fmt.Printf("  卖出: qty=%.4f notional=%.4f\n", st.sellQty, st.sellNotional)
		if matched > 0 {
			fmt.Printf("  已平量: %.4f  实现盈亏(估): %.6f\n", matched, pnl)
		}
		fmt.Printf("  期末仓位: %.4f\n", st.lastPosition)
	}
	fmt.Printf("\n合计实现盈亏(估): %.6f\n", totalPnL)
	if sawCapital {
		fmt.Printf("期末资金: %.4f\n", lastCapital)
		fmt.Printf("期末组合市值: %.4f\n", lastPortfolio)
	}
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		var f float64
		_, _ = fmt.Sscanf(val, "%g", &f)
		return f
	default:
		return 0
	}
}
