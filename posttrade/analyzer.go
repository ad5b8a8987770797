// Package posttrade measures short-horizon fill quality (markout) to detect
// adverse selection: fills that the market immediately moves against.
package posttrade

import (
	"sync"
	"time"

	"quote-engine-go/market"
	"quote-engine-go/risk"
)

// 采样周期。成交后在这两个时点取中间价计算markout。
const (
	Horizon1s = 1 * time.Second
	Horizon5s = 5 * time.Second
)

// 已完成记录的保留上限，超出时丢弃最老的一半。
const maxCompleted = 10000

// MarkSource 提供采样用的当前中间价。*market.Store 直接满足该接口。
type MarkSource interface {
	Mid(instrument string) (float64, bool)
}

// FillRecord 单笔成交的markout跟踪记录。
type FillRecord struct {
	Instrument string
	Side       market.Side
	FillPrice  float64
	FillTime   time.Time

	Mid1s float64
	Mid5s float64
	Has1s bool
	Has5s bool
}

// Markout1s 返回1s markout（正值代表成交后价格向有利方向移动）。
func (r *FillRecord) Markout1s() (float64, bool) {
	if !r.Has1s {
		return 0, false
	}
	return markout(r.Side, r.FillPrice, r.Mid1s), true
}

// Markout5s 返回5s markout。
func (r *FillRecord) Markout5s() (float64, bool) {
	if !r.Has5s {
		return 0, false
	}
	return markout(r.Side, r.FillPrice, r.Mid5s), true
}

// Stats 事后分析统计结果。
type Stats struct {
	TotalFills           int     // 记录的成交总数
	AnalyzedFills        int     // 已有1s采样的成交数
	AdverseSelectionRate float64 // 1s markout为负的占比
	AvgMarkout1s         float64
	AvgMarkout5s         float64
}

// Analyzer 轮询式markout分析器。
// 引擎每笔成交调用 OnFill，之后周期性调用 Poll 采样；采样取首次轮询越过
// 周期时点的中间价，轮询间隔决定时间精度。
type Analyzer struct {
	mu      sync.Mutex
	source  MarkSource
	clock   risk.Clock
	pending []*FillRecord
	done    []*FillRecord
	total   int
}

// NewAnalyzer 创建分析器。clock为nil时使用系统时钟。
func NewAnalyzer(source MarkSource, clock risk.Clock) *Analyzer {
	if clock == nil {
		clock = risk.System
	}
	return &Analyzer{
		source: source,
		clock:  clock,
	}
}

// OnFill 记录一笔成交，等待后续采样。
func (a *Analyzer) OnFill(instrument string, side market.Side, price float64) {
	if price <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.pending = append(a.pending, &FillRecord{
		Instrument: instrument,
		Side:       side,
		FillPrice:  price,
		FillTime:   a.clock.Now(),
	})
}

// Poll 对到期的记录采样中间价，完成5s采样的记录移入done列表。
func (a *Analyzer) Poll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	remaining := a.pending[:0]
	for _, rec := range a.pending {
		age := now.Sub(rec.FillTime)

		if !rec.Has1s && age >= Horizon1s {
			if mid, ok := a.source.Mid(rec.Instrument); ok {
				rec.Mid1s = mid
				rec.Has1s = true
			}
		}

		if age >= Horizon5s {
			// 无论5s采样是否取到中间价，记录都视为完成
			if mid, ok := a.source.Mid(rec.Instrument); ok {
				rec.Mid5s = mid
				rec.Has5s = true
			}
			a.completeLocked(rec)
			continue
		}

		remaining = append(remaining, rec)
	}
	a.pending = remaining
}

// Pending 返回等待采样的记录数。
func (a *Analyzer) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Stats 汇总所有已采样记录的markout统计。
func (a *Analyzer) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := Stats{TotalFills: a.total}

	var adverseCount, count1s, count5s int
	var sum1s, sum5s float64

	scan := func(records []*FillRecord) {
		for _, rec := range records {
			if m, ok := rec.Markout1s(); ok {
				count1s++
				sum1s += m
				if m < 0 {
					adverseCount++
				}
			}
			if m, ok := rec.Markout5s(); ok {
				count5s++
				sum5s += m
			}
		}
	}
	scan(a.done)
	scan(a.pending)

	stats.AnalyzedFills = count1s
	if count1s > 0 {
		stats.AdverseSelectionRate = float64(adverseCount) / float64(count1s)
		stats.AvgMarkout1s = sum1s / float64(count1s)
	}
	if count5s > 0 {
		stats.AvgMarkout5s = sum5s / float64(count5s)
	}
	return stats
}

func (a *Analyzer) completeLocked(rec *FillRecord) {
	if len(a.done) >= maxCompleted {
		keep := maxCompleted / 2
		a.done = append(a.done[:0], a.done[len(a.done)-keep:]...)
	}
	a.done = append(a.done, rec)
}

// markout 以成交价为基准的相对价格变化，正值=有利。
// 买单希望价格上行，卖单希望价格下行。
func markout(side market.Side, fill, mid float64) float64 {
	if side == market.Buy {
		return (mid - fill) / fill
	}
	return (fill - mid) / fill
}
