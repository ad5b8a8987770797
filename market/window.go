package market

import "time"

// Window 保存按到达顺序排列的成交序列，保留期之外的记录在读写时惰性清除。
// 非并发安全，由 Store 持锁访问。
type Window struct {
	retention time.Duration
	trades    []Trade
}

func NewWindow(retention time.Duration) *Window {
	if retention <= 0 {
		retention = 60 * time.Second
	}
	return &Window{retention: retention}
}

// Append 记录一笔成交并清除过期记录。
func (w *Window) Append(t Trade) {
	w.trades = append(w.trades, t)
	w.purge(t.Ts)
}

// Volumes 统计 now-horizon 之后（严格大于）的买卖量。
func (w *Window) Volumes(horizon time.Duration, now time.Time) (buyVol, sellVol float64) {
	w.purge(now)
	cutoff := now.Add(-horizon)
	for _, t := range w.trades {
		if !t.Ts.After(cutoff) {
			continue
		}
		if t.Side == Buy {
			buyVol += t.Qty
		} else {
			sellVol += t.Qty
		}
	}
	return buyVol, sellVol
}

// Len 返回当前保留的成交数。
func (w *Window) Len() int {
	return len(w.trades)
}

// purge 删除 ts < now-retention 的记录；序列按时间非递减，找到首个保留点即可截断。
func (w *Window) purge(now time.Time) {
	cutoff := now.Add(-w.retention)
	keep := 0
	for keep < len(w.trades) && w.trades[keep].Ts.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		w.trades = w.trades[keep:]
	}
}
