package order

import (
	"sync"
	"time"
)

// ReplaceTracker 跟踪撤换历史（滑动窗口），暴露每分钟 replace
// 次数，用于观察报价 churn 是否失控。
type ReplaceTracker struct {
	mu     sync.Mutex
	window time.Duration
	events map[string][]time.Time
	total  uint64

	now func() time.Time // 测试注入
}

// NewReplaceTracker 创建撤换跟踪器，window<=0 时默认 1 分钟。
func NewReplaceTracker(window time.Duration) *ReplaceTracker {
	if window <= 0 {
		window = time.Minute
	}
	return &ReplaceTracker{
		window: window,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Record 记录一次撤换。
func (t *ReplaceTracker) Record(inst string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.events[inst] = append(t.pruneLocked(t.events[inst], now), now)
	t.total++
}

// RatePerMinute 返回窗口内折算到每分钟的撤换次数。
func (t *ReplaceTracker) RatePerMinute(inst string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	evs := t.pruneLocked(t.events[inst], t.now())
	t.events[inst] = evs
	minutes := t.window.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(len(evs)) / minutes
}

// Total 返回累计撤换次数。
func (t *ReplaceTracker) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// pruneLocked 丢弃窗口外的记录（非线程安全）。
func (t *ReplaceTracker) pruneLocked(evs []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(evs) && !evs[i].After(cutoff) {
		i++
	}
	return evs[i:]
}
