package inventory

import (
	"sync"

	"quote-engine-go/market"
)

// Tracker 维护各合约净仓位与进程级剩余资金。
// 成交是事实而非请求，记录永不拒绝。
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]float64
	capital   float64
}

func NewTracker(initialCapital float64) *Tracker {
	return &Tracker{
		positions: make(map[string]float64),
		capital:   initialCapital,
	}
}

// RecordFill 按成交方向调整仓位，并用回报中的剩余资金整体覆盖本地值。
func (t *Tracker) RecordFill(inst string, side market.Side, qty, capitalRemaining float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if side == market.Buy {
		t.positions[inst] += qty
	} else {
		t.positions[inst] -= qty
	}
	t.capital = capitalRemaining
}

// Position 返回合约净仓位，买正卖负。
func (t *Tracker) Position(inst string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.positions[inst]
}

// Capital 返回最近一次成交回报的剩余资金。
func (t *Tracker) Capital() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.capital
}

// Positions 返回当前全部非零仓位的副本。
func (t *Tracker) Positions() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.positions))
	for inst, pos := range t.positions {
		if pos != 0 {
			out[inst] = pos
		}
	}
	return out
}
