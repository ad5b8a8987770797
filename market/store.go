package market

import (
	"sync"
	"time"
)

// Store 按合约维护订单簿与成交窗口。合约集合在构造时固定，
// 未知合约的事件计数后丢弃，不会扩张状态表。
type Store struct {
	mu        sync.RWMutex
	retention time.Duration
	states    map[string]*instrumentState
	pub       *Publisher
	dropped   uint64
}

type instrumentState struct {
	book      *Book
	window    *Window
	lastTrade float64
	lastTs    time.Time
}

// NewStore 创建固定合约集合的行情存储；pub 可为 nil。
func NewStore(instruments []string, retention time.Duration, pub *Publisher) *Store {
	s := &Store{
		retention: retention,
		states:    make(map[string]*instrumentState, len(instruments)),
		pub:       pub,
	}
	for _, inst := range instruments {
		s.states[inst] = &instrumentState{
			book:   NewBook(),
			window: NewWindow(retention),
		}
	}
	return s
}

// ApplyTrade 记录成交并清除过期记录；返回 false 表示未知合约。
func (s *Store) ApplyTrade(inst string, side Side, price, qty float64, ts time.Time) bool {
	s.mu.Lock()
	st, ok := s.states[inst]
	if !ok {
		s.dropped++
		s.mu.Unlock()
		return false
	}
	t := Trade{Side: side, Price: price, Qty: qty, Ts: ts}
	st.window.Append(t)
	st.lastTrade = price
	st.lastTs = ts
	s.mu.Unlock()

	if s.pub != nil {
		s.pub.PublishTrade(TradeEvent{Instrument: inst, Trade: t})
	}
	return true
}

// ApplyBookDelta 应用单档更新，qty <= 0 删除该档；返回 false 表示未知合约。
func (s *Store) ApplyBookDelta(inst string, side Side, price, qty float64) bool {
	s.mu.Lock()
	st, ok := s.states[inst]
	if !ok {
		s.dropped++
		s.mu.Unlock()
		return false
	}
	st.lastTs = time.Now()
	s.mu.Unlock()

	st.book.Apply(side, price, qty)
	if s.pub != nil {
		bid, _ := st.book.BestBid()
		ask, _ := st.book.BestAsk()
		s.pub.PublishTop(BookTop{Instrument: inst, Bid: bid, Ask: ask, Ts: time.Now()})
	}
	return true
}

// BestBidAsk 返回最优买卖价；任一侧为空时 ok=false。
func (s *Store) BestBidAsk(inst string) (bid, ask float64, ok bool) {
	st := s.state(inst)
	if st == nil {
		return 0, 0, false
	}
	bid, okB := st.book.BestBid()
	ask, okA := st.book.BestAsk()
	if !okB || !okA {
		return 0, 0, false
	}
	return bid, ask, true
}

// Mid 返回当前中间价；缺失任一侧时 ok=false。
func (s *Store) Mid(inst string) (float64, bool) {
	bid, ask, ok := s.BestBidAsk(inst)
	if !ok {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread 返回当前买卖价差；缺失任一侧时 ok=false。
func (s *Store) Spread(inst string) (float64, bool) {
	bid, ask, ok := s.BestBidAsk(inst)
	if !ok {
		return 0, false
	}
	return ask - bid, true
}

// LastTradePrice 返回最近一笔成交价；无成交时 ok=false。
func (s *Store) LastTradePrice(inst string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[inst]
	if !ok || st.lastTrade == 0 {
		return 0, false
	}
	return st.lastTrade, true
}

// Staleness 返回距最近一次行情更新的间隔；无数据时返回一年。
func (s *Store) Staleness(inst string) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[inst]
	if !ok || st.lastTs.IsZero() {
		return time.Hour * 24 * 365
	}
	return time.Since(st.lastTs)
}

// BookImbalance 返回买卖挂单量比；未知合约视为中性。
func (s *Store) BookImbalance(inst string) float64 {
	st := s.state(inst)
	if st == nil {
		return NeutralRatio
	}
	return BookImbalance(st.book)
}

// FlowImbalance 返回 horizon 窗口内的主动买卖量比；未知合约视为中性。
func (s *Store) FlowImbalance(inst string, horizon time.Duration, now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[inst]
	if !ok {
		return NeutralRatio
	}
	return FlowImbalance(st.window, horizon, now)
}

// Book 返回合约的订单簿；未知合约返回 nil。
func (s *Store) Book(inst string) *Book {
	st := s.state(inst)
	if st == nil {
		return nil
	}
	return st.book
}

// Instruments 返回固定合约集合。
func (s *Store) Instruments() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.states))
	for inst := range s.states {
		out = append(out, inst)
	}
	return out
}

// Dropped 返回因未知合约而丢弃的事件数。
func (s *Store) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *Store) state(inst string) *instrumentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[inst]
}
