package market

import "sync"

// Book 维护单个合约的价格->数量映射。
type Book struct {
	mu   sync.RWMutex
	bids map[float64]float64 // price -> qty
	asks map[float64]float64
}

func NewBook() *Book {
	return &Book{
		bids: make(map[float64]float64),
		asks: make(map[float64]float64),
	}
}

// Apply 应用单档增量更新，qty <= 0 表示删除该档。
func (b *Book) Apply(side Side, price, qty float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	levels := b.bids
	if side == Sell {
		levels = b.asks
	}
	if qty <= 0 {
		delete(levels, price)
		return
	}
	levels[price] = qty
}

// BestBid 返回最高买价；若买侧为空则 ok=false。
func (b *Book) BestBid() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	best, found := 0.0, false
	for p := range b.bids {
		if !found || p > best {
			best, found = p, true
		}
	}
	return best, found
}

// BestAsk 返回最低卖价；若卖侧为空则 ok=false。
func (b *Book) BestAsk() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	best, found := 0.0, false
	for p := range b.asks {
		if !found || p < best {
			best, found = p, true
		}
	}
	return best, found
}

// Mid 返回中间价；若缺失任一侧则 ok=false。
func (b *Book) Mid() (float64, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread 返回买卖价差；若缺失任一侧则 ok=false。
func (b *Book) Spread() (float64, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return ask - bid, true
}

// BidVolume 返回买侧全部挂单量之和。
func (b *Book) BidVolume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, q := range b.bids {
		total += q
	}
	return total
}

// AskVolume 返回卖侧全部挂单量之和。
func (b *Book) AskVolume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, q := range b.asks {
		total += q
	}
	return total
}

// Levels 返回指定侧当前档位数。
func (b *Book) Levels(side Side) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if side == Sell {
		return len(b.asks)
	}
	return len(b.bids)
}
