package integration

import (
	"errors"
	"fmt"
	"sync"

	"quote-engine-go/market"
	"quote-engine-go/order"
)

// OpenOrder 场内侧的挂单视图。
type OpenOrder struct {
	ID    int64
	Inst  string
	Side  market.Side
	Price float64
	Qty   float64
}

// MarketOrder 记录一笔已接受的市价单。
type MarketOrder struct {
	Inst string
	Side market.Side
	Qty  float64
}

// MockVenue 模拟场内通道：维护自己的挂单簿、按脚本注入失败、
// 统计每类调用次数。挂单簿与引擎侧的槽位状态相互独立，
// 测试里两边对账能暴露槽位漂移。
type MockVenue struct {
	mu sync.Mutex

	nextID int64
	open   map[int64]OpenOrder
	market []MarketOrder

	placeCount  int
	cancelCount int
	marketCount int

	failPlaces  int
	failCancels int
}

func NewMockVenue() *MockVenue {
	return &MockVenue{open: make(map[int64]OpenOrder)}
}

// FailNextPlaces 让接下来 n 次挂单失败。
func (v *MockVenue) FailNextPlaces(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failPlaces = n
}

// FailNextCancels 让接下来 n 次撤单失败。
func (v *MockVenue) FailNextCancels(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failCancels = n
}

func (v *MockVenue) PlaceLimitOrder(side market.Side, inst string, qty, price float64, tif order.TimeInForce) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.placeCount++
	if v.failPlaces > 0 {
		v.failPlaces--
		return 0, errors.New("simulated place failure")
	}
	v.nextID++
	v.open[v.nextID] = OpenOrder{ID: v.nextID, Inst: inst, Side: side, Price: price, Qty: qty}
	return v.nextID, nil
}

func (v *MockVenue) CancelOrder(inst string, orderID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cancelCount++
	if v.failCancels > 0 {
		v.failCancels--
		return errors.New("simulated cancel failure")
	}
	if _, ok := v.open[orderID]; !ok {
		return fmt.Errorf("unknown order %d", orderID)
	}
	delete(v.open, orderID)
	return nil
}

func (v *MockVenue) PlaceMarketOrder(side market.Side, inst string, qty float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.marketCount++
	v.market = append(v.market, MarketOrder{Inst: inst, Side: side, Qty: qty})
	return nil
}

// Remove 模拟挂单在场内成交离场（成交回报到达前场内已无此单）。
func (v *MockVenue) Remove(orderID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.open, orderID)
}

// OpenCount 返回场内挂单数。
func (v *MockVenue) OpenCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.open)
}

// Open 返回某 (品种, 方向) 的场内挂单。
func (v *MockVenue) Open(inst string, side market.Side) (OpenOrder, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, o := range v.open {
		if o.Inst == inst && o.Side == side {
			return o, true
		}
	}
	return OpenOrder{}, false
}

// Counts 返回 (place, cancel, market) 的调用次数，含失败的调用。
func (v *MockVenue) Counts() (place, cancel, mkt int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.placeCount, v.cancelCount, v.marketCount
}

// MarketOrders 返回已接受的市价单记录。
func (v *MockVenue) MarketOrders() []MarketOrder {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]MarketOrder, len(v.market))
	copy(out, v.market)
	return out
}
