package sim

import (
	"strings"
	"testing"

	"quote-engine-go/market"
	"quote-engine-go/order"
)

type simVenue struct {
	nextID int64
}

func (v *simVenue) PlaceLimitOrder(side market.Side, inst string, qty, price float64, tif order.TimeInForce) (int64, error) {
	v.nextID++
	return v.nextID, nil
}

func (v *simVenue) CancelOrder(inst string, orderID int64) error { return nil }

func (v *simVenue) PlaceMarketOrder(side market.Side, inst string, qty float64) error { return nil }

func seedResting(t *testing.T, orders *order.Manager, side market.Side, price float64) {
	t.Helper()
	res := orders.Reconcile("ETH", side, &order.Desired{Price: price, Qty: 1, Tick: 0.1})
	if res.Failed() {
		t.Fatalf("seed resting order: %v", res.Err)
	}
}

func TestRunnerMatchesRestingBid(t *testing.T) {
	orders := order.NewManager(&simVenue{})
	seedResting(t, orders, market.Buy, 99)

	log := &eventLog{}
	r := NewRunner(NewGenerator(DefaultConfig()), orders, log, 1000)

	// 主动卖砸穿买一：买单应当被合成成交
	r.OnTrade("ETH", market.Sell, 98.5, 2)

	if r.Fills() != 1 {
		t.Fatalf("fills = %d, want 1", r.Fills())
	}
	if got, want := r.Capital(), 1000-99.0; got != want {
		t.Fatalf("capital = %.2f, want %.2f", got, want)
	}
	var sawFill bool
	for _, ev := range log.events {
		if strings.HasPrefix(ev, "f:ETH:BUY:99.0000") {
			sawFill = true
		}
	}
	if !sawFill {
		t.Fatalf("fill not forwarded to handler: %v", log.events)
	}

	// 没有穿越价位的打印不触发成交
	r.OnTrade("ETH", market.Sell, 99.5, 2)
	if r.Fills() != 1 {
		t.Fatalf("fills = %d after non-crossing trade, want 1", r.Fills())
	}
}

func TestRunnerMatchesRestingAsk(t *testing.T) {
	orders := order.NewManager(&simVenue{})
	seedResting(t, orders, market.Sell, 101)

	log := &eventLog{}
	r := NewRunner(NewGenerator(DefaultConfig()), orders, log, 1000)

	r.OnTrade("ETH", market.Buy, 101.5, 1)

	if r.Fills() != 1 {
		t.Fatalf("fills = %d, want 1", r.Fills())
	}
	if got, want := r.Capital(), 1000+101.0; got != want {
		t.Fatalf("capital = %.2f, want %.2f", got, want)
	}
}

func TestRunnerWithoutOrderManagerOnlyForwards(t *testing.T) {
	log := &eventLog{}
	r := NewRunner(NewGenerator(DefaultConfig()), nil, log, 1000)

	r.Run(20)

	if len(log.events) == 0 {
		t.Fatal("no events forwarded")
	}
	if r.Fills() != 0 {
		t.Fatalf("fills = %d without order manager, want 0", r.Fills())
	}
}
