package sim

import (
	"quote-engine-go/market"
	"quote-engine-go/order"
)

// Runner 把合成行情灌进 handler（通常是报价引擎），并在成交
// 打印越过自家挂单价位时合成 fill 回报，模拟被动成交。
// Runner 自身实现 Handler 以便在转发路径上截获成交做撮合。
type Runner struct {
	gen     *Generator
	orders  *order.Manager
	handler Handler
	capital float64
	fills   int
}

// NewRunner 创建回放器。orders 为 nil 时只转发行情不合成成交。
func NewRunner(gen *Generator, orders *order.Manager, handler Handler, startCapital float64) *Runner {
	return &Runner{
		gen:     gen,
		orders:  orders,
		handler: handler,
		capital: startCapital,
	}
}

// Run 推进 steps 步。
func (r *Runner) Run(steps int) {
	for i := 0; i < steps; i++ {
		r.Step()
	}
}

// Step 推进一步。
func (r *Runner) Step() {
	r.gen.Step(r)
}

// Fills 返回合成的被动成交笔数。
func (r *Runner) Fills() int { return r.fills }

// Capital 返回模拟账户的剩余资金。
func (r *Runner) Capital() float64 { return r.capital }

func (r *Runner) OnBookUpdate(inst string, side market.Side, price, qty float64) {
	r.handler.OnBookUpdate(inst, side, price, qty)
}

func (r *Runner) OnTrade(inst string, side market.Side, price, qty float64) {
	r.handler.OnTrade(inst, side, price, qty)
	r.match(inst, side, price)
}

func (r *Runner) OnFill(inst string, side market.Side, price, qty, capital float64) {
	r.handler.OnFill(inst, side, price, qty, capital)
}

// match 用最朴素的价格穿越规则撮合：主动卖砸到买一价以下
// 吃掉我们的买单，主动买抬过卖一价吃掉卖单。
func (r *Runner) match(inst string, aggressor market.Side, price float64) {
	if r.orders == nil {
		return
	}
	if aggressor == market.Sell {
		if resting, ok := r.orders.Resting(inst, market.Buy); ok && price <= resting.Price {
			r.capital -= resting.Price * resting.Qty
			r.fills++
			r.handler.OnFill(inst, market.Buy, resting.Price, resting.Qty, r.capital)
		}
		return
	}
	if resting, ok := r.orders.Resting(inst, market.Sell); ok && price >= resting.Price {
		r.capital += resting.Price * resting.Qty
		r.fills++
		r.handler.OnFill(inst, market.Sell, resting.Price, resting.Qty, r.capital)
	}
}
