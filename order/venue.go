package order

import "quote-engine-go/market"

// TimeInForce 限价单的有效期语义。
type TimeInForce string

const (
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
)

// Venue 提供基础下单/撤单抽象；由 gateway 侧实现。
// 所有调用同步返回，失败通过 error 报告而不是被吞掉。
type Venue interface {
	PlaceMarketOrder(side market.Side, inst string, qty float64) error
	PlaceLimitOrder(side market.Side, inst string, qty, price float64, tif TimeInForce) (int64, error)
	CancelOrder(inst string, orderID int64) error
}
