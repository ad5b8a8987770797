// Package gateway 连接引擎与外部世界：行情/回报 WebSocket 源，
// 以及下单通道的 dry-run 与限速实现。
package gateway

import (
	"sync/atomic"

	"go.uber.org/zap"

	"quote-engine-go/infrastructure/logger"
	"quote-engine-go/market"
	"quote-engine-go/order"
)

// DryRunVenue 本地应答所有场内指令，不触达任何交易所。
// 用于纸面运行与回放，订单号单调递增保证日志可回溯。
type DryRunVenue struct {
	log    *logger.Logger
	nextID atomic.Int64
}

func NewDryRunVenue(log *logger.Logger) *DryRunVenue {
	if log == nil {
		log = logger.NewNop()
	}
	return &DryRunVenue{log: log}
}

func (v *DryRunVenue) PlaceLimitOrder(side market.Side, inst string, qty, price float64, tif order.TimeInForce) (int64, error) {
	id := v.nextID.Add(1)
	v.log.Debug("dry-run place",
		zap.String("instrument", inst),
		zap.String("side", string(side)),
		zap.Float64("price", price),
		zap.Float64("qty", qty),
		zap.String("tif", string(tif)),
		zap.Int64("orderId", id))
	return id, nil
}

func (v *DryRunVenue) CancelOrder(inst string, orderID int64) error {
	v.log.Debug("dry-run cancel",
		zap.String("instrument", inst),
		zap.Int64("orderId", orderID))
	return nil
}

func (v *DryRunVenue) PlaceMarketOrder(side market.Side, inst string, qty float64) error {
	v.log.Debug("dry-run market order",
		zap.String("instrument", inst),
		zap.String("side", string(side)),
		zap.Float64("qty", qty))
	return nil
}

// RateLimitedVenue 在每次场内调用前消耗一个令牌。撮合方对请求
// 频率有硬限制，超限的惩罚比多等几毫秒贵得多。
type RateLimitedVenue struct {
	inner   order.Venue
	limiter RateLimiter
}

func NewRateLimitedVenue(inner order.Venue, limiter RateLimiter) *RateLimitedVenue {
	return &RateLimitedVenue{inner: inner, limiter: limiter}
}

func (v *RateLimitedVenue) PlaceLimitOrder(side market.Side, inst string, qty, price float64, tif order.TimeInForce) (int64, error) {
	v.limiter.Wait()
	return v.inner.PlaceLimitOrder(side, inst, qty, price, tif)
}

func (v *RateLimitedVenue) CancelOrder(inst string, orderID int64) error {
	v.limiter.Wait()
	return v.inner.CancelOrder(inst, orderID)
}

func (v *RateLimitedVenue) PlaceMarketOrder(side market.Side, inst string, qty float64) error {
	v.limiter.Wait()
	return v.inner.PlaceMarketOrder(side, inst, qty)
}
