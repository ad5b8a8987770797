package order

import (
	"fmt"
	"math"
)

// DefaultMinTick 未配置 minTick 时使用的兜底值，
// 同时作为 replace 容差的下限。
const DefaultMinTick = 0.0001

// Constraints 描述单个品种的精度与最小名义限制。
type Constraints struct {
	PriceDecimals int
	MinTick       float64
	MinQty        float64
	MinNotional   float64
}

// Validate 检查目标订单是否满足最小数量与最小名义。
// 价格精度由报价侧保证，这里只做基本 sanity 检查。
func (c Constraints) Validate(price, qty float64) error {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("invalid price %.10f", price)
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return fmt.Errorf("invalid qty %.10f", qty)
	}
	if c.MinQty > 0 && qty < c.MinQty {
		return fmt.Errorf("qty %.8f < minQty %.8f", qty, c.MinQty)
	}
	if c.MinNotional > 0 && price*qty < c.MinNotional {
		return fmt.Errorf("notional %.8f < minNotional %.8f", price*qty, c.MinNotional)
	}
	return nil
}

// ReplaceTolerance 计算撤换阈值：目标价与挂单价偏离超过
// max(minTick, 0.5*tick) 才值得撤旧挂新，避免无意义的 churn。
func (c Constraints) ReplaceTolerance(tick float64) float64 {
	minTick := c.MinTick
	if minTick <= 0 {
		minTick = DefaultMinTick
	}
	return math.Max(minTick, 0.5*tick)
}

// ConstraintSet 持有默认约束与按品种覆盖。
type ConstraintSet struct {
	Default       Constraints
	PerInstrument map[string]Constraints
}

// For 返回指定品种生效的约束。
func (s ConstraintSet) For(inst string) Constraints {
	if c, ok := s.PerInstrument[inst]; ok {
		return c
	}
	return s.Default
}
