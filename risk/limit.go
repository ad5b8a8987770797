package risk

import (
	"fmt"
	"math"

	"quote-engine-go/market"
)

// Limits 仓位上限配置；PerInstrument 覆盖 DefaultMax。
type Limits struct {
	DefaultMax    float64
	PerInstrument map[string]float64
}

// MaxFor 返回合约生效的仓位上限。
func (l Limits) MaxFor(inst string) float64 {
	if m, ok := l.PerInstrument[inst]; ok && m > 0 {
		return m
	}
	return l.DefaultMax
}

// PositionView 提供净仓位与剩余资金。
type PositionView interface {
	Position(inst string) float64
	Capital() float64
}

// Checker 在报价决策前校验仓位与资金约束。
type Checker struct {
	limits Limits
	view   PositionView
}

func NewChecker(limits Limits, view PositionView) *Checker {
	return &Checker{limits: limits, view: view}
}

// CanIncreaseLong 校验买入 qty 后仓位仍在 [-max, +max] 内，且剩余资金覆盖名义金额。
func (c *Checker) CanIncreaseLong(inst string, qty, price float64) error {
	max := c.limits.MaxFor(inst)
	pos := c.view.Position(inst)
	if max > 0 && math.Abs(pos+qty) > max {
		return fmt.Errorf("%w: %s %.4f+%.4f > %.4f", ErrPositionCap, inst, pos, qty, max)
	}
	notional := qty * price
	if c.view.Capital() < notional {
		return fmt.Errorf("%w: %.2f < %.2f", ErrInsufficientCapital, c.view.Capital(), notional)
	}
	return nil
}

// CanIncreaseShort 校验卖出 qty 后仓位仍在 [-max, +max] 内。
func (c *Checker) CanIncreaseShort(inst string, qty float64) error {
	max := c.limits.MaxFor(inst)
	pos := c.view.Position(inst)
	if max > 0 && math.Abs(pos-qty) > max {
		return fmt.Errorf("%w: %s %.4f-%.4f > %.4f", ErrPositionCap, inst, pos, qty, max)
	}
	return nil
}

// BreachedSide 返回当前已越界的持仓方向；未越界时 ok=false。
// 越界只可能来自引擎未请求的成交，调用方应立即撤掉该侧挂单。
func (c *Checker) BreachedSide(inst string) (market.Side, bool) {
	max := c.limits.MaxFor(inst)
	if max <= 0 {
		return "", false
	}
	pos := c.view.Position(inst)
	switch {
	case pos > max:
		return market.Buy, true
	case pos < -max:
		return market.Sell, true
	default:
		return "", false
	}
}

// Excess 返回超出上限的仓位绝对量；未越界为 0。
func (c *Checker) Excess(inst string) float64 {
	max := c.limits.MaxFor(inst)
	if max <= 0 {
		return 0
	}
	over := math.Abs(c.view.Position(inst)) - max
	if over <= 0 {
		return 0
	}
	return over
}
