package risk

import (
	"fmt"
	"sync"
)

// DrawdownGuard 跟踪组合市值高水位；回撤超过配置比例后停止报价，
// 市值回升到阈值以内自动恢复。
type DrawdownGuard struct {
	mu          sync.Mutex
	maxFraction float64
	peak        float64
	suppressed  bool
	onChange    func(suppressed bool, drawdown float64)
}

func NewDrawdownGuard(maxFraction float64) *DrawdownGuard {
	return &DrawdownGuard{maxFraction: maxFraction}
}

func (g *DrawdownGuard) SetOnChange(fn func(suppressed bool, drawdown float64)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

// Observe 输入最新组合市值，更新高水位与抑制状态。
func (g *DrawdownGuard) Observe(portfolioValue float64) {
	g.mu.Lock()
	if portfolioValue > g.peak {
		g.peak = portfolioValue
	}
	dd := g.drawdownLocked(portfolioValue)
	was := g.suppressed
	g.suppressed = g.maxFraction > 0 && dd > g.maxFraction
	changed := was != g.suppressed
	fn := g.onChange
	g.mu.Unlock()
	if changed && fn != nil {
		fn(!was, dd)
	}
}

// AllowQuote 抑制期间拒绝报价。
func (g *DrawdownGuard) AllowQuote(inst string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.suppressed {
		return fmt.Errorf("%w: peak %.2f", ErrDrawdownLimit, g.peak)
	}
	return nil
}

// Suppressed 返回当前是否处于回撤抑制状态。
func (g *DrawdownGuard) Suppressed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suppressed
}

func (g *DrawdownGuard) drawdownLocked(v float64) float64 {
	if g.peak <= 0 {
		return 0
	}
	return (g.peak - v) / g.peak
}
