package risk

import (
	"fmt"
	"time"
)

// QuoteGuard 在每轮报价决策前运行；返回非 nil 错误则本轮整体跳过。
type QuoteGuard interface {
	AllowQuote(inst string) error
}

// MultiGuard 顺序执行多个 QuoteGuard，任一失败即中止。
type MultiGuard struct {
	Guards []QuoteGuard
}

func (m MultiGuard) AllowQuote(inst string) error {
	for _, g := range m.Guards {
		if g == nil {
			continue
		}
		if err := g.AllowQuote(inst); err != nil {
			return err
		}
	}
	return nil
}

// StalenessSource 提供距最近一次行情更新的间隔。
type StalenessSource interface {
	Staleness(inst string) time.Duration
}

// StalenessGuard 行情长时间未更新时停止报价。
type StalenessGuard struct {
	Source StalenessSource
	Max    time.Duration
}

func (g StalenessGuard) AllowQuote(inst string) error {
	if g.Source == nil || g.Max <= 0 {
		return nil
	}
	if age := g.Source.Staleness(inst); age > g.Max {
		return fmt.Errorf("%w: %s age %s", ErrStaleMarket, inst, age)
	}
	return nil
}
