package risk

import (
	"fmt"
	"sync"
	"time"
)

// CircuitBreaker 连续失败熔断：撮合方调用连续失败达到阈值后打开，
// 冷却期内整体停止报价，冷却结束后自动闭合放行探测。
type CircuitBreaker struct {
	mu          sync.Mutex
	threshold   int
	cooldown    time.Duration
	clock       Clock
	consecutive int
	open        bool
	openedAt    time.Time
	onChange    func(open bool)
}

func NewCircuitBreaker(threshold int, cooldown time.Duration, clock Clock) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	if clock == nil {
		clock = System
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown, clock: clock}
}

// SetOnChange 注册开闭状态变化回调（用于告警）。
func (c *CircuitBreaker) SetOnChange(fn func(open bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// RecordSuccess 任一成功调用即复位失败计数。
func (c *CircuitBreaker) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutive = 0
}

// RecordFailure 累计连续失败，达到阈值时打开熔断。
func (c *CircuitBreaker) RecordFailure() {
	c.mu.Lock()
	c.consecutive++
	trip := !c.open && c.consecutive >= c.threshold
	if trip {
		c.open = true
		c.openedAt = c.clock.Now()
	}
	fn := c.onChange
	c.mu.Unlock()
	if trip && fn != nil {
		fn(true)
	}
}

// AllowQuote 熔断打开且未过冷却期时拒绝；冷却结束自动闭合。
func (c *CircuitBreaker) AllowQuote(inst string) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return nil
	}
	if c.clock.Now().Sub(c.openedAt) < c.cooldown {
		remaining := c.cooldown - c.clock.Now().Sub(c.openedAt)
		c.mu.Unlock()
		return fmt.Errorf("%w: %s remaining", ErrCircuitOpen, remaining)
	}
	c.open = false
	c.consecutive = 0
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(false)
	}
	return nil
}

// Open 返回当前是否处于熔断状态。
func (c *CircuitBreaker) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
