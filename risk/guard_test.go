package risk

import (
	"errors"
	"testing"
	"time"
)

type stubGuard struct{ err error }

func (s stubGuard) AllowQuote(inst string) error { return s.err }

func TestMultiGuard(t *testing.T) {
	g := MultiGuard{Guards: []QuoteGuard{
		nil,
		stubGuard{},
		stubGuard{err: ErrStaleMarket},
	}}
	if err := g.AllowQuote("ETH"); !errors.Is(err, ErrStaleMarket) {
		t.Fatalf("expected stale market error, got %v", err)
	}

	g = MultiGuard{Guards: []QuoteGuard{stubGuard{}, stubGuard{}}}
	if err := g.AllowQuote("ETH"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

type stubStaleness struct{ age time.Duration }

func (s stubStaleness) Staleness(inst string) time.Duration { return s.age }

func TestStalenessGuard(t *testing.T) {
	g := StalenessGuard{Source: stubStaleness{age: 2 * time.Second}, Max: 5 * time.Second}
	if err := g.AllowQuote("ETH"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	g.Source = stubStaleness{age: 6 * time.Second}
	if err := g.AllowQuote("ETH"); !errors.Is(err, ErrStaleMarket) {
		t.Fatalf("expected stale market error, got %v", err)
	}
	// 未配置上限时放行
	g.Max = 0
	if err := g.AllowQuote("ETH"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestDrawdownGuard(t *testing.T) {
	g := NewDrawdownGuard(0.10)

	g.Observe(1000)
	if err := g.AllowQuote("ETH"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	// 回撤 15% 触发抑制
	g.Observe(850)
	if err := g.AllowQuote("ETH"); !errors.Is(err, ErrDrawdownLimit) {
		t.Fatalf("expected drawdown error, got %v", err)
	}
	if !g.Suppressed() {
		t.Fatal("guard should report suppressed")
	}

	// 市值回升后自动恢复
	g.Observe(950)
	if err := g.AllowQuote("ETH"); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}
