package gateway

import (
	"sync"
	"time"
)

// RateLimiter 对场内调用做节流。Wait 在额度耗尽时阻塞到下一个
// 令牌可用，不丢弃请求。
type RateLimiter interface {
	Wait()
}

// TokenBucketLimiter 令牌桶限速：稳态速率 rate 个/秒，短时突发
// 最多 burst 个。报价引擎撤换挂单天然成对出现，burst 应至少取
// 稳态速率的两倍。
type TokenBucketLimiter struct {
	rate   float64
	burst  int
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Wait 取走一个令牌，不足时睡到补齐。调用方是单线程的对齐循环，
// 等待期间释放锁即可。
func (l *TokenBucketLimiter) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(l.last).Seconds()
	l.last = now
	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
	if l.tokens < 1 {
		sleep := time.Duration((1-l.tokens)/l.rate*float64(time.Second)) + time.Millisecond
		l.mu.Unlock()
		time.Sleep(sleep)
		l.mu.Lock()
		// 睡醒时恰好攒满一个令牌，直接消费并从醒来时刻重新记账，
		// 否则下一次调用会把睡眠时段重复入账。
		l.tokens = 0
		l.last = time.Now()
	} else {
		l.tokens -= 1
	}
}
