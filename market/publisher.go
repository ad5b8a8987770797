package market

import "time"

// BookTop 描述某合约当前的最优买卖价。
type BookTop struct {
	Instrument string
	Bid        float64
	Ask        float64
	Ts         time.Time
}

// TradeEvent 携带合约标识的成交广播。
type TradeEvent struct {
	Instrument string
	Trade      Trade
}

// Publisher 一个轻量事件分发器；发送永不阻塞，慢订阅者丢弃消息。
type Publisher struct {
	topSubs   []chan BookTop
	tradeSubs []chan TradeEvent
}

func NewPublisher() *Publisher {
	return &Publisher{
		topSubs:   make([]chan BookTop, 0),
		tradeSubs: make([]chan TradeEvent, 0),
	}
}

// SubscribeTop 订阅最优价更新；缓冲为 1，只保留最新值有意义的场景足够。
func (p *Publisher) SubscribeTop() <-chan BookTop {
	ch := make(chan BookTop, 1)
	p.topSubs = append(p.topSubs, ch)
	return ch
}

func (p *Publisher) SubscribeTrades() <-chan TradeEvent {
	ch := make(chan TradeEvent, 16)
	p.tradeSubs = append(p.tradeSubs, ch)
	return ch
}

func (p *Publisher) PublishTop(t BookTop) {
	for _, ch := range p.topSubs {
		select {
		case ch <- t:
		default:
		}
	}
}

func (p *Publisher) PublishTrade(e TradeEvent) {
	for _, ch := range p.tradeSubs {
		select {
		case ch <- e:
		default:
		}
	}
}
