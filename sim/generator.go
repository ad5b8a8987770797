// Package sim 合成行情流，用于离线跑通整条报价链路与压测。
package sim

import (
	"math"
	"math/rand"

	"quote-engine-go/market"
)

// Handler 消费生成的事件。引擎直接满足该接口。
type Handler interface {
	OnTrade(inst string, side market.Side, price, qty float64)
	OnBookUpdate(inst string, side market.Side, price, qty float64)
	OnFill(inst string, side market.Side, price, qty, capitalRemaining float64)
}

// Config 控制合成行情的形态。同一份配置加同一个种子产出
// 完全相同的事件序列。
type Config struct {
	Instruments []string
	Seed        int64
	StartMid    float64 // 初始中间价
	WalkStep    float64 // 单步随机游走幅度（占中间价比例）
	SpreadFrac  float64 // 盘口价差（占中间价比例）
	Decimals    int     // 价格精度
	DepthQty    float64 // 档位挂量基准
	TradeProb   float64 // 每步出现成交打印的概率
	TradeQty    float64 // 成交数量基准
}

// DefaultConfig 返回一个行得通的行情形态。
func DefaultConfig() Config {
	return Config{
		Instruments: []string{"ETH"},
		Seed:        1,
		StartMid:    100,
		WalkStep:    0.0015,
		SpreadFrac:  0.002,
		Decimals:    4,
		DepthQty:    5,
		TradeProb:   0.4,
		TradeQty:    1,
	}
}

type instState struct {
	mid     float64
	lastBid float64
	lastAsk float64
}

// Generator 按随机游走推进每个品种的中间价，产出一档盘口更新
// 与成交打印。
type Generator struct {
	cfg   Config
	rng   *rand.Rand
	state map[string]*instState
}

func NewGenerator(cfg Config) *Generator {
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = DefaultConfig().Instruments
	}
	if cfg.StartMid <= 0 {
		cfg.StartMid = DefaultConfig().StartMid
	}
	g := &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		state: make(map[string]*instState, len(cfg.Instruments)),
	}
	for _, inst := range cfg.Instruments {
		g.state[inst] = &instState{mid: cfg.StartMid}
	}
	return g
}

// Step 为每个品种推进一步：先清掉上一步的档位再铺新档，
// 避免游走在簿里留下交叉残档。
func (g *Generator) Step(h Handler) {
	for _, inst := range g.cfg.Instruments {
		st := g.state[inst]
		st.mid *= 1 + g.cfg.WalkStep*(g.rng.Float64()*2-1)

		half := st.mid * g.cfg.SpreadFrac / 2
		tick := math.Pow(10, -float64(g.cfg.Decimals))
		bid := round(st.mid-half, g.cfg.Decimals)
		ask := round(st.mid+half, g.cfg.Decimals)
		if ask <= bid {
			ask = round(bid+tick, g.cfg.Decimals)
		}

		if st.lastBid != 0 && st.lastBid != bid {
			h.OnBookUpdate(inst, market.Buy, st.lastBid, 0)
		}
		if st.lastAsk != 0 && st.lastAsk != ask {
			h.OnBookUpdate(inst, market.Sell, st.lastAsk, 0)
		}
		qty := g.cfg.DepthQty * (0.5 + g.rng.Float64())
		h.OnBookUpdate(inst, market.Buy, bid, qty)
		h.OnBookUpdate(inst, market.Sell, ask, qty)
		st.lastBid, st.lastAsk = bid, ask

		if g.rng.Float64() < g.cfg.TradeProb {
			tq := g.cfg.TradeQty * (0.5 + g.rng.Float64())
			if g.rng.Intn(2) == 0 {
				h.OnTrade(inst, market.Buy, ask, tq) // 主动买吃卖一
			} else {
				h.OnTrade(inst, market.Sell, bid, tq) // 主动卖砸买一
			}
		}
	}
}

func round(p float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(p*pow) / pow
}
