package inventory

// MarkSource 提供标记价：优先 mid，缺失时退回最近成交价。
type MarkSource interface {
	Mid(inst string) (float64, bool)
	LastTradePrice(inst string) (float64, bool)
}

// Valuer 把仓位与剩余资金折算成组合市值。
type Valuer struct {
	tracker *Tracker
	marks   MarkSource
}

func NewValuer(tracker *Tracker, marks MarkSource) *Valuer {
	return &Valuer{tracker: tracker, marks: marks}
}

// Mark 返回合约的标记价；mid 与最近成交价都缺失时 ok=false。
func (v *Valuer) Mark(inst string) (float64, bool) {
	if mid, ok := v.marks.Mid(inst); ok {
		return mid, true
	}
	if last, ok := v.marks.LastTradePrice(inst); ok {
		return last, true
	}
	return 0, false
}

// PortfolioValue 返回剩余资金加上全部仓位按标记价折算的价值。
// 无法标记的仓位按 0 贡献计入，避免臆造价格。
func (v *Valuer) PortfolioValue() float64 {
	total := v.tracker.Capital()
	for inst, pos := range v.tracker.Positions() {
		mark, ok := v.Mark(inst)
		if !ok {
			continue
		}
		total += pos * mark
	}
	return total
}
