package strategy

// Params bundles every tunable a policy constructor may need. Each
// policy validates only the fields it actually uses.
type Params struct {
	// signal_gated 阈值
	BookThreshold float64
	FlowMin       float64
	FlowMax       float64
	MidShift      float64

	// bias 变体：顺势侧贴近盘口、逆势侧后撤
	BiasCompetitiveness bool
	BiasInside          float64
	BiasDefensive       float64

	// fee_aware / momentum 报价距离
	SpreadMultiplier float64
	FeeRate          float64
	MinTick          float64

	// momentum 顺势过滤阈值
	MomentumThreshold float64
}

// 未显式配置时的 bias 变体默认值。
const (
	DefaultBiasInside    = 0.5
	DefaultBiasDefensive = 2.0
)
