package risk

// RoundTripEdge 返回一买一卖全部成交、双边计费后的净收益。
func RoundTripEdge(buyPrice, sellPrice, size, feeRate float64) float64 {
	gross := (sellPrice - buyPrice) * size
	fees := (sellPrice + buyPrice) * size * feeRate
	return gross - fees
}

// ProfitableAfterFees 判断双边报价净收益是否为正；
// 无法覆盖往返手续费的价差直接放弃而不是亏损挂单。
func ProfitableAfterFees(buyPrice, sellPrice, size, feeRate float64) bool {
	return RoundTripEdge(buyPrice, sellPrice, size, feeRate) > 0
}
