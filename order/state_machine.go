package order

import "fmt"

// SlotTransition 槽位状态转换
type SlotTransition struct {
	From SlotState
	To   SlotState
}

// slotTransitions 所有合法的槽位转换。
// EMPTY→RESTING 挂单成功；RESTING→EMPTY 撤单或成交；
// RESTING→RESTING 同一轮内撤旧挂新（replace）。
var slotTransitions = map[SlotTransition]bool{
	{SlotEmpty, SlotResting}:   true,
	{SlotResting, SlotEmpty}:   true,
	{SlotResting, SlotResting}: true,
}

// ValidateSlotTransition 验证槽位状态转换是否合法。
// 相同状态视为幂等，总是允许。
func ValidateSlotTransition(from, to SlotState) error {
	if from == to {
		return nil
	}
	if !slotTransitions[SlotTransition{From: from, To: to}] {
		return fmt.Errorf("illegal slot transition: %s -> %s", from, to)
	}
	return nil
}

// CanPlace 判断当前状态下是否允许直接挂新单。
func CanPlace(s SlotState) bool { return s == SlotEmpty }

// CanCancel 判断当前状态下是否有单可撤。
func CanCancel(s SlotState) bool { return s == SlotResting }
