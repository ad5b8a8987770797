package order

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"quote-engine-go/market"
)

var ErrNoVenue = errors.New("order: venue not configured")

// maxCancelFailures 连续撤单失败达到该次数后乐观清槽，
// 避免一张幽灵挂单永远堵死该侧报价。
const maxCancelFailures = 3

type slotKey struct {
	inst string
	side market.Side
}

type slot struct {
	state       SlotState
	resting     Resting
	cancelFails int
}

func (s *slot) clear() {
	s.state = SlotEmpty
	s.resting = Resting{}
	s.cancelFails = 0
}

// Manager 维护每个 (品种, 方向) 的唯一报价槽，并通过 Venue 把
// 期望挂单对齐到场内。对齐全部走 Reconcile：一轮最多一次
// cancel+place，挂单失败槽位保持 EMPTY，撤单失败槽位保持
// RESTING（由失败计数兜底）。
type Manager struct {
	venue Venue

	mu    sync.Mutex
	slots map[slotKey]*slot
	cons  ConstraintSet
	churn *ReplaceTracker
}

// NewManager 创建订单管理器。venue 为 nil 时所有场内操作返回
// ErrNoVenue，槽位不变。
func NewManager(venue Venue) *Manager {
	return &Manager{
		venue: venue,
		slots: make(map[slotKey]*slot),
		churn: NewReplaceTracker(time.Minute),
	}
}

// SetConstraints 设置默认与按品种的精度/名义限制。
func (m *Manager) SetConstraints(set ConstraintSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cons = set
}

// Reconcile 把一个槽位对齐到 desired。desired 为 nil 表示该侧
// 应当无挂单（防御性撤单）。返回的 Result.Err 不会破坏槽位
// 一致性，调用方只需记录。
func (m *Manager) Reconcile(inst string, side market.Side, desired *Desired) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := Result{Instrument: inst, Side: side, Action: ActionNone}
	s := m.slotLocked(inst, side)

	if desired == nil {
		if !CanCancel(s.state) {
			return res
		}
		res.Action = ActionCancel
		res.OrderID = s.resting.OrderID
		res.Price = s.resting.Price
		_, err := m.tryCancelLocked(inst, s)
		res.Err = err
		return res
	}

	c := m.cons.For(inst)
	if err := c.Validate(desired.Price, desired.Qty); err != nil {
		res.Action = ActionReject
		res.Err = err
		return res
	}

	if s.state == SlotResting {
		if math.Abs(s.resting.Price-desired.Price) <= c.ReplaceTolerance(desired.Tick) {
			res.Action = ActionHold
			res.OrderID = s.resting.OrderID
			res.Price = s.resting.Price
			return res
		}
		res.Action = ActionReplace
		cleared, err := m.tryCancelLocked(inst, s)
		if err != nil || !cleared {
			// 撤旧失败就不挂新，等下一轮重试。
			res.Err = err
			return res
		}
		return m.placeLocked(inst, side, desired, res)
	}

	res.Action = ActionPlace
	return m.placeLocked(inst, side, desired, res)
}

// CancelSide 主动撤掉一侧挂单（风控超限时的防御动作）。
func (m *Manager) CancelSide(inst string, side market.Side) Result {
	return m.Reconcile(inst, side, nil)
}

// CancelAll 撤掉所有挂单，按品种+方向排序保证输出可复现。
// 用于停机与暂停前的清场。
func (m *Manager) CancelAll() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]slotKey, 0, len(m.slots))
	for k, s := range m.slots {
		if CanCancel(s.state) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].inst != keys[j].inst {
			return keys[i].inst < keys[j].inst
		}
		return keys[i].side < keys[j].side
	})

	results := make([]Result, 0, len(keys))
	for _, k := range keys {
		s := m.slots[k]
		res := Result{
			Instrument: k.inst,
			Side:       k.side,
			Action:     ActionCancel,
			OrderID:    s.resting.OrderID,
			Price:      s.resting.Price,
		}
		_, err := m.tryCancelLocked(k.inst, s)
		res.Err = err
		results = append(results, res)
	}
	return results
}

// FlattenExcess 用市价单把超限仓位打回限额内。breached 为超限
// 方向：多头超限即卖出 excess，空头超限即买入。
func (m *Manager) FlattenExcess(inst string, breached market.Side, qty float64) Result {
	res := Result{Instrument: inst, Side: breached.Opposite(), Action: ActionPlace}
	if qty <= 0 {
		res.Action = ActionNone
		return res
	}
	if m.venue == nil {
		res.Err = ErrNoVenue
		return res
	}
	if err := m.venue.PlaceMarketOrder(res.Side, inst, qty); err != nil {
		res.Err = err
	}
	return res
}

// MarkFilled 成交回报后释放槽位；成交即视为挂单离场。
func (m *Manager) MarkFilled(inst string, side market.Side) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.slots[slotKey{inst, side}]; ok && s.state == SlotResting {
		s.clear()
	}
}

// Resting 返回槽内挂单，空槽第二个返回值为 false。
func (m *Manager) Resting(inst string, side market.Side) (Resting, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotKey{inst, side}]
	if !ok || s.state != SlotResting {
		return Resting{}, false
	}
	return s.resting, true
}

// RestingCount 返回当前场内挂单数。
func (m *Manager) RestingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.slots {
		if s.state == SlotResting {
			n++
		}
	}
	return n
}

// ReplaceRate 返回该品种每分钟撤换次数。
func (m *Manager) ReplaceRate(inst string) float64 {
	return m.churn.RatePerMinute(inst)
}

func (m *Manager) slotLocked(inst string, side market.Side) *slot {
	k := slotKey{inst, side}
	s, ok := m.slots[k]
	if !ok {
		s = &slot{state: SlotEmpty}
		m.slots[k] = s
	}
	return s
}

// tryCancelLocked 尝试撤掉槽内挂单。cleared 表示槽位已空
// （撤单成功，或失败次数达到上限后的乐观清槽）。
func (m *Manager) tryCancelLocked(inst string, s *slot) (cleared bool, err error) {
	if m.venue == nil {
		return false, ErrNoVenue
	}
	id := s.resting.OrderID
	if err := m.venue.CancelOrder(inst, id); err != nil {
		s.cancelFails++
		if s.cancelFails >= maxCancelFailures {
			s.clear()
			return true, fmt.Errorf("cancel order %d failed %d times, clearing slot: %w",
				id, maxCancelFailures, err)
		}
		return false, err
	}
	s.clear()
	return true, nil
}

func (m *Manager) placeLocked(inst string, side market.Side, desired *Desired, res Result) Result {
	if m.venue == nil {
		res.Err = ErrNoVenue
		return res
	}
	tif := desired.TIF
	if tif == "" {
		tif = GTC
	}
	id, err := m.venue.PlaceLimitOrder(side, inst, desired.Qty, desired.Price, tif)
	if err != nil {
		// 挂单失败槽位保持 EMPTY，不重试。
		res.Err = err
		return res
	}
	s := m.slotLocked(inst, side)
	s.state = SlotResting
	s.resting = Resting{
		Instrument: inst,
		Side:       side,
		OrderID:    id,
		Price:      desired.Price,
		Qty:        desired.Qty,
	}
	res.OrderID = id
	res.Price = desired.Price
	if res.Action == ActionReplace {
		m.churn.Record(inst)
	}
	return res
}
