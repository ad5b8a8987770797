package order

import "quote-engine-go/market"

// SlotState is the lifecycle state of a quote slot. Every
// (instrument, side) pair owns exactly one slot, so at most one
// resting order per side can exist at any time.
type SlotState string

const (
	// SlotEmpty means no order is resting on the venue for this slot.
	SlotEmpty SlotState = "EMPTY"

	// SlotResting means exactly one limit order is believed to be
	// live on the venue for this slot.
	SlotResting SlotState = "RESTING"
)

// IsValid reports whether the state is one of the defined slot states.
func (s SlotState) IsValid() bool {
	return s == SlotEmpty || s == SlotResting
}

// Resting describes the order currently occupying a slot.
type Resting struct {
	Instrument string
	Side       market.Side
	OrderID    int64
	Price      float64
	Qty        float64
}

// Desired is the target order for one slot produced by a quote
// decision. Tick is the quoting distance the decision was built
// with; the manager derives its replace tolerance from it.
type Desired struct {
	Price float64
	Qty   float64
	Tick  float64
	TIF   TimeInForce
}

// Action names what a reconciliation pass did to a slot.
type Action string

const (
	// ActionNone: slot was empty and nothing was desired.
	ActionNone Action = "NONE"

	// ActionHold: the resting order already matches the desired
	// order within tolerance; the venue was not touched.
	ActionHold Action = "HOLD"

	// ActionPlace: a new order was submitted to the venue.
	ActionPlace Action = "PLACE"

	// ActionCancel: the resting order was cancelled with no
	// replacement.
	ActionCancel Action = "CANCEL"

	// ActionReplace: the resting order was cancelled and a new
	// one submitted in the same pass.
	ActionReplace Action = "REPLACE"

	// ActionReject: the desired order failed local validation;
	// the venue was not touched.
	ActionReject Action = "REJECT"
)

// Result reports the outcome of one reconciliation of one slot.
// Err is non-fatal: the manager has already settled the slot into a
// consistent state and the caller only needs to log/count it.
type Result struct {
	Instrument string
	Side       market.Side
	Action     Action
	OrderID    int64
	Price      float64
	Err        error
}

// Failed reports whether the pass ended with an error.
func (r Result) Failed() bool { return r.Err != nil }

// VenueCalled reports whether the pass actually issued venue
// requests, which is what failure-rate accounting should count.
func (r Result) VenueCalled() bool {
	switch r.Action {
	case ActionPlace, ActionCancel, ActionReplace:
		return true
	}
	return false
}
