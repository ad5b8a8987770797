package order

import (
	"testing"

	"quote-engine-go/market"
)

func TestValidateSlotTransition(t *testing.T) {
	cases := []struct {
		from, to SlotState
		ok       bool
	}{
		{SlotEmpty, SlotResting, true},
		{SlotResting, SlotEmpty, true},
		{SlotResting, SlotResting, true},
		{SlotEmpty, SlotEmpty, true}, // 幂等
	}
	for _, tc := range cases {
		err := ValidateSlotTransition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
	if err := ValidateSlotTransition(SlotState("GHOST"), SlotResting); err == nil {
		t.Fatalf("unknown state transition should be rejected")
	}
}

func TestSlotStateHelpers(t *testing.T) {
	if !SlotEmpty.IsValid() || !SlotResting.IsValid() {
		t.Fatalf("defined states must be valid")
	}
	if SlotState("GHOST").IsValid() {
		t.Fatalf("undefined state must be invalid")
	}
	if !CanPlace(SlotEmpty) || CanPlace(SlotResting) {
		t.Fatalf("CanPlace wrong")
	}
	if !CanCancel(SlotResting) || CanCancel(SlotEmpty) {
		t.Fatalf("CanCancel wrong")
	}
}

func TestResultVenueCalled(t *testing.T) {
	cases := []struct {
		action Action
		want   bool
	}{
		{ActionNone, false},
		{ActionHold, false},
		{ActionReject, false},
		{ActionPlace, true},
		{ActionCancel, true},
		{ActionReplace, true},
	}
	for _, tc := range cases {
		r := Result{Instrument: "ETH", Side: market.Buy, Action: tc.action}
		if r.VenueCalled() != tc.want {
			t.Fatalf("%s: VenueCalled = %v, want %v", tc.action, r.VenueCalled(), tc.want)
		}
	}
}
