package strategy

import "testing"

func validParams() Params {
	return Params{
		BookThreshold:     1.5,
		FlowMin:           0.95,
		FlowMax:           1.05,
		MidShift:          0.25,
		SpreadMultiplier:  0.35,
		FeeRate:           0.004,
		MinTick:           0.0001,
		MomentumThreshold: 0.0025,
	}
}

func TestFactoryBuildsEveryKnownPolicy(t *testing.T) {
	for _, name := range Names() {
		p, err := New(name, validParams())
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if p.Name() != name {
			t.Fatalf("policy name = %q, want %q", p.Name(), name)
		}
		if !Known(name) {
			t.Fatalf("Known(%q) = false", name)
		}
	}
}

func TestFactoryUnknownPolicy(t *testing.T) {
	if _, err := New("grid", validParams()); err == nil {
		t.Fatalf("unknown policy must fail")
	}
	if Known("grid") {
		t.Fatalf("Known must reject unknown names")
	}
}

func TestFactoryPropagatesValidation(t *testing.T) {
	p := validParams()
	p.BookThreshold = 0.5
	if _, err := New(NameSignalGated, p); err == nil {
		t.Fatalf("invalid params must fail construction")
	}
}
