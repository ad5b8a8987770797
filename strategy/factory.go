package strategy

import "fmt"

// Policy names accepted by New and the config layer.
const (
	NameFeeAware    = "fee_aware"
	NameSignalGated = "signal_gated"
	NameMomentum    = "momentum"
)

// Names returns every policy name the factory can build.
func Names() []string {
	return []string{NameFeeAware, NameSignalGated, NameMomentum}
}

// Known reports whether name maps to a buildable policy.
func Known(name string) bool {
	switch name {
	case NameFeeAware, NameSignalGated, NameMomentum:
		return true
	}
	return false
}

// New creates a policy instance by name.
func New(name string, p Params) (Policy, error) {
	switch name {
	case NameFeeAware:
		return NewFeeAware(p)
	case NameSignalGated:
		return NewSignalGated(p)
	case NameMomentum:
		return NewMomentum(p)
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
