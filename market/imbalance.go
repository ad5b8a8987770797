package market

import "time"

// Imbalance ratios are finite by construction so downstream threshold
// comparisons always work on real numbers.
const (
	// NeutralRatio means "no signal".
	NeutralRatio = 1.0
	// SentinelRatio stands in for a division by zero when the numerator
	// side has volume. Intentionally finite, not +Inf.
	SentinelRatio = 5.0
)

// BookImbalance calculates total bid volume / total ask volume over the
// full book. An empty bid side is neutral; an empty ask side with resting
// bids is the bullish sentinel.
func BookImbalance(b *Book) float64 {
	if b == nil {
		return NeutralRatio
	}
	bidVol := b.BidVolume()
	askVol := b.AskVolume()
	if bidVol == 0 {
		return NeutralRatio
	}
	if askVol == 0 {
		return SentinelRatio
	}
	return bidVol / askVol
}

// FlowImbalance calculates aggressive buy volume / aggressive sell volume
// over trades strictly newer than now-horizon. No sell volume yields the
// sentinel when buys exist, neutral otherwise. Recomputed on every call.
func FlowImbalance(w *Window, horizon time.Duration, now time.Time) float64 {
	if w == nil {
		return NeutralRatio
	}
	buyVol, sellVol := w.Volumes(horizon, now)
	if sellVol == 0 {
		if buyVol > 0 {
			return SentinelRatio
		}
		return NeutralRatio
	}
	return buyVol / sellVol
}
