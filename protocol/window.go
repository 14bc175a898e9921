package protocol

import "math"

// EMAFactor is the exponentially-weighted average latency factor
// spec §4.9.2 step 3 mandates.
const EMAFactor = 0.3

// AdaptiveTimestampWindow tracks an EMA of accepted-packet latency and
// derives T_skew/max_age from it, exactly per spec §4.9.2 step 3:
//
//	T_skew  = clamp(60 + 2*L + 10, 30, 300) seconds
//	max_age = clamp(24*3600 * max(1, L/60*0.5 + 0.5), 3600, 48*3600)
type AdaptiveTimestampWindow struct {
	ema float64
	set bool
}

// NewAdaptiveTimestampWindow starts with a zero EMA (T_skew=70s until
// the first accepted packet informs it).
func NewAdaptiveTimestampWindow() *AdaptiveTimestampWindow {
	return &AdaptiveTimestampWindow{}
}

// Accept records an accepted packet's observed latency (|now -
// packet.timestamp| in seconds) into the EMA.
func (w *AdaptiveTimestampWindow) Accept(latencySeconds float64) {
	if !w.set {
		w.ema = latencySeconds
		w.set = true
		return
	}
	w.ema = EMAFactor*latencySeconds + (1-EMAFactor)*w.ema
}

// Skew returns the current T_skew in seconds.
func (w *AdaptiveTimestampWindow) Skew() float64 {
	return clamp(60+2*w.ema+10, 30, 300)
}

// MaxAge returns the current max_age in seconds.
func (w *AdaptiveTimestampWindow) MaxAge() float64 {
	factor := math.Max(1, w.ema/60*0.5+0.5)
	return clamp(24*3600*factor, 3600, 48*3600)
}

// Within reports whether deltaSeconds (|now - packet.timestamp|) falls
// inside the current adaptive skew window.
func (w *AdaptiveTimestampWindow) Within(deltaSeconds float64) bool {
	return deltaSeconds <= w.Skew()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
