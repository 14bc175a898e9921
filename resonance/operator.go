package resonance

import "math"

// Node pairs an opaque identifier with its current resonance state,
// the shape C4's bulk queries operate over.
type Node struct {
	ID    string
	State State
}

// IsResonant reports whether two states fall within window w. Equality
// at the boundary (d == epsilon) resolves to NOT resonant: the
// comparison is strict less-than per spec §4.4.
func IsResonant(a, b State, w Window) bool {
	return a.Distance(b, w.Weights) < w.Epsilon
}

// Strength returns a value in [0,1]: 1 at zero distance, 0 at or
// beyond the window's epsilon.
func Strength(a, b State, w Window) float64 {
	d := a.Distance(b, w.Weights)
	s := 1 - d/w.Epsilon
	return math.Max(0, s)
}

// FindResonant returns the ids of every node resonant with target,
// preserving input order.
func FindResonant(nodes []Node, target State, w Window) []string {
	var out []string
	for _, n := range nodes {
		if IsResonant(n.State, target, w) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Quorum reports whether at least ceil(fraction * len(nodes)) of the
// given states are resonant with target.
func Quorum(states []State, target State, w Window, fraction float64) bool {
	if len(states) == 0 {
		return fraction <= 0
	}
	need := int(math.Ceil(fraction * float64(len(states))))
	count := 0
	for _, s := range states {
		if IsResonant(s, target, w) {
			count++
		}
	}
	return count >= need
}
