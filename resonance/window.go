package resonance

// Window is the tolerance (epsilon, per-dimension weights) two
// resonance states must fall within to be considered compatible.
type Window struct {
	Epsilon float64
	Weights Weights
}

// Preset windows named in spec §3.
var (
	StandardWindow = Window{Epsilon: 0.1, Weights: DefaultWeights}
	NarrowWindow   = Window{Epsilon: 0.01, Weights: DefaultWeights}
	WideWindow     = Window{Epsilon: 0.5, Weights: DefaultWeights}
)
