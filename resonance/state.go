// Package resonance implements C2 (resonance state) and C4 (resonance
// operator) of the Ghost Protocol core: an immutable 3-vector in a
// bounded real space, weighted distance between two such vectors, and
// the resonance-window predicate used to route and accept packets
// without stable addresses.
package resonance

import (
	"fmt"
	"math"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

// State is the immutable 3-tuple (psi, rho, omega) a node or packet
// occupies in resonance space. Every component must be finite.
type State struct {
	Psi   float64
	Rho   float64
	Omega float64
}

// New validates and constructs a State. All three components must be
// finite (no NaN, no +/-Inf) per spec §3.
func New(psi, rho, omega float64) (State, error) {
	s := State{Psi: psi, Rho: rho, Omega: omega}
	if err := s.validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

func (s State) validate() error {
	for _, c := range []float64{s.Psi, s.Rho, s.Omega} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("resonance: %w: non-finite component", ghosterr.ErrInvalidState)
		}
	}
	return nil
}

// Weights scales each dimension's contribution to the distance metric.
type Weights struct {
	Psi, Rho, Omega float64
}

// DefaultWeights is the (1,1,1) unweighted case.
var DefaultWeights = Weights{Psi: 1, Rho: 1, Omega: 1}

// Distance computes the weighted Euclidean distance between s and
// other: sqrt(sum_i w_i * (x_i1 - x_i2)^2). Symmetric and reflexive
// by construction (spec invariant I4).
func (s State) Distance(other State, w Weights) float64 {
	dPsi := s.Psi - other.Psi
	dRho := s.Rho - other.Rho
	dOmega := s.Omega - other.Omega
	sum := w.Psi*dPsi*dPsi + w.Rho*dRho*dRho + w.Omega*dOmega*dOmega
	return math.Sqrt(sum)
}
