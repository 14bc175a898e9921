// Package forkheal implements C11 of the Ghost Protocol core: the
// fork-healing attractor that deterministically picks a single winner
// among candidate blocks claiming the same index and prev_hash.
package forkheal

import (
	"github.com/LashSesh/ghost-protocol/resonance"
)

// DefaultAlpha and DefaultBeta are the scoring weights spec §4.10
// assigns to coherence and timestamp freshness respectively.
const (
	DefaultAlpha = 0.7
	DefaultBeta  = 0.3
)

// Candidate is one contender for a contested ledger index.
type Candidate struct {
	ID             string
	Hash           string
	BlockResonance resonance.State
	BlockTimestamp int64
}

// Resolution is the attractor's output: a single winner plus the
// losing candidates, archived but not chained.
type Resolution struct {
	WinnerID     string
	Alternatives []string
	Timestamp    int64
}

// Weights overrides the default α/β scoring coefficients.
type Weights struct {
	Alpha float64
	Beta  float64
}

// DefaultWeights returns the spec-mandated α=0.7, β=0.3 pair.
func DefaultWeights() Weights {
	return Weights{Alpha: DefaultAlpha, Beta: DefaultBeta}
}

// Heal scores each candidate in F against the observing node's
// current neighbor resonance states, picks the argmax, and
// deterministically tie-breaks by lexicographically smallest hash
// (spec §4.10). now is the observation instant used for
// timestamp_score; it is a parameter, not wall-clock time, so the
// result is reproducible across repeated calls with identical inputs
// (testable property P9).
func Heal(candidates []Candidate, neighbors []resonance.State, w resonance.Window, weights Weights, now int64) Resolution {
	if len(candidates) == 0 {
		return Resolution{Timestamp: now}
	}

	coherence := make([]float64, len(candidates))
	for i, c := range candidates {
		coherence[i] = meanStrength(c.BlockResonance, neighbors, w)
	}
	tsScores := normalizedTimestampScores(candidates, now)

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = weights.Alpha*coherence[i] + weights.Beta*tsScores[i]
	}

	winner := 0
	for i := 1; i < len(candidates); i++ {
		if scores[i] > scores[winner] ||
			(scores[i] == scores[winner] && candidates[i].Hash < candidates[winner].Hash) {
			winner = i
		}
	}

	alternatives := make([]string, 0, len(candidates)-1)
	for i, c := range candidates {
		if i != winner {
			alternatives = append(alternatives, c.ID)
		}
	}
	return Resolution{WinnerID: candidates[winner].ID, Alternatives: alternatives, Timestamp: now}
}

func meanStrength(target resonance.State, neighbors []resonance.State, w resonance.Window) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range neighbors {
		sum += resonance.Strength(target, n, w)
	}
	return sum / float64(len(neighbors))
}

func normalizedTimestampScores(candidates []Candidate, now int64) []float64 {
	raw := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		delta := c.BlockTimestamp - now
		if delta < 0 {
			delta = -delta
		}
		raw[i] = 1.0 / (1.0 + float64(delta))
		total += raw[i]
	}
	if total == 0 {
		return raw
	}
	out := make([]float64, len(candidates))
	for i := range raw {
		out[i] = raw[i] / total
	}
	return out
}

// HealIterative re-runs Heal up to maxIterations times, feeding each
// round's winner resonance back in as an additional neighbor
// observation before rescoring. This approximates the source
// material's iterative fractal-convergence idea (spec §9 design note)
// while guaranteeing termination: it stops as soon as two consecutive
// rounds agree on the winner, and always stops by maxIterations.
func HealIterative(candidates []Candidate, neighbors []resonance.State, w resonance.Window, weights Weights, now int64, maxIterations int) Resolution {
	if maxIterations < 1 {
		maxIterations = 1
	}
	observed := append([]resonance.State(nil), neighbors...)
	var last Resolution
	for iter := 0; iter < maxIterations; iter++ {
		res := Heal(candidates, observed, w, weights, now)
		if iter > 0 && res.WinnerID == last.WinnerID {
			return res
		}
		last = res
		for _, c := range candidates {
			if c.ID == res.WinnerID {
				observed = append(observed, c.BlockResonance)
				break
			}
		}
	}
	return last
}
