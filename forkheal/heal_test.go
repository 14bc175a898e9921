package forkheal

import (
	"testing"

	"github.com/LashSesh/ghost-protocol/resonance"
)

func mustState(t *testing.T, psi, rho, omega float64) resonance.State {
	t.Helper()
	s, err := resonance.New(psi, rho, omega)
	if err != nil {
		t.Fatalf("resonance.New: %v", err)
	}
	return s
}

// TestForkResolutionScenario implements spec scenario S6: candidate A
// has much higher mean resonance coherence against neighbors than B,
// equal neighbor timestamps, so A wins regardless of how many times
// it's re-run.
func TestForkResolutionScenario(t *testing.T) {
	// Five neighbors clustered near (1,1,1).
	neighbors := []resonance.State{
		mustState(t, 1.0, 1.0, 1.0),
		mustState(t, 1.01, 1.0, 1.0),
		mustState(t, 1.0, 1.01, 1.0),
		mustState(t, 0.99, 1.0, 1.0),
		mustState(t, 1.0, 0.99, 1.0),
	}
	window := resonance.WideWindow // ε=0.5, so candidate A's cluster-matching state scores high

	a := Candidate{ID: "A", Hash: "bbbb", BlockResonance: mustState(t, 1.0, 1.0, 1.0), BlockTimestamp: 100}
	b := Candidate{ID: "B", Hash: "aaaa", BlockResonance: mustState(t, 50.0, 50.0, 50.0), BlockTimestamp: 100}
	candidates := []Candidate{a, b}

	for i := 0; i < 10; i++ {
		res := Heal(candidates, neighbors, window, DefaultWeights(), 100)
		if res.WinnerID != "A" {
			t.Fatalf("iteration %d: expected A to win, got %s", i, res.WinnerID)
		}
	}
}

// TestForkResolutionTieBreak covers S6's second half: when scores are
// equal, the lexicographically smaller hash wins deterministically.
func TestForkResolutionTieBreak(t *testing.T) {
	same := mustState(t, 1.0, 1.0, 1.0)
	neighbors := []resonance.State{same, same}

	a := Candidate{ID: "A", Hash: "zzzz", BlockResonance: same, BlockTimestamp: 100}
	b := Candidate{ID: "B", Hash: "aaaa", BlockResonance: same, BlockTimestamp: 100}
	candidates := []Candidate{a, b}

	res := Heal(candidates, neighbors, resonance.WideWindow, DefaultWeights(), 100)
	if res.WinnerID != "B" {
		t.Fatalf("expected lexicographically smaller hash (B) to win tie, got %s", res.WinnerID)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0] != "A" {
		t.Fatalf("expected A archived as the sole alternative, got %v", res.Alternatives)
	}
}

func TestHealEmptyCandidates(t *testing.T) {
	res := Heal(nil, nil, resonance.StandardWindow, DefaultWeights(), 42)
	if res.WinnerID != "" {
		t.Fatalf("expected empty resolution for no candidates, got %+v", res)
	}
}

func TestHealIterativeConvergesAndTerminates(t *testing.T) {
	neighbors := []resonance.State{mustState(t, 1.0, 1.0, 1.0)}
	a := Candidate{ID: "A", Hash: "1111", BlockResonance: mustState(t, 1.0, 1.0, 1.0), BlockTimestamp: 0}
	b := Candidate{ID: "B", Hash: "2222", BlockResonance: mustState(t, 9.0, 9.0, 9.0), BlockTimestamp: 0}

	res := HealIterative([]Candidate{a, b}, neighbors, resonance.WideWindow, DefaultWeights(), 0, 5)
	if res.WinnerID != "A" {
		t.Fatalf("expected A to win iterative healing, got %s", res.WinnerID)
	}
}
