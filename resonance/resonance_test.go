package resonance

import (
	"math"
	"testing"
)

func TestNewRejectsNonFinite(t *testing.T) {
	cases := []struct {
		name             string
		psi, rho, omega  float64
	}{
		{"nan", math.NaN(), 0, 0},
		{"posinf", 0, math.Inf(1), 0},
		{"neginf", 0, 0, math.Inf(-1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.psi, c.rho, c.omega); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestDistanceSymmetricReflexive(t *testing.T) {
	a, _ := New(1.0, 0.8, 0.5)
	b, _ := New(1.05, 0.82, 0.53)
	if a.Distance(b, DefaultWeights) != b.Distance(a, DefaultWeights) {
		t.Fatalf("distance not symmetric")
	}
	if a.Distance(a, DefaultWeights) != 0 {
		t.Fatalf("distance not reflexive")
	}
}

// S3 — Resonance window scenario from spec §8.
func TestResonanceWindowScenario(t *testing.T) {
	node, _ := New(1.0, 0.8, 0.5)
	pkt, _ := New(1.05, 0.82, 0.53)
	if !IsResonant(node, pkt, StandardWindow) {
		t.Fatalf("expected resonant")
	}
	strength := Strength(node, pkt, StandardWindow)
	if !(strength > 0.5 && strength < 1.0) {
		t.Fatalf("strength out of expected range: %v", strength)
	}

	far, _ := New(1.5, 0.8, 0.5)
	if IsResonant(node, far, StandardWindow) {
		t.Fatalf("expected non-resonant")
	}
	if Strength(node, far, StandardWindow) != 0 {
		t.Fatalf("expected zero strength for non-resonant pair")
	}
}

func TestIsResonantStrictBoundary(t *testing.T) {
	a, _ := New(0, 0, 0)
	// distance exactly 0.1 on psi axis with epsilon=0.1 -> not resonant
	b, _ := New(0.1, 0, 0)
	w := Window{Epsilon: 0.1, Weights: DefaultWeights}
	if IsResonant(a, b, w) {
		t.Fatalf("boundary distance should not be resonant")
	}
}

func TestFindResonantPreservesOrder(t *testing.T) {
	target, _ := New(0, 0, 0)
	n1s, _ := New(0.01, 0, 0)
	n2s, _ := New(5, 5, 5)
	n3s, _ := New(0.02, 0, 0)
	nodes := []Node{{ID: "a", State: n1s}, {ID: "b", State: n2s}, {ID: "c", State: n3s}}
	got := FindResonant(nodes, target, StandardWindow)
	want := []string{"a", "c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestQuorum(t *testing.T) {
	target, _ := New(0, 0, 0)
	near, _ := New(0.01, 0, 0)
	far, _ := New(5, 0, 0)
	states := []State{near, near, near, far}
	if !Quorum(states, target, StandardWindow, 0.5) {
		t.Fatalf("expected quorum to be reached")
	}
	if Quorum(states, target, StandardWindow, 0.9) {
		t.Fatalf("expected quorum not reached at high fraction")
	}
}
