package router

import (
	"testing"
	"time"

	"github.com/LashSesh/ghost-protocol/entropy"
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

func TestUpdateNeighborAndPrune(t *testing.T) {
	now := time.Unix(1000, 0)
	table := NewTable(WithStaleAfter(10*time.Second), WithClock(func() time.Time { return now }))

	table.UpdateNeighbor("n1", mustState(t, 1, 1, 1))
	if table.Len() != 1 {
		t.Fatalf("expected 1 neighbor, got %d", table.Len())
	}

	now = now.Add(20 * time.Second)
	table.Prune()
	if table.Len() != 0 {
		t.Fatalf("expected neighbor to be evicted as stale, got %d remaining", table.Len())
	}
}

func TestUpdateNeighborEvictsOldestWhenFull(t *testing.T) {
	now := time.Unix(1000, 0)
	table := NewTable(WithMaxNeighbors(2), WithClock(func() time.Time { return now }))

	table.UpdateNeighbor("n1", mustState(t, 0, 0, 0))
	now = now.Add(time.Second)
	table.UpdateNeighbor("n2", mustState(t, 0, 0, 0))
	now = now.Add(time.Second)
	table.UpdateNeighbor("n3", mustState(t, 0, 0, 0))

	if table.Len() != 2 {
		t.Fatalf("expected table capped at 2, got %d", table.Len())
	}
	ids := map[string]bool{}
	for _, n := range table.Snapshot() {
		ids[n.ID] = true
	}
	if ids["n1"] {
		t.Fatalf("expected oldest neighbor n1 to be evicted")
	}
}

func TestSelectNextHopsDeterministicAndBounded(t *testing.T) {
	table := NewTable()
	table.UpdateNeighbor("close", mustState(t, 1.0, 1.0, 1.0))
	table.UpdateNeighbor("far", mustState(t, 10.0, 10.0, 10.0))
	table.UpdateNeighbor("mid", mustState(t, 1.2, 1.1, 1.1))

	target := mustState(t, 1.0, 1.0, 1.0)
	window := resonance.WideWindow

	src1 := entropy.NewSeeded(42)
	got1, err := table.SelectNextHops(target, window, 2, src1)
	if err != nil {
		t.Fatalf("select next hops: %v", err)
	}
	if len(got1) > 2 {
		t.Fatalf("returned more than k hops: %v", got1)
	}

	src2 := entropy.NewSeeded(42)
	got2, err := table.SelectNextHops(target, window, 2, src2)
	if err != nil {
		t.Fatalf("select next hops: %v", err)
	}
	if len(got1) != len(got2) {
		t.Fatalf("non-deterministic hop count: %v vs %v", got1, got2)
	}
	for i := range got1 {
		if got1[i] != got2[i] {
			t.Fatalf("non-deterministic hop selection for a fixed seed: %v vs %v", got1, got2)
		}
	}

	seen := map[string]bool{}
	for _, id := range got1 {
		if seen[id] {
			t.Fatalf("duplicate next hop %s, expected sampling without replacement", id)
		}
		seen[id] = true
	}
}

func TestSelectNextHopsExcludesZeroScoreNeighbors(t *testing.T) {
	table := NewTable()
	table.UpdateNeighbor("resonant", mustState(t, 1.0, 1.0, 1.0))
	table.UpdateNeighbor("distant", mustState(t, 1000.0, 1000.0, 1000.0))

	target := mustState(t, 1.0, 1.0, 1.0)
	got, err := table.SelectNextHops(target, resonance.StandardWindow, 5, entropy.NewSeeded(1))
	if err != nil {
		t.Fatalf("select next hops: %v", err)
	}
	for _, id := range got {
		if id == "distant" {
			t.Fatalf("expected zero-score neighbor to be excluded, got %v", got)
		}
	}
}

func TestAttestationRoundTrip(t *testing.T) {
	pub, priv := GenerateAttestationKeypair()
	att := SignAttestation(priv, "n1", 1.0, 2.0, 3.0)

	table := NewTable()
	if err := table.UpdateNeighborAttested(pub, att); err != nil {
		t.Fatalf("update neighbor attested: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected neighbor admitted, got %d", table.Len())
	}
}

func TestAttestationRejectsForgedSignature(t *testing.T) {
	_, priv := GenerateAttestationKeypair()
	otherPub, _ := GenerateAttestationKeypair()
	att := SignAttestation(priv, "n1", 1.0, 2.0, 3.0)

	table := NewTable()
	if err := table.UpdateNeighborAttested(otherPub, att); err == nil {
		t.Fatalf("expected forged attestation to be rejected")
	}
	if table.Len() != 0 {
		t.Fatalf("forged attestation must not be admitted into the table")
	}
}
