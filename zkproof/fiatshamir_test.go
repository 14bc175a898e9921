package zkproof

import (
	"testing"
)

func TestKnowledgeProofCompleteness(t *testing.T) {
	pub, priv, err := GenerateKnowledgeKeypair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	stmt := Statement{Kind: KindKnowledge, PublicKey: pub}
	w := Witness{Secret: priv}
	op := FiatShamirOperator{}

	proof, err := op.Prove(stmt, w, nil)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !op.Verify(stmt, proof) {
		t.Fatalf("honestly produced proof failed to verify")
	}
}

// P6 — soundness: adversarial proofs without the witness should
// verify with vanishing probability. Run many trials with a forged
// keypair's signature against the real public key.
func TestKnowledgeProofSoundness(t *testing.T) {
	pub, _, err := GenerateKnowledgeKeypair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	stmt := Statement{Kind: KindKnowledge, PublicKey: pub}
	op := FiatShamirOperator{}

	successes := 0
	const trials = 200
	for i := 0; i < trials; i++ {
		_, forgedPriv, err := GenerateKnowledgeKeypair()
		if err != nil {
			t.Fatalf("keygen: %v", err)
		}
		forgedProof, err := op.Prove(stmt, Witness{Secret: forgedPriv}, nil)
		if err != nil {
			// Expected: forging with the wrong key can fail outright.
			continue
		}
		if op.Verify(stmt, forgedProof) {
			successes++
		}
	}
	if successes != 0 {
		t.Fatalf("expected zero verifying forgeries without the real witness, got %d/%d", successes, trials)
	}
}

func TestRangeProofRoundTrip(t *testing.T) {
	blinding := []byte("a-fixed-blinding-value-32-bytes!")
	commitment := commitValue(42, blinding)
	stmt := Statement{Kind: KindRange, Low: 0, High: 100, Commitment: commitment}
	w := Witness{Value: 42, Blinding: blinding}
	op := FiatShamirOperator{}

	proof, err := op.Prove(stmt, w, nil)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !op.Verify(stmt, proof) {
		t.Fatalf("range proof failed to verify")
	}
}

func TestRangeProofRejectsOutOfBoundsWitness(t *testing.T) {
	blinding := []byte("a-fixed-blinding-value-32-bytes!")
	commitment := commitValue(999, blinding)
	stmt := Statement{Kind: KindRange, Low: 0, High: 100, Commitment: commitment}
	w := Witness{Value: 999, Blinding: blinding}
	op := FiatShamirOperator{}
	if _, err := op.Prove(stmt, w, nil); err == nil {
		t.Fatalf("expected error proving out-of-range witness")
	}
}

func TestMembershipProofRoundTrip(t *testing.T) {
	member := []byte("alice")
	sibling1 := []byte{1, 2, 3, 4}
	sibling2 := []byte{5, 6, 7, 8}
	path := [][]byte{sibling1, sibling2}
	sides := []bool{true, false}
	root := membershipRoot(member, path, sides)

	stmt := Statement{Kind: KindMembership, Root: root}
	w := Witness{Member: member, MerklePath: path, PathSides: sides}
	op := FiatShamirOperator{}

	proof, err := op.Prove(stmt, w, nil)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !op.Verify(stmt, proof) {
		t.Fatalf("membership proof failed to verify")
	}
}

func TestMembershipProofRejectsWrongRoot(t *testing.T) {
	member := []byte("alice")
	path := [][]byte{{1, 2, 3}}
	sides := []bool{true}
	stmt := Statement{Kind: KindMembership, Root: []byte("not-the-real-root-not-the-real!")}
	w := Witness{Member: member, MerklePath: path, PathSides: sides}
	op := FiatShamirOperator{}
	if _, err := op.Prove(stmt, w, nil); err == nil {
		t.Fatalf("expected error for witness that doesn't reach declared root")
	}
}

func TestDilithiumKnowledgeOperator(t *testing.T) {
	pub, priv, err := GenerateDilithiumKeypair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	stmt := Statement{Kind: KindKnowledge, PublicKey: pub}
	w := Witness{Secret: priv}
	op := DilithiumKnowledgeOperator{}

	proof, err := op.Prove(stmt, w, nil)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !op.Verify(stmt, proof) {
		t.Fatalf("honestly produced dilithium proof failed to verify")
	}
}

func TestDilithiumOperatorRejectsNonKnowledge(t *testing.T) {
	op := DilithiumKnowledgeOperator{}
	stmt := Statement{Kind: KindRange}
	if _, err := op.Prove(stmt, Witness{}, nil); err == nil {
		t.Fatalf("expected error for non-Knowledge statement")
	}
}
