package router

import (
	"fmt"

	bls "github.com/herumi/bls-eth-go-binary/bls"

	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/resonance"
)

func init() {
	if err := bls.Init(bls.BLS12_381); err != nil {
		panic(fmt.Errorf("router: bls init: %w", err))
	}
}

// Attestation is a neighbor's signed claim of its own resonance state,
// letting a router authenticate update_neighbor calls instead of
// trusting whatever arrives on the wire (supplemented feature, not in
// the original module's router contract — see SPEC_FULL.md §C).
type Attestation struct {
	NeighborID string
	Psi        float64
	Rho        float64
	Omega      float64
	Signature  []byte
}

// GenerateAttestationKeypair creates a fresh BLS12-381 keypair for
// signing neighbor attestations.
func GenerateAttestationKeypair() (pub *bls.PublicKey, priv *bls.SecretKey) {
	var sk bls.SecretKey
	sk.SetByCSPRNG()
	return sk.GetPublicKey(), &sk
}

// SignAttestation signs the neighbor's resonance claim with its BLS
// secret key.
func SignAttestation(priv *bls.SecretKey, neighborID string, psi, rho, omega float64) Attestation {
	msg := attestationMessage(neighborID, psi, rho, omega)
	sig := priv.SignByte(msg)
	return Attestation{NeighborID: neighborID, Psi: psi, Rho: rho, Omega: omega, Signature: sig.Serialize()}
}

// VerifyAttestation checks a.Signature against the claimed resonance
// tuple under pub.
func VerifyAttestation(pub *bls.PublicKey, a Attestation) (bool, error) {
	var sig bls.Sign
	if err := sig.Deserialize(a.Signature); err != nil {
		return false, fmt.Errorf("router: verify attestation: %w", err)
	}
	msg := attestationMessage(a.NeighborID, a.Psi, a.Rho, a.Omega)
	return sig.VerifyByte(pub, msg), nil
}

func attestationMessage(neighborID string, psi, rho, omega float64) []byte {
	return []byte(fmt.Sprintf("ghost-attestation:%s:%.17g:%.17g:%.17g", neighborID, psi, rho, omega))
}

// UpdateNeighborAttested verifies a signed attestation before
// admitting it into the table, marking the entry attested on success.
// Unverified attestations are rejected with ghosterr.ErrIntegrity and
// never touch the table.
func (t *Table) UpdateNeighborAttested(pub *bls.PublicKey, a Attestation) error {
	ok, err := VerifyAttestation(pub, a)
	if err != nil {
		return fmt.Errorf("router: update neighbor attested: %w", err)
	}
	if !ok {
		return fmt.Errorf("router: update neighbor attested: %w: signature invalid for %s", ghosterr.ErrIntegrity, a.NeighborID)
	}
	state, err := stateFromAttestation(a)
	if err != nil {
		return fmt.Errorf("router: update neighbor attested: %w", err)
	}
	t.UpdateNeighbor(a.NeighborID, state)
	t.MarkAttested(a.NeighborID)
	return nil
}

func stateFromAttestation(a Attestation) (resonance.State, error) {
	return resonance.New(a.Psi, a.Rho, a.Omega)
}
