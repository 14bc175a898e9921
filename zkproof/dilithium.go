package zkproof

import (
	"crypto"
	"crypto/rand"
	"fmt"

	mode3 "github.com/cloudflare/circl/sign/dilithium/mode3"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

// DilithiumKnowledgeOperator is the "production deployments plug in a
// cryptographically hardened operator" example spec §4.6/§9 asks for:
// a Knowledge statement's proof is a CRYSTALS-Dilithium (mode3)
// signature over the statement digest, which is a post-quantum,
// audited signature scheme. A valid signature under PublicKey is a
// proof of knowledge of the corresponding secret key, satisfying the
// Knowledge statement's predicate. Range/Membership are out of scope
// for this operator; it only plugs in where a signature-of-knowledge
// is the right shape.
type DilithiumKnowledgeOperator struct{}

func (DilithiumKnowledgeOperator) Name() string { return "dilithium3-knowledge" }

func (DilithiumKnowledgeOperator) Prove(stmt Statement, w Witness, seed []byte) ([]byte, error) {
	if stmt.Kind != KindKnowledge {
		return nil, fmt.Errorf("zkproof: %w: dilithium operator only supports Knowledge statements", ghosterr.ErrInvalidState)
	}
	var sk mode3.PrivateKey
	if err := sk.UnmarshalBinary(w.Secret); err != nil {
		return nil, fmt.Errorf("zkproof: unmarshal dilithium secret key: %w", err)
	}
	msg := statementDigest(stmt)
	sig, err := sk.Sign(rand.Reader, msg[:], crypto.Hash(0))
	if err != nil {
		return nil, fmt.Errorf("zkproof: dilithium sign: %w", err)
	}
	return sig, nil
}

func (DilithiumKnowledgeOperator) Verify(stmt Statement, proof []byte) bool {
	if stmt.Kind != KindKnowledge {
		return false
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(stmt.PublicKey); err != nil {
		return false
	}
	msg := statementDigest(stmt)
	return mode3.Verify(&pk, msg[:], proof)
}

// GenerateDilithiumKeypair is a convenience constructor for tests and
// demo wiring: returns packed public/private key bytes suitable for
// Statement.PublicKey / Witness.Secret.
func GenerateDilithiumKeypair() (pub, priv []byte, err error) {
	pk, sk, err := mode3.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return pk.Bytes(), sk.Bytes(), nil
}
