// Package zkproof implements C6 of the Ghost Protocol core: a
// pluggable proof/verify interface over three statement variants
// (Knowledge, Range, Membership), with a reference Fiat-Shamir/SHA-256
// operator (educational, clearly flagged per spec §4.6/§9) and a
// second, production-flavored operator backed by CRYSTALS-Dilithium
// (cloudflare/circl), demonstrating the pluggable-operator contract.
package zkproof

// Kind enumerates the statement variants of spec §4.6.
type Kind int

const (
	KindKnowledge Kind = iota
	KindRange
	KindMembership
)

func (k Kind) String() string {
	switch k {
	case KindKnowledge:
		return "Knowledge"
	case KindRange:
		return "Range"
	case KindMembership:
		return "Membership"
	default:
		return "Unknown"
	}
}

// Statement is a tagged union over the three statement variants. Only
// the fields relevant to Kind are populated. The hidden value/member
// a Range or Membership statement talks about lives in the Witness,
// never here; the Statement only carries what a verifier is allowed
// to see (the public key, the bounds, the commitment/root).
type Statement struct {
	Kind Kind

	// Knowledge: prove knowledge of the secret key matching PublicKey
	// (a 33-byte compressed secp256k1 public key).
	PublicKey []byte

	// Range: prove the hidden witness value lies within [Low, High].
	// Commitment binds the proof to a specific hidden value without
	// revealing it up front (SHA256(LE64(value) || blinding)).
	Low        int64
	High       int64
	Commitment []byte

	// Membership: prove the hidden witness member is included under
	// the committed Merkle Root.
	Root []byte

	// Decoy marks a cover-traffic proof: receivers that detect this
	// flag drop the packet without recording a ledger commit
	// (spec §4.9.3).
	Decoy bool
}

// Witness carries the secret material a prover needs; never
// transmitted, never logged.
type Witness struct {
	Secret []byte // Knowledge: 32-byte secp256k1 scalar matching Statement.PublicKey

	Value    int64  // Range: the hidden value
	Blinding []byte // Range: blinding factor mixed into Statement.Commitment

	Member     []byte   // Membership: the element being proven a member
	MerklePath [][]byte // Membership: sibling hashes from leaf to root
	PathSides  []bool   // Membership: true = sibling is on the right at this level
}

// Operator is the capability set every ZK backend implements: apply
// (Prove/Verify), name, and an implicit formula captured by the
// concrete type. Mirrors the trait-based operator polymorphism spec
// §9 asks implementers to re-express as idiomatic interfaces.
type Operator interface {
	Name() string
	Prove(stmt Statement, w Witness, seed []byte) ([]byte, error)
	Verify(stmt Statement, proof []byte) bool
}
