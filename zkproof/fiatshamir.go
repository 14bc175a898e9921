package zkproof

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

// FiatShamirOperator is the educational reference implementation of
// C6 named in spec §4.6/§9. It is NOT a hardened, audited ZK
// construction; it is clearly flagged here and in SPEC_FULL.md.
//
// Knowledge statements get a real Fiat-Shamir/Schnorr proof of
// knowledge of a secp256k1 discrete log (BIP340-style): this is the
// variant spec's testable property P6 exercises, so it carries actual
// completeness/soundness/zero-knowledge guarantees under the discrete
// log assumption. Range and Membership statements get a lighter
// commitment-opening proof that is honest but NOT hiding — the
// revealed opening lets a verifier recompute the commitment/root, but
// does expose the witness value to the verifier. Production
// deployments wanting hiding range/membership proofs must plug in a
// different Operator satisfying the same interface (spec §4.6's
// pluggability contract).
type FiatShamirOperator struct{}

func (FiatShamirOperator) Name() string { return "fiat-shamir-sha256-reference" }

func (FiatShamirOperator) Prove(stmt Statement, w Witness, seed []byte) ([]byte, error) {
	switch stmt.Kind {
	case KindKnowledge:
		return proveKnowledge(stmt, w)
	case KindRange:
		return proveRange(stmt, w)
	case KindMembership:
		return proveMembership(stmt, w)
	default:
		return nil, fmt.Errorf("zkproof: %w: unknown statement kind", ghosterr.ErrInvalidState)
	}
}

func (FiatShamirOperator) Verify(stmt Statement, proof []byte) bool {
	switch stmt.Kind {
	case KindKnowledge:
		return verifyKnowledge(stmt, proof)
	case KindRange:
		return verifyRange(stmt, proof)
	case KindMembership:
		return verifyMembership(stmt, proof)
	default:
		return false
	}
}

func statementDigest(stmt Statement) [32]byte {
	h := sha256.New()
	var kindByte [1]byte
	kindByte[0] = byte(stmt.Kind)
	h.Write(kindByte[:])
	h.Write(stmt.PublicKey)
	var bounds [16]byte
	binary.BigEndian.PutUint64(bounds[0:8], uint64(stmt.Low))
	binary.BigEndian.PutUint64(bounds[8:16], uint64(stmt.High))
	h.Write(bounds[:])
	h.Write(stmt.Commitment)
	h.Write(stmt.Root)
	if stmt.Decoy {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// --- Knowledge: real Schnorr (BIP340-flavored) proof of knowledge of
// the secp256k1 discrete log matching stmt.PublicKey. ---

func proveKnowledge(stmt Statement, w Witness) ([]byte, error) {
	if len(w.Secret) != 32 {
		return nil, fmt.Errorf("zkproof: %w: knowledge witness must be a 32-byte scalar", ghosterr.ErrInvalidState)
	}
	priv := secp256k1.PrivKeyFromBytes(w.Secret)
	msg := statementDigest(stmt)
	sig, err := schnorr.Sign(priv, msg[:])
	if err != nil {
		return nil, fmt.Errorf("zkproof: sign: %w", err)
	}
	return sig.Serialize(), nil
}

func verifyKnowledge(stmt Statement, proof []byte) bool {
	pub, err := secp256k1.ParsePubKey(stmt.PublicKey)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(proof)
	if err != nil {
		return false
	}
	msg := statementDigest(stmt)
	return sig.Verify(msg[:], pub)
}

// --- Range: commitment-opening proof, not hiding. ---

func commitValue(value int64, blinding []byte) []byte {
	h := sha256.New()
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], uint64(value))
	h.Write(le[:])
	h.Write(blinding)
	return h.Sum(nil)
}

func proveRange(stmt Statement, w Witness) ([]byte, error) {
	if w.Value < stmt.Low || w.Value > stmt.High {
		return nil, fmt.Errorf("zkproof: %w: witness value outside declared range", ghosterr.ErrInvalidState)
	}
	commitment := commitValue(w.Value, w.Blinding)
	if !bytes.Equal(commitment, stmt.Commitment) {
		return nil, fmt.Errorf("zkproof: %w: witness does not open declared commitment", ghosterr.ErrInvalidState)
	}
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], uint64(w.Value))
	proof := append(append([]byte{}, le[:]...), w.Blinding...)
	return proof, nil
}

func verifyRange(stmt Statement, proof []byte) bool {
	if len(proof) < 8 {
		return false
	}
	value := int64(binary.LittleEndian.Uint64(proof[:8]))
	blinding := proof[8:]
	if value < stmt.Low || value > stmt.High {
		return false
	}
	return bytes.Equal(commitValue(value, blinding), stmt.Commitment)
}

// --- Membership: Merkle-path opening proof. ---

func merkleStep(acc []byte, sibling []byte, siblingOnRight bool) []byte {
	h := sha256.New()
	if siblingOnRight {
		h.Write(acc)
		h.Write(sibling)
	} else {
		h.Write(sibling)
		h.Write(acc)
	}
	return h.Sum(nil)
}

func membershipRoot(member []byte, path [][]byte, sides []bool) []byte {
	acc := sha256.Sum256(member)
	cur := acc[:]
	for i, sibling := range path {
		cur = merkleStep(cur, sibling, sides[i])
	}
	return cur
}

func proveMembership(stmt Statement, w Witness) ([]byte, error) {
	if len(w.PathSides) != len(w.MerklePath) {
		return nil, fmt.Errorf("zkproof: %w: path/sides length mismatch", ghosterr.ErrInvalidState)
	}
	root := membershipRoot(w.Member, w.MerklePath, w.PathSides)
	if !bytes.Equal(root, stmt.Root) {
		return nil, fmt.Errorf("zkproof: %w: witness path does not reach declared root", ghosterr.ErrInvalidState)
	}
	return encodeMembershipProof(w.Member, w.MerklePath, w.PathSides), nil
}

func verifyMembership(stmt Statement, proof []byte) bool {
	member, path, sides, err := decodeMembershipProof(proof)
	if err != nil {
		return false
	}
	return bytes.Equal(membershipRoot(member, path, sides), stmt.Root)
}

func encodeMembershipProof(member []byte, path [][]byte, sides []bool) []byte {
	buf := new(bytes.Buffer)
	var memberLen [4]byte
	binary.BigEndian.PutUint32(memberLen[:], uint32(len(member)))
	buf.Write(memberLen[:])
	buf.Write(member)
	var pathLen [4]byte
	binary.BigEndian.PutUint32(pathLen[:], uint32(len(path)))
	buf.Write(pathLen[:])
	for i, sibling := range path {
		var sideByte byte
		if sides[i] {
			sideByte = 1
		}
		buf.WriteByte(sideByte)
		var siblingLen [4]byte
		binary.BigEndian.PutUint32(siblingLen[:], uint32(len(sibling)))
		buf.Write(siblingLen[:])
		buf.Write(sibling)
	}
	return buf.Bytes()
}

func decodeMembershipProof(proof []byte) ([]byte, [][]byte, []bool, error) {
	if len(proof) < 4 {
		return nil, nil, nil, fmt.Errorf("zkproof: %w: truncated proof", ghosterr.ErrInvalidState)
	}
	memberLen := binary.BigEndian.Uint32(proof[:4])
	off := 4
	if off+int(memberLen) > len(proof) {
		return nil, nil, nil, fmt.Errorf("zkproof: %w: truncated member", ghosterr.ErrInvalidState)
	}
	member := proof[off : off+int(memberLen)]
	off += int(memberLen)
	if off+4 > len(proof) {
		return nil, nil, nil, fmt.Errorf("zkproof: %w: truncated path length", ghosterr.ErrInvalidState)
	}
	pathLen := binary.BigEndian.Uint32(proof[off : off+4])
	off += 4
	path := make([][]byte, 0, pathLen)
	sides := make([]bool, 0, pathLen)
	for i := uint32(0); i < pathLen; i++ {
		if off+1+4 > len(proof) {
			return nil, nil, nil, fmt.Errorf("zkproof: %w: truncated path entry", ghosterr.ErrInvalidState)
		}
		side := proof[off] == 1
		off++
		siblingLen := binary.BigEndian.Uint32(proof[off : off+4])
		off += 4
		if off+int(siblingLen) > len(proof) {
			return nil, nil, nil, fmt.Errorf("zkproof: %w: truncated sibling", ghosterr.ErrInvalidState)
		}
		sibling := proof[off : off+int(siblingLen)]
		off += int(siblingLen)
		path = append(path, sibling)
		sides = append(sides, side)
	}
	return member, path, sides, nil
}
