// Package ledger implements C7 of the Ghost Protocol core: a
// deterministic, canonical-JSON-based append-only block ledger with
// hash chaining, a genesis anchor, and full-chain integrity
// verification. Distribution across nodes is explicitly out of scope
// (spec §1 Non-goal); this is a local append-only log.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ZeroHash is the all-zeros 64-hex-char anchor used as the genesis
// block's prev_hash.
const ZeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Block is the ledger's unit of append. Hash is computed over the
// canonical JSON of every other field (spec invariant I1).
type Block struct {
	Index        uint64      `json:"index"`
	PrevHash     string      `json:"prev_hash"`
	Timestamp    int64       `json:"timestamp"`
	TicData      interface{} `json:"tic_data"`
	SnapshotHash string      `json:"snapshot_hash"`
	Hash         string      `json:"hash"`
}

// hashInput is the five-field struct canonicalized and hashed; it
// never carries a Hash field itself (I1: the hash is computed OVER
// everything else).
type hashInput struct {
	Index        uint64      `json:"index"`
	PrevHash     string      `json:"prev_hash"`
	SnapshotHash string      `json:"snapshot_hash"`
	TicData      interface{} `json:"tic_data"`
	Timestamp    int64       `json:"timestamp"`
}

// ComputeHash returns the SHA-256 hex digest of the canonical JSON
// encoding of the given block fields, per spec §3/§4.7.
func ComputeHash(index uint64, prevHash string, timestamp int64, ticData interface{}, snapshotHash string) (string, error) {
	canonical, err := CanonicalJSON(hashInput{
		Index:        index,
		PrevHash:     prevHash,
		SnapshotHash: snapshotHash,
		TicData:      ticData,
		Timestamp:    timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("ledger: compute hash: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes b.Hash from its other fields and reports whether
// it matches the stored value (spec invariant I1).
func (b *Block) Verify() (bool, error) {
	want, err := ComputeHash(b.Index, b.PrevHash, b.Timestamp, b.TicData, b.SnapshotHash)
	if err != nil {
		return false, err
	}
	return want == b.Hash, nil
}
