package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

// Chain is a single-writer, many-reader append-only block log. Append
// is serialized via mu; readers may snapshot Blocks() and verify
// concurrently with an ongoing append (spec §4.7 concurrency note).
type Chain struct {
	mu     sync.Mutex
	blocks []*Block
	dir    string // optional on-disk persistence directory (spec §6.3); empty = in-memory only
	clock  clock.Clock
}

// NewChain constructs an empty in-memory chain. Use OpenChain to load
// (or initialize) a chain backed by an on-disk directory.
func NewChain() *Chain {
	return &Chain{clock: clock.New()}
}

// OpenChain loads an existing on-disk chain (per the block_<index>.json
// / index.json layout of spec §6.3), or initializes an empty directory
// if none exists yet.
func OpenChain(dir string) (*Chain, error) {
	c := &Chain{dir: dir, clock: clock.New()}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ledger: open chain: mkdir: %w", err)
	}
	idxPath := filepath.Join(dir, "index.json")
	raw, err := os.ReadFile(idxPath)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: open chain: read index: %w", err)
	}
	var idx chainIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("ledger: open chain: decode index: %w", err)
	}
	for i := uint64(0); i < idx.Count; i++ {
		blockPath := filepath.Join(dir, fmt.Sprintf("block_%d.json", i))
		braw, err := os.ReadFile(blockPath)
		if err != nil {
			return nil, fmt.Errorf("ledger: open chain: read block %d: %w", i, err)
		}
		var b Block
		if err := json.Unmarshal(braw, &b); err != nil {
			return nil, fmt.Errorf("ledger: open chain: decode block %d: %w", i, err)
		}
		c.blocks = append(c.blocks, &b)
	}
	logrus.WithField("height", len(c.blocks)).Info("ledger: loaded chain from disk")
	return c, nil
}

// SetClock overrides the chain's time source, for deterministic tests.
func (c *Chain) SetClock(clk clock.Clock) { c.clock = clk }

type chainIndex struct {
	LastIndex uint64 `json:"last_index"`
	LastHash  string `json:"last_hash"`
	Count     uint64 `json:"count"`
}

// CreateBlock computes index = len(chain), prev_hash = tip hash (or
// ZeroHash for genesis), a normalized timestamp, and hashes the
// canonical JSON of the result, per spec §4.7. The block is NOT
// appended; call Append separately.
func (c *Chain) CreateBlock(ticData interface{}, snapshotHash string) (*Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := uint64(len(c.blocks))
	prevHash := ZeroHash
	if index > 0 {
		prevHash = c.blocks[index-1].Hash
	}
	timestamp := c.clock.Now().Unix()

	hash, err := ComputeHash(index, prevHash, timestamp, ticData, snapshotHash)
	if err != nil {
		return nil, err
	}
	return &Block{
		Index:        index,
		PrevHash:     prevHash,
		Timestamp:    timestamp,
		TicData:      ticData,
		SnapshotHash: snapshotHash,
		Hash:         hash,
	}, nil
}

// Append validates b.PrevHash against the current tip and b.Hash
// against a fresh recomputation, then appends. On mismatch it returns
// an IntegrityError and does not mutate the chain (spec §4.7/§7: the
// core never attempts automatic repair).
func (c *Chain) Append(b *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wantIndex := uint64(len(c.blocks))
	wantPrevHash := ZeroHash
	if wantIndex > 0 {
		wantPrevHash = c.blocks[wantIndex-1].Hash
	}
	if b.Index != wantIndex {
		return fmt.Errorf("ledger: append: %w: index %d, want %d", ghosterr.ErrIntegrity, b.Index, wantIndex)
	}
	if b.PrevHash != wantPrevHash {
		return fmt.Errorf("ledger: append: %w: prev_hash mismatch", ghosterr.ErrIntegrity)
	}
	recomputed, err := ComputeHash(b.Index, b.PrevHash, b.Timestamp, b.TicData, b.SnapshotHash)
	if err != nil {
		return err
	}
	if recomputed != b.Hash {
		return fmt.Errorf("ledger: append: %w: hash does not match canonical encoding", ghosterr.ErrIntegrity)
	}

	if c.dir != "" {
		if err := c.persist(b); err != nil {
			return fmt.Errorf("ledger: append: persist: %w", err)
		}
	}
	c.blocks = append(c.blocks, b)
	logrus.WithFields(logrus.Fields{"index": b.Index, "hash": b.Hash}).Debug("ledger: block appended")
	return nil
}

func (c *Chain) persist(b *Block) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	blockPath := filepath.Join(c.dir, fmt.Sprintf("block_%d.json", b.Index))
	if err := os.WriteFile(blockPath, raw, 0o644); err != nil {
		return err
	}
	idx := chainIndex{LastIndex: b.Index, LastHash: b.Hash, Count: b.Index + 1}
	idxRaw, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), idxRaw, 0o644)
}

// VerifyChain recomputes every hash and every prev-hash link starting
// at fromIndex, failing fast on the first violation (spec §4.7,
// testable property P3).
func (c *Chain) VerifyChain(fromIndex uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := fromIndex; i < uint64(len(c.blocks)); i++ {
		b := c.blocks[i]
		ok, err := b.Verify()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ledger: verify chain: %w: block %d hash mismatch", ghosterr.ErrIntegrity, i)
		}
		wantPrev := ZeroHash
		if i > 0 {
			wantPrev = c.blocks[i-1].Hash
		}
		if b.PrevHash != wantPrev {
			return fmt.Errorf("ledger: verify chain: %w: block %d prev_hash mismatch", ghosterr.ErrIntegrity, i)
		}
	}
	return nil
}

// Stats summarizes the chain's current extent.
type Stats struct {
	Height         uint64
	FirstTimestamp int64
	LastTimestamp  int64
}

func (c *Chain) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.blocks) == 0 {
		return Stats{}
	}
	return Stats{
		Height:         uint64(len(c.blocks)),
		FirstTimestamp: c.blocks[0].Timestamp,
		LastTimestamp:  c.blocks[len(c.blocks)-1].Timestamp,
	}
}

// Blocks returns a snapshot copy of the current chain. Safe to call
// concurrently with Append.
func (c *Chain) Blocks() []*Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Tip returns the last block, or nil if the chain is empty.
func (c *Chain) Tip() *Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.blocks) == 0 {
		return nil
	}
	return c.blocks[len(c.blocks)-1]
}
