package protocol

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/ledger"
	"github.com/LashSesh/ghost-protocol/masking"
	"github.com/LashSesh/ghost-protocol/resonance"
	"github.com/LashSesh/ghost-protocol/transport"
	"github.com/LashSesh/ghost-protocol/zkproof"
)

// StatementResolver derives the zero-knowledge statement a decrypted
// transaction is claimed to satisfy. This is caller business logic
// (e.g. look up a public key, or a current Merkle root) — the core
// has no opinion on where statements come from, only that one must be
// resolvable from the recovered plaintext.
type StatementResolver func(unmaskedTx []byte, pkt *Packet) zkproof.Statement

// Outcome summarizes what a single Receive call did with a packet.
type Outcome struct {
	Committed   bool
	Forwarded   bool
	DecoyDrop   bool
	CommitBlock *ledger.Block
	Event       EventKind
}

// Receiver drives the Received → ResonanceChecked → Extracted →
// Unmasked → Verified → Committed state machine of spec §4.9.2,
// including the fail-fast rejection order of steps 1-9.
type Receiver struct {
	cfg       Config
	resolve   StatementResolver
	rateLimit *RateLimiter
	replay    *ReplayCache
	window    *AdaptiveTimestampWindow
	now       func() time.Time
}

// NewReceiver builds a Receiver over cfg, with rate limiting, replay
// detection, and adaptive timestamp checking wired to the spec
// defaults. resolve is consulted once a packet's transaction bytes
// have been recovered.
func NewReceiver(cfg Config, resolve StatementResolver) (*Receiver, error) {
	if cfg.Entropy == nil || cfg.ZK == nil || cfg.Ledger == nil {
		return nil, fmt.Errorf("protocol: new receiver: %w: entropy, zk operator, and ledger are required", ghosterr.ErrInvalidState)
	}
	replay, err := NewReplayCache(DefaultReplayCacheSize, DefaultReplayWindow)
	if err != nil {
		return nil, fmt.Errorf("protocol: new receiver: %w", err)
	}
	return &Receiver{
		cfg:       cfg,
		resolve:   resolve,
		rateLimit: NewRateLimiter(DefaultRateLimit, DefaultRateBurst),
		replay:    replay,
		window:    NewAdaptiveTimestampWindow(),
		now:       time.Now,
	}, nil
}

// Receive runs the full fail-fast rejection pipeline over wire bytes
// received from sourceID.
func (r *Receiver) Receive(ctx context.Context, sourceID string, wire []byte) (Outcome, error) {
	// Step 1: rate limit.
	if !r.rateLimit.Allow(sourceID) {
		r.emit(EventRateLimitReject, "", "source "+sourceID)
		r.incr(func(m *Metrics) { m.RateLimitRejects.Inc() })
		return Outcome{}, fmt.Errorf("protocol: receive: %w", ghosterr.ErrRateLimited)
	}

	pkt, err := Decode(wire)
	if err != nil {
		return Outcome{}, fmt.Errorf("protocol: receive: decode: %w", err)
	}
	r.incr(func(m *Metrics) { m.PacketsReceived.Inc() })
	packetIDHex := fmt.Sprintf("%x", pkt.PacketID)

	// Step 2: replay.
	if r.replay.SeenRecently(pkt.PacketID) {
		r.emit(EventReplayDetected, packetIDHex, "")
		r.incr(func(m *Metrics) { m.ReplayRejects.Inc() })
		return Outcome{}, fmt.Errorf("protocol: receive: %w", ghosterr.ErrReplay)
	}

	// Step 3: timestamp.
	nowUnix := r.now().Unix()
	delta := math.Abs(float64(nowUnix) - float64(pkt.Timestamp))
	if !r.window.Within(delta) {
		r.emit(EventTimestampReject, packetIDHex, "")
		r.incr(func(m *Metrics) { m.TimestampRejects.Inc() })
		return Outcome{}, fmt.Errorf("protocol: receive: %w", ghosterr.ErrTimestampOutOfWindow)
	}

	// Step 4: hop count.
	if pkt.HopCount > r.cfg.hMax() {
		r.emit(EventHopExceeded, packetIDHex, "")
		r.incr(func(m *Metrics) { m.HopExceeded.Inc() })
		return Outcome{}, nil
	}

	// Step 5: resonance.
	resonant := resonance.IsResonant(r.cfg.OwnResonance, pkt.SenderResonance, r.cfg.Window)
	if !resonant && pkt.TargetResonance != nil {
		resonant = resonance.IsResonant(r.cfg.OwnResonance, *pkt.TargetResonance, r.cfg.Window)
	}
	if !resonant {
		r.incr(func(m *Metrics) { m.ResonanceRejects.Inc() })
		return r.forward(ctx, pkt, wire)
	}

	// Packet resonates locally: this accepted timestamp informs the EMA.
	r.window.Accept(delta)

	// Step 6: extract (if carrier present).
	masked := pkt.Payload
	if pkt.CarrierTagPresent && r.cfg.Carrier != nil {
		masked, err = r.cfg.Carrier.Extract(pkt.Payload, pkt.CarrierInfo)
		if err != nil {
			return Outcome{}, fmt.Errorf("protocol: receive: extract: %w", err)
		}
	}

	// Step 7 prelude: packet.key_epoch must fall within the receiver's
	// own {current_epoch, current_epoch-1} grace window (invariant I5).
	// A claimed epoch any further back is rejected the same way a
	// stale timestamp is — this is what lets P8 reject at
	// current_epoch+2 even though the one-epoch unmask fallback below
	// would otherwise never get a chance to fail on its own.
	currentEpoch := masking.Epoch(nowUnix, r.cfg.EpochDurationSeconds)
	if pkt.KeyEpoch != currentEpoch && (currentEpoch == 0 || pkt.KeyEpoch != currentEpoch-1) {
		r.emit(EventTimestampReject, packetIDHex, "epoch grace window exceeded")
		r.incr(func(m *Metrics) { m.TimestampRejects.Inc() })
		return Outcome{}, fmt.Errorf("protocol: receive: %w: key_epoch outside grace window", ghosterr.ErrTimestampOutOfWindow)
	}

	// Step 7+8: unmask using the receiver's own current epoch first,
	// verify; only on verification failure retry unmask+verify one
	// epoch back (spec §4.9.2 step 7's one-epoch grace window covers
	// clock skew between sender and receiver at an epoch boundary —
	// the receiver does not simply trust packet.key_epoch as the
	// derivation input, it independently derives from its own clock
	// and falls back, matching P8's "accepted at e+1, rejected at
	// e+2" behavior).
	txBytes, err := r.unmaskAtEpoch(pkt, masked, currentEpoch)
	if err != nil {
		r.incr(func(m *Metrics) { m.MaskingFailures.Inc() })
		return Outcome{}, fmt.Errorf("protocol: receive: unmask: %w", err)
	}
	stmt := r.resolve(txBytes, pkt)
	verified := r.cfg.ZK.Verify(stmt, pkt.Proof)
	fellBack := false

	if !verified && currentEpoch > 0 {
		if fallbackTx, ferr := r.unmaskAtEpoch(pkt, masked, currentEpoch-1); ferr == nil {
			fallbackStmt := r.resolve(fallbackTx, pkt)
			if r.cfg.ZK.Verify(fallbackStmt, pkt.Proof) {
				txBytes, stmt, verified, fellBack = fallbackTx, fallbackStmt, true, true
			}
		}
	}

	if fellBack {
		r.emit(EventKeyRotationFallbck, packetIDHex, "")
		r.incr(func(m *Metrics) { m.KeyRotationFallback.Inc() })
	}

	if !verified {
		decoyStmt := stmt
		decoyStmt.Decoy = true
		if r.cfg.ZK.Verify(decoyStmt, pkt.Proof) {
			r.emit(EventDecoyDropped, packetIDHex, "")
			r.incr(func(m *Metrics) { m.DecoysDropped.Inc() })
			return Outcome{DecoyDrop: true, Event: EventDecoyDropped}, nil
		}
		r.emit(EventZkVerifyFailed, packetIDHex, "")
		r.incr(func(m *Metrics) { m.ZkVerifyFailures.Inc() })
		return Outcome{}, fmt.Errorf("protocol: receive: %w", ghosterr.ErrZkVerifyFailed)
	}

	// Step 9: commit.
	block, err := r.cfg.Ledger.CreateBlock(txBytes, ledger.ZeroHash)
	if err != nil {
		return Outcome{}, fmt.Errorf("protocol: receive: create block: %w", err)
	}
	if err := r.cfg.Ledger.Append(block); err != nil {
		if errors.Is(err, ghosterr.ErrIntegrity) {
			r.emit(EventLedgerIntegrity, packetIDHex, err.Error())
		}
		return Outcome{}, fmt.Errorf("protocol: receive: append: %w", err)
	}
	r.emit(EventCommitted, packetIDHex, "")
	r.incr(func(m *Metrics) { m.LedgerCommits.Inc() })
	return Outcome{Committed: true, CommitBlock: block, Event: EventCommitted}, nil
}

// forward increments hop_count and re-broadcasts to next hops chosen
// by the router over the packet's declared target resonance (spec
// §4.9.3). A packet at H_max is dropped silently with hop_exceeded.
func (r *Receiver) forward(ctx context.Context, pkt *Packet, originalWire []byte) (Outcome, error) {
	if pkt.HopCount >= r.cfg.hMax() {
		r.emit(EventHopExceeded, fmt.Sprintf("%x", pkt.PacketID), "")
		r.incr(func(m *Metrics) { m.HopExceeded.Inc() })
		return Outcome{}, nil
	}
	if r.cfg.Router == nil || r.cfg.Transport == nil {
		return Outcome{}, nil
	}

	targetS := pkt.SenderResonance
	if pkt.TargetResonance != nil {
		targetS = *pkt.TargetResonance
	}
	hops, err := r.cfg.Router.SelectNextHops(targetS, r.cfg.Window, 1, r.cfg.Entropy)
	if err != nil || len(hops) == 0 {
		return Outcome{}, nil
	}

	forwarded := *pkt
	forwarded.HopCount = pkt.HopCount + 1
	wire, err := forwarded.Encode()
	if err != nil {
		return Outcome{}, fmt.Errorf("protocol: forward: encode: %w", err)
	}
	for _, id := range hops {
		_ = r.cfg.Transport.Broadcast(ctx, wire, transport.UnicastHint(id))
	}
	return Outcome{Forwarded: true}, nil
}

// unmaskAtEpoch derives masking params for the given epoch and
// unmasks masked under them. Used both for the receiver's own current
// epoch and, on verification failure, the one-epoch-grace fallback.
func (r *Receiver) unmaskAtEpoch(pkt *Packet, masked []byte, epoch uint64) ([]byte, error) {
	senderS := pkt.SenderResonance
	targetS := r.cfg.OwnResonance
	if pkt.TargetResonance != nil {
		targetS = *pkt.TargetResonance
	}

	params, err := masking.DeriveParamsFromResonance(r.cfg.RootSeed, senderS, targetS, epoch, false, r.cfg.Entropy)
	if err != nil {
		return nil, err
	}
	params.EphemeralKey = pkt.EphemeralKey
	return masking.Unmask(masked, params)
}

func (r *Receiver) emit(kind EventKind, packetID, detail string) {
	if r.cfg.SecurityLog != nil {
		r.cfg.SecurityLog.Emit(kind, packetID, detail)
	}
}

func (r *Receiver) incr(fn func(*Metrics)) {
	if r.cfg.Metrics != nil {
		fn(r.cfg.Metrics)
	}
}
