package protocol

import (
	"context"
	"fmt"

	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/masking"
	"github.com/LashSesh/ghost-protocol/resonance"
	"github.com/LashSesh/ghost-protocol/transport"
	"github.com/LashSesh/ghost-protocol/zkproof"
)

// Sender drives the Draft → Masked → Embedded → Broadcast state
// machine of spec §4.9.1.
type Sender struct {
	cfg Config
}

// NewSender builds a Sender over cfg. cfg.Entropy, cfg.Transport, and
// cfg.ZK must be non-nil; cfg.Router is optional and only consulted
// for unicast sends.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.Entropy == nil || cfg.Transport == nil || cfg.ZK == nil {
		return nil, fmt.Errorf("protocol: new sender: %w: entropy, transport, and zk operator are required", ghosterr.ErrInvalidState)
	}
	return &Sender{cfg: cfg}, nil
}

// SendRequest is the caller-supplied intent: a transaction to deliver
// toward targetResonance (or broadcast to all live neighbors if
// unicast is false), proven under stmt/witness.
type SendRequest struct {
	TxBytes         []byte
	TargetResonance resonance.State
	Unicast         bool
	Stmt            zkproof.Statement
	Witness         zkproof.Witness
	NextHopCount    int // how many next hops to select for unicast-like modes
	Now             int64
}

// Send runs the full Draft→Masked→Embedded→Broadcast pipeline and
// hands the wire bytes to the configured transport for every chosen
// recipient.
func (s *Sender) Send(ctx context.Context, req SendRequest) error {
	// 1. Create.
	var packetID [16]byte
	s.cfg.Entropy.FillBytes(packetID[:])
	epoch := masking.Epoch(req.Now, s.cfg.EpochDurationSeconds)

	proof, err := s.cfg.ZK.Prove(req.Stmt, req.Witness, nil)
	if err != nil {
		return fmt.Errorf("protocol: send: zk prove: %w", err)
	}

	// 2. Mask.
	params, err := masking.DeriveParamsFromResonance(
		s.cfg.RootSeed, s.cfg.OwnResonance, req.TargetResonance, epoch,
		s.cfg.EnableForwardSecrecy, s.cfg.Entropy,
	)
	if err != nil {
		return fmt.Errorf("protocol: send: derive params: %w", err)
	}
	masked, err := masking.Mask(req.TxBytes, params)
	if err != nil {
		return fmt.Errorf("protocol: send: mask: %w", err)
	}

	p := &Packet{
		PacketID:        packetID,
		KeyEpoch:        epoch,
		Timestamp:       uint64(req.Now),
		SenderResonance: s.cfg.OwnResonance,
		TargetResonance: &req.TargetResonance,
		EphemeralKey:    params.EphemeralKey,
		Payload:         masked,
		Proof:           proof,
	}

	// 3. Embed (optional).
	if s.cfg.Carrier != nil {
		onWire, info, err := s.cfg.Carrier.Embed(masked)
		if err != nil {
			return fmt.Errorf("protocol: send: embed: %w", err)
		}
		p.Payload = onWire
		p.CarrierTag = s.cfg.Carrier.Tag()
		p.CarrierTagPresent = true
		p.CarrierInfo = info
	}

	wire, err := p.Encode()
	if err != nil {
		return fmt.Errorf("protocol: send: encode: %w", err)
	}

	// 4. Broadcast.
	hint := transport.BroadcastHint()
	if req.Unicast && s.cfg.Router != nil {
		k := req.NextHopCount
		if k <= 0 {
			k = 1
		}
		hops, err := s.cfg.Router.SelectNextHops(req.TargetResonance, s.cfg.Window, k, s.cfg.Entropy)
		if err != nil {
			return fmt.Errorf("protocol: send: select next hops: %w", err)
		}
		if len(hops) == 0 {
			return fmt.Errorf("protocol: send: %w: no resonant next hop available", ghosterr.ErrResonanceMismatch)
		}
		for _, id := range hops {
			if err := s.cfg.Transport.Broadcast(ctx, wire, transport.UnicastHint(id)); err != nil {
				return fmt.Errorf("protocol: send: broadcast: %w", err)
			}
		}
	} else {
		if err := s.cfg.Transport.Broadcast(ctx, wire, hint); err != nil {
			return fmt.Errorf("protocol: send: broadcast: %w", err)
		}
	}

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.PacketsSent.Inc()
	}
	return nil
}
