// Package transport defines the Ghost Protocol's transport seam
// (C10): the two operations the core consumes from its environment,
// and an in-memory Loopback reference implementation. Implementations
// choose TCP/UDP/QUIC/in-memory; the core tolerates drops,
// duplicates, and reorderings from any of them (spec §6.1).
package transport

import (
	"context"
	"fmt"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

// HintKind distinguishes a unicast send from a broadcast-to-all-neighbors send.
type HintKind int

const (
	// Unicast sends to exactly one neighbor, identified by ID.
	Unicast HintKind = iota
	// AllNeighbors sends to every currently known live neighbor.
	AllNeighbors
)

// Hint tells Sink which neighbors should receive a broadcast.
type Hint struct {
	Kind HintKind
	ID   string // meaningful only when Kind == Unicast
}

// UnicastHint builds a Hint targeting exactly one neighbor.
func UnicastHint(id string) Hint { return Hint{Kind: Unicast, ID: id} }

// BroadcastHint builds a Hint targeting every live neighbor.
func BroadcastHint() Hint { return Hint{Kind: AllNeighbors} }

// Received pairs an opaque source identifier with the raw packet
// bytes the core should parse.
type Received struct {
	SourceID opaqueID
	Packet   []byte
}

type opaqueID = string

// Sink is the outbound half of the transport seam.
type Sink interface {
	Broadcast(ctx context.Context, packetBytes []byte, hint Hint) error
}

// Source is the inbound half of the transport seam: a stream of
// (source_id, packet_bytes) pairs. Receive blocks until a packet
// arrives or ctx is canceled.
type Source interface {
	Receive(ctx context.Context) (Received, error)
}

// SinkSource composes both halves, as most concrete transports do.
type SinkSource interface {
	Sink
	Source
}

func wrapTransportErr(op string, err error) error {
	return fmt.Errorf("transport: %s: %w: %v", op, ghosterr.ErrTransport, err)
}
