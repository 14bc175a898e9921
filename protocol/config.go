package protocol

import (
	"github.com/LashSesh/ghost-protocol/entropy"
	"github.com/LashSesh/ghost-protocol/ledger"
	"github.com/LashSesh/ghost-protocol/resonance"
	"github.com/LashSesh/ghost-protocol/router"
	"github.com/LashSesh/ghost-protocol/transport"
	"github.com/LashSesh/ghost-protocol/zkproof"
)

// DefaultHMax is the default maximum hop count of spec §4.9.2 step 4.
const DefaultHMax = 16

// LedgerWriter is the narrow slice of ledger.Chain the receive
// pipeline needs, mirroring the teacher's txPool/networkAdapter
// consumer-defined-interface pattern so protocol never imports a
// concrete ledger beyond this contract.
type LedgerWriter interface {
	CreateBlock(ticData interface{}, snapshotHash string) (*ledger.Block, error)
	Append(b *ledger.Block) error
}

// HopRouter is the narrow slice of router.Table the send/forward path
// needs.
type HopRouter interface {
	SelectNextHops(targetS resonance.State, w resonance.Window, k int, src entropy.Source) ([]string, error)
	UpdateNeighbor(id string, s resonance.State)
}

// Carrier optionally wraps a masked payload in a steganography
// carrier before it goes on the wire, and reverses the embedding on
// receive.
type Carrier interface {
	Tag() CarrierTag
	Embed(masked []byte) (onWire []byte, info []byte, err error)
	Extract(onWire []byte, info []byte) ([]byte, error)
}

// Config assembles every collaborator the Sender/Receiver state
// machines depend on (spec §6.4: everything except the two env vars
// is passed as an in-memory struct at construction time).
type Config struct {
	RootSeed             []byte
	EpochDurationSeconds uint64
	OwnResonance         resonance.State
	Window               resonance.Window
	HMax                 uint8
	EnableForwardSecrecy bool

	Entropy     entropy.Source
	Ledger      LedgerWriter
	Router      HopRouter
	Transport   transport.Sink
	ZK          zkproof.Operator
	Carrier     Carrier
	Metrics     *Metrics
	SecurityLog *SecurityLog
}

func (c Config) hMax() uint8 {
	if c.HMax == 0 {
		return DefaultHMax
	}
	return c.HMax
}
