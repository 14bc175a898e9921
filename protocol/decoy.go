package protocol

import (
	"context"
	"time"

	"github.com/LashSesh/ghost-protocol/entropy"
	"github.com/LashSesh/ghost-protocol/resonance"
)

// DecoyScheduler emits cover packets with random resonance and
// random payload length matching real packets, on a Poisson schedule
// (spec §4.9.3), to resist traffic analysis. Decoys are indistinguishable
// on the wire except that their zk_proof is over a DecoyStatement a
// verifier recognizes and drops without a ledger commit.
type DecoyScheduler struct {
	src         entropy.Source
	rate        float64 // decoys per second (Poisson rate)
	payloadSize int
}

// NewDecoyScheduler builds a scheduler emitting decoys at the given
// mean rate (per second), each with a payload of payloadSize bytes.
func NewDecoyScheduler(src entropy.Source, ratePerSecond float64, payloadSize int) *DecoyScheduler {
	return &DecoyScheduler{src: src, rate: ratePerSecond, payloadSize: payloadSize}
}

// NextInterval draws the wait time until the next decoy emission from
// an exponential distribution, via C1.ExponentialInterval.
func (d *DecoyScheduler) NextInterval() time.Duration {
	seconds := d.src.ExponentialInterval(d.rate)
	return time.Duration(seconds * float64(time.Second))
}

// RandomState draws a random resonance state for a decoy packet,
// scaled into a modest range so its strength computations remain
// well-defined.
func (d *DecoyScheduler) RandomState() (resonance.State, error) {
	return resonance.New(
		d.src.UniformFloat64()*10,
		d.src.UniformFloat64()*10,
		d.src.UniformFloat64()*10,
	)
}

// RandomPayload draws payloadSize random bytes for a decoy's payload.
func (d *DecoyScheduler) RandomPayload() []byte {
	buf := make([]byte, d.payloadSize)
	d.src.FillBytes(buf)
	return buf
}

// Run emits decoys via emit on a Poisson schedule until ctx is
// canceled. emit is expected to build and broadcast a full decoy
// packet (using RandomState/RandomPayload and a DecoyStatement proof).
func (d *DecoyScheduler) Run(ctx context.Context, emit func(resonance.State, []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.NextInterval()):
			s, err := d.RandomState()
			if err != nil {
				continue
			}
			_ = emit(s, d.RandomPayload())
		}
	}
}
