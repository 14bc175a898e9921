// Package masking implements C3 of the Ghost Protocol core: the
// permutation-free keystream-XOR masking operator keyed by
// (seed, phase, epoch, optional ephemeral key), involutive and
// deterministic for fixed parameters, plus resonance-derived parameter
// derivation for forward secrecy.
package masking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/hkdf"

	"github.com/LashSesh/ghost-protocol/entropy"
	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/resonance"
)

const (
	minSeedLen  = 16
	minPhaseLen = 16
	ephemKeyLen = 32
)

// Params are the masking parameters P = (seed, phase, epoch, ephemeral_key)
// of spec §3.
type Params struct {
	Seed         []byte
	Phase        []byte
	Epoch        uint64
	EphemeralKey []byte // optional, len ephemKeyLen when present
}

func (p Params) validate() error {
	if len(p.Seed) < minSeedLen {
		return fmt.Errorf("masking: %w: seed shorter than %d bytes", ghosterr.ErrInvalidState, minSeedLen)
	}
	if len(p.Phase) < minPhaseLen {
		return fmt.Errorf("masking: %w: phase shorter than %d bytes", ghosterr.ErrInvalidState, minPhaseLen)
	}
	if p.EphemeralKey != nil && len(p.EphemeralKey) != ephemKeyLen {
		return fmt.Errorf("masking: %w: ephemeral key must be %d bytes", ghosterr.ErrInvalidState, ephemKeyLen)
	}
	return nil
}

// finalKey computes K = SHA256(seed || phase || LE64(epoch) || ["ephemeral" || ephemeral_key]?)
// per spec §3.
func (p Params) finalKey() []byte {
	h := sha256.New()
	h.Write(p.Seed)
	h.Write(p.Phase)
	var epochLE [8]byte
	binary.LittleEndian.PutUint64(epochLE[:], p.Epoch)
	h.Write(epochLE[:])
	if p.EphemeralKey != nil {
		h.Write([]byte("ephemeral"))
		h.Write(p.EphemeralKey)
	}
	return h.Sum(nil)
}

// Epoch returns floor(unixSeconds / epochDurationSeconds), the epoch
// definition of spec §3 (default duration 3600s, overridable per
// §6.4's GHOST_EPOCH_DURATION_SECONDS).
func Epoch(unixSeconds int64, epochDurationSeconds uint64) uint64 {
	if epochDurationSeconds == 0 {
		epochDurationSeconds = 3600
	}
	if unixSeconds < 0 {
		unixSeconds = 0
	}
	return uint64(unixSeconds) / epochDurationSeconds
}

// expandRootSeed stretches a possibly-short root seed to comfortable
// headroom (64 bytes) via HKDF-SHA256 before it is split into the
// per-message seed/phase material below. This is additive key
// hygiene, not a substitute for the HMAC-SHA-256 personalisation
// scheme spec §4.3 mandates.
func expandRootSeed(root []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, root, nil, []byte(info))
	out := make([]byte, 64)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("masking: expand root seed: %w", err)
	}
	return out, nil
}

// DeriveParamsFromResonance mixes the sender and target resonance
// coordinates and the epoch into (seed, phase) via two distinct
// HMAC-SHA-256 personalisations, "gp-seed" and "gp-phase", per spec
// §4.3. If enableForwardSecrecy is true, a fresh ephemeral key is
// drawn from the entropy source and stored in the returned Params.
func DeriveParamsFromResonance(rootSeed []byte, sender, target resonance.State, epoch uint64, enableForwardSecrecy bool, src entropy.Source) (Params, error) {
	expanded, err := expandRootSeed(rootSeed, "gp-root-expand")
	if err != nil {
		return Params{}, err
	}

	mix := encodeMixInput(sender, target, epoch)

	seedMAC := hmac.New(sha256.New, expanded)
	seedMAC.Write([]byte("gp-seed"))
	seedMAC.Write(mix)
	seed := seedMAC.Sum(nil)

	phaseMAC := hmac.New(sha256.New, expanded)
	phaseMAC.Write([]byte("gp-phase"))
	phaseMAC.Write(mix)
	phase := phaseMAC.Sum(nil)

	p := Params{Seed: seed, Phase: phase, Epoch: epoch}
	if enableForwardSecrecy {
		ek := make([]byte, ephemKeyLen)
		src.FillBytes(ek)
		p.EphemeralKey = ek
	}
	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func encodeMixInput(sender, target resonance.State, epoch uint64) []byte {
	buf := make([]byte, 0, 8*6+8)
	appendF64 := func(v float64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
		buf = append(buf, b[:]...)
	}
	appendF64(sender.Psi)
	appendF64(sender.Rho)
	appendF64(sender.Omega)
	appendF64(target.Psi)
	appendF64(target.Rho)
	appendF64(target.Omega)
	var epochLE [8]byte
	binary.BigEndian.PutUint64(epochLE[:], epoch)
	buf = append(buf, epochLE[:]...)
	return buf
}
