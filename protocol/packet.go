// Package protocol implements C9 of the Ghost Protocol core: the
// Ghost Packet wire format, and the sender/receiver state machines
// that drive C1/C3/C4/C5/C6/C7/C8/C10 to send and receive masked,
// steganographically-embedded, zero-knowledge-proven transactions.
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/resonance"
)

// Magic and Version are the packet's fixed header bytes (spec §6.2).
var Magic = [4]byte{'G', 'H', 'S', 'T'}

const Version = uint8(1)

const (
	flagHasEphemeralKey = 1 << 0
	flagHasTargetHint   = 1 << 1
	flagHasCarrier      = 1 << 2
)

// CarrierTag identifies which steganography carrier a packet's
// payload was embedded with, for Extract dispatch on receive.
type CarrierTag uint8

const (
	CarrierNone CarrierTag = iota
	CarrierZeroWidthText
	CarrierImageLSB
)

// Packet is the in-memory representation of a Ghost Packet. Two
// packets are equal iff Encode produces byte-identical output (spec
// §6.2).
type Packet struct {
	PacketID          [16]byte
	KeyEpoch          uint64
	Timestamp         uint64
	HopCount          uint8
	SenderResonance   resonance.State
	EphemeralKey      []byte // 32 bytes, or nil
	TargetResonance   *resonance.State
	CarrierTag        CarrierTag
	CarrierTagPresent bool
	CarrierInfo       []byte
	Payload           []byte
	Proof             []byte
}

// Encode renders p in the exact binary layout spec §6.2 mandates.
func (p *Packet) Encode() ([]byte, error) {
	if len(p.EphemeralKey) != 0 && len(p.EphemeralKey) != 32 {
		return nil, fmt.Errorf("protocol: encode: %w: ephemeral key must be 32 bytes", ghosterr.ErrInvalidState)
	}

	var flags uint8
	if len(p.EphemeralKey) == 32 {
		flags |= flagHasEphemeralKey
	}
	if p.TargetResonance != nil {
		flags |= flagHasTargetHint
	}
	if p.CarrierTagPresent {
		flags |= flagHasCarrier
	}

	buf := make([]byte, 0, 4+1+16+8+8+1+1+24+len(p.Payload)+len(p.Proof)+64)
	buf = append(buf, Magic[:]...)
	buf = append(buf, Version)
	buf = append(buf, p.PacketID[:]...)
	buf = appendU64(buf, p.KeyEpoch)
	buf = appendU64(buf, p.Timestamp)
	buf = append(buf, p.HopCount, flags)
	buf = appendState(buf, p.SenderResonance)

	if flags&flagHasEphemeralKey != 0 {
		buf = append(buf, p.EphemeralKey...)
	}
	if flags&flagHasTargetHint != 0 {
		buf = appendState(buf, *p.TargetResonance)
	}
	if flags&flagHasCarrier != 0 {
		buf = append(buf, byte(p.CarrierTag))
		buf = appendU32(buf, uint32(len(p.CarrierInfo)))
		buf = append(buf, p.CarrierInfo...)
	}

	buf = appendU32(buf, uint32(len(p.Payload)))
	buf = append(buf, p.Payload...)
	buf = appendU32(buf, uint32(len(p.Proof)))
	buf = append(buf, p.Proof...)
	return buf, nil
}

// Decode parses the exact binary layout spec §6.2 mandates, rejecting
// unrecognized version bytes with ghosterr.ErrVersionMismatch.
func Decode(raw []byte) (*Packet, error) {
	r := &reader{buf: raw}

	magic, err := r.take(4)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: magic: %w", err)
	}
	if string(magic) != string(Magic[:]) {
		return nil, fmt.Errorf("protocol: decode: %w: bad magic", ghosterr.ErrVersionMismatch)
	}
	version, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("protocol: decode: %w: version %d", ghosterr.ErrVersionMismatch, version)
	}

	p := &Packet{}
	idBytes, err := r.take(16)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: packet_id: %w", err)
	}
	copy(p.PacketID[:], idBytes)

	p.KeyEpoch, err = r.u64()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: key_epoch: %w", err)
	}
	p.Timestamp, err = r.u64()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: timestamp: %w", err)
	}
	p.HopCount, err = r.byte()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: hop_count: %w", err)
	}
	flags, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: flags: %w", err)
	}

	p.SenderResonance, err = r.state()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: sender_S: %w", err)
	}

	if flags&flagHasEphemeralKey != 0 {
		p.EphemeralKey, err = r.take(32)
		if err != nil {
			return nil, fmt.Errorf("protocol: decode: ephemeral_key: %w", err)
		}
	}
	if flags&flagHasTargetHint != 0 {
		s, err := r.state()
		if err != nil {
			return nil, fmt.Errorf("protocol: decode: target_S: %w", err)
		}
		p.TargetResonance = &s
	}
	if flags&flagHasCarrier != 0 {
		tag, err := r.byte()
		if err != nil {
			return nil, fmt.Errorf("protocol: decode: carrier_tag: %w", err)
		}
		p.CarrierTag = CarrierTag(tag)
		p.CarrierTagPresent = true
		length, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("protocol: decode: carrier_len: %w", err)
		}
		p.CarrierInfo, err = r.take(int(length))
		if err != nil {
			return nil, fmt.Errorf("protocol: decode: carrier_info: %w", err)
		}
	}

	payloadLen, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: payload_len: %w", err)
	}
	p.Payload, err = r.take(int(payloadLen))
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: payload: %w", err)
	}

	proofLen, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: proof_len: %w", err)
	}
	p.Proof, err = r.take(int(proofLen))
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: proof: %w", err)
	}

	if !r.exhausted() {
		return nil, fmt.Errorf("protocol: decode: %w: trailing bytes", ghosterr.ErrInvalidState)
	}
	return p, nil
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendState(buf []byte, s resonance.State) []byte {
	buf = appendU64(buf, math.Float64bits(s.Psi))
	buf = appendU64(buf, math.Float64bits(s.Rho))
	buf = appendU64(buf, math.Float64bits(s.Omega))
	return buf
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("short buffer")
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) state() (resonance.State, error) {
	psiBits, err := r.u64()
	if err != nil {
		return resonance.State{}, err
	}
	rhoBits, err := r.u64()
	if err != nil {
		return resonance.State{}, err
	}
	omegaBits, err := r.u64()
	if err != nil {
		return resonance.State{}, err
	}
	return resonance.State{
		Psi:   math.Float64frombits(psiBits),
		Rho:   math.Float64frombits(rhoBits),
		Omega: math.Float64frombits(omegaBits),
	}, nil
}

func (r *reader) exhausted() bool { return r.pos == len(r.buf) }
