// Package stego implements C5 of the Ghost Protocol core: optional
// steganographic embedding of a masked payload into a text or image
// carrier, per spec §4.5. Payload length for the image carrier is an
// explicit 4-byte big-endian prefix (spec §9 resolves the legacy
// null-terminator ambiguity in favor of this explicit scheme); a
// compatibility extractor for legacy null-terminated carriers is
// offered separately.
package stego

import (
	"encoding/binary"
	"fmt"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

const (
	zeroBit = '\u200B' // zero-width space: bit 0
	oneBit  = '\u200C' // zero-width non-joiner: bit 1

	lengthPrefixBytes = 4
)

// EmbedZeroWidthText encodes payload as zero-width Unicode code points
// appended to base: each byte becomes 8 bits, bit 0 -> U+200B, bit 1 ->
// U+200C, most-significant bit first.
func EmbedZeroWidthText(payload []byte, base string) string {
	runes := make([]rune, 0, len(payload)*8)
	for _, b := range payload {
		for bit := 7; bit >= 0; bit-- {
			if (b>>uint(bit))&1 == 1 {
				runes = append(runes, oneBit)
			} else {
				runes = append(runes, zeroBit)
			}
		}
	}
	return base + string(runes)
}

// ExtractZeroWidthText scans carrier for a run of zero-width code
// points and reconstructs the payload. A partial trailing group
// (fewer than 8 bits) is rejected.
func ExtractZeroWidthText(carrier string) ([]byte, error) {
	var bits []byte
	for _, r := range carrier {
		switch r {
		case zeroBit:
			bits = append(bits, 0)
		case oneBit:
			bits = append(bits, 1)
		}
	}
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("stego: %w: partial trailing bit group", ghosterr.ErrInvalidState)
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | bits[i*8+j]
		}
		out[i] = b
	}
	return out, nil
}

// ImageCapacity returns the maximum payload size (bytes) embeddable in
// an image carrier of the given length, reserving 32 bits for the
// length prefix: floor((len(carrier) - 32) / 8).
func ImageCapacity(carrierLen int) int {
	bits := carrierLen - lengthPrefixBytes*8
	if bits <= 0 {
		return 0
	}
	return bits / 8
}

// EmbedImageBytes embeds payload into carrier's least-significant bits,
// sequentially, length-prefixed by a 4-byte big-endian length. Returns
// a new slice; carrier is not mutated.
func EmbedImageBytes(payload []byte, carrier []byte) ([]byte, error) {
	capacity := ImageCapacity(len(carrier))
	if len(payload) > capacity {
		return nil, fmt.Errorf("stego: embed image: %w: need %d bytes, capacity %d", ghosterr.ErrCapacityExceeded, len(payload), capacity)
	}
	out := make([]byte, len(carrier))
	copy(out, carrier)

	var lenPrefix [lengthPrefixBytes]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(payload)))

	full := make([]byte, 0, lengthPrefixBytes+len(payload))
	full = append(full, lenPrefix[:]...)
	full = append(full, payload...)

	bitIdx := 0
	for _, b := range full {
		for bit := 7; bit >= 0; bit-- {
			out[bitIdx] = (out[bitIdx] &^ 1) | ((b >> uint(bit)) & 1)
			bitIdx++
		}
	}
	return out, nil
}

// ExtractImageBytes recovers the length-prefixed payload embedded by
// EmbedImageBytes.
func ExtractImageBytes(carrier []byte) ([]byte, error) {
	if len(carrier) < lengthPrefixBytes*8 {
		return nil, fmt.Errorf("stego: extract image: %w: carrier too small for length prefix", ghosterr.ErrInvalidState)
	}
	readByte := func(bitOffset int) byte {
		var b byte
		for i := 0; i < 8; i++ {
			b = (b << 1) | (carrier[bitOffset+i] & 1)
		}
		return b
	}
	var lenPrefix [lengthPrefixBytes]byte
	for i := 0; i < lengthPrefixBytes; i++ {
		lenPrefix[i] = readByte(i * 8)
	}
	n := int(binary.BigEndian.Uint32(lenPrefix[:]))
	needBits := lengthPrefixBytes*8 + n*8
	if needBits > len(carrier) {
		return nil, fmt.Errorf("stego: extract image: %w: declared length %d exceeds carrier", ghosterr.ErrInvalidState, n)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = readByte(lengthPrefixBytes*8 + i*8)
	}
	return out, nil
}

// ExtractImageLegacyNullTerminated is a compatibility shim for legacy
// carriers that used an implicit null-terminator instead of the
// explicit length prefix this spec mandates (see spec §9). It scans
// LSBs until a zero byte is observed and returns everything before it.
// Not used by the protocol layer; offered only for ingesting legacy
// data.
func ExtractImageLegacyNullTerminated(carrier []byte) []byte {
	var out []byte
	for i := 0; i+8 <= len(carrier); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | (carrier[i+j] & 1)
		}
		if b == 0 {
			break
		}
		out = append(out, b)
	}
	return out
}
