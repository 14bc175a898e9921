package masking

import (
	"crypto/sha256"
	"encoding/binary"
)

// Mask XORs plain against a keystream derived from P. The operator is
// its own inverse: Unmask(Mask(m, P), P) == m for any m and valid P
// (spec invariant I3 / testable property P1).
func Mask(plain []byte, p Params) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	ks := keystream(p, len(plain))
	out := make([]byte, len(plain))
	for i := range plain {
		out[i] = plain[i] ^ ks[i]
	}
	return out, nil
}

// Unmask is Mask's inverse (XOR is involutive against the same
// keystream).
func Unmask(cipher []byte, p Params) ([]byte, error) {
	return Mask(cipher, p)
}

// keystream generates length bytes by iterating SHA-256 over
// (K || LE64(block_index)) per spec §4.3.
func keystream(p Params, length int) []byte {
	k := p.finalKey()
	out := make([]byte, 0, length+sha256.Size)
	var blockIdx uint64
	for len(out) < length {
		var idxLE [8]byte
		binary.LittleEndian.PutUint64(idxLE[:], blockIdx)
		h := sha256.New()
		h.Write(k)
		h.Write(idxLE[:])
		out = append(out, h.Sum(nil)...)
		blockIdx++
	}
	return out[:length]
}
