// Package ghosterr defines the closed error taxonomy used across the
// Ghost Protocol core. Every fallible operation returns one of these
// sentinels (optionally wrapped with additional context via
// fmt.Errorf("...: %w", ...)) so callers can branch with errors.Is.
package ghosterr

import "errors"

var (
	// ErrInvalidState signals malformed inputs: non-finite resonance
	// components, undersized seeds/phases, and similar constructor-time
	// rejections.
	ErrInvalidState = errors.New("ghost: invalid state")

	// ErrCapacityExceeded signals a steganography carrier too small to
	// hold the requested payload.
	ErrCapacityExceeded = errors.New("ghost: capacity exceeded")

	// ErrIntegrity signals a ledger hash mismatch or broken prev-hash
	// chain. The core never attempts automatic repair after this.
	ErrIntegrity = errors.New("ghost: ledger integrity violation")

	// ErrReplay signals a packet_id already seen within the replay
	// window.
	ErrReplay = errors.New("ghost: replay detected")

	// ErrTimestampOutOfWindow signals an adaptive timestamp-window
	// violation.
	ErrTimestampOutOfWindow = errors.New("ghost: timestamp out of window")

	// ErrRateLimited signals a per-source token-bucket exhaustion.
	ErrRateLimited = errors.New("ghost: rate limited")

	// ErrResonanceMismatch signals a non-resonant packet. Not an error
	// at the forwarding layer; only surfaced when a caller explicitly
	// demands local delivery.
	ErrResonanceMismatch = errors.New("ghost: resonance mismatch")

	// ErrZkVerifyFailed signals a proof that did not verify.
	ErrZkVerifyFailed = errors.New("ghost: zk verification failed")

	// ErrTransport wraps lower-layer transport I/O faults.
	ErrTransport = errors.New("ghost: transport error")

	// ErrVersionMismatch signals an unknown wire-format version byte.
	ErrVersionMismatch = errors.New("ghost: version mismatch")

	// ErrNotFound signals a block/packet lookup miss.
	ErrNotFound = errors.New("ghost: not found")
)
