// Package ghostnode wires the eleven Ghost Protocol core components
// (C1-C11) into a single constructible Node, and loads the two
// environment variables spec §6.4 calls out as the only configuration
// not passed in-memory at construction time.
package ghostnode

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/resonance"
)

// EnvRootSeed and EnvEpochDuration name the two environment variables
// spec §6.4 requires a deployment to provide: the shared root seed
// masking derives keys from, and an optional override of the default
// 3600s epoch duration.
const (
	EnvRootSeed       = "GHOST_ROOT_SEED"
	EnvEpochDuration  = "GHOST_EPOCH_DURATION_SECONDS"
	minRootSeedLength = 32
)

// DefaultEpochDurationSeconds is the fallback used when
// GHOST_EPOCH_DURATION_SECONDS is unset, matching spec §4.3's default.
const DefaultEpochDurationSeconds = 3600

// EnvConfig is what LoadEnv reads from the process environment. It is
// kept separate from Config so tests can build a Node without
// touching os.Getenv at all.
type EnvConfig struct {
	RootSeed             []byte
	EpochDurationSeconds uint64
}

// LoadEnv reads GHOST_ROOT_SEED (required, hex-encoded, at least 32
// raw bytes) and GHOST_EPOCH_DURATION_SECONDS (optional, defaults to
// 3600) from the process environment. A deployment operator sets
// these once at process start; everything else a Node needs is
// constructed in-memory by the caller and passed to New.
func LoadEnv() (EnvConfig, error) {
	raw := os.Getenv(EnvRootSeed)
	if raw == "" {
		return EnvConfig{}, fmt.Errorf("ghostnode: load env: %w: %s is required", ghosterr.ErrInvalidState, EnvRootSeed)
	}
	seed, err := hex.DecodeString(raw)
	if err != nil {
		return EnvConfig{}, fmt.Errorf("ghostnode: load env: %s is not valid hex: %w", EnvRootSeed, err)
	}
	if len(seed) < minRootSeedLength {
		return EnvConfig{}, fmt.Errorf("ghostnode: load env: %w: %s must decode to at least %d bytes", ghosterr.ErrInvalidState, EnvRootSeed, minRootSeedLength)
	}

	epochDuration := uint64(DefaultEpochDurationSeconds)
	if rawEpoch := os.Getenv(EnvEpochDuration); rawEpoch != "" {
		parsed, err := strconv.ParseUint(rawEpoch, 10, 64)
		if err != nil || parsed == 0 {
			return EnvConfig{}, fmt.Errorf("ghostnode: load env: %w: %s must be a positive integer", ghosterr.ErrInvalidState, EnvEpochDuration)
		}
		epochDuration = parsed
	}

	return EnvConfig{RootSeed: seed, EpochDurationSeconds: epochDuration}, nil
}

// Identity is the local node's resonance fingerprint and the window
// it uses to judge neighbors/senders resonant, mirroring spec §4.2/§4.4.
type Identity struct {
	Resonance resonance.State
	Window    resonance.Window
}
