package protocol

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultReplayCacheSize and DefaultReplayWindow are spec §4.9.2 step
// 2's defaults: an LRU set of size 2^16 with a 600 s window.
const (
	DefaultReplayCacheSize = 1 << 16
	DefaultReplayWindow    = 600 * time.Second
)

// ReplayCache rejects a packet_id it has already seen within the
// configured window. Grounded on spec's explicit "rolling bloom-style
// or LRU set" contract; golang-lru bounds memory the way a bloom
// filter's fixed bit array would, with exact (not probabilistic)
// membership — a strictly stronger guarantee the spec's "or" permits.
type ReplayCache struct {
	mu     sync.Mutex
	cache  *lru.Cache[[16]byte, time.Time]
	window time.Duration
	now    func() time.Time
}

// NewReplayCache builds a ReplayCache with the given capacity and
// replay window.
func NewReplayCache(size int, window time.Duration) (*ReplayCache, error) {
	c, err := lru.New[[16]byte, time.Time](size)
	if err != nil {
		return nil, err
	}
	return &ReplayCache{cache: c, window: window, now: time.Now}, nil
}

// SeenRecently reports whether packetID was already admitted within
// the replay window, and if not, records it as seen now.
func (rc *ReplayCache) SeenRecently(packetID [16]byte) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := rc.now()
	if last, ok := rc.cache.Get(packetID); ok && now.Sub(last) <= rc.window {
		return true
	}
	rc.cache.Add(packetID, now)
	return false
}
