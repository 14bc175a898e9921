package protocol

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventKind enumerates the named security events the receive pipeline
// emits (spec §4.9.2/§4.9.3: rate_limit_rejects, replay_rejects,
// timestamp_rejects, hop_exceeded, key_rotation_fallback,
// zk_verify_failures, plus the decoy-drop supplement).
type EventKind string

const (
	EventRateLimitReject    EventKind = "rate_limit_rejected"
	EventReplayDetected     EventKind = "replay_detected"
	EventTimestampReject    EventKind = "timestamp_out_of_window"
	EventHopExceeded        EventKind = "hop_exceeded"
	EventKeyRotationFallbck EventKind = "key_rotation_fallback"
	EventZkVerifyFailed     EventKind = "zk_verify_failed"
	EventLedgerIntegrity    EventKind = "ledger_integrity_escalation"
	EventDecoyDropped       EventKind = "decoy_dropped"
	EventCommitted          EventKind = "committed"
)

// SecurityEvent is one entry in the security log, correlation-tagged
// with a fresh uuid so multi-hop forwarding can be traced across log
// sinks (spec grounding: the teacher has no direct analogue; this
// reuses google/uuid the way core/ uses it for request correlation).
type SecurityEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	PacketID  string    `json:"packet_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SecurityLog is an in-process event stream with an optional
// append-only JSON-lines file sink, grounded on the teacher's
// HealthLogger (logrus + optional file output) but specialized to
// structured security events rather than free-form log lines.
type SecurityLog struct {
	mu     sync.Mutex
	file   *os.File
	events []SecurityEvent
	cap    int
}

// NewSecurityLog builds an in-memory security log retaining at most
// capacity recent events. Pass an empty path to skip file persistence.
func NewSecurityLog(capacity int, path string) (*SecurityLog, error) {
	sl := &SecurityLog{cap: capacity}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("protocol: new security log: %w", err)
		}
		sl.file = f
	}
	return sl, nil
}

// Emit records a security event, trimming the in-memory ring if it
// would exceed capacity, and appends it to the file sink if configured.
func (sl *SecurityLog) Emit(kind EventKind, packetID, detail string) SecurityEvent {
	ev := SecurityEvent{ID: uuid.NewString(), Kind: kind, PacketID: packetID, Detail: detail, Timestamp: time.Now()}

	sl.mu.Lock()
	sl.events = append(sl.events, ev)
	if sl.cap > 0 && len(sl.events) > sl.cap {
		sl.events = sl.events[len(sl.events)-sl.cap:]
	}
	f := sl.file
	sl.mu.Unlock()

	logrus.WithFields(logrus.Fields{"kind": kind, "packet_id": packetID}).Debug("protocol: security event")
	if f != nil {
		if raw, err := json.Marshal(ev); err == nil {
			sl.mu.Lock()
			_, _ = f.Write(append(raw, '\n'))
			sl.mu.Unlock()
		}
	}
	return ev
}

// Recent returns a snapshot copy of the retained events, oldest first.
func (sl *SecurityLog) Recent() []SecurityEvent {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	out := make([]SecurityEvent, len(sl.events))
	copy(out, sl.events)
	return out
}

// Close releases the file sink, if any.
func (sl *SecurityLog) Close() error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.file == nil {
		return nil
	}
	return sl.file.Close()
}
