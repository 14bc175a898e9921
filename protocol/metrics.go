package protocol

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private prometheus registry and the counters the
// receive pipeline updates (spec §5: "metric counters use atomic
// adds; consistency across counters is not guaranteed"). Grounded on
// the teacher's HealthLogger registry-plus-gauges shape, adapted from
// node-health gauges to per-rejection-reason counters.
type Metrics struct {
	registry *prometheus.Registry

	PacketsSent         prometheus.Counter
	PacketsReceived     prometheus.Counter
	MaskingFailures     prometheus.Counter
	ResonanceRejects    prometheus.Counter
	RateLimitRejects    prometheus.Counter
	ReplayRejects       prometheus.Counter
	TimestampRejects    prometheus.Counter
	HopExceeded         prometheus.Counter
	ZkVerifyFailures    prometheus.Counter
	KeyRotationFallback prometheus.Counter
	LedgerCommits       prometheus.Counter
	DecoysEmitted       prometheus.Counter
	DecoysDropped       prometheus.Counter
}

// NewMetrics builds a fresh, independently-registered Metrics instance.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry:            reg,
		PacketsSent:         prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_packets_sent_total", Help: "Packets successfully broadcast."}),
		PacketsReceived:     prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_packets_received_total", Help: "Packets that reached the receive pipeline (pre-rejection)."}),
		MaskingFailures:     prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_masking_failures_total", Help: "Packets whose key derivation or unmask step returned an error."}),
		ResonanceRejects:    prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_resonance_rejects_total", Help: "Packets that did not resonate with the local node's state and were forwarded instead of processed locally."}),
		RateLimitRejects:    prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_rate_limit_rejects_total", Help: "Packets dropped by the per-source token bucket."}),
		ReplayRejects:       prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_replay_rejects_total", Help: "Packets dropped as replays of a known packet_id."}),
		TimestampRejects:    prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_timestamp_rejects_total", Help: "Packets dropped for falling outside the adaptive timestamp window."}),
		HopExceeded:         prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_hop_exceeded_total", Help: "Packets dropped for exceeding H_max hops."}),
		ZkVerifyFailures:    prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_zk_verify_failures_total", Help: "Packets whose zero-knowledge proof failed verification."}),
		KeyRotationFallback: prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_key_rotation_fallback_total", Help: "Packets unmasked successfully only after falling back one key epoch."}),
		LedgerCommits:       prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_ledger_commits_total", Help: "Transactions successfully committed to the ledger."}),
		DecoysEmitted:       prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_decoys_emitted_total", Help: "Decoy cover packets emitted."}),
		DecoysDropped:       prometheus.NewCounter(prometheus.CounterOpts{Name: "ghost_decoys_dropped_total", Help: "Decoy packets detected and dropped by a receiver."}),
	}
	reg.MustRegister(
		m.PacketsSent, m.PacketsReceived, m.MaskingFailures, m.ResonanceRejects,
		m.RateLimitRejects, m.ReplayRejects, m.TimestampRejects,
		m.HopExceeded, m.ZkVerifyFailures, m.KeyRotationFallback, m.LedgerCommits,
		m.DecoysEmitted, m.DecoysDropped,
	)
	return m
}

// Handler exposes this Metrics instance's registry as an HTTP handler
// for a /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
