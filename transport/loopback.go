package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Loopback is an in-memory, many-node transport: each named node has
// its own inbound queue, and Broadcast fans a packet out to one or all
// of the other registered nodes. Grounded on the teacher's in-memory
// replicatedMessages/topic registry pattern, generalized from a single
// global topic map to a named-node mesh.
type Loopback struct {
	mu    sync.RWMutex
	nodes map[string]chan Received
	self  string
}

// NewLoopbackMesh builds a set of interconnected Loopback endpoints,
// one per name in ids, each able to reach every other by name.
func NewLoopbackMesh(ids ...string) map[string]*Loopback {
	queues := make(map[string]chan Received, len(ids))
	for _, id := range ids {
		queues[id] = make(chan Received, 256)
	}
	mesh := make(map[string]*Loopback, len(ids))
	for _, id := range ids {
		mesh[id] = &Loopback{self: id, nodes: queues}
	}
	return mesh
}

// Broadcast delivers packetBytes to the hinted recipient(s), tagging
// each delivery with l.self as the opaque source id.
func (l *Loopback) Broadcast(ctx context.Context, packetBytes []byte, hint Hint) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	targets := l.targets(hint)
	if len(targets) == 0 {
		return wrapTransportErr("broadcast", fmt.Errorf("no live targets for hint %+v", hint))
	}
	payload := append([]byte(nil), packetBytes...)
	for _, id := range targets {
		ch := l.nodes[id]
		select {
		case ch <- Received{SourceID: l.self, Packet: payload}:
			logrus.WithFields(logrus.Fields{"from": l.self, "to": id}).Debug("transport: loopback delivered packet")
		case <-ctx.Done():
			return wrapTransportErr("broadcast", ctx.Err())
		default:
			// Best-effort delivery: a full queue drops the packet rather
			// than blocking the sender (spec §6.1 tolerates drops).
			logrus.WithField("to", id).Warn("transport: loopback queue full, dropping packet")
		}
	}
	return nil
}

func (l *Loopback) targets(hint Hint) []string {
	switch hint.Kind {
	case Unicast:
		if _, ok := l.nodes[hint.ID]; ok && hint.ID != l.self {
			return []string{hint.ID}
		}
		return nil
	default:
		out := make([]string, 0, len(l.nodes))
		for id := range l.nodes {
			if id != l.self {
				out = append(out, id)
			}
		}
		return out
	}
}

// Receive blocks until a packet addressed to this node arrives or ctx
// is canceled.
func (l *Loopback) Receive(ctx context.Context) (Received, error) {
	l.mu.RLock()
	ch := l.nodes[l.self]
	l.mu.RUnlock()

	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return Received{}, wrapTransportErr("receive", ctx.Err())
	}
}

var _ SinkSource = (*Loopback)(nil)
