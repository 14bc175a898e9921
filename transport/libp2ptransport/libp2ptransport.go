// Package libp2ptransport adapts the Ghost Protocol's transport seam
// (transport.Sink/transport.Source) onto a real libp2p host with
// gossipsub, grounded on the teacher's core/network.go NewNode. It
// wires the single entry point needed to satisfy the seam — host
// construction plus one gossipsub topic — and deliberately leaves
// mDNS/NAT-traversal/relay to the surrounding collaborator (spec §1
// places the production transport mesh outside this core's scope).
package libp2ptransport

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/sirupsen/logrus"

	"github.com/LashSesh/ghost-protocol/transport"
)

// Topic is the single gossipsub topic ghost packets are published and
// subscribed on. Every packet is published here, including those sent
// with a unicast hint; there is no direct peer-stream path.
const Topic = "ghost-protocol/packets/v1"

// Node wraps a libp2p host plus one gossipsub subscription,
// implementing transport.SinkSource.
type Node struct {
	host  host.Host
	ps    *pubsub.PubSub
	topic *pubsub.Topic
	sub   *pubsub.Subscription
}

// New constructs a libp2p host listening on listenAddr, joins Topic,
// and dials every peer in bootstrapPeers (multiaddr/p2p strings).
// Failed dials are logged, not fatal — mirroring the teacher's
// DialSeed tolerance for partially-reachable bootstrap sets.
func New(ctx context.Context, listenAddr string, bootstrapPeers []string) (*Node, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("libp2ptransport: new host: %w", err)
	}
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("libp2ptransport: new gossipsub: %w", err)
	}
	topic, err := ps.Join(Topic)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("libp2ptransport: join topic: %w", err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("libp2ptransport: subscribe: %w", err)
	}

	n := &Node{host: h, ps: ps, topic: topic, sub: sub}
	for _, addr := range bootstrapPeers {
		info, err := peer.AddrInfoFromString(addr)
		if err != nil {
			logrus.WithField("addr", addr).Warnf("libp2ptransport: invalid bootstrap addr: %v", err)
			continue
		}
		if err := h.Connect(ctx, *info); err != nil {
			logrus.WithField("addr", addr).Warnf("libp2ptransport: bootstrap dial failed: %v", err)
			continue
		}
		logrus.WithField("peer", info.ID.String()).Info("libp2ptransport: bootstrapped")
	}
	return n, nil
}

// Broadcast publishes packetBytes on Topic regardless of hint: true
// unicast delivery over libp2p direct streams is left to a future
// collaborator extension; gossipsub fan-out satisfies the "tolerates
// drops/duplicates/reorderings" best-effort contract of spec §6.1.
func (n *Node) Broadcast(ctx context.Context, packetBytes []byte, hint transport.Hint) error {
	if err := n.topic.Publish(ctx, packetBytes); err != nil {
		return fmt.Errorf("libp2ptransport: publish: %w", err)
	}
	return nil
}

// Receive blocks for the next gossipsub message on Topic, excluding
// messages this host itself published.
func (n *Node) Receive(ctx context.Context) (transport.Received, error) {
	for {
		msg, err := n.sub.Next(ctx)
		if err != nil {
			return transport.Received{}, fmt.Errorf("libp2ptransport: receive: %w", err)
		}
		if msg.ReceivedFrom == n.host.ID() {
			continue
		}
		return transport.Received{SourceID: msg.ReceivedFrom.String(), Packet: msg.Data}, nil
	}
}

// Close tears down the libp2p host.
func (n *Node) Close() error {
	n.sub.Cancel()
	return n.host.Close()
}

var _ transport.SinkSource = (*Node)(nil)
