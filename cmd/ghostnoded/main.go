// Command ghostnoded is a minimal Ghost Protocol daemon: it loads the
// two environment variables spec §6.4 names, assembles a ghostnode.Node
// over an in-memory transport, and runs the receive loop plus a decoy
// scheduler until interrupted. It is a reference wiring, not a
// production deployment — real deployments supply their own
// transport.SinkSource (e.g. transport/libp2ptransport) and a
// StatementResolver backed by a real public-key registry.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/LashSesh/ghost-protocol/ghostnode"
	"github.com/LashSesh/ghost-protocol/protocol"
	"github.com/LashSesh/ghost-protocol/resonance"
	"github.com/LashSesh/ghost-protocol/transport"
	"github.com/LashSesh/ghost-protocol/zkproof"
)

// selfResonance reads GHOST_PSI/GHOST_RHO/GHOST_OMEGA, defaulting to
// the origin-adjacent (1,1,1) state used throughout the module's tests
// when unset.
func selfResonance() resonance.State {
	coord := func(env string, def float64) float64 {
		raw := os.Getenv(env)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatalf("ghostnoded: %s: %v", env, err)
		}
		return v
	}
	s, err := resonance.New(coord("GHOST_PSI", 1.0), coord("GHOST_RHO", 1.0), coord("GHOST_OMEGA", 1.0))
	if err != nil {
		log.Fatalf("ghostnoded: resonance state: %v", err)
	}
	return s
}

func main() {
	env, err := ghostnode.LoadEnv()
	if err != nil {
		log.Fatalf("ghostnoded: %v", err)
	}

	selfID := os.Getenv("GHOST_NODE_ID")
	if selfID == "" {
		selfID = "ghostnoded"
	}
	mesh := transport.NewLoopbackMesh(selfID)

	var registry []byte // demo-only: the last recovered plaintext's declared key
	resolver := protocol.StatementResolver(func(unmasked []byte, pkt *protocol.Packet) zkproof.Statement {
		registry = unmasked
		key := registry
		if len(key) > 33 {
			key = key[:33]
		}
		return zkproof.Statement{Kind: zkproof.KindKnowledge, PublicKey: key}
	})

	node, err := ghostnode.New(env, ghostnode.Options{
		Identity:  ghostnode.Identity{Resonance: selfResonance(), Window: resonance.StandardWindow},
		Transport: mesh[selfID],
		LedgerDir: os.Getenv("GHOST_LEDGER_DIR"),
	}, resolver)
	if err != nil {
		log.Fatalf("ghostnoded: init node: %v", err)
	}
	defer node.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("node_id", selfID).Info("ghostnoded: started")

	go runReceiveLoop(ctx, node, mesh[selfID])
	go runDecoyScheduler(ctx, node)

	<-ctx.Done()
	log.Info("ghostnoded: shutting down")
}

// runReceiveLoop drains the transport's inbound stream into the
// node's receive pipeline until ctx is canceled.
func runReceiveLoop(ctx context.Context, node *ghostnode.Node, src transport.Source) {
	for {
		received, err := src.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("ghostnoded: transport receive failed")
			continue
		}
		outcome, err := node.Receiver.Receive(ctx, received.SourceID, received.Packet)
		if err != nil {
			log.WithError(err).Debug("ghostnoded: packet rejected")
			continue
		}
		if outcome.Committed {
			log.WithField("block_index", outcome.CommitBlock.Index).Info("ghostnoded: committed")
		}
	}
}

// runDecoyScheduler emits cover traffic on a Poisson schedule so the
// local node's wire activity resists simple traffic analysis (spec
// §4.9.3, §9 Open Question 2). Decoys never reach the ledger: the
// resolver above derives the public key from the recovered payload,
// and a decoy's random payload does not carry the key its proof was
// made under, so a receiver using this resolver drops the decoy as a
// failed ZK verification.
func runDecoyScheduler(ctx context.Context, node *ghostnode.Node) {
	cfg := node.Config()
	scheduler := protocol.NewDecoyScheduler(cfg.Entropy, 0.2, 64)
	scheduler.Run(ctx, func(state resonance.State, payload []byte) error {
		pub, priv, err := zkproof.GenerateKnowledgeKeypair()
		if err != nil {
			return err
		}
		stmt := zkproof.Statement{Kind: zkproof.KindKnowledge, PublicKey: pub, Decoy: true}
		err = node.Sender.Send(ctx, protocol.SendRequest{
			TxBytes:         payload,
			TargetResonance: state,
			Stmt:            stmt,
			Witness:         zkproof.Witness{Secret: priv},
			Now:             time.Now().Unix(),
		})
		if err == nil {
			node.Metrics.DecoysEmitted.Inc()
		}
		return err
	})
}
