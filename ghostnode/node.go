package ghostnode

import (
	"fmt"

	"github.com/LashSesh/ghost-protocol/entropy"
	"github.com/LashSesh/ghost-protocol/forkheal"
	"github.com/LashSesh/ghost-protocol/ghosterr"
	"github.com/LashSesh/ghost-protocol/ledger"
	"github.com/LashSesh/ghost-protocol/protocol"
	"github.com/LashSesh/ghost-protocol/resonance"
	"github.com/LashSesh/ghost-protocol/router"
	"github.com/LashSesh/ghost-protocol/transport"
	"github.com/LashSesh/ghost-protocol/zkproof"
)

// Options collects the in-memory collaborators a deployment chooses
// for a Node, separate from the two environment-sourced values
// LoadEnv reads. Every field except Transport has a spec-reasonable
// zero-value default applied by New, mirroring the teacher's InitLedger/InitAMM pattern
// of accepting nil for "use the default" rather than forcing every
// caller to build every collaborator by hand.
type Options struct {
	Identity Identity

	// Entropy defaults to a CSPRNG source (entropy.New) if nil.
	Entropy entropy.Source

	// LedgerDir persists the ledger to disk via ledger.OpenChain when
	// non-empty; otherwise the ledger is in-memory only.
	LedgerDir string

	// Router overrides the default router.NewTable(); nil uses defaults.
	Router *router.Table

	// Transport is required: the node has no in-process default,
	// since spec §6.1 treats it as the environment seam.
	Transport transport.SinkSource

	// ZK selects the zero-knowledge operator; nil defaults to the
	// reference FiatShamirOperator (spec §4.6, §9 Open Question 4).
	ZK zkproof.Operator

	// Carrier optionally wraps masked payloads in a steganography
	// carrier (spec §4.5); nil sends payloads uncarried.
	Carrier protocol.Carrier

	HMax                 uint8
	EnableForwardSecrecy bool

	// SecurityLogPath, if set, persists security events to an
	// append-only JSON-lines file in addition to the in-memory ring.
	SecurityLogPath string
}

// Node assembles C1 (entropy), C2/C4 (resonance state+operator), C3
// (masking, via protocol.Config), C5 (stego carrier), C6 (zkproof),
// C7 (ledger), C8 (router), C9 (protocol sender/receiver), C10
// (transport), and C11 (forkheal) into the single running unit spec
// §6.4 describes: "a node is Config plus the two env vars; everything
// else is constructed once at startup and held for the process
// lifetime."
type Node struct {
	cfg      protocol.Config
	Sender   *protocol.Sender
	Receiver *protocol.Receiver
	Router   *router.Table
	ForkHeal forkheal.Weights
	Ledger   *ledger.Chain
	Metrics  *protocol.Metrics
	SecLog   *protocol.SecurityLog
	Identity Identity
}

// New builds a Node from env (see LoadEnv) and opts. resolve is the
// caller's StatementResolver: the one piece of business logic (what
// ZK statement a recovered transaction must satisfy) the core
// deliberately leaves to the deployment, per spec §4.9.2 step 8.
func New(env EnvConfig, opts Options, resolve protocol.StatementResolver) (*Node, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("ghostnode: new: %w: transport is required", ghosterr.ErrInvalidState)
	}

	src := opts.Entropy
	if src == nil {
		var err error
		src, err = entropy.New()
		if err != nil {
			return nil, fmt.Errorf("ghostnode: new: entropy source: %w", err)
		}
	}

	chain := ledger.NewChain()
	if opts.LedgerDir != "" {
		opened, err := ledger.OpenChain(opts.LedgerDir)
		if err != nil {
			return nil, fmt.Errorf("ghostnode: new: open ledger: %w", err)
		}
		chain = opened
	}

	tbl := opts.Router
	if tbl == nil {
		tbl = router.NewTable()
	}

	zk := opts.ZK
	if zk == nil {
		zk = zkproof.FiatShamirOperator{}
	}

	metrics := protocol.NewMetrics()

	secLog, err := protocol.NewSecurityLog(1024, opts.SecurityLogPath)
	if err != nil {
		return nil, fmt.Errorf("ghostnode: new: security log: %w", err)
	}

	window := opts.Identity.Window
	if (window == resonance.Window{}) {
		window = resonance.StandardWindow
	}

	cfg := protocol.Config{
		RootSeed:             env.RootSeed,
		EpochDurationSeconds: env.EpochDurationSeconds,
		OwnResonance:         opts.Identity.Resonance,
		Window:               window,
		HMax:                 opts.HMax,
		EnableForwardSecrecy: opts.EnableForwardSecrecy,
		Entropy:              src,
		Ledger:               chain,
		Router:               tbl,
		Transport:            opts.Transport,
		ZK:                   zk,
		Carrier:              opts.Carrier,
		Metrics:              metrics,
		SecurityLog:          secLog,
	}

	sender, err := protocol.NewSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("ghostnode: new: sender: %w", err)
	}
	receiver, err := protocol.NewReceiver(cfg, resolve)
	if err != nil {
		return nil, fmt.Errorf("ghostnode: new: receiver: %w", err)
	}

	return &Node{
		cfg:      cfg,
		Sender:   sender,
		Receiver: receiver,
		Router:   tbl,
		ForkHeal: forkheal.DefaultWeights(),
		Ledger:   chain,
		Metrics:  metrics,
		SecLog:   secLog,
		Identity: opts.Identity,
	}, nil
}

// Config exposes the assembled protocol.Config, e.g. so a caller can
// build a DecoyScheduler or a second Receiver sharing the same
// collaborators.
func (n *Node) Config() protocol.Config { return n.cfg }

// Close releases resources the Node owns (currently the security log
// file sink, if one was configured).
func (n *Node) Close() error {
	if n.SecLog != nil {
		return n.SecLog.Close()
	}
	return nil
}
