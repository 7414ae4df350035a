// Package node wires the slot-state pipeline together: ledger notifications
// enter through the geyser.Notifier boundary, pass a bounded ingress queue,
// and are consumed by a single goroutine that owns the accumulator. Finalized
// updates fan out to TCP subscribers as length-prefixed codec frames and,
// optionally, to websocket subscribers as JSON.
package node

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/accumulator"
	"github.com/Sovereign-Labs/solana-proofs/config"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// Errors surfaced to notifying adapters.
var (
	ErrStopped   = errors.New("node stopped")
	ErrQueueFull = errors.New("ingress queue full")
)

// recentUpdates is the size of the recent-update cache used to prime newly
// connected subscribers.
const recentUpdates = 128

// Startup gate bits, set once and never cleared. Events are accepted only
// after the host reports end-of-startup and the first processed slot; a full
// slot observed from its beginning is the first one that can finalize
// correctly.
const (
	startupEndReceived = 1 << iota
	startupProcessedReceived
)

// Node owns the accumulation pipeline and its publishers.
type Node struct {
	logger log.Logger

	queue  chan types.Event
	policy string
	acc    *accumulator.Accumulator
	hub    *hub

	recent     *lru.Cache
	latestSlot atomic.Uint64
	hasLatest  atomic.Bool

	startup atomic.Uint32

	bindAddress   string
	wsBindAddress string
	listener      net.Listener
	ws            *wsServer

	started  atomic.Bool
	quit     chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New builds a node from the given configuration.
func New(cfg *config.Config) (*Node, error) {
	monitored, err := cfg.MonitoredAccounts()
	if err != nil {
		return nil, err
	}
	recent, err := lru.New(recentUpdates)
	if err != nil {
		return nil, err
	}
	return &Node{
		logger:        log.New("component", "proofnode"),
		queue:         make(chan types.Event, cfg.QueueSize),
		policy:        cfg.QueuePolicy,
		acc:           accumulator.New(monitored),
		hub:           newHub(DefaultLagBuffer),
		recent:        recent,
		bindAddress:   cfg.BindAddress,
		wsBindAddress: cfg.WSBindAddress,
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

// Start launches the consumer loop and the publisher servers.
func (n *Node) Start() error {
	listener, err := net.Listen("tcp", n.bindAddress)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", n.bindAddress)
	}
	n.listener = listener
	n.logger.Info("Serving framed updates", "addr", listener.Addr())

	n.started.Store(true)
	go n.run()

	n.wg.Add(1)
	go n.serveTCP(listener)

	if n.wsBindAddress != "" {
		if err := n.startWebsocket(); err != nil {
			listener.Close()
			return err
		}
	}
	return nil
}

// Stop halts event consumption and closes every server. In-flight
// accumulator state is discarded; no durability is claimed.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		close(n.quit)
		if n.listener != nil {
			n.listener.Close()
		}
		n.stopWebsocket()
	})
	// The consumer loop only ever ran on a started node.
	if n.started.Load() {
		<-n.done
	}
	n.wg.Wait()
}

// TCPAddr returns the bound address of the framed-update listener.
func (n *Node) TCPAddr() net.Addr {
	if n.listener == nil {
		return nil
	}
	return n.listener.Addr()
}

// run is the single consumer: only this goroutine touches the accumulator,
// which is what makes its map mutations race-free without locking.
func (n *Node) run() {
	defer close(n.done)
	for {
		select {
		case <-n.quit:
			return
		case ev := <-n.queue:
			n.handle(ev)
		}
	}
}

func (n *Node) handle(ev types.Event) {
	slotEv, ok := ev.(*types.SlotEvent)
	if !ok {
		n.acc.Ingest(ev)
		return
	}

	update, err := n.acc.Advance(slotEv.Slot, slotEv.Status)
	if err != nil {
		slotFailureCounter.Inc(1)
		if errors.Is(err, accumulator.ErrNoMonitoredAccounts) {
			n.logger.Debug("Slot finalization not applicable", "slot", slotEv.Slot)
		} else {
			n.logger.Warn("Slot finalization failed", "slot", slotEv.Slot, "err", err)
		}
		return
	}
	if update != nil {
		n.publish(update)
	}
}

func (n *Node) publish(update *types.Update) {
	n.recent.Add(update.Slot, update)
	n.latestSlot.Store(update.Slot)
	n.hasLatest.Store(true)
	n.hub.publish(update)
	updateEmittedCounter.Inc(1)
	n.logger.Info("Update emitted",
		"slot", update.Slot,
		"root", update.Root,
		"proofs", len(update.Proof.Proofs),
		"numSigs", update.Proof.NumSigs,
	)
}

// latest returns the most recently published update, if any.
func (n *Node) latest() (*types.Update, bool) {
	if !n.hasLatest.Load() {
		return nil, false
	}
	cached, ok := n.recent.Get(n.latestSlot.Load())
	if !ok {
		return nil, false
	}
	return cached.(*types.Update), true
}

// enqueue applies the configured backpressure policy.
func (n *Node) enqueue(ev types.Event) error {
	switch n.policy {
	case config.PolicyBlock:
		select {
		case n.queue <- ev:
			return nil
		case <-n.quit:
			return ErrStopped
		}
	case config.PolicyReject:
		select {
		case n.queue <- ev:
			return nil
		default:
			rejectedEventCounter.Inc(1)
			return ErrQueueFull
		}
	default: // drop-oldest
		for {
			select {
			case <-n.quit:
				return ErrStopped
			case n.queue <- ev:
				return nil
			default:
			}
			select {
			case <-n.queue:
				droppedEventCounter.Inc(1)
			default:
			}
		}
	}
}

func (n *Node) armed() bool {
	return n.startup.Load() == startupEndReceived|startupProcessedReceived
}
