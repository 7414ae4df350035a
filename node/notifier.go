package node

import (
	"github.com/Sovereign-Labs/solana-proofs/geyser"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

var _ geyser.Notifier = (*Node)(nil)

// The node is the pipeline-side implementation of geyser.Notifier. Until the
// startup gate is armed, notifications are acknowledged and discarded: state
// delivered mid-startup describes partial slots that could never finalize
// correctly.

func (n *Node) NotifyAccount(rec *types.AccountRecord) error {
	if !n.armed() {
		return nil
	}
	accountEventMeter.Mark(1)
	return n.enqueue(rec)
}

func (n *Node) NotifyTransaction(stats *types.TransactionStats) error {
	if !n.armed() {
		return nil
	}
	transactionEventMeter.Mark(1)
	return n.enqueue(stats)
}

func (n *Node) NotifyVote(vote *types.VoteRecord) error {
	if !n.armed() {
		return nil
	}
	voteEventMeter.Mark(1)
	return n.enqueue(vote)
}

func (n *Node) NotifyBlockMeta(meta *types.BlockMeta) error {
	if !n.armed() {
		return nil
	}
	blockMetaEventMeter.Mark(1)
	return n.enqueue(meta)
}

func (n *Node) NotifySlotStatus(slot uint64, status types.SlotStatus) error {
	// The first processed slot after end-of-startup arms the gate, and that
	// same event is the first one allowed through.
	if n.startup.Load() == startupEndReceived && status == types.StatusProcessed {
		n.startup.Store(startupEndReceived | startupProcessedReceived)
	}
	if !n.armed() {
		return nil
	}
	slotEventMeter.Mark(1)
	return n.enqueue(&types.SlotEvent{Slot: slot, Status: status})
}

func (n *Node) NotifyEndOfStartup() error {
	for {
		old := n.startup.Load()
		if n.startup.CompareAndSwap(old, old|startupEndReceived) {
			return nil
		}
	}
}
