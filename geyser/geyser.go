// Package geyser defines the ingestion boundary: the callback-shaped
// operations a host runtime invokes to deliver ledger notifications. The core
// pipeline depends on this interface and never on a concrete host binding;
// a plugin ABI shim, a message-queue consumer or the replay adapter in this
// package are interchangeable implementations of the producing side.
package geyser

import (
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// Notifier receives ledger notifications from a host adapter.
type Notifier interface {
	// NotifyAccount delivers one observed account write.
	NotifyAccount(rec *types.AccountRecord) error
	// NotifyTransaction delivers one observed transaction's signature count.
	NotifyTransaction(stats *types.TransactionStats) error
	// NotifyVote delivers a vote record derived from a vote-program
	// transaction. Optional: adapters that do not decode votes never call it.
	NotifyVote(vote *types.VoteRecord) error
	// NotifySlotStatus delivers a slot lifecycle transition.
	NotifySlotStatus(slot uint64, status types.SlotStatus) error
	// NotifyBlockMeta delivers a slot's block metadata.
	NotifyBlockMeta(meta *types.BlockMeta) error
	// NotifyEndOfStartup signals that the host finished its startup account
	// download; notifications before this point describe partial state.
	NotifyEndOfStartup() error
}
