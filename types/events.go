package types

import (
	"github.com/Sovereign-Labs/solana-proofs/common"
)

// SlotStatus is the lifecycle marker attached to slot-status events.
type SlotStatus uint8

const (
	// StatusProcessed marks a slot whose transactions have been replayed;
	// accumulated raw state becomes eligible for finalization.
	StatusProcessed SlotStatus = iota
	// StatusConfirmed marks a slot acknowledged by a supermajority; the slot
	// is finalized and an update may be produced.
	StatusConfirmed
	// StatusRooted marks a slot beyond the point of rollback. The pipeline
	// ignores it.
	StatusRooted
	// StatusFirstShredReceived and any later additions are ignored as well.
	StatusFirstShredReceived
)

func (s SlotStatus) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusConfirmed:
		return "confirmed"
	case StatusRooted:
		return "rooted"
	case StatusFirstShredReceived:
		return "first_shred_received"
	default:
		return "unknown"
	}
}

// Event is one ledger notification delivered by the ingestion adapter to the
// accumulation pipeline.
type Event interface {
	isEvent()
}

// AccountRecord is an observed account write: full account content plus the
// write-version that orders multiple writes within a slot.
type AccountRecord struct {
	Pubkey       common.Pubkey `json:"pubkey"`
	Lamports     uint64        `json:"lamports"`
	Owner        common.Pubkey `json:"owner"`
	Executable   bool          `json:"executable"`
	RentEpoch    uint64        `json:"rent_epoch"`
	Data         []byte        `json:"data"`
	WriteVersion uint64        `json:"write_version"`
	Slot         uint64        `json:"slot"`
}

func (*AccountRecord) isEvent() {}

// TransactionStats carries the signature count contributed by one observed
// transaction.
type TransactionStats struct {
	Slot    uint64 `json:"slot"`
	NumSigs uint64 `json:"num_sigs"`
}

func (*TransactionStats) isEvent() {}

// VoteRecord is a vote-program transaction decoded by the ingestion boundary.
// Votes are accumulated through the full slot lifecycle but not folded into
// the root-hash computation.
type VoteRecord struct {
	Slot        uint64           `json:"slot"`
	Signature   common.Signature `json:"signature"`
	VoteForSlot uint64           `json:"vote_for_slot"`
	VoteForHash common.Hash      `json:"vote_for_hash"`
	RawMessage  []byte           `json:"raw_message"`
}

func (*VoteRecord) isEvent() {}

// BlockMeta is the per-slot block metadata record: the parent slot's bank
// hash, this slot's blockhash and the executed transaction count.
type BlockMeta struct {
	Slot            uint64      `json:"slot"`
	ParentBankhash  common.Hash `json:"parent_bankhash"`
	Blockhash       common.Hash `json:"blockhash"`
	ExecutedTxCount uint64      `json:"executed_transaction_count"`
}

func (*BlockMeta) isEvent() {}

// SlotEvent is a slot-status transition.
type SlotEvent struct {
	Slot   uint64     `json:"slot"`
	Status SlotStatus `json:"status"`
}

func (*SlotEvent) isEvent() {}
