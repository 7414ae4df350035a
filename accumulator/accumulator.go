// Package accumulator maintains the staged per-slot state needed to
// reconstruct a slot's bank hash: account-hash tables, transaction signature
// counts and vote records move raw -> processed on a Processing-complete
// status and are consumed exactly once when the slot is confirmed.
//
// The accumulator is an owned object with no internal locking: all methods
// must be called from the single goroutine that drains the event queue.
package accumulator

import (
	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/accounts"
	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// Per-slot failure conditions. All are non-fatal: the slot is purged and
// processing continues.
var (
	ErrNoBlockMeta         = errors.New("block metadata not available")
	ErrNoSignatureCount    = errors.New("transaction signature count not available")
	ErrNoAccountTable      = errors.New("account table not available")
	ErrNoSlotHashesAccount = errors.New("slot hashes account not touched in slot")
	ErrNoMonitoredAccounts = errors.New("no monitored account modified in slot")
)

// accountEntry is one account's canonical state within a slot: the highest
// write-version observed, its content hash and the full record.
type accountEntry struct {
	writeVersion uint64
	hash         common.Hash
	record       types.AccountRecord
}

type accountTable map[common.Pubkey]*accountEntry

type voteTable map[common.Signature]*types.VoteRecord

// stage holds one lifecycle stage of the per-slot maps.
type stage struct {
	accounts map[uint64]accountTable
	sigs     map[uint64]uint64
	votes    map[uint64]voteTable
}

func newStage() stage {
	return stage{
		accounts: make(map[uint64]accountTable),
		sigs:     make(map[uint64]uint64),
		votes:    make(map[uint64]voteTable),
	}
}

// Accumulator owns all in-flight slot state. Block metadata lives outside
// the raw/processed staging: it is available or not.
type Accumulator struct {
	raw       stage
	processed stage
	blocks    map[uint64]*types.BlockMeta

	monitored []common.Pubkey
}

// New returns an accumulator producing proofs for the given monitored
// accounts. Duplicate entries collapse to one so a pubkey never yields two
// proofs per bundle. The slot-ancestry sysvar need not be listed; it is added
// to every proof bundle unconditionally.
func New(monitored []common.Pubkey) *Accumulator {
	seen := make(map[common.Pubkey]struct{}, len(monitored))
	deduped := make([]common.Pubkey, 0, len(monitored))
	for _, pubkey := range monitored {
		if _, ok := seen[pubkey]; ok {
			continue
		}
		seen[pubkey] = struct{}{}
		deduped = append(deduped, pubkey)
	}
	return &Accumulator{
		raw:       newStage(),
		processed: newStage(),
		blocks:    make(map[uint64]*types.BlockMeta),
		monitored: deduped,
	}
}

// Ingest routes one ledger event into the raw stage (or the block metadata
// store). Slot-status events are not ingested; they drive Advance.
func (a *Accumulator) Ingest(ev types.Event) {
	switch ev := ev.(type) {
	case *types.AccountRecord:
		a.ingestAccount(ev)
	case *types.TransactionStats:
		a.raw.sigs[ev.Slot] += ev.NumSigs
	case *types.VoteRecord:
		votes, ok := a.raw.votes[ev.Slot]
		if !ok {
			votes = make(voteTable)
			a.raw.votes[ev.Slot] = votes
		}
		votes[ev.Signature] = ev
	case *types.BlockMeta:
		a.blocks[ev.Slot] = ev
	}
}

// ingestAccount applies the write-version rule: a later write replaces the
// stored record only with a strictly higher version, so an equal-version
// duplicate keeps the earliest-seen record.
func (a *Accumulator) ingestAccount(rec *types.AccountRecord) {
	table, ok := a.raw.accounts[rec.Slot]
	if !ok {
		table = make(accountTable)
		a.raw.accounts[rec.Slot] = table
	}

	entry, ok := table[rec.Pubkey]
	if ok && rec.WriteVersion <= entry.writeVersion {
		return
	}
	table[rec.Pubkey] = &accountEntry{
		writeVersion: rec.WriteVersion,
		hash:         accounts.HashRecord(rec),
		record:       *rec,
	}
}

// Advance applies a slot-status transition. Processing-complete promotes the
// slot's raw state; Confirmed finalizes and returns the slot's Update. Any
// other status is ignored.
//
// Finalization failures are per-slot: the error describes why no Update was
// produced and the slot's processed state has been purged either way.
func (a *Accumulator) Advance(slot uint64, status types.SlotStatus) (*types.Update, error) {
	switch status {
	case types.StatusProcessed:
		a.promote(slot)
		return nil, nil
	case types.StatusConfirmed:
		return a.finalize(slot)
	default:
		return nil, nil
	}
}

// promote moves the slot's raw structures into the processed stage as an
// atomic move, not a copy. A slot with no raw state is a no-op, which makes
// repeated Processing-complete statuses idempotent.
func (a *Accumulator) promote(slot uint64) {
	if table, ok := a.raw.accounts[slot]; ok {
		delete(a.raw.accounts, slot)
		a.processed.accounts[slot] = table
	}
	if sigs, ok := a.raw.sigs[slot]; ok {
		delete(a.raw.sigs, slot)
		a.processed.sigs[slot] = sigs
	}
	if votes, ok := a.raw.votes[slot]; ok {
		delete(a.raw.votes, slot)
		a.processed.votes[slot] = votes
	}
}

// purge drops every processed-stage structure and the block metadata for the
// slot. Called on every confirmation outcome to bound memory.
func (a *Accumulator) purge(slot uint64) {
	delete(a.processed.accounts, slot)
	delete(a.processed.sigs, slot)
	delete(a.processed.votes, slot)
	delete(a.blocks, slot)
}

// Votes returns the processed-stage vote records for a slot. Votes are
// accumulated through the full lifecycle but not folded into finalization;
// the accessor is the extension seam for consumers that want them.
func (a *Accumulator) Votes(slot uint64) []*types.VoteRecord {
	votes := a.processed.votes[slot]
	out := make([]*types.VoteRecord, 0, len(votes))
	for _, v := range votes {
		out = append(out, v)
	}
	return out
}

// MonitoredAccounts returns the configured proof targets.
func (a *Accumulator) MonitoredAccounts() []common.Pubkey {
	return a.monitored
}

// InflightSlots reports how many slots currently hold state in each stage.
func (a *Accumulator) InflightSlots() (raw int, processed int, blocks int) {
	return len(a.raw.accounts), len(a.processed.accounts), len(a.blocks)
}
