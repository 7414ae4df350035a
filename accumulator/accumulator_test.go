package accumulator

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Sovereign-Labs/solana-proofs/accounts"
	"github.com/Sovereign-Labs/solana-proofs/bankhash"
	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/merkle"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

var (
	monitoredA = mkPubkey(0x0a)
	monitoredB = mkPubkey(0x0b)
	bystander  = mkPubkey(0xcc)
)

func mkPubkey(b byte) common.Pubkey {
	var p common.Pubkey
	p[0] = b
	p[31] = b
	return p
}

func mkRecord(slot uint64, pubkey common.Pubkey, lamports, version uint64) *types.AccountRecord {
	return &types.AccountRecord{
		Pubkey:       pubkey,
		Lamports:     lamports,
		Owner:        mkPubkey(0x01),
		RentEpoch:    250,
		Data:         []byte{byte(lamports)},
		WriteVersion: version,
		Slot:         slot,
	}
}

func mkSlotHashesRecord(slot uint64, version uint64) *types.AccountRecord {
	payload := accounts.EncodeSlotHashes([]accounts.SlotHash{
		{Slot: slot - 1, Hash: common.Sha256v([]byte("ancestor"))},
	})
	return &types.AccountRecord{
		Pubkey:       accounts.SlotHashesPubkey,
		Lamports:     1,
		Owner:        mkPubkey(0x02),
		Data:         payload,
		WriteVersion: version,
		Slot:         slot,
	}
}

// ingestFullSlot stages everything a slot needs to finalize.
func ingestFullSlot(a *Accumulator, slot uint64) {
	a.Ingest(mkRecord(slot, monitoredA, 1000, 1))
	a.Ingest(mkRecord(slot, monitoredB, 2000, 2))
	a.Ingest(mkRecord(slot, bystander, 3000, 3))
	a.Ingest(mkSlotHashesRecord(slot, 4))
	a.Ingest(&types.TransactionStats{Slot: slot, NumSigs: 7})
	a.Ingest(&types.BlockMeta{
		Slot:           slot,
		ParentBankhash: common.Sha256v([]byte("parent")),
		Blockhash:      common.Sha256v([]byte("block")),
	})
}

func TestWriteVersionRules(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})

	a.Ingest(mkRecord(100, monitoredA, 1000, 5))
	a.Ingest(mkRecord(100, monitoredA, 2000, 7))
	require.Equal(t, uint64(2000), a.raw.accounts[100][monitoredA].record.Lamports)

	// Lower version is discarded.
	a.Ingest(mkRecord(100, monitoredA, 3000, 6))
	require.Equal(t, uint64(2000), a.raw.accounts[100][monitoredA].record.Lamports)

	// Equal version keeps the earliest-seen record.
	a.Ingest(mkRecord(100, monitoredA, 4000, 7))
	require.Equal(t, uint64(2000), a.raw.accounts[100][monitoredA].record.Lamports)
}

func TestTransactionStatsAccumulate(t *testing.T) {
	a := New(nil)
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 3})
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 4})
	a.Ingest(&types.TransactionStats{Slot: 101, NumSigs: 9})
	require.Equal(t, uint64(7), a.raw.sigs[100])
	require.Equal(t, uint64(9), a.raw.sigs[101])
}

func TestPromoteIsAtomicMove(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	ingestFullSlot(a, 100)

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)

	require.NotContains(t, a.raw.accounts, uint64(100))
	require.Contains(t, a.processed.accounts, uint64(100))
	require.Equal(t, uint64(7), a.processed.sigs[100])

	// A repeated processing status finds no raw state and changes nothing.
	before := a.processed.accounts[100][monitoredA].record.Lamports
	_, err = a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	require.Equal(t, before, a.processed.accounts[100][monitoredA].record.Lamports)

	// Fresh raw state for the same slot replaces the processed table on the
	// next processing status.
	a.Ingest(mkRecord(100, monitoredA, 9999, 99))
	_, err = a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	require.Equal(t, uint64(9999), a.processed.accounts[100][monitoredA].record.Lamports)
}

func TestConfirmProducesVerifiableUpdate(t *testing.T) {
	a := New([]common.Pubkey{monitoredA, monitoredB})
	ingestFullSlot(a, 100)

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)

	update, err := a.Advance(100, types.StatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, update)
	require.Equal(t, uint64(100), update.Slot)
	require.Equal(t, uint64(7), update.Proof.NumSigs)

	// Two monitored accounts plus the ancestry sysvar, sysvar last.
	require.Len(t, update.Proof.Proofs, 3)
	require.Equal(t, accounts.SlotHashesPubkey, update.Proof.Proofs[2].Pubkey)

	result := bankhash.Verify(update)
	require.True(t, result.OK(), "emitted update must verify: %+v", result.Failures())

	// State is consumed once.
	raw, processed, blocks := a.InflightSlots()
	require.Zero(t, raw)
	require.Zero(t, processed)
	require.Zero(t, blocks)
}

func TestConfirmWithoutBlockMeta(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	a.Ingest(mkRecord(100, monitoredA, 1000, 1))
	a.Ingest(mkSlotHashesRecord(100, 2))
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 1})

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)

	update, err := a.Advance(100, types.StatusConfirmed)
	require.Nil(t, update)
	require.True(t, errors.Is(err, ErrNoBlockMeta))

	// The failed slot is purged like a successful one.
	_, processed, blocks := a.InflightSlots()
	require.Zero(t, processed)
	require.Zero(t, blocks)
}

func TestConfirmWithoutSignatureCount(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	a.Ingest(mkRecord(100, monitoredA, 1000, 1))
	a.Ingest(mkSlotHashesRecord(100, 2))
	a.Ingest(&types.BlockMeta{Slot: 100})

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	_, err = a.Advance(100, types.StatusConfirmed)
	require.True(t, errors.Is(err, ErrNoSignatureCount))
}

func TestConfirmWithoutPromotion(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	ingestFullSlot(a, 100)

	// Confirmed without a prior Processing-complete: the processed stage is
	// empty, so the slot fails and purges.
	_, err := a.Advance(100, types.StatusConfirmed)
	require.True(t, errors.Is(err, ErrNoSignatureCount))
}

func TestConfirmNotApplicable(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})

	// Only a bystander and the sysvar were touched.
	a.Ingest(mkRecord(100, bystander, 3000, 1))
	a.Ingest(mkSlotHashesRecord(100, 2))
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 1})
	a.Ingest(&types.BlockMeta{Slot: 100})

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)

	update, err := a.Advance(100, types.StatusConfirmed)
	require.Nil(t, update)
	require.True(t, errors.Is(err, ErrNoMonitoredAccounts))
}

// Monitoring the ancestry sysvar itself does not make a slot applicable.
func TestSysvarAloneIsNotApplicable(t *testing.T) {
	a := New([]common.Pubkey{accounts.SlotHashesPubkey})
	ingestFullSlot(a, 100)

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	_, err = a.Advance(100, types.StatusConfirmed)
	require.True(t, errors.Is(err, ErrNoMonitoredAccounts))
}

func TestConfirmWithoutSlotHashes(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	a.Ingest(mkRecord(100, monitoredA, 1000, 1))
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 1})
	a.Ingest(&types.BlockMeta{Slot: 100})

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	_, err = a.Advance(100, types.StatusConfirmed)
	require.True(t, errors.Is(err, ErrNoSlotHashesAccount))
}

func TestConfirmWithMalformedSlotHashes(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	a.Ingest(mkRecord(100, monitoredA, 1000, 1))
	rec := mkSlotHashesRecord(100, 2)
	rec.Data = rec.Data[:5]
	a.Ingest(rec)
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 1})
	a.Ingest(&types.BlockMeta{Slot: 100})

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	update, err := a.Advance(100, types.StatusConfirmed)
	require.Nil(t, update)
	require.Error(t, err)

	// The failure is per-slot: a later well-formed slot still finalizes.
	ingestFullSlot(a, 101)
	_, err = a.Advance(101, types.StatusProcessed)
	require.NoError(t, err)
	update, err = a.Advance(101, types.StatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, update)
}

// Full lifecycle with the smallest possible slot: one monitored account
// written twice plus the ancestry sysvar. The emitted update commits to the
// later write and recomposes from first principles.
func TestLifecycleSlot100(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})

	a.Ingest(mkRecord(100, monitoredA, 10, 1))
	a.Ingest(mkRecord(100, monitoredA, 20, 2))
	sysvar := mkSlotHashesRecord(100, 3)
	a.Ingest(sysvar)
	a.Ingest(&types.TransactionStats{Slot: 100, NumSigs: 5})

	parent := common.Sha256v([]byte("H0"))
	blockhash := common.Sha256v([]byte("B0"))
	a.Ingest(&types.BlockMeta{Slot: 100, ParentBankhash: parent, Blockhash: blockhash, ExecutedTxCount: 5})

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	update, err := a.Advance(100, types.StatusConfirmed)
	require.NoError(t, err)

	// The version-2 record won.
	require.Equal(t, uint64(20), update.Proof.Proofs[0].Record.Lamports)

	// The delta root is the two-leaf tree over {P's v2 hash, sysvar hash}.
	v2 := mkRecord(100, monitoredA, 20, 2)
	expectedDelta := merkle.NewAccountTree([]merkle.AccountLeaf{
		{Pubkey: monitoredA, Hash: accounts.HashRecord(v2)},
		{Pubkey: accounts.SlotHashesPubkey, Hash: accounts.HashRecord(sysvar)},
	}).Root()
	require.Equal(t, expectedDelta, update.Proof.AccountDeltaRoot)

	// And the root is the four-input chain over block metadata, delta and
	// the signature count.
	require.Equal(t, bankhash.Compose(parent, expectedDelta, 5, blockhash), update.Root)
	require.True(t, bankhash.Verify(update).OK())
}

// A pubkey listed twice in the monitored set yields one proof, not two.
func TestDuplicateMonitoredAccounts(t *testing.T) {
	a := New([]common.Pubkey{monitoredA, monitoredB, monitoredA})
	require.Equal(t, []common.Pubkey{monitoredA, monitoredB}, a.MonitoredAccounts())

	ingestFullSlot(a, 100)
	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	update, err := a.Advance(100, types.StatusConfirmed)
	require.NoError(t, err)

	require.Len(t, update.Proof.Proofs, 3)
	require.Equal(t, monitoredA, update.Proof.Proofs[0].Pubkey)
	require.Equal(t, monitoredB, update.Proof.Proofs[1].Pubkey)
	require.Equal(t, accounts.SlotHashesPubkey, update.Proof.Proofs[2].Pubkey)
}

func TestSlotsAreIndependent(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	ingestFullSlot(a, 100)
	ingestFullSlot(a, 101)

	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)
	update, err := a.Advance(100, types.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, uint64(100), update.Slot)

	// Slot 101 is untouched by slot 100's lifecycle.
	_, err = a.Advance(101, types.StatusProcessed)
	require.NoError(t, err)
	update, err = a.Advance(101, types.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, uint64(101), update.Slot)
}

func TestOtherStatusesIgnored(t *testing.T) {
	a := New([]common.Pubkey{monitoredA})
	ingestFullSlot(a, 100)

	update, err := a.Advance(100, types.StatusRooted)
	require.NoError(t, err)
	require.Nil(t, update)
	update, err = a.Advance(100, types.StatusFirstShredReceived)
	require.NoError(t, err)
	require.Nil(t, update)

	// Raw state survives non-lifecycle statuses.
	require.Contains(t, a.raw.accounts, uint64(100))
}

func TestVotesAccessible(t *testing.T) {
	a := New(nil)
	var sig common.Signature
	sig[0] = 0x55
	a.Ingest(&types.VoteRecord{Slot: 100, Signature: sig, VoteForSlot: 99})

	require.Empty(t, a.Votes(100))
	_, err := a.Advance(100, types.StatusProcessed)
	require.NoError(t, err)

	votes := a.Votes(100)
	require.Len(t, votes, 1)
	require.Equal(t, uint64(99), votes[0].VoteForSlot)
}
