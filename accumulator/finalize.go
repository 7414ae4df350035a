package accumulator

import (
	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/accounts"
	"github.com/Sovereign-Labs/solana-proofs/bankhash"
	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/merkle"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// finalize assembles the Update for a confirmed slot from its processed-stage
// state:
//
//  1. filter the monitored set to accounts actually touched in the slot
//  2. build the account-delta tree over all touched accounts
//  3. compose the bank hash from block metadata, delta root and sig count
//  4. assemble one inclusion proof per filtered account (plus the mandatory
//     slot-ancestry sysvar)
//
// The slot's processed state and block metadata are purged on every path,
// whether or not an Update was produced.
func (a *Accumulator) finalize(slot uint64) (*types.Update, error) {
	defer a.purge(slot)

	block, ok := a.blocks[slot]
	if !ok {
		return nil, errors.Wrapf(ErrNoBlockMeta, "slot %d", slot)
	}
	numSigs, ok := a.processed.sigs[slot]
	if !ok {
		return nil, errors.Wrapf(ErrNoSignatureCount, "slot %d", slot)
	}
	table, ok := a.processed.accounts[slot]
	if !ok {
		return nil, errors.Wrapf(ErrNoAccountTable, "slot %d", slot)
	}

	filtered := make([]common.Pubkey, 0, len(a.monitored))
	for _, pubkey := range a.monitored {
		if _, touched := table[pubkey]; touched && pubkey != accounts.SlotHashesPubkey {
			filtered = append(filtered, pubkey)
		}
	}
	if len(filtered) == 0 {
		return nil, errors.Wrapf(ErrNoMonitoredAccounts, "slot %d", slot)
	}

	// The slot-ancestry sysvar is written every slot and anchors the proof
	// bundle; its payload must be well-formed. A missing or undecodable
	// sysvar fails this slot only.
	ancestry, ok := table[accounts.SlotHashesPubkey]
	if !ok {
		return nil, errors.Wrapf(ErrNoSlotHashesAccount, "slot %d", slot)
	}
	if _, err := accounts.DecodeSlotHashes(ancestry.record.Data); err != nil {
		return nil, errors.Wrapf(err, "slot %d: decoding slot hashes sysvar", slot)
	}
	filtered = append(filtered, accounts.SlotHashesPubkey)

	// Delta tree spans every account touched in the slot, not just the
	// monitored ones.
	leaves := make([]merkle.AccountLeaf, 0, len(table))
	for pubkey, entry := range table {
		leaves = append(leaves, merkle.AccountLeaf{Pubkey: pubkey, Hash: entry.hash})
	}
	tree := merkle.NewAccountTree(leaves)
	deltaRoot := tree.Root()

	root := bankhash.Compose(block.ParentBankhash, deltaRoot, numSigs, block.Blockhash)

	proofs := make([]types.AccountProof, 0, len(filtered))
	for _, pubkey := range filtered {
		path, err := tree.ProveAccount(pubkey)
		if err != nil {
			return nil, errors.Wrapf(err, "slot %d", slot)
		}
		proofs = append(proofs, types.AccountProof{
			Pubkey: pubkey,
			Record: table[pubkey].record,
			Path:   path,
		})
	}

	return &types.Update{
		Slot: slot,
		Root: root,
		Proof: types.BankHashProof{
			Proofs:           proofs,
			NumSigs:          numSigs,
			AccountDeltaRoot: deltaRoot,
			ParentBankhash:   block.ParentBankhash,
			Blockhash:        block.Blockhash,
		},
	}, nil
}
