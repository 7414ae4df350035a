package types

import (
	"github.com/Sovereign-Labs/solana-proofs/common"
)

// ProofStep is one level of a Merkle inclusion proof: the sibling hash and
// the side it sits on when folding towards the root.
type ProofStep struct {
	Sibling common.Hash `json:"sibling"`
	// Right reports whether the sibling is the right-hand input of the
	// parent hash (i.e. the proven node sits on the left).
	Right bool `json:"right"`
}

// AccountProof ties a monitored account's full record to its inclusion proof
// within a slot's account-delta tree.
type AccountProof struct {
	Pubkey common.Pubkey `json:"pubkey"`
	Record AccountRecord `json:"record"`
	Path   []ProofStep   `json:"path"`
}

// BankHashProof is the proof bundle for one finalized slot: the per-account
// inclusion proofs plus every scalar input of the bank-hash chain.
type BankHashProof struct {
	Proofs           []AccountProof `json:"proofs"`
	NumSigs          uint64         `json:"num_sigs"`
	AccountDeltaRoot common.Hash    `json:"account_delta_root"`
	ParentBankhash   common.Hash    `json:"parent_bankhash"`
	Blockhash        common.Hash    `json:"blockhash"`
}

// Update is the artifact emitted to subscribers for one finalized slot.
type Update struct {
	Slot  uint64        `json:"slot"`
	Root  common.Hash   `json:"root"`
	Proof BankHashProof `json:"proof"`
}
