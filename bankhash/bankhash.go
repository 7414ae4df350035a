// Package bankhash composes and verifies the per-slot state-integrity digest.
//
// The bank hash is a one-way chain over four inputs in fixed order:
//
//	BankHash = SHA256(parent_bankhash || account_delta_root || num_sigs || blockhash)
//
// with the signature count encoded as 8 little-endian bytes. The formula and
// byte order must match the host ledger exactly so the digest can be
// cross-checked against the chain's own value.
package bankhash

import (
	"github.com/Sovereign-Labs/solana-proofs/common"
)

// Compose computes the slot's bank hash from its four inputs.
func Compose(parent common.Hash, deltaRoot common.Hash, numSigs uint64, blockhash common.Hash) common.Hash {
	return common.Sha256v(
		parent.Bytes(),
		deltaRoot.Bytes(),
		common.Uint64ToBytes(numSigs),
		blockhash.Bytes(),
	)
}
