// Package accounts implements the canonical per-account content hash used by
// the host ledger for state verification:
//
//	AccountHash = SHA256(lamports || rent_epoch || data || executable || owner || pubkey)
//
// with 8-byte little-endian integers and a single 0/1 byte for the executable
// flag. The byte layout must be reproduced exactly: these digests are the
// Merkle leaves of the consensus-critical account-delta root.
package accounts

import (
	"crypto/sha256"

	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// Hash computes the canonical content hash of one account. Accounts drained
// to zero lamports hash to the all-zero digest, mirroring the ledger's rule
// for purged accounts.
func Hash(lamports uint64, owner common.Pubkey, executable bool, rentEpoch uint64, data []byte, pubkey common.Pubkey) common.Hash {
	if lamports == 0 {
		return common.Hash{}
	}

	hasher := sha256.New()
	hasher.Write(common.Uint64ToBytes(lamports))
	hasher.Write(common.Uint64ToBytes(rentEpoch))
	hasher.Write(data)
	if executable {
		hasher.Write([]byte{1})
	} else {
		hasher.Write([]byte{0})
	}
	hasher.Write(owner.Bytes())
	hasher.Write(pubkey.Bytes())
	return common.BytesToHash(hasher.Sum(nil))
}

// HashRecord computes the content hash of an observed account write.
func HashRecord(rec *types.AccountRecord) common.Hash {
	return Hash(rec.Lamports, rec.Owner, rec.Executable, rec.RentEpoch, rec.Data, rec.Pubkey)
}
