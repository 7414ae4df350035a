package accounts

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/common"
)

// SlotHashesAccount is the address of the slot-ancestry sysvar. Its account
// is written every slot, which makes it a mandatory member of every slot's
// account-delta set and the anchor of every proof bundle.
const SlotHashesAccount = "SysvarS1otHashes111111111111111111111111111"

// SlotHashesPubkey is the decoded form of SlotHashesAccount.
var SlotHashesPubkey = common.MustBase58ToPubkey(SlotHashesAccount)

// SlotHash is one (slot, hash) ancestry entry of the sysvar payload.
type SlotHash struct {
	Slot uint64      `json:"slot"`
	Hash common.Hash `json:"hash"`
}

const slotHashEntrySize = 8 + common.HashLength

// DecodeSlotHashes parses the sysvar account payload: a u64 little-endian
// entry count followed by (slot u64, hash 32) pairs.
func DecodeSlotHashes(data []byte) ([]SlotHash, error) {
	if len(data) < 8 {
		return nil, errors.Errorf("slot hashes payload too short: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint64(data)
	rest := data[8:]
	// Compare by division so an adversarial count cannot wrap the product.
	if count > uint64(len(rest))/slotHashEntrySize {
		return nil, errors.Errorf("slot hashes payload truncated: %d entries declared, %d bytes remain", count, len(rest))
	}

	entries := make([]SlotHash, count)
	for i := range entries {
		off := i * slotHashEntrySize
		entries[i].Slot = binary.LittleEndian.Uint64(rest[off:])
		entries[i].Hash = common.BytesToHash(rest[off+8 : off+slotHashEntrySize])
	}
	return entries, nil
}

// EncodeSlotHashes is the inverse of DecodeSlotHashes, used by replay
// captures and tests to synthesize sysvar payloads.
func EncodeSlotHashes(entries []SlotHash) []byte {
	out := make([]byte, 8+len(entries)*slotHashEntrySize)
	binary.LittleEndian.PutUint64(out, uint64(len(entries)))
	for i, e := range entries {
		off := 8 + i*slotHashEntrySize
		binary.LittleEndian.PutUint64(out[off:], e.Slot)
		copy(out[off+8:], e.Hash.Bytes())
	}
	return out
}
