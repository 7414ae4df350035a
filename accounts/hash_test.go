package accounts

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

func testPubkey(b byte) common.Pubkey {
	var p common.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestHashLayout(t *testing.T) {
	owner := testPubkey(0x11)
	pubkey := testPubkey(0x22)
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	h := sha256.New()
	h.Write(common.Uint64ToBytes(5000))
	h.Write(common.Uint64ToBytes(361))
	h.Write(data)
	h.Write([]byte{1})
	h.Write(owner.Bytes())
	h.Write(pubkey.Bytes())
	expected := common.BytesToHash(h.Sum(nil))

	got := Hash(5000, owner, true, 361, data, pubkey)
	require.Equal(t, expected, got)
}

func TestHashZeroLamports(t *testing.T) {
	got := Hash(0, testPubkey(0x11), false, 7, []byte("payload"), testPubkey(0x22))
	require.True(t, got.IsZero(), "zero-lamport account must hash to the zero digest")
}

func TestHashExecutableByte(t *testing.T) {
	owner := testPubkey(0x11)
	pubkey := testPubkey(0x22)
	plain := Hash(1, owner, false, 0, nil, pubkey)
	exec := Hash(1, owner, true, 0, nil, pubkey)
	require.NotEqual(t, plain, exec)
}

func TestHashDataSensitivity(t *testing.T) {
	owner := testPubkey(0x11)
	pubkey := testPubkey(0x22)
	a := Hash(1, owner, false, 0, []byte{1, 2, 3}, pubkey)
	b := Hash(1, owner, false, 0, []byte{1, 2, 4}, pubkey)
	require.NotEqual(t, a, b)
}

func TestHashRecordMatchesHash(t *testing.T) {
	rec := &types.AccountRecord{
		Pubkey:     testPubkey(0x33),
		Lamports:   123456,
		Owner:      testPubkey(0x44),
		Executable: false,
		RentEpoch:  250,
		Data:       []byte("account state"),
	}
	require.Equal(t,
		Hash(rec.Lamports, rec.Owner, rec.Executable, rec.RentEpoch, rec.Data, rec.Pubkey),
		HashRecord(rec))
}
