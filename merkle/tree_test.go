package merkle

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

func contentHashes(n int) []common.Hash {
	out := make([]common.Hash, n)
	for i := range out {
		out[i] = common.Sha256v([]byte(fmt.Sprintf("content%d", i)))
	}
	return out
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree(nil)
	require.Equal(t, 0, tree.LeafCount())
	require.True(t, tree.Root().IsZero())

	_, err := tree.Prove(0)
	require.Error(t, err)
}

func TestSingleLeaf(t *testing.T) {
	content := common.Sha256v([]byte("only"))
	tree := NewTree([]common.Hash{content})
	require.Equal(t, LeafHash(content), tree.Root())

	path, err := tree.Prove(0)
	require.NoError(t, err)
	require.Empty(t, path)
	require.Equal(t, tree.Root(), FoldProof(content, path))
}

func TestThreeLeafStructure(t *testing.T) {
	contents := contentHashes(3)
	tree := NewTree(contents)

	// The unpaired third leaf pairs with itself one level up.
	l0 := LeafHash(contents[0])
	l1 := LeafHash(contents[1])
	l2 := LeafHash(contents[2])
	left := intermediateHash(l0, l1)
	right := intermediateHash(l2, l2)
	require.Equal(t, intermediateHash(left, right), tree.Root())

	path, err := tree.Prove(2)
	require.NoError(t, err)
	require.Len(t, path, 2)
	require.True(t, path[0].Right)
	require.Equal(t, l2, path[0].Sibling)
	require.False(t, path[1].Right)
	require.Equal(t, left, path[1].Sibling)
}

func TestProofSoundnessAllSizes(t *testing.T) {
	for n := 1; n <= 20; n++ {
		contents := contentHashes(n)
		tree := NewTree(contents)
		for i := 0; i < n; i++ {
			path, err := tree.Prove(i)
			require.NoError(t, err, "size %d leaf %d", n, i)
			require.Equal(t, tree.Root(), FoldProof(contents[i], path), "size %d leaf %d", n, i)
		}
	}
}

func TestProofRejectsWrongContent(t *testing.T) {
	contents := contentHashes(7)
	tree := NewTree(contents)

	path, err := tree.Prove(3)
	require.NoError(t, err)
	require.NotEqual(t, tree.Root(), FoldProof(contents[4], path))

	// Flipping a sibling or its side breaks the fold.
	tampered := append([]types.ProofStep(nil), path...)
	tampered[0].Sibling[0] ^= 1
	require.NotEqual(t, tree.Root(), FoldProof(contents[3], tampered))

	flipped := append([]types.ProofStep(nil), path...)
	flipped[1].Right = !flipped[1].Right
	require.NotEqual(t, tree.Root(), FoldProof(contents[3], flipped))
}

func TestAccountTreeOrderIndependence(t *testing.T) {
	leaves := make([]AccountLeaf, 16)
	for i := range leaves {
		var pk common.Pubkey
		pk[0] = byte(i * 13)
		pk[31] = byte(i)
		leaves[i] = AccountLeaf{Pubkey: pk, Hash: common.Sha256v([]byte{byte(i)})}
	}

	reference := NewAccountTree(leaves).Root()
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]AccountLeaf(nil), leaves...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, reference, NewAccountTree(shuffled).Root())
	}
}

func TestProveAccount(t *testing.T) {
	leaves := make([]AccountLeaf, 5)
	for i := range leaves {
		var pk common.Pubkey
		pk[0] = byte(100 - i)
		leaves[i] = AccountLeaf{Pubkey: pk, Hash: common.Sha256v([]byte{byte(i)})}
	}
	tree := NewAccountTree(leaves)

	for _, leaf := range leaves {
		path, err := tree.ProveAccount(leaf.Pubkey)
		require.NoError(t, err)
		require.Equal(t, tree.Root(), FoldProof(leaf.Hash, path))
	}

	var absent common.Pubkey
	absent[0] = 0xff
	_, err := tree.ProveAccount(absent)
	require.Error(t, err)
}
