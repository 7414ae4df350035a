package merkle

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// AccountLeaf pairs an account address with its content hash.
type AccountLeaf struct {
	Pubkey common.Pubkey
	Hash   common.Hash
}

// AccountTree is the slot's account-delta tree: leaves are the content hashes
// of every account touched in the slot, ordered by pubkey bytes so that any
// permutation of the same account set builds the identical tree.
type AccountTree struct {
	*Tree
	index map[common.Pubkey]int
}

// NewAccountTree sorts the leaves by pubkey and builds the tree. The root is
// the slot's account-delta hash.
func NewAccountTree(leaves []AccountLeaf) *AccountTree {
	sorted := make([]AccountLeaf, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Pubkey.Cmp(sorted[j].Pubkey) < 0
	})

	contents := make([]common.Hash, len(sorted))
	index := make(map[common.Pubkey]int, len(sorted))
	for i, leaf := range sorted {
		contents[i] = leaf.Hash
		index[leaf.Pubkey] = i
	}
	return &AccountTree{Tree: NewTree(contents), index: index}
}

// ProveAccount returns the inclusion proof for the given account.
func (t *AccountTree) ProveAccount(pubkey common.Pubkey) ([]types.ProofStep, error) {
	i, ok := t.index[pubkey]
	if !ok {
		return nil, errors.Errorf("account %s not in tree", pubkey)
	}
	return t.Prove(i)
}
