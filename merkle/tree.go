// Package merkle builds the deterministic binary Merkle tree over a slot's
// account content hashes and produces inclusion proofs for individual leaves.
//
// The construction reproduces the host ledger's tree byte-for-byte:
// leaf nodes are SHA256(0x00 || content_hash), intermediate nodes are
// SHA256(0x01 || left || right), and a node without a right sibling is paired
// with itself.
package merkle

import (
	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

var (
	leafPrefix         = []byte{0x00}
	intermediatePrefix = []byte{0x01}
)

// LeafHash computes the leaf node for a content hash.
func LeafHash(content common.Hash) common.Hash {
	return common.Sha256v(leafPrefix, content.Bytes())
}

// intermediateHash computes a parent node from its two children.
func intermediateHash(left, right common.Hash) common.Hash {
	return common.Sha256v(intermediatePrefix, left.Bytes(), right.Bytes())
}

// Tree holds every level of the built tree, leaves first. An empty tree has a
// zero root.
type Tree struct {
	levels [][]common.Hash
}

// NewTree builds the tree over the given leaf content hashes. The caller is
// responsible for leaf ordering; see NewAccountTree for the canonical
// pubkey-sorted account tree.
func NewTree(contents []common.Hash) *Tree {
	if len(contents) == 0 {
		return &Tree{}
	}

	level := make([]common.Hash, len(contents))
	for i, c := range contents {
		level[i] = LeafHash(c)
	}

	levels := [][]common.Hash{level}
	for len(level) > 1 {
		next := make([]common.Hash, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next[i/2] = intermediateHash(left, right)
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels}
}

// LeafCount returns the number of leaves the tree was built over.
func (t *Tree) LeafCount() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels[0])
}

// Root returns the tree root, or the zero hash for an empty tree.
func (t *Tree) Root() common.Hash {
	if len(t.levels) == 0 {
		return common.Hash{}
	}
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Prove returns the inclusion proof for the leaf at the given index: the
// ordered sibling path from leaf level to the root, with each step recording
// which side the sibling folds in on. An unpaired node proves against itself.
func (t *Tree) Prove(index int) ([]types.ProofStep, error) {
	if index < 0 || index >= t.LeafCount() {
		return nil, errors.Errorf("leaf index %d out of range (%d leaves)", index, t.LeafCount())
	}

	var path []types.ProofStep
	for _, level := range t.levels[:len(t.levels)-1] {
		var sibling common.Hash
		right := index%2 == 0
		if right {
			if index+1 < len(level) {
				sibling = level[index+1]
			} else {
				sibling = level[index]
			}
		} else {
			sibling = level[index-1]
		}
		path = append(path, types.ProofStep{Sibling: sibling, Right: right})
		index /= 2
	}
	return path, nil
}

// FoldProof recomputes the root implied by a leaf content hash and its
// sibling path. Verification succeeds when the result equals the asserted
// tree root.
func FoldProof(content common.Hash, path []types.ProofStep) common.Hash {
	current := LeafHash(content)
	for _, step := range path {
		if step.Right {
			current = intermediateHash(current, step.Sibling)
		} else {
			current = intermediateHash(step.Sibling, current)
		}
	}
	return current
}
