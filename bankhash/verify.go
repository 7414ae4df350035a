package bankhash

import (
	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/accounts"
	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/merkle"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// Outcome classifies one verification check. The three failure modes are
// deliberately distinct: an internally inconsistent Merkle path, a bank hash
// that does not recompose, and a proof that is self-consistent but disagrees
// with an independently obtained snapshot.
type Outcome uint8

const (
	OutcomeOK Outcome = iota
	OutcomeProofInvalid
	OutcomeRootMismatch
	OutcomeSnapshotMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeProofInvalid:
		return "proof_invalid"
	case OutcomeRootMismatch:
		return "root_mismatch"
	case OutcomeSnapshotMismatch:
		return "snapshot_mismatch"
	default:
		return "unknown"
	}
}

// AccountResult is the verification verdict for one account proof.
type AccountResult struct {
	Pubkey      common.Pubkey
	Outcome     Outcome
	ContentHash common.Hash // recomputed from the embedded record
}

// Result is the verdict for one update.
type Result struct {
	Slot     uint64
	Root     common.Hash
	Accounts []AccountResult
}

// OK reports whether every check passed.
func (r Result) OK() bool {
	for _, a := range r.Accounts {
		if a.Outcome != OutcomeOK {
			return false
		}
	}
	return true
}

// Failures returns the subset of account results that did not verify.
func (r Result) Failures() []AccountResult {
	var out []AccountResult
	for _, a := range r.Accounts {
		if a.Outcome != OutcomeOK {
			out = append(out, a)
		}
	}
	return out
}

// Snapshot is an account's state as obtained out-of-band (e.g. a live RPC
// query), used to detect stale or forged proofs.
type Snapshot struct {
	Lamports   uint64
	Owner      common.Pubkey
	Executable bool
	RentEpoch  uint64
	Data       []byte
}

// SnapshotSource resolves reference snapshots for the cross-check stage.
type SnapshotSource interface {
	AccountSnapshot(pubkey common.Pubkey) (*Snapshot, error)
}

// Verify checks every proof in the update without consulting any external
// state. For each account it recomputes the content hash from the embedded
// record, folds the sibling path and compares against the asserted delta
// root; it then recomposes the bank hash from the bundle's scalars and
// compares against the asserted root. Verification is stateless and safe to
// run concurrently on independent updates.
func Verify(update *types.Update) Result {
	recomposed := Compose(
		update.Proof.ParentBankhash,
		update.Proof.AccountDeltaRoot,
		update.Proof.NumSigs,
		update.Proof.Blockhash,
	)
	rootOK := recomposed == update.Root

	result := Result{Slot: update.Slot, Root: update.Root}
	for i := range update.Proof.Proofs {
		proof := &update.Proof.Proofs[i]
		content := accounts.HashRecord(&proof.Record)
		verdict := AccountResult{Pubkey: proof.Pubkey, Outcome: OutcomeOK, ContentHash: content}

		switch {
		case merkle.FoldProof(content, proof.Path) != update.Proof.AccountDeltaRoot:
			verdict.Outcome = OutcomeProofInvalid
		case !rootOK:
			verdict.Outcome = OutcomeRootMismatch
		}
		result.Accounts = append(result.Accounts, verdict)
	}
	return result
}

// VerifyAgainstSnapshots runs Verify, then cross-checks each account that
// passed against a reference snapshot from the source. A proof whose embedded
// record hashes differently from the live account is reported as
// OutcomeSnapshotMismatch even though it is internally self-consistent.
func VerifyAgainstSnapshots(update *types.Update, source SnapshotSource) (Result, error) {
	result := Verify(update)
	for i := range result.Accounts {
		verdict := &result.Accounts[i]
		if verdict.Outcome != OutcomeOK {
			continue
		}
		snap, err := source.AccountSnapshot(verdict.Pubkey)
		if err != nil {
			return result, errors.Wrapf(err, "fetching snapshot for %s", verdict.Pubkey)
		}
		snapHash := accounts.Hash(snap.Lamports, snap.Owner, snap.Executable, snap.RentEpoch, snap.Data, verdict.Pubkey)
		if snapHash != verdict.ContentHash {
			verdict.Outcome = OutcomeSnapshotMismatch
		}
	}
	return result, nil
}
