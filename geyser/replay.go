package geyser

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/common"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// Replay event kinds.
const (
	KindAccount      = "account"
	KindTransaction  = "transaction"
	KindVote         = "vote"
	KindSlot         = "slot"
	KindBlock        = "block"
	KindEndOfStartup = "end_of_startup"
)

// ReplayEvent is one JSON-lines record of an event capture. Pubkeys, hashes
// and signatures are base58 strings; raw payloads are base64.
type ReplayEvent struct {
	Kind string `json:"kind"`

	// account
	Pubkey       string `json:"pubkey,omitempty"`
	Lamports     uint64 `json:"lamports,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Executable   bool   `json:"executable,omitempty"`
	RentEpoch    uint64 `json:"rent_epoch,omitempty"`
	Data         string `json:"data,omitempty"`
	WriteVersion uint64 `json:"write_version,omitempty"`

	// transaction
	NumSigs uint64 `json:"num_sigs,omitempty"`

	// vote
	Signature   string `json:"signature,omitempty"`
	VoteForSlot uint64 `json:"vote_for_slot,omitempty"`
	VoteForHash string `json:"vote_for_hash,omitempty"`
	RawMessage  string `json:"raw_message,omitempty"`

	// slot
	Status string `json:"status,omitempty"`

	// block
	ParentBankhash  string `json:"parent_bankhash,omitempty"`
	Blockhash       string `json:"blockhash,omitempty"`
	ExecutedTxCount uint64 `json:"executed_transaction_count,omitempty"`

	Slot uint64 `json:"slot,omitempty"`
}

// Replay feeds a JSON-lines event capture into the notifier, one event per
// line. A malformed line poisons only itself: the error names the line and
// replay stops there, leaving previously delivered events intact.
func Replay(r io.Reader, n Notifier) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var ev ReplayEvent
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if err := deliver(&ev, n); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
	return scanner.Err()
}

func deliver(ev *ReplayEvent, n Notifier) error {
	switch ev.Kind {
	case KindAccount:
		pubkey, err := common.Base58ToPubkey(ev.Pubkey)
		if err != nil {
			return err
		}
		owner, err := common.Base58ToPubkey(ev.Owner)
		if err != nil {
			return err
		}
		data, err := base64.StdEncoding.DecodeString(ev.Data)
		if err != nil {
			return errors.Wrap(err, "decoding account data")
		}
		return n.NotifyAccount(&types.AccountRecord{
			Pubkey:       pubkey,
			Lamports:     ev.Lamports,
			Owner:        owner,
			Executable:   ev.Executable,
			RentEpoch:    ev.RentEpoch,
			Data:         data,
			WriteVersion: ev.WriteVersion,
			Slot:         ev.Slot,
		})
	case KindTransaction:
		return n.NotifyTransaction(&types.TransactionStats{Slot: ev.Slot, NumSigs: ev.NumSigs})
	case KindVote:
		sig, err := common.Base58ToSignature(ev.Signature)
		if err != nil {
			return err
		}
		voteForHash, err := common.Base58ToHash(ev.VoteForHash)
		if err != nil {
			return err
		}
		raw, err := base64.StdEncoding.DecodeString(ev.RawMessage)
		if err != nil {
			return errors.Wrap(err, "decoding vote message")
		}
		return n.NotifyVote(&types.VoteRecord{
			Slot:        ev.Slot,
			Signature:   sig,
			VoteForSlot: ev.VoteForSlot,
			VoteForHash: voteForHash,
			RawMessage:  raw,
		})
	case KindSlot:
		status, err := parseStatus(ev.Status)
		if err != nil {
			return err
		}
		return n.NotifySlotStatus(ev.Slot, status)
	case KindBlock:
		parent, err := common.Base58ToHash(ev.ParentBankhash)
		if err != nil {
			return errors.Wrap(err, "parent bankhash")
		}
		blockhash, err := common.Base58ToHash(ev.Blockhash)
		if err != nil {
			return errors.Wrap(err, "blockhash")
		}
		return n.NotifyBlockMeta(&types.BlockMeta{
			Slot:            ev.Slot,
			ParentBankhash:  parent,
			Blockhash:       blockhash,
			ExecutedTxCount: ev.ExecutedTxCount,
		})
	case KindEndOfStartup:
		return n.NotifyEndOfStartup()
	default:
		return errors.Errorf("unknown event kind %q", ev.Kind)
	}
}

func parseStatus(s string) (types.SlotStatus, error) {
	switch s {
	case "processed":
		return types.StatusProcessed, nil
	case "confirmed":
		return types.StatusConfirmed, nil
	case "rooted":
		return types.StatusRooted, nil
	case "first_shred_received":
		return types.StatusFirstShredReceived, nil
	default:
		return 0, errors.Errorf("unknown slot status %q", s)
	}
}
