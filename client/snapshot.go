package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/bankhash"
	"github.com/Sovereign-Labs/solana-proofs/common"
)

// RPCSnapshotSource resolves reference account state from a Solana JSON-RPC
// endpoint using getAccountInfo with base64 data encoding. It satisfies
// bankhash.SnapshotSource for the cross-check verification stage.
type RPCSnapshotSource struct {
	URL    string
	Client *http.Client
}

// NewRPCSnapshotSource builds a source against the given JSON-RPC URL.
func NewRPCSnapshotSource(url string) *RPCSnapshotSource {
	return &RPCSnapshotSource{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcAccountInfoResponse struct {
	Result struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Executable bool     `json:"executable"`
			RentEpoch  uint64   `json:"rentEpoch"`
			Data       []string `json:"data"`
		} `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AccountSnapshot fetches the account's current state. A missing account is
// an error; callers cross-checking a proof expect the account to exist.
func (s *RPCSnapshotSource) AccountSnapshot(pubkey common.Pubkey) (*bankhash.Snapshot, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getAccountInfo",
		Params: []interface{}{
			pubkey.String(),
			map[string]string{"encoding": "base64"},
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Post(s.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", s.URL)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed rpcAccountInfoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, "decoding getAccountInfo response")
	}
	if parsed.Error != nil {
		return nil, errors.Errorf("rpc error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	value := parsed.Result.Value
	if value == nil {
		return nil, errors.Errorf("account %s not found", pubkey)
	}
	if len(value.Data) == 0 {
		return nil, errors.New("account data missing from response")
	}
	data, err := base64.StdEncoding.DecodeString(value.Data[0])
	if err != nil {
		return nil, errors.Wrap(err, "decoding account data")
	}
	owner, err := common.Base58ToPubkey(value.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "decoding owner pubkey")
	}
	return &bankhash.Snapshot{
		Lamports:   value.Lamports,
		Owner:      owner,
		Executable: value.Executable,
		RentEpoch:  value.RentEpoch,
		Data:       data,
	}, nil
}
