package common

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	ethereumCommon "github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Hash is a custom type based on Ethereum's common.Hash. The ledger this
// system mirrors renders hashes as base58 strings on the wire, so Hash carries
// both hex and base58 text forms.
type Hash ethereumCommon.Hash

// HashLength is the expected length of a hash in bytes.
const HashLength = ethereumCommon.HashLength

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte {
	return ethereumCommon.Hash(h).Bytes()
}

// String returns the base58 representation of the hash.
func (h Hash) String() string {
	return h.Base58()
}

// Hex returns the hexadecimal string representation of the hash.
func (h Hash) Hex() string {
	return ethereumCommon.Hash(h).Hex()
}

// Base58 returns the base58 string representation of the hash.
func (h Hash) Base58() string {
	return base58.Encode(h[:])
}

// IsZero reports whether the hash is all zero bytes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// BytesToHash converts a byte slice to a Hash.
func BytesToHash(b []byte) Hash {
	return Hash(ethereumCommon.BytesToHash(b))
}

// HexToHash converts a hexadecimal string to a Hash.
func HexToHash(s string) Hash {
	return Hash(ethereumCommon.HexToHash(s))
}

// Base58ToHash parses a base58 string into a Hash.
func Base58ToHash(s string) (Hash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid base58 hash %q: %w", s, err)
	}
	if len(raw) != HashLength {
		return Hash{}, fmt.Errorf("invalid hash length %d for %q", len(raw), s)
	}
	return BytesToHash(raw), nil
}

// MarshalJSON renders the hash as a base58 string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Base58())
}

// UnmarshalJSON parses a base58 string into the hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Base58ToHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Sha256v hashes the concatenation of the given byte slices.
func Sha256v(slices ...[]byte) Hash {
	hasher := sha256.New()
	for _, s := range slices {
		hasher.Write(s)
	}
	return BytesToHash(hasher.Sum(nil))
}
