package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	// PubkeyLength is the length of an account address in bytes.
	PubkeyLength = 32
	// SignatureLength is the length of a transaction signature in bytes.
	SignatureLength = 64
)

// Pubkey is a 32-byte account address, rendered as base58 text.
type Pubkey [PubkeyLength]byte

// Bytes returns the byte representation of the pubkey.
func (p Pubkey) Bytes() []byte {
	return p[:]
}

// String returns the base58 representation of the pubkey.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Cmp compares two pubkeys lexicographically.
func (p Pubkey) Cmp(other Pubkey) int {
	return bytes.Compare(p[:], other[:])
}

// BytesToPubkey converts a byte slice to a Pubkey.
func BytesToPubkey(b []byte) (Pubkey, error) {
	var p Pubkey
	if len(b) != PubkeyLength {
		return p, fmt.Errorf("invalid pubkey length %d", len(b))
	}
	copy(p[:], b)
	return p, nil
}

// Base58ToPubkey parses a base58 string into a Pubkey.
func Base58ToPubkey(s string) (Pubkey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("invalid base58 pubkey %q: %w", s, err)
	}
	return BytesToPubkey(raw)
}

// MustBase58ToPubkey parses a base58 string and panics on failure. Reserved
// for well-known addresses baked into the binary.
func MustBase58ToPubkey(s string) Pubkey {
	p, err := Base58ToPubkey(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalJSON renders the pubkey as a base58 string.
func (p Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a base58 string into the pubkey.
func (p *Pubkey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Base58ToPubkey(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Signature is a 64-byte transaction signature, rendered as base58 text.
type Signature [SignatureLength]byte

func (s Signature) Bytes() []byte {
	return s[:]
}

func (s Signature) String() string {
	return base58.Encode(s[:])
}

// Base58ToSignature parses a base58 string into a Signature.
func Base58ToSignature(str string) (Signature, error) {
	var sig Signature
	raw, err := base58.Decode(str)
	if err != nil {
		return sig, fmt.Errorf("invalid base58 signature %q: %w", str, err)
	}
	if len(raw) != SignatureLength {
		return sig, fmt.Errorf("invalid signature length %d", len(raw))
	}
	copy(sig[:], raw)
	return sig, nil
}

// MarshalJSON renders the signature as a base58 string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a base58 string into the signature.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := Base58ToSignature(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
