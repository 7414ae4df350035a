// Package codec implements the deterministic binary wire format for proof
// updates: fixed-width little-endian integers, u32 length-prefixed slices and
// strings, one-byte booleans, raw fixed-size arrays and structs serialized in
// field order. The layout matches the serializer of the upstream ledger
// tooling, so emitted Update bytes stay compatible with its consumers.
package codec

import (
	"bytes"
	"fmt"
	"reflect"
)

// Marshal serializes the given value into wire bytes. A top-level pointer is
// dereferenced rather than encoded as an option, mirroring how Unmarshal
// treats its destination.
func Marshal(v interface{}) ([]byte, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("encoding failed: nil %T", v)
		}
		v = rv.Elem().Interface()
	}
	buffer := bytes.NewBuffer(nil)
	es := encodeState{Writer: buffer}
	if err := es.marshal(v); err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	return buffer.Bytes(), nil
}

// MustMarshal runs Marshal and panics on error. Reserved for values whose
// types are statically known to be encodable.
func MustMarshal(v interface{}) []byte {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
