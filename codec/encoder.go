package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrLengthOverflow  = errors.New("length exceeds uint32 range")
)

type encodeState struct {
	io.Writer
}

func (es *encodeState) marshal(in interface{}) (err error) {
	switch in := in.(type) {
	case uint8:
		_, err = es.Write([]byte{in})
	case int8:
		_, err = es.Write([]byte{byte(in)})
	case uint16:
		err = es.writeUint(uint64(in), 2)
	case int16:
		err = es.writeUint(uint64(uint16(in)), 2)
	case uint32:
		err = es.writeUint(uint64(in), 4)
	case int32:
		err = es.writeUint(uint64(uint32(in)), 4)
	case uint64:
		err = es.writeUint(in, 8)
	case int64:
		err = es.writeUint(uint64(in), 8)
	case bool:
		err = es.encodeBool(in)
	case []byte:
		err = es.encodeBytes(in)
	case string:
		err = es.encodeBytes([]byte(in))
	default:
		err = es.encodeReflect(reflect.ValueOf(in))
	}
	return
}

func (es *encodeState) encodeReflect(v reflect.Value) (err error) {
	switch v.Kind() {
	case reflect.Bool:
		err = es.encodeBool(v.Bool())
	case reflect.Uint8:
		_, err = es.Write([]byte{byte(v.Uint())})
	case reflect.Uint16:
		err = es.writeUint(v.Uint(), 2)
	case reflect.Uint32:
		err = es.writeUint(v.Uint(), 4)
	case reflect.Uint64:
		err = es.writeUint(v.Uint(), 8)
	case reflect.Int8:
		_, err = es.Write([]byte{byte(v.Int())})
	case reflect.Int16:
		err = es.writeUint(uint64(uint16(v.Int())), 2)
	case reflect.Int32:
		err = es.writeUint(uint64(uint32(v.Int())), 4)
	case reflect.Int64:
		err = es.writeUint(uint64(v.Int()), 8)
	case reflect.String:
		err = es.encodeBytes([]byte(v.String()))
	case reflect.Ptr:
		// A pointer encodes as an option: one presence byte, then the value.
		if v.IsNil() {
			_, err = es.Write([]byte{0})
		} else {
			if _, err = es.Write([]byte{1}); err != nil {
				return
			}
			err = es.marshal(v.Elem().Interface())
		}
	case reflect.Struct:
		err = es.encodeStruct(v)
	case reflect.Array:
		err = es.encodeArray(v)
	case reflect.Slice:
		err = es.encodeSlice(v)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, v.Kind())
	}
	return
}

func (es *encodeState) writeUint(val uint64, size int) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, val)
	_, err := es.Write(buf[:size])
	return err
}

func (es *encodeState) encodeBool(b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := es.Write([]byte{v})
	return err
}

// encodeBytes writes a u32 little-endian length prefix followed by the raw
// bytes.
func (es *encodeState) encodeBytes(b []byte) error {
	if err := es.writeLength(len(b)); err != nil {
		return err
	}
	_, err := es.Write(b)
	return err
}

func (es *encodeState) writeLength(n int) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d", ErrLengthOverflow, n)
	}
	return es.writeUint(uint64(n), 4)
}

// encodeStruct writes exported fields in declaration order. Fields tagged
// `codec:"-"` are skipped.
func (es *encodeState) encodeStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("codec") == "-" {
			continue
		}
		if err := es.marshal(v.Field(i).Interface()); err != nil {
			return fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}
	}
	return nil
}

// encodeArray writes fixed-size array elements with no length prefix. Byte
// arrays (hashes, pubkeys) are written raw.
func (es *encodeState) encodeArray(v reflect.Value) error {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		buf := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(buf), v)
		_, err := es.Write(buf)
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := es.marshal(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// encodeSlice writes a u32 length prefix followed by the elements.
func (es *encodeState) encodeSlice(v reflect.Value) error {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		return es.encodeBytes(v.Bytes())
	}
	if err := es.writeLength(v.Len()); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := es.marshal(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}
