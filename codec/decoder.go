package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"reflect"
)

var (
	ErrUnsupportedDestination = errors.New("destination must be a non-nil pointer")
	ErrLengthTooLarge         = errors.New("declared length exceeds limit")
)

// maxDecodeLength bounds any single length prefix read off the wire, so a
// corrupt frame cannot trigger an enormous allocation.
const maxDecodeLength = 1 << 28

// Unmarshal decodes wire bytes into the destination pointer and requires the
// input to be fully consumed.
func Unmarshal(data []byte, dst interface{}) error {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		return fmt.Errorf("%w: %T", ErrUnsupportedDestination, dst)
	}

	buf := bytes.NewBuffer(data)
	ds := decodeState{Reader: buf}
	if err := ds.unmarshal(dstv.Elem()); err != nil {
		return fmt.Errorf("decoding failed: %w", err)
	}
	if buf.Len() != 0 {
		return fmt.Errorf("decoding failed: %d trailing bytes", buf.Len())
	}
	return nil
}

type decodeState struct {
	io.Reader
}

func (ds *decodeState) unmarshal(dstv reflect.Value) (err error) {
	switch dstv.Kind() {
	case reflect.Bool:
		var b byte
		if b, err = ds.readByte(); err != nil {
			return
		}
		dstv.SetBool(b != 0)
	case reflect.Uint8:
		var b byte
		if b, err = ds.readByte(); err != nil {
			return
		}
		dstv.SetUint(uint64(b))
	case reflect.Uint16:
		var val uint64
		if val, err = ds.readUint(2); err != nil {
			return
		}
		dstv.SetUint(val)
	case reflect.Uint32:
		var val uint64
		if val, err = ds.readUint(4); err != nil {
			return
		}
		dstv.SetUint(val)
	case reflect.Uint64:
		var val uint64
		if val, err = ds.readUint(8); err != nil {
			return
		}
		dstv.SetUint(val)
	case reflect.Int8:
		var b byte
		if b, err = ds.readByte(); err != nil {
			return
		}
		dstv.SetInt(int64(int8(b)))
	case reflect.Int16:
		var val uint64
		if val, err = ds.readUint(2); err != nil {
			return
		}
		dstv.SetInt(int64(int16(val)))
	case reflect.Int32:
		var val uint64
		if val, err = ds.readUint(4); err != nil {
			return
		}
		dstv.SetInt(int64(int32(val)))
	case reflect.Int64:
		var val uint64
		if val, err = ds.readUint(8); err != nil {
			return
		}
		dstv.SetInt(int64(val))
	case reflect.String:
		var raw []byte
		if raw, err = ds.readBytes(); err != nil {
			return
		}
		dstv.SetString(string(raw))
	case reflect.Ptr:
		err = ds.decodeOption(dstv)
	case reflect.Struct:
		err = ds.decodeStruct(dstv)
	case reflect.Array:
		err = ds.decodeArray(dstv)
	case reflect.Slice:
		err = ds.decodeSlice(dstv)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, dstv.Kind())
	}
	return
}

func (ds *decodeState) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(ds.Reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (ds *decodeState) readUint(size int) (uint64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(ds.Reader, buf[:size]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (ds *decodeState) readLength() (int, error) {
	val, err := ds.readUint(4)
	if err != nil {
		return 0, err
	}
	if val > maxDecodeLength {
		return 0, fmt.Errorf("%w: %d", ErrLengthTooLarge, val)
	}
	return int(val), nil
}

func (ds *decodeState) readBytes() ([]byte, error) {
	length, err := ds.readLength()
	if err != nil {
		return nil, err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(ds.Reader, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (ds *decodeState) decodeOption(dstv reflect.Value) error {
	present, err := ds.readByte()
	if err != nil {
		return err
	}
	if present == 0 {
		dstv.Set(reflect.Zero(dstv.Type()))
		return nil
	}
	elem := reflect.New(dstv.Type().Elem())
	if err := ds.unmarshal(elem.Elem()); err != nil {
		return err
	}
	dstv.Set(elem)
	return nil
}

func (ds *decodeState) decodeStruct(dstv reflect.Value) error {
	t := dstv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("codec") == "-" {
			continue
		}
		if err := ds.unmarshal(dstv.Field(i)); err != nil {
			return fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}
	}
	return nil
}

func (ds *decodeState) decodeArray(dstv reflect.Value) error {
	if dstv.Type().Elem().Kind() == reflect.Uint8 {
		buf := make([]byte, dstv.Len())
		if _, err := io.ReadFull(ds.Reader, buf); err != nil {
			return err
		}
		reflect.Copy(dstv, reflect.ValueOf(buf))
		return nil
	}
	for i := 0; i < dstv.Len(); i++ {
		if err := ds.unmarshal(dstv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) decodeSlice(dstv reflect.Value) error {
	if dstv.Type().Elem().Kind() == reflect.Uint8 {
		raw, err := ds.readBytes()
		if err != nil {
			return err
		}
		dstv.SetBytes(raw)
		return nil
	}
	length, err := ds.readLength()
	if err != nil {
		return err
	}
	slice := reflect.MakeSlice(dstv.Type(), length, length)
	for i := 0; i < length; i++ {
		if err := ds.unmarshal(slice.Index(i)); err != nil {
			return err
		}
	}
	dstv.Set(slice)
	return nil
}
