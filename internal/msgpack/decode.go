// Package msgpack provides MessagePack encoding and order-preserving decoding
// for filter payloads.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// maxDepth bounds the nesting of maps and arrays accepted by DecodeOrdered.
const maxDepth = 1024

// Entry is a single key/value pair of a decoded map.
type Entry struct {
	Key   string
	Value any
}

// Map is a decoded MessagePack map that keeps the encoded key order.
type Map []Entry

// Encode serializes a Go value into MessagePack format.
//
// Example:
//
//	data, err := msgpack.Encode(map[string]any{
//	    "price": map[string]any{"$gt": 70},
//	})
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	return data, nil
}

// DecodeOrdered deserializes MessagePack data into a generic value.
// Maps become Map (string keys only), arrays become []any, and scalars use
// the library defaults (integers of the encoded width, float32/float64,
// string, bool, time.Time for the timestamp extension).
func DecodeOrdered(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty MessagePack data")
	}

	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	v, err := decodeValue(dec, r, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("failed to decode MessagePack: %d trailing bytes", r.Len())
	}

	return v, nil
}

// decodeValue reads one value. r is the reader behind dec; container
// capacity never exceeds the bytes left in it, since every entry takes at
// least one byte.
func decodeValue(dec *msgpack.Decoder, r *bytes.Reader, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errors.New("maximum nesting depth exceeded")
	}

	c, err := dec.PeekCode()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		m := make(Map, 0, min(n, r.Len()))
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
			value, err := decodeValue(dec, r, depth+1)
			if err != nil {
				return nil, err
			}
			m = append(m, Entry{Key: key, Value: value})
		}
		return m, nil

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, min(n, r.Len()))
		for i := 0; i < n; i++ {
			item, err := decodeValue(dec, r, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	return dec.DecodeInterface()
}
