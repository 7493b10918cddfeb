package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/hugr-lab/vecfilter/internal/msgpack"
)

// DecodeJSON decodes a JSON filter document into an ordered value.
// Objects become Object, arrays []any, numbers json.Number.
// An extended JSON date ({"$date": "2024-01-02T00:00:00Z"} or
// {"$date": <epoch millis>}) becomes a time.Time.
// Empty input decodes to nil, meaning no filter.
func DecodeJSON(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("filter: invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("filter: invalid JSON: unexpected data after top-level value")
	}

	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := Object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("expected object key, got %v", kt)
			}
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if len(obj) == 1 && obj[0].Key == "$date" {
			return extendedDate(obj[0].Value)
		}
		return obj, nil

	case '[':
		items := []any{}
		for dec.More() {
			item, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

// extendedDate converts the operand of an extended JSON $date.
func extendedDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, d)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid $date %q: %w", d, err)
		}
		return t.UTC(), nil
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid $date %s: %w", d, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case Object:
		if raw, ok := d.Get("$numberLong"); ok && len(d) == 1 {
			if s, ok := raw.(string); ok {
				ms, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return time.Time{}, fmt.Errorf("invalid $numberLong %q: %w", s, err)
				}
				return time.UnixMilli(ms).UTC(), nil
			}
		}
	}
	return time.Time{}, errors.New("invalid $date: expected an RFC 3339 string or epoch milliseconds")
}

// DecodeBSON decodes a BSON document into a bson.D.
// Embedded documents decode as bson.D and arrays as bson.A, so key order is kept.
// Empty input decodes to nil.
func DecodeBSON(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("filter: invalid BSON: %w", err)
	}

	return doc, nil
}

// DecodeMsgpack decodes a MessagePack map into an ordered value.
// Empty input decodes to nil.
func DecodeMsgpack(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}

	v, err := msgpack.DecodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("filter: invalid MessagePack: %w", err)
	}

	return v, nil
}
