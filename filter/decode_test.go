package filter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hugr-lab/vecfilter/internal/msgpack"
)

func TestDecodeJSONKeepsOrder(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"price": {"$lte": 100, "$gt": 70}, "brand": "acme"}`))
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}

	o, ok := v.(Object)
	if !ok {
		t.Fatalf("expected Object, got %T", v)
	}
	if keys := o.Keys(); len(keys) != 2 || keys[0] != "price" || keys[1] != "brand" {
		t.Errorf("expected [price brand], got %v", keys)
	}

	price, _ := o.Get("price")
	inner := price.(Object)
	if inner[0].Key != "$lte" || inner[1].Key != "$gt" {
		t.Errorf("expected [$lte $gt], got %v", inner.Keys())
	}
	if n, ok := inner[0].Value.(json.Number); !ok || n != "100" {
		t.Errorf("expected json.Number 100, got %#v", inner[0].Value)
	}
}

func TestDecodeJSONValues(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"a": [1, "x", true, null], "b": {}, "c": 1.50}`))
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	o := v.(Object)

	a, _ := o.Get("a")
	items := a.([]any)
	if len(items) != 4 || items[1] != "x" || items[2] != true || items[3] != nil {
		t.Errorf("unexpected array %#v", items)
	}

	b, _ := o.Get("b")
	if b, ok := b.(Object); !ok || len(b) != 0 {
		t.Errorf("expected empty Object, got %#v", b)
	}

	// Numbers keep their source text.
	c, _ := o.Get("c")
	if c != json.Number("1.50") {
		t.Errorf("expected 1.50, got %#v", c)
	}
}

func TestDecodeJSONExtendedDate(t *testing.T) {
	expected := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []string{
		`{"at": {"$date": "2024-01-02T03:04:05Z"}}`,
		`{"at": {"$date": "2024-01-02T04:04:05+01:00"}}`,
		`{"at": {"$date": 1704164645000}}`,
		`{"at": {"$date": {"$numberLong": "1704164645000"}}}`,
	}

	for _, input := range tests {
		v, err := DecodeJSON([]byte(input))
		if err != nil {
			t.Fatalf("DecodeJSON(%s) failed: %v", input, err)
		}
		at, _ := v.(Object).Get("at")
		ts, ok := at.(time.Time)
		if !ok {
			t.Fatalf("expected time.Time, got %T", at)
		}
		if !ts.Equal(expected) || ts.Location() != time.UTC {
			t.Errorf("expected %v, got %v", expected, ts)
		}
	}

	if _, err := DecodeJSON([]byte(`{"at": {"$date": true}}`)); err == nil {
		t.Error("expected error for invalid $date")
	}
}

func TestDecodeJSONEmptyAndInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "\n"} {
		v, err := DecodeJSON([]byte(input))
		if err != nil || v != nil {
			t.Errorf("expected nil, nil for %q, got %#v, %v", input, v, err)
		}
	}

	for _, input := range []string{`{"a":`, `{"a": 1} x`, `{"a" 1}`, `[1,}`} {
		if _, err := DecodeJSON([]byte(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestDecodeJSONParse(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"$or": [{"b": 2}, {"a": {"$date": "2024-01-02T00:00:00Z"}}]}`))
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}

	n := mustParse(t, v)
	or := n.(*Or)
	if p := or.Children[0].(*Field).Path.String(); p != "b" {
		t.Errorf("expected 'b' first, got '%s'", p)
	}
	if k := or.Children[1].(*Field).Conditions[0].Value.Kind; k != KindTime {
		t.Errorf("expected date, got %s", k)
	}
}

func TestDecodeBSON(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	data, err := bson.Marshal(bson.D{
		{Key: "zeta", Value: bson.D{{Key: "$gt", Value: int32(1)}, {Key: "$lt", Value: 5.5}}},
		{Key: "alpha", Value: bson.A{"x", "y"}},
		{Key: "at", Value: primitive.NewDateTimeFromTime(ts)},
		{Key: "name", Value: primitive.Regex{Pattern: "^jo"}},
	})
	if err != nil {
		t.Fatalf("bson.Marshal failed: %v", err)
	}

	v, err := DecodeBSON(data)
	if err != nil {
		t.Fatalf("DecodeBSON failed: %v", err)
	}

	n := mustParse(t, v)
	and := n.(*And)
	if len(and.Children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(and.Children))
	}

	zeta := and.Children[0].(*Field)
	if zeta.Path.String() != "zeta" || zeta.Conditions[0].Op != OpGt || zeta.Conditions[1].Value.Number != "5.5" {
		t.Errorf("unexpected zeta field %#v", zeta)
	}
	if c := and.Children[1].(*Field).Conditions[0]; c.Op != OpIn || len(c.Values) != 2 {
		t.Errorf("expected $in with 2 values, got %#v", c)
	}
	if c := and.Children[2].(*Field).Conditions[0]; c.Value.Kind != KindTime || !c.Value.Time.Equal(ts) {
		t.Errorf("expected date %v, got %#v", ts, c.Value)
	}
	if c := and.Children[3].(*Field).Conditions[0]; c.Op != OpRegex || c.Value.String != "^jo" {
		t.Errorf("expected $regex '^jo', got %#v", c)
	}

	if v, err := DecodeBSON(nil); v != nil || err != nil {
		t.Errorf("expected nil, nil for empty input, got %#v, %v", v, err)
	}
	if _, err := DecodeBSON([]byte{0x05, 0x00}); err == nil {
		t.Error("expected error for truncated BSON")
	}
}

func TestDecodeMsgpack(t *testing.T) {
	data, err := msgpack.Encode(map[string]any{
		"price": map[string]any{"$gte": 10},
		"tags":  []string{"a"},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	v, err := DecodeMsgpack(data)
	if err != nil {
		t.Fatalf("DecodeMsgpack failed: %v", err)
	}

	n := mustParse(t, v)
	and := n.(*And)
	if len(and.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(and.Children))
	}
	for _, child := range and.Children {
		f := child.(*Field)
		switch f.Path.String() {
		case "price":
			if c := f.Conditions[0]; c.Op != OpGte || c.Value.Number != "10" {
				t.Errorf("expected $gte 10, got %#v", c)
			}
		case "tags":
			if c := f.Conditions[0]; c.Op != OpIn || c.Values[0].String != "a" {
				t.Errorf("expected $in [a], got %#v", c)
			}
		default:
			t.Errorf("unexpected field %s", f.Path)
		}
	}

	if v, err := DecodeMsgpack(nil); v != nil || err != nil {
		t.Errorf("expected nil, nil for empty input, got %#v, %v", v, err)
	}
	_, err = DecodeMsgpack([]byte{0xc1})
	if err == nil {
		t.Fatal("expected error for invalid MessagePack")
	}
	if errors.Is(err, ErrInvalidFilter) {
		t.Error("decode errors must not be validation errors")
	}

	// A map32 header claiming ~268M entries with nothing behind it.
	if _, err := DecodeMsgpack([]byte{0xdf, 0x0f, 0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for truncated map header")
	}
}
