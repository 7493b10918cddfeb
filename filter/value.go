package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeLayout is the ISO-8601 layout used when a date is rendered as text:
// UTC with millisecond precision, e.g. 2024-01-02T03:04:05.000Z.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Kind identifies the type of a scalar filter value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindTime
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTime:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a normalized scalar operand.
// Numbers are kept as canonical decimal text so they render verbatim.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	String string
	Time   time.Time
}

// Null is the null value.
var Null = Value{Kind: KindNull}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: KindString, String: s} }

// TimeValue returns a date value normalized to UTC.
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t.UTC()} }

// IntValue returns a number value.
func IntValue(i int64) Value {
	return Value{Kind: KindNumber, Number: json.Number(strconv.FormatInt(i, 10))}
}

// FloatValue returns a number value. It fails for NaN and infinities,
// which have no literal form in either backend.
func FloatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("number %v is not finite", f)
	}
	return Value{Kind: KindNumber, Number: json.Number(formatFloat(f))}, nil
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Float64 returns the numeric value as float64.
func (v Value) Float64() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := v.Number.Float64()
	return f, err == nil
}

// Int64 returns the numeric value as int64 when it is an integer literal.
func (v Value) Int64() (int64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	i, err := v.Number.Int64()
	return i, err == nil
}

// Interface returns the value as a JSON-serializable Go value:
// nil, bool, json.Number, string, or a TimeLayout string for dates.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.String
	case KindTime:
		return v.Time.Format(TimeLayout)
	default:
		return nil
	}
}

// GoString renders the value for debugging.
func (v Value) GoString() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.String)
	case KindTime:
		return v.Time.Format(TimeLayout)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// ValueOf normalizes a scalar Go value. Objects and arrays are rejected.
func ValueOf(x any) (Value, error) {
	if isNil(x) {
		return Null, nil
	}

	switch v := x.(type) {
	case Value:
		return v, nil
	case bool:
		return BoolValue(v), nil
	case string:
		return StringValue(v), nil
	case json.Number:
		return numberValue(string(v))
	case time.Time:
		return TimeValue(v), nil
	case *time.Time:
		return TimeValue(*v), nil
	case primitive.DateTime:
		return TimeValue(v.Time()), nil
	case primitive.Timestamp:
		return TimeValue(time.Unix(int64(v.T), 0)), nil
	case primitive.Decimal128:
		return numberValue(v.String())
	case primitive.ObjectID:
		return StringValue(v.Hex()), nil
	case primitive.Null, primitive.Undefined:
		return Null, nil
	case float64:
		return FloatValue(v)
	case float32:
		return FloatValue(float64(v))
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Value{Kind: KindNumber, Number: json.Number(strconv.FormatUint(rv.Uint(), 10))}, nil
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float())
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Pointer:
		return ValueOf(rv.Elem().Interface())
	}

	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

// numberValue validates numeric text and normalizes negative zero.
func numberValue(s string) (Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return Value{}, fmt.Errorf("invalid number %q", s)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("number %s is not finite", s)
	}
	if f == 0 && strings.HasPrefix(s, "-") {
		s = "0"
	}
	return Value{Kind: KindNumber, Number: json.Number(s)}, nil
}

// formatFloat prints a float without exponent in the range JavaScript prints
// without one, and in shortest exponent form outside of it.
func formatFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
