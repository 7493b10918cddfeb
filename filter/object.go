package filter

import (
	"reflect"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hugr-lab/vecfilter/internal/msgpack"
)

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is an ordered filter object. Decoders in this package return Objects
// so that the translated output follows the key order of the source document.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// members returns the ordered members of an object-shaped value.
// Ordered types keep their order; plain maps are walked in sorted key order.
func members(v any) ([]Member, bool) {
	switch o := v.(type) {
	case Object:
		return o, true
	case *Object:
		if o == nil {
			return nil, false
		}
		return *o, true
	case primitive.D:
		out := make([]Member, len(o))
		for i, e := range o {
			out[i] = Member{Key: e.Key, Value: e.Value}
		}
		return out, true
	case msgpack.Map:
		out := make([]Member, len(o))
		for i, e := range o {
			out[i] = Member{Key: e.Key, Value: e.Value}
		}
		return out, true
	case map[string]any:
		return sortedMembers(o), true
	case primitive.M:
		return sortedMembers(o), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make([]Member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, Member{Key: iter.Key().String(), Value: iter.Value().Interface()})
	}
	slices.SortFunc(out, func(a, b Member) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out, true
}

func sortedMembers(m map[string]any) []Member {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]Member, len(keys))
	for i, k := range keys {
		out[i] = Member{Key: k, Value: m[k]}
	}
	return out
}

// elements returns the items of an array-shaped value.
// Byte slices are not arrays.
func elements(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case primitive.A:
		return a, true
	case []byte, Object, primitive.D, msgpack.Map:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// isNil reports whether v is nil or a typed nil pointer.
// Nil slices and maps are empty collections, not nulls.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
