package arrowfilter

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/vecfilter/filter"
)

// column is a field path resolved against one record.
// A nil arr means the path does not exist, which reads as NULL.
type column struct {
	arr     arrow.Array
	parents []arrow.Array
}

// resolve looks up path in rec, descending into struct columns.
func resolve(rec arrow.Record, path filter.Path) column {
	idx := rec.Schema().FieldIndices(path[0])
	if len(idx) == 0 {
		return column{}
	}

	c := column{arr: rec.Column(idx[0])}
	for _, name := range path[1:] {
		st, ok := c.arr.(*array.Struct)
		if !ok {
			return column{}
		}
		j, ok := st.DataType().(*arrow.StructType).FieldIdx(name)
		if !ok {
			return column{}
		}
		c.parents = append(c.parents, st)
		c.arr = st.Field(j)
	}
	return c
}

// isNull reports whether the value at row is NULL, including a NULL parent struct.
func (c column) isNull(row int) bool {
	if c.arr == nil || c.arr.IsNull(row) {
		return true
	}
	for _, p := range c.parents {
		if p.IsNull(row) {
			return true
		}
	}
	return false
}

// value reads the scalar at row. ok is false for column types that have no
// filter representation; callers treat those as unknown.
func (c column) value(row int) (v filter.Value, ok bool) {
	if c.isNull(row) {
		return filter.Null, true
	}

	switch a := c.arr.(type) {
	case *array.Boolean:
		return filter.BoolValue(a.Value(row)), true
	case *array.Int8:
		return filter.IntValue(int64(a.Value(row))), true
	case *array.Int16:
		return filter.IntValue(int64(a.Value(row))), true
	case *array.Int32:
		return filter.IntValue(int64(a.Value(row))), true
	case *array.Int64:
		return filter.IntValue(a.Value(row)), true
	case *array.Uint8:
		return filter.IntValue(int64(a.Value(row))), true
	case *array.Uint16:
		return filter.IntValue(int64(a.Value(row))), true
	case *array.Uint32:
		return filter.IntValue(int64(a.Value(row))), true
	case *array.Uint64:
		v, err := filter.ValueOf(a.Value(row))
		return v, err == nil
	case *array.Float32:
		v, err := filter.FloatValue(float64(a.Value(row)))
		return v, err == nil
	case *array.Float64:
		v, err := filter.FloatValue(a.Value(row))
		return v, err == nil
	case *array.String:
		return filter.StringValue(a.Value(row)), true
	case *array.LargeString:
		return filter.StringValue(a.Value(row)), true
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return filter.TimeValue(a.Value(row).ToTime(unit)), true
	case *array.Date32:
		return filter.TimeValue(a.Value(row).ToTime()), true
	case *array.Date64:
		return filter.TimeValue(a.Value(row).ToTime()), true
	}
	return filter.Value{}, false
}
