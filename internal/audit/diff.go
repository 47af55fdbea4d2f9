package audit

import (
	"math"
	"reflect"
	"time"

	"github.com/ecelabs/lims-backend/internal/models"
)

// Diff computes the field-level change set between two record snapshots.
// A nil before means CREATE (every old is nil); a nil after means DELETE
// (every new is nil). For updates only fields whose value actually changed
// under normalized equality appear in the result, so a no-op update yields
// an empty map. Pure function, no side effects.
func Diff(before, after map[string]any) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)

	switch {
	case before == nil && after == nil:
		return changes
	case before == nil:
		for k, v := range after {
			changes[k] = models.FieldChange{Old: nil, New: v}
		}
	case after == nil:
		for k, v := range before {
			changes[k] = models.FieldChange{Old: v, New: nil}
		}
	default:
		for k, oldV := range before {
			newV, ok := after[k]
			if !ok {
				changes[k] = models.FieldChange{Old: oldV, New: nil}
				continue
			}
			if !valuesEqual(oldV, newV) {
				changes[k] = models.FieldChange{Old: oldV, New: newV}
			}
		}
		for k, newV := range after {
			if _, ok := before[k]; !ok {
				changes[k] = models.FieldChange{Old: nil, New: newV}
			}
		}
	}
	return changes
}

// valuesEqual compares two field values after normalization so that
// representational differences (timestamp serialization, numeric width) do
// not produce spurious diffs. Numbers are compared exactly: integers stay
// 64-bit integers, so values above 2^53 never collapse through a float.
func valuesEqual(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if eq, ok := numericEqual(na, nb); ok {
		return eq
	}
	return reflect.DeepEqual(na, nb)
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC()
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC()
	case []byte:
		return string(x)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		// Typed strings (statuses etc.) compare as their underlying string.
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			return rv.String()
		}
		return v
	}
}

// float64 cannot represent 2^63 (or 2^64) minus one exactly, so the range
// checks below use the next power of two, which it can.
const (
	maxInt64Float  = float64(1 << 63)
	maxUint64Float = float64(1 << 64)
)

// numericEqual decides equality across the three normalized numeric types.
// The second return reports whether both values were numeric at all.
func numericEqual(a, b any) (bool, bool) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y, true
		case uint64:
			return x >= 0 && uint64(x) == y, true
		case float64:
			return floatEqualsInt64(y, x), true
		}
	case uint64:
		switch y := b.(type) {
		case int64:
			return y >= 0 && uint64(y) == x, true
		case uint64:
			return x == y, true
		case float64:
			return floatEqualsUint64(y, x), true
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return floatEqualsInt64(x, y), true
		case uint64:
			return floatEqualsUint64(x, y), true
		case float64:
			return x == y, true
		}
	}
	return false, false
}

func floatEqualsInt64(f float64, i int64) bool {
	if f != math.Trunc(f) || f < -maxInt64Float || f >= maxInt64Float {
		return false
	}
	return int64(f) == i
}

func floatEqualsUint64(f float64, u uint64) bool {
	if f != math.Trunc(f) || f < 0 || f >= maxUint64Float {
		return false
	}
	return uint64(f) == u
}
