package types

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numberPrefix matches the longest numeric prefix of a string, mirroring
// spreadsheet-style lenient parsing: "12.5kg" coerces to 12.5.
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// timeFormats are tried in order when coercing strings to dates
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ToNumber coerces a value to a float64: null becomes 0, booleans 0/1,
// strings their numeric prefix (0 when unparsable), dates their epoch
// milliseconds.
func ToNumber(v Value) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case bool:
		if n {
			return 1
		}
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		m := numberPrefix.FindString(strings.TrimSpace(n))
		if m == "" {
			return 0
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return f
	case time.Time:
		return float64(n.UnixMilli())
	default:
		return 0
	}
}

// ToBool coerces a value to a boolean: null and 0 and "" and empty
// arrays/objects are false, everything else true.
func ToBool(v Value) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case []Value:
		return len(b) > 0
	case map[string]Value:
		return len(b) > 0
	case time.Time:
		return true
	default:
		return ToNumber(v) != 0
	}
}

// ToString renders a value for display and concatenation
func ToString(v Value) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		return s.Format(time.RFC3339)
	case []Value:
		parts := make([]string, len(s))
		for i, el := range s {
			parts[i] = ToString(el)
		}
		return strings.Join(parts, ", ")
	case map[string]Value:
		data, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		n := ToNumber(v)
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

// ToTime coerces a value to a date. Strings are tried against the known
// formats, numbers are taken as epoch milliseconds.
func ToTime(v Value) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeFormats {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case nil:
		return time.Time{}, false
	default:
		if KindOf(v) == KindNumber {
			return time.UnixMilli(int64(ToNumber(v))).UTC(), true
		}
		return time.Time{}, false
	}
}

// Equal reports structural equality: both-null is equal, dates compare by
// timestamp, arrays element-wise with equal length, objects by key set and
// recursive values; otherwise primitive equality.
func Equal(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			return at.UnixMilli() == bt.UnixMilli()
		}
		return false
	}

	if aa, aok := a.([]Value); aok {
		ba, bok := b.([]Value)
		if !bok || len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	}

	if ao, aok := a.(map[string]Value); aok {
		bo, bok := b.(map[string]Value)
		if !bok || len(ao) != len(bo) {
			return false
		}
		for k, av := range ao {
			bv, ok := bo[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	if KindOf(a) == KindNumber && KindOf(b) == KindNumber {
		return ToNumber(a) == ToNumber(b)
	}

	return a == b
}

// Compare orders two values: dates by timestamp, numbers numerically,
// strings lexically, anything else by numeric coercion. Returns -1, 0 or 1.
// String ordering is byte-wise, not locale-aware, so results are stable
// across environments.
func Compare(a, b Value) int {
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.UnixMilli() < bt.UnixMilli():
				return -1
			case at.UnixMilli() > bt.UnixMilli():
				return 1
			default:
				return 0
			}
		}
	}

	if KindOf(a) == KindNumber && KindOf(b) == KindNumber {
		return compareFloat(ToNumber(a), ToNumber(b))
	}

	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}

	return compareFloat(ToNumber(a), ToNumber(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Flatten recursively expands nested arrays among the given values into a
// single flat slice. Variadic aggregate functions flatten their arguments
// before computing.
func Flatten(values []Value) []Value {
	out := make([]Value, 0, len(values))
	for _, v := range values {
		if arr, ok := v.([]Value); ok {
			out = append(out, Flatten(arr)...)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Normalize converts decoded JSON (or host-supplied loose data) into the
// canonical Value shapes: []any to []Value, map[string]any to
// map[string]Value, numeric variants to float64.
func Normalize(v any) Value {
	switch t := v.(type) {
	case []any:
		out := make([]Value, len(t))
		for i, el := range t {
			out[i] = Normalize(el)
		}
		return out
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, el := range t {
			out[k] = Normalize(el)
		}
		return out
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ToNumber(t)
	default:
		return v
	}
}
