// Package types defines the runtime value model, evaluation context,
// schema metadata, and result shapes shared by the formula engine's
// components, together with the centralized coercion helpers used by the
// evaluator and every builtin function.
package types

import "time"

// Value is a dynamically typed formula value. The closed set of concrete
// types is:
//
//	nil               null
//	bool              boolean
//	float64           number
//	string            text (references are plain UUID strings)
//	time.Time         date
//	[]Value           array
//	map[string]Value  object
//
// Values are created fresh per evaluation and never mutated afterward.
type Value = any

// Kind identifies the runtime type of a Value
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindDate
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:    "null",
	KindBoolean: "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindDate:    "date",
	KindArray:   "array",
	KindObject:  "object",
}

// String returns the kind's type name as used in validation diagnostics
func (k Kind) String() string {
	return kindNames[k]
}

// KindOf returns the runtime kind of a value. Integer and float variants
// outside the canonical set are folded into KindNumber so host-supplied
// record data does not need pre-conversion.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case time.Time:
		return KindDate
	case []Value:
		return KindArray
	case map[string]Value:
		return KindObject
	default:
		return KindNull
	}
}

// IsBlank reports whether a value is null or an empty string
func IsBlank(v Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
