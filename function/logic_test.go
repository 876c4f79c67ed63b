package function

import (
	"testing"
	"time"

	"github.com/ncobase/formula/types"
)

func TestIf(t *testing.T) {
	if got := call(t, "IF", true, "yes", "no"); got != "yes" {
		t.Errorf("IF(true) = %v", got)
	}
	if got := call(t, "IF", false, "yes", "no"); got != "no" {
		t.Errorf("IF(false) = %v", got)
	}
	// Missing else yields null.
	if got := call(t, "IF", false, "yes"); got != nil {
		t.Errorf("IF(false, x) = %v, want nil", got)
	}
	// Condition is coerced.
	if got := call(t, "IF", 1.0, "yes", "no"); got != "yes" {
		t.Errorf("IF(1) = %v", got)
	}
}

func TestIfs(t *testing.T) {
	if got := call(t, "IFS", false, "a", true, "b"); got != "b" {
		t.Errorf("IFS = %v, want b", got)
	}
	// Odd trailing argument acts as the default.
	if got := call(t, "IFS", false, "a", false, "b", "fallback"); got != "fallback" {
		t.Errorf("IFS default = %v", got)
	}
	if got := call(t, "IFS", false, "a"); got != nil {
		t.Errorf("IFS no match = %v, want nil", got)
	}
}

func TestSwitch(t *testing.T) {
	if got := call(t, "SWITCH", "b", "a", 1.0, "b", 2.0); got != 2.0 {
		t.Errorf("SWITCH = %v, want 2", got)
	}
	if got := call(t, "SWITCH", "z", "a", 1.0, "b", 2.0, 99.0); got != 99.0 {
		t.Errorf("SWITCH default = %v, want 99", got)
	}
	if got := call(t, "SWITCH", "z", "a", 1.0); got != nil {
		t.Errorf("SWITCH no match = %v, want nil", got)
	}
}

func TestAndOrXorNot(t *testing.T) {
	if got := call(t, "AND", true, 1.0, "x"); got != true {
		t.Errorf("AND = %v", got)
	}
	if got := call(t, "AND", true, 0.0); got != false {
		t.Errorf("AND with falsy = %v", got)
	}
	if got := call(t, "OR", false, 0.0, "x"); got != true {
		t.Errorf("OR = %v", got)
	}
	if got := call(t, "OR", false, ""); got != false {
		t.Errorf("OR all falsy = %v", got)
	}
	// Array arguments are flattened.
	if got := call(t, "AND", []types.Value{true, true}); got != true {
		t.Errorf("AND(array) = %v", got)
	}
	if got := call(t, "XOR", true, false, false); got != true {
		t.Errorf("XOR = %v", got)
	}
	if got := call(t, "XOR", true, true); got != false {
		t.Errorf("XOR even = %v", got)
	}
	if got := call(t, "NOT", false); got != true {
		t.Errorf("NOT = %v", got)
	}
}

func TestTypeChecks(t *testing.T) {
	tests := []struct {
		name string
		arg  types.Value
		want bool
	}{
		{"ISBLANK", nil, true},
		{"ISBLANK", "", true},
		{"ISBLANK", 0.0, false},
		{"ISNOTBLANK", "x", true},
		{"ISNUMBER", 1.0, true},
		{"ISNUMBER", "1", false},
		{"ISTEXT", "x", true},
		{"ISTEXT", 1.0, false},
		{"ISLOGICAL", true, true},
		{"ISDATE", time.Now(), true},
		{"ISDATE", "2024-01-01", false},
	}
	for _, tt := range tests {
		if got := call(t, tt.name, tt.arg); got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.arg, got, tt.want)
		}
	}
}

func TestCoalesceAndIfBlank(t *testing.T) {
	// COALESCE skips nulls only; an empty string is a value (IFBLANK
	// is the blank-skipping form).
	if got := call(t, "COALESCE", nil, "", "first"); got != "" {
		t.Errorf("COALESCE = %v", got)
	}
	if got := call(t, "COALESCE", nil, "first", "second"); got != "first" {
		t.Errorf("COALESCE = %v", got)
	}
	if got := call(t, "COALESCE", nil, nil); got != nil {
		t.Errorf("COALESCE all null = %v", got)
	}
	if got := call(t, "IFBLANK", "", "fallback"); got != "fallback" {
		t.Errorf("IFBLANK = %v", got)
	}
	if got := call(t, "IFBLANK", "value", "fallback"); got != "value" {
		t.Errorf("IFBLANK non-blank = %v", got)
	}
}

func TestChoose(t *testing.T) {
	if got := call(t, "CHOOSE", 2.0, "a", "b", "c"); got != "b" {
		t.Errorf("CHOOSE = %v", got)
	}
	callErr(t, "CHOOSE", 0.0, "a")
	callErr(t, "CHOOSE", 4.0, "a", "b", "c")
}

func TestBetweenAndIn(t *testing.T) {
	if got := call(t, "BETWEEN", 5.0, 1.0, 10.0); got != true {
		t.Errorf("BETWEEN = %v", got)
	}
	if got := call(t, "BETWEEN", 10.0, 1.0, 10.0); got != true {
		t.Errorf("BETWEEN inclusive = %v", got)
	}
	if got := call(t, "BETWEEN", 11.0, 1.0, 10.0); got != false {
		t.Errorf("BETWEEN out of range = %v", got)
	}
	if got := call(t, "IN", "b", "a", "b", "c"); got != true {
		t.Errorf("IN = %v", got)
	}
	if got := call(t, "IN", "z", []types.Value{"a", "b"}); got != false {
		t.Errorf("IN array = %v", got)
	}
}

func TestTrueFalse(t *testing.T) {
	if got := call(t, "TRUE"); got != true {
		t.Errorf("TRUE() = %v", got)
	}
	if got := call(t, "FALSE"); got != false {
		t.Errorf("FALSE() = %v", got)
	}
}
