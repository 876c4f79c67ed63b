package function

import (
	"math"
	"testing"

	"github.com/ncobase/formula/types"
)

func TestMathFunctions(t *testing.T) {
	tests := []struct {
		name string
		args []types.Value
		want types.Value
	}{
		{"ABS", []types.Value{-5.0}, 5.0},
		{"ABS", []types.Value{5.0}, 5.0},
		{"ROUND", []types.Value{3.14159, 2.0}, 3.14},
		{"ROUND", []types.Value{2.5}, 3.0},
		{"FLOOR", []types.Value{2.9}, 2.0},
		{"FLOOR", []types.Value{-2.1}, -3.0},
		{"CEIL", []types.Value{2.1}, 3.0},
		{"SQRT", []types.Value{9.0}, 3.0},
		{"POWER", []types.Value{2.0, 10.0}, 1024.0},
		{"MOD", []types.Value{10.0, 3.0}, 1.0},
		{"LOG10", []types.Value{1000.0}, 3.0},
		{"EXP", []types.Value{0.0}, 1.0},
		{"SIN", []types.Value{0.0}, 0.0},
		{"COS", []types.Value{0.0}, 1.0},
		{"RADIANS", []types.Value{180.0}, math.Pi},
		{"DEGREES", []types.Value{math.Pi}, 180.0},
		{"SIGN", []types.Value{-7.0}, -1.0},
		{"SIGN", []types.Value{0.0}, 0.0},
		{"TRUNC", []types.Value{3.79}, 3.0},
		{"TRUNC", []types.Value{-3.79}, -3.0},
		// String arguments coerce numerically.
		{"ABS", []types.Value{"-4"}, 4.0},
	}

	for _, tt := range tests {
		got := call(t, tt.name, tt.args...)
		if got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestMathErrors(t *testing.T) {
	callErr(t, "SQRT", -1.0)
	callErr(t, "MOD", 1.0, 0.0)
}

func TestLog(t *testing.T) {
	if got := call(t, "LOG", math.E); math.Abs(got.(float64)-1) > 1e-12 {
		t.Errorf("LOG(e) = %v, want 1", got)
	}
	if got := call(t, "LOG", 8.0, 2.0); math.Abs(got.(float64)-3) > 1e-12 {
		t.Errorf("LOG(8, 2) = %v, want 3", got)
	}
}

func TestRandom(t *testing.T) {
	for i := 0; i < 50; i++ {
		v := call(t, "RANDOM").(float64)
		if v < 0 || v >= 1 {
			t.Fatalf("RANDOM() = %v, out of [0,1)", v)
		}
		b := call(t, "RANDBETWEEN", 1.0, 6.0).(float64)
		if b < 1 || b > 6 || b != math.Trunc(b) {
			t.Fatalf("RANDBETWEEN(1,6) = %v", b)
		}
	}
}
