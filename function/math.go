package function

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ncobase/formula/types"
)

func registerMath(r *Registry) {
	mustRegister(r,
		&Descriptor{
			Name: "ABS", Category: CategoryMath, Description: "Absolute value of a number",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Abs(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "ROUND", Category: CategoryMath, Description: "Round a number to a given number of decimal places",
			Args:    []ArgSpec{{Name: "number", Type: "number"}, {Name: "digits", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				shift := decimalShift(args, 1)
				return math.Round(types.ToNumber(args[0])*shift) / shift, nil
			},
		},
		&Descriptor{
			Name: "FLOOR", Category: CategoryMath, Description: "Round a number down to the nearest integer",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Floor(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "CEIL", Category: CategoryMath, Description: "Round a number up to the nearest integer",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Ceil(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "SQRT", Category: CategoryMath, Description: "Square root of a number",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				n := types.ToNumber(args[0])
				if n < 0 {
					return nil, fmt.Errorf("SQRT of negative number %g", n)
				}
				return math.Sqrt(n), nil
			},
		},
		&Descriptor{
			Name: "POWER", Category: CategoryMath, Description: "Raise a number to a power",
			Args:    []ArgSpec{{Name: "base", Type: "number"}, {Name: "exponent", Type: "number"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Pow(types.ToNumber(args[0]), types.ToNumber(args[1])), nil
			},
		},
		&Descriptor{
			Name: "MOD", Category: CategoryMath, Description: "Remainder after division",
			Args:    []ArgSpec{{Name: "number", Type: "number"}, {Name: "divisor", Type: "number"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				divisor := types.ToNumber(args[1])
				if divisor == 0 {
					return nil, fmt.Errorf("MOD by zero")
				}
				return math.Mod(types.ToNumber(args[0]), divisor), nil
			},
		},
		&Descriptor{
			Name: "LOG", Category: CategoryMath, Description: "Natural logarithm, or logarithm in a given base",
			Args:    []ArgSpec{{Name: "number", Type: "number"}, {Name: "base", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				n := types.ToNumber(args[0])
				if n <= 0 {
					return nil, fmt.Errorf("LOG of non-positive number %g", n)
				}
				if len(args) == 2 {
					base := types.ToNumber(args[1])
					if base <= 0 || base == 1 {
						return nil, fmt.Errorf("invalid LOG base %g", base)
					}
					return math.Log(n) / math.Log(base), nil
				}
				return math.Log(n), nil
			},
		},
		&Descriptor{
			Name: "LOG10", Category: CategoryMath, Description: "Base-10 logarithm",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				n := types.ToNumber(args[0])
				if n <= 0 {
					return nil, fmt.Errorf("LOG10 of non-positive number %g", n)
				}
				return math.Log10(n), nil
			},
		},
		&Descriptor{
			Name: "EXP", Category: CategoryMath, Description: "e raised to a power",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Exp(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "SIN", Category: CategoryMath, Description: "Sine of an angle in radians",
			Args:    []ArgSpec{{Name: "radians", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Sin(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "COS", Category: CategoryMath, Description: "Cosine of an angle in radians",
			Args:    []ArgSpec{{Name: "radians", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Cos(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "TAN", Category: CategoryMath, Description: "Tangent of an angle in radians",
			Args:    []ArgSpec{{Name: "radians", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return math.Tan(types.ToNumber(args[0])), nil
			},
		},
		&Descriptor{
			Name: "RADIANS", Category: CategoryMath, Description: "Convert degrees to radians",
			Args:    []ArgSpec{{Name: "degrees", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.ToNumber(args[0]) * math.Pi / 180, nil
			},
		},
		&Descriptor{
			Name: "DEGREES", Category: CategoryMath, Description: "Convert radians to degrees",
			Args:    []ArgSpec{{Name: "radians", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.ToNumber(args[0]) * 180 / math.Pi, nil
			},
		},
		&Descriptor{
			Name: "RANDOM", Category: CategoryMath, Description: "Random number in [0, 1)",
			MinArgs: 0, MaxArgs: 0, ReturnType: "number",
			Impl: func(_ []types.Value, _ *types.Context) (types.Value, error) {
				return rand.Float64(), nil
			},
		},
		&Descriptor{
			Name: "RANDBETWEEN", Category: CategoryMath, Description: "Random integer between two bounds, inclusive",
			Args:    []ArgSpec{{Name: "low", Type: "number"}, {Name: "high", Type: "number"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				low := math.Floor(types.ToNumber(args[0]))
				high := math.Floor(types.ToNumber(args[1]))
				if high < low {
					return nil, fmt.Errorf("RANDBETWEEN bounds out of order: %g > %g", low, high)
				}
				return low + math.Floor(rand.Float64()*(high-low+1)), nil
			},
		},
		&Descriptor{
			Name: "SIGN", Category: CategoryMath, Description: "Sign of a number: -1, 0, or 1",
			Args:    []ArgSpec{{Name: "number", Type: "number"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				n := types.ToNumber(args[0])
				switch {
				case n > 0:
					return float64(1), nil
				case n < 0:
					return float64(-1), nil
				default:
					return float64(0), nil
				}
			},
		},
		&Descriptor{
			Name: "TRUNC", Category: CategoryMath, Description: "Truncate a number to a given number of decimal places",
			Args:    []ArgSpec{{Name: "number", Type: "number"}, {Name: "digits", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				shift := decimalShift(args, 1)
				return math.Trunc(types.ToNumber(args[0])*shift) / shift, nil
			},
		},
	)
}

// decimalShift returns 10^digits for the optional digits argument at idx
func decimalShift(args []types.Value, idx int) float64 {
	digits := 0.0
	if len(args) > idx {
		digits = math.Trunc(types.ToNumber(args[idx]))
	}
	return math.Pow(10, digits)
}

// mustRegister registers builtin descriptors; builtin registration cannot
// fail with well-formed descriptors
func mustRegister(r *Registry, descriptors ...*Descriptor) {
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}
