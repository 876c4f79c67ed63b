package function

import (
	"fmt"
	"time"

	"github.com/ncobase/formula/types"
)

func registerLogic(r *Registry) {
	mustRegister(r,
		&Descriptor{
			Name: "IF", Category: CategoryLogic, Description: "Return one of two values depending on a condition",
			Args: []ArgSpec{
				{Name: "condition", Type: "boolean"}, {Name: "then", Type: "any"},
				{Name: "else", Type: "any", Optional: true},
			},
			MinArgs: 2, MaxArgs: 3, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				if types.ToBool(args[0]) {
					return args[1], nil
				}
				if len(args) > 2 {
					return args[2], nil
				}
				return nil, nil
			},
		},
		&Descriptor{
			Name: "IFS", Category: CategoryLogic, Description: "Return the value paired with the first true condition",
			Args:    []ArgSpec{{Name: "condition/value pairs", Type: "any"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				for i := 0; i+1 < len(args); i += 2 {
					if types.ToBool(args[i]) {
						return args[i+1], nil
					}
				}
				// odd trailing argument acts as a default
				if len(args)%2 == 1 {
					return args[len(args)-1], nil
				}
				return nil, nil
			},
		},
		&Descriptor{
			Name: "SWITCH", Category: CategoryLogic, Description: "Match a value against case/result pairs with an optional default",
			Args:    []ArgSpec{{Name: "value", Type: "any"}, {Name: "case/result pairs", Type: "any"}},
			MinArgs: 3, MaxArgs: Variadic, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				subject := args[0]
				rest := args[1:]
				for i := 0; i+1 < len(rest); i += 2 {
					if types.Equal(subject, rest[i]) {
						return rest[i+1], nil
					}
				}
				if len(rest)%2 == 1 {
					return rest[len(rest)-1], nil
				}
				return nil, nil
			},
		},
		&Descriptor{
			Name: "AND", Category: CategoryLogic, Description: "True when every argument is truthy",
			Args:    []ArgSpec{{Name: "values", Type: "boolean"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				for _, a := range types.Flatten(args) {
					if !types.ToBool(a) {
						return false, nil
					}
				}
				return true, nil
			},
		},
		&Descriptor{
			Name: "OR", Category: CategoryLogic, Description: "True when any argument is truthy",
			Args:    []ArgSpec{{Name: "values", Type: "boolean"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				for _, a := range types.Flatten(args) {
					if types.ToBool(a) {
						return true, nil
					}
				}
				return false, nil
			},
		},
		&Descriptor{
			Name: "NOT", Category: CategoryLogic, Description: "Logical negation",
			Args:    []ArgSpec{{Name: "value", Type: "boolean"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return !types.ToBool(args[0]), nil
			},
		},
		&Descriptor{
			Name: "XOR", Category: CategoryLogic, Description: "True when an odd number of arguments is truthy",
			Args:    []ArgSpec{{Name: "values", Type: "boolean"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				count := 0
				for _, a := range types.Flatten(args) {
					if types.ToBool(a) {
						count++
					}
				}
				return count%2 == 1, nil
			},
		},
		typeCheck("ISBLANK", "True for null or empty string", func(v types.Value) bool {
			return types.IsBlank(v)
		}),
		typeCheck("ISNOTBLANK", "True for a non-null, non-empty value", func(v types.Value) bool {
			return !types.IsBlank(v)
		}),
		typeCheck("ISNUMBER", "True for a number", func(v types.Value) bool {
			return types.KindOf(v) == types.KindNumber
		}),
		typeCheck("ISTEXT", "True for a string", func(v types.Value) bool {
			return types.KindOf(v) == types.KindString
		}),
		typeCheck("ISLOGICAL", "True for a boolean", func(v types.Value) bool {
			return types.KindOf(v) == types.KindBoolean
		}),
		typeCheck("ISDATE", "True for a date", func(v types.Value) bool {
			_, ok := v.(time.Time)
			return ok
		}),
		&Descriptor{
			Name: "IFERROR", Category: CategoryLogic, Description: "Fallback value when the first argument fails to evaluate",
			Args:    []ArgSpec{{Name: "value", Type: "any"}, {Name: "fallback", Type: "any"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "any",
			// The evaluator special-cases IFERROR to catch failures in the
			// first argument; when both arguments evaluated cleanly the
			// value passes through.
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return args[0], nil
			},
		},
		&Descriptor{
			Name: "IFBLANK", Category: CategoryLogic, Description: "Fallback value when the first argument is blank",
			Args:    []ArgSpec{{Name: "value", Type: "any"}, {Name: "fallback", Type: "any"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				if types.IsBlank(args[0]) {
					return args[1], nil
				}
				return args[0], nil
			},
		},
		&Descriptor{
			Name: "COALESCE", Category: CategoryLogic, Description: "First non-null argument",
			Args:    []ArgSpec{{Name: "values", Type: "any"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				for _, a := range args {
					if a != nil {
						return a, nil
					}
				}
				return nil, nil
			},
		},
		&Descriptor{
			Name: "TRUE", Category: CategoryLogic, Description: "The boolean constant true",
			MinArgs: 0, MaxArgs: 0, ReturnType: "boolean",
			Impl: func(_ []types.Value, _ *types.Context) (types.Value, error) {
				return true, nil
			},
		},
		&Descriptor{
			Name: "FALSE", Category: CategoryLogic, Description: "The boolean constant false",
			MinArgs: 0, MaxArgs: 0, ReturnType: "boolean",
			Impl: func(_ []types.Value, _ *types.Context) (types.Value, error) {
				return false, nil
			},
		},
		&Descriptor{
			Name: "CHOOSE", Category: CategoryLogic, Description: "Pick the k-th value, 1-based",
			Args:    []ArgSpec{{Name: "index", Type: "number"}, {Name: "values", Type: "any"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				k := int(types.ToNumber(args[0]))
				choices := args[1:]
				if k < 1 || k > len(choices) {
					return nil, fmt.Errorf("CHOOSE index %d out of range 1..%d", k, len(choices))
				}
				return choices[k-1], nil
			},
		},
		&Descriptor{
			Name: "BETWEEN", Category: CategoryLogic, Description: "Whether a value lies within an inclusive range",
			Args:    []ArgSpec{{Name: "value", Type: "any"}, {Name: "low", Type: "any"}, {Name: "high", Type: "any"}},
			MinArgs: 3, MaxArgs: 3, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.Compare(args[0], args[1]) >= 0 && types.Compare(args[0], args[2]) <= 0, nil
			},
		},
		&Descriptor{
			Name: "IN", Category: CategoryLogic, Description: "Whether a value equals any of the candidates; array candidates are flattened",
			Args:    []ArgSpec{{Name: "value", Type: "any"}, {Name: "candidates", Type: "any"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				subject := args[0]
				for _, candidate := range types.Flatten(args[1:]) {
					if types.Equal(subject, candidate) {
						return true, nil
					}
				}
				return false, nil
			},
		},
	)
}

func typeCheck(name, description string, check func(types.Value) bool) *Descriptor {
	return &Descriptor{
		Name: name, Category: CategoryLogic, Description: description,
		Args:    []ArgSpec{{Name: "value", Type: "any"}},
		MinArgs: 1, MaxArgs: 1, ReturnType: "boolean",
		Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
			return check(args[0]), nil
		},
	}
}
