package function

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/google/uuid"

	"github.com/ncobase/formula/types"
)

func registerUtility(r *Registry) {
	mustRegister(r,
		&Descriptor{
			Name: "TYPE", Category: CategoryUtility, Description: "Runtime type name of a value",
			Args:    []ArgSpec{{Name: "value", Type: "any"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.KindOf(args[0]).String(), nil
			},
		},
		&Descriptor{
			Name: "TOSTRING", Category: CategoryUtility, Description: "Convert a value to a string",
			Args:    []ArgSpec{{Name: "value", Type: "any"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.ToString(args[0]), nil
			},
		},
		&Descriptor{
			Name: "TONUMBER", Category: CategoryUtility, Description: "Convert a value to a number",
			Args:    []ArgSpec{{Name: "value", Type: "any"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.ToNumber(args[0]), nil
			},
		},
		&Descriptor{
			Name: "TOBOOLEAN", Category: CategoryUtility, Description: "Convert a value to a boolean",
			Args:    []ArgSpec{{Name: "value", Type: "any"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.ToBool(args[0]), nil
			},
		},
		&Descriptor{
			Name: "TODATE", Category: CategoryUtility, Description: "Convert a value to a date",
			Args:    []ArgSpec{{Name: "value", Type: "any"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "date",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				t, ok := types.ToTime(args[0])
				if !ok {
					return nil, fmt.Errorf("cannot convert %v to a date", args[0])
				}
				return t, nil
			},
		},
		&Descriptor{
			Name: "TOJSON", Category: CategoryUtility, Description: "Serialize a value to JSON text",
			Args:    []ArgSpec{{Name: "value", Type: "any"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				data, err := json.Marshal(args[0])
				if err != nil {
					return nil, fmt.Errorf("TOJSON: %v", err)
				}
				return string(data), nil
			},
		},
		&Descriptor{
			Name: "FROMJSON", Category: CategoryUtility, Description: "Parse JSON text into a value",
			Args:    []ArgSpec{{Name: "json", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				var out any
				if err := json.Unmarshal([]byte(types.ToString(args[0])), &out); err != nil {
					return nil, fmt.Errorf("FROMJSON: %v", err)
				}
				return types.Normalize(out), nil
			},
		},
		&Descriptor{
			Name: "ENCODE", Category: CategoryUtility, Description: "URL-encode text",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return url.QueryEscape(types.ToString(args[0])), nil
			},
		},
		&Descriptor{
			Name: "DECODE", Category: CategoryUtility, Description: "URL-decode text",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				out, err := url.QueryUnescape(types.ToString(args[0]))
				if err != nil {
					return nil, fmt.Errorf("DECODE: %v", err)
				}
				return out, nil
			},
		},
		&Descriptor{
			Name: "UUID", Category: CategoryUtility, Description: "Random v4 UUID",
			MinArgs: 0, MaxArgs: 0, ReturnType: "string",
			Impl: func(_ []types.Value, _ *types.Context) (types.Value, error) {
				return uuid.NewString(), nil
			},
		},
		&Descriptor{
			Name: "HASH", Category: CategoryUtility, Description: "Non-cryptographic rolling hash of text",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				var h int32
				for _, c := range types.ToString(args[0]) {
					h = h*31 + c
				}
				return float64(h), nil
			},
		},
		&Descriptor{
			Name: "BASE64ENCODE", Category: CategoryUtility, Description: "Base64-encode text",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return base64.StdEncoding.EncodeToString([]byte(types.ToString(args[0]))), nil
			},
		},
		&Descriptor{
			Name: "BASE64DECODE", Category: CategoryUtility, Description: "Base64-decode text",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				data, err := base64.StdEncoding.DecodeString(types.ToString(args[0]))
				if err != nil {
					return nil, fmt.Errorf("BASE64DECODE: %v", err)
				}
				return string(data), nil
			},
		},
		&Descriptor{
			Name: "LET", Category: CategoryUtility, Description: "Evaluate name/value pairs and return the final expression; bindings are not visible to later arguments",
			Args:    []ArgSpec{{Name: "name/value pairs and result", Type: "any"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "any",
			// Arguments are evaluated eagerly by normal call evaluation, so
			// the bindings cannot feed later arguments; only the final
			// argument survives. Kept compatible with formulas that use
			// LET purely for readability.
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return args[len(args)-1], nil
			},
		},
		&Descriptor{
			Name: "UNIQUE", Category: CategoryUtility, Description: "Array with duplicate values removed, first occurrence kept",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				values := types.Flatten(args)
				out := make([]types.Value, 0, len(values))
				for _, v := range values {
					duplicate := false
					for _, u := range out {
						if types.Equal(v, u) {
							duplicate = true
							break
						}
					}
					if !duplicate {
						out = append(out, v)
					}
				}
				return out, nil
			},
		},
		&Descriptor{
			Name: "SORT", Category: CategoryUtility, Description: "Array sorted ascending, or descending with SORT(array, TRUE)",
			Args:    []ArgSpec{{Name: "array", Type: "array"}, {Name: "descending", Type: "boolean", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok {
					return args[0], nil
				}
				descending := len(args) > 1 && types.ToBool(args[1])
				out := make([]types.Value, len(arr))
				copy(out, arr)
				sort.SliceStable(out, func(i, j int) bool {
					if descending {
						return types.Compare(out[i], out[j]) > 0
					}
					return types.Compare(out[i], out[j]) < 0
				})
				return out, nil
			},
		},
		&Descriptor{
			Name: "REVERSE", Category: CategoryUtility, Description: "Array in reverse order",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok {
					return args[0], nil
				}
				out := make([]types.Value, len(arr))
				for i, v := range arr {
					out[len(arr)-1-i] = v
				}
				return out, nil
			},
		},
		&Descriptor{
			Name: "FIRST", Category: CategoryUtility, Description: "First element of an array",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok || len(arr) == 0 {
					return nil, nil
				}
				return arr[0], nil
			},
		},
		&Descriptor{
			Name: "LAST", Category: CategoryUtility, Description: "Last element of an array",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok || len(arr) == 0 {
					return nil, nil
				}
				return arr[len(arr)-1], nil
			},
		},
		&Descriptor{
			Name: "NTH", Category: CategoryUtility, Description: "1-based n-th element of an array",
			Args:    []ArgSpec{{Name: "array", Type: "array"}, {Name: "n", Type: "number"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok {
					return nil, nil
				}
				n := int(types.ToNumber(args[1]))
				if n < 1 || n > len(arr) {
					return nil, nil
				}
				return arr[n-1], nil
			},
		},
		&Descriptor{
			Name: "SLICE", Category: CategoryUtility, Description: "1-based inclusive slice of an array",
			Args: []ArgSpec{
				{Name: "array", Type: "array"}, {Name: "start", Type: "number"},
				{Name: "end", Type: "number", Optional: true},
			},
			MinArgs: 2, MaxArgs: 3, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok {
					return []types.Value{}, nil
				}
				start := int(types.ToNumber(args[1]))
				end := len(arr)
				if len(args) > 2 {
					end = int(types.ToNumber(args[2]))
				}
				if start < 1 {
					start = 1
				}
				if end > len(arr) {
					end = len(arr)
				}
				if start > end {
					return []types.Value{}, nil
				}
				out := make([]types.Value, end-start+1)
				copy(out, arr[start-1:end])
				return out, nil
			},
		},
		&Descriptor{
			Name: "FILTER", Category: CategoryUtility, Description: "Array with blank elements removed",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok {
					return args[0], nil
				}
				out := make([]types.Value, 0, len(arr))
				for _, v := range arr {
					if !types.IsBlank(v) {
						out = append(out, v)
					}
				}
				return out, nil
			},
		},
		&Descriptor{
			Name: "FLATTEN", Category: CategoryUtility, Description: "Recursively flatten nested arrays",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.Flatten(args), nil
			},
		},
		&Descriptor{
			Name: "ARRAYLEN", Category: CategoryUtility, Description: "Number of elements in an array",
			Args:    []ArgSpec{{Name: "array", Type: "array"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				arr, ok := args[0].([]types.Value)
				if !ok {
					return float64(0), nil
				}
				return float64(len(arr)), nil
			},
		},
		&Descriptor{
			Name: "ERROR", Category: CategoryUtility, Description: "Fail evaluation with a custom message",
			Args:    []ArgSpec{{Name: "message", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "any",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return nil, fmt.Errorf("%s", types.ToString(args[0]))
			},
		},
	)
}
