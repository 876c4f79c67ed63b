package function

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ncobase/formula/types"
)

func registerAggregate(r *Registry) {
	average := &Descriptor{
		Name: "AVERAGE", Category: CategoryAggregate, Description: "Arithmetic mean of numeric arguments",
		Args:    []ArgSpec{{Name: "values", Type: "number"}},
		MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
		Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
			nums := numericValues(args)
			if len(nums) == 0 {
				return nil, nil
			}
			return sum(nums) / float64(len(nums)), nil
		},
	}
	avg := *average
	avg.Name = "AVG"

	stdev := &Descriptor{
		Name: "STDEV", Category: CategoryAggregate, Description: "Sample standard deviation",
		Args:    []ArgSpec{{Name: "values", Type: "number"}},
		MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
		Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
			v, err := sampleVariance(numericValues(args))
			if err != nil {
				return nil, err
			}
			return math.Sqrt(v), nil
		},
	}

	mustRegister(r,
		&Descriptor{
			Name: "SUM", Category: CategoryAggregate, Description: "Sum of numeric arguments; nested arrays are flattened",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return sum(numericValues(args)), nil
			},
		},
		average,
		&avg,
		&Descriptor{
			Name: "MIN", Category: CategoryAggregate, Description: "Smallest numeric argument",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				nums := numericValues(args)
				if len(nums) == 0 {
					return nil, nil
				}
				min := nums[0]
				for _, n := range nums[1:] {
					if n < min {
						min = n
					}
				}
				return min, nil
			},
		},
		&Descriptor{
			Name: "MAX", Category: CategoryAggregate, Description: "Largest numeric argument",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				nums := numericValues(args)
				if len(nums) == 0 {
					return nil, nil
				}
				max := nums[0]
				for _, n := range nums[1:] {
					if n > max {
						max = n
					}
				}
				return max, nil
			},
		},
		&Descriptor{
			Name: "COUNT", Category: CategoryAggregate, Description: "Count of numeric arguments",
			Args:    []ArgSpec{{Name: "values", Type: "any"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return float64(len(numericValues(args))), nil
			},
		},
		&Descriptor{
			Name: "COUNTA", Category: CategoryAggregate, Description: "Count of non-blank arguments",
			Args:    []ArgSpec{{Name: "values", Type: "any"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				count := 0
				for _, v := range types.Flatten(args) {
					if !types.IsBlank(v) {
						count++
					}
				}
				return float64(count), nil
			},
		},
		&Descriptor{
			Name: "COUNTBLANK", Category: CategoryAggregate, Description: "Count of blank arguments",
			Args:    []ArgSpec{{Name: "values", Type: "any"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				count := 0
				for _, v := range types.Flatten(args) {
					if types.IsBlank(v) {
						count++
					}
				}
				return float64(count), nil
			},
		},
		&Descriptor{
			Name: "COUNTIF", Category: CategoryAggregate, Description: "Count of values matching a condition such as \">5\" or an exact value",
			Args:    []ArgSpec{{Name: "values", Type: "array"}, {Name: "condition", Type: "any"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				values, match := conditionArgs(args)
				count := 0
				for _, v := range values {
					if match(v) {
						count++
					}
				}
				return float64(count), nil
			},
		},
		&Descriptor{
			Name: "SUMIF", Category: CategoryAggregate, Description: "Sum of values matching a condition",
			Args:    []ArgSpec{{Name: "values", Type: "array"}, {Name: "condition", Type: "any"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				values, match := conditionArgs(args)
				total := 0.0
				for _, v := range values {
					if match(v) {
						total += types.ToNumber(v)
					}
				}
				return total, nil
			},
		},
		&Descriptor{
			Name: "AVERAGEIF", Category: CategoryAggregate, Description: "Mean of values matching a condition",
			Args:    []ArgSpec{{Name: "values", Type: "array"}, {Name: "condition", Type: "any"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				values, match := conditionArgs(args)
				total, count := 0.0, 0
				for _, v := range values {
					if match(v) {
						total += types.ToNumber(v)
						count++
					}
				}
				if count == 0 {
					return nil, nil
				}
				return total / float64(count), nil
			},
		},
		&Descriptor{
			Name: "MEDIAN", Category: CategoryAggregate, Description: "Median of numeric arguments",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				nums := numericValues(args)
				if len(nums) == 0 {
					return nil, nil
				}
				sort.Float64s(nums)
				mid := len(nums) / 2
				if len(nums)%2 == 1 {
					return nums[mid], nil
				}
				return (nums[mid-1] + nums[mid]) / 2, nil
			},
		},
		&Descriptor{
			Name: "MODE", Category: CategoryAggregate, Description: "Most frequent numeric argument",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				nums := numericValues(args)
				if len(nums) == 0 {
					return nil, nil
				}
				counts := make(map[float64]int)
				best, bestCount := nums[0], 0
				for _, n := range nums {
					counts[n]++
					if counts[n] > bestCount {
						best, bestCount = n, counts[n]
					}
				}
				return best, nil
			},
		},
		stdev,
		&Descriptor{
			Name: "VAR", Category: CategoryAggregate, Description: "Sample variance",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return sampleVariance(numericValues(args))
			},
		},
		&Descriptor{
			Name: "PRODUCT", Category: CategoryAggregate, Description: "Product of numeric arguments",
			Args:    []ArgSpec{{Name: "values", Type: "number"}},
			MinArgs: 1, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				product := 1.0
				for _, n := range numericValues(args) {
					product *= n
				}
				return product, nil
			},
		},
		&Descriptor{
			Name: "LARGE", Category: CategoryAggregate, Description: "k-th largest numeric argument",
			Args:    []ArgSpec{{Name: "values", Type: "array"}, {Name: "k", Type: "number"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return orderStatistic(args, true)
			},
		},
		&Descriptor{
			Name: "SMALL", Category: CategoryAggregate, Description: "k-th smallest numeric argument",
			Args:    []ArgSpec{{Name: "values", Type: "array"}, {Name: "k", Type: "number"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return orderStatistic(args, false)
			},
		},
		&Descriptor{
			Name: "PERCENTILE", Category: CategoryAggregate, Description: "Percentile with linear interpolation, k in [0, 1]",
			Args:    []ArgSpec{{Name: "values", Type: "array"}, {Name: "k", Type: "number"}},
			MinArgs: 2, MaxArgs: Variadic, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				k := types.ToNumber(args[len(args)-1])
				if k < 0 || k > 1 {
					return nil, fmt.Errorf("PERCENTILE k must be within [0, 1], got %g", k)
				}
				nums := numericValues(args[:len(args)-1])
				if len(nums) == 0 {
					return nil, nil
				}
				sort.Float64s(nums)
				rank := k * float64(len(nums)-1)
				lower := int(math.Floor(rank))
				upper := int(math.Ceil(rank))
				if lower == upper {
					return nums[lower], nil
				}
				frac := rank - float64(lower)
				return nums[lower] + frac*(nums[upper]-nums[lower]), nil
			},
		},
	)
}

// numericValues flattens nested arrays among the arguments and keeps only
// numeric values
func numericValues(args []types.Value) []float64 {
	var nums []float64
	for _, v := range types.Flatten(args) {
		if types.KindOf(v) == types.KindNumber {
			nums = append(nums, types.ToNumber(v))
		}
	}
	return nums
}

func sum(nums []float64) float64 {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total
}

func sampleVariance(nums []float64) (float64, error) {
	if len(nums) < 2 {
		return 0, fmt.Errorf("sample variance requires at least 2 numeric values, got %d", len(nums))
	}
	mean := sum(nums) / float64(len(nums))
	ss := 0.0
	for _, n := range nums {
		d := n - mean
		ss += d * d
	}
	return ss / float64(len(nums)-1), nil
}

// conditionArgs splits trailing condition from leading values and builds
// the predicate
func conditionArgs(args []types.Value) ([]types.Value, func(types.Value) bool) {
	cond := args[len(args)-1]
	values := types.Flatten(args[:len(args)-1])
	return values, parseCondition(cond)
}

// parseCondition interprets a condition: strings beginning with a
// comparison operator compare numerically ("\">5\"", "\"<>0\""),
// anything else is an exact match
func parseCondition(cond types.Value) func(types.Value) bool {
	s, isString := cond.(string)
	if !isString {
		return func(v types.Value) bool { return types.Equal(v, cond) }
	}

	for _, op := range []string{"<>", "!=", ">=", "<=", ">", "<", "="} {
		if strings.HasPrefix(s, op) {
			operand := strings.TrimSpace(strings.TrimPrefix(s, op))
			threshold := types.ToNumber(operand)
			operator := op
			return func(v types.Value) bool {
				switch operator {
				case "<>", "!=":
					if types.KindOf(v) == types.KindNumber {
						return types.ToNumber(v) != threshold
					}
					return !types.Equal(v, operand)
				case "=":
					if types.KindOf(v) == types.KindNumber {
						return types.ToNumber(v) == threshold
					}
					return types.Equal(v, operand)
				case ">":
					return types.ToNumber(v) > threshold
				case ">=":
					return types.ToNumber(v) >= threshold
				case "<":
					return types.ToNumber(v) < threshold
				default:
					return types.ToNumber(v) <= threshold
				}
			}
		}
	}

	return func(v types.Value) bool { return types.Equal(v, s) }
}

func orderStatistic(args []types.Value, largest bool) (types.Value, error) {
	k := int(types.ToNumber(args[len(args)-1]))
	nums := numericValues(args[:len(args)-1])
	if k < 1 || k > len(nums) {
		return nil, fmt.Errorf("order statistic k=%d out of range 1..%d", k, len(nums))
	}
	sort.Float64s(nums)
	if largest {
		return nums[len(nums)-k], nil
	}
	return nums[k-1], nil
}
