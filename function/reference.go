package function

import (
	"fmt"
	"strings"

	"github.com/ncobase/formula/types"
)

func registerReference(r *Registry) {
	mustRegister(r,
		&Descriptor{
			Name: "LOOKUP", Category: CategoryReference, Description: "Field of the first related record reached through a reference property",
			Args: []ArgSpec{
				{Name: "collection", Type: "string"}, {Name: "refProperty", Type: "string"},
				{Name: "sourceProperty", Type: "string"},
			},
			MinArgs: 3, MaxArgs: 3, ReturnType: "any",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				matches := relatedMatches(ctx, args)
				if len(matches) == 0 {
					return nil, nil
				}
				return types.Normalize(matches[0][types.ToString(args[2])]), nil
			},
		},
		&Descriptor{
			Name: "ROLLUP", Category: CategoryReference, Description: "Aggregate a field across related records (SUM, AVG, COUNT, MIN, MAX, FIRST, LAST, CONCAT, ...)",
			Args: []ArgSpec{
				{Name: "collection", Type: "string"}, {Name: "refProperty", Type: "string"},
				{Name: "sourceProperty", Type: "string"}, {Name: "aggregation", Type: "string"},
			},
			MinArgs: 4, MaxArgs: 4, ReturnType: "any",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				mode := strings.ToUpper(types.ToString(args[3]))
				matches := relatedMatches(ctx, args)
				field := types.ToString(args[2])

				var values []types.Value
				for _, record := range matches {
					values = append(values, types.Normalize(record[field]))
				}
				return rollup(mode, values, len(matches))
			},
		},
		&Descriptor{
			Name: "RELATED", Category: CategoryReference, Description: "Array of a field across all related records",
			Args: []ArgSpec{
				{Name: "collection", Type: "string"}, {Name: "refProperty", Type: "string"},
				{Name: "sourceProperty", Type: "string"},
			},
			MinArgs: 3, MaxArgs: 3, ReturnType: "array",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				matches := relatedMatches(ctx, args)
				field := types.ToString(args[2])
				out := make([]types.Value, 0, len(matches))
				for _, record := range matches {
					out = append(out, types.Normalize(record[field]))
				}
				return out, nil
			},
		},
		recordMeta("RECORDID", "Identifier of the current record", "id", "Id", "ID"),
		recordMeta("CREATED_BY", "User who created the current record", "created_by", "createdBy"),
		recordMeta("MODIFIED_BY", "User who last modified the current record", "modified_by", "modifiedBy", "updated_by", "updatedBy"),
		recordMeta("CREATED_AT", "Creation timestamp of the current record", "created_at", "createdAt"),
		recordMeta("MODIFIED_AT", "Last modification timestamp of the current record", "modified_at", "modifiedAt", "updated_at", "updatedAt"),
		&Descriptor{
			Name: "AUTONUMBER", Category: CategoryReference, Description: "Record sequence number, zero-padded to a width with an optional prefix",
			Args: []ArgSpec{
				{Name: "width", Type: "number", Optional: true},
				{Name: "prefix", Type: "string", Optional: true},
			},
			MinArgs: 0, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				seq, _ := ctx.RecordField("auto_number", "autoNumber", "autonumber")
				width := 0
				if len(args) > 0 {
					width = int(types.ToNumber(args[0]))
				}
				text := fmt.Sprintf("%0*d", width, int64(types.ToNumber(seq)))
				if len(args) > 1 {
					text = types.ToString(args[1]) + text
				}
				return text, nil
			},
		},
		&Descriptor{
			Name: "CURRENTUSER", Category: CategoryReference, Description: "A field of the evaluating user, or the whole user object",
			Args:    []ArgSpec{{Name: "field", Type: "string", Optional: true}},
			MinArgs: 0, MaxArgs: 1, ReturnType: "any",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				user := ctx.CurrentUser
				if user == nil {
					return nil, nil
				}
				if len(args) == 0 {
					return currentUserObject(user), nil
				}
				switch strings.ToLower(types.ToString(args[0])) {
				case "id":
					return user.ID, nil
				case "email":
					return user.Email, nil
				case "name":
					return user.Name, nil
				default:
					return nil, nil
				}
			},
		},
		&Descriptor{
			Name: "HASROLE", Category: CategoryReference, Description: "Whether the evaluating user carries a role",
			Args:    []ArgSpec{{Name: "role", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "boolean",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				return ctx.CurrentUser.HasRole(types.ToString(args[0])), nil
			},
		},
		&Descriptor{
			Name: "INGROUP", Category: CategoryReference, Description: "Whether the evaluating user belongs to a group",
			Args:    []ArgSpec{{Name: "group", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "boolean",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				return ctx.CurrentUser.InGroup(types.ToString(args[0])), nil
			},
		},
	)
}

// relatedMatches resolves the current record's reference property to the
// related records of a collection. A missing reference yields no matches.
func relatedMatches(ctx *types.Context, args []types.Value) []map[string]types.Value {
	collection := types.ToString(args[0])
	refProperty := types.ToString(args[1])

	ref, ok := ctx.RecordField(refProperty)
	if !ok || ref == nil {
		return nil
	}

	// reference values are plain id strings; multi-reference fields hold
	// an array of them
	switch id := ref.(type) {
	case string:
		if id == "" {
			return nil
		}
		return ctx.Related(collection, id)
	case []types.Value:
		var out []map[string]types.Value
		for _, el := range id {
			s, ok := el.(string)
			if !ok || s == "" {
				continue
			}
			out = append(out, ctx.Related(collection, s)...)
		}
		return out
	default:
		return nil
	}
}

func rollup(mode string, values []types.Value, matched int) (types.Value, error) {
	switch mode {
	case "SUM":
		total := 0.0
		for _, n := range numericValues(values) {
			total += n
		}
		return total, nil
	case "AVG", "AVERAGE":
		nums := numericValues(values)
		if len(nums) == 0 {
			return nil, nil
		}
		return sum(nums) / float64(len(nums)), nil
	case "COUNT":
		return float64(len(numericValues(values))), nil
	case "COUNTA":
		count := 0
		for _, v := range values {
			if !types.IsBlank(v) {
				count++
			}
		}
		return float64(count), nil
	case "COUNTALL":
		return float64(matched), nil
	case "MIN":
		nums := numericValues(values)
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
	case "MAX":
		nums := numericValues(values)
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
	case "FIRST":
		if len(values) == 0 {
			return nil, nil
		}
		return values[0], nil
	case "LAST":
		if len(values) == 0 {
			return nil, nil
		}
		return values[len(values)-1], nil
	case "CONCAT":
		return joinValues(values, false), nil
	case "CONCAT_UNIQUE":
		return joinValues(values, true), nil
	default:
		return nil, fmt.Errorf("unknown ROLLUP aggregation %q", mode)
	}
}

func joinValues(values []types.Value, unique bool) string {
	var parts []string
	seen := map[string]bool{}
	for _, v := range values {
		if types.IsBlank(v) {
			continue
		}
		s := types.ToString(v)
		if unique {
			if seen[s] {
				continue
			}
			seen[s] = true
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func currentUserObject(user *types.CurrentUser) map[string]types.Value {
	roles := make([]types.Value, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = r
	}
	groups := make([]types.Value, len(user.Groups))
	for i, g := range user.Groups {
		groups[i] = g
	}
	return map[string]types.Value{
		"id":     user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"roles":  roles,
		"groups": groups,
	}
}

func recordMeta(name, description string, codes ...string) *Descriptor {
	return &Descriptor{
		Name: name, Category: CategoryReference, Description: description,
		MinArgs: 0, MaxArgs: 0, ReturnType: "any",
		Impl: func(_ []types.Value, ctx *types.Context) (types.Value, error) {
			v, _ := ctx.RecordField(codes...)
			return types.Normalize(v), nil
		},
	}
}
