package function

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ncobase/formula/types"
)

func registerText(r *Registry) {
	concat := &Descriptor{
		Name: "CONCAT", Category: CategoryText, Description: "Concatenate values into one string",
		Args:    []ArgSpec{{Name: "values", Type: "any"}},
		MinArgs: 1, MaxArgs: Variadic, ReturnType: "string",
		Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
			var b strings.Builder
			for _, a := range types.Flatten(args) {
				b.WriteString(types.ToString(a))
			}
			return b.String(), nil
		},
	}
	concatenate := *concat
	concatenate.Name = "CONCATENATE"

	mustRegister(r,
		concat,
		&concatenate,
		&Descriptor{
			Name: "LEFT", Category: CategoryText, Description: "Leftmost characters of a string",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "count", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				runes := []rune(types.ToString(args[0]))
				n := 1
				if len(args) > 1 {
					n = int(types.ToNumber(args[1]))
				}
				if n < 0 {
					n = 0
				}
				if n > len(runes) {
					n = len(runes)
				}
				return string(runes[:n]), nil
			},
		},
		&Descriptor{
			Name: "RIGHT", Category: CategoryText, Description: "Rightmost characters of a string",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "count", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				runes := []rune(types.ToString(args[0]))
				n := 1
				if len(args) > 1 {
					n = int(types.ToNumber(args[1]))
				}
				if n < 0 {
					n = 0
				}
				if n > len(runes) {
					n = len(runes)
				}
				return string(runes[len(runes)-n:]), nil
			},
		},
		&Descriptor{
			Name: "MID", Category: CategoryText, Description: "Substring starting at a 1-based position",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "start", Type: "number"}, {Name: "count", Type: "number"}},
			MinArgs: 3, MaxArgs: 3, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				runes := []rune(types.ToString(args[0]))
				start := int(types.ToNumber(args[1])) - 1
				count := int(types.ToNumber(args[2]))
				if start < 0 || start >= len(runes) || count <= 0 {
					return "", nil
				}
				end := start + count
				if end > len(runes) {
					end = len(runes)
				}
				return string(runes[start:end]), nil
			},
		},
		&Descriptor{
			Name: "LEN", Category: CategoryText, Description: "Length of a string in characters",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return float64(len([]rune(types.ToString(args[0])))), nil
			},
		},
		&Descriptor{
			Name: "UPPER", Category: CategoryText, Description: "Uppercase a string",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.ToUpper(types.ToString(args[0])), nil
			},
		},
		&Descriptor{
			Name: "LOWER", Category: CategoryText, Description: "Lowercase a string",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.ToLower(types.ToString(args[0])), nil
			},
		},
		&Descriptor{
			Name: "PROPER", Category: CategoryText, Description: "Capitalize the first letter of each word",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return properCase(types.ToString(args[0])), nil
			},
		},
		&Descriptor{
			Name: "TRIM", Category: CategoryText, Description: "Strip leading and trailing whitespace",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.TrimSpace(types.ToString(args[0])), nil
			},
		},
		&Descriptor{
			Name: "REPLACE", Category: CategoryText, Description: "Replace all occurrences of a substring",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "old", Type: "string"}, {Name: "new", Type: "string"}},
			MinArgs: 3, MaxArgs: 3, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.ReplaceAll(types.ToString(args[0]), types.ToString(args[1]), types.ToString(args[2])), nil
			},
		},
		&Descriptor{
			Name: "SUBSTITUTE", Category: CategoryText, Description: "Replace occurrences of a substring, optionally only the nth",
			Args: []ArgSpec{
				{Name: "text", Type: "string"}, {Name: "old", Type: "string"},
				{Name: "new", Type: "string"}, {Name: "occurrence", Type: "number", Optional: true},
			},
			MinArgs: 3, MaxArgs: 4, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				text := types.ToString(args[0])
				old := types.ToString(args[1])
				new := types.ToString(args[2])
				if old == "" {
					return text, nil
				}
				if len(args) < 4 {
					return strings.ReplaceAll(text, old, new), nil
				}
				nth := int(types.ToNumber(args[3]))
				return substituteNth(text, old, new, nth), nil
			},
		},
		&Descriptor{
			Name: "FIND", Category: CategoryText, Description: "1-based position of a substring, case-sensitive; 0 when absent",
			Args:    []ArgSpec{{Name: "search", Type: "string"}, {Name: "text", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return findPosition(types.ToString(args[1]), types.ToString(args[0]), true), nil
			},
		},
		&Descriptor{
			Name: "SEARCH", Category: CategoryText, Description: "1-based position of a substring, case-insensitive; 0 when absent",
			Args:    []ArgSpec{{Name: "search", Type: "string"}, {Name: "text", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return findPosition(types.ToString(args[1]), types.ToString(args[0]), false), nil
			},
		},
		&Descriptor{
			Name: "REPT", Category: CategoryText, Description: "Repeat a string a number of times",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "count", Type: "number"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				n := int(types.ToNumber(args[1]))
				if n < 0 {
					return nil, fmt.Errorf("REPT count must not be negative")
				}
				return strings.Repeat(types.ToString(args[0]), n), nil
			},
		},
		&Descriptor{
			Name: "TEXT", Category: CategoryText, Description: "Format a date or number using a pattern",
			Args:    []ArgSpec{{Name: "value", Type: "any"}, {Name: "format", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				format := types.ToString(args[1])
				if t, ok := args[0].(time.Time); ok {
					return formatDateTokens(t.In(ctx.Location()), format), nil
				}
				return formatNumber(types.ToNumber(args[0]), format), nil
			},
		},
		&Descriptor{
			Name: "VALUE", Category: CategoryText, Description: "Convert text to a number",
			Args:    []ArgSpec{{Name: "text", Type: "string"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return types.ToNumber(args[0]), nil
			},
		},
		&Descriptor{
			Name: "SPLIT", Category: CategoryText, Description: "Split text into an array on a separator",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "separator", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "array",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				parts := strings.Split(types.ToString(args[0]), types.ToString(args[1]))
				out := make([]types.Value, len(parts))
				for i, p := range parts {
					out[i] = p
				}
				return out, nil
			},
		},
		&Descriptor{
			Name: "JOIN", Category: CategoryText, Description: "Join array elements into text with a separator",
			Args:    []ArgSpec{{Name: "array", Type: "array"}, {Name: "separator", Type: "string", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				sep := ","
				if len(args) > 1 {
					sep = types.ToString(args[1])
				}
				arr, ok := args[0].([]types.Value)
				if !ok {
					return types.ToString(args[0]), nil
				}
				parts := make([]string, len(arr))
				for i, v := range arr {
					parts[i] = types.ToString(v)
				}
				return strings.Join(parts, sep), nil
			},
		},
		&Descriptor{
			Name: "CONTAINS", Category: CategoryText, Description: "Whether text contains a substring",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "search", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.Contains(types.ToString(args[0]), types.ToString(args[1])), nil
			},
		},
		&Descriptor{
			Name: "STARTSWITH", Category: CategoryText, Description: "Whether text starts with a prefix",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "prefix", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.HasPrefix(types.ToString(args[0]), types.ToString(args[1])), nil
			},
		},
		&Descriptor{
			Name: "ENDSWITH", Category: CategoryText, Description: "Whether text ends with a suffix",
			Args:    []ArgSpec{{Name: "text", Type: "string"}, {Name: "suffix", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "boolean",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				return strings.HasSuffix(types.ToString(args[0]), types.ToString(args[1])), nil
			},
		},
		&Descriptor{
			Name: "REGEX", Category: CategoryText, Description: "First regular-expression match, or replace all matches when a replacement is given",
			Args: []ArgSpec{
				{Name: "text", Type: "string"}, {Name: "pattern", Type: "string"},
				{Name: "replacement", Type: "string", Optional: true},
			},
			MinArgs: 2, MaxArgs: 3, ReturnType: "string",
			Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
				re, err := regexp.Compile(types.ToString(args[1]))
				if err != nil {
					return nil, fmt.Errorf("invalid REGEX pattern: %v", err)
				}
				text := types.ToString(args[0])
				if len(args) == 3 {
					return re.ReplaceAllString(text, types.ToString(args[2])), nil
				}
				match := re.FindString(text)
				if match == "" && !re.MatchString(text) {
					return nil, nil
				}
				return match, nil
			},
		},
	)
}

func properCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_':
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			b.WriteString(strings.ToUpper(string(r)))
			startOfWord = false
		default:
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

func substituteNth(text, old, new string, nth int) string {
	if nth <= 0 {
		return text
	}
	idx := 0
	for i := 1; ; i++ {
		pos := strings.Index(text[idx:], old)
		if pos < 0 {
			return text
		}
		pos += idx
		if i == nth {
			return text[:pos] + new + text[pos+len(old):]
		}
		idx = pos + len(old)
	}
}

func findPosition(text, search string, caseSensitive bool) float64 {
	if !caseSensitive {
		text = strings.ToLower(text)
		search = strings.ToLower(search)
	}
	pos := strings.Index(text, search)
	if pos < 0 {
		return 0
	}
	// 1-based, counted in characters
	return float64(len([]rune(text[:pos])) + 1)
}

// formatDateTokens substitutes YYYY MM DD HH mm ss tokens in a pattern
func formatDateTokens(t time.Time, format string) string {
	replacer := strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", t.Year()),
		"MM", fmt.Sprintf("%02d", int(t.Month())),
		"DD", fmt.Sprintf("%02d", t.Day()),
		"HH", fmt.Sprintf("%02d", t.Hour()),
		"mm", fmt.Sprintf("%02d", t.Minute()),
		"ss", fmt.Sprintf("%02d", t.Second()),
	)
	return replacer.Replace(format)
}

// formatNumber applies a minimal 0/#-style pattern: the decimal places
// after "." fix precision, a "," enables thousands grouping
func formatNumber(n float64, format string) string {
	decimals := 0
	if dot := strings.Index(format, "."); dot >= 0 {
		for _, r := range format[dot+1:] {
			if r == '0' || r == '#' {
				decimals++
			}
		}
	}
	text := fmt.Sprintf("%.*f", decimals, n)
	if strings.Contains(format, ",") {
		text = groupThousands(text)
	}
	return text
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if dot := strings.Index(s, "."); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
