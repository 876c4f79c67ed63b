// Package validation performs static checks on parsed formulas: property
// references are resolved against collection metadata, function calls are
// checked against the registry, and a result type is inferred for the
// whole expression.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/ncobase/formula/ast"
	"github.com/ncobase/formula/function"
	"github.com/ncobase/formula/token"
	"github.com/ncobase/formula/types"
)

// Type names produced by inference. "any" means the type cannot be
// narrowed statically, "undefined" that metadata needed to resolve it
// was unavailable.
const (
	TypeNumber    = "number"
	TypeString    = "string"
	TypeBoolean   = "boolean"
	TypeDate      = "date"
	TypeArray     = "array"
	TypeObject    = "object"
	TypeNull      = "null"
	TypeAny       = "any"
	TypeUndefined = "undefined"
)

// suggestionThreshold is the maximum edit distance for a "did you mean"
// hint on unknown properties and functions.
const suggestionThreshold = 3

// Validate checks program against the given collection metadata and
// function registry. currentCode names the collection whose record the
// formula evaluates against; bare identifiers and {property} references
// resolve to its properties.
func Validate(program *ast.Program, collections []types.CollectionMetadata, currentCode string, registry *function.Registry) types.ValidationResult {
	v := &checker{registry: registry, collections: map[string]*types.CollectionMetadata{}}
	for i := range collections {
		c := &collections[i]
		v.collections[strings.ToLower(c.Code)] = c
	}
	if currentCode != "" {
		v.current = v.collections[strings.ToLower(currentCode)]
		if v.current == nil {
			v.warn(program.Range(), fmt.Sprintf("no metadata available for collection %q; property references cannot be checked", currentCode))
		}
	}

	inferred := TypeUndefined
	if program != nil && program.Body != nil {
		inferred = v.infer(program.Body)
	}

	deps := AnalyzeDependencies(program)
	return types.ValidationResult{
		Valid:        len(v.errors) == 0,
		Errors:       v.errors,
		Warnings:     v.warnings,
		InferredType: inferred,
		Dependencies: deps,
	}
}

type checker struct {
	registry    *function.Registry
	collections map[string]*types.CollectionMetadata
	current     *types.CollectionMetadata
	errors      []types.Diagnostic
	warnings    []types.Diagnostic
}

func (v *checker) fail(rng token.SourceRange, msg string) {
	v.errors = append(v.errors, types.Diagnostic{Message: msg, Range: rng})
}

func (v *checker) warn(rng token.SourceRange, msg string) {
	v.warnings = append(v.warnings, types.Diagnostic{Message: msg, Range: rng})
}

func (v *checker) infer(n ast.Node) string {
	switch node := n.(type) {
	case *ast.NumberLiteral:
		return TypeNumber
	case *ast.StringLiteral:
		return TypeString
	case *ast.BooleanLiteral:
		return TypeBoolean
	case *ast.NullLiteral:
		return TypeNull
	case *ast.Identifier:
		return v.inferIdentifier(node)
	case *ast.PropertyRef:
		return v.inferProperty(node.Path, node.Range())
	case *ast.MemberAccess:
		v.infer(node.Object)
		return TypeAny
	case *ast.IndexAccess:
		v.infer(node.Object)
		v.infer(node.Index)
		return TypeAny
	case *ast.UnaryExpr:
		return v.inferUnary(node)
	case *ast.BinaryExpr:
		return v.inferBinary(node)
	case *ast.LogicalExpr:
		v.expectBoolean(node.Left, node.Op)
		v.expectBoolean(node.Right, node.Op)
		return TypeBoolean
	case *ast.FunctionCall:
		return v.inferCall(node)
	case *ast.ArrayLiteral:
		for _, el := range node.Elements {
			v.infer(el)
		}
		return TypeArray
	case *ast.ObjectLiteral:
		for _, val := range node.Values {
			v.infer(val)
		}
		return TypeObject
	}
	return TypeAny
}

// Well-known constants usable as bare identifiers.
var constants = map[string]string{"PI": TypeNumber, "E": TypeNumber}

// inferIdentifier never raises diagnostics for unresolved names: bare
// identifiers may be bound at evaluation time through context variables,
// so only braced property references are checked against metadata.
func (v *checker) inferIdentifier(node *ast.Identifier) string {
	if t, ok := constants[strings.ToUpper(node.Name)]; ok {
		return t
	}
	if v.current != nil {
		if prop := v.current.Property(node.Name); prop != nil {
			return propertyType(prop.PropertyTypeCode)
		}
	}
	return TypeAny
}

// inferProperty resolves a property path against the current collection.
// Only the leading segment is checked; nested segments depend on the
// runtime shape of the value.
func (v *checker) inferProperty(path string, rng token.SourceRange) string {
	head := path
	if i := strings.IndexByte(head, '.'); i >= 0 {
		head = head[:i]
	}
	if v.current == nil {
		return TypeUndefined
	}
	prop := v.current.Property(head)
	if prop == nil {
		msg := fmt.Sprintf("unknown property %q in collection %q", head, v.current.Code)
		if s := closest(head, v.current.PropertyCodes()); s != "" {
			msg += fmt.Sprintf(". Did you mean %q?", s)
		}
		v.fail(rng, msg)
		return TypeUndefined
	}
	if strings.IndexByte(path, '.') >= 0 {
		return TypeAny
	}
	return propertyType(prop.PropertyTypeCode)
}

func (v *checker) inferUnary(node *ast.UnaryExpr) string {
	t := v.infer(node.Operand)
	switch node.Op {
	case "-":
		if !assignable(t, TypeNumber) {
			v.warn(node.Range(), fmt.Sprintf("unary '-' applied to %s value", t))
		}
		return TypeNumber
	case "NOT":
		return TypeBoolean
	}
	return TypeAny
}

func (v *checker) inferBinary(node *ast.BinaryExpr) string {
	left := v.infer(node.Left)
	right := v.infer(node.Right)
	switch node.Op {
	case "+":
		if left == TypeString || right == TypeString {
			return TypeString
		}
		v.checkNumeric(node, left, right)
		return TypeNumber
	case "-", "*", "/", "%", "^":
		v.checkNumeric(node, left, right)
		return TypeNumber
	case "=", "!=", "<", "<=", ">", ">=":
		return TypeBoolean
	}
	return TypeAny
}

func (v *checker) checkNumeric(node *ast.BinaryExpr, left, right string) {
	if !assignable(left, TypeNumber) {
		v.warn(node.Range(), fmt.Sprintf("operator %q expects numbers but the left operand is %s", node.Op, left))
	}
	if !assignable(right, TypeNumber) {
		v.warn(node.Range(), fmt.Sprintf("operator %q expects numbers but the right operand is %s", node.Op, right))
	}
}

func (v *checker) expectBoolean(n ast.Node, op string) {
	t := v.infer(n)
	if !assignable(t, TypeBoolean) {
		v.warn(n.Range(), fmt.Sprintf("operator %q expects booleans but got %s", op, t))
	}
}

func (v *checker) inferCall(node *ast.FunctionCall) string {
	name := strings.ToUpper(node.Name)
	desc, ok := v.registry.Get(name)
	if !ok {
		msg := fmt.Sprintf("unknown function: %s", name)
		if s := closest(name, v.registry.Names()); s != "" {
			msg += fmt.Sprintf(". Did you mean %s?", s)
		}
		v.fail(node.Range(), msg)
		for _, arg := range node.Args {
			v.infer(arg)
		}
		return TypeUndefined
	}
	if len(node.Args) < desc.MinArgs {
		v.fail(node.Range(), fmt.Sprintf("%s expects at least %d argument(s), got %d", name, desc.MinArgs, len(node.Args)))
	} else if desc.MaxArgs != function.Variadic && len(node.Args) > desc.MaxArgs {
		v.fail(node.Range(), fmt.Sprintf("%s expects at most %d argument(s), got %d", name, desc.MaxArgs, len(node.Args)))
	}
	for _, arg := range node.Args {
		v.infer(arg)
	}
	if desc.ReturnType == "" {
		return TypeAny
	}
	return desc.ReturnType
}

// assignable reports whether a value of type t can flow where want is
// expected. Unknown and dynamic types pass to keep validation lenient.
func assignable(t, want string) bool {
	switch t {
	case want, TypeAny, TypeUndefined, TypeNull:
		return true
	}
	// Numbers and booleans coerce both ways at runtime.
	if (t == TypeNumber && want == TypeBoolean) || (t == TypeBoolean && want == TypeNumber) {
		return true
	}
	return false
}

func propertyType(code string) string {
	switch strings.ToLower(code) {
	case "number", "currency", "percent", "rating", "autonumber", "duration":
		return TypeNumber
	case "text", "string", "longtext", "richtext", "email", "url", "phone", "select":
		return TypeString
	case "boolean", "checkbox":
		return TypeBoolean
	case "date", "datetime", "time":
		return TypeDate
	case "array", "multiselect", "attachment", "reference", "lookup":
		return TypeArray
	case "object", "json", "user":
		return TypeObject
	}
	return TypeAny
}

// closest returns the candidate nearest to name within the suggestion
// threshold, or "" when nothing is close enough.
func closest(name string, candidates []string) string {
	best, bestDist := "", suggestionThreshold+1
	upper := strings.ToUpper(name)
	for _, c := range candidates {
		d := levenshtein.Distance(upper, strings.ToUpper(c), nil)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// AnalyzeDependencies walks program and reports the properties,
// collections and functions it touches. Single formulas cannot reference
// themselves, so cycle detection across formulas is left to callers that
// hold the full formula graph.
func AnalyzeDependencies(program *ast.Program) types.DependencyAnalysis {
	deps := types.DependencyAnalysis{
		Properties:         []string{},
		RelatedCollections: []string{},
		Functions:          []string{},
	}
	if program == nil || program.Body == nil {
		return deps
	}

	props := map[string]bool{}
	colls := map[string]bool{}
	funcs := map[string]bool{}

	ast.Inspect(program.Body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.Identifier:
			if _, isConst := constants[strings.ToUpper(node.Name)]; !isConst {
				props[node.Name] = true
			}
		case *ast.PropertyRef:
			head := node.Path
			if i := strings.IndexByte(head, '.'); i >= 0 {
				head = head[:i]
			}
			props[head] = true
		case *ast.FunctionCall:
			name := strings.ToUpper(node.Name)
			funcs[name] = true
			switch name {
			case "LOOKUP", "ROLLUP", "RELATED":
				if len(node.Args) > 0 {
					if lit, ok := node.Args[0].(*ast.StringLiteral); ok {
						colls[lit.Value] = true
					}
				}
			}
		}
		return true
	})

	deps.Properties = sortedKeys(props)
	deps.RelatedCollections = sortedKeys(colls)
	deps.Functions = sortedKeys(funcs)
	return deps
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
