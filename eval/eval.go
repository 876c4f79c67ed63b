// Package eval implements the tree-walking evaluator. Formulas are
// end-user-authored, so every failure is reported in the Result rather
// than raised: a panic anywhere below is recovered and converted.
package eval

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ncobase/formula/ast"
	"github.com/ncobase/formula/function"
	"github.com/ncobase/formula/types"
)

// Evaluate runs program against ctx using registry for function calls.
// The returned Result always has Metrics filled in; on failure Success
// is false and Error carries the message.
func Evaluate(program *ast.Program, ctx *types.Context, registry *function.Registry) types.Result {
	if ctx == nil {
		ctx = types.NewContext()
	}
	e := &evaluator{ctx: ctx, registry: registry}

	start := time.Now()
	result := types.Result{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Success = false
				result.Error = fmt.Sprintf("evaluation failed: %v", r)
			}
		}()
		if program == nil || program.Body == nil {
			result.Success = false
			result.Error = "nothing to evaluate"
			return
		}
		value, err := e.eval(program.Body)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			return
		}
		result.Value = value
		result.Success = true
	}()

	result.Metrics = e.metrics
	result.Metrics.EvalTime = time.Since(start)
	return result
}

type evaluator struct {
	ctx      *types.Context
	registry *function.Registry
	metrics  types.EvalMetrics
}

func (e *evaluator) eval(n ast.Node) (types.Value, error) {
	switch node := n.(type) {
	case *ast.NumberLiteral:
		return node.Value, nil
	case *ast.StringLiteral:
		return node.Value, nil
	case *ast.BooleanLiteral:
		return node.Value, nil
	case *ast.NullLiteral:
		return nil, nil
	case *ast.Identifier:
		return e.evalIdentifier(node), nil
	case *ast.PropertyRef:
		return e.evalPropertyPath(node.Path), nil
	case *ast.MemberAccess:
		return e.evalMember(node)
	case *ast.IndexAccess:
		return e.evalIndex(node)
	case *ast.UnaryExpr:
		return e.evalUnary(node)
	case *ast.BinaryExpr:
		return e.evalBinary(node)
	case *ast.LogicalExpr:
		return e.evalLogical(node)
	case *ast.FunctionCall:
		return e.evalCall(node)
	case *ast.ArrayLiteral:
		return e.evalArray(node)
	case *ast.ObjectLiteral:
		return e.evalObject(node)
	}
	return nil, fmt.Errorf("cannot evaluate node %T", n)
}

// evalIdentifier resolves a bare name: well-known constants first, then
// host variables, then the current record. Unknown names evaluate to
// null rather than failing; static checking is the validator's job.
func (e *evaluator) evalIdentifier(node *ast.Identifier) types.Value {
	switch strings.ToUpper(node.Name) {
	case "PI":
		return math.Pi
	case "E":
		return math.E
	}
	if e.ctx.Variables != nil {
		if v, ok := e.ctx.Variables[node.Name]; ok {
			return types.Normalize(v)
		}
	}
	e.metrics.PropertyAccesses++
	if v, ok := e.ctx.RecordField(node.Name); ok {
		return types.Normalize(v)
	}
	return nil
}

// evalPropertyPath walks a possibly dotted {a.b.c} path through the
// record, descending into nested objects. Missing segments yield null.
func (e *evaluator) evalPropertyPath(path string) types.Value {
	e.metrics.PropertyAccesses++
	segments := strings.Split(path, ".")
	var current types.Value
	if v, ok := e.ctx.RecordField(segments[0]); ok {
		current = types.Normalize(v)
	} else {
		return nil
	}
	for _, seg := range segments[1:] {
		obj, ok := current.(map[string]types.Value)
		if !ok {
			return nil
		}
		current = obj[seg]
	}
	return current
}

func (e *evaluator) evalMember(node *ast.MemberAccess) (types.Value, error) {
	obj, err := e.eval(node.Object)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	m, ok := obj.(map[string]types.Value)
	if !ok {
		return nil, fmt.Errorf("cannot access property %q of %s value", node.Property, types.KindOf(obj))
	}
	return m[node.Property], nil
}

func (e *evaluator) evalIndex(node *ast.IndexAccess) (types.Value, error) {
	obj, err := e.eval(node.Object)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	idx, err := e.eval(node.Index)
	if err != nil {
		return nil, err
	}
	switch container := obj.(type) {
	case []types.Value:
		f := types.ToNumber(idx)
		i := int(f)
		if float64(i) != f || i < 0 || i >= len(container) {
			return nil, nil
		}
		return container[i], nil
	case map[string]types.Value:
		return container[types.ToString(idx)], nil
	}
	return nil, fmt.Errorf("cannot index into %s value", types.KindOf(obj))
}

func (e *evaluator) evalUnary(node *ast.UnaryExpr) (types.Value, error) {
	operand, err := e.eval(node.Operand)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "-":
		return -types.ToNumber(operand), nil
	case "NOT":
		return !types.ToBool(operand), nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", node.Op)
}

func (e *evaluator) evalBinary(node *ast.BinaryExpr) (types.Value, error) {
	left, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case "+":
		// String on either side turns + into concatenation.
		if types.KindOf(left) == types.KindString || types.KindOf(right) == types.KindString {
			return types.ToString(left) + types.ToString(right), nil
		}
		return types.ToNumber(left) + types.ToNumber(right), nil
	case "-":
		return types.ToNumber(left) - types.ToNumber(right), nil
	case "*":
		return types.ToNumber(left) * types.ToNumber(right), nil
	case "/":
		divisor := types.ToNumber(right)
		if divisor == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return types.ToNumber(left) / divisor, nil
	case "%":
		divisor := types.ToNumber(right)
		if divisor == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return math.Mod(types.ToNumber(left), divisor), nil
	case "^":
		return math.Pow(types.ToNumber(left), types.ToNumber(right)), nil
	case "=":
		return types.Equal(left, right), nil
	case "!=":
		return !types.Equal(left, right), nil
	case "<":
		return types.Compare(left, right) < 0, nil
	case "<=":
		return types.Compare(left, right) <= 0, nil
	case ">":
		return types.Compare(left, right) > 0, nil
	case ">=":
		return types.Compare(left, right) >= 0, nil
	}
	return nil, fmt.Errorf("unknown operator %q", node.Op)
}

// evalLogical short-circuits: the right side is not evaluated when the
// left side decides the outcome. AND(...) and OR(...) as function calls
// evaluate every argument instead.
func (e *evaluator) evalLogical(node *ast.LogicalExpr) (types.Value, error) {
	left, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "AND":
		if !types.ToBool(left) {
			return false, nil
		}
	case "OR":
		if types.ToBool(left) {
			return true, nil
		}
	default:
		return nil, fmt.Errorf("unknown logical operator %q", node.Op)
	}
	right, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}
	return types.ToBool(right), nil
}

func (e *evaluator) evalCall(node *ast.FunctionCall) (types.Value, error) {
	name := strings.ToUpper(node.Name)

	// IFERROR needs lazy arguments: the fallback applies to evaluation
	// failures in the first argument, which normal eager evaluation
	// would propagate before the call happens.
	if name == "IFERROR" {
		return e.evalIfError(node)
	}

	args := make([]types.Value, len(node.Args))
	for i, arg := range node.Args {
		v, err := e.eval(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	e.metrics.FunctionCalls++
	if d, ok := e.registry.Get(name); ok && d.Category == function.CategoryReference {
		e.metrics.RelatedLookups++
	}
	return e.registry.Execute(name, args, e.ctx)
}

func (e *evaluator) evalIfError(node *ast.FunctionCall) (types.Value, error) {
	if len(node.Args) < 1 || len(node.Args) > 2 {
		return nil, fmt.Errorf("IFERROR expects 1 or 2 argument(s), got %d", len(node.Args))
	}
	e.metrics.FunctionCalls++
	value, err := e.tryEval(node.Args[0])
	if err == nil {
		return value, nil
	}
	if len(node.Args) == 1 {
		return nil, nil
	}
	return e.eval(node.Args[1])
}

// tryEval evaluates a subtree, converting panics into errors so IFERROR
// can absorb them.
func (e *evaluator) tryEval(n ast.Node) (value types.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("%v", r)
		}
	}()
	return e.eval(n)
}

func (e *evaluator) evalArray(node *ast.ArrayLiteral) (types.Value, error) {
	out := make([]types.Value, len(node.Elements))
	for i, el := range node.Elements {
		v, err := e.eval(el)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *evaluator) evalObject(node *ast.ObjectLiteral) (types.Value, error) {
	out := make(map[string]types.Value, len(node.Keys))
	for i, key := range node.Keys {
		v, err := e.eval(node.Values[i])
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}
