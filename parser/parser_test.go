package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ncobase/formula/ast"
	"github.com/ncobase/formula/token"
)

// ignoreRanges compares trees structurally, ignoring source positions
var ignoreRanges = cmpopts.IgnoreTypes(token.SourceRange{})

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", source, err)
	}
	return program
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Node
	}{
		{
			"2 + 3 * 4",
			&ast.BinaryExpr{Op: "+",
				Left: &ast.NumberLiteral{Value: 2},
				Right: &ast.BinaryExpr{Op: "*",
					Left:  &ast.NumberLiteral{Value: 3},
					Right: &ast.NumberLiteral{Value: 4}}},
		},
		{
			"(2 + 3) * 4",
			&ast.BinaryExpr{Op: "*",
				Left: &ast.BinaryExpr{Op: "+",
					Left:  &ast.NumberLiteral{Value: 2},
					Right: &ast.NumberLiteral{Value: 3}},
				Right: &ast.NumberLiteral{Value: 4}},
		},
		{
			// Left-associative power.
			"2 ^ 3 ^ 2",
			&ast.BinaryExpr{Op: "^",
				Left: &ast.BinaryExpr{Op: "^",
					Left:  &ast.NumberLiteral{Value: 2},
					Right: &ast.NumberLiteral{Value: 3}},
				Right: &ast.NumberLiteral{Value: 2}},
		},
		{
			"1 < 2 AND 3 < 4",
			&ast.LogicalExpr{Op: "AND",
				Left: &ast.BinaryExpr{Op: "<",
					Left:  &ast.NumberLiteral{Value: 1},
					Right: &ast.NumberLiteral{Value: 2}},
				Right: &ast.BinaryExpr{Op: "<",
					Left:  &ast.NumberLiteral{Value: 3},
					Right: &ast.NumberLiteral{Value: 4}}},
		},
		{
			// OR binds looser than AND.
			"a OR b AND c",
			&ast.LogicalExpr{Op: "OR",
				Left: &ast.Identifier{Name: "a"},
				Right: &ast.LogicalExpr{Op: "AND",
					Left:  &ast.Identifier{Name: "b"},
					Right: &ast.Identifier{Name: "c"}}},
		},
		{
			"-2 ^ 2",
			&ast.BinaryExpr{Op: "^",
				Left:  &ast.UnaryExpr{Op: "-", Operand: &ast.NumberLiteral{Value: 2}},
				Right: &ast.NumberLiteral{Value: 2}},
		},
	}

	for _, tt := range tests {
		got := mustParse(t, tt.source).Body
		if diff := cmp.Diff(tt.want, got, ignoreRanges); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.source, diff)
		}
	}
}

func TestFunctionCalls(t *testing.T) {
	got := mustParse(t, `if({Status} = "active", 1, 0)`).Body
	want := &ast.FunctionCall{
		Name: "IF",
		Args: []ast.Node{
			&ast.BinaryExpr{Op: "=",
				Left:  &ast.PropertyRef{Path: "Status"},
				Right: &ast.StringLiteral{Value: "active"}},
			&ast.NumberLiteral{Value: 1},
			&ast.NumberLiteral{Value: 0},
		},
	}
	if diff := cmp.Diff(want, got, ignoreRanges); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLogicalCallForms(t *testing.T) {
	got := mustParse(t, "AND(TRUE, or(FALSE, TRUE))").Body
	want := &ast.FunctionCall{
		Name: "AND",
		Args: []ast.Node{
			&ast.BooleanLiteral{Value: true},
			&ast.FunctionCall{
				Name: "OR",
				Args: []ast.Node{
					&ast.BooleanLiteral{Value: false},
					&ast.BooleanLiteral{Value: true},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got, ignoreRanges); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// The infix operator survives even without a space before the paren.
	infix := mustParse(t, "TRUE AND(FALSE)").Body
	if _, ok := infix.(*ast.LogicalExpr); !ok {
		t.Errorf("infix form parsed as %T, want *ast.LogicalExpr", infix)
	}
}

func TestPostfix(t *testing.T) {
	got := mustParse(t, "{Order}.items[0].name").Body
	want := &ast.MemberAccess{
		Property: "name",
		Object: &ast.IndexAccess{
			Index: &ast.NumberLiteral{Value: 0},
			Object: &ast.MemberAccess{
				Property: "items",
				Object:   &ast.PropertyRef{Path: "Order"},
			},
		},
	}
	if diff := cmp.Diff(want, got, ignoreRanges); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayLiteral(t *testing.T) {
	got := mustParse(t, "[1, 2, 3]").Body
	want := &ast.ArrayLiteral{Elements: []ast.Node{
		&ast.NumberLiteral{Value: 1},
		&ast.NumberLiteral{Value: 2},
		&ast.NumberLiteral{Value: 3},
	}}
	if diff := cmp.Diff(want, got, ignoreRanges); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeterministic(t *testing.T) {
	source := `IF(SUM({a}, {b}) > 10, "big", "small")`
	first := mustParse(t, source)
	second := mustParse(t, source)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identical sources parsed differently:\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty input", ""},
		{"trailing tokens", "1 + 2 3"},
		{"unbalanced paren", "(1 + 2"},
		{"missing operand", "1 +"},
		{"missing call paren", "SUM(1, 2"},
		{"dangling comma", "SUM(1,)"},
		{"unclosed array", "[1, 2"},
		{"member without name", "{a}."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.source); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.source)
			}
		})
	}
}

func TestDepthLimit(t *testing.T) {
	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)
	if _, err := Parse(deep); err == nil {
		t.Fatal("deeply nested expression parsed, want depth error")
	}
	if _, err := ParseWithDepth(deep, 1000); err != nil {
		t.Fatalf("raised depth limit still fails: %v", err)
	}
}
