package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ncobase/formula/function"
	"github.com/ncobase/formula/parser"
	"github.com/ncobase/formula/types"
)

var registry = function.NewDefaultRegistry()

var orders = []types.CollectionMetadata{
	{
		Code: "orders",
		Name: "Orders",
		Properties: []types.PropertyMetadata{
			{Code: "Status", Name: "Status", PropertyTypeCode: "text"},
			{Code: "Amount", Name: "Amount", PropertyTypeCode: "number"},
			{Code: "Paid", Name: "Paid", PropertyTypeCode: "boolean"},
			{Code: "DueDate", Name: "Due date", PropertyTypeCode: "date"},
			{Code: "Customer", Name: "Customer", PropertyTypeCode: "object"},
		},
	},
}

func validate(t *testing.T, source string) types.ValidationResult {
	t.Helper()
	program, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return Validate(program, orders, "orders", registry)
}

func TestValidFormula(t *testing.T) {
	result := validate(t, `IF({Status} = "open", {Amount} * 1.2, 0)`)
	if !result.Valid {
		t.Fatalf("valid formula rejected: %+v", result.Errors)
	}
	if result.InferredType != TypeAny {
		// IF's declared return type is any.
		t.Errorf("InferredType = %q, want any", result.InferredType)
	}
}

func TestInferredTypes(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2", TypeNumber},
		{`"a" + "b"`, TypeString},
		{`{Amount} + " units"`, TypeString},
		{"{Amount} > 10", TypeBoolean},
		{"{Paid} AND TRUE", TypeBoolean},
		{"NOT {Paid}", TypeBoolean},
		{`"abc"`, TypeString},
		{"NULL", TypeNull},
		{"[1, 2]", TypeArray},
		{"{Status}", TypeString},
		{"{Amount}", TypeNumber},
		{"{DueDate}", TypeDate},
		{"{Customer.name}", TypeAny},
		{"PI", TypeNumber},
		{"SUM(1, 2)", TypeNumber},
		{"CONCAT(1, 2)", TypeString},
		{"TODAY()", TypeDate},
	}
	for _, tt := range tests {
		result := validate(t, tt.source)
		if result.InferredType != tt.want {
			t.Errorf("InferredType(%q) = %q, want %q", tt.source, result.InferredType, tt.want)
		}
	}
}

func TestUnknownPropertySuggestion(t *testing.T) {
	result := validate(t, "{Statuz}")
	if result.Valid {
		t.Fatal("unknown property accepted")
	}
	msg := result.Errors[0].Message
	if !strings.Contains(msg, `unknown property "Statuz"`) {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, `Did you mean "Status"?`) {
		t.Errorf("missing suggestion in %q", msg)
	}
}

func TestBareIdentifierIsLenient(t *testing.T) {
	// Bare names may resolve to context variables at evaluation time,
	// so only braced references are checked against metadata.
	result := validate(t, "rate * 2")
	if !result.Valid {
		t.Fatalf("unresolved bare identifier rejected: %+v", result.Errors)
	}
	result = validate(t, "Amount * 2")
	if !result.Valid {
		t.Fatalf("known bare identifier rejected: %+v", result.Errors)
	}
	if result.InferredType != TypeNumber {
		t.Errorf("InferredType = %q, want number", result.InferredType)
	}
}

func TestUnknownFunctionSuggestion(t *testing.T) {
	result := validate(t, "SUMM(1, 2)")
	if result.Valid {
		t.Fatal("unknown function accepted")
	}
	msg := result.Errors[0].Message
	if !strings.Contains(msg, "unknown function: SUMM") {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, "Did you mean SUM?") {
		t.Errorf("missing suggestion in %q", msg)
	}
}

func TestArityError(t *testing.T) {
	result := validate(t, "ABS(1, 2)")
	if result.Valid {
		t.Fatal("bad arity accepted")
	}
	if !strings.Contains(result.Errors[0].Message, "at most 1") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
}

func TestArityErrorStillChecksArgs(t *testing.T) {
	result := validate(t, "ABS({Statuz}, 2)")
	if len(result.Errors) != 2 {
		t.Fatalf("got %d errors, want arity error plus property error: %+v", len(result.Errors), result.Errors)
	}
}

func TestTypeMismatchWarnings(t *testing.T) {
	result := validate(t, "{Status} - 1")
	if !result.Valid {
		t.Fatalf("warnings must not invalidate: %+v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for string operand of '-'")
	}
	if !strings.Contains(result.Warnings[0].Message, `operator "-"`) {
		t.Errorf("warning = %q", result.Warnings[0].Message)
	}
}

func TestMissingCollectionMetadata(t *testing.T) {
	program, err := parser.Parse("{Whatever} + 1")
	if err != nil {
		t.Fatal(err)
	}
	result := Validate(program, nil, "orders", registry)
	if !result.Valid {
		t.Fatalf("missing metadata must not produce errors: %+v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about missing metadata")
	}
}

func TestDependencies(t *testing.T) {
	program, err := parser.Parse(
		`IF({Status} = "open", ROLLUP("line_items", "Items", "amount", "SUM"), sum({Amount}, PI))`)
	if err != nil {
		t.Fatal(err)
	}
	deps := AnalyzeDependencies(program)

	want := types.DependencyAnalysis{
		Properties:         []string{"Amount", "Status"},
		RelatedCollections: []string{"line_items"},
		Functions:          []string{"IF", "ROLLUP", "SUM"},
	}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("AnalyzeDependencies mismatch (-want +got):\n%s", diff)
	}
	if deps.HasCircularDependency {
		t.Error("single formula flagged as circular")
	}
}

func TestDependenciesBareIdentifiers(t *testing.T) {
	program, err := parser.Parse("Amount * 2 + E")
	if err != nil {
		t.Fatal(err)
	}
	deps := AnalyzeDependencies(program)
	if diff := cmp.Diff([]string{"Amount"}, deps.Properties); diff != "" {
		t.Errorf("Properties mismatch (-want +got):\n%s", diff)
	}
}
