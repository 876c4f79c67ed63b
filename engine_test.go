package formula

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ncobase/formula/function"
	"github.com/ncobase/formula/types"
)

func orderContext() *types.Context {
	ctx := types.NewContext()
	ctx.Record = map[string]types.Value{
		"Status": "active",
		"Amount": 250.0,
	}
	return ctx
}

func TestEvaluate(t *testing.T) {
	eng := New()
	result := eng.Evaluate(`IF({Status} = "active", {Amount} * 2, 0)`, orderContext())
	if !result.Success {
		t.Fatalf("evaluation failed: %s", result.Error)
	}
	if result.Value != 500.0 {
		t.Errorf("Value = %v, want 500", result.Value)
	}
	if result.Metrics.TotalTime < result.Metrics.EvalTime {
		t.Errorf("TotalTime %v < EvalTime %v", result.Metrics.TotalTime, result.Metrics.EvalTime)
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := New()
	result := eng.Evaluate("1 +", nil)
	if result.Success {
		t.Fatal("parse error evaluated successfully")
	}
	if !strings.Contains(result.Error, "parse error") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestEvaluateFailureIsReturned(t *testing.T) {
	eng := New()
	result := eng.Evaluate("1 / 0", nil)
	if result.Success {
		t.Fatal("division by zero succeeded")
	}
	if !strings.Contains(result.Error, "division by zero") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestParseCache(t *testing.T) {
	eng := New()
	source := "1 + 2 * 3"

	first, err := eng.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("repeated Parse did not return the cached tree")
	}

	stats := eng.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}

	eng.ClearCache()
	if eng.CacheStats().Size != 0 {
		t.Error("ClearCache left entries behind")
	}
}

func TestCacheDisabled(t *testing.T) {
	eng := New(WithCacheDisabled())
	source := "1 + 2"
	first, _ := eng.Parse(source)
	second, _ := eng.Parse(source)
	if first == second {
		t.Error("cache disabled but trees were shared")
	}
}

func TestCacheEviction(t *testing.T) {
	eng := New(WithCacheSize(8))
	for i := 0; i < 50; i++ {
		if _, err := eng.Parse(fmt.Sprintf("%d + 1", i)); err != nil {
			t.Fatal(err)
		}
	}
	stats := eng.CacheStats()
	if stats.Size > 8 {
		t.Errorf("cache size %d exceeds cap 8", stats.Size)
	}
	if stats.Evictions == 0 {
		t.Error("no evictions recorded")
	}
	// The most recent formula must still be cached.
	if _, ok := eng.cache.get("49 + 1"); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestValidate(t *testing.T) {
	eng := New(WithCollections([]types.CollectionMetadata{{
		Code: "orders",
		Name: "Orders",
		Properties: []types.PropertyMetadata{
			{Code: "Amount", Name: "Amount", PropertyTypeCode: "number"},
		},
	}}))

	result := eng.Validate("{Amount} * 2", "orders")
	if !result.Valid {
		t.Fatalf("valid formula rejected: %+v", result.Errors)
	}
	if result.InferredType != "number" {
		t.Errorf("InferredType = %q", result.InferredType)
	}

	result = eng.Validate("{Amont} * 2", "orders")
	if result.Valid {
		t.Fatal("unknown property accepted")
	}

	result = eng.Validate("1 +", "")
	if result.Valid {
		t.Fatal("syntax error accepted")
	}
}

func TestValidateBeforeEval(t *testing.T) {
	eng := New(WithValidateBeforeEval())
	result := eng.Evaluate("NOTAFUNCTION(1)", nil)
	if result.Success {
		t.Fatal("invalid formula evaluated")
	}
	if result.Validation == nil {
		t.Fatal("validation result not attached")
	}
	if !strings.Contains(result.Error, "unknown function") {
		t.Errorf("Error = %q", result.Error)
	}
	if result.Metrics.FunctionCalls != 0 {
		t.Errorf("FunctionCalls = %d, want 0 when validation fails", result.Metrics.FunctionCalls)
	}
}

func TestEvaluateWithOptionsSkipValidation(t *testing.T) {
	eng := NewWithConfig(Config{
		MaxCacheSize:       DefaultMaxCacheSize,
		CacheEnabled:       true,
		ValidateBeforeEval: true,
	})
	if err := eng.SetCollections([]types.CollectionMetadata{{
		Code: "orders",
		Name: "Orders",
		Properties: []types.PropertyMetadata{
			{Code: "Status", Name: "Status", PropertyTypeCode: "text"},
		},
	}}); err != nil {
		t.Fatal(err)
	}
	ctx := types.NewContext()
	ctx.Record = map[string]types.Value{"Statuz": "x"}

	blocked := eng.EvaluateWithOptions(`{Statuz} = "x"`, ctx, EvalOptions{Collection: "orders"})
	if blocked.Success {
		t.Fatal("unknown property passed validation")
	}
	skipped := eng.EvaluateWithOptions(`{Statuz} = "x"`, ctx, EvalOptions{Collection: "orders", SkipValidation: true})
	if !skipped.Success {
		t.Fatalf("SkipValidation evaluation failed: %s", skipped.Error)
	}
	if skipped.Value != true {
		t.Errorf("Value = %v, want true", skipped.Value)
	}
}

func TestAnalyzeDependencies(t *testing.T) {
	eng := New()
	deps, err := eng.AnalyzeDependencies(`{A} + LOOKUP("items", "Ref", "name")`)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps.Properties) != 1 || deps.Properties[0] != "A" {
		t.Errorf("Properties = %v", deps.Properties)
	}
	if len(deps.RelatedCollections) != 1 || deps.RelatedCollections[0] != "items" {
		t.Errorf("RelatedCollections = %v", deps.RelatedCollections)
	}
}

func TestInferType(t *testing.T) {
	eng := New()
	got, err := eng.InferType(`"a" + "b"`, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "string" {
		t.Errorf("InferType = %q, want string", got)
	}
}

func TestRegisterFunction(t *testing.T) {
	eng := New()
	err := eng.RegisterFunction(&function.Descriptor{
		Name:       "TWICE",
		Category:   function.CategoryMath,
		MinArgs:    1,
		MaxArgs:    1,
		ReturnType: "number",
		Impl: func(args []types.Value, _ *types.Context) (types.Value, error) {
			return types.ToNumber(args[0]) * 2, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	result := eng.Evaluate("TWICE(21)", nil)
	if !result.Success || result.Value != 42.0 {
		t.Errorf("TWICE = %+v", result)
	}

	if err := eng.RegisterFunction(&function.Descriptor{Name: "BAD"}); err == nil {
		t.Error("descriptor without implementation accepted")
	}
}

func TestSetCollectionsValidates(t *testing.T) {
	eng := New()
	err := eng.SetCollections([]types.CollectionMetadata{{Name: "No code"}})
	if err == nil {
		t.Fatal("collection without code accepted")
	}
	if err := eng.SetCollections([]types.CollectionMetadata{{Code: "c", Name: "C"}}); err != nil {
		t.Fatalf("valid collection rejected: %v", err)
	}
}

func TestFunctionListing(t *testing.T) {
	eng := New()
	if len(eng.Functions()) < 80 {
		t.Errorf("catalog has %d functions", len(eng.Functions()))
	}
	if len(eng.FunctionsByCategory(function.CategoryText)) == 0 {
		t.Error("no text functions")
	}
	if len(eng.SearchFunctions("median")) == 0 {
		t.Error("SearchFunctions(median) found nothing")
	}
}

func TestConcurrentEvaluate(t *testing.T) {
	eng := New()
	ctx := orderContext()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				result := eng.Evaluate("{Amount} * 2 + 1", ctx)
				if !result.Success || result.Value != 501.0 {
					t.Errorf("concurrent result = %+v", result)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkEvaluateCached(b *testing.B) {
	eng := New()
	ctx := orderContext()
	source := `IF({Status} = "active", {Amount} * 1.2 + SUM(1, 2, 3), 0)`
	eng.Evaluate(source, ctx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Evaluate(source, ctx)
	}
}

func BenchmarkParse(b *testing.B) {
	eng := New(WithCacheDisabled())
	for i := 0; i < b.N; i++ {
		if _, err := eng.Parse(`IF({Status} = "active", {Amount} * 1.2, 0)`); err != nil {
			b.Fatal(err)
		}
	}
}
