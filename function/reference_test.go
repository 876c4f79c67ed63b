package function

import (
	"testing"

	"github.com/ncobase/formula/types"
)

// orderCtx builds a context for an order record referencing line items
func orderCtx() *types.Context {
	ctx := types.NewContext()
	ctx.Record = map[string]types.Value{
		"id":          "ord-1",
		"auto_number": 42.0,
		"LineItems":   "ord-1",
		"created_by":  "user-7",
	}
	ctx.RelatedRecords = map[string]map[string][]map[string]types.Value{
		"line_items": {
			"ord-1": {
				{"name": "widget", "amount": 10.0},
				{"name": "gadget", "amount": 25.0},
				{"name": "widget", "amount": 5.0},
			},
		},
	}
	ctx.CurrentUser = &types.CurrentUser{
		ID: "user-7", Email: "dana@example.com", Name: "Dana",
		Roles:  []string{"admin"},
		Groups: []string{"engineering"},
	}
	return ctx
}

func TestLookup(t *testing.T) {
	ctx := orderCtx()
	if got := callCtx(t, ctx, "LOOKUP", "line_items", "LineItems", "name"); got != "widget" {
		t.Errorf("LOOKUP = %v, want widget", got)
	}
	// Unresolvable reference yields null.
	if got := callCtx(t, ctx, "LOOKUP", "line_items", "NoSuchRef", "name"); got != nil {
		t.Errorf("LOOKUP missing ref = %v, want nil", got)
	}
}

func TestRollup(t *testing.T) {
	ctx := orderCtx()
	tests := []struct {
		mode string
		want types.Value
	}{
		{"SUM", 40.0},
		{"AVG", 40.0 / 3},
		{"COUNT", 3.0},
		{"COUNTALL", 3.0},
		{"MIN", 5.0},
		{"MAX", 25.0},
		{"FIRST", 10.0},
		{"LAST", 5.0},
	}
	for _, tt := range tests {
		got := callCtx(t, ctx, "ROLLUP", "line_items", "LineItems", "amount", tt.mode)
		if got != tt.want {
			t.Errorf("ROLLUP %s = %v, want %v", tt.mode, got, tt.want)
		}
	}

	if got := callCtx(t, ctx, "ROLLUP", "line_items", "LineItems", "name", "CONCAT_UNIQUE"); got != "widget, gadget" {
		t.Errorf("ROLLUP CONCAT_UNIQUE = %v", got)
	}

	// SUM over no matches is 0, MIN is null.
	empty := types.NewContext()
	empty.Record = map[string]types.Value{"LineItems": "x"}
	if got := callCtx(t, empty, "ROLLUP", "line_items", "LineItems", "amount", "SUM"); got != 0.0 {
		t.Errorf("ROLLUP SUM empty = %v, want 0", got)
	}
	if got := callCtx(t, empty, "ROLLUP", "line_items", "LineItems", "amount", "MIN"); got != nil {
		t.Errorf("ROLLUP MIN empty = %v, want nil", got)
	}

	if _, err := testRegistry.Execute("ROLLUP",
		[]types.Value{"line_items", "LineItems", "amount", "MEDIAN"}, ctx); err == nil {
		t.Error("unknown aggregation succeeded")
	}
}

func TestRelated(t *testing.T) {
	ctx := orderCtx()
	got := callCtx(t, ctx, "RELATED", "line_items", "LineItems", "amount")
	want := []types.Value{10.0, 25.0, 5.0}
	if !types.Equal(got, want) {
		t.Errorf("RELATED = %v, want %v", got, want)
	}

	empty := types.NewContext()
	if got := callCtx(t, empty, "RELATED", "line_items", "LineItems", "amount"); !types.Equal(got, []types.Value{}) {
		t.Errorf("RELATED without matches = %v, want empty array", got)
	}
}

func TestRecordMetadata(t *testing.T) {
	ctx := orderCtx()
	if got := callCtx(t, ctx, "RECORDID"); got != "ord-1" {
		t.Errorf("RECORDID = %v", got)
	}
	if got := callCtx(t, ctx, "CREATED_BY"); got != "user-7" {
		t.Errorf("CREATED_BY = %v", got)
	}
	if got := callCtx(t, types.NewContext(), "RECORDID"); got != nil {
		t.Errorf("RECORDID on empty record = %v, want nil", got)
	}
}

func TestAutoNumber(t *testing.T) {
	ctx := orderCtx()
	if got := callCtx(t, ctx, "AUTONUMBER"); got != "42" {
		t.Errorf("AUTONUMBER = %v", got)
	}
	if got := callCtx(t, ctx, "AUTONUMBER", 5.0); got != "00042" {
		t.Errorf("AUTONUMBER(5) = %v", got)
	}
	if got := callCtx(t, ctx, "AUTONUMBER", 4.0, "ORD-"); got != "ORD-0042" {
		t.Errorf("AUTONUMBER(4, ORD-) = %v", got)
	}
}

func TestCurrentUser(t *testing.T) {
	ctx := orderCtx()
	user, ok := callCtx(t, ctx, "CURRENTUSER").(map[string]types.Value)
	if !ok || user["id"] != "user-7" {
		t.Fatalf("CURRENTUSER = %v", user)
	}
	if got := callCtx(t, ctx, "CURRENTUSER", "email"); got != "dana@example.com" {
		t.Errorf("CURRENTUSER(email) = %v", got)
	}
	if got := callCtx(t, ctx, "HASROLE", "ADMIN"); got != true {
		t.Errorf("HASROLE = %v", got)
	}
	if got := callCtx(t, ctx, "HASROLE", "viewer"); got != false {
		t.Errorf("HASROLE(viewer) = %v", got)
	}
	if got := callCtx(t, ctx, "INGROUP", "engineering"); got != true {
		t.Errorf("INGROUP = %v", got)
	}

	// No user in context.
	anon := types.NewContext()
	if got := callCtx(t, anon, "HASROLE", "admin"); got != false {
		t.Errorf("HASROLE without user = %v", got)
	}
	if got := callCtx(t, anon, "CURRENTUSER"); got != nil {
		t.Errorf("CURRENTUSER without user = %v", got)
	}
}
