package validator

import (
	"strings"
	"testing"
)

type sample struct {
	Code string `json:"code" validate:"required"`
	Size int    `json:"size" validate:"gte=0"`
}

func TestFields(t *testing.T) {
	errs := Fields(&sample{Code: "x"})
	if len(errs) != 0 {
		t.Fatalf("valid struct produced errors: %v", errs)
	}

	errs = Fields(&sample{Size: -1})
	if len(errs) != 2 {
		t.Fatalf("got %v, want errors for code and size", errs)
	}
	if msg := errs["code"]; !strings.Contains(msg, "'code' is required") {
		t.Errorf("code message = %q", msg)
	}
	if msg := errs["size"]; !strings.Contains(msg, "greater than or equal to 0") {
		t.Errorf("size message = %q", msg)
	}
}

func TestStruct(t *testing.T) {
	if err := Struct(&sample{Code: "x"}); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}
	err := Struct(&sample{})
	if err == nil {
		t.Fatal("invalid struct accepted")
	}
	if !strings.Contains(err.Error(), "code") {
		t.Errorf("error = %v", err)
	}
}
