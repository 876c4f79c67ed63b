// Package validator checks structures arriving from outside the engine,
// such as collection metadata and configuration loaded from files, using
// their `validate` struct tags.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// tagMessages maps validation tags to message templates. Templates with
// one placeholder receive the field name; with two, the field name and
// the tag parameter.
var tagMessages = map[string]string{
	"required": "the field '%s' is required",
	"min":      "the field '%s' must be at least %s characters long",
	"max":      "the field '%s' must be no longer than %s characters",
	"gte":      "the field '%s' must be greater than or equal to %s",
	"lte":      "the field '%s' must be less than or equal to %s",
	"gt":       "the field '%s' must be greater than %s",
	"lt":       "the field '%s' must be less than %s",
	"oneof":    "the field '%s' must be one of %s",
}

func message(jsonName string, e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, jsonName, e.Param())
		}
		return fmt.Sprintf(msg, jsonName)
	}
	return fmt.Sprintf("the field '%s' failed the '%s' check", jsonName, e.Tag())
}

// Fields validates s against its struct tags and returns a map of JSON
// field names to messages, empty when s is valid. s must be a pointer
// to a struct.
func Fields(s any) map[string]string {
	out := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out[""] = err.Error()
		return out
	}
	structType := reflect.TypeOf(s).Elem()
	for _, e := range fieldErrs {
		name := e.StructField()
		if field, ok := structType.FieldByName(name); ok {
			if tag := strings.Split(field.Tag.Get("json"), ",")[0]; tag != "" {
				name = tag
			}
		}
		out[name] = message(name, e)
	}
	return out
}

// Struct validates s against its struct tags, returning a single error
// that joins every failing field
func Struct(s any) error {
	fields := Fields(s)
	if len(fields) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(fields))
	for _, msg := range fields {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}
