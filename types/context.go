package types

import (
	"strings"
	"time"
)

// CurrentUser carries the evaluating user's identity for the
// CURRENTUSER / HASROLE / INGROUP builtins
type CurrentUser struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	Groups []string `json:"groups"`
}

// HasRole reports whether the user carries the given role (case-insensitive)
func (u *CurrentUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// InGroup reports whether the user belongs to the given group (case-insensitive)
func (u *CurrentUser) InGroup(group string) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Groups {
		if strings.EqualFold(g, group) {
			return true
		}
	}
	return false
}

// Context carries everything a single evaluation reads: the current record,
// related records keyed by collection code then reference id, schema
// metadata, the current user, the evaluation timestamp and timezone, and
// optional host-bound variables. A Context is never mutated by evaluation.
type Context struct {
	Record         map[string]Value
	RelatedRecords map[string]map[string][]map[string]Value
	Collections    map[string]*CollectionMetadata
	CurrentUser    *CurrentUser
	Now            time.Time
	Timezone       string
	Variables      map[string]Value
}

// NewContext returns a context with defaults: an empty record, the current
// wall-clock time, and UTC
func NewContext() *Context {
	return &Context{
		Record:   map[string]Value{},
		Now:      time.Now().UTC(),
		Timezone: "UTC",
	}
}

// Location resolves the context timezone, falling back to UTC when the
// name is absent or unknown
func (c *Context) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Related returns the related records for a collection and reference id
func (c *Context) Related(collection, refID string) []map[string]Value {
	if c == nil || c.RelatedRecords == nil {
		return nil
	}
	byRef, ok := c.RelatedRecords[collection]
	if !ok {
		return nil
	}
	return byRef[refID]
}

// RecordField reads a field from the current record, trying the exact
// code first and then snake_case / camelCase fallbacks for well-known
// metadata fields
func (c *Context) RecordField(codes ...string) (Value, bool) {
	if c == nil || c.Record == nil {
		return nil, false
	}
	for _, code := range codes {
		if v, ok := c.Record[code]; ok {
			return v, true
		}
	}
	return nil, false
}
