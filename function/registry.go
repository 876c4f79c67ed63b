// Package function implements the formula function registry and the
// builtin catalog of math, text, date, logic, aggregate, reference, and
// utility functions.
package function

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ncobase/formula/types"
)

// Category groups functions for discovery
type Category string

const (
	CategoryMath      Category = "math"
	CategoryText      Category = "text"
	CategoryDate      Category = "date"
	CategoryLogic     Category = "logic"
	CategoryAggregate Category = "aggregate"
	CategoryReference Category = "reference"
	CategoryUtility   Category = "utility"
)

// Variadic marks a descriptor as accepting any number of arguments at or
// above MinArgs
const Variadic = -1

// ArgSpec documents a single argument of a function
type ArgSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
}

// Impl is a builtin function implementation. Arguments arrive already
// evaluated; ctx supplies record and user data for reference functions.
type Impl func(args []types.Value, ctx *types.Context) (types.Value, error)

// Descriptor describes a registered function: its contract and its
// implementation. Descriptors are immutable once registered.
type Descriptor struct {
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Args        []ArgSpec `json:"args,omitempty"`
	MinArgs     int       `json:"minArgs"`
	MaxArgs     int       `json:"maxArgs"` // Variadic for unbounded
	ReturnType  string    `json:"returnType"`
	Impl        Impl      `json:"-"`
}

// Registry is a case-insensitive name to descriptor catalog. It is safe
// for concurrent use; registration after construction takes the write
// lock.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]*Descriptor
	logger logrus.FieldLogger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		funcs:  make(map[string]*Descriptor),
		logger: discardLogger(),
	}
}

// NewDefaultRegistry creates a registry populated with the builtin catalog
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerMath(r)
	registerText(r)
	registerDate(r)
	registerLogic(r)
	registerAggregate(r)
	registerReference(r)
	registerUtility(r)
	return r
}

// SetLogger replaces the registry logger
func (r *Registry) SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// Register adds a descriptor, overwriting any prior registration of the
// same name
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("function descriptor requires a name")
	}
	if d.Impl == nil {
		return fmt.Errorf("function %s requires an implementation", d.Name)
	}

	key := strings.ToUpper(d.Name)
	r.mu.Lock()
	if _, exists := r.funcs[key]; exists {
		r.logger.WithField("function", key).Debug("overwriting registered function")
	}
	r.funcs[key] = d
	r.mu.Unlock()
	return nil
}

// Get returns the descriptor for a name, case-insensitively
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.funcs[strings.ToUpper(name)]
	return d, ok
}

// List returns all descriptors sorted by name
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.funcs))
	for _, d := range r.funcs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListByCategory returns all descriptors in a category sorted by name
func (r *Registry) ListByCategory(cat Category) []*Descriptor {
	var out []*Descriptor
	for _, d := range r.List() {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Search returns descriptors whose name or description contains the query,
// case-insensitively
func (r *Registry) Search(query string) []*Descriptor {
	q := strings.ToLower(query)
	var out []*Descriptor
	for _, d := range r.List() {
		if strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Description), q) {
			out = append(out, d)
		}
	}
	return out
}

// Names returns all registered names (uppercased) sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Execute looks up a function and invokes it after arity checking
func (r *Registry) Execute(name string, args []types.Value, ctx *types.Context) (types.Value, error) {
	d, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown function: %s", strings.ToUpper(name))
	}
	if len(args) < d.MinArgs {
		return nil, fmt.Errorf("%s expects at least %d argument(s), got %d", d.Name, d.MinArgs, len(args))
	}
	if d.MaxArgs != Variadic && len(args) > d.MaxArgs {
		return nil, fmt.Errorf("%s expects at most %d argument(s), got %d", d.Name, d.MaxArgs, len(args))
	}
	return d.Impl(args, ctx)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
