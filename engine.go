// Package formula is the engine facade: it ties the lexer, parser,
// validator, evaluator, and function registry together behind a single
// concurrency-safe API with an AST cache.
package formula

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ncobase/formula/ast"
	"github.com/ncobase/formula/eval"
	"github.com/ncobase/formula/function"
	"github.com/ncobase/formula/parser"
	"github.com/ncobase/formula/types"
	"github.com/ncobase/formula/validation"
	"github.com/ncobase/formula/validator"
)

// Engine parses, validates, and evaluates formulas. An Engine is safe
// for concurrent use; construct one per schema and share it.
type Engine struct {
	mu          sync.RWMutex
	cfg         Config
	registry    *function.Registry
	cache       *astCache
	collections []types.CollectionMetadata
	logger      logrus.FieldLogger
}

// New creates an engine with the builtin function catalog and the given
// options applied over DefaultConfig
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:      DefaultConfig(),
		registry: function.NewDefaultRegistry(),
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.MaxCacheSize <= 0 {
		e.cfg.MaxCacheSize = DefaultMaxCacheSize
	}
	e.cache = newASTCache(e.cfg.MaxCacheSize)
	e.registry.SetLogger(e.logger)
	return e
}

// NewWithConfig creates an engine from an explicit Config
func NewWithConfig(cfg Config) *Engine {
	return New(WithConfig(cfg))
}

// Parse returns the AST for source, serving repeated sources from the
// cache when caching is enabled
func (e *Engine) Parse(source string) (*ast.Program, error) {
	if e.cfg.CacheEnabled {
		if program, ok := e.cache.get(source); ok {
			return program, nil
		}
	}
	program, err := e.parse(source)
	if err != nil {
		return nil, err
	}
	if e.cfg.CacheEnabled {
		e.cache.put(source, program)
	}
	return program, nil
}

func (e *Engine) parse(source string) (*ast.Program, error) {
	if e.cfg.MaxParseDepth > 0 {
		return parser.ParseWithDepth(source, e.cfg.MaxParseDepth)
	}
	return parser.Parse(source)
}

// Validate statically checks source against the engine's collection
// metadata. collectionCode selects the collection whose record the
// formula runs against; empty falls back to the configured default.
func (e *Engine) Validate(source, collectionCode string) types.ValidationResult {
	program, err := e.Parse(source)
	if err != nil {
		return types.ValidationResult{
			Valid:  false,
			Errors: []types.Diagnostic{{Message: err.Error()}},
			Dependencies: types.DependencyAnalysis{
				Properties:         []string{},
				RelatedCollections: []string{},
				Functions:          []string{},
			},
		}
	}
	e.mu.RLock()
	collections := e.collections
	e.mu.RUnlock()
	if collectionCode == "" {
		collectionCode = e.cfg.DefaultCollection
	}
	return validation.Validate(program, collections, collectionCode, e.registry)
}

// Evaluate runs source against ctx and reports the outcome. Failures
// are returned in the Result, never raised.
func (e *Engine) Evaluate(source string, ctx *types.Context) types.Result {
	return e.EvaluateWithOptions(source, ctx, EvalOptions{})
}

// EvaluateForCollection is Evaluate with an explicit collection code for
// the pre-evaluation validation pass
func (e *Engine) EvaluateForCollection(source, collectionCode string, ctx *types.Context) types.Result {
	return e.EvaluateWithOptions(source, ctx, EvalOptions{Collection: collectionCode})
}

// EvalOptions adjusts a single evaluation without reconfiguring the engine.
type EvalOptions struct {
	// Collection names the collection whose record ctx carries; empty
	// falls back to the configured default.
	Collection string
	// SkipValidation bypasses the ValidateBeforeEval pass for this call.
	SkipValidation bool
}

// EvaluateWithOptions evaluates source against ctx with per-call options
func (e *Engine) EvaluateWithOptions(source string, ctx *types.Context, opts EvalOptions) types.Result {
	start := time.Now()

	parseStart := time.Now()
	program, err := e.Parse(source)
	parseTime := time.Since(parseStart)
	if err != nil {
		return types.Result{
			Success: false,
			Error:   err.Error(),
			Metrics: types.EvalMetrics{ParseTime: parseTime, TotalTime: time.Since(start)},
		}
	}

	if e.cfg.ValidateBeforeEval && !opts.SkipValidation {
		collectionCode := opts.Collection
		if collectionCode == "" {
			collectionCode = e.cfg.DefaultCollection
		}
		e.mu.RLock()
		collections := e.collections
		e.mu.RUnlock()
		vr := validation.Validate(program, collections, collectionCode, e.registry)
		if !vr.Valid {
			e.logger.WithField("formula", source).
				WithField("errors", len(vr.Errors)).
				Debug("validation rejected formula before evaluation")
			return types.Result{
				Success:    false,
				Error:      vr.Errors[0].Message,
				Validation: &vr,
				Metrics:    types.EvalMetrics{ParseTime: parseTime, TotalTime: time.Since(start)},
			}
		}
	}

	result := eval.Evaluate(program, ctx, e.registry)
	result.Metrics.ParseTime = parseTime
	result.Metrics.TotalTime = time.Since(start)
	return result
}

// AnalyzeDependencies parses source and reports the properties,
// collections, and functions it references
func (e *Engine) AnalyzeDependencies(source string) (types.DependencyAnalysis, error) {
	program, err := e.Parse(source)
	if err != nil {
		return types.DependencyAnalysis{}, err
	}
	return validation.AnalyzeDependencies(program), nil
}

// InferType parses and validates source, returning the statically
// inferred result type
func (e *Engine) InferType(source, collectionCode string) (string, error) {
	program, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	e.mu.RLock()
	collections := e.collections
	e.mu.RUnlock()
	if collectionCode == "" {
		collectionCode = e.cfg.DefaultCollection
	}
	vr := validation.Validate(program, collections, collectionCode, e.registry)
	return vr.InferredType, nil
}

// RegisterFunction adds a custom function to the engine's registry.
// Later registrations of the same name win.
func (e *Engine) RegisterFunction(d *function.Descriptor) error {
	if err := e.registry.Register(d); err != nil {
		return fmt.Errorf("register function: %w", err)
	}
	e.logger.WithField("function", d.Name).Debug("registered custom function")
	return nil
}

// Functions returns every registered function descriptor sorted by name
func (e *Engine) Functions() []*function.Descriptor {
	return e.registry.List()
}

// FunctionsByCategory returns the registered functions in one category
func (e *Engine) FunctionsByCategory(cat function.Category) []*function.Descriptor {
	return e.registry.ListByCategory(cat)
}

// SearchFunctions returns functions whose name or description matches
// the query
func (e *Engine) SearchFunctions(query string) []*function.Descriptor {
	return e.registry.Search(query)
}

// SetCollections replaces the engine's collection metadata after
// checking each entry's required fields
func (e *Engine) SetCollections(collections []types.CollectionMetadata) error {
	for i := range collections {
		if err := validator.Struct(&collections[i]); err != nil {
			return fmt.Errorf("collection %q: %w", collections[i].Code, err)
		}
	}
	e.mu.Lock()
	e.collections = collections
	e.mu.Unlock()
	return nil
}

// ClearCache drops every cached AST
func (e *Engine) ClearCache() {
	e.cache.clear()
}

// CacheStats returns a snapshot of the AST cache counters
func (e *Engine) CacheStats() CacheStats {
	return e.cache.stats()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
