package formula

import (
	"github.com/sirupsen/logrus"

	"github.com/ncobase/formula/types"
)

// Option configures an Engine at construction time
type Option func(*Engine)

// WithConfig replaces the whole engine configuration
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the engine logger; nil is ignored
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCacheSize caps the AST cache at n parsed formulas
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cfg.MaxCacheSize = n }
}

// WithCacheDisabled turns off AST caching
func WithCacheDisabled() Option {
	return func(e *Engine) { e.cfg.CacheEnabled = false }
}

// WithCollections seeds the engine with collection metadata for
// property validation
func WithCollections(collections []types.CollectionMetadata) Option {
	return func(e *Engine) { e.collections = collections }
}

// WithDefaultCollection names the collection formulas evaluate against
// when no explicit collection code is supplied
func WithDefaultCollection(code string) Option {
	return func(e *Engine) { e.cfg.DefaultCollection = code }
}

// WithValidateBeforeEval makes every Evaluate call validate first and
// fail on the first validation error
func WithValidateBeforeEval() Option {
	return func(e *Engine) { e.cfg.ValidateBeforeEval = true }
}

// WithMaxParseDepth bounds expression nesting depth
func WithMaxParseDepth(depth int) Option {
	return func(e *Engine) { e.cfg.MaxParseDepth = depth }
}
