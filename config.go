package formula

// DefaultMaxCacheSize bounds the AST cache when no size is configured
const DefaultMaxCacheSize = 1000

// Config carries engine tunables. Zero values are replaced with defaults
// by New; use the validator package to check externally-loaded configs.
type Config struct {
	// MaxCacheSize caps the number of parsed formulas kept in memory.
	MaxCacheSize int `json:"maxCacheSize" yaml:"max_cache_size" validate:"gte=0"`
	// CacheEnabled toggles AST caching.
	CacheEnabled bool `json:"cacheEnabled" yaml:"cache_enabled"`
	// ValidateBeforeEval runs static validation on every Evaluate call
	// and fails evaluation on the first validation error.
	ValidateBeforeEval bool `json:"validateBeforeEval" yaml:"validate_before_eval"`
	// MaxParseDepth bounds expression nesting; 0 uses the parser default.
	MaxParseDepth int `json:"maxParseDepth" yaml:"max_parse_depth" validate:"gte=0"`
	// DefaultCollection names the collection whose metadata resolves
	// property references when no explicit collection is given.
	DefaultCollection string `json:"defaultCollection" yaml:"default_collection"`
}

// DefaultConfig returns the engine defaults: caching on, validation
// on demand only
func DefaultConfig() Config {
	return Config{
		MaxCacheSize: DefaultMaxCacheSize,
		CacheEnabled: true,
	}
}
