package types

import (
	"time"

	"github.com/ncobase/formula/token"
)

// Diagnostic is a single validation finding with its source range
type Diagnostic struct {
	Message string            `json:"message"`
	Range   token.SourceRange `json:"range"`
}

// DependencyAnalysis lists everything a formula's AST touches
type DependencyAnalysis struct {
	Properties            []string `json:"properties"`
	RelatedCollections    []string `json:"relatedCollections"`
	Functions             []string `json:"functions"`
	HasCircularDependency bool     `json:"hasCircularDependency"`
	CircularPath          []string `json:"circularPath,omitempty"`
}

// ValidationResult carries diagnostics, the inferred result type, and the
// dependency analysis for a formula
type ValidationResult struct {
	Valid        bool               `json:"valid"`
	Errors       []Diagnostic       `json:"errors"`
	Warnings     []Diagnostic       `json:"warnings"`
	InferredType string             `json:"inferredType,omitempty"`
	Dependencies DependencyAnalysis `json:"dependencies"`
}

// EvalMetrics counts the work an evaluation performed
type EvalMetrics struct {
	PropertyAccesses int           `json:"propertyAccesses"`
	RelatedLookups   int           `json:"relatedLookups"`
	FunctionCalls    int           `json:"functionCalls"`
	ParseTime        time.Duration `json:"parseTime"`
	EvalTime         time.Duration `json:"evalTime"`
	TotalTime        time.Duration `json:"totalTime"`
}

// Result is the outcome of evaluating a formula. Evaluation failures are
// reported here, never raised: formulas are end-user-authored content.
type Result struct {
	Value      Value             `json:"value"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Metrics    EvalMetrics       `json:"metrics"`
}
