package token

import "fmt"

// Kind represents a lexical token kind
type Kind int

const (
	EOF Kind = iota

	// Literals
	Number
	String
	Boolean
	Null

	// Names
	Identifier
	PropertyRef
	Function

	// Arithmetic operators
	Plus
	Minus
	Star
	Slash
	Percent
	Caret

	// Comparison operators
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq

	// Logical keywords
	And
	Or
	Not

	// Delimiters
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Dot
)

var kindNames = map[Kind]string{
	EOF:         "EOF",
	Number:      "NUMBER",
	String:      "STRING",
	Boolean:     "BOOLEAN",
	Null:        "NULL",
	Identifier:  "IDENTIFIER",
	PropertyRef: "PROPERTY_REF",
	Function:    "FUNCTION",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Slash:       "/",
	Percent:     "%",
	Caret:       "^",
	Eq:          "=",
	NotEq:       "!=",
	Lt:          "<",
	LtEq:        "<=",
	Gt:          ">",
	GtEq:        ">=",
	And:         "AND",
	Or:          "OR",
	Not:         "NOT",
	LParen:      "(",
	RParen:      ")",
	LBracket:    "[",
	RBracket:    "]",
	Comma:       ",",
	Dot:         ".",
}

// String returns the display name of the token kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsOperator reports whether the kind is a binary or unary operator
func (k Kind) IsOperator() bool {
	switch k {
	case Plus, Minus, Star, Slash, Percent, Caret, Eq, NotEq, Lt, LtEq, Gt, GtEq, And, Or, Not:
		return true
	default:
		return false
	}
}

// Position identifies a location in formula source text
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns the position as "line:col"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceRange spans a region of formula source text
type SourceRange struct {
	Start Position
	End   Position
}

// String returns the range as "start-end"
func (r SourceRange) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Token represents a single lexical token. Tokens are produced once per
// scan and never mutated.
type Token struct {
	Kind  Kind
	Text  string // raw source text
	Value any    // parsed literal value where applicable
	Range SourceRange
}

// String returns a readable form of the token for diagnostics
func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// ScanError represents a lexical error with its exact source position
type ScanError struct {
	Message string
	Pos     Position
	Source  string
}

// Error returns the error message
func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error at line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}
