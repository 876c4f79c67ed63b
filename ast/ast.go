// Package ast defines the abstract syntax tree produced by the formula
// parser. Nodes are built once, carry their source range for diagnostics,
// and are immutable afterward, so a tree may be shared freely across
// validation and evaluation calls and across the engine's AST cache.
package ast

import "github.com/ncobase/formula/token"

// Node is the interface implemented by every AST node. The set of
// implementations is closed; evaluators and validators switch exhaustively
// over it.
type Node interface {
	Range() token.SourceRange
	node()
}

// Program is the root of every parsed formula
type Program struct {
	Body        Node
	SourceRange token.SourceRange
}

// NumberLiteral represents a numeric literal
type NumberLiteral struct {
	Value       float64
	SourceRange token.SourceRange
}

// StringLiteral represents a string literal
type StringLiteral struct {
	Value       string
	SourceRange token.SourceRange
}

// BooleanLiteral represents TRUE or FALSE
type BooleanLiteral struct {
	Value       bool
	SourceRange token.SourceRange
}

// NullLiteral represents NULL
type NullLiteral struct {
	SourceRange token.SourceRange
}

// Identifier represents a bare name, resolved at evaluation time against
// constants, context variables, and finally record fields
type Identifier struct {
	Name        string
	SourceRange token.SourceRange
}

// PropertyRef represents a braced property reference such as {Status} or
// {Order.Total}. Path holds the unbraced, possibly dotted path.
type PropertyRef struct {
	Path        string
	SourceRange token.SourceRange
}

// MemberAccess represents object.property access
type MemberAccess struct {
	Object      Node
	Property    string
	SourceRange token.SourceRange
}

// IndexAccess represents object[index] access
type IndexAccess struct {
	Object      Node
	Index       Node
	SourceRange token.SourceRange
}

// UnaryExpr represents a unary operation: - or NOT
type UnaryExpr struct {
	Op          string
	Operand     Node
	SourceRange token.SourceRange
}

// BinaryExpr represents an arithmetic or comparison operation
type BinaryExpr struct {
	Op          string
	Left        Node
	Right       Node
	SourceRange token.SourceRange
}

// LogicalExpr represents AND / OR with short-circuit evaluation
type LogicalExpr struct {
	Op          string
	Left        Node
	Right       Node
	SourceRange token.SourceRange
}

// FunctionCall represents NAME(args...). Name is uppercased by the lexer.
type FunctionCall struct {
	Name        string
	Args        []Node
	SourceRange token.SourceRange
}

// ArrayLiteral represents [a, b, c]
type ArrayLiteral struct {
	Elements    []Node
	SourceRange token.SourceRange
}

// ObjectLiteral represents a literal object value. The grammar has no
// object syntax ({ opens a property reference), so these nodes only arise
// from programmatic construction; the kind exists to keep the node union
// closed over every runtime value shape.
type ObjectLiteral struct {
	Keys        []string
	Values      []Node
	SourceRange token.SourceRange
}

func (n *Program) Range() token.SourceRange        { return n.SourceRange }
func (n *NumberLiteral) Range() token.SourceRange  { return n.SourceRange }
func (n *StringLiteral) Range() token.SourceRange  { return n.SourceRange }
func (n *BooleanLiteral) Range() token.SourceRange { return n.SourceRange }
func (n *NullLiteral) Range() token.SourceRange    { return n.SourceRange }
func (n *Identifier) Range() token.SourceRange     { return n.SourceRange }
func (n *PropertyRef) Range() token.SourceRange    { return n.SourceRange }
func (n *MemberAccess) Range() token.SourceRange   { return n.SourceRange }
func (n *IndexAccess) Range() token.SourceRange    { return n.SourceRange }
func (n *UnaryExpr) Range() token.SourceRange      { return n.SourceRange }
func (n *BinaryExpr) Range() token.SourceRange     { return n.SourceRange }
func (n *LogicalExpr) Range() token.SourceRange    { return n.SourceRange }
func (n *FunctionCall) Range() token.SourceRange   { return n.SourceRange }
func (n *ArrayLiteral) Range() token.SourceRange   { return n.SourceRange }
func (n *ObjectLiteral) Range() token.SourceRange  { return n.SourceRange }

func (*Program) node()        {}
func (*NumberLiteral) node()  {}
func (*StringLiteral) node()  {}
func (*BooleanLiteral) node() {}
func (*NullLiteral) node()    {}
func (*Identifier) node()     {}
func (*PropertyRef) node()    {}
func (*MemberAccess) node()   {}
func (*IndexAccess) node()    {}
func (*UnaryExpr) node()      {}
func (*BinaryExpr) node()     {}
func (*LogicalExpr) node()    {}
func (*FunctionCall) node()   {}
func (*ArrayLiteral) node()   {}
func (*ObjectLiteral) node()  {}
