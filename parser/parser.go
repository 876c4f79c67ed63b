// Package parser builds an abstract syntax tree from formula source text
// using recursive descent with explicit precedence levels.
package parser

import (
	"fmt"
	"strings"

	"github.com/ncobase/formula/ast"
	"github.com/ncobase/formula/lexer"
	"github.com/ncobase/formula/token"
)

// DefaultMaxDepth bounds expression nesting to keep recursion in check for
// user-authored formulas
const DefaultMaxDepth = 200

// ParseError represents a syntax error with the offending token and range
type ParseError struct {
	Message string
	Range   token.SourceRange
	Token   token.Token
}

// Error returns the error message
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, col %d: %s",
		e.Range.Start.Line, e.Range.Start.Column, e.Message)
}

type parser struct {
	tokens   []token.Token
	pos      int
	depth    int
	maxDepth int
}

// Parse tokenizes and parses the source into a Program. The whole token
// stream must reduce to exactly one expression; trailing input is an error.
func Parse(source string) (*ast.Program, error) {
	return ParseWithDepth(source, DefaultMaxDepth)
}

// ParseWithDepth parses with a custom nesting depth limit
func ParseWithDepth(source string, maxDepth int) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	p := &parser{tokens: tokens, maxDepth: maxDepth}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != token.EOF {
		return nil, p.errorf("unexpected token %s after expression", p.current())
	}

	return &ast.Program{
		Body:        body,
		SourceRange: spanNodes(body, body),
	}, nil
}

func (p *parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) next() token.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) peekKind(n int) token.Kind {
	if p.pos+n >= len(p.tokens) {
		return token.EOF
	}
	return p.tokens[p.pos+n].Kind
}

func (p *parser) match(kind token.Kind) bool {
	if p.current().Kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.errorf("expected %s, got %s", kind, tok)
	}
	p.pos++
	return tok, nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	tok := p.current()
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Range:   tok.Range,
		Token:   tok,
	}
}

func (p *parser) parseExpression() (ast.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, p.errorf("expression nesting exceeds maximum depth %d", p.maxDepth)
	}
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == token.Or {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Op: "OR", Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == token.And {
		p.next()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Op: "AND", Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Kind {
		case token.Eq:
			op = "="
		case token.NotEq:
			op = "!="
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
}

func (p *parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Kind {
		case token.Lt:
			op = "<"
		case token.LtEq:
			op = "<="
		case token.Gt:
			op = ">"
		case token.GtEq:
			op = ">="
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
}

func (p *parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Kind {
		case token.Plus:
			op = "+"
		case token.Minus:
			op = "-"
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Kind {
		case token.Star:
			op = "*"
		case token.Slash:
			op = "/"
		case token.Percent:
			op = "%"
		default:
			return left, nil
		}
		p.next()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
}

// parsePower parses `^` with the same left-recursive loop as the other
// binary levels, so `2^3^2` groups as `(2^3)^2`.
func (p *parser) parsePower() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == token.Caret {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: "^", Left: left, Right: right, SourceRange: spanNodes(left, right)}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Node, error) {
	switch p.current().Kind {
	case token.Minus:
		start := p.next().Range
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "-", Operand: operand,
			SourceRange: token.SourceRange{Start: start.Start, End: operand.Range().End}}, nil
	case token.Not:
		start := p.next().Range
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "NOT", Operand: operand,
			SourceRange: token.SourceRange{Start: start.Start, End: operand.Range().End}}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Kind {
		case token.Dot:
			p.next()
			name, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberAccess{Object: expr, Property: name.Text,
				SourceRange: token.SourceRange{Start: expr.Range().Start, End: name.Range.End}}
		case token.LBracket:
			p.next()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			expr = &ast.IndexAccess{Object: expr, Index: index,
				SourceRange: token.SourceRange{Start: expr.Range().Start, End: end.Range.End}}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Node, error) {
	tok := p.current()
	switch tok.Kind {
	case token.Number:
		p.next()
		return &ast.NumberLiteral{Value: tok.Value.(float64), SourceRange: tok.Range}, nil

	case token.String:
		p.next()
		return &ast.StringLiteral{Value: tok.Value.(string), SourceRange: tok.Range}, nil

	case token.Boolean:
		p.next()
		return &ast.BooleanLiteral{Value: tok.Value.(bool), SourceRange: tok.Range}, nil

	case token.Null:
		p.next()
		return &ast.NullLiteral{SourceRange: tok.Range}, nil

	case token.PropertyRef:
		p.next()
		return &ast.PropertyRef{Path: tok.Value.(string), SourceRange: tok.Range}, nil

	case token.Identifier:
		p.next()
		return &ast.Identifier{Name: tok.Text, SourceRange: tok.Range}, nil

	case token.Function:
		return p.parseFunctionCall()

	case token.And, token.Or:
		// AND/OR in operand position open the variadic call forms,
		// which evaluate every argument, unlike the infix operators.
		if p.peekKind(1) == token.LParen {
			return p.parseFunctionCall()
		}
		return nil, p.errorf("unexpected token %s", tok)

	case token.LParen:
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil

	case token.LBracket:
		return p.parseArrayLiteral()

	default:
		return nil, p.errorf("unexpected token %s", tok)
	}
}

func (p *parser) parseFunctionCall() (ast.Node, error) {
	name := p.next()
	callee, _ := name.Value.(string)
	if callee == "" {
		// AND/OR call forms arrive as operator tokens with no value.
		callee = strings.ToUpper(name.Text)
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var args []ast.Node
	if p.current().Kind != token.RParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	end, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}

	return &ast.FunctionCall{
		Name:        callee,
		Args:        args,
		SourceRange: token.SourceRange{Start: name.Range.Start, End: end.Range.End},
	}, nil
}

func (p *parser) parseArrayLiteral() (ast.Node, error) {
	open := p.next()

	var elements []ast.Node
	if p.current().Kind != token.RBracket {
		for {
			el, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	end, err := p.expect(token.RBracket)
	if err != nil {
		return nil, err
	}

	return &ast.ArrayLiteral{
		Elements:    elements,
		SourceRange: token.SourceRange{Start: open.Range.Start, End: end.Range.End},
	}, nil
}

// spanNodes builds a range from the start of the leftmost node to the end
// of the rightmost
func spanNodes(left, right ast.Node) token.SourceRange {
	return token.SourceRange{Start: left.Range().Start, End: right.Range().End}
}
