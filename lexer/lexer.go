// Package lexer scans formula source text into a flat token stream.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ncobase/formula/token"
)

// reserved maps reserved words (uppercased) to their token kinds
var reserved = map[string]token.Kind{
	"TRUE":  token.Boolean,
	"FALSE": token.Boolean,
	"NULL":  token.Null,
	"AND":   token.And,
	"OR":    token.Or,
	"NOT":   token.Not,
}

type lexer struct {
	source string
	pos    int
	line   int
	col    int
}

// Tokenize scans the source into tokens, always terminated by EOF.
// On any lexical error it returns a *token.ScanError and no tokens.
func Tokenize(source string) ([]token.Token, error) {
	l := &lexer{source: source, line: 1, col: 1}
	var tokens []token.Token

	for l.pos < len(l.source) {
		c := l.source[l.pos]

		switch {
		case isWhitespace(c):
			l.advance()

		case c == '/' && l.peek(1) == '/':
			l.skipLineComment()

		case c == '/' && l.peek(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return nil, err
			}

		case isDigit(c):
			tok, err := l.scanNumber()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case c == '"' || c == '\'':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case c == '{':
			tok, err := l.scanPropertyRef()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case isLetter(c) || c == '_':
			tokens = append(tokens, l.scanIdentifier())

		default:
			tok, err := l.scanOperator()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}

	end := l.position()
	tokens = append(tokens, token.Token{
		Kind:  token.EOF,
		Range: token.SourceRange{Start: end, End: end},
	})
	return tokens, nil
}

func (l *lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.source) {
		return l.source[l.pos+n]
	}
	return 0
}

func (l *lexer) errorf(pos token.Position, format string, args ...any) *token.ScanError {
	return &token.ScanError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Source:  l.source,
	}
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

func (l *lexer) skipBlockComment() error {
	start := l.position()
	l.advance() // /
	l.advance() // *
	for l.pos < len(l.source) {
		if l.source[l.pos] == '*' && l.peek(1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return l.errorf(start, "unterminated block comment")
}

func (l *lexer) scanNumber() (token.Token, error) {
	start := l.position()

	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.advance()
	}
	if l.pos < len(l.source) && l.source[l.pos] == '.' && isDigit(l.peek(1)) {
		l.advance()
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.advance()
		}
	}
	if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
		next := l.peek(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
			l.advance() // e
			if l.source[l.pos] == '+' || l.source[l.pos] == '-' {
				l.advance()
			}
			for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				l.advance()
			}
		}
	}

	text := l.source[start.Offset:l.pos]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.Token{}, l.errorf(start, "invalid number %q", text)
	}
	return token.Token{
		Kind:  token.Number,
		Text:  text,
		Value: value,
		Range: token.SourceRange{Start: start, End: l.position()},
	}, nil
}

func (l *lexer) scanString() (token.Token, error) {
	start := l.position()
	quote := l.advance()
	var value strings.Builder

	for l.pos < len(l.source) {
		c := l.source[l.pos]
		if c == quote {
			l.advance()
			return token.Token{
				Kind:  token.String,
				Text:  l.source[start.Offset:l.pos],
				Value: value.String(),
				Range: token.SourceRange{Start: start, End: l.position()},
			}, nil
		}
		if c == '\\' {
			esc := l.peek(1)
			switch esc {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '\\', '"', '\'':
				value.WriteByte(esc)
			default:
				return token.Token{}, l.errorf(l.position(), "invalid escape sequence \\%c", esc)
			}
			l.advance()
			l.advance()
			continue
		}
		value.WriteByte(c)
		l.advance()
	}

	return token.Token{}, l.errorf(start, "unterminated string")
}

func (l *lexer) scanPropertyRef() (token.Token, error) {
	start := l.position()
	l.advance() // {

	pathStart := l.pos
	for l.pos < len(l.source) {
		if l.source[l.pos] == '}' {
			path := strings.TrimSpace(l.source[pathStart:l.pos])
			l.advance()
			if path == "" {
				return token.Token{}, l.errorf(start, "empty property reference")
			}
			return token.Token{
				Kind:  token.PropertyRef,
				Text:  l.source[start.Offset:l.pos],
				Value: path,
				Range: token.SourceRange{Start: start, End: l.position()},
			}, nil
		}
		l.advance()
	}

	return token.Token{}, l.errorf(start, "unterminated property reference")
}

func (l *lexer) scanIdentifier() token.Token {
	start := l.position()
	for l.pos < len(l.source) && isIdentPart(l.source[l.pos]) {
		l.advance()
	}
	text := l.source[start.Offset:l.pos]
	upper := strings.ToUpper(text)

	if kind, ok := reserved[upper]; ok {
		tok := token.Token{
			Kind:  kind,
			Text:  text,
			Range: token.SourceRange{Start: start, End: l.position()},
		}
		if kind == token.Boolean {
			tok.Value = upper == "TRUE"
		}
		return tok
	}

	// An identifier immediately followed by `(` is a function name. The
	// one-byte lookahead resolves the identifier/call ambiguity without
	// backtracking in the parser.
	if l.pos < len(l.source) && l.source[l.pos] == '(' {
		return token.Token{
			Kind:  token.Function,
			Text:  text,
			Value: upper,
			Range: token.SourceRange{Start: start, End: l.position()},
		}
	}

	return token.Token{
		Kind:  token.Identifier,
		Text:  text,
		Value: text,
		Range: token.SourceRange{Start: start, End: l.position()},
	}
}

func (l *lexer) scanOperator() (token.Token, error) {
	start := l.position()
	c := l.source[l.pos]

	// Two-character operators are matched greedily before single-character
	// fallbacks.
	if l.pos+1 < len(l.source) {
		two := l.source[l.pos : l.pos+2]
		var kind token.Kind
		switch two {
		case "!=", "<>":
			kind = token.NotEq
		case "<=":
			kind = token.LtEq
		case ">=":
			kind = token.GtEq
		default:
			kind = token.EOF
		}
		if kind != token.EOF {
			l.advance()
			l.advance()
			return token.Token{
				Kind:  kind,
				Text:  two,
				Range: token.SourceRange{Start: start, End: l.position()},
			}, nil
		}
	}

	var kind token.Kind
	switch c {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '^':
		kind = token.Caret
	case '=':
		kind = token.Eq
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	default:
		return token.Token{}, l.errorf(start, "unexpected character %q", string(c))
	}

	l.advance()
	return token.Token{
		Kind:  kind,
		Text:  string(c),
		Range: token.SourceRange{Start: start, End: l.position()},
	}, nil
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
