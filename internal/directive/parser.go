package directive

import (
	"strconv"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// Node is an expression of the directive language.
type Node interface {
	node()
}

// Literal is a constant string, number, boolean or nil.
type Literal struct {
	Value any
}

// ArrayLit is `[a, b, ...]`.
type ArrayLit struct {
	Elems []Node
}

// MapLit is `{key: value, ...}`. Keys keep their source order.
type MapLit struct {
	Keys   []string
	Values []Node
}

// Ident is a bare name: a variable when one is bound, otherwise a zero-argument call.
type Ident struct {
	Name string
}

// Call is `name(args)` or the command form `name arg, arg`. Keyword arguments are collected
// into a single trailing map when the call is evaluated.
type Call struct {
	Name     string
	Args     []Node
	KwKeys   []string
	KwValues []Node
}

// Field is `x.name`.
type Field struct {
	X    Node
	Name string
}

func (*Literal) node()  {}
func (*ArrayLit) node() {}
func (*MapLit) node()   {}
func (*Ident) node()    {}
func (*Call) node()     {}
func (*Field) node()    {}

// Statement is one top-level expression with the line it starts on, counting from 1.
type Statement struct {
	Expr Node
	Line int
}

// Parse parses a sequence of statements separated by newlines or semicolons.
func Parse(src string) ([]Statement, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.program()
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.unexpected(t, tokenNames[kind])
	}
	return p.advance(), nil
}

func (p *parser) unexpected(t token, want string) error {
	if want != "" {
		return syntaxError(t.line, "unexpected %s, expecting %s", t, want)
	}
	return syntaxError(t.line, "unexpected %s", t)
}

func (p *parser) program() ([]Statement, error) {
	var stmts []Statement
	for {
		for p.peek().kind == tokSep {
			p.advance()
		}
		if p.peek().kind == tokEOF {
			return stmts, nil
		}
		line := p.peek().line
		expr, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, Statement{Expr: expr, Line: line})
		if t := p.peek(); t.kind != tokSep && t.kind != tokEOF {
			return nil, p.unexpected(t, "")
		}
	}
}

// statement parses an expression, allowing the command form `name arg, arg`.
func (p *parser) statement() (Node, error) {
	t := p.peek()
	if t.kind == tokIdent && p.startsCommand(p.peekAt(1)) {
		p.advance()
		call := &Call{Name: t.text}
		if err := p.arguments(call, tokSep); err != nil {
			return nil, err
		}
		return call, nil
	}
	return p.expression()
}

func (p *parser) startsCommand(next token) bool {
	if !next.spaced {
		return false
	}
	switch next.kind {
	case tokString, tokInt, tokFloat, tokSymbol, tokIdent, tokLBracket, tokLBrace:
		return true
	}
	return false
}

func (p *parser) expression() (Node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokDot {
		p.advance()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if p.peek().kind == tokLParen {
			return nil, syntaxError(name.line, "method calls are not supported ('.%s(')", name.text)
		}
		x = &Field{X: x, Name: name.text}
	}
	return x, nil
}

func (p *parser) primary() (Node, error) {
	t := p.peek()
	switch t.kind {
	case tokString, tokSymbol:
		p.advance()
		return &Literal{Value: t.text}, nil
	case tokInt:
		p.advance()
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return nil, syntaxError(t.line, "invalid integer '%s'", t.text)
		}
		return &Literal{Value: n}, nil
	case tokFloat:
		p.advance()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, syntaxError(t.line, "invalid float '%s'", t.text)
		}
		return &Literal{Value: f}, nil
	case tokIdent:
		p.advance()
		switch t.text {
		case "true":
			return &Literal{Value: true}, nil
		case "false":
			return &Literal{Value: false}, nil
		case "nil":
			return &Literal{Value: nil}, nil
		}
		if p.peek().kind == tokLParen {
			p.advance()
			call := &Call{Name: t.text}
			if err := p.arguments(call, tokRParen); err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			return call, nil
		}
		return &Ident{Name: t.text}, nil
	case tokLBracket:
		return p.array()
	case tokLBrace:
		return p.mapLiteral()
	case tokLParen:
		p.advance()
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.unexpected(t, "")
}

// arguments parses a comma separated argument list up to (not including) end.
func (p *parser) arguments(call *Call, end tokenKind) error {
	for {
		t := p.peek()
		if t.kind == end || t.kind == tokEOF {
			return nil
		}
		if key, ok := p.keyword(); ok {
			value, err := p.expression()
			if err != nil {
				return err
			}
			call.KwKeys = append(call.KwKeys, key)
			call.KwValues = append(call.KwValues, value)
		} else {
			if len(call.KwKeys) > 0 {
				return syntaxError(t.line, "positional argument after keyword arguments")
			}
			arg, err := p.expression()
			if err != nil {
				return err
			}
			call.Args = append(call.Args, arg)
		}
		if p.peek().kind != tokComma {
			return nil
		}
		p.advance()
	}
}

// keyword consumes `name:` or `:name =>` / `"name" =>` if present.
func (p *parser) keyword() (string, bool) {
	t, next := p.peek(), p.peekAt(1)
	switch {
	case t.kind == tokIdent && next.kind == tokColon:
	case (t.kind == tokSymbol || t.kind == tokString || t.kind == tokIdent) && next.kind == tokArrow:
	default:
		return "", false
	}
	p.advance()
	p.advance()
	return t.text, true
}

func (p *parser) array() (Node, error) {
	p.advance()
	arr := &ArrayLit{}
	for p.peek().kind != tokRBracket {
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, elem)
		if p.peek().kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRBracket); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) mapLiteral() (Node, error) {
	p.advance()
	m := &MapLit{}
	for p.peek().kind != tokRBrace {
		key, ok := p.mapKey()
		if !ok {
			return nil, p.unexpected(p.peek(), "map key")
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, value)
		if p.peek().kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *parser) mapKey() (string, bool) {
	t, next := p.peek(), p.peekAt(1)
	switch t.kind {
	case tokIdent, tokString, tokSymbol, tokInt:
	default:
		return "", false
	}
	if next.kind != tokColon && next.kind != tokArrow {
		return "", false
	}
	p.advance()
	p.advance()
	return t.text, true
}

// syntaxError builds a parse error carrying the statement-relative line in its context.
func syntaxError(line int, format string, args ...any) error {
	return errors.ParseError("syntax error: "+format, args...).WithContext("line", line).Build()
}

// ErrorLine returns the source-relative line recorded on a parse error.
func ErrorLine(err error) (int, bool) {
	classified, ok := errors.AsClassified(err)
	if !ok {
		return 0, false
	}
	v, ok := classified.Context().Get("line")
	if !ok {
		return 0, false
	}
	line, ok := v.(int)
	return line, ok
}
