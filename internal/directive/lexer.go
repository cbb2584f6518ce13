package directive

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokSep           // newline or ';' outside of brackets
	tokIdent
	tokString
	tokInt
	tokFloat
	tokSymbol
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokColon
	tokDot
	tokArrow
)

var tokenNames = map[tokenKind]string{
	tokEOF:      "end of input",
	tokSep:      "end of statement",
	tokIdent:    "identifier",
	tokString:   "string",
	tokInt:      "integer",
	tokFloat:    "float",
	tokSymbol:   "symbol",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokComma:    "','",
	tokColon:    "':'",
	tokDot:      "'.'",
	tokArrow:    "'=>'",
}

type token struct {
	kind tokenKind
	text string
	line int
	// spaced is set when whitespace separates the token from the previous one.
	spaced bool
}

func (t token) String() string {
	switch t.kind {
	case tokIdent, tokInt, tokFloat:
		return fmt.Sprintf("%s '%s'", tokenNames[t.kind], t.text)
	case tokSymbol:
		return fmt.Sprintf("symbol ':%s'", t.text)
	default:
		return tokenNames[t.kind]
	}
}

type lexer struct {
	src    []rune
	pos    int
	line   int
	depth  int
	spaced bool
	tokens []token
}

// lex splits src into tokens. Line breaks inside (), [] and {} are insignificant.
func lex(src string) ([]token, error) {
	l := &lexer{src: []rune(src), line: 1}
	for {
		done, err := l.next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	l.emit(tokEOF, "")
	return l.tokens, nil
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) emit(kind tokenKind, text string) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, line: l.line, spaced: l.spaced})
	l.spaced = false
}

func (l *lexer) last() (token, bool) {
	if len(l.tokens) == 0 {
		return token{}, false
	}
	return l.tokens[len(l.tokens)-1], true
}

func (l *lexer) next() (bool, error) {
	if l.pos >= len(l.src) {
		return true, nil
	}
	c := l.src[l.pos]

	switch {
	case c == '\n':
		l.pos++
		if l.depth == 0 {
			l.emit(tokSep, "\n")
		}
		l.line++
		l.spaced = true
	case c == ' ' || c == '\t' || c == '\r':
		l.pos++
		l.spaced = true
	case c == '#':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
	case c == ';':
		l.pos++
		l.emit(tokSep, ";")
	case c == '"' || c == '\'':
		return false, l.lexString(c)
	case isDigit(c) || (c == '-' && isDigit(l.peek(1))):
		l.lexNumber()
	case isIdentStart(c):
		l.emit(tokIdent, l.lexWord())
	case c == ':':
		return false, l.lexColon()
	case c == '=' && l.peek(1) == '>':
		l.pos += 2
		l.emit(tokArrow, "=>")
	default:
		return false, l.lexPunct(c)
	}
	return false, nil
}

func (l *lexer) lexPunct(c rune) error {
	kinds := map[rune]tokenKind{
		'(': tokLParen, ')': tokRParen,
		'[': tokLBracket, ']': tokRBracket,
		'{': tokLBrace, '}': tokRBrace,
		',': tokComma, '.': tokDot,
	}
	kind, ok := kinds[c]
	if !ok {
		return syntaxError(l.line, "unexpected character '%c'", c)
	}
	switch kind {
	case tokLParen, tokLBracket, tokLBrace:
		l.depth++
	case tokRParen, tokRBracket, tokRBrace:
		if l.depth > 0 {
			l.depth--
		}
	}
	l.pos++
	l.emit(kind, string(c))
	return nil
}

// lexColon distinguishes `key:` from the symbol literal `:name`. A colon glued to the
// preceding identifier or string is always a key separator.
func (l *lexer) lexColon() error {
	prev, ok := l.last()
	glued := ok && !l.spaced && (prev.kind == tokIdent || prev.kind == tokString)
	if !glued && isIdentStart(l.peek(1)) {
		l.pos++
		l.emit(tokSymbol, l.lexWord())
		return nil
	}
	l.pos++
	l.emit(tokColon, ":")
	return nil
}

func (l *lexer) lexWord() string {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) lexNumber() {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	kind := tokInt
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		kind = tokFloat
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	l.emit(kind, strings.ReplaceAll(string(l.src[start:l.pos]), "_", ""))
}

func (l *lexer) lexString(quote rune) error {
	startLine := l.line
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return syntaxError(startLine, "unterminated string")
		}
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.pos++
			l.tokens = append(l.tokens, token{kind: tokString, text: b.String(), line: startLine, spaced: l.spaced})
			l.spaced = false
			return nil
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos += 2
			switch e := l.src[l.pos-1]; e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '"', '\'':
				b.WriteRune(e)
			default:
				b.WriteRune('\\')
				b.WriteRune(e)
			}
		default:
			if c == '\n' {
				l.line++
			}
			b.WriteRune(c)
			l.pos++
		}
	}
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool { return c == '_' || unicode.IsLetter(c) }

func isIdentPart(c rune) bool { return isIdentStart(c) || unicode.IsDigit(c) }
