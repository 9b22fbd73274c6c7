package js

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

// TokenKind discriminates lexer tokens.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokNumber
	TokString
	TokRegexp
	TokPunct
	TokIllegal
)

// Token is one lexical token. Text is the raw source slice; Value carries
// the decoded form for strings.
type Token struct {
	Kind  TokenKind
	Text  string
	Value string
	Span  pos.Span
}

// Lexer produces tokens on demand from a script slice of the component
// source. Spans are reported in outer-source coordinates by adding the base
// offset.
type Lexer struct {
	src  string
	base int
	pos  int

	prevKind TokenKind
	prevText string
}

// NewLexer lexes src; spans are offset by base into the enclosing buffer.
func NewLexer(src string, base int) *Lexer {
	return &Lexer{src: src, base: base}
}

// Pos returns the current raw position in outer-source coordinates.
func (l *Lexer) Pos() int {
	return l.base + l.pos
}

func (l *Lexer) span(start int) pos.Span {
	return pos.NewSpan(l.base+start, l.base+l.pos)
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	start := l.pos
	if l.pos >= len(l.src) {
		return l.emit(Token{Kind: TokEOF, Span: l.span(start)})
	}

	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		l.pos++
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		return l.emit(Token{Kind: TokIdent, Text: text, Span: l.span(start)})
	case c >= '0' && c <= '9', c == '.' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9':
		return l.emit(l.scanNumber(start))
	case c == '"' || c == '\'':
		return l.emit(l.scanString(start, c))
	case c == '/':
		if l.regexAllowed() {
			return l.emit(l.scanRegexp(start))
		}
		return l.emit(l.scanPunct(start))
	default:
		return l.emit(l.scanPunct(start))
	}
}

func (l *Lexer) emit(t Token) Token {
	l.prevKind = t.Kind
	l.prevText = t.Text
	return t
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += 2 + end + 2
			}
		default:
			if c >= utf8.RuneSelf {
				r, size := utf8.DecodeRuneInString(l.src[l.pos:])
				if unicode.IsSpace(r) {
					l.pos += size
					continue
				}
			}
			return
		}
	}
}

// regexAllowed applies the prior-token heuristic: a slash begins a regular
// expression unless the previous token could end an operand.
func (l *Lexer) regexAllowed() bool {
	switch l.prevKind {
	case TokNumber, TokString, TokRegexp:
		return false
	case TokIdent:
		switch l.prevText {
		case "return", "typeof", "instanceof", "in", "of", "new", "delete", "void", "do", "else", "case", "throw":
			return true
		}
		return false
	case TokPunct:
		switch l.prevText {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	default:
		return true
	}
}

func (l *Lexer) scanNumber(start int) Token {
	// Hex, octal and binary prefixes.
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			l.pos += 2
			for l.pos < len(l.src) && (isIdentPart(l.src[l.pos])) {
				l.pos++
			}
			return Token{Kind: TokNumber, Text: l.src[start:l.pos], Span: l.span(start)}
		}
	}
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	return Token{Kind: TokNumber, Text: l.src[start:l.pos], Span: l.span(start)}
}

func (l *Lexer) scanString(start int, quote byte) Token {
	l.pos++ // opening quote
	var value strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			return Token{Kind: TokString, Text: l.src[start:l.pos], Value: value.String(), Span: l.span(start)}
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			value.WriteByte(unescape(l.src[l.pos]))
			l.pos++
			continue
		}
		if c == '\n' {
			break
		}
		value.WriteByte(c)
		l.pos++
	}
	return Token{Kind: TokIllegal, Text: "unterminated string", Span: l.span(start)}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func (l *Lexer) scanRegexp(start int) Token {
	l.pos++ // opening slash
	inClass := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			l.pos++
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++ // flags
			}
			return Token{Kind: TokRegexp, Text: l.src[start:l.pos], Span: l.span(start)}
		case c == '\n':
			return Token{Kind: TokIllegal, Text: "unterminated regular expression", Span: l.span(start)}
		}
		l.pos++
	}
	return Token{Kind: TokIllegal, Text: "unterminated regular expression", Span: l.span(start)}
}

// puncts is ordered longest first so the scanner always takes the longest
// match.
var puncts = []string{
	">>>=",
	"===", "!==", "**=", "<<=", ">>=", ">>>", "...", "&&=", "||=", "??=",
	"?.", "=>", "++", "--", "**", "==", "!=", "<=", ">=", "&&", "||", "??",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", "<", ">", "+", "-", "*",
	"/", "%", "&", "|", "^", "!", "~", "?", ":", "=", "`", "$",
}

func (l *Lexer) scanPunct(start int) Token {
	rest := l.src[l.pos:]
	for _, p := range puncts {
		if strings.HasPrefix(rest, p) {
			l.pos += len(p)
			return Token{Kind: TokPunct, Text: p, Span: l.span(start)}
		}
	}
	l.pos++
	return Token{Kind: TokIllegal, Text: "unexpected character " + l.src[start:l.pos], Span: l.span(start)}
}

// TemplateChunk scans raw template-literal text from the current position up
// to a backtick or an interpolation opener. The terminator is consumed.
// interp is true when the chunk ended at "${".
func (l *Lexer) TemplateChunk() (text string, interp bool, ok bool) {
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '`':
			l.pos++
			return b.String(), false, true
		case c == '$' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '{':
			l.pos += 2
			return b.String(), true, true
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos++
			b.WriteByte(unescape(l.src[l.pos]))
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", false, false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
