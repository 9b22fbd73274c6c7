package template

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/svelgo/svelgo/pkg/compiler/diag"
	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

// state is one parser state function. It consumes input and returns the
// next state; nil means fragment.
type state func(*parser) state

// parser holds the single-owner mutable parse state: the cursor and the
// stack of open nodes. The cursor only moves forward; matching uses fixed
// lookahead windows.
type parser struct {
	template string
	reporter *diag.Reporter
	arena    *js.Arena
	index    int
	stack    []Node

	doc  *Document
	root *Fragment

	metaSeen      map[string]bool
	lastAutoClose *autoClosed
}

type autoClosed struct {
	tag    string
	reason string
	depth  int
}

// Parse parses a component source into a Document. Embedded expressions and
// scripts draw node ids from arena. Fatal syntax errors return a
// *diag.Error.
func Parse(source string, arena *js.Arena, filename string) (doc *Document, err error) {
	root := &Fragment{Base: Base{Start: 0, End: len(source)}}
	p := &parser{
		template: source,
		reporter: diag.NewReporter(source, filename),
		arena:    arena,
		stack:    []Node{root},
		doc:      &Document{HTML: root},
		root:     root,
		metaSeen: make(map[string]bool),
	}
	defer func() {
		if r := recover(); r != nil {
			parseErr, ok := r.(*diag.Error)
			if !ok {
				panic(r)
			}
			err = parseErr
		}
	}()

	current := state(fragment)
	for p.index < len(p.template) {
		next := current(p)
		if next == nil {
			next = fragment
		}
		current = next
	}

	if len(p.stack) > 1 {
		p.failUnclosed(p.current())
	}
	return p.doc, nil
}

func (p *parser) failUnclosed(open Node) {
	span := pos.NewSpan(p.index, p.index)
	if el, ok := open.(*Element); ok {
		panic(p.reporter.Errorf("unclosed-element", span, "<%s> was left open", el.Name))
	}
	panic(p.reporter.Errorf("unclosed-block", span, "block was left open"))
}

// fail raises a fatal parse error at the given span.
func (p *parser) fail(code string, span pos.Span, format string, args ...interface{}) {
	panic(p.reporter.Errorf(code, span, format, args...))
}

func (p *parser) failHere(code, format string, args ...interface{}) {
	p.fail(code, pos.NewSpan(p.index, p.index), format, args...)
}

func (p *parser) current() Node {
	return p.stack[len(p.stack)-1]
}

func (p *parser) push(n Node) {
	p.stack = append(p.stack, n)
}

func (p *parser) pop() Node {
	n := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return n
}

// addChild appends child to the currently open node.
func (p *parser) addChild(child Node) {
	switch parent := p.current().(type) {
	case *Fragment:
		parent.Children = append(parent.Children, child)
	case *Element:
		parent.Children = append(parent.Children, child)
	case *IfBlock:
		parent.Children = append(parent.Children, child)
	case *ElseBlock:
		parent.Children = append(parent.Children, child)
	case *EachBlock:
		parent.Children = append(parent.Children, child)
	case *PendingBlock:
		parent.Children = append(parent.Children, child)
	case *ThenBlock:
		parent.Children = append(parent.Children, child)
	case *CatchBlock:
		parent.Children = append(parent.Children, child)
	default:
		p.failHere("parse-error", "cannot append content here")
	}
}

func setEnd(n Node, end int) {
	switch v := n.(type) {
	case *Fragment:
		v.End = end
	case *Element:
		v.End = end
	case *IfBlock:
		v.End = end
	case *ElseBlock:
		v.End = end
	case *EachBlock:
		v.End = end
	case *AwaitBlock:
		v.End = end
	case *PendingBlock:
		v.End = end
	case *ThenBlock:
		v.End = end
	case *CatchBlock:
		v.End = end
	case *Text:
		v.End = end
	}
}

// ---- cursor helpers ----

func (p *parser) match(s string) bool {
	return strings.HasPrefix(p.template[p.index:], s)
}

func (p *parser) eat(s string) bool {
	if p.match(s) {
		p.index += len(s)
		return true
	}
	return false
}

func (p *parser) require(s, code string) {
	if !p.eat(s) {
		if p.index >= len(p.template) {
			p.failHere("unexpected-eof", "unexpected end of input, expected %q", s)
		}
		if code == "" {
			code = "unexpected-token"
		}
		p.failHere(code, "expected %q", s)
	}
}

func (p *parser) allowWhitespace() {
	for p.index < len(p.template) {
		r, size := utf8.DecodeRuneInString(p.template[p.index:])
		if !unicode.IsSpace(r) {
			return
		}
		p.index += size
	}
}

func (p *parser) requireWhitespace() {
	start := p.index
	p.allowWhitespace()
	if p.index == start {
		p.failHere("unexpected-token", "expected whitespace")
	}
}

// readUntil advances the cursor to the first occurrence of any byte in
// stops and returns the consumed text.
func (p *parser) readUntil(stops string) string {
	start := p.index
	for p.index < len(p.template) && !strings.ContainsAny(p.template[p.index:p.index+1], stops) {
		p.index++
	}
	return p.template[start:p.index]
}

func (p *parser) readIdentifier() string {
	start := p.index
	for p.index < len(p.template) {
		c := p.template[p.index]
		if c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(p.index > start && c >= '0' && c <= '9') {
			p.index++
			continue
		}
		break
	}
	return p.template[start:p.index]
}

// readExpression hands off to the embedded-language reader and resumes the
// template cursor after the expression.
func (p *parser) readExpression() js.Expr {
	expr, end, err := js.ParseExpressionAt(p.template, p.index, p.arena)
	if err != nil {
		p.jsError(err)
	}
	p.index = end
	return expr
}

func (p *parser) readPattern() js.Pattern {
	pattern, end, err := js.ParsePatternAt(p.template, p.index, p.arena)
	if err != nil {
		p.jsError(err)
	}
	p.index = end
	return pattern
}

func (p *parser) jsError(err error) {
	if pe, ok := err.(*js.ParseError); ok {
		p.fail(pe.Code, pe.Span, "%s", pe.Message)
	}
	p.failHere("parse-error", "%s", err.Error())
}

// ---- states ----

func fragment(p *parser) state {
	if p.match("<") {
		return tag
	}
	if p.match("{") {
		return mustache
	}
	return text
}

func text(p *parser) state {
	start := p.index
	for p.index < len(p.template) && !p.match("<") && !p.match("{") {
		p.index++
	}
	data := p.template[start:p.index]
	p.addChild(&Text{Base: Base{Start: start, End: p.index}, Data: data})
	return nil
}
