package template

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

var directiveKinds = map[string]DirectiveKind{
	"bind":       DirectiveBinding,
	"on":         DirectiveEventHandler,
	"class":      DirectiveClass,
	"transition": DirectiveTransition,
	"in":         DirectiveIn,
	"out":        DirectiveOut,
	"use":        DirectiveAction,
	"animate":    DirectiveAnimation,
	"let":        DirectiveLet,
}

// readAttribute reads one attribute, spread, shorthand or directive. seen
// tracks attribute names for duplicate detection; duplicate event handlers
// are allowed (multiple listeners).
func (p *parser) readAttribute(seen map[string]bool) Node {
	start := p.index

	if p.eat("{") {
		p.allowWhitespace()
		if p.eat("...") {
			expr := p.readExpression()
			p.allowWhitespace()
			p.require("}", "")
			return &Spread{Base: Base{Start: start, End: p.index}, Expr: expr}
		}

		// {name} shorthand for name={name}.
		nameStart := p.index
		name := p.readIdentifier()
		if name == "" {
			p.failHere("invalid-attribute-name", "expected an attribute name")
		}
		nameSpan := pos.NewSpan(nameStart, p.index)
		p.allowWhitespace()
		p.require("}", "")
		p.checkUnique(seen, name, pos.NewSpan(start, p.index))
		return &Attribute{
			Base: Base{Start: start, End: p.index},
			Name: name,
			Value: []Node{&Mustache{
				Base: Base{Start: nameSpan.Start, End: nameSpan.End},
				Expr: p.arena.Ident(name, nameSpan),
			}},
		}
	}

	if p.index >= len(p.template) {
		p.failHere("unexpected-eof", "unexpected end of input, tag was left open")
	}
	name := p.readAttributeName()
	if name == "" {
		p.failHere("invalid-attribute-name", "expected an attribute name")
	}
	nameEnd := p.index

	var value []Node
	hasValue := false
	if p.eat("=") {
		p.allowWhitespace()
		value = p.readAttributeValue()
		hasValue = true
	} else if p.match("\"") || p.match("'") {
		p.failHere("unexpected-token", "expected =")
	}

	if prefix, directiveName, ok := splitDirective(name); ok {
		kind, known := directiveKinds[prefix]
		if known {
			if kind != DirectiveEventHandler {
				p.checkUnique(seen, name, pos.NewSpan(start, nameEnd))
			}
			return p.buildDirective(start, kind, directiveName, value, hasValue)
		}
	}

	p.checkUnique(seen, name, pos.NewSpan(start, nameEnd))
	attr := &Attribute{Base: Base{Start: start, End: p.index}, Name: name, Value: value}
	if !hasValue {
		attr.True = true
	}
	return attr
}

func (p *parser) checkUnique(seen map[string]bool, name string, span pos.Span) {
	if seen[name] {
		p.fail("duplicate-attribute", span, "attributes need to be unique")
	}
	seen[name] = true
}

func (p *parser) readAttributeName() string {
	start := p.index
	for p.index < len(p.template) {
		c := p.template[p.index]
		if strings.IndexByte("\t\n\r /=>\"'", c) >= 0 {
			break
		}
		p.index++
	}
	return p.template[start:p.index]
}

// splitDirective splits a prefixed attribute name into its directive prefix
// and directive name.
func splitDirective(name string) (prefix, rest string, ok bool) {
	i := strings.IndexByte(name, ':')
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// buildDirective assembles a directive node, separating |-suffixed
// modifiers and validating the value shape.
func (p *parser) buildDirective(start int, kind DirectiveKind, rawName string, value []Node, hasValue bool) Node {
	parts := strings.Split(rawName, "|")
	name := parts[0]
	modifiers := parts[1:]
	span := pos.NewSpan(start, p.index)

	directive := &Directive{
		Base:      Base{Start: start, End: p.index},
		Kind:      kind,
		Name:      name,
		Modifiers: modifiers,
	}

	if hasValue {
		if len(value) != 1 {
			p.fail("invalid-directive-value", span, "directive value must be a single expression")
		}
		tagValue, ok := value[0].(*Mustache)
		if !ok {
			p.fail("invalid-directive-value", span,
				"directive value must be a JavaScript expression enclosed in curly braces")
		}
		directive.Expr = tagValue.Expr
	}

	switch kind {
	case DirectiveBinding:
		if directive.Expr == nil {
			// bind:value shorthand binds to a variable of the same name.
			directive.Expr = p.arena.Ident(name, span)
		}
		if !isBindTarget(directive.Expr) {
			p.fail("invalid-directive-value", span,
				"can only bind to an identifier or member expression")
		}
	case DirectiveClass:
		if directive.Expr == nil {
			directive.Expr = p.arena.Ident(name, span)
		}
	case DirectiveTransition, DirectiveIn, DirectiveOut, DirectiveAnimation, DirectiveAction:
		// Expression optional; bare use:action and transition:fade are fine.
	}

	return directive
}

func isBindTarget(expr js.Expr) bool {
	switch expr.(type) {
	case *js.Identifier, *js.MemberExpr:
		return true
	}
	return false
}

// readAttributeValue reads a quoted, mustache-only or unquoted value as a
// sequence of text and mustache parts.
func (p *parser) readAttributeValue() []Node {
	if p.eat("\"") {
		return p.readSequence("\"")
	}
	if p.eat("'") {
		return p.readSequence("'")
	}
	if p.match("{") {
		start := p.index
		p.index++
		p.allowWhitespace()
		expr := p.readExpression()
		p.allowWhitespace()
		p.require("}", "")
		return []Node{&Mustache{Base: Base{Start: start, End: p.index}, Expr: expr}}
	}

	// Unquoted value: a single run of text or one mustache.
	start := p.index
	for p.index < len(p.template) {
		c := p.template[p.index]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' {
			break
		}
		p.index++
	}
	if p.index == start {
		p.failHere("unexpected-token", "expected an attribute value")
	}
	return []Node{&Text{Base: Base{Start: start, End: p.index}, Data: p.template[start:p.index]}}
}

// readSequence reads text and mustache parts until the closing quote.
func (p *parser) readSequence(quote string) []Node {
	var parts []Node
	textStart := p.index

	flush := func(end int) {
		if end > textStart {
			parts = append(parts, &Text{
				Base: Base{Start: textStart, End: end},
				Data: p.template[textStart:end],
			})
		}
	}

	for p.index < len(p.template) {
		if p.match(quote) {
			flush(p.index)
			p.index++
			return parts
		}
		if p.match("{") {
			flush(p.index)
			start := p.index
			p.index++
			p.allowWhitespace()
			expr := p.readExpression()
			p.allowWhitespace()
			p.require("}", "")
			parts = append(parts, &Mustache{Base: Base{Start: start, End: p.index}, Expr: expr})
			textStart = p.index
			continue
		}
		p.index++
	}
	p.failHere("unexpected-eof", "unexpected end of input, attribute value was left open")
	return nil
}
