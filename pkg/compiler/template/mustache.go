package template

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

func mustache(p *parser) state {
	start := p.index
	p.index++ // {
	p.allowWhitespace()

	switch {
	case p.eat("/"):
		p.closeBlock(start)
	case p.eat(":else"):
		p.elseContinuation(start)
	case p.eat(":then"):
		p.awaitContinuation(start, "then")
	case p.eat(":catch"):
		p.awaitContinuation(start, "catch")
	case p.eat("#if"):
		p.requireWhitespace()
		expr := p.readExpression()
		p.allowWhitespace()
		p.require("}", "")
		block := &IfBlock{Base: Base{Start: start}, Test: expr}
		p.addChild(block)
		p.push(block)
	case p.eat("#each"):
		p.openEach(start)
	case p.eat("#await"):
		p.openAwait(start)
	case p.eat("@html"):
		p.requireWhitespace()
		expr := p.readExpression()
		p.allowWhitespace()
		p.require("}", "")
		p.addChild(&RawMustache{Base: Base{Start: start, End: p.index}, Expr: expr})
	case p.eat("@debug"):
		p.debugTag(start)
	default:
		expr := p.readExpression()
		p.allowWhitespace()
		p.require("}", "")
		p.addChild(&Mustache{Base: Base{Start: start, End: p.index}, Expr: expr})
	}
	return nil
}

func (p *parser) openEach(start int) {
	p.requireWhitespace()
	expr := p.readExpression()
	// The expression reader has already skipped trailing whitespace.
	p.allowWhitespace()
	if !p.eat("as") {
		p.failHere("unexpected-token", "expected \"as\"")
	}
	p.requireWhitespace()
	context := p.readPattern()
	p.allowWhitespace()

	block := &EachBlock{Base: Base{Start: start}, Expr: expr, Context: context}
	if p.eat(",") {
		p.allowWhitespace()
		block.Index = p.readIdentifier()
		if block.Index == "" {
			p.failHere("unexpected-token", "expected index name")
		}
		p.allowWhitespace()
	}
	if p.eat("(") {
		p.allowWhitespace()
		block.Key = p.readExpression()
		p.allowWhitespace()
		p.require(")", "")
		p.allowWhitespace()
	}
	p.require("}", "")
	p.addChild(block)
	p.push(block)
}

func (p *parser) openAwait(start int) {
	p.requireWhitespace()
	expr := p.readExpression()

	block := &AwaitBlock{
		Base:    Base{Start: start},
		Expr:    expr,
		Pending: &PendingBlock{Base: Base{Start: start, End: start}, Skip: true},
		Then:    &ThenBlock{Base: Base{Start: start, End: start}, Skip: true},
		Catch:   &CatchBlock{Base: Base{Start: start, End: start}, Skip: true},
	}

	p.allowWhitespace()
	if p.eat("then") {
		// {#await expr then value} shorthand skips the pending section.
		if !p.eat("}") {
			p.requireWhitespace()
			block.Value = p.readPattern()
			p.allowWhitespace()
			p.require("}", "")
		}
		block.Then.Skip = false
		block.Then.Start = p.index
		p.addChild(block)
		p.push(block)
		p.push(block.Then)
		return
	}
	if p.eat("catch") {
		if !p.eat("}") {
			p.requireWhitespace()
			block.Error = p.readPattern()
			p.allowWhitespace()
			p.require("}", "")
		}
		block.Catch.Skip = false
		block.Catch.Start = p.index
		p.addChild(block)
		p.push(block)
		p.push(block.Catch)
		return
	}
	p.require("}", "")
	block.Pending.Skip = false
	block.Pending.Start = p.index
	p.addChild(block)
	p.push(block)
	p.push(block.Pending)
}

// elseContinuation handles {:else} and {:else if expr}.
func (p *parser) elseContinuation(start int) {
	p.allowWhitespace()
	if p.eat("if") {
		block, ok := p.current().(*IfBlock)
		if !ok {
			p.fail("invalid-elseif-placement", pos.NewSpan(start, p.index),
				"{:else if} must follow an {#if} block")
		}
		p.requireWhitespace()
		expr := p.readExpression()
		p.allowWhitespace()
		p.require("}", "")

		inner := &IfBlock{Base: Base{Start: start}, Test: expr, ElseIf: true}
		block.Else = &ElseBlock{Base: Base{Start: start}, Children: []Node{inner}}
		p.push(inner)
		return
	}
	p.require("}", "")

	switch block := p.current().(type) {
	case *IfBlock:
		block.Else = &ElseBlock{Base: Base{Start: start}}
		p.push(block.Else)
	case *EachBlock:
		block.Else = &ElseBlock{Base: Base{Start: start}}
		p.push(block.Else)
	default:
		p.fail("invalid-else-placement", pos.NewSpan(start, p.index),
			"{:else} must follow an {#if} or {#each} block")
	}
}

// awaitContinuation handles {:then value} and {:catch error}.
func (p *parser) awaitContinuation(start int, kind string) {
	switch section := p.current().(type) {
	case *PendingBlock:
		section.End = start
		p.pop()
	case *ThenBlock:
		if kind != "catch" {
			p.fail("invalid-then-placement", pos.NewSpan(start, p.index),
				"{:then} cannot appear more than once within a block")
		}
		section.End = start
		p.pop()
	default:
		code := "invalid-then-placement"
		if kind == "catch" {
			code = "invalid-catch-placement"
		}
		p.fail(code, pos.NewSpan(start, p.index),
			"{:%s} must be inside an {#await} block", kind)
	}

	block, ok := p.current().(*AwaitBlock)
	if !ok {
		p.fail("invalid-"+kind+"-placement", pos.NewSpan(start, p.index),
			"{:%s} must be inside an {#await} block", kind)
		return
	}

	if !p.eat("}") {
		p.requireWhitespace()
		pattern := p.readPattern()
		if kind == "then" {
			block.Value = pattern
		} else {
			block.Error = pattern
		}
		p.allowWhitespace()
		p.require("}", "")
	}

	if kind == "then" {
		block.Then.Skip = false
		block.Then.Start = p.index
		p.push(block.Then)
	} else {
		block.Catch.Skip = false
		block.Catch.Start = p.index
		p.push(block.Catch)
	}
}

// closeBlock handles {/if}, {/each} and {/await}: pop any continuation
// frames, verify the innermost open block matches, then trim surrounding
// whitespace.
func (p *parser) closeBlock(start int) {
	// Pop else/then/catch chain frames first.
	for {
		switch section := p.current().(type) {
		case *ElseBlock:
			section.End = start
			p.pop()
			continue
		case *PendingBlock:
			section.End = start
			p.pop()
			continue
		case *ThenBlock:
			section.End = start
			p.pop()
			continue
		case *CatchBlock:
			section.End = start
			p.pop()
			continue
		}
		break
	}

	var expected string
	switch p.current().(type) {
	case *IfBlock:
		expected = "if"
	case *EachBlock:
		expected = "each"
	case *AwaitBlock:
		expected = "await"
	default:
		p.fail("unexpected-block-close", pos.NewSpan(start, p.index),
			"unexpected block closing tag")
	}
	p.require(expected, "unexpected-block-close")
	p.allowWhitespace()
	p.require("}", "")

	// Unwind else-if chains: each inner elseif block closes here.
	block := p.current()
	for {
		ifb, ok := block.(*IfBlock)
		if !ok || !ifb.ElseIf {
			break
		}
		ifb.End = p.index
		p.pop()
		block = p.current()
		if outer, isIf := block.(*IfBlock); isIf && outer.Else != nil {
			outer.Else.End = p.index
		}
	}

	span := blockSpan(block)
	trimBefore := span.Start == 0 || isWhitespaceByte(p.template[span.Start-1])
	trimAfter := p.index >= len(p.template) || isWhitespaceByte(p.template[p.index])
	trimBlock(block, trimBefore, trimAfter)

	setEnd(block, p.index)
	p.pop()
}

func blockSpan(n Node) pos.Span {
	return n.Span()
}

func isWhitespaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// trimBlock strips leading/trailing whitespace inside a just-closed block,
// recursing through else chains and await sections.
func trimBlock(n Node, before, after bool) {
	if n == nil {
		return
	}
	if await, ok := n.(*AwaitBlock); ok {
		trimBlock(await.Pending, before, after)
		trimBlock(await.Then, before, after)
		trimBlock(await.Catch, before, after)
		return
	}

	children := ChildrenOf(n)
	if len(children) == 0 {
		return
	}

	if before {
		if first, ok := children[0].(*Text); ok {
			trimmed := strings.TrimLeft(first.Data, " \t\r\n")
			first.Start += len(first.Data) - len(trimmed)
			first.Data = trimmed
			if trimmed == "" {
				children = children[1:]
				setChildren(n, children)
			}
		}
	}
	if after && len(children) > 0 {
		if last, ok := children[len(children)-1].(*Text); ok {
			trimmed := strings.TrimRight(last.Data, " \t\r\n")
			last.End -= len(last.Data) - len(trimmed)
			last.Data = trimmed
			if trimmed == "" {
				children = children[:len(children)-1]
				setChildren(n, children)
			}
		}
	}

	switch v := n.(type) {
	case *IfBlock:
		if v.Else != nil {
			trimBlock(v.Else, before, after)
		}
	case *EachBlock:
		if v.Else != nil {
			trimBlock(v.Else, before, after)
		}
	case *ElseBlock:
		if len(v.Children) == 1 {
			if inner, ok := v.Children[0].(*IfBlock); ok && inner.ElseIf {
				trimBlock(inner, before, after)
			}
		}
	}
}

func setChildren(n Node, children []Node) {
	switch v := n.(type) {
	case *Fragment:
		v.Children = children
	case *Element:
		v.Children = children
	case *IfBlock:
		v.Children = children
	case *ElseBlock:
		v.Children = children
	case *EachBlock:
		v.Children = children
	case *PendingBlock:
		v.Children = children
	case *ThenBlock:
		v.Children = children
	case *CatchBlock:
		v.Children = children
	}
}

// debugTag parses {@debug a, b} or the bare {@debug}.
func (p *parser) debugTag(start int) {
	var idents []*js.Identifier
	p.allowWhitespace()
	if !p.eat("}") {
		for {
			istart := p.index
			name := p.readIdentifier()
			if name == "" {
				p.fail("invalid-debug-args", pos.NewSpan(start, p.index),
					"{@debug ...} arguments must be identifiers, not arbitrary expressions")
			}
			idents = append(idents, p.arena.Ident(name, pos.NewSpan(istart, p.index)))
			p.allowWhitespace()
			if !p.eat(",") {
				break
			}
			p.allowWhitespace()
		}
		p.require("}", "")
	}
	p.addChild(&DebugTag{Base: Base{Start: start, End: p.index}, Identifiers: idents})
}
