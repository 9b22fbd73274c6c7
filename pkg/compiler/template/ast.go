// Package template implements the component template parser: a state-machine
// parser that turns component source text into a tree of markup nodes,
// control-flow blocks and mustache expressions, delegating embedded
// expressions to the js package.
package template

import (
	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

// Node is implemented by every template node. Spans are half-open byte
// ranges into the component source; a parent's span contains its children
// and sibling spans never overlap.
type Node interface {
	Span() pos.Span
}

// Base carries the span common to all template nodes. Start and End are
// mutated during parsing (block-boundary whitespace trimming) and fixed
// afterwards.
type Base struct {
	Start int
	End   int
}

// Span returns the node's byte span.
func (b *Base) Span() pos.Span {
	return pos.NewSpan(b.Start, b.End)
}

// Fragment is a sequence of sibling nodes; the markup root is a Fragment.
type Fragment struct {
	Base
	Children []Node
}

// Text is a run of literal text.
type Text struct {
	Base
	Data string
}

// Comment is an HTML comment. Ignores lists warning codes named by a
// svelte-ignore comment, suppressing them for the following subtree.
type Comment struct {
	Base
	Data    string
	Ignores []string
}

// Mustache is a plain {expression} tag.
type Mustache struct {
	Base
	Expr js.Expr
}

// RawMustache is an {@html expression} tag.
type RawMustache struct {
	Base
	Expr js.Expr
}

// DebugTag is an {@debug a, b} tag; empty Identifiers means debug-all.
type DebugTag struct {
	Base
	Identifiers []*js.Identifier
}

// IfBlock is an {#if} block. Else covers both {:else} and {:else if}
// chains; an else-if is an ElseBlock whose single child is another IfBlock.
type IfBlock struct {
	Base
	Test     js.Expr
	Children []Node
	Else     *ElseBlock

	// ElseIf marks a block spawned by {:else if}, which shares its
	// closing {/if} with the chain head.
	ElseIf bool
}

// ElseBlock is the {:else} arm of an if or each block.
type ElseBlock struct {
	Base
	Children []Node
}

// EachBlock is an {#each list as item, i (key)} block.
type EachBlock struct {
	Base
	Expr     js.Expr
	Context  js.Pattern
	Index    string
	Key      js.Expr
	Children []Node
	Else     *ElseBlock
}

// PendingBlock is the section of an await block before resolution.
type PendingBlock struct {
	Base
	Children []Node
	Skip     bool
}

// ThenBlock is the {:then} section of an await block.
type ThenBlock struct {
	Base
	Children []Node
	Skip     bool
}

// CatchBlock is the {:catch} section of an await block.
type CatchBlock struct {
	Base
	Children []Node
	Skip     bool
}

// AwaitBlock is an {#await} block with its three sections.
type AwaitBlock struct {
	Base
	Expr    js.Expr
	Value   js.Pattern
	Error   js.Pattern
	Pending *PendingBlock
	Then    *ThenBlock
	Catch   *CatchBlock
}

// ElementKind discriminates element-like nodes.
type ElementKind int

const (
	// ElementRegular is an ordinary HTML element.
	ElementRegular ElementKind = iota
	// ElementInlineComponent is a capitalized component reference.
	ElementInlineComponent
	// ElementSlot is <slot>.
	ElementSlot
	// ElementTitle is <title> inside <svelte:head>.
	ElementTitle
	// ElementWindow is <svelte:window>.
	ElementWindow
	// ElementHead is <svelte:head>.
	ElementHead
	// ElementBody is <svelte:body>.
	ElementBody
	// ElementOptions is <svelte:options>.
	ElementOptions
	// ElementComponent is <svelte:component this={...}>.
	ElementComponent
	// ElementSelf is <svelte:self>.
	ElementSelf
)

// Element is a markup element: a plain tag, inline component, slot or
// svelte:* meta element. Expr holds the governing expression of
// <svelte:component this={...}>.
type Element struct {
	Base
	Kind       ElementKind
	Name       string
	Attributes []Node
	Children   []Node
	Expr       js.Expr
}

// Attribute is a plain attribute. True marks boolean shorthand; otherwise
// Value is a sequence of Text and Mustache parts.
type Attribute struct {
	Base
	Name  string
	Value []Node
	True  bool
}

// Spread is a {...expr} attribute.
type Spread struct {
	Base
	Expr js.Expr
}

// DirectiveKind discriminates directive attributes.
type DirectiveKind int

const (
	// DirectiveBinding is bind:name.
	DirectiveBinding DirectiveKind = iota
	// DirectiveEventHandler is on:event.
	DirectiveEventHandler
	// DirectiveClass is class:name.
	DirectiveClass
	// DirectiveTransition is transition:fn.
	DirectiveTransition
	// DirectiveIn is in:fn.
	DirectiveIn
	// DirectiveOut is out:fn.
	DirectiveOut
	// DirectiveAction is use:fn.
	DirectiveAction
	// DirectiveAnimation is animate:fn.
	DirectiveAnimation
	// DirectiveLet is let:name.
	DirectiveLet
)

// String returns the directive prefix as written in source.
func (k DirectiveKind) String() string {
	switch k {
	case DirectiveBinding:
		return "bind"
	case DirectiveEventHandler:
		return "on"
	case DirectiveClass:
		return "class"
	case DirectiveTransition:
		return "transition"
	case DirectiveIn:
		return "in"
	case DirectiveOut:
		return "out"
	case DirectiveAction:
		return "use"
	case DirectiveAnimation:
		return "animate"
	case DirectiveLet:
		return "let"
	}
	return "unknown"
}

// Directive is a prefixed attribute such as on:click or bind:value. Expr is
// the directive expression when one was supplied.
type Directive struct {
	Base
	Kind      DirectiveKind
	Name      string
	Modifiers []string
	Expr      js.Expr
}

// Script is a top-level <script> block. Context is "default" or "module".
type Script struct {
	Base
	Context string
	Program *js.Program
}

// Style is a top-level <style> block; its content is left to the CSS
// collaborator uninterpreted.
type Style struct {
	Base
	Content     string
	ContentSpan pos.Span
}

// Document is the parser's output: the markup tree plus the extracted
// top-level blocks.
type Document struct {
	HTML     *Fragment
	Instance *Script
	Module   *Script
	Style    *Style
}

// ChildrenOf returns a node's direct template children, or nil.
func ChildrenOf(n Node) []Node {
	switch v := n.(type) {
	case *Fragment:
		return v.Children
	case *Element:
		return v.Children
	case *IfBlock:
		return v.Children
	case *ElseBlock:
		return v.Children
	case *EachBlock:
		return v.Children
	case *PendingBlock:
		return v.Children
	case *ThenBlock:
		return v.Children
	case *CatchBlock:
		return v.Children
	}
	return nil
}

// Walk traverses the template tree in source order. visit runs before a
// node's children; returning false skips them. leave, when non-nil, runs
// after the subtree.
func Walk(n Node, visit func(Node) bool, leave func(Node)) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	switch v := n.(type) {
	case *Element:
		for _, attr := range v.Attributes {
			Walk(attr, visit, leave)
		}
		for _, child := range v.Children {
			Walk(child, visit, leave)
		}
	case *Attribute:
		for _, part := range v.Value {
			Walk(part, visit, leave)
		}
	case *IfBlock:
		for _, child := range v.Children {
			Walk(child, visit, leave)
		}
		if v.Else != nil {
			Walk(v.Else, visit, leave)
		}
	case *EachBlock:
		for _, child := range v.Children {
			Walk(child, visit, leave)
		}
		if v.Else != nil {
			Walk(v.Else, visit, leave)
		}
	case *AwaitBlock:
		if v.Pending != nil {
			Walk(v.Pending, visit, leave)
		}
		if v.Then != nil {
			Walk(v.Then, visit, leave)
		}
		if v.Catch != nil {
			Walk(v.Catch, visit, leave)
		}
	default:
		for _, child := range ChildrenOf(n) {
			Walk(child, visit, leave)
		}
	}
	if leave != nil {
		leave(n)
	}
}
