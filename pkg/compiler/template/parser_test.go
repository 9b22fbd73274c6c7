package template

import (
	"errors"
	"testing"

	"github.com/svelgo/svelgo/pkg/compiler/diag"
	"github.com/svelgo/svelgo/pkg/compiler/js"
)

func parse(t *testing.T, source string) *Document {
	t.Helper()
	doc, err := Parse(source, js.NewArena(), "Test.svelte")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return doc
}

func TestParseElements(t *testing.T) {
	doc := parse(t, `<div class="box"><span>hi</span><br/></div>`)

	if len(doc.HTML.Children) != 1 {
		t.Fatalf("expected 1 root child, got %d", len(doc.HTML.Children))
	}
	div, ok := doc.HTML.Children[0].(*Element)
	if !ok {
		t.Fatalf("expected *Element, got %T", doc.HTML.Children[0])
	}
	if div.Name != "div" || div.Kind != ElementRegular {
		t.Errorf("unexpected element: name=%q kind=%d", div.Name, div.Kind)
	}
	if len(div.Attributes) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(div.Attributes))
	}
	attr := div.Attributes[0].(*Attribute)
	if attr.Name != "class" {
		t.Errorf("attribute name = %q, want class", attr.Name)
	}
	if len(div.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(div.Children))
	}
	span := div.Children[0].(*Element)
	if len(span.Children) != 1 {
		t.Fatalf("expected text child in span, got %d children", len(span.Children))
	}
	if text := span.Children[0].(*Text); text.Data != "hi" {
		t.Errorf("text = %q, want hi", text.Data)
	}
}

func TestParseInlineComponent(t *testing.T) {
	doc := parse(t, `<Widget prop={value}/>`)
	el := doc.HTML.Children[0].(*Element)
	if el.Kind != ElementInlineComponent {
		t.Errorf("kind = %d, want inline component", el.Kind)
	}
	if el.Name != "Widget" {
		t.Errorf("name = %q, want Widget", el.Name)
	}
}

func TestParseVoidElement(t *testing.T) {
	doc := parse(t, `<input value="x"><p>after</p>`)
	if len(doc.HTML.Children) != 2 {
		t.Fatalf("expected 2 root children, got %d", len(doc.HTML.Children))
	}
	if el := doc.HTML.Children[0].(*Element); el.Name != "input" {
		t.Errorf("first child = %q, want input", el.Name)
	}
}

func TestParseMustache(t *testing.T) {
	doc := parse(t, `<p>{count} and {@html raw}</p>`)
	p := doc.HTML.Children[0].(*Element)

	var sawMustache, sawRaw bool
	for _, child := range p.Children {
		switch n := child.(type) {
		case *Mustache:
			sawMustache = true
			if _, ok := n.Expr.(*js.Identifier); !ok {
				t.Errorf("mustache expr is %T, want identifier", n.Expr)
			}
		case *RawMustache:
			sawRaw = true
		}
	}
	if !sawMustache || !sawRaw {
		t.Errorf("sawMustache=%v sawRaw=%v, want both", sawMustache, sawRaw)
	}
}

func TestParseIfElseChain(t *testing.T) {
	doc := parse(t, `{#if a}one{:else if b}two{:else}three{/if}`)

	ifBlock, ok := doc.HTML.Children[0].(*IfBlock)
	if !ok {
		t.Fatalf("expected *IfBlock, got %T", doc.HTML.Children[0])
	}
	if ifBlock.Else == nil {
		t.Fatal("missing else block")
	}
	if len(ifBlock.Else.Children) != 1 {
		t.Fatalf("else has %d children, want 1", len(ifBlock.Else.Children))
	}
	nested, ok := ifBlock.Else.Children[0].(*IfBlock)
	if !ok {
		t.Fatalf("else-if did not nest: got %T", ifBlock.Else.Children[0])
	}
	if nested.Else == nil {
		t.Error("nested if lost its else arm")
	}
	if ifBlock.ElseIf {
		t.Error("chain head must not be marked as else-if")
	}
	if !nested.ElseIf {
		t.Error("nested block should be marked as else-if")
	}
}

func TestParseEachBlockSimple(t *testing.T) {
	doc := parse(t, `{#each items as item}<li>{item}</li>{/each}`)

	each, ok := doc.HTML.Children[0].(*EachBlock)
	if !ok {
		t.Fatalf("expected *EachBlock, got %T", doc.HTML.Children[0])
	}
	if each.Index != "" {
		t.Errorf("index = %q, want none", each.Index)
	}
	if each.Key != nil {
		t.Error("unexpected key expression")
	}
	ctx, ok := each.Context.(*js.Identifier)
	if !ok {
		t.Fatalf("context is %T, want identifier", each.Context)
	}
	if ctx.Name != "item" {
		t.Errorf("context = %q, want item", ctx.Name)
	}
}

func TestParseEachBlock(t *testing.T) {
	doc := parse(t, `{#each items as item, i (item.id)}<li>{item}</li>{:else}empty{/each}`)

	each, ok := doc.HTML.Children[0].(*EachBlock)
	if !ok {
		t.Fatalf("expected *EachBlock, got %T", doc.HTML.Children[0])
	}
	if each.Index != "i" {
		t.Errorf("index = %q, want i", each.Index)
	}
	if each.Key == nil {
		t.Error("missing key expression")
	}
	if each.Else == nil {
		t.Error("missing else arm")
	}
	ctx, ok := each.Context.(*js.Identifier)
	if !ok {
		t.Fatalf("context is %T, want identifier", each.Context)
	}
	if ctx.Name != "item" {
		t.Errorf("context = %q, want item", ctx.Name)
	}
}

func TestParseAwaitBlock(t *testing.T) {
	doc := parse(t, `{#await promise}waiting{:then value}{value}{:catch err}{err}{/await}`)

	await, ok := doc.HTML.Children[0].(*AwaitBlock)
	if !ok {
		t.Fatalf("expected *AwaitBlock, got %T", doc.HTML.Children[0])
	}
	if await.Pending == nil || await.Pending.Skip {
		t.Error("pending section missing or skipped")
	}
	if await.Then == nil || await.Then.Skip {
		t.Error("then section missing or skipped")
	}
	if await.Catch == nil || await.Catch.Skip {
		t.Error("catch section missing or skipped")
	}
	if await.Value == nil || await.Error == nil {
		t.Error("missing value or error pattern")
	}
}

func TestParseScripts(t *testing.T) {
	doc := parse(t, `<script context="module">const shared = 1;</script>
<script>let local = 2;</script>
<p>{local}</p>`)

	if doc.Module == nil {
		t.Fatal("module script not extracted")
	}
	if doc.Module.Context != "module" {
		t.Errorf("module context = %q", doc.Module.Context)
	}
	if doc.Instance == nil {
		t.Fatal("instance script not extracted")
	}
	if len(doc.Instance.Program.Body) != 1 {
		t.Errorf("instance body has %d statements, want 1", len(doc.Instance.Program.Body))
	}
}

func TestParseDirectives(t *testing.T) {
	doc := parse(t, `<input on:input|preventDefault={handle} bind:value use:action class:big={large}>`)
	el := doc.HTML.Children[0].(*Element)

	kinds := map[DirectiveKind]*Directive{}
	for _, attr := range el.Attributes {
		d, ok := attr.(*Directive)
		if !ok {
			t.Fatalf("expected directives only, got %T", attr)
		}
		kinds[d.Kind] = d
	}

	on := kinds[DirectiveEventHandler]
	if on == nil || on.Name != "input" {
		t.Fatalf("missing on:input directive: %+v", on)
	}
	if len(on.Modifiers) != 1 || on.Modifiers[0] != "preventDefault" {
		t.Errorf("modifiers = %v", on.Modifiers)
	}
	bind := kinds[DirectiveBinding]
	if bind == nil || bind.Name != "value" {
		t.Errorf("missing bind:value directive")
	}
	if kinds[DirectiveAction] == nil {
		t.Errorf("missing use:action directive")
	}
	if cls := kinds[DirectiveClass]; cls == nil || cls.Expr == nil {
		t.Errorf("missing class:big directive with expression")
	}
}

func TestParseRepeatedEventHandlers(t *testing.T) {
	doc := parse(t, `<button on:click={first} on:click={second}>go</button>`)
	el := doc.HTML.Children[0].(*Element)

	handlers := 0
	for _, attr := range el.Attributes {
		if d, ok := attr.(*Directive); ok && d.Kind == DirectiveEventHandler {
			handlers++
		}
	}
	if handlers != 2 {
		t.Errorf("got %d on:click handlers, want 2", handlers)
	}
}

func TestParseSpread(t *testing.T) {
	doc := parse(t, `<Widget {...props}/>`)
	el := doc.HTML.Children[0].(*Element)
	if len(el.Attributes) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(el.Attributes))
	}
	if _, ok := el.Attributes[0].(*Spread); !ok {
		t.Errorf("expected *Spread, got %T", el.Attributes[0])
	}
}

func TestParseIgnoreComment(t *testing.T) {
	doc := parse(t, `<!-- svelte-ignore missing-declaration a11y-missing-attribute --><p>{x}</p>`)
	comment, ok := doc.HTML.Children[0].(*Comment)
	if !ok {
		t.Fatalf("expected *Comment, got %T", doc.HTML.Children[0])
	}
	if len(comment.Ignores) != 2 || comment.Ignores[0] != "missing-declaration" {
		t.Errorf("ignores = %v", comment.Ignores)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"closing unopened element", `</p>`, "invalid-closing-tag"},
		{"element left open", `<div>`, "unclosed-element"},
		{"block left open", `{#if x}hello`, "unclosed-block"},
		{"stray block close", `{/if}`, "unexpected-block-close"},
		{"else outside block", `{:else}`, "invalid-else-placement"},
		{"duplicate attribute", `<div class="a" class="b"></div>`, "duplicate-attribute"},
		{"duplicate script", `<script>let a;</script><script>let b;</script>`, "duplicate-script"},
		{"content in void element", `<input>text</input>`, "invalid-void-content"},
		{"duplicate directive", `<input bind:value={v} bind:value={v}>`, "duplicate-attribute"},
		{"eof inside open tag", `<div `, "unexpected-eof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source, js.NewArena(), "Test.svelte")
			if err == nil {
				t.Fatal("expected error, got none")
			}
			var diagErr *diag.Error
			if !errors.As(err, &diagErr) {
				t.Fatalf("expected *diag.Error, got %T", err)
			}
			if diagErr.Code != tt.code {
				t.Errorf("code = %q, want %q", diagErr.Code, tt.code)
			}
		})
	}
}

func TestSpansNested(t *testing.T) {
	source := `<div><p>{name}</p></div>`
	doc := parse(t, source)

	div := doc.HTML.Children[0].(*Element)
	p := div.Children[0].(*Element)
	if !(div.Span().Start <= p.Span().Start && p.Span().End <= div.Span().End) {
		t.Errorf("child span %v escapes parent span %v", p.Span(), div.Span())
	}
	if div.Span().Start != 0 || div.Span().End != len(source) {
		t.Errorf("div span = %v, want whole source", div.Span())
	}
}
