package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

func render(t *testing.T, source string) *Renderer {
	t.Helper()
	return NewRenderer(mustAnalyze(t, source, Options{}))
}

func TestRendererSlotAllocation(t *testing.T) {
	r := render(t, `<script>
	export let title;
	let count = 0;
	function bump() {
		count += 1;
	}
</script>
<button on:click={bump}>{title}{count}</button>`)

	title := r.Member("title")
	count := r.Member("count")
	bump := r.Member("bump")
	if title == nil || count == nil || bump == nil {
		t.Fatalf("missing members: title=%v count=%v bump=%v", title, count, bump)
	}

	// Exported wins over reassigned, which wins over a plain function.
	if !(title.Index < count.Index && count.Index < bump.Index) {
		t.Errorf("slot order title=%d count=%d bump=%d", title.Index, count.Index, bump.Index)
	}
}

func TestRendererSlotsAreDense(t *testing.T) {
	r := render(t, `<script>
	export let a;
	let b = 0;
	let c = "";
	function f() {
		b += 1;
		c = "x";
	}
</script>
<p on:click={f}>{a}{b}{c}</p>`)

	seen := make(map[int]bool)
	for _, m := range r.Context {
		if seen[m.Index] {
			t.Errorf("duplicate slot index %d", m.Index)
		}
		seen[m.Index] = true
		if m.Index < 0 || m.Index >= len(r.Context) {
			t.Errorf("slot index %d outside [0, %d)", m.Index, len(r.Context))
		}
	}
}

func TestRendererHoistedStayOut(t *testing.T) {
	r := render(t, `<script>
	const answer = 42;
	let count = 0;
	function bump() {
		count += 1;
	}
</script>
<p on:click={bump}>{answer}{count}</p>`)

	if r.Member("answer") != nil {
		t.Error("hoisted const must not take a context slot")
	}
	if r.Member("count") == nil {
		t.Error("instance state needs a context slot")
	}
}

func TestRendererStoreShadowSlot(t *testing.T) {
	r := render(t, `<script>
	import { writable } from "svelte/store";
	const count = writable(0);
</script>
<p>{$count}</p>`)

	if r.Member("count") == nil {
		t.Error("store variable needs a slot")
	}
	if r.Member("$count") == nil {
		t.Error("store shadow needs a slot")
	}
}

func TestRendererNamedSlots(t *testing.T) {
	r := render(t, `<slot name="header"></slot>`)
	if r.Member("$$scope") == nil || r.Member("$$slots") == nil {
		t.Error("named slots should register $$scope and $$slots")
	}

	r = render(t, `<slot></slot>`)
	if r.Member("$$scope") != nil {
		t.Error("default slot alone should not register $$scope")
	}
}

func TestDirtyMaskSingleWord(t *testing.T) {
	r := render(t, `<script>
	let a = 0;
	let b = 0;
	function f() {
		a = 1;
		b = 2;
	}
</script>
<p on:click={f}>{a}{b}</p>`)

	masks := r.DirtyMask([]string{"a"})
	if len(masks) != 1 {
		t.Fatalf("%d mask words, want 1", len(masks))
	}
	a := r.Member("a")
	if masks[0] != 1<<uint(a.Index) {
		t.Errorf("mask = %b, want bit %d", masks[0], a.Index)
	}

	both := r.DirtyMask([]string{"a", "b"})
	want := uint32(1<<uint(a.Index) | 1<<uint(r.Member("b").Index))
	if both[0] != want {
		t.Errorf("mask = %b, want %b", both[0], want)
	}

	if r.DirtyMask([]string{"nosuch"})[0] != 0 {
		t.Error("unknown names contribute no bits")
	}
}

func TestDirtyMaskOverflow(t *testing.T) {
	// 35 mutated, referenced variables force the context past 31 slots.
	var script, body strings.Builder
	script.WriteString("<script>\n")
	for i := 0; i < 35; i++ {
		fmt.Fprintf(&script, "let v%d = %d;\n", i, i)
	}
	script.WriteString("function touch() {\n")
	for i := 0; i < 35; i++ {
		fmt.Fprintf(&script, "v%d += 1;\n", i)
	}
	script.WriteString("}\n</script>\n<p on:click={touch}>")
	for i := 0; i < 35; i++ {
		fmt.Fprintf(&body, "{v%d}", i)
	}
	source := script.String() + body.String() + "</p>"

	r := render(t, source)
	if !r.ContextOverflow {
		t.Fatalf("expected overflow with %d slots", len(r.Context))
	}

	var high *ContextMember
	for _, m := range r.Context {
		if m.Index >= 31 {
			high = m
			break
		}
	}
	if high == nil {
		t.Fatal("no member past slot 31")
	}
	masks := r.DirtyMask([]string{high.Name})
	if len(masks) < 2 {
		t.Fatalf("%d mask words, want at least 2", len(masks))
	}
	word, bit := high.Index/31, uint(high.Index%31)
	if masks[word] != 1<<bit {
		t.Errorf("mask[%d] = %b, want bit %d", word, masks[word], bit)
	}
	for i, mask := range masks {
		if i != word && mask != 0 {
			t.Errorf("mask[%d] = %b, want 0", i, mask)
		}
	}
}

func TestInvalidateSlottedWrite(t *testing.T) {
	r := render(t, `<script>
	let count = 0;
	function bump() {
		count += 1;
	}
</script>
<button on:click={bump}>{count}</button>`)

	a := r.Component.Arena
	span := pos.NewSpan(0, 0)
	write := a.Assign("+=", a.Ident("count", span), a.Number("1", span), span)
	got := js.Print(r.Invalidate("count", write, span))
	want := fmt.Sprintf("$$invalidate(%d, count += 1)", r.Member("count").Index)
	if got != want {
		t.Errorf("Invalidate = %q, want %q", got, want)
	}
}

func TestInvalidateStoreWrite(t *testing.T) {
	r := render(t, `<script>
	import { writable } from "svelte/store";
	const count = writable(0);
</script>
<p>{$count}</p>`)

	a := r.Component.Arena
	span := pos.NewSpan(0, 0)
	got := js.Print(r.Invalidate("$count", a.Number("5", span), span))
	if got != "count.set(5)" {
		t.Errorf("Invalidate = %q, want %q", got, "count.set(5)")
	}
}

func TestInvalidateReassignedStore(t *testing.T) {
	r := render(t, `<script>
	import { writable } from "svelte/store";
	let count = writable(0);
	function swap() {
		count = writable(1);
	}
</script>
<p on:click={swap}>{$count}</p>`)

	a := r.Component.Arena
	span := pos.NewSpan(0, 0)
	write := a.Assign("=", a.Ident("count", span), a.Ident("next", span), span)
	got := js.Print(r.Invalidate("count", write, span))
	if !strings.HasPrefix(got, "$$subscribe_count($$invalidate(") {
		t.Errorf("Invalidate = %q, want a $$subscribe_count wrapper", got)
	}
}

func TestInvalidateUntrackedPassThrough(t *testing.T) {
	r := render(t, `<script>
	const answer = 42;
	let count = 0;
	function bump() {
		count += 1;
	}
</script>
<p on:click={bump}>{answer}{count}</p>`)

	a := r.Component.Arena
	span := pos.NewSpan(0, 0)
	write := a.Assign("=", a.Ident("answer", span), a.Number("7", span), span)
	if got := r.Invalidate("answer", write, span); got != js.Expr(write) {
		t.Errorf("Invalidate returned %v, want the write untouched", got)
	}
}

func TestInvalidateBareRetrigger(t *testing.T) {
	r := render(t, `<script>
	let count = 0;
	$: doubled = count * 2;
	function bump() {
		count += 1;
	}
</script>
<p on:click={bump}>{count}{doubled}</p>`)

	span := pos.NewSpan(0, 0)
	got := js.Print(r.Invalidate("count", nil, span))
	countCall := fmt.Sprintf("$$invalidate(%d, count)", r.Member("count").Index)
	doubledCall := fmt.Sprintf("$$invalidate(%d, doubled)", r.Member("doubled").Index)
	if !strings.Contains(got, countCall) || !strings.Contains(got, doubledCall) {
		t.Errorf("Invalidate = %q, want both %q and %q", got, countCall, doubledCall)
	}
}
