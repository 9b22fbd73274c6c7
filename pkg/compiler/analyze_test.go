package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/svelgo/svelgo/pkg/compiler/diag"
	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

func analyze(t *testing.T, source string, options Options) (*Component, error) {
	t.Helper()
	arena := js.NewArena()
	doc, err := template.Parse(source, arena, options.Filename)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return Analyze(source, doc, arena, options)
}

func mustAnalyze(t *testing.T, source string, options Options) *Component {
	t.Helper()
	c, err := analyze(t, source, options)
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	return c
}

func hasWarning(c *Component, code string) bool {
	for _, w := range c.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func fatalCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got none")
	}
	var diagErr *diag.Error
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected *diag.Error, got %T: %v", err, err)
	}
	return diagErr.Code
}

func TestAnalyzeProps(t *testing.T) {
	c := mustAnalyze(t, `<script>
	export let name = "world";
	let internal = 1;
</script>
<p>{name}{internal}</p>`, Options{})

	name := c.Vars.Get("name")
	if name == nil {
		t.Fatal("name not registered")
	}
	if !name.Prop() || name.ExportName != "name" {
		t.Errorf("name should be a prop: %+v", name)
	}
	if !name.Referenced {
		t.Error("name should be marked referenced from the template")
	}
	if !name.Initialised {
		t.Error("name has an initialiser")
	}
	internal := c.Vars.Get("internal")
	if internal.Prop() {
		t.Error("internal should not be a prop")
	}
}

func TestAnalyzeRenamedExport(t *testing.T) {
	c := mustAnalyze(t, `<script>
	let value = 0;
	export { value as count };
</script>
<p>{value}</p>`, Options{})

	v := c.Vars.Get("value")
	if v.ExportName != "count" {
		t.Errorf("export name = %q, want count", v.ExportName)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{
			"dollar declaration",
			`<script>let $x = 1;</script>`,
			"illegal-declaration",
		},
		{
			"dollar import",
			`<script>import $thing from "mod";</script>`,
			"illegal-declaration",
		},
		{
			"subscription in module script",
			`<script context="module">const x = $store;</script>`,
			"illegal-subscription",
		},
		{
			"default export",
			`<script>export default 1;</script>`,
			"default-export",
		},
		{
			"reexport",
			`<script>export { thing } from "mod";</script>`,
			"illegal-reexport",
		},
		{
			"export of undeclared name",
			`<script>export { ghost };</script>`,
			"missing-declaration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(t, tt.source, Options{})
			if code := fatalCode(t, err); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestAnalyzeStoreSubscription(t *testing.T) {
	c := mustAnalyze(t, `<script>
	import { writable } from "svelte/store";
	const count = writable(0);
</script>
<p>{$count}</p>`, Options{})

	count := c.Vars.Get("count")
	if count == nil || !count.Subscribable {
		t.Fatalf("count should be subscribable: %+v", count)
	}
	shadow := c.Vars.Get("$count")
	if shadow == nil {
		t.Fatal("$count shadow not injected")
	}
	if !shadow.Injected || !shadow.Writable {
		t.Errorf("shadow flags wrong: %+v", shadow)
	}
}

func TestAnalyzeMissingDeclaration(t *testing.T) {
	c := mustAnalyze(t, `<p>{mystery}</p>`, Options{})
	if !hasWarning(c, "missing-declaration") {
		t.Error("expected missing-declaration warning")
	}
	v := c.Vars.Get("mystery")
	if v == nil || !v.Global {
		t.Errorf("mystery should be a global: %+v", v)
	}
}

func TestIgnoreCommentSuppressesWarning(t *testing.T) {
	c := mustAnalyze(t, `<!-- svelte-ignore missing-declaration -->
<p>{mystery}</p>`, Options{})
	if hasWarning(c, "missing-declaration") {
		t.Error("warning should be suppressed by svelte-ignore")
	}
}

func TestUnusedExportWarning(t *testing.T) {
	c := mustAnalyze(t, `<script>export let unused;</script><p>static</p>`, Options{})
	if !hasWarning(c, "unused-export-let") {
		t.Error("expected unused-export-let warning")
	}

	c = mustAnalyze(t, `<script>export let used;</script><p>{used}</p>`, Options{})
	if hasWarning(c, "unused-export-let") {
		t.Error("referenced export should not warn")
	}
}

func TestNestedReactiveWarning(t *testing.T) {
	c := mustAnalyze(t, `<script>
	let x = 0;
	function setup() {
		$: x = 1;
	}
</script>
<p>{x}</p>`, Options{})
	if !hasWarning(c, "non-top-level-reactive-declaration") {
		t.Error("expected non-top-level-reactive-declaration warning")
	}
}

func TestReactiveOrdering(t *testing.T) {
	// b depends on c, so c's declaration must run first regardless of
	// source order.
	sources := []string{
		`<script>
	let a = 1;
	$: b = c + 1;
	$: c = a * 2;
</script>
<p>{b}</p>`,
		`<script>
	let a = 1;
	$: c = a * 2;
	$: b = c + 1;
</script>
<p>{b}</p>`,
	}

	for i, source := range sources {
		c := mustAnalyze(t, source, Options{})
		if len(c.Reactive) != 2 {
			t.Fatalf("source %d: %d reactive declarations, want 2", i, len(c.Reactive))
		}
		first := c.Reactive[0].Assignees
		second := c.Reactive[1].Assignees
		if len(first) != 1 || first[0] != "c" {
			t.Errorf("source %d: first assignees = %v, want [c]", i, first)
		}
		if len(second) != 1 || second[0] != "b" {
			t.Errorf("source %d: second assignees = %v, want [b]", i, second)
		}
	}
}

func TestReactiveDependencies(t *testing.T) {
	c := mustAnalyze(t, `<script>
	let count = 0;
	$: doubled = count * 2;
</script>
<p>{doubled}</p>`, Options{})

	if len(c.Reactive) != 1 {
		t.Fatalf("%d reactive declarations, want 1", len(c.Reactive))
	}
	d := c.Reactive[0]
	if len(d.Dependencies) != 1 || d.Dependencies[0] != "count" {
		t.Errorf("dependencies = %v, want [count]", d.Dependencies)
	}
	if v := c.Vars.Get("count"); !v.IsReactiveDependency {
		t.Error("count should be marked as a reactive dependency")
	}
	if v := c.Vars.Get("doubled"); v == nil || !v.Injected {
		t.Errorf("doubled should be an injected variable: %+v", v)
	}
}

func TestReactiveCycle(t *testing.T) {
	_, err := analyze(t, `<script>
	$: a = b + 1;
	$: b = a + 1;
</script>
<p>{a}</p>`, Options{})

	if code := fatalCode(t, err); code != "cyclical-reactive-declaration" {
		t.Fatalf("code = %q, want cyclical-reactive-declaration", code)
	}
	if !strings.Contains(err.Error(), "cyclical dependency detected") {
		t.Errorf("message should name the cycle: %v", err)
	}
}

func TestHoistLiteralConst(t *testing.T) {
	c := mustAnalyze(t, `<script>
	const answer = 42;
	let count = 0;
	function bump() {
		count += 1;
	}
</script>
<p>{answer}{count}</p>`, Options{})

	if v := c.Vars.Get("answer"); !v.Hoistable {
		t.Error("literal const should hoist")
	}
	if v := c.Vars.Get("count"); v.Hoistable {
		t.Error("reassigned let must not hoist")
	}
	if v := c.Vars.Get("bump"); v.Hoistable {
		t.Error("function touching instance state must not hoist")
	}
	if len(c.Hoisted) != 1 {
		t.Errorf("%d hoisted statements, want 1", len(c.Hoisted))
	}
}

func TestHoistPureFunction(t *testing.T) {
	c := mustAnalyze(t, `<script>
	const factor = 2;
	function scale(x) {
		return x * factor;
	}
	let value = scale(3);
</script>
<p>{value}</p>`, Options{})

	if v := c.Vars.Get("scale"); !v.Hoistable {
		t.Error("function over hoisted names should hoist")
	}
	if v := c.Vars.Get("factor"); !v.Hoistable {
		t.Error("literal const should hoist")
	}
}

func TestDevDisablesLetHoisting(t *testing.T) {
	source := `<script>
	let greeting = "hi";
</script>
<p>{greeting}</p>`

	c := mustAnalyze(t, source, Options{})
	if v := c.Vars.Get("greeting"); !v.Hoistable {
		t.Error("literal let should hoist in production builds")
	}

	c = mustAnalyze(t, source, Options{Dev: true})
	if v := c.Vars.Get("greeting"); v.Hoistable {
		t.Error("let must stay per-instance in dev builds")
	}
}

func TestMutationTracking(t *testing.T) {
	c := mustAnalyze(t, `<script>
	let obj = { n: 0 };
	let count = 0;
	function touch() {
		obj.n = 1;
		count = 2;
	}
</script>
<p>{obj}{count}</p>`, Options{})

	obj := c.Vars.Get("obj")
	if !obj.Mutated || obj.Reassigned {
		t.Errorf("member write should mutate, not reassign: %+v", obj)
	}
	count := c.Vars.Get("count")
	if !count.Reassigned || count.Mutated {
		t.Errorf("direct write should reassign, not mutate: %+v", count)
	}
}

func TestTemplateBindingMarksWrite(t *testing.T) {
	c := mustAnalyze(t, `<script>
	let value = "";
</script>
<input bind:value={value}>`, Options{})

	if v := c.Vars.Get("value"); !v.Reassigned {
		t.Errorf("bound variable should count as reassigned: %+v", v)
	}
}

func TestEachContextShadowing(t *testing.T) {
	c := mustAnalyze(t, `<script>
	let items = [1, 2];
	let item = "outer";
</script>
{#each items as item}<li>{item}</li>{/each}
<p>{item}</p>`, Options{})

	// The each context declares its own item; references inside the block
	// must not leak onto the script variable beyond the outer {item} read.
	found := false
	for _, name := range c.ContextualNames {
		if name == "item" {
			found = true
		}
	}
	if !found {
		t.Errorf("item should be a contextual name: %v", c.ContextualNames)
	}
}
