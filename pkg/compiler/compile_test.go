package compiler

import (
	"strings"
	"testing"
)

func TestCompileBasic(t *testing.T) {
	result, err := Compile(`<script>
	export let name = "world";
</script>
<h1>Hello {name}!</h1>`, Options{Filename: "Greeting.svelte"})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	for _, want := range []string{
		"/* Greeting.svelte generated by svelgo",
		"function instance($$self, $$props, $$invalidate)",
		"function render($$ctx, $$slots = {})",
		`const Greeting = { name: "Greeting", instance, render };`,
		"export default Greeting;",
	} {
		if !strings.Contains(result.JS, want) {
			t.Errorf("output missing %q\n%s", want, result.JS)
		}
	}
}

func TestCompileCommonJS(t *testing.T) {
	result, err := Compile(`<script>
	import helper from "./helper.js";
	export let x = helper();
</script>
<p>{x}</p>`, Options{Filename: "Thing.svelte", Format: "cjs"})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	if !strings.Contains(result.JS, `const helper = require("./helper.js");`) {
		t.Errorf("cjs import not translated:\n%s", result.JS)
	}
	if !strings.Contains(result.JS, "module.exports = Thing;") {
		t.Errorf("missing module.exports:\n%s", result.JS)
	}
	if strings.Contains(result.JS, "export default") {
		t.Error("cjs output must not use export default")
	}
}

func TestCompileUnknownFormat(t *testing.T) {
	_, err := Compile(`<p>hi</p>`, Options{Format: "amd"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCompileReactiveGuard(t *testing.T) {
	result, err := Compile(`<script>
	let count = 0;
	$: doubled = count * 2;
	function bump() {
		count += 1;
	}
</script>
<button on:click={bump}>{doubled}</button>`, Options{Filename: "Counter.svelte"})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	if !strings.Contains(result.JS, "$$self.$$.update = (dirty) =>") {
		t.Errorf("missing update hook:\n%s", result.JS)
	}
	if !strings.Contains(result.JS, "dirty &") {
		t.Errorf("reactive block should be guarded by a dirty check:\n%s", result.JS)
	}
}

func TestCompileInvalidatesWrites(t *testing.T) {
	result, err := Compile(`<script>
	let count = 0;
	$: doubled = count * 2;
	function bump() {
		count += 1;
	}
</script>
<button on:click={bump}>{count}{doubled}</button>`, Options{Filename: "Counter.svelte"})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	if !strings.Contains(result.JS, "$$invalidate(0, count += 1)") {
		t.Errorf("handler write should go through $$invalidate:\n%s", result.JS)
	}
	if !strings.Contains(result.JS, "$$invalidate(1, doubled = count * 2)") {
		t.Errorf("reactive assignment should go through $$invalidate:\n%s", result.JS)
	}
	if strings.Contains(result.JS, "\tcount += 1;") {
		t.Errorf("raw write survived in the handler body:\n%s", result.JS)
	}
}

func TestCompileLoopGuards(t *testing.T) {
	source := `<script>
	let n = 0;
	while (n < 10) {
		n += 1;
	}
</script>
<p>{n}</p>`

	result, err := Compile(source, Options{Filename: "Loop.svelte", Dev: true, LoopGuardTimeout: 100})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if !strings.Contains(result.JS, "loop_guard(100)") {
		t.Errorf("dev build should wrap loops:\n%s", result.JS)
	}
	if !strings.Contains(result.JS, `from "svelgo/internal"`) {
		t.Errorf("helper import missing:\n%s", result.JS)
	}

	result, err = Compile(source, Options{Filename: "Loop.svelte"})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if strings.Contains(result.JS, "loop_guard") {
		t.Errorf("production build must not wrap loops:\n%s", result.JS)
	}
}

func TestCompileSSRMarkup(t *testing.T) {
	result, err := Compile(`<script>
	export let items = [];
</script>
<ul>
{#each items as item}<li>{item}</li>{/each}
</ul>`, Options{Filename: "List.svelte"})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	if !strings.Contains(result.JS, "<ul>") {
		t.Errorf("markup missing from render:\n%s", result.JS)
	}
	if !strings.Contains(result.JS, "each(") {
		t.Errorf("each block should use the each helper:\n%s", result.JS)
	}
}

func TestComponentName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Greeting.svelte", "Greeting"},
		{"src/nested/app-bar.svelte", "Appbar"},
		{"lower.svelte", "Lower"},
		{"", "Component"},
		{"!!!.svelte", "Component"},
	}
	for _, tt := range tests {
		if got := componentName(tt.filename); got != tt.want {
			t.Errorf("componentName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
