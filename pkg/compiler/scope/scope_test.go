package scope

import (
	"testing"

	"github.com/svelgo/svelgo/pkg/compiler/js"
)

func build(t *testing.T, src string) *Info {
	t.Helper()
	prog, err := js.ParseProgram(src, 0, js.NewArena())
	if err != nil {
		t.Fatalf("ParseProgram() failed: %v", err)
	}
	return Build(prog)
}

func TestBuildDeclarations(t *testing.T) {
	info := build(t, `let a = 1;
const b = 2;
var c;
function f(x) {}
import d from "mod";`)

	tests := []struct {
		name string
		kind string
	}{
		{"a", "let"},
		{"b", "const"},
		{"c", "var"},
		{"f", "function"},
		{"d", "import"},
	}
	for _, tt := range tests {
		d, ok := info.Root.DeclaredHere(tt.name)
		if !ok {
			t.Errorf("%s not declared at root", tt.name)
			continue
		}
		if d.Kind != tt.kind {
			t.Errorf("%s kind = %q, want %q", tt.name, d.Kind, tt.kind)
		}
	}
	if d, _ := info.Root.DeclaredHere("a"); !d.Writable() {
		t.Error("let should be writable")
	}
	if d, _ := info.Root.DeclaredHere("b"); d.Writable() {
		t.Error("const should not be writable")
	}
}

func TestBuildGlobals(t *testing.T) {
	info := build(t, `let a = 1;
console.log(a, missing);`)

	if _, ok := info.Globals["console"]; !ok {
		t.Error("console should be a global")
	}
	if _, ok := info.Globals["missing"]; !ok {
		t.Error("missing should be a global")
	}
	if _, ok := info.Globals["a"]; ok {
		t.Error("a is declared, not a global")
	}
}

func TestShadowing(t *testing.T) {
	info := build(t, `let x = 1;
function f() {
	let x = 2;
	return x;
}`)

	var innerRef *Ref
	for i := range info.Refs {
		ref := &info.Refs[i]
		if ref.Ident.Name == "x" && ref.Scope != info.Root {
			innerRef = ref
		}
	}
	if innerRef == nil {
		t.Fatal("no inner reference to x found")
	}
	owner := innerRef.Scope.FindOwner("x")
	if owner == info.Root {
		t.Error("inner x should resolve to the function scope, not the root")
	}
	if owner == nil {
		t.Error("inner x should resolve somewhere")
	}
}

func TestVarHoistsToFunctionScope(t *testing.T) {
	info := build(t, `function f() {
	{
		var hoisted = 1;
		let blocked = 2;
	}
}`)

	if _, ok := info.Root.DeclaredHere("f"); !ok {
		t.Fatal("f not declared")
	}

	// The var must be visible from the function scope; the let must not.
	var fnScope *Scope
	for _, s := range info.ByNode {
		if s.Fn && s != info.Root {
			fnScope = s
		}
	}
	if fnScope == nil {
		t.Fatal("no function scope built")
	}
	if _, ok := fnScope.DeclaredHere("hoisted"); !ok {
		t.Error("var should hoist to the function scope")
	}
	if _, ok := fnScope.DeclaredHere("blocked"); ok {
		t.Error("let must stay in its block scope")
	}
	if fnScope.Has("blocked") {
		// blocked lives in a child scope; the chain only walks upward.
		t.Error("block-scoped let must not be visible from the function scope")
	}
}

func TestBuildExpr(t *testing.T) {
	expr, _, err := js.ParseExpressionAt(`items.filter(x => x > min)`, 0, js.NewArena())
	if err != nil {
		t.Fatalf("ParseExpressionAt() failed: %v", err)
	}
	info := BuildExpr(expr)

	if _, ok := info.Globals["items"]; !ok {
		t.Error("items should be free")
	}
	if _, ok := info.Globals["min"]; !ok {
		t.Error("min should be free")
	}
	if _, ok := info.Globals["x"]; ok {
		t.Error("arrow parameter is not free")
	}
}
