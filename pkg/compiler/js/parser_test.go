package js

import (
	"testing"
)

func parseProgram(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ParseProgram(src, 0, NewArena())
	if err != nil {
		t.Fatalf("ParseProgram() failed: %v", err)
	}
	return prog
}

func TestParseStatements(t *testing.T) {
	prog := parseProgram(t, `let a = 1;
const b = "two";
function f(x, y = 2) { return x + y; }
if (a) { f(a); } else { f(b); }
for (let i = 0; i < 3; i++) { a += i; }
`)
	if len(prog.Body) != 5 {
		t.Fatalf("%d statements, want 5", len(prog.Body))
	}
	if vd, ok := prog.Body[0].(*VarDecl); !ok || vd.Kind != "let" {
		t.Errorf("first statement = %T, want let VarDecl", prog.Body[0])
	}
	fd, ok := prog.Body[2].(*FuncDecl)
	if !ok {
		t.Fatalf("third statement = %T, want FuncDecl", prog.Body[2])
	}
	if fd.Name != "f" || len(fd.Params) != 2 {
		t.Errorf("function f has %d params", len(fd.Params))
	}
	if _, ok := fd.Params[1].(*AssignPattern); !ok {
		t.Errorf("default parameter = %T, want AssignPattern", fd.Params[1])
	}
}

func TestParseLabeledStatement(t *testing.T) {
	prog := parseProgram(t, `$: doubled = count * 2;`)
	labeled, ok := prog.Body[0].(*Labeled)
	if !ok {
		t.Fatalf("statement = %T, want Labeled", prog.Body[0])
	}
	if labeled.Label != "$" {
		t.Errorf("label = %q, want $", labeled.Label)
	}
	stmt, ok := labeled.Body.(*ExprStmt)
	if !ok {
		t.Fatalf("body = %T, want ExprStmt", labeled.Body)
	}
	assign, ok := stmt.Expr.(*AssignExpr)
	if !ok {
		t.Fatalf("expr = %T, want AssignExpr", stmt.Expr)
	}
	if assign.Op != "=" {
		t.Errorf("op = %q, want =", assign.Op)
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	prog := parseProgram(t, `total += n; count++;`)
	assign := prog.Body[0].(*ExprStmt).Expr.(*AssignExpr)
	if assign.Op != "+=" {
		t.Errorf("op = %q, want +=", assign.Op)
	}
	update, ok := prog.Body[1].(*ExprStmt).Expr.(*UpdateExpr)
	if !ok {
		t.Fatalf("second expr = %T, want UpdateExpr", prog.Body[1].(*ExprStmt).Expr)
	}
	if update.Op != "++" {
		t.Errorf("op = %q, want ++", update.Op)
	}
}

func TestParseImportsAndExports(t *testing.T) {
	prog := parseProgram(t, `import def, { a as b } from "mod";
export let visible = 1;
export { visible as shown };`)

	imp, ok := prog.Body[0].(*ImportDecl)
	if !ok {
		t.Fatalf("first statement = %T, want ImportDecl", prog.Body[0])
	}
	if imp.Source != "mod" || len(imp.Specifiers) != 2 {
		t.Errorf("import source=%q specifiers=%d", imp.Source, len(imp.Specifiers))
	}
	exp, ok := prog.Body[1].(*ExportNamed)
	if !ok {
		t.Fatalf("second statement = %T, want ExportNamed", prog.Body[1])
	}
	if exp.Decl == nil {
		t.Error("export let should carry its declaration")
	}
	spec, ok := prog.Body[2].(*ExportNamed)
	if !ok || len(spec.Specifiers) != 1 {
		t.Fatalf("third statement should export one specifier")
	}
	if spec.Specifiers[0].Local != "visible" || spec.Specifiers[0].Exported != "shown" {
		t.Errorf("specifier = %+v", spec.Specifiers[0])
	}
}

func TestParseExpressionAtStopsAtDelimiter(t *testing.T) {
	src := `{count + 1}`
	expr, end, err := ParseExpressionAt(src, 1, NewArena())
	if err != nil {
		t.Fatalf("ParseExpressionAt() failed: %v", err)
	}
	if src[end] != '}' {
		t.Errorf("end = %d (%q), want position of closing brace", end, src[end])
	}
	if _, ok := expr.(*BinaryExpr); !ok {
		t.Errorf("expr = %T, want BinaryExpr", expr)
	}
}

func TestParseArrowAndTemplate(t *testing.T) {
	prog := parseProgram(t, "const f = (a, b) => `${a} and ${b}`;")
	decl := prog.Body[0].(*VarDecl).Declarators[0]
	arrow, ok := decl.Init.(*ArrowFn)
	if !ok {
		t.Fatalf("init = %T, want ArrowFn", decl.Init)
	}
	tmpl, ok := arrow.Body.(*TemplateLit)
	if !ok {
		t.Fatalf("arrow body = %T, want TemplateLit", arrow.Body)
	}
	if len(tmpl.Exprs) != 2 {
		t.Errorf("%d template expressions, want 2", len(tmpl.Exprs))
	}
}

func TestParseObjectLiteral(t *testing.T) {
	prog := parseProgram(t, "const o = { name, count: 1, ...rest };")
	decl := prog.Body[0].(*VarDecl).Declarators[0]
	obj, ok := decl.Init.(*ObjectLit)
	if !ok {
		t.Fatalf("init = %T, want ObjectLit", decl.Init)
	}
	if len(obj.Properties) != 3 {
		t.Fatalf("%d properties, want 3", len(obj.Properties))
	}
	short, ok := obj.Properties[0].(*Property)
	if !ok {
		t.Fatalf("property 0 = %T, want *Property", obj.Properties[0])
	}
	if !short.Shorthand {
		t.Error("name should parse as shorthand")
	}
	full, ok := obj.Properties[1].(*Property)
	if !ok {
		t.Fatalf("property 1 = %T, want *Property", obj.Properties[1])
	}
	if full.Shorthand {
		t.Error("count: 1 should not be shorthand")
	}
	if _, ok := obj.Properties[2].(*SpreadElement); !ok {
		t.Errorf("property 2 = %T, want *SpreadElement", obj.Properties[2])
	}
}

func TestSpansHaveOffsets(t *testing.T) {
	src := `let value = 42;`
	prog := parseProgram(t, src)
	span := prog.Body[0].Span()
	if span.Start != 0 || span.End > len(src) {
		t.Errorf("span = %v, want within [0, %d]", span, len(src))
	}
}

func TestWalkVisitsAssignTargets(t *testing.T) {
	prog := parseProgram(t, `a = b + c;`)
	names := map[string]int{}
	Walk(prog, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names[id.Name]++
		}
		return true
	}, nil)
	for _, want := range []string{"a", "b", "c"} {
		if names[want] == 0 {
			t.Errorf("walk never visited %s", want)
		}
	}
}
