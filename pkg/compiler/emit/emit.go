// Package emit renders an analyzed component into a readable JavaScript
// module: hoisted declarations, the module-context body, an instance
// function with prop wiring, store subscriptions and dirty-guarded reactive
// blocks, and a string-building render function generated from the template
// tree. The exact output text is not contractual; it exists to exercise the
// backend data contract end to end.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

const version = "0.1.0"

// Prop is one externally visible property with its context slot.
type Prop struct {
	Name   string
	Export string
	Index  int
}

// Slot is one context array member in final slot order.
type Slot struct {
	Name       string
	Index      int
	Contextual bool
}

// ReactiveBlock is one reactive statement body with its dirty guard; a nil
// guard always runs.
type ReactiveBlock struct {
	Body  js.Stmt
	Guard js.Expr
}

// Subscription is one store subscription: writes to Shadow flow into slot
// Index whenever Store emits.
type Subscription struct {
	Store  string
	Shadow string
	Index  int
}

// Program is the emitter's input, flattened from the analysis.
type Program struct {
	Filename string
	Format   string // esm or cjs
	Name     string

	Imports      []*js.ImportDecl
	Hoisted      []js.Stmt
	ModuleBody   []js.Stmt
	InstanceBody []js.Stmt

	Props         []Prop
	Context       []Slot
	Subscriptions []Subscription
	Reactive      []ReactiveBlock

	ContextOverflow bool

	HTML *template.Fragment
}

// Module renders the program in its configured format.
func Module(p *Program) (string, error) {
	if p.Format != "esm" && p.Format != "cjs" {
		return "", fmt.Errorf("unknown output format %q", p.Format)
	}
	e := &emitter{p: p, helpers: make(map[string]bool)}
	return e.module()
}

type emitter struct {
	p       *Program
	helpers map[string]bool
	out     strings.Builder
}

func (e *emitter) helper(name string) string {
	e.helpers[name] = true
	return name
}

// rewriteHelpers renames @-prefixed runtime references injected by the
// analyzer to plain identifiers and records them for the runtime import.
func (e *emitter) rewriteHelpers(stmts []js.Stmt) {
	for _, stmt := range stmts {
		js.Walk(stmt, func(n js.Node) bool {
			if ident, ok := n.(*js.Identifier); ok && strings.HasPrefix(ident.Name, "@") {
				ident.Name = e.helper(strings.TrimPrefix(ident.Name, "@"))
			}
			return true
		}, nil)
	}
}

func (e *emitter) module() (string, error) {
	e.rewriteHelpers(e.p.Hoisted)
	e.rewriteHelpers(e.p.ModuleBody)
	e.rewriteHelpers(e.p.InstanceBody)

	render := e.renderFunction()
	instance := e.instanceFunction()

	var body strings.Builder
	if len(e.p.Hoisted) > 0 {
		body.WriteString(js.PrintStmts(e.p.Hoisted, 0))
		body.WriteString("\n")
	}
	if len(e.p.ModuleBody) > 0 {
		body.WriteString(js.PrintStmts(e.p.ModuleBody, 0))
		body.WriteString("\n")
	}
	body.WriteString(instance)
	body.WriteString("\n")
	body.WriteString(render)
	body.WriteString("\n")
	body.WriteString(e.componentValue())

	// The header renders last: only now is the helper set complete.
	e.out.WriteString(e.header())
	e.out.WriteString(body.String())
	return e.out.String(), nil
}

func (e *emitter) header() string {
	var b strings.Builder
	if e.p.Filename != "" {
		fmt.Fprintf(&b, "/* %s generated by svelgo v%s */\n", e.p.Filename, version)
	} else {
		fmt.Fprintf(&b, "/* generated by svelgo v%s */\n", version)
	}
	names := make([]string, 0, len(e.helpers))
	for name := range e.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		if e.p.Format == "esm" {
			fmt.Fprintf(&b, "import { %s } from \"svelgo/internal\";\n", strings.Join(names, ", "))
		} else {
			fmt.Fprintf(&b, "const { %s } = require(\"svelgo/internal\");\n", strings.Join(names, ", "))
		}
	}
	for _, imp := range e.p.Imports {
		b.WriteString(e.importDecl(imp))
	}
	b.WriteString("\n")
	return b.String()
}

func (e *emitter) importDecl(imp *js.ImportDecl) string {
	if e.p.Format == "esm" {
		return js.Print(imp) + "\n"
	}
	// cjs translation of the three import shapes.
	if len(imp.Specifiers) == 0 {
		return fmt.Sprintf("require(%q);\n", imp.Source)
	}
	var named []string
	var lines []string
	for _, spec := range imp.Specifiers {
		switch spec.Imported {
		case "":
			lines = append(lines, fmt.Sprintf("const %s = require(%q);", spec.Local, imp.Source))
		case "*":
			lines = append(lines, fmt.Sprintf("const %s = require(%q);", spec.Local, imp.Source))
		default:
			if spec.Imported == spec.Local {
				named = append(named, spec.Local)
			} else {
				named = append(named, spec.Imported+": "+spec.Local)
			}
		}
	}
	if len(named) > 0 {
		lines = append(lines, fmt.Sprintf("const { %s } = require(%q);", strings.Join(named, ", "), imp.Source))
	}
	return strings.Join(lines, "\n") + "\n"
}

// instanceFunction emits the per-instance setup: subscriptions, the script
// body, prop wiring, reactive blocks and the context array.
func (e *emitter) instanceFunction() string {
	var b strings.Builder
	b.WriteString("function instance($$self, $$props, $$invalidate) {\n")
	for _, sub := range e.p.Subscriptions {
		fmt.Fprintf(&b, "\t%s($$self, %s, $$value => $$invalidate(%d, %s = $$value));\n",
			e.helper("component_subscribe"), sub.Store, sub.Index, sub.Shadow)
	}
	if len(e.p.InstanceBody) > 0 {
		b.WriteString(js.PrintStmts(e.p.InstanceBody, 1))
	}
	if len(e.p.Props) > 0 {
		b.WriteString("\t$$self.$$set = $$props => {\n")
		for _, prop := range e.p.Props {
			fmt.Fprintf(&b, "\t\tif (%q in $$props) $$invalidate(%d, %s = $$props.%s);\n",
				prop.Export, prop.Index, prop.Name, prop.Export)
		}
		b.WriteString("\t};\n")
	}
	if len(e.p.Reactive) > 0 {
		b.WriteString("\t$$self.$$.update = (dirty) => {\n")
		for _, block := range e.p.Reactive {
			body := strings.TrimRight(js.PrintStmts([]js.Stmt{block.Body}, 3), "\n")
			if block.Guard != nil {
				fmt.Fprintf(&b, "\t\tif (%s) {\n%s\n\t\t}\n", js.Print(block.Guard), body)
			} else {
				b.WriteString(strings.TrimRight(js.PrintStmts([]js.Stmt{block.Body}, 2), "\n"))
				b.WriteString("\n")
			}
		}
		b.WriteString("\t};\n")
	}
	fmt.Fprintf(&b, "\treturn [%s];\n", strings.Join(e.contextArray(), ", "))
	b.WriteString("}\n")
	return b.String()
}

// contextArray lists the instance's contribution to the context in slot
// order; contextual slots are filled per render scope and stay null here.
func (e *emitter) contextArray() []string {
	items := make([]string, len(e.p.Context))
	for _, slot := range e.p.Context {
		if slot.Contextual {
			items[slot.Index] = "null"
		} else {
			items[slot.Index] = slot.Name
		}
	}
	for len(items) > 0 && items[len(items)-1] == "null" {
		items = items[:len(items)-1]
	}
	return items
}

// componentValue emits the module's exported value.
func (e *emitter) componentValue() string {
	var b strings.Builder
	fmt.Fprintf(&b, "const %s = { name: %q, instance, render };\n", e.p.Name, e.p.Name)
	if e.p.Format == "esm" {
		fmt.Fprintf(&b, "export default %s;\n", e.p.Name)
	} else {
		fmt.Fprintf(&b, "module.exports = %s;\n", e.p.Name)
	}
	return b.String()
}
