package compiler

import (
	"path/filepath"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/diag"
	"github.com/svelgo/svelgo/pkg/compiler/emit"
	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

// Result is the output of one successful compilation.
type Result struct {
	Doc       *template.Document
	Component *Component
	Renderer  *Renderer
	Warnings  []diag.Warning

	// JS is the emitted JavaScript module in Format.
	JS     string
	Format string
}

// Compile parses, analyzes and emits one component. The returned error is a
// *diag.Error for anything wrong with the source.
func Compile(source string, options Options) (*Result, error) {
	arena := js.NewArena()
	doc, err := template.Parse(source, arena, options.Filename)
	if err != nil {
		return nil, err
	}
	c, err := Analyze(source, doc, arena, options)
	if err != nil {
		return nil, err
	}
	r := NewRenderer(c)
	code, err := emit.Module(buildProgram(c, r))
	if err != nil {
		return nil, err
	}
	return &Result{
		Doc:       doc,
		Component: c,
		Renderer:  r,
		Warnings:  c.Warnings,
		JS:        code,
		Format:    c.Options.Format,
	}, nil
}

// buildProgram flattens the analysis into the emitter's input. Writes in
// the instance body and reactive bodies are routed through the renderer's
// invalidation expressions first.
func buildProgram(c *Component, r *Renderer) *emit.Program {
	rewriteInvalidations(r, c.InstanceBody)
	for _, d := range c.Reactive {
		rewriteInvalidationStmt(r, d.Node.Body)
	}
	p := &emit.Program{
		Filename:        c.Options.Filename,
		Format:          c.Options.Format,
		Name:            componentName(c.Options.Filename),
		Imports:         c.Imports,
		Hoisted:         c.Hoisted,
		ModuleBody:      c.ModuleBody,
		InstanceBody:    c.InstanceBody,
		HTML:            c.Doc.HTML,
		ContextOverflow: r.ContextOverflow,
	}
	for _, m := range r.Context {
		p.Context = append(p.Context, emit.Slot{Name: m.Name, Index: m.Index, Contextual: m.IsContextual})
	}
	for _, v := range c.Vars.All() {
		if v.Prop() {
			if m := r.Member(v.Name); m != nil {
				p.Props = append(p.Props, emit.Prop{Name: v.Name, Export: v.ExportName, Index: m.Index})
			}
		}
		if v.Subscribable {
			if m := r.Member("$" + v.Name); m != nil {
				p.Subscriptions = append(p.Subscriptions, emit.Subscription{
					Store:  v.Name,
					Shadow: "$" + v.Name,
					Index:  m.Index,
				})
			}
		}
	}
	for _, d := range c.Reactive {
		block := emit.ReactiveBlock{Body: d.Node.Body}
		deps := slottedNames(r, d.Dependencies)
		if len(deps) > 0 {
			block.Guard = r.Dirty(deps, d.Node.Span())
		}
		p.Reactive = append(p.Reactive, block)
	}
	return p
}

func slottedNames(r *Renderer, names []string) []string {
	var out []string
	for _, name := range names {
		if r.Member(name) != nil {
			out = append(out, name)
		}
	}
	return out
}

// componentName derives a JavaScript identifier from the source filename:
// Foo.svelte compiles to a module whose component value is named Foo.
func componentName(filename string) string {
	base := filepath.Base(filename)
	if dot := strings.IndexByte(base, '.'); dot > 0 {
		base = base[:dot]
	}
	var b strings.Builder
	for i, r := range base {
		ok := r == '_' || r == '$' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if ok {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return "Component"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
