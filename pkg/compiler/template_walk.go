package compiler

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/scope"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

// walkTemplate resolves every expression in the markup tree against the
// component's namespace, layering template-local scopes for each contexts,
// let directives and await bindings over it. Along the way it records
// template references and writes on the variable table and collects the
// contextual names the renderer must allocate.
func (c *Component) walkTemplate() {
	w := &templateWalker{c: c}
	w.pushScope(nil)
	w.children(c.Doc.HTML.Children)
	w.popScope()
}

type templateWalker struct {
	c      *Component
	scopes []map[string]bool
}

func (w *templateWalker) pushScope(names []string) {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
		if !w.c.contextualSeen[name] {
			w.c.contextualSeen[name] = true
			w.c.ContextualNames = append(w.c.ContextualNames, name)
		}
	}
	w.scopes = append(w.scopes, set)
}

func (w *templateWalker) popScope() {
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *templateWalker) inScope(name string) bool {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if w.scopes[i][name] {
			return true
		}
	}
	return false
}

// children walks a sibling list, applying any svelte-ignore comment to the
// element or block that follows it.
func (w *templateWalker) children(nodes []template.Node) {
	var pending []string
	for _, n := range nodes {
		if comment, ok := n.(*template.Comment); ok {
			if len(comment.Ignores) > 0 {
				pending = comment.Ignores
			}
			continue
		}
		if text, ok := n.(*template.Text); ok && strings.TrimSpace(text.Data) == "" {
			continue
		}
		if pending != nil {
			w.c.suppressions.Push(pending)
			w.node(n)
			w.c.suppressions.Pop()
			pending = nil
			continue
		}
		w.node(n)
	}
}

func (w *templateWalker) node(n template.Node) {
	switch v := n.(type) {
	case *template.Element:
		w.element(v)
	case *template.Mustache:
		w.expr(v.Expr)
	case *template.RawMustache:
		w.expr(v.Expr)
	case *template.DebugTag:
		for _, ident := range v.Identifiers {
			if !w.inScope(ident.Name) {
				w.c.classifyFreeName(ident.Name, ident.Span(), true)
			}
		}
	case *template.IfBlock:
		w.expr(v.Test)
		w.children(v.Children)
		if v.Else != nil {
			w.children(v.Else.Children)
		}
	case *template.EachBlock:
		w.expr(v.Expr)
		names := patternNameList(v.Context)
		if v.Index != "" {
			names = append(names, v.Index)
		}
		w.pushScope(names)
		if v.Key != nil {
			w.expr(v.Key)
		}
		w.children(v.Children)
		w.popScope()
		if v.Else != nil {
			w.children(v.Else.Children)
		}
	case *template.AwaitBlock:
		w.expr(v.Expr)
		if v.Pending != nil && !v.Pending.Skip {
			w.children(v.Pending.Children)
		}
		if v.Then != nil && !v.Then.Skip {
			w.pushScope(patternNameList(v.Value))
			w.children(v.Then.Children)
			w.popScope()
		}
		if v.Catch != nil && !v.Catch.Skip {
			w.pushScope(patternNameList(v.Error))
			w.children(v.Catch.Children)
			w.popScope()
		}
	case *template.Text:
	}
}

func (w *templateWalker) element(e *template.Element) {
	if e.Kind == template.ElementOptions {
		return
	}
	if e.Kind == template.ElementSlot {
		if name := staticAttribute(e, "name"); name != "" && name != "default" {
			w.c.HasNamedSlots = true
		}
	}
	if e.Kind == template.ElementInlineComponent {
		root := e.Name
		if dot := strings.IndexByte(root, '.'); dot >= 0 {
			root = root[:dot]
		}
		if !w.inScope(root) {
			w.c.classifyFreeName(root, e.Span(), true)
		}
	}
	if e.Expr != nil {
		w.expr(e.Expr)
	}

	var letNames []string
	for _, attr := range e.Attributes {
		switch a := attr.(type) {
		case *template.Attribute:
			for _, part := range a.Value {
				if m, ok := part.(*template.Mustache); ok {
					w.expr(m.Expr)
				}
			}
		case *template.Spread:
			w.expr(a.Expr)
		case *template.Directive:
			letNames = append(letNames, w.directive(a)...)
		}
	}

	w.pushScope(letNames)
	w.children(e.Children)
	w.popScope()
}

// directive resolves one directive attribute; let directives contribute
// scope names for the element's children instead of references.
func (w *templateWalker) directive(d *template.Directive) []string {
	switch d.Kind {
	case template.DirectiveLet:
		if d.Expr != nil {
			if pattern, ok := d.Expr.(js.Pattern); ok {
				return identNameList(js.PatternNames(pattern, nil))
			}
			if ident, ok := d.Expr.(*js.Identifier); ok {
				return []string{ident.Name}
			}
			return nil
		}
		return []string{d.Name}
	case template.DirectiveBinding:
		w.expr(d.Expr)
		w.bindTarget(d.Expr)
	default:
		w.expr(d.Expr)
	}
	return nil
}

// bindTarget marks the bound variable as written: a two-way binding assigns
// it whenever the element changes.
func (w *templateWalker) bindTarget(expr js.Expr) {
	root := rootIdentifier(expr)
	if root == nil || w.inScope(root.Name) {
		return
	}
	_, direct := expr.(*js.Identifier)
	w.c.markWrite(root.Name, !direct)
}

// expr resolves the free names of one template expression and records any
// assignments it performs, as event handlers routinely write state inline.
func (w *templateWalker) expr(expr js.Expr) {
	if expr == nil {
		return
	}
	info := scope.BuildExpr(expr)
	w.c.recordRefScopes(info)
	for _, name := range info.GlobalOrder {
		if strings.HasPrefix(name, "@") || w.inScope(name) {
			continue
		}
		w.c.classifyFreeName(name, info.Globals[name][0].Span(), true)
	}
	js.Walk(expr, func(n js.Node) bool {
		switch v := n.(type) {
		case *js.AssignExpr:
			w.markTemplateWrites(v.Target)
		case *js.UpdateExpr:
			w.markTemplateWrites(v.Arg)
		}
		return true
	}, nil)
}

func (w *templateWalker) markTemplateWrites(target js.Expr) {
	for _, t := range collectTargets(target, false) {
		name := t.Root.Name
		if sc, ok := w.c.identScopes[t.Root.ID()]; ok && sc.FindOwner(name) != nil {
			continue
		}
		if w.inScope(name) {
			continue
		}
		w.c.markWrite(name, t.Member)
	}
}

func patternNameList(pattern js.Pattern) []string {
	if pattern == nil {
		return nil
	}
	return identNameList(js.PatternNames(pattern, nil))
}

func identNameList(idents []*js.Identifier) []string {
	names := make([]string, 0, len(idents))
	for _, ident := range idents {
		names = append(names, ident.Name)
	}
	return names
}

// staticAttribute returns the static text value of the named attribute, or
// empty when absent or dynamic.
func staticAttribute(e *template.Element, name string) string {
	for _, attr := range e.Attributes {
		a, ok := attr.(*template.Attribute)
		if !ok || a.Name != name {
			continue
		}
		if a.True || len(a.Value) != 1 {
			return ""
		}
		if text, ok := a.Value[0].(*template.Text); ok {
			return text.Data
		}
		return ""
	}
	return ""
}
