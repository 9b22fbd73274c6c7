package emit

import (
	"fmt"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

// renderFunction builds the string-producing render function: the context
// array destructures into local names, then the markup tree renders as one
// nested template literal.
func (e *emitter) renderFunction() string {
	var b strings.Builder
	b.WriteString("function render($$ctx, $$slots = {}) {\n")
	if names := e.contextBindings(); names != "" {
		fmt.Fprintf(&b, "\tconst [%s] = $$ctx;\n", names)
	}
	fmt.Fprintf(&b, "\treturn `%s`;\n", e.fragment(e.p.HTML.Children))
	b.WriteString("}\n")
	return b.String()
}

// contextBindings destructures every named slot; contextual slots bind too,
// so block-level rewrites only have to fill their positions.
func (e *emitter) contextBindings() string {
	names := make([]string, len(e.p.Context))
	for _, slot := range e.p.Context {
		names[slot.Index] = slot.Name
	}
	return strings.Join(names, ", ")
}

func (e *emitter) fragment(nodes []template.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(e.templateNode(n))
	}
	return b.String()
}

func (e *emitter) templateNode(n template.Node) string {
	switch v := n.(type) {
	case *template.Text:
		return escapeTemplate(v.Data)
	case *template.Comment:
		return ""
	case *template.Mustache:
		return fmt.Sprintf("${%s(%s)}", e.helper("escape"), js.Print(v.Expr))
	case *template.RawMustache:
		return fmt.Sprintf("${%s}", js.Print(v.Expr))
	case *template.DebugTag:
		return ""
	case *template.IfBlock:
		return e.ifBlock(v)
	case *template.EachBlock:
		return e.eachBlock(v)
	case *template.AwaitBlock:
		return e.awaitBlock(v)
	case *template.Element:
		return e.elementNode(v)
	}
	return ""
}

func (e *emitter) ifBlock(v *template.IfBlock) string {
	alt := "``"
	if v.Else != nil {
		alt = "`" + e.fragment(v.Else.Children) + "`"
	}
	return fmt.Sprintf("${%s ? `%s` : %s}", js.Print(v.Test), e.fragment(v.Children), alt)
}

func (e *emitter) eachBlock(v *template.EachBlock) string {
	params := js.Print(v.Context)
	if v.Index != "" {
		params += ", " + v.Index
	}
	body := fmt.Sprintf("${%s(%s, (%s) => `%s`)}",
		e.helper("each"), js.Print(v.Expr), params, e.fragment(v.Children))
	if v.Else == nil {
		return body
	}
	// The else arm renders when the list is empty.
	return fmt.Sprintf("${(%s).length ? `%s` : `%s`}",
		js.Print(v.Expr), body, e.fragment(v.Else.Children))
}

// awaitBlock renders the pending branch; a server render never waits for
// resolution.
func (e *emitter) awaitBlock(v *template.AwaitBlock) string {
	if v.Pending != nil && !v.Pending.Skip {
		return e.fragment(v.Pending.Children)
	}
	return ""
}

func (e *emitter) elementNode(v *template.Element) string {
	switch v.Kind {
	case template.ElementOptions:
		return ""
	case template.ElementWindow, template.ElementBody:
		return ""
	case template.ElementHead:
		return e.fragment(v.Children)
	case template.ElementSlot:
		return e.slotNode(v)
	case template.ElementInlineComponent, template.ElementComponent, template.ElementSelf:
		return e.componentNode(v)
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(v.Name)
	for _, attr := range v.Attributes {
		b.WriteString(e.attribute(attr))
	}
	if template.IsVoid(v.Name) {
		b.WriteString(">")
		return b.String()
	}
	b.WriteString(">")
	b.WriteString(e.fragment(v.Children))
	fmt.Fprintf(&b, "</%s>", v.Name)
	return b.String()
}

func (e *emitter) slotNode(v *template.Element) string {
	name := "default"
	for _, attr := range v.Attributes {
		if a, ok := attr.(*template.Attribute); ok && a.Name == "name" && len(a.Value) == 1 {
			if text, ok := a.Value[0].(*template.Text); ok {
				name = text.Data
			}
		}
	}
	return fmt.Sprintf("${$$slots[%q] ? $$slots[%q]() : `%s`}", name, name, e.fragment(v.Children))
}

// componentNode delegates a child component through the runtime, passing its
// attribute expressions as props.
func (e *emitter) componentNode(v *template.Element) string {
	target := v.Name
	if v.Kind == template.ElementComponent && v.Expr != nil {
		target = js.Print(v.Expr)
	}
	var props []string
	for _, attr := range v.Attributes {
		switch a := attr.(type) {
		case *template.Attribute:
			props = append(props, fmt.Sprintf("%q: %s", a.Name, e.attributeExpr(a)))
		case *template.Spread:
			props = append(props, "..."+js.Print(a.Expr))
		}
	}
	obj := "{}"
	if len(props) > 0 {
		obj = "{ " + strings.Join(props, ", ") + " }"
	}
	return fmt.Sprintf("${%s(%s, %s)}", e.helper("component"), target, obj)
}

// attributeExpr renders an attribute value as a single JS expression.
func (e *emitter) attributeExpr(a *template.Attribute) string {
	if a.True {
		return "true"
	}
	if len(a.Value) == 1 {
		switch part := a.Value[0].(type) {
		case *template.Text:
			return fmt.Sprintf("%q", part.Data)
		case *template.Mustache:
			return js.Print(part.Expr)
		}
	}
	var parts []string
	for _, part := range a.Value {
		switch p := part.(type) {
		case *template.Text:
			parts = append(parts, escapeTemplate(p.Data))
		case *template.Mustache:
			parts = append(parts, "${"+js.Print(p.Expr)+"}")
		}
	}
	return "`" + strings.Join(parts, "") + "`"
}

// attribute renders one attribute inside an element open tag. Event
// handlers, transitions and actions have no server-side rendering; bindings
// surface as the plain attribute value.
func (e *emitter) attribute(attr template.Node) string {
	switch a := attr.(type) {
	case *template.Attribute:
		if a.True {
			return " " + a.Name
		}
		var b strings.Builder
		fmt.Fprintf(&b, " %s=\"", a.Name)
		for _, part := range a.Value {
			switch p := part.(type) {
			case *template.Text:
				b.WriteString(escapeTemplate(p.Data))
			case *template.Mustache:
				fmt.Fprintf(&b, "${%s(%s)}", e.helper("escape"), js.Print(p.Expr))
			}
		}
		b.WriteString("\"")
		return b.String()
	case *template.Spread:
		return fmt.Sprintf("${%s(%s)}", e.helper("spread_attributes"), js.Print(a.Expr))
	case *template.Directive:
		switch a.Kind {
		case template.DirectiveBinding:
			if a.Expr != nil {
				return fmt.Sprintf(" %s=\"${%s(%s)}\"", a.Name, e.helper("escape"), js.Print(a.Expr))
			}
		case template.DirectiveClass:
			if a.Expr != nil {
				return fmt.Sprintf("${%s ? ` class=\"%s\"` : ``}", js.Print(a.Expr), a.Name)
			}
		}
		return ""
	}
	return ""
}

// escapeTemplate escapes static text for inclusion in a template literal.
func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "${", "\\${")
	return s
}
