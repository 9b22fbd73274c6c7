package template

import (
	"regexp"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

var tagNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9:._-]*`)

// metaTags maps svelte:* names to element kinds. Window, head, body and
// options may appear at most once per component.
var metaTags = map[string]ElementKind{
	"svelte:window":    ElementWindow,
	"svelte:head":      ElementHead,
	"svelte:body":      ElementBody,
	"svelte:options":   ElementOptions,
	"svelte:component": ElementComponent,
	"svelte:self":      ElementSelf,
}

func tag(p *parser) state {
	start := p.index
	p.index++ // <

	if p.eat("!--") {
		p.comment(start)
		return nil
	}

	closing := p.eat("/")
	name := p.readTagName(start)

	if closing {
		p.closeTag(start, name)
		return nil
	}

	kind := p.elementKind(name)
	if meta, isMeta := metaTags[name]; isMeta {
		kind = meta
		switch meta {
		case ElementWindow, ElementHead, ElementBody, ElementOptions:
			if p.metaSeen[name] {
				p.fail("duplicate-meta-element", pos.NewSpan(start, p.index),
					"a component can only have one <%s> element", name)
			}
			p.metaSeen[name] = true
		}
	}

	// HTML optional closing tags: a new tag may implicitly close the
	// currently open element.
	if parent, ok := p.current().(*Element); ok && closingTagOmitted(parent.Name, name) {
		parent.End = start
		p.pop()
		p.lastAutoClose = &autoClosed{tag: parent.Name, reason: name, depth: len(p.stack)}
	}

	element := &Element{Base: Base{Start: start}, Kind: kind, Name: name}
	p.allowWhitespace()

	seen := make(map[string]bool)
	for !p.match(">") && !p.match("/>") {
		attr := p.readAttribute(seen)
		element.Attributes = append(element.Attributes, attr)
		p.allowWhitespace()
	}

	// Top-level scripts and styles are extracted from the markup tree.
	if len(p.stack) == 1 && (name == "script" || name == "style") {
		p.require(">", "")
		if name == "script" {
			p.readScript(start, element.Attributes)
		} else {
			p.readStyle(start, element.Attributes)
		}
		return nil
	}

	if element.Kind == ElementComponent {
		p.extractComponentExpr(element, start)
	}

	selfClosing := p.eat("/>")
	if !selfClosing {
		p.require(">", "")
	}
	void := IsVoid(name)
	if selfClosing || void {
		element.End = p.index
		p.addChild(element)
		return nil
	}

	if name == "textarea" || (len(p.stack) > 1 && (name == "script" || name == "style")) {
		// Raw text elements: content is literal up to the closing tag.
		p.readRawText(element)
		p.addChild(element)
		return nil
	}

	p.addChild(element)
	p.push(element)
	return nil
}

func (p *parser) readTagName(start int) string {
	name := tagNameRe.FindString(p.template[p.index:])
	if name == "" {
		p.fail("invalid-tag-name", pos.NewSpan(start, p.index+1), "expected a valid tag name")
	}
	if strings.HasPrefix(name, "svelte:") {
		if _, ok := metaTags[name]; !ok {
			p.fail("invalid-tag-name", pos.NewSpan(p.index, p.index+len(name)),
				"valid <svelte:...> tag names are svelte:window, svelte:head, svelte:body, svelte:options, svelte:component or svelte:self")
		}
	}
	p.index += len(name)
	return name
}

func (p *parser) elementKind(name string) ElementKind {
	switch {
	case name == "slot":
		return ElementSlot
	case name == "title":
		if el, ok := p.current().(*Element); ok && el.Kind == ElementHead {
			return ElementTitle
		}
		return ElementRegular
	case name[0] >= 'A' && name[0] <= 'Z':
		return ElementInlineComponent
	default:
		return ElementRegular
	}
}

func (p *parser) closeTag(start int, name string) {
	p.allowWhitespace()
	p.require(">", "")

	if IsVoid(name) {
		p.fail("invalid-void-content", pos.NewSpan(start, p.index),
			"<%s> is a void element and cannot have children, or a closing tag", name)
	}

	for {
		parent, ok := p.current().(*Element)
		if !ok {
			if p.lastAutoClose != nil && p.lastAutoClose.tag == name {
				p.fail("invalid-closing-tag", pos.NewSpan(start, p.index),
					"</%s> attempted to close <%s> that was already automatically closed by <%s>",
					name, name, p.lastAutoClose.reason)
			}
			p.fail("invalid-closing-tag", pos.NewSpan(start, p.index),
				"</%s> attempted to close an element that was not open", name)
			return
		}
		if parent.Name == name {
			break
		}
		// An element left open by an omitted optional end tag closes here.
		parent.End = start
		p.pop()
	}

	parent := p.current().(*Element)
	parent.End = p.index
	p.pop()

	if p.lastAutoClose != nil && len(p.stack) < p.lastAutoClose.depth {
		p.lastAutoClose = nil
	}
}

func (p *parser) comment(start int) {
	end := strings.Index(p.template[p.index:], "-->")
	if end < 0 {
		p.failHere("unexpected-eof", "comment was left open, expected -->")
	}
	data := p.template[p.index : p.index+end]
	p.index += end + 3

	node := &Comment{Base: Base{Start: start, End: p.index}, Data: data}
	trimmed := strings.TrimSpace(data)
	if rest, ok := strings.CutPrefix(trimmed, "svelte-ignore"); ok {
		node.Ignores = strings.Fields(rest)
	}
	p.addChild(node)
}

// extractComponentExpr pulls the required this attribute off a
// <svelte:component> and promotes its value to the governing expression.
func (p *parser) extractComponentExpr(element *Element, start int) {
	idx := -1
	for i, attr := range element.Attributes {
		plain, ok := attr.(*Attribute)
		if !ok || plain.Name != "this" {
			continue
		}
		idx = i
		if len(plain.Value) != 1 {
			p.fail("invalid-component-definition", plain.Span(), "invalid component definition")
		}
		tagValue, isMustache := plain.Value[0].(*Mustache)
		if !isMustache {
			p.fail("invalid-component-definition", plain.Span(), "invalid component definition")
		}
		element.Expr = tagValue.Expr
	}
	if idx < 0 {
		p.fail("missing-component-definition", pos.NewSpan(start, p.index),
			"<svelte:component> must have a 'this' attribute")
	}
	element.Attributes = append(element.Attributes[:idx], element.Attributes[idx+1:]...)
}

// readRawText consumes literal content for script, style and textarea
// elements that stay in the markup tree.
func (p *parser) readRawText(element *Element) {
	contentStart := p.index
	closeTag := "</" + element.Name
	end := strings.Index(p.template[p.index:], closeTag)
	if end < 0 {
		p.failUnclosed(element)
	}
	data := p.template[contentStart : contentStart+end]
	if data != "" {
		element.Children = []Node{&Text{
			Base: Base{Start: contentStart, End: contentStart + end},
			Data: data,
		}}
	}
	p.index = contentStart + end + len(closeTag)
	p.allowWhitespace()
	p.require(">", "")
	element.End = p.index
}

// readScript parses a top-level <script> block and attaches it to the
// document. A second script in the same context is fatal.
func (p *parser) readScript(start int, attributes []Node) {
	context := "default"
	for _, attr := range attributes {
		plain, ok := attr.(*Attribute)
		if !ok || plain.Name != "context" {
			continue
		}
		value, static := staticAttributeValue(plain)
		if !static {
			p.fail("invalid-script", plain.Span(), "context attribute must be static")
		}
		if value != "module" {
			p.fail("invalid-script", plain.Span(),
				"if the context attribute is supplied, its value must be \"module\"")
		}
		context = "module"
	}

	contentStart := p.index
	end := strings.Index(p.template[p.index:], "</script")
	if end < 0 {
		p.failHere("unexpected-eof", "<script> was left open")
	}
	content := p.template[contentStart : contentStart+end]
	p.index = contentStart + end + len("</script")
	p.allowWhitespace()
	p.require(">", "")

	program, err := js.ParseProgram(content, contentStart, p.arena)
	if err != nil {
		p.jsError(err)
	}
	script := &Script{Base: Base{Start: start, End: p.index}, Context: context, Program: program}

	if context == "module" {
		if p.doc.Module != nil {
			p.fail("duplicate-script", pos.NewSpan(start, p.index),
				"a component can only have one <script context=\"module\"> element")
		}
		p.doc.Module = script
		return
	}
	if p.doc.Instance != nil {
		p.fail("duplicate-script", pos.NewSpan(start, p.index),
			"a component can only have one instance-level <script> element")
	}
	p.doc.Instance = script
}

// readStyle captures a top-level <style> block. Its content is handed to
// the CSS collaborator untouched.
func (p *parser) readStyle(start int, attributes []Node) {
	contentStart := p.index
	end := strings.Index(p.template[p.index:], "</style")
	if end < 0 {
		p.failHere("unexpected-eof", "<style> was left open")
	}
	content := p.template[contentStart : contentStart+end]
	p.index = contentStart + end + len("</style")
	p.allowWhitespace()
	p.require(">", "")

	if p.doc.Style != nil {
		p.fail("duplicate-style", pos.NewSpan(start, p.index),
			"a component can only have one top-level <style> element")
	}
	p.doc.Style = &Style{
		Base:        Base{Start: start, End: p.index},
		Content:     content,
		ContentSpan: pos.NewSpan(contentStart, contentStart+end),
	}
}

// staticAttributeValue returns the text of an attribute whose value is pure
// text (or boolean shorthand), and whether it was static.
func staticAttributeValue(attr *Attribute) (string, bool) {
	if attr.True {
		return "", true
	}
	if len(attr.Value) != 1 {
		return "", len(attr.Value) == 0
	}
	text, ok := attr.Value[0].(*Text)
	if !ok {
		return "", false
	}
	return text.Data, true
}
