// Package compiler ties the template parser, scope builder, component
// analyzer and renderer/context allocator into one compilation pipeline.
// Compile is the facade; Component and Renderer expose the analyzed
// intermediate representation consumed by the emit backend.
package compiler

import (
	"regexp"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/diag"
	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

// Options configure one compilation.
type Options struct {
	// Filename is used for diagnostics only.
	Filename string

	// Dev enables development-only warnings, disables literal hoisting of
	// let declarations, and enables loop guards.
	Dev bool

	// CustomElement compiles the component as a custom element; the tag
	// option of <svelte:options> then takes effect.
	CustomElement bool

	// LoopGuardTimeout, in milliseconds, bounds loops in generated code.
	// Zero disables guarding; nonzero only applies in Dev mode.
	LoopGuardTimeout int

	// Format selects the output module format: "esm" (default) or "cjs".
	Format string

	// Overrides for the corresponding <svelte:options> attributes.
	Tag                string
	Namespace          string
	Immutable          bool
	Accessors          bool
	PreserveWhitespace bool
}

// ComponentOptions are the per-component settings read from
// <svelte:options>, merged over the compile-time Options.
type ComponentOptions struct {
	Tag                string
	Namespace          string
	Immutable          bool
	Accessors          bool
	PreserveWhitespace bool
}

var validNamespaces = []string{"html", "svg", "mathml", "foreign"}

// customElementTagRe is the custom-elements spec shape: lowercase, at least
// one hyphen.
var customElementTagRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

var knownOptionsAttributes = []string{"tag", "namespace", "accessors", "immutable", "preserveWhitespace"}

// readComponentOptions extracts and validates <svelte:options> from the
// fragment's direct children. Attribute values must be static literals.
func (c *Component) readComponentOptions() {
	opts := ComponentOptions{
		Tag:                c.Options.Tag,
		Namespace:          c.Options.Namespace,
		Immutable:          c.Options.Immutable,
		Accessors:          c.Options.Accessors,
		PreserveWhitespace: c.Options.PreserveWhitespace,
	}

	var node *template.Element
	for _, child := range c.Doc.HTML.Children {
		el, ok := child.(*template.Element)
		if ok && el.Kind == template.ElementOptions {
			node = el
			break
		}
	}
	if node == nil {
		c.ComponentOptions = opts
		return
	}

	for _, attr := range node.Attributes {
		plain, ok := attr.(*template.Attribute)
		if !ok {
			c.fatal(c.Reporter.Errorf("invalid-options-attribute", attr.Span(),
				"<svelte:options> can only receive static attributes"))
		}
		switch plain.Name {
		case "tag":
			value, ok := c.staticStringValue(plain)
			if !ok {
				c.fatal(c.Reporter.Errorf("invalid-tag-property", plain.Span(),
					"'tag' must be a static string literal"))
			}
			if value != "" && !customElementTagRe.MatchString(value) {
				c.fatal(c.Reporter.Errorf("invalid-tag-property", plain.Span(),
					"tag name %q is invalid: custom element names must be lowercase and contain a hyphen", value))
			}
			opts.Tag = value
			if !c.Options.CustomElement {
				c.warn(c.Reporter.Warningf("missing-custom-element-compile-options", plain.Span(),
					"the 'tag' option is used when generating a custom element; did you forget the customElement compile setting?"))
			}
		case "namespace":
			value, ok := c.staticStringValue(plain)
			if !ok {
				c.fatal(c.Reporter.Errorf("invalid-namespace-property", plain.Span(),
					"'namespace' must be a static string literal"))
			}
			if !contains(validNamespaces, value) {
				msg := "invalid namespace " + value
				if match := fuzzyMatch(value, validNamespaces); match != "" {
					msg += " (did you mean '" + match + "'?)"
				}
				c.fatal(c.Reporter.Errorf("invalid-namespace-property", plain.Span(), "%s", msg))
			}
			opts.Namespace = value
		case "accessors", "immutable", "preserveWhitespace":
			value, ok := c.staticBoolValue(plain)
			if !ok {
				c.fatal(c.Reporter.Errorf("invalid-options-attribute", plain.Span(),
					"'%s' must be a static boolean literal", plain.Name))
			}
			switch plain.Name {
			case "accessors":
				opts.Accessors = value
			case "immutable":
				opts.Immutable = value
			case "preserveWhitespace":
				opts.PreserveWhitespace = value
			}
		default:
			msg := "<svelte:options> has an unknown attribute " + plain.Name
			if match := fuzzyMatch(plain.Name, knownOptionsAttributes); match != "" {
				msg += " (did you mean '" + match + "'?)"
			}
			c.fatal(c.Reporter.Errorf("invalid-options-attribute", plain.Span(), "%s", msg))
		}
	}
	c.ComponentOptions = opts
}

// staticStringValue reads an attribute value that must be a plain string:
// either quoted text or a string-literal mustache.
func (c *Component) staticStringValue(attr *template.Attribute) (string, bool) {
	if attr.True || len(attr.Value) != 1 {
		return "", false
	}
	switch v := attr.Value[0].(type) {
	case *template.Text:
		return v.Data, true
	case *template.Mustache:
		if lit, ok := v.Expr.(*js.StringLit); ok {
			return lit.Value, true
		}
	}
	return "", false
}

func (c *Component) staticBoolValue(attr *template.Attribute) (bool, bool) {
	if attr.True {
		return true, true
	}
	if len(attr.Value) != 1 {
		return false, false
	}
	tag, ok := attr.Value[0].(*template.Mustache)
	if !ok {
		return false, false
	}
	lit, ok := tag.Expr.(*js.BoolLit)
	if !ok {
		return false, false
	}
	return lit.Value, true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// fuzzyMatch returns the candidate closest to input by edit distance, when
// close enough to plausibly be a typo.
func fuzzyMatch(input string, candidates []string) string {
	best := ""
	bestDist := len(input)/2 + 1
	for _, cand := range candidates {
		d := editDistance(strings.ToLower(input), strings.ToLower(cand))
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func (c *Component) warn(w diag.Warning) {
	if c.suppressions.Suppressed(w.Code) {
		return
	}
	c.Warnings = append(c.Warnings, w)
}

func (c *Component) fatal(err *diag.Error) {
	panic(err)
}
