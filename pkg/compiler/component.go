package compiler

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/diag"
	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
	"github.com/svelgo/svelgo/pkg/compiler/scope"
	"github.com/svelgo/svelgo/pkg/compiler/template"
)

// Component is the analyzed form of one parsed document: the combined
// variable table, extracted imports and exports, hoisted statements, ordered
// reactive declarations and the accumulated warnings. It is the input to the
// renderer and the emit backend.
type Component struct {
	Source   string
	Options  Options
	Doc      *template.Document
	Arena    *js.Arena
	Reporter *diag.Reporter

	ComponentOptions ComponentOptions
	Vars             *VarTable
	Warnings         []diag.Warning

	// Imports collects import declarations from both scripts, module
	// script first, in source order.
	Imports []*js.ImportDecl

	// Hoisted holds instance statements lifted out of the per-instance
	// setup: fully static declarations and hoistable functions.
	Hoisted []js.Stmt

	// ModuleBody and InstanceBody are the script bodies with imports and
	// export wrappers stripped; InstanceBody additionally excludes
	// hoisted statements and reactive declarations.
	ModuleBody   []js.Stmt
	InstanceBody []js.Stmt

	// Reactive holds the $-labeled declarations in dependency order.
	Reactive []*ReactiveDeclaration

	// HasNamedSlots is set when the template declares a named <slot>.
	HasNamedSlots bool

	// ContextualNames lists template-scoped names (each contexts, let
	// directives, await bindings) in first-appearance order.
	ContextualNames []string
	contextualSeen  map[string]bool

	ModuleScopes   *scope.Info
	InstanceScopes *scope.Info

	// injectedReactive names are reactive assignment targets with no
	// declaration; they materialize as variables on first reference.
	injectedReactive map[string]bool

	// identScopes maps identifier node ids to the scope each reference
	// occurred in, for shadowing-aware mutation tracking.
	identScopes map[int]*scope.Scope

	// storeReads records $-shadow names the instance script actually
	// reads, as opposed to only assigning.
	storeReads map[string]bool

	suppressions diag.Suppressions
}

// ReactiveDeclaration is one top-level $-labeled statement together with the
// names it assigns and the names it reads.
type ReactiveDeclaration struct {
	Node         *js.Labeled
	Assignees    []string
	Dependencies []string

	assignees    map[string]bool
	dependencies map[string]bool
}

// AssignsTo reports whether the declaration assigns name.
func (d *ReactiveDeclaration) AssignsTo(name string) bool {
	return d.assignees[name]
}

// Analyze runs the full analysis over a parsed document. The returned error,
// if any, is a *diag.Error; warnings accumulate on the component.
func Analyze(source string, doc *template.Document, arena *js.Arena, options Options) (c *Component, err error) {
	if options.Format == "" {
		options.Format = "esm"
	}
	c = &Component{
		Source:           source,
		Options:          options,
		Doc:              doc,
		Arena:            arena,
		Reporter:         diag.NewReporter(source, options.Filename),
		Vars:             NewVarTable(),
		injectedReactive: make(map[string]bool),
		identScopes:      make(map[int]*scope.Scope),
		contextualSeen:   make(map[string]bool),
		storeReads:       make(map[string]bool),
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*diag.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	c.readComponentOptions()
	c.analyzeModule()
	c.prepareInstance()
	c.walkTemplate()
	c.analyzeInstance()
	c.finishAnalysis()
	return c, nil
}

// analyzeModule processes <script context="module">: declarations join the
// variable table as module-scoped and hoistable, exports get their export
// names, and store subscriptions are rejected.
func (c *Component) analyzeModule() {
	if c.Doc.Module == nil {
		return
	}
	prog := c.Doc.Module.Program
	c.ModuleScopes = scope.Build(prog)

	for _, d := range c.ModuleScopes.Root.Declarations() {
		c.checkDeclaredName(d.Name, d.Node.Span())
		v := c.Vars.Add(&Variable{
			Name:        d.Name,
			Module:      true,
			Hoistable:   true,
			Writable:    d.Writable(),
			Initialised: d.HasInit,
			Node:        d.Node,
		})
		if imp, ok := d.Node.(*js.ImportDecl); ok {
			v.ImportedFrom = imp.Source
		}
	}
	for _, name := range c.ModuleScopes.GlobalOrder {
		first := c.ModuleScopes.Globals[name][0]
		if strings.HasPrefix(name, "$") {
			c.fatal(c.Reporter.Errorf("illegal-subscription", first.Span(),
				"cannot reference store value inside <script context=\"module\">"))
		}
		c.Vars.Add(&Variable{Name: name, Global: true, Hoistable: true, Node: first})
	}
	c.recordRefScopes(c.ModuleScopes)
	c.extractModuleBody(prog)
}

// extractModuleBody splits the module program into imports, exports and the
// residual body.
func (c *Component) extractModuleBody(prog *js.Program) {
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *js.ImportDecl:
			c.Imports = append(c.Imports, s)
		case *js.ExportDefault:
			c.fatal(c.Reporter.Errorf("default-export", s.Span(),
				"a component cannot have a default export"))
		case *js.ExportNamed:
			c.applyExport(s, true)
			if s.Decl != nil {
				c.ModuleBody = append(c.ModuleBody, s.Decl)
			}
		default:
			c.ModuleBody = append(c.ModuleBody, stmt)
		}
	}
}

// applyExport records export names on the exported variables. module selects
// which script the export came from, affecting only diagnostics.
func (c *Component) applyExport(s *js.ExportNamed, module bool) {
	if s.HasSource {
		c.fatal(c.Reporter.Errorf("illegal-reexport", s.Span(),
			"cannot re-export from another module inside a component"))
	}
	if s.Decl != nil {
		switch decl := s.Decl.(type) {
		case *js.VarDecl:
			var idents []*js.Identifier
			for _, d := range decl.Declarators {
				idents = js.PatternNames(d.Pattern, idents)
			}
			for _, ident := range idents {
				c.exportName(ident.Name, ident.Name, ident.Span())
			}
		case *js.FuncDecl:
			c.exportName(decl.Name, decl.Name, decl.Span())
		default:
			c.fatal(c.Reporter.Errorf("invalid-export", s.Span(),
				"unexpected exported declaration"))
		}
		return
	}
	for _, spec := range s.Specifiers {
		c.exportName(spec.Local, spec.Exported, spec.Span())
	}
	_ = module
}

func (c *Component) exportName(local, exported string, span pos.Span) {
	v := c.Vars.Get(local)
	if v == nil {
		c.fatal(c.Reporter.Errorf("missing-declaration", span,
			"'%s' is exported but not declared", local))
	}
	v.ExportName = exported
}

// checkDeclaredName rejects $-prefixed declarations and imports; the $
// namespace belongs to store subscriptions and compiler-injected names.
func (c *Component) checkDeclaredName(name string, span pos.Span) {
	if strings.HasPrefix(name, "$") {
		c.fatal(c.Reporter.Errorf("illegal-declaration", span,
			"the $ prefix is reserved, and cannot be used for variable and import names"))
	}
}

// recordRefScopes indexes every identifier reference by node id for later
// shadowing checks.
func (c *Component) recordRefScopes(info *scope.Info) {
	for _, ref := range info.Refs {
		c.identScopes[ref.Ident.ID()] = ref.Scope
	}
}

// resolveTopLevel reports whether an identifier reference resolves to the
// instance top scope or is entirely free. References owned by inner scopes
// (shadowed names, function locals) return false.
func (c *Component) resolveTopLevel(ident *js.Identifier) bool {
	sc, ok := c.identScopes[ident.ID()]
	if !ok {
		return false
	}
	owner := sc.FindOwner(ident.Name)
	return owner == nil || (c.InstanceScopes != nil && owner == c.InstanceScopes.Root)
}

// classifyFreeName resolves a free identifier from the instance script or
// the template, creating variables on demand. fromTemplate selects the
// reference flag to set and the wording of the missing-declaration warning.
func (c *Component) classifyFreeName(name string, span pos.Span, fromTemplate bool) *Variable {
	if v := c.Vars.Get(name); v != nil {
		c.markReferenced(v, fromTemplate)
		if strings.HasPrefix(name, "$") && !strings.HasPrefix(name, "$$") {
			c.markSubscription(name, span, fromTemplate)
		}
		return v
	}
	switch {
	case name == "$$props":
		v := c.Vars.Add(&Variable{Name: name, Injected: true})
		c.markReferenced(v, fromTemplate)
		return v
	case name == "$$slots" && fromTemplate:
		v := c.Vars.Add(&Variable{Name: name, Injected: true})
		c.markReferenced(v, fromTemplate)
		return v
	case strings.HasPrefix(name, "$$"):
		c.fatal(c.Reporter.Errorf("illegal-global", span,
			"%s is an illegal variable name", name))
	case name == "$":
		c.fatal(c.Reporter.Errorf("illegal-global", span,
			"$ is an illegal variable name"))
	case strings.HasPrefix(name, "$"):
		c.markSubscription(name, span, fromTemplate)
		shadow := c.Vars.Add(&Variable{
			Name:     name,
			Injected: true,
			Writable: true,
			Mutated:  true,
		})
		c.markReferenced(shadow, fromTemplate)
		return shadow
	case c.injectedReactive[name]:
		v := c.Vars.Add(&Variable{
			Name:        name,
			Injected:    true,
			Writable:    true,
			Mutated:     true,
			Initialised: true,
		})
		c.markReferenced(v, fromTemplate)
		return v
	}
	if fromTemplate {
		if c.Doc.Instance == nil {
			c.warn(c.Reporter.Warningf("missing-declaration", span,
				"'%s' is not defined. Consider adding a <script> tag with 'export let %s' to declare a prop", name, name))
		} else {
			c.warn(c.Reporter.Warningf("missing-declaration", span,
				"'%s' is not defined", name))
		}
	}
	v := c.Vars.Add(&Variable{Name: name, Global: true, Hoistable: true})
	c.markReferenced(v, fromTemplate)
	return v
}

// markSubscription records a store subscription $name: the underlying name
// becomes subscribable, materializing if it has no declaration yet.
func (c *Component) markSubscription(name string, span pos.Span, fromTemplate bool) {
	under := strings.TrimPrefix(name, "$")
	v := c.Vars.Get(under)
	if v == nil {
		if c.injectedReactive[under] {
			v = c.classifyFreeName(under, span, false)
		} else {
			c.warn(c.Reporter.Warningf("missing-declaration", span,
				"'%s' is not defined", under))
			v = c.Vars.Add(&Variable{Name: under, Global: true, Hoistable: true})
		}
	}
	v.Subscribable = true
	c.markReferenced(v, fromTemplate)
}

func (c *Component) markReferenced(v *Variable, fromTemplate bool) {
	if fromTemplate {
		v.Referenced = true
	} else {
		v.ReferencedFromScript = true
	}
}

// finishAnalysis emits the end-of-compilation warnings that need the full
// usage picture.
func (c *Component) finishAnalysis() {
	for _, v := range c.Vars.All() {
		if v.Prop() && v.Writable && !v.Referenced && !v.ReferencedFromScript &&
			!v.Mutated && !v.Reassigned && !v.IsReactiveDependency {
			span := pos.Span{}
			if v.Node != nil {
				span = v.Node.Span()
			}
			c.warn(c.Reporter.Warningf("unused-export-let", span,
				"component has unused export property '%s'. If it is for external reference only, please consider using export const %s", v.Name, v.Name))
		}
		if strings.HasPrefix(v.Name, "$") && !strings.HasPrefix(v.Name, "$$") &&
			v.Injected && v.Reassigned && !v.Referenced && !c.storeReads[v.Name] {
			span := pos.Span{}
			if under := c.Vars.Get(strings.TrimPrefix(v.Name, "$")); under != nil && under.Node != nil {
				span = under.Node.Span()
			}
			c.warn(c.Reporter.Warningf("unused-store-subscription", span,
				"store value '%s' is assigned to but never read", v.Name))
		}
	}
}
