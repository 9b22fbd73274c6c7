package compiler

import (
	"strconv"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/scope"
)

// prepareInstance runs the pre-template pass over the instance script: loop
// guards are injected, scopes are built once over the final tree, reactive
// assignment targets without declarations are pre-registered, and every
// top-level declaration and free identifier is classified into the variable
// table.
func (c *Component) prepareInstance() {
	if c.Doc.Instance == nil {
		return
	}
	prog := c.Doc.Instance.Program
	if c.Options.Dev && c.Options.LoopGuardTimeout > 0 {
		c.wrapLoopGuards(prog)
	}
	c.InstanceScopes = scope.Build(prog)
	c.recordRefScopes(c.InstanceScopes)

	// Reactive assignment targets with no declaration anywhere become
	// injected names; they must be known before free identifiers are
	// classified so that later references resolve to them.
	for _, stmt := range prog.Body {
		labeled, ok := stmt.(*js.Labeled)
		if !ok || labeled.Label != "$" {
			continue
		}
		for _, target := range assignmentTargets(labeled.Body) {
			name := target.Root.Name
			if strings.HasPrefix(name, "$") {
				continue
			}
			if sc, ok := c.identScopes[target.Root.ID()]; ok && sc.FindOwner(name) != nil {
				continue
			}
			if c.Vars.Get(name) != nil {
				continue
			}
			c.injectedReactive[name] = true
		}
	}

	for _, d := range c.InstanceScopes.Root.Declarations() {
		c.checkDeclaredName(d.Name, d.Node.Span())
		v := c.Vars.Get(d.Name)
		if v == nil {
			v = c.Vars.Add(&Variable{Name: d.Name})
		}
		// An instance declaration shadows a module or global entry of
		// the same name; the instance's usage flags win.
		v.Module = false
		v.Global = false
		v.Writable = d.Writable()
		v.Initialised = d.HasInit
		v.Node = d.Node
		v.Hoistable = false
		if imp, ok := d.Node.(*js.ImportDecl); ok {
			v.ImportedFrom = imp.Source
			v.Hoistable = true
		}
	}
	for _, name := range c.InstanceScopes.GlobalOrder {
		if strings.HasPrefix(name, "@") {
			continue
		}
		c.classifyFreeName(name, c.InstanceScopes.Globals[name][0].Span(), false)
	}
}

// analyzeInstance runs the post-template pass: imports, exports, mutation
// tracking, reactive extraction and hoisting.
func (c *Component) analyzeInstance() {
	if c.Doc.Instance == nil {
		return
	}
	prog := c.Doc.Instance.Program

	for _, ref := range c.InstanceScopes.Refs {
		if ref.Scope.FindOwner(ref.Ident.Name) != c.InstanceScopes.Root {
			continue
		}
		if v := c.Vars.Get(ref.Ident.Name); v != nil {
			v.ReferencedFromScript = true
		}
	}
	c.trackMutations(prog)
	c.warnNestedReactive(prog)

	var reactive []*ReactiveDeclaration
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *js.ImportDecl:
			c.Imports = append(c.Imports, s)
		case *js.ExportDefault:
			c.fatal(c.Reporter.Errorf("default-export", s.Span(),
				"a component cannot have a default export"))
		case *js.ExportNamed:
			c.applyExport(s, false)
			if s.Decl != nil {
				c.InstanceBody = append(c.InstanceBody, s.Decl)
			}
		case *js.Labeled:
			if s.Label == "$" {
				reactive = append(reactive, c.extractReactive(s))
				continue
			}
			c.InstanceBody = append(c.InstanceBody, s)
		default:
			c.InstanceBody = append(c.InstanceBody, stmt)
		}
	}
	c.orderReactive(reactive)
	c.hoistInstance()
}

// trackMutations walks the whole instance program and marks assignments and
// updates whose target resolves to the component's top scope. Targets owned
// by inner scopes are shadowed locals and do not touch component state.
// Afterwards it distinguishes store shadows that are only ever written from
// ones that are actually read.
func (c *Component) trackMutations(prog *js.Program) {
	writeTargets := make(map[int]bool)
	js.Walk(prog, func(n js.Node) bool {
		switch v := n.(type) {
		case *js.AssignExpr:
			c.markWrites(v.Target, writeTargets)
		case *js.UpdateExpr:
			c.markWrites(v.Arg, writeTargets)
		}
		return true
	}, nil)

	for _, ref := range c.InstanceScopes.Refs {
		name := ref.Ident.Name
		if !strings.HasPrefix(name, "$") || strings.HasPrefix(name, "$$") {
			continue
		}
		if !writeTargets[ref.Ident.ID()] {
			c.storeReads[name] = true
		}
	}
}

// markWrites marks each root identifier of an assignment target as
// reassigned (direct identifier) or mutated (member or destructured write).
func (c *Component) markWrites(target js.Expr, writeTargets map[int]bool) {
	for _, t := range collectTargets(target, false) {
		writeTargets[t.Root.ID()] = true
		if !c.resolveTopLevel(t.Root) {
			continue
		}
		c.markWrite(t.Root.Name, t.Member)
	}
}

func (c *Component) markWrite(name string, member bool) {
	v := c.Vars.Get(name)
	if v == nil {
		return
	}
	if member {
		v.Mutated = true
	} else {
		v.Reassigned = true
	}
	if strings.HasPrefix(name, "$") && !strings.HasPrefix(name, "$$") {
		// Writing $store updates the underlying store's value.
		if under := c.Vars.Get(strings.TrimPrefix(name, "$")); under != nil {
			under.Mutated = true
		}
	}
}

// warnNestedReactive flags $-labels that are not direct children of the
// program; they are ordinary labels to the language but almost always a
// mistake.
func (c *Component) warnNestedReactive(prog *js.Program) {
	top := make(map[int]bool, len(prog.Body))
	for _, stmt := range prog.Body {
		top[stmt.ID()] = true
	}
	js.Walk(prog, func(n js.Node) bool {
		if l, ok := n.(*js.Labeled); ok && l.Label == "$" && !top[l.ID()] {
			c.warn(c.Reporter.Warningf("non-top-level-reactive-declaration", l.Span(),
				"$: has no effect outside of the top-level of the instance script"))
		}
		return true
	}, nil)
}

// assignTarget is one root of an assignment target: the identifier at the
// base of the written reference, whether the write goes through a member
// access, and the assignment operator.
type assignTarget struct {
	Root   *js.Identifier
	Member bool
}

// assignmentTargets collects the targets of every assignment and update
// expression inside n.
func assignmentTargets(n js.Node) []assignTarget {
	var out []assignTarget
	js.Walk(n, func(node js.Node) bool {
		switch v := node.(type) {
		case *js.AssignExpr:
			out = append(out, collectTargets(v.Target, false)...)
		case *js.UpdateExpr:
			out = append(out, collectTargets(v.Arg, false)...)
		}
		return true
	}, nil)
	return out
}

// collectTargets resolves an assignment target expression to its root
// identifiers. Destructuring targets yield one entry per bound position;
// defaults contribute their target side only.
func collectTargets(target js.Expr, member bool) []assignTarget {
	switch t := target.(type) {
	case *js.Identifier:
		return []assignTarget{{Root: t, Member: member}}
	case *js.ParenExpr:
		return collectTargets(t.Inner, member)
	case *js.MemberExpr:
		if root := rootIdentifier(t); root != nil {
			return []assignTarget{{Root: root, Member: true}}
		}
		return nil
	case *js.ArrayLit:
		var out []assignTarget
		for _, el := range t.Elements {
			if el == nil {
				continue
			}
			if spread, ok := el.(*js.SpreadElement); ok {
				out = append(out, collectTargets(spread.Arg, member)...)
				continue
			}
			out = append(out, collectTargets(el, member)...)
		}
		return out
	case *js.ObjectLit:
		var out []assignTarget
		for _, entry := range t.Properties {
			switch prop := entry.(type) {
			case *js.Property:
				out = append(out, collectTargets(prop.Value, member)...)
			case *js.SpreadElement:
				out = append(out, collectTargets(prop.Arg, member)...)
			}
		}
		return out
	case *js.AssignExpr:
		// A default inside a destructuring target: [a = 1] parses as an
		// assignment in expression position.
		return collectTargets(t.Target, member)
	}
	return nil
}

// rootIdentifier returns the identifier at the base of a member chain, or
// nil when the chain bottoms out in a call, this or a literal.
func rootIdentifier(expr js.Expr) *js.Identifier {
	for {
		switch e := expr.(type) {
		case *js.Identifier:
			return e
		case *js.MemberExpr:
			expr = e.Object
		case *js.ParenExpr:
			expr = e.Inner
		default:
			return nil
		}
	}
}

// wrapLoopGuards rewrites every loop in the program so that each iteration
// calls a guard that throws once the configured timeout elapses. The guard
// helper is referenced through the @-prefixed runtime namespace and bound
// once per loop.
func (c *Component) wrapLoopGuards(prog *js.Program) {
	for i, stmt := range prog.Body {
		prog.Body[i] = c.guardStmt(stmt)
	}
}

func (c *Component) guardStmt(stmt js.Stmt) js.Stmt {
	switch v := stmt.(type) {
	case *js.While:
		v.Body = c.guardStmt(v.Body)
		return c.guardLoop(v, func(body js.Stmt) { v.Body = body }, v.Body)
	case *js.DoWhile:
		v.Body = c.guardStmt(v.Body)
		return c.guardLoop(v, func(body js.Stmt) { v.Body = body }, v.Body)
	case *js.For:
		if v.Body != nil {
			v.Body = c.guardStmt(v.Body)
		}
		return c.guardLoop(v, func(body js.Stmt) { v.Body = body }, v.Body)
	case *js.ForIn:
		v.Body = c.guardStmt(v.Body)
		return c.guardLoop(v, func(body js.Stmt) { v.Body = body }, v.Body)
	case *js.Block:
		for i, s := range v.Body {
			v.Body[i] = c.guardStmt(s)
		}
	case *js.If:
		v.Cons = c.guardStmt(v.Cons)
		if v.Else != nil {
			v.Else = c.guardStmt(v.Else)
		}
	case *js.Labeled:
		v.Body = c.guardStmt(v.Body)
	case *js.Try:
		c.guardStmt(v.Block)
		if v.CatchBody != nil {
			c.guardStmt(v.CatchBody)
		}
		if v.Finally != nil {
			c.guardStmt(v.Finally)
		}
	case *js.FuncDecl:
		c.guardStmt(v.Body)
	case *js.ExportNamed:
		if v.Decl != nil {
			v.Decl = c.guardStmt(v.Decl)
		}
	}
	return stmt
}

// guardLoop wraps one loop statement in a block that binds the guard and
// prepends a guard call to the loop body.
func (c *Component) guardLoop(loop js.Stmt, setBody func(js.Stmt), body js.Stmt) js.Stmt {
	span := loop.Span()
	a := c.Arena
	guard := a.Ident("@loop_guard", span)
	timeout := a.Number(strconv.Itoa(c.Options.LoopGuardTimeout), span)
	bind := a.Declaration("const", "$$guard", a.Call(guard, []js.Expr{timeout}, span), span)
	call := a.Statement(a.Call(a.Ident("$$guard", span), nil, span))
	if inner, ok := body.(*js.Block); ok {
		inner.Body = append([]js.Stmt{call}, inner.Body...)
	} else {
		setBody(a.BlockOf(span, call, body))
	}
	return a.BlockOf(span, bind, loop)
}
