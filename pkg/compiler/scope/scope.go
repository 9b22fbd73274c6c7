// Package scope builds lexical scope trees over embedded-language syntax
// trees. One Scope exists per function or block construct; lookups walk the
// parent chain, so inner declarations shadow outer ones. The node-to-scope
// relation is keyed on construction-time node ids.
package scope

import "github.com/svelgo/svelgo/pkg/compiler/js"

// Declaration records one declared name within a scope.
type Declaration struct {
	Name    string
	Kind    string // var, let, const, function, param, catch, import
	Node    js.Node
	HasInit bool
}

// Writable reports whether the declaration may be reassigned.
func (d *Declaration) Writable() bool {
	return d.Kind == "var" || d.Kind == "let"
}

// Scope is one lexical scope. Fn marks function-level scopes, which var
// declarations attach to.
type Scope struct {
	Parent *Scope
	Fn     bool

	decls map[string]*Declaration
	order []string
}

func newScope(parent *Scope, fn bool) *Scope {
	return &Scope{Parent: parent, Fn: fn, decls: make(map[string]*Declaration)}
}

// Declare adds a declaration to the scope. A redeclaration of the same name
// keeps the first entry's position but updates the node, matching the
// last-binding-wins behavior of var.
func (s *Scope) Declare(d *Declaration) {
	if _, ok := s.decls[d.Name]; !ok {
		s.order = append(s.order, d.Name)
	}
	s.decls[d.Name] = d
}

// DeclaredHere returns the declaration of name in this scope only.
func (s *Scope) DeclaredHere(name string) (*Declaration, bool) {
	d, ok := s.decls[name]
	return d, ok
}

// Has reports whether name resolves anywhere on the scope chain.
func (s *Scope) Has(name string) bool {
	return s.FindOwner(name) != nil
}

// FindOwner walks the parent chain to the nearest scope declaring name, or
// nil when the name is free.
func (s *Scope) FindOwner(name string) *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if _, ok := sc.decls[name]; ok {
			return sc
		}
	}
	return nil
}

// Lookup resolves name along the scope chain.
func (s *Scope) Lookup(name string) (*Declaration, bool) {
	if owner := s.FindOwner(name); owner != nil {
		return owner.decls[name], true
	}
	return nil, false
}

// Declarations returns the scope's own declarations in declaration order.
func (s *Scope) Declarations() []*Declaration {
	out := make([]*Declaration, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.decls[name])
	}
	return out
}

// functionScope returns the nearest function-level scope, for var hoisting.
func (s *Scope) functionScope() *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Fn {
			return sc
		}
	}
	return s
}

// Ref is one reference occurrence together with the scope it appears in.
type Ref struct {
	Scope *Scope
	Ident *js.Identifier
}

// Info is the result of building scopes for one script.
type Info struct {
	Root   *Scope
	ByNode map[int]*Scope
	Refs   []Ref

	// Globals holds identifiers referenced but never declared in any
	// visited scope, keyed by name, with first-seen name order preserved.
	Globals     map[string][]*js.Identifier
	GlobalOrder []string
}

// ScopeOf returns the scope created by the node with the given id, if any.
func (i *Info) ScopeOf(id int) (*Scope, bool) {
	s, ok := i.ByNode[id]
	return s, ok
}

// Build constructs the scope tree, reference list and global set for a
// parsed program.
func Build(program *js.Program) *Info {
	b := &builder{
		info: &Info{
			ByNode:  make(map[int]*Scope),
			Globals: make(map[string][]*js.Identifier),
		},
	}
	root := newScope(nil, true)
	b.info.Root = root
	b.info.ByNode[program.ID()] = root
	for _, stmt := range program.Body {
		b.stmt(stmt, root)
	}
	// Globals resolve after the whole tree is visited so that forward
	// references to later declarations in the same scope are not
	// misclassified.
	for _, ref := range b.info.Refs {
		if ref.Scope.Has(ref.Ident.Name) {
			continue
		}
		name := ref.Ident.Name
		if _, seen := b.info.Globals[name]; !seen {
			b.info.GlobalOrder = append(b.info.GlobalOrder, name)
		}
		b.info.Globals[name] = append(b.info.Globals[name], ref.Ident)
	}
	return b.info
}

// BuildExpr builds scopes for a lone expression, as used by template
// mustaches and directives: the root scope holds nothing, so every name not
// bound inside the expression (arrow parameters and the like) surfaces as a
// global.
func BuildExpr(expr js.Expr) *Info {
	b := &builder{
		info: &Info{
			ByNode:  make(map[int]*Scope),
			Globals: make(map[string][]*js.Identifier),
		},
	}
	root := newScope(nil, true)
	b.info.Root = root
	b.expr(expr, root)
	for _, ref := range b.info.Refs {
		if ref.Scope.Has(ref.Ident.Name) {
			continue
		}
		name := ref.Ident.Name
		if _, seen := b.info.Globals[name]; !seen {
			b.info.GlobalOrder = append(b.info.GlobalOrder, name)
		}
		b.info.Globals[name] = append(b.info.Globals[name], ref.Ident)
	}
	return b.info
}

type builder struct {
	info *Info
}

func (b *builder) ref(ident *js.Identifier, s *Scope) {
	b.info.Refs = append(b.info.Refs, Ref{Scope: s, Ident: ident})
}

// declarePattern registers every name bound by pattern and walks the
// non-binding expressions inside it (defaults, computed keys).
func (b *builder) declarePattern(pattern js.Pattern, s *Scope, kind string, node js.Node, hasInit bool) {
	switch p := pattern.(type) {
	case *js.Identifier:
		s.Declare(&Declaration{Name: p.Name, Kind: kind, Node: node, HasInit: hasInit})
	case *js.ObjectPattern:
		for _, prop := range p.Props {
			if prop.Computed {
				b.expr(prop.Key, s)
			}
			b.declarePattern(prop.Value, s, kind, node, hasInit)
		}
		if p.Rest != nil {
			b.declarePattern(p.Rest, s, kind, node, hasInit)
		}
	case *js.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				b.declarePattern(el, s, kind, node, hasInit)
			}
		}
		if p.Rest != nil {
			b.declarePattern(p.Rest, s, kind, node, hasInit)
		}
	case *js.AssignPattern:
		b.declarePattern(p.Target, s, kind, node, true)
		b.expr(p.Default, s)
	case *js.RestElement:
		b.declarePattern(p.Arg, s, kind, node, hasInit)
	}
}

func (b *builder) varDecl(decl *js.VarDecl, s *Scope) {
	target := s
	if decl.Kind == "var" {
		target = s.functionScope()
	}
	for _, d := range decl.Declarators {
		b.declarePattern(d.Pattern, target, decl.Kind, decl, d.Init != nil)
		if d.Init != nil {
			b.expr(d.Init, s)
		}
	}
}

func (b *builder) funcScope(id int, params []js.Pattern, body js.Node, s *Scope) {
	inner := newScope(s, true)
	b.info.ByNode[id] = inner
	for _, param := range params {
		b.declarePattern(param, inner, "param", param, true)
	}
	switch bn := body.(type) {
	case *js.Block:
		// The body block shares the parameter scope.
		for _, stmt := range bn.Body {
			b.stmt(stmt, inner)
		}
	case js.Expr:
		b.expr(bn, inner)
	}
}

func (b *builder) stmt(stmt js.Stmt, s *Scope) {
	switch v := stmt.(type) {
	case *js.VarDecl:
		b.varDecl(v, s)
	case *js.FuncDecl:
		s.Declare(&Declaration{Name: v.Name, Kind: "function", Node: v, HasInit: true})
		b.funcScope(v.ID(), v.Params, v.Body, s)
	case *js.Block:
		inner := newScope(s, false)
		b.info.ByNode[v.ID()] = inner
		for _, st := range v.Body {
			b.stmt(st, inner)
		}
	case *js.If:
		b.expr(v.Test, s)
		b.stmt(v.Cons, s)
		if v.Else != nil {
			b.stmt(v.Else, s)
		}
	case *js.For:
		inner := newScope(s, false)
		b.info.ByNode[v.ID()] = inner
		if v.Init != nil {
			b.stmt(v.Init, inner)
		}
		b.expr(v.Test, inner)
		b.expr(v.Update, inner)
		b.stmt(v.Body, inner)
	case *js.ForIn:
		inner := newScope(s, false)
		b.info.ByNode[v.ID()] = inner
		switch left := v.Left.(type) {
		case *js.VarDecl:
			b.varDecl(left, inner)
		case js.Expr:
			b.expr(left, inner)
		}
		b.expr(v.Right, inner)
		b.stmt(v.Body, inner)
	case *js.While:
		b.expr(v.Test, s)
		b.stmt(v.Body, s)
	case *js.DoWhile:
		b.stmt(v.Body, s)
		b.expr(v.Test, s)
	case *js.Return:
		b.expr(v.Arg, s)
	case *js.Labeled:
		b.stmt(v.Body, s)
	case *js.Throw:
		b.expr(v.Arg, s)
	case *js.Try:
		b.stmt(v.Block, s)
		if v.CatchBody != nil {
			inner := newScope(s, false)
			b.info.ByNode[v.CatchBody.ID()] = inner
			if v.CatchParam != nil {
				b.declarePattern(v.CatchParam, inner, "catch", v.CatchParam, true)
			}
			for _, st := range v.CatchBody.Body {
				b.stmt(st, inner)
			}
		}
		if v.Finally != nil {
			b.stmt(v.Finally, s)
		}
	case *js.ExprStmt:
		b.expr(v.Expr, s)
	case *js.ImportDecl:
		for _, spec := range v.Specifiers {
			s.Declare(&Declaration{Name: spec.Local, Kind: "import", Node: v, HasInit: true})
		}
	case *js.ExportNamed:
		if v.Decl != nil {
			b.stmt(v.Decl, s)
		}
	case *js.ExportDefault:
		b.expr(v.Value, s)
	}
}

func (b *builder) expr(expr js.Expr, s *Scope) {
	if expr == nil {
		return
	}
	switch v := expr.(type) {
	case *js.Identifier:
		b.ref(v, s)
	case *js.MemberExpr:
		b.expr(v.Object, s)
		if v.Computed {
			b.expr(v.Property, s)
		}
	case *js.CallExpr:
		b.expr(v.Callee, s)
		for _, a := range v.Args {
			b.expr(a, s)
		}
	case *js.NewExpr:
		b.expr(v.Callee, s)
		for _, a := range v.Args {
			b.expr(a, s)
		}
	case *js.UnaryExpr:
		b.expr(v.Arg, s)
	case *js.UpdateExpr:
		b.expr(v.Arg, s)
	case *js.BinaryExpr:
		b.expr(v.Left, s)
		b.expr(v.Right, s)
	case *js.CondExpr:
		b.expr(v.Test, s)
		b.expr(v.Cons, s)
		b.expr(v.Alt, s)
	case *js.AssignExpr:
		b.expr(v.Target, s)
		b.expr(v.Value, s)
	case *js.SeqExpr:
		for _, e := range v.Exprs {
			b.expr(e, s)
		}
	case *js.SpreadElement:
		b.expr(v.Arg, s)
	case *js.ParenExpr:
		b.expr(v.Inner, s)
	case *js.ArrayLit:
		for _, e := range v.Elements {
			b.expr(e, s)
		}
	case *js.ObjectLit:
		for _, entry := range v.Properties {
			switch prop := entry.(type) {
			case *js.Property:
				if prop.Computed {
					b.expr(prop.Key, s)
				}
				b.expr(prop.Value, s)
			case *js.SpreadElement:
				b.expr(prop.Arg, s)
			}
		}
	case *js.TemplateLit:
		for _, e := range v.Exprs {
			b.expr(e, s)
		}
	case *js.ArrowFn:
		b.funcScope(v.ID(), v.Params, v.Body, s)
	case *js.FuncExpr:
		inner := newScope(s, true)
		b.info.ByNode[v.ID()] = inner
		if v.Name != "" {
			inner.Declare(&Declaration{Name: v.Name, Kind: "function", Node: v, HasInit: true})
		}
		for _, param := range v.Params {
			b.declarePattern(param, inner, "param", param, true)
		}
		for _, stmt := range v.Body.Body {
			b.stmt(stmt, inner)
		}
	case *js.ObjectPattern, *js.ArrayPattern:
		// Destructuring assignment targets: every bound name is a
		// reference, defaults and computed keys are expressions.
		b.assignTargetPattern(expr.(js.Pattern), s)
	}
}

// assignTargetPattern walks a destructuring pattern used as an assignment
// target (not a binding), registering references.
func (b *builder) assignTargetPattern(pattern js.Pattern, s *Scope) {
	switch p := pattern.(type) {
	case *js.Identifier:
		b.ref(p, s)
	case *js.MemberExpr:
		b.expr(p, s)
	case *js.ObjectPattern:
		for _, prop := range p.Props {
			if prop.Computed {
				b.expr(prop.Key, s)
			}
			b.assignTargetPattern(prop.Value, s)
		}
		if p.Rest != nil {
			b.assignTargetPattern(p.Rest, s)
		}
	case *js.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				b.assignTargetPattern(el, s)
			}
		}
		if p.Rest != nil {
			b.assignTargetPattern(p.Rest, s)
		}
	case *js.AssignPattern:
		b.assignTargetPattern(p.Target, s)
		b.expr(p.Default, s)
	case *js.RestElement:
		b.assignTargetPattern(p.Arg, s)
	}
}
