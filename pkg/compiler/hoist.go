package compiler

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
)

// hoistInstance lifts fully static declarations and self-contained functions
// out of the instance body, so they run once per module rather than once per
// component instance.
func (c *Component) hoistInstance() {
	var kept []js.Stmt
	for _, stmt := range c.InstanceBody {
		if vd, ok := stmt.(*js.VarDecl); ok && c.hoistableVarDecl(vd) {
			for _, d := range vd.Declarators {
				if ident, ok := d.Pattern.(*js.Identifier); ok {
					c.Vars.Get(ident.Name).Hoistable = true
				}
			}
			c.Hoisted = append(c.Hoisted, stmt)
			continue
		}
		kept = append(kept, stmt)
	}

	fns := make(map[string]*fnInfo)
	for _, stmt := range kept {
		if fd, ok := stmt.(*js.FuncDecl); ok {
			fns[fd.Name] = c.functionInfo(fd)
		}
	}
	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := make(map[string]int)
	verdict := make(map[string]bool)
	var check func(name string) bool
	check = func(name string) bool {
		switch state[name] {
		case grey:
			return false
		case black:
			return verdict[name]
		}
		info := fns[name]
		state[name] = grey
		ok := !info.poisoned
		for _, r := range info.refs {
			if !ok {
				break
			}
			if r == name {
				continue
			}
			if _, isFn := fns[r]; isFn {
				ok = check(r)
				continue
			}
			v := c.Vars.Get(r)
			ok = v != nil && v.Hoistable
		}
		state[name] = black
		verdict[name] = ok
		return ok
	}

	c.InstanceBody = kept[:0]
	for _, stmt := range kept {
		if fd, ok := stmt.(*js.FuncDecl); ok && check(fd.Name) {
			if v := c.Vars.Get(fd.Name); v != nil {
				v.Hoistable = true
			}
			c.Hoisted = append(c.Hoisted, stmt)
			continue
		}
		c.InstanceBody = append(c.InstanceBody, stmt)
	}
}

// hoistableVarDecl reports whether every declarator binds a plain identifier
// to a literal that the component never writes or exports. In dev builds
// only const declarations qualify, so that tooling can still swap values at
// runtime.
func (c *Component) hoistableVarDecl(vd *js.VarDecl) bool {
	if vd.Kind != "const" && c.Options.Dev {
		return false
	}
	for _, d := range vd.Declarators {
		ident, ok := d.Pattern.(*js.Identifier)
		if !ok {
			return false
		}
		if d.Init == nil || !literalExpr(d.Init) {
			return false
		}
		v := c.Vars.Get(ident.Name)
		if v == nil || v.Reassigned || v.Mutated || v.ExportName != "" || v.Subscribable {
			return false
		}
	}
	return true
}

func literalExpr(expr js.Expr) bool {
	switch e := expr.(type) {
	case *js.NumberLit, *js.StringLit, *js.BoolLit, *js.NullLit, *js.RegexpLit:
		return true
	case *js.TemplateLit:
		return len(e.Exprs) == 0
	case *js.UnaryExpr:
		// Signed numbers stay hoistable.
		if e.Op == "-" || e.Op == "+" {
			_, isNum := e.Arg.(*js.NumberLit)
			return isNum
		}
	}
	return false
}

// fnInfo is the hoisting view of one top-level function: the instance-scope
// names it references, and whether any store subscription or injected $-name
// pins it to the instance.
type fnInfo struct {
	decl     *js.FuncDecl
	refs     []string
	poisoned bool
}

func (c *Component) functionInfo(fd *js.FuncDecl) *fnInfo {
	info := &fnInfo{decl: fd}
	span := fd.Span()
	for _, ref := range c.InstanceScopes.Refs {
		if !span.Contains(ref.Ident.Span()) {
			continue
		}
		name := ref.Ident.Name
		if strings.HasPrefix(name, "@") {
			continue
		}
		if strings.HasPrefix(name, "$") {
			info.poisoned = true
			continue
		}
		if ref.Scope.FindOwner(name) != c.InstanceScopes.Root {
			continue
		}
		info.refs = append(info.refs, name)
	}
	return info
}
