package compiler

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
)

// extractReactive analyzes one top-level $-labeled statement: which
// component names it assigns and which it reads. Reads through the exact
// identifier nodes claimed as assignment targets do not count as
// dependencies, except that a compound assignment to a direct identifier
// reads its own target.
func (c *Component) extractReactive(labeled *js.Labeled) *ReactiveDeclaration {
	decl := &ReactiveDeclaration{
		Node:         labeled,
		assignees:    make(map[string]bool),
		dependencies: make(map[string]bool),
	}
	addAssignee := func(name string) {
		if !decl.assignees[name] {
			decl.assignees[name] = true
			decl.Assignees = append(decl.Assignees, name)
		}
	}
	addDep := func(name string) {
		if !decl.dependencies[name] {
			decl.dependencies[name] = true
			decl.Dependencies = append(decl.Dependencies, name)
		}
	}

	targetNodes := make(map[int]bool)
	js.Walk(labeled.Body, func(n js.Node) bool {
		var targets []assignTarget
		compound := false
		switch v := n.(type) {
		case *js.AssignExpr:
			targets = collectTargets(v.Target, false)
			compound = v.Op != "="
		case *js.UpdateExpr:
			targets = collectTargets(v.Arg, false)
			compound = true
		default:
			return true
		}
		for _, t := range targets {
			if !c.resolveTopLevel(t.Root) {
				continue
			}
			addAssignee(t.Root.Name)
			targetNodes[t.Root.ID()] = true
			if compound && !t.Member {
				addDep(t.Root.Name)
			}
		}
		return true
	}, nil)

	span := labeled.Span()
	for _, ref := range c.InstanceScopes.Refs {
		if !span.Contains(ref.Ident.Span()) {
			continue
		}
		if targetNodes[ref.Ident.ID()] {
			continue
		}
		name := ref.Ident.Name
		if strings.HasPrefix(name, "@") {
			continue
		}
		if owner := ref.Scope.FindOwner(name); owner != nil && owner != c.InstanceScopes.Root {
			continue
		}
		v := c.Vars.Get(name)
		if v == nil && !strings.HasPrefix(name, "$") {
			continue
		}
		addDep(name)
		if v != nil {
			v.IsReactiveDependency = true
		}
		if strings.HasPrefix(name, "$") && !strings.HasPrefix(name, "$$") {
			if under := c.Vars.Get(strings.TrimPrefix(name, "$")); under != nil {
				under.IsReactiveDependency = true
			}
		}
	}

	// Assignees with no declaration materialize here.
	for _, name := range decl.Assignees {
		if c.Vars.Get(name) == nil {
			c.classifyFreeName(name, labeled.Span(), false)
		}
	}
	return decl
}

// orderReactive checks the reactive declarations for cycles and stores them
// in dependency order: before a declaration is placed, every declaration
// assigning one of its dependencies is placed first, each outer insertion
// guarded by its own seen set so shared dependencies are processed once.
func (c *Component) orderReactive(decls []*ReactiveDeclaration) {
	if len(decls) == 0 {
		return
	}
	assigners := make(map[string][]*ReactiveDeclaration)
	for _, d := range decls {
		for _, name := range d.Assignees {
			assigners[name] = append(assigners[name], d)
		}
	}
	if cycle := reactiveCycle(decls); len(cycle) > 0 {
		first := assigners[cycle[0]][0]
		c.fatal(c.Reporter.Errorf("cyclical-reactive-declaration", first.Node.Span(),
			"cyclical dependency detected: %s", strings.Join(cycle, " → ")))
	}

	placed := make(map[*ReactiveDeclaration]bool, len(decls))
	for _, d := range decls {
		seen := make(map[string]bool)
		var place func(x *ReactiveDeclaration)
		place = func(x *ReactiveDeclaration) {
			if placed[x] {
				return
			}
			for _, dep := range x.Dependencies {
				if x.assignees[dep] || seen[dep] {
					continue
				}
				seen[dep] = true
				for _, e := range assigners[dep] {
					if e != x {
						place(e)
					}
				}
			}
			placed[x] = true
			c.Reactive = append(c.Reactive, x)
		}
		place(d)
	}
}

// reactiveCycle looks for a cycle in the assignee-to-dependency name graph
// and returns its path, ending on the starting name, or nil.
func reactiveCycle(decls []*ReactiveDeclaration) []string {
	edges := make(map[string][]string)
	var names []string
	addEdge := func(from, to string) {
		if _, ok := edges[from]; !ok {
			names = append(names, from)
		}
		edges[from] = append(edges[from], to)
	}
	for _, d := range decls {
		for _, a := range d.Assignees {
			for _, dep := range d.Dependencies {
				if d.assignees[dep] {
					continue
				}
				addEdge(a, dep)
			}
		}
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := make(map[string]int)
	var stack []string
	var cycle []string
	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = grey
		stack = append(stack, name)
		for _, next := range edges[name] {
			switch state[next] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == next {
						start = i
						break
					}
				}
				cycle = append(append([]string{}, stack[start:]...), next)
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = black
		return false
	}
	for _, name := range names {
		if state[name] == white && visit(name) {
			return cycle
		}
	}
	return nil
}
