package compiler

import (
	"sort"
	"strconv"
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

// ContextMember is one slot of the runtime context array.
type ContextMember struct {
	Name string

	// Index is the slot in the context array: registration order at
	// first, overwritten once after the priority sort. Slot indices
	// always form a dense permutation of [0, N).
	Index int

	// IsContextual marks members declared by a nested rendering scope
	// (each contexts, let bindings, await values) rather than the
	// component's scripts.
	IsContextual bool

	Priority int
	Variable *Variable
}

// Renderer allocates runtime context slots for a fully analyzed component
// and answers the two code-generation questions: which dirty bits does a set
// of names cover, and what expression invalidates a written name.
type Renderer struct {
	Component *Component

	Context []*ContextMember

	// ContextOverflow is set when more than 31 members exist and dirty
	// tracking switches from a single bitmask to an array of them.
	ContextOverflow bool

	lookup map[string]*ContextMember
}

// NewRenderer registers context members for every variable that needs a
// runtime slot, sorts them by priority and freezes the slot indices.
func NewRenderer(c *Component) *Renderer {
	r := &Renderer{Component: c, lookup: make(map[string]*ContextMember)}

	for _, v := range c.Vars.All() {
		if v.Hoistable && !(v.ExportName != "" && !v.Module) {
			continue
		}
		r.add(v.Name, v, false)
		if v.Subscribable {
			if shadow := c.Vars.Get("$" + v.Name); shadow != nil {
				r.add(shadow.Name, shadow, false)
			}
		}
	}
	if c.HasNamedSlots {
		r.add("$$scope", nil, false)
		r.add("$$slots", nil, false)
	}
	for _, name := range c.ContextualNames {
		r.add(name, c.Vars.Get(name), true)
	}

	for _, m := range r.Context {
		m.Priority = memberPriority(m)
	}
	sort.SliceStable(r.Context, func(i, j int) bool {
		return r.Context[i].Priority > r.Context[j].Priority
	})
	for i, m := range r.Context {
		m.Index = i
	}
	r.ContextOverflow = len(r.Context) > 31
	return r
}

func (r *Renderer) add(name string, v *Variable, contextual bool) *ContextMember {
	if m, ok := r.lookup[name]; ok {
		return m
	}
	m := &ContextMember{
		Name:         name,
		Index:        len(r.Context),
		IsContextual: contextual,
		Variable:     v,
	}
	r.Context = append(r.Context, m)
	r.lookup[name] = m
	return m
}

// Member returns the context member for name, or nil.
func (r *Renderer) Member(name string) *ContextMember {
	return r.lookup[name]
}

func memberPriority(m *ContextMember) int {
	p := 0
	if v := m.Variable; v != nil {
		p += 2
		if v.Mutated || v.Reassigned {
			p += 4
		}
		if v.ExportName != "" {
			p += 16
		}
		if v.Referenced || v.ReferencedFromScript {
			p += 64
		}
	}
	if !m.IsContextual {
		p++
	}
	return p
}

// DirtyMask folds a set of names into per-word bitmasks: a name's slot lands
// in word index/31, bit 1<<(index%31). Names without a slot are dropped.
func (r *Renderer) DirtyMask(names []string) []uint32 {
	words := 1
	if r.ContextOverflow {
		words = (len(r.Context) + 30) / 31
	}
	masks := make([]uint32, words)
	for _, name := range names {
		m, ok := r.lookup[name]
		if !ok {
			continue
		}
		masks[m.Index/31] |= 1 << uint(m.Index%31)
	}
	return masks
}

// Dirty builds the runtime dirty check for a set of names: a single masked
// comparison, or an OR-combination of per-word comparisons once the context
// overflows 31 slots.
func (r *Renderer) Dirty(names []string, span pos.Span) js.Expr {
	a := r.Component.Arena
	masks := r.DirtyMask(names)
	if !r.ContextOverflow {
		return a.Binary("&", a.Ident("dirty", span), a.Number(strconv.FormatUint(uint64(masks[0]), 10), span), span)
	}
	var combined js.Expr
	for word, mask := range masks {
		if mask == 0 {
			continue
		}
		check := a.Binary("&",
			a.Index(a.Ident("dirty", span), a.Number(strconv.Itoa(word), span), span),
			a.Number(strconv.FormatUint(uint64(mask), 10), span), span)
		if combined == nil {
			combined = check
		} else {
			combined = a.Binary("|", combined, check, span)
		}
	}
	if combined == nil {
		combined = a.Number("0", span)
	}
	return combined
}

// Invalidate builds the expression that records a write to name. value,
// when non-nil, is the expression performing the write and is threaded
// through so the assignment still happens exactly once.
func (r *Renderer) Invalidate(name string, value js.Expr, span pos.Span) js.Expr {
	c := r.Component
	a := c.Arena
	v := c.Vars.Get(name)
	m := r.lookup[name]

	valueOr := func() js.Expr {
		if value != nil {
			return value
		}
		return a.Ident(name, span)
	}

	if v != nil && v.Subscribable && (v.Reassigned || v.ExportName != "") && m != nil {
		inner := a.Call(a.Ident("$$invalidate", span),
			[]js.Expr{a.Number(strconv.Itoa(m.Index), span), valueOr()}, span)
		return a.Call(a.Ident("$$subscribe_"+name, span), []js.Expr{inner}, span)
	}
	if strings.HasPrefix(name, "$") && !strings.HasPrefix(name, "$$") {
		store := strings.TrimPrefix(name, "$")
		return a.Call(a.Member(a.Ident(store, span), "set", span), []js.Expr{valueOr()}, span)
	}
	if m == nil || (v != nil && v.ExportName == "" && !v.Referenced && !v.IsReactiveDependency) {
		return valueOr()
	}
	if value != nil {
		return a.Call(a.Ident("$$invalidate", span),
			[]js.Expr{a.Number(strconv.Itoa(m.Index), span), value}, span)
	}

	// A bare re-trigger: invalidate everything that transitively depends
	// on the written name.
	targets := r.dependentAssignees(name)
	var calls []js.Expr
	for _, n := range targets {
		dm, ok := r.lookup[n]
		if !ok {
			continue
		}
		calls = append(calls, a.Call(a.Ident("$$invalidate", span),
			[]js.Expr{a.Number(strconv.Itoa(dm.Index), span), a.Ident(n, span)}, span))
	}
	if len(calls) == 0 {
		return valueOr()
	}
	if len(calls) == 1 {
		return calls[0]
	}
	return a.Sequence(calls, span)
}

// dependentAssignees returns name plus, transitively, every assignee of a
// reactive declaration that depends on a collected name, in a stable
// discovery order.
func (r *Renderer) dependentAssignees(name string) []string {
	seen := map[string]bool{name: true}
	out := []string{name}
	for i := 0; i < len(out); i++ {
		for _, d := range r.Component.Reactive {
			if !d.dependencies[out[i]] {
				continue
			}
			for _, assignee := range d.Assignees {
				if !seen[assignee] {
					seen[assignee] = true
					out = append(out, assignee)
				}
			}
		}
	}
	return out
}
