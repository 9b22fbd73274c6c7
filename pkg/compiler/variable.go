package compiler

import "github.com/svelgo/svelgo/pkg/compiler/js"

// Variable is one entry of a component's combined namespace: module and
// instance scripts share a single table, exactly one Variable per distinct
// name. Flags accrete monotonically as the analysis passes discover how the
// name is used; variables are never deleted.
type Variable struct {
	Name       string
	ExportName string

	Module      bool
	Global      bool
	Hoistable   bool
	Injected    bool
	Writable    bool
	Mutated     bool
	Reassigned  bool
	Referenced  bool
	Initialised bool

	// ReferencedFromScript marks reads from the instance script, as
	// opposed to reads from the template.
	ReferencedFromScript bool

	// Subscribable marks a variable whose $-prefixed shadow is used as a
	// store subscription.
	Subscribable bool

	// IsReactiveDependency marks names some reactive declaration depends
	// on.
	IsReactiveDependency bool

	// ImportedFrom is the module source for imported names.
	ImportedFrom string

	Node js.Node
}

// Prop reports whether the variable is an externally visible property.
func (v *Variable) Prop() bool {
	return v.ExportName != "" && !v.Module
}

// VarTable holds a component's variables in creation order.
type VarTable struct {
	byName map[string]*Variable
	order  []*Variable
}

// NewVarTable returns an empty table.
func NewVarTable() *VarTable {
	return &VarTable{byName: make(map[string]*Variable)}
}

// Get returns the variable named name, or nil.
func (t *VarTable) Get(name string) *Variable {
	return t.byName[name]
}

// Add inserts a new variable; adding an existing name returns the existing
// entry unchanged.
func (t *VarTable) Add(v *Variable) *Variable {
	if existing, ok := t.byName[v.Name]; ok {
		return existing
	}
	t.byName[v.Name] = v
	t.order = append(t.order, v)
	return v
}

// All returns every variable in creation order.
func (t *VarTable) All() []*Variable {
	return t.order
}

// Len reports the number of distinct names.
func (t *VarTable) Len() int {
	return len(t.order)
}
