// Package js implements the embedded-language reader: a lexer, recursive
// descent parser, syntax tree and printer for the JavaScript subset that
// component scripts and template expressions are written in. Every node
// carries a half-open byte span into the outer component source and a stable
// integer id assigned at construction time; the scope builder keys its
// node-to-scope relation on those ids rather than on node identity.
package js

import "github.com/svelgo/svelgo/pkg/compiler/pos"

// Node is implemented by every syntax node.
type Node interface {
	Span() pos.Span
	ID() int
}

// Expr is implemented by expression nodes. Identifier, ObjectPattern,
// ArrayPattern and AssignPattern also satisfy Pattern so they can appear in
// binding positions.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is implemented by nodes valid in binding positions.
type Pattern interface {
	Node
	patternNode()
}

// Arena mints node ids. One arena serves one compilation; synthetic nodes
// built by later passes (loop guards, extracted declarations) draw ids from
// the same arena so scope lookups stay collision-free.
type Arena struct {
	next int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NodeCount reports how many ids have been issued.
func (a *Arena) NodeCount() int {
	return a.next
}

func (a *Arena) take() int {
	id := a.next
	a.next++
	return id
}

// base carries the span and id common to all nodes.
type base struct {
	span pos.Span
	id   int
}

func (b *base) Span() pos.Span { return b.span }
func (b *base) ID() int        { return b.id }

// Program is the root of a parsed script.
type Program struct {
	base
	Body []Stmt
}

func (*Program) stmtNode() {}

// ---- Expressions ----

// Identifier is a name reference or binding occurrence.
type Identifier struct {
	base
	Name string
}

func (*Identifier) exprNode()    {}
func (*Identifier) patternNode() {}

// NumberLit is a numeric literal; Raw preserves the source text.
type NumberLit struct {
	base
	Raw string
}

func (*NumberLit) exprNode() {}

// StringLit is a string literal. Value is the decoded text, Raw the quoted
// source form.
type StringLit struct {
	base
	Value string
	Raw   string
}

func (*StringLit) exprNode() {}

// TemplateLit is a backtick template. Quasis has len(Exprs)+1 entries.
type TemplateLit struct {
	base
	Quasis []string
	Exprs  []Expr
}

func (*TemplateLit) exprNode() {}

// BoolLit is true or false.
type BoolLit struct {
	base
	Value bool
}

func (*BoolLit) exprNode() {}

// NullLit is the null literal.
type NullLit struct {
	base
}

func (*NullLit) exprNode() {}

// RegexpLit is a regular expression literal kept as raw text.
type RegexpLit struct {
	base
	Raw string
}

func (*RegexpLit) exprNode() {}

// ThisExpr is the this keyword.
type ThisExpr struct {
	base
}

func (*ThisExpr) exprNode() {}

// MemberExpr is property access: a.b, a[b], a?.b.
type MemberExpr struct {
	base
	Object   Expr
	Property Expr
	Computed bool
	Optional bool
}

func (*MemberExpr) exprNode()    {}
func (*MemberExpr) patternNode() {}

// CallExpr is a function call.
type CallExpr struct {
	base
	Callee   Expr
	Args     []Expr
	Optional bool
}

func (*CallExpr) exprNode() {}

// NewExpr is a constructor call.
type NewExpr struct {
	base
	Callee Expr
	Args   []Expr
}

func (*NewExpr) exprNode() {}

// UnaryExpr is a prefix operator application (!x, -x, typeof x, ...).
type UnaryExpr struct {
	base
	Op  string
	Arg Expr
}

func (*UnaryExpr) exprNode() {}

// UpdateExpr is ++x, x++, --x or x--.
type UpdateExpr struct {
	base
	Op     string
	Prefix bool
	Arg    Expr
}

func (*UpdateExpr) exprNode() {}

// BinaryExpr covers arithmetic, comparison, logical and nullish operators.
type BinaryExpr struct {
	base
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// CondExpr is the ternary operator.
type CondExpr struct {
	base
	Test Expr
	Cons Expr
	Alt  Expr
}

func (*CondExpr) exprNode() {}

// AssignExpr is an assignment, simple or compound. Target is an Expr so that
// member expressions and destructuring patterns are both representable.
type AssignExpr struct {
	base
	Op     string
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode() {}

// SeqExpr is a comma sequence.
type SeqExpr struct {
	base
	Exprs []Expr
}

func (*SeqExpr) exprNode() {}

// SpreadElement is ...expr in calls, arrays and objects.
type SpreadElement struct {
	base
	Arg Expr
}

func (*SpreadElement) exprNode() {}

// ArrayLit is an array literal; nil elements are holes.
type ArrayLit struct {
	base
	Elements []Expr
}

func (*ArrayLit) exprNode()    {}
func (*ArrayLit) patternNode() {}

// Property is one entry of an object literal.
type Property struct {
	base
	Key       Expr
	Value     Expr
	Computed  bool
	Shorthand bool
}

func (*Property) exprNode() {}

// ObjectLit is an object literal; entries are *Property or *SpreadElement.
type ObjectLit struct {
	base
	Properties []Expr
}

func (*ObjectLit) exprNode()    {}
func (*ObjectLit) patternNode() {}

// ArrowFn is an arrow function. Body is either a *Block or an Expr.
type ArrowFn struct {
	base
	Params []Pattern
	Body   Node
}

func (*ArrowFn) exprNode() {}

// FuncExpr is a function expression; Name may be empty.
type FuncExpr struct {
	base
	Name   string
	Params []Pattern
	Body   *Block
}

func (*FuncExpr) exprNode() {}

// ---- Patterns ----

// ObjectPatternProp is one entry of an object destructuring pattern.
type ObjectPatternProp struct {
	base
	Key      Expr
	Value    Pattern
	Computed bool
}

// ObjectPattern destructures an object; Rest may be nil.
type ObjectPattern struct {
	base
	Props []*ObjectPatternProp
	Rest  Pattern
}

func (*ObjectPattern) exprNode()    {}
func (*ObjectPattern) patternNode() {}

// ArrayPattern destructures an array; nil elements are holes, Rest may be
// nil.
type ArrayPattern struct {
	base
	Elements []Pattern
	Rest     Pattern
}

func (*ArrayPattern) exprNode()    {}
func (*ArrayPattern) patternNode() {}

// AssignPattern is a binding with a default value.
type AssignPattern struct {
	base
	Target  Pattern
	Default Expr
}

func (*AssignPattern) patternNode() {}

// RestElement is ...pattern inside a parameter list or array pattern.
type RestElement struct {
	base
	Arg Pattern
}

func (*RestElement) patternNode() {}

// ---- Statements ----

// Declarator is one name = init pair of a variable declaration.
type Declarator struct {
	base
	Pattern Pattern
	Init    Expr
}

// VarDecl is a var, let or const declaration.
type VarDecl struct {
	base
	Kind        string
	Declarators []*Declarator
}

func (*VarDecl) stmtNode() {}

// FuncDecl is a function declaration.
type FuncDecl struct {
	base
	Name   string
	Params []Pattern
	Body   *Block
}

func (*FuncDecl) stmtNode() {}

// Block is a braced statement list.
type Block struct {
	base
	Body []Stmt
}

func (*Block) stmtNode() {}

// If is an if/else statement; Else may be nil.
type If struct {
	base
	Test Expr
	Cons Stmt
	Else Stmt
}

func (*If) stmtNode() {}

// For is a classic three-clause for loop; any clause may be nil. Init is
// either a *VarDecl or an expression statement.
type For struct {
	base
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

func (*For) stmtNode() {}

// ForIn covers for-in and for-of. Left is a *VarDecl or a pattern
// expression.
type ForIn struct {
	base
	Left  Node
	Right Expr
	Body  Stmt
	Of    bool
}

func (*ForIn) stmtNode() {}

// While is a while loop.
type While struct {
	base
	Test Expr
	Body Stmt
}

func (*While) stmtNode() {}

// DoWhile is a do-while loop.
type DoWhile struct {
	base
	Body Stmt
	Test Expr
}

func (*DoWhile) stmtNode() {}

// Return is a return statement; Arg may be nil.
type Return struct {
	base
	Arg Expr
}

func (*Return) stmtNode() {}

// Break is a break statement; Label may be empty.
type Break struct {
	base
	Label string
}

func (*Break) stmtNode() {}

// Continue is a continue statement; Label may be empty.
type Continue struct {
	base
	Label string
}

func (*Continue) stmtNode() {}

// Labeled is a labeled statement. A top-level label named "$" is a reactive
// declaration.
type Labeled struct {
	base
	Label string
	Body  Stmt
}

func (*Labeled) stmtNode() {}

// Throw is a throw statement.
type Throw struct {
	base
	Arg Expr
}

func (*Throw) stmtNode() {}

// Try is try/catch/finally. CatchParam may be nil (bare catch); CatchBody
// and Finally may be nil independently.
type Try struct {
	base
	Block      *Block
	CatchParam Pattern
	CatchBody  *Block
	Finally    *Block
}

func (*Try) stmtNode() {}

// Empty is a lone semicolon.
type Empty struct {
	base
}

func (*Empty) stmtNode() {}

// ExprStmt is an expression statement.
type ExprStmt struct {
	base
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// ImportSpecifier is one imported binding. Imported is empty for default and
// "*" for namespace imports.
type ImportSpecifier struct {
	base
	Imported string
	Local    string
}

// ImportDecl is an import declaration.
type ImportDecl struct {
	base
	Specifiers []*ImportSpecifier
	Source     string
}

func (*ImportDecl) stmtNode() {}

// ExportSpecifier is one entry of an export list.
type ExportSpecifier struct {
	base
	Local    string
	Exported string
}

// ExportNamed is a named export: either a declaration form (Decl set) or a
// specifier list, optionally re-exported from Source.
type ExportNamed struct {
	base
	Decl       Stmt
	Specifiers []*ExportSpecifier
	Source     string
	HasSource  bool
}

func (*ExportNamed) stmtNode() {}

// ExportDefault is a default export, always rejected by the analyzer but
// representable so the error carries the right span.
type ExportDefault struct {
	base
	Value Expr
}

func (*ExportDefault) stmtNode() {}

// PatternNames appends every identifier bound by pattern to out and returns
// the extended slice, in source order.
func PatternNames(pattern Pattern, out []*Identifier) []*Identifier {
	switch p := pattern.(type) {
	case *Identifier:
		out = append(out, p)
	case *ObjectPattern:
		for _, prop := range p.Props {
			out = PatternNames(prop.Value, out)
		}
		if p.Rest != nil {
			out = PatternNames(p.Rest, out)
		}
	case *ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				out = PatternNames(el, out)
			}
		}
		if p.Rest != nil {
			out = PatternNames(p.Rest, out)
		}
	case *AssignPattern:
		out = PatternNames(p.Target, out)
	case *RestElement:
		out = PatternNames(p.Arg, out)
	case *MemberExpr:
		// Assignment targets may be member expressions; they bind nothing.
	}
	return out
}
