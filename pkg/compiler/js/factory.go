package js

import "github.com/svelgo/svelgo/pkg/compiler/pos"

// Factory helpers for synthetic nodes built by analysis passes (loop
// guards, invalidation calls, extracted declarations). Synthetic nodes draw
// ids from the same arena as parsed nodes and usually borrow the span of
// the construct they replace.

// Ident builds a synthetic identifier.
func (a *Arena) Ident(name string, span pos.Span) *Identifier {
	return &Identifier{base: base{span: span, id: a.take()}, Name: name}
}

// Number builds a synthetic numeric literal from its raw text.
func (a *Arena) Number(raw string, span pos.Span) *NumberLit {
	return &NumberLit{base: base{span: span, id: a.take()}, Raw: raw}
}

// String builds a synthetic string literal.
func (a *Arena) String(value string, span pos.Span) *StringLit {
	return &StringLit{base: base{span: span, id: a.take()}, Value: value, Raw: "\"" + value + "\""}
}

// Call builds a synthetic call expression.
func (a *Arena) Call(callee Expr, args []Expr, span pos.Span) *CallExpr {
	return &CallExpr{base: base{span: span, id: a.take()}, Callee: callee, Args: args}
}

// Member builds a synthetic non-computed member access.
func (a *Arena) Member(object Expr, property string, span pos.Span) *MemberExpr {
	return &MemberExpr{
		base:     base{span: span, id: a.take()},
		Object:   object,
		Property: a.Ident(property, span),
	}
}

// Index builds a synthetic computed member access.
func (a *Arena) Index(object, index Expr, span pos.Span) *MemberExpr {
	return &MemberExpr{
		base:     base{span: span, id: a.take()},
		Object:   object,
		Property: index,
		Computed: true,
	}
}

// Assign builds a synthetic assignment expression.
func (a *Arena) Assign(op string, target, value Expr, span pos.Span) *AssignExpr {
	return &AssignExpr{base: base{span: span, id: a.take()}, Op: op, Target: target, Value: value}
}

// Binary builds a synthetic binary expression.
func (a *Arena) Binary(op string, left, right Expr, span pos.Span) *BinaryExpr {
	return &BinaryExpr{base: base{span: span, id: a.take()}, Op: op, Left: left, Right: right}
}

// Paren wraps an expression in explicit parentheses.
func (a *Arena) Paren(inner Expr, span pos.Span) *ParenExpr {
	return &ParenExpr{base: base{span: span, id: a.take()}, Inner: inner}
}

// Sequence builds a comma sequence.
func (a *Arena) Sequence(exprs []Expr, span pos.Span) *SeqExpr {
	return &SeqExpr{base: base{span: span, id: a.take()}, Exprs: exprs}
}

// BlockOf builds a synthetic block from statements.
func (a *Arena) BlockOf(span pos.Span, stmts ...Stmt) *Block {
	return &Block{base: base{span: span, id: a.take()}, Body: stmts}
}

// Statement wraps an expression as a statement.
func (a *Arena) Statement(expr Expr) *ExprStmt {
	return &ExprStmt{base: base{span: expr.Span(), id: a.take()}, Expr: expr}
}

// Declaration builds a synthetic single-declarator variable declaration.
func (a *Arena) Declaration(kind, name string, init Expr, span pos.Span) *VarDecl {
	decl := &Declarator{base: base{span: span, id: a.take()}, Pattern: a.Ident(name, span), Init: init}
	return &VarDecl{base: base{span: span, id: a.take()}, Kind: kind, Declarators: []*Declarator{decl}}
}
