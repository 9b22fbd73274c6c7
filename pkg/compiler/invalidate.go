package compiler

import (
	"strings"

	"github.com/svelgo/svelgo/pkg/compiler/js"
)

// rewriteInvalidations replaces statement-position writes to tracked
// component state with the renderer's invalidation expression, so every
// assignment the instance performs reaches the runtime. Writes to shadowed
// locals and to names without a context slot pass through untouched.
func rewriteInvalidations(r *Renderer, stmts []js.Stmt) {
	for _, s := range stmts {
		rewriteInvalidationStmt(r, s)
	}
}

func rewriteInvalidationStmt(r *Renderer, stmt js.Stmt) {
	switch v := stmt.(type) {
	case *js.ExprStmt:
		v.Expr = rewriteInvalidationExpr(r, v.Expr)
	case *js.Block:
		rewriteInvalidations(r, v.Body)
	case *js.FuncDecl:
		rewriteInvalidations(r, v.Body.Body)
	case *js.VarDecl:
		for _, d := range v.Declarators {
			if d.Init != nil {
				rewriteFnLiterals(r, d.Init)
			}
		}
	case *js.If:
		rewriteInvalidationStmt(r, v.Cons)
		if v.Else != nil {
			rewriteInvalidationStmt(r, v.Else)
		}
	case *js.For:
		if v.Init != nil {
			rewriteInvalidationStmt(r, v.Init)
		}
		if v.Update != nil {
			v.Update = rewriteInvalidationExpr(r, v.Update)
		}
		if v.Body != nil {
			rewriteInvalidationStmt(r, v.Body)
		}
	case *js.ForIn:
		rewriteInvalidationStmt(r, v.Body)
	case *js.While:
		rewriteInvalidationStmt(r, v.Body)
	case *js.DoWhile:
		rewriteInvalidationStmt(r, v.Body)
	case *js.Labeled:
		rewriteInvalidationStmt(r, v.Body)
	case *js.Try:
		rewriteInvalidations(r, v.Block.Body)
		if v.CatchBody != nil {
			rewriteInvalidations(r, v.CatchBody.Body)
		}
		if v.Finally != nil {
			rewriteInvalidations(r, v.Finally.Body)
		}
	case *js.Return:
		if v.Arg != nil {
			rewriteFnLiterals(r, v.Arg)
		}
	case *js.ExportNamed:
		if v.Decl != nil {
			rewriteInvalidationStmt(r, v.Decl)
		}
	}
}

func rewriteInvalidationExpr(r *Renderer, e js.Expr) js.Expr {
	switch v := e.(type) {
	case *js.AssignExpr:
		rewriteFnLiterals(r, v.Value)
		if name, ok := invalidationTarget(r, v.Target); ok {
			return r.Invalidate(name, v, v.Span())
		}
	case *js.UpdateExpr:
		if name, ok := invalidationTarget(r, v.Arg); ok {
			return r.Invalidate(name, v, v.Span())
		}
	case *js.SeqExpr:
		for i, sub := range v.Exprs {
			v.Exprs[i] = rewriteInvalidationExpr(r, sub)
		}
	default:
		rewriteFnLiterals(r, e)
	}
	return e
}

// rewriteFnLiterals descends into function literals in expression position
// and rewrites the statement-position writes of their bodies.
func rewriteFnLiterals(r *Renderer, n js.Node) {
	js.Walk(n, func(node js.Node) bool {
		switch fn := node.(type) {
		case *js.FuncExpr:
			rewriteInvalidations(r, fn.Body.Body)
		case *js.ArrowFn:
			switch body := fn.Body.(type) {
			case *js.Block:
				rewriteInvalidations(r, body.Body)
			case js.Expr:
				fn.Body = rewriteInvalidationExpr(r, body)
			}
		}
		return true
	}, nil)
}

// invalidationTarget resolves a write target to the component-state name it
// invalidates: the root identifier of the target, provided it resolves to
// the instance top scope and either holds a context slot or names a store.
func invalidationTarget(r *Renderer, target js.Expr) (string, bool) {
	root := rootIdentifier(target)
	if root == nil {
		return "", false
	}
	if !r.Component.resolveTopLevel(root) {
		return "", false
	}
	name := root.Name
	if strings.HasPrefix(name, "$$") {
		return "", false
	}
	if r.lookup[name] == nil && !strings.HasPrefix(name, "$") {
		return "", false
	}
	return name, true
}
