package js

// Walk traverses the tree rooted at n in source order, calling visit before
// descending into each node's children. Returning false from visit skips
// the children. Walk calls leave (when non-nil) after a node's subtree has
// been visited.
func Walk(n Node, visit func(Node) bool, leave func(Node)) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit, leave)
	}
	if leave != nil {
		leave(n)
	}
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c == nil {
			return
		}
		out = append(out, c)
	}

	switch v := n.(type) {
	case *Program:
		for _, s := range v.Body {
			add(s)
		}
	case *TemplateLit:
		for _, e := range v.Exprs {
			add(e)
		}
	case *MemberExpr:
		add(v.Object)
		if v.Computed {
			add(v.Property)
		}
	case *CallExpr:
		add(v.Callee)
		for _, a := range v.Args {
			add(a)
		}
	case *NewExpr:
		add(v.Callee)
		for _, a := range v.Args {
			add(a)
		}
	case *UnaryExpr:
		add(v.Arg)
	case *UpdateExpr:
		add(v.Arg)
	case *BinaryExpr:
		add(v.Left)
		add(v.Right)
	case *CondExpr:
		add(v.Test)
		add(v.Cons)
		add(v.Alt)
	case *AssignExpr:
		add(v.Target)
		add(v.Value)
	case *SeqExpr:
		for _, e := range v.Exprs {
			add(e)
		}
	case *SpreadElement:
		add(v.Arg)
	case *ParenExpr:
		add(v.Inner)
	case *ArrayLit:
		for _, e := range v.Elements {
			if e != nil {
				add(e)
			}
		}
	case *Property:
		if v.Computed {
			add(v.Key)
		}
		add(v.Value)
	case *ObjectLit:
		for _, p := range v.Properties {
			add(p)
		}
	case *ArrowFn:
		for _, p := range v.Params {
			add(p)
		}
		add(v.Body)
	case *FuncExpr:
		for _, p := range v.Params {
			add(p)
		}
		add(v.Body)
	case *ObjectPatternProp:
		if v.Computed {
			add(v.Key)
		}
		add(v.Value)
	case *ObjectPattern:
		for _, p := range v.Props {
			add(p)
		}
		if v.Rest != nil {
			add(v.Rest)
		}
	case *ArrayPattern:
		for _, e := range v.Elements {
			if e != nil {
				add(e)
			}
		}
		if v.Rest != nil {
			add(v.Rest)
		}
	case *AssignPattern:
		add(v.Target)
		add(v.Default)
	case *RestElement:
		add(v.Arg)
	case *Declarator:
		add(v.Pattern)
		add(v.Init)
	case *VarDecl:
		for _, d := range v.Declarators {
			add(d)
		}
	case *FuncDecl:
		for _, p := range v.Params {
			add(p)
		}
		add(v.Body)
	case *Block:
		for _, s := range v.Body {
			add(s)
		}
	case *If:
		add(v.Test)
		add(v.Cons)
		if v.Else != nil {
			add(v.Else)
		}
	case *For:
		if v.Init != nil {
			add(v.Init)
		}
		add(v.Test)
		add(v.Update)
		add(v.Body)
	case *ForIn:
		add(v.Left)
		add(v.Right)
		add(v.Body)
	case *While:
		add(v.Test)
		add(v.Body)
	case *DoWhile:
		add(v.Body)
		add(v.Test)
	case *Return:
		add(v.Arg)
	case *Labeled:
		add(v.Body)
	case *Throw:
		add(v.Arg)
	case *Try:
		add(v.Block)
		if v.CatchParam != nil {
			add(v.CatchParam)
		}
		if v.CatchBody != nil {
			add(v.CatchBody)
		}
		if v.Finally != nil {
			add(v.Finally)
		}
	case *ExprStmt:
		add(v.Expr)
	case *ExportNamed:
		if v.Decl != nil {
			add(v.Decl)
		}
	case *ExportDefault:
		add(v.Value)
	}
	return out
}
