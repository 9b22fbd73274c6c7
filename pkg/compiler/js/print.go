package js

import (
	"fmt"
	"strings"
)

// Print renders a node back to JavaScript source. Output favors
// predictability over prettiness: statements are newline separated and
// nested blocks indent with tabs.
func Print(n Node) string {
	var p printer
	p.node(n)
	return p.b.String()
}

// PrintStmts renders a statement list at the given indent depth.
func PrintStmts(stmts []Stmt, depth int) string {
	var p printer
	p.depth = depth
	for _, s := range stmts {
		p.indent()
		p.node(s)
		p.b.WriteByte('\n')
	}
	return p.b.String()
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) indent() {
	for i := 0; i < p.depth; i++ {
		p.b.WriteByte('\t')
	}
}

func (p *printer) node(n Node) {
	switch v := n.(type) {
	case nil:
	case *Program:
		for _, s := range v.Body {
			p.indent()
			p.node(s)
			p.b.WriteByte('\n')
		}

	case *Identifier:
		p.b.WriteString(v.Name)
	case *NumberLit:
		p.b.WriteString(v.Raw)
	case *StringLit:
		p.b.WriteString(v.Raw)
	case *BoolLit:
		fmt.Fprintf(&p.b, "%t", v.Value)
	case *NullLit:
		p.b.WriteString("null")
	case *RegexpLit:
		p.b.WriteString(v.Raw)
	case *ThisExpr:
		p.b.WriteString("this")
	case *TemplateLit:
		p.b.WriteByte('`')
		for i, quasi := range v.Quasis {
			p.b.WriteString(quasi)
			if i < len(v.Exprs) {
				p.b.WriteString("${")
				p.node(v.Exprs[i])
				p.b.WriteString("}")
			}
		}
		p.b.WriteByte('`')

	case *MemberExpr:
		p.operand(v.Object)
		switch {
		case v.Optional && v.Computed:
			p.b.WriteString("?.[")
			p.node(v.Property)
			p.b.WriteByte(']')
		case v.Computed:
			p.b.WriteByte('[')
			p.node(v.Property)
			p.b.WriteByte(']')
		case v.Optional:
			p.b.WriteString("?.")
			p.node(v.Property)
		default:
			p.b.WriteByte('.')
			p.node(v.Property)
		}
	case *CallExpr:
		p.operand(v.Callee)
		if v.Optional {
			p.b.WriteString("?.")
		}
		p.args(v.Args)
	case *NewExpr:
		p.b.WriteString("new ")
		p.operand(v.Callee)
		p.args(v.Args)
	case *UnaryExpr:
		p.b.WriteString(v.Op)
		if isWordOp(v.Op) {
			p.b.WriteByte(' ')
		}
		p.operand(v.Arg)
	case *UpdateExpr:
		if v.Prefix {
			p.b.WriteString(v.Op)
			p.operand(v.Arg)
		} else {
			p.operand(v.Arg)
			p.b.WriteString(v.Op)
		}
	case *BinaryExpr:
		p.operand(v.Left)
		p.b.WriteByte(' ')
		p.b.WriteString(v.Op)
		p.b.WriteByte(' ')
		p.operand(v.Right)
	case *CondExpr:
		p.operand(v.Test)
		p.b.WriteString(" ? ")
		p.operand(v.Cons)
		p.b.WriteString(" : ")
		p.operand(v.Alt)
	case *AssignExpr:
		p.node(v.Target)
		p.b.WriteByte(' ')
		p.b.WriteString(v.Op)
		p.b.WriteByte(' ')
		p.node(v.Value)
	case *SeqExpr:
		for i, e := range v.Exprs {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.node(e)
		}
	case *SpreadElement:
		p.b.WriteString("...")
		p.node(v.Arg)
	case *ParenExpr:
		p.b.WriteByte('(')
		p.node(v.Inner)
		p.b.WriteByte(')')
	case *ArrayLit:
		p.b.WriteByte('[')
		for i, e := range v.Elements {
			if i > 0 {
				p.b.WriteString(", ")
			}
			if e != nil {
				p.node(e)
			}
		}
		p.b.WriteByte(']')
	case *Property:
		if v.Shorthand {
			p.node(v.Value)
			break
		}
		if v.Computed {
			p.b.WriteByte('[')
			p.node(v.Key)
			p.b.WriteByte(']')
		} else {
			p.node(v.Key)
		}
		p.b.WriteString(": ")
		p.node(v.Value)
	case *ObjectLit:
		p.b.WriteString("{ ")
		for i, prop := range v.Properties {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.node(prop)
		}
		p.b.WriteString(" }")
	case *ArrowFn:
		p.b.WriteByte('(')
		p.params(v.Params)
		p.b.WriteString(") => ")
		if block, ok := v.Body.(*Block); ok {
			p.block(block)
		} else {
			p.operand(v.Body.(Expr))
		}
	case *FuncExpr:
		p.b.WriteString("function ")
		p.b.WriteString(v.Name)
		p.b.WriteByte('(')
		p.params(v.Params)
		p.b.WriteString(") ")
		p.block(v.Body)

	case *ObjectPatternProp:
		if ident, ok := v.Key.(*Identifier); ok && !v.Computed {
			if value, isIdent := v.Value.(*Identifier); isIdent && value.Name == ident.Name {
				p.b.WriteString(ident.Name)
				break
			}
		}
		if v.Computed {
			p.b.WriteByte('[')
			p.node(v.Key)
			p.b.WriteByte(']')
		} else {
			p.node(v.Key)
		}
		p.b.WriteString(": ")
		p.node(v.Value)
	case *ObjectPattern:
		p.b.WriteString("{ ")
		for i, prop := range v.Props {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.node(prop)
		}
		if v.Rest != nil {
			if len(v.Props) > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString("...")
			p.node(v.Rest)
		}
		p.b.WriteString(" }")
	case *ArrayPattern:
		p.b.WriteByte('[')
		for i, e := range v.Elements {
			if i > 0 {
				p.b.WriteString(", ")
			}
			if e != nil {
				p.node(e)
			}
		}
		if v.Rest != nil {
			if len(v.Elements) > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString("...")
			p.node(v.Rest)
		}
		p.b.WriteByte(']')
	case *AssignPattern:
		p.node(v.Target)
		p.b.WriteString(" = ")
		p.node(v.Default)
	case *RestElement:
		p.b.WriteString("...")
		p.node(v.Arg)

	case *Declarator:
		p.node(v.Pattern)
		if v.Init != nil {
			p.b.WriteString(" = ")
			p.node(v.Init)
		}
	case *VarDecl:
		p.b.WriteString(v.Kind)
		p.b.WriteByte(' ')
		for i, d := range v.Declarators {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.node(d)
		}
		p.b.WriteByte(';')
	case *FuncDecl:
		p.b.WriteString("function ")
		p.b.WriteString(v.Name)
		p.b.WriteByte('(')
		p.params(v.Params)
		p.b.WriteString(") ")
		p.block(v.Body)
	case *Block:
		p.block(v)
	case *If:
		p.b.WriteString("if (")
		p.node(v.Test)
		p.b.WriteString(") ")
		p.nestedStmt(v.Cons)
		if v.Else != nil {
			p.b.WriteString(" else ")
			p.nestedStmt(v.Else)
		}
	case *For:
		p.b.WriteString("for (")
		if v.Init != nil {
			switch init := v.Init.(type) {
			case *ExprStmt:
				p.node(init.Expr)
				p.b.WriteByte(';')
			default:
				p.node(init)
			}
		} else {
			p.b.WriteByte(';')
		}
		p.b.WriteByte(' ')
		p.node(v.Test)
		p.b.WriteString("; ")
		p.node(v.Update)
		p.b.WriteString(") ")
		p.nestedStmt(v.Body)
	case *ForIn:
		p.b.WriteString("for (")
		if decl, ok := v.Left.(*VarDecl); ok {
			p.b.WriteString(decl.Kind)
			p.b.WriteByte(' ')
			p.node(decl.Declarators[0].Pattern)
		} else {
			p.node(v.Left)
		}
		if v.Of {
			p.b.WriteString(" of ")
		} else {
			p.b.WriteString(" in ")
		}
		p.node(v.Right)
		p.b.WriteString(") ")
		p.nestedStmt(v.Body)
	case *While:
		p.b.WriteString("while (")
		p.node(v.Test)
		p.b.WriteString(") ")
		p.nestedStmt(v.Body)
	case *DoWhile:
		p.b.WriteString("do ")
		p.nestedStmt(v.Body)
		p.b.WriteString(" while (")
		p.node(v.Test)
		p.b.WriteString(");")
	case *Return:
		p.b.WriteString("return")
		if v.Arg != nil {
			p.b.WriteByte(' ')
			p.node(v.Arg)
		}
		p.b.WriteByte(';')
	case *Break:
		p.b.WriteString("break")
		if v.Label != "" {
			p.b.WriteByte(' ')
			p.b.WriteString(v.Label)
		}
		p.b.WriteByte(';')
	case *Continue:
		p.b.WriteString("continue")
		if v.Label != "" {
			p.b.WriteByte(' ')
			p.b.WriteString(v.Label)
		}
		p.b.WriteByte(';')
	case *Labeled:
		p.b.WriteString(v.Label)
		p.b.WriteString(": ")
		p.node(v.Body)
	case *Throw:
		p.b.WriteString("throw ")
		p.node(v.Arg)
		p.b.WriteByte(';')
	case *Try:
		p.b.WriteString("try ")
		p.block(v.Block)
		if v.CatchBody != nil {
			p.b.WriteString(" catch ")
			if v.CatchParam != nil {
				p.b.WriteByte('(')
				p.node(v.CatchParam)
				p.b.WriteString(") ")
			}
			p.block(v.CatchBody)
		}
		if v.Finally != nil {
			p.b.WriteString(" finally ")
			p.block(v.Finally)
		}
	case *Empty:
		p.b.WriteByte(';')
	case *ExprStmt:
		p.node(v.Expr)
		p.b.WriteByte(';')
	case *ImportDecl:
		p.b.WriteString("import ")
		if len(v.Specifiers) > 0 {
			p.importSpecifiers(v.Specifiers)
			p.b.WriteString(" from ")
		}
		fmt.Fprintf(&p.b, "%q;", v.Source)
	case *ExportNamed:
		p.b.WriteString("export ")
		if v.Decl != nil {
			p.node(v.Decl)
			break
		}
		p.b.WriteString("{ ")
		for i, spec := range v.Specifiers {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString(spec.Local)
			if spec.Exported != spec.Local {
				p.b.WriteString(" as ")
				p.b.WriteString(spec.Exported)
			}
		}
		p.b.WriteString(" }")
		if v.HasSource {
			fmt.Fprintf(&p.b, " from %q", v.Source)
		}
		p.b.WriteByte(';')
	case *ExportDefault:
		p.b.WriteString("export default ")
		p.node(v.Value)
		p.b.WriteByte(';')

	default:
		fmt.Fprintf(&p.b, "/* unprintable node %T */", n)
	}
}

// operand prints a subexpression, parenthesizing forms that would otherwise
// reparse differently in operand position.
func (p *printer) operand(n Node) {
	switch n.(type) {
	case *BinaryExpr, *CondExpr, *AssignExpr, *SeqExpr, *ArrowFn, *FuncExpr:
		p.b.WriteByte('(')
		p.node(n)
		p.b.WriteByte(')')
	default:
		p.node(n)
	}
}

func (p *printer) nestedStmt(s Stmt) {
	if block, ok := s.(*Block); ok {
		p.block(block)
		return
	}
	p.node(s)
}

func (p *printer) block(b *Block) {
	if len(b.Body) == 0 {
		p.b.WriteString("{}")
		return
	}
	p.b.WriteString("{\n")
	p.depth++
	for _, s := range b.Body {
		p.indent()
		p.node(s)
		p.b.WriteByte('\n')
	}
	p.depth--
	p.indent()
	p.b.WriteByte('}')
}

func (p *printer) params(params []Pattern) {
	for i, param := range params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.node(param)
	}
}

func (p *printer) args(args []Expr) {
	p.b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.node(a)
	}
	p.b.WriteByte(')')
}

func (p *printer) importSpecifiers(specs []*ImportSpecifier) {
	var named []string
	first := true
	for _, spec := range specs {
		switch spec.Imported {
		case "default":
			if !first {
				p.b.WriteString(", ")
			}
			p.b.WriteString(spec.Local)
			first = false
		case "*":
			if !first {
				p.b.WriteString(", ")
			}
			p.b.WriteString("* as ")
			p.b.WriteString(spec.Local)
			first = false
		default:
			if spec.Imported == spec.Local {
				named = append(named, spec.Local)
			} else {
				named = append(named, spec.Imported+" as "+spec.Local)
			}
		}
	}
	if len(named) > 0 {
		if !first {
			p.b.WriteString(", ")
		}
		p.b.WriteString("{ " + strings.Join(named, ", ") + " }")
	}
}

func isWordOp(op string) bool {
	switch op {
	case "typeof", "void", "delete":
		return true
	}
	return false
}
