package js

import (
	"fmt"

	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

// ParseError is a syntax error in an embedded script or expression. The
// caller converts it into a compiler diagnostic with line/column data.
type ParseError struct {
	Code    string
	Message string
	Span    pos.Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at [%d,%d)", e.Message, e.Span.Start, e.Span.End)
}

// ParenExpr preserves explicit parentheses. Analysis passes look through it;
// the printer reproduces the parens.
type ParenExpr struct {
	base
	Inner Expr
}

func (*ParenExpr) exprNode() {}

// Parser is a recursive descent parser over a Lexer with one token of
// lookahead. It panics with *ParseError internally; the exported entry
// points recover and return the error.
type Parser struct {
	lex     *Lexer
	arena   *Arena
	tok     Token
	prevEnd int
	noIn    bool
}

// ParseProgram parses a whole script. base offsets all spans into the outer
// component source.
func ParseProgram(src string, baseOffset int, arena *Arena) (prog *Program, err error) {
	p := newParser(src, baseOffset, arena)
	defer p.recoverTo(&err)
	start := p.tok.Span.Start
	var body []Stmt
	for p.tok.Kind != TokEOF {
		body = append(body, p.parseStatement())
	}
	prog = &Program{base: p.finish(start), Body: body}
	return prog, nil
}

// ParseExpressionAt parses one assignment-level expression beginning at
// offset in src. It returns the expression and the byte offset where the
// enclosing parser should resume.
func ParseExpressionAt(src string, offset int, arena *Arena) (expr Expr, end int, err error) {
	p := newParser(src[offset:], offset, arena)
	defer p.recoverTo(&err)
	if p.tok.Kind == TokEOF {
		panic(&ParseError{Code: "unexpected-eof", Message: "unexpected end of input", Span: p.tok.Span})
	}
	expr = p.parseAssign()
	return expr, p.tok.Span.Start, nil
}

// ParsePatternAt parses one binding pattern beginning at offset in src,
// returning the pattern and the resume offset.
func ParsePatternAt(src string, offset int, arena *Arena) (pat Pattern, end int, err error) {
	p := newParser(src[offset:], offset, arena)
	defer p.recoverTo(&err)
	if p.tok.Kind == TokEOF {
		panic(&ParseError{Code: "unexpected-eof", Message: "unexpected end of input", Span: p.tok.Span})
	}
	pat = p.parsePattern()
	return pat, p.tok.Span.Start, nil
}

func newParser(src string, baseOffset int, arena *Arena) *Parser {
	p := &Parser{lex: NewLexer(src, baseOffset), arena: arena, prevEnd: baseOffset}
	p.advance()
	return p
}

func (p *Parser) recoverTo(err *error) {
	if r := recover(); r != nil {
		pe, ok := r.(*ParseError)
		if !ok {
			panic(r)
		}
		*err = pe
	}
}

func (p *Parser) fail(format string, args ...interface{}) {
	code := "parse-error"
	if p.tok.Kind == TokEOF {
		code = "unexpected-eof"
	}
	panic(&ParseError{Code: code, Message: fmt.Sprintf(format, args...), Span: p.tok.Span})
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
	if p.tok.Kind == TokIllegal {
		panic(&ParseError{Code: "parse-error", Message: p.tok.Text, Span: p.tok.Span})
	}
}

func (p *Parser) next() {
	p.prevEnd = p.tok.Span.End
	p.advance()
}

func (p *Parser) finish(start int) base {
	return base{span: pos.NewSpan(start, p.prevEnd), id: p.arena.take()}
}

func (p *Parser) isPunct(s string) bool {
	return p.tok.Kind == TokPunct && p.tok.Text == s
}

func (p *Parser) eatPunct(s string) bool {
	if p.isPunct(s) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expectPunct(s string) {
	if !p.eatPunct(s) {
		p.fail("expected %q but got %q", s, p.tok.Text)
	}
}

func (p *Parser) isIdent(s string) bool {
	return p.tok.Kind == TokIdent && p.tok.Text == s
}

func (p *Parser) eatIdent(s string) bool {
	if p.isIdent(s) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expectIdentName() string {
	if p.tok.Kind != TokIdent {
		p.fail("expected identifier but got %q", p.tok.Text)
	}
	name := p.tok.Text
	p.next()
	return name
}

// ---- Statements ----

func (p *Parser) parseStatement() Stmt {
	start := p.tok.Span.Start
	if p.tok.Kind == TokIdent {
		switch p.tok.Text {
		case "var", "let", "const":
			decl := p.parseVarDecl()
			p.eatPunct(";")
			return decl
		case "function":
			return p.parseFuncDecl()
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "while":
			p.next()
			p.expectPunct("(")
			test := p.parseExpression()
			p.expectPunct(")")
			body := p.parseStatement()
			return &While{base: p.finish(start), Test: test, Body: body}
		case "do":
			p.next()
			body := p.parseStatement()
			if !p.eatIdent("while") {
				p.fail("expected while after do body")
			}
			p.expectPunct("(")
			test := p.parseExpression()
			p.expectPunct(")")
			p.eatPunct(";")
			return &DoWhile{base: p.finish(start), Body: body, Test: test}
		case "return":
			p.next()
			var arg Expr
			if !p.isPunct(";") && !p.isPunct("}") && p.tok.Kind != TokEOF {
				arg = p.parseExpression()
			}
			p.eatPunct(";")
			return &Return{base: p.finish(start), Arg: arg}
		case "break":
			p.next()
			label := ""
			if p.tok.Kind == TokIdent && !p.isPunct(";") {
				label = p.expectIdentName()
			}
			p.eatPunct(";")
			return &Break{base: p.finish(start), Label: label}
		case "continue":
			p.next()
			label := ""
			if p.tok.Kind == TokIdent && !p.isPunct(";") {
				label = p.expectIdentName()
			}
			p.eatPunct(";")
			return &Continue{base: p.finish(start), Label: label}
		case "throw":
			p.next()
			arg := p.parseExpression()
			p.eatPunct(";")
			return &Throw{base: p.finish(start), Arg: arg}
		case "try":
			return p.parseTry()
		case "import":
			return p.parseImport()
		case "export":
			return p.parseExport()
		case "class", "switch", "async", "await", "yield":
			p.fail("%q is not supported in component scripts", p.tok.Text)
		}
	}
	if p.eatPunct(";") {
		return &Empty{base: p.finish(start)}
	}
	if p.isPunct("{") {
		return p.parseBlock()
	}

	expr := p.parseExpression()
	if ident, ok := expr.(*Identifier); ok && p.eatPunct(":") {
		body := p.parseStatement()
		return &Labeled{base: p.finish(start), Label: ident.Name, Body: body}
	}
	p.eatPunct(";")
	return &ExprStmt{base: p.finish(start), Expr: expr}
}

func (p *Parser) parseBlock() *Block {
	start := p.tok.Span.Start
	p.expectPunct("{")
	var body []Stmt
	for !p.isPunct("}") {
		if p.tok.Kind == TokEOF {
			p.fail("unexpected end of input, expected \"}\"")
		}
		body = append(body, p.parseStatement())
	}
	p.expectPunct("}")
	return &Block{base: p.finish(start), Body: body}
}

// parseVarDecl parses a declaration without consuming a trailing semicolon,
// so for-loop heads can reuse it.
func (p *Parser) parseVarDecl() *VarDecl {
	start := p.tok.Span.Start
	kind := p.expectIdentName()
	var declarators []*Declarator
	for {
		dstart := p.tok.Span.Start
		pattern := p.parsePattern()
		var init Expr
		if p.eatPunct("=") {
			init = p.parseAssign()
		}
		declarators = append(declarators, &Declarator{base: p.finish(dstart), Pattern: pattern, Init: init})
		if !p.eatPunct(",") {
			break
		}
	}
	return &VarDecl{base: p.finish(start), Kind: kind, Declarators: declarators}
}

func (p *Parser) parseFuncDecl() Stmt {
	start := p.tok.Span.Start
	p.next() // function
	name := p.expectIdentName()
	params := p.parseParams()
	body := p.parseBlock()
	return &FuncDecl{base: p.finish(start), Name: name, Params: params, Body: body}
}

func (p *Parser) parseParams() []Pattern {
	p.expectPunct("(")
	var params []Pattern
	for !p.isPunct(")") {
		if p.isPunct("...") {
			rstart := p.tok.Span.Start
			p.next()
			arg := p.parsePattern()
			params = append(params, &RestElement{base: p.finish(rstart), Arg: arg})
		} else {
			params = append(params, p.parsePatternWithDefault())
		}
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct(")")
	return params
}

func (p *Parser) parseIf() Stmt {
	start := p.tok.Span.Start
	p.next() // if
	p.expectPunct("(")
	test := p.parseExpression()
	p.expectPunct(")")
	cons := p.parseStatement()
	var alt Stmt
	if p.eatIdent("else") {
		alt = p.parseStatement()
	}
	return &If{base: p.finish(start), Test: test, Cons: cons, Else: alt}
}

func (p *Parser) parseFor() Stmt {
	start := p.tok.Span.Start
	p.next() // for
	p.expectPunct("(")

	var init Stmt
	var left Node
	if p.isPunct(";") {
		// no init
	} else if p.isIdent("var") || p.isIdent("let") || p.isIdent("const") {
		decl := p.parseVarDecl()
		if p.isIdent("in") || p.isIdent("of") {
			left = decl
		} else {
			init = decl
		}
	} else {
		istart := p.tok.Span.Start
		p.noIn = true
		expr := p.parseExpression()
		p.noIn = false
		if p.isIdent("in") || p.isIdent("of") {
			left = expr
		} else {
			init = &ExprStmt{base: p.finish(istart), Expr: expr}
		}
	}

	if left != nil {
		of := p.isIdent("of")
		p.next() // in / of
		right := p.parseAssign()
		p.expectPunct(")")
		body := p.parseStatement()
		return &ForIn{base: p.finish(start), Left: left, Right: right, Body: body, Of: of}
	}

	p.expectPunct(";")
	var test Expr
	if !p.isPunct(";") {
		test = p.parseExpression()
	}
	p.expectPunct(";")
	var update Expr
	if !p.isPunct(")") {
		update = p.parseExpression()
	}
	p.expectPunct(")")
	body := p.parseStatement()
	return &For{base: p.finish(start), Init: init, Test: test, Update: update, Body: body}
}

func (p *Parser) parseTry() Stmt {
	start := p.tok.Span.Start
	p.next() // try
	block := p.parseBlock()
	var catchParam Pattern
	var catchBody *Block
	var finally *Block
	if p.eatIdent("catch") {
		if p.eatPunct("(") {
			catchParam = p.parsePattern()
			p.expectPunct(")")
		}
		catchBody = p.parseBlock()
	}
	if p.eatIdent("finally") {
		finally = p.parseBlock()
	}
	if catchBody == nil && finally == nil {
		p.fail("try requires a catch or finally clause")
	}
	return &Try{base: p.finish(start), Block: block, CatchParam: catchParam, CatchBody: catchBody, Finally: finally}
}

func (p *Parser) parseImport() Stmt {
	start := p.tok.Span.Start
	p.next() // import
	var specifiers []*ImportSpecifier

	if p.tok.Kind == TokString {
		source := p.tok.Value
		p.next()
		p.eatPunct(";")
		return &ImportDecl{base: p.finish(start), Source: source}
	}

	if p.tok.Kind == TokIdent && !p.isIdent("from") {
		sstart := p.tok.Span.Start
		local := p.expectIdentName()
		specifiers = append(specifiers, &ImportSpecifier{base: p.finish(sstart), Imported: "default", Local: local})
		p.eatPunct(",")
	}
	if p.isPunct("*") {
		sstart := p.tok.Span.Start
		p.next()
		if !p.eatIdent("as") {
			p.fail("expected \"as\" after \"*\"")
		}
		local := p.expectIdentName()
		specifiers = append(specifiers, &ImportSpecifier{base: p.finish(sstart), Imported: "*", Local: local})
	} else if p.eatPunct("{") {
		for !p.isPunct("}") {
			sstart := p.tok.Span.Start
			imported := p.expectIdentName()
			local := imported
			if p.eatIdent("as") {
				local = p.expectIdentName()
			}
			specifiers = append(specifiers, &ImportSpecifier{base: p.finish(sstart), Imported: imported, Local: local})
			if !p.eatPunct(",") {
				break
			}
		}
		p.expectPunct("}")
	}

	if !p.eatIdent("from") {
		p.fail("expected \"from\" in import declaration")
	}
	if p.tok.Kind != TokString {
		p.fail("expected module source string")
	}
	source := p.tok.Value
	p.next()
	p.eatPunct(";")
	return &ImportDecl{base: p.finish(start), Specifiers: specifiers, Source: source}
}

func (p *Parser) parseExport() Stmt {
	start := p.tok.Span.Start
	p.next() // export

	if p.eatIdent("default") {
		value := p.parseAssign()
		p.eatPunct(";")
		return &ExportDefault{base: p.finish(start), Value: value}
	}

	if p.eatPunct("{") {
		var specifiers []*ExportSpecifier
		for !p.isPunct("}") {
			sstart := p.tok.Span.Start
			local := p.expectIdentName()
			exported := local
			if p.eatIdent("as") {
				exported = p.expectIdentName()
			}
			specifiers = append(specifiers, &ExportSpecifier{base: p.finish(sstart), Local: local, Exported: exported})
			if !p.eatPunct(",") {
				break
			}
		}
		p.expectPunct("}")
		source := ""
		hasSource := false
		if p.eatIdent("from") {
			if p.tok.Kind != TokString {
				p.fail("expected module source string")
			}
			source = p.tok.Value
			hasSource = true
			p.next()
		}
		p.eatPunct(";")
		return &ExportNamed{base: p.finish(start), Specifiers: specifiers, Source: source, HasSource: hasSource}
	}

	var decl Stmt
	switch {
	case p.isIdent("var"), p.isIdent("let"), p.isIdent("const"):
		decl = p.parseVarDecl()
		p.eatPunct(";")
	case p.isIdent("function"):
		decl = p.parseFuncDecl()
	default:
		p.fail("expected a declaration or export list after \"export\"")
	}
	return &ExportNamed{base: p.finish(start), Decl: decl}
}

// ---- Patterns ----

func (p *Parser) parsePattern() Pattern {
	start := p.tok.Span.Start
	switch {
	case p.isPunct("{"):
		return p.parseObjectPattern()
	case p.isPunct("["):
		return p.parseArrayPattern()
	default:
		name := p.expectIdentName()
		return &Identifier{base: p.finish(start), Name: name}
	}
}

func (p *Parser) parsePatternWithDefault() Pattern {
	start := p.tok.Span.Start
	pattern := p.parsePattern()
	if p.eatPunct("=") {
		def := p.parseAssign()
		return &AssignPattern{base: p.finish(start), Target: pattern, Default: def}
	}
	return pattern
}

func (p *Parser) parseObjectPattern() Pattern {
	start := p.tok.Span.Start
	p.expectPunct("{")
	var props []*ObjectPatternProp
	var rest Pattern
	for !p.isPunct("}") {
		if p.isPunct("...") {
			p.next()
			rest = p.parsePattern()
			break
		}
		pstart := p.tok.Span.Start
		computed := false
		var key Expr
		if p.eatPunct("[") {
			computed = true
			key = p.parseAssign()
			p.expectPunct("]")
		} else if p.tok.Kind == TokString {
			key = &StringLit{base: base{span: p.tok.Span, id: p.arena.take()}, Value: p.tok.Value, Raw: p.tok.Text}
			p.next()
		} else {
			kstart := p.tok.Span.Start
			name := p.expectIdentName()
			key = &Identifier{base: p.finish(kstart), Name: name}
		}
		var value Pattern
		if p.eatPunct(":") {
			value = p.parsePattern()
		} else {
			ident, ok := key.(*Identifier)
			if !ok {
				p.fail("shorthand pattern property requires an identifier key")
			}
			value = ident
		}
		if p.eatPunct("=") {
			def := p.parseAssign()
			value = &AssignPattern{base: p.finish(pstart), Target: value, Default: def}
		}
		props = append(props, &ObjectPatternProp{base: p.finish(pstart), Key: key, Value: value, Computed: computed})
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("}")
	return &ObjectPattern{base: p.finish(start), Props: props, Rest: rest}
}

func (p *Parser) parseArrayPattern() Pattern {
	start := p.tok.Span.Start
	p.expectPunct("[")
	var elements []Pattern
	var rest Pattern
	for !p.isPunct("]") {
		if p.isPunct(",") {
			elements = append(elements, nil)
			p.next()
			continue
		}
		if p.isPunct("...") {
			p.next()
			rest = p.parsePattern()
			break
		}
		elements = append(elements, p.parsePatternWithDefault())
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("]")
	return &ArrayPattern{base: p.finish(start), Elements: elements, Rest: rest}
}

// ---- Expressions ----

// parseExpression parses a full expression including comma sequences.
func (p *Parser) parseExpression() Expr {
	start := p.tok.Span.Start
	first := p.parseAssign()
	if !p.isPunct(",") {
		return first
	}
	exprs := []Expr{first}
	for p.eatPunct(",") {
		exprs = append(exprs, p.parseAssign())
	}
	return &SeqExpr{base: p.finish(start), Exprs: exprs}
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true, "&&=": true, "||=": true, "??=": true,
}

func (p *Parser) parseAssign() Expr {
	start := p.tok.Span.Start
	expr := p.parseConditional()

	if p.isPunct("=>") {
		return p.parseArrowFromExpr(start, expr)
	}

	if p.tok.Kind == TokPunct && assignOps[p.tok.Text] {
		op := p.tok.Text
		p.next()
		if !validAssignTarget(expr) {
			p.fail("invalid assignment target")
		}
		value := p.parseAssign()
		return &AssignExpr{base: p.finish(start), Op: op, Target: expr, Value: value}
	}
	return expr
}

func validAssignTarget(expr Expr) bool {
	switch e := expr.(type) {
	case *Identifier, *MemberExpr, *ObjectLit, *ArrayLit, *ObjectPattern, *ArrayPattern:
		return true
	case *ParenExpr:
		return validAssignTarget(e.Inner)
	default:
		return false
	}
}

// parseArrowFromExpr reinterprets an already-parsed expression as an arrow
// function parameter list. This avoids lexer backtracking: "(a, b)" parses
// as a parenthesized sequence first and converts here when "=>" follows.
func (p *Parser) parseArrowFromExpr(start int, expr Expr) Expr {
	params := p.exprToParams(expr)
	p.expectPunct("=>")
	var body Node
	if p.isPunct("{") {
		body = p.parseBlock()
	} else {
		body = p.parseAssign()
	}
	return &ArrowFn{base: p.finish(start), Params: params, Body: body}
}

func (p *Parser) exprToParams(expr Expr) []Pattern {
	switch e := expr.(type) {
	case *Identifier:
		return []Pattern{e}
	case *ParenExpr:
		if e.Inner == nil {
			return nil
		}
		if seq, ok := e.Inner.(*SeqExpr); ok {
			params := make([]Pattern, 0, len(seq.Exprs))
			for _, item := range seq.Exprs {
				params = append(params, p.exprToPattern(item))
			}
			return params
		}
		return []Pattern{p.exprToPattern(e.Inner)}
	default:
		p.fail("invalid arrow function parameter list")
		return nil
	}
}

// exprToPattern converts an expression that appeared in a binding position
// into its pattern form.
func (p *Parser) exprToPattern(expr Expr) Pattern {
	switch e := expr.(type) {
	case *Identifier:
		return e
	case *AssignExpr:
		if e.Op != "=" {
			p.fail("invalid destructuring default")
		}
		target := p.exprToPattern(e.Target)
		return &AssignPattern{base: base{span: e.span, id: p.arena.take()}, Target: target, Default: e.Value}
	case *SpreadElement:
		return &RestElement{base: base{span: e.span, id: p.arena.take()}, Arg: p.exprToPattern(e.Arg)}
	case *ObjectLit:
		var props []*ObjectPatternProp
		var rest Pattern
		for _, entry := range e.Properties {
			switch prop := entry.(type) {
			case *SpreadElement:
				rest = p.exprToPattern(prop.Arg)
			case *Property:
				props = append(props, &ObjectPatternProp{
					base:     base{span: prop.span, id: p.arena.take()},
					Key:      prop.Key,
					Value:    p.exprToPattern(prop.Value),
					Computed: prop.Computed,
				})
			}
		}
		return &ObjectPattern{base: base{span: e.span, id: p.arena.take()}, Props: props, Rest: rest}
	case *ArrayLit:
		var elements []Pattern
		var rest Pattern
		for _, el := range e.Elements {
			if el == nil {
				elements = append(elements, nil)
				continue
			}
			if spread, ok := el.(*SpreadElement); ok {
				rest = p.exprToPattern(spread.Arg)
				continue
			}
			elements = append(elements, p.exprToPattern(el))
		}
		return &ArrayPattern{base: base{span: e.span, id: p.arena.take()}, Elements: elements, Rest: rest}
	case *ParenExpr:
		return p.exprToPattern(e.Inner)
	default:
		p.fail("invalid binding pattern")
		return nil
	}
}

func (p *Parser) parseConditional() Expr {
	start := p.tok.Span.Start
	test := p.parseBinary(0)
	if !p.eatPunct("?") {
		return test
	}
	cons := p.parseAssign()
	p.expectPunct(":")
	alt := p.parseAssign()
	return &CondExpr{base: p.finish(start), Test: test, Cons: cons, Alt: alt}
}

// binaryPrec returns the precedence of a binary operator token, or 0 when
// the token is not a binary operator. "in" is excluded inside for-loop
// heads.
func (p *Parser) binaryPrec(tok Token) int {
	if tok.Kind == TokIdent {
		switch tok.Text {
		case "in":
			if p.noIn {
				return 0
			}
			return 8
		case "instanceof":
			return 8
		}
		return 0
	}
	if tok.Kind != TokPunct {
		return 0
	}
	switch tok.Text {
	case "??":
		return 1
	case "||":
		return 2
	case "&&":
		return 3
	case "|":
		return 4
	case "^":
		return 5
	case "&":
		return 6
	case "==", "!=", "===", "!==":
		return 7
	case "<", ">", "<=", ">=":
		return 8
	case "<<", ">>", ">>>":
		return 9
	case "+", "-":
		return 10
	case "*", "/", "%":
		return 11
	case "**":
		return 12
	}
	return 0
}

func (p *Parser) parseBinary(minPrec int) Expr {
	start := p.tok.Span.Start
	left := p.parseUnary()
	for {
		prec := p.binaryPrec(p.tok)
		if prec == 0 || prec < minPrec {
			return left
		}
		op := p.tok.Text
		p.next()
		var right Expr
		if op == "**" {
			right = p.parseBinary(prec) // right associative
		} else {
			right = p.parseBinary(prec + 1)
		}
		left = &BinaryExpr{base: p.finish(start), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() Expr {
	start := p.tok.Span.Start
	if p.tok.Kind == TokPunct {
		switch p.tok.Text {
		case "!", "-", "+", "~":
			op := p.tok.Text
			p.next()
			arg := p.parseUnary()
			return &UnaryExpr{base: p.finish(start), Op: op, Arg: arg}
		case "++", "--":
			op := p.tok.Text
			p.next()
			arg := p.parseUnary()
			return &UpdateExpr{base: p.finish(start), Op: op, Prefix: true, Arg: arg}
		}
	}
	if p.tok.Kind == TokIdent {
		switch p.tok.Text {
		case "typeof", "void", "delete":
			op := p.tok.Text
			p.next()
			arg := p.parseUnary()
			return &UnaryExpr{base: p.finish(start), Op: op, Arg: arg}
		case "new":
			p.next()
			callee := p.parsePostfix(p.parsePrimary(), false)
			var args []Expr
			if p.isPunct("(") {
				args = p.parseArgs()
			}
			expr := Expr(&NewExpr{base: p.finish(start), Callee: callee, Args: args})
			return p.parsePostfix(expr, true)
		}
	}
	expr := p.parsePostfix(p.parsePrimary(), true)
	if p.isPunct("++") || p.isPunct("--") {
		op := p.tok.Text
		p.next()
		return &UpdateExpr{base: p.finish(start), Op: op, Arg: expr}
	}
	return expr
}

// parsePostfix applies member access, calls and tagged-template suffixes.
// calls=false keeps call parens for the enclosing "new" expression.
func (p *Parser) parsePostfix(expr Expr, calls bool) Expr {
	start := expr.Span().Start
	for {
		switch {
		case p.eatPunct("."):
			pstart := p.tok.Span.Start
			name := p.expectIdentName()
			prop := &Identifier{base: p.finish(pstart), Name: name}
			expr = &MemberExpr{base: p.finish(start), Object: expr, Property: prop}
		case p.eatPunct("?."):
			if p.isPunct("(") {
				if !calls {
					return expr
				}
				args := p.parseArgs()
				expr = &CallExpr{base: p.finish(start), Callee: expr, Args: args, Optional: true}
				continue
			}
			if p.eatPunct("[") {
				prop := p.parseExpression()
				p.expectPunct("]")
				expr = &MemberExpr{base: p.finish(start), Object: expr, Property: prop, Computed: true, Optional: true}
				continue
			}
			pstart := p.tok.Span.Start
			name := p.expectIdentName()
			prop := &Identifier{base: p.finish(pstart), Name: name}
			expr = &MemberExpr{base: p.finish(start), Object: expr, Property: prop, Optional: true}
		case p.eatPunct("["):
			prop := p.parseExpression()
			p.expectPunct("]")
			expr = &MemberExpr{base: p.finish(start), Object: expr, Property: prop, Computed: true}
		case p.isPunct("("):
			if !calls {
				return expr
			}
			args := p.parseArgs()
			expr = &CallExpr{base: p.finish(start), Callee: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []Expr {
	p.expectPunct("(")
	var args []Expr
	for !p.isPunct(")") {
		if p.isPunct("...") {
			sstart := p.tok.Span.Start
			p.next()
			arg := p.parseAssign()
			args = append(args, &SpreadElement{base: p.finish(sstart), Arg: arg})
		} else {
			args = append(args, p.parseAssign())
		}
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct(")")
	return args
}

func (p *Parser) parsePrimary() Expr {
	start := p.tok.Span.Start

	switch p.tok.Kind {
	case TokNumber:
		raw := p.tok.Text
		p.next()
		return &NumberLit{base: p.finish(start), Raw: raw}
	case TokString:
		raw, value := p.tok.Text, p.tok.Value
		p.next()
		return &StringLit{base: p.finish(start), Value: value, Raw: raw}
	case TokRegexp:
		raw := p.tok.Text
		p.next()
		return &RegexpLit{base: p.finish(start), Raw: raw}
	case TokIdent:
		switch p.tok.Text {
		case "true", "false":
			value := p.tok.Text == "true"
			p.next()
			return &BoolLit{base: p.finish(start), Value: value}
		case "null", "undefined":
			if p.tok.Text == "undefined" {
				p.next()
				return &Identifier{base: p.finish(start), Name: "undefined"}
			}
			p.next()
			return &NullLit{base: p.finish(start)}
		case "this":
			p.next()
			return &ThisExpr{base: p.finish(start)}
		case "function":
			return p.parseFuncExpr()
		case "class", "async", "await", "yield":
			p.fail("%q is not supported in component scripts", p.tok.Text)
		}
		name := p.tok.Text
		p.next()
		return &Identifier{base: p.finish(start), Name: name}
	case TokPunct:
		switch p.tok.Text {
		case "(":
			p.next()
			if p.eatPunct(")") {
				// Only valid as an arrow parameter list.
				if !p.isPunct("=>") {
					p.fail("unexpected token \")\"")
				}
				return &ParenExpr{base: p.finish(start)}
			}
			inner := p.parseParenInner()
			p.expectPunct(")")
			return &ParenExpr{base: p.finish(start), Inner: inner}
		case "[":
			return p.parseArrayLit()
		case "{":
			return p.parseObjectLit()
		case "`":
			return p.parseTemplateLit()
		}
	}
	p.fail("unexpected token %q", p.tok.Text)
	return nil
}

// parseParenInner parses a parenthesized expression, additionally allowing
// spread elements so that "(a, ...rest) =>" can convert to parameters.
func (p *Parser) parseParenInner() Expr {
	start := p.tok.Span.Start
	parseItem := func() Expr {
		if p.isPunct("...") {
			sstart := p.tok.Span.Start
			p.next()
			arg := p.parseAssign()
			return &SpreadElement{base: p.finish(sstart), Arg: arg}
		}
		return p.parseAssign()
	}
	first := parseItem()
	if !p.isPunct(",") {
		return first
	}
	exprs := []Expr{first}
	for p.eatPunct(",") {
		exprs = append(exprs, parseItem())
	}
	return &SeqExpr{base: p.finish(start), Exprs: exprs}
}

func (p *Parser) parseFuncExpr() Expr {
	start := p.tok.Span.Start
	p.next() // function
	name := ""
	if p.tok.Kind == TokIdent {
		name = p.expectIdentName()
	}
	params := p.parseParams()
	body := p.parseBlock()
	return &FuncExpr{base: p.finish(start), Name: name, Params: params, Body: body}
}

func (p *Parser) parseArrayLit() Expr {
	start := p.tok.Span.Start
	p.expectPunct("[")
	var elements []Expr
	for !p.isPunct("]") {
		if p.isPunct(",") {
			elements = append(elements, nil)
			p.next()
			continue
		}
		if p.isPunct("...") {
			sstart := p.tok.Span.Start
			p.next()
			arg := p.parseAssign()
			elements = append(elements, &SpreadElement{base: p.finish(sstart), Arg: arg})
		} else {
			elements = append(elements, p.parseAssign())
		}
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("]")
	return &ArrayLit{base: p.finish(start), Elements: elements}
}

func (p *Parser) parseObjectLit() Expr {
	start := p.tok.Span.Start
	p.expectPunct("{")
	var properties []Expr
	for !p.isPunct("}") {
		if p.isPunct("...") {
			sstart := p.tok.Span.Start
			p.next()
			arg := p.parseAssign()
			properties = append(properties, &SpreadElement{base: p.finish(sstart), Arg: arg})
			if !p.eatPunct(",") {
				break
			}
			continue
		}

		pstart := p.tok.Span.Start
		computed := false
		var key Expr
		switch {
		case p.eatPunct("["):
			computed = true
			key = p.parseAssign()
			p.expectPunct("]")
		case p.tok.Kind == TokString:
			key = &StringLit{base: base{span: p.tok.Span, id: p.arena.take()}, Value: p.tok.Value, Raw: p.tok.Text}
			p.next()
		case p.tok.Kind == TokNumber:
			key = &NumberLit{base: base{span: p.tok.Span, id: p.arena.take()}, Raw: p.tok.Text}
			p.next()
		default:
			kstart := p.tok.Span.Start
			name := p.expectIdentName()
			key = &Identifier{base: p.finish(kstart), Name: name}
		}

		var value Expr
		shorthand := false
		switch {
		case p.eatPunct(":"):
			value = p.parseAssign()
		case p.isPunct("("):
			// Method shorthand.
			params := p.parseParams()
			body := p.parseBlock()
			value = &FuncExpr{base: p.finish(pstart), Params: params, Body: body}
		default:
			ident, ok := key.(*Identifier)
			if !ok {
				p.fail("shorthand property requires an identifier key")
			}
			shorthand = true
			value = ident
			if p.eatPunct("=") {
				// Only meaningful when this literal converts to a pattern.
				def := p.parseAssign()
				value = &AssignExpr{base: p.finish(pstart), Op: "=", Target: ident, Value: def}
			}
		}
		properties = append(properties, &Property{base: p.finish(pstart), Key: key, Value: value, Computed: computed, Shorthand: shorthand})
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("}")
	return &ObjectLit{base: p.finish(start), Properties: properties}
}

func (p *Parser) parseTemplateLit() Expr {
	start := p.tok.Span.Start
	// Current token is the opening backtick; the lexer sits right after it.
	var quasis []string
	var exprs []Expr
	for {
		chunk, interp, ok := p.lex.TemplateChunk()
		if !ok {
			panic(&ParseError{Code: "unexpected-eof", Message: "unterminated template literal", Span: pos.NewSpan(start, p.lex.Pos())})
		}
		quasis = append(quasis, chunk)
		if !interp {
			break
		}
		p.prevEnd = p.lex.Pos()
		p.advance()
		exprs = append(exprs, p.parseExpression())
		if !p.isPunct("}") {
			p.fail("expected \"}\" after template interpolation")
		}
		// The lexer is positioned just after "}", at raw template text.
	}
	p.prevEnd = p.lex.Pos()
	p.advance()
	return &TemplateLit{base: base{span: pos.NewSpan(start, p.prevEnd), id: p.arena.take()}, Quasis: quasis, Exprs: exprs}
}
