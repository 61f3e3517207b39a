// Package parser turns a DataCode token stream into a statement list with
// an expression AST, following the recursive-descent conventions of
// vippsas/sqlcode's sqlparser.Parse: each parse* function is entered
// positioned on the first token of its construct and returns with the
// cursor on the token after it.
package parser

import (
	"fmt"
	"strconv"

	"github.com/datacode-lang/datacode/ast"
	"github.com/datacode-lang/datacode/lexer"
	"github.com/datacode-lang/datacode/token"
)

// Error is a syntax or structural parse error, always naming the offending
// line.
type Error struct {
	Pos     token.Pos
	Message string
	// Structural is true for errors discovered past the token level (e.g.
	// unbalanced block terminators) — these map to ParseError rather than
	// SyntaxError in the runtime error taxonomy.
	Structural bool
}

func (e *Error) Error() string {
	kind := "SyntaxError"
	if e.Structural {
		kind = "ParseError"
	}
	return fmt.Sprintf("%s: %s (line %d)", kind, e.Message, e.Pos.Line)
}

type parser struct {
	file   string
	toks   []token.Token
	pos    int
}

// Parse lexes and parses source into a statement list.
func Parse(file, source string) ([]ast.Stmt, error) {
	toks, err := lexer.Tokenize(file, source)
	if err != nil {
		if lerr, ok := err.(*lexer.Error); ok {
			return nil, &Error{lerr.Pos, lerr.Message, false}
		}
		return nil, err
	}
	p := &parser{file: file, toks: toks}
	stmts, err := p.parseStatements(token.EOF)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != token.EOF {
		return nil, p.errorf(false, "unexpected token %s", p.cur().Kind)
	}
	return stmts, nil
}

func (p *parser) cur() token.Token  { return p.toks[p.pos] }
func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(structural bool, format string, args ...interface{}) *Error {
	return &Error{p.cur().Pos, fmt.Sprintf(format, args...), structural}
}

func (p *parser) expect(k token.Kind) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, p.errorf(false, "expected %s, got %s", k, p.cur().Kind)
	}
	return p.advance(), nil
}

// skipBlank consumes any run of NEWLINE tokens, treating blank lines (and
// comment-only lines, which the lexer already reduced to nothing) as
// absorbed whitespace between statements.
func (p *parser) skipBlank() {
	for p.cur().Kind == token.NEWLINE {
		p.advance()
	}
}

// parseStatements parses statements until the current token is one of
// terminators (which is left unconsumed), or EOF.
func (p *parser) parseStatements(terminators ...token.Kind) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		p.skipBlank()
		if p.cur().Kind == token.EOF {
			return stmts, nil
		}
		for _, t := range terminators {
			if p.cur().Kind == t {
				return stmts, nil
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.cur().Kind != token.NEWLINE && p.cur().Kind != token.EOF {
			found := false
			for _, t := range terminators {
				if p.cur().Kind == t {
					found = true
				}
			}
			if !found {
				return nil, p.errorf(false, "expected end of statement, got %s", p.cur().Kind)
			}
		}
	}
}

func (p *parser) parseStatement() (ast.Stmt, error) {
	switch p.cur().Kind {
	case token.GLOBAL, token.LOCAL:
		if p.peekAt(1).Kind == token.FUNCTION {
			return p.parseFuncDef()
		}
		return p.parseAssign()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.TRY:
		return p.parseTry()
	case token.THROW:
		return p.parseThrow()
	case token.IDENT:
		if p.peekAt(1).Kind == token.ASSIGN {
			return p.parseAssign()
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseAssign() (ast.Stmt, error) {
	pos := p.cur().Pos
	var qualifier token.Kind
	if p.cur().Kind == token.GLOBAL || p.cur().Kind == token.LOCAL {
		qualifier = p.advance().Kind
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{Pos: pos, Qualifier: qualifier, Name: nameTok.Literal, Value: value}, nil
}

func (p *parser) parseExprStmt() (ast.Stmt, error) {
	pos := p.cur().Pos
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Pos: pos, X: x}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	pos := p.advance().Pos // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	thenBody, err := p.parseStatements(token.ELSE, token.ENDIF)
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Stmt
	if p.cur().Kind == token.ELSE {
		p.advance()
		elseBody, err = p.parseStatements(token.ENDIF)
		if err != nil {
			return nil, err
		}
	}
	if p.cur().Kind != token.ENDIF {
		return nil, p.errorf(true, "unterminated if: expected endif, got %s", p.cur().Kind)
	}
	p.advance()
	return &ast.IfStmt{Pos: pos, Cond: cond, Then: thenBody, Else: elseBody}, nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	pos := p.advance().Pos // 'for'
	var vars []string
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	vars = append(vars, nameTok.Literal)
	for p.cur().Kind == token.COMMA {
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		vars = append(vars, nameTok.Literal)
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(token.FOREND, token.NEXT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.ForStmt{Pos: pos, Vars: vars, Iter: iter, Body: body}
	switch p.cur().Kind {
	case token.FOREND:
		p.advance()
	case token.NEXT:
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if len(vars) != 1 || nameTok.Literal != vars[0] {
			return nil, &Error{nameTok.Pos, fmt.Sprintf("next %s does not match loop variable", nameTok.Literal), false}
		}
		stmt.NextIdent = nameTok.Literal
		stmt.UsedNext = true
	default:
		return nil, p.errorf(true, "unterminated for: expected forend or next, got %s", p.cur().Kind)
	}
	return stmt, nil
}

func (p *parser) parseFuncDef() (ast.Stmt, error) {
	pos := p.cur().Pos
	qualifier := p.advance().Kind // global|local
	if _, err := p.expect(token.FUNCTION); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	if p.cur().Kind != token.RPAREN {
		for {
			pt, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			params = append(params, pt.Literal)
			if p.cur().Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(token.ENDFUNCTION)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != token.ENDFUNCTION {
		return nil, p.errorf(true, "unterminated function: expected endfunction, got %s", p.cur().Kind)
	}
	p.advance()
	return &ast.FuncDefStmt{Pos: pos, Qualifier: qualifier, Name: nameTok.Literal, Params: params, Body: body}, nil
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	pos := p.advance().Pos // 'return'
	if p.cur().Kind == token.NEWLINE || p.cur().Kind == token.EOF ||
		p.cur().Kind == token.ENDFUNCTION || p.cur().Kind == token.ENDIF ||
		p.cur().Kind == token.ENDTRY || p.cur().Kind == token.FOREND ||
		p.cur().Kind == token.NEXT || p.cur().Kind == token.ELSE ||
		p.cur().Kind == token.CATCH || p.cur().Kind == token.FINALLY {
		return &ast.ReturnStmt{Pos: pos}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Pos: pos, Value: value}, nil
}

func (p *parser) parseThrow() (ast.Stmt, error) {
	pos := p.advance().Pos // 'throw'
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ThrowStmt{Pos: pos, Value: value}, nil
}

func (p *parser) parseTry() (ast.Stmt, error) {
	pos := p.advance().Pos // 'try'
	tryBody, err := p.parseStatements(token.CATCH, token.FINALLY, token.ENDTRY)
	if err != nil {
		return nil, err
	}
	stmt := &ast.TryStmt{Pos: pos, Try: tryBody}
	if p.cur().Kind == token.CATCH {
		p.advance()
		var name string
		if p.cur().Kind == token.IDENT {
			name = p.advance().Literal
		}
		catchBody, err := p.parseStatements(token.FINALLY, token.ENDTRY)
		if err != nil {
			return nil, err
		}
		stmt.Catch = &ast.CatchClause{Name: name, Body: catchBody}
	}
	if p.cur().Kind == token.FINALLY {
		p.advance()
		finallyBody, err := p.parseStatements(token.ENDTRY)
		if err != nil {
			return nil, err
		}
		stmt.Finally = finallyBody
	}
	if p.cur().Kind != token.ENDTRY {
		return nil, p.errorf(true, "unterminated try: expected endtry, got %s", p.cur().Kind)
	}
	p.advance()
	return stmt, nil
}

// ---- Expressions ----
//
// Precedence, low to high:
//   or -> and -> not -> comparisons -> additive -> multiplicative -> unary minus -> postfix -> primary

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.OR {
		pos := p.advance().Pos
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Pos: pos, Op: token.OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.AND {
		pos := p.advance().Pos
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Pos: pos, Op: token.AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.cur().Kind == token.NOT {
		pos := p.advance().Pos
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: pos, Op: token.NOT, X: x}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[token.Kind]bool{
	token.EQ: true, token.NEQ: true, token.LT: true, token.GT: true, token.LE: true, token.GE: true,
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for comparisonOps[p.cur().Kind] {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.PLUS || p.cur().Kind == token.MINUS {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.STAR || p.cur().Kind == token.SLASH {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.cur().Kind == token.MINUS {
		pos := p.advance().Pos
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: pos, Op: token.MINUS, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.LBRACKET:
			pos := p.advance().Pos
			p.skipBlank()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			p.skipBlank()
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			x = &ast.IndexExpr{Pos: pos, X: x, Index: idx}
		case token.DOT:
			pos := p.advance().Pos
			fieldTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			x = &ast.FieldExpr{Pos: pos, X: x, Field: fieldTok.Literal}
		default:
			return x, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.NULL:
		p.advance()
		return &ast.NullLit{Pos: tok.Pos}, nil
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Pos: tok.Pos, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Pos: tok.Pos, Value: false}, nil
	case token.INT:
		p.advance()
		v, err := parseInt(tok.Literal)
		if err != nil {
			return nil, &Error{tok.Pos, err.Error(), false}
		}
		return &ast.IntLit{Pos: tok.Pos, Value: v}, nil
	case token.REAL:
		p.advance()
		v, err := parseFloat(tok.Literal)
		if err != nil {
			return nil, &Error{tok.Pos, err.Error(), false}
		}
		return &ast.RealLit{Pos: tok.Pos, Value: v}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLit{Pos: tok.Pos, Value: tok.Literal}, nil
	case token.LPAREN:
		p.advance()
		p.skipBlank()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	case token.LBRACKET:
		return p.parseArrayLit()
	case token.LBRACE:
		return p.parseObjectLit()
	case token.IDENT:
		p.advance()
		if p.cur().Kind == token.LPAREN {
			return p.parseCall(tok)
		}
		return &ast.Ident{Pos: tok.Pos, Name: tok.Literal}, nil
	}
	return nil, p.errorf(false, "unexpected token %s in expression", tok.Kind)
}

func (p *parser) parseArrayLit() (ast.Expr, error) {
	pos := p.advance().Pos // '['
	var elems []ast.Expr
	p.skipBlank()
	for p.cur().Kind != token.RBRACKET {
		el, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		p.skipBlank()
		if p.cur().Kind == token.COMMA {
			p.advance()
			p.skipBlank()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Pos: pos, Elements: elems}, nil
}

func (p *parser) parseObjectLit() (ast.Expr, error) {
	pos := p.advance().Pos // '{'
	var entries []ast.ObjectEntry
	p.skipBlank()
	for p.cur().Kind != token.RBRACE {
		var key string
		switch p.cur().Kind {
		case token.IDENT:
			key = p.advance().Literal
		case token.STRING:
			key = p.advance().Literal
		default:
			return nil, p.errorf(false, "expected object key, got %s", p.cur().Kind)
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		p.skipBlank()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.ObjectEntry{Key: key, Value: val})
		p.skipBlank()
		if p.cur().Kind == token.COMMA {
			p.advance()
			p.skipBlank()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ObjectLit{Pos: pos, Entries: entries}, nil
}

func (p *parser) parseCall(nameTok token.Token) (ast.Expr, error) {
	p.advance() // '('
	var args []ast.Expr
	p.skipBlank()
	for p.cur().Kind != token.RPAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipBlank()
		if p.cur().Kind == token.COMMA {
			p.advance()
			p.skipBlank()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CallExpr{Pos: nameTok.Pos, Callee: nameTok.Literal, Args: args}, nil
}

func parseInt(lit string) (int64, error) {
	return strconv.ParseInt(lit, 10, 64)
}

func parseFloat(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}
