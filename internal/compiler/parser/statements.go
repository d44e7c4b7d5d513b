package parser

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/lexer"
)

// parseStatement parses one statement; a trailing semicolon is consumed
func (p *Parser) parseStatement() ast.Stmt {
	tok := p.peek()

	var stmt ast.Stmt
	switch {
	case tok.Is("const"), tok.Is("let"):
		stmt = p.parseVarStatement()
	case tok.Is("return"):
		stmt = p.parseReturnStatement()
	case tok.Type == lexer.TOKEN_LBRACE:
		body, ok := p.parseBlockBody()
		if ok {
			stmt = &ast.BlockStmt{Body: body, Loc: p.loc(tok)}
		}
	default:
		if expr := p.parseExpression(); expr != nil {
			stmt = &ast.ExprStmt{Expr: expr, Loc: p.loc(tok)}
		}
	}

	if stmt != nil {
		p.match(lexer.TOKEN_SEMICOLON)
	}
	return stmt
}

// parseBlockBody parses `{ statement* }`
func (p *Parser) parseBlockBody() ([]ast.Stmt, bool) {
	if _, ok := p.consume(lexer.TOKEN_LBRACE, "Expected '{'"); !ok {
		return nil, false
	}

	body := make([]ast.Stmt, 0)
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		if p.match(lexer.TOKEN_SEMICOLON) {
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil, false
		}
		body = append(body, stmt)
	}

	_, ok := p.consume(lexer.TOKEN_RBRACE, "Expected '}' after block")
	return body, ok
}

// parseVarStatement parses `const name: T = init` and `const [a, b] = init`
func (p *Parser) parseVarStatement() ast.Stmt {
	keyword := p.advance()
	stmt := &ast.VarStmt{Keyword: keyword.Lexeme, Loc: p.loc(keyword)}

	if p.match(lexer.TOKEN_LBRACKET) {
		stmt.Pattern = make([]string, 0)
		for !p.check(lexer.TOKEN_RBRACKET) && !p.isAtEnd() {
			name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected binding name in array pattern")
			if !ok {
				return nil
			}
			stmt.Pattern = append(stmt.Pattern, name.Lexeme)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		if _, ok := p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after array pattern"); !ok {
			return nil
		}
	} else {
		name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected variable name")
		if !ok {
			return nil
		}
		stmt.Name = name.Lexeme
	}

	if p.match(lexer.TOKEN_COLON) {
		if stmt.Type = p.parseType(); stmt.Type == nil {
			return nil
		}
	}
	if p.match(lexer.TOKEN_EQUALS) {
		if stmt.Init = p.parseExpression(); stmt.Init == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	tok := p.advance()
	stmt := &ast.ReturnStmt{Loc: p.loc(tok)}
	if p.isAtEnd() || p.check(lexer.TOKEN_SEMICOLON) || p.check(lexer.TOKEN_RBRACE) {
		return stmt
	}
	if stmt.Value = p.parseExpression(); stmt.Value == nil {
		return nil
	}
	return stmt
}

// Class members

var memberModifiers = map[string]bool{
	"static":    true,
	"readonly":  true,
	"public":    true,
	"private":   true,
	"protected": true,
	"declare":   true,
	"override":  true,
	"async":     true,
}

// isModifier reports whether the current token is a modifier rather than a
// member named like one (`static: boolean`)
func (p *Parser) isModifier() bool {
	tok := p.peek()
	return tok.Type == lexer.TOKEN_IDENTIFIER && memberModifiers[tok.Lexeme] && p.isMemberName(p.peekAt(1))
}

// parseField parses `[modifiers] name[?|!][: T][= init]`
func (p *Parser) parseField() *ast.FieldDecl {
	field := &ast.FieldDecl{Loc: p.loc(p.peek())}

	for p.isModifier() {
		switch p.advance().Lexeme {
		case "static":
			field.Static = true
		case "readonly":
			field.Readonly = true
		}
	}

	nameTok := p.peek()
	if !p.isMemberName(nameTok) {
		p.error(nameTok, "Expected field name")
		return nil
	}
	p.advance()
	field.Name = memberName(nameTok)

	switch {
	case p.match(lexer.TOKEN_QUESTION):
		field.Optional = true
	case p.match(lexer.TOKEN_BANG):
		field.Definite = true
	}

	if p.match(lexer.TOKEN_COLON) {
		if field.Type = p.parseType(); field.Type == nil {
			return nil
		}
	}
	if p.match(lexer.TOKEN_EQUALS) {
		if field.Initializer = p.parseExpression(); field.Initializer == nil {
			return nil
		}
	}
	return field
}

var parameterModifiers = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
	"readonly":  true,
}

// parseParameter parses `[modifier] name[?][: T]`
func (p *Parser) parseParameter() *ast.Parameter {
	param := &ast.Parameter{Loc: p.loc(p.peek())}

	for p.check(lexer.TOKEN_IDENTIFIER) && parameterModifiers[p.peek().Lexeme] &&
		p.peekAt(1).Type == lexer.TOKEN_IDENTIFIER {
		modifier := p.advance().Lexeme
		if param.Modifier == "" {
			param.Modifier = modifier
		}
	}

	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected parameter name")
	if !ok {
		return nil
	}
	param.Name = name.Lexeme
	param.Optional = p.match(lexer.TOKEN_QUESTION)

	if p.match(lexer.TOKEN_COLON) {
		if param.Type = p.parseType(); param.Type == nil {
			return nil
		}
	}
	if p.check(lexer.TOKEN_EQUALS) {
		p.error(p.peek(), "Parameter default values are not supported")
		return nil
	}
	return param
}

// parseParameterList parses parameters after the opening parenthesis
func (p *Parser) parseParameterList() ([]*ast.Parameter, bool) {
	params := make([]*ast.Parameter, 0)
	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
		param := p.parseParameter()
		if param == nil {
			return nil, false
		}
		params = append(params, param)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	_, ok := p.consume(lexer.TOKEN_RPAREN, "Expected ')' after parameters")
	return params, ok
}

// parseMethodSignature parses `[modifiers] name(params)[: T]`
func (p *Parser) parseMethodSignature() *ast.MethodDecl {
	method := &ast.MethodDecl{Loc: p.loc(p.peek()), Body: make([]ast.Stmt, 0)}

	for p.isModifier() {
		if p.advance().Lexeme == "static" {
			method.Static = true
		}
	}

	nameTok := p.peek()
	if !p.isMemberName(nameTok) {
		p.error(nameTok, "Expected method name")
		return nil
	}
	p.advance()
	method.Name = memberName(nameTok)

	if _, ok := p.consume(lexer.TOKEN_LPAREN, "Expected '(' after method name"); !ok {
		return nil
	}
	params, ok := p.parseParameterList()
	if !ok {
		return nil
	}
	method.Params = params

	if p.match(lexer.TOKEN_COLON) {
		if method.ReturnType = p.parseType(); method.ReturnType == nil {
			return nil
		}
	}
	return method
}
