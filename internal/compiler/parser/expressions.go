package parser

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/lexer"
)

// Expression grammar (from lowest to highest precedence):
// expression → arrow | assignment
// arrow      → ( NAME | "(" parameters ")" ) "=>" ( block | assignment )
// assignment → logicalOr ( "=" assignment )?
// logicalOr  → logicalAnd ( "||" logicalAnd )*
// logicalAnd → equality ( "&&" equality )*
// equality   → comparison ( ( "==" | "!=" | "===" | "!==" ) comparison )*
// comparison → term ( ( ">" | ">=" | "<" | "<=" ) term )*
// term       → factor ( ( "+" | "-" ) factor )*
// factor     → unary ( ( "*" | "/" | "%" ) unary )*
// unary      → ( "!" | "-" | "typeof" ) unary | call
// call       → ( "new" newTarget | primary ) ( "(" arguments? ")" | "." NAME | "[" expression "]" )*
// primary    → literal | NAME | "this" | "super" | "(" expression ")" | array | object

// parseExpression is the entry point for expression parsing
func (p *Parser) parseExpression() ast.Expr {
	if p.isArrowStart() {
		return p.parseArrowFunction()
	}
	return p.parseAssignment()
}

func (p *Parser) isArrowStart() bool {
	switch {
	case p.check(lexer.TOKEN_IDENTIFIER):
		return p.peekAt(1).Type == lexer.TOKEN_ARROW
	case p.check(lexer.TOKEN_LPAREN):
		return p.tokenAt(p.matchingClose(lexer.TOKEN_LPAREN, lexer.TOKEN_RPAREN)+1).Type == lexer.TOKEN_ARROW
	}
	return false
}

func (p *Parser) parseArrowFunction() ast.Expr {
	start := p.advance()
	fn := &ast.ArrowFunc{Loc: p.loc(start)}

	if start.Type == lexer.TOKEN_IDENTIFIER {
		fn.Params = []*ast.Parameter{{Name: start.Lexeme, Loc: p.loc(start)}}
	} else {
		params, ok := p.parseParameterList()
		if !ok {
			return nil
		}
		fn.Params = params
	}

	if _, ok := p.consume(lexer.TOKEN_ARROW, "Expected '=>' after arrow function parameters"); !ok {
		return nil
	}

	if p.check(lexer.TOKEN_LBRACE) {
		body, ok := p.parseBlockBody()
		if !ok {
			return nil
		}
		fn.Body = body
		return fn
	}

	if fn.Expr = p.parseExpression(); fn.Expr == nil {
		return nil
	}
	return fn
}

// parseAssignment handles assignment expressions
func (p *Parser) parseAssignment() ast.Expr {
	expr := p.parseBinary(0)
	if expr == nil || !p.check(lexer.TOKEN_EQUALS) {
		return expr
	}

	eq := p.advance()
	value := p.parseExpression()
	if value == nil {
		return nil
	}

	switch expr.(type) {
	case *ast.IdentifierExpr, *ast.MemberExpr, *ast.IndexExpr:
		return &ast.AssignExpr{Target: expr, Value: value, Loc: expr.Location()}
	}
	p.error(eq, "Invalid assignment target")
	return nil
}

// binaryLevels lists operator tokens from lowest to highest precedence
var binaryLevels = [][]lexer.TokenType{
	{lexer.TOKEN_DOUBLE_PIPE},
	{lexer.TOKEN_DOUBLE_AMP},
	{lexer.TOKEN_EQ, lexer.TOKEN_NEQ, lexer.TOKEN_STRICT_EQ, lexer.TOKEN_STRICT_NEQ},
	{lexer.TOKEN_LT, lexer.TOKEN_GT, lexer.TOKEN_LTE},
	{lexer.TOKEN_PLUS, lexer.TOKEN_MINUS},
	{lexer.TOKEN_STAR, lexer.TOKEN_SLASH, lexer.TOKEN_PERCENT},
}

// parseBinary handles left-associative binary operators by precedence level
func (p *Parser) parseBinary(level int) ast.Expr {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	expr := p.parseBinary(level + 1)
	if expr == nil {
		return nil
	}

	for p.match(binaryLevels[level]...) {
		operator := p.previous().Lexeme
		if operator == ">" && p.match(lexer.TOKEN_EQUALS) {
			operator = ">="
		}
		right := p.parseBinary(level + 1)
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{Left: expr, Operator: operator, Right: right, Loc: expr.Location()}
	}

	return expr
}

// parseUnary handles prefix operators
func (p *Parser) parseUnary() ast.Expr {
	if p.check(lexer.TOKEN_BANG) || p.check(lexer.TOKEN_MINUS) || p.checkWord("typeof") {
		operator := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{Operator: operator.Lexeme, Operand: operand, Loc: p.loc(operator)}
	}
	return p.parseCall()
}

// parseCall handles calls, property access and element access
func (p *Parser) parseCall() ast.Expr {
	var expr ast.Expr
	if p.checkWord("new") {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}

	for expr != nil {
		switch {
		case p.match(lexer.TOKEN_LPAREN):
			args, ok := p.parseArguments()
			if !ok {
				return nil
			}
			expr = &ast.CallExpr{Callee: expr, Arguments: args, Loc: expr.Location()}
		case p.match(lexer.TOKEN_DOT):
			name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected property name after '.'")
			if !ok {
				return nil
			}
			expr = &ast.MemberExpr{Object: expr, Property: name.Lexeme, Loc: expr.Location()}
		case p.match(lexer.TOKEN_LBRACKET):
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			if _, ok := p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after index"); !ok {
				return nil
			}
			expr = &ast.IndexExpr{Object: expr, Index: index, Loc: expr.Location()}
		default:
			return expr
		}
	}
	return nil
}

// parseNew parses `new Callee(args)`; the argument list is optional
func (p *Parser) parseNew() ast.Expr {
	start := p.advance()

	callee := p.parsePrimary()
	for callee != nil && p.match(lexer.TOKEN_DOT) {
		name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected property name after '.'")
		if !ok {
			return nil
		}
		callee = &ast.MemberExpr{Object: callee, Property: name.Lexeme, Loc: callee.Location()}
	}
	if callee == nil {
		return nil
	}

	expr := &ast.NewExpr{Callee: callee, Arguments: make([]ast.Expr, 0), Loc: p.loc(start)}
	if p.match(lexer.TOKEN_LPAREN) {
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		expr.Arguments = args
	}
	return expr
}

// parseArguments parses call arguments after the opening parenthesis
func (p *Parser) parseArguments() ([]ast.Expr, bool) {
	args := make([]ast.Expr, 0)
	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
		arg := p.parseExpression()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	_, ok := p.consume(lexer.TOKEN_RPAREN, "Expected ')' after arguments")
	return args, ok
}

//nolint:gocyclo // Primary expression dispatch
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch {
	case tok.Type == lexer.TOKEN_NUMBER_LITERAL, tok.Type == lexer.TOKEN_STRING_LITERAL:
		p.advance()
		return &ast.LiteralExpr{Value: tok.Literal, Loc: p.loc(tok)}
	case tok.Is("true"), tok.Is("false"):
		p.advance()
		return &ast.LiteralExpr{Value: tok.Lexeme == "true", Loc: p.loc(tok)}
	case tok.Is("null"):
		p.advance()
		return &ast.LiteralExpr{Value: nil, Loc: p.loc(tok)}
	case tok.Is("this"):
		p.advance()
		return &ast.ThisExpr{Loc: p.loc(tok)}
	case tok.Is("super"):
		p.advance()
		return &ast.SuperExpr{Loc: p.loc(tok)}
	case tok.Type == lexer.TOKEN_IDENTIFIER:
		p.advance()
		return &ast.IdentifierExpr{Name: tok.Lexeme, Loc: p.loc(tok)}
	case tok.Type == lexer.TOKEN_LPAREN:
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.consume(lexer.TOKEN_RPAREN, "Expected ')' after expression"); !ok {
			return nil
		}
		return inner
	case tok.Type == lexer.TOKEN_LBRACKET:
		return p.parseArrayLiteral()
	case tok.Type == lexer.TOKEN_LBRACE:
		return p.parseObjectLiteral()
	}

	p.error(tok, "Expected expression")
	return nil
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	open := p.advance()
	arr := &ast.ArrayExpr{Elements: make([]ast.Expr, 0), Loc: p.loc(open)}

	for !p.check(lexer.TOKEN_RBRACKET) && !p.isAtEnd() {
		elem := p.parseExpression()
		if elem == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, elem)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after array elements"); !ok {
		return nil
	}
	return arr
}

func (p *Parser) parseObjectLiteral() ast.Expr {
	open := p.advance()
	obj := &ast.ObjectExpr{Properties: make([]*ast.Property, 0), Loc: p.loc(open)}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		keyTok := p.peek()
		if !p.isMemberName(keyTok) && keyTok.Type != lexer.TOKEN_NUMBER_LITERAL {
			p.error(keyTok, "Expected property key")
			return nil
		}
		p.advance()

		prop := &ast.Property{Key: memberName(keyTok), Loc: p.loc(keyTok)}
		switch {
		case p.match(lexer.TOKEN_COLON):
			if prop.Value = p.parseExpression(); prop.Value == nil {
				return nil
			}
		case keyTok.Type == lexer.TOKEN_IDENTIFIER:
			// Shorthand `{ name }`
			prop.Value = &ast.IdentifierExpr{Name: keyTok.Lexeme, Loc: p.loc(keyTok)}
		default:
			p.error(p.peek(), "Expected ':' after property key")
			return nil
		}
		obj.Properties = append(obj.Properties, prop)

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_RBRACE, "Expected '}' after object literal"); !ok {
		return nil
	}
	return obj
}
