package parser

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/lexer"
)

// Type grammar (from lowest to highest precedence):
// type         → union ( "extends" union "?" type ":" type )?
// union        → "|"? intersection ( "|" intersection )*
// intersection → array ( "&" array )*
// array        → primary ( "[" "]" )*
// primary      → "(" type ")" | function | tuple | object | literal
//              | "typeof" call | NAME ( "." NAME )* ( "<" type ( "," type )* ">" )?

func (p *Parser) parseType() *ast.TypeNode {
	t := p.parseUnionType()
	if t == nil || !p.checkWord("extends") {
		return t
	}

	start := p.advance()
	extends := p.parseUnionType()
	if extends == nil {
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_QUESTION, "Expected '?' in conditional type"); !ok {
		return nil
	}
	whenTrue := p.parseType()
	if whenTrue == nil {
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' in conditional type"); !ok {
		return nil
	}
	whenFalse := p.parseType()
	if whenFalse == nil {
		return nil
	}

	return &ast.TypeNode{
		Kind:    ast.TypeConditional,
		Members: []*ast.TypeNode{t, extends, whenTrue, whenFalse},
		Loc:     p.loc(start),
	}
}

func (p *Parser) parseUnionType() *ast.TypeNode {
	start := p.peek()
	p.match(lexer.TOKEN_PIPE)

	first := p.parseIntersectionType()
	if first == nil {
		return nil
	}
	members := []*ast.TypeNode{first}
	for p.match(lexer.TOKEN_PIPE) {
		m := p.parseIntersectionType()
		if m == nil {
			return nil
		}
		members = append(members, m)
	}

	if len(members) == 1 {
		return first
	}
	return &ast.TypeNode{Kind: ast.TypeUnion, Members: members, Loc: p.loc(start)}
}

func (p *Parser) parseIntersectionType() *ast.TypeNode {
	start := p.peek()

	first := p.parseArrayType()
	if first == nil {
		return nil
	}
	members := []*ast.TypeNode{first}
	for p.match(lexer.TOKEN_AMP) {
		m := p.parseArrayType()
		if m == nil {
			return nil
		}
		members = append(members, m)
	}

	if len(members) == 1 {
		return first
	}
	return &ast.TypeNode{Kind: ast.TypeIntersection, Members: members, Loc: p.loc(start)}
}

func (p *Parser) parseArrayType() *ast.TypeNode {
	t := p.parsePrimaryType()
	for t != nil && p.check(lexer.TOKEN_LBRACKET) && p.peekAt(1).Type == lexer.TOKEN_RBRACKET {
		p.advance()
		p.advance()
		t = &ast.TypeNode{Kind: ast.TypeArray, Element: t, Loc: t.Loc}
	}
	return t
}

//nolint:gocyclo // Type dispatch
func (p *Parser) parsePrimaryType() *ast.TypeNode {
	tok := p.peek()

	switch {
	case tok.Type == lexer.TOKEN_LPAREN:
		if p.tokenAt(p.matchingClose(lexer.TOKEN_LPAREN, lexer.TOKEN_RPAREN)+1).Type == lexer.TOKEN_ARROW {
			return p.parseFunctionType()
		}
		p.advance()
		inner := p.parseType()
		if inner == nil {
			return nil
		}
		if _, ok := p.consume(lexer.TOKEN_RPAREN, "Expected ')' after type"); !ok {
			return nil
		}
		return inner

	case tok.Type == lexer.TOKEN_LBRACKET:
		return p.parseTupleType()

	case tok.Type == lexer.TOKEN_LBRACE:
		return p.parseObjectType()

	case tok.Type == lexer.TOKEN_STRING_LITERAL, tok.Type == lexer.TOKEN_NUMBER_LITERAL:
		p.advance()
		return &ast.TypeNode{Kind: ast.TypeLiteral, Literal: tok.Literal, Loc: p.loc(tok)}

	case tok.Type == lexer.TOKEN_MINUS && p.peekAt(1).Type == lexer.TOKEN_NUMBER_LITERAL:
		p.advance()
		num := p.advance()
		return &ast.TypeNode{Kind: ast.TypeLiteral, Literal: -num.Literal.(float64), Loc: p.loc(tok)}

	case tok.Is("true"), tok.Is("false"):
		p.advance()
		return &ast.TypeNode{Kind: ast.TypeLiteral, Literal: tok.Lexeme == "true", Loc: p.loc(tok)}

	case tok.Is("typeof"):
		p.advance()
		query := p.parseCall()
		if query == nil {
			return nil
		}
		return &ast.TypeNode{Kind: ast.TypeQuery, Query: query, Loc: p.loc(tok)}

	case tok.Type == lexer.TOKEN_IDENTIFIER:
		return p.parseTypeReference()
	}

	p.error(tok, "Expected type")
	return nil
}

func (p *Parser) parseTypeReference() *ast.TypeNode {
	start := p.advance()
	name := start.Lexeme
	for p.check(lexer.TOKEN_DOT) && p.peekAt(1).Type == lexer.TOKEN_IDENTIFIER {
		p.advance()
		name += "." + p.advance().Lexeme
	}

	ref := &ast.TypeNode{Kind: ast.TypeReference, Name: name, Loc: p.loc(start)}
	if !p.match(lexer.TOKEN_LT) {
		return ref
	}

	for {
		arg := p.parseType()
		if arg == nil {
			return nil
		}
		ref.Args = append(ref.Args, arg)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	if _, ok := p.consume(lexer.TOKEN_GT, "Expected '>' after type arguments"); !ok {
		return nil
	}
	return ref
}

func (p *Parser) parseTupleType() *ast.TypeNode {
	open := p.advance()
	tuple := &ast.TypeNode{Kind: ast.TypeTuple, Members: make([]*ast.TypeNode, 0), Loc: p.loc(open)}

	for !p.check(lexer.TOKEN_RBRACKET) && !p.isAtEnd() {
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		tuple.Members = append(tuple.Members, elem)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after tuple elements"); !ok {
		return nil
	}
	return tuple
}

func (p *Parser) parseObjectType() *ast.TypeNode {
	open := p.advance()
	obj := &ast.TypeNode{Kind: ast.TypeObject, Properties: make([]*ast.PropertyType, 0), Loc: p.loc(open)}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		prop := p.parsePropertySignature()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)
		if !p.match(lexer.TOKEN_SEMICOLON, lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_RBRACE, "Expected '}' after object type"); !ok {
		return nil
	}
	return obj
}

// parsePropertySignature parses `name?: T` or `name(params): T` inside an object type
func (p *Parser) parsePropertySignature() *ast.PropertyType {
	if p.checkWord("readonly") && p.isMemberName(p.peekAt(1)) {
		p.advance()
	}

	nameTok := p.peek()
	if !p.isMemberName(nameTok) {
		p.error(nameTok, "Expected property name")
		return nil
	}
	p.advance()

	prop := &ast.PropertyType{Name: memberName(nameTok)}
	prop.Optional = p.match(lexer.TOKEN_QUESTION)

	if p.match(lexer.TOKEN_LPAREN) {
		params, ok := p.parseParameterList()
		if !ok {
			return nil
		}
		fn := &ast.TypeNode{Kind: ast.TypeFunction, Params: params, Loc: p.loc(nameTok)}
		if p.match(lexer.TOKEN_COLON) {
			if fn.Result = p.parseType(); fn.Result == nil {
				return nil
			}
		}
		prop.Type = fn
		return prop
	}

	if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' after property name"); !ok {
		return nil
	}
	if prop.Type = p.parseType(); prop.Type == nil {
		return nil
	}
	return prop
}

// parseFunctionType parses `(params) => T`
func (p *Parser) parseFunctionType() *ast.TypeNode {
	open := p.advance()
	params, ok := p.parseParameterList()
	if !ok {
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_ARROW, "Expected '=>' in function type"); !ok {
		return nil
	}
	result := p.parseType()
	if result == nil {
		return nil
	}
	return &ast.TypeNode{Kind: ast.TypeFunction, Params: params, Result: result, Loc: p.loc(open)}
}

func (p *Parser) isMemberName(tok lexer.Token) bool {
	return tok.Type == lexer.TOKEN_IDENTIFIER || tok.Type == lexer.TOKEN_STRING_LITERAL
}

func memberName(tok lexer.Token) string {
	if s, ok := tok.Literal.(string); ok {
		return s
	}
	return tok.Lexeme
}

// parseTypeParam parses `NAME ( "=" type )?`
func (p *Parser) parseTypeParam() (ast.TypeParam, bool) {
	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected type parameter name")
	if !ok {
		return ast.TypeParam{}, false
	}
	param := ast.TypeParam{Name: name.Lexeme}
	if p.match(lexer.TOKEN_EQUALS) {
		if param.Default = p.parseType(); param.Default == nil {
			return ast.TypeParam{}, false
		}
	}
	return param, true
}
