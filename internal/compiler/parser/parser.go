// Package parser turns declaration snippets into program-model nodes.
// Snippets are the TypeScript-like fragments found in program descriptions:
// types, expressions, statements, fields, parameters and method signatures.
// It uses recursive descent over the token stream produced by the lexer.
package parser

import (
	"fmt"
	"strings"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token.Lexeme == "" {
		return fmt.Sprintf("Parse error at %d:%d: %s", e.Location.Line, e.Location.Column, e.Message)
	}
	return fmt.Sprintf("Parse error at %d:%d: %s (near '%s')",
		e.Location.Line, e.Location.Column, e.Message, e.Token.Lexeme)
}

// ErrorList collects the errors of one snippet
type ErrorList []ParseError

// Error implements the error interface
func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i := range l {
		msgs[i] = l[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Parser transforms the tokens of one snippet into program-model nodes
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
	base    ast.SourceLocation
}

// Start is the location of a snippet that is not embedded in a larger document
var Start = ast.SourceLocation{Line: 1, Column: 1}

// New tokenizes source and creates a parser. Locations of the produced nodes
// are offset by at, the position of the snippet in its enclosing document.
func New(source string, at ast.SourceLocation) (*Parser, error) {
	p := &Parser{base: at, errors: make([]ParseError, 0)}

	tokens, lexErrors := lexer.New(source).ScanTokens()
	for _, e := range lexErrors {
		tok := lexer.Token{Lexeme: e.Lexeme, Line: e.Line, Column: e.Column}
		p.error(tok, e.Message)
	}
	if len(p.errors) > 0 {
		return nil, ErrorList(p.errors)
	}

	p.tokens = tokens
	return p, nil
}

// Type parses the whole snippet as a type
func (p *Parser) Type() (*ast.TypeNode, error) {
	t := p.parseType()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return t, nil
}

// Expr parses the whole snippet as an expression
func (p *Parser) Expr() (ast.Expr, error) {
	e := p.parseExpression()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return e, nil
}

// Stmt parses the whole snippet as a single statement
func (p *Parser) Stmt() (ast.Stmt, error) {
	s := p.parseStatement()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// Field parses the whole snippet as a field declaration
func (p *Parser) Field() (*ast.FieldDecl, error) {
	f := p.parseField()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

// Param parses the whole snippet as a parameter
func (p *Parser) Param() (*ast.Parameter, error) {
	param := p.parseParameter()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return param, nil
}

// MethodSignature parses the whole snippet as a method signature without a body
func (p *Parser) MethodSignature() (*ast.MethodDecl, error) {
	m := p.parseMethodSignature()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return m, nil
}

// TypeParam parses the whole snippet as a type parameter such as `A = {}`
func (p *Parser) TypeParam() (ast.TypeParam, error) {
	param, _ := p.parseTypeParam()
	if err := p.finish(); err != nil {
		return ast.TypeParam{}, err
	}
	return param, nil
}

// ParseType parses a standalone type snippet
func ParseType(source string) (*ast.TypeNode, error) {
	p, err := New(source, Start)
	if err != nil {
		return nil, err
	}
	return p.Type()
}

// ParseExpr parses a standalone expression snippet
func ParseExpr(source string) (ast.Expr, error) {
	p, err := New(source, Start)
	if err != nil {
		return nil, err
	}
	return p.Expr()
}

// ParseStmt parses a standalone statement snippet
func ParseStmt(source string) (ast.Stmt, error) {
	p, err := New(source, Start)
	if err != nil {
		return nil, err
	}
	return p.Stmt()
}

// ParseField parses a standalone field snippet such as `speed?: number = 10`
func ParseField(source string) (*ast.FieldDecl, error) {
	p, err := New(source, Start)
	if err != nil {
		return nil, err
	}
	return p.Field()
}

// ParseParam parses a standalone parameter snippet such as `private lights: LightService`
func ParseParam(source string) (*ast.Parameter, error) {
	p, err := New(source, Start)
	if err != nil {
		return nil, err
	}
	return p.Param()
}

// ParseMethodSignature parses a standalone method signature such as `onStart(): void`
func ParseMethodSignature(source string) (*ast.MethodDecl, error) {
	p, err := New(source, Start)
	if err != nil {
		return nil, err
	}
	return p.MethodSignature()
}

// finish checks that the snippet was consumed and reports collected errors
func (p *Parser) finish() error {
	if len(p.errors) == 0 {
		p.match(lexer.TOKEN_SEMICOLON)
		if !p.isAtEnd() {
			p.error(p.peek(), "Unexpected token after end of snippet")
		}
	}
	if len(p.errors) > 0 {
		return ErrorList(p.errors)
	}
	return nil
}

// Helper methods

func (p *Parser) loc(tok lexer.Token) ast.SourceLocation {
	if tok.Line <= 1 {
		return ast.SourceLocation{Line: p.base.Line, Column: p.base.Column + tok.Column - 1}
	}
	return ast.SourceLocation{Line: p.base.Line + tok.Line - 1, Column: tok.Column}
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	return p.peekAt(0)
}

// peekAt looks ahead offset tokens; the EOF token is returned past the end
func (p *Parser) peekAt(offset int) lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	if p.current+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+offset]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// checkWord returns true if the current token is the identifier word
func (p *Parser) checkWord(word string) bool {
	return !p.isAtEnd() && p.peek().Is(word)
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) (lexer.Token, bool) {
	if p.check(tokenType) {
		return p.advance(), true
	}
	p.error(p.peek(), message)
	return lexer.Token{}, false
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// matchingClose returns the index of the token closing the bracket at the
// current position, or -1 when it is unbalanced
func (p *Parser) matchingClose(open, closing lexer.TokenType) int {
	depth := 0
	for i := p.current; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		case lexer.TOKEN_EOF:
			return -1
		}
	}
	return -1
}

// tokenAt returns the token at an absolute index
func (p *Parser) tokenAt(i int) lexer.Token {
	if i < 0 || i >= len(p.tokens) {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[i]
}

// error records a parse error
func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, ParseError{
		Message:  message,
		Location: p.loc(token),
		Token:    token,
	})
}
