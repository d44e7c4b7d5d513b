// Package lexer provides lexical analysis for declaration snippets.
// It tokenizes the TypeScript-like type, expression and member syntax used in
// program descriptions into a stream of tokens for the parser.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Lexer tokenizes a snippet.
//
// Lexer instances are not safe for concurrent use; create one per snippet via New().
type Lexer struct {
	source  string     // Source code to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

//nolint:gocyclo,cyclop // Lexer dispatch function
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == '(':
		l.addToken(TOKEN_LPAREN)
	case c == ')':
		l.addToken(TOKEN_RPAREN)
	case c == '{':
		l.addToken(TOKEN_LBRACE)
	case c == '}':
		l.addToken(TOKEN_RBRACE)
	case c == '[':
		l.addToken(TOKEN_LBRACKET)
	case c == ']':
		l.addToken(TOKEN_RBRACKET)
	case c == ',':
		l.addToken(TOKEN_COMMA)
	case c == ';':
		l.addToken(TOKEN_SEMICOLON)
	case c == ':':
		l.addToken(TOKEN_COLON)
	case c == '?':
		l.addToken(TOKEN_QUESTION)
	case c == '@':
		l.addToken(TOKEN_AT)
	case c == '+':
		l.addToken(TOKEN_PLUS)
	case c == '-':
		l.addToken(TOKEN_MINUS)
	case c == '*':
		l.addToken(TOKEN_STAR)
	case c == '%':
		l.addToken(TOKEN_PERCENT)
	case c == '.':
		if l.isDigit(l.peek()) {
			l.number()
		} else {
			l.addToken(TOKEN_DOT)
		}
	case c == '/':
		l.scanSlashToken()
	case c == '!':
		l.scanBangToken()
	case c == '=':
		l.scanEqualsToken()
	case c == '<':
		if l.match('=') {
			l.addToken(TOKEN_LTE)
		} else {
			l.addToken(TOKEN_LT)
		}
	case c == '>':
		// `>=` is never produced so that `Map<K, V>=` style input cannot
		// swallow a closing angle bracket; comparisons use two tokens.
		l.addToken(TOKEN_GT)
	case c == '|':
		if l.match('|') {
			l.addToken(TOKEN_DOUBLE_PIPE)
		} else {
			l.addToken(TOKEN_PIPE)
		}
	case c == '&':
		if l.match('&') {
			l.addToken(TOKEN_DOUBLE_AMP)
		} else {
			l.addToken(TOKEN_AMP)
		}
	case c == '"' || c == '\'':
		l.string(c)
	case c == ' ' || c == '\r' || c == '\t':
		// Ignore whitespace
	case c == '\n':
		l.line++
		l.column = 1
	case l.isDigit(c):
		l.number()
	case l.isAlpha(c):
		l.identifier()
	default:
		l.addError(fmt.Sprintf("Unexpected character: '%c'", c))
	}
}

// scanSlashToken handles / and // comments
func (l *Lexer) scanSlashToken() {
	if l.match('/') {
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}
		return
	}
	l.addToken(TOKEN_SLASH)
}

// scanBangToken handles !, != and !==
func (l *Lexer) scanBangToken() {
	if l.match('=') {
		if l.match('=') {
			l.addToken(TOKEN_STRICT_NEQ)
		} else {
			l.addToken(TOKEN_NEQ)
		}
		return
	}
	l.addToken(TOKEN_BANG)
}

// scanEqualsToken handles =, ==, === and =>
func (l *Lexer) scanEqualsToken() {
	switch {
	case l.match('='):
		if l.match('=') {
			l.addToken(TOKEN_STRICT_EQ)
		} else {
			l.addToken(TOKEN_EQ)
		}
	case l.match('>'):
		l.addToken(TOKEN_ARROW)
	default:
		l.addToken(TOKEN_EQUALS)
	}
}

// string handles single and double quoted string literals
func (l *Lexer) string(quote byte) {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != quote {
		if l.peek() == '\n' {
			l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
			return
		}
		if l.peek() == '\\' {
			l.advance()
			if l.isAtEnd() {
				break
			}
			escaped := l.advance()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '\\', '"', '\'':
				value.WriteByte(escaped)
			default:
				value.WriteByte('\\')
				value.WriteByte(escaped)
			}
			continue
		}
		value.WriteByte(l.advance())
	}

	if l.isAtEnd() {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
		return
	}

	// Consume closing quote
	l.advance()

	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING_LITERAL,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Line:    startLine,
		Column:  startColumn,
	})
}

// number handles integer and float literals; both become float64
func (l *Lexer) number() {
	for l.isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	if l.peek() == '.' && l.isDigit(l.peekNext()) {
		l.advance()
		for l.isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !l.isDigit(l.peek()) {
			l.addError("Invalid number: expected digits after exponent")
			return
		}
		for l.isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.source[l.start:l.current]
	value, err := strconv.ParseFloat(strings.ReplaceAll(lexeme, "_", ""), 64)
	if err != nil {
		l.addError(fmt.Sprintf("Invalid number literal: %s", lexeme))
		return
	}
	l.addTokenWithLiteral(TOKEN_NUMBER_LITERAL, value)
}

// identifier handles identifiers; keywords are resolved by the parser
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}
	l.addToken(TOKEN_IDENTIFIER)
}

// Helper methods

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isAlpha accepts letters, underscore and $ (valid identifier starts)
func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_' || c == '$'
}

func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
	})
}

func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Lexeme:  lexeme,
	})
}
