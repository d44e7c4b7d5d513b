package lexer

import "fmt"

// TokenType represents the type of a token in a declaration snippet
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota

	// Literals
	TOKEN_IDENTIFIER     // foo, this, typeof, ...
	TOKEN_NUMBER_LITERAL // 42, 3.14
	TOKEN_STRING_LITERAL // "hello", 'hello'

	// Delimiters
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
	TOKEN_COMMA    // ,
	TOKEN_SEMICOLON
	TOKEN_COLON    // :
	TOKEN_DOT      // .
	TOKEN_QUESTION // ?
	TOKEN_AT       // @

	// Operators
	TOKEN_BANG        // !
	TOKEN_EQUALS      // =
	TOKEN_EQ          // ==
	TOKEN_STRICT_EQ   // ===
	TOKEN_NEQ         // !=
	TOKEN_STRICT_NEQ  // !==
	TOKEN_ARROW       // =>
	TOKEN_LT          // <
	TOKEN_GT          // >
	TOKEN_LTE         // <=
	TOKEN_GTE         // >=
	TOKEN_PIPE        // |
	TOKEN_AMP         // &
	TOKEN_DOUBLE_PIPE // ||
	TOKEN_DOUBLE_AMP  // &&
	TOKEN_PLUS        // +
	TOKEN_MINUS       // -
	TOKEN_STAR        // *
	TOKEN_SLASH       // /
	TOKEN_PERCENT     // %
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_IDENTIFIER:     "IDENTIFIER",
	TOKEN_NUMBER_LITERAL: "NUMBER",
	TOKEN_STRING_LITERAL: "STRING",
	TOKEN_LPAREN:         "(",
	TOKEN_RPAREN:         ")",
	TOKEN_LBRACE:         "{",
	TOKEN_RBRACE:         "}",
	TOKEN_LBRACKET:       "[",
	TOKEN_RBRACKET:       "]",
	TOKEN_COMMA:          ",",
	TOKEN_SEMICOLON:      ";",
	TOKEN_COLON:          ":",
	TOKEN_DOT:            ".",
	TOKEN_QUESTION:       "?",
	TOKEN_AT:             "@",
	TOKEN_BANG:           "!",
	TOKEN_EQUALS:         "=",
	TOKEN_EQ:             "==",
	TOKEN_STRICT_EQ:      "===",
	TOKEN_NEQ:            "!=",
	TOKEN_STRICT_NEQ:     "!==",
	TOKEN_ARROW:          "=>",
	TOKEN_LT:             "<",
	TOKEN_GT:             ">",
	TOKEN_LTE:            "<=",
	TOKEN_GTE:            ">=",
	TOKEN_PIPE:           "|",
	TOKEN_AMP:            "&",
	TOKEN_DOUBLE_PIPE:    "||",
	TOKEN_DOUBLE_AMP:     "&&",
	TOKEN_PLUS:           "+",
	TOKEN_MINUS:          "-",
	TOKEN_STAR:           "*",
	TOKEN_SLASH:          "/",
	TOKEN_PERCENT:        "%",
}

// String returns the display name of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // The parsed value (for literals)
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d", t.Type, t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// Is reports whether the token is the identifier word
func (t Token) Is(word string) bool {
	return t.Type == TOKEN_IDENTIFIER && t.Lexeme == word
}

// LexError represents a lexical error
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
