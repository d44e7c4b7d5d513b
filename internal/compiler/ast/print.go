package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatExpr renders an expression as source text on a single line
func FormatExpr(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// FormatStmt renders a statement as source text on a single line
func FormatStmt(s Stmt) string {
	var b strings.Builder
	writeStmt(&b, s)
	return b.String()
}

// FormatType renders a type annotation as source text
func FormatType(t *TypeNode) string {
	var b strings.Builder
	writeType(&b, t)
	return b.String()
}

// FormatLiteral renders a literal value (string, float64, bool or nil)
func FormatLiteral(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

//nolint:gocyclo // Expression printer
func writeExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
	case *LiteralExpr:
		b.WriteString(FormatLiteral(e.Value))
	case *IdentifierExpr:
		b.WriteString(e.Name)
	case *ThisExpr:
		b.WriteString("this")
	case *SuperExpr:
		b.WriteString("super")
	case *MemberExpr:
		writeExpr(b, e.Object)
		b.WriteString(".")
		b.WriteString(e.Property)
	case *IndexExpr:
		writeExpr(b, e.Object)
		b.WriteString("[")
		writeExpr(b, e.Index)
		b.WriteString("]")
	case *CallExpr:
		if _, ok := e.Callee.(*ArrowFunc); ok {
			b.WriteString("(")
			writeExpr(b, e.Callee)
			b.WriteString(")")
		} else {
			writeExpr(b, e.Callee)
		}
		writeArgs(b, e.Arguments)
	case *NewExpr:
		b.WriteString("new ")
		writeExpr(b, e.Callee)
		writeArgs(b, e.Arguments)
	case *ArrayExpr:
		b.WriteString("[")
		writeExprList(b, e.Elements)
		b.WriteString("]")
	case *ObjectExpr:
		if len(e.Properties) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, p := range e.Properties {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatKey(p.Key))
			b.WriteString(": ")
			writeExpr(b, p.Value)
		}
		b.WriteString(" }")
	case *ArrowFunc:
		b.WriteString("(")
		writeParams(b, e.Params)
		b.WriteString(") => ")
		if e.Expr != nil {
			if _, ok := e.Expr.(*ObjectExpr); ok {
				b.WriteString("(")
				writeExpr(b, e.Expr)
				b.WriteString(")")
			} else {
				writeExpr(b, e.Expr)
			}
			return
		}
		writeBlock(b, e.Body)
	case *BinaryExpr:
		writeOperand(b, e.Left)
		b.WriteString(" " + e.Operator + " ")
		writeOperand(b, e.Right)
	case *UnaryExpr:
		b.WriteString(e.Operator)
		if e.Operator == "typeof" {
			b.WriteString(" ")
		}
		writeOperand(b, e.Operand)
	case *AssignExpr:
		writeExpr(b, e.Target)
		b.WriteString(" = ")
		writeExpr(b, e.Value)
	default:
		fmt.Fprintf(b, "/* %T */", e)
	}
}

// writeOperand parenthesizes nested operators so precedence survives printing
func writeOperand(b *strings.Builder, e Expr) {
	switch e.(type) {
	case *BinaryExpr, *AssignExpr, *ArrowFunc:
		b.WriteString("(")
		writeExpr(b, e)
		b.WriteString(")")
	default:
		writeExpr(b, e)
	}
}

func writeArgs(b *strings.Builder, args []Expr) {
	b.WriteString("(")
	writeExprList(b, args)
	b.WriteString(")")
}

func writeExprList(b *strings.Builder, exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, e)
	}
}

func writeParams(b *strings.Builder, params []*Parameter) {
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatParam(p))
	}
}

// FormatParam renders a parameter with its modifier and type
func FormatParam(p *Parameter) string {
	var b strings.Builder
	if p.Modifier != "" {
		b.WriteString(p.Modifier + " ")
	}
	b.WriteString(p.Name)
	if p.Optional {
		b.WriteString("?")
	}
	if p.Type != nil {
		b.WriteString(": ")
		writeType(&b, p.Type)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, body []Stmt) {
	if len(body) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for _, s := range body {
		writeStmt(b, s)
		b.WriteString(" ")
	}
	b.WriteString("}")
}

func writeStmt(b *strings.Builder, s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		writeExpr(b, s.Expr)
		b.WriteString(";")
	case *VarStmt:
		b.WriteString(s.Keyword + " ")
		if s.Pattern != nil {
			b.WriteString("[" + strings.Join(s.Pattern, ", ") + "]")
		} else {
			b.WriteString(s.Name)
		}
		if s.Type != nil {
			b.WriteString(": ")
			writeType(b, s.Type)
		}
		if s.Init != nil {
			b.WriteString(" = ")
			writeExpr(b, s.Init)
		}
		b.WriteString(";")
	case *ReturnStmt:
		b.WriteString("return")
		if s.Value != nil {
			b.WriteString(" ")
			writeExpr(b, s.Value)
		}
		b.WriteString(";")
	case *BlockStmt:
		writeBlock(b, s.Body)
	default:
		fmt.Fprintf(b, "/* %T */", s)
	}
}

//nolint:gocyclo // Type printer
func writeType(b *strings.Builder, t *TypeNode) {
	if t == nil {
		return
	}
	switch t.Kind {
	case TypeReference:
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteString("<")
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				writeType(b, a)
			}
			b.WriteString(">")
		}
	case TypeLiteral:
		b.WriteString(FormatLiteral(t.Literal))
	case TypeUnion, TypeIntersection:
		sep := " | "
		if t.Kind == TypeIntersection {
			sep = " & "
		}
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(sep)
			}
			writeType(b, m)
		}
	case TypeArray:
		switch t.Element.Kind {
		case TypeUnion, TypeIntersection, TypeFunction, TypeConditional:
			b.WriteString("(")
			writeType(b, t.Element)
			b.WriteString(")")
		default:
			writeType(b, t.Element)
		}
		b.WriteString("[]")
	case TypeTuple:
		b.WriteString("[")
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			writeType(b, m)
		}
		b.WriteString("]")
	case TypeObject:
		if len(t.Properties) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, p := range t.Properties {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(formatKey(p.Name))
			if p.Optional {
				b.WriteString("?")
			}
			b.WriteString(": ")
			writeType(b, p.Type)
		}
		b.WriteString(" }")
	case TypeQuery:
		b.WriteString("typeof ")
		writeExpr(b, t.Query)
	case TypeFunction:
		b.WriteString("(")
		writeParams(b, t.Params)
		b.WriteString(") => ")
		if t.Result != nil {
			writeType(b, t.Result)
		} else {
			b.WriteString("void")
		}
	case TypeConditional:
		writeType(b, t.Members[0])
		b.WriteString(" extends ")
		writeType(b, t.Members[1])
		b.WriteString(" ? ")
		writeType(b, t.Members[2])
		b.WriteString(" : ")
		writeType(b, t.Members[3])
	}
}

func formatKey(key string) string {
	if isIdentifier(key) {
		return key
	}
	return strconv.Quote(key)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
