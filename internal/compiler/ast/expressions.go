package ast

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// LiteralExpr represents a literal value (string, float64, bool, nil for null)
type LiteralExpr struct {
	Value interface{}
	Loc   SourceLocation
}

func (l *LiteralExpr) node()     {}
func (l *LiteralExpr) exprNode() {}

func (l *LiteralExpr) Location() SourceLocation {
	return l.Loc
}

// IdentifierExpr represents a name reference
type IdentifierExpr struct {
	Name string
	Loc  SourceLocation
}

func (i *IdentifierExpr) node()     {}
func (i *IdentifierExpr) exprNode() {}

func (i *IdentifierExpr) Location() SourceLocation {
	return i.Loc
}

// ThisExpr represents `this`
type ThisExpr struct {
	Loc SourceLocation
}

func (t *ThisExpr) node()     {}
func (t *ThisExpr) exprNode() {}

func (t *ThisExpr) Location() SourceLocation {
	return t.Loc
}

// SuperExpr represents `super`
type SuperExpr struct {
	Loc SourceLocation
}

func (s *SuperExpr) node()     {}
func (s *SuperExpr) exprNode() {}

func (s *SuperExpr) Location() SourceLocation {
	return s.Loc
}

// MemberExpr represents property access (object.property)
type MemberExpr struct {
	Object   Expr
	Property string
	Loc      SourceLocation
}

func (m *MemberExpr) node()     {}
func (m *MemberExpr) exprNode() {}

func (m *MemberExpr) Location() SourceLocation {
	return m.Loc
}

// IndexExpr represents element access (object[index])
type IndexExpr struct {
	Object Expr
	Index  Expr
	Loc    SourceLocation
}

func (i *IndexExpr) node()     {}
func (i *IndexExpr) exprNode() {}

func (i *IndexExpr) Location() SourceLocation {
	return i.Loc
}

// CallExpr represents a function call
type CallExpr struct {
	Callee    Expr
	Arguments []Expr
	Loc       SourceLocation
}

func (c *CallExpr) node()     {}
func (c *CallExpr) exprNode() {}

func (c *CallExpr) Location() SourceLocation {
	return c.Loc
}

// NewExpr represents `new Callee(args)`
type NewExpr struct {
	Callee    Expr
	Arguments []Expr
	Loc       SourceLocation
}

func (n *NewExpr) node()     {}
func (n *NewExpr) exprNode() {}

func (n *NewExpr) Location() SourceLocation {
	return n.Loc
}

// ArrayExpr represents an array literal
type ArrayExpr struct {
	Elements []Expr
	Loc      SourceLocation
}

func (a *ArrayExpr) node()     {}
func (a *ArrayExpr) exprNode() {}

func (a *ArrayExpr) Location() SourceLocation {
	return a.Loc
}

// Property is one entry of an object literal
type Property struct {
	Key   string
	Value Expr
	Loc   SourceLocation
}

// ObjectExpr represents an object literal
type ObjectExpr struct {
	Properties []*Property
	Loc        SourceLocation
}

func (o *ObjectExpr) node()     {}
func (o *ObjectExpr) exprNode() {}

func (o *ObjectExpr) Location() SourceLocation {
	return o.Loc
}

// Get returns the value of the named property, or nil
func (o *ObjectExpr) Get(key string) Expr {
	for _, p := range o.Properties {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

// ArrowFunc represents an arrow function. Exactly one of Expr or Body is set.
type ArrowFunc struct {
	Params []*Parameter
	Expr   Expr
	Body   []Stmt
	Loc    SourceLocation
}

func (a *ArrowFunc) node()     {}
func (a *ArrowFunc) exprNode() {}

func (a *ArrowFunc) Location() SourceLocation {
	return a.Loc
}

// BinaryExpr represents a binary operation (a + b, a === b, a && b)
type BinaryExpr struct {
	Left     Expr
	Operator string
	Right    Expr
	Loc      SourceLocation
}

func (b *BinaryExpr) node()     {}
func (b *BinaryExpr) exprNode() {}

func (b *BinaryExpr) Location() SourceLocation {
	return b.Loc
}

// UnaryExpr represents a prefix operation (!x, -x, typeof x)
type UnaryExpr struct {
	Operator string
	Operand  Expr
	Loc      SourceLocation
}

func (u *UnaryExpr) node()     {}
func (u *UnaryExpr) exprNode() {}

func (u *UnaryExpr) Location() SourceLocation {
	return u.Loc
}

// AssignExpr represents target = value
type AssignExpr struct {
	Target Expr
	Value  Expr
	Loc    SourceLocation
}

func (a *AssignExpr) node()     {}
func (a *AssignExpr) exprNode() {}

func (a *AssignExpr) Location() SourceLocation {
	return a.Loc
}

// ExprStmt is an expression evaluated for its effect
type ExprStmt struct {
	Expr Expr
	Loc  SourceLocation
}

func (e *ExprStmt) node()     {}
func (e *ExprStmt) stmtNode() {}

func (e *ExprStmt) Location() SourceLocation {
	return e.Loc
}

// VarStmt declares a binding with const or let. Either Name or Pattern is set;
// Pattern holds the element names of an array destructuring.
type VarStmt struct {
	Keyword string
	Name    string
	Pattern []string
	Type    *TypeNode
	Init    Expr
	Loc     SourceLocation
}

func (v *VarStmt) node()     {}
func (v *VarStmt) stmtNode() {}

func (v *VarStmt) Location() SourceLocation {
	return v.Loc
}

// ReturnStmt represents `return value`
type ReturnStmt struct {
	Value Expr // nil for a bare return
	Loc   SourceLocation
}

func (r *ReturnStmt) node()     {}
func (r *ReturnStmt) stmtNode() {}

func (r *ReturnStmt) Location() SourceLocation {
	return r.Loc
}

// BlockStmt is a braced statement list
type BlockStmt struct {
	Body []Stmt
	Loc  SourceLocation
}

func (b *BlockStmt) node()     {}
func (b *BlockStmt) stmtNode() {}

func (b *BlockStmt) Location() SourceLocation {
	return b.Loc
}

// IsSuperCall reports whether stmt is a `super(...)` call statement
func IsSuperCall(stmt Stmt) bool {
	es, ok := stmt.(*ExprStmt)
	if !ok {
		return false
	}
	call, ok := es.Expr.(*CallExpr)
	if !ok {
		return false
	}
	_, ok = call.Callee.(*SuperExpr)
	return ok
}

// ThisMember builds `this.name`
func ThisMember(name string) *MemberExpr {
	return &MemberExpr{Object: &ThisExpr{}, Property: name}
}
