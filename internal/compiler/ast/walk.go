package ast

// Inspect traverses an expression or statement tree in depth-first order.
// If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch n := n.(type) {
	case *MemberExpr:
		Inspect(n.Object, f)
	case *IndexExpr:
		Inspect(n.Object, f)
		Inspect(n.Index, f)
	case *CallExpr:
		Inspect(n.Callee, f)
		inspectExprs(n.Arguments, f)
	case *NewExpr:
		Inspect(n.Callee, f)
		inspectExprs(n.Arguments, f)
	case *ArrayExpr:
		inspectExprs(n.Elements, f)
	case *ObjectExpr:
		for _, p := range n.Properties {
			Inspect(p.Value, f)
		}
	case *ArrowFunc:
		if n.Expr != nil {
			Inspect(n.Expr, f)
		}
		inspectStmts(n.Body, f)
	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryExpr:
		Inspect(n.Operand, f)
	case *AssignExpr:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.Expr, f)
	case *VarStmt:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *ReturnStmt:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *BlockStmt:
		inspectStmts(n.Body, f)
	}
}

func inspectExprs(exprs []Expr, f func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, f)
	}
}

func inspectStmts(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, f)
	}
}
