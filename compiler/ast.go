package compiler

import (
	"fmt"
	"strings"
)

// The node families are closed: every expression is one of the Expr
// variants below and every statement one of the Stmt variants, so a
// traversal is an exhaustive type switch. Nodes own their children and are
// never mutated after parsing.

// Expr is an expression node.
type Expr interface {
	Pos() Position
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Pos() Position
	stmtNode()
}

// Program is the root of a parsed source file: its top-level statements in
// source order.
type Program struct {
	Stmts []Stmt
}

type LiteralExpr struct {
	Val      Value
	Position Position
}

type VariableExpr struct {
	Name     string
	Position Position
}

// BinaryExpr covers every infix operator. Assignment desugars to a
// BinaryExpr tagged AssignTP whose Left is a VariableExpr or IndexExpr.
type BinaryExpr struct {
	Op       TokenType
	Left     Expr
	Right    Expr
	Position Position
}

type UnaryExpr struct {
	Op       TokenType
	Operand  Expr
	Position Position
}

// CallExpr applies a named function; the language has no callable
// expressions beyond bare names.
type CallExpr struct {
	Callee   string
	Args     []Expr
	Position Position
}

type ArrayLiteralExpr struct {
	Elems    []Expr
	Position Position
}

type IndexExpr struct {
	Array    Expr
	Index    Expr
	Position Position
}

type MemberExpr struct {
	Object   Expr
	Member   string
	Position Position
}

func (e *LiteralExpr) Pos() Position      { return e.Position }
func (e *VariableExpr) Pos() Position     { return e.Position }
func (e *BinaryExpr) Pos() Position       { return e.Position }
func (e *UnaryExpr) Pos() Position        { return e.Position }
func (e *CallExpr) Pos() Position         { return e.Position }
func (e *ArrayLiteralExpr) Pos() Position { return e.Position }
func (e *IndexExpr) Pos() Position        { return e.Position }
func (e *MemberExpr) Pos() Position       { return e.Position }

func (*LiteralExpr) exprNode()      {}
func (*VariableExpr) exprNode()     {}
func (*BinaryExpr) exprNode()       {}
func (*UnaryExpr) exprNode()        {}
func (*CallExpr) exprNode()         {}
func (*ArrayLiteralExpr) exprNode() {}
func (*IndexExpr) exprNode()        {}
func (*MemberExpr) exprNode()       {}

type VarDeclStmt struct {
	Name     string
	Init     Expr // nil when the declaration has no initializer
	Position Position
}

type FuncDeclStmt struct {
	Name     string
	Params   []string
	Body     *BlockStmt
	Position Position
}

type ExpressionStmt struct {
	Expression Expr
	Position   Position
}

type IfStmt struct {
	Cond     Expr
	Then     *BlockStmt
	Else     Stmt // nil, *IfStmt for an else-if chain, or *BlockStmt
	Position Position
}

type WhileStmt struct {
	Cond     Expr
	Body     *BlockStmt
	Position Position
}

type LoopTimesStmt struct {
	Count    Expr
	Body     *BlockStmt
	Position Position
}

type LoopInStmt struct {
	Var        string
	Collection Expr
	Body       *BlockStmt
	Position   Position
}

type ReturnStmt struct {
	Val      Expr // nil for a bare return
	Position Position
}

type BlockStmt struct {
	Stmts    []Stmt
	Position Position
}

type PrintStmt struct {
	Val      Expr
	Position Position
}

type InputStmt struct {
	Name     string
	Position Position
}

func (s *VarDeclStmt) Pos() Position    { return s.Position }
func (s *FuncDeclStmt) Pos() Position   { return s.Position }
func (s *ExpressionStmt) Pos() Position { return s.Position }
func (s *IfStmt) Pos() Position         { return s.Position }
func (s *WhileStmt) Pos() Position      { return s.Position }
func (s *LoopTimesStmt) Pos() Position  { return s.Position }
func (s *LoopInStmt) Pos() Position     { return s.Position }
func (s *ReturnStmt) Pos() Position     { return s.Position }
func (s *BlockStmt) Pos() Position      { return s.Position }
func (s *PrintStmt) Pos() Position      { return s.Position }
func (s *InputStmt) Pos() Position      { return s.Position }

func (*VarDeclStmt) stmtNode()    {}
func (*FuncDeclStmt) stmtNode()   {}
func (*ExpressionStmt) stmtNode() {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*LoopTimesStmt) stmtNode()  {}
func (*LoopInStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()      {}
func (*PrintStmt) stmtNode()      {}
func (*InputStmt) stmtNode()      {}

// Dump renders the tree deterministically, one node per line, children
// indented two spaces below their parent.
func (program *Program) Dump() string {
	var sb strings.Builder
	sb.WriteString("Program\n")
	for _, stmt := range program.Stmts {
		dumpStmt(&sb, stmt, 1)
	}
	return sb.String()
}

func dumpLine(sb *strings.Builder, depth int, format string, args ...interface{}) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, format, args...)
	sb.WriteByte('\n')
}

func dumpStmt(sb *strings.Builder, stmt Stmt, depth int) {
	switch s := stmt.(type) {
	case *VarDeclStmt:
		dumpLine(sb, depth, "VarDecl %s", s.Name)
		if s.Init != nil {
			dumpExpr(sb, s.Init, depth+1)
		}
	case *FuncDeclStmt:
		dumpLine(sb, depth, "FuncDecl %s(%s)", s.Name, strings.Join(s.Params, ", "))
		dumpStmt(sb, s.Body, depth+1)
	case *ExpressionStmt:
		dumpLine(sb, depth, "ExpressionStmt")
		dumpExpr(sb, s.Expression, depth+1)
	case *IfStmt:
		dumpLine(sb, depth, "If")
		dumpExpr(sb, s.Cond, depth+1)
		dumpStmt(sb, s.Then, depth+1)
		if s.Else != nil {
			dumpLine(sb, depth, "Else")
			dumpStmt(sb, s.Else, depth+1)
		}
	case *WhileStmt:
		dumpLine(sb, depth, "While")
		dumpExpr(sb, s.Cond, depth+1)
		dumpStmt(sb, s.Body, depth+1)
	case *LoopTimesStmt:
		dumpLine(sb, depth, "LoopTimes")
		dumpExpr(sb, s.Count, depth+1)
		dumpStmt(sb, s.Body, depth+1)
	case *LoopInStmt:
		dumpLine(sb, depth, "LoopIn %s", s.Var)
		dumpExpr(sb, s.Collection, depth+1)
		dumpStmt(sb, s.Body, depth+1)
	case *ReturnStmt:
		dumpLine(sb, depth, "Return")
		if s.Val != nil {
			dumpExpr(sb, s.Val, depth+1)
		}
	case *BlockStmt:
		dumpLine(sb, depth, "Block")
		for _, child := range s.Stmts {
			dumpStmt(sb, child, depth+1)
		}
	case *PrintStmt:
		dumpLine(sb, depth, "Print")
		dumpExpr(sb, s.Val, depth+1)
	case *InputStmt:
		dumpLine(sb, depth, "Input %s", s.Name)
	}
}

func dumpExpr(sb *strings.Builder, expr Expr, depth int) {
	switch e := expr.(type) {
	case *LiteralExpr:
		dumpLine(sb, depth, "Literal %s", e.Val)
	case *VariableExpr:
		dumpLine(sb, depth, "Variable %s", e.Name)
	case *BinaryExpr:
		dumpLine(sb, depth, "Binary %s", operatorText[e.Op])
		dumpExpr(sb, e.Left, depth+1)
		dumpExpr(sb, e.Right, depth+1)
	case *UnaryExpr:
		dumpLine(sb, depth, "Unary %s", operatorText[e.Op])
		dumpExpr(sb, e.Operand, depth+1)
	case *CallExpr:
		dumpLine(sb, depth, "Call %s", e.Callee)
		for _, arg := range e.Args {
			dumpExpr(sb, arg, depth+1)
		}
	case *ArrayLiteralExpr:
		dumpLine(sb, depth, "ArrayLiteral")
		for _, elem := range e.Elems {
			dumpExpr(sb, elem, depth+1)
		}
	case *IndexExpr:
		dumpLine(sb, depth, "Index")
		dumpExpr(sb, e.Array, depth+1)
		dumpExpr(sb, e.Index, depth+1)
	case *MemberExpr:
		dumpLine(sb, depth, "Member %s", e.Member)
		dumpExpr(sb, e.Object, depth+1)
	}
}
