// Package ast defines the statement and expression tree produced by
// package parser and walked by package interp.
//
// Node shapes follow vippsas/sqlcode's sqlparser/dom.go: every node that can
// be the subject of a diagnostic carries its own Pos, rather than relying on
// a side-table keyed by node identity.
package ast

import "github.com/datacode-lang/datacode/token"

type Node interface {
	Position() token.Pos
}

// ---- Statements ----

type Stmt interface {
	Node
	stmtNode()
}

// AssignStmt is `global NAME = expr`, `local NAME = expr`, or a bare
// `NAME = expr` reassignment.
type AssignStmt struct {
	Pos       token.Pos
	Qualifier token.Kind // token.GLOBAL, token.LOCAL, or 0 for bare reassignment
	Name      string
	Value     Expr
}

func (s *AssignStmt) Position() token.Pos { return s.Pos }
func (*AssignStmt) stmtNode()             {}

// ExprStmt is a bare expression evaluated for its side effects (e.g. a call
// to print()).
type ExprStmt struct {
	Pos token.Pos
	X   Expr
}

func (s *ExprStmt) Position() token.Pos { return s.Pos }
func (*ExprStmt) stmtNode()             {}

type IfStmt struct {
	Pos  token.Pos
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else clause
}

func (s *IfStmt) Position() token.Pos { return s.Pos }
func (*IfStmt) stmtNode()             {}

// ForStmt is `for vars in iter do body (forend | next IDENT)`.
type ForStmt struct {
	Pos       token.Pos
	Vars      []string
	Iter      Expr
	Body      []Stmt
	NextIdent string // "" if the loop used `forend` rather than `next IDENT`
	UsedNext  bool
}

func (s *ForStmt) Position() token.Pos { return s.Pos }
func (*ForStmt) stmtNode()             {}

// FuncDefStmt binds a Function value to Name in the global or local scope.
type FuncDefStmt struct {
	Pos       token.Pos
	Qualifier token.Kind // token.GLOBAL or token.LOCAL
	Name      string
	Params    []string
	Body      []Stmt
}

func (s *FuncDefStmt) Position() token.Pos { return s.Pos }
func (*FuncDefStmt) stmtNode()             {}

type ReturnStmt struct {
	Pos   token.Pos
	Value Expr // nil if bare `return`
}

func (s *ReturnStmt) Position() token.Pos { return s.Pos }
func (*ReturnStmt) stmtNode()             {}

type ThrowStmt struct {
	Pos   token.Pos
	Value Expr
}

func (s *ThrowStmt) Position() token.Pos { return s.Pos }
func (*ThrowStmt) stmtNode()             {}

// CatchClause binds the raised error Object to Name (if Name != "") inside
// Body. Name is "" for a bare `catch` with no binding.
type CatchClause struct {
	Name string
	Body []Stmt
}

type TryStmt struct {
	Pos     token.Pos
	Try     []Stmt
	Catch   *CatchClause // nil if there is no catch clause
	Finally []Stmt       // nil if there is no finally clause
}

func (s *TryStmt) Position() token.Pos { return s.Pos }
func (*TryStmt) stmtNode()             {}

// ---- Expressions ----

type Expr interface {
	Node
	exprNode()
}

type NullLit struct{ Pos token.Pos }

func (e *NullLit) Position() token.Pos { return e.Pos }
func (*NullLit) exprNode()             {}

type BoolLit struct {
	Pos   token.Pos
	Value bool
}

func (e *BoolLit) Position() token.Pos { return e.Pos }
func (*BoolLit) exprNode()             {}

type IntLit struct {
	Pos   token.Pos
	Value int64
}

func (e *IntLit) Position() token.Pos { return e.Pos }
func (*IntLit) exprNode()             {}

type RealLit struct {
	Pos   token.Pos
	Value float64
}

func (e *RealLit) Position() token.Pos { return e.Pos }
func (*RealLit) exprNode()             {}

type StringLit struct {
	Pos   token.Pos
	Value string
}

func (e *StringLit) Position() token.Pos { return e.Pos }
func (*StringLit) exprNode()             {}

type Ident struct {
	Pos  token.Pos
	Name string
}

func (e *Ident) Position() token.Pos { return e.Pos }
func (*Ident) exprNode()             {}

type ArrayLit struct {
	Pos      token.Pos
	Elements []Expr
}

func (e *ArrayLit) Position() token.Pos { return e.Pos }
func (*ArrayLit) exprNode()             {}

type ObjectEntry struct {
	Key   string
	Value Expr
}

type ObjectLit struct {
	Pos     token.Pos
	Entries []ObjectEntry
}

func (e *ObjectLit) Position() token.Pos { return e.Pos }
func (*ObjectLit) exprNode()             {}

// UnaryExpr covers unary minus and `not`.
type UnaryExpr struct {
	Pos token.Pos
	Op  token.Kind
	X   Expr
}

func (e *UnaryExpr) Position() token.Pos { return e.Pos }
func (*UnaryExpr) exprNode()             {}

// BinaryExpr covers arithmetic, comparison and `/` path-join: the evaluator
// dispatches on the runtime type of the left operand for `/`, rather than
// the parser distinguishing path-join syntactically.
type BinaryExpr struct {
	Pos   token.Pos
	Op    token.Kind
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) Position() token.Pos { return e.Pos }
func (*BinaryExpr) exprNode()             {}

// LogicalExpr covers `and`/`or`, which must short-circuit and therefore
// cannot share evaluation with BinaryExpr's always-evaluate-both-sides
// semantics.
type LogicalExpr struct {
	Pos   token.Pos
	Op    token.Kind // token.AND or token.OR
	Left  Expr
	Right Expr
}

func (e *LogicalExpr) Position() token.Pos { return e.Pos }
func (*LogicalExpr) exprNode()             {}

// IndexExpr is `X[Index]`.
type IndexExpr struct {
	Pos   token.Pos
	X     Expr
	Index Expr
}

func (e *IndexExpr) Position() token.Pos { return e.Pos }
func (*IndexExpr) exprNode()             {}

// FieldExpr is `X.Field`, equivalent to `X['Field']`.
type FieldExpr struct {
	Pos   token.Pos
	X     Expr
	Field string
}

func (e *FieldExpr) Position() token.Pos { return e.Pos }
func (*FieldExpr) exprNode()             {}

// CallExpr is `Callee(Args...)`. Callee is always an Ident: DataCode has no
// higher-order expression position for calls (functions are looked up by
// name, either in the builtin registry or user globals/locals).
type CallExpr struct {
	Pos    token.Pos
	Callee string
	Args   []Expr
}

func (e *CallExpr) Position() token.Pos { return e.Pos }
func (*CallExpr) exprNode()             {}
