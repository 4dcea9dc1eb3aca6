// Package ast defines the tree produced by the parser (spec.md §3): a
// sequence of statements and expressions built directly from tokens,
// still carrying source-level operator names (Uniop/Binop) that the IR
// lowering stage later rewrites into uniform function application.
package ast

import "github.com/minond/sourdough/internal/token"

// Node is implemented by every AST element; it exposes the location used
// for diagnostics.
type Node interface {
	Loc() token.Location
}

// Expr is an expression-position AST node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a top-level-only AST node.
type Stmt interface {
	Node
	stmtNode()
}

// Tree is a full parsed program: an ordered mix of statements and
// expressions (spec.md §3: "Tree = sequence of (Stmt | Expr)").
type Tree []Node

// Id names an identifier, including operator glyphs the lexer emitted as
// Id tokens (e.g. "+", "|>").
type Id struct {
	Name string
	L    token.Location
}

func (n *Id) Loc() token.Location { return n.L }
func (n *Id) exprNode()           {}

// Num is a numeric literal, kept as its original lexeme until the
// generator parses it (spec.md §4.6: BadPushErr on failure).
type Num struct {
	Lexeme string
	L      token.Location
}

func (n *Num) Loc() token.Location { return n.L }
func (n *Num) exprNode()           {}

// Str is a braced-string literal (%{ ... }).
type Str struct {
	Value string
	L     token.Location
}

func (n *Str) Loc() token.Location { return n.L }
func (n *Str) exprNode()           {}

// Symbol is a 'name literal.
type Symbol struct {
	Name string
	L    token.Location
}

func (n *Symbol) Loc() token.Location { return n.L }
func (n *Symbol) exprNode()           {}

// Uniop is a prefix or postfix application of a single-operand operator.
type Uniop struct {
	Op  *Id
	Sub Expr
	L   token.Location
}

func (n *Uniop) Loc() token.Location { return n.L }
func (n *Uniop) exprNode()           {}

// Binop is an infix application.
type Binop struct {
	Op  *Id
	Lhs Expr
	Rhs Expr
	L   token.Location
}

func (n *Binop) Loc() token.Location { return n.L }
func (n *Binop) exprNode()           {}

// App is a function call/application: fn(args...).
type App struct {
	Fn   Expr
	Args []Expr
	L    token.Location
}

func (n *App) Loc() token.Location { return n.L }
func (n *App) exprNode()           {}

// Param is a lambda/def parameter with an optional type annotation.
type Param struct {
	Name *Id
	Ty   *Id // nil when unannotated
}

// Lambda is an anonymous function literal.
type Lambda struct {
	Params []Param
	Body   Expr
	L      token.Location
}

func (n *Lambda) Loc() token.Location { return n.L }
func (n *Lambda) exprNode()           {}

// Cond is an if/then/else expression; all three branches are required.
type Cond struct {
	If   Expr
	Then Expr
	Else Expr
	L    token.Location
}

func (n *Cond) Loc() token.Location { return n.L }
func (n *Cond) exprNode()           {}

// Binding is a single "name = expr" clause inside a let.
type Binding struct {
	Name  *Id
	Value Expr
}

// Let is a let-in expression with one or more bindings.
type Let struct {
	Bindings []Binding
	Body     Expr
	L        token.Location
}

func (n *Let) Loc() token.Location { return n.L }
func (n *Let) exprNode()           {}

// Begin is a begin/end block; it must contain at least one expression.
type Begin struct {
	Head Expr
	Tail []Expr
	L    token.Location
}

func (n *Begin) Loc() token.Location { return n.L }
func (n *Begin) exprNode()           {}

// Exprs returns Head followed by Tail, for callers that want a flat list.
func (n *Begin) Exprs() []Expr {
	return append([]Expr{n.Head}, n.Tail...)
}

// Def is a top-level "def name = expr" or "def name(params) = expr".
type Def struct {
	Name  *Id
	Value Expr
	L     token.Location
}

func (n *Def) Loc() token.Location { return n.L }
func (n *Def) stmtNode()           {}

// Module is a top-level "module name" declaration. Module resolution is
// an external collaborator (spec.md §1); this node is carried through
// unchanged for that consumer.
type Module struct {
	Name *Id
	L    token.Location
}

func (n *Module) Loc() token.Location { return n.L }
func (n *Module) stmtNode()           {}

// Import is a top-level "import name" declaration, likewise external.
type Import struct {
	Name *Id
	L    token.Location
}

func (n *Import) Loc() token.Location { return n.L }
func (n *Import) stmtNode()           {}
