// Package ir defines the typeless intermediate representation (spec.md
// §3, §4.3): a uniform tree where every source-level operator application
// has been rewritten into App, and every lambda carries a stable,
// globally-unique pointer label.
package ir

import "github.com/minond/sourdough/internal/token"

// Node is implemented by every IR element.
type Node interface {
	Loc() token.Location
}

// Expr is an expression-position IR node.
type Expr interface {
	Node
	exprNode()
}

// Tree is a lowered program: top-level Def/Module/Import statements mixed
// with bare expressions, mirroring ast.Tree.
type Tree []Node

type Num struct {
	Lexeme string
	L      token.Location
}

func (n *Num) Loc() token.Location { return n.L }
func (n *Num) exprNode()           {}

type Bool struct {
	Value bool
	L     token.Location
}

func (n *Bool) Loc() token.Location { return n.L }
func (n *Bool) exprNode()           {}

type Str struct {
	Value string
	L     token.Location
}

func (n *Str) Loc() token.Location { return n.L }
func (n *Str) exprNode()           {}

type Symbol struct {
	Name string
	L    token.Location
}

func (n *Symbol) Loc() token.Location { return n.L }
func (n *Symbol) exprNode()           {}

type Id struct {
	Name string
	L    token.Location
}

func (n *Id) Loc() token.Location { return n.L }
func (n *Id) exprNode()           {}

type App struct {
	Fn   Expr
	Args []Expr
	L    token.Location
}

func (n *App) Loc() token.Location { return n.L }
func (n *App) exprNode()           {}

type Cond struct {
	If   Expr
	Then Expr
	Else Expr
	L    token.Location
}

func (n *Cond) Loc() token.Location { return n.L }
func (n *Cond) exprNode()           {}

type Binding struct {
	Name  string
	Value Expr
}

type Let struct {
	Bindings []Binding
	Body     Expr
	L        token.Location
}

func (n *Let) Loc() token.Location { return n.L }
func (n *Let) exprNode()           {}

type Param struct {
	Name string
	Ty   string // empty when unannotated
}

// Lambda is an anonymous function. Ptr is the synthetic
// "lambda-XXXXXXXXXXXXXXXX" label assigned at lowering time (spec.md §3);
// it identifies the lambda's entry label, its constant-pool reference
// value, and every call site targeting it.
type Lambda struct {
	Params []Param
	Body   Expr
	Ptr    string
	L      token.Location
}

func (n *Lambda) Loc() token.Location { return n.L }
func (n *Lambda) exprNode()           {}

type Begin struct {
	Exprs []Expr // at least one element
	L     token.Location
}

func (n *Begin) Loc() token.Location { return n.L }
func (n *Begin) exprNode()           {}

// Def is preserved at the top level (spec.md §4.3).
type Def struct {
	Name  string
	Value Expr
	L     token.Location
}

func (n *Def) Loc() token.Location { return n.L }

// Module and Import pass through lowering unchanged; they exist purely
// for the (out-of-scope) module/import resolver.
type Module struct {
	Name string
	L    token.Location
}

func (n *Module) Loc() token.Location { return n.L }

type Import struct {
	Name string
	L    token.Location
}

func (n *Import) Loc() token.Location { return n.L }

// IsLambda reports whether e is itself a Lambda node; an Id bound to a
// lambda does not count.
func IsLambda(e Expr) bool {
	_, ok := e.(*Lambda)
	return ok
}
