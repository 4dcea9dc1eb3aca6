package ir

import (
	"github.com/google/uuid"

	"github.com/minond/sourdough/internal/ast"
)

// alphanumeric is the alphabet used to fold UUID randomness into the
// 16-character suffix of a lambda ptr (spec.md §3: "16 alphanumeric
// chars"). It need not be cryptographically uniform, only globally
// unique within one compilation (spec.md §9).
const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newLambdaPtr generates a fresh "lambda-XXXXXXXXXXXXXXXX" label backed by
// a random UUID rather than a hand-rolled PRNG (spec.md §9).
func newLambdaPtr() string {
	id := uuid.New()
	raw := id[:]
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = alphanumeric[int(raw[i%len(raw)])%len(alphanumeric)]
	}
	return "lambda-" + string(buf)
}

// Lift lowers a parsed AST into the typeless IR (spec.md §4.3):
// Uniop(op, x) becomes App(Id(op), [x]); Binop(op, a, b) becomes
// App(Id(op), [a, b]); every Lambda gets a fresh Ptr; Id("true")/Id("false")
// become Bool literals, since the AST has no dedicated boolean node
// (reserved words are plain identifiers until this stage, per spec.md
// §4.2).
func Lift(tree ast.Tree) Tree {
	out := make(Tree, 0, len(tree))
	for _, node := range tree {
		out = append(out, liftTopLevel(node))
	}
	return out
}

func liftTopLevel(node ast.Node) Node {
	switch n := node.(type) {
	case *ast.Def:
		return &Def{Name: n.Name.Name, Value: liftExpr(n.Value), L: n.L}
	case *ast.Module:
		return &Module{Name: n.Name.Name, L: n.L}
	case *ast.Import:
		return &Import{Name: n.Name.Name, L: n.L}
	case ast.Expr:
		return liftExpr(n)
	default:
		panic("ir.Lift: unhandled top-level node")
	}
}

func liftExpr(e ast.Expr) Expr {
	switch n := e.(type) {
	case *ast.Num:
		return &Num{Lexeme: n.Lexeme, L: n.L}
	case *ast.Str:
		return &Str{Value: n.Value, L: n.L}
	case *ast.Symbol:
		return &Symbol{Name: n.Name, L: n.L}
	case *ast.Id:
		switch n.Name {
		case "true":
			return &Bool{Value: true, L: n.L}
		case "false":
			return &Bool{Value: false, L: n.L}
		default:
			return &Id{Name: n.Name, L: n.L}
		}
	case *ast.Uniop:
		return &App{Fn: &Id{Name: n.Op.Name, L: n.Op.L}, Args: []Expr{liftExpr(n.Sub)}, L: n.L}
	case *ast.Binop:
		return &App{Fn: &Id{Name: n.Op.Name, L: n.Op.L}, Args: []Expr{liftExpr(n.Lhs), liftExpr(n.Rhs)}, L: n.L}
	case *ast.App:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = liftExpr(a)
		}
		return &App{Fn: liftExpr(n.Fn), Args: args, L: n.L}
	case *ast.Lambda:
		params := make([]Param, len(n.Params))
		for i, p := range n.Params {
			ty := ""
			if p.Ty != nil {
				ty = p.Ty.Name
			}
			params[i] = Param{Name: p.Name.Name, Ty: ty}
		}
		return &Lambda{Params: params, Body: liftExpr(n.Body), Ptr: newLambdaPtr(), L: n.L}
	case *ast.Cond:
		return &Cond{If: liftExpr(n.If), Then: liftExpr(n.Then), Else: liftExpr(n.Else), L: n.L}
	case *ast.Let:
		bindings := make([]Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = Binding{Name: b.Name.Name, Value: liftExpr(b.Value)}
		}
		return &Let{Bindings: bindings, Body: liftExpr(n.Body), L: n.L}
	case *ast.Begin:
		exprs := make([]Expr, 0, len(n.Tail)+1)
		exprs = append(exprs, liftExpr(n.Head))
		for _, e := range n.Tail {
			exprs = append(exprs, liftExpr(e))
		}
		return &Begin{Exprs: exprs, L: n.L}
	default:
		panic("ir.Lift: unhandled expression node")
	}
}
