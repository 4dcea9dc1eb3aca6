// Package passes implements IR-to-IR rewrites that run after lowering and
// before code generation. The only pass specified (spec.md §4.4) is
// dead-lambda elimination.
package passes

import "github.com/minond/sourdough/internal/ir"

// EliminateDeadLambdas drops top-level "def name = <lambda>" bindings
// whose name is never referenced anywhere else in the program.
//
// Known limitations, preserved deliberately rather than fixed (spec.md
// §4.4, §9): this does not run to a fixed point, so a lambda kept alive
// only by another lambda that itself gets dropped in this same pass is
// not caught; and it has no notion of shadowing, so an unrelated local
// binding with the same name as a dead top-level def will count as a
// reference and save it from removal.
func EliminateDeadLambdas(tree ir.Tree) ir.Tree {
	defined := map[string]bool{}
	for _, node := range tree {
		if def, ok := node.(*ir.Def); ok {
			if ir.IsLambda(def.Value) {
				defined[def.Name] = true
			}
		}
	}

	called := map[string]bool{}
	for _, node := range tree {
		switch n := node.(type) {
		case *ir.Def:
			collectIds(n.Value, called)
		case ir.Expr:
			collectIds(n, called)
		}
	}

	unnecessary := map[string]bool{}
	for name := range defined {
		if !called[name] {
			unnecessary[name] = true
		}
	}

	if len(unnecessary) == 0 {
		return tree
	}

	out := make(ir.Tree, 0, len(tree))
	for _, node := range tree {
		if def, ok := node.(*ir.Def); ok && ir.IsLambda(def.Value) && unnecessary[def.Name] {
			continue
		}
		out = append(out, node)
	}
	return out
}

// collectIds walks e and records every identifier name referenced,
// whether in calling position or anywhere else in an expression.
func collectIds(e ir.Expr, into map[string]bool) {
	switch n := e.(type) {
	case *ir.Id:
		into[n.Name] = true
	case *ir.App:
		collectIds(n.Fn, into)
		for _, a := range n.Args {
			collectIds(a, into)
		}
	case *ir.Cond:
		collectIds(n.If, into)
		collectIds(n.Then, into)
		collectIds(n.Else, into)
	case *ir.Let:
		for _, b := range n.Bindings {
			collectIds(b.Value, into)
		}
		collectIds(n.Body, into)
	case *ir.Lambda:
		collectIds(n.Body, into)
	case *ir.Begin:
		for _, sub := range n.Exprs {
			collectIds(sub, into)
		}
	case *ir.Num, *ir.Bool, *ir.Str, *ir.Symbol, nil:
		// leaves; nothing to collect
	}
}
