package parser_test

import (
	"testing"

	"github.com/minond/sourdough/internal/ast"
	"github.com/minond/sourdough/internal/diagnostics"
	"github.com/minond/sourdough/internal/lexer"
	"github.com/minond/sourdough/internal/parser"
)

func parse(t *testing.T, src string) ast.Tree {
	t.Helper()
	toks, err := lexer.Lex(src, "t")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tree, err := parser.Parse(lexer.Filter(toks))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return tree
}

func TestParseDefAndLiteral(t *testing.T) {
	tree := parse(t, "def x = 5")
	if len(tree) != 1 {
		t.Fatalf("got %d nodes, want 1: %#v", len(tree), tree)
	}
	def, ok := tree[0].(*ast.Def)
	if !ok {
		t.Fatalf("got %T, want *ast.Def", tree[0])
	}
	if def.Name.Name != "x" {
		t.Errorf("got name %q, want x", def.Name.Name)
	}
	num, ok := def.Value.(*ast.Num)
	if !ok || num.Lexeme != "5" {
		t.Errorf("got value %#v, want Num(5)", def.Value)
	}
}

func TestParseDefWithParams(t *testing.T) {
	tree := parse(t, "def add(a, b) = a")
	def := tree[0].(*ast.Def)
	lam, ok := def.Value.(*ast.Lambda)
	if !ok {
		t.Fatalf("got %T, want *ast.Lambda", def.Value)
	}
	if len(lam.Params) != 2 || lam.Params[0].Name.Name != "a" || lam.Params[1].Name.Name != "b" {
		t.Errorf("got params %#v, want [a b]", lam.Params)
	}
}

func TestParseIfRequiresAllBranches(t *testing.T) {
	tree := parse(t, "if x then 1 else 2")
	cond, ok := tree[0].(*ast.Cond)
	if !ok {
		t.Fatalf("got %T, want *ast.Cond", tree[0])
	}
	if _, ok := cond.If.(*ast.Id); !ok {
		t.Errorf("got If %#v, want Id", cond.If)
	}
}

func TestParseLetMultipleBindings(t *testing.T) {
	tree := parse(t, "let a = 1 b = 2 in a")
	let, ok := tree[0].(*ast.Let)
	if !ok {
		t.Fatalf("got %T, want *ast.Let", tree[0])
	}
	if len(let.Bindings) != 2 {
		t.Fatalf("got %d bindings, want 2", len(let.Bindings))
	}
	if let.Bindings[0].Name.Name != "a" || let.Bindings[1].Name.Name != "b" {
		t.Errorf("got bindings %#v", let.Bindings)
	}
}

// S5 (spec.md §8): "let x = in x" must fail with MissingExpectedTokenErr
// pointing at the "in" token, since the binding's value was omitted.
func TestParseLetMissingBindingValueIsMissingExpectedToken(t *testing.T) {
	toks, err := lexer.Lex("let x = in x", "t")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(lexer.Filter(toks))
	if err == nil {
		t.Fatal("expected an error, got none")
	}
	de, ok := err.(*diagnostics.Error)
	if !ok {
		t.Fatalf("got %T, want *diagnostics.Error", err)
	}
	if de.Code != diagnostics.ErrMissingExpectedToken {
		t.Errorf("got code %s, want %s", de.Code, diagnostics.ErrMissingExpectedToken)
	}
	if de.Loc.Column != 9 {
		t.Errorf("got column %d, want 9 (the \"in\" token)", de.Loc.Column)
	}
}

func TestParseBeginRejectsEmpty(t *testing.T) {
	toks, err := lexer.Lex("begin end", "t")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(lexer.Filter(toks))
	if err == nil {
		t.Fatal("expected an error for an empty begin block")
	}
	de, ok := err.(*diagnostics.Error)
	if !ok || de.Code != diagnostics.ErrEmptyBeginNotAllowed {
		t.Fatalf("got %v, want ErrEmptyBeginNotAllowed", err)
	}
}

// operator(...) declarations fold into the syntax table and are dropped
// from the resulting tree (spec.md §4.2).
func TestOperatorDeclarationIsDroppedFromTree(t *testing.T) {
	tree := parse(t, "operator('infix, 50, '+)\na + b")
	if len(tree) != 1 {
		t.Fatalf("got %d nodes, want 1 (operator decl should be consumed): %#v", len(tree), tree)
	}
	binop, ok := tree[0].(*ast.Binop)
	if !ok {
		t.Fatalf("got %T, want *ast.Binop", tree[0])
	}
	if binop.Op.Name != "+" {
		t.Errorf("got op %q, want +", binop.Op.Name)
	}
}

func TestMalformedOperatorDeclarationErrors(t *testing.T) {
	toks, err := lexer.Lex("operator('infix, 50)", "t")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(lexer.Filter(toks))
	if err == nil {
		t.Fatal("expected a bad-operator-definition error")
	}
	de, ok := err.(*diagnostics.Error)
	if !ok || de.Code != diagnostics.ErrBadOperatorDefinition {
		t.Fatalf("got %v, want ErrBadOperatorDefinition", err)
	}
}

// Property 3 (spec.md §8): precedence(op1) > precedence(op2) implies
// parse("a op2 b op1 c") == Binop(op2, a, Binop(op1, b, c)) — the higher
// precedence operator binds tighter around "b c", and the rotation rule
// (expressions.go's rotate()) produces that nesting rather than the
// naively left-nested Binop(op1, Binop(op2,a,b), c).
func TestPrecedenceRotationNestsTighterOperatorInward(t *testing.T) {
	tree := parse(t, "operator('infix, 10, 'lo)\noperator('infix, 20, 'hi)\na lo b hi c")
	outer, ok := tree[0].(*ast.Binop)
	if !ok {
		t.Fatalf("got %T, want *ast.Binop", tree[0])
	}
	if outer.Op.Name != "lo" {
		t.Fatalf("got outer op %q, want lo", outer.Op.Name)
	}
	if _, ok := outer.Lhs.(*ast.Id); !ok {
		t.Errorf("got outer.Lhs %#v, want Id(a)", outer.Lhs)
	}
	inner, ok := outer.Rhs.(*ast.Binop)
	if !ok {
		t.Fatalf("got outer.Rhs %T, want *ast.Binop", outer.Rhs)
	}
	if inner.Op.Name != "hi" {
		t.Errorf("got inner op %q, want hi", inner.Op.Name)
	}
}

// Equal-precedence infix chains also rotate (spec.md §4.2: "a - b - c"
// leans left because the rotation fires), so "a op b op c" ends up
// Binop(op, Binop(op, a, b), c), not right-nested.
func TestEqualPrecedenceLeansLeft(t *testing.T) {
	tree := parse(t, "operator('infix, 10, 'op)\na op b op c")
	outer, ok := tree[0].(*ast.Binop)
	if !ok {
		t.Fatalf("got %T, want *ast.Binop", tree[0])
	}
	if _, ok := outer.Rhs.(*ast.Id); !ok {
		t.Errorf("got outer.Rhs %#v, want Id(c)", outer.Rhs)
	}
	inner, ok := outer.Lhs.(*ast.Binop)
	if !ok {
		t.Fatalf("got outer.Lhs %T, want *ast.Binop (a op b)", outer.Lhs)
	}
	if _, ok := inner.Lhs.(*ast.Id); !ok {
		t.Errorf("got inner.Lhs %#v, want Id(a)", inner.Lhs)
	}
}

func TestParseAppAndChainedCalls(t *testing.T) {
	tree := parse(t, "f(1, 2)(3)")
	outer, ok := tree[0].(*ast.App)
	if !ok {
		t.Fatalf("got %T, want *ast.App", tree[0])
	}
	if len(outer.Args) != 1 {
		t.Fatalf("got %d outer args, want 1", len(outer.Args))
	}
	inner, ok := outer.Fn.(*ast.App)
	if !ok {
		t.Fatalf("got outer.Fn %T, want *ast.App", outer.Fn)
	}
	if len(inner.Args) != 2 {
		t.Fatalf("got %d inner args, want 2", len(inner.Args))
	}
}
