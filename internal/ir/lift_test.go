package ir_test

import (
	"regexp"
	"testing"

	"github.com/minond/sourdough/internal/ir"
	"github.com/minond/sourdough/internal/lexer"
	"github.com/minond/sourdough/internal/parser"
)

func lift(t *testing.T, src string) ir.Tree {
	t.Helper()
	toks, err := lexer.Lex(src, "t")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tree, err := parser.Parse(lexer.Filter(toks))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return ir.Lift(tree)
}

var ptrPattern = regexp.MustCompile(`^lambda-[a-zA-Z0-9]{16}$`)

func TestLiftBinopBecomesApp(t *testing.T) {
	tree := lift(t, "operator('infix, 10, '+)\na + b")
	app, ok := tree[0].(*ir.App)
	if !ok {
		t.Fatalf("got %T, want *ir.App", tree[0])
	}
	id, ok := app.Fn.(*ir.Id)
	if !ok || id.Name != "+" {
		t.Fatalf("got Fn %#v, want Id(+)", app.Fn)
	}
	if len(app.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(app.Args))
	}
}

func TestLiftUniopBecomesApp(t *testing.T) {
	tree := lift(t, "operator('prefix, 10, 'neg)\nneg a")
	app, ok := tree[0].(*ir.App)
	if !ok {
		t.Fatalf("got %T, want *ir.App", tree[0])
	}
	if len(app.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(app.Args))
	}
}

func TestLiftTrueFalseBecomeBool(t *testing.T) {
	tree := lift(t, "true")
	b, ok := tree[0].(*ir.Bool)
	if !ok || b.Value != true {
		t.Fatalf("got %#v, want Bool(true)", tree[0])
	}

	tree = lift(t, "false")
	b, ok = tree[0].(*ir.Bool)
	if !ok || b.Value != false {
		t.Fatalf("got %#v, want Bool(false)", tree[0])
	}
}

func TestLiftLambdaPtrShapeAndUniqueness(t *testing.T) {
	tree := lift(t, "func () = 1")
	lam, ok := tree[0].(*ir.Lambda)
	if !ok {
		t.Fatalf("got %T, want *ir.Lambda", tree[0])
	}
	if !ptrPattern.MatchString(lam.Ptr) {
		t.Errorf("ptr %q does not match lambda-XXXXXXXXXXXXXXXX", lam.Ptr)
	}

	tree = lift(t, "begin func () = 1 func () = 2 end")
	begin, ok := tree[0].(*ir.Begin)
	if !ok {
		t.Fatalf("got %T, want *ir.Begin", tree[0])
	}
	first := begin.Exprs[0].(*ir.Lambda)
	second := begin.Exprs[1].(*ir.Lambda)
	if first.Ptr == second.Ptr {
		t.Errorf("two distinct lambdas got the same ptr %q", first.Ptr)
	}
}

func TestLiftDefPreservedAtTopLevel(t *testing.T) {
	tree := lift(t, "def x(a) = a")
	def, ok := tree[0].(*ir.Def)
	if !ok {
		t.Fatalf("got %T, want *ir.Def", tree[0])
	}
	if def.Name != "x" {
		t.Errorf("got name %q, want x", def.Name)
	}
	if _, ok := def.Value.(*ir.Lambda); !ok {
		t.Errorf("got value %#v, want *ir.Lambda", def.Value)
	}
}
