package syntax_test

import (
	"testing"

	"github.com/minond/sourdough/internal/syntax"
)

func TestNewTableIsEmpty(t *testing.T) {
	tbl := syntax.New()
	if _, ok := tbl.IsInfix("+"); ok {
		t.Fatal("a fresh table should not know about any operators")
	}
	if tbl.InfixPrecedence("+") != -1 {
		t.Fatal("InfixPrecedence on an unknown operator should return -1")
	}
}

func TestWithInfixIsImmutable(t *testing.T) {
	base := syntax.New()
	extended := base.WithInfix("+", 10)

	if _, ok := base.IsInfix("+"); ok {
		t.Fatal("WithInfix mutated the receiver; it must return a new Table")
	}
	p, ok := extended.IsInfix("+")
	if !ok || p != 10 {
		t.Fatalf("got (%d, %v), want (10, true)", p, ok)
	}
}

func TestWithPrefixAndPostfixAreIndependentClasses(t *testing.T) {
	tbl := syntax.New().WithPrefix("-", 90).WithPostfix("!", 80)

	if p, ok := tbl.IsPrefix("-"); !ok || p != 90 {
		t.Fatalf("got (%d, %v), want (90, true)", p, ok)
	}
	if p, ok := tbl.IsPostfix("!"); !ok || p != 80 {
		t.Fatalf("got (%d, %v), want (80, true)", p, ok)
	}
	// "-" was only ever registered as prefix, never infix.
	if _, ok := tbl.IsInfix("-"); ok {
		t.Fatal("registering a prefix operator must not also register it as infix")
	}
}

func TestChainedWithCallsAccumulate(t *testing.T) {
	tbl := syntax.New().WithInfix("+", 10).WithInfix("*", 20)

	lo := tbl.InfixPrecedence("+")
	hi := tbl.InfixPrecedence("*")
	if lo != 10 || hi != 20 {
		t.Fatalf("got (+=%d, *=%d), want (10, 20)", lo, hi)
	}
}

func TestRedefiningAnOperatorReplacesItsPrecedence(t *testing.T) {
	tbl := syntax.New().WithInfix("+", 10).WithInfix("+", 50)
	if p := tbl.InfixPrecedence("+"); p != 50 {
		t.Fatalf("got %d, want 50 (later WithInfix call should win)", p)
	}
}
