package scope_test

import (
	"testing"

	"github.com/minond/sourdough/internal/ir"
	"github.com/minond/sourdough/internal/scope"
)

var dummy = &ir.Num{Lexeme: "0"}

func TestDefineAndQualified(t *testing.T) {
	root := scope.NewRoot("main")
	root.Define("x", dummy)
	q, ok := root.Qualified("x")
	if !ok || q != "main.x" {
		t.Fatalf("got (%q, %v), want (main.x, true)", q, ok)
	}
}

func TestQualifiedMissingReturnsFalse(t *testing.T) {
	root := scope.NewRoot("main")
	if _, ok := root.Qualified("nope"); ok {
		t.Fatal("expected Qualified to report false for an undefined id")
	}
}

func TestQualifiedWalksToDefiningAncestor(t *testing.T) {
	root := scope.NewRoot("main")
	root.Define("x", dummy)
	child := root.Scoped("inner")
	q, ok := child.Qualified("x")
	if !ok || q != "main.x" {
		t.Fatalf("got (%q, %v), want (main.x, true) — child should resolve through its parent", q, ok)
	}
}

func TestForkedGetsItsOwnModule(t *testing.T) {
	root := scope.NewRoot("main")
	lam := root.Forked("lambda-abc")
	if lam.Module() != "lambda-abc" {
		t.Errorf("got module %q, want lambda-abc", lam.Module())
	}
	if lam.Kind() != scope.KindForked {
		t.Errorf("got kind %v, want KindForked", lam.Kind())
	}
	if lam.Parent() != root {
		t.Error("Forked child's parent should be the scope it was forked from")
	}
}

func TestScopedSharesParentModule(t *testing.T) {
	root := scope.NewRoot("main")
	def := root.Scoped("helper")
	if def.Module() != root.Module() {
		t.Errorf("got module %q, want parent's module %q (Scoped shares the module)", def.Module(), root.Module())
	}
	if def.Kind() != scope.KindScoped {
		t.Errorf("got kind %v, want KindScoped", def.Kind())
	}
}

func TestUniqueSynthesizesFreshModulePerCall(t *testing.T) {
	root := scope.NewRoot("main")
	a := root.Unique()
	b := root.Unique()
	if a.Module() == b.Module() {
		t.Fatalf("two Unique() calls produced the same module %q", a.Module())
	}
	if a.Kind() != scope.KindUnique {
		t.Errorf("got kind %v, want KindUnique", a.Kind())
	}
}

func TestContainsWalksAncestors(t *testing.T) {
	root := scope.NewRoot("main")
	root.Define("x", dummy)
	child := root.Unique()
	if !child.Contains("x") {
		t.Error("expected child to see parent's binding via Contains")
	}
	if child.Contains("never-defined") {
		t.Error("Contains reported true for an undefined id")
	}
}

func TestNamesReturnsDefinitionOrder(t *testing.T) {
	root := scope.NewRoot("main")
	root.Define("b", dummy)
	root.Define("a", dummy)
	root.Define("b", dummy) // redefine: must not duplicate or reorder
	got := root.Names()
	want := []string{"b", "a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestShadowingPicksNearestDefiningScope(t *testing.T) {
	root := scope.NewRoot("main")
	root.Define("x", dummy)
	lam := root.Forked("lambda-xyz")
	lam.Define("x", dummy)
	q, ok := lam.Qualified("x")
	if !ok || q != "lambda-xyz.x" {
		t.Fatalf("got (%q, %v), want (lambda-xyz.x, true) — nearest definition should win", q, ok)
	}
}
