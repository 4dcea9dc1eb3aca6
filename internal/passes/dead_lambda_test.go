package passes_test

import (
	"testing"

	"github.com/minond/sourdough/internal/ir"
	"github.com/minond/sourdough/internal/lexer"
	"github.com/minond/sourdough/internal/parser"
	"github.com/minond/sourdough/internal/passes"
)

func lowerAndPrune(t *testing.T, src string) ir.Tree {
	t.Helper()
	toks, err := lexer.Lex(src, "t")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tree, err := parser.Parse(lexer.Filter(toks))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return passes.EliminateDeadLambdas(ir.Lift(tree))
}

func defNames(tree ir.Tree) []string {
	var out []string
	for _, n := range tree {
		if def, ok := n.(*ir.Def); ok {
			out = append(out, def.Name)
		}
	}
	return out
}

func TestUnusedTopLevelLambdaIsDropped(t *testing.T) {
	out := lowerAndPrune(t, "def unused() = 1\ndef main() = 2\nmain()")
	names := defNames(out)
	for _, n := range names {
		if n == "unused" {
			t.Fatalf("expected 'unused' to be pruned, got defs %v", names)
		}
	}
	found := false
	for _, n := range names {
		if n == "main" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'main' to survive, got defs %v", names)
	}
}

func TestCalledLambdaSurvives(t *testing.T) {
	out := lowerAndPrune(t, "def helper() = 1\nhelper()")
	names := defNames(out)
	if len(names) != 1 || names[0] != "helper" {
		t.Fatalf("got defs %v, want [helper]", names)
	}
}

func TestNonLambdaDefsAreNeverPruned(t *testing.T) {
	out := lowerAndPrune(t, "def x = 5")
	names := defNames(out)
	if len(names) != 1 || names[0] != "x" {
		t.Fatalf("got defs %v, want [x] (non-lambda defs are never dead-lambda candidates)", names)
	}
}

// Documented limitation (spec.md §4.4, §9): the pass does not run to a
// fixed point. "b" is unused and gets dropped in this single pass, but
// "a" was only ever referenced from "b"'s own (now-dropped) body — a
// second pass would find "a" dead too, but this pass never runs a
// second time, so "a" incorrectly survives.
func TestPassDoesNotIterateToFixedPoint(t *testing.T) {
	out := lowerAndPrune(t, "def a() = 1\ndef b() = a()\n5")
	names := defNames(out)
	if len(names) != 1 || names[0] != "a" {
		t.Fatalf("got defs %v, want exactly [a] ('b' dropped as unused, 'a' stays despite now being unreachable too)", names)
	}
}
