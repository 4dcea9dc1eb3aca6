package asm_test

import (
	"testing"

	"github.com/minond/sourdough/internal/asm"
	"github.com/minond/sourdough/internal/code"
	"github.com/minond/sourdough/internal/config"
	"github.com/minond/sourdough/internal/token"
)

func qualifyIdentity(name string) (string, bool) { return "main." + name, true }

func TestAssembleLabelAndPush(t *testing.T) {
	items, err := asm.Assemble("entry:\nPush(I32, 7)\nHalt", token.Location{}, qualifyIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if !items[0].IsLabel || items[0].Label != "entry" {
		t.Errorf("got %#v, want label 'entry'", items[0])
	}
	if items[1].Instr.Op != code.Push || items[1].Instr.Value.I32 != 7 {
		t.Errorf("got %#v, want Push(I32, 7)", items[1].Instr)
	}
	if items[2].Instr.Op != code.Halt {
		t.Errorf("got %#v, want Halt", items[2].Instr)
	}
}

func TestAssembleLoadQualifiesIdentifier(t *testing.T) {
	items, err := asm.Assemble("Load(I32, a)", token.Location{}, qualifyIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Instr.Label != "main.a" {
		t.Errorf("got label %q, want main.a", items[0].Instr.Label)
	}
}

func TestAssembleLoadUnresolvedIdentifierErrors(t *testing.T) {
	_, err := asm.Assemble("Load(I32, nope)", token.Location{}, func(string) (string, bool) { return "", false })
	if err == nil {
		t.Fatal("expected a lookup error")
	}
}

func TestAssembleUnknownOpcodeErrors(t *testing.T) {
	_, err := asm.Assemble("Frobnicate(I32)", token.Location{}, qualifyIdentity)
	if err == nil {
		t.Fatal("expected an unknown-opcode error")
	}
}

func TestAssembleMovWithAndWithoutImmediate(t *testing.T) {
	items, err := asm.Assemble("Mov(rt, 3)\nMov(jm)", token.Location{}, qualifyIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Instr.Reg != config.RegRT || items[0].Instr.Imm == nil || *items[0].Instr.Imm != 3 {
		t.Errorf("got %#v, want Mov(rt, 3)", items[0].Instr)
	}
	if items[1].Instr.Reg != config.RegJM || items[1].Instr.Imm != nil {
		t.Errorf("got %#v, want Mov(jm) with no immediate", items[1].Instr)
	}
}

func TestAssembleCommentsAndBlankLinesIgnored(t *testing.T) {
	items, err := asm.Assemble("# a comment\n\nHalt\n", token.Location{}, qualifyIdentity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Instr.Op != code.Halt {
		t.Fatalf("got %#v, want exactly [Halt]", items)
	}
}

func TestAssembleSyntaxErrorOnMismatchedParens(t *testing.T) {
	_, err := asm.Assemble("Push(I32, 7", token.Location{}, qualifyIdentity)
	if err == nil {
		t.Fatal("expected a syntax error for an unterminated arg list")
	}
}
