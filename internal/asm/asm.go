// Package asm implements the embedded micro-assembler behind
// opcode("...") expressions (spec.md §4.7, C7): a line-based textual
// encoding of exactly the instruction vocabulary internal/code defines,
// so inline assembly and generated code share one execution model.
package asm

import (
	"strconv"
	"strings"

	"github.com/minond/sourdough/internal/code"
	"github.com/minond/sourdough/internal/config"
	"github.com/minond/sourdough/internal/diagnostics"
	"github.com/minond/sourdough/internal/token"
)

// Qualifier resolves a bare identifier written inside an opcode(...)
// block to its fully-qualified storage slot, using whatever scope is
// active at the call site.
type Qualifier func(name string) (string, bool)

// Assemble parses source, one instruction or "label:" per line, and
// returns the GroupItems ready to inline into the caller's section.
func Assemble(source string, loc token.Location, qualify Qualifier) ([]code.GroupItem, error) {
	var items []code.GroupItem
	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, "(") {
			items = append(items, code.LabelItem(strings.TrimSuffix(line, ":")))
			continue
		}
		instr, err := parseInstr(line, loc, qualify)
		if err != nil {
			return nil, err
		}
		items = append(items, code.InstrItem(instr))
	}
	return items, nil
}

func syntaxErr(loc token.Location, line string) error {
	return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrOpcodeSyntax, loc, line)
}

func parseInstr(line string, loc token.Location, qualify Qualifier) (code.Instr, error) {
	name := line
	argsStr := ""
	if idx := strings.IndexByte(line, '('); idx >= 0 {
		if !strings.HasSuffix(line, ")") {
			return code.Instr{}, syntaxErr(loc, line)
		}
		name = strings.TrimSpace(line[:idx])
		argsStr = strings.TrimSpace(line[idx+1 : len(line)-1])
	}

	var args []string
	if argsStr != "" {
		for _, a := range strings.Split(argsStr, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}

	op, ok := opByName(name)
	if !ok {
		return code.Instr{}, diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrUnknownUserOpcode, loc, name)
	}

	switch op {
	case code.Push:
		if len(args) != 2 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		t, err := parseType(args[0], loc, line)
		if err != nil {
			return code.Instr{}, err
		}
		v, err := parseValue(t, args[1], loc, line)
		if err != nil {
			return code.Instr{}, err
		}
		return code.Instr{Op: code.Push, Type: t, Value: v, Loc: loc}, nil

	case code.Add, code.Sub:
		if len(args) != 1 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		t, err := parseType(args[0], loc, line)
		if err != nil {
			return code.Instr{}, err
		}
		return code.Instr{Op: op, Type: t, Loc: loc}, nil

	case code.Load, code.Store:
		if len(args) != 2 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		t, err := parseType(args[0], loc, line)
		if err != nil {
			return code.Instr{}, err
		}
		q, ok := qualify(args[1])
		if !ok {
			return code.Instr{}, diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrLookup, loc, args[1])
		}
		return code.Instr{Op: op, Type: t, Label: q, Loc: loc}, nil

	case code.Jz, code.Jmp:
		if len(args) != 1 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		return code.Instr{Op: op, Label: args[0], Loc: loc}, nil

	case code.Call:
		if len(args) != 1 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		target := args[0]
		if q, ok := qualify(args[0]); ok {
			target = q
		}
		return code.Instr{Op: code.Call, Label: target, Loc: loc}, nil

	case code.Call0, code.Ret, code.Swap, code.Concat, code.Println, code.Halt:
		if len(args) != 0 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		return code.Instr{Op: op, Loc: loc}, nil

	case code.Mov:
		if len(args) < 1 || len(args) > 2 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		reg, err := parseReg(args[0], loc, line)
		if err != nil {
			return code.Instr{}, err
		}
		instr := code.Instr{Op: code.Mov, Reg: reg, Loc: loc}
		if len(args) == 2 {
			n, perr := strconv.ParseInt(args[1], 10, 32)
			if perr != nil {
				return code.Instr{}, diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrInvalidI32, loc, args[1])
			}
			v := int32(n)
			instr.Imm = &v
		}
		return instr, nil

	case code.Stw, code.Ldw:
		if len(args) != 1 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		reg, err := parseReg(args[0], loc, line)
		if err != nil {
			return code.Instr{}, err
		}
		return code.Instr{Op: op, Reg: reg, Loc: loc}, nil

	case code.Frame, code.FrameInit:
		if len(args) != 1 {
			return code.Instr{}, syntaxErr(loc, line)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return code.Instr{}, diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrInvalidI32, loc, args[0])
		}
		return code.Instr{Op: op, N: n, Loc: loc}, nil

	default:
		return code.Instr{}, diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrUnknownUserOpcode, loc, name)
	}
}

var opNamesByText = map[string]code.Op{
	"Push": code.Push, "Add": code.Add, "Sub": code.Sub, "Load": code.Load,
	"Store": code.Store, "Jz": code.Jz, "Jmp": code.Jmp, "Call": code.Call,
	"Call0": code.Call0, "Ret": code.Ret, "Mov": code.Mov, "Stw": code.Stw,
	"Ldw": code.Ldw, "Swap": code.Swap, "Frame": code.Frame,
	"FrameInit": code.FrameInit, "Concat": code.Concat, "Println": code.Println,
	"Halt": code.Halt,
}

func opByName(name string) (code.Op, bool) {
	op, ok := opNamesByText[name]
	return op, ok
}

var typesByText = map[string]code.ValueType{
	"I32": code.TI32, "Bool": code.TBool, "Const": code.TConst,
	"Str": code.TStr, "Symbol": code.TSymbol, "Ref": code.TRef, "Scope": code.TScope,
}

func parseType(s string, loc token.Location, line string) (code.ValueType, error) {
	t, ok := typesByText[s]
	if !ok {
		return 0, syntaxErr(loc, line)
	}
	return t, nil
}

func parseValue(t code.ValueType, raw string, loc token.Location, line string) (code.Value, error) {
	switch t {
	case code.TI32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return code.Value{}, diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrInvalidI32, loc, raw)
		}
		return code.I32V(int32(n)), nil
	case code.TBool:
		switch raw {
		case "true":
			return code.TrueV(), nil
		case "false":
			return code.FalseV(), nil
		default:
			return code.Value{}, syntaxErr(loc, line)
		}
	case code.TConst:
		return code.IdV(unquote(raw)), nil
	case code.TStr:
		s, err := strconv.Unquote(raw)
		if err != nil {
			return code.Value{}, syntaxErr(loc, line)
		}
		return code.StrV(s), nil
	case code.TSymbol:
		return code.SymbolV(unquote(raw)), nil
	case code.TRef:
		return code.IdV(unquote(raw)), nil
	case code.TScope:
		return code.ScopeV(unquote(raw)), nil
	default:
		return code.Value{}, syntaxErr(loc, line)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseReg(s string, loc token.Location, line string) (config.Register, error) {
	for _, r := range config.Registers {
		if string(r) == s {
			return r, nil
		}
	}
	return "", syntaxErr(loc, line)
}
