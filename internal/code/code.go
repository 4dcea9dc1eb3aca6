// Package code defines the instruction, value, and section types shared by
// the opcode generator (C6), the embedded assembler (C7), and the VM (C8).
// It is the one vocabulary all three speak so that inline assembly and
// generated code are indistinguishable once emitted (spec.md §4.7).
package code

import (
	"fmt"

	"github.com/minond/sourdough/internal/config"
	"github.com/minond/sourdough/internal/token"
)

// Op is the bytecode operation mnemonic (spec.md §6).
type Op int

const (
	Push Op = iota
	Add
	Sub
	Load
	Store
	Jz
	Jmp
	Call
	Call0
	Ret
	Mov
	Stw
	Ldw
	Swap
	Frame
	FrameInit
	Concat
	Println
	Halt
)

var opNames = map[Op]string{
	Push: "Push", Add: "Add", Sub: "Sub", Load: "Load", Store: "Store",
	Jz: "Jz", Jmp: "Jmp", Call: "Call", Call0: "Call0", Ret: "Ret",
	Mov: "Mov", Stw: "Stw", Ldw: "Ldw", Swap: "Swap",
	Frame: "Frame", FrameInit: "FrameInit", Concat: "Concat",
	Println: "Println", Halt: "Halt",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ValueType is the type tag T carried by Push/Add/Sub/Load/Store and by
// constant-pool entries.
type ValueType int

const (
	TI32 ValueType = iota
	TBool
	TConst
	TStr
	TSymbol
	TRef
	TScope
)

var typeNames = map[ValueType]string{
	TI32: "I32", TBool: "Bool", TConst: "Const", TStr: "Str",
	TSymbol: "Symbol", TRef: "Ref", TScope: "Scope",
}

func (t ValueType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ValueKind discriminates Value, the runtime value union of spec.md §3.
type ValueKind int

const (
	KI32 ValueKind = iota
	KTrue
	KFalse
	KStr
	KSymbol
	KId
	KScope
)

// Value is the runtime value union: I32(int32) | True | False |
// Str(string_id) | Symbol(name) | Id(label) | Scope(label).
type Value struct {
	Kind ValueKind
	I32  int32
	Str  string // string_id for KStr, literal text stored by the pool
	Name string // symbol name for KSymbol
	Label string // label for KId / KScope
}

func I32V(n int32) Value   { return Value{Kind: KI32, I32: n} }
func TrueV() Value         { return Value{Kind: KTrue} }
func FalseV() Value        { return Value{Kind: KFalse} }
func StrV(s string) Value  { return Value{Kind: KStr, Str: s} }
func SymbolV(n string) Value { return Value{Kind: KSymbol, Name: n} }
func IdV(label string) Value { return Value{Kind: KId, Label: label} }
func ScopeV(label string) Value { return Value{Kind: KScope, Label: label} }

func (v Value) String() string {
	switch v.Kind {
	case KI32:
		return fmt.Sprintf("I32(%d)", v.I32)
	case KTrue:
		return "True"
	case KFalse:
		return "False"
	case KStr:
		return fmt.Sprintf("Str(%q)", v.Str)
	case KSymbol:
		return fmt.Sprintf("Symbol(%s)", v.Name)
	case KId:
		return fmt.Sprintf("Id(%s)", v.Label)
	case KScope:
		return fmt.Sprintf("Scope(%s)", v.Label)
	default:
		return "<invalid value>"
	}
}

// Instr is a single instruction with typed operands. Not every field is
// meaningful for every Op; see the table in spec.md §6.
type Instr struct {
	Op    Op
	Type  ValueType      // Push/Add/Sub/Load/Store
	Value Value          // Push
	Label string         // Load/Store (qualified name) and Jz/Jmp/Call (label)
	Reg   config.Register // Mov/Stw/Ldw
	Imm   *int32         // Mov's optional immediate
	N     int            // Frame/FrameInit arity
	Loc   token.Location
}

func (i Instr) String() string {
	switch i.Op {
	case Push:
		return fmt.Sprintf("Push(%s, %s)", i.Type, i.Value)
	case Add, Sub, Load, Store:
		if i.Op == Load || i.Op == Store {
			return fmt.Sprintf("%s(%s, %s)", i.Op, i.Type, i.Label)
		}
		return fmt.Sprintf("%s(%s)", i.Op, i.Type)
	case Jz, Jmp, Call:
		return fmt.Sprintf("%s(%s)", i.Op, i.Label)
	case Mov:
		if i.Imm != nil {
			return fmt.Sprintf("Mov(%s, %d)", i.Reg, *i.Imm)
		}
		return fmt.Sprintf("Mov(%s)", i.Reg)
	case Stw, Ldw:
		return fmt.Sprintf("%s(%s)", i.Op, i.Reg)
	case Frame, FrameInit:
		return fmt.Sprintf("%s(%d)", i.Op, i.N)
	default:
		return i.Op.String()
	}
}

// ConstValue is a constant-pool entry: Value(T, label, payload).
type ConstValue struct {
	Type    ValueType
	Label   string
	Payload Value
}

// Section names a code region; "main" sorts first, every other section
// follows in whatever order it was first emitted, and constant-pool values
// come last (spec.md §3 invariants).
type Section = string

// GroupItem is the payload of a Grouped element: either an instruction or
// a bare label marking a jump/call target within that section.
type GroupItem struct {
	IsLabel bool
	Instr   Instr
	Label   string
}

func InstrItem(i Instr) GroupItem      { return GroupItem{Instr: i} }
func LabelItem(name string) GroupItem { return GroupItem{IsLabel: true, Label: name} }

// OutKind discriminates the three Output element shapes from spec.md §3.
type OutKind int

const (
	OGrouped OutKind = iota
	OValue
	OLabel
)

// Out is one element of the opcode generator's intermediate Output stream.
type Out struct {
	Kind    OutKind
	Section Section    // OGrouped
	Item    GroupItem  // OGrouped
	Value   ConstValue // OValue
	Label   string     // OLabel (bare, not yet bound to a section)
}

func Grouped(section Section, item GroupItem) Out {
	return Out{Kind: OGrouped, Section: section, Item: item}
}

func ValueOut(v ConstValue) Out { return Out{Kind: OValue, Value: v} }

func BareLabel(name string) Out { return Out{Kind: OLabel, Label: name} }

// Output is the ordered stream a single generation pass produces, before
// the deduped/framed/labeled/sectioned post-processing passes of §4.6 run.
type Output []Out

// FinalKind discriminates an element of the fully linked code list handed
// to the VM.
type FinalKind int

const (
	FInstr FinalKind = iota
	FLabel
	FValue
)

// Final is one element of the flat []Final list the VM executes. Label and
// Value elements are no-ops the VM's fetch loop steps over (spec.md §4.8).
type Final struct {
	Kind  FinalKind
	Instr Instr
	Label string
	Value ConstValue
}

func (f Final) String() string {
	switch f.Kind {
	case FInstr:
		return f.Instr.String()
	case FLabel:
		return fmt.Sprintf("%s:", f.Label)
	case FValue:
		return fmt.Sprintf("Value(%s, %s, %s)", f.Value.Type, f.Value.Label, f.Value.Payload)
	default:
		return "<invalid>"
	}
}

const MainSection Section = config.MainSection
