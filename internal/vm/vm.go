// Package vm implements C8, the stack machine that executes the sectioned
// code list the opcode generator (C6) and embedded assembler (C7) produce
// (spec.md §4.8).
package vm

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/minond/sourdough/internal/code"
	"github.com/minond/sourdough/internal/config"
	"github.com/minond/sourdough/internal/diagnostics"
)

// Machine holds all mutable execution state: the flat program, the value
// stack, the named-slot memory Store/Load address, the constant pool, and
// the six registers.
type Machine struct {
	Out io.Writer

	program   []code.Final
	labels    map[string]int
	pool      map[string]code.ConstValue
	memory    map[string]code.Value
	registers map[config.Register]code.Value
	stack     []code.Value
	pc        int
}

// New creates a Machine that writes println output to w. A nil w defaults
// to os.Stdout.
func New(w io.Writer) *Machine {
	if w == nil {
		w = os.Stdout
	}
	m := &Machine{Out: w}
	m.registers = make(map[config.Register]code.Value, len(config.Registers))
	for _, r := range config.Registers {
		m.registers[r] = code.I32V(0)
	}
	return m
}

// Run executes program to completion (a Halt instruction) and returns
// whatever value, if any, was left on top of the stack.
func (m *Machine) Run(program []code.Final) (code.Value, error) {
	m.program = program
	m.labels = map[string]int{}
	m.pool = map[string]code.ConstValue{}
	m.memory = map[string]code.Value{}
	m.stack = m.stack[:0]
	m.pc = 0

	for i, f := range program {
		switch f.Kind {
		case code.FLabel:
			m.labels[f.Label] = i
		case code.FValue:
			m.pool[f.Value.Label] = f.Value
		}
	}

	for m.pc < len(m.program) {
		f := m.program[m.pc]
		switch f.Kind {
		case code.FLabel, code.FValue:
			m.pc++
			continue
		case code.FInstr:
			stop, err := m.step(f.Instr)
			if err != nil {
				return code.Value{}, err
			}
			if stop {
				if len(m.stack) == 0 {
					return code.Value{}, nil
				}
				return m.top(), nil
			}
		}
	}
	if len(m.stack) == 0 {
		return code.Value{}, nil
	}
	return m.top(), nil
}

func (m *Machine) top() code.Value { return m.stack[len(m.stack)-1] }

func (m *Machine) push(v code.Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop(instr code.Instr) (code.Value, error) {
	if len(m.stack) == 0 {
		return code.Value{}, m.runtimeErr("stack underflow", instr)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *Machine) runtimeErr(message string, instr code.Instr) error {
	return diagnostics.Runtime(message, instr.String(), m.dumpRegisters())
}

func (m *Machine) dumpRegisters() string {
	s := ""
	for _, r := range config.Registers {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%s=%s", r, m.registers[r])
	}
	return s
}

// resolve follows a single constant-pool indirection: pushed Id(label)
// values stand for whatever the pool recorded under that label (spec.md
// §3: "Id and Scope are symbolic references resolved through the code
// stream").
func (m *Machine) resolve(v code.Value) code.Value {
	if v.Kind == code.KId {
		if entry, ok := m.pool[v.Label]; ok {
			return entry.Payload
		}
	}
	return v
}

func (m *Machine) labelIndex(name string, instr code.Instr) (int, error) {
	idx, ok := m.labels[name]
	if !ok {
		return 0, m.runtimeErr(fmt.Sprintf("undefined label %q", name), instr)
	}
	return idx, nil
}

// step executes one instruction and reports whether the machine should
// stop (Halt).
func (m *Machine) step(instr code.Instr) (bool, error) {
	switch instr.Op {
	case code.Push:
		m.push(instr.Value)
		m.pc++

	case code.Add, code.Sub:
		b, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		a, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		ra, rb := m.resolve(a), m.resolve(b)
		if ra.Kind != code.KI32 || rb.Kind != code.KI32 {
			return false, m.runtimeErr(fmt.Sprintf("%s requires two I32 operands, got %s and %s", instr.Op, ra, rb), instr)
		}
		if instr.Op == code.Add {
			m.push(code.I32V(ra.I32 + rb.I32))
		} else {
			m.push(code.I32V(ra.I32 - rb.I32))
		}
		m.pc++

	case code.Load:
		v, ok := m.memory[instr.Label]
		if !ok {
			return false, m.runtimeErr(fmt.Sprintf("load from undefined slot %q", instr.Label), instr)
		}
		m.push(v)
		m.pc++

	case code.Store:
		v, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		m.memory[instr.Label] = v
		m.pc++

	case code.Jz:
		v, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		if falsy(m.resolve(v)) {
			idx, err := m.labelIndex(instr.Label, instr)
			if err != nil {
				return false, err
			}
			m.pc = idx
		} else {
			m.pc++
		}

	case code.Jmp:
		idx, err := m.labelIndex(instr.Label, instr)
		if err != nil {
			return false, err
		}
		m.pc = idx

	case code.Call:
		idx, err := m.labelIndex(instr.Label, instr)
		if err != nil {
			return false, err
		}
		ret := code.I32V(int32(m.pc + 1))
		m.registers[config.RegLR] = ret
		m.push(ret)
		m.pc = idx

	case code.Call0:
		target := m.registers[config.RegJM]
		idx, err := m.labelIndex(target.Label, instr)
		if err != nil {
			return false, err
		}
		ret := code.I32V(int32(m.pc + 1))
		m.registers[config.RegLR] = ret
		m.push(ret)
		m.pc = idx

	case code.Ret:
		v, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		r := m.resolve(v)
		if r.Kind != code.KI32 {
			return false, m.runtimeErr("return address is not numeric", instr)
		}
		m.pc = int(r.I32)

	case code.Mov:
		if instr.Imm != nil {
			m.registers[instr.Reg] = code.I32V(*instr.Imm)
		} else {
			v, err := m.pop(instr)
			if err != nil {
				return false, err
			}
			m.registers[instr.Reg] = v
		}
		m.pc++

	case code.Stw:
		m.push(m.registers[instr.Reg])
		m.pc++

	case code.Ldw:
		v, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		m.registers[instr.Reg] = v
		m.pc++

	case code.Swap:
		if len(m.stack) < 2 {
			return false, m.runtimeErr("stack underflow", instr)
		}
		n := len(m.stack)
		m.stack[n-1], m.stack[n-2] = m.stack[n-2], m.stack[n-1]
		m.pc++

	case code.Frame:
		if len(m.stack) < instr.N {
			return false, m.runtimeErr(fmt.Sprintf("frame of %d expects at least that many stack values", instr.N), instr)
		}
		m.registers[config.RegESP] = code.I32V(int32(len(m.stack)))
		m.pc++

	case code.FrameInit:
		// Rewritten to Frame by the generator's "framed" pass; executing one
		// directly means the pass did not run.
		return false, m.runtimeErr("unresolved FrameInit reached the VM", instr)

	case code.Concat:
		b, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		a, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		m.push(code.StrV(displayString(m.resolve(a)) + displayString(m.resolve(b))))
		m.pc++

	case code.Println:
		v, err := m.pop(instr)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(m.Out, displayString(m.resolve(v)))
		m.pc++

	case code.Halt:
		return true, nil

	default:
		return false, m.runtimeErr(fmt.Sprintf("unknown opcode %s", instr.Op), instr)
	}
	return false, nil
}

func falsy(v code.Value) bool {
	return v.Kind == code.KFalse || (v.Kind == code.KI32 && v.I32 == 0)
}

func displayString(v code.Value) string {
	switch v.Kind {
	case code.KI32:
		return strconv.Itoa(int(v.I32))
	case code.KTrue:
		return "true"
	case code.KFalse:
		return "false"
	case code.KStr:
		return v.Str
	case code.KSymbol:
		return "'" + v.Name
	case code.KId, code.KScope:
		return "<ref:" + v.Label + ">"
	default:
		return ""
	}
}
