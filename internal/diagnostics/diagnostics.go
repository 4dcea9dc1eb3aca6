// Package diagnostics defines the error taxonomy shared by every stage of
// the pipeline (spec.md §7) and the formatter that renders them against the
// original source text.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/minond/sourdough/internal/token"
)

// Phase identifies which pipeline stage raised an error.
type Phase string

const (
	PhaseLexer     Phase = "lexer"
	PhaseParser    Phase = "parser"
	PhaseGenerator Phase = "generator"
	PhaseRuntime   Phase = "runtime"
)

// Code is a stable identifier for an error kind, used by tests and by the
// formatter's lookup table.
type Code string

const (
	// Syntax errors (lexer + parser, spec.md §7).
	ErrBadNum                    Code = "S001"
	ErrUnclosedString            Code = "S002"
	ErrUnexpectedToken           Code = "S003"
	ErrMissingExpectedToken      Code = "S004"
	ErrMissingExpectedTokenAfter Code = "S005"
	ErrUnexpectedEof             Code = "S006"
	ErrBadOperatorDefinition     Code = "S007"
	ErrEmptyBeginNotAllowed      Code = "S008"

	// Generator errors.
	ErrBadPush              Code = "G001"
	ErrBadCall              Code = "G002"
	ErrUndeclaredIdentifier Code = "G003"
	ErrCannotStoreDef       Code = "G004"
	ErrOpcodeSyntax         Code = "G005"
	ErrUnknownUserOpcode    Code = "G006"
	ErrLookup               Code = "G007"
	ErrInvalidI32           Code = "G008"

	// Runtime errors.
	ErrRuntime Code = "R001"
)

var templates = map[Code]string{
	ErrBadNum:                    "'%s' is not a valid number literal",
	ErrUnclosedString:            "unclosed string starting at %s",
	ErrUnexpectedToken:           "unexpected token %q",
	ErrMissingExpectedToken:      "expected %q",
	ErrMissingExpectedTokenAfter: "expected %q after %q",
	ErrUnexpectedEof:             "unexpected end of input",
	ErrBadOperatorDefinition:     "malformed operator declaration: %s",
	ErrEmptyBeginNotAllowed:      "begin block must contain at least one expression",

	ErrBadPush:              "'%s' cannot be pushed as a numeric literal",
	ErrBadCall:              "cannot call %s",
	ErrUndeclaredIdentifier: "undeclared identifier %q",
	ErrCannotStoreDef:       "cannot store into definition %q",
	ErrOpcodeSyntax:         "malformed embedded opcode: %s",
	ErrUnknownUserOpcode:    "unknown opcode %q",
	ErrLookup:               "lookup failed for %q",
	ErrInvalidI32:           "'%s' is not a valid 32-bit integer",

	ErrRuntime: "%s",
}

// Error is the concrete error type returned by every fallible stage.
type Error struct {
	Code  Code
	Phase Phase
	Loc   token.Location
	Args  []interface{}

	// Runtime-only context: the current instruction and a register dump.
	// The code vector is not kept. Stored as opaque strings so this package
	// does not need to import vm or code, avoiding an import cycle.
	Instr     string
	Registers string
}

func (e *Error) Error() string {
	template, ok := templates[e.Code]
	if !ok {
		template = "unknown error"
	}
	msg := fmt.Sprintf(template, e.Args...)

	var b strings.Builder
	if e.Loc.Line > 0 {
		fmt.Fprintf(&b, "%s [%s]: %s", e.Loc, e.Code, msg)
	} else {
		fmt.Fprintf(&b, "[%s]: %s", e.Code, msg)
	}
	if e.Instr != "" {
		fmt.Fprintf(&b, " (at %s)", e.Instr)
	}
	return b.String()
}

// New builds a phase-tagged diagnostic error.
func New(phase Phase, code Code, loc token.Location, args ...interface{}) *Error {
	return &Error{Phase: phase, Code: code, Loc: loc, Args: args}
}

// Runtime builds a runtime error from a message, the current instruction
// and a register dump. It does not record the code vector.
func Runtime(message string, instr string, registers string) *Error {
	return &Error{
		Phase:     PhaseRuntime,
		Code:      ErrRuntime,
		Args:      []interface{}{message},
		Instr:     instr,
		Registers: registers,
	}
}

// Snippet renders the source line(s) around loc with the offending row
// highlighted, for use by an external pretty-printer. Kept here (rather
// than in a separate formatter) because it needs no other pipeline state.
func Snippet(source string, loc token.Location, context int) string {
	lines := strings.Split(source, "\n")
	if loc.Line <= 0 || loc.Line > len(lines) {
		return ""
	}
	start := loc.Line - 1 - context
	if start < 0 {
		start = 0
	}
	end := loc.Line - 1 + context
	if end >= len(lines) {
		end = len(lines) - 1
	}
	var b strings.Builder
	for i := start; i <= end; i++ {
		marker := "  "
		if i == loc.Line-1 {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, i+1, lines[i])
	}
	return b.String()
}
