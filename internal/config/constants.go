// Package config collects the constant tables shared across the pipeline:
// reserved words, register names, and precedence bounds. Single source of
// truth, following the shape of the teacher's config package.
package config

// MinPrecedence and MaxPrecedence bound the N in a top-level
// operator('prefix|'infix|'postfix, N, 'name) declaration (spec.md §6).
const (
	MinPrecedence = 0
	MaxPrecedence = 99
)

// LambdaPtrPrefix and LambdaPtrSuffixLen describe the synthetic label
// format assigned to every Lambda IR node (spec.md §3): "lambda-" followed
// by 16 alphanumeric characters.
const (
	LambdaPtrPrefix    = "lambda-"
	LambdaPtrSuffixLen = 16
)

// Register names, used both by the VM and by the embedded assembler's
// operand parser.
type Register string

const (
	RegPC  Register = "pc"
	RegESP Register = "esp"
	RegEBP Register = "ebp"
	RegLR  Register = "lr"
	RegJM  Register = "jm"
	RegRT  Register = "rt"
)

// Registers lists every register recognized as an operand, in a stable
// order used for diagnostic dumps.
var Registers = []Register{RegPC, RegESP, RegEBP, RegLR, RegJM, RegRT}

// MainSection is the name of the section that always comes first in the
// final code layout (spec.md §3).
const MainSection = "main"
