// Package pipeline wires the compiler's stages — lexer, parser, lowering,
// dead-lambda elimination, and code generation — into the single ordered
// Processor the CLI driver runs (spec.md §2, ambient stack).
package pipeline

import (
	"github.com/minond/sourdough/internal/ast"
	"github.com/minond/sourdough/internal/code"
	"github.com/minond/sourdough/internal/codegen"
	"github.com/minond/sourdough/internal/ir"
	"github.com/minond/sourdough/internal/lexer"
	"github.com/minond/sourdough/internal/parser"
	"github.com/minond/sourdough/internal/passes"
	"github.com/minond/sourdough/internal/token"
)

// Context carries one compilation's state from stage to stage.
type Context struct {
	Source string
	Name   string

	Tokens  []token.Token
	AST     ast.Tree
	IR      ir.Tree
	Program []code.Final
}

// Processor is a single named pipeline stage.
type Processor func(*Context) error

// Pipeline runs an ordered list of Processors against one Context,
// stopping at the first error.
type Pipeline struct {
	stages []Processor
}

// New builds a Pipeline from the given stages, run in order.
func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage against ctx in order.
func (p *Pipeline) Run(ctx *Context) error {
	for _, stage := range p.stages {
		if err := stage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Lex tokenizes the arithmetic prelude (prelude.go) followed by
// ctx.Source, dropping comments (spec.md §4.1), and concatenates the two
// token streams into one so they parse under a single syntax.Table
// (spec.md §4.2) and lower into one generation scope. The prelude's own
// trailing Eof is dropped in favor of the user source's.
func Lex(ctx *Context) error {
	preToks, err := lexer.Lex(preludeSource, "<prelude>")
	if err != nil {
		return err
	}
	pre := lexer.Filter(preToks)
	if n := len(pre); n > 0 && pre[n-1].Type == token.Eof {
		pre = pre[:n-1]
	}

	toks, err := lexer.Lex(ctx.Source, ctx.Name)
	if err != nil {
		return err
	}
	ctx.Tokens = append(pre, lexer.Filter(toks)...)
	return nil
}

// Parse builds the AST, including any operator(...) declarations
// encountered along the way (spec.md §4.2).
func Parse(ctx *Context) error {
	tree, err := parser.Parse(ctx.Tokens)
	if err != nil {
		return err
	}
	ctx.AST = tree
	return nil
}

// Lower rewrites the AST into the typeless IR (spec.md §4.3).
func Lower(ctx *Context) error {
	ctx.IR = ir.Lift(ctx.AST)
	return nil
}

// EliminateDeadLambdas runs the single IR-to-IR rewrite pass (spec.md §4.4).
func EliminateDeadLambdas(ctx *Context) error {
	ctx.IR = passes.EliminateDeadLambdas(ctx.IR)
	return nil
}

// GenerateCode lowers the IR into the VM's final, linked code list
// (spec.md §4.6).
func GenerateCode(ctx *Context) error {
	prog, err := codegen.Generate(ctx.IR)
	if err != nil {
		return err
	}
	ctx.Program = prog
	return nil
}

// Default is the standard compile pipeline: lex, parse, lower, prune dead
// lambdas, generate code.
func Default() *Pipeline {
	return New(Lex, Parse, Lower, EliminateDeadLambdas, GenerateCode)
}

// Compile runs the default pipeline over source and returns the populated
// Context (even on error, so a caller can inspect how far compilation
// got).
func Compile(source, name string) (*Context, error) {
	ctx := &Context{Source: source, Name: name}
	err := Default().Run(ctx)
	return ctx, err
}
