// Package codegen implements C6, the opcode generator: it lowers typeless
// IR into the sectioned, labeled instruction stream described in spec.md
// §4.6, implementing the call convention the VM (C8) executes.
package codegen

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/minond/sourdough/internal/asm"
	"github.com/minond/sourdough/internal/code"
	"github.com/minond/sourdough/internal/config"
	"github.com/minond/sourdough/internal/diagnostics"
	"github.com/minond/sourdough/internal/ir"
	"github.com/minond/sourdough/internal/scope"
	"github.com/minond/sourdough/internal/token"
)

// Generator accumulates the Output stream for a single compilation unit.
type Generator struct {
	out    code.Output
	consts []code.ConstValue
}

// New creates an empty Generator.
func New() *Generator {
	return &Generator{}
}

// Generate lowers tree into the final, linked code list ready for the VM,
// running the deduped/framed/labeled/sectioned passes described in
// spec.md §4.6.
func Generate(tree ir.Tree) ([]code.Final, error) {
	g := New()
	root := scope.NewRoot(code.MainSection)
	for _, node := range tree {
		if err := g.genTopLevel(root, node); err != nil {
			return nil, err
		}
	}
	consts, remap := dedupeConsts(g.consts)
	out := remapConstRefs(g.out, remap)
	for _, c := range consts {
		out = append(out, code.ValueOut(c))
	}
	out = framed(out)
	out = labeled(out)
	return sectioned(out), nil
}

func (g *Generator) emit(section code.Section, item code.GroupItem) {
	g.out = append(g.out, code.Grouped(section, item))
}

func (g *Generator) emitI(s *scope.Scope, instr code.Instr) {
	g.emit(s.Module(), code.InstrItem(instr))
}

func (g *Generator) emitLabel(section code.Section, name string) {
	g.emit(section, code.LabelItem(name))
}

func (g *Generator) addConst(v code.ConstValue) {
	g.consts = append(g.consts, v)
}

// freshSuffix folds UUID randomness into an n-character alphanumeric
// string, the same technique ir.Lift uses for lambda ptrs (spec.md §9:
// "need not be cryptographic").
func freshSuffix(n int) string {
	id := uuid.New()
	raw := id[:]
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[int(raw[i%len(raw)])%len(alphabet)]
	}
	return string(buf)
}

func freshLabel(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, freshSuffix(4))
}

func (g *Generator) genTopLevel(s *scope.Scope, node ir.Node) error {
	switch n := node.(type) {
	case *ir.Def:
		return g.genDef(s, n)
	case *ir.Module, *ir.Import:
		// External collaborator territory (spec.md §1); nothing to emit.
		return nil
	case ir.Expr:
		if lam, ok := n.(*ir.Lambda); ok {
			// A bare lambda statement at top level: its value is discarded,
			// so under the push-ref rule no reference is pushed for it.
			return g.genLambda(s, lam, false, "")
		}
		return g.genExpr(s, n)
	default:
		return fmt.Errorf("codegen: unhandled top-level node %T", node)
	}
}

func (g *Generator) genDef(s *scope.Scope, def *ir.Def) error {
	s.Define(def.Name, def.Value)
	if lam, ok := def.Value.(*ir.Lambda); ok {
		q, _ := s.Qualified(def.Name)
		return g.genLambda(s, lam, false, q)
	}
	if err := g.genExpr(s, def.Value); err != nil {
		return err
	}
	q, _ := s.Qualified(def.Name)
	g.emitI(s, code.Instr{Op: code.Store, Type: code.TI32, Label: q, Loc: def.L})
	return nil
}

// genExpr is the per-node dispatch table of spec.md §4.6.
func (g *Generator) genExpr(s *scope.Scope, e ir.Expr) error {
	switch n := e.(type) {
	case *ir.Num:
		return g.genNum(s, n)
	case *ir.Bool:
		g.emitI(s, code.Instr{Op: code.Push, Type: code.TBool, Value: boolValue(n.Value), Loc: n.L})
		return nil
	case *ir.Str:
		ptr := freshLabel("str")
		g.addConst(code.ConstValue{Type: code.TStr, Label: ptr, Payload: code.StrV(n.Value)})
		g.emitI(s, code.Instr{Op: code.Push, Type: code.TConst, Value: code.IdV(ptr), Loc: n.L})
		return nil
	case *ir.Symbol:
		ptr := freshLabel("sym")
		g.addConst(code.ConstValue{Type: code.TSymbol, Label: ptr, Payload: code.SymbolV(n.Name)})
		g.emitI(s, code.Instr{Op: code.Push, Type: code.TConst, Value: code.IdV(ptr), Loc: n.L})
		return nil
	case *ir.Id:
		q, ok := s.Qualified(n.Name)
		if !ok {
			return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrUndeclaredIdentifier, n.L, n.Name)
		}
		g.emitI(s, code.Instr{Op: code.Load, Type: code.TI32, Label: q, Loc: n.L})
		return nil
	case *ir.Lambda:
		return g.genLambda(s, n, true, "")
	case *ir.App:
		return g.genApp(s, n)
	case *ir.Cond:
		return g.genCond(s, n)
	case *ir.Let:
		return g.genLet(s, n)
	case *ir.Begin:
		return g.genBegin(s, n)
	default:
		return fmt.Errorf("codegen: unhandled expression node %T", e)
	}
}

func boolValue(b bool) code.Value {
	if b {
		return code.TrueV()
	}
	return code.FalseV()
}

func (g *Generator) genNum(s *scope.Scope, n *ir.Num) error {
	f, err := strconv.ParseFloat(n.Lexeme, 64)
	if err != nil {
		return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrBadPush, n.L, n.Lexeme)
	}
	g.emitI(s, code.Instr{Op: code.Push, Type: code.TI32, Value: code.I32V(int32(f)), Loc: n.L})
	return nil
}

func (g *Generator) genBegin(s *scope.Scope, b *ir.Begin) error {
	for _, e := range b.Exprs {
		if err := g.genExpr(s, e); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genCond(s *scope.Scope, c *ir.Cond) error {
	thenLabel := freshLabel("then")
	elseLabel := freshLabel("else")
	doneLabel := freshLabel("done")

	if err := g.genExpr(s, c.If); err != nil {
		return err
	}
	g.emitI(s, code.Instr{Op: code.Jz, Label: elseLabel, Loc: c.L})
	g.emitLabel(s.Module(), thenLabel)
	if err := g.genExpr(s, c.Then); err != nil {
		return err
	}
	g.emitI(s, code.Instr{Op: code.Jmp, Label: doneLabel, Loc: c.L})
	g.emitLabel(s.Module(), elseLabel)
	if err := g.genExpr(s, c.Else); err != nil {
		return err
	}
	g.emitLabel(s.Module(), doneLabel)
	return nil
}

func (g *Generator) genLet(s *scope.Scope, let *ir.Let) error {
	sub := s.Unique()
	startIdx := len(g.out)

	for _, b := range let.Bindings {
		if lam, ok := b.Value.(*ir.Lambda); ok {
			sub.Define(b.Name, b.Value)
			q, _ := sub.Qualified(b.Name)
			if err := g.genLambda(sub, lam, false, q); err != nil {
				return err
			}
			g.emitI(sub, code.Instr{Op: code.Push, Type: code.TConst, Value: code.IdV(lam.Ptr), Loc: lam.L})
			g.emitI(sub, code.Instr{Op: code.Store, Type: storeType(b.Value), Label: q, Loc: lam.L})
			continue
		}
		if err := g.genExpr(sub, b.Value); err != nil {
			return err
		}
		sub.Define(b.Name, b.Value)
		q, _ := sub.Qualified(b.Name)
		g.emitI(sub, code.Instr{Op: code.Store, Type: storeType(b.Value), Label: q, Loc: b.Value.Loc()})
	}

	if err := g.genExpr(sub, let.Body); err != nil {
		return err
	}

	g.regroup(startIdx, sub.Module(), s.Module())
	return nil
}

// regroup rewrites every Grouped element emitted from idx onward whose
// section is "from" to instead belong to "to" — the Let's code stays in
// the enclosing block even though it was generated under the let's own
// unique module (spec.md §4.6, §9 "regroup hack").
func (g *Generator) regroup(idx int, from, to code.Section) {
	for i := idx; i < len(g.out); i++ {
		if g.out[i].Kind == code.OGrouped && g.out[i].Section == from {
			g.out[i].Section = to
		}
	}
}

// genLambda emits a Lambda's entry label(s) and body into its own forked
// section, and optionally pushes a Scope reference into the enclosing
// scope's module so the surrounding expression can pick it up.
//
// bindName, when non-empty, is also emitted as a label at the lambda's
// entry point alongside its ptr label, so that a direct
// Call(qualified(name)) resolves to the same entry a Scope/Ref-mediated
// call would reach (spec.md §4.6 describes both dispatch paths; this
// repo resolves the ambiguity between them by dual-labeling — see
// DESIGN.md).
func (g *Generator) genLambda(s *scope.Scope, lam *ir.Lambda, pushRef bool, bindName string) error {
	sub := s.Forked(lam.Ptr)
	for _, p := range lam.Params {
		sub.Define(p.Name, &ir.Id{Name: p.Name, L: lam.L})
	}

	if bindName != "" {
		g.emitLabel(sub.Module(), bindName)
	}
	g.emitLabel(sub.Module(), lam.Ptr)

	if err := g.genLambdaBody(sub, lam); err != nil {
		return err
	}

	g.addConst(code.ConstValue{Type: code.TRef, Label: lam.Ptr, Payload: code.IdV(lam.Ptr)})

	if pushRef {
		g.emitI(s, code.Instr{Op: code.Push, Type: code.TScope, Value: code.ScopeV(lam.Ptr), Loc: lam.L})
	}
	return nil
}

// genLambdaBody emits the call-convention prologue, the body, and the
// epilogue (spec.md §4.6 "Lambda body emission").
func (g *Generator) genLambdaBody(sub *scope.Scope, lam *ir.Lambda) error {
	g.emitI(sub, code.Instr{Op: code.FrameInit, N: len(lam.Params), Loc: lam.L})
	for i := len(lam.Params) - 1; i >= 0; i-- {
		p := lam.Params[i]
		q, _ := sub.Qualified(p.Name)
		g.emitI(sub, code.Instr{Op: code.Swap, Loc: lam.L})
		g.emitI(sub, code.Instr{Op: code.Store, Type: code.TI32, Label: q, Loc: lam.L})
	}
	g.emitI(sub, code.Instr{Op: code.Stw, Reg: config.RegEBP, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Stw, Reg: config.RegESP, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Ldw, Reg: config.RegEBP, Loc: lam.L})

	if err := g.genExpr(sub, lam.Body); err != nil {
		return err
	}

	g.emitI(sub, code.Instr{Op: code.Ldw, Reg: config.RegRT, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Stw, Reg: config.RegEBP, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Ldw, Reg: config.RegESP, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Ldw, Reg: config.RegEBP, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Stw, Reg: config.RegRT, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Swap, Loc: lam.L})
	g.emitI(sub, code.Instr{Op: code.Ret, Loc: lam.L})
	return nil
}

func (g *Generator) genApp(s *scope.Scope, app *ir.App) error {
	if fnID, ok := app.Fn.(*ir.Id); ok && fnID.Name == "opcode" {
		return g.genOpcodeCall(s, app)
	}

	for _, a := range app.Args {
		if err := g.genExpr(s, a); err != nil {
			return err
		}
	}

	switch fn := app.Fn.(type) {
	case *ir.Id:
		q, ok := s.Qualified(fn.Name)
		if !ok {
			return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrUndeclaredIdentifier, fn.L, fn.Name)
		}
		g.emitI(s, code.Instr{Op: code.Call, Label: q, Loc: app.L})
		return nil
	case *ir.Lambda:
		if err := g.genLambda(s, fn, true, ""); err != nil {
			return err
		}
		g.emitI(s, code.Instr{Op: code.Mov, Reg: config.RegJM, Loc: app.L})
		g.emitI(s, code.Instr{Op: code.Call0, Loc: app.L})
		return nil
	case *ir.Let, *ir.Cond, *ir.Begin, *ir.App:
		if err := g.genExpr(s, app.Fn); err != nil {
			return err
		}
		g.emitI(s, code.Instr{Op: code.Mov, Reg: config.RegJM, Loc: app.L})
		g.emitI(s, code.Instr{Op: code.Call0, Loc: app.L})
		return nil
	default:
		return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrBadCall, app.L, fmt.Sprintf("%T", app.Fn))
	}
}

func (g *Generator) genOpcodeCall(s *scope.Scope, app *ir.App) error {
	if len(app.Args) != 1 {
		return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrOpcodeSyntax, app.L, "opcode(...) takes exactly one string argument")
	}
	str, ok := app.Args[0].(*ir.Str)
	if !ok {
		return diagnostics.New(diagnostics.PhaseGenerator, diagnostics.ErrOpcodeSyntax, app.L, "opcode(...) argument must be a string literal")
	}
	items, err := assembleInline(str.Value, str.L, s)
	if err != nil {
		return err
	}
	for _, item := range items {
		g.emit(s.Module(), item)
	}
	return nil
}

func assembleInline(source string, loc token.Location, s *scope.Scope) ([]code.GroupItem, error) {
	return asm.Assemble(source, loc, func(name string) (string, bool) { return s.Qualified(name) })
}

// storeType implements the §4.6 store-type table: most nodes store under
// their own natural type tag, but Let/Cond/Begin/App results always store
// as I32 regardless of their actual runtime kind, a documented wart
// preserved rather than fixed (spec.md §9).
func storeType(value ir.Expr) code.ValueType {
	switch value.(type) {
	case *ir.Bool:
		return code.TBool
	case *ir.Str:
		return code.TStr
	case *ir.Symbol:
		return code.TSymbol
	case *ir.Lambda:
		return code.TScope
	case *ir.Num, *ir.Id, *ir.Cond, *ir.Let, *ir.Begin, *ir.App:
		return code.TI32
	default:
		return code.TI32
	}
}

