package pipeline

// preludeSource declares the three infix arithmetic operators the core
// opcode set does not provide for free. The ISA (spec.md §6) only gives
// the generator Add(T)/Sub(T) as primitives; "+" and "-" are thin
// opcode(...) wrappers around them, and "*" is built on top of those two
// the same way a user program would build it — there is no Mul opcode to
// reach for. operator(...) declarations run through the same top-level
// fold as user source (spec.md §4.2), so by the time user tokens are
// parsed the precedence table already knows about all three.
//
// This is lexed and parsed together with the user's source (see
// pipeline.Lex) rather than compiled separately, so the two share one
// syntax.Table and one generation scope: a user program can call "+",
// "-", or "*" exactly as if they were defined at the top of its own
// file.
//
// println is included here too: it's the one I/O primitive the language
// exposes (spec.md §4.8), and a call's function is always resolved
// through scope.Qualified (§4.6) — there is no builtin-call special
// case, so println needs a binding the same way + and - do. Its body loads
// the argument twice: Println consumes one copy and the other is the
// call's result, since every lambda body must leave one value for the
// call-convention epilogue.
const preludeSource = `
operator('infix, 10, '+)
operator('infix, 10, '-)
operator('infix, 20, '*)

def + (a, b) = opcode(%{Load(I32, a)
Load(I32, b)
Add(I32)})

def - (a, b) = opcode(%{Load(I32, a)
Load(I32, b)
Sub(I32)})

def * (a, b) = if b then a + *(a, b - 1) else 0

def println(a) = opcode(%{Load(I32, a)
Load(I32, a)
Println})
`
