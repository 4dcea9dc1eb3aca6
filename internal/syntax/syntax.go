// Package syntax holds the operator precedence table consulted by
// expression parsing (spec.md §3). A Table is an immutable value: every
// "mutation" yields a new Table, so the top-level reader can fold a
// sequence of operator declarations into a growing table without any
// shared mutable state (spec.md §9 "Mutable operator table during parse").
package syntax

// Table describes the three operator classes the parser recognizes.
type Table struct {
	prefix  map[string]int
	infix   map[string]int
	postfix map[string]int
}

// New returns an empty table.
func New() Table {
	return Table{
		prefix:  map[string]int{},
		infix:   map[string]int{},
		postfix: map[string]int{},
	}
}

func clone(m map[string]int) map[string]int {
	out := make(map[string]int, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithPrefix returns a new table with name registered as a prefix operator
// at the given precedence.
func (t Table) WithPrefix(name string, precedence int) Table {
	n := t
	n.prefix = clone(t.prefix)
	n.prefix[name] = precedence
	return n
}

// WithInfix returns a new table with name registered as an infix operator.
func (t Table) WithInfix(name string, precedence int) Table {
	n := t
	n.infix = clone(t.infix)
	n.infix[name] = precedence
	return n
}

// WithPostfix returns a new table with name registered as a postfix
// operator.
func (t Table) WithPostfix(name string, precedence int) Table {
	n := t
	n.postfix = clone(t.postfix)
	n.postfix[name] = precedence
	return n
}

// IsPrefix reports whether name is a registered prefix operator, and its
// precedence if so.
func (t Table) IsPrefix(name string) (int, bool) {
	p, ok := t.prefix[name]
	return p, ok
}

// IsInfix reports whether name is a registered infix operator.
func (t Table) IsInfix(name string) (int, bool) {
	p, ok := t.infix[name]
	return p, ok
}

// IsPostfix reports whether name is a registered postfix operator.
func (t Table) IsPostfix(name string) (int, bool) {
	p, ok := t.postfix[name]
	return p, ok
}

// InfixPrecedence returns the precedence of name as an infix operator, or
// -1 if it is not one. Used by the Pratt loop's rotation rule (spec.md
// §4.2) where only infix precedence is compared.
func (t Table) InfixPrecedence(name string) int {
	if p, ok := t.infix[name]; ok {
		return p
	}
	return -1
}
