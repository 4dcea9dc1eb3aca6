// Package scope implements the nested lexical-scope tree the opcode
// generator uses for name resolution and section assignment (spec.md
// §4.5). Lookup only ever walks child-to-ancestor (spec.md §9): there are
// no sibling or cross-tree references.
package scope

import (
	"fmt"
	"sync/atomic"

	"github.com/minond/sourdough/internal/ir"
)

// Kind distinguishes the three child constructors at the type level, as
// required by spec.md §9 ("must keep them distinguishable... not paper
// over them").
type Kind int

const (
	KindRoot Kind = iota
	KindScoped
	KindForked
	KindUnique
)

// Scope is one node of the lexical-scope tree.
type Scope struct {
	module   string
	parent   *Scope
	kind     Kind
	order    []string
	bindings map[string]ir.Expr
	letSeq   *uint64 // shared across a compilation, for Unique()'s synthesized module names
}

// NewRoot creates the root scope for a compilation unit, rooted at module
// (conventionally "main").
func NewRoot(module string) *Scope {
	return &Scope{
		module:   module,
		kind:     KindRoot,
		bindings: map[string]ir.Expr{},
		letSeq:   new(uint64),
	}
}

// Module is the section name this scope's emitted instructions are
// grouped under.
func (s *Scope) Module() string { return s.module }

// Kind reports which constructor produced this scope.
func (s *Scope) Kind() Kind { return s.kind }

// Parent is this scope's lexical ancestor, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Define binds id to the IR node that defines it in this scope.
func (s *Scope) Define(id string, node ir.Expr) {
	if _, exists := s.bindings[id]; !exists {
		s.order = append(s.order, id)
	}
	s.bindings[id] = node
}

// Names returns the ids defined directly in this scope, in definition
// order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get walks from s up through its ancestors and returns the IR node that
// defines id, if any.
func (s *Scope) Get(id string) (ir.Expr, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[id]; ok {
			return v, true
		}
	}
	return nil, false
}

// Contains reports whether id is visible from s.
func (s *Scope) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Qualified walks ancestors until it finds the scope that defines id and
// returns "<that scope's module>.id". It reports false if no ancestor
// binds id (spec.md §4.5's qualified/qualified2 are the same walk; the
// boolean return subsumes qualified2's None case).
func (s *Scope) Qualified(id string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.bindings[id]; ok {
			return cur.module + "." + id, true
		}
	}
	return "", false
}

// Forked returns a child of s rooted at the new module newModule, used for
// Lambda bodies which must emit into their own code section (spec.md
// §4.5). Names not bound in the fork still resolve through s.
func (s *Scope) Forked(newModule string) *Scope {
	return &Scope{
		module:   newModule,
		parent:   s,
		kind:     KindForked,
		bindings: map[string]ir.Expr{},
		letSeq:   s.letSeq,
	}
}

// Scoped returns a child that shares s's module, so instructions emitted
// under it land in the enclosing section (spec.md §4.5). The name argument
// does not change the module string. The code generator does not call
// Scoped: a top-level "def name(...) = ..." lambda is emitted through
// Forked into its own section, like any other lambda.
func (s *Scope) Scoped(name string) *Scope {
	_ = name
	return &Scope{
		module:   s.module,
		parent:   s,
		kind:     KindScoped,
		bindings: map[string]ir.Expr{},
		letSeq:   s.letSeq,
	}
}

// Unique returns a child with a freshly synthesized module name, used to
// isolate a Let's binding lifetimes (spec.md §4.5).
func (s *Scope) Unique() *Scope {
	n := atomic.AddUint64(s.letSeq, 1)
	return &Scope{
		module:   fmt.Sprintf("%s.let%d", s.module, n),
		parent:   s,
		kind:     KindUnique,
		bindings: map[string]ir.Expr{},
		letSeq:   s.letSeq,
	}
}
