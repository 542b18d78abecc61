package sema

import (
	"github.com/nzslang/nzslc/internal/ast"
	"github.com/nzslang/nzslc/internal/types"
)

// binding is what a scope remembers about one local name: the Ref that
// now identifies it and its resolved type, so later uses don't need to
// re-walk the declaration.
type binding struct {
	ref ast.Ref
	typ types.Type
}

// scope is one lexical level of function-body name resolution (function
// parameters, `let`, loop induction variables). Module-level names
// (constants, functions, structs, aliases, options, externals, imports)
// live in the Resolver's flat maps instead, since NZSL has no nested
// module-level scoping — only function bodies nest blocks.
type scope struct {
	parent *scope
	names  map[string]binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]binding)}
}

func (s *scope) define(name string, ref ast.Ref, typ types.Type) {
	s.names[name] = binding{ref: ref, typ: typ}
}

func (s *scope) lookup(name string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}
