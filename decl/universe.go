package decl

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/internal/lattice"
)

// typeGraph exposes declared types to the lattice algorithms. The index of a
// base is its position in the declaration.
type typeGraph struct{}

var _ lattice.Graph[*Type] = typeGraph{}

func (typeGraph) Same(a, b *Type) bool { return a.Name == b.Name }

func (typeGraph) Key(t *Type) string { return t.Name }

func (typeGraph) Name(t *Type) string { return t.Name }

func (typeGraph) Category(t *Type) lattice.Category {
	switch t.Kind {
	case KindClass:
		return lattice.Hierarchy
	case KindSum:
		return lattice.Sum
	case KindPointer:
		if t.elem.Kind == KindClass {
			return lattice.Pointer
		}
	}
	return lattice.Identity
}

func (typeGraph) Bases(t *Type) []lattice.Base[*Type] {
	out := make([]lattice.Base[*Type], len(t.bases))
	for i, b := range t.bases {
		out[i] = lattice.Base[*Type]{Type: b.Type, Index: i, Virtual: b.Virtual}
	}
	return out
}

func (typeGraph) Elem(t *Type) (*Type, bool) {
	if t.Kind != KindPointer {
		return nil, false
	}
	return t.elem, true
}

func (typeGraph) Alternatives(t *Type) []*Type { return t.alts }

// Universe is an immutable set of resolved types. It is safe for concurrent use.
type Universe struct {
	byName  map[string]*Type
	order   []*Type
	rel     *lattice.Relation[*Type]
	layouts map[string]*Layout
}

func newUniverse(byName map[string]*Type, order []*Type) *Universe {
	u := &Universe{
		byName:  byName,
		order:   order,
		rel:     lattice.NewRelation[*Type](typeGraph{}, nil),
		layouts: map[string]*Layout{},
	}
	for _, t := range order {
		if t.Kind == KindClass {
			u.layouts[t.Name] = computeLayout(t)
		}
	}
	return u
}

// Lookup returns the type called name. Pointer types ("A*", "A**") exist for
// every type of the universe.
func (u *Universe) Lookup(name string) (*Type, bool) {
	return lookup(u.byName, strings.TrimSpace(name))
}

// Types returns the builtin and declared types in declaration order.
func (u *Universe) Types() []*Type {
	types := maps.Values(u.byName)
	slices.SortFunc(types, func(a, b *Type) int { return a.ID - b.ID })
	return types
}

// Names returns the names of all types, sorted.
func (u *Universe) Names() []string {
	names := maps.Keys(u.byName)
	slices.Sort(names)
	return names
}

func (u *Universe) must(names ...string) ([]*Type, error) {
	out := make([]*Type, len(names))
	var iss xtl.Issues
	for i, n := range names {
		t, ok := u.Lookup(n)
		if !ok {
			iss = xtl.AppendIssues(iss, xtl.Root().Field(n).Issue(xtl.CodeUnknownType, "unknown type "+n))
			continue
		}
		out[i] = t
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// IsSubtype reports whether s <: t. Ambiguity does not affect the answer.
func (u *Universe) IsSubtype(s, t string) (bool, error) {
	ts, err := u.must(s, t)
	if err != nil {
		return false, err
	}
	return u.rel.Holds(ts[0], ts[1]), nil
}

// Check reports whether a value of s can be cast to t. The error is an
// *xtl.Error with CodeNotSubtype or CodeAmbiguousBase when it cannot, or
// xtl.Issues for unknown names.
func (u *Universe) Check(s, t string) error {
	ts, err := u.must(s, t)
	if err != nil {
		return err
	}
	_, err = u.prove(ts[0], ts[1])
	return err
}

func (u *Universe) prove(s, t *Type) (*lattice.Proof, error) {
	pf, err := u.rel.Prove(s, t)
	if err == nil {
		return pf, nil
	}
	var pe *lattice.ProofError
	if !errors.As(err, &pe) {
		return nil, err
	}
	code := xtl.CodeNotSubtype
	if pe.Reason == lattice.Ambiguous {
		code = xtl.CodeAmbiguousBase
	}
	return nil, &xtl.Error{Code: code, From: s.Name, To: t.Name, Paths: pe.Paths}
}

// Routes lists every route from the class s to its base t, one per path, with
// shared virtual bases repeated for each path that reaches them.
func (u *Universe) Routes(s, t string) ([]string, error) {
	ts, err := u.must(s, t)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, so := range lattice.Subobjects[*Type](typeGraph{}, ts[0]) {
		if so.Type == ts[1] {
			out = append(out, lattice.Describe[*Type](typeGraph{}, ts[0], so.Path))
		}
	}
	return out, nil
}
