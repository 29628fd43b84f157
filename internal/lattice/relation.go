package lattice

import (
	"fmt"
	"maps"
	"strings"

	"github.com/samber/lo"
)

// Rule decides s <: t for targets of one category. Rules recurse through r.
type Rule[N any] func(r *Relation[N], s, t N) bool

// Relation evaluates the subtype predicate over a Graph. Rules are keyed by the
// category of the target, so a new category is added by supplying a rule
// rather than by editing the existing ones.
type Relation[N any] struct {
	g     Graph[N]
	rules map[Category]Rule[N]
}

// NewRelation returns the relation with the built-in rules for Hierarchy,
// Pointer, View and Sum targets. Entries of extra are added on top and may
// replace a built-in rule.
func NewRelation[N any](g Graph[N], extra map[Category]Rule[N]) *Relation[N] {
	rules := map[Category]Rule[N]{
		Hierarchy: hierarchyRule[N],
		Pointer:   elemRule[N],
		View:      elemRule[N],
		Sum:       sumRule[N],
	}
	maps.Copy(rules, extra)
	return &Relation[N]{g: g, rules: rules}
}

// Graph returns the underlying graph.
func (r *Relation[N]) Graph() Graph[N] { return r.g }

// Holds reports whether s <: t.
func (r *Relation[N]) Holds(s, t N) bool {
	if r.g.Same(s, t) {
		return true
	}
	rule, ok := r.rules[r.g.Category(t)]
	if !ok {
		return false
	}
	return rule(r, s, t)
}

func hierarchyRule[N any](r *Relation[N], s, t N) bool {
	return r.g.Category(s) == Hierarchy && IsBase(r.g, s, t)
}

// elemRule relates *S to *T and Ref[S] to Ref[T] when S <: T in the hierarchy.
func elemRule[N any](r *Relation[N], s, t N) bool {
	if r.g.Category(s) != r.g.Category(t) {
		return false
	}
	se, ok := r.g.Elem(s)
	if !ok {
		return false
	}
	te, ok := r.g.Elem(t)
	if !ok || r.g.Category(te) != Hierarchy {
		return false
	}
	return r.Holds(se, te)
}

// sumRule short-circuits left to right; an empty sum admits nothing.
func sumRule[N any](r *Relation[N], s, t N) bool {
	return lo.SomeBy(r.g.Alternatives(t), func(a N) bool { return r.Holds(s, a) })
}

// IsBase reports whether t is a direct or transitive base of s along any
// path. Virtual bases reached through several paths are visited once.
func IsBase[N any](g Graph[N], s, t N) bool {
	seen := map[string]bool{g.Key(s): true}
	var walk func(n N) bool
	walk = func(n N) bool {
		for _, b := range g.Bases(n) {
			if g.Same(b.Type, t) {
				return true
			}
			k := g.Key(b.Type)
			if seen[k] {
				continue
			}
			seen[k] = true
			if walk(b.Type) {
				return true
			}
		}
		return false
	}
	return walk(s)
}

// Reason tells why a proof failed.
type Reason int

const (
	NotSubtype Reason = iota + 1
	Ambiguous
)

// ProofError reports a relation that cannot be turned into a cast.
type ProofError struct {
	Reason Reason
	S, T   string
	Paths  []string // Ambiguous: every distinct route from S to T.
}

func (e *ProofError) Error() string {
	if e.Reason == Ambiguous {
		return fmt.Sprintf("%s is an ambiguous base of %s (%s)", e.T, e.S, strings.Join(e.Paths, "; "))
	}
	return fmt.Sprintf("%s is not a subtype of %s", e.S, e.T)
}

// Proof records how s <: t was established. It is independent of the type
// representation so callers can compile it into their own conversions.
type Proof struct {
	Category Category
	// Path addresses the target subobject from the source (Hierarchy) or from
	// the source's element (Pointer, View).
	Path []int
	// Alt is the alternative chosen for a Sum target and Inner the proof of
	// s <: Alternatives(t)[Alt].
	Alt   int
	Inner *Proof
}

// Prove establishes s <: t and rejects relations that hold but name an
// ambiguous base. For Sum targets the first alternative admitting s wins.
func (r *Relation[N]) Prove(s, t N) (*Proof, error) {
	g := r.g
	if g.Same(s, t) {
		return &Proof{Category: Identity}, nil
	}
	if !r.Holds(s, t) {
		return nil, &ProofError{Reason: NotSubtype, S: g.Name(s), T: g.Name(t)}
	}
	switch c := g.Category(t); c {
	case Hierarchy:
		path, err := r.uniquePath(s, t)
		if err != nil {
			return nil, err
		}
		return &Proof{Category: c, Path: path}, nil
	case Pointer, View:
		se, _ := g.Elem(s)
		te, _ := g.Elem(t)
		if g.Same(se, te) {
			return &Proof{Category: c}, nil
		}
		path, err := r.uniquePath(se, te)
		if err != nil {
			return nil, err
		}
		return &Proof{Category: c, Path: path}, nil
	case Sum:
		for i, a := range g.Alternatives(t) {
			if !r.Holds(s, a) {
				continue
			}
			inner, err := r.Prove(s, a)
			if err != nil {
				return nil, err
			}
			return &Proof{Category: c, Alt: i, Inner: inner}, nil
		}
	case Custom:
		return &Proof{Category: c}, nil
	}
	return nil, &ProofError{Reason: NotSubtype, S: g.Name(s), T: g.Name(t)}
}

func (r *Relation[N]) uniquePath(s, t N) ([]int, error) {
	found := Find(r.g, s, t)
	switch len(found) {
	case 0:
		return nil, &ProofError{Reason: NotSubtype, S: r.g.Name(s), T: r.g.Name(t)}
	case 1:
		return found[0].Path, nil
	}
	paths := lo.Map(found, func(so Subobject[N], _ int) string { return Describe(r.g, s, so.Path) })
	return nil, &ProofError{Reason: Ambiguous, S: r.g.Name(s), T: r.g.Name(t), Paths: paths}
}
