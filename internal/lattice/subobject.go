package lattice

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Key identifies a subobject inside its complete object. Every path that
// crosses a virtual base collapses onto that base: its identity is the type of
// the last virtual base crossed plus the non-virtual route below it.
type Key struct {
	VBase string
	Path  string
}

// Subobject is one route from a complete object to a base subobject.
type Subobject[N any] struct {
	Type    N
	Path    []int
	Key     Key
	Virtual bool // At least one virtual hop on Path.
}

// Subobjects lists every route from complete to its base subobjects in
// depth-first declaration order, starting with the complete object itself.
// Virtual bases appear once per route; use Key to deduplicate.
func Subobjects[N any](g Graph[N], complete N) []Subobject[N] {
	out := []Subobject[N]{{Type: complete}}
	var walk func(n N, cur Subobject[N], stack []string)
	walk = func(n N, cur Subobject[N], stack []string) {
		for _, b := range g.Bases(n) {
			k := g.Key(b.Type)
			if slices.Contains(stack, k) {
				// pointer embeds may loop back onto an enclosing type
				continue
			}
			next := Subobject[N]{
				Type:    b.Type,
				Path:    append(slices.Clip(cur.Path), b.Index),
				Key:     Key{VBase: cur.Key.VBase, Path: cur.Key.Path + "/" + strconv.Itoa(b.Index)},
				Virtual: cur.Virtual || b.Virtual,
			}
			if b.Virtual {
				next.Key = Key{VBase: k}
			}
			out = append(out, next)
			walk(b.Type, next, append(stack, k))
		}
	}
	walk(complete, out[0], []string{g.Key(complete)})
	return out
}

// Find returns the distinct t subobjects of complete, each with its first
// route.
func Find[N any](g Graph[N], complete, t N) []Subobject[N] {
	return distinct(ofType(g, Subobjects(g, complete), t))
}

// VirtualBases returns the distinct virtual base subobjects of complete in
// order of first appearance.
func VirtualBases[N any](g Graph[N], complete N) []Subobject[N] {
	return distinct(lo.Filter(Subobjects(g, complete), func(s Subobject[N], _ int) bool {
		return s.Key.VBase != "" && s.Key.Path == ""
	}))
}

// Resolve walks path from complete and reports the subobject it lands on.
func Resolve[N any](g Graph[N], complete N, path []int) (Subobject[N], bool) {
	cur := Subobject[N]{Type: complete}
	for _, idx := range path {
		b, ok := lo.Find(g.Bases(cur.Type), func(b Base[N]) bool { return b.Index == idx })
		if !ok {
			return Subobject[N]{}, false
		}
		cur.Key.Path += "/" + strconv.Itoa(idx)
		if b.Virtual {
			cur.Key = Key{VBase: g.Key(b.Type)}
		}
		cur.Type = b.Type
		cur.Virtual = cur.Virtual || b.Virtual
	}
	cur.Path = path
	return cur, true
}

// Downcast locates the t subobject reachable from the subobject at path inside
// complete, following the runtime rules of checked downcasts:
//
//  1. if exactly one t subobject of complete contains the source subobject,
//     that one is the result;
//  2. otherwise, if complete has exactly one t subobject, the result is that
//     one (a cross-cast between sibling bases);
//  3. otherwise there is no result.
func Downcast[N any](g Graph[N], complete N, path []int, t N) ([]int, bool) {
	src, ok := Resolve(g, complete, path)
	if !ok {
		return nil, false
	}
	subs := Subobjects(g, complete)
	candidates := ofType(g, subs, t)
	within := lo.Filter(candidates, func(c Subobject[N], _ int) bool {
		return lo.ContainsBy(subs, func(q Subobject[N]) bool {
			return q.Key == src.Key && hasPrefix(q.Path, c.Path)
		})
	})
	if within = distinct(within); len(within) == 1 {
		return within[0].Path, true
	}
	if all := distinct(candidates); len(all) == 1 {
		return all[0].Path, true
	}
	return nil, false
}

// Describe renders path as "D -> C -> A".
func Describe[N any](g Graph[N], complete N, path []int) string {
	names := []string{g.Name(complete)}
	cur := complete
	for _, idx := range path {
		b, ok := lo.Find(g.Bases(cur), func(b Base[N]) bool { return b.Index == idx })
		if !ok {
			names = append(names, "?")
			break
		}
		name := g.Name(b.Type)
		if b.Virtual {
			name = "virtual " + name
		}
		names = append(names, name)
		cur = b.Type
	}
	return strings.Join(names, " -> ")
}

func ofType[N any](g Graph[N], subs []Subobject[N], t N) []Subobject[N] {
	return lo.Filter(subs, func(s Subobject[N], _ int) bool { return g.Same(s.Type, t) })
}

func distinct[N any](subs []Subobject[N]) []Subobject[N] {
	return lo.UniqBy(subs, func(s Subobject[N]) Key { return s.Key })
}

func hasPrefix(path, prefix []int) bool {
	return len(prefix) <= len(path) && slices.Equal(path[:len(prefix)], prefix)
}
