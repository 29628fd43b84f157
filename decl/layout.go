package decl

import (
	"fmt"

	"github.com/samber/lo"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/internal/lattice"
)

// nvLayout is the layout of a class without its virtual bases: the part that
// is embedded whenever the class is a non-virtual base.
type nvLayout struct {
	size, align int
	vbptr       bool  // A vbptr slot sits at offset 0.
	bases       []int // Offset of each direct base; -1 for virtual bases.
	own         int   // Offset of the class's own fields.
}

func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}

// computeNV lays out t's non-virtual part. Bases are computed first; Build
// has already rejected cycles.
func computeNV(t *Type) {
	if t.Kind != KindClass || t.nv.size > 0 {
		return
	}
	nv := nvLayout{align: max(t.Align, 1), bases: make([]int, len(t.bases))}
	off := 0
	if lo.SomeBy(t.bases, func(b Base) bool { return b.Virtual }) {
		nv.vbptr = true
		off = PtrSize
		nv.align = max(nv.align, PtrSize)
	}
	for i, b := range t.bases {
		if b.Virtual {
			nv.bases[i] = -1
			continue
		}
		computeNV(b.Type)
		off = alignUp(off, b.Type.nv.align)
		nv.bases[i] = off
		off += b.Type.nv.size
		nv.align = max(nv.align, b.Type.nv.align)
	}
	off = alignUp(off, t.Align)
	nv.own = off
	off += t.Size
	nv.size = alignUp(max(off, 1), nv.align)
	t.nv = nv
}

// Layout is the byte layout of a complete object of a class.
type Layout struct {
	Type       string    `json:"type"`
	Size       int       `json:"size"`
	Align      int       `json:"align"`
	Subobjects []Slot    `json:"subobjects"`
	VBTables   []VBTable `json:"vbtables,omitempty"`

	vbase map[string]int
}

// Slot is one distinct subobject of a complete object. Virtual bases appear
// once, with the first route that reaches them.
type Slot struct {
	Type    string `json:"type"`
	Offset  int    `json:"offset"`
	Route   string `json:"route"`
	Path    []int  `json:"path"`
	Virtual bool   `json:"virtual,omitempty"`
	VBPtr   bool   `json:"vbptr,omitempty"`
}

// VBTable is the table the vbptr of the subobject at offset At refers to: the
// displacement from that subobject to each of its direct virtual bases.
type VBTable struct {
	At      int       `json:"at"`
	Entries []VBEntry `json:"entries"`
}

// VBEntry is one displacement of a VBTable.
type VBEntry struct {
	Base  string `json:"base"`
	Delta int    `json:"delta"`
}

func computeLayout(t *Type) *Layout {
	g := typeGraph{}
	l := &Layout{Type: t.Name, Align: t.nv.align, vbase: map[string]int{}}
	off := t.nv.size
	for _, vb := range lattice.VirtualBases[*Type](g, t) {
		off = alignUp(off, vb.Type.nv.align)
		l.vbase[vb.Type.Name] = off
		off += vb.Type.nv.size
		l.Align = max(l.Align, vb.Type.nv.align)
	}
	l.Size = alignUp(max(off, 1), l.Align)

	subs := lo.UniqBy(lattice.Subobjects[*Type](g, t), func(s lattice.Subobject[*Type]) lattice.Key { return s.Key })
	for _, so := range subs {
		at := l.offset(t, so.Path)
		l.Subobjects = append(l.Subobjects, Slot{
			Type:    so.Type.Name,
			Offset:  at,
			Route:   lattice.Describe[*Type](g, t, so.Path),
			Path:    so.Path,
			Virtual: so.Virtual,
			VBPtr:   so.Type.nv.vbptr,
		})
		if !so.Type.nv.vbptr {
			continue
		}
		vt := VBTable{At: at}
		for _, b := range so.Type.bases {
			if b.Virtual {
				vt.Entries = append(vt.Entries, VBEntry{Base: b.Type.Name, Delta: l.vbase[b.Type.Name] - at})
			}
		}
		l.VBTables = append(l.VBTables, vt)
	}
	return l
}

// offset computes statically where the subobject at path lives inside a
// complete object of type t.
func (l *Layout) offset(t *Type, path []int) int {
	off, cur := 0, t
	for _, idx := range path {
		b := cur.bases[idx]
		if b.Virtual {
			off = l.vbase[b.Type.Name]
		} else {
			off += cur.nv.bases[idx]
		}
		cur = b.Type
	}
	return off
}

// slotAt returns the subobject of type name at offset off.
func (l *Layout) slotAt(name string, off int) (Slot, bool) {
	return lo.Find(l.Subobjects, func(s Slot) bool { return s.Type == name && s.Offset == off })
}

// Layout returns the layout of complete objects of the class name. The result
// is shared and must not be modified.
func (u *Universe) Layout(name string) (*Layout, error) {
	t, ok := u.Lookup(name)
	if !ok {
		return nil, xtl.Issues{xtl.Root().Field(name).Issue(xtl.CodeUnknownType, "unknown type "+name)}
	}
	l, ok := u.layouts[t.Name]
	if !ok {
		return nil, xtl.Issues{xtl.Root().Field(name).Issue(xtl.CodeInvalidDecl, fmt.Sprintf("%s is a %s, not a class", name, t.Kind))}
	}
	return l, nil
}
