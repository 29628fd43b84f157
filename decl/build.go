package decl

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/smasher164/xid"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/i18n"
)

// Options configures how declarations are resolved.
type Options struct {
	// DefaultAlign applies to classes declared without an alignment (default PtrSize).
	DefaultAlign int
	// AllowRedeclare accepts a later declaration identical to an earlier one,
	// which lets several files share common types.
	AllowRedeclare bool
	// Version overrides FormatVersion when checking file constraints.
	Version string
}

func (o Options) defaultAlign() int {
	if o.DefaultAlign <= 0 {
		return PtrSize
	}
	return o.DefaultAlign
}

func (o Options) version() string {
	if o.Version == "" {
		return FormatVersion
	}
	return o.Version
}

// builder accumulates resolution state for Build.
type builder struct {
	opts   Options
	multi  bool
	byName map[string]*Type
	decls  map[string]Decl
	where  map[string]xtl.Path
	order  []*Type
	iss    xtl.Issues
}

// Build resolves the declarations of files into a Universe. All problems are
// reported together as xtl.Issues whose paths point into the documents, e.g.
// "/types/3/bases/0" (prefixed by the document index when there are several).
func Build(opts Options, files ...File) (*Universe, error) {
	b := &builder{
		opts:   opts,
		multi:  len(files) > 1,
		byName: map[string]*Type{},
		decls:  map[string]Decl{},
		where:  map[string]xtl.Path{},
	}
	for _, bt := range builtins {
		t := &Type{ID: len(b.order), Name: bt.name, Kind: KindBuiltin, Size: bt.size, Align: bt.size}
		b.byName[t.Name] = t
		b.order = append(b.order, t)
	}
	for fi, f := range files {
		b.checkVersion(fi, f)
		for i, d := range f.Types {
			b.declare(b.path(fi, i), d)
		}
	}
	for fi, f := range files {
		for i, d := range f.Types {
			b.resolve(b.path(fi, i), d)
		}
	}
	if len(b.iss) == 0 {
		b.checkCycles()
	}
	if len(b.iss) > 0 {
		return nil, b.iss
	}
	for _, t := range b.order {
		computeNV(t)
	}
	return newUniverse(b.byName, b.order), nil
}

// doc returns the root of document file.
func (b *builder) doc(file int) xtl.Path {
	if b.multi {
		return xtl.Root().Index(file)
	}
	return xtl.Root()
}

func (b *builder) path(file, i int) xtl.Path {
	return b.doc(file).Field("types").Index(i)
}

// issue records code at p. An empty msg is taken from the i18n catalog with
// name as the subject.
func (b *builder) issue(p xtl.Path, code, name, msg string) {
	if msg == "" {
		msg = i18n.T(code, map[string]string{"name": name})
	}
	b.iss = xtl.AppendIssues(b.iss, p.Issue(code, msg))
}

func (b *builder) issueCause(p xtl.Path, code, msg string, cause error) {
	it := p.Issue(code, msg)
	it.Cause = cause
	b.iss = xtl.AppendIssues(b.iss, it)
}

func (b *builder) checkVersion(fi int, f File) {
	if f.Version == "" {
		return
	}
	at := b.doc(fi).Field("xtl")
	c, err := semver.NewConstraint(f.Version)
	if err != nil {
		b.issueCause(at, xtl.CodeInvalidDecl, "bad version constraint "+f.Version, err)
		return
	}
	v, err := semver.NewVersion(b.opts.version())
	if err != nil {
		b.issueCause(at, xtl.CodeInvalidDecl, "bad format version "+b.opts.version(), err)
		return
	}
	if !c.Check(v) {
		b.issue(at, xtl.CodeIncompatibleVersion, v.String(), fmt.Sprintf("format %s does not satisfy %q", v, f.Version))
	}
}

// validName accepts identifiers: a letter or underscore followed by letters,
// digits and underscores, in the Unicode XID sense.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if r != '_' && !xid.Start(r) {
				return false
			}
			continue
		}
		if !xid.Continue(r) {
			return false
		}
	}
	return true
}

func (b *builder) declare(at xtl.Path, d Decl) {
	if !validName(d.Name) {
		b.issue(at.Field("name"), xtl.CodeInvalidName, d.Name, fmt.Sprintf("invalid type name %q", d.Name))
		return
	}
	var kind Kind
	switch d.Kind {
	case "class":
		kind = KindClass
		if len(d.Alternatives) > 0 {
			b.issue(at.Field("alternatives"), xtl.CodeInvalidDecl, d.Name, "class "+d.Name+" cannot have alternatives")
			return
		}
	case "sum":
		kind = KindSum
		if len(d.Bases) > 0 || d.Size != 0 || d.Align != 0 {
			b.issue(at, xtl.CodeInvalidDecl, d.Name, "sum "+d.Name+" cannot have bases or a size")
			return
		}
	default:
		b.issue(at.Field("kind"), xtl.CodeInvalidDecl, d.Name, fmt.Sprintf("unknown kind %q for %s", d.Kind, d.Name))
		return
	}
	if d.Size < 0 || d.Align < 0 || (d.Align > 0 && d.Align&(d.Align-1) != 0) {
		b.issue(at, xtl.CodeInvalidDecl, d.Name, "bad size or alignment for "+d.Name)
		return
	}
	if prev, ok := b.byName[d.Name]; ok {
		if b.opts.AllowRedeclare && prev.Kind != KindBuiltin && equalDecl(b.decls[d.Name], d) {
			return
		}
		b.issue(at.Field("name"), xtl.CodeDuplicateType, d.Name, "")
		return
	}
	t := &Type{ID: len(b.order), Name: d.Name, Kind: kind, Size: d.Size, Align: d.Align}
	if kind == KindClass && t.Align == 0 {
		t.Align = b.opts.defaultAlign()
	}
	b.byName[d.Name] = t
	b.decls[d.Name] = d
	b.where[d.Name] = at
	b.order = append(b.order, t)
}

func equalDecl(a, b Decl) bool {
	return a.Name == b.Name && a.Kind == b.Kind && a.Size == b.Size && a.Align == b.Align &&
		slices.Equal(a.Bases, b.Bases) && slices.Equal(a.Alternatives, b.Alternatives)
}

// resolve binds the bases and alternatives of the declaration registered at at.
// Redeclarations and rejected declarations are skipped.
func (b *builder) resolve(at xtl.Path, d Decl) {
	t, ok := b.byName[d.Name]
	if !ok || b.where[d.Name].Pointer() != at.Pointer() {
		return
	}
	for i, bd := range d.Bases {
		bat := at.Field("bases").Index(i)
		bt, ok := b.byName[bd.Name]
		if !ok {
			b.issue(bat, xtl.CodeUnknownType, bd.Name, "")
			continue
		}
		if bt.Kind != KindClass {
			b.issue(bat, xtl.CodeInvalidDecl, bd.Name, fmt.Sprintf("base %s of %s is not a class", bd.Name, d.Name))
			continue
		}
		if slices.ContainsFunc(t.bases, func(x Base) bool { return x.Type == bt }) {
			b.issue(bat, xtl.CodeInvalidDecl, bd.Name, fmt.Sprintf("%s is a direct base of %s more than once", bd.Name, d.Name))
			continue
		}
		t.bases = append(t.bases, Base{Type: bt, Virtual: bd.Virtual})
	}
	for i, name := range d.Alternatives {
		aat := at.Field("alternatives").Index(i)
		alt, ok := lookup(b.byName, name)
		if !ok {
			b.issue(aat, xtl.CodeUnknownType, name, "")
			continue
		}
		t.alts = append(t.alts, alt)
	}
}

// lookup finds name in types, building pointer types on demand.
func lookup(types map[string]*Type, name string) (*Type, bool) {
	if t, ok := types[name]; ok {
		return t, true
	}
	elemName, ok := pointee(name)
	if !ok {
		return nil, false
	}
	elem, ok := lookup(types, elemName)
	if !ok {
		return nil, false
	}
	return &Type{ID: -1, Name: elem.Name + "*", Kind: KindPointer, Size: PtrSize, Align: PtrSize, elem: elem}, true
}

// checkCycles rejects classes that derive from themselves and sums that hold
// themselves by value. Pointers break cycles.
func (b *builder) checkCycles() {
	const (
		white = iota
		grey
		black
	)
	color := map[*Type]int{}
	var culprit *Type
	var visit func(t *Type) bool
	visit = func(t *Type) bool {
		switch color[t] {
		case grey:
			culprit = t
			return false
		case black:
			return true
		}
		color[t] = grey
		next := t.alts
		for _, bs := range t.bases {
			next = append(slices.Clip(next), bs.Type)
		}
		for _, n := range next {
			if n.Kind == KindPointer {
				continue
			}
			if !visit(n) {
				return false
			}
		}
		color[t] = black
		return true
	}
	for _, t := range b.order {
		if color[t] == white && !visit(t) {
			b.issue(b.where[culprit.Name], xtl.CodeCyclicBase, culprit.Name, "")
			return
		}
	}
}
