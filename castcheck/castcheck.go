// Package castcheck defines an Analyzer that reports calls to xtl.Cast,
// xtl.Up and xtl.MustRelate whose subtype relation cannot be proven.
//
// # Analyzer castcheck
//
// castcheck: report upcasts that would panic at run time
//
// The relation is evaluated over the static types of the instantiation with
// the same rules the package applies at run time: exported embedded structs
// are bases, exported embedded pointers are virtual bases, xtl.Ref narrows to
// Ref of a base, and the variant containers admit the members of their
// alternatives. Ambiguous bases are reported as well. Targets that decide
// membership themselves (xtl.Relator) and user-defined sum containers are
// accepted, as are instantiations that still mention type parameters.
package castcheck

import (
	"fmt"
	"go/ast"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/reoring/xtl/internal/lattice"
)

const (
	xtlPath     = "github.com/reoring/xtl"
	variantPath = "github.com/reoring/xtl/variant"
)

var Analyzer = &analysis.Analyzer{
	Name:     "castcheck",
	Doc:      "report xtl casts whose subtype relation cannot be proven",
	URL:      "https://pkg.go.dev/github.com/reoring/xtl/castcheck",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// checked maps the checked functions to the positions of S and T among their
// type arguments.
var checked = map[string][2]int{
	"Cast":       {1, 0},
	"Up":         {1, 0},
	"MustRelate": {0, 1},
}

func run(pass *analysis.Pass) (any, error) {
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	rel := lattice.NewRelation[types.Type](staticGraph{}, map[lattice.Category]lattice.Rule[types.Type]{
		lattice.Custom: func(*lattice.Relation[types.Type], types.Type, types.Type) bool { return true },
	})
	ins.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || fn.Pkg() == nil || fn.Pkg().Path() != xtlPath {
			return
		}
		pos, ok := checked[fn.Name()]
		if !ok || fn.Signature().Recv() != nil {
			return
		}
		inst, ok := pass.TypesInfo.Instances[calleeIdent(call.Fun)]
		if !ok || inst.TypeArgs.Len() != 2 {
			return
		}
		s, t := inst.TypeArgs.At(pos[0]), inst.TypeArgs.At(pos[1])
		if hasTypeParam(s) || hasTypeParam(t) {
			return
		}
		if fn.Name() == "Up" {
			// Up relates the element types of two Refs
			if !isHierarchy(s) || !isHierarchy(t) {
				return
			}
		}
		if _, err := rel.Prove(s, t); err != nil {
			pass.Reportf(call.Lparen, "xtl.%s: %v", fn.Name(), err)
		}
	})
	return nil, nil
}

func calleeIdent(fun ast.Expr) *ast.Ident {
	for {
		switch f := ast.Unparen(fun).(type) {
		case *ast.IndexExpr:
			fun = f.X
		case *ast.IndexListExpr:
			fun = f.X
		case *ast.SelectorExpr:
			return f.Sel
		case *ast.Ident:
			return f
		default:
			return nil
		}
	}
}

func hasTypeParam(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.TypeParam:
		return true
	case *types.Pointer:
		return hasTypeParam(t.Elem())
	case *types.Slice:
		return hasTypeParam(t.Elem())
	case *types.Array:
		return hasTypeParam(t.Elem())
	case *types.Map:
		return hasTypeParam(t.Key()) || hasTypeParam(t.Elem())
	case *types.Chan:
		return hasTypeParam(t.Elem())
	case *types.Named:
		for i := 0; i < t.TypeArgs().Len(); i++ {
			if hasTypeParam(t.TypeArgs().At(i)) {
				return true
			}
		}
	}
	return false
}

// staticGraph exposes go/types types to the lattice algorithms.
type staticGraph struct{}

var _ lattice.Graph[types.Type] = staticGraph{}

func (staticGraph) Same(a, b types.Type) bool { return types.Identical(a, b) }

// Key qualifies named types by their declaration so that local types with the
// same name stay distinct.
func (staticGraph) Key(t types.Type) string {
	s := types.TypeString(t, nil)
	if n, ok := types.Unalias(t).(*types.Named); ok {
		s = fmt.Sprintf("%s@%d", s, n.Obj().Pos())
	}
	return s
}

func (staticGraph) Name(t types.Type) string {
	return types.TypeString(t, func(p *types.Package) string { return p.Name() })
}

func (staticGraph) Category(t types.Type) lattice.Category { return classify(t) }

func isHierarchy(t types.Type) bool { return classify(t) == lattice.Hierarchy }

func named(t types.Type, path string) (*types.Named, string) {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok || n.Obj().Pkg() == nil || n.Obj().Pkg().Path() != path {
		return nil, ""
	}
	return n, n.Obj().Name()
}

func isVariant(t types.Type) bool {
	_, name := named(t, variantPath)
	return name == "Empty" || (len(name) == 2 && name[0] == 'V' && name[1] >= '1' && name[1] <= '9')
}

// hasMethods reports whether the method set of *t has all of names.
func hasMethods(t types.Type, names ...string) bool {
	ms := types.NewMethodSet(types.NewPointer(t))
	for _, name := range names {
		if ms.Lookup(nil, name) == nil {
			return false
		}
	}
	return true
}

func classify(t types.Type) lattice.Category {
	t = types.Unalias(t)
	if _, ok := t.Underlying().(*types.Interface); ok {
		return lattice.Identity
	}
	if _, name := named(t, xtlPath); name == "Ref" {
		return lattice.View
	}
	if p, ok := t.(*types.Pointer); ok {
		if classify(p.Elem()) == lattice.Hierarchy {
			return lattice.Pointer
		}
		return lattice.Identity
	}
	if isVariant(t) {
		return lattice.Sum
	}
	// other sum containers and Relators are only known at run time
	if hasMethods(t, "Alternatives", "Which", "Alt", "Emplace") || hasMethods(t, "Admits") {
		return lattice.Custom
	}
	if _, ok := t.Underlying().(*types.Struct); ok {
		return lattice.Hierarchy
	}
	return lattice.Identity
}

func (staticGraph) Bases(t types.Type) []lattice.Base[types.Type] {
	if classify(t) != lattice.Hierarchy {
		return nil
	}
	st := types.Unalias(t).Underlying().(*types.Struct)
	var out []lattice.Base[types.Type]
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() || !f.Exported() || reflect.StructTag(st.Tag(i)).Get("xtl") == "-" {
			continue
		}
		switch classify(f.Type()) {
		case lattice.Hierarchy:
			out = append(out, lattice.Base[types.Type]{Type: f.Type(), Index: i})
		case lattice.Pointer:
			out = append(out, lattice.Base[types.Type]{Type: f.Type().(*types.Pointer).Elem(), Index: i, Virtual: true})
		}
	}
	return out
}

func (staticGraph) Elem(t types.Type) (types.Type, bool) {
	switch classify(t) {
	case lattice.Pointer:
		return types.Unalias(t).(*types.Pointer).Elem(), true
	case lattice.View:
		n, _ := named(t, xtlPath)
		if n.TypeArgs().Len() == 1 {
			return n.TypeArgs().At(0), true
		}
	}
	return nil, false
}

func (staticGraph) Alternatives(t types.Type) []types.Type {
	if !isVariant(t) {
		return nil
	}
	n, _ := named(t, variantPath)
	var out []types.Type
	for i := 0; i < n.TypeArgs().Len(); i++ {
		out = append(out, n.TypeArgs().At(i))
	}
	return out
}
