package derive

import (
	"fmt"
	"go/types"

	"github.com/on-the-ground/clone_cell_go/internal/memo"
)

type planKind int

const (
	planInert planKind = iota
	planClone
	planBox
	planSlice
	planMap
	planArray
)

// plan is how one type is duplicated. typ is the type as spelled in the
// field, so closures can name it.
type plan struct {
	kind planKind
	typ  types.Type
	elem *plan
}

type planResult struct {
	plan   *plan
	reason string
}

// classifier decides, per type, how generated code duplicates it. Results
// depend only on the type, the set of types derived in the same run and the
// inert table, so they are memoized.
type classifier struct {
	table    *InertTable
	derived  map[*types.TypeName]Kind
	qual     types.Qualifier
	visiting map[*types.Named]bool
	classify func(types.Type) planResult
}

const classifyMemoSize = 1024

func newClassifier(table *InertTable, derived map[*types.TypeName]Kind, qual types.Qualifier) *classifier {
	c := &classifier{
		table:    table,
		derived:  derived,
		qual:     qual,
		visiting: make(map[*types.Named]bool),
	}
	c.classify = memo.Tableize(c.classifyType, classifyMemoSize)
	return c
}

func fail(format string, args ...any) planResult {
	return planResult{reason: fmt.Sprintf(format, args...)}
}

func (c *classifier) classifyType(t types.Type) planResult {
	t = types.Unalias(t)
	switch t := t.(type) {
	case *types.TypeParam:
		switch paramClass(t) {
		case ParamCloner:
			return planResult{plan: &plan{kind: planClone, typ: t}}
		case ParamInert:
			return planResult{plan: &plan{kind: planInert, typ: t}}
		}
		return fail("type parameter %s has neither a pureclone.PureCloner[%s] nor a pureclone.Inert constraint", t.Obj().Name(), t.Obj().Name())

	case *types.Named:
		if kind, ok := c.derived[t.Origin().Obj()]; ok && kind != KindVariant {
			return planResult{plan: &plan{kind: planClone, typ: t}}
		}
		if hasCapability(t) {
			return planResult{plan: &plan{kind: planClone, typ: t}}
		}
		if c.isInert(t) {
			return planResult{plan: &plan{kind: planInert, typ: t}}
		}
		switch t.Underlying().(type) {
		case *types.Pointer, *types.Slice, *types.Map, *types.Array:
			if c.visiting[t] {
				return fail("recursive type %s needs its own PureClone", t.Obj().Name())
			}
			c.visiting[t] = true
			defer delete(c.visiting, t)
			res := c.classifyType(t.Underlying())
			if res.plan != nil {
				p := *res.plan
				p.typ = t
				res.plan = &p
			}
			return res
		}
		if _, ok := c.derived[t.Origin().Obj()]; ok {
			return fail("%s is a union variant; hold the union type instead", t.Obj().Name())
		}
		return fail("%s does not implement pureclone.PureCloner[%s]", t.Obj().Name(), t.Obj().Name())

	case *types.Basic:
		if c.isInert(t) {
			return planResult{plan: &plan{kind: planInert, typ: t}}
		}
		return fail("%s is not duplicable", types.TypeString(t, c.qual))

	case *types.Pointer:
		return c.container(planBox, t, t.Elem())

	case *types.Slice:
		return c.container(planSlice, t, t.Elem())

	case *types.Map:
		if !c.isInert(t.Key()) {
			return fail("map key %s is not inert", types.TypeString(t.Key(), c.qual))
		}
		return c.container(planMap, t, t.Elem())

	case *types.Array:
		if c.isInert(t) {
			return planResult{plan: &plan{kind: planInert, typ: t}}
		}
		return c.container(planArray, t, t.Elem())

	case *types.Struct:
		if c.isInert(t) {
			return planResult{plan: &plan{kind: planInert, typ: t}}
		}
		return fail("anonymous struct with non-inert fields; name it and derive it")

	case *types.Interface:
		return fail("interface is not a pureclone union")
	case *types.Chan:
		return fail("channels are shared mutable state")
	case *types.Signature:
		return fail("functions may close over shared mutable state")
	}
	return fail("unsupported type %s", types.TypeString(t, c.qual))
}

func (c *classifier) container(kind planKind, t, elem types.Type) planResult {
	res := c.classify(elem)
	if res.plan == nil {
		return res
	}
	return planResult{plan: &plan{kind: kind, typ: t, elem: res.plan}}
}

// isInert reports whether a plain copy of t is its pure duplicate. It never
// looks through pointers, slices or maps, so it terminates on recursive types.
func (c *classifier) isInert(t types.Type) bool {
	t = types.Unalias(t)
	switch t := t.(type) {
	case *types.Basic:
		switch t.Kind() {
		case types.Invalid, types.UnsafePointer, types.UntypedNil:
			return false
		}
		return true
	case *types.Named:
		if c.table.Contains(t) {
			return true
		}
		return c.isInert(t.Underlying())
	case *types.Array:
		return c.isInert(t.Elem())
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if !c.isInert(t.Field(i).Type()) {
				return false
			}
		}
		return true
	case *types.TypeParam:
		return paramClass(t) == ParamInert
	}
	return false
}

// hasCapability reports whether t's value method set has PureClone() t.
// A method by that name with any other signature does not count.
func hasCapability(t types.Type) bool {
	sel := types.NewMethodSet(t).Lookup(nil, "PureClone")
	if sel == nil {
		return false
	}
	fn, ok := sel.Obj().(*types.Func)
	if !ok {
		return false
	}
	sig, ok := sel.Type().(*types.Signature)
	if !ok {
		sig = fn.Type().(*types.Signature)
	}
	return isCapabilitySig(sig, t)
}

func isCapabilitySig(sig *types.Signature, self types.Type) bool {
	return sig.Params().Len() == 0 &&
		sig.Results().Len() == 1 &&
		!sig.Variadic() &&
		types.Identical(sig.Results().At(0).Type(), self)
}

// paramClass reads the guarantee of a type parameter's constraint.
func paramClass(tp *types.TypeParam) ParamClass {
	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok {
		return ParamUnbounded
	}
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		if m.Name() != "PureClone" {
			continue
		}
		if isCapabilitySig(m.Type().(*types.Signature), tp) {
			return ParamCloner
		}
	}
	if termsInert(iface) {
		return ParamInert
	}
	return ParamUnbounded
}

// termsInert reports whether some embedded type set of iface admits only
// inert types.
func termsInert(iface *types.Interface) bool {
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		switch e := types.Unalias(iface.EmbeddedType(i)).(type) {
		case *types.Union:
			all := e.Len() > 0
			for j := 0; j < e.Len(); j++ {
				if !basicInert(e.Term(j).Type()) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		case *types.Named:
			if inner, ok := e.Underlying().(*types.Interface); ok {
				if termsInert(inner) {
					return true
				}
			} else if basicInert(e) {
				return true
			}
		case *types.Basic:
			if basicInert(e) {
				return true
			}
		}
	}
	return false
}

func basicInert(t types.Type) bool {
	b, ok := types.Unalias(t).Underlying().(*types.Basic)
	if !ok {
		return false
	}
	switch b.Kind() {
	case types.Invalid, types.UnsafePointer, types.UntypedNil:
		return false
	}
	return true
}
