package derive

import (
	"fmt"
	"go/types"
	"sort"

	"go.uber.org/multierr"
	"golang.org/x/tools/go/packages"
)

// pkgPlan is everything the renderer needs for one package.
type pkgPlan struct {
	pkg   *packages.Package
	dir   string
	types []*TypeDesc // source order, unions included
}

func (pp *pkgPlan) typeNames() []string {
	names := make([]string, 0, len(pp.types))
	for _, td := range pp.types {
		names = append(names, td.Name)
	}
	return names
}

// analyze selects the derived types of pkg and plans every field. All
// capability errors of the package are reported together.
func analyze(pkg *packages.Package, cfg Config) (*pkgPlan, error) {
	targets := markedTypes(pkg)
	extra, err := lookupTypes(pkg, cfg.Types)
	if err != nil {
		return nil, err
	}
	targets = append(targets, extra...)

	a := &analyzer{
		pkg:     pkg,
		qual:    nameQualifier(pkg.Types),
		derived: make(map[*types.TypeName]Kind),
	}

	var errs error
	for _, obj := range dedupe(targets) {
		errs = multierr.Append(errs, a.target(obj))
	}
	if errs != nil {
		return nil, errs
	}

	c := newClassifier(cfg.Table, a.derived, a.qual)
	for _, td := range a.order {
		errs = multierr.Append(errs, a.plan(c, td))
	}
	if errs != nil {
		return nil, errs
	}
	return &pkgPlan{pkg: pkg, dir: packageDir(pkg), types: a.order}, nil
}

// nameQualifier spells foreign types by package name, as source does.
func nameQualifier(pkg *types.Package) types.Qualifier {
	return func(p *types.Package) string {
		if p == pkg {
			return ""
		}
		return p.Name()
	}
}

func dedupe(objs []*types.TypeName) []*types.TypeName {
	seen := make(map[*types.TypeName]bool, len(objs))
	out := objs[:0:0]
	for _, obj := range objs {
		if !seen[obj] {
			seen[obj] = true
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos() < out[j].Pos() })
	return out
}

type analyzer struct {
	pkg     *packages.Package
	qual    types.Qualifier
	derived map[*types.TypeName]Kind
	order   []*TypeDesc
}

func (a *analyzer) qualified(obj *types.TypeName) string {
	return a.pkg.Types.Name() + "." + obj.Name()
}

func (a *analyzer) add(obj *types.TypeName, kind Kind) *TypeDesc {
	named := obj.Type().(*types.Named)
	td := &TypeDesc{
		Name:  obj.Name(),
		Kind:  kind,
		Pos:   a.pkg.Fset.Position(obj.Pos()),
		Named: named,
	}
	if tps := named.TypeParams(); tps != nil {
		for i := 0; i < tps.Len(); i++ {
			tp := tps.At(i)
			td.Params = append(td.Params, ParamDesc{Name: tp.Obj().Name(), Class: paramClass(tp)})
		}
	}
	a.derived[obj] = kind
	a.order = append(a.order, td)
	return td
}

// target registers one requested type and, for unions, its variants.
func (a *analyzer) target(obj *types.TypeName) error {
	if obj.IsAlias() {
		return fmt.Errorf("%s: %s is an alias; derive the aliased type", a.pkg.Fset.Position(obj.Pos()), a.qualified(obj))
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return fmt.Errorf("%s: %s is not a named type", a.pkg.Fset.Position(obj.Pos()), a.qualified(obj))
	}
	if kind, ok := a.derived[obj]; ok {
		if kind == KindVariant {
			return &ConflictError{
				Pos:  a.pkg.Fset.Position(obj.Pos()),
				Type: a.qualified(obj),
				What: "derived both directly and as a union variant",
			}
		}
		return nil
	}

	switch named.Underlying().(type) {
	case *types.Interface:
		return a.union(obj, named)
	case *types.Struct:
		a.add(obj, KindStruct)
	case *types.Pointer:
		return &CapabilityError{
			Pos:       a.pkg.Fset.Position(obj.Pos()),
			Type:      a.qualified(obj),
			FieldType: types.TypeString(named.Underlying(), a.qual),
			Reason:    "methods cannot be declared on a named pointer type; derive the pointed-to type",
		}
	default:
		a.add(obj, KindValue)
	}
	return nil
}

func (a *analyzer) union(obj *types.TypeName, named *types.Named) error {
	pos := a.pkg.Fset.Position(obj.Pos())
	iface := named.Underlying().(*types.Interface)

	var hasSelf bool
	var sealing, required []string
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		switch {
		case m.Name() == "PureClone":
			hasSelf = isSelfInstanceSig(m.Type().(*types.Signature), named)
		case !m.Exported():
			sealing = append(sealing, m.Name())
		default:
			required = append(required, m.Name())
		}
	}
	if !hasSelf {
		return fmt.Errorf("%s: %s: %w: must declare PureClone() %s", pos, a.qualified(obj), ErrBadUnion, selfSpelling(named))
	}
	if len(sealing) == 0 {
		return fmt.Errorf("%s: %s: %w: needs an unexported sealing method", pos, a.qualified(obj), ErrBadUnion)
	}

	var variants []*types.TypeName
	var errs error
	scope := a.pkg.Types.Scope()
	for _, name := range scope.Names() {
		cand, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || cand == obj || cand.IsAlias() {
			continue
		}
		cn, ok := cand.Type().(*types.Named)
		if !ok {
			continue
		}
		if _, isIface := cn.Underlying().(*types.Interface); isIface {
			continue
		}
		sealed, err := a.sealedBy(cn, sealing)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s: %w: %w", a.pkg.Fset.Position(cand.Pos()), a.qualified(cand), ErrBadUnion, err))
			continue
		}
		if !sealed {
			continue
		}
		if missing := a.missingMethods(cn, required); len(missing) > 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s: %w: missing %v of %s", a.pkg.Fset.Position(cand.Pos()), a.qualified(cand), ErrBadUnion, missing, obj.Name()))
			continue
		}
		if err := checkVariantParams(cn, named); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s: %w: %w", a.pkg.Fset.Position(cand.Pos()), a.qualified(cand), ErrBadUnion, err))
			continue
		}
		if err := checkVariantMethods(cn, named); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s: %w: %w", a.pkg.Fset.Position(cand.Pos()), a.qualified(cand), ErrBadUnion, err))
			continue
		}
		variants = append(variants, cand)
	}
	if errs != nil {
		return errs
	}
	if len(variants) == 0 {
		return fmt.Errorf("%s: %s: %w: no variants in package", pos, a.qualified(obj), ErrBadUnion)
	}

	sort.Slice(variants, func(i, j int) bool { return variants[i].Pos() < variants[j].Pos() })
	ud := a.add(obj, KindUnion)
	for _, v := range variants {
		if kind, ok := a.derived[v]; ok {
			return &ConflictError{
				Pos:  a.pkg.Fset.Position(v.Pos()),
				Type: a.qualified(v),
				What: fmt.Sprintf("variant of %s is also derived as a %s", obj.Name(), kind),
			}
		}
		vd := a.add(v, KindVariant)
		vd.Union = ud
		ud.Variants = append(ud.Variants, vd)
	}
	return nil
}

// sealedBy reports whether all sealing methods are in the value method set
// of t. Having only some of them, or having them on the pointer receiver,
// is an error.
func (a *analyzer) sealedBy(t *types.Named, sealing []string) (bool, error) {
	found := 0
	for _, name := range sealing {
		obj, _, _ := types.LookupFieldOrMethod(t, true, a.pkg.Types, name)
		fn, ok := obj.(*types.Func)
		if !ok {
			continue
		}
		if _, ptr := fn.Type().(*types.Signature).Recv().Type().(*types.Pointer); ptr {
			return false, fmt.Errorf("sealing method %s has a pointer receiver", name)
		}
		found++
	}
	if found > 0 && found < len(sealing) {
		return false, fmt.Errorf("implements only %d of %d sealing methods", found, len(sealing))
	}
	return found == len(sealing), nil
}

func (a *analyzer) missingMethods(t *types.Named, names []string) []string {
	var missing []string
	for _, name := range names {
		if obj, _, _ := types.LookupFieldOrMethod(t, false, a.pkg.Types, name); obj == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// checkVariantParams requires a variant to take exactly the union's type
// parameters, in order, and to satisfy the union's constraints with them.
func checkVariantParams(variant, union *types.Named) error {
	vp, up := variant.TypeParams().Len(), union.TypeParams().Len()
	if vp != up {
		return fmt.Errorf("has %d type parameters, union %s has %d", vp, union.Obj().Name(), up)
	}
	if up == 0 {
		return nil
	}
	args := make([]types.Type, vp)
	for i := range args {
		args[i] = variant.TypeParams().At(i)
	}
	if _, err := types.Instantiate(nil, union, args, true); err != nil {
		return fmt.Errorf("type parameters do not satisfy %s: %w", union.Obj().Name(), err)
	}
	return nil
}

// checkVariantMethods requires the value method set of a variant to match
// every union method but PureClone, signatures included. Generic variants
// are compared as instances over their own type parameters.
func checkVariantMethods(variant, union *types.Named) error {
	var v types.Type = variant
	u := union
	if tps := variant.TypeParams(); tps.Len() > 0 {
		args := make([]types.Type, tps.Len())
		for i := range args {
			args[i] = tps.At(i)
		}
		vi, err := types.Instantiate(nil, variant, args, false)
		if err != nil {
			return err
		}
		ui, err := types.Instantiate(nil, union, args, false)
		if err != nil {
			return err
		}
		v, u = vi, ui.(*types.Named)
	}

	iface := u.Underlying().(*types.Interface)
	var methods []*types.Func
	for i := 0; i < iface.NumMethods(); i++ {
		if m := iface.Method(i); m.Name() != "PureClone" {
			methods = append(methods, m)
		}
	}
	want := types.NewInterfaceType(methods, nil).Complete()
	if m, wrongType := types.MissingMethod(v, want, true); m != nil {
		if wrongType {
			return fmt.Errorf("method %s does not match the signature in %s", m.Name(), union.Obj().Name())
		}
		return fmt.Errorf("lacks method %s of %s", m.Name(), union.Obj().Name())
	}
	return nil
}

// isSelfInstanceSig reports whether sig is func() U[P...] for the generic
// union U declared with parameters P.
func isSelfInstanceSig(sig *types.Signature, union *types.Named) bool {
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 || sig.Variadic() {
		return false
	}
	res, ok := types.Unalias(sig.Results().At(0).Type()).(*types.Named)
	if !ok || res.Origin() != union.Origin() {
		return false
	}
	tps := union.TypeParams()
	args := res.TypeArgs()
	if tps.Len() == 0 {
		return args.Len() == 0
	}
	if args.Len() != tps.Len() {
		return false
	}
	for i := 0; i < tps.Len(); i++ {
		if !types.Identical(args.At(i), tps.At(i)) {
			return false
		}
	}
	return true
}

func selfSpelling(named *types.Named) string {
	tps := named.TypeParams()
	s := named.Obj().Name()
	if tps.Len() == 0 {
		return s
	}
	s += "["
	for i := 0; i < tps.Len(); i++ {
		if i > 0 {
			s += ", "
		}
		s += tps.At(i).Obj().Name()
	}
	return s + "]"
}

// plan classifies the fields of a struct, value or variant type.
func (a *analyzer) plan(c *classifier, td *TypeDesc) error {
	if td.Kind == KindUnion {
		return nil
	}
	obj := td.Named.Obj()
	var errs error
	for i := 0; i < td.Named.NumMethods(); i++ {
		if td.Named.Method(i).Name() == "PureClone" {
			errs = multierr.Append(errs, &ConflictError{
				Pos:  td.Pos,
				Type: a.qualified(obj),
				What: "already declares a PureClone method",
			})
		}
	}

	switch u := td.Named.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			if f.Name() == "PureClone" {
				errs = multierr.Append(errs, &ConflictError{
					Pos:  a.pkg.Fset.Position(f.Pos()),
					Type: a.qualified(obj),
					What: "has a field named PureClone",
				})
				continue
			}
			if f.Name() == "_" {
				continue
			}
			res := c.classify(f.Type())
			if res.plan == nil {
				errs = multierr.Append(errs, &CapabilityError{
					Pos:       a.pkg.Fset.Position(f.Pos()),
					Type:      a.qualified(obj),
					Field:     f.Name(),
					FieldType: types.TypeString(f.Type(), a.qual),
					Reason:    res.reason,
				})
				continue
			}
			td.Fields = append(td.Fields, FieldDesc{
				Name:     f.Name(),
				Type:     f.Type(),
				Embedded: f.Embedded(),
				plan:     res.plan,
			})
		}
	default:
		res := c.classify(u)
		if res.plan == nil {
			errs = multierr.Append(errs, &CapabilityError{
				Pos:       td.Pos,
				Type:      a.qualified(obj),
				FieldType: types.TypeString(u, a.qual),
				Reason:    res.reason,
			})
		} else {
			td.Value = res.plan
		}
	}
	return errs
}
