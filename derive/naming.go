package derive

import (
	"fmt"
	"go/types"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// localName matches every identifier the renderer declares inside a method:
// receiver, result and closure variables.
var localName = regexp.MustCompile(`^(in|out|[ei][0-9]+)_*$`)

// namer picks identifiers for one generated file so that nothing the file
// declares shadows anything it refers to.
type namer struct {
	pkg     *types.Package
	scope   map[string]bool // package-scope names of the target package
	params  map[string]bool // final type parameter names across the file
	imports map[string]string // path → name used in the file
	decl    map[string]string // path → declared package name
	taken   map[string]bool
}

func newNamer(pkg *types.Package) *namer {
	n := &namer{
		pkg:     pkg,
		scope:   make(map[string]bool),
		params:  make(map[string]bool),
		imports: make(map[string]string),
		decl:    make(map[string]string),
		taken:   make(map[string]bool),
	}
	for _, name := range pkg.Scope().Names() {
		n.scope[name] = true
	}
	return n
}

// paramNames returns the names used for a type's parameters in its generated
// method. A parameter keeps its declared name unless it collides with a
// package-scope name or a local.
func (n *namer) paramNames(list *types.TypeParamList) []string {
	if list == nil {
		return nil
	}
	declared := make(map[string]bool, list.Len())
	for i := 0; i < list.Len(); i++ {
		declared[list.At(i).Obj().Name()] = true
	}
	names := make([]string, list.Len())
	for i := range names {
		name := list.At(i).Obj().Name()
		if name == "_" || n.scope[name] || localName.MatchString(name) {
			for j := i; ; j++ {
				cand := "T" + strconv.Itoa(j)
				if !n.scope[cand] && !declared[cand] {
					name = cand
					declared[cand] = true
					break
				}
			}
		}
		names[i] = name
		n.params[name] = true
	}
	return names
}

// local returns base, suffixed with underscores until it shadows no
// package-scope name.
func (n *namer) local(base string) string {
	for n.scope[base] {
		base += "_"
	}
	return base
}

// importName returns the name the file uses for pkg, registering the import.
func (n *namer) importName(pkg *types.Package) string {
	if name, ok := n.imports[pkg.Path()]; ok {
		return name
	}
	base := pkg.Name()
	if localName.MatchString(base) {
		base += "pkg"
	}
	name := base
	for i := 2; n.scope[name] || n.params[name] || n.taken[name] || localName.MatchString(name); i++ {
		name = base + strconv.Itoa(i)
	}
	n.imports[pkg.Path()] = name
	n.decl[pkg.Path()] = pkg.Name()
	n.taken[name] = true
	return name
}

type importSpec struct {
	Name  string
	Path  string
	Alias bool
}

func (n *namer) importSpecs() []importSpec {
	specs := make([]importSpec, 0, len(n.imports))
	for path, name := range n.imports {
		specs = append(specs, importSpec{
			Name:  name,
			Path:  path,
			Alias: name != n.decl[path],
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs
}

// typePrinter spells types in the generated file, using renamed type
// parameters and registered import names.
type typePrinter struct {
	n      *namer
	params map[*types.TypeParam]string
}

func (p *typePrinter) spell(t types.Type) (string, error) {
	var b strings.Builder
	if err := p.write(&b, t); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (p *typePrinter) write(b *strings.Builder, t types.Type) error {
	t = types.Unalias(t)
	switch t := t.(type) {
	case *types.Basic:
		b.WriteString(t.Name())
	case *types.TypeParam:
		name, ok := p.params[t]
		if !ok {
			return fmt.Errorf("type parameter %s out of scope", t.Obj().Name())
		}
		b.WriteString(name)
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() != nil && obj.Pkg() != p.n.pkg {
			if !obj.Exported() {
				return fmt.Errorf("%s is not exported from %s", obj.Name(), obj.Pkg().Path())
			}
			b.WriteString(p.n.importName(obj.Pkg()))
			b.WriteByte('.')
		}
		b.WriteString(obj.Name())
		if args := t.TypeArgs(); args != nil && args.Len() > 0 {
			b.WriteByte('[')
			for i := 0; i < args.Len(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				if err := p.write(b, args.At(i)); err != nil {
					return err
				}
			}
			b.WriteByte(']')
		}
	case *types.Pointer:
		b.WriteByte('*')
		return p.write(b, t.Elem())
	case *types.Slice:
		b.WriteString("[]")
		return p.write(b, t.Elem())
	case *types.Array:
		fmt.Fprintf(b, "[%d]", t.Len())
		return p.write(b, t.Elem())
	case *types.Map:
		b.WriteString("map[")
		if err := p.write(b, t.Key()); err != nil {
			return err
		}
		b.WriteByte(']')
		return p.write(b, t.Elem())
	case *types.Struct:
		b.WriteString("struct{")
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if i > 0 {
				b.WriteString(";")
			}
			b.WriteByte(' ')
			if f.Pkg() != nil && f.Pkg() != p.n.pkg && !f.Exported() {
				return fmt.Errorf("struct field %s is not exported from %s", f.Name(), f.Pkg().Path())
			}
			if !f.Embedded() {
				b.WriteString(f.Name())
				b.WriteByte(' ')
			}
			if err := p.write(b, f.Type()); err != nil {
				return err
			}
			if tag := t.Tag(i); tag != "" {
				b.WriteByte(' ')
				b.WriteString(strconv.Quote(tag))
			}
		}
		if t.NumFields() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("cannot spell %s", t)
	}
	return nil
}
