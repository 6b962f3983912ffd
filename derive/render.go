package derive

import (
	"bytes"
	"fmt"
	"go/format"
	"go/types"
	"strconv"
	"strings"
	"text/template"
)

// Header is the first line of every generated file.
const Header = "// Code generated by pureclone-gen. DO NOT EDIT."

var fileTemplate = template.Must(template.New("file").Parse(Header + `

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{if .Alias}}{{.Name}} {{end}}{{printf "%q" .Path}}
{{- end}}
)
{{end}}
{{- range .Methods}}
{{.Doc}}
func ({{.Recv}} {{.RecvType}}) PureClone() {{.Result}} {
{{- if .Struct}}
	var {{.Out}} {{.RecvType}}
{{- $out := .Out}}
{{- range .Assigns}}
	{{$out}}.{{.Field}} = {{.Expr}}
{{- end}}
	return {{.Out}}
{{- else}}
	return {{.Return}}
{{- end}}
}
{{end}}`))

type fileData struct {
	Package string
	Imports []importSpec
	Methods []methodData
}

type methodData struct {
	Doc      string
	Recv     string
	Out      string
	RecvType string
	Result   string
	Struct   bool
	Assigns  []assignData
	Return   string
}

type assignData struct {
	Field string
	Expr  string
}

// render produces the formatted generated file for one package.
func render(pp *pkgPlan) ([]byte, error) {
	n := newNamer(pp.pkg.Types)

	// Parameter names first: import names must avoid all of them.
	params := make(map[*TypeDesc][]string, len(pp.types))
	for _, td := range pp.types {
		if td.Kind != KindUnion {
			params[td] = n.paramNames(td.Named.TypeParams())
		}
	}

	pc := types.NewPackage(PureclonePath, "pureclone")
	data := fileData{Package: pp.pkg.Types.Name()}
	for _, td := range pp.types {
		if td.Kind == KindUnion {
			continue
		}
		m, err := renderMethod(n, pc, td, params[td])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", td.Pos, td.Name, err)
		}
		data.Methods = append(data.Methods, m)
	}
	data.Imports = n.importSpecs()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source for %s: %w\n%s", pp.pkg.PkgPath, err, buf.Bytes())
	}
	return src, nil
}

func renderMethod(n *namer, pc *types.Package, td *TypeDesc, names []string) (methodData, error) {
	tp := &typePrinter{n: n, params: make(map[*types.TypeParam]string, len(names))}
	for i, name := range names {
		tp.params[td.Named.TypeParams().At(i)] = name
	}
	b := &exprBuilder{tp: tp, pc: func() string { return n.importName(pc) }}

	recvType := td.Name + typeArgs(names)
	m := methodData{
		Doc:      "// PureClone returns a pure duplicate of " + td.Name + ".",
		Recv:     n.local("in"),
		Out:      n.local("out"),
		RecvType: recvType,
		Result:   recvType,
	}
	if td.Kind == KindVariant {
		m.Doc = fmt.Sprintf("// PureClone returns a pure duplicate of the %s variant of %s.", td.Name, td.Union.Name)
		m.Result = td.Union.Name + typeArgs(names)
	}

	if td.Kind == KindValue {
		expr, err := b.expr(td.Value, m.Recv)
		if err != nil {
			return m, err
		}
		m.Return = expr
		return m, nil
	}

	m.Struct = true
	for _, f := range td.Fields {
		expr, err := b.expr(f.plan, m.Recv+"."+f.Name)
		if err != nil {
			return m, fmt.Errorf("field %s: %w", f.Name, err)
		}
		m.Assigns = append(m.Assigns, assignData{Field: f.Name, Expr: expr})
	}
	return m, nil
}

func typeArgs(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// exprBuilder writes the expression duplicating a value of a planned type.
type exprBuilder struct {
	tp   *typePrinter
	pc   func() string
	next int
}

func (b *exprBuilder) fresh() (elem, index string) {
	k := strconv.Itoa(b.next)
	b.next++
	return b.tp.n.local("e" + k), b.tp.n.local("i" + k)
}

func (b *exprBuilder) expr(p *plan, src string) (string, error) {
	switch p.kind {
	case planInert:
		return src, nil
	case planClone:
		return b.pc() + ".Clone(" + src + ")", nil
	case planBox:
		return b.structural("Box", p, src)
	case planSlice:
		return b.structural("Slice", p, src)
	case planMap:
		return b.structural("Map", p, src)
	case planArray:
		return b.array(p, src)
	}
	return "", fmt.Errorf("unknown plan kind %d", p.kind)
}

func (b *exprBuilder) structural(helper string, p *plan, src string) (string, error) {
	switch p.elem.kind {
	case planInert:
		return fmt.Sprintf("%s.Copy%s(%s)", b.pc(), helper, src), nil
	case planClone:
		return fmt.Sprintf("%s.%s(%s)", b.pc(), helper, src), nil
	}
	elemType, err := b.tp.spell(p.elem.typ)
	if err != nil {
		return "", err
	}
	e, _ := b.fresh()
	body, err := b.expr(p.elem, e)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%sFunc(%s, func(%s %s) %s {\nreturn %s\n})",
		b.pc(), helper, src, e, elemType, elemType, body), nil
}

func (b *exprBuilder) array(p *plan, src string) (string, error) {
	t, err := b.tp.spell(p.typ)
	if err != nil {
		return "", err
	}
	e, i := b.fresh()
	body, err := b.expr(p.elem, e+"["+i+"]")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("func(%s %s) %s {\nfor %s := range %s {\n%s[%s] = %s\n}\nreturn %s\n}(%s)",
		e, t, t, i, e, e, i, body, e, src), nil
}
