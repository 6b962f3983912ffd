package derive

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/tools/go/packages"
)

const maxSuggestions = 3

// markedTypes returns the package-level types whose doc comment carries Marker.
func markedTypes(pkg *packages.Package) []*types.TypeName {
	var out []*types.TypeName
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				if !hasMarker(doc) {
					continue
				}
				if obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName); ok {
					out = append(out, obj)
				}
			}
		}
	}
	return out
}

func hasMarker(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == Marker {
			return true
		}
	}
	return false
}

// lookupTypes resolves -type names in pkg.
func lookupTypes(pkg *packages.Package, names []string) ([]*types.TypeName, error) {
	scope := pkg.Types.Scope()
	var out []*types.TypeName
	for _, name := range names {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			return nil, unknownType(pkg, name)
		}
		out = append(out, obj)
	}
	return out, nil
}

func unknownType(pkg *packages.Package, name string) error {
	scope := pkg.Types.Scope()
	var candidates []string
	for _, n := range scope.Names() {
		if _, ok := scope.Lookup(n).(*types.TypeName); ok {
			candidates = append(candidates, n)
		}
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)

	var suggest []string
	for _, r := range ranks {
		if len(suggest) == maxSuggestions {
			break
		}
		suggest = append(suggest, r.Target)
	}
	if len(suggest) == 0 {
		return fmt.Errorf("%w %q in %s", ErrUnknownType, name, pkg.PkgPath)
	}
	return fmt.Errorf("%w %q in %s (did you mean %s?)", ErrUnknownType, name, pkg.PkgPath, strings.Join(suggest, ", "))
}
