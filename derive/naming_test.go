package derive

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scopeWith(names ...string) *types.Package {
	pkg := types.NewPackage("example.com/x", "x")
	for _, n := range names {
		pkg.Scope().Insert(types.NewVar(token.NoPos, pkg, n, types.Typ[types.Int]))
	}
	return pkg
}

func TestNamer_Local(t *testing.T) {
	n := newNamer(scopeWith("in", "in_", "e0"))
	assert.Equal(t, "in__", n.local("in"))
	assert.Equal(t, "out", n.local("out"))
	assert.Equal(t, "e0_", n.local("e0"))
}

func TestNamer_ImportName(t *testing.T) {
	n := newNamer(scopeWith("pureclone", "pureclone2"))
	pc := types.NewPackage(PureclonePath, "pureclone")
	other := types.NewPackage("example.com/other/pureclone", "pureclone")

	assert.Equal(t, "pureclone3", n.importName(pc))
	assert.Equal(t, "pureclone3", n.importName(pc), "stable per path")
	assert.Equal(t, "pureclone4", n.importName(other))

	specs := n.importSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, importSpec{Name: "pureclone4", Path: "example.com/other/pureclone", Alias: true}, specs[0])
	assert.Equal(t, importSpec{Name: "pureclone3", Path: PureclonePath, Alias: true}, specs[1])
}

func TestNamer_ImportAvoidsParamsAndLocals(t *testing.T) {
	n := newNamer(scopeWith())
	n.params["time"] = true
	assert.Equal(t, "time2", n.importName(types.NewPackage("time", "time")))
	assert.Equal(t, "e1pkg", n.importName(types.NewPackage("example.com/e1", "e1")))
	assert.Equal(t, "inpkg", n.importName(types.NewPackage("example.com/in", "in")))
}

func TestNamer_ParamNames(t *testing.T) {
	pkg := scopeWith("T", "T1")
	tparams := func(names ...string) *types.TypeParamList {
		var tps []*types.TypeParam
		for _, name := range names {
			obj := types.NewTypeName(token.NoPos, pkg, name, nil)
			tps = append(tps, types.NewTypeParam(obj, types.NewInterfaceType(nil, nil)))
		}
		named := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "G", nil), types.NewStruct(nil, nil), nil)
		named.SetTypeParams(tps)
		return named.TypeParams()
	}

	n := newNamer(pkg)
	assert.Nil(t, n.paramNames(nil))
	assert.Equal(t, []string{"K", "V"}, n.paramNames(tparams("K", "V")))
	assert.Equal(t, []string{"T0", "out_x", "T2"}, n.paramNames(tparams("T", "out_x", "in")))
	assert.True(t, n.params["T0"])
	assert.True(t, n.params["K"])
}
