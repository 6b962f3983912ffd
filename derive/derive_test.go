package derive_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
	"golang.org/x/tools/go/packages"

	"github.com/on-the-ground/clone_cell_go/derive"
)

func config(t *testing.T, dir string) derive.Config {
	t.Helper()
	return derive.Config{
		Dir:    filepath.Join("testdata", dir),
		DryRun: true,
		Logger: zaptest.NewLogger(t),
	}
}

func generate(t *testing.T, cfg derive.Config) derive.Result {
	t.Helper()
	results, err := derive.Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// typecheck loads the package of res with res.Source overlaid at res.Path.
func typecheck(t *testing.T, res derive.Result) {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:     filepath.Dir(res.Path),
		Overlay: map[string][]byte{res.Path: res.Source},
	}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	for _, e := range pkgs[0].Errors {
		t.Errorf("generated code does not type-check: %v", e)
	}
}

func TestGenerate_Golden(t *testing.T) {
	cfg := config(t, "basic")
	cfg.Types = []string{"Celsius"}

	res := generate(t, cfg)
	assert.Equal(t, []string{"Config", "Peer", "Celsius", "Matrix"}, res.Types)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)
	_, err := os.Stat(res.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "dry run wrote %s", res.Path)

	golden(t).Assert(t, "basic", res.Source)
	typecheck(t, res)
}

func TestGenerate_HygieneRenames(t *testing.T) {
	res := generate(t, config(t, "hygiene"))

	golden(t).Assert(t, "hygiene", res.Source)
	typecheck(t, res)
}

func TestGenerate_WritesOnlyOnChange(t *testing.T) {
	cfg := config(t, "write")
	cfg.DryRun = false
	cfg.Output = "zz_write_test.pureclone.go"
	path, err := filepath.Abs(filepath.Join(cfg.Dir, cfg.Output))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	first := generate(t, cfg)
	assert.True(t, first.Written)
	assert.Zero(t, first.OldDigest)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first.Source, onDisk)

	// The written file is blanked while loading, so its methods do not
	// count as hand-written conflicts.
	second := generate(t, cfg)
	assert.False(t, second.Changed)
	assert.False(t, second.Written)
	assert.Equal(t, first.NewDigest, second.OldDigest)
	assert.Equal(t, first.NewDigest, second.NewDigest)
}

func TestGenerate_RemovesLeftoverOutput(t *testing.T) {
	cfg := config(t, "orphan")
	cfg.DryRun = false
	cfg.Output = "zz_orphan_test.pureclone.go"
	path, err := filepath.Abs(filepath.Join(cfg.Dir, cfg.Output))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	leftover := []byte(derive.Header + "\n\npackage orphan\n\nfunc (in Rec) PureClone() Rec { return in }\n")
	require.NoError(t, os.WriteFile(path, leftover, 0o644))

	cfg.Check = true
	results, err := derive.Generate(context.Background(), cfg)
	require.ErrorIs(t, err, derive.ErrStale)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)
	assert.False(t, results[0].Written)
	assert.Empty(t, results[0].Types)
	assert.Nil(t, results[0].Source)
	assert.NotZero(t, results[0].OldDigest)
	assert.Zero(t, results[0].NewDigest)
	_, err = os.Stat(path)
	require.NoError(t, err, "check mode removed %s", path)

	cfg.Check = false
	res := generate(t, cfg)
	assert.True(t, res.Written)
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "%s not removed", path)

	results, err = derive.Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGenerate_KeepsForeignFileWithOutputName(t *testing.T) {
	cfg := config(t, "orphan")
	cfg.DryRun = false
	cfg.Output = "zz_foreign_test.pureclone.go"
	path, err := filepath.Abs(filepath.Join(cfg.Dir, cfg.Output))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })
	require.NoError(t, os.WriteFile(path, []byte("package orphan\n"), 0o644))

	results, err := derive.Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, results)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestGenerate_CheckStale(t *testing.T) {
	cfg := config(t, "basic")
	cfg.DryRun = false
	cfg.Check = true

	results, err := derive.Generate(context.Background(), cfg)
	require.ErrorIs(t, err, derive.ErrStale)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)
	assert.False(t, results[0].Written)
	assert.NotZero(t, results[0].NewDigest)
}

func TestGenerate_CheckedInExamplesAreCurrent(t *testing.T) {
	cfg := derive.Config{
		Dir:    filepath.Join("..", "examples", "derived"),
		Check:  true,
		Logger: zaptest.NewLogger(t),
	}
	results, err := derive.Generate(context.Background(), cfg)
	require.NoError(t, err, "run go generate ./examples/...")
	require.Len(t, results, 1)
	assert.False(t, results[0].Changed)
	assert.Equal(t, results[0].OldDigest, results[0].NewDigest)
}

func TestGenerate_RejectsMissingCapability(t *testing.T) {
	_, err := derive.Generate(context.Background(), config(t, "reject"))
	require.ErrorIs(t, err, derive.ErrCapabilityMissing)

	fields := map[string]string{}
	for _, e := range multierr.Errors(err) {
		var ce *derive.CapabilityError
		require.ErrorAs(t, e, &ce)
		fields[ce.Type+"."+ce.Field] = ce.FieldType
	}
	assert.Equal(t, map[string]string{
		"reject.Holder.Ch":    "chan int",
		"reject.Holder.Fn":    "func()",
		"reject.Holder.Other": "Opaque",
		"reject.Generic.V":    "T",
	}, fields)
	assert.Contains(t, err.Error(), "Opaque does not implement pureclone.PureCloner[Opaque]")
	assert.Contains(t, err.Error(), "type parameter T has neither")
}

func TestGenerate_RejectsNamedPointer(t *testing.T) {
	_, err := derive.Generate(context.Background(), config(t, "pointer"))
	require.ErrorIs(t, err, derive.ErrCapabilityMissing)
	require.Len(t, multierr.Errors(err), 1)

	var ce *derive.CapabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pointer.PointRef", ce.Type)
	assert.Equal(t, "*Point", ce.FieldType)
	assert.Contains(t, ce.Reason, "named pointer type")
}

func TestGenerate_RejectsConflicts(t *testing.T) {
	_, err := derive.Generate(context.Background(), config(t, "conflict"))
	require.ErrorIs(t, err, derive.ErrConflict)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	var ce *derive.ConflictError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "conflict.Hand", ce.Type)
	require.ErrorAs(t, errs[1], &ce)
	assert.Equal(t, "conflict.Field", ce.Type)
}

func TestGenerate_RejectsBadUnions(t *testing.T) {
	_, err := derive.Generate(context.Background(), config(t, "badunion"))
	require.ErrorIs(t, err, derive.ErrBadUnion)

	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), "needs an unexported sealing method")
	assert.Contains(t, errs[1].Error(), "no variants")
	assert.Contains(t, errs[2].Error(), "has 0 type parameters, union Msg has 1")
	assert.Contains(t, errs[3].Error(), "badunion.Square")
	assert.Contains(t, errs[3].Error(), "method isShape does not match the signature in Shape")
}

func TestGenerate_UnknownTypeSuggests(t *testing.T) {
	cfg := config(t, "basic")
	cfg.Types = []string{"Cels"}

	_, err := derive.Generate(context.Background(), cfg)
	require.ErrorIs(t, err, derive.ErrUnknownType)
	assert.Contains(t, err.Error(), "did you mean Celsius?")
}

func TestGenerate_TypeNeedsOnePackage(t *testing.T) {
	cfg := derive.Config{
		Dir:      "testdata",
		Patterns: []string{"./basic", "./hygiene"},
		Types:    []string{"Celsius"},
		DryRun:   true,
		Logger:   zaptest.NewLogger(t),
	}
	_, err := derive.Generate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one package")
}

func TestGenerate_LoadError(t *testing.T) {
	cfg := config(t, "basic")
	cfg.Patterns = []string{"./does-not-exist"}

	_, err := derive.Generate(context.Background(), cfg)
	require.ErrorIs(t, err, derive.ErrLoad)
}

func TestGenerate_InertTable(t *testing.T) {
	cfg := config(t, "basic")
	cfg.Table = derive.NewInertTable()

	_, err := derive.Generate(context.Background(), cfg)
	var ce *derive.CapabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Addr", ce.Field)
	assert.Equal(t, "netip.Addr", ce.FieldType)
}
