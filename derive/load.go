package derive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedDeps

// load type-checks the requested packages. A previously generated output file
// is overlaid with an empty file so that stale or broken output never feeds
// back into the next run.
func load(ctx context.Context, cfg Config) ([]*packages.Package, error) {
	var buildFlags []string
	if len(cfg.Tags) > 0 {
		buildFlags = []string{"-tags=" + strings.Join(cfg.Tags, ",")}
	}

	listed, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        cfg.Dir,
		BuildFlags: buildFlags,
	}, cfg.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	overlay := make(map[string][]byte)
	for _, p := range listed {
		dir := packageDir(p)
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, cfg.Output)
		if _, err := os.Stat(path); err == nil {
			overlay[path] = []byte("package " + p.Name + "\n")
		}
	}

	pkgs, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        cfg.Dir,
		BuildFlags: buildFlags,
		Overlay:    overlay,
	}, cfg.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var errs error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = multierr.Append(errs, e)
		}
	})
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, errs)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: no packages match %v", ErrLoad, cfg.Patterns)
	}
	return pkgs, nil
}

func packageDir(p *packages.Package) string {
	if len(p.GoFiles) > 0 {
		return filepath.Dir(p.GoFiles[0])
	}
	if len(p.CompiledGoFiles) > 0 {
		return filepath.Dir(p.CompiledGoFiles[0])
	}
	return ""
}
