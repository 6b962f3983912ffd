package derive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result reports the outcome for one package.
type Result struct {
	PkgPath string
	// Path is the generated file.
	Path string
	// Types are the derived type names in source order.
	Types  []string
	Source []byte
	// Changed is true when Source differs from the file on disk.
	Changed bool
	// Written is true when Source was written to Path.
	Written   bool
	OldDigest uint64
	NewDigest uint64
}

// Generate derives PureClone methods for the packages selected by cfg.
// Packages with nothing to derive produce no Result, unless an earlier run
// left a generated file behind; that file is reported and removed.
//
// In check mode nothing is written and ErrStale is returned, along with the
// results, if any output differs from the file on disk.
func Generate(ctx context.Context, cfg Config) ([]Result, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	pkgs, err := load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(cfg.Types) > 0 && len(pkgs) != 1 {
		return nil, fmt.Errorf("-type needs exactly one package, patterns %v match %d", cfg.Patterns, len(pkgs))
	}

	var errs error
	var plans []*pkgPlan
	for _, p := range pkgs {
		pp, err := analyze(p, cfg)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if len(pp.types) == 0 && !isGenerated(filepath.Join(pp.dir, cfg.Output)) {
			log.Debug("nothing to derive", zap.String("package", p.PkgPath))
			continue
		}
		for _, td := range pp.types {
			log.Debug("derive",
				zap.String("package", p.PkgPath),
				zap.String("type", td.Name),
				zap.Stringer("kind", td.Kind),
				zap.Int("fields", len(td.Fields)),
			)
		}
		plans = append(plans, pp)
	}
	if errs != nil {
		return nil, errs
	}

	results := make([]Result, len(plans))
	g, ctx := errgroup.WithContext(ctx)
	for i, pp := range plans {
		g.Go(func() error {
			res, err := emit(ctx, pp, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.Check {
		var stale []string
		for _, r := range results {
			if r.Changed {
				stale = append(stale, r.Path)
			}
		}
		if len(stale) > 0 {
			return results, fmt.Errorf("%w: %s", ErrStale, strings.Join(stale, ", "))
		}
	}
	return results, nil
}

func emit(ctx context.Context, pp *pkgPlan, cfg Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	log := cfg.Logger.With(zap.String("package", pp.pkg.PkgPath))

	var src []byte
	if len(pp.types) > 0 {
		var err error
		if src, err = render(pp); err != nil {
			return Result{}, err
		}
	}
	path := filepath.Join(pp.dir, cfg.Output)
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}

	res := Result{
		PkgPath: pp.pkg.PkgPath,
		Path:    path,
		Types:   pp.typeNames(),
		Source:  src,
		Changed: !bytes.Equal(old, src),
	}
	if src != nil {
		res.NewDigest = xxhash.Sum64(src)
	}
	if old != nil {
		res.OldDigest = xxhash.Sum64(old)
	}

	switch {
	case cfg.Check:
		if res.Changed {
			log.Warn("generated file is stale",
				zap.String("path", path),
				zap.String("have", digest(res.OldDigest)),
				zap.String("want", digest(res.NewDigest)),
			)
		}
	case cfg.DryRun:
		log.Debug("dry run", zap.String("path", path), zap.Bool("changed", res.Changed))
	case src == nil:
		if err := os.Remove(path); err != nil {
			return Result{}, fmt.Errorf("remove %s: %w", path, err)
		}
		res.Written = true
		log.Info("removed generated file", zap.String("path", path))
	case res.Changed:
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return Result{}, fmt.Errorf("write %s: %w", path, err)
		}
		res.Written = true
		log.Info("wrote generated file",
			zap.String("path", path),
			zap.Strings("types", res.Types),
			zap.String("digest", digest(res.NewDigest)),
		)
	default:
		log.Debug("up to date", zap.String("path", path))
	}
	return res, nil
}

// isGenerated reports whether path holds a file written by this tool.
func isGenerated(path string) bool {
	b, err := os.ReadFile(path)
	return err == nil && bytes.HasPrefix(b, []byte(Header))
}

func digest(d uint64) string {
	return fmt.Sprintf("%016x", d)
}
