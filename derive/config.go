package derive

import "go.uber.org/zap"

// DefaultOutput is the name of the generated file in each package directory.
const DefaultOutput = "zz_generated.pureclone.go"

// Marker is the doc comment line that selects a type for derivation.
const Marker = "//pureclone:derive"

// PureclonePath is the import path of the capability package.
const PureclonePath = "github.com/on-the-ground/clone_cell_go/pureclone"

// Config controls a generator run.
type Config struct {
	// Dir is the directory the package patterns are resolved in.
	Dir string
	// Patterns are go/packages patterns. Default ".".
	Patterns []string
	// Types names extra types to derive besides the marked ones.
	// Requires a single package.
	Types []string
	// Output is the generated file name. Default DefaultOutput.
	Output string
	// Tags are build tags passed to the loader.
	Tags []string
	// Table lists inert library types. Default DefaultInertTable().
	Table *InertTable
	// Check renders without writing and fails with ErrStale on any difference.
	Check bool
	// DryRun renders without writing.
	DryRun bool
	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if len(c.Patterns) == 0 {
		c.Patterns = []string{"."}
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Table == nil {
		c.Table = DefaultInertTable()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
