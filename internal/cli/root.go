package cli

import (
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/on-the-ground/clone_cell_go/derive"
)

// Options holds the command line flags.
type Options struct {
	Types   []string
	Output  string
	Tags    []string
	Table   string
	Check   bool
	DryRun  bool
	Verbose bool
}

// Env is what go generate and the user's environment provide.
type Env struct {
	File    string `env:"GOFILE"`
	Package string `env:"GOPACKAGE"`
	Line    int    `env:"GOLINE"`
	// Output and Table back the flags of the same name when those are unset.
	Output string `env:"PURECLONE_GEN_OUTPUT"`
	Table  string `env:"PURECLONE_GEN_TABLE"`
}

// NewRootCommand creates the pureclone-gen command.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "pureclone-gen [flags] [packages]",
		Short: "Derive PureClone methods",
		Long: `Derive PureClone methods for every type marked //pureclone:derive.

Each package gets one generated file. Fields are duplicated with their own
PureClone, never with a Clone method. Generation fails, writing nothing,
when a field type cannot be duplicated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "extra type names to derive (single package only)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", derive.DefaultOutput, "generated file name")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "build tags for loading")
	cmd.Flags().StringVar(&opts.Table, "table", "", "YAML file extending the inert type table")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if generated files are stale, write nothing")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print generated files instead of writing them")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func run(cmd *cobra.Command, opts *Options, args []string) error {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	logger := NewLogger(cmd.ErrOrStderr(), opts.Verbose)
	defer func() { _ = logger.Sync() }()

	if e.File != "" {
		logger.Debug("invoked by go generate",
			zap.String("file", e.File),
			zap.String("package", e.Package),
			zap.Int("line", e.Line),
		)
	}

	cfg := derive.Config{
		Patterns: args,
		Types:    opts.Types,
		Output:   opts.Output,
		Tags:     opts.Tags,
		Check:    opts.Check,
		DryRun:   opts.DryRun,
		Logger:   logger,
	}
	if !cmd.Flags().Changed("output") && e.Output != "" {
		cfg.Output = e.Output
	}
	table := opts.Table
	if table == "" {
		table = e.Table
	}
	if table != "" {
		t, err := derive.LoadInertTable(table)
		if err != nil {
			return err
		}
		cfg.Table = t
	}

	results, err := derive.Generate(cmd.Context(), cfg)
	if opts.DryRun {
		out := cmd.OutOrStdout()
		for _, r := range results {
			if r.Source == nil {
				fmt.Fprintf(out, "// %s: nothing to derive, would be removed\n", r.Path)
				continue
			}
			fmt.Fprintf(out, "// %s\n%s", r.Path, r.Source)
		}
	}
	return err
}

// NewLogger builds the console logger the command reports through.
func NewLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core)
}

// PrintError writes err to w, one line per aggregated error.
func PrintError(w io.Writer, err error) {
	for _, e := range multierr.Errors(err) {
		fmt.Fprintln(w, e)
	}
}
