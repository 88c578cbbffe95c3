// Package cli provides the command-line interface of charis-optgen.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/example/charis-optgen/internal/config"
	"github.com/example/charis-optgen/internal/frontend"
	"github.com/example/charis-optgen/internal/frontend/libclang"
	"github.com/example/charis-optgen/internal/frontend/treesitter"
	"github.com/example/charis-optgen/internal/generator"
	"github.com/example/charis-optgen/internal/index"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Front-end names accepted by --frontend.
const (
	FrontendLibclang   = "libclang"
	FrontendTreeSitter = "treesitter"
)

// DefaultFrontend is libclang when this build links it.
func DefaultFrontend() string {
	if libclang.Available {
		return FrontendLibclang
	}
	return FrontendTreeSitter
}

type app struct {
	fs       afero.Fs
	stdout   io.Writer
	stderr   io.Writer
	verbose  bool
	compiler string
	logger   *zap.Logger

	frontends map[string]func(afero.Fs) frontend.Frontend
}

func newApp() *app {
	return &app{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		frontends: map[string]func(afero.Fs) frontend.Frontend{
			FrontendLibclang:   func(afero.Fs) frontend.Frontend { return libclang.New() },
			FrontendTreeSitter: func(fs afero.Fs) frontend.Frontend { return treesitter.New(fs) },
		},
	}
}

// Execute creates and runs the root command.
func Execute() error {
	return newRootCommand(newApp()).Execute()
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "charis-optgen",
		Short: "Generate fort::options parsers from annotated C++ structs",
		Long: `charis-optgen reads a C++ header, extracts the structs it declares together
with the key:"value" tags of their field doc comments, and generates the
code building a fort::options command-line parser for one of them.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setupLogger()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log parsing details")
	rootCmd.PersistentFlags().StringVar(&a.compiler, "cc", index.DefaultCompiler, "Compiler queried for system include directories")

	rootCmd.AddCommand(newGenerateCommand(a))
	rootCmd.AddCommand(newInspectCommand(a))

	return rootCmd
}

func (a *app) setupLogger() error {
	if a.logger != nil {
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	if !a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger
	return nil
}

// sourceConfig selects how a header is parsed.
type sourceConfig struct {
	Frontend string
	Compiler string
	Args     []string
}

// applyFile fills the values still at their defaults from the config file.
func (s *sourceConfig) applyFile(cfg *config.File) error {
	if s.Frontend == "" {
		s.Frontend = cfg.Frontend
	}
	if s.Frontend == "" {
		s.Frontend = DefaultFrontend()
	}
	if s.Compiler == index.DefaultCompiler && cfg.Compiler != "" {
		s.Compiler = cfg.Compiler
	}
	args, err := cfg.Args()
	if err != nil {
		return err
	}
	s.Args = append(args, s.Args...)
	return nil
}

func (a *app) pipeline(src sourceConfig, parser *generator.ParserGenerator, checks ...generator.CheckFunc) (*generator.Generator, error) {
	newFrontend, ok := a.frontends[src.Frontend]
	if !ok {
		return nil, fmt.Errorf("unknown front-end %q (want %s or %s)", src.Frontend, FrontendLibclang, FrontendTreeSitter)
	}

	opts := []index.Option{
		index.WithLogger(a.logger),
		index.WithExtraArgs(src.Args...),
	}
	if src.Frontend == FrontendTreeSitter {
		// tree-sitter does not resolve includes
		opts = append(opts, index.WithArgs(index.StaticArgs(index.BaseArgs)))
	} else {
		opts = append(opts, index.WithArgs(index.SharedArgsCache(src.Compiler)))
	}

	x := index.New(newFrontend(a.fs), opts...)
	return generator.New(x, parser, a.logger, checks...), nil
}

// PrintError writes err to w the way the command line reports failures.
func PrintError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed, color.Bold).Fprint(w, "Error:")
	_, _ = fmt.Fprintf(w, " %v\n", err)
}
