package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/charis-optgen/internal/config"
	"github.com/example/charis-optgen/internal/generator"
	"github.com/example/charis-optgen/internal/index"
	"github.com/example/charis-optgen/internal/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultClassName = "Options"

func newGenerateCommand(a *app) *cobra.Command {
	var cfg GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate <header>",
		Short: "Generate the parser of a struct declared in a header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Header = args[0]
			cfg.Source.Compiler = a.compiler
			return a.generate(cmd.Context(), &cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.ClassName, "classname", "C", defaultClassName, "Struct to generate the parser for")
	cmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", "", "Output file, '-' for stdout (default <classname>Parser.hpp)")
	cmd.Flags().StringVar(&cfg.Include, "include", "", "Header included by the generated file (default: base name of <header>)")
	cmd.Flags().StringVar(&cfg.Program, "program", "", "Program name passed to the parser")
	cmd.Flags().StringVar(&cfg.Description, "description", "", "Program description passed to the parser")
	cmd.Flags().StringVar(&cfg.Source.Frontend, "frontend", "", "C++ front-end: libclang or treesitter (default "+DefaultFrontend()+")")
	cmd.Flags().StringArrayVarP(&cfg.Source.Args, "clang-arg", "X", nil, "Extra argument passed to the front-end (repeatable)")
	cmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "Path to config file (default "+config.DefaultPath+" when present)")

	return cmd
}

// GenerateConfig holds configuration for parser generation.
type GenerateConfig struct {
	Header      string
	ClassName   string
	OutputPath  string
	Include     string
	Program     string
	Description string
	ConfigPath  string
	Source      sourceConfig
}

func (a *app) generate(ctx context.Context, cfg *GenerateConfig) error {
	if err := a.loadGenerateConfig(cfg); err != nil {
		return err
	}

	gen, err := a.pipeline(cfg.Source, &generator.ParserGenerator{
		Include:     cfg.Include,
		Program:     cfg.Program,
		Description: cfg.Description,
	}, validator.Validate)
	if err != nil {
		return err
	}
	code, err := gen.Generate(ctx, cfg.Header, cfg.ClassName)
	if err != nil {
		return err
	}

	if err := a.writeOutput(cfg.OutputPath, func(w io.Writer) error {
		_, err := io.WriteString(w, code)
		return err
	}); err != nil {
		return err
	}
	a.logger.Info("generated parser",
		zap.String("struct", cfg.ClassName),
		zap.String("output", cfg.OutputPath))
	return nil
}

func (a *app) loadGenerateConfig(cfg *GenerateConfig) error {
	file, err := config.Load(a.fs, cfg.ConfigPath)
	if err != nil {
		return err
	}

	// Apply config values if flags weren't set
	if cfg.ClassName == defaultClassName && file.Generate.ClassName != "" {
		cfg.ClassName = file.Generate.ClassName
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = file.Generate.Output
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.ClassName + "Parser.hpp"
	}
	if cfg.Include == "" {
		cfg.Include = file.Generate.Include
	}
	if cfg.Include == "" {
		cfg.Include = filepath.Base(cfg.Header)
	}
	if cfg.Program == "" {
		cfg.Program = file.Generate.Program
	}
	if cfg.Description == "" {
		cfg.Description = file.Generate.Description
	}
	if cfg.Source.Compiler == "" {
		cfg.Source.Compiler = index.DefaultCompiler
	}
	return cfg.Source.applyFile(file)
}

func (a *app) writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(a.stdout)
	}

	outDir := filepath.Dir(path)
	if fi, err := a.fs.Stat(outDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("output directory %s does not exist, please create it first", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outDir)
	}

	f, err := a.fs.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
