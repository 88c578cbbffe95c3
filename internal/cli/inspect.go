package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/example/charis-optgen/internal/config"
	"github.com/example/charis-optgen/internal/generator"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultInspectFormat = "table"

func newInspectCommand(a *app) *cobra.Command {
	var cfg InspectConfig

	cmd := &cobra.Command{
		Use:   "inspect <header>",
		Short: "Print the structs declared in a header and their flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Header = args[0]
			cfg.Source.Compiler = a.compiler
			return a.inspect(cmd.Context(), &cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.Format, "format", "f", defaultInspectFormat, "Output format: table, json or yaml")
	cmd.Flags().StringVar(&cfg.Source.Frontend, "frontend", "", "C++ front-end: libclang or treesitter (default "+DefaultFrontend()+")")
	cmd.Flags().StringArrayVarP(&cfg.Source.Args, "clang-arg", "X", nil, "Extra argument passed to the front-end (repeatable)")
	cmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "Path to config file (default "+config.DefaultPath+" when present)")

	return cmd
}

// InspectConfig holds configuration of the inspect command.
type InspectConfig struct {
	Header     string
	Format     string
	ConfigPath string
	Source     sourceConfig
}

func (a *app) inspect(ctx context.Context, cfg *InspectConfig) error {
	file, err := config.Load(a.fs, cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Format == defaultInspectFormat && file.Inspect.Format != "" {
		cfg.Format = file.Inspect.Format
	}
	if err := cfg.Source.applyFile(file); err != nil {
		return err
	}

	gen, err := a.pipeline(cfg.Source, nil)
	if err != nil {
		return err
	}
	decls, err := gen.Extract(ctx, cfg.Header)
	if err != nil {
		return err
	}
	return writeDeclarations(a.stdout, cfg.Format, decls)
}

func writeDeclarations(w io.Writer, format string, decls generator.Declarations) error {
	switch format {
	case "table":
		return writeTable(w, decls)
	case "json":
		if err := json.MarshalWrite(w, decls, jsontext.WithIndent("  "), json.Deterministic(true)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(decls); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeTable(w io.Writer, decls generator.Declarations) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(
			renderer.NewBlueprint(tw.Rendition{Symbols: tw.NewSymbols(tw.StyleASCII)})),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"USR", "Struct", "Field", "Type", "Short", "Long", "Required", "Description"})

	for _, usr := range decls.USRs() {
		s := decls[usr]
		if len(s.Order) == 0 {
			if err := table.Append([]string{usr, s.Name, "", "", "", "", "", ""}); err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
			continue
		}
		for _, f := range s.OrderedFields() {
			row := []string{usr, s.Name, f.Name, f.Type, f.Short, f.FlagName(), strconv.FormatBool(f.Required), f.Description}
			if err := table.Append(row); err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
