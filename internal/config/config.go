// Package config loads the optional .charis-optgen.yml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no file is given.
const DefaultPath = ".charis-optgen.yml"

// File is the content of a project configuration file. Every value is
// optional; command-line flags win over it.
type File struct {
	Frontend  string   `yaml:"frontend" validate:"omitempty,oneof=libclang treesitter"`
	Compiler  string   `yaml:"compiler"`
	Std       string   `yaml:"std" validate:"omitempty,startswith=c++"`
	ClangArgs string   `yaml:"clang_args"`
	Generate  Generate `yaml:"generate"`
	Inspect   Inspect  `yaml:"inspect"`
}

// Generate holds defaults of the generate command.
type Generate struct {
	ClassName   string `yaml:"classname" validate:"omitempty,identifier"`
	Output      string `yaml:"output"`
	Include     string `yaml:"include"`
	Program     string `yaml:"program"`
	Description string `yaml:"description"`
}

// Inspect holds defaults of the inspect command.
type Inspect struct {
	Format string `yaml:"format" validate:"omitempty,oneof=table json yaml"`
}

var identifierRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRx.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// Load reads path from fs. An empty path loads DefaultPath when it exists
// and returns an empty File otherwise.
func Load(fs afero.Fs, path string) (*File, error) {
	if path == "" {
		if _, err := fs.Stat(DefaultPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return &File{}, nil
			}
			return nil, fmt.Errorf("stat config: %w", err)
		}
		path = DefaultPath
	}

	data, err := afero.ReadFile(fs, filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if _, err := cfg.Args(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Args returns the extra front-end arguments: the language standard, then
// clang_args split with shell quoting rules.
func (f *File) Args() ([]string, error) {
	var args []string
	if f.Std != "" {
		args = append(args, "-std="+f.Std)
	}
	if f.ClangArgs == "" {
		return args, nil
	}
	split, err := shellquote.Split(f.ClangArgs)
	if err != nil {
		return nil, fmt.Errorf("clang_args: %w", err)
	}
	return append(args, split...), nil
}
