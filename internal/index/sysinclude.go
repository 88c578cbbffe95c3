package index

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultCompiler is the compiler driver queried for system include paths.
const DefaultCompiler = "c++"

// BaseArgs are passed to the front-end before the discovered include paths.
var BaseArgs = []string{"-x", "c++", "-std=c++17", "-Wno-pragma-once-outside-header"}

var includeLineRx = regexp.MustCompile(`(?m)^ /.*$`)

// Runner executes a command and returns its combined stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// RunCommand runs name with no standard input and collects stdout and stderr
// together.
func RunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("run %s: %w", name, err)
	}
	return out.Bytes(), nil
}

// IncludePaths scrapes the verbose preprocessor banner for system include
// directories: every line made of a single space followed by an absolute path.
func IncludePaths(output []byte) []string {
	matches := includeLineRx.FindAll(bytes.ReplaceAll(output, []byte("\r\n"), []byte("\n")), -1)
	res := make([]string, 0, len(matches))
	for _, m := range matches {
		res = append(res, string(m[1:]))
	}
	return res
}

// ArgsProvider supplies the front-end command line.
type ArgsProvider interface {
	Args(ctx context.Context) ([]string, error)
}

// StaticArgs is an ArgsProvider returning a fixed argument list.
type StaticArgs []string

func (s StaticArgs) Args(context.Context) ([]string, error) {
	return slices.Clone(s), nil
}

// ArgsCache computes the front-end arguments once. Concurrent first callers
// share a single compiler invocation; a successful result is kept for the
// lifetime of the cache, a failure is reported to the waiting callers and the
// next call tries again.
type ArgsCache struct {
	compiler string
	base     []string
	run      Runner

	group singleflight.Group

	mu   sync.RWMutex
	args []string
	done bool
}

// NewArgsCache creates a cache querying compiler through run.
func NewArgsCache(compiler string, base []string, run Runner) *ArgsCache {
	if run == nil {
		run = RunCommand
	}
	return &ArgsCache{
		compiler: compiler,
		base:     slices.Clone(base),
		run:      run,
	}
}

// Args returns the base arguments followed by one -I flag per system include
// directory.
func (c *ArgsCache) Args(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	if c.done {
		args := slices.Clone(c.args)
		c.mu.RUnlock()
		return args, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(c.compiler, func() (any, error) {
		c.mu.RLock()
		if c.done {
			defer c.mu.RUnlock()
			return c.args, nil
		}
		c.mu.RUnlock()

		out, err := c.run(ctx, c.compiler, "-E", "-x", "c++", "-", "-v")
		if err != nil {
			return nil, err
		}

		args := slices.Clone(c.base)
		for _, dir := range IncludePaths(out) {
			args = append(args, "-I"+dir)
		}

		c.mu.Lock()
		c.args = args
		c.done = true
		c.mu.Unlock()
		return args, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]string)), nil
}

var (
	sharedMu     sync.Mutex
	sharedCaches = map[string]*ArgsCache{}
)

// SharedArgsCache returns the process-wide cache for compiler.
func SharedArgsCache(compiler string) *ArgsCache {
	if compiler == "" {
		compiler = DefaultCompiler
	}
	sharedMu.Lock()
	defer sharedMu.Unlock()
	c, ok := sharedCaches[compiler]
	if !ok {
		c = NewArgsCache(compiler, BaseArgs, RunCommand)
		sharedCaches[compiler] = c
	}
	return c
}
