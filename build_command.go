package pyext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// StandardBuildSubCommands are the framework's own build steps, in order.
var StandardBuildSubCommands = []SubCommand{
	{Name: "build_py", Predicate: func(s *Setup) bool { return s.Distribution.HasPureModules() }},
	{Name: "build_clib", Predicate: func(s *Setup) bool { return s.Distribution.HasCLibraries() }},
	{Name: "build_ext", Predicate: func(s *Setup) bool { return s.Distribution.HasExtModules() }},
	{Name: "build_scripts", Predicate: func(s *Setup) bool { return s.Distribution.HasScripts() }},
}

// BuildCommand builds everything needed to install.
//
// It runs bazel_build before any of the standard sub-commands. Both install
// and bdist_wheel depend on it, so this covers every path that produces an
// installable tree.
type BuildCommand struct{}

// Name returns the command name
func (c *BuildCommand) Name() string {
	return "build"
}

// requiresNativeBuild always reports true: the extensions are never
// compiled by the framework itself.
func requiresNativeBuild(*Setup) bool {
	return true
}

// SubCommands returns bazel_build followed by the standard build steps.
func (c *BuildCommand) SubCommands() []SubCommand {
	return append([]SubCommand{{Name: "bazel_build", Predicate: requiresNativeBuild}}, StandardBuildSubCommands...)
}

// Finalize is a no-op
func (c *BuildCommand) Finalize(ctx context.Context, s *Setup) error {
	return nil
}

// Run executes the sub-commands in order
func (c *BuildCommand) Run(ctx context.Context, s *Setup) error {
	return s.runSubCommands(ctx, c.SubCommands())
}

// BuildPyCommand stages package sources and package data into build/lib.
type BuildPyCommand struct {
	buildLib string
}

// Name returns the command name
func (c *BuildPyCommand) Name() string {
	return "build_py"
}

// Finalize resolves the staging directory
func (c *BuildPyCommand) Finalize(ctx context.Context, s *Setup) error {
	c.buildLib = s.Config.BuildLib()
	return nil
}

// Run copies *.py files and matching package data for every package.
// Generated protocol bindings are ordinary .py files and are picked up here.
func (c *BuildPyCommand) Run(ctx context.Context, s *Setup) error {
	for _, pkg := range s.Distribution.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}

		relDir := filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))
		srcDir := filepath.Join(s.Config.ProjectDir, relDir)

		entries, err := os.ReadDir(srcDir)
		if err != nil {
			return fmt.Errorf("read package %s: %w", pkg, err)
		}

		patterns := append([]string{"*.py"}, s.Distribution.DataPatterns(pkg)...)
		for _, entry := range entries {
			if entry.IsDir() || !MatchesGlob(entry.Name(), patterns...) {
				continue
			}

			rel := filepath.Join(relDir, entry.Name())
			if err := copyFile(filepath.Join(srcDir, entry.Name()), filepath.Join(c.buildLib, rel)); err != nil {
				return fmt.Errorf("stage %s: %w", rel, err)
			}
			s.Result.Built = append(s.Result.Built, filepath.ToSlash(rel))
		}
	}

	s.Logger.Debug("build_py.staged", "files", len(s.Result.Built), "dir", c.buildLib)
	return nil
}

// BuildClibCommand stages declared prebuilt C libraries into build/temp.
// The libraries themselves come out of the Bazel build.
type BuildClibCommand struct{}

// Name returns the command name
func (c *BuildClibCommand) Name() string {
	return "build_clib"
}

// Finalize is a no-op
func (c *BuildClibCommand) Finalize(ctx context.Context, s *Setup) error {
	return nil
}

// Run copies each declared library into the temp build directory
func (c *BuildClibCommand) Run(ctx context.Context, s *Setup) error {
	tempDir := filepath.Join(s.Config.BuildDir(), "temp")
	for _, lib := range s.Distribution.CLibraries {
		src := filepath.Join(s.Config.ProjectDir, filepath.FromSlash(lib))
		if err := copyFile(src, filepath.Join(tempDir, filepath.Base(src))); err != nil {
			return fmt.Errorf("stage C library %s: %w", lib, err)
		}
	}
	return nil
}

// BuildExtCommand has no extensions of its own to compile; the native
// modules were produced by bazel_build and staged as package data.
type BuildExtCommand struct{}

// Name returns the command name
func (c *BuildExtCommand) Name() string {
	return "build_ext"
}

// Finalize is a no-op
func (c *BuildExtCommand) Finalize(ctx context.Context, s *Setup) error {
	return nil
}

// Run reports which native artifacts are shipped
func (c *BuildExtCommand) Run(ctx context.Context, s *Setup) error {
	var native []string
	for _, path := range s.Result.Generated {
		if isNativeLibrary(path) {
			native = append(native, path)
		}
	}

	if len(native) == 0 {
		s.Logger.Warn("build_ext.no_native_artifacts", "hint", "bazel_build produced no shared libraries")
		return nil
	}
	s.Logger.Info("build_ext.native_artifacts", "count", len(native), "files", native)
	return nil
}

// BuildScriptsCommand copies scripts into build/scripts-X.Y, pointing a
// "#!python" shebang at the configured interpreter.
type BuildScriptsCommand struct {
	python string
}

// Name returns the command name
func (c *BuildScriptsCommand) Name() string {
	return "build_scripts"
}

// Finalize resolves the interpreter used in rewritten shebangs
func (c *BuildScriptsCommand) Finalize(ctx context.Context, s *Setup) error {
	python, err := s.Config.ResolvePython()
	if err != nil {
		return err
	}
	c.python = python
	return nil
}

// Run copies every declared script
func (c *BuildScriptsCommand) Run(ctx context.Context, s *Setup) error {
	version, err := s.PythonVersion(ctx)
	if err != nil {
		return err
	}
	outDir := filepath.Join(s.Config.BuildDir(), "scripts-"+version)

	for _, script := range s.Distribution.Scripts {
		src := filepath.Join(s.Config.ProjectDir, filepath.FromSlash(script))
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read script %s: %w", script, err)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		dest := filepath.Join(outDir, filepath.Base(src))
		if err := os.WriteFile(dest, rewriteShebang(data, c.python), 0o755); err != nil {
			return fmt.Errorf("write script %s: %w", script, err)
		}
	}
	return nil
}

var shebangPython = regexp.MustCompile(`^#!.*python[0-9.]*([ \t].*)?$`)

func rewriteShebang(data []byte, python string) []byte {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	match := shebangPython.FindSubmatch(bytes.TrimRight(first, "\r"))
	if match == nil {
		return data
	}

	shebang := "#!" + python + string(match[1])
	return append([]byte(shebang), data[len(first):]...)
}
