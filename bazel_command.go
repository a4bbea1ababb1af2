package pyext

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Bazel invocation constants
const (
	bazelTarget         = "//tensorflow_data_validation:move_generated_files"
	bazelInstallURL     = "https://docs.bazel.build/versions/master/install.html"
	macosMinimumOSFlag  = "--macos_minimum_os=10.14"
	pythonBinPathEnv    = "PYTHON_BIN_PATH"
	generatedPackageDir = "tensorflow_data_validation"
)

// generatedPatterns match what the Bazel target moves into the source tree.
var generatedPatterns = []string{`_pb2\.py$`, `\.so$`, `\.pyd$`, `\.lib$`}

// BazelBuildCommand builds the C++ extensions and the public protos with
// Bazel. Running it populates foo_pb2.py next to each foo.proto and places
// the compiled extension modules inside the package.
//
// The step follows the usual three phases:
//  1. Configure: locate bazel and resolve platform options (Finalize)
//  2. Build: bazel run -c opt ... move_generated_files
//  3. Find: record the generated artifacts
type BazelBuildCommand struct {
	bazelPath         string
	python            string
	workspaceDir      string
	additionalOptions []string
}

// Name returns the command name
func (c *BazelBuildCommand) Name() string {
	return "bazel_build"
}

// RequiredTools returns the tools needed for the native build
func (c *BazelBuildCommand) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: "bazel", Purpose: "Bazel build system"},
	}
}

// CheckTools verifies that bazel is available
func (c *BazelBuildCommand) CheckTools() error {
	return CheckRequiredTools(c.RequiredTools())
}

// Finalize locates bazel and the interpreter and picks platform options.
// A missing bazel fails here, before any build step has run.
func (c *BazelBuildCommand) Finalize(ctx context.Context, s *Setup) error {
	bazel, err := LocateTool(c.RequiredTools()[0])
	if err != nil {
		return fmt.Errorf(`%w: Could not find "bazel" binary. Please visit %s for installation instruction.`,
			ErrBuildToolNotFound, bazelInstallURL)
	}
	c.bazelPath = bazel

	python, err := s.Config.ResolvePython()
	if err != nil {
		return err
	}
	c.python = python

	// Bazel must run where the WORKSPACE file lives.
	c.workspaceDir, err = filepath.EvalSymlinks(s.Config.ProjectDir)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}

	c.additionalOptions = nil
	if s.Config.GOOS == platformDarwin {
		c.additionalOptions = []string{macosMinimumOSFlag}
	}
	return nil
}

// Invocation returns the bazel run invocation. Finalize must have run.
func (c *BazelBuildCommand) Invocation(config *Config) Invocation {
	args := []string{"run", "-c", "opt"}
	args = append(args, c.additionalOptions...)
	if config.Parallel > 0 {
		args = append(args, fmt.Sprintf("--jobs=%d", config.Parallel))
	}
	args = append(args, config.BuildArgs...)
	args = append(args, bazelTarget)

	env := os.Environ()
	env = append(env, fmt.Sprintf("%s=%s", pythonBinPathEnv, c.python))
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return Invocation{
		Path: c.bazelPath,
		Args: args,
		Dir:  c.workspaceDir,
		Env:  env,
	}
}

// Run executes bazel and records the generated files. A non-zero exit
// aborts packaging.
func (c *BazelBuildCommand) Run(ctx context.Context, s *Setup) error {
	inv := c.Invocation(s.Config)
	s.Logger.Info("bazel_build.run", "command", inv.String(), "dir", inv.Dir)

	if s.Config.Verbose {
		s.Result.Output = append(s.Result.Output,
			fmt.Sprintf("Running: %s", inv.String()),
			fmt.Sprintf("Working directory: %s", inv.Dir))
	}
	output, err := s.Runner.Run(ctx, inv)
	s.Result.Output = append(s.Result.Output, output...)
	if err != nil {
		return BuildError("Bazel", output, err)
	}

	generated, err := c.findGenerated(c.workspaceDir)
	if err != nil {
		return err
	}
	s.Result.Generated = append(s.Result.Generated, generated...)
	s.Logger.Debug("bazel_build.generated", "count", len(generated))
	return nil
}

// findGenerated walks the package directory for generated artifacts and
// returns their paths relative to the workspace.
func (c *BazelBuildCommand) findGenerated(workspaceDir string) ([]string, error) {
	root := filepath.Join(workspaceDir, generatedPackageDir)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !MatchesPattern(filepath.ToSlash(path), generatedPatterns...) {
			return nil
		}

		rel, err := filepath.Rel(workspaceDir, path)
		if err == nil {
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find generated files in %s: %w", root, err)
	}
	return found, nil
}
