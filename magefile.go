//go:build mage

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	pyext "github.com/contriboss/python-extension-go"
)

// projectDir is the Python source tree; PYEXT_PROJECT_DIR overrides the
// working directory.
func projectDir() string {
	if dir := os.Getenv("PYEXT_PROJECT_DIR"); dir != "" {
		return dir
	}
	return "."
}

func runSetup(ctx context.Context, command string) error {
	config, err := pyext.LoadConfig(projectDir())
	if err != nil {
		return err
	}
	dist, err := pyext.LoadDistribution(config)
	if err != nil {
		return err
	}

	setup := pyext.NewSetup(config, dist)
	if mg.Verbose() {
		setup.Runner = &pyext.ExecRunner{Stream: os.Stdout}
	}
	return setup.RunCommand(ctx, command)
}

// Build runs the native build and stages the package into build/lib.
func Build(ctx context.Context) error {
	return runSetup(ctx, "build")
}

// Wheel builds a platform-specific wheel into dist/.
func Wheel(ctx context.Context) error {
	return runSetup(ctx, "bdist_wheel")
}

// Install installs into the platform-specific site-packages.
func Install(ctx context.Context) error {
	return runSetup(ctx, "install")
}

// Clean removes the build and dist directories.
func Clean() error {
	for _, dir := range []string{"build", "dist"} {
		if err := sh.Rm(filepath.Join(projectDir(), dir)); err != nil {
			return err
		}
	}
	return nil
}

// Release runs the tests, then builds a wheel from a clean tree.
func Release(ctx context.Context) {
	mg.SerialCtxDeps(ctx, Test, Clean, Wheel)
}

// Test runs the Go test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Requirements prints the install requirements for the current selector.
func Requirements() {
	for _, req := range pyext.InstallRequires(os.Getenv(pyext.DependencySelectorEnv)) {
		fmt.Println(req)
	}
}
