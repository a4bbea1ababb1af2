package pyext

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const (
	testVersion = "1.17.1"
	testPython  = "/usr/bin/python3"
	testBazel   = "/usr/local/bin/bazel"
)

// fakeRunner records invocations instead of running them.
type fakeRunner struct {
	calls   []Invocation
	respond func(inv Invocation) ([]string, error)
}

func (r *fakeRunner) Run(_ context.Context, inv Invocation) ([]string, error) {
	r.calls = append(r.calls, inv)
	if r.respond != nil {
		return r.respond(inv)
	}
	return nil, nil
}

// recordingCommand stands in for a registered command and notes each run.
type recordingCommand struct {
	name string
	runs *[]string
	err  error
}

func (c *recordingCommand) Name() string { return c.name }

func (c *recordingCommand) Finalize(context.Context, *Setup) error { return nil }

func (c *recordingCommand) Run(context.Context, *Setup) error {
	*c.runs = append(*c.runs, c.name)
	return c.err
}

// stubLookPath makes execLookPath resolve only the given tools.
func stubLookPath(t *testing.T, tools map[string]string) {
	t.Helper()
	orig := execLookPath
	t.Cleanup(func() { execLookPath = orig })

	execLookPath = func(name string) (string, error) {
		if path, ok := tools[name]; ok {
			return path, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// newTestProject lays out a minimal source tree with the companion files.
func newTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeTestFile(t, filepath.Join(dir, "WORKSPACE"), "")
	writeTestFile(t, filepath.Join(dir, VersionFile), "# Version.\n__version__ = '"+testVersion+"'\n")
	writeTestFile(t, filepath.Join(dir, ReadmeFile), "# TensorFlow Data Validation\n")
	writeTestFile(t, filepath.Join(dir, DocsRequirementsFile), "mkdocs\n\nmkdocs-material\n")
	writeTestFile(t, filepath.Join(dir, "tensorflow_data_validation", "__init__.py"), "")
	writeTestFile(t, filepath.Join(dir, "tensorflow_data_validation", "api", "__init__.py"), "")
	writeTestFile(t, filepath.Join(dir, "tensorflow_data_validation", "api", "stats_api.py"), "def run(): pass\n")
	writeTestFile(t, filepath.Join(dir, "tensorflow_data_validation", "api", "notes.md"), "not shipped\n")

	return dir
}

func newTestConfig(projectDir, goos string) *Config {
	config := DefaultConfig(projectDir)
	config.GOOS = goos
	config.GOARCH = "amd64"
	config.PythonPath = testPython
	config.PythonVersion = "3.11"
	config.Prefix = filepath.Join(projectDir, "prefix")
	return config
}

// newTestSetup returns a Setup over a fresh project with a fake runner.
func newTestSetup(t *testing.T, goos string) (*Setup, *fakeRunner) {
	t.Helper()

	config := newTestConfig(newTestProject(t), goos)
	dist, err := LoadDistribution(config)
	if err != nil {
		t.Fatalf("LoadDistribution returned error: %v", err)
	}

	runner := &fakeRunner{}
	setup := NewSetup(config, dist)
	setup.Runner = runner
	setup.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return setup, runner
}

// generateOnRun simulates the Bazel target moving generated files into place.
func generateOnRun(t *testing.T, projectDir string) func(Invocation) ([]string, error) {
	return func(inv Invocation) ([]string, error) {
		pkg := filepath.Join(projectDir, "tensorflow_data_validation")
		writeTestFile(t, filepath.Join(pkg, "api", "stats_pb2.py"), "# generated\n")
		writeTestFile(t, filepath.Join(pkg, "api", "_pywrap.so"), "binary")
		return []string{"INFO: Build completed successfully"}, nil
	}
}
