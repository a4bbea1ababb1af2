package pyext

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func finalizedBazel(t *testing.T, s *Setup) *BazelBuildCommand {
	t.Helper()
	cmd := &BazelBuildCommand{}
	if err := cmd.Finalize(context.Background(), s); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	return cmd
}

func TestBazelInvocationOmitsMacOSFlagOffDarwin(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	for _, goos := range []string{"linux", "windows", "freebsd"} {
		t.Run(goos, func(t *testing.T) {
			s, _ := newTestSetup(t, goos)
			inv := finalizedBazel(t, s).Invocation(s.Config)

			expected := []string{"run", "-c", "opt", bazelTarget}
			if !slices.Equal(inv.Args, expected) {
				t.Errorf("expected args %v, got %v", expected, inv.Args)
			}
			if slices.Contains(inv.Args, macosMinimumOSFlag) {
				t.Errorf("macOS flag must not be passed on %s", goos)
			}
		})
	}
}

func TestBazelInvocationAddsMacOSFlagOnceOnDarwin(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	s, _ := newTestSetup(t, "darwin")
	cmd := finalizedBazel(t, s)

	// Finalizing twice must not accumulate options.
	if err := cmd.Finalize(context.Background(), s); err != nil {
		t.Fatalf("second Finalize returned error: %v", err)
	}
	inv := cmd.Invocation(s.Config)

	expected := []string{"run", "-c", "opt", macosMinimumOSFlag, bazelTarget}
	if !slices.Equal(inv.Args, expected) {
		t.Errorf("expected args %v, got %v", expected, inv.Args)
	}

	count := 0
	for _, arg := range inv.Args {
		if arg == macosMinimumOSFlag {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected macOS flag exactly once, got %d", count)
	}
}

func TestBazelInvocationEnvironmentAndDirectory(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	s, _ := newTestSetup(t, "linux")
	s.Config.Env = map[string]string{"CC": "clang"}
	s.Config.Parallel = 8
	s.Config.BuildArgs = []string{"--config=manylinux"}

	inv := finalizedBazel(t, s).Invocation(s.Config)

	if inv.Path != testBazel {
		t.Errorf("expected bazel path %s, got %s", testBazel, inv.Path)
	}

	wantDir, err := filepath.EvalSymlinks(s.Config.ProjectDir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if inv.Dir != wantDir {
		t.Errorf("expected working directory %s, got %s", wantDir, inv.Dir)
	}

	if !slices.Contains(inv.Env, "PYTHON_BIN_PATH="+testPython) {
		t.Errorf("expected PYTHON_BIN_PATH in environment")
	}
	if !slices.Contains(inv.Env, "CC=clang") {
		t.Errorf("expected configured env in environment")
	}

	expected := []string{"run", "-c", "opt", "--jobs=8", "--config=manylinux", bazelTarget}
	if !slices.Equal(inv.Args, expected) {
		t.Errorf("expected args %v, got %v", expected, inv.Args)
	}
}

func TestBazelFinalizeMissingBinary(t *testing.T) {
	stubLookPath(t, map[string]string{})

	s, _ := newTestSetup(t, "linux")
	err := (&BazelBuildCommand{}).Finalize(context.Background(), s)
	if !errors.Is(err, ErrBuildToolNotFound) {
		t.Fatalf("expected ErrBuildToolNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), `Could not find "bazel" binary`) {
		t.Errorf("expected remediation message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), bazelInstallURL) {
		t.Errorf("expected install URL in message, got %q", err.Error())
	}
}

func TestBazelRunRecordsGeneratedFiles(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	s, runner := newTestSetup(t, "linux")
	runner.respond = generateOnRun(t, s.Config.ProjectDir)

	cmd := finalizedBazel(t, s)
	if err := cmd.Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("expected one bazel invocation, got %d", len(runner.calls))
	}

	expected := []string{
		"tensorflow_data_validation/api/_pywrap.so",
		"tensorflow_data_validation/api/stats_pb2.py",
	}
	if !slices.Equal(s.Result.Generated, expected) {
		t.Errorf("expected generated %v, got %v", expected, s.Result.Generated)
	}
	if !slices.Contains(s.Result.Output, "INFO: Build completed successfully") {
		t.Errorf("expected bazel output captured, got %v", s.Result.Output)
	}
}

func TestBazelRunPropagatesFailure(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	s, runner := newTestSetup(t, "linux")
	toolErr := &ToolError{Tool: "bazel", ExitCode: 1, Output: []string{"ERROR: build failed"}, Err: &exec.ExitError{}}
	runner.respond = func(Invocation) ([]string, error) {
		return toolErr.Output, toolErr
	}

	err := finalizedBazel(t, s).Run(context.Background(), s)

	var got *ToolError
	if !errors.As(err, &got) {
		t.Fatalf("expected *ToolError, got %v", err)
	}
	if got.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", got.ExitCode)
	}
	if len(s.Result.Generated) != 0 {
		t.Errorf("expected no generated files after failure, got %v", s.Result.Generated)
	}
}

func TestBazelCheckTools(t *testing.T) {
	stubLookPath(t, map[string]string{})

	var checker ToolChecker = &BazelBuildCommand{}
	err := checker.CheckTools()
	if err == nil || err.Error() != "bazel (Bazel build system) not found in PATH" {
		t.Errorf("unexpected CheckTools error: %v", err)
	}
}

func TestBazelRunVerboseOutputOrder(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	s, runner := newTestSetup(t, "linux")
	s.Config.Verbose = true
	runner.respond = func(Invocation) ([]string, error) {
		return []string{"INFO: Build completed successfully"}, nil
	}

	if err := finalizedBazel(t, s).Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(s.Result.Output) != 3 {
		t.Fatalf("expected 3 output lines, got %v", s.Result.Output)
	}
	if !strings.HasPrefix(s.Result.Output[0], "Running: "+testBazel) {
		t.Errorf("expected command line first, got %q", s.Result.Output[0])
	}
	if !strings.HasPrefix(s.Result.Output[1], "Working directory: ") {
		t.Errorf("expected working directory second, got %q", s.Result.Output[1])
	}
	if s.Result.Output[2] != "INFO: Build completed successfully" {
		t.Errorf("expected tool output last, got %q", s.Result.Output[2])
	}
}

func TestBazelFindGeneratedSkipsOtherArtifacts(t *testing.T) {
	s, _ := newTestSetup(t, "linux")
	pkg := filepath.Join(s.Config.ProjectDir, generatedPackageDir)
	writeTestFile(t, filepath.Join(pkg, "api", "stats_pb2.py"), "")
	writeTestFile(t, filepath.Join(pkg, "api", "libstats.dylib"), "")
	writeTestFile(t, filepath.Join(pkg, "api", "stats_pb2.pyi"), "")

	found, err := (&BazelBuildCommand{}).findGenerated(s.Config.ProjectDir)
	if err != nil {
		t.Fatalf("findGenerated returned error: %v", err)
	}
	if !slices.Equal(found, []string{"tensorflow_data_validation/api/stats_pb2.py"}) {
		t.Errorf("unexpected generated files %v", found)
	}
}
