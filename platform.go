package pyext

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	platformWindows = "windows"
	platformDarwin  = "darwin"
	platformLinux   = "linux"
)

// PlatformTag returns the wheel platform tag for a GOOS/GOARCH pair.
//
// macOS tags carry the deployment target: 10.14 on Intel, matching the
// minimum OS passed to Bazel, and 11.0 on Apple silicon, the first release
// for that architecture.
func PlatformTag(goos, goarch string) (string, error) {
	switch goos {
	case platformLinux:
		switch goarch {
		case "amd64":
			return "linux_x86_64", nil
		case "arm64":
			return "linux_aarch64", nil
		case "386":
			return "linux_i686", nil
		case "ppc64le", "s390x":
			return "linux_" + goarch, nil
		}
	case platformDarwin:
		switch goarch {
		case "amd64":
			return "macosx_10_14_x86_64", nil
		case "arm64":
			return "macosx_11_0_arm64", nil
		}
	case platformWindows:
		switch goarch {
		case "amd64":
			return "win_amd64", nil
		case "arm64":
			return "win_arm64", nil
		case "386":
			return "win32", nil
		}
	}
	return "", fmt.Errorf("no wheel platform tag for %s/%s", goos, goarch)
}

var pythonVersionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// PythonVersion returns the target interpreter version as "X.Y", probing
// the interpreter once through the Runner when it is not configured.
func (s *Setup) PythonVersion(ctx context.Context) (string, error) {
	if s.Config.PythonVersion != "" {
		return s.Config.PythonVersion, nil
	}

	python, err := s.Config.ResolvePython()
	if err != nil {
		return "", err
	}

	output, err := s.Runner.Run(ctx, Invocation{
		Path: python,
		Args: []string{"-c", "import sys; print('%d.%d' % sys.version_info[:2])"},
		Dir:  s.Config.ProjectDir,
	})
	if err != nil {
		return "", fmt.Errorf("probe python version: %w", err)
	}

	var version string
	if len(output) > 0 {
		version = strings.TrimSpace(output[len(output)-1])
	}
	if !pythonVersionPattern.MatchString(version) {
		return "", fmt.Errorf("probe python version: unexpected output %q", version)
	}

	s.Config.PythonVersion = version
	return version, nil
}

// PythonTag returns the CPython interpreter tag for an "X.Y" version,
// e.g. "cp311".
func PythonTag(version string) string {
	return "cp" + strings.ReplaceAll(version, ".", "")
}
