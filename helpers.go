package pyext

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MatchesPattern checks if a filename matches any of the given regex patterns.
//
// Invalid patterns are silently skipped.
//
//	if MatchesPattern(filename, `_pb2\.py$`) {
//	    // generated protocol message bindings
//	}
func MatchesPattern(filename string, patterns ...string) bool {
	for _, pattern := range patterns {
		if matched, _ := regexp.MatchString(pattern, filename); matched {
			return true
		}
	}
	return false
}

// MatchesGlob reports whether the base name of path matches any of the
// shell-style globs (e.g. "*.so").
func MatchesGlob(path string, globs ...string) bool {
	base := filepath.Base(path)
	for _, glob := range globs {
		if ok, err := filepath.Match(glob, base); err == nil && ok {
			return true
		}
	}
	return false
}

// BuildError creates a standardized build error with output context.
//
// The underlying error is wrapped. With error and output:
//
//	Bazel build failed: bazel exited with status 1
//
//	Build output:
//	ERROR: no such target '//tensorflow_data_validation:move_generated_files'
func BuildError(step string, output []string, err error) error {
	outputStr := strings.TrimSpace(strings.Join(output, "\n"))

	switch {
	case err != nil && outputStr != "":
		return fmt.Errorf("%s build failed: %w\n\nBuild output:\n%s", step, err, outputStr)
	case err != nil:
		return fmt.Errorf("%s build failed: %w", step, err)
	case outputStr != "":
		return fmt.Errorf("%s build failed\n\nBuild output:\n%s", step, outputStr)
	default:
		return fmt.Errorf("%s build failed", step)
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}

func splitLines(output []byte) []string {
	text := strings.TrimRight(string(output), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
