package pyext

import (
	"errors"
	"testing"
)

func TestMatchesPattern(t *testing.T) {
	testCases := []struct {
		filename string
		patterns []string
		expected bool
	}{
		{"stats_pb2.py", []string{`_pb2\.py$`}, true},
		{"_pywrap.so", []string{`\.so$`, `\.pyd$`}, true},
		{"stats.py", []string{`_pb2\.py$`}, false},
		{"anything", []string{`[invalid`}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			result := MatchesPattern(tc.filename, tc.patterns...)
			if result != tc.expected {
				t.Errorf("MatchesPattern(%s, %v) = %v, expected %v",
					tc.filename, tc.patterns, result, tc.expected)
			}
		})
	}
}

func TestMatchesGlob(t *testing.T) {
	if !MatchesGlob("pkg/api/stats_pb2.py", "*_pb2.py") {
		t.Error("expected base name to match glob")
	}
	if MatchesGlob("pkg/api/stats.py", "*_pb2.py", "*.so") {
		t.Error("expected no match")
	}
}

func TestBuildError(t *testing.T) {
	output := []string{"line 1", "line 2", "error occurred"}

	cause := errors.New("exit status 1")
	err := BuildError("Bazel", output, cause)
	if !errors.Is(err, cause) {
		t.Error("expected BuildError to wrap the cause")
	}
	expected := "Bazel build failed: exit status 1\n\nBuild output:\nline 1\nline 2\nerror occurred"
	if err.Error() != expected {
		t.Errorf("BuildError output mismatch.\nExpected: %s\nGot: %s", expected, err.Error())
	}

	err = BuildError("Bazel", nil, nil)
	if err.Error() != "Bazel build failed" {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestUniqueStrings(t *testing.T) {
	got := uniqueStrings([]string{"a", "", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected result %v", got)
	}
}
