package pyext

import "testing"

func TestLocateToolAlternatives(t *testing.T) {
	stubLookPath(t, map[string]string{"python": "/usr/bin/python"})

	path, err := LocateTool(PythonRequirement())
	if err != nil {
		t.Fatalf("LocateTool returned error: %v", err)
	}
	if path != "/usr/bin/python" {
		t.Errorf("expected alternative to be used, got %q", path)
	}
}

func TestCheckRequiredTools(t *testing.T) {
	stubLookPath(t, map[string]string{"bazel": testBazel})

	testCases := []struct {
		name     string
		reqs     []ToolRequirement
		expected string
	}{
		{"all present", []ToolRequirement{{Name: "bazel"}}, ""},
		{"optional missing", []ToolRequirement{{Name: "bazel"}, {Name: "ccache", Optional: true}}, ""},
		{"one missing", []ToolRequirement{{Name: "python3", Purpose: "Python interpreter"}}, "python3 (Python interpreter) not found in PATH"},
		{"several missing", []ToolRequirement{{Name: "python3"}, {Name: "protoc", Purpose: "protobuf compiler"}}, "missing required tools: python3, protoc (protobuf compiler)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRequiredTools(tc.reqs)
			if tc.expected == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tc.expected {
				t.Errorf("expected %q, got %v", tc.expected, err)
			}
		})
	}
}
