package pyext

import (
	"fmt"
	"os/exec"
	"strings"
)

// execLookPath is swapped out in tests.
var execLookPath = exec.LookPath

// ToolChecker is an optional interface for commands that shell out to
// external tools.
//
// Commands can implement this interface to declare their tool dependencies
// and verify that required tools are available before anything runs.
//
// # Consumer Usage
//
//	if checker, ok := cmd.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this command needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available.
	//
	// Optional tools don't cause errors if missing.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name:         "python3",
//	    Alternatives: []string{"python"},
//	    Purpose:      "Python interpreter",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "bazel").
	Name string

	// Alternatives are alternative tool names that can satisfy this requirement.
	Alternatives []string

	// Optional indicates this tool won't cause an error if missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// LocateTool resolves the executable path for a requirement, trying the
// primary name first and then each alternative in order.
func LocateTool(req ToolRequirement) (string, error) {
	candidates := append([]string{req.Name}, req.Alternatives...)
	for _, name := range candidates {
		if path, err := execLookPath(name); err == nil && path != "" {
			return path, nil
		}
	}

	if req.Purpose != "" {
		return "", fmt.Errorf("%s not found in PATH (required for: %s)", req.Name, req.Purpose)
	}
	return "", fmt.Errorf("%s not found in PATH", req.Name)
}

// CheckRequiredTools verifies all required tools are available.
//
// # Error Format
//
// Single missing tool:
//
//	bazel (Bazel build system) not found in PATH
//
// Multiple missing tools:
//
//	missing required tools: bazel (Bazel build system), python3 (Python interpreter)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		if _, err := LocateTool(req); err == nil || req.Optional {
			continue
		}

		if req.Purpose != "" {
			missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missingTools = append(missingTools, req.Name)
		}
	}

	switch len(missingTools) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	default:
		return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
	}
}
