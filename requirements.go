package pyext

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DependencySelectorEnv names the environment variable read by the
// constraint selector.
const DependencySelectorEnv = "TFX_DEPENDENCY_SELECTOR"

// Recognized selector values.
const (
	SelectorUnconstrained = "UNCONSTRAINED"
	SelectorNightly       = "NIGHTLY"
	SelectorGitMaster     = "GIT_MASTER"
)

// DocsRequirementsFile is read for the docs extra, relative to the project root.
const DocsRequirementsFile = "requirements-docs.txt"

// PythonRequires is the supported interpreter range.
const PythonRequires = ">=3.9,<4"

// Extra names.
const (
	ExtraMutualInformation = "mutual-information"
	ExtraVisualization     = "visualization"
	ExtraDev               = "dev"
	ExtraDocs              = "docs"
	ExtraTest              = "test"
	ExtraAll               = "all"
)

// ExtraNames lists the extras in declaration order.
var ExtraNames = []string{
	ExtraMutualInformation,
	ExtraVisualization,
	ExtraDev,
	ExtraDocs,
	ExtraTest,
	ExtraAll,
}

// Constraint holds the alternative version specifiers for one companion
// package. An empty Nightly or GitMaster means that mode is not offered.
type Constraint struct {
	Default   string
	Nightly   string
	GitMaster string
}

// Select returns the specifier for the given selector value.
//
// UNCONSTRAINED yields "". NIGHTLY and GIT_MASTER yield their alternative
// when one is defined. Anything else, including an empty selector, yields
// Default.
func (c Constraint) Select(selector string) string {
	switch {
	case selector == SelectorUnconstrained:
		return ""
	case selector == SelectorNightly && c.Nightly != "":
		return c.Nightly
	case selector == SelectorGitMaster && c.GitMaster != "":
		return c.GitMaster
	default:
		return c.Default
	}
}

func companionConstraint(repo string) Constraint {
	return Constraint{
		Default:   ">=1.17.1,<1.18",
		Nightly:   ">=1.18.0.dev",
		GitMaster: fmt.Sprintf("@git+https://github.com/tensorflow/%s@master", repo),
	}
}

// InstallRequires returns the runtime dependency list. Keep absl-py, numpy,
// six and protobuf in step with TensorFlow.
func InstallRequires(selector string) []string {
	return []string{
		"absl-py>=0.9,<2.0.0",
		`apache-beam[gcp]>=2.53,<3;python_version>="3.11"`,
		`apache-beam[gcp]>=2.50,<2.51;python_version<"3.11"`,
		// TODO: drop once multi-processing moves to Beam's DirectRunner.
		"joblib>=1.2.0",
		"numpy>=1.22.0",
		"pandas>=1.0,<2",
		`protobuf>=4.25.2,<6.0.0;python_version>="3.11"`,
		`protobuf>=4.21.6,<6.0.0;python_version<"3.11"`,
		"pyarrow>=10,<11",
		"pyfarmhash>=0.2.2,<0.4",
		"six>=1.12,<2",
		"tensorflow>=2.17,<2.18",
		"tensorflow-metadata" + companionConstraint("metadata").Select(selector),
		"tfx-bsl" + companionConstraint("tfx-bsl").Select(selector),
	}
}

// MutualInformationRequirements backs the mutual-information extra.
func MutualInformationRequirements() []string {
	return []string{"scikit-learn>=1.0,<2", "scipy>=1.5,<2"}
}

// VisualizationRequirements backs the visualization extra.
func VisualizationRequirements() []string {
	return []string{"ipython>=7,<8"}
}

// DocsRequirements reads the docs requirements file, one requirement per
// line, dropping blank lines.
func DocsRequirements(projectDir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, DocsRequirementsFile))
	if err != nil {
		return nil, fmt.Errorf("read docs requirements: %w", err)
	}

	var reqs []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			reqs = append(reqs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read docs requirements: %w", err)
	}
	return reqs, nil
}

// AllExtraRequirements concatenates the mutual-information, visualization
// and docs requirements in that order. Duplicates are kept.
func AllExtraRequirements(docs []string) []string {
	var all []string
	all = append(all, MutualInformationRequirements()...)
	all = append(all, VisualizationRequirements()...)
	all = append(all, docs...)
	return all
}

// ExtrasRequire returns every optional dependency group.
func ExtrasRequire(projectDir string) (map[string][]string, error) {
	docs, err := DocsRequirements(projectDir)
	if err != nil {
		return nil, err
	}

	return map[string][]string{
		ExtraMutualInformation: MutualInformationRequirements(),
		ExtraVisualization:     VisualizationRequirements(),
		ExtraDev:               {"precommit"},
		ExtraDocs:              docs,
		ExtraTest:              {"pytest", "scikit-learn", "scipy"},
		ExtraAll:               AllExtraRequirements(docs),
	}, nil
}

// SplitMarker separates a requirement from its environment marker.
func SplitMarker(req string) (spec, marker string) {
	spec, marker, _ = strings.Cut(req, ";")
	return strings.TrimSpace(spec), strings.TrimSpace(marker)
}
