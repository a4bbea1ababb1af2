package pyext

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// Companion files, relative to the project root.
const (
	VersionFile = "tensorflow_data_validation/version.py"
	ReadmeFile  = "README.md"
)

// Metadata is the package metadata declared for the distribution.
type Metadata struct {
	Name                       string
	Version                    string
	Author                     string
	AuthorEmail                string
	License                    string
	Description                string
	LongDescription            string
	LongDescriptionContentType string
	Keywords                   string
	URL                        string
	DownloadURL                string
	Classifiers                []string
	RequiresPython             string
	RequiresDist               []string
	ProvidesExtra              map[string][]string
}

var versionAssign = regexp.MustCompile(`(?m)^__version__\s*=\s*(?:'([^'\n]*)'|"([^"\n]*)")`)

// ReadVersion extracts the __version__ string assigned in a version module.
// The last assignment wins, as it would when the module is executed.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read version module: %w", err)
	}

	matches := versionAssign.FindAllStringSubmatch(string(data), -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrVersionNotFound)
	}

	last := matches[len(matches)-1]
	if last[1] != "" {
		return last[1], nil
	}
	return last[2], nil
}

// ReadLongDescription returns the readme text verbatim.
func ReadLongDescription(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read long description: %w", err)
	}
	return string(data), nil
}

// DataValidationClassifiers is the trove classifier list.
var DataValidationClassifiers = []string{
	"Development Status :: 5 - Production/Stable",
	"Intended Audience :: Developers",
	"Intended Audience :: Education",
	"Intended Audience :: Science/Research",
	"License :: OSI Approved :: Apache Software License",
	"Operating System :: MacOS :: MacOS X",
	"Operating System :: POSIX :: Linux",
	"Programming Language :: Python",
	"Programming Language :: Python :: 3",
	"Programming Language :: Python :: 3.9",
	"Programming Language :: Python :: 3.10",
	"Programming Language :: Python :: 3.11",
	"Programming Language :: Python :: 3 :: Only",
	"Topic :: Scientific/Engineering",
	"Topic :: Scientific/Engineering :: Artificial Intelligence",
	"Topic :: Scientific/Engineering :: Mathematics",
	"Topic :: Software Development",
	"Topic :: Software Development :: Libraries",
	"Topic :: Software Development :: Libraries :: Python Modules",
}

// DataValidationMetadata returns the static metadata for the data
// validation package. Requirements are filled in by LoadDistribution.
func DataValidationMetadata(version, longDescription string) *Metadata {
	return &Metadata{
		Name:                       "tensorflow-data-validation",
		Version:                    version,
		Author:                     "Google LLC",
		AuthorEmail:                "tensorflow-extended-dev@googlegroups.com",
		License:                    "Apache 2.0",
		Description:                "A library for exploring and validating machine learning data.",
		LongDescription:            longDescription,
		LongDescriptionContentType: "text/markdown",
		Keywords:                   "tensorflow data validation tfx",
		URL:                        "https://www.tensorflow.org/tfx/data_validation/get_started",
		DownloadURL:                "https://github.com/tensorflow/data-validation/tags",
		Classifiers:                append([]string{}, DataValidationClassifiers...),
		RequiresPython:             PythonRequires,
	}
}

// DistName returns the name normalized for archive file names.
func (m *Metadata) DistName() string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(m.Name)
}

// WriteCoreMetadata writes PKG-INFO/METADATA in core metadata 2.1 form.
func (m *Metadata) WriteCoreMetadata(w io.Writer) error {
	bw := bufio.NewWriter(w)

	field := func(key, value string) {
		if value != "" {
			fmt.Fprintf(bw, "%s: %s\n", key, value)
		}
	}

	field("Metadata-Version", "2.1")
	field("Name", m.Name)
	field("Version", m.Version)
	field("Summary", m.Description)
	field("Home-page", m.URL)
	field("Download-URL", m.DownloadURL)
	field("Author", m.Author)
	field("Author-email", m.AuthorEmail)
	field("License", m.License)
	field("Keywords", m.Keywords)
	for _, c := range m.Classifiers {
		field("Classifier", c)
	}
	field("Requires-Python", m.RequiresPython)
	field("Description-Content-Type", m.LongDescriptionContentType)

	for _, req := range m.RequiresDist {
		field("Requires-Dist", formatRequirement(req, ""))
	}

	for _, extra := range orderedExtras(m.ProvidesExtra) {
		field("Provides-Extra", extra)
		for _, req := range m.ProvidesExtra[extra] {
			field("Requires-Dist", formatRequirement(req, extra))
		}
	}

	if m.LongDescription != "" {
		fmt.Fprintf(bw, "\n%s", m.LongDescription)
		if !strings.HasSuffix(m.LongDescription, "\n") {
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// formatRequirement renders a requirement for Requires-Dist, folding the
// extra condition into any existing environment marker.
func formatRequirement(req, extra string) string {
	spec, marker := SplitMarker(req)
	spec = normalizeDirectReference(spec)

	if extra != "" {
		extraMarker := fmt.Sprintf(`extra == "%s"`, extra)
		if marker != "" {
			marker = fmt.Sprintf("(%s) and %s", marker, extraMarker)
		} else {
			marker = extraMarker
		}
	}

	if marker == "" {
		return spec
	}
	return spec + "; " + marker
}

// normalizeDirectReference turns "name@git+url" into "name @ git+url".
func normalizeDirectReference(spec string) string {
	name, ref, ok := strings.Cut(spec, "@")
	if !ok {
		return spec
	}
	return strings.TrimSpace(name) + " @ " + strings.TrimSpace(ref)
}

func orderedExtras(extras map[string][]string) []string {
	var names []string
	for _, name := range ExtraNames {
		if _, ok := extras[name]; ok {
			names = append(names, name)
		}
	}

	var rest []string
	for name := range extras {
		if !slices.Contains(ExtraNames, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

