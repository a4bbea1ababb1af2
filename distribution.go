package pyext

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Distribution describes what gets packaged.
//
// The distribution is always platform-specific: native extensions are
// produced by Bazel rather than by the extension sub-commands, so nothing
// declared here would otherwise reveal them.
type Distribution struct {
	Metadata *Metadata

	// Packages are dotted package names; see FindPackages.
	Packages []string

	// PackageData maps a package name ("" for all packages) to globs of
	// non-Python files shipped alongside the sources.
	PackageData map[string][]string

	IncludePackageData bool
	ZipSafe            bool

	CLibraries []string
	Scripts    []string
}

// IsPure always reports false.
func (d *Distribution) IsPure() bool {
	return false
}

// HasExtModules always reports true.
func (d *Distribution) HasExtModules() bool {
	return true
}

// HasPureModules reports whether any Python packages are declared.
func (d *Distribution) HasPureModules() bool {
	return len(d.Packages) > 0
}

// HasCLibraries reports whether any C libraries are declared.
func (d *Distribution) HasCLibraries() bool {
	return len(d.CLibraries) > 0
}

// HasScripts reports whether any scripts are declared.
func (d *Distribution) HasScripts() bool {
	return len(d.Scripts) > 0
}

// DataPatterns returns the package data globs that apply to pkg.
func (d *Distribution) DataPatterns(pkg string) []string {
	patterns := append([]string{}, d.PackageData[""]...)
	if pkg != "" {
		patterns = append(patterns, d.PackageData[pkg]...)
	}
	return uniqueStrings(patterns)
}

// TopLevel returns the sorted top-level package names.
func (d *Distribution) TopLevel() []string {
	var top []string
	for _, pkg := range d.Packages {
		top = append(top, strings.SplitN(pkg, ".", 2)[0])
	}
	top = uniqueStrings(top)
	sort.Strings(top)
	return top
}

// FindPackages returns every directory under root that contains an
// __init__.py, as sorted dotted names. Only package directories are
// descended into, and directory names containing a dot are skipped.
func FindPackages(root string) ([]string, error) {
	var packages []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if strings.Contains(d.Name(), ".") {
			return filepath.SkipDir
		}

		if _, statErr := os.Stat(filepath.Join(path, "__init__.py")); statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return statErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		packages = append(packages, strings.ReplaceAll(filepath.ToSlash(rel), "/", "."))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(packages)
	return packages, nil
}
