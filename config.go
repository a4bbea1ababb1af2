package pyext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the optional per-project override file.
const ProjectFileName = "pyext.yaml"

// Config contains configuration for a packaging run.
//
// Values are layered: defaults, then pyext.yaml in the project root, then
// environment variables. CLI flags are applied by the caller afterwards.
//
// Source paths:
//   - ProjectDir: root of the source tree (contains the Bazel WORKSPACE)
//   - BuildBase: build directory, relative to ProjectDir unless absolute
//   - DistDir: where bdist_wheel writes archives
//
// Python environment:
//   - PythonPath: interpreter handed to Bazel as PYTHON_BIN_PATH
//   - PythonVersion: "X.Y"; probed from the interpreter when empty
//
// Installation:
//   - Prefix: installation prefix for the install command
//   - InstallPlatlib: explicit platform-specific site-packages directory
//   - Platlib64: use lib64 for platlib on Linux
type Config struct {
	ProjectDir string `yaml:"-"`
	BuildBase  string `yaml:"build_base" env:"PYEXT_BUILD_BASE"`
	DistDir    string `yaml:"dist_dir" env:"PYEXT_DIST_DIR"`

	PythonPath    string `yaml:"python" env:"PYEXT_PYTHON"`
	PythonVersion string `yaml:"python_version" env:"PYEXT_PYTHON_VERSION"`

	Prefix         string `yaml:"prefix" env:"PYEXT_PREFIX"`
	InstallPlatlib string `yaml:"install_platlib" env:"PYEXT_INSTALL_PLATLIB"`
	Platlib64      bool   `yaml:"platlib64" env:"PYEXT_PLATLIB64"`

	// DependencySelector picks the constraint mode for companion packages.
	DependencySelector string `yaml:"-" env:"TFX_DEPENDENCY_SELECTOR"`

	PlatformTag string            `yaml:"platform_tag" env:"PYEXT_PLATFORM_TAG"`
	BuildArgs   []string          `yaml:"bazel_args" env:"PYEXT_BAZEL_ARGS" envSeparator:","`
	Env         map[string]string `yaml:"env"`
	Parallel    int               `yaml:"jobs" env:"PYEXT_JOBS"`
	Verbose     bool              `yaml:"verbose" env:"PYEXT_VERBOSE"`

	// Target platform, defaulting to the running one.
	GOOS   string `yaml:"-"`
	GOARCH string `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig(projectDir string) *Config {
	return &Config{
		ProjectDir: projectDir,
		BuildBase:  "build",
		DistDir:    "dist",
		Prefix:     defaultPrefix(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}
}

// LoadConfig builds a Config for the project rooted at projectDir.
//
// A missing pyext.yaml is not an error; a malformed one is.
func LoadConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}

	cfg := DefaultConfig(abs)

	if err := cfg.loadProjectFile(); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadProjectFile() error {
	path := filepath.Join(c.ProjectDir, ProjectFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", ProjectFileName, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", ProjectFileName, err)
	}
	return nil
}

// BuildDir returns the absolute build base directory.
func (c *Config) BuildDir() string {
	return c.resolve(c.BuildBase)
}

// BuildLib returns the directory the build sub-commands populate.
func (c *Config) BuildLib() string {
	return filepath.Join(c.BuildDir(), "lib")
}

// DistPath returns the absolute distribution output directory.
func (c *Config) DistPath() string {
	return c.resolve(c.DistDir)
}

// PythonRequirement describes the interpreter lookup used when PythonPath
// is not configured.
func PythonRequirement() ToolRequirement {
	return ToolRequirement{
		Name:         "python3",
		Alternatives: []string{"python"},
		Purpose:      "Python interpreter",
	}
}

// ResolvePython returns the configured interpreter or looks one up on PATH.
func (c *Config) ResolvePython() (string, error) {
	if c.PythonPath != "" {
		return c.PythonPath, nil
	}
	path, err := LocateTool(PythonRequirement())
	if err != nil {
		return "", err
	}
	c.PythonPath = path
	return path, nil
}

func (c *Config) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ProjectDir, dir)
}

func defaultPrefix() string {
	if prefix := os.Getenv("VIRTUAL_ENV"); prefix != "" {
		return prefix
	}
	if runtime.GOOS == "windows" {
		return `C:\Python`
	}
	return "/usr/local"
}
