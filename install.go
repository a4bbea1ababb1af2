package pyext

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var nativeLibraryExtensions = map[string]struct{}{
	".so":    {},
	".pyd":   {},
	".lib":   {},
	".dll":   {},
	".dylib": {},
}

// InstallCommand installs the built tree into site-packages.
//
// The package is not pure, but because the extension modules are not built
// by the framework it would be laid out as if it were. Finalize therefore
// redirects InstallLib to the platform-specific directory.
type InstallCommand struct {
	InstallPurelib string
	InstallPlatlib string
	InstallLib     string
}

// Name returns the command name
func (c *InstallCommand) Name() string {
	return "install"
}

// Finalize resolves the install scheme and forces InstallLib to InstallPlatlib
func (c *InstallCommand) Finalize(ctx context.Context, s *Setup) error {
	version, err := s.PythonVersion(ctx)
	if err != nil {
		return err
	}

	c.InstallPurelib, c.InstallPlatlib = installScheme(s.Config, version)
	if s.Config.InstallPlatlib != "" {
		c.InstallPlatlib = s.Config.InstallPlatlib
	}

	c.InstallLib = c.InstallPlatlib
	s.Logger.Debug("install.scheme",
		"purelib", c.InstallPurelib,
		"platlib", c.InstallPlatlib,
		"install_lib", c.InstallLib)
	return nil
}

// Run builds, then copies build/lib into InstallLib
func (c *InstallCommand) Run(ctx context.Context, s *Setup) error {
	if err := s.RunCommand(ctx, "build"); err != nil {
		return err
	}

	buildLib := s.Config.BuildLib()
	if _, err := os.Stat(buildLib); os.IsNotExist(err) {
		s.Logger.Warn("install.nothing_to_install", "dir", buildLib)
		return nil
	}

	installed, err := copyTree(buildLib, c.InstallLib)
	if err != nil {
		return fmt.Errorf("install into %s: %w", c.InstallLib, err)
	}

	s.Result.Installed = append(s.Result.Installed, installed...)
	return nil
}

// installScheme computes the purelib and platlib directories for prefix.
func installScheme(config *Config, pythonVersion string) (purelib, platlib string) {
	prefix := config.Prefix

	if config.GOOS == platformWindows {
		dir := filepath.Join(prefix, "Lib", "site-packages")
		return dir, dir
	}

	site := filepath.Join("python"+pythonVersion, "site-packages")
	purelib = filepath.Join(prefix, "lib", site)
	platlib = purelib
	if config.Platlib64 && config.GOOS == platformLinux {
		platlib = filepath.Join(prefix, "lib64", site)
	}
	return purelib, platlib
}

// copyTree copies every regular file under src into dest and returns the
// destination paths.
func copyTree(src, dest string) ([]string, error) {
	var copied []string

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dest, rel)
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied = append(copied, target)
		return nil
	})

	return copied, err
}

func isNativeLibrary(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := nativeLibraryExtensions[ext]
	return ok
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	if mkErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
