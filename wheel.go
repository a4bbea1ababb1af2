package pyext

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const wheelGenerator = "pyext"

// WheelCommand writes a platform-specific wheel for the built tree.
type WheelCommand struct {
	Tag string // python-abi-platform, e.g. cp311-cp311-linux_x86_64
}

// Name returns the command name
func (c *WheelCommand) Name() string {
	return "bdist_wheel"
}

// Finalize computes the wheel tag. The distribution is never pure, so the
// tag always names an interpreter, an ABI and a platform.
func (c *WheelCommand) Finalize(ctx context.Context, s *Setup) error {
	platform := s.Config.PlatformTag
	if platform == "" {
		var err error
		platform, err = PlatformTag(s.Config.GOOS, s.Config.GOARCH)
		if err != nil {
			return err
		}
	}

	version, err := s.PythonVersion(ctx)
	if err != nil {
		return err
	}

	pyTag := PythonTag(version)
	c.Tag = strings.Join([]string{pyTag, pyTag, platform}, "-")
	return nil
}

// Filename returns the wheel file name for the distribution metadata.
func (c *WheelCommand) Filename(meta *Metadata) string {
	return fmt.Sprintf("%s-%s-%s.whl", meta.DistName(), wheelVersion(meta.Version), c.Tag)
}

// Run builds and archives build/lib plus the .dist-info directory
func (c *WheelCommand) Run(ctx context.Context, s *Setup) error {
	if err := s.RunCommand(ctx, "build"); err != nil {
		return err
	}

	distDir := s.Config.DistPath()
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(distDir, c.Filename(s.Distribution.Metadata))
	if err := c.writeWheel(path, s); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	s.Result.Wheel = path
	s.Logger.Info("bdist_wheel.written", "path", path, "tag", c.Tag)
	return nil
}

func (c *WheelCommand) writeWheel(path string, s *Setup) error {
	meta := s.Distribution.Metadata
	distInfo := fmt.Sprintf("%s-%s.dist-info", meta.DistName(), wheelVersion(meta.Version))

	files, err := c.collect(s.Config.BuildLib())
	if err != nil {
		return err
	}

	var metadata bytes.Buffer
	if err := meta.WriteCoreMetadata(&metadata); err != nil {
		return err
	}

	wheelInfo := fmt.Sprintf("Wheel-Version: 1.0\nGenerator: %s\nRoot-Is-Purelib: %t\nTag: %s\n",
		wheelGenerator, s.Distribution.IsPure(), c.Tag)

	topLevel := strings.Join(s.Distribution.TopLevel(), "\n")
	if topLevel != "" {
		topLevel += "\n"
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(out)
	var record []string

	add := func(name string, data []byte, mode fs.FileMode) error {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		record = append(record, recordLine(name, data))
		return nil
	}

	err = func() error {
		for _, f := range files {
			data, err := os.ReadFile(f.path)
			if err != nil {
				return err
			}
			if err := add(f.name, data, f.mode); err != nil {
				return err
			}
		}

		distFiles := []struct {
			name string
			data string
		}{
			{"METADATA", metadata.String()},
			{"WHEEL", wheelInfo},
			{"top_level.txt", topLevel},
		}
		for _, df := range distFiles {
			if err := add(distInfo+"/"+df.name, []byte(df.data), 0o644); err != nil {
				return err
			}
		}

		recordName := distInfo + "/RECORD"
		record = append(record, recordName+",,")
		w, err := zw.CreateHeader(&zip.FileHeader{Name: recordName, Method: zip.Deflate})
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(strings.Join(record, "\n") + "\n"))
		return err
	}()

	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
	}
	return err
}

type wheelFile struct {
	name string
	path string
	mode fs.FileMode
}

// collect lists the staged files sorted by archive name.
func (c *WheelCommand) collect(buildLib string) ([]wheelFile, error) {
	var files []wheelFile

	err := filepath.WalkDir(buildLib, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(buildLib, path)
		if err != nil {
			return err
		}
		files = append(files, wheelFile{name: filepath.ToSlash(rel), path: path, mode: info.Mode().Perm()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", buildLib, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// recordLine formats a RECORD entry: path,sha256=<urlsafe b64 nopad>,size.
func recordLine(name string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s,sha256=%s,%d", name, base64.RawURLEncoding.EncodeToString(sum[:]), len(data))
}

func wheelVersion(version string) string {
	return strings.ReplaceAll(version, "-", "_")
}
