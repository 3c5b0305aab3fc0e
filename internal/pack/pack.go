// Package pack assembles a versioned, self-contained distribution bundle
// from the canonical manifest file set. The archive is complete or not
// produced at all: a fresh scratch directory stages the tree and is always
// removed, and nothing is written to the output location until the zip has
// been fully assembled.
package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// Manifest is the fixed file set constituting a distributable release.
type Manifest struct {
	// Name is the release name; combined with the version it determines
	// both the archive name and its top-level directory.
	Name string

	// Files are paths relative to the source directory.
	Files []string
}

// Packager builds release archives.
type Packager struct {
	Logger *slog.Logger

	// SourceDir is the tree the manifest paths resolve against.
	SourceDir string

	// OutDir is where the finished archive lands (the invocation directory).
	OutDir string

	// ScratchBase overrides os.TempDir for tests.
	ScratchBase string
}

// New creates a Packager.
func New(logger *slog.Logger, sourceDir, outDir string) *Packager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{Logger: logger, SourceDir: sourceDir, OutDir: outDir}
}

// Build assembles `{name}_{version}.zip` containing the manifest files under
// a single `{name}_{version}/` top-level directory and returns the archive
// path. A missing manifest file aborts before any archive byte is written.
// An existing archive of the same name is overwritten silently.
func (p *Packager) Build(m Manifest, version string) (string, error) {
	if err := p.verifyComplete(m); err != nil {
		return "", err
	}

	root := fmt.Sprintf("%s_%s", m.Name, version)

	scratch, err := p.createScratch()
	if err != nil {
		return "", err
	}
	// The scratch directory is removed even if archive creation fails.
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			p.Logger.Warn("Failed to remove scratch directory",
				logfields.Path(scratch), logfields.Error(err))
		}
	}()

	stageDir := filepath.Join(scratch, root)
	if err := p.stage(m, stageDir); err != nil {
		return "", err
	}
	if err := writeReleaseFile(stageDir, version, p.SourceDir); err != nil {
		return "", err
	}

	// Assemble the zip inside the scratch dir, then move it into place, so
	// a failed build never leaves a partial archive in the output location.
	archiveName := root + ".zip"
	scratchZip := filepath.Join(scratch, archiveName)
	if err := zipDirectory(scratchZip, scratch, root); err != nil {
		return "", errors.Wrap(err, errors.CategoryExternalTool, "assembling archive")
	}

	finalPath := filepath.Join(p.OutDir, archiveName)
	if err := moveFile(scratchZip, finalPath); err != nil {
		return "", errors.Wrap(err, errors.CategoryExternalTool, "placing archive")
	}

	p.Logger.Info("Release archive built",
		logfields.Archive(archiveName), logfields.Path(finalPath))
	return finalPath, nil
}

// verifyComplete ensures every manifest file exists before staging begins.
func (p *Packager) verifyComplete(m Manifest) error {
	var missing []string
	for _, rel := range m.Files {
		if _, err := os.Stat(filepath.Join(p.SourceDir, rel)); err != nil {
			missing = append(missing, rel)
		}
	}
	if len(missing) > 0 {
		return errors.Preconditionf("manifest files missing from source tree: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// createScratch makes a fresh timestamped staging directory.
func (p *Packager) createScratch() (string, error) {
	base := p.ScratchBase
	if base == "" {
		base = os.TempDir()
	}
	scratch := filepath.Join(base, fmt.Sprintf("kneeboardctl-pack-%s", time.Now().Format("20060102-150405.000000000")))
	if err := os.MkdirAll(scratch, 0o750); err != nil {
		return "", errors.Wrap(err, errors.CategoryPrecondition, "creating scratch directory")
	}
	return scratch, nil
}

// stage copies the manifest files into the staging root, preserving relative
// paths.
func (p *Packager) stage(m Manifest, stageDir string) error {
	for _, rel := range m.Files {
		src := filepath.Join(p.SourceDir, rel)
		dst := filepath.Join(stageDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrap(err, errors.CategoryPrecondition, "creating staging directory")
		}
		if err := copyFile(src, dst); err != nil {
			return errors.Wrap(err, errors.CategoryPrecondition, "staging "+rel)
		}
	}
	return nil
}

// zipDirectory writes baseDir/root into a zip at zipPath, keeping root as
// the single top-level directory.
func zipDirectory(zipPath, baseDir, root string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)

	walkRoot := filepath.Join(baseDir, root)
	err = filepath.WalkDir(walkRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}

		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(entry, src)
		return err
	})
	if err != nil {
		return err
	}
	return w.Close()
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// moveFile renames when possible and falls back to copy+remove across
// filesystems (scratch usually lives on tmpfs).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
