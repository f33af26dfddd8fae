package toolchain

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"checkpack.szuro.net/internal/config"
	"checkpack.szuro.net/internal/filter"
	"checkpack.szuro.net/internal/logger"
	"checkpack.szuro.net/pkg/manifest"
	pluginPkg "checkpack.szuro.net/pkg/plugin"
	"github.com/klauspost/compress/gzip"
)

// Sdist writes a gzipped source distribution: PKG-INFO, the README and the
// package sources under a single <name>-<version>/ directory.
type Sdist struct {
	readme string
	filter filter.Filter
	now    func() time.Time
}

// NewSdist creates the source distribution toolchain. readme is the README
// path relative to the package root; f selects package data files.
func NewSdist(readme string, f filter.Filter) *Sdist {
	return &Sdist{
		readme: readme,
		filter: f.WithDefaults(),
		now:    time.Now,
	}
}

func (s *Sdist) Info() pluginPkg.PluginInfo {
	return pluginPkg.PluginInfo{
		Name:        config.SDIST_TOOLCHAIN,
		Version:     config.Version,
		Description: "Builds a .tar.gz source distribution",
		Author:      "checkpack",
	}
}

func (s *Sdist) Package(ctx context.Context, req pluginPkg.PackageRequest) (pluginPkg.Result, error) {
	files, err := s.collect(req.BaseDir, req.Manifest)
	if err != nil {
		return pluginPkg.Result{}, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return pluginPkg.Result{}, fmt.Errorf("create output directory: %w", err)
	}

	archive := filepath.Join(req.OutputDir, req.Manifest.ArchiveName()+".tar.gz")
	err = writeAtomically(archive, func(w io.Writer) error {
		return s.write(ctx, w, req.BaseDir, req.Manifest, files)
	})
	if err != nil {
		return pluginPkg.Result{}, err
	}

	logger.Info("Wrote source distribution",
		slog.String("path", archive),
		slog.Int("files", len(files)+1))
	return pluginPkg.Result{Toolchain: config.SDIST_TOOLCHAIN, Artifacts: []string{archive}}, nil
}

// collect returns the slash separated paths, relative to baseDir, of every
// file shipped besides PKG-INFO.
func (s *Sdist) collect(baseDir string, m manifest.PackageManifest) ([]string, error) {
	files := []string{filepath.ToSlash(s.readme)}

	for _, pkg := range m.Packages {
		pkgDir := filepath.Join(baseDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
		err := filepath.WalkDir(pkgDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(baseDir, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if p != pkgDir && !s.filter.EvaluateFilter(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !s.ships(rel, m.IncludePackageData) {
				logger.Debug("Skipping file", slog.String("path", rel))
				return nil
			}
			files = append(files, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collect package %s: %w", pkg, err)
		}
	}

	return files, nil
}

// ships decides whether a package file goes into the archive. Python
// sources always do; data files only with include_package_data.
func (s *Sdist) ships(rel string, includeData bool) bool {
	if !s.filter.EvaluateFilter(rel) {
		return false
	}
	return includeData || path.Ext(rel) == ".py"
}

func (s *Sdist) write(ctx context.Context, w io.Writer, baseDir string, m manifest.PackageManifest, files []string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	root := m.ArchiveName()
	now := s.now()

	pkgInfo := m.PKGINFO()
	if err := tw.WriteHeader(&tar.Header{
		Name:    root + "/PKG-INFO",
		Mode:    0o644,
		Size:    int64(len(pkgInfo)),
		ModTime: now,
		Format:  tar.FormatPAX,
	}); err != nil {
		return err
	}
	if _, err := io.WriteString(tw, pkgInfo); err != nil {
		return err
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(tw, filepath.Join(baseDir, filepath.FromSlash(rel)), root+"/"+rel); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func addFile(tw *tar.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Uname, hdr.Gname = "", ""
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Format = tar.FormatPAX

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
