package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"checkpack.szuro.net/internal/config"
	"checkpack.szuro.net/internal/logger"
	"checkpack.szuro.net/pkg/manifest"
	pluginPkg "checkpack.szuro.net/pkg/plugin"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// ManifestFile writes the manifest next to the other build artifacts so
// plugin installers can resolve dependencies without unpacking an archive.
type ManifestFile struct {
	format string
}

func NewManifestFile(format string) *ManifestFile {
	if format != config.FORMAT_YAML {
		format = config.FORMAT_JSON
	}
	return &ManifestFile{format: format}
}

func (mf *ManifestFile) Info() pluginPkg.PluginInfo {
	return pluginPkg.PluginInfo{
		Name:        config.MANIFEST_TOOLCHAIN,
		Version:     config.Version,
		Description: "Writes the package manifest as " + mf.format,
		Author:      "checkpack",
	}
}

func (mf *ManifestFile) Package(ctx context.Context, req pluginPkg.PackageRequest) (pluginPkg.Result, error) {
	if err := ctx.Err(); err != nil {
		return pluginPkg.Result{}, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return pluginPkg.Result{}, fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(req.OutputDir, req.Manifest.ArchiveName()+".manifest."+mf.format)
	if err := writeAtomically(path, func(w io.Writer) error {
		return mf.encode(w, req.Manifest)
	}); err != nil {
		return pluginPkg.Result{}, err
	}

	logger.Info("Wrote manifest", slog.String("path", path))
	return pluginPkg.Result{Toolchain: config.MANIFEST_TOOLCHAIN, Artifacts: []string{path}}, nil
}

func (mf *ManifestFile) encode(w io.Writer, m manifest.PackageManifest) error {
	if mf.format == config.FORMAT_YAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// writeAtomically replaces path with whatever write produces. Readers see
// either the old file or the complete new one.
func writeAtomically(path string, write func(w io.Writer) error) error {
	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug("cleanup pending file", slog.String("path", path), slog.Any("error", err))
		}
	}()

	if err := write(pendingFile); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
