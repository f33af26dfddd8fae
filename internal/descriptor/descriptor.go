// Package descriptor builds the package manifest of a check from its
// sources: the version comes from the check's __about__.py and the long
// description from the README at the package root. Everything else is static
// descriptor configuration.
package descriptor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"checkpack.szuro.net/internal/about"
	"checkpack.szuro.net/internal/config"
	"checkpack.szuro.net/internal/logger"
	"checkpack.szuro.net/pkg/manifest"
	"golang.org/x/mod/semver"
)

var (
	// ErrFileNotFound wraps fs.ErrNotExist for a missing input file.
	ErrFileNotFound    = fmt.Errorf("input file not found: %w", fs.ErrNotExist)
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)

// Paths locates the two inputs of a build.
type Paths struct {
	About  string
	Readme string
}

// Locate returns the input paths for d below baseDir.
func Locate(baseDir string, d config.Descriptor) Paths {
	return Paths{
		About:  filepath.Join(baseDir, d.PackageDir(), about.FileName),
		Readme: filepath.Join(baseDir, d.Readme),
	}
}

// Build reads the check sources under baseDir and returns its manifest.
// No manifest is returned when either input is missing or the version
// cannot be evaluated.
func Build(baseDir string, d config.Descriptor) (m manifest.PackageManifest, err error) {
	paths := Locate(baseDir, d)
	log := logger.Default().With(slog.String("package", d.Name))

	version, err := ReadVersion(paths.About)
	if err != nil {
		return m, err
	}
	if !semver.IsValid("v" + version) {
		log.Warn("Version is not a semantic version", slog.String("version", version))
	}

	longDescription, err := ReadLongDescription(paths.Readme)
	if err != nil {
		return m, err
	}

	m = manifest.PackageManifest{
		Name:                       d.Name,
		Version:                    version,
		Description:                d.Description,
		LongDescription:            longDescription,
		LongDescriptionContentType: contentType(paths.Readme),
		Keywords:                   d.Keywords,
		URL:                        d.URL,
		Author:                     d.Author,
		AuthorEmail:                d.AuthorEmail,
		License:                    d.License,
		Classifiers:                append([]string(nil), d.Classifiers...),
		InstallRequires:            []string{d.BaseRequirement},
		IncludePackageData:         d.IncludesPackageData(),
	}
	m.SetPackages(d.PackagePath())

	if err := m.Validate(); err != nil {
		return manifest.PackageManifest{}, err
	}

	log.Debug("Built manifest",
		slog.String("version", m.Version),
		slog.Int("long_description_bytes", len(m.LongDescription)),
		slog.Any("packages", m.Packages))
	return m, nil
}

// ReadVersion evaluates the version assignment of the metadata module at
// path.
func ReadVersion(path string) (string, error) {
	values, err := about.ParseFile(path)
	if err != nil {
		return "", inputError(path, err)
	}
	return values.Version()
}

// ReadLongDescription returns the README contents verbatim.
func ReadLongDescription(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", inputError(path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
	}
	return string(data), nil
}

func inputError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrFileNotFound)
	}
	return fmt.Errorf("%s: %w", path, err)
}

func contentType(readme string) string {
	switch strings.ToLower(filepath.Ext(readme)) {
	case ".md", ".markdown":
		return manifest.ContentTypeMarkdown
	default:
		return manifest.ContentTypePlain
	}
}
