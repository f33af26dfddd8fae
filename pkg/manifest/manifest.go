// Package manifest defines the package manifest produced for a monitoring
// agent check and consumed by packaging toolchains.
//
// The field names in the JSON and YAML encodings follow the keyword names
// packaging tools for the host agent expect (install_requires,
// include_package_data, ...), so a manifest written by checkpack can be read
// back by index servers and plugin installers without translation.
package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	ContentTypeMarkdown = "text/markdown"
	ContentTypePlain    = "text/plain"
)

var (
	ErrMissingName    = errors.New("manifest: name is required")
	ErrMissingVersion = errors.New("manifest: version is required")

	// distribution, package and requirement names
	namePattern    = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	packagePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// PackageManifest is the static record describing one check distribution.
// It is built once per packaging run and never mutated afterwards.
type PackageManifest struct {
	Name                       string   `json:"name" yaml:"name"`
	Version                    string   `json:"version" yaml:"version"`
	Description                string   `json:"description" yaml:"description"`
	LongDescription            string   `json:"long_description" yaml:"long_description"`
	LongDescriptionContentType string   `json:"long_description_content_type,omitempty" yaml:"long_description_content_type,omitempty"`
	Keywords                   string   `json:"keywords" yaml:"keywords"`
	URL                        string   `json:"url" yaml:"url"`
	Author                     string   `json:"author" yaml:"author"`
	AuthorEmail                string   `json:"author_email" yaml:"author_email"`
	License                    string   `json:"license" yaml:"license"`
	Classifiers                []string `json:"classifiers" yaml:"classifiers"`
	Packages                   []string `json:"packages" yaml:"packages"`
	InstallRequires            []string `json:"install_requires" yaml:"install_requires"`
	IncludePackageData         bool     `json:"include_package_data" yaml:"include_package_data"`
}

// SetPackages stores packages as a set: sorted, without duplicates or
// empty entries.
func (m *PackageManifest) SetPackages(packages ...string) {
	set := make([]string, 0, len(packages))
	for _, p := range packages {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(set, p) {
			continue
		}
		set = append(set, p)
	}
	slices.Sort(set)
	m.Packages = set
}

// ArchiveName returns the base name used for files derived from the
// manifest, e.g. "datadog-bind9-1.0.0".
func (m PackageManifest) ArchiveName() string {
	return m.Name + "-" + m.Version
}

// Validate reports the first structural problem found in the manifest.
func (m PackageManifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("manifest: invalid name %q", m.Name)
	}
	if strings.TrimSpace(m.Version) == "" {
		return ErrMissingVersion
	}
	if strings.ContainsAny(m.Version, " \t\r\n/") {
		return fmt.Errorf("manifest %s: invalid version %q", m.Name, m.Version)
	}
	for _, p := range m.Packages {
		if !packagePattern.MatchString(p) {
			return fmt.Errorf("manifest %s: invalid package %q", m.Name, p)
		}
	}
	for _, r := range m.InstallRequires {
		if !namePattern.MatchString(requirementName(r)) {
			return fmt.Errorf("manifest %s: invalid requirement %q", m.Name, r)
		}
	}
	return nil
}

// requirementName strips version specifiers, extras and markers from a
// requirement string.
func requirementName(req string) string {
	req = strings.TrimSpace(req)
	if i := strings.IndexAny(req, "[<>=!~;( "); i >= 0 {
		req = req[:i]
	}
	return req
}
