package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"checkpack.szuro.net/internal/filter"
	"gopkg.in/yaml.v3"
)

// Build information, set with -ldflags at link time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const (
	MANIFEST_TOOLCHAIN = "manifest"
	SDIST_TOOLCHAIN    = "sdist"
	PRINT_TOOLCHAIN    = "print"

	FORMAT_JSON = "json"
	FORMAT_YAML = "yaml"
)

type CheckpackConf struct {
	Descriptor  Descriptor        `yaml:"descriptor"`
	Toolchains  []string          `yaml:"toolchains"`
	OutputDir   string            `yaml:"output_dir"`
	Format      string            `yaml:"manifest_format"`
	PluginsDir  string            `yaml:"plugins_dir"`
	PackageData filter.Filter     `yaml:"package_data"`
	Options     map[string]string `yaml:"options"`
	LogLevel    string            `yaml:"log_level"`
	slogLevel   slog.Level        `yaml:"omitempty"`
}

// Descriptor holds the static fields of the package manifest. Version and
// long description are read from the check sources at build time.
type Descriptor struct {
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	Keywords           string   `yaml:"keywords"`
	URL                string   `yaml:"url"`
	Author             string   `yaml:"author"`
	AuthorEmail        string   `yaml:"author_email"`
	License            string   `yaml:"license"`
	Classifiers        []string `yaml:"classifiers"`
	Namespace          string   `yaml:"namespace"`
	Check              string   `yaml:"check"`
	Readme             string   `yaml:"readme"`
	BaseRequirement    string   `yaml:"base_requirement"`
	IncludePackageData *bool    `yaml:"include_package_data"`
}

// DefaultDescriptor describes the bind9 check.
func DefaultDescriptor() Descriptor {
	include := true
	return Descriptor{
		Name:        "datadog-bind9",
		Description: "my_check collects my metrics.",
		Keywords:    "datadog agent check",
		URL:         "https://github.com/DataDog/integrations-extras",
		Author:      "ashuvyas45",
		AuthorEmail: "ashuvyas45@gmail.com",
		License:     "BSD",
		Classifiers: []string{
			"Development Status :: 5 - Production/Stable",
			"Intended Audience :: Developers",
			"Intended Audience :: System Administrators",
			"Topic :: System :: Monitoring",
			"License :: OSI Approved :: BSD License",
			"Programming Language :: Python :: 2.7",
			"Programming Language :: Python :: 3.7",
		},
		Namespace:          "datadog_checks",
		Check:              "bind9",
		Readme:             "README.md",
		BaseRequirement:    "datadog-checks-base",
		IncludePackageData: &include,
	}
}

// PackagePath is the dotted module path of the check, e.g.
// "datadog_checks.bind9".
func (d Descriptor) PackagePath() string {
	return d.Namespace + "." + d.Check
}

// PackageDir is the check's source directory relative to the package root.
func (d Descriptor) PackageDir() string {
	return filepath.Join(d.Namespace, d.Check)
}

func (d Descriptor) IncludesPackageData() bool {
	return d.IncludePackageData != nil && *d.IncludePackageData
}

// Default returns the configuration used when no file is given.
func Default() CheckpackConf {
	conf := CheckpackConf{}
	conf.applyDefaults()
	return conf
}

// ParseCheckpackConfig reads the YAML configuration at path and applies
// defaults. An empty path yields Default().
func ParseCheckpackConfig(path string) (conf CheckpackConf, err error) {
	if path == "" {
		return Default(), nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return conf, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return conf, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	conf = CheckpackConf{}
	if err = yaml.Unmarshal(file, &conf); err != nil {
		return conf, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	conf.applyDefaults()
	return conf, nil
}

func (cc *CheckpackConf) applyDefaults() {
	cc.setDescriptor()
	cc.setToolchains()
	cc.setFormat()
	cc.setOutputDir()
	cc.setLogLevel()
	cc.setOptions()
	cc.PackageData.Activate()
}

func (cc *CheckpackConf) setLogLevel() {
	switch strings.ToUpper(cc.LogLevel) {
	case "DEBUG":
		cc.slogLevel = slog.LevelDebug
	case "INFO":
		cc.slogLevel = slog.LevelInfo
	case "WARN":
		cc.slogLevel = slog.LevelWarn
	case "ERROR":
		cc.slogLevel = slog.LevelError
	default:
		cc.slogLevel = slog.LevelInfo
	}
}

func (cc *CheckpackConf) GetLogLevel() slog.Level {
	return cc.slogLevel
}

// setDescriptor fills every unset descriptor field from DefaultDescriptor.
func (cc *CheckpackConf) setDescriptor() {
	def := DefaultDescriptor()
	d := &cc.Descriptor

	setString := func(field *string, value string) {
		if strings.TrimSpace(*field) == "" {
			*field = value
		}
	}
	setString(&d.Name, def.Name)
	setString(&d.Description, def.Description)
	setString(&d.Keywords, def.Keywords)
	setString(&d.URL, def.URL)
	setString(&d.Author, def.Author)
	setString(&d.AuthorEmail, def.AuthorEmail)
	setString(&d.License, def.License)
	setString(&d.Namespace, def.Namespace)
	setString(&d.Check, def.Check)
	setString(&d.Readme, def.Readme)
	setString(&d.BaseRequirement, def.BaseRequirement)

	if d.Classifiers == nil {
		d.Classifiers = def.Classifiers
	}
	if d.IncludePackageData == nil {
		d.IncludePackageData = def.IncludePackageData
	}
}

func (cc *CheckpackConf) setToolchains() {
	toolchains := make([]string, 0, len(cc.Toolchains))
	for _, t := range cc.Toolchains {
		t = strings.TrimSpace(t)
		if t != "" {
			toolchains = append(toolchains, t)
		}
	}
	if len(toolchains) == 0 {
		toolchains = []string{MANIFEST_TOOLCHAIN}
	}
	cc.Toolchains = toolchains
}

func (cc *CheckpackConf) setFormat() {
	switch strings.ToLower(cc.Format) {
	case FORMAT_YAML, "yml":
		cc.Format = FORMAT_YAML
	default:
		cc.Format = FORMAT_JSON
	}
}

func (cc *CheckpackConf) setOptions() {
	if cc.Options == nil {
		cc.Options = make(map[string]string)
	}
}

// SetOption overrides a single toolchain option, as given on the command
// line in key=value form.
func (cc *CheckpackConf) SetOption(kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("invalid option %q, expected key=value", kv)
	}
	cc.setOptions()
	cc.Options[key] = strings.TrimSpace(value)
	return nil
}

func (cc *CheckpackConf) setOutputDir() {
	if cc.OutputDir == "" {
		cc.OutputDir = "dist"
	}
}

// SetToolchains overrides the configured toolchains with a comma separated
// list, as given on the command line.
func (cc *CheckpackConf) SetToolchains(list string) {
	cc.Toolchains = strings.Split(list, ",")
	cc.setToolchains()
}
