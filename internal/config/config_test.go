package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetToolchains(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"Empty", nil, []string{MANIFEST_TOOLCHAIN}},
		{"Blank entries", []string{" ", ""}, []string{MANIFEST_TOOLCHAIN}},
		{"Trimmed", []string{" sdist ", "manifest"}, []string{SDIST_TOOLCHAIN, MANIFEST_TOOLCHAIN}},
		{"Plugin", []string{"plugin:print_manifest"}, []string{"plugin:print_manifest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CheckpackConf{Toolchains: tt.input}
			config.setToolchains()
			require.Equal(t, tt.expected, config.Toolchains)
		})
	}
}

func TestSetFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Valid Format - FORMAT_JSON", FORMAT_JSON, FORMAT_JSON},
		{"Valid Format - FORMAT_YAML", FORMAT_YAML, FORMAT_YAML},
		{"Short yaml", "YML", FORMAT_YAML},
		{"Empty Format", "", FORMAT_JSON},
		{"Random Format", "FNORD", FORMAT_JSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CheckpackConf{Format: tt.input}
			config.setFormat()
			if config.Format != tt.expected {
				t.Errorf("setFormat() with Format=%s = %s; want %s", tt.input, config.Format, tt.expected)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"LOUD", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			config := CheckpackConf{LogLevel: tt.input}
			config.setLogLevel()
			require.Equal(t, tt.expected, config.GetLogLevel())
		})
	}
}

func TestDefault(t *testing.T) {
	conf := Default()

	require.Equal(t, DefaultDescriptor(), conf.Descriptor)
	require.Equal(t, "datadog_checks.bind9", conf.Descriptor.PackagePath())
	require.Equal(t, filepath.Join("datadog_checks", "bind9"), conf.Descriptor.PackageDir())
	require.True(t, conf.Descriptor.IncludesPackageData())
	require.Equal(t, []string{MANIFEST_TOOLCHAIN}, conf.Toolchains)
	require.Equal(t, "dist", conf.OutputDir)
	require.Equal(t, FORMAT_JSON, conf.Format)
	require.NotNil(t, conf.Options)
}

func TestParseCheckpackConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpack.yaml")
	content := `
descriptor:
  name: datadog-unbound
  check: unbound
  classifiers:
    - "Topic :: System :: Monitoring"
  include_package_data: false
toolchains: [manifest, sdist]
manifest_format: yaml
output_dir: out
plugins_dir: /usr/lib/checkpack/plugins
package_data:
  rejected: ["tests"]
options:
  print_output: stderr
log_level: DEBUG
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	conf, err := ParseCheckpackConfig(path)
	require.NoError(t, err)

	require.Equal(t, "datadog-unbound", conf.Descriptor.Name)
	require.Equal(t, "datadog_checks.unbound", conf.Descriptor.PackagePath())
	require.Equal(t, []string{"Topic :: System :: Monitoring"}, conf.Descriptor.Classifiers)
	require.False(t, conf.Descriptor.IncludesPackageData())
	// untouched fields keep their defaults
	require.Equal(t, "datadog-checks-base", conf.Descriptor.BaseRequirement)
	require.Equal(t, "README.md", conf.Descriptor.Readme)

	require.Equal(t, []string{MANIFEST_TOOLCHAIN, SDIST_TOOLCHAIN}, conf.Toolchains)
	require.Equal(t, FORMAT_YAML, conf.Format)
	require.Equal(t, "out", conf.OutputDir)
	require.Equal(t, "/usr/lib/checkpack/plugins", conf.PluginsDir)
	require.Equal(t, slog.LevelDebug, conf.GetLogLevel())
	require.False(t, conf.PackageData.EvaluateFilter("tests/test_unbound.py"))
	require.Equal(t, map[string]string{"print_output": "stderr"}, conf.Options)
}

func TestParseCheckpackConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseCheckpackConfig(filepath.Join(dir, "missing.yaml"))
	require.True(t, errors.Is(err, fs.ErrNotExist))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("toolchains: [manifest\n"), 0o644))
	_, err = ParseCheckpackConfig(broken)
	require.ErrorContains(t, err, "cannot parse config file")

	conf, err := ParseCheckpackConfig("")
	require.NoError(t, err)
	require.Equal(t, Default(), conf)
}

func TestSetToolchainsFromFlag(t *testing.T) {
	conf := Default()
	conf.SetToolchains("sdist, plugin:print_manifest,")
	require.Equal(t, []string{SDIST_TOOLCHAIN, "plugin:print_manifest"}, conf.Toolchains)
}

func TestSetOption(t *testing.T) {
	tests := []struct {
		input    string
		key      string
		expected string
		wantErr  bool
	}{
		{"print_output=stderr", "print_output", "stderr", false},
		{" repository = testpypi ", "repository", "testpypi", false},
		{"sign=", "sign", "", false},
		{"url=https://host/a=b", "url", "https://host/a=b", false},
		{"missing", "", "", true},
		{"=value", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			conf := CheckpackConf{}
			err := conf.SetOption(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, conf.Options[tt.key])
		})
	}
}
