package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"checkpack.szuro.net/internal/logger"
	"checkpack.szuro.net/pkg/manifest"
	"github.com/stretchr/testify/require"
)

func checkRoot(t *testing.T, withAbout bool) string {
	t.Helper()
	base := t.TempDir()
	pkg := filepath.Join(base, "datadog_checks", "bind9")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "README.md"), []byte("Hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "bind9.py"), []byte("class Bind9Check: pass\n"), 0o644))
	if withAbout {
		require.NoError(t, os.WriteFile(filepath.Join(pkg, "__about__.py"), []byte("__version__ = \"1.0.0\"\n"), 0o644))
	}
	return base
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunBuildsManifestAndSdist(t *testing.T) {
	base := checkRoot(t, true)
	out := filepath.Join(t.TempDir(), "dist")

	code, stdout, stderr := runCLI(t, "-d", base, "-o", out, "-t", "manifest,sdist")
	require.Equal(t, 0, code, stderr)

	artifacts := strings.Fields(stdout)
	require.Equal(t, []string{
		filepath.Join(out, "datadog-bind9-1.0.0.manifest.json"),
		filepath.Join(out, "datadog-bind9-1.0.0.tar.gz"),
	}, artifacts)

	data, err := os.ReadFile(artifacts[0])
	require.NoError(t, err)
	var m manifest.PackageManifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "1.0.0", m.Version)
	require.Equal(t, "Hello", m.LongDescription)
	require.Equal(t, []string{"datadog-checks-base"}, m.InstallRequires)
	require.Equal(t, []string{"datadog_checks.bind9"}, m.Packages)
}

func TestRunMissingMetadata(t *testing.T) {
	base := checkRoot(t, false)
	out := filepath.Join(t.TempDir(), "dist")

	code, stdout, stderr := runCLI(t, "-d", base, "-o", out)
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "input file not found")

	_, err := os.Stat(out)
	require.True(t, os.IsNotExist(err), "no output expected")
}

func TestRunConfigFile(t *testing.T) {
	base := checkRoot(t, true)
	out := t.TempDir()
	conf := filepath.Join(t.TempDir(), "checkpack.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("manifest_format: yaml\noutput_dir: "+out+"\nlog_level: ERROR\n"), 0o644))

	code, stdout, stderr := runCLI(t, "-c", conf, "-d", base)
	require.Equal(t, 0, code, stderr)
	require.Equal(t, filepath.Join(out, "datadog-bind9-1.0.0.manifest.yaml")+"\n", stdout)
	require.Empty(t, stderr)
}

func TestRunUnknownToolchain(t *testing.T) {
	base := checkRoot(t, true)

	code, _, stderr := runCLI(t, "-d", base, "-o", t.TempDir(), "-t", "wheel")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "toolchain wheel not found")
}

func TestRunListAndVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "-l")
	require.Equal(t, 0, code)
	require.Equal(t, "manifest\nprint\nsdist\n", stdout)

	code, stdout, _ = runCLI(t, "-v")
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "checkpack dev\n"))
}

func TestRunBadFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "-x")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "flag provided but not defined")
}

func TestRunBadOption(t *testing.T) {
	base := checkRoot(t, true)

	code, stdout, stderr := runCLI(t, "-d", base, "-o", t.TempDir(), "-O", "print_output")
	require.Equal(t, 2, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "expected key=value")
}

func TestRunPrintOption(t *testing.T) {
	base := checkRoot(t, true)

	// the summary goes to the process stderr, stdout only lists artifacts
	code, stdout, stderr := runCLI(t, "-d", base, "-t", "print", "-O", "print_output=stderr")
	require.Equal(t, 0, code, stderr)
	require.Empty(t, stdout)
}
