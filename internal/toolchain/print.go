package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"checkpack.szuro.net/internal/config"
	pluginPkg "checkpack.szuro.net/pkg/plugin"
)

const (
	STDOUT = "stdout"
	STDERR = "stderr"

	// PRINT_OUTPUT_OPTION selects stdout or stderr for a single run.
	PRINT_OUTPUT_OPTION = "print_output"
)

// Print writes a human readable summary of the manifest. It produces no
// artifacts and is meant for dry runs.
type Print struct {
	out io.Writer
}

func NewPrint(out string) (p *Print) {
	p = &Print{}
	if out == STDERR {
		p.out = os.Stderr
	} else {
		p.out = os.Stdout
	}
	return
}

func (p *Print) Info() pluginPkg.PluginInfo {
	return pluginPkg.PluginInfo{
		Name:        config.PRINT_TOOLCHAIN,
		Version:     config.Version,
		Description: "Prints the package manifest",
		Author:      "checkpack",
	}
}

func (p *Print) Package(ctx context.Context, req pluginPkg.PackageRequest) (pluginPkg.Result, error) {
	out := p.writer(req.Options)
	m := req.Manifest
	lines := []string{
		fmt.Sprintf("Name: %s; Version: %s; License: %s", m.Name, m.Version, m.License),
		fmt.Sprintf("Packages: %s", strings.Join(m.Packages, ", ")),
		fmt.Sprintf("Requires: %s", strings.Join(m.InstallRequires, ", ")),
		fmt.Sprintf("Classifiers: %d; Package data: %t; Long description: %d bytes",
			len(m.Classifiers), m.IncludePackageData, len(m.LongDescription)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return pluginPkg.Result{}, err
		}
	}
	return pluginPkg.Result{Toolchain: config.PRINT_TOOLCHAIN}, nil
}

func (p *Print) writer(options map[string]string) io.Writer {
	switch options[PRINT_OUTPUT_OPTION] {
	case STDOUT:
		return os.Stdout
	case STDERR:
		return os.Stderr
	default:
		return p.out
	}
}
