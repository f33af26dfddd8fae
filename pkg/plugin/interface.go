// Package plugin provides interfaces and types for creating checkpack
// toolchain plugins.
//
// A toolchain receives the package manifest built for a check and turns it
// into something distributable: a manifest file, a source archive, an upload
// to an index server. checkpack ships built-in toolchains and can launch
// external ones as HashiCorp go-plugin executables found in the configured
// plugin directory.
//
// Creating a Plugin:
//
// 1. Implement the Toolchain interface
// 2. Serve it with plugin.Serve using Handshake and ToolchainPlugin
// 3. Drop the binary into plugins_dir and select it as "plugin:<binary name>"
//
// Example plugin structure:
//
//	package main
//
//	import (
//	    "github.com/hashicorp/go-plugin"
//	    pluginPkg "checkpack.szuro.net/pkg/plugin"
//	)
//
//	type Upload struct{}
//
//	func (u *Upload) Info() pluginPkg.PluginInfo {
//	    return pluginPkg.PluginInfo{Name: "upload", Version: "1.0.0"}
//	}
//
//	func (u *Upload) Package(ctx context.Context, req pluginPkg.PackageRequest) (pluginPkg.Result, error) {
//	    // publish req.Manifest
//	    return pluginPkg.Result{}, nil
//	}
//
//	func main() {
//	    plugin.Serve(&plugin.ServeConfig{
//	        HandshakeConfig: pluginPkg.Handshake,
//	        Plugins: map[string]plugin.Plugin{
//	            pluginPkg.PluginKey: &pluginPkg.ToolchainPlugin{Impl: &Upload{}},
//	        },
//	    })
//	}
package plugin

import (
	"context"

	"checkpack.szuro.net/pkg/manifest"
)

// PluginInfo contains metadata about a toolchain.
type PluginInfo struct {
	// Name is the identifier used to select the toolchain.
	Name string

	// Version is the semantic version of the toolchain (e.g., "1.0.0").
	Version string

	// Description provides a brief description of what the toolchain does.
	Description string

	// Author identifies who created or maintains the toolchain.
	Author string
}

// PackageRequest is everything a toolchain gets to work with.
type PackageRequest struct {
	Manifest manifest.PackageManifest

	// BaseDir is the package root the manifest was built from.
	BaseDir string

	// OutputDir is where artifacts should be written.
	OutputDir string

	// Options carries free-form toolchain settings, taken from the
	// "options" config key and -O flags.
	Options map[string]string
}

// Result lists what a toolchain produced.
type Result struct {
	Toolchain string
	Artifacts []string
}

// Toolchain consumes a package manifest.
type Toolchain interface {
	Info() PluginInfo
	Package(ctx context.Context, req PackageRequest) (Result, error)
}
