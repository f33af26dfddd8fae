// This file defines the go-plugin wrapper for the toolchain service.
// Plugins run as separate processes and communicate via net/rpc.
package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// PluginKey is the name toolchains are dispensed under.
const PluginKey = "toolchain"

// Handshake is the shared configuration between checkpack and plugins.
// This must match exactly between the main application and all plugins
// to ensure compatibility.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "CHECKPACK_PLUGIN",
	MagicCookieValue: "check_package_toolchain",
}

// PluginMap is the set of plugins checkpack knows how to dispense.
var PluginMap = map[string]plugin.Plugin{
	PluginKey: &ToolchainPlugin{},
}

// ToolchainPlugin is the implementation of the plugin.Plugin interface
// for HashiCorp go-plugin. This handles the net/rpc server/client setup.
type ToolchainPlugin struct {
	// Impl is the concrete implementation of the toolchain, set on the
	// plugin side only.
	Impl Toolchain
}

func (p *ToolchainPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &ToolchainRPCServer{Impl: p.Impl}, nil
}

func (p *ToolchainPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ToolchainRPC{client: c}, nil
}

// ToolchainRPC is the client side of a plugin toolchain. It implements
// Toolchain so callers need not care where the toolchain runs.
type ToolchainRPC struct {
	client *rpc.Client
}

func (t *ToolchainRPC) Info() PluginInfo {
	var resp PluginInfo
	if err := t.client.Call("Plugin.Info", new(interface{}), &resp); err != nil {
		return PluginInfo{}
	}
	return resp
}

// Package forwards the request to the plugin process. Cancelling ctx stops
// waiting for the reply; the plugin itself is stopped when its client is
// killed.
func (t *ToolchainRPC) Package(ctx context.Context, req PackageRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var resp Result
	call := t.client.Go("Plugin.Package", req, &resp, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-call.Done:
		if call.Error != nil {
			return Result{}, call.Error
		}
		return resp, nil
	}
}

// ToolchainRPCServer is the plugin side of the RPC connection.
type ToolchainRPCServer struct {
	Impl Toolchain
}

func (s *ToolchainRPCServer) Info(args interface{}, resp *PluginInfo) error {
	*resp = s.Impl.Info()
	return nil
}

func (s *ToolchainRPCServer) Package(req PackageRequest, resp *Result) error {
	result, err := s.Impl.Package(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = result
	return nil
}
