package toolchain

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"checkpack.szuro.net/internal/logger"
	pluginPkg "checkpack.szuro.net/pkg/plugin"
	"github.com/hashicorp/go-plugin"
)

const pluginPrefix = "plugin:"

// Factory creates a built-in toolchain.
type Factory func() pluginPkg.Toolchain

// Registry knows the built-in toolchains and the plugin executables loaded
// from a directory.
type Registry struct {
	builtins map[string]Factory
	plugins  map[string]*LoadedPlugin
	mutex    sync.RWMutex
}

// LoadedPlugin represents a plugin executable with its go-plugin client.
type LoadedPlugin struct {
	Name   string
	Path   string
	Client *plugin.Client
}

func NewRegistry() *Registry {
	return &Registry{
		builtins: make(map[string]Factory),
		plugins:  make(map[string]*LoadedPlugin),
	}
}

// RegisterBuiltin makes a toolchain selectable under name.
func (r *Registry) RegisterBuiltin(name string, factory Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.builtins[name] = factory
}

// LoadPlugin prepares the plugin executable at pluginPath. The process is
// started lazily on first use.
func (r *Registry) LoadPlugin(pluginPath string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	logger.Info("Loading toolchain plugin", slog.String("path", pluginPath))

	info, err := os.Stat(pluginPath)
	if err != nil {
		return fmt.Errorf("failed to stat plugin %s: %w", pluginPath, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("plugin %s is not an executable file", pluginPath)
	}

	pluginName := filepath.Base(pluginPath)
	pluginName = strings.TrimSuffix(pluginName, filepath.Ext(pluginName))

	if loaded, exists := r.plugins[pluginName]; exists {
		if loaded.Path != pluginPath {
			return fmt.Errorf("plugin %s already loaded from %s", pluginName, loaded.Path)
		}
		logger.Info("Plugin already loaded", slog.String("name", pluginName))
		return nil
	}

	clientConfig := &plugin.ClientConfig{
		HandshakeConfig:  pluginPkg.Handshake,
		Plugins:          pluginPkg.PluginMap,
		Cmd:              exec.Command(pluginPath),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           logger.NewHCLogAdapter(),
	}

	r.plugins[pluginName] = &LoadedPlugin{
		Name:   pluginName,
		Path:   pluginPath,
		Client: plugin.NewClient(clientConfig),
	}

	logger.Info("Successfully loaded toolchain plugin",
		slog.String("name", pluginName),
		slog.String("path", pluginPath))

	return nil
}

// LoadPluginsFromDir loads all executable files in pluginDir.
func (r *Registry) LoadPluginsFromDir(pluginDir string) error {
	logger.Info("Loading toolchain plugins from directory", slog.String("dir", pluginDir))

	matches, err := filepath.Glob(filepath.Join(pluginDir, "*"))
	if err != nil {
		return fmt.Errorf("failed to list plugin files in %s: %w", pluginDir, err)
	}

	var loadErrors []string
	loadedCount := 0

	for _, pluginPath := range matches {
		if !isExecutable(pluginPath) {
			continue
		}

		if err := r.LoadPlugin(pluginPath); err != nil {
			logger.Error("Failed to load toolchain plugin", slog.String("path", pluginPath), slog.Any("error", err))
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", pluginPath, err))
		} else {
			loadedCount++
		}
	}

	logger.Info("Loaded toolchain plugins from directory", slog.Int("count", loadedCount))
	if len(loadErrors) > 0 {
		return fmt.Errorf("failed to load some plugins: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// Get returns the toolchain selected by name. Built-ins are addressed by
// their bare name, plugins as "plugin:<name>".
func (r *Registry) Get(name string) (pluginPkg.Toolchain, error) {
	if IsPluginType(name) {
		return r.dispense(ExtractPluginName(name))
	}

	r.mutex.RLock()
	factory, exists := r.builtins[name]
	r.mutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("toolchain %s not found", name)
	}
	return factory(), nil
}

func (r *Registry) dispense(pluginName string) (pluginPkg.Toolchain, error) {
	r.mutex.RLock()
	loadedPlugin, exists := r.plugins[pluginName]
	r.mutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("toolchain plugin %s not found", pluginName)
	}

	rpcClient, err := loadedPlugin.Client.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to plugin %s: %w", pluginName, err)
	}

	raw, err := rpcClient.Dispense(pluginPkg.PluginKey)
	if err != nil {
		loadedPlugin.Client.Kill()
		return nil, fmt.Errorf("failed to dispense toolchain from plugin %s: %w", pluginName, err)
	}

	tc, ok := raw.(pluginPkg.Toolchain)
	if !ok {
		loadedPlugin.Client.Kill()
		return nil, fmt.Errorf("plugin %s did not return a valid toolchain", pluginName)
	}

	return tc, nil
}

// CleanupAll shuts down all started plugins.
func (r *Registry) CleanupAll() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for name, p := range r.plugins {
		logger.Debug("Killing toolchain plugin", slog.String("name", name))
		p.Client.Kill()
	}

	r.plugins = make(map[string]*LoadedPlugin)
}

// List returns the selectable toolchain names, sorted.
func (r *Registry) List() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.builtins)+len(r.plugins))
	for name := range r.builtins {
		names = append(names, name)
	}
	for name := range r.plugins {
		names = append(names, pluginPrefix+name)
	}
	sort.Strings(names)
	return names
}

// IsPluginType returns true if the toolchain name refers to a plugin
func IsPluginType(name string) bool {
	return strings.HasPrefix(name, pluginPrefix)
}

// ExtractPluginName extracts the plugin name from a toolchain like "plugin:upload"
func ExtractPluginName(name string) string {
	if !IsPluginType(name) {
		return ""
	}
	return strings.TrimPrefix(name, pluginPrefix)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
