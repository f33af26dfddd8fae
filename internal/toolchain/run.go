package toolchain

import (
	"context"
	"fmt"
	"log/slog"

	"checkpack.szuro.net/internal/config"
	"checkpack.szuro.net/internal/logger"
	pluginPkg "checkpack.szuro.net/pkg/plugin"
)

// NewDefaultRegistry returns a registry holding the built-in toolchains
// configured from conf, plus any plugins found in conf.PluginsDir.
func NewDefaultRegistry(conf config.CheckpackConf) (*Registry, error) {
	r := NewRegistry()
	r.RegisterBuiltin(config.MANIFEST_TOOLCHAIN, func() pluginPkg.Toolchain {
		return NewManifestFile(conf.Format)
	})
	r.RegisterBuiltin(config.SDIST_TOOLCHAIN, func() pluginPkg.Toolchain {
		return NewSdist(conf.Descriptor.Readme, conf.PackageData)
	})
	r.RegisterBuiltin(config.PRINT_TOOLCHAIN, func() pluginPkg.Toolchain {
		return NewPrint(STDOUT)
	})

	if conf.PluginsDir != "" {
		if err := r.LoadPluginsFromDir(conf.PluginsDir); err != nil {
			return r, err
		}
	}
	return r, nil
}

// Run hands req to each named toolchain in order. The first failure aborts
// the run; results of toolchains that already finished are returned with it.
func Run(ctx context.Context, r *Registry, names []string, req pluginPkg.PackageRequest) ([]pluginPkg.Result, error) {
	results := make([]pluginPkg.Result, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		tc, err := r.Get(name)
		if err != nil {
			return results, err
		}

		info := tc.Info()
		logger.Info("Running toolchain",
			slog.String("toolchain", name),
			slog.String("version", info.Version))

		result, err := tc.Package(ctx, req)
		if err != nil {
			return results, fmt.Errorf("toolchain %s: %w", name, err)
		}
		if result.Toolchain == "" {
			result.Toolchain = name
		}
		results = append(results, result)
	}

	return results, nil
}
