package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"checkpack.szuro.net/internal/config"
	"checkpack.szuro.net/internal/descriptor"
	"checkpack.szuro.net/internal/logger"
	"checkpack.szuro.net/internal/toolchain"
	pluginPkg "checkpack.szuro.net/pkg/plugin"
)

func printVersionInfo(w io.Writer) {
	fmt.Fprintf(w, "checkpack %s\n", config.Version)
	fmt.Fprintf(w, "Git commit: %s\n", config.Commit)
	fmt.Fprintf(w, "Compilation time: %s\n", config.BuildDate)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("checkpack", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("c", "", "Path of config file")
	baseDir := flags.String("d", ".", "Package root of the check")
	outputDir := flags.String("o", "", "Output directory, overrides output_dir")
	toolchains := flags.String("t", "", "Comma separated toolchains, overrides toolchains")
	var options []string
	flags.Func("O", "Toolchain option as key=value, overrides options (repeatable)", func(kv string) error {
		options = append(options, kv)
		return nil
	})
	list := flags.Bool("l", false, "List available toolchains")
	version := flags.Bool("v", false, "Show version info")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *version {
		printVersionInfo(stdout)
		return 0
	}

	conf, err := config.ParseCheckpackConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger.SetDefault(logger.NewTextLogger(stderr, conf.GetLogLevel()))

	if *outputDir != "" {
		conf.OutputDir = *outputDir
	}
	if *toolchains != "" {
		conf.SetToolchains(*toolchains)
	}
	for _, kv := range options {
		if err := conf.SetOption(kv); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	registry, err := toolchain.NewDefaultRegistry(conf)
	defer registry.CleanupAll()
	if err != nil {
		// plugins are optional, the built-ins still work
		logger.Warn("Failed to load plugins", slog.Any("error", err))
	}

	if *list {
		for _, name := range registry.List() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	logger.Info("Building manifest",
		slog.String("package", conf.Descriptor.Name),
		slog.String("base_dir", *baseDir))

	m, err := descriptor.Build(*baseDir, conf.Descriptor)
	if err != nil {
		logger.Error("Cannot build manifest", slog.Any("error", err))
		return 1
	}

	results, err := toolchain.Run(ctx, registry, conf.Toolchains, pluginPkg.PackageRequest{
		Manifest:  m,
		BaseDir:   *baseDir,
		OutputDir: conf.OutputDir,
		Options:   conf.Options,
	})
	if err != nil {
		logger.Error("Packaging failed", slog.Any("error", err))
		return 1
	}

	for _, r := range results {
		for _, artifact := range r.Artifacts {
			fmt.Fprintln(stdout, artifact)
		}
	}
	logger.Info("Done", slog.String("package", m.Name), slog.String("version", m.Version))
	return 0
}
