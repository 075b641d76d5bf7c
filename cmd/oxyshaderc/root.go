package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-shader/engine"
	"github.com/Carmen-Shannon/oxy-shader/engine/config"
	"github.com/Carmen-Shannon/oxy-shader/engine/loader"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger

	// flag values, applied over cfg only when set on the command line
	assetDirs     []string
	backends      []string
	sharedLibrary string
	workers       int
	logLevel      string
	outputDir     string
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "oxyshaderc",
		Short:         "Compile oxy shader assets for OpenGL, OpenGL ES and Vulkan",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", "", "configuration file (default "+config.DefaultFile+")")
	f.StringSliceVar(&a.assetDirs, "asset-dir", nil, "directory scanned for .shader files, repeatable")
	f.StringSliceVarP(&a.backends, "backend", "b", nil, "target backend: opengl, opengles or vulkan, repeatable")
	f.StringVar(&a.sharedLibrary, "shared-library", "", "GLSL file replacing the embedded shared library")
	f.IntVarP(&a.workers, "workers", "j", 0, "parallel compilations")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVarP(&a.outputDir, "out", "o", "", "output directory")

	root.AddCommand(
		newCompileCommand(a),
		newLayoutCommand(a),
		newFmtCommand(a),
		newWatchCommand(a),
	)
	return root
}

// configure loads the configuration file and layers the changed flags over it.
func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("asset-dir") {
		cfg.AssetDirs = a.assetDirs
	}
	if flags.Changed("backend") {
		cfg.Backends = a.backends
	}
	if flags.Changed("shared-library") {
		cfg.SharedLibrary = a.sharedLibrary
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("out") {
		cfg.OutputDir = a.outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logger()
	return nil
}

// newCompiler builds a compiler around c using the configured shared library and workers.
func (a *app) newCompiler(c cache.Cache) (engine.Compiler, error) {
	emitterOpts := []emitter.EmitterBuilderOption{emitter.WithLogger(a.logger)}
	if a.cfg.SharedLibrary != "" {
		src, err := os.ReadFile(a.cfg.SharedLibrary)
		if err != nil {
			return nil, fmt.Errorf("shared library: %w", err)
		}
		emitterOpts = append(emitterOpts, emitter.WithSharedLibrary(string(src)))
	}
	return engine.NewCompiler(
		engine.WithEmitter(emitter.NewEmitter(emitterOpts...)),
		engine.WithCache(c),
		engine.WithWorkers(a.cfg.Workers),
		engine.WithLogger(a.logger),
		engine.WithProfiling(a.logger.Enabled(context.Background(), slog.LevelDebug)),
	), nil
}

// load reads the named asset files, or every configured asset directory when files is empty.
func (a *app) load(ctx context.Context, files []string) (loader.Loader, []*shader.ShaderDescriptor, error) {
	l := loader.NewLoader(loader.WithWorkers(a.cfg.Workers), loader.WithLogger(a.logger))
	if len(files) == 0 {
		descs, err := l.LoadDirs(ctx, a.cfg.AssetDirs...)
		return l, descs, err
	}
	descs := make([]*shader.ShaderDescriptor, 0, len(files))
	for _, f := range files {
		desc, err := l.Load(f)
		if err != nil {
			return l, descs, err
		}
		descs = append(descs, desc)
	}
	return l, descs, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
