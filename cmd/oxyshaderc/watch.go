package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-shader/engine/loader"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Compile the asset directories, then recompile assets as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx)
		},
	}
}

// watch compiles everything once, then serves reload events until ctx is cancelled.
func (a *app) watch(ctx context.Context) error {
	c := cache.NewCache(cache.WithLogger(a.logger))
	compiler, err := a.newCompiler(c)
	if err != nil {
		return err
	}
	l, descs, err := a.load(ctx, nil)
	if err != nil {
		a.logger.Warn("initial load incomplete", slog.Any("error", err))
	}
	if _, err := a.compileAll(compiler, descs); err != nil {
		a.logger.Warn("initial compile incomplete", slog.Any("error", err))
	}

	w, err := loader.NewWatcher(l, c,
		loader.WithWatcherLogger(a.logger),
		loader.WithReloadHandler(func(e loader.ReloadEvent) {
			if e.Err != nil || e.Removed {
				return
			}
			desc := l.Get(e.Name)
			if desc == nil {
				return
			}
			if _, err := a.compileAll(compiler, []*shader.ShaderDescriptor{desc}); err != nil {
				a.logger.Warn("recompile failed", slog.String("shader", e.Name), slog.Any("error", err))
			}
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range a.cfg.AssetDirs {
		if err := w.Watch(dir); err != nil {
			return err
		}
	}
	a.logger.Info("watching for changes", slog.Any("dirs", a.cfg.AssetDirs))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
