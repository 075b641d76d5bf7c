package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Carmen-Shannon/oxy-shader/engine"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/spf13/cobra"
)

func newCompileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compile [files...]",
		Short: "Emit every pass of every asset for the configured backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Watch && len(args) == 0 {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return a.watch(ctx)
			}
			_, descs, loadErr := a.load(cmd.Context(), args)
			c, err := a.newCompiler(cache.NewCache(cache.WithLogger(a.logger)))
			if err != nil {
				return err
			}
			written, compileErr := a.compileAll(c, descs)
			printf(cmd.OutOrStdout(), "wrote %d files to %s\n", written, a.cfg.OutputDir)
			return errors.Join(loadErr, compileErr)
		},
	}
}

// compileAll compiles descs for every configured backend and writes the results.
func (a *app) compileAll(c engine.Compiler, descs []*shader.ShaderDescriptor) (int, error) {
	backends, err := a.cfg.ParsedBackends()
	if err != nil {
		return 0, err
	}
	var errs []error
	written := 0
	for _, b := range backends {
		programs, err := c.CompileLibrary(descs, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b, err))
		}
		for _, desc := range descs {
			prog, ok := programs[desc.Name]
			if !ok {
				continue
			}
			n, err := writeProgram(a.cfg.OutputDir, prog)
			written += n
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return written, errors.Join(errs...)
}

// writeProgram writes <dir>/<backend>/<shader>/<pass>.<stage>.glsl for every stage.
func writeProgram(dir string, prog *emitter.Program) (int, error) {
	base := filepath.Join(dir, prog.Backend.String(), prog.Shader)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return 0, err
	}
	written := 0
	for _, ps := range prog.Passes {
		for _, stage := range shader.ShaderTypes {
			src := ps.Stage(stage)
			name := filepath.Join(base, fmt.Sprintf("%s.%s.glsl", ps.Pass, stage))
			if err := os.WriteFile(name, []byte(src.Code), 0o644); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}
