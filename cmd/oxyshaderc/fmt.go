package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/spf13/cobra"
)

func newFmtCommand(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Print shader assets in canonical form",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, descs, loadErr := a.load(cmd.Context(), args)
			var errs []error
			for _, desc := range descs {
				text := shader.Marshal(desc)
				if !write {
					printf(cmd.OutOrStdout(), "%s\n", text)
					continue
				}
				path, ok := l.Path(desc.Name)
				if !ok {
					continue
				}
				if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
					errs = append(errs, fmt.Errorf("fmt: %w", err))
					continue
				}
				printf(cmd.OutOrStdout(), "%s\n", path)
			}
			return errors.Join(append([]error{loadErr}, errs...)...)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the source files instead of printing")
	return cmd
}
