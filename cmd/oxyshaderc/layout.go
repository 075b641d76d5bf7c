package main

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type layoutReport struct {
	Shader      string        `yaml:"shader"`
	Fingerprint string        `yaml:"fingerprint"`
	Textures    []textureInfo `yaml:"textures,omitempty"`
	Groups      []groupInfo   `yaml:"groups,omitempty"`
}

type textureInfo struct {
	Name    string `yaml:"name"`
	Sampler string `yaml:"sampler"`
	Set     int    `yaml:"set"`
	Binding int    `yaml:"binding"`
}

type groupInfo struct {
	Name    string      `yaml:"name"`
	Set     int         `yaml:"set"`
	Binding int         `yaml:"binding"`
	Size    uint64      `yaml:"size"`
	Fields  []fieldInfo `yaml:"fields"`
}

type fieldInfo struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Offset uint64 `yaml:"offset"`
	Size   uint64 `yaml:"size"`
	Stride uint64 `yaml:"stride,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

func newLayoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout [files...]",
		Short: "Print resource bindings and std140 property group layouts as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, descs, loadErr := a.load(cmd.Context(), args)
			var errs []error
			reports := make([]layoutReport, 0, len(descs))
			for _, desc := range descs {
				r, err := buildLayoutReport(desc)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				reports = append(reports, r)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(reports); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			return errors.Join(append([]error{loadErr}, errs...)...)
		},
	}
}

// buildLayoutReport resolves the explicit binding table and group layouts of one descriptor.
func buildLayoutReport(desc *shader.ShaderDescriptor) (layoutReport, error) {
	r := layoutReport{Shader: desc.Name, Fingerprint: desc.Fingerprint()}
	layouts, err := layout.ComputeGroups(desc)
	if err != nil {
		return r, err
	}
	table, err := binding.NewBindingTable(desc, binding.ExplicitSetBinding)
	if err != nil {
		return r, err
	}
	for _, slot := range table.Slots() {
		if tex, ok := slot.Resource.Kind.(shader.TextureResource); ok {
			r.Textures = append(r.Textures, textureInfo{
				Name:    slot.Name,
				Sampler: tex.Kind.GLSLType(),
				Set:     slot.Set,
				Binding: slot.Binding,
			})
			continue
		}
		l := layouts[slot.Name]
		g := groupInfo{Name: slot.Name, Set: slot.Set, Binding: slot.Binding, Size: l.Size}
		for _, f := range l.Fields {
			g.Fields = append(g.Fields, fieldInfo{
				Name:   f.Name,
				Kind:   f.Kind.String(),
				Offset: f.Offset,
				Size:   f.Size,
				Stride: f.Stride,
				Count:  f.Count,
			})
		}
		r.Groups = append(r.Groups, g)
	}
	return r, nil
}
