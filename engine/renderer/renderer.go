// Package renderer keeps the render-side view of a shader library for one backend: the
// pipelines of every registered descriptor, keyed by pipeline key, and the uniform buffer
// writes staged by materials until the GPU side drains them.
package renderer

import (
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/oxy-shader/engine"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	backend  emitter.Backend
	compiler engine.Compiler

	pipelineCache map[string]pipeline.Pipeline
	shaders       map[string]*shader.ShaderDescriptor
	shaderKeys    map[string][]string

	pendingWrites []material.BufferWrite
}

// Renderer defines the registry of compiled shaders and pipelines for one backend.
type Renderer interface {
	// Backend returns the backend pipelines are compiled for.
	Backend() emitter.Backend

	// Compiler returns the compiler used to register shaders.
	Compiler() engine.Compiler

	// RegisterShader compiles desc and caches one pipeline per pass. Registering a descriptor
	// whose name is already registered replaces its pipelines; an unchanged fingerprint is a no-op.
	//
	// Parameters:
	//   - desc: the descriptor to register
	//
	// Returns:
	//   - []pipeline.Pipeline: the pipelines of desc, in pass order
	//   - error: the compilation error, in which case the previous registration is kept
	RegisterShader(desc *shader.ShaderDescriptor) ([]pipeline.Pipeline, error)

	// UnregisterShader drops a descriptor and its pipelines.
	//
	// Parameters:
	//   - name: the descriptor name
	//
	// Returns:
	//   - int: the number of pipelines removed
	UnregisterShader(name string) int

	// Shader returns a registered descriptor, or nil.
	Shader(name string) *shader.ShaderDescriptor

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// SetPipeline adds or updates a Pipeline in the cache with the given key.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to add or update in the cache
	//   - p: the Pipeline to add or update in the cache
	SetPipeline(key string, p pipeline.Pipeline)

	// BindGroupLayouts returns the explicit bind group layouts of a registered descriptor.
	//
	// Parameters:
	//   - name: the descriptor name
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: one layout per set
	//   - error: error if the descriptor is not registered or its layouts cannot be derived
	BindGroupLayouts(name string) (map[int]wgpu.BindGroupLayoutDescriptor, error)

	// NewMaterial creates a material for a registered descriptor, keyed to the pipeline of
	// the given pass.
	//
	// Parameters:
	//   - shaderName: the descriptor name
	//   - pass: the pass the material draws with
	//   - options: material options applied after the pipeline key is set
	//
	// Returns:
	//   - material.Material: the new material
	//   - error: error if the descriptor or pass is not registered
	NewMaterial(shaderName, pass string, options ...material.MaterialBuilderOption) (material.Material, error)

	// WriteBuffers stages the uniform data of materials for the next DrainWrites.
	//
	// Parameters:
	//   - materials: the materials whose property groups should be uploaded
	//
	// Returns:
	//   - error: the first encoding error; nothing is staged for the failing material
	WriteBuffers(materials ...material.Material) error

	// DrainWrites returns and clears the staged buffer writes in staging order.
	DrainWrites() []material.BufferWrite
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for one backend with the options applied.
//
// Parameters:
//   - backend: the target backend
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(backend emitter.Backend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backend:       backend,
		pipelineCache: make(map[string]pipeline.Pipeline),
		shaders:       make(map[string]*shader.ShaderDescriptor),
		shaderKeys:    make(map[string][]string),
	}
	for _, option := range options {
		option(r)
	}
	if r.compiler == nil {
		r.compiler = engine.NewCompiler()
	}
	return r
}

func (r *renderer) Backend() emitter.Backend {
	return r.backend
}

func (r *renderer) Compiler() engine.Compiler {
	return r.compiler
}

func (r *renderer) RegisterShader(desc *shader.ShaderDescriptor) ([]pipeline.Pipeline, error) {
	if desc == nil {
		panic("renderer: nil shader descriptor")
	}
	r.mu.Lock()
	if old, ok := r.shaders[desc.Name]; ok && old.Fingerprint() == desc.Fingerprint() {
		out := r.pipelinesOf(desc.Name)
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	pipelines, err := r.compiler.Pipelines(desc, r.backend)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(desc.Name)
	keys := make([]string, 0, len(pipelines))
	for _, p := range pipelines {
		r.pipelineCache[p.PipelineKey()] = p
		keys = append(keys, p.PipelineKey())
	}
	r.shaders[desc.Name] = desc
	r.shaderKeys[desc.Name] = keys
	return pipelines, nil
}

func (r *renderer) UnregisterShader(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropLocked(name)
}

// dropLocked removes a descriptor's pipelines. The caller holds r.mu.
func (r *renderer) dropLocked(name string) int {
	keys := r.shaderKeys[name]
	for _, k := range keys {
		delete(r.pipelineCache, k)
	}
	delete(r.shaderKeys, name)
	delete(r.shaders, name)
	return len(keys)
}

func (r *renderer) pipelinesOf(name string) []pipeline.Pipeline {
	keys := r.shaderKeys[name]
	out := make([]pipeline.Pipeline, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.pipelineCache[k])
	}
	return out
}

func (r *renderer) Shader(name string) *shader.ShaderDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shaders[name]
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) SetPipeline(key string, p pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache[key] = p
}

func (r *renderer) BindGroupLayouts(name string) (map[int]wgpu.BindGroupLayoutDescriptor, error) {
	desc := r.Shader(name)
	if desc == nil {
		return nil, fmt.Errorf("renderer: shader %q is not registered", name)
	}
	return r.compiler.BindGroupLayouts(desc)
}

func (r *renderer) NewMaterial(shaderName, pass string, options ...material.MaterialBuilderOption) (material.Material, error) {
	desc := r.Shader(shaderName)
	if desc == nil {
		return nil, fmt.Errorf("renderer: shader %q is not registered", shaderName)
	}
	key := engine.PipelineKey(shaderName, pass, r.backend)
	if r.Pipeline(key) == nil {
		return nil, fmt.Errorf("renderer: shader %q has no pass %q", shaderName, pass)
	}
	opts := append([]material.MaterialBuilderOption{material.WithPipelineKey(key)}, options...)
	return material.NewMaterial(desc, opts...), nil
}

func (r *renderer) WriteBuffers(materials ...material.Material) error {
	var staged []material.BufferWrite
	for _, m := range materials {
		writes, err := m.BufferWrites()
		if err != nil {
			return fmt.Errorf("renderer: material %q: %w", m.Name(), err)
		}
		staged = append(staged, writes...)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingWrites = append(r.pendingWrites, staged...)
	return nil
}

func (r *renderer) DrainWrites() []material.BufferWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pendingWrites
	r.pendingWrites = nil
	return out
}
