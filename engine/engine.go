// Package engine ties the shader pipeline together: descriptors are emitted per backend
// through a coalescing cache, and the results are turned into pipeline state and bind group
// layouts for the GPU side.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shader/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// compiler implements the Compiler interface.
type compiler struct {
	emitter emitter.Emitter
	cache   cache.Cache
	logger  *slog.Logger

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int
	taskMu  sync.Mutex

	profiler         *profiler.Profiler
	profilingEnabled bool

	pipelineOptions []pipeline.PipelineBuilderOption
}

// Compiler is the main entry point for turning shader descriptors into backend programs.
type Compiler interface {
	// Compile emits every pass of desc for one backend. Results are cached by descriptor name,
	// fingerprint and backend, and concurrent calls for the same key share one emission.
	//
	// Parameters:
	//   - desc: the descriptor to compile
	//   - backend: the target backend
	//
	// Returns:
	//   - *emitter.Program: the emitted program
	//   - error: a layout, binding or emission error
	Compile(desc *shader.ShaderDescriptor, backend emitter.Backend) (*emitter.Program, error)

	// CompileLibrary compiles many descriptors for one backend on the worker pool. Every
	// descriptor is attempted; failures are joined and prefixed with the descriptor name.
	//
	// Parameters:
	//   - descs: the descriptors to compile
	//   - backend: the target backend
	//
	// Returns:
	//   - map[string]*emitter.Program: the programs that compiled, keyed by descriptor name
	//   - error: the joined failures, or nil
	CompileLibrary(descs []*shader.ShaderDescriptor, backend emitter.Backend) (map[string]*emitter.Program, error)

	// Pipelines compiles desc and builds one pipeline per pass, in pass order.
	//
	// Parameters:
	//   - desc: the descriptor
	//   - backend: the target backend
	//
	// Returns:
	//   - []pipeline.Pipeline: the pipelines, each keyed by PipelineKey
	//   - error: the compilation error
	Pipelines(desc *shader.ShaderDescriptor, backend emitter.Backend) ([]pipeline.Pipeline, error)

	// BindGroupLayouts derives the explicit bind group layouts of desc. Stage visibility comes
	// from the Vulkan emission, so a resource only one stage declares is visible only there.
	//
	// Parameters:
	//   - desc: the descriptor
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: one layout per set
	//   - error: a layout, binding or emission error
	BindGroupLayouts(desc *shader.ShaderDescriptor) (map[int]wgpu.BindGroupLayoutDescriptor, error)

	// Layouts resolves the std140 layout of every property group of desc.
	Layouts(desc *shader.ShaderDescriptor) (map[string]layout.ResolvedLayout, error)

	// Invalidate drops every cached program of a descriptor name.
	//
	// Returns:
	//   - int: the number of entries removed
	Invalidate(name string) int

	// Cache returns the program cache.
	Cache() cache.Cache

	// Emitter returns the emitter programs are produced with.
	Emitter() emitter.Emitter

	// Profiler returns the compile timing profiler.
	Profiler() *profiler.Profiler
}

var _ Compiler = &compiler{}

// NewCompiler creates a Compiler with the options applied. Without options it uses the
// embedded shared library, a fresh cache and one worker per spare CPU.
//
// Parameters:
//   - options: functional options to configure the compiler
//
// Returns:
//   - Compiler: the new compiler
func NewCompiler(options ...CompilerBuilderOption) Compiler {
	c := &compiler{
		logger:   slog.Default(),
		workers:  max(runtime.NumCPU()-1, 1),
		profiler: profiler.NewProfiler(),
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.With(slog.String("component", "compiler"))
	if c.emitter == nil {
		c.emitter = emitter.NewEmitter(emitter.WithLogger(c.logger))
	}
	if c.cache == nil {
		c.cache = cache.NewCache(cache.WithLogger(c.logger))
	}

	// Queue size of 256 covers typical library sizes; SubmitTask blocks beyond that.
	c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	return c
}

// PipelineKey returns the key a pass pipeline is registered under.
//
// Parameters:
//   - shaderName: the descriptor name
//   - pass: the pass name
//   - backend: the target backend
//
// Returns:
//   - string: "<shader>/<pass>/<backend>"
func PipelineKey(shaderName, pass string, backend emitter.Backend) string {
	return fmt.Sprintf("%s/%s/%s", shaderName, pass, backend)
}

func (c *compiler) Compile(desc *shader.ShaderDescriptor, backend emitter.Backend) (*emitter.Program, error) {
	if desc == nil {
		panic("engine: nil shader descriptor")
	}
	key := cache.Key{Shader: desc.Name, Fingerprint: desc.Fingerprint(), Backend: backend}
	return c.cache.Get(key, func() (*emitter.Program, error) {
		var prog *emitter.Program
		err := c.profiler.Time(key.String(), func() error {
			var err error
			prog, err = c.emitter.Emit(desc, backend)
			return err
		})
		return prog, err
	})
}

func (c *compiler) CompileLibrary(descs []*shader.ShaderDescriptor, backend emitter.Backend) (map[string]*emitter.Program, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		programs = make(map[string]*emitter.Program, len(descs))
		failed   = make(map[string]error)
	)

	for _, desc := range descs {
		if desc == nil {
			continue
		}
		wg.Add(1)
		d := desc
		c.pool.SubmitTask(worker.Task{
			ID: c.nextTaskID(),
			Do: func() (any, error) {
				defer wg.Done()
				prog, err := c.Compile(d, backend)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed[d.Name] = err
					return nil, nil
				}
				programs[d.Name] = prog
				return nil, nil
			},
		})
	}
	wg.Wait()

	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	slices.Sort(names)
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, failed[name]))
	}

	c.logger.Info("compiled library",
		slog.String("backend", backend.String()),
		slog.Int("programs", len(programs)),
		slog.Int("failures", len(errs)),
	)
	if c.profilingEnabled {
		c.profiler.Log(c.logger, c.cache.Stats())
	}
	return programs, errors.Join(errs...)
}

func (c *compiler) nextTaskID() int {
	c.taskMu.Lock()
	defer c.taskMu.Unlock()
	c.taskID++
	return c.taskID
}

func (c *compiler) Pipelines(desc *shader.ShaderDescriptor, backend emitter.Backend) ([]pipeline.Pipeline, error) {
	prog, err := c.Compile(desc, backend)
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.Pipeline, 0, len(desc.Passes))
	for _, pass := range desc.Passes {
		src, ok := prog.Pass(pass.Name)
		if !ok {
			return nil, fmt.Errorf("engine: program %s has no pass %q", desc.Name, pass.Name)
		}
		out = append(out, pipeline.NewPipeline(PipelineKey(desc.Name, pass.Name, backend), src, pass.DrawParameters, c.pipelineOptions...))
	}
	return out, nil
}

func (c *compiler) BindGroupLayouts(desc *shader.ShaderDescriptor) (map[int]wgpu.BindGroupLayoutDescriptor, error) {
	layouts, err := c.Layouts(desc)
	if err != nil {
		return nil, err
	}
	table, err := binding.NewBindingTable(desc, emitter.BackendVulkan.BindingMode())
	if err != nil {
		return nil, err
	}
	prog, err := c.Compile(desc, emitter.BackendVulkan)
	if err != nil {
		return nil, err
	}
	return binding.BindGroupLayoutDescriptors(table, layouts, stageVisibility(prog))
}

func (c *compiler) Layouts(desc *shader.ShaderDescriptor) (map[string]layout.ResolvedLayout, error) {
	return layout.ComputeGroups(desc)
}

func (c *compiler) Invalidate(name string) int {
	return c.cache.Invalidate(name)
}

func (c *compiler) Cache() cache.Cache {
	return c.cache
}

func (c *compiler) Emitter() emitter.Emitter {
	return c.emitter
}

func (c *compiler) Profiler() *profiler.Profiler {
	return c.profiler
}

// stageVisibility reports, per resource, the stages whose emitted source declares it.
func stageVisibility(prog *emitter.Program) map[string]wgpu.ShaderStage {
	vis := make(map[string]wgpu.ShaderStage)
	for _, ps := range prog.Passes {
		for _, name := range ps.Vertex.Resources {
			vis[name] |= wgpu.ShaderStageVertex
		}
		for _, name := range ps.Fragment.Resources {
			vis[name] |= wgpu.ShaderStageFragment
		}
	}
	return vis
}
