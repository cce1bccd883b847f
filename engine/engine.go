package engine

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/alfinacore/engine/ecs"
	"github.com/alfinacore/engine/job"
	"github.com/alfinacore/engine/memory"
	"github.com/alfinacore/engine/resource"
)

// Engine owns the core subsystems and constructs/tears them down in a
// fixed order: memory manager, then both job systems, then the ECS world,
// file system, and resource manager, which depend on a job system to
// submit work to.
type Engine struct {
	log *zap.SugaredLogger

	memory *memory.Manager
	main   *job.System
	render *job.System
	world  *ecs.World
	files  *resource.FileSystem
	res    *resource.Manager
}

// Construct builds every subsystem in dependency order. Caller must call
// Destruct to release the arena and stop worker goroutines.
func Construct(cfg Config, log *zap.SugaredLogger) *Engine {
	if log == nil {
		logger, _ := zap.NewProduction()
		log = logger.Sugar()
	}

	mem := memory.Construct(memory.Config{
		ArenaSize: cfg.ArenaSize,
		PoolBytes: cfg.PoolBytes,
	})

	jobPool := job.NewPool(cfg.MaxJobs, log)
	main := job.NewSystem(jobPool, cfg.MainQueueCap, cfg.JobSleep)
	render := job.NewSystem(jobPool, cfg.RenderQueueCap, cfg.JobSleep)

	workers := cfg.MainWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0) - 2
		if workers < 1 {
			workers = 1
		}
	}
	main.StartWorkers(workers)

	world := ecs.NewWorld(mem.Pool(), ecs.Config{
		ChunkBytes:    cfg.ArchetypeChunk,
		MaxEntities:   cfg.MaxEntities,
		MaxArchetypes: cfg.MaxArchetypes,
	}, log)

	files := resource.NewFileSystem(main, cfg.MaxFileHandles, cfg.MaxAsyncReads, log)
	res := resource.NewManager(files, main, render, log)

	log.Infow("engine constructed", "arena_bytes", cfg.ArenaSize, "main_workers", workers)

	return &Engine{
		log:    log,
		memory: mem,
		main:   main,
		render: render,
		world:  world,
		files:  files,
		res:    res,
	}
}

// Destruct tears down every subsystem in reverse dependency order.
func (e *Engine) Destruct() {
	if err := e.main.Stop(); err != nil {
		e.log.Errorw("main job system worker error", "err", err)
	}
	e.memory.Destruct()
	e.log.Infow("engine destructed")
}

// World returns the engine's ECS world.
func (e *Engine) World() *ecs.World { return e.world }

// MainJobs returns the multi-worker main job system.
func (e *Engine) MainJobs() *job.System { return e.main }

// RenderJobs returns the zero-worker render job system — drained by
// repeatedly calling DispatchOne from the owning render thread.
func (e *Engine) RenderJobs() *job.System { return e.render }

// Resources returns the resource manager.
func (e *Engine) Resources() *resource.Manager { return e.res }

// Files returns the file system.
func (e *Engine) Files() *resource.FileSystem { return e.files }

// Memory returns the memory manager.
func (e *Engine) Memory() *memory.Manager { return e.memory }

// Logger returns the process-wide logger.
func (e *Engine) Logger() *zap.SugaredLogger { return e.log }

// DispatchRenderFrame drains the render job system on the calling
// goroutine, running ready jobs until its ready queue is empty.
func (e *Engine) DispatchRenderFrame() {
	for e.render.DispatchOne() {
	}
}
