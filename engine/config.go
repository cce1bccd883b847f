// Package engine wires the memory manager, job systems, ECS world and
// resource pipeline together in the fixed initialization order the core
// requires, and owns the process-wide logger.
package engine

import (
	"time"

	"github.com/alfinacore/engine/ecs"
)

// Config holds every tunable the core's components expose.
type Config struct {
	ArenaSize      int
	PoolBytes      int
	ArchetypeChunk int
	MaxEntities    int
	MaxArchetypes  int

	MainWorkers    int
	RenderQueueCap int
	MainQueueCap   int
	MaxJobs        int
	JobSleep       time.Duration

	MaxFileHandles int
	MaxAsyncReads  int
	MaxTextures    int
	MaxMeshes      int
	RenderHandles  int
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		ArenaSize:      1 << 30,
		PoolBytes:      1 << 26,
		ArchetypeChunk: 16 * 1024,
		MaxEntities:    ecs.DefaultMaxEntities,
		MaxArchetypes:  ecs.DefaultMaxArchetypes,

		MainWorkers:    0, // resolved at Construct time from GOMAXPROCS
		RenderQueueCap: 1024,
		MainQueueCap:   1024,
		MaxJobs:        1024,
		JobSleep:       5 * time.Millisecond,

		MaxFileHandles: 256,
		MaxAsyncReads:  64,
		MaxTextures:    512,
		MaxMeshes:      512,
		RenderHandles:  1024,
	}
}
