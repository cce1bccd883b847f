package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alfinacore/engine/job"
)

func TestConstructDestruct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArenaSize = 1 << 20
	cfg.PoolBytes = 1 << 18
	cfg.MainWorkers = 1

	e := Construct(cfg, nil)
	require.NotNil(t, e.World())
	require.NotNil(t, e.MainJobs())
	require.NotNil(t, e.RenderJobs())
	require.NotNil(t, e.Resources())

	ent := e.World().CreateEntity()
	require.True(t, e.World().Alive(ent))

	e.Destruct()
}

func TestDispatchRenderFrameDrainsQueue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArenaSize = 1 << 20
	cfg.PoolBytes = 1 << 18
	cfg.MainWorkers = 1
	e := Construct(cfg, nil)
	defer e.Destruct()

	var ran bool
	j := e.RenderJobs().Pool().Get()
	job.Configure(j, func(*job.Job) { ran = true }, nil)
	e.RenderJobs().StartJob(j)

	e.DispatchRenderFrame()
	require.True(t, ran)
}
