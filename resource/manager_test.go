package resource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alfinacore/engine/job"
)

func newTestManager(t *testing.T) (*Manager, *job.System, *job.System) {
	t.Helper()
	pool := job.NewPool(256, nil)
	mainSys := job.NewSystem(pool, 256, time.Millisecond)
	renderSys := job.NewSystem(pool, 256, time.Millisecond)
	fs := NewFileSystem(mainSys, 8, 8, nil)
	return NewManager(fs, mainSys, renderSys, nil), mainSys, renderSys
}

// Invariant 10: add_texture_resource(p) == add_texture_resource(p) for any p.
func TestAddTextureResourceIsDeduped(t *testing.T) {
	m, _, _ := newTestManager(t)
	h1, err := m.AddTextureResource("brick.png")
	require.NoError(t, err)
	h2, err := m.AddTextureResource("brick.png")
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

// A texture resource's render-system job flips its ready state once
// dispatched; GetTextureRendererHandle is stable across that transition.
func TestAddTextureResourceBecomesReady(t *testing.T) {
	m, _, renderSys := newTestManager(t)

	h, err := m.AddTextureResource("brick.png")
	require.NoError(t, err)
	require.False(t, m.TextureReady(h))

	deadline := time.Now().Add(2 * time.Second)
	for !m.TextureReady(h) && time.Now().Before(deadline) {
		if !renderSys.DispatchOne() {
			time.Sleep(time.Millisecond)
		}
	}

	require.True(t, m.TextureReady(h))
}

func TestAddMeshResourceIsDeduped(t *testing.T) {
	m, mainSys, _ := newTestManager(t)
	defer mainSys.Stop()

	path := writeTempFile(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\no T\nf 1/ 2/ 3/\n")
	h1, err := m.AddMeshResource(path)
	require.NoError(t, err)
	h2, err := m.AddMeshResource(path)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

// A two-submesh OBJ produces exactly two render-system jobs after parsing;
// GetRenderMesh reports two submeshes once those jobs finish.
func TestAddMeshResourceEndToEndPipeline(t *testing.T) {
	m, mainSys, renderSys := newTestManager(t)
	mainSys.StartWorkers(2)
	defer mainSys.Stop()

	dir := t.TempDir()
	path := filepath.Join(dir, "two.obj")
	contents := "v 0 0 0\nv 1 0 0\nv 0 1 0\no A\nf 1/ 2/ 3/\n" +
		"v 1 1 0\nv 2 1 0\nv 1 2 0\ng B\nf 4/ 5/ 6/\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	h, err := m.AddMeshResource(path)
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	rm := m.GetRenderMesh(h)
	for !rm.Ready() && time.Now().Before(deadline) {
		if !renderSys.DispatchOne() {
			time.Sleep(time.Millisecond)
		}
	}

	require.True(t, rm.Ready())
	require.Len(t, rm.Submeshes, 2)
}
