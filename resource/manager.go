package resource

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/alfinacore/engine/engine/errkind"
	"github.com/alfinacore/engine/job"
)

// DefaultRenderHandles sizes each of the resource manager's renderer handle
// pools. DefaultMaxTextures and DefaultMaxMeshes are not applied by Manager:
// its texture and mesh dedupe tables have no size bound.
const (
	DefaultMaxTextures  = 512
	DefaultMaxMeshes    = 512
	DefaultRenderHandles = 1024
)

// GpuSubmesh holds the renderer handles reserved for one CpuSubmesh's GPU
// buffers; the vertex/index buffer contents are uploaded, and the vertex
// array's layout bound, by a render-system job.
type GpuSubmesh struct {
	Name         string
	IndexBuffer  Handle
	VertexBuffer Handle
	VertexArray  Handle
}

// RenderMesh is the GPU-side counterpart of a CpuMesh: one GpuSubmesh per
// CpuSubmesh, populated once every render job for the mesh has run.
type RenderMesh struct {
	mu        sync.Mutex
	Submeshes []GpuSubmesh
	parsed    bool
	pending   int
}

// jobDone decrements the pending-job count and reports whether this was the
// mesh's last outstanding render job.
func (m *RenderMesh) jobDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
	return m.pending == 0
}

// Ready reports whether the mesh has been parsed and every render job for
// its submeshes has completed.
func (m *RenderMesh) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parsed && m.pending == 0
}

// ready is guarded by Manager.mu, not a per-resource lock, since textures is
// a slice of values and Manager.mu already serializes every access to it.
type textureResource struct {
	path           string
	rendererHandle Handle
	ready          bool
}

type meshResource struct {
	path string
	mesh *RenderMesh
}

// Manager owns the resource handle dedupe tables (texture, mesh) and the
// renderer handle pools GPU objects are reserved from. It orchestrates CPU
// parsing on the main job system and GPU object creation on the render job
// system.
type Manager struct {
	mu sync.Mutex

	fileSystem *FileSystem
	mainJobs   *job.System
	renderJobs *job.System
	log        *zap.SugaredLogger

	texturesByPath map[string]Handle
	textures       []textureResource

	meshesByPath map[string]Handle
	meshes       []meshResource

	indexBuffers  *RenderHandlePool
	vertexBuffers *RenderHandlePool
	vertexArrays  *RenderHandlePool
	texture2Ds    *RenderHandlePool
}

// NewManager constructs a resource Manager wired to fs for file I/O,
// mainJobs for CPU-side work (OBJ parsing), and renderJobs for GPU object
// creation. log receives the fatal-level record when a renderer handle pool
// is exhausted; a nil log defaults to a no-op logger.
func NewManager(fs *FileSystem, mainJobs, renderJobs *job.System, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{
		fileSystem:     fs,
		mainJobs:       mainJobs,
		renderJobs:     renderJobs,
		log:            log,
		texturesByPath: make(map[string]Handle),
		meshesByPath:   make(map[string]Handle),
		indexBuffers:   NewRenderHandlePool(DefaultRenderHandles),
		vertexBuffers:  NewRenderHandlePool(DefaultRenderHandles),
		vertexArrays:   NewRenderHandlePool(DefaultRenderHandles),
		texture2Ds:     NewRenderHandlePool(DefaultRenderHandles),
	}
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// AddTextureResource reserves a renderer texture-2D handle and enqueues a
// render-system job that creates the GPU object from path; it returns the
// resource handle immediately, deduped by canonical path.
func (m *Manager) AddTextureResource(path string) (Handle, error) {
	key := canonicalPath(path)

	m.mu.Lock()
	if h, ok := m.texturesByPath[key]; ok {
		m.mu.Unlock()
		return h, nil
	}
	rendererHandle, ok := m.texture2Ds.Reserve()
	if !ok {
		m.mu.Unlock()
		err := errkind.New(errkind.CapacityExceeded, "resource: texture-2d renderer handles exhausted")
		err.LogFatal(m.log)
		return 0, err
	}
	index := uint64(len(m.textures))
	m.textures = append(m.textures, textureResource{path: key, rendererHandle: rendererHandle})
	resourceHandle := NewHandle(index)
	m.texturesByPath[key] = resourceHandle
	m.mu.Unlock()

	j := m.renderJobs.Pool().Get()
	job.Configure(j, func(*job.Job) {
		// GPU object creation belongs to the render backend; this job is
		// the hook a renderer plugs into.
		m.mu.Lock()
		m.textures[index].ready = true
		m.mu.Unlock()
	}, nil)
	m.renderJobs.StartJob(j)

	return resourceHandle, nil
}

// GetTextureRendererHandle returns the renderer handle reserved for
// resource handle h.
func (m *Manager) GetTextureRendererHandle(h Handle) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textures[h.Index()].rendererHandle
}

// TextureReady reports whether h's GPU object creation job has run.
func (m *Manager) TextureReady(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textures[h.Index()].ready
}

// AddMeshResource starts an async load of path, then a post-load job on the
// main system (predecessor: the load job) that parses the OBJ text and
// reserves {index buffer, vertex buffer, vertex array} handles plus a
// render-system job per submesh. It returns the resource handle
// immediately, deduped by canonical path.
func (m *Manager) AddMeshResource(path string) (Handle, error) {
	key := canonicalPath(path)

	m.mu.Lock()
	if h, ok := m.meshesByPath[key]; ok {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	renderMesh := &RenderMesh{}
	m.mu.Lock()
	index := uint64(len(m.meshes))
	m.meshes = append(m.meshes, meshResource{path: key, mesh: renderMesh})
	resourceHandle := NewHandle(index)
	m.meshesByPath[key] = resourceHandle
	m.mu.Unlock()

	handle, loadJob, err := m.fileSystem.AsyncLoad(path, FileLoadRead)
	if err != nil {
		return 0, err
	}

	postLoad := m.mainJobs.Pool().Get()
	job.Configure(postLoad, func(*job.Job) {
		m.processLoadedMesh(handle, renderMesh, resourceHandle)
	}, nil)
	job.SetAfter(postLoad, loadJob)
	m.mainJobs.StartJob(postLoad)
	m.mainJobs.StartJob(loadJob)

	return resourceHandle, nil
}

// processLoadedMesh parses handle's OBJ text, reserves the GPU handles for
// each submesh, and enqueues one render-system job per submesh.
func (m *Manager) processLoadedMesh(handle *FileHandle, renderMesh *RenderMesh, resourceHandle Handle) {
	if handle.State() != FileLoaded {
		return
	}
	cpuMesh, err := ParseOBJ(string(handle.Bytes()))
	if err != nil {
		return
	}

	renderMesh.mu.Lock()
	renderMesh.parsed = true
	renderMesh.pending = len(cpuMesh.Submeshes)
	renderMesh.Submeshes = make([]GpuSubmesh, len(cpuMesh.Submeshes))
	renderMesh.mu.Unlock()

	for i, sm := range cpuMesh.Submeshes {
		ib, _ := m.indexBuffers.Reserve()
		vb, _ := m.vertexBuffers.Reserve()
		va, _ := m.vertexArrays.Reserve()

		renderMesh.mu.Lock()
		renderMesh.Submeshes[i] = GpuSubmesh{Name: sm.Name, IndexBuffer: ib, VertexBuffer: vb, VertexArray: va}
		renderMesh.mu.Unlock()

		j := m.renderJobs.Pool().Get()
		job.Configure(j, func(*job.Job) {
			// GPU buffer upload and vertex-array layout binding belong to
			// the render backend. RenderMesh.Ready() reports completion once
			// every submesh's job has decremented pending to zero.
			renderMesh.jobDone()
		}, nil)
		m.renderJobs.StartJob(j)
	}
}

// GetRenderMesh returns the GPU-side mesh for resource handle h.
func (m *Manager) GetRenderMesh(h Handle) *RenderMesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meshes[h.Index()].mesh
}
