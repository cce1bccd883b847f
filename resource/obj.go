package resource

import (
	"strconv"
	"strings"

	"github.com/alfinacore/engine/engine/errkind"
)

// MeshVertex is one vertex's interleaved attributes, matching the source
// engine's MeshVertex (position/normal/uv, no tangent/bitangent).
type MeshVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// CpuSubmesh is one `o`/`g`-delimited OBJ submesh: a flat vertex buffer and
// its derived, winding-reversed index stream.
type CpuSubmesh struct {
	Name     string
	Vertices []MeshVertex
	Indices  []uint32
}

// CpuMesh is the parsed, CPU-side result of an OBJ file, prior to GPU
// buffer creation.
type CpuMesh struct {
	Submeshes []CpuSubmesh
}

type objBuilder struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32

	mesh   CpuMesh
	active *CpuSubmesh
}

// ParseOBJ parses Wavefront OBJ text into a CpuMesh. Only triangulated
// faces are supported. `o` and `g` both begin a new submesh. `mtllib` and
// `usemtl` are recognised and discarded.
func ParseOBJ(text string) (CpuMesh, error) {
	b := &objBuilder{}
	var parseErr error
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if parseErr != nil {
			break
		}
		switch {
		case strings.HasPrefix(line, "v "):
			parseErr = b.readVec3(line, &b.positions)
		case strings.HasPrefix(line, "vn "):
			parseErr = b.readVec3(line, &b.normals)
		case strings.HasPrefix(line, "vt "):
			parseErr = b.readVec2(line)
		case strings.HasPrefix(line, "f "):
			parseErr = b.readFace(line)
		case strings.HasPrefix(line, "o "):
			b.startSubmesh(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "g "):
			b.startSubmesh(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "mtllib "), strings.HasPrefix(line, "usemtl "):
			// material directives are recognized but not retained
		}
	}
	if parseErr != nil {
		return CpuMesh{}, errkind.Wrap(errkind.Parse, parseErr)
	}
	b.flushIndices()
	for _, sm := range b.mesh.Submeshes {
		errkind.Assert(len(sm.Vertices)%3 == 0, "resource: submesh %q vertex count not a multiple of 3", sm.Name)
	}
	return b.mesh, nil
}

func (b *objBuilder) startSubmesh(name string) {
	b.flushIndices()
	b.mesh.Submeshes = append(b.mesh.Submeshes, CpuSubmesh{Name: name})
	b.active = &b.mesh.Submeshes[len(b.mesh.Submeshes)-1]
}

// flushIndices derives the active submesh's index stream from its vertex
// count: a sequential [0, n) index list with each consecutive triangle's
// three indices reversed, matching the renderer's front-face winding
// convention.
func (b *objBuilder) flushIndices() {
	if b.active == nil {
		return
	}
	n := uint32(len(b.active.Vertices))
	for i := uint32(0); i+3 <= n; i += 3 {
		b.active.Indices = append(b.active.Indices, i+2, i+1, i)
	}
}

func (b *objBuilder) readVec3(line string, dst *[][3]float32) error {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return errkind.New(errkind.Parse, "malformed vertex line %q", line).Err
	}
	var v [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return err
		}
		v[i] = float32(f)
	}
	*dst = append(*dst, v)
	return nil
}

func (b *objBuilder) readVec2(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return errkind.New(errkind.Parse, "malformed texcoord line %q", line).Err
	}
	var v [2]float32
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return err
		}
		v[i] = float32(f)
	}
	b.uvs = append(b.uvs, v)
	return nil
}

// readFace parses a triangulated `f a/b/c a/b/c a/b/c` line, resolving
// negative indices relative to the current end of each attribute list, and
// appends one interleaved MeshVertex per face corner to the active submesh.
func (b *objBuilder) readFace(line string) error {
	errkind.Assert(b.active != nil, "resource: face line before any o/g directive")
	fields := strings.Fields(line)[1:]
	if len(fields) != 3 {
		return errkind.New(errkind.Parse, "only triangulated faces are supported: %q", line).Err
	}
	for _, corner := range fields {
		parts := strings.Split(corner, "/")
		vi, err := resolveIndex(parts[0], len(b.positions))
		if err != nil {
			return err
		}
		var ni, ti int
		if len(parts) > 2 && parts[2] != "" && len(b.normals) > 0 {
			ni, err = resolveIndex(parts[2], len(b.normals))
			if err != nil {
				return err
			}
		}
		if len(parts) > 1 && parts[1] != "" && len(b.uvs) > 0 {
			ti, err = resolveIndex(parts[1], len(b.uvs))
			if err != nil {
				return err
			}
		}
		v := MeshVertex{Position: b.positions[vi]}
		if len(b.normals) > 0 {
			v.Normal = b.normals[ni]
		}
		if len(b.uvs) > 0 {
			v.UV = b.uvs[ti]
		}
		b.active.Vertices = append(b.active.Vertices, v)
	}
	return nil
}

// resolveIndex converts a 1-based (or negative, end-relative) OBJ index
// into a 0-based slice index. Zero is invalid per the OBJ format.
func resolveIndex(s string, listLen int) (int, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errkind.New(errkind.Parse, "OBJ index must not be zero").Err
	}
	if n > 0 {
		return int(n) - 1, nil
	}
	return listLen + int(n), nil
}
