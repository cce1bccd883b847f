package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A single triangle, one `o` directive.
func TestParseOBJSingleTriangle(t *testing.T) {
	text := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vn 0 0 1
vn 0 0 1
vt 0 0
vt 1 0
vt 0 1
o T
f 1/1/1 2/2/1 3/3/1
`
	mesh, err := ParseOBJ(text)
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes, 1)
	sm := mesh.Submeshes[0]
	require.Equal(t, "T", sm.Name)
	require.Len(t, sm.Vertices, 3)
	require.Equal(t, []uint32{2, 1, 0}, sm.Indices)
}

func TestParseOBJTwoSubmeshesViaOAndG(t *testing.T) {
	text := `v 0 0 0
v 1 0 0
v 0 1 0
o A
f 1/ 2/ 3/
v 1 1 0
v 2 1 0
v 1 2 0
g B
f 4/ 5/ 6/
`
	mesh, err := ParseOBJ(text)
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes, 2)
	require.Equal(t, "A", mesh.Submeshes[0].Name)
	require.Equal(t, "B", mesh.Submeshes[1].Name)
	require.Equal(t, []uint32{2, 1, 0}, mesh.Submeshes[0].Indices)
	require.Equal(t, []uint32{2, 1, 0}, mesh.Submeshes[1].Indices)
}

func TestParseOBJNegativeFaceIndices(t *testing.T) {
	text := `v 0 0 0
v 1 0 0
v 0 1 0
o T
f -3/ -2/ -1/
`
	mesh, err := ParseOBJ(text)
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes[0].Vertices, 3)
	require.Equal(t, [3]float32{0, 0, 0}, mesh.Submeshes[0].Vertices[0].Position)
	require.Equal(t, [3]float32{0, 1, 0}, mesh.Submeshes[0].Vertices[2].Position)
}

func TestParseOBJMaterialDirectivesIgnored(t *testing.T) {
	text := `mtllib m.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl red
o T
f 1/ 2/ 3/
`
	mesh, err := ParseOBJ(text)
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes, 1)
}

func TestParseOBJRejectsQuads(t *testing.T) {
	text := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
o T
f 1/ 2/ 3/ 4/
`
	_, err := ParseOBJ(text)
	require.Error(t, err)
}
