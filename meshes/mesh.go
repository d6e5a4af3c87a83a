package meshes

import (
	"fmt"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assert"
	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

type SubMesh struct {
	BaseVertex int32
	BaseIndex  uint32
	IndexCount int32
}

// IndexOffset is the byte offset of the first index of the submesh in the index buffer
func (s *SubMesh) IndexOffset() uintptr {
	return uintptr(s.BaseIndex) * 4
}

type Mesh struct {
	Name string
	/*
		Vao has the attribute layout of Layout. For meshes built with NewMesh this is shaders.LayoutPosNormTex:
			- Loc0: Pos
			- Loc1: Normal
			- Loc2: UV0
	*/
	Vao       buffers.VertexArray
	Layout    shaders.AttribLayout
	SubMeshes []SubMesh
}

func (m *Mesh) Delete() {
	m.Vao.Delete()
	m.SubMeshes = nil
}

// Geometry is the CPU side data of one submesh. Normals and TexCoords may be nil, in which case they are zeroed
type Geometry struct {
	Positions []gglm.Vec3
	Normals   []gglm.Vec3
	TexCoords []gglm.Vec2
	Indices   []uint32
}

func (g *Geometry) arrs() []arrToInterleave {

	if len(g.Normals) == 0 {
		g.Normals = make([]gglm.Vec3, len(g.Positions))
	}

	if len(g.TexCoords) == 0 {
		g.TexCoords = make([]gglm.Vec2, len(g.Positions))
	}

	return []arrToInterleave{
		{V3s: g.Positions},
		{V3s: g.Normals},
		{V2s: g.TexCoords},
	}
}

type subMeshData struct {
	arrs    []arrToInterleave
	indices []uint32
}

// NewMesh uploads the geometries into one vertex array with the shaders.LayoutPosNormTex layout,
// one submesh per geometry
func NewMesh(ctx *gpu.Context, name string, geometries ...Geometry) (Mesh, error) {

	assert.T(len(geometries) > 0, "NewMesh called for mesh '%s' with no geometry", name)

	subs := make([]subMeshData, len(geometries))
	for i := range geometries {
		subs[i] = subMeshData{arrs: geometries[i].arrs(), indices: geometries[i].Indices}
	}

	return newMesh(ctx, name, shaders.LayoutPosNormTex, subs)
}

func newMesh(ctx *gpu.Context, name string, layout shaders.AttribLayout, subs []subMeshData) (Mesh, error) {

	mesh := Mesh{
		Name:      name,
		Layout:    layout,
		SubMeshes: make([]SubMesh, 0, len(subs)),
	}

	vao, err := buffers.NewVertexArray(ctx)
	if err != nil {
		return Mesh{}, fmt.Errorf("failed to create mesh '%s': %w", name, err)
	}

	vbo, err := buffers.NewVertexBuffer(ctx, layout.Elements()...)
	if err != nil {
		vao.Delete()
		return Mesh{}, fmt.Errorf("failed to create mesh '%s': %w", name, err)
	}

	ibo, err := buffers.NewIndexBuffer(ctx)
	if err != nil {
		vbo.Delete()
		vao.Delete()
		return Mesh{}, fmt.Errorf("failed to create mesh '%s': %w", name, err)
	}

	// Attaching first means a failed upload below is cleaned up by a single vao.Delete
	vao.AddVertexBuffer(vbo)
	vao.SetIndexBuffer(ibo)
	mesh.Vao = vao

	var vertexBufData []float32
	var indexBufData []uint32
	for i := range subs {

		mesh.SubMeshes = append(mesh.SubMeshes, SubMesh{

			// Index of the vertex to start from (e.g. if index buffer says use vertex 5, and BaseVertex=3, the vertex used will be vertex 8)
			BaseVertex: int32(len(vertexBufData)*4) / vbo.Stride,
			// Which index (in the index buffer) to start from
			BaseIndex: uint32(len(indexBufData)),
			// How many indices in this submesh
			IndexCount: int32(len(subs[i].indices)),
		})

		vertexBufData = append(vertexBufData, interleave(subs[i].arrs...)...)
		indexBufData = append(indexBufData, subs[i].indices...)
	}

	if err := mesh.Vao.Vbos[0].SetData(vertexBufData, gpu.BufUsage_Static_Draw); err != nil {
		mesh.Delete()
		return Mesh{}, fmt.Errorf("failed to upload vertices of mesh '%s': %w", name, err)
	}

	mesh.Vao.Bind()
	if err := mesh.Vao.IndexBuffer.SetData(indexBufData); err != nil {
		mesh.Delete()
		return Mesh{}, fmt.Errorf("failed to upload indices of mesh '%s': %w", name, err)
	}

	// This is needed so that if you create meshes one after the other the
	// following mesh doesn't attach its vbo/ibo to this vao
	mesh.Vao.UnBind()

	return mesh, nil
}

type arrToInterleave struct {
	V2s []gglm.Vec2
	V3s []gglm.Vec3
	V4s []gglm.Vec4
}

func (a *arrToInterleave) len() int {

	if len(a.V2s) > 0 {
		return len(a.V2s)
	} else if len(a.V3s) > 0 {
		return len(a.V3s)
	}

	return len(a.V4s)
}

func (a *arrToInterleave) get(i int) []float32 {

	assert.T(len(a.V2s) == 0 || len(a.V3s) == 0, "One array should be set in arrToInterleave, but multiple arrays are set")
	assert.T(len(a.V2s) == 0 || len(a.V4s) == 0, "One array should be set in arrToInterleave, but multiple arrays are set")
	assert.T(len(a.V3s) == 0 || len(a.V4s) == 0, "One array should be set in arrToInterleave, but multiple arrays are set")

	if len(a.V2s) > 0 {
		return a.V2s[i].Data[:]
	} else if len(a.V3s) > 0 {
		return a.V3s[i].Data[:]
	} else {
		return a.V4s[i].Data[:]
	}
}

func interleave(arrs ...arrToInterleave) []float32 {

	assert.T(len(arrs) > 0, "No input sent to interleave")

	elementCount := arrs[0].len()
	assert.T(elementCount > 0, "Interleave arrays are empty")

	// Calculate final size of the float buffer
	totalSize := 0
	for i := 0; i < len(arrs); i++ {

		assert.T(arrs[i].len() == elementCount, "Mesh vertex data given to interleave is not the same length")
		totalSize += len(arrs[i].V2s)*2 + len(arrs[i].V3s)*3 + len(arrs[i].V4s)*4
	}

	out := make([]float32, 0, totalSize)
	for i := 0; i < elementCount; i++ {
		for arrToUse := 0; arrToUse < len(arrs); arrToUse++ {
			out = append(out, arrs[arrToUse].get(i)...)
		}
	}

	return out
}
