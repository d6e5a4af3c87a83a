package meshes

import (
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gputest"
	"github.com/bloeys/nrend/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCtx() (*gputest.Device, *gpu.Context) {
	dev := gputest.New()
	return dev, gpu.NewContext(dev)
}

func sub(a, b gglm.Vec3) gglm.Vec3 {
	return v3(a.Data[0]-b.Data[0], a.Data[1]-b.Data[1], a.Data[2]-b.Data[2])
}

func cross(a, b gglm.Vec3) gglm.Vec3 {
	return v3(
		a.Data[1]*b.Data[2]-a.Data[2]*b.Data[1],
		a.Data[2]*b.Data[0]-a.Data[0]*b.Data[2],
		a.Data[0]*b.Data[1]-a.Data[1]*b.Data[0],
	)
}

func TestCubeGeometry(t *testing.T) {

	g := CubeGeometry()
	require.Len(t, g.Positions, 24)
	require.Len(t, g.Normals, 24)
	require.Len(t, g.TexCoords, 24)
	require.Len(t, g.Indices, 36)

	for i, p := range g.Positions {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, 0.5, abs(p.Data[c]), 0.5, "vertex %d is outside the unit cube", i)
		}

		// Each vertex lies on the face its normal points to
		n := g.Normals[i]
		assert.InDelta(t, 0.5, gglm.DotVec3(&p, &n), 1e-6, "vertex %d", i)
	}

	// Triangles wind counter clockwise when seen from outside
	for tri := 0; tri < len(g.Indices); tri += 3 {

		i0, i1, i2 := g.Indices[tri], g.Indices[tri+1], g.Indices[tri+2]
		e1 := sub(g.Positions[i1], g.Positions[i0])
		e2 := sub(g.Positions[i2], g.Positions[i0])
		c := cross(e1, e2)

		n := g.Normals[i0]
		assert.Greater(t, gglm.DotVec3(&c, &n), float32(0), "triangle %d", tri/3)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestPlaneGeometry(t *testing.T) {

	g := PlaneGeometry(4)
	require.Len(t, g.Positions, 4)
	assert.Len(t, g.Indices, 6)

	for _, p := range g.Positions {
		assert.Equal(t, float32(0), p.Y())
		assert.Equal(t, float32(2), abs(p.X()))
		assert.Equal(t, float32(2), abs(p.Z()))
	}

	for _, n := range g.Normals {
		assert.Equal(t, [3]float32{0, 1, 0}, n.Data)
	}
}

func TestNewMeshSubMeshes(t *testing.T) {

	dev, ctx := newTestCtx()
	mesh, err := NewMesh(ctx, "two", CubeGeometry(), PlaneGeometry(1))
	require.NoError(t, err)

	assert.Equal(t, shaders.LayoutPosNormTex, mesh.Layout)
	require.Len(t, mesh.SubMeshes, 2)
	assert.Equal(t, SubMesh{BaseVertex: 0, BaseIndex: 0, IndexCount: 36}, mesh.SubMeshes[0])
	assert.Equal(t, SubMesh{BaseVertex: 24, BaseIndex: 36, IndexCount: 6}, mesh.SubMeshes[1])
	assert.Equal(t, uintptr(36*4), mesh.SubMeshes[1].IndexOffset())

	// pos + normal + uv
	vbo := mesh.Vao.Vbos[0]
	assert.Equal(t, int32(8*4), vbo.Stride)
	assert.Len(t, dev.Buffers[vbo.Id].Data, (24+4)*8*4)
	assert.Len(t, dev.Buffers[mesh.Vao.IndexBuffer.Id].Data, (36+6)*4)
	assert.Equal(t, int32(42), mesh.Vao.IndexBuffer.IndexBufCount)

	assert.Equal(t, uint32(0), ctx.BoundVao, "the vertex array is unbound after creation")

	mesh.Delete()
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.Vaos)
}

func TestNewMeshFillsMissingAttributes(t *testing.T) {

	dev, ctx := newTestCtx()
	mesh, err := NewMesh(ctx, "tri", Geometry{
		Positions: []gglm.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0)},
		Indices:   []uint32{0, 1, 2},
	})
	require.NoError(t, err)

	assert.Len(t, dev.Buffers[mesh.Vao.Vbos[0].Id].Data, 3*8*4)
}

func TestBuiltinMeshes(t *testing.T) {

	dev, ctx := newTestCtx()

	quad, err := NewFullScreenQuad(ctx)
	require.NoError(t, err)
	assert.Equal(t, shaders.LayoutPos2Tex, quad.Layout)
	assert.Equal(t, int32(4*4), quad.Vao.Vbos[0].Stride)
	assert.Equal(t, int32(6), quad.SubMeshes[0].IndexCount)

	sky, err := NewSkyboxCube(ctx)
	require.NoError(t, err)
	assert.Equal(t, shaders.LayoutPos, sky.Layout)
	assert.Equal(t, int32(3*4), sky.Vao.Vbos[0].Stride)
	assert.Len(t, dev.Buffers[sky.Vao.Vbos[0].Id].Data, 8*3*4)
	assert.Equal(t, int32(36), sky.SubMeshes[0].IndexCount)

	cube, err := NewCube(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cube", cube.Name)

	plane, err := NewPlane(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(6), plane.SubMeshes[0].IndexCount)
}

func TestNewMeshOutOfMemory(t *testing.T) {

	dev, ctx := newTestCtx()
	dev.OutOfMemory = true

	_, err := NewCube(ctx)
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.Vaos)
}

func TestNewMeshObjectCreationFailure(t *testing.T) {

	dev, ctx := newTestCtx()
	dev.FailObjectCreation = true

	_, err := NewCube(ctx)
	assert.ErrorIs(t, err, gpu.ErrObjectCreation)
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.Vaos)
}
