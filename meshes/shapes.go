package meshes

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

func v3(x, y, z float32) gglm.Vec3 {
	return gglm.Vec3{Data: [3]float32{x, y, z}}
}

func v2(x, y float32) gglm.Vec2 {
	return gglm.Vec2{Data: [2]float32{x, y}}
}

// quadFace describes one face of a box. u x v == normal, so the corners come out counter clockwise
type quadFace struct {
	normal [3]float32
	u      [3]float32
	v      [3]float32
}

var cubeFaces = [6]quadFace{
	{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
	{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
}

// appendQuad adds a face of half size h centered at normal*dist
func (g *Geometry) appendQuad(f *quadFace, dist, h float32) {

	base := uint32(len(g.Positions))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, c := range corners {

		var p [3]float32
		for i := 0; i < 3; i++ {
			p[i] = f.normal[i]*dist + f.u[i]*c[0]*h + f.v[i]*c[1]*h
		}

		g.Positions = append(g.Positions, v3(p[0], p[1], p[2]))
		g.Normals = append(g.Normals, v3(f.normal[0], f.normal[1], f.normal[2]))
		g.TexCoords = append(g.TexCoords, v2((c[0]+1)/2, (c[1]+1)/2))
	}

	g.Indices = append(g.Indices, base+0, base+1, base+2, base+2, base+3, base+0)
}

// CubeGeometry is a unit cube centered on the origin with per face normals (24 vertices, 36 indices)
func CubeGeometry() Geometry {

	g := Geometry{
		Positions: make([]gglm.Vec3, 0, 24),
		Normals:   make([]gglm.Vec3, 0, 24),
		TexCoords: make([]gglm.Vec2, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}

	for i := range cubeFaces {
		g.appendQuad(&cubeFaces[i], 0.5, 0.5)
	}

	return g
}

// PlaneGeometry is a size x size plane on XZ facing +Y
func PlaneGeometry(size float32) Geometry {
	g := Geometry{}
	g.appendQuad(&cubeFaces[2], 0, size/2)
	return g
}

func NewCube(ctx *gpu.Context) (Mesh, error) {
	return NewMesh(ctx, "cube", CubeGeometry())
}

func NewPlane(ctx *gpu.Context, size float32) (Mesh, error) {
	return NewMesh(ctx, "plane", PlaneGeometry(size))
}

// NewFullScreenQuad creates a quad covering clip space with the shaders.LayoutPos2Tex layout
func NewFullScreenQuad(ctx *gpu.Context) (Mesh, error) {

	return newMesh(ctx, "full_screen_quad", shaders.LayoutPos2Tex, []subMeshData{{
		arrs: []arrToInterleave{
			{V2s: []gglm.Vec2{v2(-1, -1), v2(1, -1), v2(1, 1), v2(-1, 1)}},
			{V2s: []gglm.Vec2{v2(0, 0), v2(1, 0), v2(1, 1), v2(0, 1)}},
		},
		indices: []uint32{0, 1, 2, 2, 3, 0},
	}})
}

// NewSkyboxCube creates a position only cube (shaders.LayoutPos) that is meant to be seen from the inside,
// so it should be drawn with face culling disabled
func NewSkyboxCube(ctx *gpu.Context) (Mesh, error) {

	positions := []gglm.Vec3{
		v3(-1, -1, -1), v3(1, -1, -1), v3(1, 1, -1), v3(-1, 1, -1),
		v3(-1, -1, 1), v3(1, -1, 1), v3(1, 1, 1), v3(-1, 1, 1),
	}

	indices := []uint32{
		0, 2, 1, 2, 0, 3, // -Z
		4, 5, 6, 6, 7, 4, // +Z
		0, 4, 7, 7, 3, 0, // -X
		1, 2, 6, 6, 5, 1, // +X
		0, 1, 5, 5, 4, 0, // -Y
		3, 7, 6, 6, 2, 3, // +Y
	}

	return newMesh(ctx, "skybox_cube", shaders.LayoutPos, []subMeshData{{
		arrs:    []arrToInterleave{{V3s: positions}},
		indices: indices,
	}})
}
