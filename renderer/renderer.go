package renderer

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assets"
	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/materials"
	"github.com/bloeys/nrend/meshes"
)

type Render interface {
	DrawMesh(mesh *meshes.Mesh, trMat *gglm.TrMat, mat materials.Material)
	DrawVertexArray(mat materials.Material, vao *buffers.VertexArray, firstElement int32, count int32)
	DrawSkybox(mesh *meshes.Mesh, cubemap *assets.Cubemap)
	FrameEnd()
}
