package rend3d

import (
	"fmt"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assets"
	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/camera"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/materials"
	"github.com/bloeys/nrend/meshes"
	"github.com/bloeys/nrend/renderer"
	"github.com/bloeys/nrend/shaders"
)

var _ renderer.Render = &Rend3D{}

// Rend3D draws meshes with materials. A frame is FrameStart, any number of draws, then FrameEnd
type Rend3D struct {
	Shaders   *materials.ShaderLibrary
	CameraUbo *camera.UniformBuffer
	Fallbacks materials.Fallbacks
	Lights    materials.Lights

	// Camera is the camera of the current frame, set by FrameStart
	Camera camera.Compiled

	identity gglm.Mat4
	args     materials.DrawArgs
	ctx      *gpu.Context
}

// FrameStart uploads the camera, resets the render state and clears the bound framebuffer
func (r *Rend3D) FrameStart(cam *camera.Camera, clearColor *gglm.Vec4) {

	r.Camera = cam.Compile()
	r.CameraUbo.Set(&r.Camera)

	r.ctx.SetCapability(gpu.Capability_DepthTest, true)
	r.ctx.SetCapability(gpu.Capability_CullFace, true)
	r.ctx.SetCapability(gpu.Capability_Blend, false)
	r.ctx.Dev.DepthMask(true)
	r.ctx.Dev.DepthFunc(gpu.DepthFunc_Less)

	r.ctx.Dev.ClearColor(clearColor.Data[0], clearColor.Data[1], clearColor.Data[2], clearColor.Data[3])
	r.ctx.Dev.Clear(gpu.ClearMask_Color | gpu.ClearMask_Depth | gpu.ClearMask_Stencil)
}

func (r *Rend3D) bindMaterial(mat materials.Material, model *gglm.Mat4) {

	r.ctx.SetCapability(gpu.Capability_Blend, mat.IsTransparent())

	mat.Use()
	r.args.Model = model
	mat.SetUniforms(&r.args)
}

func (r *Rend3D) drawSubMeshes(mesh *meshes.Mesh) {

	for i := 0; i < len(mesh.SubMeshes); i++ {
		sm := &mesh.SubMeshes[i]
		r.ctx.Dev.DrawElementsBaseVertex(gpu.Primitive_Triangles, sm.IndexCount, sm.IndexOffset(), sm.BaseVertex)
	}
}

func (r *Rend3D) DrawMesh(mesh *meshes.Mesh, modelMat *gglm.TrMat, mat materials.Material) {
	mesh.Vao.Bind()
	r.bindMaterial(mat, &modelMat.Mat4)
	r.drawSubMeshes(mesh)
}

// DrawVertexArray draws non indexed triangles with an identity model matrix
func (r *Rend3D) DrawVertexArray(mat materials.Material, vao *buffers.VertexArray, firstElement int32, elementCount int32) {
	vao.Bind()
	r.bindMaterial(mat, &r.identity)
	r.ctx.Dev.DrawArrays(gpu.Primitive_Triangles, firstElement, elementCount)
}

// DrawSkybox draws the cubemap behind everything already drawn. The mesh is usually meshes.NewSkyboxCube
func (r *Rend3D) DrawSkybox(mesh *meshes.Mesh, cubemap *assets.Cubemap) {

	sky := &r.Shaders.Skybox

	// The skybox shader forces depth to 1, so it must pass against a cleared depth buffer
	r.ctx.Dev.DepthFunc(gpu.DepthFunc_LessEqual)
	r.ctx.SetCapability(gpu.Capability_CullFace, false)
	r.ctx.SetCapability(gpu.Capability_Blend, false)

	mesh.Vao.Bind()
	sky.Program.Use()
	sky.Program.SetTexture(sky.Uniforms.SkyboxTex, gpu.TextureTarget_CubeMap, cubemap.Id)
	r.drawSubMeshes(mesh)

	r.ctx.SetCapability(gpu.Capability_CullFace, true)
	r.ctx.Dev.DepthFunc(gpu.DepthFunc_Less)
}

func (r *Rend3D) FrameEnd() {
	r.args.Model = nil
	r.ctx.BindVertexArray(0)
}

// NewDefaultMaterial, NewUnlitMaterial and NewSingleColorMaterial create materials using the shaders of this renderer

func (r *Rend3D) NewDefaultMaterial(name string) *materials.DefaultMaterial {
	return materials.NewDefaultMaterial(name, &r.Shaders.Default)
}

func (r *Rend3D) NewUnlitMaterial(name string) *materials.UnlitMaterial {
	return materials.NewUnlitMaterial(name, &r.Shaders.Unlit)
}

func (r *Rend3D) NewSingleColorMaterial(name string, color gglm.Vec4) *materials.SingleColorMaterial {
	return materials.NewSingleColorMaterial(name, &r.Shaders.SingleColor, color)
}

func (r *Rend3D) Watch(reloader *shaders.Reloader) {
	r.Shaders.Watch(reloader)
}

func (r *Rend3D) Delete() {
	r.Shaders.Delete()
	r.CameraUbo.Delete()
	r.Fallbacks.Delete(r.ctx)
}

func NewRend3D(ctx *gpu.Context, loader shaders.SourceLoader) (*Rend3D, error) {

	r := &Rend3D{
		identity: gglm.NewTrMatId().Mat4,
		ctx:      ctx,
	}

	var err error
	r.CameraUbo, err = camera.NewUniformBuffer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera uniform buffer: %w", err)
	}

	r.Shaders, err = materials.NewShaderLibrary(ctx, loader, r.CameraUbo.Source())
	if err != nil {
		r.CameraUbo.Delete()
		return nil, err
	}

	r.Fallbacks, err = materials.NewFallbacks(ctx)
	if err != nil {
		r.Shaders.Delete()
		r.CameraUbo.Delete()
		return nil, err
	}

	r.args = materials.DrawArgs{
		Camera:    &r.Camera,
		Lights:    &r.Lights,
		Fallbacks: &r.Fallbacks,
	}

	return r, nil
}
