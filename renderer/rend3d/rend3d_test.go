package rend3d

import (
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assets"
	"github.com/bloeys/nrend/camera"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gputest"
	"github.com/bloeys/nrend/materials"
	"github.com/bloeys/nrend/meshes"
	"github.com/bloeys/nrend/postproc"
	"github.com/bloeys/nrend/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (*gputest.Device, *gpu.Context, *Rend3D) {

	t.Helper()

	dev := gputest.New()
	ctx := gpu.NewContext(dev)

	r, err := NewRend3D(ctx, shaders.EmbeddedSources{})
	require.NoError(t, err)

	return dev, ctx, r
}

func newTestCamera() camera.Camera {
	pos := gglm.NewVec3(0, 1, 5)
	forward := gglm.NewVec3(0, 0, -1)
	up := gglm.NewVec3(0, 1, 0)
	return camera.NewPerspective(&pos, &forward, &up, 0.1, 100, 60*gglm.Deg2Rad, 16.0/9)
}

// indexOf returns the index of the first command with the name at or after start, or -1
func indexOf(cmds []gputest.Command, name string, start int) int {
	for i := start; i < len(cmds); i++ {
		if cmds[i].Name == name {
			return i
		}
	}
	return -1
}

func lastDepthFuncBefore(cmds []gputest.Command, end int) gpu.DepthFunc {
	for i := end - 1; i >= 0; i-- {
		if cmds[i].Name == "DepthFunc" {
			return cmds[i].Args[0].(gpu.DepthFunc)
		}
	}
	return gpu.DepthFunc_Unknown
}

func TestFrameStart(t *testing.T) {

	dev, _, r := newTestRenderer(t)
	cam := newTestCamera()
	clearColor := gglm.NewVec4(0.1, 0.2, 0.3, 1)

	dev.ResetRecording()
	r.FrameStart(&cam, &clearColor)

	assert.Equal(t, cam.Compile(), r.Camera)
	assert.Equal(t, 1, dev.CountCommands("BufferSubData"), "the camera is uploaded once")
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, dev.ClearRGBA)
	assert.Contains(t, dev.Commands, gputest.Command{Name: "Clear", Args: []any{gpu.ClearMask_Color | gpu.ClearMask_Depth | gpu.ClearMask_Stencil}})

	assert.True(t, dev.Caps[gpu.Capability_DepthTest])
	assert.True(t, dev.Caps[gpu.Capability_CullFace])
	assert.False(t, dev.Caps[gpu.Capability_Blend])
	assert.Equal(t, gpu.DepthFunc_Less, lastDepthFuncBefore(dev.Commands, len(dev.Commands)))
}

func TestDrawMesh(t *testing.T) {

	dev, ctx, r := newTestRenderer(t)
	cam := newTestCamera()
	clearColor := gglm.NewVec4(0, 0, 0, 1)

	cube, err := meshes.NewCube(ctx)
	require.NoError(t, err)

	opaque := r.NewDefaultMaterial("opaque")
	glass := r.NewUnlitMaterial("glass")
	glass.Alpha = 0.4

	trMat := gglm.NewTrMatWithPos(1, 2, 3)

	r.FrameStart(&cam, &clearColor)
	dev.ResetRecording()

	r.DrawMesh(&cube, &trMat, glass)
	assert.True(t, dev.Caps[gpu.Capability_Blend], "transparent materials blend")

	r.DrawMesh(&cube, &trMat, opaque)
	assert.False(t, dev.Caps[gpu.Capability_Blend])

	r.FrameEnd()
	assert.Equal(t, uint32(0), dev.BoundVao)

	require.Len(t, dev.Draws, 2)
	for i, d := range dev.Draws {
		assert.True(t, d.Indexed, "draw %d", i)
		assert.Equal(t, gpu.Primitive_Triangles, d.Mode, "draw %d", i)
		assert.Equal(t, int32(36), d.Count, "draw %d", i)
		assert.Equal(t, cube.Vao.Id, d.Vao, "draw %d", i)
	}
	assert.Equal(t, glass.Program().Id, dev.Draws[0].Program)
	assert.Equal(t, opaque.Program().Id, dev.Draws[1].Program)

	v, _ := dev.UniformValue(opaque.Program().Id, "u_model")
	assert.Equal(t, trMat.Data, v)
	v, _ = dev.UniformValue(opaque.Program().Id, "u_view_position")
	assert.Equal(t, cam.Pos.Data, v)

	// Lights set on the renderer reach lit materials
	r.Lights.Points = []materials.PointLight{{Color: gglm.NewVec3(1, 0, 0), Range: 3}}
	r.DrawMesh(&cube, &trMat, opaque)
	v, _ = dev.UniformValue(opaque.Program().Id, "u_point_light_color[0]")
	assert.Equal(t, [3]float32{1, 0, 0}, v)
}

func TestDrawVertexArray(t *testing.T) {

	dev, ctx, r := newTestRenderer(t)
	cam := newTestCamera()
	clearColor := gglm.NewVec4(0, 0, 0, 1)

	plane, err := meshes.NewPlane(ctx, 2)
	require.NoError(t, err)

	mat := r.NewSingleColorMaterial("flat", gglm.NewVec4(1, 0, 1, 1))

	r.FrameStart(&cam, &clearColor)
	dev.ResetRecording()
	r.DrawVertexArray(mat, &plane.Vao, 0, 3)

	require.Len(t, dev.Draws, 1)
	assert.False(t, dev.Draws[0].Indexed)
	assert.Equal(t, int32(3), dev.Draws[0].Count)

	v, _ := dev.UniformValue(mat.Program().Id, "u_model")
	assert.Equal(t, gglm.NewMat4Diag(1).Data, v)
}

func TestDrawSkyboxRestoresState(t *testing.T) {

	dev, ctx, r := newTestRenderer(t)
	cam := newTestCamera()
	clearColor := gglm.NewVec4(0, 0, 0, 1)

	sky, err := meshes.NewSkyboxCube(ctx)
	require.NoError(t, err)
	cubemap := assets.Cubemap{Id: 77, Name: "sky"}

	r.FrameStart(&cam, &clearColor)
	dev.ResetRecording()
	r.DrawSkybox(&sky, &cubemap)

	drawIdx := indexOf(dev.Commands, "DrawElementsBaseVertex", 0)
	require.GreaterOrEqual(t, drawIdx, 0)
	assert.Equal(t, gpu.DepthFunc_LessEqual, lastDepthFuncBefore(dev.Commands, drawIdx))
	assert.Equal(t, gpu.DepthFunc_Less, lastDepthFuncBefore(dev.Commands, len(dev.Commands)))

	require.Len(t, dev.Draws, 1)
	d := dev.Draws[0]
	assert.Equal(t, r.Shaders.Skybox.Program.Id, d.Program)
	assert.Equal(t, int32(36), d.Count)

	unit := r.Shaders.Skybox.Uniforms.SkyboxTex.TextureUnit
	require.GreaterOrEqual(t, unit, int32(0))
	assert.Equal(t, cubemap.Id, d.Textures[uint32(unit)])

	assert.True(t, dev.Caps[gpu.Capability_CullFace], "culling is enabled again after the skybox")
	assert.False(t, dev.Caps[gpu.Capability_Blend])
}

func TestRend3DDelete(t *testing.T) {

	dev, _, r := newTestRenderer(t)
	r.Delete()

	assert.Empty(t, dev.Programs)
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.Textures)
}

func TestNewRend3DFailure(t *testing.T) {

	dev := gputest.New()
	dev.FailObjectCreation = true

	_, err := NewRend3D(gpu.NewContext(dev), shaders.EmbeddedSources{})
	assert.ErrorIs(t, err, gpu.ErrObjectCreation)
	assert.Empty(t, dev.Programs)
	assert.Empty(t, dev.Buffers)
}

func TestTransparentDrawDoesNotBlendEffects(t *testing.T) {

	dev, ctx, r := newTestRenderer(t)
	cam := newTestCamera()
	clearColor := gglm.NewVec4(0, 0, 0, 1)

	es, err := postproc.NewEffectStack(ctx, shaders.EmbeddedSources{}, 64, 32)
	require.NoError(t, err)

	cube, err := meshes.NewCube(ctx)
	require.NoError(t, err)

	glass := r.NewUnlitMaterial("glass")
	glass.Alpha = 0.4
	trMat := gglm.NewTrMatId()

	require.NoError(t, es.BeginFrame(64, 32))
	r.FrameStart(&cam, &clearColor)
	r.DrawMesh(&cube, &trMat, glass)
	require.True(t, ctx.IsCapabilityEnabled(gpu.Capability_Blend))
	r.FrameEnd()

	dev.ResetRecording()
	es.Render(64, 32)

	drawIdx := indexOf(dev.Commands, "DrawElementsBaseVertex", 0)
	require.GreaterOrEqual(t, drawIdx, 0)
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, uint32(0), dev.Draws[0].Framebuffer)

	assert.False(t, ctx.IsCapabilityEnabled(gpu.Capability_Blend), "the pass-through overwrites the default framebuffer")
	assert.Contains(t, dev.Commands[:drawIdx], gputest.Command{Name: "SetCapability", Args: []any{gpu.Capability_Blend, false}})
}
