package buffers

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCtx() (*gputest.Device, *gpu.Context) {
	dev := gputest.New()
	return dev, gpu.NewContext(dev)
}

var testBlockFields = []UniformBufferFieldInput{
	{Name: "u_f", Type: DataTypeFloat32},
	{Name: "u_v3", Type: DataTypeVec3},
	{Name: "u_f2", Type: DataTypeFloat32},
	{Name: "u_m", Type: DataTypeMat4},
	{Name: "u_arr", Type: DataTypeFloat32, Count: 3},
	{Name: "u_v2", Type: DataTypeVec2},
}

func TestUniformBufferStd140Offsets(t *testing.T) {

	_, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, testBlockFields)
	require.NoError(t, err)

	// A scalar packs into the last 4 bytes of a vec3
	wantOffsets := map[string]uint16{
		"u_f":   0,
		"u_v3":  16,
		"u_f2":  28,
		"u_m":   32,
		"u_arr": 96,
		"u_v2":  144,
	}

	for name, want := range wantOffsets {
		f, ok := ub.GetField(name)
		require.True(t, ok, name)
		assert.Equal(t, want, f.AlignedOffset, name)
	}

	arr, _ := ub.GetField("u_arr")
	assert.True(t, arr.IsArray())
	assert.Equal(t, uint32(160), ub.Size)
	assert.Len(t, ub.Staging(), 160)
}

func TestUniformBufferFlushUploadsDirtyRangeOnce(t *testing.T) {

	dev, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, testBlockFields)
	require.NoError(t, err)
	dev.ResetRecording()

	assert.False(t, ub.IsDirty())
	ub.Flush()
	assert.Empty(t, dev.Commands, "flushing a clean buffer does nothing")

	m := gglm.NewMat4Diag(1)
	ub.SetMat4("u_m", &m)
	ub.SetFloat32("u_f2", 5)
	assert.True(t, ub.IsDirty())
	assert.Empty(t, dev.Commands, "setters only write the staging copy")

	ub.Flush()
	assert.Equal(t, 1, dev.CountCommands("BufferSubData"))
	assert.Equal(t, gputest.Command{Name: "BufferSubData", Args: []any{gpu.BufferTarget_Uniform, 28, 68}}, dev.Commands[len(dev.Commands)-1])
	assert.False(t, ub.IsDirty())

	data := dev.Buffers[ub.Id].Data
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(data[28:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[32:])))
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(data[36:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[32+16+4:])))
}

func TestUniformBufferArrays(t *testing.T) {

	_, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, testBlockFields)
	require.NoError(t, err)

	ub.SetFloat32Array("u_arr", 1, []float32{7, 8})
	staging := ub.Staging()

	// Array elements are padded to 16 bytes
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(staging[96:])))
	assert.Equal(t, float32(7), math.Float32frombits(binary.LittleEndian.Uint32(staging[112:])))
	assert.Equal(t, float32(8), math.Float32frombits(binary.LittleEndian.Uint32(staging[128:])))
}

func TestUniformBufferToSource(t *testing.T) {

	_, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, []UniformBufferFieldInput{
		{Name: "u_projection", Type: DataTypeMat4},
		{Name: "u_weights", Type: DataTypeFloat32, Count: 4},
	})
	require.NoError(t, err)

	want := "layout (std140) uniform Camera {\n" +
		"    mat4 u_projection;\n" +
		"    float u_weights[4];\n" +
		"};\n"
	assert.Equal(t, want, ub.ToSource("Camera"))
}

func TestUniformBufferBindBase(t *testing.T) {

	dev, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, testBlockFields)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), ub.Binding)

	ub.BindBase(2)
	assert.Equal(t, int32(2), ub.Binding)
	assert.Equal(t, ub.Id, dev.UniformBindings[2])
}

func TestUniformBufferOutOfMemory(t *testing.T) {

	dev, ctx := newTestCtx()
	dev.OutOfMemory = true

	_, err := NewUniformBuffer(ctx, testBlockFields)
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)
	assert.Empty(t, dev.Buffers, "the buffer is deleted on failure")
}

func TestVertexBufferSubData(t *testing.T) {

	dev, ctx := newTestCtx()
	vb, err := NewVertexBuffer(ctx, Element{ElementType: DataTypeVec3}, Element{ElementType: DataTypeVec4})
	require.NoError(t, err)
	assert.Equal(t, int32(28), vb.Stride)
	assert.Equal(t, 12, vb.GetLayout()[1].Offset)

	require.NoError(t, vb.SetData(make([]float32, 14), gpu.BufUsage_Dynamic_Draw))
	assert.Equal(t, 56, vb.Size)

	require.NoError(t, vb.SetSubData(28, []float32{1, 2, 3, 4, 5, 6, 7}))
	assert.Error(t, vb.SetSubData(32, []float32{1, 2, 3, 4, 5, 6, 7}))

	dev.OutOfMemory = true
	assert.ErrorIs(t, vb.SetData(make([]float32, 100), gpu.BufUsage_Dynamic_Draw), gpu.ErrOutOfMemory)
	assert.Equal(t, 56, vb.Size, "size is unchanged when the allocation fails")
}

func TestVertexArrayAttribsContinue(t *testing.T) {

	dev, ctx := newTestCtx()
	vao, err := NewVertexArray(ctx)
	require.NoError(t, err)

	vb1, err := NewVertexBuffer(ctx, Element{ElementType: DataTypeVec3}, Element{ElementType: DataTypeVec2})
	require.NoError(t, err)
	vb2, err := NewVertexBuffer(ctx, Element{ElementType: DataTypeVec4})
	require.NoError(t, err)

	vao.AddVertexBuffer(vb1)
	vao.AddVertexBuffer(vb2)

	var enabled []any
	for _, c := range dev.Commands {
		if c.Name == "EnableVertexAttribArray" {
			enabled = append(enabled, c.Args[0])
		}
	}
	assert.Equal(t, []any{uint32(0), uint32(1), uint32(2)}, enabled)

	vao.Delete()
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.Vaos)
	assert.Equal(t, uint32(0), ctx.BoundVao)
}

func TestFramebufferAttachments(t *testing.T) {

	dev, ctx := newTestCtx()
	fbo, err := NewFramebuffer(ctx, 64, 32)
	require.NoError(t, err)

	require.NoError(t, fbo.NewColorAttachment(FramebufferAttachmentType_Texture, gpu.TextureFormat_RGBA16F))
	require.NoError(t, fbo.NewDepthStencilAttachment(FramebufferAttachmentType_Renderbuffer, gpu.TextureFormat_Depth24Stencil8))
	assert.True(t, fbo.IsComplete())
	assert.True(t, fbo.HasColorAttachment())
	assert.True(t, fbo.HasDepthAttachment())

	colorTex := fbo.ColorTexture(0)
	require.NotZero(t, colorTex)
	assert.Equal(t, int32(64), dev.Textures[colorTex].Width)
	assert.Equal(t, gpu.TextureFormat_RGBA16F, dev.Textures[colorTex].Format)
	assert.Zero(t, fbo.ColorTexture(1))

	assert.Error(t, fbo.NewDepthStencilAttachment(FramebufferAttachmentType_Renderbuffer, gpu.TextureFormat_Depth24Stencil8))
	assert.Error(t, fbo.NewColorAttachment(FramebufferAttachmentType_Texture, gpu.TextureFormat_Depth24Stencil8))

	fbo.BindWithViewport()
	assert.Equal(t, [4]int32{0, 0, 64, 32}, dev.ViewportRect)

	fbo.Delete()
	assert.Empty(t, dev.Textures)
	assert.Empty(t, dev.Renderbuffers)
	assert.Empty(t, dev.Framebuffers)
	assert.Equal(t, uint32(0), ctx.BoundFramebuffer)
}

func TestFramebufferOutOfMemory(t *testing.T) {

	dev, ctx := newTestCtx()
	fbo, err := NewFramebuffer(ctx, 64, 32)
	require.NoError(t, err)

	dev.OutOfMemory = true
	err = fbo.NewColorAttachment(FramebufferAttachmentType_Texture, gpu.TextureFormat_RGBA8)
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)
	assert.False(t, fbo.HasColorAttachment())
	assert.Empty(t, dev.Textures)
}

func TestUniformBufferMat3Columns(t *testing.T) {

	_, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, []UniformBufferFieldInput{
		{Name: "u_normal", Type: DataTypeMat3},
		{Name: "u_after", Type: DataTypeFloat32},
	})
	require.NoError(t, err)

	after, _ := ub.GetField("u_after")
	assert.Equal(t, uint16(48), after.AlignedOffset, "each mat3 column takes a vec4")

	m := gglm.NewMat3Diag(2)
	ub.SetMat3("u_normal", &m)
	ub.SetFloat32("u_after", 9)

	staging := ub.Staging()
	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(staging[offset:]))
	}

	assert.Equal(t, float32(2), readF32(0))
	assert.Equal(t, float32(0), readF32(12), "column padding is untouched")
	assert.Equal(t, float32(2), readF32(16+4))
	assert.Equal(t, float32(2), readF32(32+8))
	assert.Equal(t, float32(9), readF32(48))
}

func TestUniformBufferBadWritesPanic(t *testing.T) {

	_, ctx := newTestCtx()
	ub, err := NewUniformBuffer(ctx, testBlockFields)
	require.NoError(t, err)

	v3 := gglm.NewVec3(1, 2, 3)

	tests := []struct {
		name  string
		write func()
	}{
		{name: "past the end of an array", write: func() { ub.SetFloat32Array("u_arr", 2, []float32{1, 2}) }},
		{name: "wrong type", write: func() { ub.SetVec3("u_f", &v3) }},
		{name: "unknown field", write: func() { ub.SetFloat32("u_missing", 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.write)
			assert.False(t, ub.IsDirty(), "nothing is staged")
		})
	}
}
