package gpugl

import (
	"github.com/bloeys/nrend/assert"
	"github.com/bloeys/nrend/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

func bufUsageToGL(b gpu.BufUsage) uint32 {

	switch b {
	case gpu.BufUsage_Static_Draw:
		return gl.STATIC_DRAW
	case gpu.BufUsage_Dynamic_Draw:
		return gl.DYNAMIC_DRAW
	case gpu.BufUsage_Stream_Draw:
		return gl.STREAM_DRAW

	case gpu.BufUsage_Static_Read:
		return gl.STATIC_READ
	case gpu.BufUsage_Dynamic_Read:
		return gl.DYNAMIC_READ
	case gpu.BufUsage_Stream_Read:
		return gl.STREAM_READ

	case gpu.BufUsage_Static_Copy:
		return gl.STATIC_COPY
	case gpu.BufUsage_Dynamic_Copy:
		return gl.DYNAMIC_COPY
	case gpu.BufUsage_Stream_Copy:
		return gl.STREAM_COPY
	}

	assert.T(false, "Unexpected BufUsage value '%v'", b)
	return 0
}

func bufferTargetToGL(t gpu.BufferTarget) uint32 {

	switch t {
	case gpu.BufferTarget_Array:
		return gl.ARRAY_BUFFER
	case gpu.BufferTarget_ElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	case gpu.BufferTarget_Uniform:
		return gl.UNIFORM_BUFFER
	}

	assert.T(false, "Unexpected BufferTarget value '%v'", t)
	return 0
}

func scalarTypeToGL(t gpu.ScalarType) uint32 {

	switch t {
	case gpu.ScalarType_Float32:
		return gl.FLOAT
	case gpu.ScalarType_Int32:
		return gl.INT
	case gpu.ScalarType_Uint32:
		return gl.UNSIGNED_INT
	}

	assert.T(false, "Unexpected ScalarType value '%v'", t)
	return 0
}

func primitiveToGL(p gpu.Primitive) uint32 {

	switch p {
	case gpu.Primitive_Triangles:
		return gl.TRIANGLES
	case gpu.Primitive_Lines:
		return gl.LINES
	}

	assert.T(false, "Unexpected Primitive value '%v'", p)
	return 0
}

func shaderStageToGL(s gpu.ShaderStage) uint32 {

	switch s {
	case gpu.ShaderStage_Vertex:
		return gl.VERTEX_SHADER
	case gpu.ShaderStage_Fragment:
		return gl.FRAGMENT_SHADER
	}

	assert.T(false, "Unexpected ShaderStage value '%v'", s)
	return 0
}

func textureTargetToGL(t gpu.TextureTarget) uint32 {

	switch t {
	case gpu.TextureTarget_2D:
		return gl.TEXTURE_2D
	case gpu.TextureTarget_CubeMap:
		return gl.TEXTURE_CUBE_MAP
	}

	if t >= gpu.TextureTarget_CubeMapPositiveX && t <= gpu.TextureTarget_CubeMapNegativeZ {
		return gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(t-gpu.TextureTarget_CubeMapPositiveX)
	}

	assert.T(false, "Unexpected TextureTarget value '%v'", t)
	return 0
}

// textureFormatToGL returns the internal format, pixel format and pixel type to use for the texture format
func textureFormatToGL(f gpu.TextureFormat) (internalFormat int32, format uint32, pixelType uint32) {

	switch f {
	case gpu.TextureFormat_RGBA8:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	case gpu.TextureFormat_SRGBA8:
		return gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE
	case gpu.TextureFormat_RGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gpu.TextureFormat_Depth24Stencil8:
		return gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8
	}

	assert.T(false, "Unexpected TextureFormat value '%v'", f)
	return 0, 0, 0
}

func attachmentToGL(a gpu.Attachment) uint32 {

	if a == gpu.Attachment_DepthStencil {
		return gl.DEPTH_STENCIL_ATTACHMENT
	}

	assert.T(a >= gpu.Attachment_Color0 && a < gpu.Attachment_Color0+8, "Unexpected Attachment value '%v'", a)
	return gl.COLOR_ATTACHMENT0 + uint32(a-gpu.Attachment_Color0)
}

func clearMaskToGL(m gpu.ClearMask) uint32 {

	var glMask uint32
	if m&gpu.ClearMask_Color != 0 {
		glMask |= gl.COLOR_BUFFER_BIT
	}

	if m&gpu.ClearMask_Depth != 0 {
		glMask |= gl.DEPTH_BUFFER_BIT
	}

	if m&gpu.ClearMask_Stencil != 0 {
		glMask |= gl.STENCIL_BUFFER_BIT
	}

	return glMask
}

func capabilityToGL(c gpu.Capability) uint32 {

	switch c {
	case gpu.Capability_DepthTest:
		return gl.DEPTH_TEST
	case gpu.Capability_StencilTest:
		return gl.STENCIL_TEST
	case gpu.Capability_CullFace:
		return gl.CULL_FACE
	case gpu.Capability_Blend:
		return gl.BLEND
	case gpu.Capability_Multisample:
		return gl.MULTISAMPLE
	case gpu.Capability_FramebufferSrgb:
		return gl.FRAMEBUFFER_SRGB
	}

	assert.T(false, "Unexpected Capability value '%v'", c)
	return 0
}

func depthFuncToGL(f gpu.DepthFunc) uint32 {

	switch f {
	case gpu.DepthFunc_Less:
		return gl.LESS
	case gpu.DepthFunc_LessEqual:
		return gl.LEQUAL
	}

	assert.T(false, "Unexpected DepthFunc value '%v'", f)
	return 0
}

func faceToGL(f gpu.Face) uint32 {

	switch f {
	case gpu.Face_Back:
		return gl.BACK
	case gpu.Face_Front:
		return gl.FRONT
	}

	assert.T(false, "Unexpected Face value '%v'", f)
	return 0
}

func windingToGL(w gpu.Winding) uint32 {

	switch w {
	case gpu.Winding_CCW:
		return gl.CCW
	case gpu.Winding_CW:
		return gl.CW
	}

	assert.T(false, "Unexpected Winding value '%v'", w)
	return 0
}

func blendFactorToGL(f gpu.BlendFactor) uint32 {

	switch f {
	case gpu.BlendFactor_Zero:
		return gl.ZERO
	case gpu.BlendFactor_One:
		return gl.ONE
	case gpu.BlendFactor_SrcAlpha:
		return gl.SRC_ALPHA
	case gpu.BlendFactor_OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	}

	assert.T(false, "Unexpected BlendFactor value '%v'", f)
	return 0
}
